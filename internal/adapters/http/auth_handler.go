// Package http is the REST surface around the relay: account issuance, the
// room directory and history reads. The realtime path lives in adapters/ws.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/domain"
	storage "github.com/jsorel/chatter/internal/storage/mongo"
)

// UserStore is the slice of the account repository the handlers need.
type UserStore interface {
	Create(ctx context.Context, username, passwordHash string) (*domain.User, error)
	ByUsername(ctx context.Context, username string) (*storage.StoredUser, error)
}

type AuthHandler struct {
	users  UserStore
	tokens *auth.Tokens
}

func NewAuthHandler(users UserStore, tokens *auth.Tokens) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
	Token    string        `json:"token"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := domain.ValidateUsername(req.Username); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	user, err := h.users.Create(c.Request.Context(), req.Username, hash)
	if errors.Is(err, domain.ErrUsernameTaken) {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrUsernameTaken.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("register failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	token, err := h.tokens.Issue(*user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, authResponse{UserID: user.ID, Username: user.Username, Token: token})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	stored, err := h.users.ByUsername(c.Request.Context(), req.Username)
	if errors.Is(err, domain.ErrUnknownUser) || (err == nil && !auth.CheckPassword(stored.PasswordHash, req.Password)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("login failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	token, err := h.tokens.Issue(stored.User)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, authResponse{UserID: stored.User.ID, Username: stored.User.Username, Token: token})
}
