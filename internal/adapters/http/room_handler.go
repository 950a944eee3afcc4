package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/domain"
)

// RoomStore is the directory surface the handlers need.
type RoomStore interface {
	Create(ctx context.Context, name string) (*domain.Room, error)
	List(ctx context.Context) ([]domain.Room, error)
	Resolve(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}

// HistoryStore reads back persisted messages for a room, oldest first.
type HistoryStore interface {
	History(ctx context.Context, room domain.RoomID, limit int64) ([]domain.Message, error)
}

type RoomHandler struct {
	rooms        RoomStore
	history      HistoryStore
	historyLimit int64
}

func NewRoomHandler(rooms RoomStore, history HistoryStore, historyLimit int64) *RoomHandler {
	return &RoomHandler{rooms: rooms, history: history, historyLimit: historyLimit}
}

type createRoomRequest struct {
	Name string `json:"name"`
}

func (h *RoomHandler) Create(c *gin.Context) {
	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}
	if err := domain.ValidateRoomName(req.Name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.rooms.Create(c.Request.Context(), req.Name)
	if errors.Is(err, domain.ErrRoomExists) {
		c.JSON(http.StatusConflict, gin.H{"error": domain.ErrRoomExists.Error()})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("room create failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.rooms.List(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("room list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

func (h *RoomHandler) Messages(c *gin.Context) {
	id := domain.RoomID(c.Param("id"))
	if _, err := h.rooms.Resolve(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrRoomNotFound.Error()})
			return
		}
		log.Error().Err(err).Str("module", "http").Msg("room lookup failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.history.History(c.Request.Context(), id, limit)
	if err != nil {
		log.Error().Err(err).Str("module", "http").Msg("history read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": messages})
}
