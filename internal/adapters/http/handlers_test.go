package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/domain"
	storage "github.com/jsorel/chatter/internal/storage/mongo"
)

type fakeUsers struct {
	byName map[string]*storage.StoredUser
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byName: make(map[string]*storage.StoredUser)}
}

func (f *fakeUsers) Create(_ context.Context, username, passwordHash string) (*domain.User, error) {
	if _, ok := f.byName[username]; ok {
		return nil, domain.ErrUsernameTaken
	}
	user := domain.User{ID: domain.UserID(uuid.NewString()), Username: username}
	f.byName[username] = &storage.StoredUser{User: user, PasswordHash: passwordHash}
	return &user, nil
}

func (f *fakeUsers) ByUsername(_ context.Context, username string) (*storage.StoredUser, error) {
	stored, ok := f.byName[username]
	if !ok {
		return nil, domain.ErrUnknownUser
	}
	return stored, nil
}

type fakeRooms struct {
	rooms []domain.Room
}

func (f *fakeRooms) Create(_ context.Context, name string) (*domain.Room, error) {
	for _, r := range f.rooms {
		if r.Name == name {
			return nil, domain.ErrRoomExists
		}
	}
	room := domain.Room{ID: domain.RoomID(uuid.NewString()), Name: name, CreatedAt: time.Now().UTC()}
	f.rooms = append(f.rooms, room)
	return &room, nil
}

func (f *fakeRooms) List(_ context.Context) ([]domain.Room, error) {
	return f.rooms, nil
}

func (f *fakeRooms) Resolve(_ context.Context, id domain.RoomID) (*domain.Room, error) {
	for _, r := range f.rooms {
		if r.ID == id {
			return &r, nil
		}
	}
	return nil, domain.ErrRoomNotFound
}

type fakeHistory struct {
	messages []domain.Message
	gotLimit int64
}

func (f *fakeHistory) History(_ context.Context, room domain.RoomID, limit int64) ([]domain.Message, error) {
	f.gotLimit = limit
	var out []domain.Message
	for _, m := range f.messages {
		if m.Room == room {
			out = append(out, m)
		}
	}
	return out, nil
}

func newTestRouter(t *testing.T, users *fakeUsers, rooms *fakeRooms, history *fakeHistory) (*gin.Engine, *auth.Tokens) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens := auth.NewTokens("test-secret", time.Hour)

	r := gin.New()
	authH := NewAuthHandler(users, tokens)
	roomH := NewRoomHandler(rooms, history, 200)

	api := r.Group("/api")
	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)
	protected := api.Group("/rooms", RequireAuth(tokens))
	protected.GET("", roomH.List)
	protected.POST("", roomH.Create)
	protected.GET("/:id/messages", roomH.Messages)

	return r, tokens
}

func doJSON(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})

	// given a fresh username, register succeeds and returns a token
	rec := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "hunter22"})
	req.Equal(http.StatusCreated, rec.Code)

	var reply struct {
		UserID   string `json:"user_id"`
		Username string `json:"username"`
		Token    string `json:"token"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &reply))
	req.Equal("alice", reply.Username)
	req.NotEmpty(reply.UserID)
	req.NotEmpty(reply.Token)

	// when logging in with the same credentials
	rec = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "hunter22"})
	req.Equal(http.StatusOK, rec.Code)

	// then a wrong password is rejected
	rec = doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "alice", "password": "wrong-password"})
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})

	rec := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "ab", "password": "hunter22"})
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "short"})
	req.Equal(http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})

	rec := doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "hunter22"})
	req.Equal(http.StatusCreated, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/auth/register", "", gin.H{"username": "alice", "password": "hunter22"})
	req.Equal(http.StatusConflict, rec.Code)
}

func TestLoginUnknownUser(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})

	rec := doJSON(r, http.MethodPost, "/api/auth/login", "", gin.H{"username": "nobody", "password": "hunter22"})
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func issueToken(t *testing.T, tokens *auth.Tokens) string {
	t.Helper()
	token, err := tokens.Issue(domain.User{ID: "u1", Username: "alice"})
	require.NoError(t, err)
	return token
}

func TestRoomsRequireAuth(t *testing.T) {
	req := require.New(t)
	r, _ := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})

	rec := doJSON(r, http.MethodGet, "/api/rooms", "", nil)
	req.Equal(http.StatusUnauthorized, rec.Code)

	rec = doJSON(r, http.MethodGet, "/api/rooms", "not-a-token", nil)
	req.Equal(http.StatusUnauthorized, rec.Code)
}

func TestCreateAndListRooms(t *testing.T) {
	req := require.New(t)
	r, tokens := newTestRouter(t, newFakeUsers(), &fakeRooms{}, &fakeHistory{})
	token := issueToken(t, tokens)

	rec := doJSON(r, http.MethodPost, "/api/rooms", token, gin.H{"name": "general"})
	req.Equal(http.StatusCreated, rec.Code)

	// duplicate names are rejected
	rec = doJSON(r, http.MethodPost, "/api/rooms", token, gin.H{"name": "general"})
	req.Equal(http.StatusConflict, rec.Code)

	rec = doJSON(r, http.MethodPost, "/api/rooms", token, gin.H{"name": ""})
	req.Equal(http.StatusBadRequest, rec.Code)

	rec = doJSON(r, http.MethodGet, "/api/rooms", token, nil)
	req.Equal(http.StatusOK, rec.Code)

	var reply struct {
		Rooms []domain.Room `json:"rooms"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &reply))
	req.Len(reply.Rooms, 1)
	req.Equal("general", reply.Rooms[0].Name)
}

func TestRoomHistory(t *testing.T) {
	req := require.New(t)
	rooms := &fakeRooms{}
	room, err := rooms.Create(context.Background(), "general")
	req.NoError(err)

	history := &fakeHistory{messages: []domain.Message{
		{ID: "m1", Room: room.ID, UserID: "u1", Username: "alice", Content: "hello"},
		{ID: "m2", Room: room.ID, UserID: "u2", Username: "bob", Content: "hi"},
	}}
	r, tokens := newTestRouter(t, newFakeUsers(), rooms, history)
	token := issueToken(t, tokens)

	rec := doJSON(r, http.MethodGet, "/api/rooms/"+string(room.ID)+"/messages", token, nil)
	req.Equal(http.StatusOK, rec.Code)

	var reply struct {
		Messages []domain.Message `json:"messages"`
	}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &reply))
	req.Len(reply.Messages, 2)
	req.Equal("hello", reply.Messages[0].Content)

	// unknown rooms 404
	rec = doJSON(r, http.MethodGet, "/api/rooms/nope/messages", token, nil)
	req.Equal(http.StatusNotFound, rec.Code)

	// a smaller caller limit wins over the configured one
	rec = doJSON(r, http.MethodGet, "/api/rooms/"+string(room.ID)+"/messages?limit=5", token, nil)
	req.Equal(http.StatusOK, rec.Code)
	req.Equal(int64(5), history.gotLimit)

	rec = doJSON(r, http.MethodGet, "/api/rooms/"+string(room.ID)+"/messages?limit=bogus", token, nil)
	req.Equal(http.StatusBadRequest, rec.Code)
}
