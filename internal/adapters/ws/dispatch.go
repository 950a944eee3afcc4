package ws

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/core"
	"github.com/jsorel/chatter/internal/domain"
)

// Inbound frame types.
const (
	frameJoin   = "join"
	frameChat   = "chat"
	frameTyping = "typing"
)

// Hub is what the adapter needs from the coordination engine. The identity
// always comes from the verified token bound to the connection, never from
// the payload.
type Hub interface {
	OnJoin(ctx context.Context, conn domain.ConnectionID, room domain.RoomID, user domain.UserID, username string) error
	OnChatMessage(ctx context.Context, conn domain.ConnectionID, room domain.RoomID, user domain.UserID, username, text string) error
	OnTyping(conn domain.ConnectionID, room domain.RoomID, username string, isTyping bool)
	OnDisconnect(conn domain.ConnectionID)
}

// sink is the sender-only error path used to reject malformed frames
// before they reach the hub.
type sink interface {
	TrySend(data []byte) error
}

type joinPayload struct {
	Room string `json:"room"`
}

type chatPayload struct {
	Room    string `json:"room"`
	Content string `json:"content"`
}

type typingPayload struct {
	Room     string `json:"room"`
	IsTyping bool   `json:"is_typing"`
}

// dispatch decodes one inbound frame and routes it to the hub. Validation
// errors never reach the hub; they bounce straight back to the sender.
func dispatch(ctx context.Context, hub Hub, out sink, limiter *chatRateLimiter, id domain.ConnectionID, who auth.Identity, data []byte) {
	var env struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("bad json")
		reject(out, "malformed frame")
		return
	}

	switch env.Type {
	case frameJoin:
		var p joinPayload
		if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
			reject(out, "join needs a room")
			return
		}
		_ = hub.OnJoin(ctx, id, domain.RoomID(p.Room), who.UserID, who.Username)

	case frameChat:
		var p chatPayload
		if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
			reject(out, "chat needs a room")
			return
		}
		if strings.TrimSpace(p.Content) == "" {
			reject(out, "empty message")
			return
		}
		if !limiter.Allow(who.UserID) {
			log.Warn().Str("module", "ws").Str("user", string(who.UserID)).Msg("chat rate limited")
			rejectCode(out, core.CodeRateLimited, "too many messages")
			return
		}
		_ = hub.OnChatMessage(ctx, id, domain.RoomID(p.Room), who.UserID, who.Username, p.Content)

	case frameTyping:
		var p typingPayload
		if err := json.Unmarshal(data, &p); err != nil || p.Room == "" {
			reject(out, "typing needs a room")
			return
		}
		hub.OnTyping(id, domain.RoomID(p.Room), who.Username, p.IsTyping)

	default:
		log.Warn().Str("module", "ws").Str("type", env.Type).Msg("unknown frame")
		reject(out, "unknown frame type")
	}
}

func reject(out sink, reason string) {
	rejectCode(out, core.CodeBadPayload, reason)
}

func rejectCode(out sink, code, reason string) {
	data, err := json.Marshal(core.NewErrorEvent(code, reason))
	if err != nil {
		return
	}
	_ = out.TrySend(data)
}
