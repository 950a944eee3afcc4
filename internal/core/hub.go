package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/domain"
	"github.com/jsorel/chatter/internal/metrics"
)

var (
	// ErrNotInRoom rejects a chat message from a connection that is not
	// currently recorded in the target room.
	ErrNotInRoom = errors.New("connection not in room")
	// ErrPersistFailed marks a message that was dropped because the store
	// rejected it. Never retried.
	ErrPersistFailed = errors.New("message persistence failed")
)

// Hub orchestrates the connection lifecycle: join, chat, typing, disconnect.
// It exclusively owns one PresenceRegistry and one TypingAggregator behind a
// single mutex, so no handler ever observes a torn intermediate state. The
// mutex is never held across a call into a collaborator; the only blocking
// call is message persistence, which runs between two short critical
// sections.
type Hub struct {
	mu       sync.Mutex
	presence *PresenceRegistry
	typing   *TypingAggregator

	store MessageStore
	rooms RoomDirectory
	cast  Broadcaster
}

func NewHub(store MessageStore, rooms RoomDirectory, cast Broadcaster) *Hub {
	return &Hub{
		presence: NewPresenceRegistry(),
		typing:   NewTypingAggregator(),
		store:    store,
		rooms:    rooms,
		cast:     cast,
	}
}

// OnJoin moves the connection into room, implicitly and atomically leaving
// any previous room. The unknown-room policy is reject: the join is refused
// with an error event and the connection keeps its previous occupancy.
// Both the old and the new room receive a fresh occupants snapshot, the new
// room including the joiner itself so every client converges on one view.
func (h *Hub) OnJoin(ctx context.Context, conn domain.ConnectionID, room domain.RoomID, user domain.UserID, username string) error {
	if _, err := h.rooms.Resolve(ctx, room); err != nil {
		log.Warn().Str("module", "core.hub").Str("conn", string(conn)).Str("room", string(room)).Err(err).Msg("join rejected")
		h.deliver([]domain.ConnectionID{conn}, EventError, NewErrorEvent(CodeRoomNotFound, "room does not exist"))
		return fmt.Errorf("resolve room %s: %w", room, err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	previous := h.presence.SetOccupant(room, domain.Occupant{UserID: user, Username: username, Conn: conn})
	if previous != nil {
		h.notifyLeft(*previous, username)
		metrics.RoomLeaves.Inc()
	}

	h.deliver(h.presence.Connections(room), EventOccupants, occupantsEvent(room, h.presence.Occupants(room)))
	h.deliver(h.presence.Connections(room), EventUserJoined, UserJoinedEvent{Type: EventUserJoined, Room: room, Username: username})
	metrics.RoomJoins.Inc()
	log.Info().Str("module", "core.hub").Str("conn", string(conn)).Str("room", string(room)).Str("user", string(user)).Msg("joined room")
	return nil
}

// OnChatMessage persists a message with a server-assigned timestamp and, on
// success, broadcasts the stored copy to the room. A persistence failure
// drops the message: no broadcast, no retry, but the failure is observable
// (metric, log, and an error event to the sender only). Senders must be in
// the room they post to.
func (h *Hub) OnChatMessage(ctx context.Context, conn domain.ConnectionID, room domain.RoomID, user domain.UserID, username, text string) error {
	h.mu.Lock()
	current, ok := h.presence.CurrentRoom(conn)
	h.mu.Unlock()
	if !ok || current != room {
		h.deliver([]domain.ConnectionID{conn}, EventError, NewErrorEvent(CodeNotInRoom, "join the room before posting"))
		return ErrNotInRoom
	}

	msg := domain.Message{
		Room:     room,
		UserID:   user,
		Username: username,
		Content:  text,
		SentAt:   time.Now().UTC(),
	}

	// Persistence runs outside the critical section so a slow store never
	// stalls other connections' handlers.
	stored, err := h.store.Persist(ctx, msg)
	if err != nil {
		metrics.MessagesDropped.Inc()
		log.Warn().Str("module", "core.hub").Str("room", string(room)).Str("user", string(user)).Err(err).Msg("message dropped, store refused it")
		h.deliver([]domain.ConnectionID{conn}, EventError, NewErrorEvent(CodePersistFailed, "message was not delivered"))
		return fmt.Errorf("%w: %v", ErrPersistFailed, err)
	}
	metrics.MessagesPersisted.Inc()

	h.mu.Lock()
	defer h.mu.Unlock()
	h.deliver(h.presence.Connections(room), EventMessage, MessageEvent{Type: EventMessage, Message: stored})
	return nil
}

// OnTyping updates the room's typing set. The snapshot is broadcast only
// when the set actually changed; repeated "still typing" signals fan out
// nothing.
func (h *Hub) OnTyping(conn domain.ConnectionID, room domain.RoomID, username string, isTyping bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.typing.SetTyping(room, username, isTyping) {
		return
	}
	h.deliver(h.presence.Connections(room), EventTyping, TypingEvent{Type: EventTyping, Room: room, Typing: h.typing.CurrentlyTyping(room)})
}

// OnDisconnect removes whatever occupancy the connection holds. For a
// never-joined or already-superseded connection this is a silent no-op.
func (h *Hub) OnDisconnect(conn domain.ConnectionID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, entry := h.presence.RemoveByConnection(conn)
	if room == nil {
		return
	}
	h.notifyLeft(*room, entry.Username)
	metrics.RoomLeaves.Inc()
	log.Info().Str("module", "core.hub").Str("conn", string(conn)).Str("room", string(*room)).Msg("left room on disconnect")
}

// notifyLeft tells a room that username is gone: fresh occupants snapshot plus,
// if they were mid-composition, the shrunken typing set. Callers hold h.mu.
func (h *Hub) notifyLeft(room domain.RoomID, username string) {
	h.deliver(h.presence.Connections(room), EventOccupants, occupantsEvent(room, h.presence.Occupants(room)))
	h.deliver(h.presence.Connections(room), EventUserLeft, UserLeftEvent{Type: EventUserLeft, Room: room, Username: username})
	if h.typing.Clear(room, username) {
		h.deliver(h.presence.Connections(room), EventTyping, TypingEvent{Type: EventTyping, Room: room, Typing: h.typing.CurrentlyTyping(room)})
	}
}

func (h *Hub) deliver(to []domain.ConnectionID, kind string, event any) {
	if len(to) == 0 {
		return
	}
	metrics.EventsDelivered.WithLabelValues(kind).Inc()
	h.cast.Deliver(to, event)
}
