package core

import (
	"github.com/jsorel/chatter/internal/domain"
)

// Outbound event types carried in the "type" field of every frame.
const (
	EventOccupants  = "occupants"
	EventUserJoined = "user_joined"
	EventUserLeft   = "user_left"
	EventMessage    = "message"
	EventTyping     = "typing"
	EventError      = "error"
)

// Error codes surfaced to a single connection via ErrorEvent.
const (
	CodeRoomNotFound  = "room_not_found"
	CodeNotInRoom     = "not_in_room"
	CodePersistFailed = "persist_failed"
	CodeBadPayload    = "bad_payload"
	CodeRateLimited   = "rate_limited"
)

// OccupantRef is the transport-facing view of an occupant; connection ids
// never leave the hub.
type OccupantRef struct {
	UserID   domain.UserID `json:"user_id"`
	Username string        `json:"username"`
}

type OccupantsEvent struct {
	Type      string        `json:"type"`
	Room      domain.RoomID `json:"room"`
	Occupants []OccupantRef `json:"occupants"`
}

type UserJoinedEvent struct {
	Type     string        `json:"type"`
	Room     domain.RoomID `json:"room"`
	Username string        `json:"username"`
}

type UserLeftEvent struct {
	Type     string        `json:"type"`
	Room     domain.RoomID `json:"room"`
	Username string        `json:"username"`
}

type MessageEvent struct {
	Type    string         `json:"type"`
	Message domain.Message `json:"message"`
}

type TypingEvent struct {
	Type   string        `json:"type"`
	Room   domain.RoomID `json:"room"`
	Typing []string      `json:"typing"`
}

type ErrorEvent struct {
	Type   string `json:"type"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

func NewErrorEvent(code, reason string) ErrorEvent {
	return ErrorEvent{Type: EventError, Code: code, Reason: reason}
}

func occupantsEvent(room domain.RoomID, occupants []domain.Occupant) OccupantsEvent {
	refs := make([]OccupantRef, 0, len(occupants))
	for _, o := range occupants {
		refs = append(refs, OccupantRef{UserID: o.UserID, Username: o.Username})
	}
	return OccupantsEvent{Type: EventOccupants, Room: room, Occupants: refs}
}
