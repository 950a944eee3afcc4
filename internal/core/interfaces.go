package core

import (
	"context"

	"github.com/jsorel/chatter/internal/domain"
)

// Broadcaster carries outbound events to live connections. The hub computes
// the recipient set from its own state and hands over identifiers only, so
// any transport (websocket, in-process test double) can sit behind this.
// Delivery is best-effort: a slow or gone connection is the adapter's
// problem, never the hub's.
type Broadcaster interface {
	Deliver(to []domain.ConnectionID, event any)
}

// MessageStore is the durable append-only message log. Persist assigns the
// stored message its identifier; the hub broadcasts exactly what came back.
type MessageStore interface {
	Persist(ctx context.Context, msg domain.Message) (domain.Message, error)
}

// RoomDirectory resolves room identifiers. The hub only ever asks whether a
// room exists; creation and listing belong to the surrounding application.
type RoomDirectory interface {
	Resolve(ctx context.Context, id domain.RoomID) (*domain.Room, error)
}
