package domain

type (
	// RoomID is assigned by the room directory and stable for the room's lifetime.
	RoomID string
	// ConnectionID is assigned by the transport adapter at upgrade time and
	// never reused while the physical connection is alive.
	ConnectionID string
	// UserID identifies an account. A user may hold several live connections.
	UserID string
)
