package domain

// Occupant is a user's participation record for a room: who they are and
// which physical connection carries them. Keyed by UserID within a room,
// so a rejoin under the same user replaces the older entry.
type Occupant struct {
	UserID   UserID       `json:"user_id"`
	Username string       `json:"username"`
	Conn     ConnectionID `json:"-"`
}
