package domain

import "time"

// Message is a chat message as the hub hands it to the store. The ID is
// assigned by the store on persist; SentAt is always server time.
type Message struct {
	ID       string    `json:"id"`
	Room     RoomID    `json:"room"`
	UserID   UserID    `json:"user_id"`
	Username string    `json:"username"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sent_at"`
}
