package domain

import (
	"errors"
	"time"
)

const MaxRoomNameLen = 36

var (
	ErrRoomNameEmpty   = errors.New("room name empty")
	ErrRoomNameTooLong = errors.New("room name too long")
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room with this name already exists")
)

type Room struct {
	ID        RoomID    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func ValidateRoomName(name string) error {
	if name == "" {
		return ErrRoomNameEmpty
	}
	if len(name) > MaxRoomNameLen {
		return ErrRoomNameTooLong
	}
	return nil
}
