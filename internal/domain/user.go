// Package domain contains plain entities without transport or storage logic.
package domain

import "errors"

const (
	MinUsernameLen = 3
	MaxUsernameLen = 20
	MinPasswordLen = 6
)

var (
	ErrUsernameTooShort = errors.New("username too short")
	ErrUsernameTooLong  = errors.New("username too long")
	ErrPasswordTooShort = errors.New("password too short")
	ErrUsernameTaken    = errors.New("user with that username already exists")
	ErrUnknownUser      = errors.New("unknown user")
)

type User struct {
	ID       UserID `json:"id"`
	Username string `json:"username"`
}

// ValidateUsername enforces the account naming rules shared by registration
// and login so adapters never check lengths ad hoc.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLen {
		return ErrUsernameTooShort
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLen {
		return ErrPasswordTooShort
	}
	return nil
}
