package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jsorel/chatter/internal/domain"
)

func TestTokens_IssueVerifyRoundtrip(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("secret", time.Hour)

	raw, err := tokens.Issue(domain.User{ID: "u1", Username: "alice"})
	req.NoError(err)

	id, err := tokens.Verify(raw)
	req.NoError(err)
	req.Equal(domain.UserID("u1"), id.UserID)
	req.Equal("alice", id.Username)
}

func TestTokens_WrongSecretRejected(t *testing.T) {
	req := require.New(t)
	raw, err := NewTokens("secret", time.Hour).Issue(domain.User{ID: "u1", Username: "alice"})
	req.NoError(err)

	_, err = NewTokens("other", time.Hour).Verify(raw)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokens_ExpiredRejected(t *testing.T) {
	req := require.New(t)
	tokens := NewTokens("secret", -time.Minute)

	raw, err := tokens.Issue(domain.User{ID: "u1", Username: "alice"})
	req.NoError(err)

	_, err = tokens.Verify(raw)
	req.ErrorIs(err, ErrInvalidToken)
}

func TestTokens_GarbageRejected(t *testing.T) {
	req := require.New(t)
	_, err := NewTokens("secret", time.Hour).Verify("not-a-token")
	req.ErrorIs(err, ErrInvalidToken)
}

func TestPassword_HashAndCheck(t *testing.T) {
	req := require.New(t)

	hash, err := HashPassword("hunter22")
	req.NoError(err)
	req.NotEqual("hunter22", hash)

	req.True(CheckPassword(hash, "hunter22"))
	req.False(CheckPassword(hash, "hunter23"))
}
