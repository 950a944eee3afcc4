package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jsorel/chatter/internal/domain"
)

func occ(user, name, conn string) domain.Occupant {
	return domain.Occupant{UserID: domain.UserID(user), Username: name, Conn: domain.ConnectionID(conn)}
}

func TestPresence_JoinSequence_TracksMostRecentRoom(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	rooms := []domain.RoomID{"general", "random", "dev", "general"}
	for _, room := range rooms {
		p.SetOccupant(room, occ("u1", "Alice", "c1"))

		current, ok := p.CurrentRoom("c1")
		req.True(ok)
		req.Equal(room, current)

		// the connection appears in exactly one room's occupant set
		for _, other := range rooms {
			if other == room {
				req.Len(p.Occupants(other), 1)
			} else {
				req.Empty(p.Occupants(other))
			}
		}
	}
}

func TestPresence_SetOccupant_ReturnsPreviousRoom(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	prev := p.SetOccupant("general", occ("u1", "Alice", "c1"))
	req.Nil(prev)

	prev = p.SetOccupant("random", occ("u1", "Alice", "c1"))
	req.NotNil(prev)
	req.Equal(domain.RoomID("general"), *prev)

	// rejoining the same room is not a move
	prev = p.SetOccupant("random", occ("u1", "Alice", "c1"))
	req.Nil(prev)
}

func TestPresence_DuplicateJoin_LastWriterWins(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	p.SetOccupant("general", occ("u1", "Alice", "c1"))
	p.SetOccupant("general", occ("u1", "Alice2", "c2"))

	occupants := p.Occupants("general")
	req.Len(occupants, 1)
	req.Equal("Alice2", occupants[0].Username)
	req.Equal(domain.ConnectionID("c2"), occupants[0].Conn)

	// the superseded connection lost its index entry
	_, ok := p.CurrentRoom("c1")
	req.False(ok)

	// and its disconnect is a no-op that disturbs nothing
	room, entry := p.RemoveByConnection("c1")
	req.Nil(room)
	req.Nil(entry)
	req.Len(p.Occupants("general"), 1)
}

func TestPresence_RemoveByConnection(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	p.SetOccupant("general", occ("u1", "Alice", "c1"))
	p.SetOccupant("general", occ("u2", "Bob", "c2"))

	room, entry := p.RemoveByConnection("c1")
	req.NotNil(room)
	req.Equal(domain.RoomID("general"), *room)
	req.Equal("Alice", entry.Username)
	req.Len(p.Occupants("general"), 1)

	// idempotent: the second removal finds nothing
	room, entry = p.RemoveByConnection("c1")
	req.Nil(room)
	req.Nil(entry)
}

func TestPresence_RemoveNeverJoined_IsNoop(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	room, entry := p.RemoveByConnection("ghost")
	req.Nil(room)
	req.Nil(entry)
}

func TestPresence_UnknownRoom_EmptySnapshot(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	req.NotNil(p.Occupants("nowhere"))
	req.Empty(p.Occupants("nowhere"))
	req.Empty(p.Connections("nowhere"))
}

func TestPresence_MoveEmitsFromOldRoom(t *testing.T) {
	req := require.New(t)
	p := NewPresenceRegistry()

	p.SetOccupant("general", occ("u1", "Alice", "c1"))
	prev := p.SetOccupant("random", occ("u1", "Alice", "c1"))

	req.Equal(domain.RoomID("general"), *prev)
	req.Empty(p.Occupants("general"))
	req.Len(p.Occupants("random"), 1)

	conns := p.Connections("random")
	req.Equal([]domain.ConnectionID{"c1"}, conns)
}
