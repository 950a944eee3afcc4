// Package core is the connection/room coordination engine: it tracks which
// connection occupies which room, keeps per-room presence and typing state,
// and fans events out to the right subscriber set. It owns no transport
// resources and holds only connection identifiers.
package core

import "github.com/jsorel/chatter/internal/domain"

type location struct {
	room domain.RoomID
	user domain.UserID
}

// PresenceRegistry maps room -> userID -> occupant, with an inverse
// connection -> location index for O(1) removal. A connection occupies at
// most one room at a time. Not safe for concurrent use; the Hub serializes
// all access.
type PresenceRegistry struct {
	rooms map[domain.RoomID]map[domain.UserID]domain.Occupant
	conns map[domain.ConnectionID]location
}

func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{
		rooms: make(map[domain.RoomID]map[domain.UserID]domain.Occupant),
		conns: make(map[domain.ConnectionID]location),
	}
}

// SetOccupant inserts or replaces the entry for the occupant's user in room.
// If the connection was previously in a different room it is removed from
// there first, and that room is returned so the caller can notify it.
// A same-user entry held by another connection is replaced last-writer-wins;
// the superseded connection loses its index entry and its later disconnect
// becomes a no-op.
func (p *PresenceRegistry) SetOccupant(room domain.RoomID, entry domain.Occupant) (previous *domain.RoomID) {
	if loc, ok := p.conns[entry.Conn]; ok && loc.room != room {
		p.dropEntry(loc.room, loc.user, entry.Conn)
		prev := loc.room
		previous = &prev
	}

	occupants, ok := p.rooms[room]
	if !ok {
		occupants = make(map[domain.UserID]domain.Occupant)
		p.rooms[room] = occupants
	}
	if old, ok := occupants[entry.UserID]; ok && old.Conn != entry.Conn {
		delete(p.conns, old.Conn)
	}
	occupants[entry.UserID] = entry
	p.conns[entry.Conn] = location{room: room, user: entry.UserID}
	return previous
}

// RemoveByConnection removes whatever (room, user) pair the connection holds.
// Idempotent: a second call for the same connection returns (nil, nil).
func (p *PresenceRegistry) RemoveByConnection(conn domain.ConnectionID) (*domain.RoomID, *domain.Occupant) {
	loc, ok := p.conns[conn]
	if !ok {
		return nil, nil
	}
	delete(p.conns, conn)
	entry, ok := p.rooms[loc.room][loc.user]
	if !ok || entry.Conn != conn {
		return nil, nil
	}
	p.dropEntry(loc.room, loc.user, conn)
	room := loc.room
	return &room, &entry
}

// Occupants returns a snapshot of the room's occupants. Unknown or empty
// rooms yield an empty slice, never an error.
func (p *PresenceRegistry) Occupants(room domain.RoomID) []domain.Occupant {
	occupants := p.rooms[room]
	out := make([]domain.Occupant, 0, len(occupants))
	for _, entry := range occupants {
		out = append(out, entry)
	}
	return out
}

// Connections lists the connection ids currently recorded in the room,
// i.e. the fan-out target set for room broadcasts.
func (p *PresenceRegistry) Connections(room domain.RoomID) []domain.ConnectionID {
	occupants := p.rooms[room]
	out := make([]domain.ConnectionID, 0, len(occupants))
	for _, entry := range occupants {
		out = append(out, entry.Conn)
	}
	return out
}

func (p *PresenceRegistry) CurrentRoom(conn domain.ConnectionID) (domain.RoomID, bool) {
	loc, ok := p.conns[conn]
	return loc.room, ok
}

// dropEntry deletes the user's entry from the room only while it is still
// owned by the given connection, and trims empty room sets.
func (p *PresenceRegistry) dropEntry(room domain.RoomID, user domain.UserID, conn domain.ConnectionID) {
	occupants, ok := p.rooms[room]
	if !ok {
		return
	}
	if entry, ok := occupants[user]; ok && entry.Conn == conn {
		delete(occupants, user)
	}
	if len(occupants) == 0 {
		delete(p.rooms, room)
	}
}
