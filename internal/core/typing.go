package core

import (
	"sort"

	"github.com/jsorel/chatter/internal/domain"
)

// TypingAggregator keeps the set of display names currently composing in
// each room. Membership is driven entirely by explicit start/stop events;
// there are no timers here (idle expiry is the client's job). Not safe for
// concurrent use; the Hub serializes all access.
type TypingAggregator struct {
	rooms map[domain.RoomID]map[string]struct{}
}

func NewTypingAggregator() *TypingAggregator {
	return &TypingAggregator{rooms: make(map[domain.RoomID]map[string]struct{})}
}

// SetTyping adds or removes username from the room's typing set and reports
// whether the set actually changed, so callers can skip redundant fan-out
// on repeated "still typing" signals.
func (t *TypingAggregator) SetTyping(room domain.RoomID, username string, isTyping bool) bool {
	if !isTyping {
		return t.Clear(room, username)
	}
	names, ok := t.rooms[room]
	if !ok {
		names = make(map[string]struct{})
		t.rooms[room] = names
	}
	if _, ok := names[username]; ok {
		return false
	}
	names[username] = struct{}{}
	return true
}

// Clear removes username from the room's typing set, used on leave and
// disconnect. Reports whether the name was present.
func (t *TypingAggregator) Clear(room domain.RoomID, username string) bool {
	names, ok := t.rooms[room]
	if !ok {
		return false
	}
	if _, ok := names[username]; !ok {
		return false
	}
	delete(names, username)
	if len(names) == 0 {
		delete(t.rooms, room)
	}
	return true
}

// CurrentlyTyping returns the room's typing set sorted by name, so repeated
// snapshots of the same state marshal identically.
func (t *TypingAggregator) CurrentlyTyping(room domain.RoomID) []string {
	names := t.rooms[room]
	out := make([]string, 0, len(names))
	for name := range names {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
