package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/domain"
)

// Registry is the live connection table and the hub's Broadcaster. The hub
// decides WHO receives an event; the registry only knows HOW to reach them.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]*conn
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnectionID]*conn)}
}

func (r *Registry) add(id domain.ConnectionID, c *conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = c
}

func (r *Registry) remove(id domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Deliver marshals the event once and queues it on every named connection.
// Best-effort: a closed or backpressured connection drops the frame and the
// loop moves on.
func (r *Registry) Deliver(to []domain.ConnectionID, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("deliver marshal")
		return
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range to {
		c, ok := r.conns[id]
		if !ok {
			continue
		}
		if err := c.TrySend(data); err != nil {
			log.Warn().Err(err).Str("module", "ws").Str("conn", string(id)).Msg("dropped frame")
		}
	}
}
