// Package ws is the websocket transport adapter: it upgrades connections,
// decodes inbound frames into hub calls, and carries hub events back out.
// It owns every transport resource; the hub only ever sees ConnectionIDs.
package ws

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var ErrBackpressure = errors.New("backpressure")

const writeWait = 5 * time.Second

// conn wraps one websocket with a buffered outbound queue. TrySend never
// blocks; a full queue means the peer is too slow and the frame is dropped.
type conn struct {
	sock *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func newConn(sock *websocket.Conn, sendBuffer int) *conn {
	return &conn{
		sock: sock,
		send: make(chan []byte, sendBuffer),
	}
}

func (c *conn) TrySend(data []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- data:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *conn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.sock.Close()
	c.mu.Unlock()
}

// writePump drains the outbound queue onto the wire and keeps the
// connection alive with periodic pings.
func (c *conn) writePump(ctx context.Context, pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case data, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.sock.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump set deadline")
				return
			}
			if err := c.sock.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "ws").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			_ = c.sock.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.sock.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
