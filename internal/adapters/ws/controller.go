package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/domain"
	"github.com/jsorel/chatter/internal/metrics"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller upgrades authenticated HTTP requests into live connections and
// runs their read/write pumps.
type Controller struct {
	hub        Hub
	registry   *Registry
	tokens     *auth.Tokens
	readLimit  int64
	sendBuffer int
	pingPeriod time.Duration
	limiter    *chatRateLimiter
}

// One user gets at most this many chat frames per window across all of
// their connections.
const (
	chatRateLimit  = 20
	chatRateWindow = 10 * time.Second
)

func NewController(hub Hub, registry *Registry, tokens *auth.Tokens, readLimit int64, sendBuffer int, pingPeriod time.Duration) *Controller {
	return &Controller{
		hub:        hub,
		registry:   registry,
		tokens:     tokens,
		readLimit:  readLimit,
		sendBuffer: sendBuffer,
		pingPeriod: pingPeriod,
		limiter:    newChatRateLimiter(chatRateLimit, chatRateWindow),
	}
}

// Handle authenticates the upgrade request, assigns a fresh ConnectionID and
// hands the socket to its pumps. Browsers cannot set headers on websocket
// upgrades, so the token also travels as a query parameter.
func (ctl *Controller) Handle(ctx context.Context, c *gin.Context) {
	raw := c.Query("token")
	if raw == "" {
		if header := c.GetHeader("Authorization"); len(header) > 7 && header[:7] == "Bearer " {
			raw = header[7:]
		}
	}
	who, err := ctl.tokens.Verify(raw)
	if err != nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	sock, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("upgrade failed")
		return
	}
	sock.SetReadLimit(ctl.readLimit)

	id := domain.ConnectionID(uuid.NewString())
	cn := newConn(sock, ctl.sendBuffer)
	ctl.registry.add(id, cn)
	metrics.ActiveConnections.Inc()
	log.Info().Str("module", "ws").Str("conn", string(id)).Str("user", string(who.UserID)).Msg("connection open")

	connCtx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		cn.writePump(connCtx, ctl.pingPeriod)
	}()
	go ctl.readPump(connCtx, cancel, id, who, cn)
}

func (ctl *Controller) readPump(ctx context.Context, cancel context.CancelFunc, id domain.ConnectionID, who auth.Identity, cn *conn) {
	defer func() {
		cancel()
		ctl.hub.OnDisconnect(id)
		ctl.registry.remove(id)
		cn.Close()
		metrics.ActiveConnections.Dec()
		log.Info().Str("module", "ws").Str("conn", string(id)).Msg("connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := cn.sock.ReadMessage()
			if err != nil {
				return
			}
			dispatch(ctx, ctl.hub, cn, ctl.limiter, id, who, data)
		}
	}
}
