package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/jsorel/chatter/internal/adapters/ws"
	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/config"
)

func SetupRouter(ctx context.Context, cfg *config.Config, tokens *auth.Tokens,
	authH *AuthHandler, roomH *RoomHandler, wsCtrl *ws.Controller) *gin.Engine {
	if cfg.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	if cfg.Mode == "debug" {
		r.Use(gin.Logger())
	}
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")

	api.POST("/auth/register", authH.Register)
	api.POST("/auth/login", authH.Login)

	rooms := api.Group("/rooms", RequireAuth(tokens))
	rooms.GET("", roomH.List)
	rooms.POST("", roomH.Create)
	rooms.GET("/:id/messages", roomH.Messages)

	// The socket endpoint verifies its own token: browsers cannot set
	// headers on the upgrade request, so it also accepts ?token=.
	api.GET("/ws", func(c *gin.Context) {
		wsCtrl.Handle(ctx, c)
	})

	log.Info().Str("module", "adapters.http").Msg("router setup")

	return r
}
