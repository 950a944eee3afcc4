package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/jsorel/chatter/internal/adapters/http"
	"github.com/jsorel/chatter/internal/adapters/ws"
	"github.com/jsorel/chatter/internal/auth"
	"github.com/jsorel/chatter/internal/config"
	"github.com/jsorel/chatter/internal/core"
	storage "github.com/jsorel/chatter/internal/storage/mongo"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	// Human-friendly output for terminal; in production you may want JSON only.
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	client, err := storage.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongo")
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := client.Disconnect(disconnectCtx); err != nil {
			log.Error().Err(err).Msg("mongo disconnect")
		}
	}()

	db := client.Database(cfg.MongoDB)
	messages, err := storage.NewMessageStore(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init message store")
	}
	rooms, err := storage.NewRoomDirectory(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init room directory")
	}
	users, err := storage.NewUserRepo(db)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init user repo")
	}

	tokens := auth.NewTokens(cfg.Secret, cfg.TokenTTL)

	registry := ws.NewRegistry()
	hub := core.NewHub(messages, rooms, registry)
	wsCtrl := ws.NewController(hub, registry, tokens, cfg.ReadLimit, cfg.SendBuffer, cfg.PingPeriod)

	authH := router.NewAuthHandler(users, tokens)
	roomH := router.NewRoomHandler(rooms, messages, cfg.HistoryLimit)

	r := router.SetupRouter(ctx, cfg, tokens, authH, roomH, wsCtrl)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("chatter server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Msg("Server exited gracefully")
}
