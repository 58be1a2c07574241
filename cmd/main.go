package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/pholguinc/api-streaming/internal/cache"
	"github.com/pholguinc/api-streaming/internal/config"
	"github.com/pholguinc/api-streaming/internal/directory"
	"github.com/pholguinc/api-streaming/internal/domain"
	"github.com/pholguinc/api-streaming/internal/events"
	"github.com/pholguinc/api-streaming/internal/handler"
	"github.com/pholguinc/api-streaming/internal/hub"
	"github.com/pholguinc/api-streaming/internal/registry"
	"github.com/pholguinc/api-streaming/internal/service"
	"github.com/pholguinc/api-streaming/pkg/database"
	"github.com/pholguinc/api-streaming/pkg/jwt"
	"github.com/pholguinc/api-streaming/pkg/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log)
	l := log.L()

	l.Info().Str("host", cfg.Server.Host).Int("port", cfg.Server.Port).Msg("starting coordinator")

	// Stream directory
	db, err := database.New(&cfg.Database)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.AutoMigrate(db, &domain.StreamModel{}); err != nil {
		l.Fatal().Err(err).Msg("failed to migrate streams table")
	}

	var dir directory.StreamDirectory = directory.NewGormStreamDirectory(db)

	if cfg.Redis.Enabled {
		streamCache, err := cache.NewRedisStreamCache(cfg.Redis)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer streamCache.Close()
		dir = directory.NewCachedStreamDirectory(dir, streamCache, cfg.Redis.CacheTTL)
		l.Info().Str("address", cfg.Redis.Address).Msg("directory cache enabled")
	}

	// Lifecycle events
	var producer events.Producer = events.NewNoopProducer()
	if cfg.Kafka.Enabled {
		producer, err = events.NewConfluentProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic, cfg.Kafka.Partitions)
		if err != nil {
			l.Fatal().Err(err).Msg("failed to create kafka producer")
		}
		l.Info().Str("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("lifecycle events enabled")
	}
	defer producer.Close()

	// Coordinator state
	wsHub := hub.NewHub()
	conns := registry.NewConnections()
	streamers := registry.NewStreamers()

	presenceSvc := service.NewPresenceService(wsHub, conns, streamers, dir, producer, service.Config{
		BroadcastDebounce: cfg.Presence.BroadcastDebounce,
		ReconcileInterval: cfg.Presence.ReconcileInterval,
	})
	chatSvc := service.NewChatService(wsHub, conns)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := presenceSvc.Start(ctx); err != nil {
		l.Fatal().Err(err).Msg("failed to start presence coordinator")
	}
	defer presenceSvc.Stop()

	// Identity verification
	verifier := jwt.NewManager(cfg.Auth.Secret, cfg.Auth.Issuer, 24*time.Hour)

	// Routes
	router := mux.NewRouter()
	wsHandler := handler.NewWSHandler(wsHub, presenceSvc, chatSvc, verifier, cfg.WebSocket)
	wsHandler.RegisterRoutes(router)
	httpHandler := handler.NewHTTPHandler(presenceSvc, conns)
	httpHandler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		l.Info().Str("addr", server.Addr).Msg("coordinator listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			l.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info().Msg("shutting down coordinator")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		l.Warn().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("coordinator stopped")
}
