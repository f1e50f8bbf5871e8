package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if getEnv("LOG_PRETTY", "") != "" {
		zlog.Logger = zlog.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	config, err := loadConfig(getEnv("CONFIG_PATH", "config.yaml"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := setupDatabase(ctx)
	if err != nil {
		log.Fatalf("Failed to setup database: %v", err)
	}
	defer pool.Close()

	services, err := setupServices(ctx, pool, config.Rules())
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}
	defer services.Shutdown()

	if err := services.OutboxWorker.Start(ctx); err != nil {
		log.Fatalf("Failed to start outbox worker: %v", err)
	}

	go func() {
		if err := services.Gateway.Start(ctx); err != nil {
			zlog.Error().Err(err).Msg("auction gateway failed")
		}
	}()

	server := setupServer(services)
	go func() {
		zlog.Info().Str("addr", server.Addr).Msg("auction server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	zlog.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error().Err(err).Msg("server shutdown failed")
	}
}
