package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/community-publishing-engine/internal/config"
	"github.com/community-publishing-engine/internal/database"
	"github.com/community-publishing-engine/internal/models"
	"github.com/community-publishing-engine/internal/service"
	"github.com/community-publishing-engine/internal/store"
	"github.com/community-publishing-engine/pkg/logger"
)

func main() {
	// Initialize logger
	log := logger.New()
	log.Info().Msg("Starting community publishing engine...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Open the backing store: load, migrate, seed, persist once
	file := database.NewSnapshotFile(cfg.Store.DataFile, log)
	writer := database.NewWriter(file, cfg.Store.WriteQueue, cfg.Store.WriteRetryMax, log)
	st, err := store.Open(file, writer, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}

	// Initialize services
	services := service.NewServices(st, cfg, log)

	// Readiness probe: exercise a read path once before accepting work
	if _, err := services.Feed.Trending(context.Background(), models.Anonymous, 1); err != nil {
		log.Fatal().Err(err).Msg("Engine self-check failed")
	}
	log.Info().Str("data_file", cfg.Store.DataFile).Msg("Engine ready")

	// Wait for shutdown, then flush the final state
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down...")

	if err := st.Close(); err != nil {
		log.Fatal().Err(err).Msg("Final flush failed")
	}

	log.Info().Msg("Engine exited gracefully")
}
