package main

import (
	"fmt"
	"os"

	"github.com/hirehub/console/internal/config"
	"github.com/hirehub/console/internal/console"
	"github.com/hirehub/console/internal/logger"
	"github.com/hirehub/console/internal/server"
)

var version = "dev" // Will be set during build with -ldflags

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.GetLogger()

	c, err := console.Open(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open console")
	}

	// Create server; this starts verifying the stored session
	srv, err := server.New(c, log, version)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	log.Info().
		Str("version", version).
		Str("origin", c.Origin).
		Str("storage", cfg.Storage.Backend).
		Msg("Starting HireHub console...")

	// Start HTTP server (this blocks)
	if err := srv.Start(); err != nil {
		log.Fatal().Err(err).Msg("Server failed to start")
	}
}
