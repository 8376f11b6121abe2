// Package console assembles the pieces shared by the web server and the CLI:
// one API client and one session, backed by durable storage for the API's
// origin.
package console

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hirehub/console/internal/api"
	"github.com/hirehub/console/internal/config"
	"github.com/hirehub/console/internal/session"
	"github.com/hirehub/console/internal/storage"
)

// Console is the composition root
type Console struct {
	Config  *config.Config
	Origin  string
	API     *api.Client
	Session *session.Store

	logger zerolog.Logger
	close  func() error
}

// Open builds a console for cfg.API.BaseURL using the configured storage
// backend. Close must be called to release storage.
func Open(cfg *config.Config, logger zerolog.Logger) (*Console, error) {
	origin, err := storage.Origin(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}

	store, closeStore, err := storage.Open(cfg.Storage, origin, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.Storage.Backend, err)
	}

	c := Assemble(cfg, store, logger)
	c.Origin = origin
	c.close = closeStore
	return c, nil
}

// Assemble wires a client and session over an already-open store
func Assemble(cfg *config.Config, store storage.Store, logger zerolog.Logger) *Console {
	client := api.New(cfg.API.BaseURL,
		api.WithTimeout(cfg.API.Timeout),
		api.WithLogger(logger),
	)

	sess := session.New(client, store, logger)

	c := &Console{
		Config:  cfg,
		API:     client,
		Session: sess,
		logger:  logger.With().Str("component", "console").Logger(),
		close:   func() error { return nil },
	}

	client.SetCredentials(sess)
	client.SetRefresher(sess)
	client.OnUnauthorized(func(ctx context.Context, e api.UnauthorizedEvent) {
		sess.Reject(ctx, e.Token, e.Method+" "+e.Path)
	})

	if origin, err := storage.Origin(cfg.API.BaseURL); err == nil {
		c.Origin = origin
	}

	return c
}

// Close releases the storage backend
func (c *Console) Close() error {
	if err := c.close(); err != nil {
		c.logger.Error().Err(err).Msg("Failed to close storage")
		return err
	}
	return nil
}
