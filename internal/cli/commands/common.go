package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/hirehub/console/internal/api"
	cliconfig "github.com/hirehub/console/internal/cli/config"
	"github.com/hirehub/console/internal/cli/originselect"
	"github.com/hirehub/console/internal/config"
	"github.com/hirehub/console/internal/console"
	"github.com/hirehub/console/internal/logger"
)

// Options holds flags shared by every command
type Options struct {
	Origin string
}

var errNotAuthenticated = errors.New("not authenticated. Please run 'console login' first")

// loadConfig reads the environment and points the API at the resolved origin
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	project, err := cliconfig.LoadFromCurrentDir()
	if err != nil {
		if !errors.Is(err, cliconfig.ErrNotFound) {
			return nil, err
		}
		project = nil
	}

	baseURL, err := originselect.ResolveOrigin(project, opts.Origin, cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.API.BaseURL = baseURL

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openConsole builds the console for the resolved origin. Logs go to stderr
// so command output stays clean; only warnings show unless LOG_LEVEL is set.
func openConsole(opts *Options) (*console.Console, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if os.Getenv("LOG_LEVEL") != "" {
		level = cfg.Logging.Level
	}
	logger.InitWithWriter(level, "console", os.Stderr)

	c, err := console.Open(cfg, logger.Component("cli"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}
	return c, nil
}

// requireSession fails fast when no access token is stored
func requireSession(c *console.Console) error {
	if !c.Session.Snapshot().IsAuthenticated {
		return errNotAuthenticated
	}
	return nil
}

// commandError maps transport errors to CLI messages
func commandError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, api.ErrUnauthorized):
		return fmt.Errorf("%w. Please run 'console login' again", err)
	case errors.Is(err, api.ErrTransport):
		return fmt.Errorf("connection error. Please try again: %w", err)
	}
	return err
}
