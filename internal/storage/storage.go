// Package storage persists the console session in a key/value store scoped
// to the origin of the remote API. Every backend guarantees that a value
// written under one origin is invisible under any other.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hirehub/console/internal/config"
)

// Session keys
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"
	KeyUserEmail    = "userEmail"
	KeyUserID       = "userId"
	KeyIsAdmin      = "isAdmin"
)

// SessionKeys lists every key owned by the session
var SessionKeys = []string{
	KeyAccessToken,
	KeyRefreshToken,
	KeyUserEmail,
	KeyUserID,
	KeyIsAdmin,
}

var (
	ErrUnknownBackend = errors.New("unknown storage backend")
	ErrInvalidOrigin  = errors.New("invalid origin")
)

// Store is a durable key/value store bound to a single origin
type Store interface {
	// Get returns the value for key and whether it was present
	Get(ctx context.Context, key string) (string, bool, error)
	// Put writes all values in one operation
	Put(ctx context.Context, values map[string]string) error
	// Delete removes keys; keys that are not present are ignored
	Delete(ctx context.Context, keys ...string) error
}

// Origin normalises an API base URL to scheme://host[:port]
func Origin(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidOrigin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("%w: %q has no scheme or host", ErrInvalidOrigin, baseURL)
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), nil
}

// Open builds the configured backend for origin. The returned close function
// releases backend resources and is always non-nil.
func Open(cfg config.StorageConfig, origin string, logger zerolog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case "memory":
		return NewMemoryStore(), noop, nil

	case "keyring":
		return NewKeyringStore(origin), noop, nil

	case "sqlite":
		sealer, err := NewSealer(cfg.Secret)
		if err != nil {
			return nil, noop, err
		}

		db, err := OpenDatabase(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, noop, err
		}

		closeDB := func() error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		}

		return NewSQLStore(db, origin, sealer, logger), closeDB, nil

	default:
		return nil, noop, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
