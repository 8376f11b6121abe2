package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hirehub/console/internal/models"
)

// SQLStore keeps entries in the storage_entries table
type SQLStore struct {
	db     *gorm.DB
	origin string
	sealer *Sealer
	logger zerolog.Logger
}

// NewSQLStore creates a store for origin. sealer may be nil.
func NewSQLStore(db *gorm.DB, origin string, sealer *Sealer, logger zerolog.Logger) *SQLStore {
	return &SQLStore{
		db:     db,
		origin: origin,
		sealer: sealer,
		logger: logger.With().Str("component", "sql_store").Str("origin", origin).Logger(),
	}
}

func (s *SQLStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry models.StorageEntry
	err := s.db.WithContext(ctx).
		Where("origin = ? AND entry_key = ?", s.origin, key).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}

	value, err := s.sealer.Open(entry.Value)
	if err != nil {
		// A value sealed under another secret is unusable; treat it as absent
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to open stored value")
		return "", false, nil
	}

	return value, true, nil
}

func (s *SQLStore) Put(ctx context.Context, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			sealed, err := s.sealer.Seal(values[key])
			if err != nil {
				return fmt.Errorf("failed to seal %s: %w", key, err)
			}

			entry := models.StorageEntry{
				Origin: s.origin,
				Key:    key,
				Value:  sealed,
			}

			err = tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "origin"}, {Name: "entry_key"}},
				DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
			}).Create(&entry).Error
			if err != nil {
				return fmt.Errorf("failed to write %s: %w", key, err)
			}
		}
		return nil
	})
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	err := s.db.WithContext(ctx).
		Where("origin = ? AND entry_key IN ?", s.origin, keys).
		Delete(&models.StorageEntry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete keys: %w", err)
	}
	return nil
}
