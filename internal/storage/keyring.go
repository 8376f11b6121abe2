package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "hirehub-console"

// KeyringStore persists values in the OS keychain/credential manager
type KeyringStore struct {
	origin string
}

// NewKeyringStore creates a keyring-backed store for origin
func NewKeyringStore(origin string) *KeyringStore {
	return &KeyringStore{origin: origin}
}

// account returns a unique keyring account per origin and key
func (k *KeyringStore) account(key string) string {
	return fmt.Sprintf("%s/%s", k.origin, key)
}

func (k *KeyringStore) Get(_ context.Context, key string) (string, bool, error) {
	value, err := keyring.Get(keyringService, k.account(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to load %s: %w", key, err)
	}
	return value, true, nil
}

// Put writes keys one by one; the keyring has no transactions
func (k *KeyringStore) Put(_ context.Context, values map[string]string) error {
	for key, value := range values {
		if err := keyring.Set(keyringService, k.account(key), value); err != nil {
			return fmt.Errorf("failed to save %s: %w", key, err)
		}
	}
	return nil
}

func (k *KeyringStore) Delete(_ context.Context, keys ...string) error {
	var errs []error
	for _, key := range keys {
		if err := keyring.Delete(keyringService, k.account(key)); err != nil {
			if errors.Is(err, keyring.ErrNotFound) {
				continue // Already deleted
			}
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
