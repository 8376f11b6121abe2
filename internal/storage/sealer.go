package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const sealerInfo = "hirehub-console storage v1"

var ErrSealedValueCorrupt = errors.New("sealed value is corrupt")

// Sealer encrypts stored values with XChaCha20-Poly1305.
// A nil *Sealer passes values through unchanged.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives a key from secret. An empty secret returns a nil Sealer.
func NewSealer(secret string) (*Sealer, error) {
	if secret == "" {
		return nil, nil
	}

	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, []byte(secret), nil, []byte(sealerInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, fmt.Errorf("failed to derive storage key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal returns base64(nonce || ciphertext)
func (s *Sealer) Seal(plaintext string) (string, error) {
	if s == nil {
		return plaintext, nil
	}

	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	sealed := s.aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.RawStdEncoding.EncodeToString(sealed), nil
}

// Open reverses Seal
func (s *Sealer) Open(value string) (string, error) {
	if s == nil {
		return value, nil
	}

	raw, err := base64.RawStdEncoding.DecodeString(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValueCorrupt, err)
	}

	if len(raw) < s.aead.NonceSize() {
		return "", ErrSealedValueCorrupt
	}

	nonce, ciphertext := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	plaintext, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValueCorrupt, err)
	}

	return string(plaintext), nil
}
