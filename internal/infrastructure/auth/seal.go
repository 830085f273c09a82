package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealKeyInfo = "ledger-connector/credential-seal/v1"
	nonceSize   = 24
	keySize     = 32
)

// ErrSealBroken is returned when a sealed value fails to open
var ErrSealBroken = errors.New("sealed credential cannot be opened")

// Sealer encrypts the ledger password carried inside a token. The key is
// derived from the signing secret, so rotating the secret also invalidates
// every sealed password.
type Sealer struct {
	key [keySize]byte
}

// NewSealer derives the secretbox key from secret with HKDF-SHA256
func NewSealer(secret []byte) (*Sealer, error) {
	if len(secret) == 0 {
		return nil, errors.New("sealer: secret is required")
	}
	s := &Sealer{}
	r := hkdf.New(sha256.New, secret, nil, []byte(sealKeyInfo))
	if _, err := io.ReadFull(r, s.key[:]); err != nil {
		return nil, fmt.Errorf("sealer: derive key: %w", err)
	}
	return s, nil
}

// Seal encrypts plaintext under a random nonce. The nonce is prepended.
func (s *Sealer) Seal(plaintext string) (string, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", fmt.Errorf("sealer: nonce: %w", err)
	}
	box := secretbox.Seal(nonce[:], []byte(plaintext), &nonce, &s.key)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

// Open reverses Seal
func (s *Sealer) Open(sealed string) (string, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil || len(box) < nonceSize+secretbox.Overhead {
		return "", ErrSealBroken
	}
	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &s.key)
	if !ok {
		return "", ErrSealBroken
	}
	return string(plain), nil
}
