// Package secret seals credentials before they are written to the database.
package secret

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const prefix = "sealed:v1:"

var (
	ErrInvalidKey = errors.New("secret: key must be 32 bytes, base64 encoded")
	ErrMalformed  = errors.New("secret: malformed sealed value")
)

// Sealer encrypts values with XChaCha20-Poly1305. A nil *Sealer passes values
// through unchanged, which is what an unset SECRET_KEY means.
type Sealer struct {
	key []byte
}

// NewSealer returns nil, nil for an empty key.
func NewSealer(b64key string) (*Sealer, error) {
	if b64key == "" {
		return nil, nil
	}
	key, err := base64.StdEncoding.DecodeString(b64key)
	if err != nil || len(key) != chacha20poly1305.KeySize {
		return nil, ErrInvalidKey
	}
	return &Sealer{key: key}, nil
}

// GenerateKey returns a fresh base64 key suitable for SECRET_KEY.
func GenerateKey() (string, error) {
	k := make([]byte, chacha20poly1305.KeySize)
	if _, err := rand.Read(k); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(k), nil
}

func (s *Sealer) Seal(plaintext string) (string, error) {
	if s == nil || IsSealed(plaintext) {
		return plaintext, nil
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	out := aead.Seal(nonce, nonce, []byte(plaintext), nil)
	return prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Unsealed input is returned as is so rows written before
// a key was configured keep working.
func (s *Sealer) Open(value string) (string, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if s == nil {
		return "", fmt.Errorf("secret: value is sealed but no key is configured")
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(value, prefix))
	if err != nil {
		return "", ErrMalformed
	}
	aead, err := chacha20poly1305.NewX(s.key)
	if err != nil {
		return "", err
	}
	if len(raw) < aead.NonceSize() {
		return "", ErrMalformed
	}
	pt, err := aead.Open(nil, raw[:aead.NonceSize()], raw[aead.NonceSize():], nil)
	if err != nil {
		return "", fmt.Errorf("secret: open: %w", err)
	}
	return string(pt), nil
}

func IsSealed(v string) bool { return strings.HasPrefix(v, prefix) }
