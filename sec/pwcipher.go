package sec

import (
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

// Read https://pkg.go.dev/golang.org/x/crypto/chacha20poly1305

// EncPrefix marks a sealed password value in a properties file
const EncPrefix = "enc:"

var (
	ErrTokenTooShort = errors.New("password token too short")
	ErrTokenMismatch = errors.New("password token does not match the key")
)

// associated data bound into every token
var pwAD = []byte("gw-dbconn/pw/v1")

// PWCipher seals database passwords with XChaCha20-Poly1305.
// Token layout: EncPrefix + base64url(nonce | ciphertext), no padding.
type PWCipher struct {
	aead cipher.AEAD
}

func NewPWCipher(key []byte) (*PWCipher, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", chacha20poly1305.KeySize, len(key))
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &PWCipher{aead: aead}, nil
}

// IsSealed reports whether value carries EncPrefix
func IsSealed(value string) bool {
	return strings.HasPrefix(value, EncPrefix)
}

func (c *PWCipher) Seal(plain string) (string, error) {
	// fresh nonce every time, leave capacity for the ciphertext
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := c.aead.Seal(nonce, nonce, []byte(plain), pwAD)
	return EncPrefix + base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Open accepts the token with or without EncPrefix
func (c *PWCipher) Open(value string) (string, error) {
	data, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(value, EncPrefix))
	if err != nil {
		return "", fmt.Errorf("password token: %w", err)
	}
	nonceSize := c.aead.NonceSize()
	if len(data) < nonceSize+c.aead.Overhead() {
		return "", ErrTokenTooShort
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plain, err := c.aead.Open(nil, nonce, ciphertext, pwAD)
	if err != nil {
		return "", ErrTokenMismatch
	}
	return string(plain), nil
}
