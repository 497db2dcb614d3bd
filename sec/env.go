package sec

import (
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"golang.org/x/crypto/chacha20poly1305"
)

const EnvSecretKey = "GW_DB_SECRET_KEY"

// CipherFromEnv builds a cipher from $GW_DB_SECRET_KEY.
// The key is either 32 raw bytes or their base64 (std or url) encoding.
// Returns nil, nil when the variable is not set.
func CipherFromEnv() (*PWCipher, error) {
	raw := strings.TrimSpace(os.Getenv(EnvSecretKey))
	if raw == "" {
		return nil, nil
	}
	key, err := ParseKey(raw)
	if err != nil {
		return nil, fmt.Errorf("$%s: %w", EnvSecretKey, err)
	}
	return NewPWCipher(key)
}

func ParseKey(s string) ([]byte, error) {
	if len(s) == chacha20poly1305.KeySize {
		return []byte(s), nil
	}
	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawURLEncoding, base64.RawStdEncoding, base64.URLEncoding} {
		if key, err := enc.DecodeString(s); err == nil && len(key) == chacha20poly1305.KeySize {
			return key, nil
		}
	}
	return nil, fmt.Errorf("key must be %d bytes or their base64 encoding", chacha20poly1305.KeySize)
}
