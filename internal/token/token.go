package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// Generator produces opaque, unguessable tokens: confirmation codes
// and password reset tokens. Callers must not assume any structure
// beyond the requested length and URL-safety.
type Generator interface {
	Generate(length int) (string, error)
}

// Rand generates tokens from crypto/rand, base64url-encoded without
// padding so they embed cleanly in links and emails.
type Rand struct{}

func (Rand) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", length)
	}

	// Unpadded base64 yields 4 characters per 3 bytes; read enough
	// entropy to cover the requested length, then trim.
	buf := make([]byte, (length*3+3)/4+1)
	_, err := rand.Read(buf)
	if err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf)[:length], nil
}
