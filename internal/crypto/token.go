package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// refreshTokenBytes is the entropy of an opaque refresh token. 32 bytes
// gives 256 bits, hex-encoded to a 64-character string.
const refreshTokenBytes = 32

// GenerateRefreshToken returns a cryptographically random opaque token
// string suitable for server-side storage.
func GenerateRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating refresh token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
