package qrcodes

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// generateToken returns a 128-bit random token as 32 hex characters. The
// unique index on qr_codes.token backstops the vanishing collision odds.
func generateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating qr token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
