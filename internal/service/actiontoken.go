package service

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateActionToken returns a 256-bit random hex string used as a
// single-use reset or verification token. The value itself is opaque; all
// semantics (purpose, expiry, one-shot consumption) live on the user record.
func GenerateActionToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
