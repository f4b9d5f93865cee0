package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost is tuned so a single hash lands around 100ms on commodity
// hardware, which keeps offline brute force expensive without hurting login
// latency.
const bcryptCost = 12

func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored digest. A
// malformed digest is just a mismatch, never an error the caller has to
// branch on.
func CheckPassword(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
