package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"log"
	"time"
)

// revocationStore is the persistence surface the ledger needs. *db.Postgres
// satisfies it; tests use an in-memory fake.
type revocationStore interface {
	PutBlacklistedToken(ctx context.Context, tokenHash string, expiresAt time.Time) error
	BlacklistedTokenExists(ctx context.Context, tokenHash string) (bool, error)
	PurgeExpiredBlacklistEntries(ctx context.Context) (int64, error)
}

// RevocationLedger records refresh tokens that must be rejected before their
// natural expiry. Tokens are keyed by hash so raw bearer strings never reach
// the database.
type RevocationLedger struct {
	store revocationStore
}

func NewRevocationLedger(store revocationStore) *RevocationLedger {
	return &RevocationLedger{store: store}
}

// Revoke blacklists the token until expiresAt. Revoking an already-expired
// token is a no-op, and duplicate revocations are idempotent at the store.
func (l *RevocationLedger) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if !expiresAt.After(time.Now()) {
		return nil
	}
	return l.store.PutBlacklistedToken(ctx, hashToken(token), expiresAt)
}

func (l *RevocationLedger) IsRevoked(ctx context.Context, token string) (bool, error) {
	return l.store.BlacklistedTokenExists(ctx, hashToken(token))
}

// PurgeExpired drops entries whose token would already fail the expiry check.
func (l *RevocationLedger) PurgeExpired(ctx context.Context) (int64, error) {
	return l.store.PurgeExpiredBlacklistEntries(ctx)
}

// StartPurgeLoop sweeps expired entries on a fixed interval until ctx is
// cancelled. IsRevoked stays correct regardless of when the sweep last ran.
func (l *RevocationLedger) StartPurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := l.PurgeExpired(ctx)
				if err != nil {
					log.Printf("[Blacklist] Purge failed: %v", err)
				} else if n > 0 {
					log.Printf("[Blacklist] Purged %d expired entries", n)
				}
			}
		}
	}()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
