package db

import (
	"context"
	"time"
)

// PutBlacklistedToken records a token hash until the token's own expiry.
// ON CONFLICT DO NOTHING makes concurrent logouts with the same token
// idempotent.
func (db *Postgres) PutBlacklistedToken(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	query := `
		INSERT INTO token_blacklist (token_hash, expires_at, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (token_hash) DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, tokenHash, expiresAt)
	return err
}

// BlacklistedTokenExists reports whether an unexpired entry exists. Expired
// rows are ignored here so correctness never depends on the purge having run.
func (db *Postgres) BlacklistedTokenExists(ctx context.Context, tokenHash string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM token_blacklist
			WHERE token_hash = $1 AND expires_at > NOW()
		)
	`
	var exists bool
	if err := db.Pool.QueryRow(ctx, query, tokenHash).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// PurgeExpiredBlacklistEntries deletes rows whose token would already be
// rejected by the expiry check alone.
func (db *Postgres) PurgeExpiredBlacklistEntries(ctx context.Context) (int64, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM token_blacklist WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
