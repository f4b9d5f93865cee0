package db

import (
	"context"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

// SaveAPIKey replaces the user's key. One key per user; generating a new one
// invalidates the old one.
func (db *Postgres) SaveAPIKey(ctx context.Context, key *model.APIKey) error {
	query := `
		INSERT INTO api_keys (user_id, key_hash, prefix, status, created_at, last_used)
		VALUES ($1, $2, $3, $4, NOW(), NULL)
		ON CONFLICT (user_id) DO UPDATE
		SET key_hash = EXCLUDED.key_hash,
			prefix = EXCLUDED.prefix,
			status = EXCLUDED.status,
			created_at = NOW(),
			last_used = NULL
	`
	_, err := db.Pool.Exec(ctx, query, key.UserID, key.KeyHash, key.Prefix, key.Status)
	return err
}

func (db *Postgres) GetAPIKey(ctx context.Context, userID string) (*model.APIKey, error) {
	query := `
		SELECT user_id, key_hash, prefix, status, created_at, last_used
		FROM api_keys
		WHERE user_id = $1
	`
	var key model.APIKey
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&key.UserID,
		&key.KeyHash,
		&key.Prefix,
		&key.Status,
		&key.CreatedAt,
		&key.LastUsed,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

func (db *Postgres) RevokeAPIKey(ctx context.Context, userID string) error {
	query := `UPDATE api_keys SET status = 'revoked' WHERE user_id = $1`
	_, err := db.Pool.Exec(ctx, query, userID)
	return err
}
