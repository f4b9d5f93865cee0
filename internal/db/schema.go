package db

import "context"

// EnsureSchema creates all tables on startup. The unique index on
// users.email is what makes concurrent duplicate registrations safe; the
// service layer only surfaces the violation.
func (db *Postgres) EnsureSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			full_name TEXT NOT NULL DEFAULT '',
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'user',
			provider TEXT NOT NULL DEFAULT 'local',
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			verification_token TEXT,
			verification_token_expires TIMESTAMPTZ,
			reset_token TEXT,
			reset_token_expires TIMESTAMPTZ,
			last_login TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS users_reset_token_idx ON users(reset_token) WHERE reset_token IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS users_verification_token_idx ON users(verification_token) WHERE verification_token IS NOT NULL`,
		`
		CREATE TABLE IF NOT EXISTS token_blacklist (
			token_hash TEXT PRIMARY KEY,
			expires_at TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS token_blacklist_expires_at_idx ON token_blacklist(expires_at)`,
		`
		CREATE TABLE IF NOT EXISTS user_settings (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			email_alerts BOOLEAN NOT NULL DEFAULT TRUE,
			sms_alerts BOOLEAN NOT NULL DEFAULT FALSE,
			auto_block BOOLEAN NOT NULL DEFAULT TRUE,
			sensitivity TEXT NOT NULL DEFAULT 'medium',
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS subscriptions (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			plan_id TEXT NOT NULL DEFAULT 'free',
			plan_tier TEXT NOT NULL DEFAULT 'free',
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`
		CREATE TABLE IF NOT EXISTS api_keys (
			user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
			key_hash TEXT NOT NULL,
			prefix TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'active',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_used TIMESTAMPTZ
		)
		`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}
