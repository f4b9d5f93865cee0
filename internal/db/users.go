package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

const userColumns = `id, email, password_hash, full_name, phone, role, provider,
	is_active, is_verified, verification_token, verification_token_expires,
	reset_token, reset_token_expires, last_login, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FullName,
		&user.Phone,
		&user.Role,
		&user.Provider,
		&user.IsActive,
		&user.IsVerified,
		&user.VerificationToken,
		&user.VerificationTokenExpires,
		&user.ResetToken,
		&user.ResetTokenExpires,
		&user.LastLogin,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Postgres) InsertUser(ctx context.Context, user *model.User) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, password_hash, full_name, phone, role, provider,
			is_active, is_verified, verification_token, verification_token_expires,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Role,
		user.Provider,
		user.IsActive,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationTokenExpires,
	)
	return scanUser(row)
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

func (db *Postgres) GetUserByResetToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE reset_token = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, token))
}

func (db *Postgres) GetUserByVerificationToken(ctx context.Context, token string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, token))
}

// SaveUser writes every mutable column back by id. Callers mutate the model
// and save; clearing a token field means writing NULL.
func (db *Postgres) SaveUser(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET email = $2,
			password_hash = $3,
			full_name = $4,
			phone = $5,
			role = $6,
			provider = $7,
			is_active = $8,
			is_verified = $9,
			verification_token = $10,
			verification_token_expires = $11,
			reset_token = $12,
			reset_token_expires = $13,
			last_login = $14,
			updated_at = NOW()
		WHERE id = $1
	`
	_, err := db.Pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.FullName,
		user.Phone,
		user.Role,
		user.Provider,
		user.IsActive,
		user.IsVerified,
		user.VerificationToken,
		user.VerificationTokenExpires,
		user.ResetToken,
		user.ResetTokenExpires,
		user.LastLogin,
	)
	return err
}

func (db *Postgres) TouchLastLogin(ctx context.Context, userID string, at time.Time) error {
	query := `UPDATE users SET last_login = $2, updated_at = NOW() WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, userID, at)
	return err
}

func (db *Postgres) DeactivateUser(ctx context.Context, userID string) error {
	query := `UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`
	_, err := db.Pool.Exec(ctx, query, userID)
	return err
}

func IsNoRows(err error) bool {
	return err == pgx.ErrNoRows
}
