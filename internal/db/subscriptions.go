package db

import (
	"context"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

func (db *Postgres) InsertDefaultSubscription(ctx context.Context, userID string) error {
	query := `
		INSERT INTO subscriptions (user_id, plan_id, plan_tier, status, created_at, updated_at)
		VALUES ($1, 'free', 'free', 'active', NOW(), NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, userID)
	return err
}

func (db *Postgres) GetSubscription(ctx context.Context, userID string) (*model.Subscription, error) {
	query := `
		SELECT user_id, plan_id, plan_tier, status, created_at, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`
	var sub model.Subscription
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&sub.UserID,
		&sub.PlanID,
		&sub.PlanTier,
		&sub.Status,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
