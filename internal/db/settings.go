package db

import (
	"context"

	"github.com/niu-24-19333-stack/ScamShield/internal/model"
)

func (db *Postgres) InsertDefaultSettings(ctx context.Context, userID string) error {
	query := `
		INSERT INTO user_settings (user_id, updated_at)
		VALUES ($1, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := db.Pool.Exec(ctx, query, userID)
	return err
}

func (db *Postgres) GetSettings(ctx context.Context, userID string) (*model.UserSettings, error) {
	query := `
		SELECT user_id, email_alerts, sms_alerts, auto_block, sensitivity, updated_at
		FROM user_settings
		WHERE user_id = $1
	`
	var s model.UserSettings
	err := db.Pool.QueryRow(ctx, query, userID).Scan(
		&s.UserID,
		&s.EmailAlerts,
		&s.SMSAlerts,
		&s.AutoBlock,
		&s.Sensitivity,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (db *Postgres) SaveSettings(ctx context.Context, s *model.UserSettings) error {
	query := `
		INSERT INTO user_settings (user_id, email_alerts, sms_alerts, auto_block, sensitivity, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET email_alerts = EXCLUDED.email_alerts,
			sms_alerts = EXCLUDED.sms_alerts,
			auto_block = EXCLUDED.auto_block,
			sensitivity = EXCLUDED.sensitivity,
			updated_at = NOW()
	`
	_, err := db.Pool.Exec(ctx, query, s.UserID, s.EmailAlerts, s.SMSAlerts, s.AutoBlock, s.Sensitivity)
	return err
}
