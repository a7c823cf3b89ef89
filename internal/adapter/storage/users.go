package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// Per-user state: alert subscriptions and portfolio holdings. Both tables
// are keyed by the Telegram user id and upserted, one row per user.

func (a *PostgresAdapter) SetAlertsEnabled(ctx context.Context, userID int64, enabled bool) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO user_alerts (user_id, enabled, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET enabled = $2, updated_at = NOW()`,
		userID, enabled,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert subscription: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) SetAlertThreshold(ctx context.Context, userID int64, threshold float64) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO user_alerts (user_id, threshold, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET threshold = $2, updated_at = NOW()`,
		userID, threshold,
	)
	if err != nil {
		return fmt.Errorf("failed to update alert threshold: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) GetAlertSettings(ctx context.Context, userID int64) (model.AlertSettings, error) {
	settings := model.AlertSettings{
		UserID:    userID,
		Threshold: model.DefaultAlertThreshold,
	}

	err := a.db.QueryRowContext(ctx,
		`SELECT enabled, threshold FROM user_alerts WHERE user_id = $1`,
		userID,
	).Scan(&settings.Enabled, &settings.Threshold)
	if errors.Is(err, sql.ErrNoRows) {
		return settings, nil
	}
	if err != nil {
		return model.AlertSettings{}, fmt.Errorf("failed to load alert settings: %w", err)
	}
	return settings, nil
}

func (a *PostgresAdapter) ListAlertSubscribers(ctx context.Context) ([]model.AlertSettings, error) {
	rows, err := a.db.QueryContext(ctx,
		`SELECT user_id, threshold FROM user_alerts WHERE enabled`)
	if err != nil {
		return nil, fmt.Errorf("failed to list alert subscribers: %w", err)
	}
	defer rows.Close()

	var out []model.AlertSettings
	for rows.Next() {
		s := model.AlertSettings{Enabled: true}
		if err := rows.Scan(&s.UserID, &s.Threshold); err != nil {
			return nil, fmt.Errorf("failed to scan alert subscriber: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *PostgresAdapter) AddHolding(ctx context.Context, userID int64, amount float64) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO portfolio (user_id, amount, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET amount = portfolio.amount + $2, updated_at = NOW()`,
		userID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to add holding: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) RemoveHolding(ctx context.Context, userID int64, amount float64) error {
	_, err := a.db.ExecContext(ctx, `
		UPDATE portfolio
		SET amount = GREATEST(amount - $2, 0), updated_at = NOW()
		WHERE user_id = $1`,
		userID, amount,
	)
	if err != nil {
		return fmt.Errorf("failed to remove holding: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) GetHolding(ctx context.Context, userID int64) (float64, error) {
	var amount float64
	err := a.db.QueryRowContext(ctx,
		`SELECT amount FROM portfolio WHERE user_id = $1`,
		userID,
	).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load holding: %w", err)
	}
	return amount, nil
}
