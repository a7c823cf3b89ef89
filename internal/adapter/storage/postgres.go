package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// PostgresAdapter is the historical store: an append-only price time series
// plus the arbitrage event log. Concurrent append vs. range-read safety is
// delegated to postgres.
type PostgresAdapter struct {
	db *sql.DB
}

func NewPostgresAdapter(connStr string) (*PostgresAdapter, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresAdapter{db: db}, nil
}

func (a *PostgresAdapter) InitSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS price_history (
		id SERIAL PRIMARY KEY,
		source VARCHAR(50) NOT NULL,
		pair VARCHAR(30) NOT NULL,
		price DOUBLE PRECISION NOT NULL,
		price_usd DOUBLE PRECISION,
		volume_24h DOUBLE PRECISION NOT NULL DEFAULT 0,
		liquidity_usd DOUBLE PRECISION NOT NULL DEFAULT 0,
		high_24h DOUBLE PRECISION NOT NULL DEFAULT 0,
		low_24h DOUBLE PRECISION NOT NULL DEFAULT 0,
		change_24h DOUBLE PRECISION NOT NULL DEFAULT 0,
		observed_at TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS idx_price_history_source_observed ON price_history(source, observed_at);

	CREATE TABLE IF NOT EXISTS arbitrage_history (
		id SERIAL PRIMARY KEY,
		buy_on VARCHAR(50) NOT NULL,
		sell_on VARCHAR(50) NOT NULL,
		buy_price DOUBLE PRECISION NOT NULL,
		sell_price DOUBLE PRECISION NOT NULL,
		profit_percent DOUBLE PRECISION NOT NULL,
		detected_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_alerts (
		user_id BIGINT PRIMARY KEY,
		enabled BOOLEAN NOT NULL DEFAULT TRUE,
		threshold DOUBLE PRECISION NOT NULL DEFAULT 5.0,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS portfolio (
		user_id BIGINT PRIMARY KEY,
		amount DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	_, err := a.db.ExecContext(ctx, query)
	return err
}

func (a *PostgresAdapter) Append(ctx context.Context, rec model.PriceRecord) error {
	priceUSD := sql.NullFloat64{}
	if rec.PriceUSD != nil {
		priceUSD = sql.NullFloat64{Float64: *rec.PriceUSD, Valid: true}
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO price_history
			(source, pair, price, price_usd, volume_24h, liquidity_usd, high_24h, low_24h, change_24h, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.Source, rec.Pair, rec.Price, priceUSD,
		rec.Volume24h, rec.LiquidityUSD,
		rec.High24h, rec.Low24h, rec.Change24h,
		rec.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to append price record: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) QueryRange(ctx context.Context, source model.SourceKey, since time.Duration, limit int) ([]model.PriceRecord, error) {
	query := `
		SELECT source, pair, price, price_usd, volume_24h, liquidity_usd, high_24h, low_24h, change_24h, observed_at
		FROM price_history
		WHERE observed_at >= $1`
	args := []any{time.Now().UTC().Add(-since)}

	if source != "" {
		query += ` AND source = $2`
		args = append(args, source)
	}
	query += fmt.Sprintf(` ORDER BY observed_at DESC LIMIT %d`, limit)

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query price history: %w", err)
	}
	defer rows.Close()

	var out []model.PriceRecord
	for rows.Next() {
		var rec model.PriceRecord
		var priceUSD sql.NullFloat64
		if err := rows.Scan(
			&rec.Source, &rec.Pair, &rec.Price, &priceUSD,
			&rec.Volume24h, &rec.LiquidityUSD,
			&rec.High24h, &rec.Low24h, &rec.Change24h,
			&rec.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan price record: %w", err)
		}
		if priceUSD.Valid {
			v := priceUSD.Float64
			rec.PriceUSD = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (a *PostgresAdapter) SaveArbitrage(ctx context.Context, ev model.AlertEvent) error {
	_, err := a.db.ExecContext(ctx, `
		INSERT INTO arbitrage_history (buy_on, sell_on, buy_price, sell_price, profit_percent, detected_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.BuyOn, ev.SellOn, ev.BuyPrice, ev.SellPrice, ev.ProfitPercent, ev.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to save arbitrage event: %w", err)
	}
	return nil
}

func (a *PostgresAdapter) GetRecentArbitrage(ctx context.Context, limit int) ([]model.AlertEvent, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT buy_on, sell_on, buy_price, sell_price, profit_percent, detected_at
		FROM arbitrage_history
		ORDER BY detected_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query arbitrage history: %w", err)
	}
	defer rows.Close()

	var out []model.AlertEvent
	for rows.Next() {
		ev := model.AlertEvent{Kind: model.AlertArbitrage}
		if err := rows.Scan(
			&ev.BuyOn, &ev.SellOn,
			&ev.BuyPrice, &ev.SellPrice, &ev.ProfitPercent,
			&ev.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan arbitrage event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (a *PostgresAdapter) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	res, err := a.db.ExecContext(ctx,
		`DELETE FROM price_history WHERE created_at < $1`,
		time.Now().UTC().Add(-age),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old price records: %w", err)
	}
	return res.RowsAffected()
}

func (a *PostgresAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *PostgresAdapter) Close() error {
	return a.db.Close()
}
