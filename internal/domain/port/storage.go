package port

import (
	"context"
	"time"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// HistoryPort is the append-only price time series. Records are immutable
// once appended; only the age-based retention sweep removes them.
type HistoryPort interface {
	Append(ctx context.Context, rec model.PriceRecord) error
	// QueryRange returns records within the trailing window, newest first.
	// An empty source matches all sources.
	QueryRange(ctx context.Context, source model.SourceKey, since time.Duration, limit int) ([]model.PriceRecord, error)
	SaveArbitrage(ctx context.Context, ev model.AlertEvent) error
	// GetRecentArbitrage returns persisted arbitrage events, newest first.
	GetRecentArbitrage(ctx context.Context, limit int) ([]model.AlertEvent, error)
	DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
