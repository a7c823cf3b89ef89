package port

import (
	"context"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// SubscriptionPort stores per-user alert preferences. A user unknown to
// the store reads back as disabled with the default threshold.
type SubscriptionPort interface {
	SetAlertsEnabled(ctx context.Context, userID int64, enabled bool) error
	SetAlertThreshold(ctx context.Context, userID int64, threshold float64) error
	GetAlertSettings(ctx context.Context, userID int64) (model.AlertSettings, error)
	// ListAlertSubscribers returns enabled subscriptions only.
	ListAlertSubscribers(ctx context.Context) ([]model.AlertSettings, error)
}

// PortfolioPort stores each user's HOLDER holding. Amounts never go
// negative: removing more than is held clears the holding.
type PortfolioPort interface {
	AddHolding(ctx context.Context, userID int64, amount float64) error
	RemoveHolding(ctx context.Context, userID int64, amount float64) error
	GetHolding(ctx context.Context, userID int64) (float64, error)
}
