package port

import (
	"context"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// NotifierPort fans alert events out to subscribers. Delivery is
// best-effort: a failed send is logged by the caller, never retried.
type NotifierPort interface {
	// SendAlert delivers to the configured broadcast chat.
	SendAlert(ctx context.Context, ev model.AlertEvent) error
	// SendAlertTo delivers to one subscribed user's chat.
	SendAlertTo(ctx context.Context, chatID int64, ev model.AlertEvent) error
}
