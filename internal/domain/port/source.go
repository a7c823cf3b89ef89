package port

import (
	"context"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// SourcePort is one upstream price feed. Fetch never panics past its
// boundary: any transport or parse failure comes back as an error and the
// tracker treats the source as absent for that cycle.
type SourcePort interface {
	Key() model.SourceKey
	Class() model.SourceClass
	Fetch(ctx context.Context) (*model.PriceRecord, error)
}
