package port

import (
	"context"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// SnapshotCachePort shares the latest snapshot between processes: the
// polling process publishes each cycle, API consumers read cache-first.
type SnapshotCachePort interface {
	PublishSnapshot(ctx context.Context, snap model.Snapshot) error
	// GetSnapshot returns nil without error on a cache miss.
	GetSnapshot(ctx context.Context) (*model.Snapshot, error)
	Ping(ctx context.Context) error
	Close() error
}
