package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/application/service"
	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

// PriceUseCase is the read path for API consumers. The poller process
// publishes each cycle's snapshot to the shared cache; reading that first
// keeps API traffic from multiplying upstream load. On a miss the tracker
// aggregates locally.
type PriceUseCase struct {
	tracker *service.Tracker
	cache   port.SnapshotCachePort
	history port.HistoryPort
	logger  *zap.Logger
}

func NewPriceUseCase(tracker *service.Tracker, cache port.SnapshotCachePort, history port.HistoryPort, logger *zap.Logger) *PriceUseCase {
	return &PriceUseCase{
		tracker: tracker,
		cache:   cache,
		history: history,
		logger:  logger,
	}
}

func (uc *PriceUseCase) GetPrices(ctx context.Context) (model.Snapshot, error) {
	if uc.cache != nil {
		snap, err := uc.cache.GetSnapshot(ctx)
		if err != nil {
			uc.logger.Warn("snapshot cache read failed", zap.Error(err))
		} else if snap != nil && !snap.Empty() {
			return *snap, nil
		}
	}

	return uc.tracker.GetAllPrices(ctx)
}

func (uc *PriceUseCase) GetStats(ctx context.Context) (model.Stats, error) {
	return uc.tracker.Get24hStats(ctx)
}

// GetHistory reads the persisted time series, newest first. An empty
// source matches all sources.
func (uc *PriceUseCase) GetHistory(ctx context.Context, source model.SourceKey, window time.Duration, limit int) ([]model.PriceRecord, error) {
	return uc.history.QueryRange(ctx, source, window, limit)
}

// GetArbitrage reads recently persisted arbitrage events, newest first.
func (uc *PriceUseCase) GetArbitrage(ctx context.Context, limit int) ([]model.AlertEvent, error) {
	return uc.history.GetRecentArbitrage(ctx, limit)
}
