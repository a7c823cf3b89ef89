package service

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

// ErrUnavailable is returned when no source produced a record this cycle.
// Consumers must surface it as "try later", never render zeros as prices.
var ErrUnavailable = errors.New("price data unavailable")

// TrackerConfig carries the policy knobs. TTLs and thresholds are policy,
// not correctness: see configs/config.yaml for the defaults.
type TrackerConfig struct {
	SnapshotTTL        time.Duration
	EnrichWindow       time.Duration
	EnrichLimit        int
	ArbitrageThreshold float64
}

// Tracker is the aggregation engine: it fans out to all source adapters
// concurrently, merges whatever came back into one snapshot, enriches each
// record with 24h statistics from history and memoizes complete snapshots.
//
// One long-lived instance is constructed at process start and handed to
// every consumer; the caches are mutex-guarded process-wide state.
type Tracker struct {
	cfg     TrackerConfig
	sources []port.SourcePort
	history port.HistoryPort
	logger  *zap.Logger
	closers []io.Closer
	clock   func() time.Time

	mu       sync.Mutex
	cached   *model.Snapshot
	cachedAt time.Time

	closeOnce sync.Once
}

func NewTracker(cfg TrackerConfig, sources []port.SourcePort, history port.HistoryPort, logger *zap.Logger, closers ...io.Closer) *Tracker {
	if cfg.EnrichLimit <= 0 {
		cfg.EnrichLimit = 1000
	}
	if cfg.EnrichWindow <= 0 {
		cfg.EnrichWindow = 24 * time.Hour
	}
	return &Tracker{
		cfg:     cfg,
		sources: sources,
		history: history,
		logger:  logger.With(zap.String("component", "tracker")),
		closers: closers,
		clock:   time.Now,
	}
}

// GetAllPrices produces one consistent snapshot. A fresh cached snapshot
// is returned without any network calls; otherwise all adapters are
// invoked concurrently and partial failures simply leave their slot empty.
// Only complete snapshots (>=1 DEX and >=1 CEX) are cached, so a degraded
// view is retried on the next call instead of being memoized.
func (t *Tracker) GetAllPrices(ctx context.Context) (model.Snapshot, error) {
	if snap := t.cachedSnapshot(); snap != nil {
		return *snap, nil
	}

	snap := t.fetchAll(ctx)
	if snap.Empty() {
		return *snap, ErrUnavailable
	}

	t.enrich(ctx, snap)

	if snap.Complete() {
		t.storeSnapshot(*snap)
	}
	return *snap, nil
}

// Get24hStats reshapes the snapshot into display stats and runs the
// designated DEX/CEX comparison.
func (t *Tracker) Get24hStats(ctx context.Context) (model.Stats, error) {
	snap, err := t.GetAllPrices(ctx)
	if err != nil {
		return model.Stats{}, err
	}

	var stats model.Stats
	if snap.DEX != nil {
		stats.DEX = venueStats(snap.DEX)
	}
	if snap.CEX != nil {
		stats.CEX = venueStats(snap.CEX)
	}

	if snap.DEX != nil && snap.CEX != nil {
		dexUSD, dexOK := snap.DEX.USD()
		cexUSD, cexOK := snap.CEX.USD()
		if dexOK && cexOK && dexUSD > 0 {
			diff := (cexUSD - dexUSD) / dexUSD * 100
			stats.Arbitrage = &model.ArbitrageStats{
				DEXPrice:          dexUSD,
				CEXPrice:          cexUSD,
				DifferencePercent: diff,
				Opportunity:       math.Abs(diff) > t.cfg.ArbitrageThreshold,
			}
		}
	}

	return stats, nil
}

// CheckSignificantChanges and CheckArbitrageOpportunity are exposed on the
// tracker for consumers that hold the instance; both delegate to the pure
// detector functions.
func (t *Tracker) CheckSignificantChanges(current model.Snapshot, previous map[model.SourceKey]float64, threshold float64) []model.AlertEvent {
	return CheckSignificantChanges(current, previous, threshold)
}

func (t *Tracker) CheckArbitrageOpportunity(snap model.Snapshot, threshold float64) *model.AlertEvent {
	return CheckArbitrageOpportunity(snap, threshold)
}

// Close releases held network resources. Safe to call repeatedly and even
// if the tracker never fetched anything.
func (t *Tracker) Close() error {
	var err error
	t.closeOnce.Do(func() {
		for _, c := range t.closers {
			if cerr := c.Close(); cerr != nil {
				err = cerr
			}
		}
	})
	return err
}

func (t *Tracker) fetchAll(ctx context.Context) *model.Snapshot {
	var (
		snap model.Snapshot
		mu   sync.Mutex
		wg   sync.WaitGroup
	)

	for _, src := range t.sources {
		wg.Add(1)
		go func(s port.SourcePort) {
			defer wg.Done()

			rec, err := s.Fetch(ctx)
			if err != nil {
				t.logger.Warn("source absent this cycle",
					zap.String("source", string(s.Key())),
					zap.Error(err))
				return
			}
			if rec == nil || rec.Price < 0 {
				t.logger.Warn("source returned unusable record",
					zap.String("source", string(s.Key())))
				return
			}

			mu.Lock()
			snap.Set(s.Class(), rec)
			mu.Unlock()
		}(src)
	}
	wg.Wait()

	return &snap
}

// enrich fills the derived 24h fields from history. History being down is
// non-fatal: the raw prices still flow, the derived fields keep their
// adapter defaults for this cycle.
func (t *Tracker) enrich(ctx context.Context, snap *model.Snapshot) {
	for _, rec := range snap.Records() {
		t.enrichRecord(ctx, rec)
	}
}

func (t *Tracker) enrichRecord(ctx context.Context, rec *model.PriceRecord) {
	hist, err := t.history.QueryRange(ctx, rec.Source, t.cfg.EnrichWindow, t.cfg.EnrichLimit)
	if err != nil {
		t.logger.Warn("history unavailable, enrichment skipped",
			zap.String("source", string(rec.Source)),
			zap.Error(err))
		return
	}
	if len(hist) < 2 {
		return
	}

	high, low := rec.Price, rec.Price
	for _, h := range hist {
		if h.Price > high {
			high = h.Price
		}
		if h.Price < low {
			low = h.Price
		}
	}
	rec.High24h = high
	rec.Low24h = low

	// Change is measured from the oldest point strictly inside the
	// window; QueryRange returns newest first.
	oldest := hist[len(hist)-1]
	if oldest.Price > 0 {
		rec.Change24h = (rec.Price - oldest.Price) / oldest.Price * 100
	}
}

func (t *Tracker) cachedSnapshot() *model.Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cached == nil || t.clock().Sub(t.cachedAt) >= t.cfg.SnapshotTTL {
		return nil
	}
	// Deep copies both ways: consumers mutating a returned record must
	// not reach the cached entry.
	cp := t.cached.Clone()
	return &cp
}

func (t *Tracker) storeSnapshot(snap model.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := snap.Clone()
	t.cached = &cp
	t.cachedAt = t.clock()
}

func venueStats(rec *model.PriceRecord) *model.VenueStats {
	return &model.VenueStats{
		High:    rec.High24h,
		Low:     rec.Low24h,
		Volume:  rec.Volume24h,
		Change:  rec.Change24h,
		Current: rec.Price,
	}
}
