package source

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

// StaleGuard wraps a throttle-prone source with a single-entry TTL cache.
// A fresh entry is served without touching the network; after a total fetch
// failure the last good result is served regardless of age. Degrading to
// slightly-stale data beats turning an upstream throttle into an outage.
//
// This guards one adapter; the tracker keeps its own whole-snapshot cache
// with a separate TTL.
type StaleGuard struct {
	inner  port.SourcePort
	ttl    time.Duration
	logger *zap.Logger
	clock  func() time.Time

	mu       sync.Mutex
	last     *model.PriceRecord
	storedAt time.Time
}

func NewStaleGuard(inner port.SourcePort, ttl time.Duration, logger *zap.Logger) *StaleGuard {
	return &StaleGuard{
		inner:  inner,
		ttl:    ttl,
		logger: logger.With(zap.String("source", string(inner.Key())), zap.String("component", "stale_guard")),
		clock:  time.Now,
	}
}

func (g *StaleGuard) Key() model.SourceKey     { return g.inner.Key() }
func (g *StaleGuard) Class() model.SourceClass { return g.inner.Class() }

func (g *StaleGuard) Fetch(ctx context.Context) (*model.PriceRecord, error) {
	if rec := g.cached(false); rec != nil {
		return rec, nil
	}

	rec, err := g.inner.Fetch(ctx)
	if err == nil {
		g.store(rec)
		return rec, nil
	}

	if stale := g.cached(true); stale != nil {
		g.logger.Warn("fetch failed, serving stale record",
			zap.Float64("price", stale.Price),
			zap.Error(err))
		return stale, nil
	}

	return nil, err
}

// cached returns a copy of the stored record; copies keep consumers from
// mutating the shared entry during enrichment.
func (g *StaleGuard) cached(allowStale bool) *model.PriceRecord {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last == nil {
		return nil
	}
	if !allowStale && g.clock().Sub(g.storedAt) >= g.ttl {
		return nil
	}
	cp := *g.last
	return &cp
}

// store keeps only successful results: absence is never cached.
func (g *StaleGuard) store(rec *model.PriceRecord) {
	g.mu.Lock()
	defer g.mu.Unlock()
	cp := *rec
	g.last = &cp
	g.storedAt = g.clock()
}
