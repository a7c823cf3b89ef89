package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

// PollerConfig carries the polling loop policy.
type PollerConfig struct {
	Interval           time.Duration
	Cooldown           time.Duration
	ChangeThreshold    float64
	ArbitrageThreshold float64
	RetentionAge       time.Duration
	SweepInterval      time.Duration
}

// Poller drives the aggregation cycle: fetch, persist observations,
// publish the snapshot, detect alert-worthy events, dispatch them. One
// poller instance per process; cycles never overlap, a slow cycle simply
// delays the next one.
type Poller struct {
	cfg      PollerConfig
	tracker  *Tracker
	history  port.HistoryPort
	cache    port.SnapshotCachePort
	notifier port.NotifierPort
	subs     port.SubscriptionPort
	logger   *zap.Logger

	// previous is the change-detection baseline. It moves only after a
	// cycle completes, so a cycle that fails entirely cannot fake a
	// "change" on recovery.
	previous map[model.SourceKey]float64

	done     chan struct{}
	stopOnce sync.Once
}

func NewPoller(cfg PollerConfig, tracker *Tracker, history port.HistoryPort, cache port.SnapshotCachePort, notifier port.NotifierPort, subs port.SubscriptionPort, logger *zap.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = time.Minute
	}
	return &Poller{
		cfg:      cfg,
		tracker:  tracker,
		history:  history,
		cache:    cache,
		notifier: notifier,
		subs:     subs,
		logger:   logger.With(zap.String("component", "poller")),
		previous: make(map[model.SourceKey]float64),
		done:     make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled or Stop is called. A failed cycle
// sleeps the cooldown instead of the regular interval so a persistent
// fault cannot hammer the upstreams.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("polling loop started",
		zap.Duration("interval", p.cfg.Interval),
		zap.Duration("cooldown", p.cfg.Cooldown))

	if p.cfg.SweepInterval > 0 {
		go p.retentionLoop(ctx)
	}

	for {
		if err := p.safeCycle(ctx); err != nil {
			p.logger.Error("polling cycle failed", zap.Error(err))
			if !p.sleep(ctx, p.cfg.Cooldown) {
				return
			}
			continue
		}
		if !p.sleep(ctx, p.cfg.Interval) {
			return
		}
	}
}

// Stop terminates the loop. Idempotent.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() { close(p.done) })
}

// safeCycle keeps a buggy cycle from killing the process: a panic is
// converted into a cycle error and the loop cools down and resumes.
func (p *Poller) safeCycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in polling cycle: %v", r)
		}
	}()
	return p.cycle(ctx)
}

func (p *Poller) cycle(ctx context.Context) error {
	start := time.Now()

	snap, err := p.tracker.GetAllPrices(ctx)
	if err != nil {
		return err
	}

	for _, rec := range snap.Records() {
		if err := p.history.Append(ctx, *rec); err != nil {
			p.logger.Warn("failed to append observation",
				zap.String("source", string(rec.Source)),
				zap.Error(err))
		}
	}

	if p.cache != nil {
		if err := p.cache.PublishSnapshot(ctx, snap); err != nil {
			p.logger.Warn("failed to publish snapshot", zap.Error(err))
		}
	}

	events := CheckSignificantChanges(snap, p.previous, p.cfg.ChangeThreshold)
	if arb := CheckArbitrageOpportunity(snap, p.cfg.ArbitrageThreshold); arb != nil {
		events = append(events, *arb)
		if err := p.history.SaveArbitrage(ctx, *arb); err != nil {
			p.logger.Warn("failed to persist arbitrage event", zap.Error(err))
		}
	}

	p.dispatch(ctx, events)

	for _, rec := range snap.Records() {
		p.previous[rec.Source] = rec.Price
	}

	p.logger.Info("polling cycle completed",
		zap.Int("sources", len(snap.Records())),
		zap.Int("events", len(events)),
		zap.Duration("duration", time.Since(start)))
	return nil
}

func (p *Poller) dispatch(ctx context.Context, events []model.AlertEvent) {
	if p.notifier == nil || len(events) == 0 {
		return
	}
	for _, ev := range events {
		if err := p.notifier.SendAlert(ctx, ev); err != nil {
			p.logger.Warn("failed to send alert",
				zap.String("kind", string(ev.Kind)),
				zap.Error(err))
		}
	}

	if p.subs == nil {
		return
	}
	subscribers, err := p.subs.ListAlertSubscribers(ctx)
	if err != nil {
		p.logger.Warn("failed to list alert subscribers", zap.Error(err))
		return
	}
	for _, sub := range subscribers {
		for _, ev := range events {
			// Each user's threshold filters price-change alerts;
			// arbitrage events go to every subscriber.
			if ev.Kind == model.AlertPriceChange && math.Abs(ev.Percent) < sub.Threshold {
				continue
			}
			if err := p.notifier.SendAlertTo(ctx, sub.UserID, ev); err != nil {
				p.logger.Warn("failed to send subscriber alert",
					zap.Int64("user_id", sub.UserID),
					zap.Error(err))
			}
		}
	}
}

func (p *Poller) retentionLoop(ctx context.Context) {
	ticker := time.NewTicker(p.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.done:
			return
		case <-ticker.C:
			removed, err := p.history.DeleteOlderThan(ctx, p.cfg.RetentionAge)
			if err != nil {
				p.logger.Error("retention sweep failed", zap.Error(err))
				continue
			}
			p.logger.Info("retention sweep completed", zap.Int64("removed", removed))
		}
	}
}

func (p *Poller) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-p.done:
		return false
	case <-time.After(d):
		return true
	}
}
