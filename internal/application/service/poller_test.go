package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

type capturingHistory struct {
	fakeHistory
	appended  []model.PriceRecord
	arbitrage []model.AlertEvent
}

func (c *capturingHistory) Append(ctx context.Context, rec model.PriceRecord) error {
	c.appended = append(c.appended, rec)
	return nil
}

func (c *capturingHistory) SaveArbitrage(ctx context.Context, ev model.AlertEvent) error {
	c.arbitrage = append(c.arbitrage, ev)
	return nil
}

type capturingCache struct {
	published []model.Snapshot
	err       error
}

func (c *capturingCache) PublishSnapshot(ctx context.Context, snap model.Snapshot) error {
	if c.err != nil {
		return c.err
	}
	c.published = append(c.published, snap)
	return nil
}

func (c *capturingCache) GetSnapshot(ctx context.Context) (*model.Snapshot, error) { return nil, nil }
func (c *capturingCache) Ping(ctx context.Context) error                           { return nil }
func (c *capturingCache) Close() error                                             { return nil }

type capturingNotifier struct {
	events []model.AlertEvent
	sentTo map[int64][]model.AlertEvent
}

func (c *capturingNotifier) SendAlert(ctx context.Context, ev model.AlertEvent) error {
	c.events = append(c.events, ev)
	return nil
}

func (c *capturingNotifier) SendAlertTo(ctx context.Context, chatID int64, ev model.AlertEvent) error {
	if c.sentTo == nil {
		c.sentTo = make(map[int64][]model.AlertEvent)
	}
	c.sentTo[chatID] = append(c.sentTo[chatID], ev)
	return nil
}

type fakeSubscriptions struct {
	subscribers []model.AlertSettings
}

func (f *fakeSubscriptions) SetAlertsEnabled(ctx context.Context, userID int64, enabled bool) error {
	return nil
}
func (f *fakeSubscriptions) SetAlertThreshold(ctx context.Context, userID int64, threshold float64) error {
	return nil
}
func (f *fakeSubscriptions) GetAlertSettings(ctx context.Context, userID int64) (model.AlertSettings, error) {
	return model.AlertSettings{UserID: userID}, nil
}
func (f *fakeSubscriptions) ListAlertSubscribers(ctx context.Context) ([]model.AlertSettings, error) {
	return f.subscribers, nil
}

func newPollerUnderTest(cfg PollerConfig, history port.HistoryPort, cache port.SnapshotCachePort, notifier port.NotifierPort, sources ...port.SourcePort) *Poller {
	// SnapshotTTL zero keeps the tracker from memoizing between cycles.
	tracker := NewTracker(TrackerConfig{}, sources, history, zap.NewNop())
	return NewPoller(cfg, tracker, history, cache, notifier, nil, zap.NewNop())
}

func TestPollerCyclePersistsAndPublishes(t *testing.T) {
	history := &capturingHistory{}
	cache := &capturingCache{}
	notifier := &capturingNotifier{}

	p := newPollerUnderTest(
		PollerConfig{ChangeThreshold: 5.0, ArbitrageThreshold: 2.0},
		history, cache, notifier,
		newDEXSource(0.5), newCEXSource(1.0),
	)

	require.NoError(t, p.cycle(context.Background()))

	assert.Len(t, history.appended, 2, "every observation is persisted")
	require.Len(t, cache.published, 1)
	assert.True(t, cache.published[0].Complete())

	// First cycle establishes the baseline without alerting.
	assert.Empty(t, notifier.events)
}

func TestPollerAlertsOnSignificantMove(t *testing.T) {
	history := &capturingHistory{}
	notifier := &capturingNotifier{}
	cex := newCEXSource(1.00)

	p := newPollerUnderTest(
		PollerConfig{ChangeThreshold: 5.0, ArbitrageThreshold: 100.0},
		history, nil, notifier,
		newDEXSource(0.5), cex,
	)

	require.NoError(t, p.cycle(context.Background()))
	require.Empty(t, notifier.events)

	cex.rec.Price = 1.10
	require.NoError(t, p.cycle(context.Background()))

	require.Len(t, notifier.events, 1)
	ev := notifier.events[0]
	assert.Equal(t, model.AlertPriceChange, ev.Kind)
	assert.Equal(t, model.SourceWeexCEX, ev.Source)
	assert.InDelta(t, 10.0, ev.Percent, 1e-9)
}

func TestPollerBaselineSurvivesFailedCycle(t *testing.T) {
	history := &capturingHistory{}
	notifier := &capturingNotifier{}
	dex := newDEXSource(0.5)
	cex := newCEXSource(1.00)

	p := newPollerUnderTest(
		PollerConfig{ChangeThreshold: 5.0, ArbitrageThreshold: 100.0},
		history, nil, notifier,
		dex, cex,
	)

	require.NoError(t, p.cycle(context.Background()))

	// Total outage: the cycle fails and must not move the baseline.
	dex.err = errors.New("down")
	cex.err = errors.New("down")
	require.Error(t, p.cycle(context.Background()))

	// Recovery with a small drift from the last good baseline stays silent.
	dex.err, cex.err = nil, nil
	cex.rec.Price = 1.04
	require.NoError(t, p.cycle(context.Background()))
	assert.Empty(t, notifier.events)

	// A move large enough against that same baseline still alerts.
	cex.rec.Price = 1.10
	require.NoError(t, p.cycle(context.Background()))
	require.Len(t, notifier.events, 1)
}

func TestPollerPersistsArbitrageEvents(t *testing.T) {
	history := &capturingHistory{}
	notifier := &capturingNotifier{}

	p := newPollerUnderTest(
		PollerConfig{ChangeThreshold: 100.0, ArbitrageThreshold: 2.0},
		history, nil, notifier,
		newDEXSource(0.5), newCEXSource(1.03), // dex usd 1.00 vs cex 1.03
	)

	require.NoError(t, p.cycle(context.Background()))

	require.Len(t, history.arbitrage, 1)
	assert.Equal(t, model.AlertArbitrage, history.arbitrage[0].Kind)
	require.Len(t, notifier.events, 1)
	assert.InDelta(t, 3.0, notifier.events[0].ProfitPercent, 1e-9)
}

func TestPollerDispatchesToSubscribers(t *testing.T) {
	history := &capturingHistory{}
	notifier := &capturingNotifier{}
	cex := newCEXSource(1.00)

	p := newPollerUnderTest(
		PollerConfig{ChangeThreshold: 5.0, ArbitrageThreshold: 100.0},
		history, nil, notifier,
		newDEXSource(0.5), cex,
	)
	p.subs = &fakeSubscriptions{subscribers: []model.AlertSettings{
		{UserID: 100, Enabled: true, Threshold: 5.0},
		{UserID: 200, Enabled: true, Threshold: 15.0},
	}}

	require.NoError(t, p.cycle(context.Background()))

	cex.rec.Price = 1.10 // +10%: over user 100's threshold, under user 200's
	require.NoError(t, p.cycle(context.Background()))

	require.Len(t, notifier.events, 1, "broadcast chat still gets the alert")
	require.Len(t, notifier.sentTo[100], 1)
	assert.InDelta(t, 10.0, notifier.sentTo[100][0].Percent, 1e-9)
	assert.Empty(t, notifier.sentTo[200], "per-user threshold filters the alert")
}

type sweepHistory struct {
	fakeHistory
	mu    sync.Mutex
	calls []time.Duration
	fired chan struct{}
}

func (s *sweepHistory) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	s.mu.Lock()
	s.calls = append(s.calls, age)
	s.mu.Unlock()
	select {
	case s.fired <- struct{}{}:
	default:
	}
	return 3, nil
}

func TestPollerRetentionSweep(t *testing.T) {
	history := &sweepHistory{fired: make(chan struct{}, 1)}

	p := newPollerUnderTest(
		PollerConfig{RetentionAge: 720 * time.Hour, SweepInterval: 10 * time.Millisecond},
		history, nil, nil,
		newDEXSource(0.5),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.retentionLoop(ctx)

	select {
	case <-history.fired:
	case <-time.After(time.Second):
		t.Fatal("retention sweep never fired")
	}

	history.mu.Lock()
	defer history.mu.Unlock()
	require.NotEmpty(t, history.calls)
	assert.Equal(t, 720*time.Hour, history.calls[0])
}

func TestPollerSafeCycleRecoversPanic(t *testing.T) {
	p := newPollerUnderTest(
		PollerConfig{},
		&capturingHistory{}, nil, nil,
		newDEXSource(0.5),
	)
	p.tracker = nil // force a panic inside the cycle

	err := p.safeCycle(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panic in polling cycle")
}

func TestPollerStopTerminatesRun(t *testing.T) {
	p := newPollerUnderTest(
		PollerConfig{Interval: time.Hour, Cooldown: time.Hour},
		&capturingHistory{}, nil, nil,
		newDEXSource(0.5), newCEXSource(1.0),
	)

	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	p.Stop()
	p.Stop() // idempotent

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Stop")
	}
}
