package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

type scriptedSource struct {
	rec   *model.PriceRecord
	err   error
	calls int
}

func (s *scriptedSource) Key() model.SourceKey     { return model.SourceStonfiDEX }
func (s *scriptedSource) Class() model.SourceClass { return model.ClassDEX }

func (s *scriptedSource) Fetch(ctx context.Context) (*model.PriceRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	cp := *s.rec
	return &cp, nil
}

func dexRec(price float64) *model.PriceRecord {
	return &model.PriceRecord{
		Source: model.SourceStonfiDEX,
		Pair:   "HOLDER/TON",
		Price:  price,
	}
}

func TestStaleGuardFreshHitSkipsNetwork(t *testing.T) {
	inner := &scriptedSource{rec: dexRec(2.50)}
	guard := NewStaleGuard(inner, 30*time.Second, zap.NewNop())

	now := time.Unix(1_700_000_000, 0)
	guard.clock = func() time.Time { return now }

	first, err := guard.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)

	// 10s later, still inside the TTL.
	now = now.Add(10 * time.Second)
	second, err := guard.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls, "fresh cache entry must not refetch")
	assert.Equal(t, first.Price, second.Price)
}

func TestStaleGuardServesStaleOnFailure(t *testing.T) {
	inner := &scriptedSource{rec: dexRec(2.50)}
	guard := NewStaleGuard(inner, 30*time.Second, zap.NewNop())

	now := time.Unix(1_700_000_000, 0)
	guard.clock = func() time.Time { return now }

	_, err := guard.Fetch(context.Background())
	require.NoError(t, err)

	// 40s later the entry is past its TTL and the upstream is down; the
	// last good record is still returned.
	now = now.Add(40 * time.Second)
	inner.err = errors.New("429 too many requests")

	rec, err := guard.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "expired entry triggers a real fetch first")
	assert.InDelta(t, 2.50, rec.Price, 1e-9)
}

func TestStaleGuardNeverCachesAbsence(t *testing.T) {
	inner := &scriptedSource{err: errors.New("down")}
	guard := NewStaleGuard(inner, 30*time.Second, zap.NewNop())

	_, err := guard.Fetch(context.Background())
	assert.Error(t, err, "no previous success, failure must propagate")

	// Upstream recovers; the earlier failure left nothing cached.
	inner.err = nil
	inner.rec = dexRec(1.25)

	rec, err := guard.Fetch(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.25, rec.Price, 1e-9)
}

func TestStaleGuardReturnsCopies(t *testing.T) {
	inner := &scriptedSource{rec: dexRec(2.50)}
	guard := NewStaleGuard(inner, 30*time.Second, zap.NewNop())

	first, err := guard.Fetch(context.Background())
	require.NoError(t, err)

	// Enrichment mutates the returned record; the cached entry must not see it.
	first.High24h = 99.0

	second, err := guard.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, second.High24h)
}
