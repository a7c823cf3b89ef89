package service

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

func dexRecord(price float64, usd *float64) *model.PriceRecord {
	return &model.PriceRecord{
		Source:    model.SourceStonfiDEX,
		Pair:      "HOLDER/TON",
		Price:     price,
		PriceUSD:  usd,
		Timestamp: time.Now().UTC(),
	}
}

func cexRecord(price float64) *model.PriceRecord {
	usd := price
	return &model.PriceRecord{
		Source:    model.SourceWeexCEX,
		Pair:      "HOLDER/USDT",
		Price:     price,
		PriceUSD:  &usd,
		Timestamp: time.Now().UTC(),
	}
}

func usd(v float64) *float64 { return &v }

func TestCheckSignificantChangesFirstObservationIsSilent(t *testing.T) {
	snap := model.Snapshot{DEX: dexRecord(100.0, nil)}

	events := CheckSignificantChanges(snap, map[model.SourceKey]float64{}, 5.0)
	assert.Empty(t, events)
}

func TestCheckSignificantChangesThresholdIsInclusive(t *testing.T) {
	snap := model.Snapshot{CEX: cexRecord(1.05)}
	previous := map[model.SourceKey]float64{model.SourceWeexCEX: 1.00}

	events := CheckSignificantChanges(snap, previous, 5.0)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, model.AlertPriceChange, ev.Kind)
	assert.Equal(t, model.SourceWeexCEX, ev.Source)
	assert.InDelta(t, 5.0, ev.Percent, 1e-9)
	assert.Equal(t, 1.00, ev.OldPrice)
	assert.Equal(t, 1.05, ev.NewPrice)
}

func TestCheckSignificantChangesBelowThreshold(t *testing.T) {
	snap := model.Snapshot{CEX: cexRecord(1.04)}
	previous := map[model.SourceKey]float64{model.SourceWeexCEX: 1.00}

	events := CheckSignificantChanges(snap, previous, 5.0)
	assert.Empty(t, events)
}

func TestCheckSignificantChangesNegativeMove(t *testing.T) {
	snap := model.Snapshot{DEX: dexRecord(0.90, nil)}
	previous := map[model.SourceKey]float64{model.SourceStonfiDEX: 1.00}

	events := CheckSignificantChanges(snap, previous, 5.0)
	require.Len(t, events, 1)
	assert.InDelta(t, -10.0, events[0].Percent, 1e-9)
}

func TestCheckSignificantChangesMalformedPrices(t *testing.T) {
	previous := map[model.SourceKey]float64{
		model.SourceStonfiDEX: 1.00,
		model.SourceWeexCEX:   0,
	}

	snap := model.Snapshot{
		DEX: dexRecord(math.NaN(), nil),
		CEX: cexRecord(1.50),
	}

	// NaN current and zero baseline both count as insufficient data.
	events := CheckSignificantChanges(snap, previous, 5.0)
	assert.Empty(t, events)
}

func TestCheckArbitrageOpportunity(t *testing.T) {
	snap := model.Snapshot{
		DEX: dexRecord(0.5, usd(1.00)),
		CEX: cexRecord(1.03),
	}

	ev := CheckArbitrageOpportunity(snap, 2.0)
	require.NotNil(t, ev)
	assert.Equal(t, model.AlertArbitrage, ev.Kind)
	assert.Equal(t, model.SourceStonfiDEX, ev.BuyOn)
	assert.Equal(t, model.SourceWeexCEX, ev.SellOn)
	assert.Equal(t, 1.00, ev.BuyPrice)
	assert.Equal(t, 1.03, ev.SellPrice)
	assert.InDelta(t, 3.0, ev.ProfitPercent, 1e-9)
}

func TestCheckArbitrageOpportunitySymmetry(t *testing.T) {
	snap := model.Snapshot{
		DEX: dexRecord(0.5, usd(1.03)),
		CEX: cexRecord(1.00),
	}

	ev := CheckArbitrageOpportunity(snap, 2.0)
	require.NotNil(t, ev)
	assert.Equal(t, model.SourceWeexCEX, ev.BuyOn)
	assert.Equal(t, model.SourceStonfiDEX, ev.SellOn)
	assert.InDelta(t, 3.0, ev.ProfitPercent, 1e-9)
}

func TestCheckArbitrageOpportunityBelowThreshold(t *testing.T) {
	snap := model.Snapshot{
		DEX: dexRecord(0.5, usd(1.00)),
		CEX: cexRecord(1.01),
	}

	assert.Nil(t, CheckArbitrageOpportunity(snap, 2.0))
}

func TestCheckArbitrageOpportunityMissingLeg(t *testing.T) {
	// CEX absent entirely.
	snap := model.Snapshot{DEX: dexRecord(0.5, usd(1.00))}
	assert.Nil(t, CheckArbitrageOpportunity(snap, 2.0))

	// DEX present but without a USD conversion path.
	snap = model.Snapshot{
		DEX: dexRecord(0.5, nil),
		CEX: cexRecord(1.03),
	}
	assert.Nil(t, CheckArbitrageOpportunity(snap, 2.0))
}
