package service

import (
	"math"
	"time"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// Detection is pure: both checks are deterministic functions over
// snapshots with no I/O. Prices originate from untrusted upstream JSON,
// so malformed numbers are treated as insufficient data, never a crash.

// CheckSignificantChanges compares each present source against its
// remembered previous price and emits an event when the move reaches the
// threshold (inclusive). A source with no baseline is skipped: the first
// observation establishes the baseline and never alerts.
func CheckSignificantChanges(current model.Snapshot, previous map[model.SourceKey]float64, threshold float64) []model.AlertEvent {
	var events []model.AlertEvent

	for _, rec := range current.Records() {
		prev, ok := previous[rec.Source]
		if !ok {
			continue
		}
		if !validPrice(rec.Price) || !validPrice(prev) {
			continue
		}

		percent := (rec.Price - prev) / prev * 100
		if math.Abs(percent) < threshold {
			continue
		}

		events = append(events, model.AlertEvent{
			Kind:      model.AlertPriceChange,
			Source:    rec.Source,
			Pair:      rec.Pair,
			Percent:   percent,
			OldPrice:  prev,
			NewPrice:  rec.Price,
			Timestamp: time.Now().UTC(),
		})
	}

	return events
}

// CheckArbitrageOpportunity compares the two designated legs: the DEX
// price expressed in USD against the CEX USD price. Both legs must be
// present and USD-denominated, otherwise there is no opportunity to
// report. Profit is measured against the cheaper leg, so swapping the two
// inputs swaps buy/sell but keeps the same profit percentage.
func CheckArbitrageOpportunity(snap model.Snapshot, threshold float64) *model.AlertEvent {
	if snap.DEX == nil || snap.CEX == nil {
		return nil
	}

	dexUSD, ok := snap.DEX.USD()
	if !ok {
		return nil
	}
	cexUSD, ok := snap.CEX.USD()
	if !ok {
		return nil
	}
	if !validPrice(dexUSD) || !validPrice(cexUSD) {
		return nil
	}

	buyOn, sellOn := snap.DEX.Source, snap.CEX.Source
	buyPrice, sellPrice := dexUSD, cexUSD
	if cexUSD < dexUSD {
		buyOn, sellOn = snap.CEX.Source, snap.DEX.Source
		buyPrice, sellPrice = cexUSD, dexUSD
	}

	profit := (sellPrice - buyPrice) / buyPrice * 100
	if profit < threshold {
		return nil
	}

	return &model.AlertEvent{
		Kind:          model.AlertArbitrage,
		BuyOn:         buyOn,
		SellOn:        sellOn,
		BuyPrice:      buyPrice,
		SellPrice:     sellPrice,
		ProfitPercent: profit,
		Timestamp:     time.Now().UTC(),
	}
}

func validPrice(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
