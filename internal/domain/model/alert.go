package model

import "time"

type AlertKind string

const (
	AlertPriceChange AlertKind = "price_change"
	AlertArbitrage   AlertKind = "arbitrage"
)

// AlertEvent is produced by the detector. Transient: only arbitrage events
// are persisted, and by the poller rather than the detector itself.
type AlertEvent struct {
	Kind      AlertKind `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// price_change fields
	Source   SourceKey `json:"source,omitempty"`
	Pair     string    `json:"pair,omitempty"`
	Percent  float64   `json:"percent,omitempty"`
	OldPrice float64   `json:"old_price,omitempty"`
	NewPrice float64   `json:"new_price,omitempty"`

	// arbitrage fields
	BuyOn         SourceKey `json:"buy_on,omitempty"`
	SellOn        SourceKey `json:"sell_on,omitempty"`
	BuyPrice      float64   `json:"buy_price,omitempty"`
	SellPrice     float64   `json:"sell_price,omitempty"`
	ProfitPercent float64   `json:"profit_percent,omitempty"`
}

// VenueStats is the display-oriented reshape of one venue's record.
type VenueStats struct {
	High    float64 `json:"high"`
	Low     float64 `json:"low"`
	Volume  float64 `json:"volume"`
	Change  float64 `json:"change"`
	Current float64 `json:"current"`
}

// ArbitrageStats is the designated DEX/CEX comparison in 24h stats.
type ArbitrageStats struct {
	DEXPrice          float64 `json:"dex_price"`
	CEXPrice          float64 `json:"cex_price"`
	DifferencePercent float64 `json:"difference_percent"`
	Opportunity       bool    `json:"opportunity"`
}

// Stats is the consumer-facing 24h statistics view.
type Stats struct {
	DEX       *VenueStats     `json:"dex,omitempty"`
	CEX       *VenueStats     `json:"cex,omitempty"`
	Arbitrage *ArbitrageStats `json:"arbitrage,omitempty"`
}
