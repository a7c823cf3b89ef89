package model

import "time"

// SourceKey identifies a venue+pair feed. The set of keys is closed:
// every known source has a slot in Snapshot.
type SourceKey string

// SourceClass groups sources by how their price is obtained.
type SourceClass string

const (
	SourceStonfiDEX SourceKey = "stonfi_dex"
	SourceWeexCEX   SourceKey = "weex_cex"
)

const (
	ClassDEX SourceClass = "dex"
	ClassCEX SourceClass = "cex"
)

// PriceRecord is the canonical unit produced by every source adapter and
// stored in price history. High24h, Low24h and Change24h are derived from
// history by the tracker, not venue-reported.
type PriceRecord struct {
	Source       SourceKey `json:"source"`
	Pair         string    `json:"pair"`
	Price        float64   `json:"price"`
	PriceUSD     *float64  `json:"price_usd,omitempty"`
	Volume24h    float64   `json:"volume_24h"`
	LiquidityUSD float64   `json:"liquidity_usd"`
	High24h      float64   `json:"high_24h"`
	Low24h       float64   `json:"low_24h"`
	Change24h    float64   `json:"change_24h"`
	Timestamp    time.Time `json:"timestamp"`
}

// USD returns the USD-equivalent price when a conversion path existed.
func (r *PriceRecord) USD() (float64, bool) {
	if r.PriceUSD == nil {
		return 0, false
	}
	return *r.PriceUSD, true
}

// Clone returns an independent copy, including the optional USD value.
func (r *PriceRecord) Clone() *PriceRecord {
	cp := *r
	if r.PriceUSD != nil {
		v := *r.PriceUSD
		cp.PriceUSD = &v
	}
	return &cp
}

// Snapshot holds all sources' records from one aggregation cycle. One
// optional slot per known source keeps absent-vs-present explicit instead
// of relying on map key checks.
type Snapshot struct {
	DEX *PriceRecord `json:"dex,omitempty"`
	CEX *PriceRecord `json:"cex,omitempty"`
}

// Set places a record into the slot for its class.
func (s *Snapshot) Set(class SourceClass, rec *PriceRecord) {
	switch class {
	case ClassDEX:
		s.DEX = rec
	case ClassCEX:
		s.CEX = rec
	}
}

// Records returns the present records. Order is DEX then CEX.
func (s Snapshot) Records() []*PriceRecord {
	var out []*PriceRecord
	if s.DEX != nil {
		out = append(out, s.DEX)
	}
	if s.CEX != nil {
		out = append(out, s.CEX)
	}
	return out
}

// Complete reports whether the snapshot covers at least one DEX-class and
// one CEX-class source. Only complete snapshots are cached.
func (s Snapshot) Complete() bool {
	return s.DEX != nil && s.CEX != nil
}

// Empty reports whether no source produced a record this cycle.
func (s Snapshot) Empty() bool {
	return s.DEX == nil && s.CEX == nil
}

// Clone deep-copies the snapshot so callers can hold or mutate records
// without sharing them.
func (s Snapshot) Clone() Snapshot {
	var cp Snapshot
	if s.DEX != nil {
		cp.DEX = s.DEX.Clone()
	}
	if s.CEX != nil {
		cp.CEX = s.CEX.Clone()
	}
	return cp
}
