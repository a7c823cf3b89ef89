package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotSlots(t *testing.T) {
	var snap Snapshot
	assert.True(t, snap.Empty())
	assert.False(t, snap.Complete())
	assert.Empty(t, snap.Records())

	dex := &PriceRecord{Source: SourceStonfiDEX, Price: 0.5}
	snap.Set(ClassDEX, dex)
	assert.False(t, snap.Empty())
	assert.False(t, snap.Complete())

	cex := &PriceRecord{Source: SourceWeexCEX, Price: 1.0}
	snap.Set(ClassCEX, cex)
	assert.True(t, snap.Complete())

	recs := snap.Records()
	require.Len(t, recs, 2)
	assert.Same(t, dex, recs[0])
	assert.Same(t, cex, recs[1])
}

func TestPriceRecordUSD(t *testing.T) {
	rec := PriceRecord{Source: SourceStonfiDEX, Price: 0.5}
	_, ok := rec.USD()
	assert.False(t, ok)

	usd := 2.5
	rec.PriceUSD = &usd
	v, ok := rec.USD()
	assert.True(t, ok)
	assert.Equal(t, 2.5, v)
}

func TestPriceRecordJSONOmitsMissingUSD(t *testing.T) {
	data, err := json.Marshal(PriceRecord{Source: SourceWeexCEX, Price: 1.0})
	require.NoError(t, err)
	assert.NotContains(t, string(data), "price_usd")
}
