package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolPrice(t *testing.T) {
	price, ok := PoolPrice("1000000000", 9, "500000000000", 9)
	require.True(t, ok)
	f, _ := price.Float64()
	assert.InDelta(t, 500.0, f, 1e-9)

	// Swapped orientation: one unit of the other token.
	price, ok = PoolPrice("500000000000", 9, "1000000000", 9)
	require.True(t, ok)
	f, _ = price.Float64()
	assert.InDelta(t, 0.002, f, 1e-12)
}

func TestPoolPriceMixedDecimals(t *testing.T) {
	// 2 base units (6 decimals) against 1 quote unit (9 decimals).
	price, ok := PoolPrice("2000000", 6, "1000000000", 9)
	require.True(t, ok)
	f, _ := price.Float64()
	assert.InDelta(t, 0.5, f, 1e-12)
}

func TestPoolPriceZeroBaseReserve(t *testing.T) {
	price, ok := PoolPrice("0", 9, "500000000000", 9)
	assert.False(t, ok)
	assert.True(t, price.IsZero())
}

func TestPoolPriceInvalidReserve(t *testing.T) {
	_, ok := PoolPrice("not-a-number", 9, "500000000000", 9)
	assert.False(t, ok)

	_, ok = PoolPrice("1000000000", 9, "", 9)
	assert.False(t, ok)
}

func TestPoolPriceExceedsFloatPrecision(t *testing.T) {
	// 2^63 smallest units on each side still divides cleanly.
	price, ok := PoolPrice("9223372036854775808", 9, "9223372036854775808", 9)
	require.True(t, ok)
	assert.True(t, price.Equal(decimal.NewFromInt(1)))
}

func TestToUSD(t *testing.T) {
	usd, ok := ToUSD(decimal.NewFromFloat(0.5), 5.0)
	require.True(t, ok)
	assert.InDelta(t, 2.5, usd, 1e-12)

	_, ok = ToUSD(decimal.NewFromFloat(0.5), 0)
	assert.False(t, ok)

	_, ok = ToUSD(decimal.NewFromFloat(0.5), -1)
	assert.False(t, ok)
}
