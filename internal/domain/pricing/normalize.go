package pricing

import (
	"github.com/shopspring/decimal"
)

// PoolPrice converts a liquidity pool's reserve pair into a quote-per-base
// price. Reserves arrive as decimal strings in each token's smallest unit;
// they can exceed float64 integer precision, so the division is done in
// decimal and converted to float64 only by the caller.
//
// A pool with nothing on the base side has no price: ok is false and the
// returned value is zero.
func PoolPrice(reserveBase string, decimalsBase int32, reserveQuote string, decimalsQuote int32) (decimal.Decimal, bool) {
	base, err := decimal.NewFromString(reserveBase)
	if err != nil {
		return decimal.Zero, false
	}
	quote, err := decimal.NewFromString(reserveQuote)
	if err != nil {
		return decimal.Zero, false
	}

	base = base.Shift(-decimalsBase)
	quote = quote.Shift(-decimalsQuote)

	if base.IsZero() || base.IsNegative() || quote.IsNegative() {
		return decimal.Zero, false
	}

	return quote.Div(base), true
}

// ToUSD converts a native-unit price into USD using the quote token's USD
// rate. Without a usable rate there is no conversion path and ok is false.
func ToUSD(price decimal.Decimal, quoteUSDRate float64) (float64, bool) {
	if quoteUSDRate <= 0 {
		return 0, false
	}
	usd, _ := price.Mul(decimal.NewFromFloat(quoteUSDRate)).Float64()
	return usd, true
}
