package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/pricing"
)

// StonfiConfig configures the STON.fi DEX adapter for the HOLDER/TON pool.
type StonfiConfig struct {
	BaseURL        string
	HolderContract string
	TONContract    string
	HolderDecimals int32
	TONDecimals    int32
	Pair           string
}

// StonfiAdapter derives the HOLDER price from on-chain pool reserves. The
// native quote unit is TON; price_usd is filled through the TON/USD rate
// lookup and omitted when that lookup has no rate to offer.
type StonfiAdapter struct {
	client *Client
	rates  *RatesClient
	cfg    StonfiConfig
	logger *zap.Logger
}

func NewStonfiAdapter(client *Client, rates *RatesClient, cfg StonfiConfig, logger *zap.Logger) *StonfiAdapter {
	return &StonfiAdapter{
		client: client,
		rates:  rates,
		cfg:    cfg,
		logger: logger.With(zap.String("source", string(model.SourceStonfiDEX))),
	}
}

func (a *StonfiAdapter) Key() model.SourceKey     { return model.SourceStonfiDEX }
func (a *StonfiAdapter) Class() model.SourceClass { return model.ClassDEX }

type stonfiPoolResponse struct {
	Pool stonfiPool `json:"pool"`
}

type stonfiPool struct {
	Address          string    `json:"address"`
	Token0Address    string    `json:"token0_address"`
	Token1Address    string    `json:"token1_address"`
	Reserve0         string    `json:"reserve0"`
	Reserve1         string    `json:"reserve1"`
	LPTotalSupplyUSD flexFloat `json:"lp_total_supply_usd"`
	Volume24hUSD     flexFloat `json:"volume_24h_usd"`
}

func (a *StonfiAdapter) Fetch(ctx context.Context) (*model.PriceRecord, error) {
	url := fmt.Sprintf("%s/v1/pools/by_market/%s/%s", a.cfg.BaseURL, a.cfg.HolderContract, a.cfg.TONContract)

	var payload stonfiPoolResponse
	if err := a.client.GetJSON(ctx, url, &payload); err != nil {
		return nil, fmt.Errorf("stonfi pool: %w", err)
	}

	pool := payload.Pool

	// STON.fi reports reserves in the pool's own token order, not the
	// order of the query. Orient by matching the HOLDER contract address.
	reserveBase, reserveQuote := pool.Reserve0, pool.Reserve1
	switch {
	case strings.EqualFold(pool.Token0Address, a.cfg.HolderContract):
	case strings.EqualFold(pool.Token1Address, a.cfg.HolderContract):
		reserveBase, reserveQuote = pool.Reserve1, pool.Reserve0
	default:
		return nil, fmt.Errorf("stonfi pool %s does not contain HOLDER contract", pool.Address)
	}

	price, ok := pricing.PoolPrice(reserveBase, a.cfg.HolderDecimals, reserveQuote, a.cfg.TONDecimals)
	if !ok {
		return nil, fmt.Errorf("stonfi pool %s has no liquidity on the HOLDER side", pool.Address)
	}

	priceTON, _ := price.Float64()
	rec := &model.PriceRecord{
		Source:       model.SourceStonfiDEX,
		Pair:         a.cfg.Pair,
		Price:        priceTON,
		Volume24h:    float64(pool.Volume24hUSD),
		LiquidityUSD: float64(pool.LPTotalSupplyUSD),
		High24h:      priceTON,
		Low24h:       priceTON,
		Timestamp:    time.Now().UTC(),
	}

	if rate, err := a.rates.TONUSD(ctx); err != nil {
		a.logger.Warn("TON/USD rate unavailable, price_usd omitted", zap.Error(err))
	} else if usd, ok := pricing.ToUSD(price, rate); ok {
		rec.PriceUSD = &usd
	}

	return rec, nil
}
