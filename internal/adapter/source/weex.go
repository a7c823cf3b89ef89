package source

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// WeexConfig configures the WEEX CEX adapter, which reads the Origami
// public ticker endpoint.
type WeexConfig struct {
	BaseURL  string
	SymbolID int
	Pair     string
}

// WeexAdapter fetches the HOLDER/USDT ticker. The quote unit is USDT,
// treated as USD-pegged, so price_usd is always present for this source.
type WeexAdapter struct {
	client *Client
	cfg    WeexConfig
	logger *zap.Logger
}

func NewWeexAdapter(client *Client, cfg WeexConfig, logger *zap.Logger) *WeexAdapter {
	return &WeexAdapter{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("source", string(model.SourceWeexCEX))),
	}
}

func (a *WeexAdapter) Key() model.SourceKey     { return model.SourceWeexCEX }
func (a *WeexAdapter) Class() model.SourceClass { return model.ClassCEX }

type weexTicker struct {
	Symbol    string    `json:"symbol"`
	LastPrice flexFloat `json:"last_price"`
	Last      flexFloat `json:"last"`
	Volume24h flexFloat `json:"volume_24h"`
	Volume    flexFloat `json:"volume"`
}

func (a *WeexAdapter) Fetch(ctx context.Context) (*model.PriceRecord, error) {
	url := fmt.Sprintf("%s/api/market/public/ticker?symbol_id=%d", a.cfg.BaseURL, a.cfg.SymbolID)

	var ticker weexTicker
	if err := a.client.GetJSON(ctx, url, &ticker); err != nil {
		return nil, fmt.Errorf("weex ticker: %w", err)
	}

	price := coalesce(ticker.LastPrice, ticker.Last)
	if price <= 0 {
		return nil, fmt.Errorf("weex ticker: no usable last price for symbol_id %d", a.cfg.SymbolID)
	}

	pair := ticker.Symbol
	if pair == "" {
		pair = a.cfg.Pair
	}

	usd := price
	return &model.PriceRecord{
		Source:    model.SourceWeexCEX,
		Pair:      pair,
		Price:     price,
		PriceUSD:  &usd,
		Volume24h: coalesce(ticker.Volume24h, ticker.Volume),
		High24h:   price,
		Low24h:    price,
		Timestamp: time.Now().UTC(),
	}, nil
}
