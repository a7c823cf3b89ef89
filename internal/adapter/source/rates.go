package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RatesConfig configures the TON→USD conversion rate lookup.
type RatesConfig struct {
	BaseURL string
	TTL     time.Duration
}

// RatesClient resolves the TON/USD rate used to express TON-quoted DEX
// prices in USD. The endpoint throttles aggressively, so successful
// lookups are memoized for a short TTL and the last known rate is served
// stale when a refresh fails.
type RatesClient struct {
	client *Client
	cfg    RatesConfig
	logger *zap.Logger
	clock  func() time.Time

	mu        sync.Mutex
	rate      float64
	fetchedAt time.Time
}

func NewRatesClient(client *Client, cfg RatesConfig, logger *zap.Logger) *RatesClient {
	return &RatesClient{
		client: client,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "ton_rates")),
		clock:  time.Now,
	}
}

type ratesResponse struct {
	Rates struct {
		TON struct {
			Prices struct {
				USD flexFloat `json:"USD"`
			} `json:"prices"`
		} `json:"TON"`
	} `json:"rates"`
}

// TONUSD returns the current TON/USD rate. The lock is never held across
// the network call: a slow refresh must not block other callers, so
// concurrent expired lookups may each refresh once.
func (r *RatesClient) TONUSD(ctx context.Context) (float64, error) {
	if rate, ok := r.fresh(); ok {
		return rate, nil
	}

	url := fmt.Sprintf("%s/v2/rates?tokens=ton&currencies=usd", r.cfg.BaseURL)

	var payload ratesResponse
	fetchErr := r.client.GetJSON(ctx, url, &payload)

	r.mu.Lock()
	defer r.mu.Unlock()

	if fetchErr != nil {
		if r.rate > 0 {
			r.logger.Warn("rate refresh failed, serving stale rate",
				zap.Float64("rate", r.rate),
				zap.Duration("age", r.clock().Sub(r.fetchedAt)),
				zap.Error(fetchErr))
			return r.rate, nil
		}
		return 0, fmt.Errorf("ton rate: %w", fetchErr)
	}

	rate := float64(payload.Rates.TON.Prices.USD)
	if rate <= 0 {
		if r.rate > 0 {
			return r.rate, nil
		}
		return 0, fmt.Errorf("ton rate: upstream returned %v", rate)
	}

	r.rate = rate
	r.fetchedAt = r.clock()
	return rate, nil
}

func (r *RatesClient) fresh() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.rate > 0 && r.clock().Sub(r.fetchedAt) < r.cfg.TTL {
		return r.rate, true
	}
	return 0, false
}
