package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/application/service"
	"github.com/Memetrix/holder-price-bot/internal/application/usecase"
	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

type PriceHandler struct {
	useCase *usecase.PriceUseCase
	logger  *zap.Logger
}

func NewPriceHandler(useCase *usecase.PriceUseCase, logger *zap.Logger) *PriceHandler {
	return &PriceHandler{
		useCase: useCase,
		logger:  logger,
	}
}

func (h *PriceHandler) GetPrices(w http.ResponseWriter, r *http.Request) {
	snap, err := h.useCase.GetPrices(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(snap)
}

func (h *PriceHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.useCase.GetStats(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

// GetHistory serves the persisted time series, newest first. Query
// parameters: source (optional, all sources when absent), hours (1-168,
// default 24), limit (default 100, capped at 1000).
func (h *PriceHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	hours := intParam(q.Get("hours"), 24, 1, 168)
	limit := intParam(q.Get("limit"), 100, 1, 1000)
	source := model.SourceKey(q.Get("source"))

	recs, err := h.useCase.GetHistory(r.Context(), source, time.Duration(hours)*time.Hour, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []model.PriceRecord{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}

// GetArbitrage serves recently detected arbitrage events, newest first.
// Query parameter: limit (default 50, capped at 200).
func (h *PriceHandler) GetArbitrage(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r.URL.Query().Get("limit"), 50, 1, 200)

	events, err := h.useCase.GetArbitrage(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if events == nil {
		events = []model.AlertEvent{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(events)
}

func intParam(raw string, def, min, max int) int {
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// An empty snapshot is reported as explicitly unavailable: absent data is
// "unknown", never zero prices.
func (h *PriceHandler) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrUnavailable) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "price data unavailable, try again later",
		})
		return
	}

	h.logger.Error("price request failed", zap.Error(err))
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
