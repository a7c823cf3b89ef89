package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

type HealthHandler struct {
	history port.HistoryPort
	cache   port.SnapshotCachePort
	logger  *zap.Logger
}

func NewHealthHandler(history port.HistoryPort, cache port.SnapshotCachePort, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		history: history,
		cache:   cache,
		logger:  logger,
	}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	dbStatus := "healthy"
	redisStatus := "healthy"
	overallStatus := "healthy"

	if err := h.history.Ping(r.Context()); err != nil {
		dbStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("database health check failed", zap.Error(err))
	}

	if err := h.cache.Ping(r.Context()); err != nil {
		redisStatus = "unhealthy"
		overallStatus = "degraded"
		h.logger.Warn("redis health check failed", zap.Error(err))
	}

	response := map[string]interface{}{
		"status": overallStatus,
		"checks": map[string]string{
			"database": dbStatus,
			"redis":    redisStatus,
		},
	}

	statusCode := http.StatusOK
	if overallStatus == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
