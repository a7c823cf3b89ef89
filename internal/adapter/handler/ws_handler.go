package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/application/usecase"
)

// WSHandler pushes the current snapshot to subscribed clients on a fixed
// cadence. Push is best-effort: a client that cannot keep up is dropped.
type WSHandler struct {
	useCase  *usecase.PriceUseCase
	interval time.Duration
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

func NewWSHandler(useCase *usecase.PriceUseCase, interval time.Duration, logger *zap.Logger) *WSHandler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &WSHandler{
		useCase:  useCase,
		interval: interval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

func (h *WSHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	// Reader goroutine only notices disconnects; inbound frames are
	// discarded.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	if err := h.push(r, conn); err != nil {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := h.push(r, conn); err != nil {
				h.logger.Debug("websocket push ended", zap.Error(err))
				return
			}
		}
	}
}

func (h *WSHandler) push(r *http.Request, conn *websocket.Conn) error {
	snap, err := h.useCase.GetPrices(r.Context())
	if err != nil {
		// Unavailable data is not a client error; skip this tick.
		return nil
	}

	conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteJSON(snap)
}
