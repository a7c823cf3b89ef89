package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/adapter/cache"
	"github.com/Memetrix/holder-price-bot/internal/adapter/handler"
	"github.com/Memetrix/holder-price-bot/internal/adapter/source"
	"github.com/Memetrix/holder-price-bot/internal/adapter/storage"
	"github.com/Memetrix/holder-price-bot/internal/application/service"
	"github.com/Memetrix/holder-price-bot/internal/application/usecase"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
	"github.com/Memetrix/holder-price-bot/internal/infrastructure/config"
	"github.com/Memetrix/holder-price-bot/internal/infrastructure/logger"
	"github.com/Memetrix/holder-price-bot/internal/infrastructure/server"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "path to config file")
	portFlag   = flag.Int("port", 0, "override server port")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting holderapi", zap.Int("port", cfg.Server.Port))

	postgresAdapter, err := storage.NewPostgresAdapter(cfg.PostgresDSN())
	if err != nil {
		log.Error("failed to initialize postgres", zap.Error(err))
		os.Exit(1)
	}
	defer postgresAdapter.Close()

	redisAdapter, err := cache.NewRedisAdapter(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SnapshotTTL)
	if err != nil {
		log.Error("failed to initialize redis", zap.Error(err))
		os.Exit(1)
	}
	defer redisAdapter.Close()

	// The API aggregates on its own when the poller process has not
	// published a snapshot recently.
	httpClient := source.NewClient(cfg.HTTPTimeout, log)
	rates := source.NewRatesClient(httpClient, source.RatesConfig{
		BaseURL: cfg.Sources.Rates.BaseURL,
		TTL:     cfg.Sources.Rates.TTL,
	}, log)
	stonfi := source.NewStonfiAdapter(httpClient, rates, source.StonfiConfig{
		BaseURL:        cfg.Sources.Stonfi.BaseURL,
		HolderContract: cfg.Sources.Stonfi.HolderContract,
		TONContract:    cfg.Sources.Stonfi.TONContract,
		HolderDecimals: cfg.Sources.Stonfi.HolderDecimals,
		TONDecimals:    cfg.Sources.Stonfi.TONDecimals,
		Pair:           cfg.Sources.Stonfi.Pair,
	}, log)
	weex := source.NewWeexAdapter(httpClient, source.WeexConfig{
		BaseURL:  cfg.Sources.Weex.BaseURL,
		SymbolID: cfg.Sources.Weex.SymbolID,
		Pair:     cfg.Sources.Weex.Pair,
	}, log)

	sources := []port.SourcePort{
		source.NewStaleGuard(stonfi, cfg.SourceTTL, log),
		weex,
	}

	tracker := service.NewTracker(service.TrackerConfig{
		SnapshotTTL:        cfg.Tracker.SnapshotTTL,
		EnrichWindow:       cfg.Tracker.EnrichWindow,
		EnrichLimit:        cfg.Tracker.EnrichLimit,
		ArbitrageThreshold: cfg.Tracker.ArbitrageThreshold,
	}, sources, postgresAdapter, log, httpClient)
	defer tracker.Close()

	priceUseCase := usecase.NewPriceUseCase(tracker, redisAdapter, postgresAdapter, log)

	priceHandler := handler.NewPriceHandler(priceUseCase, log)
	healthHandler := handler.NewHealthHandler(postgresAdapter, redisAdapter, log)
	wsHandler := handler.NewWSHandler(priceUseCase, 15*time.Second, log)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/prices", priceHandler.GetPrices)
	mux.HandleFunc("GET /api/stats", priceHandler.GetStats)
	mux.HandleFunc("GET /api/history", priceHandler.GetHistory)
	mux.HandleFunc("GET /api/arbitrage", priceHandler.GetArbitrage)
	mux.HandleFunc("GET /health", healthHandler.Check)
	mux.HandleFunc("GET /ws", wsHandler.Stream)

	srv := server.NewServer(cfg.Server.Port, mux, log)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", zap.Error(err))
	}
}
