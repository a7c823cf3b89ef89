package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/adapter/cache"
	"github.com/Memetrix/holder-price-bot/internal/adapter/notifier"
	"github.com/Memetrix/holder-price-bot/internal/adapter/source"
	"github.com/Memetrix/holder-price-bot/internal/adapter/storage"
	"github.com/Memetrix/holder-price-bot/internal/application/service"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
	"github.com/Memetrix/holder-price-bot/internal/infrastructure/config"
	"github.com/Memetrix/holder-price-bot/internal/infrastructure/logger"
)

var configPath = flag.String("config", "configs/config.yaml", "path to config file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("starting holderbot")

	postgresAdapter, err := storage.NewPostgresAdapter(cfg.PostgresDSN())
	if err != nil {
		log.Error("failed to initialize postgres", zap.Error(err))
		os.Exit(1)
	}
	defer postgresAdapter.Close()

	if err := postgresAdapter.InitSchema(context.Background()); err != nil {
		log.Error("failed to initialize schema", zap.Error(err))
		os.Exit(1)
	}

	// The bot keeps running without redis; only cross-process snapshot
	// sharing is lost.
	var snapshotCache port.SnapshotCachePort
	redisAdapter, err := cache.NewRedisAdapter(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.SnapshotTTL)
	if err != nil {
		log.Warn("redis unavailable, snapshot publishing disabled", zap.Error(err))
	} else {
		snapshotCache = redisAdapter
		defer redisAdapter.Close()
	}

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

	tg, err := notifier.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatID, log)
	if err != nil {
		log.Error("failed to initialize telegram bot", zap.Error(err))
		os.Exit(1)
	}

	poller := service.NewPoller(service.PollerConfig{
		Interval:           cfg.Poller.Interval,
		Cooldown:           cfg.Poller.Cooldown,
		ChangeThreshold:    cfg.Poller.ChangeThreshold,
		ArbitrageThreshold: cfg.Poller.ArbitrageThreshold,
		RetentionAge:       cfg.Poller.RetentionAge,
		SweepInterval:      cfg.Poller.SweepInterval,
	}, tracker, postgresAdapter, snapshotCache, tg, postgresAdapter, log)

	router := notifier.NewCommandRouter(tracker, postgresAdapter, postgresAdapter, postgresAdapter, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go poller.Run(ctx)
	go runCommandLoop(ctx, tg, router, log)

	<-ctx.Done()

	log.Info("shutting down gracefully")
	poller.Stop()
}

func runCommandLoop(ctx context.Context, tg *notifier.TelegramNotifier, router *notifier.CommandRouter, log *zap.Logger) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := tg.Bot().GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			tg.Bot().StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}

			msg := update.Message
			reply := router.Handle(ctx, msg.From.ID, msg.Command(), msg.CommandArguments())
			if reply == "" {
				continue
			}
			if err := tg.Reply(msg.Chat.ID, reply); err != nil {
				log.Warn("failed to reply to command",
					zap.String("command", msg.Command()),
					zap.Error(err))
			}
		}
	}
}
