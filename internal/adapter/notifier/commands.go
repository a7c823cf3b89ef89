package notifier

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/application/service"
	"github.com/Memetrix/holder-price-bot/internal/domain/model"
	"github.com/Memetrix/holder-price-bot/internal/domain/port"
)

const recentArbitrageLimit = 10

// PriceReader is the slice of the tracker the command router needs.
type PriceReader interface {
	GetAllPrices(ctx context.Context) (model.Snapshot, error)
	Get24hStats(ctx context.Context) (model.Stats, error)
}

// CommandRouter maps bot commands to replies. It holds no Telegram state:
// the transport loop in cmd/holderbot feeds it parsed commands and sends
// whatever text comes back.
type CommandRouter struct {
	prices    PriceReader
	history   port.HistoryPort
	subs      port.SubscriptionPort
	portfolio port.PortfolioPort
	logger    *zap.Logger
}

func NewCommandRouter(prices PriceReader, history port.HistoryPort, subs port.SubscriptionPort, portfolio port.PortfolioPort, logger *zap.Logger) *CommandRouter {
	return &CommandRouter{
		prices:    prices,
		history:   history,
		subs:      subs,
		portfolio: portfolio,
		logger:    logger.With(zap.String("component", "commands")),
	}
}

// Handle returns the reply for one command, or "" for commands the router
// does not know.
func (r *CommandRouter) Handle(ctx context.Context, userID int64, command, args string) string {
	switch command {
	case "price":
		snap, err := r.prices.GetAllPrices(ctx)
		if err != nil {
			return unavailableReply(err)
		}
		return FormatSnapshot(snap)

	case "stats":
		stats, err := r.prices.Get24hStats(ctx)
		if err != nil {
			return unavailableReply(err)
		}
		return FormatStats(stats)

	case "arbitrage":
		events, err := r.history.GetRecentArbitrage(ctx, recentArbitrageLimit)
		if err != nil {
			r.logger.Warn("failed to load arbitrage history", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return FormatArbitrageHistory(events)

	case "alerts":
		return r.handleAlerts(ctx, userID, args)

	case "portfolio":
		return r.handlePortfolio(ctx, userID, args)

	case "start", "help":
		return "*HOLDER price bot*\n\n" +
			"/price — current prices on STON.fi and WEEX\n" +
			"/stats — 24h statistics and DEX/CEX spread\n" +
			"/arbitrage — recent arbitrage opportunities\n" +
			"/alerts — manage price alerts\n" +
			"/portfolio — track your holdings"

	default:
		return ""
	}
}

func (r *CommandRouter) handleAlerts(ctx context.Context, userID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		settings, err := r.subs.GetAlertSettings(ctx, userID)
		if err != nil {
			r.logger.Warn("failed to load alert settings", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return FormatAlertSettings(settings)
	}

	switch fields[0] {
	case "on":
		if err := r.subs.SetAlertsEnabled(ctx, userID, true); err != nil {
			r.logger.Warn("failed to enable alerts", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return "Alerts enabled. You will be notified about significant price moves."

	case "off":
		if err := r.subs.SetAlertsEnabled(ctx, userID, false); err != nil {
			r.logger.Warn("failed to disable alerts", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return "Alerts disabled."

	case "set":
		if len(fields) < 2 {
			return "Usage: /alerts set 3.5"
		}
		threshold, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || threshold <= 0 {
			return "The threshold must be a positive number of percent, e.g. /alerts set 3.5"
		}
		if err := r.subs.SetAlertThreshold(ctx, userID, threshold); err != nil {
			r.logger.Warn("failed to set alert threshold", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return "Alert threshold set to " + strconv.FormatFloat(threshold, 'f', 1, 64) + "%."

	default:
		return "Usage: /alerts on | off | set <percent>"
	}
}

func (r *CommandRouter) handlePortfolio(ctx context.Context, userID int64, args string) string {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		amount, err := r.portfolio.GetHolding(ctx, userID)
		if err != nil {
			r.logger.Warn("failed to load holding", zap.Error(err))
			return "Something went wrong, try again later."
		}
		snap, err := r.prices.GetAllPrices(ctx)
		if err != nil {
			// Value is optional; the holding still shows.
			snap = model.Snapshot{}
		}
		return FormatPortfolio(amount, snap)
	}

	if len(fields) < 2 {
		return "Usage: /portfolio add <amount> | remove <amount>"
	}
	amount, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || amount <= 0 {
		return "The amount must be a positive number, e.g. /portfolio add 100"
	}

	switch fields[0] {
	case "add":
		if err := r.portfolio.AddHolding(ctx, userID, amount); err != nil {
			r.logger.Warn("failed to add holding", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return "Added to your portfolio."

	case "remove":
		if err := r.portfolio.RemoveHolding(ctx, userID, amount); err != nil {
			r.logger.Warn("failed to remove holding", zap.Error(err))
			return "Something went wrong, try again later."
		}
		return "Removed from your portfolio."

	default:
		return "Usage: /portfolio add <amount> | remove <amount>"
	}
}

func unavailableReply(err error) string {
	if errors.Is(err, service.ErrUnavailable) {
		return "Price data is unavailable right now, try again in a minute."
	}
	return "Something went wrong, try again later."
}
