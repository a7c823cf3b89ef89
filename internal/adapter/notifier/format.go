package notifier

import (
	"fmt"
	"strings"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// FormatAlert renders an alert event as a Telegram Markdown message.
func FormatAlert(ev model.AlertEvent) string {
	switch ev.Kind {
	case model.AlertArbitrage:
		return fmt.Sprintf(
			"💰 *Arbitrage opportunity*\n\n"+
				"Buy on *%s* at $%.6f\n"+
				"Sell on *%s* at $%.6f\n"+
				"Spread: *%.2f%%*",
			venueName(ev.BuyOn), ev.BuyPrice,
			venueName(ev.SellOn), ev.SellPrice,
			ev.ProfitPercent,
		)
	default:
		arrow := "📈"
		if ev.Percent < 0 {
			arrow = "📉"
		}
		return fmt.Sprintf(
			"%s *%s %+.2f%%* on %s\n\n"+
				"%.6f → %.6f",
			arrow, ev.Pair, ev.Percent, venueName(ev.Source),
			ev.OldPrice, ev.NewPrice,
		)
	}
}

// FormatSnapshot renders the /price reply.
func FormatSnapshot(snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString("*HOLDER price*\n")

	for _, rec := range snap.Records() {
		fmt.Fprintf(&b, "\n*%s* (%s)\n", venueName(rec.Source), rec.Pair)
		fmt.Fprintf(&b, "Price: %.6f\n", rec.Price)
		if usd, ok := rec.USD(); ok {
			fmt.Fprintf(&b, "USD: $%.6f\n", usd)
		}
		fmt.Fprintf(&b, "24h: %+.2f%%\n", rec.Change24h)
	}

	return b.String()
}

// FormatStats renders the /stats reply.
func FormatStats(stats model.Stats) string {
	var b strings.Builder
	b.WriteString("*HOLDER 24h statistics*\n")

	if stats.DEX != nil {
		b.WriteString("\n*STON.fi DEX*\n")
		writeVenueStats(&b, stats.DEX)
	}
	if stats.CEX != nil {
		b.WriteString("\n*WEEX CEX*\n")
		writeVenueStats(&b, stats.CEX)
	}
	if stats.Arbitrage != nil {
		fmt.Fprintf(&b, "\n*DEX/CEX spread*: %+.2f%%", stats.Arbitrage.DifferencePercent)
		if stats.Arbitrage.Opportunity {
			b.WriteString(" ⚡")
		}
		b.WriteString("\n")
	}

	return b.String()
}

func writeVenueStats(b *strings.Builder, vs *model.VenueStats) {
	fmt.Fprintf(b, "Current: %.6f\n", vs.Current)
	fmt.Fprintf(b, "High: %.6f / Low: %.6f\n", vs.High, vs.Low)
	fmt.Fprintf(b, "Change: %+.2f%%\n", vs.Change)
	fmt.Fprintf(b, "Volume: %.2f\n", vs.Volume)
}

// FormatArbitrageHistory renders the /arbitrage reply.
func FormatArbitrageHistory(events []model.AlertEvent) string {
	if len(events) == 0 {
		return "No arbitrage opportunities recorded recently."
	}

	var b strings.Builder
	b.WriteString("*Recent arbitrage opportunities*\n")
	for _, ev := range events {
		fmt.Fprintf(&b, "\n%s — buy *%s* $%.6f, sell *%s* $%.6f (*%.2f%%*)",
			ev.Timestamp.Format("Jan 2 15:04"),
			venueName(ev.BuyOn), ev.BuyPrice,
			venueName(ev.SellOn), ev.SellPrice,
			ev.ProfitPercent,
		)
	}
	return b.String()
}

// FormatAlertSettings renders the /alerts reply.
func FormatAlertSettings(s model.AlertSettings) string {
	state := "off"
	if s.Enabled {
		state = "on"
	}
	return fmt.Sprintf(
		"*Alert settings*\n\nAlerts: *%s*\nThreshold: *%.1f%%*\n\n"+
			"/alerts on — enable\n/alerts off — disable\n/alerts set 3.5 — change threshold",
		state, s.Threshold,
	)
}

// FormatPortfolio renders the /portfolio reply; the USD value is shown
// when the snapshot offers a conversion path (CEX preferred).
func FormatPortfolio(amount float64, snap model.Snapshot) string {
	var b strings.Builder
	b.WriteString("*Portfolio*\n\n")
	fmt.Fprintf(&b, "HOLDER: %.4f\n", amount)

	for _, rec := range []*model.PriceRecord{snap.CEX, snap.DEX} {
		if rec == nil {
			continue
		}
		if usd, ok := rec.USD(); ok {
			fmt.Fprintf(&b, "Value: $%.2f (%s)\n", amount*usd, venueName(rec.Source))
			break
		}
	}

	b.WriteString("\n/portfolio add 100 — add holdings\n/portfolio remove 50 — remove holdings")
	return b.String()
}

func venueName(key model.SourceKey) string {
	switch key {
	case model.SourceStonfiDEX:
		return "STON.fi"
	case model.SourceWeexCEX:
		return "WEEX"
	default:
		return string(key)
	}
}
