package notifier

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/Memetrix/holder-price-bot/internal/domain/model"
)

// TelegramNotifier fans alert events out to the configured chat. It is
// also the transport for bot commands: the command loop in cmd/holderbot
// reads updates from Bot().
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramNotifier(token string, chatID int64, logger *zap.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}

	logger.Info("telegram bot authorized", zap.String("username", bot.Self.UserName))

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		logger: logger.With(zap.String("component", "telegram")),
	}, nil
}

func (n *TelegramNotifier) Bot() *tgbotapi.BotAPI {
	return n.bot
}

func (n *TelegramNotifier) SendAlert(ctx context.Context, ev model.AlertEvent) error {
	return n.SendMessage(ctx, FormatAlert(ev))
}

func (n *TelegramNotifier) SendAlertTo(ctx context.Context, chatID int64, ev model.AlertEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return n.Reply(chatID, FormatAlert(ev))
}

func (n *TelegramNotifier) SendMessage(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Reply sends text to an arbitrary chat, used by the command loop.
func (n *TelegramNotifier) Reply(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram reply: %w", err)
	}
	return nil
}
