package notifiers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// TelegramNotifier mirrors admin alerts into a Telegram chat.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger zerolog.Logger
}

// NewTelegramNotifier creates a new instance of TelegramNotifier.
func NewTelegramNotifier(cfg config.TelegramConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	return newTelegramNotifier(cfg, tgbotapi.APIEndpoint, logger)
}

func newTelegramNotifier(cfg config.TelegramConfig, endpoint string, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.ChatID == 0 {
		return nil, fmt.Errorf("telegram chat id is required")
	}
	bot, err := tgbotapi.NewBotAPIWithAPIEndpoint(cfg.BotToken, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	return &TelegramNotifier{
		bot:    bot,
		chatID: cfg.ChatID,
		logger: logger.With().Str("component", "telegram_notifier").Logger(),
	}, nil
}

// Send implements the Notifier interface for the alert mirror.
func (n *TelegramNotifier) Send(_ context.Context, notification *model.Notification) error {
	text := fmt.Sprintf("*%s*\n\n%s",
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, notification.Title),
		tgbotapi.EscapeText(tgbotapi.ModeMarkdown, notification.Body))

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}

	n.logger.Info().Stringer("notification_id", notification.ID).Int64("chat_id", n.chatID).Msg("telegram message sent successfully")
	return nil
}
