package notifiers

import (
	"context"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// LogNotifier writes notifications to the log instead of delivering them.
// It backs the "log" mail provider and any channel left unconfigured.
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a new instance of LogNotifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{
		logger: logger.With().Str("component", "log_notifier").Logger(),
	}
}

// Send implements the Notifier interface.
func (n *LogNotifier) Send(_ context.Context, notification *model.Notification) error {
	var recipient string
	if notification.Email != nil {
		recipient = notification.Email.To
	}

	n.logger.Info().
		Stringer("notification_id", notification.ID).
		Str("channel", string(notification.Channel)).
		Str("recipient", recipient).
		Str("title", notification.Title).
		Int("body_bytes", len(notification.Body)).
		Msg(">>> MOCK SEND: Notification dispatched")

	return nil
}
