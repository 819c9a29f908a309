package notifiers

import (
	"context"
	"fmt"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends notifications via SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewEmailNotifier creates a new instance of EmailNotifier.
func NewEmailNotifier(cfg config.MailConfig, logger *zerolog.Logger) *EmailNotifier {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	return &EmailNotifier{
		dialer: d,
		from:   cfg.From,
		logger: logger.With().Str("component", "email_notifier").Logger(),
	}
}

func (n *EmailNotifier) message(notification *model.Notification) (*gomail.Message, error) {
	if notification.Email == nil || notification.Email.To == "" {
		return nil, fmt.Errorf("%w for email channel", ErrInvalidNotification)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetAddressHeader("To", notification.Email.To, notification.Email.Name)
	m.SetHeader("Subject", notification.Title)
	m.SetBody("text/html", notification.Body)
	return m, nil
}

// Send implements the Notifier interface for email.
// gomail has no context support, so ctx is not honoured.
func (n *EmailNotifier) Send(_ context.Context, notification *model.Notification) error {
	m, err := n.message(notification)
	if err != nil {
		return err
	}

	// DialAndSend opens a connection, sends the email, and closes it.
	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	n.logger.Debug().Stringer("notification_id", notification.ID).Str("recipient", notification.Email.To).Msg("email sent")
	return nil
}
