package notifiers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/ilindan-dev/pitch-dispatcher/internal/metrics"
	"github.com/rs/zerolog"
)

// Dispatcher is a composite notifier that routes notifications to the
// destinations configured for their channel. It implements Notifier itself.
type Dispatcher struct {
	routes map[model.Channel][]Notifier
	logger zerolog.Logger
}

// Ensure compile-time conformance.
var _ Notifier = (*Dispatcher)(nil)

// NewDispatcher builds the destinations for every channel from configuration.
// The webhook channel fans out to the chat webhook and the Telegram mirror;
// email and broadcast share the mail provider behind one circuit breaker.
func NewDispatcher(cfg *config.Config, logger *zerolog.Logger) (*Dispatcher, error) {
	log := logger.With().Str("component", "dispatcher").Logger()

	var alerts []Notifier
	if cfg.Admin.WebhookURL != "" {
		webhook, err := NewWebhookNotifier(WebhookConfig{
			URL:      cfg.Admin.WebhookURL,
			Username: cfg.Admin.BotName,
			Timeout:  cfg.Admin.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize webhook notifier: %w", err)
		}
		alerts = append(alerts, webhook)
		log.Info().Msg("webhook notifier enabled")
	}
	if cfg.Telegram.BotToken != "" {
		tg, err := NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize telegram notifier: %w", err)
		}
		alerts = append(alerts, tg)
		log.Info().Msg("telegram notifier enabled")
	}

	mailer, err := newMailProvider(cfg.Mail, logger)
	if err != nil {
		return nil, err
	}
	mail := NewBreakerNotifier("mail", mailer, cfg.Mail.Breaker.MaxFailures, cfg.Mail.Breaker.OpenTimeout, logger)

	return NewChannelDispatcher(map[model.Channel][]Notifier{
		model.ChannelWebhook:   alerts,
		model.ChannelEmail:     {mail},
		model.ChannelBroadcast: {mail},
	}, logger), nil
}

// NewChannelDispatcher builds a dispatcher from explicit routes.
func NewChannelDispatcher(routes map[model.Channel][]Notifier, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		routes: routes,
		logger: logger.With().Str("component", "dispatcher").Logger(),
	}
}

func newMailProvider(cfg config.MailConfig, logger *zerolog.Logger) (Notifier, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	log := logger.With().Str("component", "dispatcher").Str("provider", provider).Logger()

	switch provider {
	case "api":
		if cfg.APIKey == "" {
			log.Warn().Msg("mail api key not set, emails will only be logged")
			return NewLogNotifier(logger), nil
		}
		mailer, err := NewAPIMailer(APIMailerConfig{
			BaseURL: cfg.APIURL,
			APIKey:  cfg.APIKey,
			From:    cfg.From,
			Timeout: cfg.Timeout,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mail api: %w", err)
		}
		log.Info().Msg("mail api provider enabled")
		return mailer, nil
	case "smtp":
		if cfg.SMTP.Host == "" {
			return nil, errors.New("mail.smtp.host is required for the smtp provider")
		}
		log.Info().Msg("smtp provider enabled")
		return NewEmailNotifier(cfg, logger), nil
	case "log", "":
		return NewLogNotifier(logger), nil
	default:
		return nil, fmt.Errorf("unknown mail provider %q", cfg.Provider)
	}
}

// Send delivers the notification to every destination of its channel.
// A channel without destinations is logged and treated as delivered.
func (d *Dispatcher) Send(ctx context.Context, n *model.Notification) error {
	targets := d.routes[n.Channel]
	if len(targets) == 0 {
		d.logger.Warn().Str("channel", string(n.Channel)).Stringer("notification_id", n.ID).Msg("channel not configured, dropping notification")
		return nil
	}

	var errs []error
	for _, target := range targets {
		err := target.Send(ctx, n)
		metrics.ObserveDelivery(string(n.Channel), err)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
