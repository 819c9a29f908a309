package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// APIMailerConfig configures the HTTP mail provider.
type APIMailerConfig struct {
	BaseURL string
	APIKey  string
	From    string
	Timeout time.Duration
	Client  *http.Client
}

// APIMailer sends email through a transactional mail HTTP API
// (POST {base}/emails with a bearer key).
type APIMailer struct {
	endpoint string
	apiKey   string
	from     string
	client   *http.Client
	logger   zerolog.Logger
}

type apiEmail struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// NewAPIMailer builds the provider client. BaseURL and APIKey are required.
func NewAPIMailer(cfg APIMailerConfig, logger *zerolog.Logger) (*APIMailer, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("mail api key is required")
	}
	endpoint, err := url.JoinPath(strings.TrimSpace(cfg.BaseURL), "emails")
	if err != nil || strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, fmt.Errorf("invalid mail api url %q", cfg.BaseURL)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &APIMailer{
		endpoint: endpoint,
		apiKey:   cfg.APIKey,
		from:     cfg.From,
		client:   hc,
		logger:   logger.With().Str("component", "api_mailer").Logger(),
	}, nil
}

// Send implements the Notifier interface for email.
func (m *APIMailer) Send(ctx context.Context, notification *model.Notification) error {
	if notification.Email == nil || notification.Email.To == "" {
		return fmt.Errorf("%w for email channel", ErrInvalidNotification)
	}

	body, err := json.Marshal(apiEmail{
		From:    m.from,
		To:      []string{notification.Email.To},
		Subject: notification.Title,
		HTML:    notification.Body,
	})
	if err != nil {
		return fmt.Errorf("encode mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+m.apiKey)

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("mail api request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorResponse("mail api", resp)
	}
	if err := drainBody(resp); err != nil {
		return err
	}

	m.logger.Debug().Stringer("notification_id", notification.ID).Str("recipient", notification.Email.To).Msg("email accepted by provider")
	return nil
}
