package notifiers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
)

// WebhookConfig captures the team chat webhook settings.
type WebhookConfig struct {
	URL      string
	Username string
	Timeout  time.Duration
	Client   *http.Client
}

// WebhookNotifier posts admin alerts to a chat webhook (Discord-compatible payload).
type WebhookNotifier struct {
	url      string
	username string
	client   *http.Client
	logger   zerolog.Logger
}

type webhookPayload struct {
	Content  string `json:"content"`
	Username string `json:"username,omitempty"`
}

// NewWebhookNotifier builds a webhook client. The URL must be non-empty.
func NewWebhookNotifier(cfg WebhookConfig, logger *zerolog.Logger) (*WebhookNotifier, error) {
	webhookURL := strings.TrimSpace(cfg.URL)
	if webhookURL == "" {
		return nil, errors.New("webhook url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	hc := cfg.Client
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	return &WebhookNotifier{
		url:      webhookURL,
		username: strings.TrimSpace(cfg.Username),
		client:   hc,
		logger:   logger.With().Str("component", "webhook_notifier").Logger(),
	}, nil
}

// Send posts "<title>\n<body>" as a single message.
func (n *WebhookNotifier) Send(ctx context.Context, notification *model.Notification) error {
	body, err := json.Marshal(webhookPayload{
		Content:  formatAlert(notification),
		Username: n.username,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorResponse("webhook", resp)
	}
	if err := drainBody(resp); err != nil {
		return err
	}

	n.logger.Info().Stringer("notification_id", notification.ID).Str("title", notification.Title).Msg("webhook alert posted")
	return nil
}

func formatAlert(n *model.Notification) string {
	if n.Body == "" {
		return n.Title
	}
	return n.Title + "\n" + n.Body
}

// errorResponse reads the response body into an error that names the status.
func errorResponse(target string, resp *http.Response) error {
	respBody, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096))
	closeErr := resp.Body.Close()
	if readErr != nil {
		return errors.Join(fmt.Errorf("read %s error response: %w", target, readErr), closeErr)
	}
	return &StatusError{
		Target:     target,
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       strings.TrimSpace(string(respBody)),
	}
}

func drainBody(resp *http.Response) error {
	_, err := io.Copy(io.Discard, resp.Body)
	closeErr := resp.Body.Close()
	if err != nil {
		return errors.Join(fmt.Errorf("drain response body: %w", err), closeErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close response body: %w", closeErr)
	}
	return nil
}
