// Package notifiers delivers classified notifications to their destinations:
// the team chat webhook, an optional Telegram mirror and the mail provider.
package notifiers

import (
	"context"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
)

// Notifier defines the interface for any notification sending service.
type Notifier interface {
	// Send dispatches the notification.
	Send(ctx context.Context, n *model.Notification) error
}
