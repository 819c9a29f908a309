// Package intake holds the types shared by the event sources.
package intake

import (
	"context"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
)

// EventHandler is implemented by the alert router and the user mailer.
type EventHandler interface {
	Handle(ctx context.Context, payload []byte) (model.Outcome, error)
}

// DefaultName derives a per-service queue or subject name when none is configured,
// e.g. "dispatcher.mailer".
func DefaultName(configured, service string) string {
	if configured != "" {
		return configured
	}
	return "dispatcher." + service
}
