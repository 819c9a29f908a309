package notifiers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
)

// BreakerNotifier wraps a notifier in a circuit breaker so that a dead
// provider fails fast instead of stalling every recipient of a broadcast.
type BreakerNotifier struct {
	next    Notifier
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerNotifier trips after maxFailures consecutive failures and
// probes again after openTimeout. Errors about a single recipient do not
// count as failures.
func NewBreakerNotifier(name string, next Notifier, maxFailures uint32, openTimeout time.Duration, logger *zerolog.Logger) *BreakerNotifier {
	if maxFailures == 0 {
		maxFailures = 10
	}
	log := logger.With().Str("component", "breaker").Str("breaker", name).Logger()

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || IsRecipientError(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	}

	return &BreakerNotifier{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Send implements the Notifier interface.
func (b *BreakerNotifier) Send(ctx context.Context, n *model.Notification) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		return nil, b.next.Send(ctx, n)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s unavailable: %w", b.breaker.Name(), err)
	}
	return err
}

// State reports the breaker state.
func (b *BreakerNotifier) State() gobreaker.State {
	return b.breaker.State()
}
