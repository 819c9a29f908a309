// Package service classifies change events and turns them into notifications.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/event"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
)

const (
	ServiceAlertRouter = "alert-router"
	ServiceMailer      = "mailer"
)

var (
	// ErrLookup is returned when the directory fails for a reason other than a missing row.
	ErrLookup = errors.New("directory lookup failed")
	// ErrDelivery is returned when a single-event email could not be handed to the provider.
	ErrDelivery = errors.New("delivery failed")
)

// Notifier is the outbound port both services deliver through.
type Notifier interface {
	Send(ctx context.Context, n *model.Notification) error
}

// lookupProfile runs one directory read under the query timeout.
func lookupProfile(ctx context.Context, dir repo.Directory, timeout time.Duration, userID string) (*model.Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, repo.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return dir.GetProfile(ctx, userID)
}

func lookupPlaylist(ctx context.Context, dir repo.Directory, timeout time.Duration, playlistID string) (*model.Playlist, error) {
	if strings.TrimSpace(playlistID) == "" {
		return nil, repo.ErrNotFound
	}
	ctx, cancel := withTimeout(ctx, timeout)
	defer cancel()
	return dir.GetPlaylist(ctx, playlistID)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// columnChanged compares a column between the new and prior row. A missing
// prior row counts as a change; a prior row that omits the column does not.
func columnChanged(ev *event.ChangeEvent, column, current, prior string) bool {
	if ev.Prior == nil {
		return true
	}
	if !ev.PriorHas(column) {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(current), strings.TrimSpace(prior))
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}

func describeProfile(p *model.Profile) string {
	if p == nil {
		return "unknown"
	}
	if p.Email == "" {
		return p.DisplayName()
	}
	return fmt.Sprintf("%s (%s)", p.DisplayName(), p.Email)
}
