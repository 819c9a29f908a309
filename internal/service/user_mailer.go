package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/event"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/ilindan-dev/pitch-dispatcher/internal/metrics"
	"github.com/ilindan-dev/pitch-dispatcher/internal/templates"
	"github.com/rs/zerolog"
)

// UserMailer turns change events into templated user emails.
// Single-event faults are returned so the caller may retry that event;
// broadcast fan-out never escalates.
type UserMailer struct {
	directory    repo.Directory
	notifier     Notifier
	renderer     *templates.Renderer
	broadcaster  *Broadcaster
	queryTimeout time.Duration
	logger       zerolog.Logger
}

func NewUserMailer(
	cfg *config.Config,
	directory repo.Directory,
	notifier Notifier,
	renderer *templates.Renderer,
	broadcaster *Broadcaster,
	logger *zerolog.Logger,
) *UserMailer {
	return &UserMailer{
		directory:    directory,
		notifier:     notifier,
		renderer:     renderer,
		broadcaster:  broadcaster,
		queryTimeout: cfg.Postgres.QueryTimeout,
		logger:       logger.With().Str("layer", "service").Str("component", "user_mailer").Logger(),
	}
}

// Handle classifies one payload and sends the resulting email(s).
func (m *UserMailer) Handle(ctx context.Context, payload []byte) (model.Outcome, error) {
	log := m.logger.With().Stringer("invocation_id", uuid.New()).Logger()

	outcome, err := m.handle(ctx, payload, log)
	if err != nil {
		outcome.Status = model.OutcomeFailed
		outcome.Reason = err.Error()
		log.Error().Err(err).Str("rule", outcome.Rule).Msg("event failed")
	} else {
		log.Info().
			Str("status", string(outcome.Status)).
			Str("rule", outcome.Rule).
			Str("reason", outcome.Reason).
			Int("sent", outcome.Sent).
			Int("failed", outcome.Failed).
			Int("skipped", outcome.Skipped).
			Msg("event handled")
	}
	metrics.ObserveEvent(ServiceMailer, string(outcome.Status), outcome.Rule)
	return outcome, err
}

func (m *UserMailer) handle(ctx context.Context, payload []byte, log zerolog.Logger) (model.Outcome, error) {
	ev, err := event.Parse(payload)
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(payload)).Msg("ignoring unparseable event")
		return model.Outcome{Status: model.OutcomeIgnored, Reason: err.Error()}, nil
	}

	switch rec := ev.Record.(type) {
	case *event.Transaction:
		if ev.Operation == event.OpInsert {
			return m.transaction(ctx, rec, log)
		}
	case *event.Submission:
		switch ev.Operation {
		case event.OpInsert:
			return m.submissionReceived(ctx, rec, log)
		case event.OpUpdate:
			return m.submissionReviewed(ctx, ev, rec, log)
		}
	case *event.Withdrawal:
		if ev.Operation == event.OpUpdate {
			return m.withdrawalStatus(ctx, ev, rec, log)
		}
	case *event.SupportTicket:
		if ev.Operation == event.OpUpdate {
			return m.ticketStatus(ctx, ev, rec, log)
		}
	case *event.Broadcast:
		if ev.Operation == event.OpInsert {
			return m.broadcast(ctx, rec), nil
		}
	}
	return model.Outcome{Status: model.OutcomeIgnored, Reason: "no matching rule"}, nil
}

func (m *UserMailer) transaction(ctx context.Context, tx *event.Transaction, log zerolog.Logger) (model.Outcome, error) {
	const rule = "receipt"
	if normalize(tx.Type) == "withdrawal" {
		// Withdrawal requests only notify on their later status change.
		return model.Outcome{Status: model.OutcomeSkipped, Rule: "withdrawal_request", Reason: "withdrawal requests are not receipted"}, nil
	}
	return m.deliver(ctx, rule, tx.UserID, log, func(to model.Recipient) (templates.Email, error) {
		return m.renderer.Receipt(to, tx)
	})
}

func (m *UserMailer) submissionReceived(ctx context.Context, sub *event.Submission, log zerolog.Logger) (model.Outcome, error) {
	const rule = "submission_received"
	playlist, err := lookupPlaylist(ctx, m.directory, m.queryTimeout, sub.PlaylistID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Outcome{Status: model.OutcomeSkipped, Rule: rule, Reason: "playlist not found"}, nil
	}
	if err != nil {
		return model.Outcome{Rule: rule}, fmt.Errorf("%w: playlist %s: %v", ErrLookup, sub.PlaylistID, err)
	}
	// The curator is notified, never the submitting artist.
	return m.deliver(ctx, rule, playlist.CuratorID, log, func(to model.Recipient) (templates.Email, error) {
		return m.renderer.SubmissionReceived(to, sub, playlist)
	})
}

func (m *UserMailer) submissionReviewed(ctx context.Context, ev *event.ChangeEvent, sub *event.Submission, log zerolog.Logger) (model.Outcome, error) {
	var priorStatus string
	if prior, ok := ev.Prior.(*event.Submission); ok {
		priorStatus = prior.Status
	}
	if !columnChanged(ev, "status", sub.Status, priorStatus) {
		return model.Outcome{Status: model.OutcomeIgnored, Reason: "status unchanged"}, nil
	}

	switch normalize(sub.Status) {
	case "accepted":
		playlistName := m.playlistName(ctx, sub.PlaylistID, log)
		return m.deliver(ctx, "submission_accepted", sub.ArtistID, log, func(to model.Recipient) (templates.Email, error) {
			return m.renderer.SubmissionAccepted(to, sub, playlistName)
		})
	case "declined":
		playlistName := m.playlistName(ctx, sub.PlaylistID, log)
		return m.deliver(ctx, "submission_declined", sub.ArtistID, log, func(to model.Recipient) (templates.Email, error) {
			return m.renderer.SubmissionDeclined(to, sub, playlistName)
		})
	}
	return model.Outcome{Status: model.OutcomeIgnored, Reason: "no template for status " + sub.Status}, nil
}

func (m *UserMailer) withdrawalStatus(ctx context.Context, ev *event.ChangeEvent, w *event.Withdrawal, log zerolog.Logger) (model.Outcome, error) {
	var priorStatus string
	if prior, ok := ev.Prior.(*event.Withdrawal); ok {
		priorStatus = prior.Status
	}
	if !columnChanged(ev, "status", w.Status, priorStatus) {
		return model.Outcome{Status: model.OutcomeIgnored, Reason: "status unchanged"}, nil
	}
	return m.deliver(ctx, "withdrawal_status", w.UserID, log, func(to model.Recipient) (templates.Email, error) {
		return m.renderer.WithdrawalStatus(to, w)
	})
}

func (m *UserMailer) ticketStatus(ctx context.Context, ev *event.ChangeEvent, t *event.SupportTicket, log zerolog.Logger) (model.Outcome, error) {
	var priorStatus string
	if prior, ok := ev.Prior.(*event.SupportTicket); ok {
		priorStatus = prior.Status
	}
	if !columnChanged(ev, "status", t.Status, priorStatus) {
		return model.Outcome{Status: model.OutcomeIgnored, Reason: "status unchanged"}, nil
	}
	return m.deliver(ctx, "ticket_status", t.UserID, log, func(to model.Recipient) (templates.Email, error) {
		return m.renderer.TicketStatus(to, t)
	})
}

func (m *UserMailer) broadcast(ctx context.Context, b *event.Broadcast) model.Outcome {
	ann := &model.Announcement{
		ID:         b.ID,
		Subject:    b.Subject,
		Message:    b.Message,
		Channel:    model.AnnouncementChannel(orDefault(b.Channel, string(model.AnnouncementEmail))),
		TargetRole: model.TargetRole(orDefault(b.TargetRole, string(model.TargetAll))),
	}
	if !ann.WantsEmail() {
		return model.Outcome{Status: model.OutcomeSkipped, Rule: "broadcast", Reason: "in-app only"}
	}
	return m.broadcaster.Run(ctx, ann)
}

// deliver resolves the owning user, renders and sends one email.
// An unresolvable recipient is skipped silently.
func (m *UserMailer) deliver(
	ctx context.Context,
	rule, userID string,
	log zerolog.Logger,
	render func(to model.Recipient) (templates.Email, error),
) (model.Outcome, error) {
	to, ok, err := m.resolve(ctx, userID)
	if err != nil {
		return model.Outcome{Rule: rule}, err
	}
	if !ok {
		log.Info().Str("rule", rule).Str("user_id", userID).Msg("no reachable address, skipping")
		return model.Outcome{Status: model.OutcomeSkipped, Rule: rule, Reason: "recipient not resolvable"}, nil
	}

	email, err := render(to)
	if err != nil {
		return model.Outcome{Rule: rule}, fmt.Errorf("render %s: %w", rule, err)
	}

	n := model.NewEmailNotification(to, email.Subject, email.HTML)
	if err := m.notifier.Send(ctx, n); err != nil {
		return model.Outcome{Rule: rule}, fmt.Errorf("%w: %s to %s: %v", ErrDelivery, rule, to.Address, err)
	}
	return model.Outcome{Status: model.OutcomeSent, Rule: rule, Sent: 1}, nil
}

func (m *UserMailer) resolve(ctx context.Context, userID string) (model.Recipient, bool, error) {
	p, err := lookupProfile(ctx, m.directory, m.queryTimeout, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Recipient{}, false, nil
	}
	if err != nil {
		return model.Recipient{}, false, fmt.Errorf("%w: profile %s: %v", ErrLookup, userID, err)
	}
	to, ok := p.Recipient()
	return to, ok, nil
}

// playlistName is a best-effort embellishment; failures yield "".
func (m *UserMailer) playlistName(ctx context.Context, playlistID string, log zerolog.Logger) string {
	p, err := lookupPlaylist(ctx, m.directory, m.queryTimeout, playlistID)
	if err != nil {
		log.Debug().Err(err).Str("playlist_id", playlistID).Msg("playlist name unavailable")
		return ""
	}
	return p.Name
}
