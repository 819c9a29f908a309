package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/event"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/ilindan-dev/pitch-dispatcher/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AlertRouter turns change events into team chat alerts.
// It never fails its caller: every fault is logged and reported in the Outcome.
type AlertRouter struct {
	directory    repo.Directory
	notifier     Notifier
	currency     string
	queryTimeout time.Duration
	logger       zerolog.Logger
}

func NewAlertRouter(cfg *config.Config, directory repo.Directory, notifier Notifier, logger *zerolog.Logger) *AlertRouter {
	return &AlertRouter{
		directory:    directory,
		notifier:     notifier,
		currency:     cfg.Site.Currency,
		queryTimeout: cfg.Postgres.QueryTimeout,
		logger:       logger.With().Str("layer", "service").Str("component", "alert_router").Logger(),
	}
}

type alert struct {
	rule  string
	title string
	body  alertBody
}

// alertBody accumulates "Label: value" lines, skipping empty values.
type alertBody struct {
	strings.Builder
}

func (b *alertBody) field(label, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
}

func (b *alertBody) line(text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	if b.Len() > 0 {
		b.WriteByte('\n')
	}
	b.WriteString(text)
}

// Handle classifies one payload and posts at most one alert.
// The returned error is always nil.
func (r *AlertRouter) Handle(ctx context.Context, payload []byte) (model.Outcome, error) {
	log := r.logger.With().Stringer("invocation_id", uuid.New()).Logger()
	outcome := r.handle(ctx, payload, log)

	metrics.ObserveEvent(ServiceAlertRouter, string(outcome.Status), outcome.Rule)
	log.Info().Str("status", string(outcome.Status)).Str("rule", outcome.Rule).Str("reason", outcome.Reason).Msg("event handled")
	return outcome, nil
}

func (r *AlertRouter) handle(ctx context.Context, payload []byte, log zerolog.Logger) model.Outcome {
	ev, err := event.Parse(payload)
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(payload)).Msg("ignoring unparseable event")
		return model.Outcome{Status: model.OutcomeIgnored, Reason: err.Error()}
	}

	a := r.classify(ctx, ev, log)
	if a == nil {
		return model.Outcome{Status: model.OutcomeIgnored, Reason: "no matching rule"}
	}

	n := model.NewWebhookNotification(a.title, a.body.String())
	if err := r.notifier.Send(ctx, n); err != nil {
		log.Error().Err(err).Str("rule", a.rule).Stringer("notification_id", n.ID).Msg("failed to deliver admin alert")
		return model.Outcome{Status: model.OutcomeFailed, Rule: a.rule, Reason: err.Error()}
	}
	return model.Outcome{Status: model.OutcomeSent, Rule: a.rule, Sent: 1}
}

// classify applies the alert rules in order; the first match wins.
func (r *AlertRouter) classify(ctx context.Context, ev *event.ChangeEvent, log zerolog.Logger) *alert {
	if ev.Operation == event.OpManual {
		return classifyManual(ev.Manual)
	}

	switch rec := ev.Record.(type) {
	case *event.Profile:
		return classifyProfile(ev, rec)
	case *event.Submission:
		if ev.Operation == event.OpInsert {
			return r.newSubmission(ctx, rec, log)
		}
	case *event.Playlist:
		if ev.Operation == event.OpInsert {
			return r.newPlaylist(ctx, rec, log)
		}
	case *event.Withdrawal:
		if ev.Operation == event.OpInsert {
			return r.newWithdrawal(ctx, rec, log)
		}
	case *event.SupportTicket:
		if ev.Operation == event.OpInsert {
			return r.newTicket(ctx, rec, log)
		}
	}
	return nil
}

func classifyProfile(ev *event.ChangeEvent, rec *event.Profile) *alert {
	switch ev.Operation {
	case event.OpInsert:
		a := &alert{rule: "new_user", title: "New user signed up"}
		a.body.field("Email", rec.Email)
		a.body.field("Name", orDefault(rec.FullName, rec.Username))
		a.body.field("Role", orDefault(rec.Role, "none"))
		return a
	case event.OpUpdate:
	default:
		return nil
	}

	status := normalize(rec.VerificationStatus)
	var prior event.Profile
	if p, ok := ev.Prior.(*event.Profile); ok {
		prior = *p
	}

	switch {
	case status == "verified" && columnChanged(ev, "verification_status", rec.VerificationStatus, prior.VerificationStatus):
		a := &alert{rule: "curator_verified", title: "Curator verified"}
		a.body.field("Email", rec.Email)
		a.body.field("Name", orDefault(rec.FullName, rec.Username))
		return a
	case status == "pending":
		a := &alert{rule: "verification_requested", title: "Verification requested"}
		a.body.field("Email", rec.Email)
		a.body.field("Name", orDefault(rec.FullName, rec.Username))
		a.body.field("NIN", orDefault(strings.TrimSpace(rec.NIN), "N/A"))
		return a
	case normalize(rec.Role) == "curator" && columnChanged(ev, "role", rec.Role, prior.Role):
		a := &alert{rule: "promoted_to_curator", title: "Promoted to curator"}
		a.body.field("Email", rec.Email)
		a.body.field("Name", orDefault(rec.FullName, rec.Username))
		return a
	}
	return nil
}

func classifyManual(m *event.Manual) *alert {
	if m == nil {
		return nil
	}
	switch m.Type {
	case event.ManualLog:
		a := &alert{rule: "admin_log", title: orDefault(m.Title, "Admin log")}
		a.body.line(m.Message)
		return a
	case event.ManualLogin:
		a := &alert{rule: "admin_login", title: "Admin login"}
		a.body.field("Email", orDefault(m.Email, "unknown"))
		a.body.field("Name", m.Name)
		return a
	case event.ManualChat:
		a := &alert{rule: "live_chat", title: "Live chat question"}
		a.body.field("From", orDefault(m.Email, orDefault(m.Name, "anonymous visitor")))
		a.body.field("Message", m.Message)
		return a
	}
	return nil
}

func (r *AlertRouter) newSubmission(ctx context.Context, sub *event.Submission, log zerolog.Logger) *alert {
	a := &alert{rule: "new_submission", title: "New submission"}
	a.body.field("Song", sub.SongTitle)
	a.body.field("Link", sub.SongLink)
	a.body.field("Fee paid", r.money(sub.AmountPaid))
	if playlist := r.playlist(ctx, sub.PlaylistID, log); playlist != nil {
		a.body.field("Playlist", playlist.Name)
	}
	a.body.field("Artist", describeProfile(r.profile(ctx, sub.ArtistID, log)))
	return a
}

func (r *AlertRouter) newPlaylist(ctx context.Context, pl *event.Playlist, log zerolog.Logger) *alert {
	a := &alert{rule: "new_playlist", title: "New playlist"}
	a.body.field("Name", pl.Name)
	a.body.field("Genre", pl.Genre)
	a.body.field("Submission fee", r.money(pl.SubmissionFee))
	a.body.field("Curator", describeProfile(r.profile(ctx, pl.CuratorID, log)))
	return a
}

func (r *AlertRouter) newWithdrawal(ctx context.Context, w *event.Withdrawal, log zerolog.Logger) *alert {
	a := &alert{rule: "withdrawal_requested", title: "Withdrawal requested"}
	a.body.field("Amount", r.money(w.Amount))
	a.body.field("Bank", strings.TrimSpace(w.BankName+" "+w.AccountNumber))
	a.body.field("Account name", w.AccountName)
	a.body.field("Requested by", describeProfile(r.profile(ctx, w.UserID, log)))
	return a
}

func (r *AlertRouter) newTicket(ctx context.Context, t *event.SupportTicket, log zerolog.Logger) *alert {
	a := &alert{rule: "new_ticket", title: "New support ticket"}
	a.body.field("Subject", t.Subject)
	a.body.field("Priority", t.Priority)
	a.body.field("Message", t.Message)
	a.body.field("From", describeProfile(r.profile(ctx, t.UserID, log)))
	return a
}

// profile is a best-effort enrichment read; failures are logged and yield nil.
func (r *AlertRouter) profile(ctx context.Context, userID string, log zerolog.Logger) *model.Profile {
	p, err := lookupProfile(ctx, r.directory, r.queryTimeout, userID)
	if err != nil {
		logEnrichment(log, err, "profile", userID)
		return nil
	}
	return p
}

func (r *AlertRouter) playlist(ctx context.Context, playlistID string, log zerolog.Logger) *model.Playlist {
	p, err := lookupPlaylist(ctx, r.directory, r.queryTimeout, playlistID)
	if err != nil {
		logEnrichment(log, err, "playlist", playlistID)
		return nil
	}
	return p
}

func logEnrichment(log zerolog.Logger, err error, what, id string) {
	ev := log.Warn()
	if errors.Is(err, repo.ErrNotFound) {
		ev = log.Debug()
	}
	ev.Err(err).Str("lookup", what).Str("id", id).Msg("enrichment failed, sending alert without it")
}

func (r *AlertRouter) money(amount decimal.Decimal) string {
	if amount.IsZero() {
		return ""
	}
	return r.currency + amount.String()
}
