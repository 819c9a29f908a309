package service

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	"github.com/ilindan-dev/pitch-dispatcher/internal/domain/model"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/ilindan-dev/pitch-dispatcher/internal/metrics"
	"github.com/ilindan-dev/pitch-dispatcher/internal/templates"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Broadcaster sends one personalised copy of an announcement to every
// account in its audience.
//
// Concurrency (workers) and pace (interval) are independent: at most
// workers sends are in flight and a new send starts at most once per interval.
type Broadcaster struct {
	directory     repo.Directory
	notifier      Notifier
	renderer      *templates.Renderer
	workers       int
	interval      time.Duration
	pageSize      int
	maxRecipients int
	queryTimeout  time.Duration
	logger        zerolog.Logger
}

func NewBroadcaster(cfg *config.Config, directory repo.Directory, notifier Notifier, renderer *templates.Renderer, logger *zerolog.Logger) *Broadcaster {
	b := &Broadcaster{
		directory:     directory,
		notifier:      notifier,
		renderer:      renderer,
		workers:       cfg.Broadcast.Workers,
		interval:      cfg.Broadcast.Interval,
		pageSize:      cfg.Broadcast.PageSize,
		maxRecipients: cfg.Broadcast.MaxRecipients,
		queryTimeout:  cfg.Postgres.QueryTimeout,
		logger:        logger.With().Str("layer", "service").Str("component", "broadcaster").Logger(),
	}
	if b.workers <= 0 {
		b.workers = 1
	}
	if b.pageSize <= 0 {
		b.pageSize = 1000
	}
	return b
}

type broadcastCounters struct {
	sent, failed, skipped atomic.Int64
}

// Run fans the announcement out and returns the final counts. Per-recipient
// failures are counted and logged; Run itself never fails.
// The run is detached from ctx cancellation so a dropped caller does not
// cut a broadcast short.
func (b *Broadcaster) Run(ctx context.Context, ann *model.Announcement) model.Outcome {
	ctx = context.WithoutCancel(ctx)
	log := b.logger.With().Str("announcement_id", ann.ID).Str("target_role", string(ann.TargetRole)).Logger()
	started := time.Now()

	limit := rate.Inf
	if b.interval > 0 {
		limit = rate.Every(b.interval)
	}
	limiter := rate.NewLimiter(limit, 1)

	var (
		g        errgroup.Group
		counters broadcastCounters
		audience int
		after    string
	)
	g.SetLimit(b.workers)

pages:
	for {
		page, err := b.listPage(ctx, after)
		if err != nil {
			log.Error().Err(err).Str("after", after).Msg("failed to load account page, stopping broadcast early")
			break
		}

		for _, account := range page {
			after = account.ID
			if !ann.Targets(account.Role) {
				continue
			}
			if b.maxRecipients > 0 && audience >= b.maxRecipients {
				log.Warn().Int("max_recipients", b.maxRecipients).Msg("recipient cap reached, remaining accounts not emailed")
				break pages
			}
			audience++

			to, ok := account.Recipient()
			if !ok {
				counters.skipped.Add(1)
				continue
			}
			g.Go(func() error {
				b.sendOne(ctx, limiter, ann, to, &counters, log)
				return nil
			})
		}

		if len(page) < b.pageSize {
			break
		}
	}
	_ = g.Wait()

	outcome := model.Outcome{
		Status:  model.OutcomeBroadcast,
		Rule:    "broadcast",
		Sent:    int(counters.sent.Load()),
		Failed:  int(counters.failed.Load()),
		Skipped: int(counters.skipped.Load()),
	}
	metrics.ObserveBroadcast(outcome.Sent, outcome.Failed, outcome.Skipped)
	log.Info().
		Int("audience", audience).
		Int("sent", outcome.Sent).
		Int("failed", outcome.Failed).
		Int("skipped", outcome.Skipped).
		Dur("took", time.Since(started)).
		Msg("broadcast finished")
	return outcome
}

func (b *Broadcaster) listPage(ctx context.Context, after string) ([]model.Profile, error) {
	ctx, cancel := withTimeout(ctx, b.queryTimeout)
	defer cancel()
	return b.directory.ListAccounts(ctx, after, b.pageSize)
}

func (b *Broadcaster) sendOne(ctx context.Context, limiter *rate.Limiter, ann *model.Announcement, to model.Recipient, counters *broadcastCounters, log zerolog.Logger) {
	if err := limiter.Wait(ctx); err != nil {
		counters.failed.Add(1)
		log.Error().Err(err).Str("recipient", to.Address).Msg("rate limiter wait failed")
		return
	}

	email, err := b.renderer.Broadcast(to, ann)
	if err != nil {
		counters.failed.Add(1)
		log.Error().Err(err).Str("recipient", to.Address).Msg("failed to render broadcast")
		return
	}

	if err := b.notifier.Send(ctx, model.NewBroadcastNotification(to, email.Subject, email.HTML)); err != nil {
		counters.failed.Add(1)
		log.Warn().Err(err).Str("recipient", to.Address).Msg("broadcast send failed")
		return
	}
	counters.sent.Add(1)
}
