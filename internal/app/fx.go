package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/ilindan-dev/pitch-dispatcher/internal/config"
	deliveryHTTP "github.com/ilindan-dev/pitch-dispatcher/internal/delivery/http"
	repo "github.com/ilindan-dev/pitch-dispatcher/internal/domain/repository"
	"github.com/ilindan-dev/pitch-dispatcher/internal/intake"
	natsintake "github.com/ilindan-dev/pitch-dispatcher/internal/intake/nats"
	"github.com/ilindan-dev/pitch-dispatcher/internal/intake/rabbitmq"
	"github.com/ilindan-dev/pitch-dispatcher/internal/logger"
	"github.com/ilindan-dev/pitch-dispatcher/internal/notifiers"
	"github.com/ilindan-dev/pitch-dispatcher/internal/service"
	"github.com/ilindan-dev/pitch-dispatcher/internal/storage/postgres"
	"github.com/ilindan-dev/pitch-dispatcher/internal/storage/redis"
	"github.com/ilindan-dev/pitch-dispatcher/internal/templates"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

// CommonModule provides dependencies that are shared between the alert router and the mailer.
var CommonModule = fx.Options(
	fx.Provide(
		// Core components
		config.NewConfig,
		logger.NewLogger,

		// Storage Layer
		postgres.NewPool,
		redis.NewClient,
		postgres.NewDirectoryRepository,
		newDirectory,

		// Delivery
		templates.NewRenderer,
		notifiers.NewDispatcher,
		func(d *notifiers.Dispatcher) service.Notifier { return d },
	),

	fx.Invoke(func(pool *pgxpool.Pool, client *goredis.Client, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				pool.Close()
				if client != nil {
					return client.Close()
				}
				return nil
			},
		})
	}),
)

// AlertRouterModule defines the Fx module for the admin alert router.
var AlertRouterModule = fx.Options(
	fx.Supply(logger.ServiceName(service.ServiceAlertRouter)),
	CommonModule,
	fx.Provide(
		service.NewAlertRouter,
		func(r *service.AlertRouter) intake.EventHandler { return r },
		func(h intake.EventHandler) deliveryHTTP.Endpoint {
			return deliveryHTTP.Endpoint{Path: "/api/v1/admin-alerts", Handler: h}
		},
	),
	runtimeModule,
)

// MailerModule defines the Fx module for the user mailer and broadcast fan-out.
var MailerModule = fx.Options(
	fx.Supply(logger.ServiceName(service.ServiceMailer)),
	CommonModule,
	fx.Provide(
		service.NewBroadcaster,
		service.NewUserMailer,
		func(m *service.UserMailer) intake.EventHandler { return m },
		func(h intake.EventHandler) deliveryHTTP.Endpoint {
			return deliveryHTTP.Endpoint{Path: "/api/v1/user-emails", Handler: h}
		},
	),
	runtimeModule,
)

// runtimeModule starts the HTTP server and the optional queue and subject intakes.
var runtimeModule = fx.Options(
	fx.Provide(
		deliveryHTTP.NewHandlers,
		deliveryHTTP.NewServer,
	),

	fx.Invoke(func(server *deliveryHTTP.Server, log *zerolog.Logger, lc fx.Lifecycle) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				go func() {
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Fatal().Err(err).Msg("http server failed")
					}
				}()
				log.Info().Str("addr", server.Addr).Msg("http server started")
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Shutdown(ctx)
			},
		})
	}),

	fx.Invoke(registerRabbitMQ),
	fx.Invoke(registerNATS),
)

// newDirectory returns the Postgres directory, behind the Redis cache when one is configured.
func newDirectory(cfg *config.Config, pg *postgres.DirectoryRepository, client *goredis.Client, log *zerolog.Logger) repo.Directory {
	if client == nil {
		return pg
	}
	return redis.NewCachedDirectory(pg, redis.NewProfileCache(log, client), cfg.Redis.TTL, log)
}

func registerRabbitMQ(cfg *config.Config, handler intake.EventHandler, svc logger.ServiceName, log *zerolog.Logger, lc fx.Lifecycle) {
	if cfg.Intake.RabbitMQ.DSN == "" {
		return
	}
	runCtx, cancel := context.WithCancel(context.Background())
	var conn *amqp.Connection

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			c, err := rabbitmq.NewConnection(cfg.Intake.RabbitMQ.DSN)
			if err != nil {
				return err
			}
			conn = c

			consumer := rabbitmq.New(rabbitmq.Config{
				Queue:   intake.DefaultName(cfg.Intake.RabbitMQ.Queue, string(svc)),
				Workers: cfg.Intake.RabbitMQ.Workers,
			}, c, handler, log)
			if err := consumer.DeclareQueue(); err != nil {
				return err
			}
			go consumer.Start(runCtx)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			if conn != nil {
				return conn.Close()
			}
			return nil
		},
	})
}

func registerNATS(cfg *config.Config, handler intake.EventHandler, svc logger.ServiceName, log *zerolog.Logger, lc fx.Lifecycle) {
	if cfg.Intake.NATS.URL == "" {
		return
	}
	name := string(svc)
	subscriber := natsintake.NewSubscriber(natsintake.Config{
		URL:        cfg.Intake.NATS.URL,
		Subject:    intake.DefaultName(cfg.Intake.NATS.Subject, name),
		QueueGroup: intake.DefaultName(cfg.Intake.NATS.QueueGroup, name),
	}, handler, log)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return subscriber.Start() },
		OnStop:  func(ctx context.Context) error { return subscriber.Stop() },
	})
}
