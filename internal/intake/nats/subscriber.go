// Package nats consumes change events published on a NATS subject.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ilindan-dev/pitch-dispatcher/internal/intake"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Config selects the server, subject and queue group.
type Config struct {
	URL        string
	Subject    string
	QueueGroup string
}

// Subscriber delivers every message on the subject to the event handler.
// Instances sharing a queue group split the stream between them.
// Requests (messages with a reply subject) are answered with the outcome.
type Subscriber struct {
	cfg     Config
	handler intake.EventHandler
	conn    *nats.Conn
	sub     *nats.Subscription
	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
}

type reply struct {
	Status string `json:"status"`
	Rule   string `json:"rule,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewSubscriber creates a new instance of Subscriber.
func NewSubscriber(cfg Config, handler intake.EventHandler, logger *zerolog.Logger) *Subscriber {
	ctx, cancel := context.WithCancel(context.Background())
	return &Subscriber{
		cfg:     cfg,
		handler: handler,
		ctx:     ctx,
		cancel:  cancel,
		logger:  logger.With().Str("component", "nats_subscriber").Str("subject", cfg.Subject).Logger(),
	}
}

// Start connects and subscribes.
func (s *Subscriber) Start() error {
	log := s.logger
	opts := []nats.Option{
		nats.Name("pitch-dispatcher"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Warn().Msg("NATS connection closed")
		}),
	}

	conn, err := nats.Connect(s.cfg.URL, opts...)
	if err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}

	sub, err := conn.QueueSubscribe(s.cfg.Subject, s.cfg.QueueGroup, s.handleMsg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", s.cfg.Subject, err)
	}

	s.conn, s.sub = conn, sub
	log.Info().Str("queue_group", s.cfg.QueueGroup).Msg("NATS subscriber started")
	return nil
}

// Stop drains the subscription so in-flight messages finish, then closes the connection.
func (s *Subscriber) Stop() error {
	defer s.cancel()
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Drain(); err != nil {
		s.conn.Close()
		return fmt.Errorf("failed to drain NATS connection: %w", err)
	}
	return nil
}

func (s *Subscriber) handleMsg(msg *nats.Msg) {
	body := s.process(msg.Data)
	if msg.Reply == "" {
		return
	}
	if err := msg.Respond(body); err != nil {
		s.logger.Warn().Err(err).Msg("failed to answer request")
	}
}

// process runs the handler and encodes the reply.
func (s *Subscriber) process(data []byte) []byte {
	outcome, err := s.handler.Handle(s.ctx, data)
	r := reply{Status: string(outcome.Status), Rule: outcome.Rule}
	if err != nil {
		s.logger.Error().Err(err).Str("rule", outcome.Rule).Msg("event failed")
		r.Error = err.Error()
	}
	body, _ := json.Marshal(r)
	return body
}
