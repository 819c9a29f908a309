// Package rabbitmq consumes change events from a durable RabbitMQ queue.
package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/ilindan-dev/pitch-dispatcher/internal/intake"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"
)

// defaultWorkerCount is the default number of worker goroutines in the pool.
const defaultWorkerCount = 5

// Config selects the queue and the size of the worker pool.
type Config struct {
	Queue   string
	Workers int
}

// Consumer listens to a RabbitMQ queue and processes messages using a pool of workers.
// A delivery is acked when the handler succeeds and dropped (nack, no requeue)
// when it fails; no retry topology is declared.
type Consumer struct {
	conn        *amqp.Connection
	handler     intake.EventHandler
	queue       string
	workerCount int
	logger      zerolog.Logger
}

// New creates a new instance of Consumer.
func New(cfg Config, conn *amqp.Connection, handler intake.EventHandler, logger *zerolog.Logger) *Consumer {
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkerCount
	}
	return &Consumer{
		conn:        conn,
		handler:     handler,
		queue:       cfg.Queue,
		workerCount: workers,
		logger:      logger.With().Str("component", "rabbitmq_consumer").Str("queue", cfg.Queue).Logger(),
	}
}

// DeclareQueue makes sure the durable intake queue exists.
func (c *Consumer) DeclareQueue() error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq: failed to open channel: %w", err)
	}
	defer ch.Close()

	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("rabbitmq: failed to declare queue %s: %w", c.queue, err)
	}
	return nil
}

// Start launches the worker pool to process messages from the queue.
// This is a blocking method that will run until the context is cancelled.
func (c *Consumer) Start(ctx context.Context) {
	c.logger.Info().Int("count", c.workerCount).Msg("Starting worker pool")
	var wg sync.WaitGroup

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			c.runWorker(ctx, workerID)
		}(i + 1)
	}

	wg.Wait()
	c.logger.Info().Msg("Consumer stopped")
}

// runWorker contains the main logic for a single worker goroutine.
func (c *Consumer) runWorker(ctx context.Context, workerID int) {
	logger := c.logger.With().Int("worker_id", workerID).Logger()

	ch, err := c.conn.Channel()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to open channel for worker")
		return
	}
	defer ch.Close()

	if err := ch.Qos(1, 0, false); err != nil {
		logger.Error().Err(err).Msg("Failed to set QoS")
		return
	}

	msgs, err := ch.Consume(
		c.queue,
		fmt.Sprintf("worker-%d", workerID),
		false, // autoAck
		false, // exclusive
		false, // noLocal
		false, // noWait
		nil,
	)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to register a consumer")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				logger.Warn().Msg("Message channel closed by RabbitMQ, worker stopping")
				return
			}
			c.handleMessage(ctx, msg, logger)
		}
	}
}

// handleMessage hands one delivery to the service and settles it.
func (c *Consumer) handleMessage(ctx context.Context, msg amqp.Delivery, logger zerolog.Logger) {
	outcome, err := c.handler.Handle(ctx, msg.Body)
	if err != nil {
		logger.Error().Err(err).Str("rule", outcome.Rule).Msg("Event failed, dropping message")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			logger.Error().Err(nackErr).Msg("Failed to nack message")
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		logger.Error().Err(ackErr).Msg("Failed to ack message")
	}
}
