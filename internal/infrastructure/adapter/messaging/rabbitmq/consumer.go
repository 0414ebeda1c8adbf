package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/messaging"
)

// ConsumerConfig controls the worker's subscription and reconnect budget
type ConsumerConfig struct {
	URL         string
	Topology    Topology
	ConsumerTag string
	Prefetch    int

	ReconnectAttempts int
	ReconnectDelay    time.Duration
	// TaskTimeout bounds one task; it is measured on a context detached from shutdown
	TaskTimeout time.Duration
}

// DefaultConsumerConfig returns the reconnect budget used in production
func DefaultConsumerConfig(url string, topology Topology, consumerTag string) ConsumerConfig {
	return ConsumerConfig{
		URL:               url,
		Topology:          topology,
		ConsumerTag:       consumerTag,
		Prefetch:          1,
		ReconnectAttempts: 10,
		ReconnectDelay:    5 * time.Second,
		TaskTimeout:       5 * time.Minute,
	}
}

// errStreamClosed is returned by consume when the broker closed the delivery stream
var errStreamClosed = errors.New("delivery stream closed")

// Consumer runs generation tasks from the queue one at a time
type Consumer struct {
	cfg          ConsumerConfig
	dial         dialFunc
	handler      messaging.TaskHandler
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewConsumer creates a Consumer that hands every valid task to handler
func NewConsumer(
	cfg ConsumerConfig,
	handler messaging.TaskHandler,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Consumer {
	return newConsumer(cfg, dialAMQP, handler, timeProvider, logger)
}

func newConsumer(
	cfg ConsumerConfig,
	dial dialFunc,
	handler messaging.TaskHandler,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Consumer {
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.ConsumerTag == "" {
		cfg.ConsumerTag = "tts-worker"
	}
	return &Consumer{
		cfg:          cfg,
		dial:         dial,
		handler:      handler,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "task_consumer", "consumer": cfg.ConsumerTag}),
	}
}

// Run consumes until ctx is cancelled. A lost connection is reopened with
// bounded retries; Run returns an error once they are used up.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		conn, ch, deliveries, err := c.connectWithRetry(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		err = c.consume(ctx, conn, deliveries)
		c.shutdown(conn, ch)

		if ctx.Err() != nil {
			c.logger.Info("Consumer stopped", nil)
			return nil
		}
		c.logger.Warn("Consumption interrupted, reconnecting", map[string]any{"error": err.Error()})
	}
}

func (c *Consumer) connectWithRetry(ctx context.Context) (connection, channel, <-chan amqp.Delivery, error) {
	attempts := max(c.cfg.ReconnectAttempts, 1)

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		c.logger.Info("Worker connecting to RabbitMQ", map[string]any{"attempt": attempt})

		conn, ch, deliveries, connErr := c.connect()
		if connErr == nil {
			c.logger.Info("Worker connected to RabbitMQ", map[string]any{
				"exchange": c.cfg.Topology.Exchange,
				"queue":    c.cfg.Topology.Queue,
				"prefetch": c.cfg.Prefetch,
			})
			return conn, ch, deliveries, nil
		}
		err = connErr

		c.logger.Error("Connection attempt failed", map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < attempts {
			if sleepErr := c.timeProvider.Sleep(ctx, coreport.Duration(c.cfg.ReconnectDelay)); sleepErr != nil {
				return nil, nil, nil, sleepErr
			}
		}
	}
	return nil, nil, nil, fmt.Errorf("connect after %d attempts: %w", attempts, err)
}

func (c *Consumer) connect() (connection, channel, <-chan amqp.Delivery, error) {
	conn, err := c.dial(c.cfg.URL)
	if err != nil {
		return nil, nil, nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, nil, err
	}

	fail := func(err error) (connection, channel, <-chan amqp.Delivery, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, nil, nil, err
	}

	if err := c.cfg.Topology.declare(ch); err != nil {
		return fail(err)
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fail(err)
	}

	deliveries, err := ch.Consume(
		c.cfg.Topology.Queue,
		c.cfg.ConsumerTag,
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fail(err)
	}
	return conn, ch, deliveries, nil
}

// consume handles deliveries until ctx is done or the connection is lost
func (c *Consumer) consume(ctx context.Context, conn connection, deliveries <-chan amqp.Delivery) error {
	closed := conn.NotifyClose(make(chan *amqp.Error, 1))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case amqpErr, ok := <-closed:
			if ok && amqpErr != nil {
				return amqpErr
			}
			return errStreamClosed
		case d, ok := <-deliveries:
			if !ok {
				return errStreamClosed
			}
			if !c.dispatch(ctx, d) {
				return ctx.Err()
			}
		}
	}
}

// dispatch runs one delivery. It returns false when shutdown started while the
// task was running; that delivery is left unacknowledged for the broker to redeliver.
func (c *Consumer) dispatch(ctx context.Context, d amqp.Delivery) bool {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.handleDelivery(ctx, d)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		c.logger.Warn("Shutdown with a task in flight, leaving it unacknowledged", map[string]any{
			"message_id": d.MessageId,
		})
		return false
	}
}

// handleDelivery decodes, runs and settles one delivery
func (c *Consumer) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var task entity.GenerationTask
	if err := json.Unmarshal(d.Body, &task); err != nil {
		c.logger.Error("Malformed task dropped", map[string]any{
			"message_id": d.MessageId,
			"error":      fmt.Errorf("%w: %s", errs.ErrMalformedTask, err.Error()).Error(),
		})
		c.nack(d)
		return
	}

	fields := map[string]any{
		"task_id":       task.TaskID,
		"generation_id": task.GenerationID,
	}

	if _, err := task.Validate(); err != nil {
		c.logger.Error("Invalid task dropped", mergeFields(fields, map[string]any{"error": err.Error()}))
		c.nack(d)
		return
	}

	taskCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.TaskTimeout)
	defer cancel()

	start := c.timeProvider.Now()
	err := c.handler.Handle(taskCtx, task)
	fields["duration_ms"] = c.timeProvider.Since(start).Std().Milliseconds()

	switch {
	case err == nil:
		c.logger.Info("Task completed", fields)
		c.ack(d)
	case errors.Is(err, errs.ErrGenerationNotFound):
		c.logger.Warn("Task references unknown generation, acknowledging", mergeFields(fields, map[string]any{
			"error": err.Error(),
		}))
		c.ack(d)
	default:
		c.logger.Error("Task failed", mergeFields(fields, map[string]any{"error": err.Error()}))
		c.nack(d)
	}
}

func (c *Consumer) ack(d amqp.Delivery) {
	if err := d.Ack(false); err != nil {
		c.logger.Error("Failed to acknowledge delivery", map[string]any{
			"message_id": d.MessageId,
			"error":      err.Error(),
		})
	}
}

// nack rejects without requeue
func (c *Consumer) nack(d amqp.Delivery) {
	if err := d.Nack(false, false); err != nil {
		c.logger.Error("Failed to reject delivery", map[string]any{
			"message_id": d.MessageId,
			"error":      err.Error(),
		})
	}
}

func (c *Consumer) shutdown(conn connection, ch channel) {
	if err := ch.Cancel(c.cfg.ConsumerTag, false); err != nil {
		c.logger.Debug("Consumer cancel failed", map[string]any{"error": err.Error()})
	}
	_ = ch.Close()
	if !conn.IsClosed() {
		if err := conn.Close(); err != nil {
			c.logger.Warn("Failed to close connection", map[string]any{"error": err.Error()})
		}
	}
}
