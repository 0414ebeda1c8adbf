package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/amirhossein-jamali/tts-ledger/internal/domain/entity"
	errs "github.com/amirhossein-jamali/tts-ledger/internal/domain/error"
	coreport "github.com/amirhossein-jamali/tts-ledger/internal/domain/port/core"
	"github.com/amirhossein-jamali/tts-ledger/internal/domain/port/messaging"
)

// PublisherConfig controls the publisher's topology and retry budget
type PublisherConfig struct {
	URL      string
	Topology Topology

	ConnectAttempts int
	ConnectDelay    time.Duration
	PublishAttempts int
	PublishDelay    time.Duration
}

// DefaultPublisherConfig returns the retry budget used in production
func DefaultPublisherConfig(url string, topology Topology) PublisherConfig {
	return PublisherConfig{
		URL:             url,
		Topology:        topology,
		ConnectAttempts: 5,
		ConnectDelay:    3 * time.Second,
		PublishAttempts: 3,
		PublishDelay:    time.Second,
	}
}

// Publisher sends generation tasks to the fanout exchange.
// One connection is shared by all callers; mu is held only while it is (re)opened.
type Publisher struct {
	cfg          PublisherConfig
	dial         dialFunc
	timeProvider coreport.TimeProvider
	logger       coreport.Logger

	mu   sync.Mutex
	conn connection
	ch   channel
}

var _ messaging.TaskPublisher = (*Publisher)(nil)

// NewPublisher creates a Publisher. No connection is opened until Open or the first Publish.
func NewPublisher(cfg PublisherConfig, timeProvider coreport.TimeProvider, logger coreport.Logger) *Publisher {
	return newPublisher(cfg, dialAMQP, timeProvider, logger)
}

func newPublisher(cfg PublisherConfig, dial dialFunc, timeProvider coreport.TimeProvider, logger coreport.Logger) *Publisher {
	return &Publisher{
		cfg:          cfg,
		dial:         dial,
		timeProvider: timeProvider,
		logger:       logger.With(map[string]any{"component": "task_publisher"}),
	}
}

// Open connects eagerly so startup fails fast when the broker is unreachable
func (p *Publisher) Open(ctx context.Context) error {
	_, err := p.channel(ctx)
	return err
}

// Publish sends task once. Lost connections are reopened and the publish retried;
// any other failure aborts at once. Every failure wraps ErrPublishUnavailable.
func (p *Publisher) Publish(ctx context.Context, task entity.GenerationTask) error {
	body, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: encode task: %s", errs.ErrPublishUnavailable, err.Error())
	}

	fields := map[string]any{
		"task_id":       task.TaskID,
		"generation_id": task.GenerationID,
	}

	attempts := max(p.cfg.PublishAttempts, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		ch, err := p.channel(ctx)
		if err != nil {
			p.logger.Error("Publisher could not connect", mergeFields(fields, map[string]any{"error": err.Error()}))
			return fmt.Errorf("%w: %s", errs.ErrPublishUnavailable, err.Error())
		}

		err = ch.PublishWithContext(ctx, p.cfg.Topology.Exchange, "", false, false, amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    task.TaskID,
			Timestamp:    task.CreatedAt,
			Body:         body,
		})
		if err == nil {
			p.logger.Info("Task published", fields)
			return nil
		}
		lastErr = err

		if !isTransportError(err) {
			p.logger.Error("Failed to publish task", mergeFields(fields, map[string]any{"error": err.Error()}))
			return fmt.Errorf("%w: %s", errs.ErrPublishUnavailable, err.Error())
		}

		p.logger.Warn("Publish attempt failed, connection lost", mergeFields(fields, map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		}))
		p.invalidate(ch)

		if attempt < attempts {
			if sleepErr := p.timeProvider.Sleep(ctx, coreport.Duration(p.cfg.PublishDelay)); sleepErr != nil {
				return fmt.Errorf("%w: %s", errs.ErrPublishUnavailable, sleepErr.Error())
			}
		}
	}

	return fmt.Errorf("%w: %d attempts: %s", errs.ErrPublishUnavailable, attempts, lastErr.Error())
}

// Close closes the shared connection
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.logger.Info("Publisher connection closed", nil)
	return p.closeLocked()
}

// channel returns the open channel, connecting when there is none
func (p *Publisher) channel(ctx context.Context) (channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch != nil && p.conn != nil && !p.conn.IsClosed() {
		return p.ch, nil
	}
	_ = p.closeLocked()

	attempts := max(p.cfg.ConnectAttempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		p.logger.Info("Publisher connecting to RabbitMQ", map[string]any{"attempt": attempt})

		if err = p.connectLocked(); err == nil {
			p.logger.Info("Publisher connected to RabbitMQ", map[string]any{
				"exchange": p.cfg.Topology.Exchange,
				"queue":    p.cfg.Topology.Queue,
			})
			return p.ch, nil
		}

		p.logger.Error("Publisher connection failed", map[string]any{
			"attempt": attempt,
			"error":   err.Error(),
		})
		if attempt < attempts {
			if sleepErr := p.timeProvider.Sleep(ctx, coreport.Duration(p.cfg.ConnectDelay)); sleepErr != nil {
				return nil, sleepErr
			}
		}
	}
	return nil, fmt.Errorf("connect after %d attempts: %w", attempts, err)
}

func (p *Publisher) connectLocked() error {
	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return err
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}

	if err := p.cfg.Topology.declare(ch); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return err
	}

	p.conn = conn
	p.ch = ch
	return nil
}

// invalidate drops the cached connection if it still is the one that failed
func (p *Publisher) invalidate(failed channel) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ch == failed {
		_ = p.closeLocked()
	}
}

func (p *Publisher) closeLocked() error {
	var err error
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		if !p.conn.IsClosed() {
			err = p.conn.Close()
		}
		p.conn = nil
	}
	return err
}

func mergeFields(base, extra map[string]any) map[string]any {
	out := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
