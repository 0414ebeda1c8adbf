package rabbitmq

import (
	"context"
	"errors"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// fakeBroker hands out in-memory connections and records what was sent through them
type fakeBroker struct {
	mu          sync.Mutex
	dials       int
	dialErrs    []error
	publishErrs []error
	declareErr  error
	conns       []*fakeConn
	published   []amqp.Publishing
	deliveries  chan amqp.Delivery
}

func newFakeBroker() *fakeBroker {
	return &fakeBroker{deliveries: make(chan amqp.Delivery, 16)}
}

func (b *fakeBroker) dial(string) (connection, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.dials++
	if len(b.dialErrs) > 0 {
		err := b.dialErrs[0]
		b.dialErrs = b.dialErrs[1:]
		if err != nil {
			return nil, err
		}
	}

	conn := &fakeConn{broker: b}
	b.conns = append(b.conns, conn)
	return conn, nil
}

func (b *fakeBroker) dialCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dials
}

func (b *fakeBroker) publishedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.published)
}

func (b *fakeBroker) lastConn() *fakeConn {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.conns) == 0 {
		return nil
	}
	return b.conns[len(b.conns)-1]
}

type fakeConn struct {
	broker *fakeBroker

	mu       sync.Mutex
	closed   bool
	notify   []chan *amqp.Error
	channels []*fakeChannel
}

func (c *fakeConn) Channel() (channel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := &fakeChannel{conn: c}
	c.channels = append(c.channels, ch)
	return ch, nil
}

func (c *fakeConn) NotifyClose(receiver chan *amqp.Error) chan *amqp.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notify = append(c.notify, receiver)
	return receiver
}

func (c *fakeConn) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return amqp.ErrClosed
	}
	c.closed = true
	for _, n := range c.notify {
		close(n)
	}
	c.notify = nil
	return nil
}

// drop simulates the broker closing the connection
func (c *fakeConn) drop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for _, n := range c.notify {
		n <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restart", Server: true, Recover: true}
		close(n)
	}
	c.notify = nil
}

type fakeChannel struct {
	conn *fakeConn

	mu        sync.Mutex
	closed    bool
	qos       int
	consuming string
	cancelled bool
}

func (ch *fakeChannel) ExchangeDeclare(string, string, bool, bool, bool, bool, amqp.Table) error {
	return ch.conn.broker.declareErr
}

func (ch *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	return amqp.Queue{Name: name}, nil
}

func (ch *fakeChannel) QueueBind(string, string, string, bool, amqp.Table) error { return nil }

func (ch *fakeChannel) Qos(prefetchCount, _ int, _ bool) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.qos = prefetchCount
	return nil
}

func (ch *fakeChannel) PublishWithContext(ctx context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b := ch.conn.broker
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.publishErrs) > 0 {
		err := b.publishErrs[0]
		b.publishErrs = b.publishErrs[1:]
		if err != nil {
			return err
		}
	}
	b.published = append(b.published, msg)
	return nil
}

func (ch *fakeChannel) Consume(queue, consumer string, _, _, _, _ bool, _ amqp.Table) (<-chan amqp.Delivery, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.consuming = consumer
	return ch.conn.broker.deliveries, nil
}

func (ch *fakeChannel) Cancel(string, bool) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.cancelled = true
	return nil
}

func (ch *fakeChannel) Close() error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.closed = true
	return nil
}

// fakeAcknowledger records how each delivery was settled
type fakeAcknowledger struct {
	mu      sync.Mutex
	acked   []uint64
	nacked  []uint64
	requeue []bool
	settled chan uint64
}

func newFakeAcknowledger() *fakeAcknowledger {
	return &fakeAcknowledger{settled: make(chan uint64, 16)}
}

func (a *fakeAcknowledger) Ack(tag uint64, _ bool) error {
	a.mu.Lock()
	a.acked = append(a.acked, tag)
	a.mu.Unlock()
	a.settled <- tag
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, _ bool, requeue bool) error {
	a.mu.Lock()
	a.nacked = append(a.nacked, tag)
	a.requeue = append(a.requeue, requeue)
	a.mu.Unlock()
	a.settled <- tag
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func (a *fakeAcknowledger) snapshot() (acked, nacked []uint64, requeue []bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]uint64(nil), a.acked...), append([]uint64(nil), a.nacked...), append([]bool(nil), a.requeue...)
}

var errRefused = errors.New("dial tcp 127.0.0.1:5672: connect: connection refused")
