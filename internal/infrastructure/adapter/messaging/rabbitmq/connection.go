package rabbitmq

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	amqp "github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp.Channel used by the publisher and the consumer
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error
	Qos(prefetchCount, prefetchSize int, global bool) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	Close() error
}

// connection is the subset of *amqp.Connection used by the publisher and the consumer
type connection interface {
	Channel() (channel, error)
	NotifyClose(receiver chan *amqp.Error) chan *amqp.Error
	IsClosed() bool
	Close() error
}

// dialFunc opens a broker connection
type dialFunc func(url string) (connection, error)

type amqpConnection struct {
	*amqp.Connection
}

func (c amqpConnection) Channel() (channel, error) {
	return c.Connection.Channel()
}

func dialAMQP(url string) (connection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return amqpConnection{conn}, nil
}

// Topology names the fanout exchange and the durable queue bound to it
type Topology struct {
	Exchange string
	Queue    string
}

// declare creates the exchange and the queue when they do not exist and binds them
func (t Topology) declare(ch channel) error {
	if err := ch.ExchangeDeclare(
		t.Exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	if _, err := ch.QueueDeclare(
		t.Queue,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	); err != nil {
		return err
	}

	return ch.QueueBind(t.Queue, "", t.Exchange, false, nil)
}

// isTransportError reports whether err means the connection or channel is gone
// and the operation may succeed on a fresh connection
func isTransportError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, amqp.ErrClosed) || errors.Is(err, io.EOF) ||
		errors.Is(err, syscall.ECONNRESET) || errors.Is(err, syscall.EPIPE) {
		return true
	}

	var amqpErr *amqp.Error
	if errors.As(err, &amqpErr) {
		return amqpErr.Recover || amqpErr.Code == amqp.ChannelError || amqpErr.Code == amqp.ConnectionForced
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
