// Package rabbitmq publishes order events to a RabbitMQ topic exchange.
package rabbitmq

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xenking/cat-canteen/internal/api"
	"github.com/xenking/cat-canteen/internal/domain/order"
)

// Defaults for the order event exchange.
const (
	DefaultExchange   = "canteen.orders"
	RoutingKeyPlaced  = "order.placed"
	contentTypeJSON   = "application/json"
	exchangeKindTopic = "topic"

	confirmBuffer = 16
)

var _ order.Notifier = (*Publisher)(nil)

// channel is the subset of *amqp.Channel used by the Publisher.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connection interface {
	IsClosed() bool
	Close() error
}

// Publisher sends an event for every placed order and waits for the broker
// to confirm it. Publishes are serialized so confirmations line up.
type Publisher struct {
	conn     connection
	ch       channel
	confirms <-chan amqp.Confirmation
	exchange string

	mu sync.Mutex
	// Delivery tag of the last successful publish. The broker numbers
	// deliveries on a confirming channel from 1.
	tag uint64
}

// Dial connects to url, enables publisher confirms and declares a durable
// topic exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "open channel")
	}
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "enable confirms")
	}
	confirms := ch.NotifyPublish(make(chan amqp.Confirmation, confirmBuffer))

	p, err := newPublisher(conn, ch, confirms, exchange)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	return p, nil
}

func newPublisher(conn connection, ch channel, confirms <-chan amqp.Confirmation, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	if err := ch.ExchangeDeclare(exchange, exchangeKindTopic, true, false, false, false, nil); err != nil {
		return nil, errors.Wrapf(err, "declare exchange %q", exchange)
	}
	return &Publisher{
		conn:     conn,
		ch:       ch,
		confirms: confirms,
		exchange: exchange,
	}, nil
}

// OrderPlaced publishes an order.placed event.
func (p *Publisher) OrderPlaced(ctx context.Context, o *order.Order) error {
	body := api.Marshal(&api.OrderPlacedEvent{Order: o})

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, RoutingKeyPlaced, false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  contentTypeJSON,
		MessageId:    o.OrderNumber,
		Timestamp:    o.CreatedAt,
		Type:         RoutingKeyPlaced,
		Body:         body,
	}); err != nil {
		return errors.Wrap(err, "publish")
	}
	p.tag++

	for {
		select {
		case conf, ok := <-p.confirms:
			if !ok {
				return errors.New("confirmation channel closed")
			}
			if conf.DeliveryTag < p.tag {
				// Late confirmation of a publish whose caller stopped waiting.
				continue
			}
			if !conf.Ack {
				return errors.Errorf("broker rejected delivery %d", conf.DeliveryTag)
			}
			return nil
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "wait confirmation")
		}
	}
}

// Ping reports whether the connection is still open.
func (p *Publisher) Ping(context.Context) error {
	if p.conn == nil || p.conn.IsClosed() {
		return errors.New("amqp connection is closed")
	}
	return nil
}

// Close closes the channel and the connection.
func (p *Publisher) Close() error {
	chErr := p.ch.Close()
	connErr := p.conn.Close()
	if chErr != nil {
		return errors.Wrap(chErr, "close channel")
	}
	if connErr != nil {
		return errors.Wrap(connErr, "close connection")
	}
	return nil
}
