// Package events announces resume changes on a RabbitMQ fanout exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"resume-builder/core"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 256
)

// Event is the message body published for every new snapshot.
type Event struct {
	UserID     string         `json:"userId"`
	OccurredAt time.Time      `json:"occurredAt"`
	Document   *core.Document `json:"document"`
}

type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends events from a single background goroutine so that slow
// brokers never hold up edits. Events arriving while the queue is full are
// dropped.
type Publisher struct {
	conn     *amqp.Connection
	ch       channel
	exchange string

	queue chan Event
	done  chan struct{}
	once  sync.Once
	log   *logrus.Entry
}

// Dial connects to url and declares exchange as a durable fanout exchange.
func Dial(url, exchange string) (*Publisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange %s: %w", exchange, err)
	}

	p := newPublisher(ch, exchange)
	p.conn = conn
	return p, nil
}

func newPublisher(ch channel, exchange string) *Publisher {
	p := &Publisher{
		ch:       ch,
		exchange: exchange,
		queue:    make(chan Event, queueSize),
		done:     make(chan struct{}),
		log:      logrus.WithField("exchange", exchange),
	}
	go p.run()
	return p
}

// Publish queues a snapshot event. It has the shape of a session observer.
func (p *Publisher) Publish(userID string, doc *core.Document) {
	select {
	case p.queue <- Event{UserID: userID, OccurredAt: time.Now().UTC(), Document: doc}:
	default:
		p.log.WithField("user_id", userID).Warn("Event queue full, dropping resume event")
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for ev := range p.queue {
		if err := p.send(ev); err != nil {
			p.log.WithError(err).WithField("user_id", ev.UserID).Error("Failed to publish resume event")
		}
	}
}

func (p *Publisher) send(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return p.ch.PublishWithContext(ctx, p.exchange, "", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    ev.OccurredAt,
		Body:         body,
	})
}

// Close sends the events already queued and then closes the connection.
// Publish must not be called afterwards.
func (p *Publisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.queue)
		<-p.done
		err = p.ch.Close()
		if p.conn != nil {
			if cerr := p.conn.Close(); err == nil {
				err = cerr
			}
		}
	})
	return err
}
