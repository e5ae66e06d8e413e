// Package messaging publishes order events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/MikeMC777/yummigo-orders/internal/metrics"
)

// Exchange is the topic exchange order events are published to.
const Exchange = "orders_topic"

const (
	dialTimeout    = 2 * time.Second
	publishTimeout = 5 * time.Second
	redialBackoff  = 5 * time.Second
	backlogSize    = 1024
)

var (
	ErrClosed  = errors.New("publisher closed")
	ErrBacklog = errors.New("event backlog full")
)

type envelope struct {
	routingKey string
	msg        amqp091.Publishing
}

// Publisher queues events and sends them from a single background goroutine,
// so callers never wait on the broker. While the broker is unreachable events
// are dropped and counted.
type Publisher struct {
	url string
	log *zap.Logger

	mu     sync.Mutex
	closed bool
	events chan envelope
	done   chan struct{}

	// owned by the send loop
	conn    *amqp091.Connection
	channel *amqp091.Channel
	retryAt time.Time
}

// Dial connects to url, retrying with a linear backoff, and starts the send loop.
func Dial(url string, log *zap.Logger) (*Publisher, error) {
	p := newPublisher(url, log, backlogSize)
	if err := p.connect(5); err != nil {
		return nil, err
	}
	go p.loop()
	return p, nil
}

func newPublisher(url string, log *zap.Logger, backlog int) *Publisher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Publisher{
		url:    url,
		log:    log,
		events: make(chan envelope, backlog),
		done:   make(chan struct{}),
	}
}

func (p *Publisher) connect(attempts int) error {
	var err error
	for i := 0; i < attempts; i++ {
		if err = p.open(); err == nil {
			return nil
		}
		if i < attempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			p.log.Warn("rabbitmq connection failed", zap.Error(err), zap.Duration("retry_in", wait))
			time.Sleep(wait)
		}
	}
	return fmt.Errorf("connect rabbitmq after %d attempts: %w", attempts, err)
}

func (p *Publisher) open() error {
	conn, err := amqp091.DialConfig(p.url, amqp091.Config{
		Dial: amqp091.DefaultDial(dialTimeout),
	})
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return err
	}
	if err := ch.ExchangeDeclare(Exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("declare %s: %w", Exchange, err)
	}
	p.conn, p.channel = conn, ch
	return nil
}

// Publish queues msg as a persistent JSON message under routingKey. It never
// blocks: a full backlog returns ErrBacklog.
func (p *Publisher) Publish(_ context.Context, routingKey string, msg any) error {
	pub, err := Message(msg)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.events <- envelope{routingKey: routingKey, msg: pub}:
		return nil
	default:
		return ErrBacklog
	}
}

func (p *Publisher) loop() {
	defer close(p.done)
	for ev := range p.events {
		if err := p.send(ev); err != nil {
			metrics.EventsFailed.WithLabelValues(ev.routingKey).Inc()
			p.log.Warn("event dropped",
				zap.String("routing_key", ev.routingKey),
				zap.String("message_id", ev.msg.MessageId),
				zap.Error(err))
		}
	}
	p.release()
}

func (p *Publisher) send(ev envelope) error {
	if p.conn == nil || p.conn.IsClosed() || p.channel == nil || p.channel.IsClosed() {
		p.release()
		if time.Now().Before(p.retryAt) {
			return errors.New("broker unavailable")
		}
		if err := p.open(); err != nil {
			p.retryAt = time.Now().Add(redialBackoff)
			return fmt.Errorf("reconnect: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := p.channel.PublishWithContext(ctx, Exchange, ev.routingKey, false, false, ev.msg); err != nil {
		p.release()
		return fmt.Errorf("publish %s: %w", ev.routingKey, err)
	}
	p.log.Debug("event published",
		zap.String("routing_key", ev.routingKey),
		zap.String("message_id", ev.msg.MessageId),
		zap.Int("size", len(ev.msg.Body)))
	return nil
}

// Message builds the AMQP publishing for msg.
func Message(msg any) (amqp091.Publishing, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return amqp091.Publishing{}, fmt.Errorf("marshal event: %w", err)
	}
	return amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}, nil
}

func (p *Publisher) release() {
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// Close stops accepting events and waits for the queued ones to be sent or dropped.
func (p *Publisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.events)
	p.mu.Unlock()
	<-p.done
	return nil
}
