package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cookstove_tracker/internal/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	gobreaker "github.com/sony/gobreaker/v2"
)

const DefaultExchange = "cookstove.events"

// AMQPConfig configures the broker publisher.
type AMQPConfig struct {
	URL      string
	Exchange string

	// FailureThreshold is the number of consecutive failures before the breaker opens.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before a trial publish.
	OpenTimeout time.Duration
	// DialTimeout bounds the TCP connect and the AMQP handshake.
	DialTimeout time.Duration
}

// AMQPPublisher publishes JSON events to a durable topic exchange. The
// connection is dialled lazily and re-dialled after a failure. A circuit
// breaker stops dial attempts while the broker is down.
type AMQPPublisher struct {
	cfg  AMQPConfig
	log  *logger.Logger
	dial func(url string) (*amqp.Connection, error)
	cb   *gobreaker.CircuitBreaker[struct{}]

	mu   sync.Mutex
	conn *amqp.Connection
	ch   *amqp.Channel
}

func NewAMQPPublisher(cfg AMQPConfig, log *logger.Logger) *AMQPPublisher {
	if cfg.Exchange == "" {
		cfg.Exchange = DefaultExchange
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 3 * time.Second
	}

	p := &AMQPPublisher{cfg: cfg, log: log}
	p.dial = func(url string) (*amqp.Connection, error) {
		return amqp.DialConfig(url, amqp.Config{
			Heartbeat: 10 * time.Second,
			Locale:    "en_US",
			Dial:      amqp.DefaultDial(cfg.DialTimeout),
		})
	}
	p.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "amqp-publisher",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if p.log != nil {
				p.log.Warnw("circuit_breaker_state", "name", name, "from", from.String(), "to", to.String())
			}
		},
	})
	return p
}

// Publish sends e with routing key RoutingKey(e.Type). Errors are logged and returned.
func (p *AMQPPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = p.cb.Execute(func() (struct{}, error) {
		return struct{}{}, p.publish(ctx, e, body)
	})
	if err != nil && p.log != nil {
		p.log.Warnw("event_publish_failed", "type", e.Type, "event_id", e.ID, "err", err)
	}
	return err
}

func (p *AMQPPublisher) publish(ctx context.Context, e Event, body []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	ch, err := p.channelLocked()
	if err != nil {
		return err
	}

	err = ch.PublishWithContext(ctx,
		p.cfg.Exchange,
		RoutingKey(e.Type),
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    e.ID,
			Type:         e.Type,
			Timestamp:    e.OccurredAt,
			Body:         body,
		},
	)
	if err != nil {
		p.resetLocked()
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// channelLocked returns an open channel, dialling when needed. p.mu must be held.
func (p *AMQPPublisher) channelLocked() (*amqp.Channel, error) {
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	p.resetLocked()

	conn, err := p.dial(p.cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(
		p.cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // autoDelete
		false, // internal
		false, // noWait
		nil,
	); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p.conn, p.ch = conn, ch
	return ch, nil
}

func (p *AMQPPublisher) resetLocked() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
	p.ch, p.conn = nil, nil
}

func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.resetLocked()
	return nil
}
