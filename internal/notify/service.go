package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"aircheck/internal/config"
	"aircheck/internal/segment"
)

// Message is the record published for each placed segment. Timestamp fields
// stay zero-padded strings so consumers see exactly the filename digits.
type Message struct {
	Filename  string            `json:"filename"`
	Timestamp segment.Timestamp `json:"timestamp"`
}

// Service is the notification surface exposed to the placement engine.
type Service interface {
	SegmentPlaced(ctx context.Context, msg Message) error
	Test(ctx context.Context) error
	Close() error
}

// NewService builds a broker-backed service when an AMQP host is
// configured, a noop otherwise.
func NewService(cfg *config.Config) Service {
	if cfg == nil || cfg.AMQP.Host == "" {
		return noopService{}
	}
	return &amqpService{cfg: cfg.AMQP}
}

// Noop returns a service that drops every message.
func Noop() Service {
	return noopService{}
}

type amqpService struct {
	cfg config.AMQP

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// SegmentPlaced publishes msg as a persistent delivery. A failed publish is
// retried once over a re-established connection; delivery beyond that is the
// broker's contract.
func (s *amqpService) SegmentPlaced(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	return s.publish(ctx, body)
}

// Test publishes a minimal payload so operators can verify broker wiring.
func (s *amqpService) Test(ctx context.Context) error {
	return s.publish(ctx, []byte(`{"test":true}`))
}

func (s *amqpService) publish(ctx context.Context, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureChannelLocked(); err != nil {
		return err
	}
	if err := s.publishLocked(ctx, body); err != nil {
		// The connection may have died since the last publish. Re-dial
		// once and retry before reporting failure.
		s.closeLocked()
		if reconnectErr := s.ensureChannelLocked(); reconnectErr != nil {
			return fmt.Errorf("reconnect after publish failure: %w", reconnectErr)
		}
		if retryErr := s.publishLocked(ctx, body); retryErr != nil {
			return fmt.Errorf("publish after reconnect: %w", retryErr)
		}
	}
	return nil
}

func (s *amqpService) publishLocked(ctx context.Context, body []byte) error {
	return s.channel.PublishWithContext(
		ctx,
		s.cfg.Exchange,
		s.cfg.Queue, // routing key matches the bound queue
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

func (s *amqpService) ensureChannelLocked() error {
	if s.channel != nil && s.conn != nil && !s.conn.IsClosed() {
		return nil
	}
	s.closeLocked()

	conn, err := amqp.Dial(s.brokerURL())
	if err != nil {
		return fmt.Errorf("dial broker: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	// Declare the durable exchange, queue, and binding so publishes survive
	// a broker restart and land even when the consumer starts later.
	if err := channel.ExchangeDeclare(s.cfg.Exchange, "direct", true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("declare exchange: %w", err)
	}
	if _, err := channel.QueueDeclare(s.cfg.Queue, true, false, false, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := channel.QueueBind(s.cfg.Queue, s.cfg.Queue, s.cfg.Exchange, false, nil); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return fmt.Errorf("bind queue: %w", err)
	}

	s.conn = conn
	s.channel = channel
	return nil
}

func (s *amqpService) brokerURL() string {
	u := url.URL{
		Scheme: "amqp",
		Host:   net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port)),
		Path:   "/",
	}
	if s.cfg.Username != "" {
		u.User = url.UserPassword(s.cfg.Username, s.cfg.Password)
	}
	return u.String()
}

// Close releases the broker connection.
func (s *amqpService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

func (s *amqpService) closeLocked() {
	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
}

type noopService struct{}

func (noopService) SegmentPlaced(context.Context, Message) error { return nil }
func (noopService) Test(context.Context) error                   { return nil }
func (noopService) Close() error                                 { return nil }
