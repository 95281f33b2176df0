package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/nmelnikov/authcove/internal/observability"
)

// publishTimeout caps a single broker round-trip so a degraded broker cannot
// stall request handling.
const publishTimeout = 2 * time.Second

// amqpPublisher implements Publisher over a RabbitMQ channel.
type amqpPublisher struct {
	logger  observability.Logger
	metrics *observability.Metrics

	mu      sync.Mutex
	conn    *amqp.Connection
	channel *amqp.Channel
}

// NewAMQP connects to RabbitMQ, declares the durable queues this service
// publishes to, and returns a Publisher.
func NewAMQP(url string, logger observability.Logger, metrics *observability.Metrics) (Publisher, error) {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if metrics == nil {
		metrics = observability.NopMetrics()
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp connect: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}

	for _, queue := range []string{QueueUserEvents, QueueEmailNotifications} {
		if _, err := channel.QueueDeclare(queue, true, false, false, false, nil); err != nil {
			_ = channel.Close()
			_ = conn.Close()
			return nil, fmt.Errorf("declare queue %s: %w", queue, err)
		}
	}

	logger.Info("rabbitmq publisher initialized")

	return &amqpPublisher{
		logger:  logger,
		metrics: metrics,
		conn:    conn,
		channel: channel,
	}, nil
}

// Publish sends a JSON-encoded payload to the named queue. Failures are
// logged and counted but not surfaced; the contract is fire-and-forget.
func (p *amqpPublisher) Publish(ctx context.Context, queue string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(queue, "error").Inc()
		p.logger.Error("event payload marshal failed",
			observability.String("queue", queue),
			observability.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, "", queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         body,
	})
	p.mu.Unlock()

	if err != nil {
		p.metrics.EventsPublished.WithLabelValues(queue, "error").Inc()
		p.logger.Error("event publish failed",
			observability.String("queue", queue),
			observability.Error(err))
		return
	}

	p.metrics.EventsPublished.WithLabelValues(queue, "ok").Inc()
	p.logger.Debug("event published",
		observability.String("queue", queue))
}

// Close closes the channel and connection.
func (p *amqpPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("amqp close: %v", errs)
	}
	return nil
}
