package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/redact"
)

// AMQPNotifier publishes deadline alerts to a RabbitMQ queue. A connection
// is dialed per publish; alert volume is one batch per day per user, so
// holding a long-lived channel buys nothing and a broker restart between
// runs costs nothing.
type AMQPNotifier struct {
	url    string
	queue  string
	logger *slog.Logger
}

// NewAMQPNotifier creates an AMQPNotifier from the broker configuration.
func NewAMQPNotifier(cfg config.BrokerConfig, logger *slog.Logger) (*AMQPNotifier, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("broker URL is required")
	}
	if cfg.Queue == "" {
		return nil, fmt.Errorf("broker queue name is required")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AMQPNotifier")
	}

	return &AMQPNotifier{
		url:    cfg.URL,
		queue:  cfg.Queue,
		logger: logger.With(slog.String("component", "amqp_notifier")),
	}, nil
}

// NotifyDeadline implements Notifier. The queue is declared durable on
// every publish (idempotent) and messages are marked persistent so alerts
// survive a broker restart.
func (n *AMQPNotifier) NotifyDeadline(ctx context.Context, alert DeadlineAlert) error {
	conn, err := amqp.Dial(n.url)
	if err != nil {
		n.logger.Error("broker dial failed",
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		n.logger.Error("broker channel open failed",
			slog.String("error", redact.Error(err)))
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		n.queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,   // args
	); err != nil {
		n.logger.Error("queue declare failed",
			slog.String("error", redact.Error(err)),
			slog.String("queue", n.queue))
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx,
		"",      // default exchange
		n.queue, // routing key = queue name
		false,   // mandatory
		false,   // immediate
		pub,
	); err != nil {
		n.logger.Error("publish failed",
			slog.String("error", redact.Error(err)),
			slog.String("queue", n.queue))
		return fmt.Errorf("failed to publish alert: %w", err)
	}

	n.logger.Debug("deadline alert published",
		slog.String("user_id", alert.UserID.String()),
		slog.Int("task_count", len(alert.Tasks)))
	return nil
}
