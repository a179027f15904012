package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Consumer reads workflow events and writes one structured audit line per
// event.
type Consumer struct {
	URL   string
	Queue string
	Log   *zap.Logger
}

func NewConsumer(url string, log *zap.Logger) *Consumer {
	return &Consumer{URL: url, Queue: QueueName, Log: log.Named("audit")}
}

// Run consumes until ctx is cancelled.  Dial failures back off
// exponentially up to 30s; a dropped connection is re-established.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		conn, err := amqp.Dial(c.URL)
		if err != nil {
			c.Log.Warn("dial broker failed", zap.Error(err), zap.Duration("retry_in", backoff))
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.Log.Warn("consume loop ended, reconnecting", zap.Error(err))
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.Log.Warn("set qos failed", zap.Error(err))
	}
	if _, err := ch.QueueDeclare(c.Queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	msgs, err := ch.ConsumeWithContext(ctx, c.Queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.Log.Info("consuming", zap.String("queue", c.Queue))
	for d := range msgs {
		if err := c.Handle(d.Body); err != nil {
			c.Log.Error("drop malformed event", zap.Error(err), zap.ByteString("body", d.Body))
			// Rejected without requeue so a poison message cannot spin.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

// Handle decodes one message body and writes its audit line.
func (c *Consumer) Handle(body []byte) error {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Type == "" || ev.EntityID == "" {
		return errors.New("event without type or entity id")
	}
	fields := []zap.Field{
		zap.String("type", ev.Type),
		zap.String("entity_id", ev.EntityID),
		zap.String("to", ev.To),
		zap.String("actor_id", ev.ActorID),
		zap.Time("occurred_at", ev.OccurredAt),
	}
	if ev.From != "" {
		fields = append(fields, zap.String("from", ev.From))
	}
	if ev.District != "" {
		fields = append(fields, zap.String("district", ev.District))
	}
	if ev.Reason != "" {
		fields = append(fields, zap.String("reason", ev.Reason))
	}
	c.Log.Info("workflow event", fields...)
	return nil
}
