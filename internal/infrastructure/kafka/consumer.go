package kafka

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"log/slog"
	"time"

	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/segmentio/kafka-go"
)

// EventHandler receives decoded ledger events.
type EventHandler interface {
	Deliver(ctx context.Context, event models.LedgerEvent) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer forwards ledger events from Kafka to a handler. Delivery is best-effort:
// a failed delivery is logged and the message is not retried.
type Consumer struct {
	reader  messageReader
	topic   string
	handler EventHandler
}

func NewConsumer(brokers []string, topic, groupID string, handler EventHandler) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			Topic:    topic,
			GroupID:  groupID,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  time.Second,
		}),
		topic:   topic,
		handler: handler,
	}
}

func (c *Consumer) Consume(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || stderrors.Is(err, io.EOF) {
				slog.Info("Kafka consumer stopped", "topic", c.topic)
				return
			}
			slog.Error("failed to read Kafka message", "topic", c.topic, "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}

		var event models.LedgerEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			slog.Error("failed to unmarshal ledger event", "topic", msg.Topic, "offset", msg.Offset, "error", err)
			continue
		}

		if err := c.handler.Deliver(ctx, event); err != nil {
			slog.Error("failed to deliver ledger event", "event_id", event.ID, "type", event.Type, "error", err)
			continue
		}
		slog.Info("ledger event delivered", "event_id", event.ID, "type", event.Type, "user_id", event.UserID)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
