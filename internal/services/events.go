package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/honeynil/BankBackOffice/internal/infrastructure/kafka"
	"github.com/honeynil/BankBackOffice/internal/models"
)

// EventPublisher is the outbound event hook. Publish must not block on delivery and never reports failure.
type EventPublisher interface {
	Publish(ctx context.Context, event models.LedgerEvent)
}

type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, models.LedgerEvent) {}

type KafkaPublisher struct {
	producer kafka.KafkaProducer
	topic    string
	retries  int
	backoff  time.Duration
}

func NewKafkaPublisher(producer kafka.KafkaProducer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic, retries: 3, backoff: time.Second}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event models.LedgerEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal ledger event", "event_id", event.ID, "error", err)
		return
	}

	base := context.WithoutCancel(ctx)
	go func() {
		for i := 0; i < p.retries; i++ {
			sendCtx, cancel := context.WithTimeout(base, 5*time.Second)
			err := p.producer.Send(sendCtx, p.topic, event.UserID.String(), payload)
			cancel()
			if err == nil {
				slog.Info("ledger event published", "event_id", event.ID, "type", event.Type, "user_id", event.UserID)
				return
			}
			time.Sleep(p.backoff * time.Duration(i+1))
		}
		slog.Error("failed to publish ledger event after retries", "event_id", event.ID, "type", event.Type, "user_id", event.UserID)
	}()
}
