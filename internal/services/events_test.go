package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockProducer struct {
	mock.Mock
	mu   sync.Mutex
	sent [][]byte
}

func (m *mockProducer) Send(ctx context.Context, topic, key string, value []byte) error {
	args := m.Called(topic, key)
	if args.Error(0) == nil {
		m.mu.Lock()
		m.sent = append(m.sent, value)
		m.mu.Unlock()
	}
	return args.Error(0)
}

func (m *mockProducer) Close() error { return nil }

func (m *mockProducer) delivered() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]byte(nil), m.sent...)
}

func TestKafkaPublisher_Publish(t *testing.T) {
	event := models.LedgerEvent{
		ID:     uuid.New(),
		Type:   models.EventTransactionCompleted,
		UserID: uuid.New(),
		Amount: decimal.RequireFromString("25.50"),
		Status: string(models.StatusCompleted),
	}

	t.Run("KeyedByUser", func(t *testing.T) {
		producer := &mockProducer{}
		producer.On("Send", "ledger-events", event.UserID.String()).Return(nil).Once()

		NewKafkaPublisher(producer, "ledger-events").Publish(context.Background(), event)

		require.Eventually(t, func() bool { return len(producer.delivered()) == 1 }, time.Second, 5*time.Millisecond)
		var got models.LedgerEvent
		require.NoError(t, json.Unmarshal(producer.delivered()[0], &got))
		assert.Equal(t, event.ID, got.ID)
		assert.Equal(t, "25.5", got.Amount.String())
		producer.AssertExpectations(t)
	})

	t.Run("RetriesAfterFailure", func(t *testing.T) {
		producer := &mockProducer{}
		producer.On("Send", "ledger-events", event.UserID.String()).Return(errors.New("broker down")).Twice()
		producer.On("Send", "ledger-events", event.UserID.String()).Return(nil).Once()

		p := NewKafkaPublisher(producer, "ledger-events")
		p.backoff = time.Millisecond
		p.Publish(context.Background(), event)

		require.Eventually(t, func() bool { return len(producer.delivered()) == 1 }, time.Second, 5*time.Millisecond)
		producer.AssertNumberOfCalls(t, "Send", 3)
	})

	t.Run("CancelledRequestStillPublishes", func(t *testing.T) {
		producer := &mockProducer{}
		producer.On("Send", "ledger-events", event.UserID.String()).Return(nil).Once()

		ctx, cancel := context.WithCancel(context.Background())
		NewKafkaPublisher(producer, "ledger-events").Publish(ctx, event)
		cancel()

		require.Eventually(t, func() bool { return len(producer.delivered()) == 1 }, time.Second, 5*time.Millisecond)
	})
}
