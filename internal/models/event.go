package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EventType string

const (
	EventTransactionCreated   EventType = "transaction.created"
	EventTransactionCompleted EventType = "transaction.completed"
	EventTransactionRejected  EventType = "transaction.rejected"
	EventLoanRequested        EventType = "loan.requested"
	EventLoanApproved         EventType = "loan.approved"
	EventLoanRejected         EventType = "loan.rejected"
	EventBalanceOverridden    EventType = "balance.overridden"
	EventUserStatusChanged    EventType = "user.status_changed"
)

// LedgerEvent is published after a committed ledger change and forwarded to the outbound webhook.
type LedgerEvent struct {
	ID         uuid.UUID       `json:"id"`
	Type       EventType       `json:"type"`
	UserID     uuid.UUID       `json:"user_id"`
	EntityID   uuid.UUID       `json:"entity_id"`
	Amount     decimal.Decimal `json:"amount"`
	Balance    decimal.Decimal `json:"balance"`
	Status     string          `json:"status,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}
