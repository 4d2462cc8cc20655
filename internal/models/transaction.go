package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction amounts are signed: positive credits the owner's balance, negative debits it.
type Transaction struct {
	ID           uuid.UUID         `json:"id"`
	UserID       uuid.UUID         `json:"user_id"`
	Amount       decimal.Decimal   `json:"amount"`
	Type         TransactionType   `json:"type"`
	Status       TransactionStatus `json:"status"`
	Description  string            `json:"description"`
	Counterparty string            `json:"counterparty,omitempty"`
	AdminReason  string            `json:"admin_reason,omitempty"`
	PaymentLink  string            `json:"payment_link,omitempty"`
	AdminMessage string            `json:"admin_message,omitempty"`
	Date         time.Time         `json:"date"`
}

type TransactionType string

const (
	TypeDeposit     TransactionType = "DEPOSIT"
	TypeWithdrawal  TransactionType = "WITHDRAWAL"
	TypeTransfer    TransactionType = "TRANSFER"
	TypeTransferIn  TransactionType = "TRANSFER_IN"
	TypeTransferOut TransactionType = "TRANSFER_OUT"
	TypePayment     TransactionType = "PAYMENT"
)

func (t TransactionType) Valid() bool {
	switch t {
	case TypeDeposit, TypeWithdrawal, TypeTransfer, TypeTransferIn, TypeTransferOut, TypePayment:
		return true
	}
	return false
}

type TransactionStatus string

const (
	StatusPending   TransactionStatus = "PENDING"
	StatusCompleted TransactionStatus = "COMPLETED"
	StatusRejected  TransactionStatus = "REJECTED"
)

func (s TransactionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusRejected
}

// TransactionFilter holds query parameters for listing transactions. Zero values mean "any".
type TransactionFilter struct {
	UserID uuid.UUID
	Status TransactionStatus
	Type   TransactionType
	Limit  int
	Offset int
}

// DecisionResult is what an admin decision on a transaction reports back.
type DecisionResult struct {
	Transaction *Transaction `json:"transaction"`
	Refunded    bool         `json:"refunded"`
}
