package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LoanStatus string

const (
	LoanPending  LoanStatus = "PENDING"
	LoanApproved LoanStatus = "APPROVED"
	LoanRejected LoanStatus = "REJECTED"
)

// Loan keeps the requester's name as it was at request time; it is not re-synced on rename.
type Loan struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	UserName    string          `json:"user_name"`
	Amount      decimal.Decimal `json:"amount"`
	Purpose     string          `json:"purpose"`
	Status      LoanStatus      `json:"status"`
	RequestDate time.Time       `json:"request_date"`
	AdminReason string          `json:"admin_reason,omitempty"`
}

type LoanFilter struct {
	UserID uuid.UUID
	Status LoanStatus
}
