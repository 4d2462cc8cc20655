package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
	UserStatusBlocked   UserStatus = "BLOCKED"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBlocked:
		return true
	}
	return false
}

// User is an account holder or an administrator. Balance is the single source of truth for spendable funds.
type User struct {
	ID           uuid.UUID       `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	PasswordHash string          `json:"-"`
	Role         Role            `json:"role"`
	Balance      decimal.Decimal `json:"balance"`
	Status       UserStatus      `json:"status"`
	Profile      Profile         `json:"profile"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Profile attributes are stored and returned but never changed by ledger operations.
type Profile struct {
	IBAN        string `json:"iban,omitempty"`
	CardNumber  string `json:"card_number,omitempty"`
	CVV         string `json:"cvv,omitempty"`
	Institution string `json:"institution,omitempty"`
	DateOfBirth string `json:"dob,omitempty"`
	Address     string `json:"address,omitempty"`
}

// BalanceOverride records an administrative balance write that has no ledger entry.
type BalanceOverride struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	NewBalance      decimal.Decimal `json:"new_balance"`
	CreatedAt       time.Time       `json:"created_at"`
}
