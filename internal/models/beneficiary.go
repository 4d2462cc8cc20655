package models

import (
	"time"

	"github.com/google/uuid"
)

// Beneficiary is a saved external counterparty a user sends money to.
type Beneficiary struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	IBAN        string    `json:"iban"`
	Institution string    `json:"institution,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
