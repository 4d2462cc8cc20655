package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
)

type TransactionRepository interface {
	// Create inserts a PENDING transaction; any other status is rejected.
	Create(ctx context.Context, tx *models.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
	// Resolve moves a PENDING transaction to a terminal status. It fails with
	// ErrTransactionAlreadyDecided when the row is no longer PENDING.
	Resolve(ctx context.Context, id uuid.UUID, status models.TransactionStatus, adminReason string) (*models.Transaction, error)
	SetDepositInstructions(ctx context.Context, id uuid.UUID, paymentLink, adminMessage string) (*models.Transaction, error)
}
