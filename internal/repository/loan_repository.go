package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
)

type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error)
	Resolve(ctx context.Context, id uuid.UUID, status models.LoanStatus, adminReason string) (*models.Loan, error)
}
