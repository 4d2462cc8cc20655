package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/shopspring/decimal"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ChangeBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (newBalance decimal.Decimal, err error)
	SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (previous decimal.Decimal, err error)
	SetStatus(ctx context.Context, userID uuid.UUID, status models.UserStatus) error
}

type OverrideRepository interface {
	Create(ctx context.Context, o *models.BalanceOverride) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.BalanceOverride, error)
}
