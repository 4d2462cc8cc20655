package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	ListUnreadAlerts(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type BeneficiaryRepository interface {
	Create(ctx context.Context, b *models.Beneficiary) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Beneficiary, error)
}
