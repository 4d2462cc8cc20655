package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type NotificationService interface {
	Send(ctx context.Context, userID uuid.UUID, title, message string, nType models.NotificationType) (*models.Notification, error)
	Broadcast(ctx context.Context, title, message string, nType models.NotificationType) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	MarkOwnRead(ctx context.Context, userID, id uuid.UUID) error
	List(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	UnreadAlerts(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
}

type notificationService struct {
	core
}

func NewNotificationService(d Deps) *notificationService {
	return &notificationService{core: newCore(d)}
}

func (s *notificationService) build(userID uuid.UUID, title, message string, nType models.NotificationType) (*models.Notification, error) {
	if !nType.Valid() {
		return nil, pkgerrors.ErrInvalidNotificationType
	}
	if strings.TrimSpace(title) == "" && strings.TrimSpace(message) == "" {
		return nil, fmt.Errorf("notification title or message is required: %w", pkgerrors.ErrInvalidInput)
	}
	return &models.Notification{
		ID:      s.newID(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    nType,
		Date:    s.now().UTC(),
	}, nil
}

func (s *notificationService) Send(ctx context.Context, userID uuid.UUID, title, message string, nType models.NotificationType) (n *models.Notification, err error) {
	ctx, done := startSpan(ctx, "SendNotification")
	defer done(&err)

	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required: %w", pkgerrors.ErrInvalidInput)
	}
	n, err = s.build(userID, title, message, nType)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.store.Notifications().Create(ctx, n); err != nil {
		slog.Error("failed to send notification", "method", "Send", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("notification sent", "method", "Send", "notification_id", n.ID, "user_id", userID, "type", nType)
	s.invalidate(ctx, userID)
	return n, nil
}

// Broadcast sends the same notification to every user in one unit of work.
func (s *notificationService) Broadcast(ctx context.Context, title, message string, nType models.NotificationType) (count int, err error) {
	ctx, done := startSpan(ctx, "BroadcastNotification")
	defer done(&err)

	template, err := s.build(uuid.Nil, title, message, nType)
	if err != nil {
		return 0, err
	}

	var recipients []uuid.UUID
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		users, err := st.Users().List(ctx)
		if err != nil {
			return err
		}
		for _, u := range users {
			n := *template
			n.ID = s.newID()
			n.UserID = u.ID
			if err := st.Notifications().Create(ctx, &n); err != nil {
				return err
			}
			recipients = append(recipients, u.ID)
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to broadcast notification", "method", "Broadcast", "error", err)
		return 0, err
	}

	slog.Info("notification broadcast", "method", "Broadcast", "recipients", len(recipients), "type", nType)
	s.invalidate(ctx, recipients...)
	return len(recipients), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := startSpan(ctx, "MarkNotificationRead")
	defer done(&err)

	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Notifications().MarkRead(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, n.UserID)
	return nil
}

// MarkOwnRead is MarkRead for a user acting on their own inbox. Other users' notifications
// look missing rather than forbidden.
func (s *notificationService) MarkOwnRead(ctx context.Context, userID, id uuid.UUID) (err error) {
	ctx, done := startSpan(ctx, "MarkOwnNotificationRead")
	defer done(&err)

	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != userID {
		return pkgerrors.ErrNotificationNotFound
	}
	if err := s.store.Notifications().MarkRead(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *notificationService) List(ctx context.Context, userID uuid.UUID) (list []models.Notification, err error) {
	ctx, done := startSpan(ctx, "ListNotifications")
	defer done(&err)
	return s.store.Notifications().ListByUser(ctx, userID)
}

func (s *notificationService) UnreadAlerts(ctx context.Context, userID uuid.UUID) (list []models.Notification, err error) {
	ctx, done := startSpan(ctx, "UnreadAlerts")
	defer done(&err)
	return s.store.Notifications().ListUnreadAlerts(ctx, userID)
}
