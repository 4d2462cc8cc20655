package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type notificationRepository struct{ s *Store }

func (r *notificationRepository) Create(_ context.Context, n *models.Notification) error {
	if n == nil {
		return pkgerrors.ErrNilNotification
	}
	if !n.Type.Valid() {
		return pkgerrors.ErrInvalidNotificationType
	}
	return r.s.update(func(st *state) error {
		if findUser(st, n.UserID) < 0 {
			return fmt.Errorf("notification recipient: %w", pkgerrors.ErrUserNotFound)
		}
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (r *notificationRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	matched, err := r.filter(func(n models.Notification) bool { return n.ID == id })
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 {
		return nil, pkgerrors.ErrNotificationNotFound
	}
	return &matched[0], nil
}

func (r *notificationRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	matched, err := r.filter(func(n models.Notification) bool { return n.UserID == userID })
	if err != nil {
		return nil, err
	}
	return newestFirst(matched, func(n models.Notification) int64 { return n.Date.UnixNano() }), nil
}

func (r *notificationRepository) ListUnreadAlerts(_ context.Context, userID uuid.UUID) ([]models.Notification, error) {
	matched, err := r.filter(func(n models.Notification) bool {
		return n.UserID == userID && n.Type == models.NotificationAlert && !n.Read
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].Date.Before(matched[j].Date) })
	return matched, nil
}

func (r *notificationRepository) MarkRead(_ context.Context, id uuid.UUID) error {
	return r.s.update(func(st *state) error {
		for i := range st.notifications {
			if st.notifications[i].ID == id {
				st.notifications[i].Read = true
				return nil
			}
		}
		return pkgerrors.ErrNotificationNotFound
	})
}

func (r *notificationRepository) filter(keep func(models.Notification) bool) ([]models.Notification, error) {
	var out []models.Notification
	err := r.s.view(func(st *state) error {
		for _, n := range st.notifications {
			if keep(n) {
				out = append(out, n)
			}
		}
		return nil
	})
	return out, err
}

type beneficiaryRepository struct{ s *Store }

func (r *beneficiaryRepository) Create(_ context.Context, b *models.Beneficiary) error {
	if b == nil || b.Name == "" || b.IBAN == "" {
		return fmt.Errorf("beneficiary name and iban are required: %w", pkgerrors.ErrInvalidInput)
	}
	return r.s.update(func(st *state) error {
		if findUser(st, b.UserID) < 0 {
			return fmt.Errorf("beneficiary owner: %w", pkgerrors.ErrUserNotFound)
		}
		st.beneficiaries = append(st.beneficiaries, *b)
		return nil
	})
}

func (r *beneficiaryRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Beneficiary, error) {
	var out []models.Beneficiary
	err := r.s.view(func(st *state) error {
		for _, b := range st.beneficiaries {
			if b.UserID == userID {
				out = append(out, b)
			}
		}
		return nil
	})
	return out, err
}
