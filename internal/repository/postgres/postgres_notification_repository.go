package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const notificationColumns = `id, user_id, title, message, type, read, created_at`

type PostgresNotificationRepository struct {
	q querier
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{q: db}
}

func (r *PostgresNotificationRepository) Create(ctx context.Context, n *models.Notification) (err error) {
	ctx, done := track(ctx, "CreateNotification")
	defer done(&err)

	if n == nil {
		return pkgerrors.ErrNilNotification
	}
	if !n.Type.Valid() {
		return pkgerrors.ErrInvalidNotificationType
	}

	query := `INSERT INTO notifications (id, user_id, title, message, type, read, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err = r.q.ExecContext(ctx, query, n.ID, n.UserID, n.Title, n.Message, n.Type, n.Read, n.Date); err != nil {
		slog.Error("failed to create notification", "method", "Create", "user_id", n.UserID, "error", err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *models.Notification, err error) {
	ctx, done := track(ctx, "GetNotificationByID", attribute.String("notification_id", id.String()))
	defer done(&err)

	list, err := r.query(ctx, `SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, pkgerrors.ErrNotificationNotFound
	}
	return &list[0], nil
}

func (r *PostgresNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID) (_ []models.Notification, err error) {
	ctx, done := track(ctx, "ListNotifications", attribute.String("user_id", userID.String()))
	defer done(&err)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, userID)
}

func (r *PostgresNotificationRepository) ListUnreadAlerts(ctx context.Context, userID uuid.UUID) (_ []models.Notification, err error) {
	ctx, done := track(ctx, "ListUnreadAlerts", attribute.String("user_id", userID.String()))
	defer done(&err)

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1 AND type = 'alert' AND read = FALSE ORDER BY created_at ASC`
	return r.query(ctx, query, userID)
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) (err error) {
	ctx, done := track(ctx, "MarkNotificationRead", attribute.String("notification_id", id.String()))
	defer done(&err)

	// Already-read rows still match, so repeating the call is harmless.
	result, err := r.q.ExecContext(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrNotificationNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) query(ctx context.Context, query string, args ...any) ([]models.Notification, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.Date); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
