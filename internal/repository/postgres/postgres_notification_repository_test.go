package postgres_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository/postgres"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresNotificationRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewPostgresNotificationRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("InvalidType", func(t *testing.T) {
		err := repo.Create(ctx, &models.Notification{UserID: userID, Type: "loud"})
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidNotificationType)
	})

	t.Run("UnreadAlertsOldestFirst", func(t *testing.T) {
		older := time.Now().UTC().Add(-time.Hour)
		mock.ExpectQuery(regexp.QuoteMeta(`WHERE user_id = $1 AND type = 'alert' AND read = FALSE ORDER BY created_at ASC`)).
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "read", "created_at"}).
				AddRow(uuid.NewString(), userID.String(), "first", "m", "alert", false, older).
				AddRow(uuid.NewString(), userID.String(), "second", "m", "alert", false, older.Add(time.Minute)))

		alerts, err := repo.ListUnreadAlerts(ctx, userID)
		require.NoError(t, err)
		require.Len(t, alerts, 2)
		assert.Equal(t, "first", alerts[0].Title)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkReadIsIdempotent", func(t *testing.T) {
		id := uuid.New()
		for i := 0; i < 2; i++ {
			mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET read = TRUE WHERE id = $1`)).
				WithArgs(id).
				WillReturnResult(sqlmock.NewResult(0, 1))
			assert.NoError(t, repo.MarkRead(ctx, id))
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("MarkReadNotFound", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`UPDATE notifications SET read = TRUE WHERE id = $1`)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		assert.ErrorIs(t, repo.MarkRead(ctx, uuid.New()), pkgerrors.ErrNotificationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`FROM notifications WHERE id = $1`)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "read", "created_at"}))
		_, err := repo.GetByID(ctx, uuid.New())
		assert.ErrorIs(t, err, pkgerrors.ErrNotificationNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
