package postgres_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository/postgres"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var transactionColumns = []string{"id", "user_id", "amount", "type", "status", "description", "counterparty", "admin_reason", "payment_link", "admin_message", "created_at"}

func TestPostgresTransactionRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewPostgresTransactionRepository(db)
	ctx := context.Background()

	valid := func() *models.Transaction {
		return &models.Transaction{
			ID:     uuid.New(),
			UserID: uuid.New(),
			Amount: decimal.RequireFromString("-200"),
			Type:   models.TypeWithdrawal,
			Status: models.StatusPending,
			Date:   time.Now().UTC(),
		}
	}

	t.Run("NilTransaction", func(t *testing.T) {
		assert.ErrorIs(t, repo.Create(ctx, nil), pkgerrors.ErrNilTransaction)
	})

	t.Run("InvalidType", func(t *testing.T) {
		tx := valid()
		tx.Type = "invalid"
		assert.ErrorIs(t, repo.Create(ctx, tx), pkgerrors.ErrInvalidTransactionType)
	})

	t.Run("OnlyPending", func(t *testing.T) {
		for _, status := range []models.TransactionStatus{models.StatusCompleted, models.StatusRejected} {
			tx := valid()
			tx.Status = status
			assert.ErrorIs(t, repo.Create(ctx, tx), pkgerrors.ErrInvalidTransactionStatus)
		}
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		tx := valid()
		tx.Amount = decimal.Zero
		assert.ErrorIs(t, repo.Create(ctx, tx), pkgerrors.ErrInvalidAmount)
	})

	t.Run("Success", func(t *testing.T) {
		tx := valid()
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions (id, user_id, amount, type, status, description, counterparty, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)).
			WithArgs(tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Status, "", "", tx.Date).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, tx))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DatabaseError", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO transactions`)).
			WillReturnError(fmt.Errorf("database error"))

		err := repo.Create(ctx, valid())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create transaction")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_Resolve(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewPostgresTransactionRepository(db)
	ctx := context.Background()
	id := uuid.New()
	userID := uuid.New()
	resolveQuery := regexp.QuoteMeta(`WHERE id = $3 AND status = 'PENDING'`)
	statusQuery := regexp.QuoteMeta(`SELECT status, type FROM transactions WHERE id = $1`)

	t.Run("NonTerminalDecision", func(t *testing.T) {
		_, err := repo.Resolve(ctx, id, models.StatusPending, "")
		assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransactionStatus)
	})

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery(resolveQuery).
			WithArgs(models.StatusRejected, "limit", id).
			WillReturnRows(sqlmock.NewRows(transactionColumns).AddRow(
				id.String(), userID.String(), "-200.00", "WITHDRAWAL", "REJECTED", "ATM", "", "limit", "", "", time.Now().UTC()))

		tx, err := repo.Resolve(ctx, id, models.StatusRejected, "limit")
		require.NoError(t, err)
		assert.Equal(t, models.StatusRejected, tx.Status)
		assert.Equal(t, "limit", tx.AdminReason)
		assert.True(t, tx.Amount.Equal(decimal.RequireFromString("-200")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyDecided", func(t *testing.T) {
		mock.ExpectQuery(resolveQuery).
			WithArgs(models.StatusCompleted, "", id).
			WillReturnRows(sqlmock.NewRows(transactionColumns))
		mock.ExpectQuery(statusQuery).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"status", "type"}).AddRow("REJECTED", "WITHDRAWAL"))

		_, err := repo.Resolve(ctx, id, models.StatusCompleted, "")
		assert.ErrorIs(t, err, pkgerrors.ErrTransactionAlreadyDecided)
		assert.ErrorIs(t, err, pkgerrors.ErrConflict)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("NotFound", func(t *testing.T) {
		mock.ExpectQuery(resolveQuery).
			WithArgs(models.StatusCompleted, "", id).
			WillReturnRows(sqlmock.NewRows(transactionColumns))
		mock.ExpectQuery(statusQuery).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows([]string{"status", "type"}))

		_, err := repo.Resolve(ctx, id, models.StatusCompleted, "")
		assert.ErrorIs(t, err, pkgerrors.ErrTransactionNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTransactionRepository_SetDepositInstructions(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewPostgresTransactionRepository(db)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`AND type = 'DEPOSIT'`)).
		WithArgs("https://pay.test", "ref 42", id).
		WillReturnRows(sqlmock.NewRows(transactionColumns))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT status, type FROM transactions WHERE id = $1`)).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"status", "type"}).AddRow("PENDING", "WITHDRAWAL"))

	_, err = repo.SetDepositInstructions(context.Background(), id, "https://pay.test", "ref 42")
	assert.ErrorIs(t, err, pkgerrors.ErrNotDepositTransaction)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTransactionRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	repo := postgres.NewPostgresTransactionRepository(db)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta(`AND user_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT $3 OFFSET $4`)).
		WithArgs(userID, models.StatusPending, 10, 5).
		WillReturnRows(sqlmock.NewRows(transactionColumns).
			AddRow(uuid.NewString(), userID.String(), "500", "DEPOSIT", "PENDING", "", "", "", "", "", time.Now().UTC()).
			AddRow(uuid.NewString(), userID.String(), "-20", "PAYMENT", "PENDING", "", "Shop", "", "", "", time.Now().UTC().Add(-time.Hour)))

	list, err := repo.List(context.Background(), models.TransactionFilter{UserID: userID, Status: models.StatusPending, Limit: 10, Offset: 5})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Shop", list[1].Counterparty)
	assert.NoError(t, mock.ExpectationsWereMet())
}
