package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	"github.com/honeynil/BankBackOffice/internal/repository/memory"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *memory.Store) uuid.UUID {
	t.Helper()
	u := &models.User{ID: uuid.New(), Email: uuid.NewString() + "@bank.test", PasswordHash: "x", Role: models.RoleUser, Status: models.UserStatusActive}
	require.NoError(t, store.Users().Create(context.Background(), u))
	return u.ID
}

func pending(userID uuid.UUID, amount string, at time.Time) *models.Transaction {
	return &models.Transaction{
		ID:     uuid.New(),
		UserID: userID,
		Amount: decimal.RequireFromString(amount),
		Type:   models.TypeDeposit,
		Status: models.StatusPending,
		Date:   at,
	}
}

func TestStore_InTx(t *testing.T) {
	ctx := context.Background()

	t.Run("RollbackDiscardsChanges", func(t *testing.T) {
		store := memory.NewStore()
		userID := seedUser(t, store)
		boom := errors.New("boom")

		err := store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
			if _, err := st.Users().ChangeBalance(ctx, userID, decimal.NewFromInt(50)); err != nil {
				return err
			}
			if err := st.Transactions().Create(ctx, pending(userID, "50", time.Now())); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		user, err := store.Users().GetByID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, user.Balance.IsZero())
		txs, err := store.Transactions().List(ctx, models.TransactionFilter{UserID: userID})
		require.NoError(t, err)
		assert.Empty(t, txs)
	})

	t.Run("CommitPublishesChanges", func(t *testing.T) {
		store := memory.NewStore()
		userID := seedUser(t, store)

		err := store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
			_, err := st.Users().ChangeBalance(ctx, userID, decimal.RequireFromString("12.34"))
			return err
		})
		require.NoError(t, err)

		user, err := store.Users().GetByID(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "12.34", user.Balance.StringFixed(2))
	})

	t.Run("NestedCallsShareTheUnit", func(t *testing.T) {
		store := memory.NewStore()
		userID := seedUser(t, store)
		boom := errors.New("outer failure")

		err := store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
			if err := st.InTx(ctx, func(ctx context.Context, inner repository.Store) error {
				_, err := inner.Users().ChangeBalance(ctx, userID, decimal.NewFromInt(5))
				return err
			}); err != nil {
				return err
			}
			// вложенный вызов не коммитит сам по себе
			return boom
		})
		assert.ErrorIs(t, err, boom)

		user, err := store.Users().GetByID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, user.Balance.IsZero())
	})

	t.Run("CancelledContext", func(t *testing.T) {
		store := memory.NewStore()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		called := false
		err := store.InTx(cancelled, func(context.Context, repository.Store) error {
			called = true
			return nil
		})
		assert.ErrorIs(t, err, context.Canceled)
		assert.False(t, called)
	})
}

func TestStore_InReadTx(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userID := seedUser(t, store)

	err := store.InReadTx(ctx, func(ctx context.Context, st repository.Store) error {
		if _, err := store.Users().ChangeBalance(ctx, userID, decimal.NewFromInt(5)); err != nil {
			return err
		}
		user, err := st.Users().GetByID(ctx, userID)
		require.NoError(t, err)
		assert.True(t, user.Balance.IsZero())

		_, err = st.Users().ChangeBalance(ctx, userID, decimal.NewFromInt(100))
		return err
	})
	require.NoError(t, err)

	user, err := store.Users().GetByID(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "5.00", user.Balance.StringFixed(2))
}

func TestTransactions_Resolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userID := seedUser(t, store)
	tx := pending(userID, "10", time.Now())
	require.NoError(t, store.Transactions().Create(ctx, tx))

	resolved, err := store.Transactions().Resolve(ctx, tx.ID, models.StatusCompleted, "ok")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, resolved.Status)

	_, err = store.Transactions().Resolve(ctx, tx.ID, models.StatusRejected, "late")
	assert.ErrorIs(t, err, pkgerrors.ErrTransactionAlreadyDecided)

	_, err = store.Transactions().Resolve(ctx, uuid.New(), models.StatusRejected, "")
	assert.ErrorIs(t, err, pkgerrors.ErrTransactionNotFound)

	_, err = store.Transactions().Resolve(ctx, tx.ID, models.StatusPending, "")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransactionStatus)

	stored, err := store.Transactions().GetByID(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "ok", stored.AdminReason)
}

func TestTransactions_ListNewestFirstWithPaging(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userID := seedUser(t, store)
	other := seedUser(t, store)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []uuid.UUID
	for i := 0; i < 4; i++ {
		tx := pending(userID, "1", base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, store.Transactions().Create(ctx, tx))
		ids = append(ids, tx.ID)
	}
	require.NoError(t, store.Transactions().Create(ctx, pending(other, "1", base)))

	all, err := store.Transactions().List(ctx, models.TransactionFilter{UserID: userID})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, ids[3], all[0].ID)
	assert.Equal(t, ids[0], all[3].ID)

	page, err := store.Transactions().List(ctx, models.TransactionFilter{UserID: userID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[2], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)

	empty, err := store.Transactions().List(ctx, models.TransactionFilter{UserID: userID, Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTransactions_CreateRequiresOwner(t *testing.T) {
	store := memory.NewStore()
	err := store.Transactions().Create(context.Background(), pending(uuid.New(), "1", time.Now()))
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestUsers_Create(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	u := &models.User{ID: uuid.New(), Email: "a@bank.test", PasswordHash: "x"}
	require.NoError(t, store.Users().Create(ctx, u))

	dup := &models.User{ID: uuid.New(), Email: "a@bank.test", PasswordHash: "y"}
	assert.ErrorIs(t, store.Users().Create(ctx, dup), pkgerrors.ErrUserAlreadyExists)
	assert.ErrorIs(t, store.Users().Create(ctx, nil), pkgerrors.ErrNilUser)
	assert.ErrorIs(t, store.Users().Create(ctx, &models.User{}), pkgerrors.ErrInvalidInput)

	_, err := store.Users().ChangeBalance(ctx, uuid.New(), decimal.NewFromInt(1))
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
}

func TestLoans_Resolve(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	userID := seedUser(t, store)
	loan := &models.Loan{ID: uuid.New(), UserID: userID, UserName: "Alice", Amount: decimal.NewFromInt(500), Status: models.LoanPending, RequestDate: time.Now()}
	require.NoError(t, store.Loans().Create(ctx, loan))

	_, err := store.Loans().Resolve(ctx, loan.ID, models.LoanApproved, "ok")
	require.NoError(t, err)
	_, err = store.Loans().Resolve(ctx, loan.ID, models.LoanRejected, "")
	assert.ErrorIs(t, err, pkgerrors.ErrLoanAlreadyDecided)
	_, err = store.Loans().Resolve(ctx, uuid.New(), models.LoanRejected, "")
	assert.ErrorIs(t, err, pkgerrors.ErrLoanNotFound)
}
