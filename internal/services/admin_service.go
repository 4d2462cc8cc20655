package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/auth"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
)

// AdminService is the administrative override layer. SetExactBalance deliberately leaves no ledger
// entry; the override table is its only trace.
type AdminService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	SetExactBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (*models.User, error)
	AdjustByDelta(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, description string) (*models.Transaction, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status models.UserStatus) error
	Overrides(ctx context.Context, userID uuid.UUID) ([]models.BalanceOverride, error)
}

type adminService struct {
	core
}

func NewAdminService(d Deps) *adminService {
	return &adminService{core: newCore(d)}
}

func (s *adminService) ListUsers(ctx context.Context) (users []models.User, err error) {
	ctx, done := startSpan(ctx, "ListUsers")
	defer done(&err)
	return s.store.Users().List(ctx)
}

func (s *adminService) SetExactBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (user *models.User, err error) {
	ctx, done := startSpan(ctx, "SetExactBalance")
	defer done(&err)

	if !balance.Equal(balance.Round(2)) {
		return nil, pkgerrors.ErrInvalidAmount
	}

	var previous decimal.Decimal
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		previous, err = st.Users().SetBalance(ctx, userID, balance)
		if err != nil {
			return err
		}
		override := &models.BalanceOverride{
			ID:              s.newID(),
			UserID:          userID,
			PreviousBalance: previous,
			NewBalance:      balance,
			CreatedAt:       s.now().UTC(),
		}
		if err := st.Overrides().Create(ctx, override); err != nil {
			return err
		}
		user, err = st.Users().GetByID(ctx, userID)
		return err
	})
	if err != nil {
		slog.Error("failed to set balance", "method", "SetExactBalance", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Warn("balance overridden", "method", "SetExactBalance", "user_id", userID,
		"previous", previous.String(), "balance", balance.String())
	s.committed(ctx, "", s.event(models.EventBalanceOverridden, userID, userID, balance.Sub(previous), balance, ""))
	return user, nil
}

// AdjustByDelta records a manual correction that shows up in history: create and complete in one unit of work.
func (s *adminService) AdjustByDelta(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, description string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "AdjustByDelta")
	defer done(&err)

	var balance decimal.Decimal
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		pending, _, err := s.createPending(ctx, st, CreateTransactionRequest{
			UserID:      userID,
			Amount:      amount,
			Type:        txType,
			Description: description,
		})
		if err != nil {
			return err
		}
		res, newBalance, err := s.resolve(ctx, st, pending.ID, models.StatusCompleted, "Manual adjustment")
		if err != nil {
			return err
		}
		tx, balance = res.Transaction, newBalance
		return nil
	})
	if err != nil {
		slog.Error("failed to adjust balance", "method", "AdjustByDelta", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("balance adjusted", "method", "AdjustByDelta", "user_id", userID, "transaction_id", tx.ID, "amount", amount.String())
	s.committed(ctx, "transaction", s.event(models.EventTransactionCompleted, userID, tx.ID, amount, balance, string(tx.Status)))
	return tx, nil
}

func (s *adminService) SetStatus(ctx context.Context, userID uuid.UUID, status models.UserStatus) (err error) {
	ctx, done := startSpan(ctx, "SetUserStatus")
	defer done(&err)

	if !status.Valid() {
		return pkgerrors.ErrInvalidUserStatus
	}
	if err := s.store.Users().SetStatus(ctx, userID, status); err != nil {
		slog.Error("failed to set user status", "method", "SetStatus", "user_id", userID, "error", err)
		return err
	}

	slog.Info("user status changed", "method", "SetStatus", "user_id", userID, "status", status)
	s.committed(ctx, "", s.event(models.EventUserStatusChanged, userID, userID, decimal.Zero, decimal.Zero, string(status)))

	// A blocked user cannot log in again, so the live session goes too.
	if status == models.UserStatusBlocked && s.sessions != nil {
		if err := s.sessions.Del(ctx, auth.TokenKey(userID)); err != nil {
			slog.Error("failed to revoke session", "method", "SetStatus", "user_id", userID, "error", err)
			return fmt.Errorf("user blocked but session not revoked: %w", err)
		}
	}
	return nil
}

func (s *adminService) Overrides(ctx context.Context, userID uuid.UUID) (list []models.BalanceOverride, err error) {
	ctx, done := startSpan(ctx, "ListOverrides")
	defer done(&err)
	return s.store.Overrides().ListByUser(ctx, userID)
}
