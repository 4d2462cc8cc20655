package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
)

// AccountService holds the account-holder operations. Amounts are always positive here; the sign is
// derived from the operation.
type AccountService interface {
	GetAccount(ctx context.Context, userID uuid.UUID) (*models.AccountView, error)
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (*models.Transaction, error)
	Transfer(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, counterparty, description string) (*models.Transaction, error)
	Pay(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, counterparty, description string) (*models.Transaction, error)
	RequestLoan(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, purpose string) (*models.Loan, error)
	AddBeneficiary(ctx context.Context, userID uuid.UUID, name, iban, institution string) (*models.Beneficiary, error)
	ListBeneficiaries(ctx context.Context, userID uuid.UUID) ([]models.Beneficiary, error)
}

type accountService struct {
	core
	loans LoanService
}

func NewAccountService(d Deps, loans LoanService) *accountService {
	return &accountService{core: newCore(d), loans: loans}
}

func (s *accountService) GetAccount(ctx context.Context, userID uuid.UUID) (view *models.AccountView, err error) {
	ctx, done := startSpan(ctx, "GetAccount")
	defer done(&err)

	// The generation is read before the view is loaded, so a write that commits in between
	// moves readers to a key this fill never touches.
	key := ""
	if s.cache != nil {
		if gen, err := s.generation(ctx, userID); err != nil {
			slog.Warn("account cache unavailable", "method", "GetAccount", "user_id", userID, "error", err)
		} else {
			key = accountKey(userID, gen)
		}
	}

	if key != "" {
		cached, err := s.cache.Get(ctx, key)
		if err == nil {
			var v models.AccountView
			if err := json.Unmarshal([]byte(cached), &v); err == nil {
				slog.Debug("account served from cache", "method", "GetAccount", "user_id", userID)
				return &v, nil
			}
			slog.Warn("failed to decode cached account", "method", "GetAccount", "user_id", userID)
		} else if !errors.Is(err, redis.ErrKeyNotFound) {
			slog.Warn("account cache unavailable", "method", "GetAccount", "user_id", userID, "error", err)
		}
	}

	err = s.store.InReadTx(ctx, func(ctx context.Context, st repository.Store) error {
		view, err = loadAccount(ctx, st, userID)
		return err
	})
	if err != nil {
		slog.Error("failed to load account", "method", "GetAccount", "user_id", userID, "error", err)
		return nil, err
	}

	if key != "" {
		if payload, err := json.Marshal(view); err == nil {
			if err := s.cache.Set(ctx, key, string(payload), s.cacheTTL); err != nil {
				slog.Warn("failed to cache account", "method", "GetAccount", "user_id", userID, "error", err)
			}
		}
	}
	return view, nil
}

func loadAccount(ctx context.Context, st repository.Store, userID uuid.UUID) (*models.AccountView, error) {
	user, err := st.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = ""
	txs, err := st.Transactions().List(ctx, models.TransactionFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	loans, err := st.Loans().List(ctx, models.LoanFilter{UserID: userID})
	if err != nil {
		return nil, err
	}
	notifications, err := st.Notifications().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	beneficiaries, err := st.Beneficiaries().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &models.AccountView{
		User:          *user,
		Transactions:  nonNil(txs),
		Loans:         nonNil(loans),
		Notifications: nonNil(notifications),
		Beneficiaries: nonNil(beneficiaries),
	}, nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func (s *accountService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "Deposit")
	defer done(&err)

	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	return s.open(ctx, CreateTransactionRequest{
		UserID:      userID,
		Amount:      amount,
		Type:        models.TypeDeposit,
		Description: orDefault(description, "Deposit"),
	})
}

func (s *accountService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, description string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "Withdraw")
	defer done(&err)
	return s.debit(ctx, userID, amount, models.TypeWithdrawal, "", orDefault(description, "Withdrawal"))
}

func (s *accountService) Transfer(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, counterparty, description string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "Transfer")
	defer done(&err)

	if strings.TrimSpace(counterparty) == "" {
		return nil, fmt.Errorf("counterparty is required: %w", pkgerrors.ErrInvalidInput)
	}
	return s.debit(ctx, userID, amount, models.TypeTransferOut, counterparty, orDefault(description, "Transfer to "+counterparty))
}

func (s *accountService) Pay(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, counterparty, description string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "Pay")
	defer done(&err)

	if strings.TrimSpace(counterparty) == "" {
		return nil, fmt.Errorf("payee is required: %w", pkgerrors.ErrInvalidInput)
	}
	return s.debit(ctx, userID, amount, models.TypePayment, counterparty, orDefault(description, "Payment to "+counterparty))
}

// debit opens a negative PENDING transaction. The funds check runs on the balance returned by the
// atomic update, so concurrent debits cannot both pass it.
func (s *accountService) debit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, txType models.TransactionType, counterparty, description string) (*models.Transaction, error) {
	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	return s.open(ctx, CreateTransactionRequest{
		UserID:       userID,
		Amount:       amount.Neg(),
		Type:         txType,
		Description:  description,
		Counterparty: counterparty,
	})
}

func (s *accountService) open(ctx context.Context, req CreateTransactionRequest) (*models.Transaction, error) {
	var (
		tx      *models.Transaction
		balance decimal.Decimal
	)
	err := s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		var err error
		tx, balance, err = s.createPending(ctx, st, req)
		if err != nil {
			return err
		}
		if req.Amount.IsNegative() && balance.IsNegative() {
			return pkgerrors.ErrInsufficientFunds
		}
		return nil
	})
	if err != nil {
		slog.Error("failed to open transaction", "method", "open", "user_id", req.UserID, "type", req.Type, "error", err)
		return nil, err
	}

	slog.Info("transaction opened", "method", "open", "transaction_id", tx.ID, "user_id", tx.UserID, "type", tx.Type, "amount", tx.Amount.String())
	s.committed(ctx, "transaction", s.event(models.EventTransactionCreated, tx.UserID, tx.ID, tx.Amount, balance, string(tx.Status)))
	return tx, nil
}

func (s *accountService) RequestLoan(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, purpose string) (loan *models.Loan, err error) {
	ctx, done := startSpan(ctx, "AccountRequestLoan")
	defer done(&err)

	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.loans.Request(ctx, userID, user.Name, amount, purpose)
}

func (s *accountService) AddBeneficiary(ctx context.Context, userID uuid.UUID, name, iban, institution string) (b *models.Beneficiary, err error) {
	ctx, done := startSpan(ctx, "AddBeneficiary")
	defer done(&err)

	b = &models.Beneficiary{
		ID:          s.newID(),
		UserID:      userID,
		Name:        strings.TrimSpace(name),
		IBAN:        strings.ReplaceAll(strings.ToUpper(iban), " ", ""),
		Institution: institution,
		CreatedAt:   s.now().UTC(),
	}
	if b.Name == "" || b.IBAN == "" {
		return nil, fmt.Errorf("beneficiary name and iban are required: %w", pkgerrors.ErrInvalidInput)
	}
	if err := s.store.Beneficiaries().Create(ctx, b); err != nil {
		slog.Error("failed to add beneficiary", "method", "AddBeneficiary", "user_id", userID, "error", err)
		return nil, err
	}
	s.invalidate(ctx, userID)
	return b, nil
}

func (s *accountService) ListBeneficiaries(ctx context.Context, userID uuid.UUID) (list []models.Beneficiary, err error) {
	ctx, done := startSpan(ctx, "ListBeneficiaries")
	defer done(&err)
	return s.store.Beneficiaries().ListByUser(ctx, userID)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
