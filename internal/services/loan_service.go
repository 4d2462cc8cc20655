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
	"github.com/shopspring/decimal"
)

// LoanDecision is the outcome of deciding a loan. Disbursement is set only for approvals.
type LoanDecision struct {
	Loan         *models.Loan        `json:"loan"`
	Disbursement *models.Transaction `json:"disbursement,omitempty"`
}

type LoanService interface {
	Request(ctx context.Context, userID uuid.UUID, userName string, amount decimal.Decimal, purpose string) (*models.Loan, error)
	Decide(ctx context.Context, id uuid.UUID, approve bool, adminReason string) (*LoanDecision, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Loan, error)
	List(ctx context.Context, filter models.LoanFilter) ([]models.Loan, error)
}

type loanService struct {
	core
}

func NewLoanService(d Deps) *loanService {
	return &loanService{core: newCore(d)}
}

func (s *loanService) Request(ctx context.Context, userID uuid.UUID, userName string, amount decimal.Decimal, purpose string) (loan *models.Loan, err error) {
	ctx, done := startSpan(ctx, "RequestLoan")
	defer done(&err)

	if err := requirePositive(amount); err != nil {
		return nil, err
	}
	if strings.TrimSpace(purpose) == "" {
		return nil, fmt.Errorf("loan purpose is required: %w", pkgerrors.ErrInvalidInput)
	}
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}

	loan = &models.Loan{
		ID:          s.newID(),
		UserID:      userID,
		UserName:    userName,
		Amount:      amount,
		Purpose:     purpose,
		Status:      models.LoanPending,
		RequestDate: s.now().UTC(),
	}
	if err := s.store.Loans().Create(ctx, loan); err != nil {
		slog.Error("failed to create loan", "method", "Request", "user_id", userID, "error", err)
		return nil, err
	}

	slog.Info("loan requested", "method", "Request", "loan_id", loan.ID, "user_id", userID, "amount", amount.String())
	s.committed(ctx, "loan", s.event(models.EventLoanRequested, userID, loan.ID, amount, decimal.Zero, string(loan.Status)))
	return loan, nil
}

func (s *loanService) Decide(ctx context.Context, id uuid.UUID, approve bool, adminReason string) (res *LoanDecision, err error) {
	ctx, done := startSpan(ctx, "DecideLoan")
	defer done(&err)

	status := models.LoanRejected
	if approve {
		status = models.LoanApproved
	}

	res = &LoanDecision{}
	var balance decimal.Decimal
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		loan, err := st.Loans().Resolve(ctx, id, status, adminReason)
		if err != nil {
			return err
		}
		res.Loan = loan
		if !approve {
			return nil
		}

		pending, _, err := s.createPending(ctx, st, CreateTransactionRequest{
			UserID:      loan.UserID,
			Amount:      loan.Amount,
			Type:        models.TypeDeposit,
			Description: "Loan disbursement: " + loan.Purpose,
		})
		if err != nil {
			return err
		}
		decided, newBalance, err := s.resolve(ctx, st, pending.ID, models.StatusCompleted, "Loan approved")
		if err != nil {
			return err
		}
		res.Disbursement = decided.Transaction
		balance = newBalance
		return nil
	})
	if err != nil {
		slog.Error("failed to decide loan", "method", "Decide", "loan_id", id, "approve", approve, "error", err)
		return nil, err
	}

	loan := res.Loan
	slog.Info("loan decided", "method", "Decide", "loan_id", loan.ID, "status", loan.Status)
	if approve {
		s.committed(ctx, "loan", s.event(models.EventLoanApproved, loan.UserID, loan.ID, loan.Amount, balance, string(loan.Status)))
		s.committed(ctx, "transaction", s.event(models.EventTransactionCompleted, loan.UserID, res.Disbursement.ID, loan.Amount, balance, string(models.StatusCompleted)))
		s.notify(ctx, loan.UserID, "Loan approved",
			fmt.Sprintf("Your loan of %s for %q was approved and credited to your account.", loan.Amount.StringFixed(2), loan.Purpose),
			models.NotificationSuccess)
		return res, nil
	}

	s.committed(ctx, "loan", s.event(models.EventLoanRejected, loan.UserID, loan.ID, loan.Amount, decimal.Zero, string(loan.Status)))
	message := fmt.Sprintf("Your loan request of %s for %q was rejected.", loan.Amount.StringFixed(2), loan.Purpose)
	if adminReason != "" {
		message = fmt.Sprintf("Your loan request of %s for %q was rejected: %s", loan.Amount.StringFixed(2), loan.Purpose, adminReason)
	}
	s.notify(ctx, loan.UserID, "Loan rejected", message, models.NotificationError)
	return res, nil
}

func (s *loanService) Get(ctx context.Context, id uuid.UUID) (loan *models.Loan, err error) {
	ctx, done := startSpan(ctx, "GetLoan")
	defer done(&err)
	return s.store.Loans().GetByID(ctx, id)
}

func (s *loanService) List(ctx context.Context, filter models.LoanFilter) (list []models.Loan, err error) {
	ctx, done := startSpan(ctx, "ListLoans")
	defer done(&err)
	return s.store.Loans().List(ctx, filter)
}
