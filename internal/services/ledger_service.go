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

// CreateTransactionRequest describes a new ledger entry. Amount is signed: positive credits the
// owner's balance, negative debits it.
type CreateTransactionRequest struct {
	UserID       uuid.UUID
	Amount       decimal.Decimal
	Type         models.TransactionType
	Description  string
	Counterparty string
}

func (r CreateTransactionRequest) validate() error {
	if r.UserID == uuid.Nil {
		return fmt.Errorf("user id is required: %w", pkgerrors.ErrInvalidInput)
	}
	if !r.Type.Valid() {
		return pkgerrors.ErrInvalidTransactionType
	}
	if !validAmount(r.Amount) {
		return pkgerrors.ErrInvalidAmount
	}
	return nil
}

// LedgerService is the transaction lifecycle engine. Balances are applied optimistically on
// creation and compensated when an admin rejects the transaction.
type LedgerService interface {
	Create(ctx context.Context, req CreateTransactionRequest) (*models.Transaction, error)
	Decide(ctx context.Context, id uuid.UUID, decision models.TransactionStatus, adminReason string) (*models.DecisionResult, error)
	AttachDepositInstructions(ctx context.Context, id uuid.UUID, paymentLink, adminMessage string) (*models.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filter models.TransactionFilter) ([]models.Transaction, error)
}

type ledgerService struct {
	core
}

func NewLedgerService(d Deps) *ledgerService {
	return &ledgerService{core: newCore(d)}
}

func (s *ledgerService) Create(ctx context.Context, req CreateTransactionRequest) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "CreateTransaction")
	defer done(&err)

	var balance decimal.Decimal
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		tx, balance, err = s.createPending(ctx, st, req)
		return err
	})
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "user_id", req.UserID, "type", req.Type, "error", err)
		return nil, err
	}

	slog.Info("transaction created", "method", "Create", "transaction_id", tx.ID, "user_id", tx.UserID, "amount", tx.Amount.String())
	s.committed(ctx, "transaction", s.event(models.EventTransactionCreated, tx.UserID, tx.ID, tx.Amount, balance, string(tx.Status)))
	return tx, nil
}

func (s *ledgerService) Decide(ctx context.Context, id uuid.UUID, decision models.TransactionStatus, adminReason string) (res *models.DecisionResult, err error) {
	ctx, done := startSpan(ctx, "DecideTransaction")
	defer done(&err)

	if !decision.Terminal() {
		return nil, pkgerrors.ErrInvalidTransactionStatus
	}

	var balance decimal.Decimal
	err = s.store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		res, balance, err = s.resolve(ctx, st, id, decision, adminReason)
		return err
	})
	if err != nil {
		slog.Error("failed to decide transaction", "method", "Decide", "transaction_id", id, "decision", decision, "error", err)
		return nil, err
	}

	tx := res.Transaction
	slog.Info("transaction decided", "method", "Decide", "transaction_id", tx.ID, "status", tx.Status, "refunded", res.Refunded)
	s.committed(ctx, "transaction", s.event(decisionEvent(tx.Status), tx.UserID, tx.ID, tx.Amount, balance, string(tx.Status)))
	s.notifyDecision(ctx, tx)
	return res, nil
}

func (s *ledgerService) AttachDepositInstructions(ctx context.Context, id uuid.UUID, paymentLink, adminMessage string) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "AttachDepositInstructions")
	defer done(&err)

	if strings.TrimSpace(paymentLink) == "" {
		return nil, fmt.Errorf("payment link is required: %w", pkgerrors.ErrInvalidInput)
	}

	tx, err = s.store.Transactions().SetDepositInstructions(ctx, id, paymentLink, adminMessage)
	if err != nil {
		slog.Error("failed to attach deposit instructions", "method", "AttachDepositInstructions", "transaction_id", id, "error", err)
		return nil, err
	}

	message := fmt.Sprintf("Complete your deposit of %s here: %s", tx.Amount.StringFixed(2), paymentLink)
	if adminMessage != "" {
		message = adminMessage + "\n" + message
	}
	s.notify(ctx, tx.UserID, "Deposit instructions", message, models.NotificationAlert)
	return tx, nil
}

func (s *ledgerService) Get(ctx context.Context, id uuid.UUID) (tx *models.Transaction, err error) {
	ctx, done := startSpan(ctx, "GetTransaction")
	defer done(&err)
	return s.store.Transactions().GetByID(ctx, id)
}

func (s *ledgerService) List(ctx context.Context, filter models.TransactionFilter) (list []models.Transaction, err error) {
	ctx, done := startSpan(ctx, "ListTransactions")
	defer done(&err)
	return s.store.Transactions().List(ctx, filter)
}

// createPending applies the amount to the owner's balance and records a PENDING entry inside st.
func (c *core) createPending(ctx context.Context, st repository.Store, req CreateTransactionRequest) (*models.Transaction, decimal.Decimal, error) {
	if err := req.validate(); err != nil {
		return nil, decimal.Zero, err
	}

	balance, err := st.Users().ChangeBalance(ctx, req.UserID, req.Amount)
	if err != nil {
		return nil, decimal.Zero, err
	}

	tx := &models.Transaction{
		ID:           c.newID(),
		UserID:       req.UserID,
		Amount:       req.Amount,
		Type:         req.Type,
		Status:       models.StatusPending,
		Description:  req.Description,
		Counterparty: req.Counterparty,
		Date:         c.now().UTC(),
	}
	if err := st.Transactions().Create(ctx, tx); err != nil {
		return nil, decimal.Zero, err
	}
	return tx, balance, nil
}

// resolve moves a PENDING transaction to decision inside st. Rejection reverses the amount.
func (c *core) resolve(ctx context.Context, st repository.Store, id uuid.UUID, decision models.TransactionStatus, adminReason string) (*models.DecisionResult, decimal.Decimal, error) {
	tx, err := st.Transactions().Resolve(ctx, id, decision, adminReason)
	if err != nil {
		return nil, decimal.Zero, err
	}

	if decision == models.StatusRejected {
		balance, err := st.Users().ChangeBalance(ctx, tx.UserID, tx.Amount.Neg())
		if err != nil {
			return nil, decimal.Zero, err
		}
		return &models.DecisionResult{Transaction: tx, Refunded: true}, balance, nil
	}

	user, err := st.Users().GetByID(ctx, tx.UserID)
	if err != nil {
		return nil, decimal.Zero, err
	}
	return &models.DecisionResult{Transaction: tx}, user.Balance, nil
}

func (c *core) notifyDecision(ctx context.Context, tx *models.Transaction) {
	label := describeType(tx.Type)
	amount := tx.Amount.Abs().StringFixed(2)
	if tx.Status == models.StatusCompleted {
		c.notify(ctx, tx.UserID, "Transaction approved",
			fmt.Sprintf("Your %s of %s was approved.", label, amount), models.NotificationSuccess)
		return
	}

	message := fmt.Sprintf("Your %s of %s was rejected and your balance was restored.", label, amount)
	if tx.AdminReason != "" {
		message = fmt.Sprintf("Your %s of %s was rejected: %s. Your balance was restored.", label, amount, tx.AdminReason)
	}
	c.notify(ctx, tx.UserID, "Transaction rejected", message, models.NotificationWarning)
}

func describeType(t models.TransactionType) string {
	return strings.ToLower(strings.ReplaceAll(string(t), "_", " "))
}

func decisionEvent(status models.TransactionStatus) models.EventType {
	if status == models.StatusRejected {
		return models.EventTransactionRejected
	}
	return models.EventTransactionCompleted
}
