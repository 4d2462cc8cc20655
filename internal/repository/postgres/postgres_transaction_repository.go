package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
)

const transactionColumns = `id, user_id, amount, type, status, description, counterparty, admin_reason, payment_link, admin_message, created_at`

type PostgresTransactionRepository struct {
	q querier
}

func NewPostgresTransactionRepository(db *sql.DB) *PostgresTransactionRepository {
	return &PostgresTransactionRepository{q: db}
}

func (r *PostgresTransactionRepository) Create(ctx context.Context, tx *models.Transaction) (err error) {
	ctx, done := track(ctx, "CreateTransaction")
	defer done(&err)

	if tx == nil {
		err = pkgerrors.ErrNilTransaction
		slog.Error("failed to create transaction", "method", "Create", "error", err)
		return err
	}
	if !tx.Type.Valid() {
		err = pkgerrors.ErrInvalidTransactionType
		slog.Error("invalid transaction type", "method", "Create", "type", tx.Type, "error", err)
		return err
	}
	if tx.Status != models.StatusPending {
		err = pkgerrors.ErrInvalidTransactionStatus
		slog.Error("transactions must be created pending", "method", "Create", "status", tx.Status, "error", err)
		return err
	}
	if tx.Amount.IsZero() {
		err = pkgerrors.ErrInvalidAmount
		slog.Error("amount must be non-zero", "method", "Create", "error", err)
		return err
	}

	query := `INSERT INTO transactions (id, user_id, amount, type, status, description, counterparty, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = r.q.ExecContext(ctx, query, tx.ID, tx.UserID, tx.Amount, tx.Type, tx.Status, tx.Description, tx.Counterparty, tx.Date)
	if err != nil {
		slog.Error("failed to create transaction", "method", "Create", "user_id", tx.UserID, "type", tx.Type, "error", err)
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("transaction created", "method", "Create", "id", tx.ID, "user_id", tx.UserID, "type", tx.Type, "amount", tx.Amount)
	return nil
}

func (r *PostgresTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *models.Transaction, err error) {
	ctx, done := track(ctx, "GetTransactionByID", attribute.String("transaction_id", id.String()))
	defer done(&err)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		slog.Error("transaction not found", "method", "GetByID", "transaction_id", id)
		return nil, pkgerrors.ErrTransactionNotFound
	}
	if err != nil {
		slog.Error("failed to get transaction by id", "method", "GetByID", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to get transaction by id: %w", err)
	}
	return tx, nil
}

func (r *PostgresTransactionRepository) List(ctx context.Context, filter models.TransactionFilter) (_ []models.Transaction, err error) {
	ctx, done := track(ctx, "ListTransactions")
	defer done(&err)

	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE 1=1`
	args := []any{}
	argIdx := 1

	if filter.UserID != uuid.Nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIdx)
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.Type != "" {
		query += fmt.Sprintf(" AND type = $%d", argIdx)
		args = append(args, filter.Type)
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)
		args = append(args, filter.Limit)
		argIdx++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIdx)
		args = append(args, filter.Offset)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("failed to list transactions", "method", "List", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *tx)
	}
	return transactions, rows.Err()
}

func (r *PostgresTransactionRepository) Resolve(ctx context.Context, id uuid.UUID, status models.TransactionStatus, adminReason string) (_ *models.Transaction, err error) {
	ctx, done := track(ctx, "ResolveTransaction",
		attribute.String("transaction_id", id.String()),
		attribute.String("status", string(status)),
	)
	defer done(&err)

	if !status.Terminal() {
		return nil, pkgerrors.ErrInvalidTransactionStatus
	}

	// The status predicate makes the transition a compare-and-swap: of two concurrent
	// decisions only one sees the row as PENDING.
	query := `
		UPDATE transactions
		SET status = $1, admin_reason = $2
		WHERE id = $3 AND status = 'PENDING'
		RETURNING ` + transactionColumns
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, status, adminReason, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, r.explainMiss(ctx, id, "")
	}
	if err != nil {
		slog.Error("failed to resolve transaction", "method", "Resolve", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to resolve transaction: %w", err)
	}

	slog.Info("transaction resolved", "method", "Resolve", "transaction_id", id, "status", status)
	return tx, nil
}

func (r *PostgresTransactionRepository) SetDepositInstructions(ctx context.Context, id uuid.UUID, paymentLink, adminMessage string) (_ *models.Transaction, err error) {
	ctx, done := track(ctx, "SetDepositInstructions", attribute.String("transaction_id", id.String()))
	defer done(&err)

	query := `
		UPDATE transactions
		SET payment_link = $1, admin_message = $2
		WHERE id = $3 AND status = 'PENDING' AND type = 'DEPOSIT'
		RETURNING ` + transactionColumns
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, paymentLink, adminMessage, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, r.explainMiss(ctx, id, models.TypeDeposit)
	}
	if err != nil {
		slog.Error("failed to set deposit instructions", "method", "SetDepositInstructions", "transaction_id", id, "error", err)
		return nil, fmt.Errorf("failed to set deposit instructions: %w", err)
	}
	return tx, nil
}

// explainMiss tells apart the reasons a conditional update touched no rows.
func (r *PostgresTransactionRepository) explainMiss(ctx context.Context, id uuid.UUID, wantType models.TransactionType) error {
	var status models.TransactionStatus
	var txType models.TransactionType
	err := r.q.QueryRowContext(ctx, `SELECT status, type FROM transactions WHERE id = $1`, id).Scan(&status, &txType)
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return pkgerrors.ErrTransactionNotFound
	case err != nil:
		return fmt.Errorf("failed to get transaction status: %w", err)
	case wantType != "" && txType != wantType:
		return pkgerrors.ErrNotDepositTransaction
	case status != models.StatusPending:
		slog.Warn("transaction already decided", "transaction_id", id, "status", status)
		return pkgerrors.ErrTransactionAlreadyDecided
	}
	return fmt.Errorf("transaction %s was not updated", id)
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	err := row.Scan(
		&tx.ID,
		&tx.UserID,
		&tx.Amount,
		&tx.Type,
		&tx.Status,
		&tx.Description,
		&tx.Counterparty,
		&tx.AdminReason,
		&tx.PaymentLink,
		&tx.AdminMessage,
		&tx.Date,
	)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}
