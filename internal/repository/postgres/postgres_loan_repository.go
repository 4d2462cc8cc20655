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

const loanColumns = `id, user_id, user_name, amount, purpose, status, admin_reason, request_date`

type PostgresLoanRepository struct {
	q querier
}

func NewPostgresLoanRepository(db *sql.DB) *PostgresLoanRepository {
	return &PostgresLoanRepository{q: db}
}

func (r *PostgresLoanRepository) Create(ctx context.Context, loan *models.Loan) (err error) {
	ctx, done := track(ctx, "CreateLoan")
	defer done(&err)

	if loan == nil {
		return pkgerrors.ErrNilLoan
	}
	if loan.Status != models.LoanPending {
		return fmt.Errorf("loans must be created pending: %w", pkgerrors.ErrInvalidInput)
	}

	query := `INSERT INTO loans (id, user_id, user_name, amount, purpose, status, request_date) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err = r.q.ExecContext(ctx, query, loan.ID, loan.UserID, loan.UserName, loan.Amount, loan.Purpose, loan.Status, loan.RequestDate)
	if err != nil {
		slog.Error("failed to create loan", "method", "Create", "user_id", loan.UserID, "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	slog.Info("loan requested", "method", "Create", "loan_id", loan.ID, "user_id", loan.UserID, "amount", loan.Amount)
	return nil
}

func (r *PostgresLoanRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *models.Loan, err error) {
	ctx, done := track(ctx, "GetLoanByID", attribute.String("loan_id", id.String()))
	defer done(&err)

	loan, err := scanLoan(r.q.QueryRowContext(ctx, `SELECT `+loanColumns+` FROM loans WHERE id = $1`, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrLoanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan by id: %w", err)
	}
	return loan, nil
}

func (r *PostgresLoanRepository) List(ctx context.Context, filter models.LoanFilter) (_ []models.Loan, err error) {
	ctx, done := track(ctx, "ListLoans")
	defer done(&err)

	query := `SELECT ` + loanColumns + ` FROM loans WHERE 1=1`
	args := []any{}
	if filter.UserID != uuid.Nil {
		args = append(args, filter.UserID)
		query += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += " ORDER BY request_date DESC"

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list loans: %w", err)
	}
	defer rows.Close()

	var loans []models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, *loan)
	}
	return loans, rows.Err()
}

func (r *PostgresLoanRepository) Resolve(ctx context.Context, id uuid.UUID, status models.LoanStatus, adminReason string) (_ *models.Loan, err error) {
	ctx, done := track(ctx, "ResolveLoan", attribute.String("loan_id", id.String()), attribute.String("status", string(status)))
	defer done(&err)

	if status != models.LoanApproved && status != models.LoanRejected {
		return nil, fmt.Errorf("invalid loan status %q: %w", status, pkgerrors.ErrInvalidInput)
	}

	query := `
		UPDATE loans
		SET status = $1, admin_reason = $2
		WHERE id = $3 AND status = 'PENDING'
		RETURNING ` + loanColumns
	loan, err := scanLoan(r.q.QueryRowContext(ctx, query, status, adminReason, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := r.q.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM loans WHERE id = $1)`, id).Scan(&exists); err != nil {
			return nil, fmt.Errorf("failed to check loan: %w", err)
		}
		if !exists {
			return nil, pkgerrors.ErrLoanNotFound
		}
		slog.Warn("loan already decided", "method", "Resolve", "loan_id", id)
		return nil, pkgerrors.ErrLoanAlreadyDecided
	}
	if err != nil {
		slog.Error("failed to resolve loan", "method", "Resolve", "loan_id", id, "error", err)
		return nil, fmt.Errorf("failed to resolve loan: %w", err)
	}

	slog.Info("loan resolved", "method", "Resolve", "loan_id", id, "status", status)
	return loan, nil
}

func scanLoan(row rowScanner) (*models.Loan, error) {
	var l models.Loan
	if err := row.Scan(&l.ID, &l.UserID, &l.UserName, &l.Amount, &l.Purpose, &l.Status, &l.AdminReason, &l.RequestDate); err != nil {
		return nil, err
	}
	return &l, nil
}
