package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/honeynil/BankBackOffice/internal/infrastructure/observability"
	"github.com/honeynil/BankBackOffice/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type PostgresStore struct {
	db   *sql.DB
	q    querier
	inTx bool
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, q: db}
}

func (s *PostgresStore) Users() repository.UserRepository {
	return &PostgresUserRepository{q: s.q}
}

func (s *PostgresStore) Transactions() repository.TransactionRepository {
	return &PostgresTransactionRepository{q: s.q}
}

func (s *PostgresStore) Loans() repository.LoanRepository {
	return &PostgresLoanRepository{q: s.q}
}

func (s *PostgresStore) Notifications() repository.NotificationRepository {
	return &PostgresNotificationRepository{q: s.q}
}

func (s *PostgresStore) Beneficiaries() repository.BeneficiaryRepository {
	return &PostgresBeneficiaryRepository{q: s.q}
}

func (s *PostgresStore) Overrides() repository.OverrideRepository {
	return &PostgresOverrideRepository{q: s.q}
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	return s.run(ctx, "InTx", nil, fn)
}

// InReadTx uses a read-only REPEATABLE READ transaction so every query sees the same snapshot.
func (s *PostgresStore) InReadTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	return s.run(ctx, "InReadTx", &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (s *PostgresStore) run(ctx context.Context, method string, opts *sql.TxOptions, fn func(ctx context.Context, st repository.Store) error) (err error) {
	if s.inTx {
		return fn(ctx, s)
	}

	ctx, done := track(ctx, method)
	defer done(&err)

	dbTx, err := s.db.BeginTx(ctx, opts)
	if err != nil {
		slog.Error("failed to begin transaction", "method", method, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = dbTx.Rollback()
			panic(p)
		}
	}()

	if err = fn(ctx, &PostgresStore{db: s.db, q: dbTx, inTx: true}); err != nil {
		if rbErr := dbTx.Rollback(); rbErr != nil {
			observability.WithContext(ctx, "method", method).Error("rollback failed", "error", rbErr)
			return fmt.Errorf("rollback failed: %v; original error: %w", rbErr, err)
		}
		return err
	}

	if err = dbTx.Commit(); err != nil {
		observability.WithContext(ctx, "method", method).Error("failed to commit transaction", "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// track opens a span and returns a closer that records metrics and the span status for *errp.
func track(ctx context.Context, method string, attrs ...attribute.KeyValue) (context.Context, func(errp *error)) {
	ctx, span := otel.Tracer("ledger-repository").Start(ctx, method)
	span.SetAttributes(attrs...)
	start := time.Now()

	return ctx, func(errp *error) {
		status := "success"
		if errp != nil && *errp != nil {
			status = "error"
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		observability.RepositoryCalls.WithLabelValues(method, status).Inc()
		observability.RepositoryDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
		span.End()
	}
}
