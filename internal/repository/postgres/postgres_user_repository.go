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
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const userColumns = `id, email, name, password_hash, role, balance, status, iban, card_number, cvv, institution, dob, address, created_at`

type PostgresUserRepository struct {
	q querier
}

func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{q: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) (err error) {
	ctx, done := track(ctx, "CreateUser")
	defer done(&err)

	if user == nil {
		return pkgerrors.ErrNilUser
	}
	if user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("email and password_hash are required: %w", pkgerrors.ErrInvalidInput)
	}

	query := `
	INSERT INTO users (` + userColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	p := user.Profile
	_, err = r.q.ExecContext(ctx, query,
		user.ID, user.Email, user.Name, user.PasswordHash, user.Role, user.Balance, user.Status,
		p.IBAN, p.CardNumber, p.CVV, p.Institution, p.DateOfBirth, p.Address, user.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == "23505" {
			slog.Warn("user already exists", "method", "Create", "email", user.Email)
			return pkgerrors.ErrUserAlreadyExists
		}
		slog.Error("failed to create user", "method", "Create", "email", user.Email, "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user created", "method", "Create", "user_id", user.ID, "role", user.Role)
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (_ *models.User, err error) {
	ctx, done := track(ctx, "GetUserByID", attribute.String("user_id", id.String()))
	defer done(&err)

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.q.QueryRowContext(ctx, query, id))
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to get user by id", "method", "GetByID", "user_id", id, "error", err)
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (_ *models.User, err error) {
	ctx, done := track(ctx, "GetUserByEmail")
	defer done(&err)

	if email == "" {
		return nil, fmt.Errorf("email cannot be empty: %w", pkgerrors.ErrInvalidInput)
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.q.QueryRowContext(ctx, query, email))
	switch {
	case stderrors.Is(err, sql.ErrNoRows):
		return nil, pkgerrors.ErrUserNotFound
	case err != nil:
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) List(ctx context.Context) (_ []models.User, err error) {
	ctx, done := track(ctx, "ListUsers")
	defer done(&err)

	rows, err := r.q.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

func (r *PostgresUserRepository) ChangeBalance(ctx context.Context, userID uuid.UUID, delta decimal.Decimal) (newBalance decimal.Decimal, err error) {
	ctx, done := track(ctx, "ChangeBalance", attribute.String("user_id", userID.String()))
	defer done(&err)

	query := `
		UPDATE users
		SET balance = balance + $1
		WHERE id = $2
		RETURNING balance
		`
	err = r.q.QueryRowContext(ctx, query, delta, userID).Scan(&newBalance)
	if stderrors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to change balance", "method", "ChangeBalance", "user_id", userID, "delta", delta, "error", err)
		return decimal.Zero, fmt.Errorf("failed to change balance: %w", err)
	}

	slog.Info("balance changed", "method", "ChangeBalance", "user_id", userID, "delta", delta, "balance", newBalance)
	return newBalance, nil
}

func (r *PostgresUserRepository) SetBalance(ctx context.Context, userID uuid.UUID, balance decimal.Decimal) (previous decimal.Decimal, err error) {
	ctx, done := track(ctx, "SetBalance", attribute.String("user_id", userID.String()))
	defer done(&err)

	query := `
		UPDATE users u
		SET balance = $1
		FROM (SELECT id, balance FROM users WHERE id = $2 FOR UPDATE) old
		WHERE u.id = old.id
		RETURNING old.balance
		`
	err = r.q.QueryRowContext(ctx, query, balance, userID).Scan(&previous)
	if stderrors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, pkgerrors.ErrUserNotFound
	}
	if err != nil {
		slog.Error("failed to set balance", "method", "SetBalance", "user_id", userID, "error", err)
		return decimal.Zero, fmt.Errorf("failed to set balance: %w", err)
	}

	slog.Info("balance overwritten", "method", "SetBalance", "user_id", userID, "previous", previous, "balance", balance)
	return previous, nil
}

func (r *PostgresUserRepository) SetStatus(ctx context.Context, userID uuid.UUID, status models.UserStatus) (err error) {
	ctx, done := track(ctx, "SetUserStatus", attribute.String("user_id", userID.String()))
	defer done(&err)

	if !status.Valid() {
		return pkgerrors.ErrInvalidUserStatus
	}

	result, err := r.q.ExecContext(ctx, `UPDATE users SET status = $1 WHERE id = $2`, status, userID)
	if err != nil {
		return fmt.Errorf("failed to set status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.ErrUserNotFound
	}

	slog.Info("user status changed", "method", "SetStatus", "user_id", userID, "status", status)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Name,
		&u.PasswordHash,
		&u.Role,
		&u.Balance,
		&u.Status,
		&u.Profile.IBAN,
		&u.Profile.CardNumber,
		&u.Profile.CVV,
		&u.Profile.Institution,
		&u.Profile.DateOfBirth,
		&u.Profile.Address,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
