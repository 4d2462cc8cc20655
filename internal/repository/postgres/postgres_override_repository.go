package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
)

type PostgresOverrideRepository struct {
	q querier
}

func (r *PostgresOverrideRepository) Create(ctx context.Context, o *models.BalanceOverride) (err error) {
	ctx, done := track(ctx, "CreateBalanceOverride")
	defer done(&err)

	query := `INSERT INTO balance_overrides (id, user_id, previous_balance, new_balance, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err = r.q.ExecContext(ctx, query, o.ID, o.UserID, o.PreviousBalance, o.NewBalance, o.CreatedAt); err != nil {
		return fmt.Errorf("failed to record balance override: %w", err)
	}
	return nil
}

func (r *PostgresOverrideRepository) ListByUser(ctx context.Context, userID uuid.UUID) (_ []models.BalanceOverride, err error) {
	ctx, done := track(ctx, "ListBalanceOverrides")
	defer done(&err)

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, previous_balance, new_balance, created_at FROM balance_overrides WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list balance overrides: %w", err)
	}
	defer rows.Close()

	var out []models.BalanceOverride
	for rows.Next() {
		var o models.BalanceOverride
		if err := rows.Scan(&o.ID, &o.UserID, &o.PreviousBalance, &o.NewBalance, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan balance override: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
