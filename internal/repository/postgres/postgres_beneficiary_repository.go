package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type PostgresBeneficiaryRepository struct {
	q querier
}

func (r *PostgresBeneficiaryRepository) Create(ctx context.Context, b *models.Beneficiary) (err error) {
	ctx, done := track(ctx, "CreateBeneficiary")
	defer done(&err)

	if b == nil || b.Name == "" || b.IBAN == "" {
		return fmt.Errorf("beneficiary name and iban are required: %w", pkgerrors.ErrInvalidInput)
	}

	query := `INSERT INTO beneficiaries (id, user_id, name, iban, institution, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	if _, err = r.q.ExecContext(ctx, query, b.ID, b.UserID, b.Name, b.IBAN, b.Institution, b.CreatedAt); err != nil {
		return fmt.Errorf("failed to create beneficiary: %w", err)
	}
	return nil
}

func (r *PostgresBeneficiaryRepository) ListByUser(ctx context.Context, userID uuid.UUID) (_ []models.Beneficiary, err error) {
	ctx, done := track(ctx, "ListBeneficiaries")
	defer done(&err)

	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, name, iban, institution, created_at FROM beneficiaries WHERE user_id = $1 ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list beneficiaries: %w", err)
	}
	defer rows.Close()

	var out []models.Beneficiary
	for rows.Next() {
		var b models.Beneficiary
		if err := rows.Scan(&b.ID, &b.UserID, &b.Name, &b.IBAN, &b.Institution, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan beneficiary: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
