package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type loanRepository struct{ s *Store }

func (r *loanRepository) Create(_ context.Context, loan *models.Loan) error {
	if loan == nil {
		return pkgerrors.ErrNilLoan
	}
	if loan.Status != models.LoanPending {
		return fmt.Errorf("loans must be created pending: %w", pkgerrors.ErrInvalidInput)
	}
	return r.s.update(func(st *state) error {
		if findUser(st, loan.UserID) < 0 {
			return fmt.Errorf("loan owner: %w", pkgerrors.ErrUserNotFound)
		}
		st.loans = append(st.loans, *loan)
		return nil
	})
}

func (r *loanRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Loan, error) {
	var out *models.Loan
	err := r.s.view(func(st *state) error {
		for _, l := range st.loans {
			if l.ID == id {
				l := l
				out = &l
				return nil
			}
		}
		return pkgerrors.ErrLoanNotFound
	})
	return out, err
}

func (r *loanRepository) List(_ context.Context, filter models.LoanFilter) ([]models.Loan, error) {
	var matched []models.Loan
	err := r.s.view(func(st *state) error {
		for _, l := range st.loans {
			if filter.UserID != uuid.Nil && l.UserID != filter.UserID {
				continue
			}
			if filter.Status != "" && l.Status != filter.Status {
				continue
			}
			matched = append(matched, l)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return newestFirst(matched, func(l models.Loan) int64 { return l.RequestDate.UnixNano() }), nil
}

func (r *loanRepository) Resolve(_ context.Context, id uuid.UUID, status models.LoanStatus, adminReason string) (*models.Loan, error) {
	if status != models.LoanApproved && status != models.LoanRejected {
		return nil, fmt.Errorf("invalid loan status %q: %w", status, pkgerrors.ErrInvalidInput)
	}
	var out models.Loan
	err := r.s.update(func(st *state) error {
		for i := range st.loans {
			if st.loans[i].ID != id {
				continue
			}
			if st.loans[i].Status != models.LoanPending {
				return pkgerrors.ErrLoanAlreadyDecided
			}
			st.loans[i].Status = status
			st.loans[i].AdminReason = adminReason
			out = st.loans[i]
			return nil
		}
		return pkgerrors.ErrLoanNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
