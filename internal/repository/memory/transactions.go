package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
)

type transactionRepository struct{ s *Store }

func findTransaction(st *state, id uuid.UUID) int {
	for i := range st.transactions {
		if st.transactions[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *transactionRepository) Create(_ context.Context, tx *models.Transaction) error {
	switch {
	case tx == nil:
		return pkgerrors.ErrNilTransaction
	case !tx.Type.Valid():
		return pkgerrors.ErrInvalidTransactionType
	case tx.Status != models.StatusPending:
		return pkgerrors.ErrInvalidTransactionStatus
	case tx.Amount.IsZero():
		return pkgerrors.ErrInvalidAmount
	}
	return r.s.update(func(st *state) error {
		if findUser(st, tx.UserID) < 0 {
			return fmt.Errorf("transaction owner: %w", pkgerrors.ErrUserNotFound)
		}
		st.transactions = append(st.transactions, *tx)
		return nil
	})
}

func (r *transactionRepository) GetByID(_ context.Context, id uuid.UUID) (*models.Transaction, error) {
	var out models.Transaction
	err := r.s.view(func(st *state) error {
		i := findTransaction(st, id)
		if i < 0 {
			return pkgerrors.ErrTransactionNotFound
		}
		out = st.transactions[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepository) List(_ context.Context, filter models.TransactionFilter) ([]models.Transaction, error) {
	var matched []models.Transaction
	err := r.s.view(func(st *state) error {
		for _, tx := range st.transactions {
			if filter.UserID != uuid.Nil && tx.UserID != filter.UserID {
				continue
			}
			if filter.Status != "" && tx.Status != filter.Status {
				continue
			}
			if filter.Type != "" && tx.Type != filter.Type {
				continue
			}
			matched = append(matched, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := newestFirst(matched, func(tx models.Transaction) int64 { return tx.Date.UnixNano() })
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *transactionRepository) Resolve(_ context.Context, id uuid.UUID, status models.TransactionStatus, adminReason string) (*models.Transaction, error) {
	if !status.Terminal() {
		return nil, pkgerrors.ErrInvalidTransactionStatus
	}
	var out models.Transaction
	err := r.s.update(func(st *state) error {
		i := findTransaction(st, id)
		if i < 0 {
			return pkgerrors.ErrTransactionNotFound
		}
		if st.transactions[i].Status != models.StatusPending {
			return pkgerrors.ErrTransactionAlreadyDecided
		}
		st.transactions[i].Status = status
		st.transactions[i].AdminReason = adminReason
		out = st.transactions[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *transactionRepository) SetDepositInstructions(_ context.Context, id uuid.UUID, paymentLink, adminMessage string) (*models.Transaction, error) {
	var out models.Transaction
	err := r.s.update(func(st *state) error {
		i := findTransaction(st, id)
		if i < 0 {
			return pkgerrors.ErrTransactionNotFound
		}
		tx := &st.transactions[i]
		if tx.Type != models.TypeDeposit {
			return pkgerrors.ErrNotDepositTransaction
		}
		if tx.Status != models.StatusPending {
			return pkgerrors.ErrTransactionAlreadyDecided
		}
		tx.PaymentLink = paymentLink
		tx.AdminMessage = adminMessage
		out = *tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
