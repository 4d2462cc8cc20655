package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
)

type userRepository struct{ s *Store }

func findUser(st *state, id uuid.UUID) int {
	for i := range st.users {
		if st.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *userRepository) Create(_ context.Context, user *models.User) error {
	if user == nil {
		return pkgerrors.ErrNilUser
	}
	if user.Email == "" || user.PasswordHash == "" {
		return fmt.Errorf("email and password_hash are required: %w", pkgerrors.ErrInvalidInput)
	}
	return r.s.update(func(st *state) error {
		for _, u := range st.users {
			if u.Email == user.Email || u.ID == user.ID {
				return pkgerrors.ErrUserAlreadyExists
			}
		}
		st.users = append(st.users, *user)
		return nil
	})
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	var out models.User
	err := r.s.view(func(st *state) error {
		i := findUser(st, id)
		if i < 0 {
			return pkgerrors.ErrUserNotFound
		}
		out = st.users[i]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	var out *models.User
	err := r.s.view(func(st *state) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return pkgerrors.ErrUserNotFound
	})
	return out, err
}

func (r *userRepository) List(_ context.Context) ([]models.User, error) {
	var out []models.User
	err := r.s.view(func(st *state) error {
		out = append(out, st.users...)
		return nil
	})
	return out, err
}

func (r *userRepository) ChangeBalance(_ context.Context, userID uuid.UUID, delta decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.s.update(func(st *state) error {
		i := findUser(st, userID)
		if i < 0 {
			return pkgerrors.ErrUserNotFound
		}
		st.users[i].Balance = st.users[i].Balance.Add(delta)
		balance = st.users[i].Balance
		return nil
	})
	return balance, err
}

func (r *userRepository) SetBalance(_ context.Context, userID uuid.UUID, balance decimal.Decimal) (decimal.Decimal, error) {
	var previous decimal.Decimal
	err := r.s.update(func(st *state) error {
		i := findUser(st, userID)
		if i < 0 {
			return pkgerrors.ErrUserNotFound
		}
		previous = st.users[i].Balance
		st.users[i].Balance = balance
		return nil
	})
	return previous, err
}

func (r *userRepository) SetStatus(_ context.Context, userID uuid.UUID, status models.UserStatus) error {
	if !status.Valid() {
		return pkgerrors.ErrInvalidUserStatus
	}
	return r.s.update(func(st *state) error {
		i := findUser(st, userID)
		if i < 0 {
			return pkgerrors.ErrUserNotFound
		}
		st.users[i].Status = status
		return nil
	})
}

type overrideRepository struct{ s *Store }

func (r *overrideRepository) Create(_ context.Context, o *models.BalanceOverride) error {
	return r.s.update(func(st *state) error {
		st.overrides = append(st.overrides, *o)
		return nil
	})
}

func (r *overrideRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]models.BalanceOverride, error) {
	var out []models.BalanceOverride
	err := r.s.view(func(st *state) error {
		for _, o := range st.overrides {
			if o.UserID == userID {
				out = append(out, o)
			}
		}
		return nil
	})
	return out, err
}
