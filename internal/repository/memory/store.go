// Package memory is an in-process Ledger Store. A single writer lock serializes units of work;
// each unit mutates a private copy of the data that replaces the shared copy only on success.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
)

type state struct {
	users         []models.User
	transactions  []models.Transaction
	loans         []models.Loan
	notifications []models.Notification
	beneficiaries []models.Beneficiary
	overrides     []models.BalanceOverride
}

func (s *state) clone() *state {
	return &state{
		users:         append([]models.User(nil), s.users...),
		transactions:  append([]models.Transaction(nil), s.transactions...),
		loans:         append([]models.Loan(nil), s.loans...),
		notifications: append([]models.Notification(nil), s.notifications...),
		beneficiaries: append([]models.Beneficiary(nil), s.beneficiaries...),
		overrides:     append([]models.BalanceOverride(nil), s.overrides...),
	}
}

type database struct {
	mu    sync.RWMutex
	state *state
}

type Store struct {
	db   *database
	work *state
}

func NewStore() *Store {
	return &Store{db: &database{state: &state{}}}
}

func (s *Store) Users() repository.UserRepository                 { return &userRepository{s} }
func (s *Store) Transactions() repository.TransactionRepository   { return &transactionRepository{s} }
func (s *Store) Loans() repository.LoanRepository                 { return &loanRepository{s} }
func (s *Store) Notifications() repository.NotificationRepository { return &notificationRepository{s} }
func (s *Store) Beneficiaries() repository.BeneficiaryRepository  { return &beneficiaryRepository{s} }
func (s *Store) Overrides() repository.OverrideRepository         { return &overrideRepository{s} }

func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	if s.work != nil {
		return fn(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	work := s.db.state.clone()
	if err := fn(ctx, &Store{db: s.db, work: work}); err != nil {
		return err
	}
	s.db.state = work
	return nil
}

func (s *Store) InReadTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	if s.work != nil {
		return fn(ctx, s)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.db.mu.RLock()
	snapshot := s.db.state.clone()
	s.db.mu.RUnlock()
	return fn(ctx, &Store{db: s.db, work: snapshot})
}

// view runs a read against the unit of work, or against a read-locked snapshot outside one.
func (s *Store) view(fn func(st *state) error) error {
	if s.work != nil {
		return fn(s.work)
	}
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return fn(s.db.state)
}

// update runs a single mutation. Outside a unit of work it is its own unit.
func (s *Store) update(fn func(st *state) error) error {
	if s.work != nil {
		return fn(s.work)
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	work := s.db.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	s.db.state = work
	return nil
}

// newestFirst returns items in reverse insertion order, stably sorted by descending date.
func newestFirst[T any](items []T, date func(T) int64) []T {
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		out = append(out, items[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return date(out[i]) > date(out[j]) })
	return out
}
