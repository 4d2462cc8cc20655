package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	"github.com/honeynil/BankBackOffice/internal/repository/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	mu   sync.Mutex
	data map[string]string
	dels []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[key]
	if !ok {
		return "", redis.ErrKeyNotFound
	}
	return v, nil
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return nil
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.data, k)
		f.dels = append(f.dels, k)
	}
	return nil
}

func (f *fakeRedis) Incr(_ context.Context, key string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (f *fakeRedis) Close() error { return nil }

// generation reports how many times the user's cached account view was invalidated.
func (f *fakeRedis) generation(id uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, _ := strconv.ParseInt(f.data[generationKey(id)], 10, 64)
	return n
}

func (f *fakeRedis) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[key]
	return ok
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.LedgerEvent
}

func (p *recordingPublisher) Publish(_ context.Context, e models.LedgerEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) types() []models.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []models.EventType
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// tickingClock advances one second per call so stored dates are strictly ordered.
type tickingClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

type fixture struct {
	store  *memory.Store
	cache  *fakeRedis
	events *recordingPublisher
	deps   Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:  memory.NewStore(),
		cache:  newFakeRedis(),
		events: &recordingPublisher{},
	}
	clock := &tickingClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.deps = Deps{Store: f.store, Cache: f.cache, Sessions: f.cache, Events: f.events, Clock: clock.Now}
	return f
}

func (f *fixture) user(t *testing.T, name, balance string) *models.User {
	t.Helper()
	u := &models.User{
		ID:           uuid.New(),
		Email:        name + "@bank.test",
		Name:         name,
		PasswordHash: "hash",
		Role:         models.RoleUser,
		Balance:      dec(balance),
		Status:       models.UserStatusActive,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, f.store.Users().Create(context.Background(), u))
	return u
}

func (f *fixture) balance(t *testing.T, id uuid.UUID) decimal.Decimal {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), id)
	require.NoError(t, err)
	return u.Balance
}

func (f *fixture) transactions(t *testing.T, id uuid.UUID) []models.Transaction {
	t.Helper()
	list, err := f.store.Transactions().List(context.Background(), models.TransactionFilter{UserID: id})
	require.NoError(t, err)
	return list
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "want %s, got %s", want, got)
}

var errStorage = errors.New("storage unavailable")

// failingStore makes every transaction insert fail, inside and outside units of work.
type failingStore struct {
	repository.Store
}

func (s failingStore) Transactions() repository.TransactionRepository {
	return failingTransactions{s.Store.Transactions()}
}

func (s failingStore) InTx(ctx context.Context, fn func(ctx context.Context, st repository.Store) error) error {
	return s.Store.InTx(ctx, func(ctx context.Context, st repository.Store) error {
		return fn(ctx, failingStore{st})
	})
}

type failingTransactions struct {
	repository.TransactionRepository
}

func (failingTransactions) Create(context.Context, *models.Transaction) error {
	return errStorage
}
