package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/observability"
	"github.com/honeynil/BankBackOffice/internal/infrastructure/redis"
	"github.com/honeynil/BankBackOffice/internal/models"
	"github.com/honeynil/BankBackOffice/internal/repository"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

// Deps are shared by every service. Cache, Sessions and Events are optional; Clock and IDs default to
// time.Now and uuid.New. Sessions is the store the auth middleware checks bearer tokens against.
type Deps struct {
	Store    repository.Store
	Cache    redis.RedisClient
	Sessions redis.RedisClient
	Events   EventPublisher
	Clock    func() time.Time
	IDs      func() uuid.UUID
	CacheTTL time.Duration
}

type core struct {
	store    repository.Store
	cache    redis.RedisClient
	sessions redis.RedisClient
	events   EventPublisher
	now      func() time.Time
	newID    func() uuid.UUID
	cacheTTL time.Duration
}

func newCore(d Deps) core {
	c := core{
		store:    d.Store,
		cache:    d.Cache,
		sessions: d.Sessions,
		events:   d.Events,
		now:      d.Clock,
		newID:    d.IDs,
		cacheTTL: d.CacheTTL,
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.New
	}
	if c.events == nil {
		c.events = NopPublisher{}
	}
	if c.cacheTTL <= 0 {
		c.cacheTTL = 30 * time.Second
	}
	return c
}

// Cached account views are keyed by a per-user generation. A view filled from data read before a
// write lands under the old generation, which no reader asks for again.
func generationKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:%s:account:gen", userID)
}

func accountKey(userID uuid.UUID, generation int64) string {
	return fmt.Sprintf("user:%s:account:%d", userID, generation)
}

func (c *core) generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	raw, err := c.cache.Get(ctx, generationKey(userID))
	if errors.Is(err, redis.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(raw, 10, 64)
}

// invalidate retires cached account views by bumping their generation.
func (c *core) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	if c.cache == nil {
		return
	}
	for _, id := range userIDs {
		if _, err := c.cache.Incr(ctx, generationKey(id)); err != nil {
			observability.WithContext(ctx, "user_id", id).Error("failed to invalidate account cache", "error", err)
		}
	}
}

func (c *core) event(eventType models.EventType, userID, entityID uuid.UUID, amount, balance decimal.Decimal, status string) models.LedgerEvent {
	return models.LedgerEvent{
		ID:         c.newID(),
		Type:       eventType,
		UserID:     userID,
		EntityID:   entityID,
		Amount:     amount,
		Balance:    balance,
		Status:     status,
		OccurredAt: c.now().UTC(),
	}
}

// committed runs the post-commit side effects of a ledger change. None of them can fail the operation.
func (c *core) committed(ctx context.Context, entity string, event models.LedgerEvent) {
	c.invalidate(ctx, event.UserID)
	if entity != "" && event.Status != "" {
		observability.LedgerTransitions.WithLabelValues(entity, event.Status).Inc()
	}
	c.events.Publish(ctx, event)
}

// notify inserts a notification outside any unit of work and swallows failures.
func (c *core) notify(ctx context.Context, userID uuid.UUID, title, message string, nType models.NotificationType) {
	n := &models.Notification{
		ID:      c.newID(),
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    nType,
		Date:    c.now().UTC(),
	}
	if err := c.store.Notifications().Create(ctx, n); err != nil {
		observability.WithContext(ctx, "user_id", userID).Error("failed to dispatch notification", "type", nType, "error", err)
		return
	}
	c.invalidate(ctx, userID)
}

func validAmount(d decimal.Decimal) bool {
	return !d.IsZero() && d.Equal(d.Round(2))
}

func requirePositive(amount decimal.Decimal) error {
	if !amount.IsPositive() || !validAmount(amount) {
		return pkgerrors.ErrInvalidAmount
	}
	return nil
}

func startSpan(ctx context.Context, name string) (context.Context, func(errp *error)) {
	ctx, span := otel.Tracer("ledger-service").Start(ctx, name)
	return ctx, func(errp *error) {
		if errp != nil && *errp != nil {
			span.RecordError(*errp)
			span.SetStatus(codes.Error, (*errp).Error())
		}
		span.End()
	}
}
