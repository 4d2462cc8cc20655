package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/honeynil/BankBackOffice/internal/models"
	pkgerrors "github.com/honeynil/BankBackOffice/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifications_AlertsDismissedOneAtATime(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.deps)
	ctx := context.Background()
	u := f.user(t, "alice", "0")

	var sent []*models.Notification
	for _, title := range []string{"first", "second", "third"} {
		n, err := svc.Send(ctx, u.ID, title, "read me", models.NotificationAlert)
		require.NoError(t, err)
		assert.False(t, n.Read)
		sent = append(sent, n)
	}
	_, err := svc.Send(ctx, u.ID, "feed", "passive", models.NotificationInfo)
	require.NoError(t, err)

	alerts, err := svc.UnreadAlerts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "first", alerts[0].Title)

	require.NoError(t, svc.MarkRead(ctx, sent[0].ID))
	alerts, err = svc.UnreadAlerts(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, alerts, 2)
	assert.Equal(t, []string{"second", "third"}, []string{alerts[0].Title, alerts[1].Title})

	require.NoError(t, svc.MarkRead(ctx, sent[0].ID))
	alerts, err = svc.UnreadAlerts(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	all, err := svc.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "feed", all[0].Title)
}

func TestNotifications_MarkOwnRead(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.deps)
	ctx := context.Background()
	owner := f.user(t, "owner", "0")
	other := f.user(t, "other", "0")

	n, err := svc.Send(ctx, owner.ID, "hi", "", models.NotificationAlert)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.MarkOwnRead(ctx, other.ID, n.ID), pkgerrors.ErrNotificationNotFound)
	alerts, err := svc.UnreadAlerts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, alerts, 1)

	require.NoError(t, svc.MarkOwnRead(ctx, owner.ID, n.ID))
	alerts, err = svc.UnreadAlerts(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, alerts)

	assert.ErrorIs(t, svc.MarkRead(ctx, uuid.New()), pkgerrors.ErrNotificationNotFound)
}

func TestNotifications_Validation(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.deps)
	ctx := context.Background()
	u := f.user(t, "bob", "0")

	_, err := svc.Send(ctx, u.ID, "t", "m", "urgent")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidNotificationType)
	_, err = svc.Send(ctx, u.ID, "", " ", models.NotificationInfo)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	_, err = svc.Send(ctx, uuid.New(), "t", "m", models.NotificationInfo)
	assert.ErrorIs(t, err, pkgerrors.ErrUserNotFound)
	_, err = svc.Send(ctx, uuid.Nil, "t", "m", models.NotificationInfo)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidInput)
	assert.NotErrorIs(t, err, pkgerrors.ErrNotFound)
}

func TestNotifications_Broadcast(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.deps)
	ctx := context.Background()
	a := f.user(t, "a", "0")
	b := f.user(t, "b", "0")

	count, err := svc.Broadcast(ctx, "Maintenance", "Back at 6am", models.NotificationWarning)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, int64(1), f.cache.generation(a.ID))
	assert.Equal(t, int64(1), f.cache.generation(b.ID))

	seen := map[uuid.UUID]bool{}
	for _, id := range []uuid.UUID{a.ID, b.ID} {
		feed, err := svc.List(ctx, id)
		require.NoError(t, err)
		require.Len(t, feed, 1)
		assert.Equal(t, "Maintenance", feed[0].Title)
		assert.Equal(t, "Back at 6am", feed[0].Message)
		assert.Equal(t, id, feed[0].UserID)
		assert.False(t, seen[feed[0].ID])
		seen[feed[0].ID] = true
	}

	_, err = svc.Broadcast(ctx, "x", "y", "loud")
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidNotificationType)
}
