package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/scheduler"
)

func newStoredEvent(t *testing.T, ms *scheduler.MemoryStorage, userID string, due time.Time) scheduler.Event {
	t.Helper()

	event := scheduler.Event{
		ID:        uuid.New(),
		EventType: "email.bundle",
		UserID:    userID,
		Period:    "daily",
		Status:    scheduler.StatusPending,
		CreatedAt: time.Now(),
		DueAt:     due,
	}
	require.NoError(t, ms.CreateEvent(context.Background(), &event))
	return event
}

func TestMemoryStorage_CreateEvent(t *testing.T) {
	ms := scheduler.NewMemoryStorage()

	event := newStoredEvent(t, ms, "u1", time.Now())

	t.Run("duplicate id rejected", func(t *testing.T) {
		dup := event
		err := ms.CreateEvent(context.Background(), &dup)
		assert.Error(t, err)
	})

	t.Run("nil event rejected", func(t *testing.T) {
		assert.Error(t, ms.CreateEvent(context.Background(), nil))
	})

	t.Run("stored value is a copy", func(t *testing.T) {
		event.UserID = "mutated"
		stored, ok := ms.Get(event.ID)
		require.True(t, ok)
		assert.Equal(t, "u1", stored.UserID)
	})
}

func TestMemoryStorage_CollectDue(t *testing.T) {
	ms := scheduler.NewMemoryStorage()
	now := time.Now()

	past1 := newStoredEvent(t, ms, "u1", now.Add(-time.Hour))
	past2 := newStoredEvent(t, ms, "u2", now.Add(-time.Minute))
	future := newStoredEvent(t, ms, "u3", now.Add(time.Hour))

	due, err := ms.CollectDue(context.Background(), "email.bundle", now)
	require.NoError(t, err)
	require.Len(t, due, 2)

	ids := []uuid.UUID{due[0].ID, due[1].ID}
	assert.Contains(t, ids, past1.ID)
	assert.Contains(t, ids, past2.ID)
	assert.NotContains(t, ids, future.ID)

	t.Run("claimed events are gone from pending", func(t *testing.T) {
		again, err := ms.CollectDue(context.Background(), "email.bundle", now)
		require.NoError(t, err)
		assert.Empty(t, again)
	})

	t.Run("other event types unaffected", func(t *testing.T) {
		due, err := ms.CollectDue(context.Background(), "other.type", now)
		require.NoError(t, err)
		assert.Empty(t, due)
	})
}

func TestMemoryStorage_SetStatus(t *testing.T) {
	ms := scheduler.NewMemoryStorage()
	e1 := newStoredEvent(t, ms, "u1", time.Now().Add(-time.Hour))
	e2 := newStoredEvent(t, ms, "u1", time.Now().Add(-time.Hour))

	require.NoError(t, ms.SetStatus(context.Background(), []uuid.UUID{e1.ID, e2.ID}, scheduler.StatusFailed))

	for _, id := range []uuid.UUID{e1.ID, e2.ID} {
		stored, ok := ms.Get(id)
		require.True(t, ok)
		assert.Equal(t, scheduler.StatusFailed, stored.Status)
	}

	t.Run("terminal events leave pending index", func(t *testing.T) {
		due, err := ms.CollectDue(context.Background(), "email.bundle", time.Now())
		require.NoError(t, err)
		assert.Empty(t, due)
	})

	t.Run("unknown id", func(t *testing.T) {
		err := ms.SetStatus(context.Background(), []uuid.UUID{uuid.New()}, scheduler.StatusCompleted)
		assert.ErrorIs(t, err, scheduler.ErrEventNotFound)
	})
}
