package scheduler_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/scheduler"
)

var testPeriods = map[string]time.Duration{
	"immediately": 0,
	"daily":       24 * time.Hour,
	"weekly":      7 * 24 * time.Hour,
}

func noopOnDue(context.Context, []scheduler.Event, scheduler.SetStatusFunc) {}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	storage := scheduler.NewMemoryStorage()

	t.Run("nil storage", func(t *testing.T) {
		_, err := scheduler.New("email.bundle", testPeriods, noopOnDue, nil)
		assert.ErrorIs(t, err, scheduler.ErrStorageNil)
	})

	t.Run("nil callback", func(t *testing.T) {
		_, err := scheduler.New("email.bundle", testPeriods, nil, storage)
		assert.ErrorIs(t, err, scheduler.ErrOnDueNil)
	})

	t.Run("empty period table", func(t *testing.T) {
		_, err := scheduler.New("email.bundle", nil, noopOnDue, storage)
		assert.ErrorIs(t, err, scheduler.ErrNoPeriods)
	})

	t.Run("valid", func(t *testing.T) {
		s, err := scheduler.New("email.bundle", testPeriods, noopOnDue, storage)
		require.NoError(t, err)
		assert.True(t, s.HasPeriod("daily"))
		assert.False(t, s.HasPeriod("fortnightly"))
	})
}

func TestAddEvent(t *testing.T) {
	t.Run("unknown period rejected", func(t *testing.T) {
		s, err := scheduler.New("email.bundle", testPeriods, noopOnDue, scheduler.NewMemoryStorage())
		require.NoError(t, err)

		err = s.AddEvent(context.Background(), scheduler.Event{
			UserID: "u1",
			Period: "fortnightly",
		})
		assert.ErrorIs(t, err, scheduler.ErrUnknownPeriod)
	})

	t.Run("event persisted pending with due time", func(t *testing.T) {
		storage := scheduler.NewMemoryStorage()
		s, err := scheduler.New("email.bundle", testPeriods, noopOnDue, storage)
		require.NoError(t, err)

		err = s.AddEvent(context.Background(), scheduler.Event{
			UserID:      "u1",
			Reference:   scheduler.ReferenceProject,
			ReferenceID: "p1",
			Period:      "daily",
			Data:        map[string]any{"subject": "New post"},
		})
		require.NoError(t, err)

		// Not due yet: a daily event becomes due in 24h.
		due, err := storage.CollectDue(context.Background(), "email.bundle", time.Now())
		require.NoError(t, err)
		assert.Empty(t, due)

		due, err = storage.CollectDue(context.Background(), "email.bundle", time.Now().Add(25*time.Hour))
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, scheduler.StatusPending, due[0].Status)
		assert.Equal(t, "u1", due[0].UserID)
		assert.Equal(t, "email.bundle", due[0].EventType)
		assert.NotEqual(t, due[0].ID.String(), "00000000-0000-0000-0000-000000000000")
	})
}

func TestRunOnce(t *testing.T) {
	t.Run("invokes callback with due batch", func(t *testing.T) {
		storage := scheduler.NewMemoryStorage()

		var got []scheduler.Event
		onDue := func(ctx context.Context, events []scheduler.Event, setStatus scheduler.SetStatusFunc) {
			got = events
			require.NoError(t, setStatus(ctx, events, scheduler.StatusCompleted))
		}

		s, err := scheduler.New("email.bundle", testPeriods, onDue, storage)
		require.NoError(t, err)

		// "immediately" period makes events due on the next cycle.
		require.NoError(t, s.AddEvent(context.Background(), scheduler.Event{UserID: "u1", Period: "immediately"}))
		require.NoError(t, s.AddEvent(context.Background(), scheduler.Event{UserID: "u2", Period: "immediately"}))

		s.RunOnce(context.Background())
		require.Len(t, got, 2)

		for _, e := range got {
			stored, ok := storage.Get(e.ID)
			require.True(t, ok)
			assert.Equal(t, scheduler.StatusCompleted, stored.Status)
		}
	})

	t.Run("empty cycle does not invoke callback", func(t *testing.T) {
		called := false
		onDue := func(context.Context, []scheduler.Event, scheduler.SetStatusFunc) { called = true }

		s, err := scheduler.New("email.bundle", testPeriods, onDue, scheduler.NewMemoryStorage())
		require.NoError(t, err)

		s.RunOnce(context.Background())
		assert.False(t, called)
	})

	t.Run("claimed events are not collected twice", func(t *testing.T) {
		storage := scheduler.NewMemoryStorage()

		calls := 0
		onDue := func(context.Context, []scheduler.Event, scheduler.SetStatusFunc) {
			// Status intentionally left unset, simulating a batch still in flight.
			calls++
		}

		s, err := scheduler.New("email.bundle", testPeriods, onDue, storage)
		require.NoError(t, err)

		require.NoError(t, s.AddEvent(context.Background(), scheduler.Event{UserID: "u1", Period: "immediately"}))

		s.RunOnce(context.Background())
		s.RunOnce(context.Background())
		assert.Equal(t, 1, calls)
	})
}

func TestStart_StopsOnContextCancel(t *testing.T) {
	s, err := scheduler.New("email.bundle", testPeriods, noopOnDue, scheduler.NewMemoryStorage(),
		scheduler.WithCheckInterval(10*time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = s.Start(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
