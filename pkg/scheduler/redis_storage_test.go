package scheduler_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/scheduler"
)

// redisStorageClient connects to the Redis named by TEST_REDIS_URL, skipping
// the test when no instance is available.
func redisStorageClient(t *testing.T) *redis.Client {
	t.Helper()

	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set, skipping Redis storage tests")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)

	client := redis.NewClient(opt)
	require.NoError(t, client.Ping(context.Background()).Err())
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisStorage_RoundTrip(t *testing.T) {
	client := redisStorageClient(t)
	rs := scheduler.NewRedisStorage(client, "test:sched:"+uuid.NewString())
	ctx := context.Background()
	now := time.Now()

	due := scheduler.Event{
		ID:        uuid.New(),
		EventType: "email.bundle",
		UserID:    "u1",
		Period:    "daily",
		Status:    scheduler.StatusPending,
		Data:      map[string]any{"subject": "New post"},
		CreatedAt: now.Add(-25 * time.Hour),
		DueAt:     now.Add(-time.Hour),
	}
	notDue := scheduler.Event{
		ID:        uuid.New(),
		EventType: "email.bundle",
		UserID:    "u2",
		Period:    "daily",
		Status:    scheduler.StatusPending,
		CreatedAt: now,
		DueAt:     now.Add(23 * time.Hour),
	}
	require.NoError(t, rs.CreateEvent(ctx, &due))
	require.NoError(t, rs.CreateEvent(ctx, &notDue))

	collected, err := rs.CollectDue(ctx, "email.bundle", now)
	require.NoError(t, err)
	require.Len(t, collected, 1)
	assert.Equal(t, due.ID, collected[0].ID)
	assert.Equal(t, "New post", collected[0].Data["subject"])

	// Claimed events stay claimed across cycles.
	again, err := rs.CollectDue(ctx, "email.bundle", now)
	require.NoError(t, err)
	assert.Empty(t, again)

	require.NoError(t, rs.SetStatus(ctx, []uuid.UUID{due.ID}, scheduler.StatusCompleted))

	t.Run("unknown id", func(t *testing.T) {
		err := rs.SetStatus(ctx, []uuid.UUID{uuid.New()}, scheduler.StatusFailed)
		assert.ErrorIs(t, err, scheduler.ErrEventNotFound)
	})
}
