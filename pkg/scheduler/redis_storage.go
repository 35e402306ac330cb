package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// terminalRetention keeps completed/failed events around for inspection
// before Redis expires them.
const terminalRetention = 7 * 24 * time.Hour

// RedisStorage implements Storage on Redis. Pending events live in a sorted
// set scored by due time, so collection is a single range query. Intended
// for a single consuming scheduler per event type; concurrent consumers
// would race on the claim step.
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage creates a Redis-backed storage with the given key prefix.
func NewRedisStorage(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "notifykit:sched"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

func (rs *RedisStorage) eventKey(id uuid.UUID) string {
	return fmt.Sprintf("%s:event:%s", rs.prefix, id)
}

func (rs *RedisStorage) pendingKey(eventType string) string {
	return fmt.Sprintf("%s:pending:%s", rs.prefix, eventType)
}

// CreateEvent implements Storage.
func (rs *RedisStorage) CreateEvent(ctx context.Context, event *Event) error {
	raw, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal scheduled event: %w", err)
	}

	pipe := rs.client.TxPipeline()
	pipe.Set(ctx, rs.eventKey(event.ID), raw, 0)
	pipe.ZAdd(ctx, rs.pendingKey(event.EventType), redis.Z{
		Score:  float64(event.DueAt.Unix()),
		Member: event.ID.String(),
	})
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store scheduled event: %w", err)
	}
	return nil
}

// CollectDue implements Storage. Due members are read and removed from the
// pending set in one transaction, so an in-flight batch is not collected
// again on the next tick.
func (rs *RedisStorage) CollectDue(ctx context.Context, eventType string, now time.Time) ([]Event, error) {
	pendingKey := rs.pendingKey(eventType)
	maxScore := strconv.FormatInt(now.Unix(), 10)

	ids, err := rs.client.ZRangeByScore(ctx, pendingKey, &redis.ZRangeBy{
		Min: "-inf",
		Max: maxScore,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to query due events: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	members := make([]any, len(ids))
	for i, id := range ids {
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("corrupt pending member %q: %w", id, err)
		}
		keys[i] = rs.eventKey(parsed)
		members[i] = id
	}

	raws, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load due events: %w", err)
	}

	if err := rs.client.ZRem(ctx, pendingKey, members...).Err(); err != nil {
		return nil, fmt.Errorf("failed to claim due events: %w", err)
	}

	events := make([]Event, 0, len(raws))
	for _, raw := range raws {
		s, ok := raw.(string)
		if !ok {
			// Event body expired or was deleted out of band; nothing to deliver.
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(s), &event); err != nil {
			return nil, fmt.Errorf("corrupt scheduled event: %w", err)
		}
		events = append(events, event)
	}
	return events, nil
}

// SetStatus implements Storage. Terminal events get a retention TTL instead
// of immediate deletion, for operational inspection.
func (rs *RedisStorage) SetStatus(ctx context.Context, ids []uuid.UUID, status Status) error {
	for _, id := range ids {
		key := rs.eventKey(id)

		raw, err := rs.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to load scheduled event: %w", err)
		}

		var event Event
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			return fmt.Errorf("corrupt scheduled event: %w", err)
		}
		event.Status = status

		updated, err := json.Marshal(&event)
		if err != nil {
			return fmt.Errorf("failed to marshal scheduled event: %w", err)
		}

		ttl := time.Duration(0)
		if status == StatusCompleted || status == StatusFailed {
			ttl = terminalRetention
		}
		if err := rs.client.Set(ctx, key, updated, ttl).Err(); err != nil {
			return fmt.Errorf("failed to update scheduled event: %w", err)
		}
	}
	return nil
}
