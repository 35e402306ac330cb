package scheduler

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStorage implements Storage for testing and local development.
type MemoryStorage struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*Event

	// Pending ids per event type, kept separate so CollectDue never scans
	// terminal events.
	pending map[string][]uuid.UUID
}

// NewMemoryStorage creates a new in-memory storage implementation.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		events:  make(map[uuid.UUID]*Event),
		pending: make(map[string][]uuid.UUID),
	}
}

// CreateEvent implements Storage.
func (ms *MemoryStorage) CreateEvent(ctx context.Context, event *Event) error {
	if event == nil {
		return errors.New("event cannot be nil")
	}

	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.events[event.ID]; exists {
		return fmt.Errorf("event with ID %s already exists", event.ID)
	}

	// Clone to prevent external modifications.
	eventCopy := *event
	ms.events[event.ID] = &eventCopy
	ms.pending[event.EventType] = append(ms.pending[event.EventType], event.ID)

	return nil
}

// CollectDue implements Storage. Claimed events leave the pending index, so
// a batch in flight is never collected twice.
func (ms *MemoryStorage) CollectDue(ctx context.Context, eventType string, now time.Time) ([]Event, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	var due []Event
	remaining := ms.pending[eventType][:0]
	for _, id := range ms.pending[eventType] {
		event := ms.events[id]
		if event.DueAt.After(now) {
			remaining = append(remaining, id)
			continue
		}
		due = append(due, *event)
	}
	ms.pending[eventType] = remaining

	// Oldest first, preserving stream order within a batch.
	sort.Slice(due, func(i, j int) bool {
		return due[i].CreatedAt.Before(due[j].CreatedAt)
	})

	return due, nil
}

// SetStatus implements Storage.
func (ms *MemoryStorage) SetStatus(ctx context.Context, ids []uuid.UUID, status Status) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	for _, id := range ids {
		event, exists := ms.events[id]
		if !exists {
			return fmt.Errorf("%w: %s", ErrEventNotFound, id)
		}
		event.Status = status

		// A pending event can be failed directly, e.g. by operational tooling.
		if status != StatusPending {
			ms.pending[event.EventType] = slices.DeleteFunc(ms.pending[event.EventType], func(p uuid.UUID) bool {
				return p == id
			})
		}
	}

	return nil
}

// Get returns a copy of a stored event. Test helper.
func (ms *MemoryStorage) Get(id uuid.UUID) (Event, bool) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	event, ok := ms.events[id]
	if !ok {
		return Event{}, false
	}
	return *event, true
}
