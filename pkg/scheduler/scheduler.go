package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/notifykit/pkg/logger"
)

// Storage persists pending events between process restarts. Durability of
// accumulated notifications lives here, not in the bundling engine.
type Storage interface {
	// CreateEvent stores a new pending event.
	CreateEvent(ctx context.Context, event *Event) error

	// CollectDue atomically claims all pending events of the given type whose
	// due time has elapsed. Claimed events are not returned again until their
	// status is set.
	CollectDue(ctx context.Context, eventType string, now time.Time) ([]Event, error)

	// SetStatus records the terminal status for the given event ids.
	SetStatus(ctx context.Context, ids []uuid.UUID, status Status) error
}

// SetStatusFunc records a terminal status for a batch of events.
type SetStatusFunc func(ctx context.Context, events []Event, status Status) error

// OnDueFunc processes a batch of due events. Implementations report the
// outcome through setStatus and never return dispatch errors upward.
type OnDueFunc func(ctx context.Context, events []Event, setStatus SetStatusFunc)

// Scheduler accumulates events and invokes the due-event callback on a
// periodic schedule. It owns nothing about the events' meaning; the callback
// decides how a due batch becomes outbound messages.
type Scheduler struct {
	eventType string
	periods   map[string]time.Duration
	onDue     OnDueFunc
	storage   Storage
	interval  time.Duration
	log       *slog.Logger
}

// New creates a scheduler for one event type. The period table maps period
// names (as they appear in user settings) to accumulation durations.
func New(eventType string, periods map[string]time.Duration, onDue OnDueFunc, storage Storage, opts ...Option) (*Scheduler, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if onDue == nil {
		return nil, ErrOnDueNil
	}
	if len(periods) == 0 {
		return nil, ErrNoPeriods
	}

	options := &schedulerOptions{
		checkInterval: time.Minute,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Scheduler{
		eventType: eventType,
		periods:   periods,
		onDue:     onDue,
		storage:   storage,
		interval:  options.checkInterval,
		log:       options.logger,
	}, nil
}

// HasPeriod reports whether a period name is recognized.
func (s *Scheduler) HasPeriod(name string) bool {
	_, ok := s.periods[name]
	return ok
}

// AddEvent registers one event for later bundled delivery. The event's
// period must appear in the period table; id, status, and timing fields are
// filled in here.
func (s *Scheduler) AddEvent(ctx context.Context, event Event) error {
	dur, ok := s.periods[event.Period]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownPeriod, event.Period)
	}

	now := time.Now()
	event.ID = uuid.New()
	event.EventType = s.eventType
	event.Status = StatusPending
	event.CreatedAt = now
	event.DueAt = now.Add(dur)

	if err := s.storage.CreateEvent(ctx, &event); err != nil {
		return fmt.Errorf("failed to store scheduled event: %w", err)
	}

	s.log.DebugContext(ctx, "scheduled event for bundling",
		logger.UserID(event.UserID),
		logger.EventType(event.EventType),
		logger.Period(event.Period),
		slog.Time("due_at", event.DueAt))

	return nil
}

// Start runs the periodic due-event check until the context is canceled.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.InfoContext(ctx, "scheduler shutting down",
				logger.EventType(s.eventType))
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce collects currently due events and hands them to the callback.
// Exposed so tests and operational tooling can trigger a cycle on demand.
func (s *Scheduler) RunOnce(ctx context.Context) {
	due, err := s.storage.CollectDue(ctx, s.eventType, time.Now())
	if err != nil {
		s.log.ErrorContext(ctx, "failed to collect due events",
			logger.EventType(s.eventType),
			logger.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}

	s.log.InfoContext(ctx, "processing due events",
		logger.EventType(s.eventType),
		logger.EventCount(len(due)))

	s.onDue(ctx, due, s.setStatus)
}

func (s *Scheduler) setStatus(ctx context.Context, events []Event, status Status) error {
	ids := make([]uuid.UUID, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return s.storage.SetStatus(ctx, ids, status)
}
