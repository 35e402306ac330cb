package scheduler

import (
	"time"

	"github.com/google/uuid"
)

// Status represents the lifecycle status of a scheduled event.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Reference identifies what kind of entity a scheduled event points at.
type Reference string

const (
	ReferenceProject Reference = "project"
	ReferenceTopic   Reference = "topic"
)

// Event is one accumulated notification waiting for its bundle period to
// elapse. Created once; only the Status field changes afterwards, and only
// through the scheduler's storage.
type Event struct {
	ID          uuid.UUID      `json:"id"`
	EventType   string         `json:"event_type"`
	UserID      string         `json:"user_id"`
	Reference   Reference      `json:"reference"`
	ReferenceID string         `json:"reference_id"`
	Period      string         `json:"period"`
	Data        map[string]any `json:"data,omitempty"`
	Status      Status         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	DueAt       time.Time      `json:"due_at"`
}
