package scheduler

import "errors"

var (
	// ErrStorageNil is returned when a scheduler is constructed without storage.
	ErrStorageNil = errors.New("scheduler storage cannot be nil")

	// ErrOnDueNil is returned when a scheduler is constructed without a due-event callback.
	ErrOnDueNil = errors.New("scheduler due-event callback cannot be nil")

	// ErrNoPeriods is returned when a scheduler is constructed with an empty period table.
	ErrNoPeriods = errors.New("scheduler requires at least one period")

	// ErrUnknownPeriod is returned when an event names a period absent from the table.
	ErrUnknownPeriod = errors.New("unknown bundle period")

	// ErrEventNotFound is returned by storage when an event id does not exist.
	ErrEventNotFound = errors.New("scheduled event not found")
)
