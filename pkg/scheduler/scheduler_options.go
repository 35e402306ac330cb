package scheduler

import (
	"log/slog"
	"time"
)

type schedulerOptions struct {
	checkInterval time.Duration
	logger        *slog.Logger
}

// Option configures a Scheduler.
type Option func(*schedulerOptions)

// WithCheckInterval sets how often the scheduler looks for due events.
func WithCheckInterval(interval time.Duration) Option {
	return func(o *schedulerOptions) {
		if interval > 0 {
			o.checkInterval = interval
		}
	}
}

// WithLogger sets the logger for the scheduler.
func WithLogger(log *slog.Logger) Option {
	return func(o *schedulerOptions) {
		if log != nil {
			o.logger = log
		}
	}
}
