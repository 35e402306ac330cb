package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// ProjectID records the project identifier under the key "project_id".
// If id is nil, it returns an empty Attr.
func ProjectID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("project_id", id)
}

// EventType records the event type under the key "event_type".
func EventType(eventType string) slog.Attr {
	return slog.String("event_type", eventType)
}

// Topic records the message topic under the key "topic".
func Topic(topic string) slog.Attr {
	return slog.String("topic", topic)
}

// Period records a bundling period name under the key "period".
func Period(period string) slog.Attr {
	return slog.String("period", period)
}

// Recipient records the destination email under the key "recipient".
func Recipient(email string) slog.Attr {
	return slog.String("recipient", email)
}

// EventCount records the number of events handled under the key "event_count".
func EventCount(n int) slog.Attr {
	return slog.Int("event_count", n)
}
