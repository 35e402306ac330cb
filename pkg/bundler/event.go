package bundler

import (
	"fmt"
	"time"

	"github.com/dmitrymomot/notifykit/pkg/consumer"
)

// NotificationEvent is one inbound domain event addressed to one user.
// Immutable once classified; its identity is its position in the originating
// stream, never a synthetic id.
type NotificationEvent struct {
	UserID    string
	Type      string
	Timestamp time.Time
	Contents  map[string]any
	ProjectID string
	TopicID   string
	PostID    string
	FileName  string
}

// EventFromMessage builds a NotificationEvent from an inbound consumer
// message. Reference fields are lifted out of contents for classification
// and addressing; contents itself stays untouched.
func EventFromMessage(msg consumer.Message) NotificationEvent {
	c := msg.Notification.Contents
	return NotificationEvent{
		UserID:    msg.Notification.UserID,
		Type:      msg.EffectiveType(),
		Timestamp: time.Now(),
		Contents:  c,
		ProjectID: stringField(c, "projectId"),
		TopicID:   stringField(c, "topicId"),
		PostID:    stringField(c, "postId"),
		FileName:  stringField(c, "fileName"),
	}
}

// IsMessaging reports whether the event arises from topic or post activity.
// Messaging events are exempt from default bundling and get synthesized
// reply addresses.
func (e NotificationEvent) IsMessaging() bool {
	return e.TopicID != "" || e.PostID != ""
}

// IsMention reports whether the event denotes an @-mention.
func (e NotificationEvent) IsMention() bool {
	return e.Type == TypePostMention
}

// TypePostMention is the classification type of @-mention notifications.
const TypePostMention = "notifications.post.mention"

// stringField extracts a contents field as a string. Numeric ids arrive as
// JSON numbers and are rendered without an exponent.
func stringField(contents map[string]any, key string) string {
	v, ok := contents[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return formatNumber(t)
	case int:
		return fmt.Sprintf("%d", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", f)
}
