package email

import (
	"context"
	"fmt"
	"regexp"
)

// EmailSender represents an interface for sending emails.
type EmailSender interface {
	SendEmail(ctx context.Context, params SendEmailParams) error
}

// SendEmailParams represents the parameters for sending an email.
// From and ReplyTo override the sender identity configured on the client;
// the notification dispatcher uses them to synthesize per-message reply
// addresses for topic and post activity.
type SendEmailParams struct {
	SendTo   string   `json:"send_to"`            // Email address of the recipient
	CC       []string `json:"cc,omitempty"`       // Optional carbon-copy addresses
	Subject  string   `json:"subject"`            // Subject of the email
	BodyHTML string   `json:"body_html"`          // HTML body of the email
	Tag      string   `json:"tag,omitempty"`      // Optional
	From     string   `json:"from,omitempty"`     // Optional sender override
	ReplyTo  string   `json:"reply_to,omitempty"` // Optional reply-to override
}

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Validate checks that the params carry everything required to send.
func (p SendEmailParams) Validate() error {
	if p.SendTo == "" {
		return fmt.Errorf("%w: SendTo is required", ErrInvalidParams)
	}
	if !emailRegex.MatchString(p.SendTo) {
		return fmt.Errorf("%w: SendTo must be a valid email address", ErrInvalidParams)
	}
	if p.Subject == "" {
		return fmt.Errorf("%w: Subject is required", ErrInvalidParams)
	}
	if p.BodyHTML == "" {
		return fmt.Errorf("%w: BodyHTML is required", ErrInvalidParams)
	}
	return nil
}
