package main

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dmitrymomot/notifykit/pkg/bundler"
	"github.com/dmitrymomot/notifykit/pkg/bus"
	"github.com/dmitrymomot/notifykit/pkg/config"
	"github.com/dmitrymomot/notifykit/pkg/email"
)

// newDispatcher selects the outbound transport. The default "bus" posts
// payloads to the event bus for the downstream email service to render;
// "postmark" and "dev" render a plain bundle digest locally and send it
// directly, which keeps single-process deployments and local development
// working without a bus.
func newDispatcher(app appConfig) (bundler.Dispatcher, error) {
	switch app.EmailTransport {
	case "bus":
		var cfg bus.Config
		config.MustLoad(&cfg)
		return bus.NewClient(cfg)
	case "postmark":
		var cfg email.Config
		config.MustLoad(&cfg)
		sender, err := email.NewPostmarkClient(cfg)
		if err != nil {
			return nil, err
		}
		return &emailDispatcher{sender: sender}, nil
	case "dev":
		return &emailDispatcher{sender: email.NewDevSender(app.DevEmailDir)}, nil
	default:
		return nil, fmt.Errorf("unknown email transport %q", app.EmailTransport)
	}
}

// emailDispatcher sends bundle payloads through an EmailSender instead of
// the bus.
type emailDispatcher struct {
	sender email.EmailSender
}

func (d *emailDispatcher) PostEvent(ctx context.Context, event bus.Event) error {
	payload, ok := event.Payload.(bundler.EmailPayload)
	if !ok {
		return fmt.Errorf("unsupported payload type %T", event.Payload)
	}

	for _, to := range payload.Recipients {
		params := email.SendEmailParams{
			SendTo:   to,
			CC:       payload.CC,
			Subject:  payload.Subject,
			BodyHTML: renderDigest(payload),
			Tag:      event.Topic,
			From:     payload.From.Email,
			ReplyTo:  payload.ReplyTo,
		}
		if err := d.sender.SendEmail(ctx, params); err != nil {
			return err
		}
	}
	return nil
}

// renderDigest builds a minimal HTML digest of the payload. The bus path
// leaves rendering to the downstream email service; this exists only for
// the direct transports.
func renderDigest(payload bundler.EmailPayload) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, project := range payload.Projects {
		if project.Name != "" {
			fmt.Fprintf(&b, "<h2>%s</h2>", html.EscapeString(project.Name))
		}
		for _, section := range project.Sections {
			fmt.Fprintf(&b, "<h3>%s</h3>", html.EscapeString(section.Title))
			b.WriteString("<ul>")
			for _, n := range section.Notifications {
				b.WriteString("<li>")
				if body, ok := n["bodyHtml"].(string); ok && body != "" {
					b.WriteString(body)
				} else if body, ok := n["body"].(string); ok {
					b.WriteString(html.EscapeString(body))
				}
				b.WriteString("</li>")
			}
			b.WriteString("</ul>")
		}
	}
	b.WriteString("</body></html>")
	return b.String()
}
