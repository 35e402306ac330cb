package bus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Event is the envelope posted to the event bus. Payload carries the
// assembled notification message; MIMEType describes its encoding.
type Event struct {
	Topic      string    `json:"topic"`
	Originator string    `json:"originator"`
	Timestamp  time.Time `json:"timestamp"`
	MIMEType   string    `json:"mime-type"`
	Payload    any       `json:"payload"`
}

// Client posts events to the bus over HTTP.
// Zero value is not usable; use NewClient to create instances.
type Client struct {
	connectURL string
	originator string
	client     *http.Client
	maxRetries int
	retryDelay time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default pooled HTTP client, for custom
// transports or testing.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithRetries enables simple retries on transport errors and 5xx responses.
// Delay grows linearly per attempt. Retry policy lives here, never in the
// bundling engine.
func WithRetries(max int, delay time.Duration) Option {
	return func(cl *Client) {
		if max > 0 {
			cl.maxRetries = max
		}
		if delay > 0 {
			cl.retryDelay = delay
		}
	}
}

// NewClient creates a bus client for the given connect URL.
// Connection pooling is tuned for a single well-known endpoint.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	u, err := url.Parse(cfg.ConnectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConnectURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidConnectURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidConnectURL)
	}

	cl := &Client{
		connectURL: cfg.ConnectURL,
		originator: cfg.Originator,
		retryDelay: time.Second,
		client: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl, nil
}

// PostEvent delivers one event to the bus. The event's Originator and
// Timestamp are filled from the client when unset. A non-2xx response or
// transport failure surfaces as an error to the caller.
func (c *Client) PostEvent(ctx context.Context, event Event) error {
	if event.Topic == "" {
		return fmt.Errorf("%w: topic is required", ErrInvalidEvent)
	}
	if event.Originator == "" {
		event.Originator = c.originator
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.MIMEType == "" {
		event.MIMEType = "application/json"
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal bus event: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * c.retryDelay):
			}
		}

		retryable, err := c.attempt(ctx, body)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return fmt.Errorf("%w: %w", ErrPostFailed, lastErr)
}

// attempt performs a single POST. The bool result reports whether the
// failure is worth retrying (transport errors and 5xx responses).
func (c *Client) attempt(ctx context.Context, body []byte) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.connectURL, bytes.NewReader(body))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return true, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return false, nil
	}

	// Read a bounded slice of the body for error context.
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	msg := strings.ReplaceAll(string(raw), "\n", " ")
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}

	err = fmt.Errorf("bus returned status %d: %s", resp.StatusCode, msg)
	return resp.StatusCode >= 500, err
}
