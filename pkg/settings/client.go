package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidBaseURL is returned when the configured settings endpoint is unusable.
	ErrInvalidBaseURL = errors.New("settings.errors.invalid_base_url")

	// ErrFetchFailed is returned when the settings request fails.
	ErrFetchFailed = errors.New("settings.errors.fetch_failed")
)

// Config holds settings client configuration.
type Config struct {
	BaseURL   string `env:"SETTINGS_BASE_URL,required"` // Notification-settings service endpoint
	AuthToken string `env:"SETTINGS_AUTH_TOKEN"`        // Optional bearer token
}

// Client fetches per-user notification settings.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewClient creates a settings client for the given base URL.
func NewClient(cfg Config) (*Client, error) {
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: http(s) URL with host required", ErrInvalidBaseURL)
	}

	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		authToken: cfg.AuthToken,
		client: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// GetSettings fetches the settings snapshot for one user. There is no local
// cache: every inbound event sees the user's current preferences.
func (c *Client) GetSettings(ctx context.Context, userID string) (Values, error) {
	endpoint := fmt.Sprintf("%s/users/%s/settings", c.baseURL, url.PathEscape(userID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Values{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Values{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// A user without stored settings uses defaults everywhere.
		return Values{}, nil
	default:
		return Values{}, fmt.Errorf("%w: settings service returned status %d", ErrFetchFailed, resp.StatusCode)
	}

	var v Values
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		return Values{}, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	return v, nil
}
