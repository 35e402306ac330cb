// Package directory looks up users in the member directory service. The
// bundling engine needs only email, name, and handle to address outbound
// notifications; everything else about the directory is out of scope.
package directory

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
	// ErrInvalidBaseURL is returned when the configured directory endpoint is unusable.
	ErrInvalidBaseURL = errors.New("directory.errors.invalid_base_url")

	// ErrLookupFailed is returned when the directory request fails.
	ErrLookupFailed = errors.New("directory.errors.lookup_failed")
)

// Config holds directory client configuration.
type Config struct {
	BaseURL   string `env:"DIRECTORY_BASE_URL,required"` // Member directory endpoint
	AuthToken string `env:"DIRECTORY_AUTH_TOKEN"`        // Optional bearer token
}

// User is the directory's view of a member.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Handle    string `json:"handle"`
}

// Client fetches users from the directory service.
type Client struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewClient creates a directory client for the given base URL.
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

// GetUsersByID fetches users for the given ids. Unknown ids are simply
// absent from the result; callers decide how to handle missing users.
func (c *Client) GetUsersByID(ctx context.Context, ids []string) ([]User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	endpoint := fmt.Sprintf("%s/users?ids=%s", c.baseURL, url.QueryEscape(strings.Join(ids, ",")))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: directory returned status %d", ErrLookupFailed, resp.StatusCode)
	}

	var users []User
	if err := json.NewDecoder(resp.Body).Decode(&users); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}
	return users, nil
}
