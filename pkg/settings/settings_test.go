package settings_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/settings"
)

func TestValues_NotificationEnabled(t *testing.T) {
	t.Parallel()

	v := settings.Values{
		Notifications: map[string]settings.NotificationSetting{
			"topic.created": {Enabled: "no"},
			"file.uploaded": {Enabled: "yes"},
			"member.joined": {},
		},
	}

	assert.False(t, v.NotificationEnabled("topic.created"))
	assert.True(t, v.NotificationEnabled("file.uploaded"))
	// Unset and unknown types default to enabled.
	assert.True(t, v.NotificationEnabled("member.joined"))
	assert.True(t, v.NotificationEnabled("never.configured"))
}

func TestValues_Bundling(t *testing.T) {
	t.Parallel()

	v := settings.Values{
		Services: map[string]settings.ServiceSetting{
			"email":  {BundlingEnabled: "yes", BundlePeriod: "weekly"},
			"slack":  {BundlingEnabled: "no"},
			"mobile": {},
		},
	}

	enabled, set := v.Bundling("email")
	assert.True(t, enabled)
	assert.True(t, set)
	assert.Equal(t, "weekly", v.BundlePeriod("email"))

	enabled, set = v.Bundling("slack")
	assert.False(t, enabled)
	assert.True(t, set)

	enabled, set = v.Bundling("mobile")
	assert.False(t, enabled)
	assert.False(t, set)

	enabled, set = v.Bundling("unknown")
	assert.False(t, enabled)
	assert.False(t, set)
	assert.Empty(t, v.BundlePeriod("unknown"))
}

func TestGetSettings(t *testing.T) {
	t.Run("fetches and decodes", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/users/user-1/settings", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"notifications": {"topic.created": {"enabled": "no"}},
				"services": {"email": {"bundlingEnabled": "yes", "bundlePeriod": "daily"}}
			}`))
		}))
		defer srv.Close()

		client, err := settings.NewClient(settings.Config{BaseURL: srv.URL})
		require.NoError(t, err)

		v, err := client.GetSettings(context.Background(), "user-1")
		require.NoError(t, err)
		assert.False(t, v.NotificationEnabled("topic.created"))
		assert.Equal(t, "daily", v.BundlePeriod("email"))
	})

	t.Run("not found means defaults", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		client, err := settings.NewClient(settings.Config{BaseURL: srv.URL})
		require.NoError(t, err)

		v, err := client.GetSettings(context.Background(), "user-2")
		require.NoError(t, err)
		assert.True(t, v.NotificationEnabled("anything"))
	})

	t.Run("server error surfaces", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		client, err := settings.NewClient(settings.Config{BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = client.GetSettings(context.Background(), "user-3")
		assert.ErrorIs(t, err, settings.ErrFetchFailed)
	})

	t.Run("invalid base url", func(t *testing.T) {
		_, err := settings.NewClient(settings.Config{BaseURL: "not-a-url"})
		assert.ErrorIs(t, err, settings.ErrInvalidBaseURL)
	})
}
