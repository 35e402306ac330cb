package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/config"
)

type busTestConfig struct {
	ConnectURL string `env:"TEST_BUS_CONNECT_URL" envDefault:"http://localhost:3000/bus"`
	Originator string `env:"TEST_BUS_ORIGINATOR" envDefault:"notifykit"`
}

type requiredTestConfig struct {
	Secret string `env:"TEST_REQUIRED_SECRET_MISSING,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg busTestConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "http://localhost:3000/bus", cfg.ConnectURL)
		assert.Equal(t, "notifykit", cfg.Originator)
	})

	t.Run("env value wins over default", func(t *testing.T) {
		type overrideConfig struct {
			Tag string `env:"TEST_OVERRIDE_TAG" envDefault:"fallback"`
		}
		t.Setenv("TEST_OVERRIDE_TAG", "production")

		var cfg overrideConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "production", cfg.Tag)
	})

	t.Run("cached between calls", func(t *testing.T) {
		var first busTestConfig
		require.NoError(t, config.Load(&first))

		// Changing the environment after the first load must not affect
		// the cached value.
		t.Setenv("TEST_BUS_ORIGINATOR", "changed")

		var second busTestConfig
		require.NoError(t, config.Load(&second))
		assert.Equal(t, first, second)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredTestConfig
		err := config.Load(&cfg)
		require.Error(t, err)
		assert.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil pointer", func(t *testing.T) {
		err := config.Load[busTestConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on failure", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredTestConfig
			config.MustLoad(&cfg)
		})
	})

	t.Run("returns on success", func(t *testing.T) {
		assert.NotPanics(t, func() {
			var cfg busTestConfig
			config.MustLoad(&cfg)
		})
	})
}
