package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handybase/handy/pkg/config"
)

type queueConfig struct {
	Buffer    int    `env:"MAIL_QUEUE_BUFFER" envDefault:"0"`
	QueueType string `env:"MAIL_QUEUE_TYPE" envDefault:"mail"`
}

type requiredConfig struct {
	DSN string `env:"TEST_CONFIG_REQUIRED_DSN,required"`
}

func TestLoad(t *testing.T) {
	t.Run("defaults applied", func(t *testing.T) {
		var cfg queueConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 0, cfg.Buffer)
		assert.Equal(t, "mail", cfg.QueueType)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("MAIL_QUEUE_BUFFER", "5000")

		var cfg queueConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 5000, cfg.Buffer)
	})

	t.Run("missing required variable", func(t *testing.T) {
		var cfg requiredConfig
		err := config.Load(&cfg)
		require.ErrorIs(t, err, config.ErrParsingConfig)
	})

	t.Run("nil destination", func(t *testing.T) {
		err := config.Load[queueConfig](nil)
		require.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestMustLoad(t *testing.T) {
	t.Run("panics on missing required variable", func(t *testing.T) {
		assert.Panics(t, func() {
			var cfg requiredConfig
			config.MustLoad(&cfg)
		})
	})
}

func TestLoadEnv(t *testing.T) {
	t.Run("loads named file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		require.NoError(t, os.WriteFile(path, []byte("MAIL_QUEUE_BUFFER=250\n"), 0o600))
		t.Setenv("MAIL_QUEUE_BUFFER", "")
		os.Unsetenv("MAIL_QUEUE_BUFFER")

		require.NoError(t, config.LoadEnv(path))

		var cfg queueConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, 250, cfg.Buffer)
	})

	t.Run("missing named file is an error", func(t *testing.T) {
		err := config.LoadEnv(filepath.Join(t.TempDir(), "absent.env"))
		require.ErrorIs(t, err, config.ErrLoadingEnvFile)
	})
}
