package config

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "APP_NAME", "LOG_FILE", "CONTACT_EMAIL", "DENIAL_PATH", "DENIAL_STATUS", "DB_DRIVER", "LOG_LEVEL", "OTEL_ENABLED", "OTEL_SAMPLING_RATE", "SINK_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "My Protected Application", cfg.AppName)
	assert.Equal(t, "/access-error", cfg.DenialPath)
	assert.Equal(t, http.StatusForbidden, cfg.DenialStatus)
	assert.Equal(t, 1.0, cfg.OtelSamplingRate)
	assert.False(t, cfg.DatabaseEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("APP_NAME", "Wiki")
	t.Setenv("CONTACT_EMAIL", "support@example.cz")
	t.Setenv("DENIAL_STATUS", "401")
	t.Setenv("DATABASE_URL", "file:records.db")
	t.Setenv("DB_DRIVER", "sqlite")

	cfg := Load()

	assert.Equal(t, "Wiki", cfg.AppName)
	assert.Equal(t, "support@example.cz", cfg.ContactEmail)
	assert.Equal(t, http.StatusUnauthorized, cfg.DenialStatus)
	assert.True(t, cfg.DatabaseEnabled())
	require.NoError(t, cfg.Validate())
}

func TestLoad_MalformedNumbersFailValidation(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"DENIAL_STATUS", "abc"},
		{"OTEL_SAMPLING_RATE", "half"},
		{"SINK_TIMEOUT", "2 seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			err := Load().Validate()

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
			assert.Contains(t, err.Error(), tt.value)
		})
	}
}

func TestLoad_SinkTimeout(t *testing.T) {
	t.Setenv("SINK_TIMEOUT", "")
	assert.Equal(t, 2*time.Second, Load().SinkTimeout)

	t.Setenv("SINK_TIMEOUT", "500ms")
	cfg := Load()
	assert.Equal(t, 500*time.Millisecond, cfg.SinkTimeout)
	require.NoError(t, cfg.Validate())
}

func TestMigrationsPath(t *testing.T) {
	cfg := &Config{MigrationsDir: "./migrations", DBDriver: "sqlite"}
	assert.Equal(t, filepath.Join("migrations", "sqlite"), cfg.MigrationsPath())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"invalid contact email", func(c *Config) { c.ContactEmail = "not-an-address" }},
		{"relative denial path", func(c *Config) { c.DenialPath = "access-error" }},
		{"unknown db driver", func(c *Config) { c.DBDriver = "postgres" }},
		{"unknown log level", func(c *Config) { c.LogLevel = "TRACE" }},
		{"otel without endpoint", func(c *Config) { c.OtelEnabled = true; c.OtelEndpoint = "" }},
		{"status out of range", func(c *Config) { c.DenialStatus = 99 }},
		{"zero sink timeout", func(c *Config) { c.SinkTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:             "8080",
				AppName:          "app",
				LogFile:          "/tmp/x.log",
				ContactEmail:     "admin@example.org",
				DenialPath:       "/access-error",
				DenialStatus:     http.StatusForbidden,
				SinkTimeout:      time.Second,
				DBDriver:         "mysql",
				LogLevel:         "INFO",
				OtelSamplingRate: 1,
			}
			require.NoError(t, cfg.Validate())

			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
