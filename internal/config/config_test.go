package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		APIBaseURL:           "http://localhost:8375",
		WSURL:                "ws://localhost:8375/ws",
		HTTPTimeoutSeconds:   15,
		ReconnectAttempts:    3,
		ReconnectDelayMillis: 1000,
		SessionCachePath:     "ripple-session.db",
		Env:                  "development",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8375", cfg.APIBaseURL)
	assert.Equal(t, "ws://localhost:8375/ws", cfg.WSURL)
	assert.Equal(t, 3, cfg.ReconnectAttempts)
	assert.Equal(t, 1000, cfg.ReconnectDelayMillis)
	assert.Equal(t, "development", cfg.Env)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing api base url", func(c *Config) { c.APIBaseURL = "" }, "API_BASE_URL is required"},
		{"missing ws url", func(c *Config) { c.WSURL = "" }, "WS_URL is required"},
		{"http ws url", func(c *Config) { c.WSURL = "http://localhost:8375/ws" }, "ws or wss scheme"},
		{"zero timeout", func(c *Config) { c.HTTPTimeoutSeconds = 0 }, "HTTP_TIMEOUT_SECONDS must be positive"},
		{"zero attempts", func(c *Config) { c.ReconnectAttempts = 0 }, "RECONNECT_ATTEMPTS must be positive"},
		{"negative delay", func(c *Config) { c.ReconnectDelayMillis = -1 }, "must not be negative"},
		{"no session store", func(c *Config) {
			c.SessionCachePath = ""
			c.RedisURL = ""
		}, "SESSION_CACHE_PATH or REDIS_URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_RedisOnlyStoreIsEnough(t *testing.T) {
	cfg := validConfig()
	cfg.SessionCachePath = ""
	cfg.RedisURL = "redis://localhost:6379"
	assert.NoError(t, cfg.Validate())
}

func TestDurationHelpers(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, time.Second, cfg.ReconnectDelay())
}
