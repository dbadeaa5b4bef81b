// Package config provides client configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"net/url"
	"time"

	"github.com/spf13/viper"
)

// Config holds client configuration values loaded from file or environment variables.
type Config struct {
	APIBaseURL string `mapstructure:"API_BASE_URL"`
	WSURL      string `mapstructure:"WS_URL"`

	HTTPTimeoutSeconds int `mapstructure:"HTTP_TIMEOUT_SECONDS"`

	// Bounded reconnection budget for the realtime connection. After
	// ReconnectAttempts failures the manager stays disconnected until the
	// caller connects again explicitly.
	ReconnectAttempts    int `mapstructure:"RECONNECT_ATTEMPTS"`
	ReconnectDelayMillis int `mapstructure:"RECONNECT_DELAY_MS"`

	// SessionCachePath is the sqlite file holding the persisted session.
	SessionCachePath string `mapstructure:"SESSION_CACHE_PATH"`
	// RedisURL, when set, selects the redis session store instead of sqlite.
	RedisURL string `mapstructure:"REDIS_URL"`

	TracingEnabled  bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint    string  `mapstructure:"OTLP_ENDPOINT"`
	SamplerRatio    float64 `mapstructure:"TRACING_SAMPLER_RATIO"`

	Env string `mapstructure:"APP_ENV"`
}

// HTTPTimeout returns the configured HTTP timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

// ReconnectDelay returns the configured delay between reconnection attempts.
func (c *Config) ReconnectDelay() time.Duration {
	return time.Duration(c.ReconnectDelayMillis) * time.Millisecond
}

// LoadConfig loads client configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.SetConfigName("ripple")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The config file is optional; environment and defaults cover everything.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "" {
		viper.SetConfigName("ripple." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'ripple.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: ripple.%s.yml", env)
	}

	viper.SetDefault("API_BASE_URL", "http://localhost:8375")
	viper.SetDefault("WS_URL", "ws://localhost:8375/ws")
	viper.SetDefault("HTTP_TIMEOUT_SECONDS", 15)
	viper.SetDefault("RECONNECT_ATTEMPTS", 3)
	viper.SetDefault("RECONNECT_DELAY_MS", 1000)
	viper.SetDefault("SESSION_CACHE_PATH", "ripple-session.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLER_RATIO", 1.0)
	viper.SetDefault("APP_ENV", "development")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate ensures that required configuration values are present and sane.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if _, err := url.Parse(c.APIBaseURL); err != nil {
		return fmt.Errorf("API_BASE_URL is not a valid URL: %w", err)
	}
	if c.WSURL == "" {
		return errors.New("WS_URL is required")
	}
	u, err := url.Parse(c.WSURL)
	if err != nil {
		return fmt.Errorf("WS_URL is not a valid URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return fmt.Errorf("WS_URL must use ws or wss scheme, got %q", u.Scheme)
	}
	if c.HTTPTimeoutSeconds <= 0 {
		return errors.New("HTTP_TIMEOUT_SECONDS must be positive")
	}
	if c.ReconnectAttempts <= 0 {
		return errors.New("RECONNECT_ATTEMPTS must be positive")
	}
	if c.ReconnectDelayMillis < 0 {
		return errors.New("RECONNECT_DELAY_MS must not be negative")
	}
	if c.SessionCachePath == "" && c.RedisURL == "" {
		return errors.New("one of SESSION_CACHE_PATH or REDIS_URL is required")
	}

	isProduction := c.Env == "production" || c.Env == "prod"
	if isProduction {
		if u.Scheme != "wss" {
			log.Println("WARNING: WS_URL does not use wss in production. Token handshakes will travel in cleartext.")
		}
	}

	return nil
}
