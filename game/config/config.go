package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/astroturfstudio/quizzi-go/game/session"
)

var (
	ErrConfigNotFound = errors.New("configuration file not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// ReconnectConfig holds the reconnection policy settings.
type ReconnectConfig struct {
	InitialDelayMs int     `json:"initial_delay_ms"`
	MaxDelayMs     int     `json:"max_delay_ms"`
	MaxAttempts    int     `json:"max_attempts"`
	Factor         float64 `json:"factor"`
}

// RateLimitConfig holds the inbound rate limit settings.
type RateLimitConfig struct {
	MaxRequests int `json:"max_requests"`
	WindowMs    int `json:"window_ms"`
}

// Config is the full client configuration.
type Config struct {
	ServerURL    string          `json:"server_url"`
	PlayerName   string          `json:"player_name"`
	IdentityFile string          `json:"identity_file"`
	Reconnect    ReconnectConfig `json:"reconnect"`
	RateLimit    RateLimitConfig `json:"rate_limit"`
}

// Default returns the stock configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		ServerURL:    "ws://localhost:8080",
		PlayerName:   "Player",
		IdentityFile: "player.json",
		Reconnect: ReconnectConfig{
			InitialDelayMs: 1000,
			MaxDelayMs:     32000,
			MaxAttempts:    5,
			Factor:         2,
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 60,
			WindowMs:    1000,
		},
	}
}

// Load reads the configuration file at path, applies environment overrides,
// and validates the result. An empty path loads defaults plus environment
// overrides only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays the supported environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("QUIZZI_SERVER_URL"); v != "" {
		c.ServerURL = v
	}
	if v := os.Getenv("QUIZZI_PLAYER_NAME"); v != "" {
		c.PlayerName = v
	}
	if v := os.Getenv("QUIZZI_IDENTITY_FILE"); v != "" {
		c.IdentityFile = v
	}
}

// Validate checks the configuration for usable values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("%w: server_url: %v", ErrInvalidConfig, err)
	}
	switch u.Scheme {
	case "ws", "wss", "http", "https":
	default:
		return fmt.Errorf("%w: server_url scheme %q is not supported", ErrInvalidConfig, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: server_url has no host", ErrInvalidConfig)
	}

	if c.Reconnect.InitialDelayMs <= 0 {
		return fmt.Errorf("%w: reconnect.initial_delay_ms must be positive", ErrInvalidConfig)
	}
	if c.Reconnect.MaxDelayMs < c.Reconnect.InitialDelayMs {
		return fmt.Errorf("%w: reconnect.max_delay_ms must be >= initial_delay_ms", ErrInvalidConfig)
	}
	if c.Reconnect.MaxAttempts <= 0 {
		return fmt.Errorf("%w: reconnect.max_attempts must be positive", ErrInvalidConfig)
	}
	if c.Reconnect.Factor < 1 {
		return fmt.Errorf("%w: reconnect.factor must be >= 1", ErrInvalidConfig)
	}

	if c.RateLimit.MaxRequests <= 0 {
		return fmt.Errorf("%w: rate_limit.max_requests must be positive", ErrInvalidConfig)
	}
	if c.RateLimit.WindowMs <= 0 {
		return fmt.Errorf("%w: rate_limit.window_ms must be positive", ErrInvalidConfig)
	}

	return nil
}

// ReconnectPolicy converts the reconnect settings into a session policy.
func (c *Config) ReconnectPolicy() session.ReconnectPolicy {
	return session.ReconnectPolicy{
		InitialDelay: time.Duration(c.Reconnect.InitialDelayMs) * time.Millisecond,
		MaxDelay:     time.Duration(c.Reconnect.MaxDelayMs) * time.Millisecond,
		MaxAttempts:  c.Reconnect.MaxAttempts,
		Factor:       c.Reconnect.Factor,
	}
}

// RateLimitWindow returns the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimit.WindowMs) * time.Millisecond
}
