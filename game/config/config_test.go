package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "quizzi.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Failed to load default config: %v", err)
	}

	if cfg.ServerURL == "" {
		t.Error("Expected default server URL")
	}
	if cfg.Reconnect.MaxAttempts != 5 {
		t.Errorf("Expected default max attempts 5, got %d", cfg.Reconnect.MaxAttempts)
	}
	if cfg.RateLimit.MaxRequests != 60 {
		t.Errorf("Expected default rate limit 60, got %d", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"server_url": "wss://play.example.com",
		"player_name": "Ada",
		"reconnect": {"initial_delay_ms": 500, "max_delay_ms": 8000, "max_attempts": 3, "factor": 2}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServerURL != "wss://play.example.com" {
		t.Errorf("Expected server URL from file, got %q", cfg.ServerURL)
	}
	if cfg.PlayerName != "Ada" {
		t.Errorf("Expected player name Ada, got %q", cfg.PlayerName)
	}
	if cfg.Reconnect.MaxAttempts != 3 {
		t.Errorf("Expected max attempts 3, got %d", cfg.Reconnect.MaxAttempts)
	}
	// Unspecified sections keep their defaults.
	if cfg.RateLimit.MaxRequests != 60 {
		t.Errorf("Expected default rate limit to survive partial file, got %d", cfg.RateLimit.MaxRequests)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("Expected error for missing config file")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	path := writeConfigFile(t, `{"server_url": "wss://file.example.com"}`)
	t.Setenv("QUIZZI_SERVER_URL", "wss://env.example.com")
	t.Setenv("QUIZZI_PLAYER_NAME", "Grace")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ServerURL != "wss://env.example.com" {
		t.Errorf("Expected env override to win, got %q", cfg.ServerURL)
	}
	if cfg.PlayerName != "Grace" {
		t.Errorf("Expected env player name, got %q", cfg.PlayerName)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad scheme", func(c *Config) { c.ServerURL = "ftp://example.com" }},
		{"no host", func(c *Config) { c.ServerURL = "ws://" }},
		{"zero initial delay", func(c *Config) { c.Reconnect.InitialDelayMs = 0 }},
		{"max below initial", func(c *Config) { c.Reconnect.MaxDelayMs = 1; c.Reconnect.InitialDelayMs = 100 }},
		{"zero attempts", func(c *Config) { c.Reconnect.MaxAttempts = 0 }},
		{"factor below one", func(c *Config) { c.Reconnect.Factor = 0.5 }},
		{"zero rate limit", func(c *Config) { c.RateLimit.MaxRequests = 0 }},
		{"zero window", func(c *Config) { c.RateLimit.WindowMs = 0 }},
	}

	for _, tc := range cases {
		cfg := Default()
		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("Expected validation error for %s", tc.name)
		}
	}
}

func TestReconnectPolicyConversion(t *testing.T) {
	cfg := Default()
	policy := cfg.ReconnectPolicy()

	if policy.InitialDelay != time.Second {
		t.Errorf("Expected initial delay 1s, got %v", policy.InitialDelay)
	}
	if policy.MaxDelay != 32*time.Second {
		t.Errorf("Expected max delay 32s, got %v", policy.MaxDelay)
	}
	if policy.MaxAttempts != 5 {
		t.Errorf("Expected 5 attempts, got %d", policy.MaxAttempts)
	}
}
