// Command validate checks quizzi client configuration JSON files. It reports:
//   - JSON structure and unknown fields
//   - Server URL scheme and host
//   - Reconnection policy sanity (delays, attempts, backoff factor)
//   - Rate limit settings
//   - A summary of the effective configuration per file
//
// Usage: validate [file ...]   (defaults to config.json)
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/astroturfstudio/quizzi-go/game/config"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// validateFile loads and validates a single configuration JSON file.
func validateFile(path string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(path),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	// Overlay the file on the defaults, rejecting unknown fields so typos in
	// key names surface instead of silently falling back to defaults.
	cfg := config.Default()
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := cfg.Validate(); err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, err.Error())
		return result
	}

	// Advisory checks: legal values that are probably mistakes.
	if cfg.Reconnect.MaxAttempts > 20 {
		result.Notes = append(result.Notes, fmt.Sprintf("Warning: reconnect.max_attempts=%d is unusually high", cfg.Reconnect.MaxAttempts))
	}
	if cfg.Reconnect.Factor > 10 {
		result.Notes = append(result.Notes, fmt.Sprintf("Warning: reconnect.factor=%.1f grows delays very quickly", cfg.Reconnect.Factor))
	}
	if cfg.RateLimit.MaxRequests > 1000 {
		result.Notes = append(result.Notes, fmt.Sprintf("Warning: rate_limit.max_requests=%d effectively disables the gate", cfg.RateLimit.MaxRequests))
	}

	result.Notes = append(result.Notes, fmt.Sprintf("✓ Server: %s", cfg.ServerURL))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Player: %s (identity: %s)", cfg.PlayerName, cfg.IdentityFile))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Reconnect: %s..%s x%.1f, %d attempts",
		time.Duration(cfg.Reconnect.InitialDelayMs)*time.Millisecond,
		time.Duration(cfg.Reconnect.MaxDelayMs)*time.Millisecond,
		cfg.Reconnect.Factor,
		cfg.Reconnect.MaxAttempts))
	result.Notes = append(result.Notes, fmt.Sprintf("✓ Rate limit: %d msgs / %s", cfg.RateLimit.MaxRequests, cfg.RateLimitWindow()))

	return result
}

func main() {
	files := os.Args[1:]
	if len(files) == 0 {
		files = []string{"config.json"}
	}

	failed := 0
	for _, file := range files {
		result := validateFile(file)
		status := "OK"
		if !result.Valid {
			status = "INVALID"
			failed++
		}
		fmt.Printf("=== %s: %s ===\n", result.File, status)
		for _, note := range result.Notes {
			fmt.Printf("  %s\n", note)
		}
	}

	if failed > 0 {
		fmt.Printf("\n%d of %d files failed validation\n", failed, len(files))
		os.Exit(1)
	}
}
