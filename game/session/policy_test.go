package session

import (
	"testing"
	"time"
)

func TestDelayForAttemptGrowth(t *testing.T) {
	policy := ReconnectPolicy{
		InitialDelay: 1000 * time.Millisecond,
		MaxDelay:     32000 * time.Millisecond,
		MaxAttempts:  5,
		Factor:       2,
	}

	expected := []time.Duration{
		1000 * time.Millisecond,
		2000 * time.Millisecond,
		4000 * time.Millisecond,
		8000 * time.Millisecond,
		16000 * time.Millisecond,
		32000 * time.Millisecond,
	}

	for i, want := range expected {
		attempt := i + 1
		if got := policy.DelayForAttempt(attempt); got != want {
			t.Errorf("Expected delay %v for attempt %d, got %v", want, attempt, got)
		}
	}
}

func TestDelayForAttemptCapped(t *testing.T) {
	policy := DefaultPolicy()

	for attempt := 6; attempt <= 20; attempt++ {
		if got := policy.DelayForAttempt(attempt); got != policy.MaxDelay {
			t.Errorf("Expected attempt %d to be capped at %v, got %v", attempt, policy.MaxDelay, got)
		}
	}
}

func TestDelayForAttemptClampsLowAttempts(t *testing.T) {
	policy := DefaultPolicy()

	if got := policy.DelayForAttempt(0); got != policy.InitialDelay {
		t.Errorf("Expected attempt 0 to use the initial delay, got %v", got)
	}
	if got := policy.DelayForAttempt(-3); got != policy.InitialDelay {
		t.Errorf("Expected negative attempt to use the initial delay, got %v", got)
	}
}
