package session

import (
	"time"

	"github.com/jpillora/backoff"
)

// ReconnectPolicy is the value type governing the reconnection loop:
// delayForAttempt(n) = min(InitialDelay * Factor^(n-1), MaxDelay), with at
// most MaxAttempts consecutive attempts before the session gives up.
type ReconnectPolicy struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	MaxAttempts  int
	Factor       float64
}

// DefaultPolicy returns the policy used by the stock client: 1s initial
// delay doubling up to 32s, five attempts.
func DefaultPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		InitialDelay: time.Second,
		MaxDelay:     32 * time.Second,
		MaxAttempts:  5,
		Factor:       2,
	}
}

// DelayForAttempt returns the backoff delay before the n-th attempt
// (1-based). Attempts below 1 are treated as the first.
func (p ReconnectPolicy) DelayForAttempt(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	b := backoff.Backoff{
		Min:    p.InitialDelay,
		Max:    p.MaxDelay,
		Factor: p.Factor,
	}
	return b.ForAttempt(float64(attempt - 1))
}
