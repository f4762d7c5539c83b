package retry

import "time"

// MaxDelay caps every computed backoff.
const MaxDelay = 30 * time.Second

// ExponentialBackoff returns base * 2^attempt, capped at MaxDelay.
// Negative attempts are treated as the first attempt.
func ExponentialBackoff(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}
	// Past 2^30 any realistic base exceeds the cap; avoid the shift overflow.
	if attempt > 30 {
		return MaxDelay
	}
	d := base * (1 << attempt)
	if d <= 0 || d > MaxDelay {
		return MaxDelay
	}
	return d
}
