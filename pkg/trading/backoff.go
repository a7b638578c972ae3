package trading

import (
	"math/rand"
	"time"
)

const (
	defaultBackoffBase = 250 * time.Millisecond
	defaultBackoffMax  = 30 * time.Second
	backoffJitter      = 0.2
)

// calculateBackoff returns the reconnect delay for a 0-based attempt count:
// base * 2^attempt capped at max, with ±20% jitter so many clients do not
// reconnect in lockstep after a shared outage.
func calculateBackoff(attempt int, base, max time.Duration) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	delay := max
	// 2^20 * base already exceeds any sane cap; avoids shift overflow.
	if attempt < 20 {
		delay = base * time.Duration(1<<uint(attempt))
		if delay > max {
			delay = max
		}
	}

	jitter := 1 + backoffJitter*(2*rand.Float64()-1)
	return time.Duration(float64(delay) * jitter)
}
