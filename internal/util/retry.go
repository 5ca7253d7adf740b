// Package util provides small shared helpers for the vault pipeline.
package util

import (
	"math/rand"
	"time"
)

// Backoff returns the exponential backoff delay for a retry attempt,
// with random jitter of up to ±25%. The base delay doubles each
// attempt and is capped at 30 seconds.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	delay := base * time.Duration(1<<uint(attempt))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}
	jitter := time.Duration(rand.Int63n(int64(delay)/2)) - delay/4
	return delay + jitter
}
