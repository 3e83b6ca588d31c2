package service

import (
	"math/rand"
	"time"
)

// BackoffPolicy computes the delay before the next delivery attempt:
// min(base * 2^(attempt-1), cap) + uniform(0, jitterMax). The cap is hard;
// maxAttempts bounds total attempts, not the backoff curve.
type BackoffPolicy struct {
	Base      time.Duration
	Cap       time.Duration
	JitterMax time.Duration

	// rng is overridable for deterministic tests; nil uses the global source.
	rng func() float64
}

// Delay returns the backoff for the given attempt count (1-based: attempt 1
// is the first failure).
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	d := p.Base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= p.Cap {
			d = p.Cap
			break
		}
	}
	if d > p.Cap {
		d = p.Cap
	}

	if p.JitterMax > 0 {
		r := rand.Float64
		if p.rng != nil {
			r = p.rng
		}
		d += time.Duration(r() * float64(p.JitterMax))
	}
	return d
}
