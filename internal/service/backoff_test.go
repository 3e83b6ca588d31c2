package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffPolicy_ExponentialGrowth(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: time.Minute, rng: func() float64 { return 0 }}

	assert.Equal(t, 1*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 4*time.Second, p.Delay(3))
	assert.Equal(t, 8*time.Second, p.Delay(4))
}

func TestBackoffPolicy_HardCap(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: 10 * time.Second, rng: func() float64 { return 0 }}

	assert.Equal(t, 8*time.Second, p.Delay(4))
	assert.Equal(t, 10*time.Second, p.Delay(5))
	assert.Equal(t, 10*time.Second, p.Delay(6))
	assert.Equal(t, 10*time.Second, p.Delay(60), "cap holds for arbitrarily late attempts")
}

func TestBackoffPolicy_MonotoneAndAtLeastBase(t *testing.T) {
	p := BackoffPolicy{Base: 500 * time.Millisecond, Cap: 30 * time.Second, JitterMax: time.Second}

	prevNoJitter := time.Duration(0)
	for attempt := 1; attempt <= 12; attempt++ {
		bare := BackoffPolicy{Base: p.Base, Cap: p.Cap, rng: func() float64 { return 0 }}.Delay(attempt)
		assert.GreaterOrEqual(t, bare, p.Base)
		assert.GreaterOrEqual(t, bare, prevNoJitter, "delay must be non-decreasing in attempt")
		prevNoJitter = bare

		withJitter := p.Delay(attempt)
		assert.GreaterOrEqual(t, withJitter, bare)
		assert.Less(t, withJitter, bare+p.JitterMax+time.Millisecond)
	}
}

func TestBackoffPolicy_JitterBounds(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: time.Minute, JitterMax: 2 * time.Second}

	for i := 0; i < 100; i++ {
		d := p.Delay(1)
		assert.GreaterOrEqual(t, d, time.Second)
		assert.Less(t, d, 3*time.Second)
	}
}

func TestBackoffPolicy_DegenerateAttempt(t *testing.T) {
	p := BackoffPolicy{Base: time.Second, Cap: time.Minute, rng: func() float64 { return 0 }}
	assert.Equal(t, time.Second, p.Delay(0))
	assert.Equal(t, time.Second, p.Delay(-3))
}
