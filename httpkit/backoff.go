package httpkit

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// backoff computes exponential delays with optional jitter.
type backoff struct {
	base   time.Duration
	max    time.Duration
	jitter float64

	mu  sync.Mutex
	rnd *rand.Rand
}

func newBackoff(base, max time.Duration, jitter float64) *backoff {
	if base <= 0 {
		base = 50 * time.Millisecond
	}
	if max <= 0 {
		max = time.Second
	}
	if jitter < 0 {
		jitter = 0
	}
	return &backoff{
		base:   base,
		max:    max,
		jitter: jitter,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// forAttempt returns the delay before retry number attempt (0 based).
func (b *backoff) forAttempt(attempt int) time.Duration {
	delay := b.base
	if attempt > 0 {
		delay = time.Duration(float64(b.base) * float64(uint(1)<<uint(attempt)))
	}
	if delay <= 0 || delay > b.max {
		delay = b.max
	}
	return b.addJitter(delay)
}

func (b *backoff) addJitter(delay time.Duration) time.Duration {
	if b.jitter == 0 || delay <= 0 {
		return delay
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	factor := 1 + (b.rnd.Float64()*2-1)*math.Min(b.jitter, 1)
	if factor < 0 {
		factor = 0
	}
	return time.Duration(float64(delay) * factor)
}
