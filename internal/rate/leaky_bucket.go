// Package rate paces repeated dispatches.
package rate

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// LeakyBucket schedules iterations at a fixed rate. Each call to Next
// returns when the next iteration should start; a time in the past means
// the caller is behind schedule and should go immediately.
//
// LeakyBucket is safe for concurrent use.
type LeakyBucket struct {
	clock       clock.Clock
	rate        float64 // iterations per second
	lastDrip    time.Time
	accumulated float64

	mu        sync.Mutex
	scheduled int64
	waited    time.Duration
}

// NewLeakyBucket returns a bucket allowing rate iterations per second. A
// non-positive rate is treated as 1. The first iteration is immediate.
func NewLeakyBucket(rate float64) *LeakyBucket {
	return NewLeakyBucketWithClock(rate, clock.New())
}

// NewLeakyBucketWithClock is NewLeakyBucket driven by c.
func NewLeakyBucketWithClock(rate float64, c clock.Clock) *LeakyBucket {
	if rate <= 0 {
		rate = 1.0
	}
	return &LeakyBucket{
		clock:       c,
		rate:        rate,
		lastDrip:    c.Now(),
		accumulated: 1.0,
	}
}

// Next reserves the next iteration and returns when it should start.
func (lb *LeakyBucket) Next() time.Time {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	now := lb.clock.Now()
	elapsed := now.Sub(lb.lastDrip).Seconds()
	if elapsed < 0 {
		elapsed = 0
	}

	// Iterations never accumulate beyond one, so a slow caller gets no burst.
	lb.accumulated += elapsed * lb.rate
	if lb.accumulated > 1.0 {
		lb.accumulated = 1.0
	}
	lb.scheduled++

	if lb.accumulated >= 1.0 {
		lb.accumulated -= 1.0
		lb.lastDrip = now
		return now
	}

	wait := time.Duration((1.0 - lb.accumulated) / lb.rate * float64(time.Second))
	next := now.Add(wait)
	lb.accumulated = 0
	// Waking at next must not count the same interval twice.
	lb.lastDrip = next
	lb.waited += wait
	return next
}

// Wait blocks until the next iteration may start or ctx is done.
func (lb *LeakyBucket) Wait(ctx context.Context) error {
	wait := lb.Next().Sub(lb.clock.Now())
	if wait <= 0 {
		return ctx.Err()
	}

	timer := lb.clock.Timer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats reports what the bucket has scheduled so far.
func (lb *LeakyBucket) Stats() Stats {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return Stats{
		Rate:      lb.rate,
		Scheduled: lb.scheduled,
		Waited:    lb.waited,
	}
}

// Stats describes a LeakyBucket.
type Stats struct {
	Rate      float64       `json:"rate"`
	Scheduled int64         `json:"scheduled"`
	Waited    time.Duration `json:"waited"`
}
