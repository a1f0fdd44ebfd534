package rate

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLeakyBucket(t *testing.T) {
	tests := []struct {
		name     string
		rate     float64
		expected float64
	}{
		{"positive rate", 100.0, 100.0},
		{"zero rate defaults to 1", 0.0, 1.0},
		{"negative rate defaults to 1", -10.0, 1.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := NewLeakyBucket(tt.rate).Stats()
			if stats.Rate != tt.expected {
				t.Errorf("Stats().Rate = %v, want %v", stats.Rate, tt.expected)
			}
			if stats.Scheduled != 0 || stats.Waited != 0 {
				t.Errorf("Stats() = %+v, want nothing scheduled", stats)
			}
		})
	}
}

func TestLeakyBucket_Next(t *testing.T) {
	mock := clock.NewMock()
	lb := NewLeakyBucketWithClock(10, mock)
	start := mock.Now()

	assert.Equal(t, start, lb.Next(), "first iteration is immediate")
	assert.Equal(t, start.Add(100*time.Millisecond), lb.Next())

	// Caller sleeps until the scheduled time; the next slot is one interval later.
	mock.Add(100 * time.Millisecond)
	assert.Equal(t, start.Add(200*time.Millisecond), lb.Next())

	// Falling far behind does not build up a burst.
	mock.Add(5 * time.Second)
	now := mock.Now()
	assert.Equal(t, now, lb.Next())
	assert.Equal(t, now.Add(100*time.Millisecond), lb.Next())

	stats := lb.Stats()
	assert.Equal(t, int64(5), stats.Scheduled)
	assert.Equal(t, 300*time.Millisecond, stats.Waited)
}

func TestLeakyBucket_Wait(t *testing.T) {
	mock := clock.NewMock()
	lb := NewLeakyBucketWithClock(2, mock)

	require.NoError(t, lb.Wait(context.Background()))

	done := make(chan error, 1)
	go func() { done <- lb.Wait(context.Background()) }()

	// Advance until the waiter's timer fires.
	require.Eventually(t, func() bool {
		mock.Add(50 * time.Millisecond)
		select {
		case err := <-done:
			return assert.NoError(t, err)
		default:
			return false
		}
	}, time.Second, time.Millisecond)
}

func TestLeakyBucket_WaitRespectsContext(t *testing.T) {
	lb := NewLeakyBucketWithClock(1, clock.NewMock())
	lb.Next()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, lb.Wait(ctx), context.Canceled)
}
