package stats

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yeahttp "github.com/wesleyorama2/yea/http"
)

func TestRecorder_Stats(t *testing.T) {
	r := NewRecorder()
	for i := 1; i <= 100; i++ {
		r.Record("list users", time.Duration(i)*time.Millisecond, i%10 != 0)
	}
	r.Record("create user", 5*time.Millisecond, true)

	stats := r.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "list users", stats[0].Name)
	assert.Equal(t, "create user", stats[1].Name)

	list := stats[0]
	assert.Equal(t, int64(100), list.Count)
	assert.Equal(t, int64(90), list.Success)
	assert.Equal(t, int64(10), list.Failed)
	assert.Equal(t, time.Millisecond, list.Min)
	assert.InDelta(t, float64(50*time.Millisecond), float64(list.P50), float64(time.Millisecond))
	assert.InDelta(t, float64(99*time.Millisecond), float64(list.P99), float64(time.Millisecond))
	assert.InDelta(t, float64(100*time.Millisecond), float64(list.Max), float64(time.Millisecond))
}

func TestRecorder_Total(t *testing.T) {
	r := NewRecorder()
	r.Record("a", 10*time.Millisecond, true)
	r.Record("b", 20*time.Millisecond, false)

	total := r.Total()
	assert.Equal(t, "total", total.Name)
	assert.Equal(t, int64(2), total.Count)
	assert.Equal(t, int64(1), total.Success)
	assert.Equal(t, int64(1), total.Failed)
}

func TestRecorder_ClampsAndConcurrency(t *testing.T) {
	r := NewRecorder()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				r.Record("x", 0, true)
			}
		}()
	}
	wg.Wait()

	stats := r.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, int64(400), stats[0].Count)
	assert.Equal(t, time.Microsecond, stats[0].Min)
}

func TestRecorder_Observer(t *testing.T) {
	r := NewRecorder()
	r.ObserveExchange("GET", 200, yeahttp.OutcomeResolved, time.Millisecond)
	r.ObserveExchange("GET", 0, yeahttp.OutcomeTimeout, time.Second)

	stats := r.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, "GET", stats[0].Name)
	assert.Equal(t, int64(1), stats[0].Success)
	assert.Equal(t, int64(1), stats[0].Failed)
}
