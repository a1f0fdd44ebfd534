// Package stats aggregates request latencies into HDR histograms for the
// repeat and run summaries of the CLI.
package stats

import (
	"sort"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	yeahttp "github.com/wesleyorama2/yea/http"
)

const (
	// Range: 1 microsecond to 1 hour, 3 significant figures
	histogramMin     = 1
	histogramMax     = 3600000000
	histogramSigFigs = 3
)

// LatencyStats summarizes the latencies recorded under one name.
type LatencyStats struct {
	Name    string
	Count   int64
	Success int64
	Failed  int64
	Min     time.Duration
	Max     time.Duration
	Mean    time.Duration
	P50     time.Duration
	P90     time.Duration
	P95     time.Duration
	P99     time.Duration
}

type series struct {
	hist    *hdrhistogram.Histogram
	success int64
	failed  int64
}

// Recorder collects latencies per request name. It is safe for concurrent
// use and implements http.Observer, keyed by method.
type Recorder struct {
	mu     sync.Mutex
	series map[string]*series
	order  []string
}

var _ yeahttp.Observer = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{series: make(map[string]*series)}
}

// Record adds one sample under name.
func (r *Recorder) Record(name string, elapsed time.Duration, success bool) {
	micros := elapsed.Microseconds()
	if micros < histogramMin {
		micros = histogramMin
	}
	if micros > histogramMax {
		micros = histogramMax
	}

	// HDR histogram RecordValue is not thread-safe.
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.series[name]
	if !ok {
		s = &series{hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
		r.series[name] = s
		r.order = append(r.order, name)
	}
	s.hist.RecordValue(micros)
	if success {
		s.success++
	} else {
		s.failed++
	}
}

// ObserveExchange implements http.Observer.
func (r *Recorder) ObserveExchange(method string, status int, outcome string, elapsed time.Duration) {
	r.Record(method, elapsed, outcome == yeahttp.OutcomeResolved)
}

// Stats returns one summary per name in first-recorded order.
func (r *Recorder) Stats() []LatencyStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]LatencyStats, 0, len(r.order))
	for _, name := range r.order {
		result = append(result, summarize(name, r.series[name]))
	}
	return result
}

// Total merges every series into one summary named "total".
func (r *Recorder) Total() LatencyStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	merged := &series{hist: hdrhistogram.New(histogramMin, histogramMax, histogramSigFigs)}
	names := make([]string, 0, len(r.series))
	for name := range r.series {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.series[name]
		merged.hist.Merge(s.hist)
		merged.success += s.success
		merged.failed += s.failed
	}
	return summarize("total", merged)
}

func summarize(name string, s *series) LatencyStats {
	h := s.hist
	return LatencyStats{
		Name:    name,
		Count:   h.TotalCount(),
		Success: s.success,
		Failed:  s.failed,
		Min:     time.Duration(h.Min()) * time.Microsecond,
		Max:     time.Duration(h.Max()) * time.Microsecond,
		Mean:    time.Duration(h.Mean()) * time.Microsecond,
		P50:     time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P90:     time.Duration(h.ValueAtQuantile(90)) * time.Microsecond,
		P95:     time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:     time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
	}
}
