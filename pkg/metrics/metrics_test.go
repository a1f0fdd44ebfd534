package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	yeahttp "github.com/wesleyorama2/yea/http"
)

func TestNewCollectorWithRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	collector := NewCollectorWithRegistry(registry)

	if collector.Registry() != registry {
		t.Error("Registry not set correctly")
	}
	if collector.requestsTotal == nil || collector.requestDuration == nil || collector.errorsTotal == nil {
		t.Error("metrics not initialized")
	}
}

func TestObserveExchange(t *testing.T) {
	collector := NewCollector()

	collector.ObserveExchange("GET", 200, yeahttp.OutcomeResolved, 10*time.Millisecond)
	collector.ObserveExchange("GET", 200, yeahttp.OutcomeResolved, 20*time.Millisecond)
	collector.ObserveExchange("POST", 500, yeahttp.OutcomeFailed, 5*time.Millisecond)
	collector.ObserveExchange("GET", 0, yeahttp.OutcomeTimeout, 100*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "200", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("POST", "500", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.errorsTotal.WithLabelValues("failed", "POST")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.errorsTotal.WithLabelValues("timeout", "GET")))
	assert.Equal(t, 2, testutil.CollectAndCount(collector.errorsTotal))
}

func TestObserveExchange_NilCollector(t *testing.T) {
	var collector *Collector
	assert.NotPanics(t, func() {
		collector.ObserveExchange("GET", 200, yeahttp.OutcomeResolved, time.Millisecond)
	})
}

func TestCollector_AsObserver(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	collector := NewCollector()
	api := yeahttp.New().BaseURL(server.URL).Polyfills(yeahttp.Polyfills{Observer: collector})

	_, err := api.Get("/ok").Do(context.Background())
	require.NoError(t, err)
	_, err = api.Get("/missing").Do(context.Background())
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "200", "resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.requestsTotal.WithLabelValues("GET", "404", "failed")))
}

func TestWriteToFile(t *testing.T) {
	collector := NewCollector()
	collector.ObserveExchange("GET", 200, yeahttp.OutcomeResolved, time.Millisecond)

	path := filepath.Join(t.TempDir(), "yea.prom")
	require.NoError(t, collector.WriteToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `yea_requests_total{method="GET",outcome="resolved",status_code="200"} 1`))
}
