package output

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/wesleyorama2/yea/internal/stats"
)

func TestWriteRunSummary(t *testing.T) {
	var buf bytes.Buffer
	results := []RunResult{
		{Name: "getUser", Method: "GET", Status: 200, Duration: 12 * time.Millisecond},
		{Name: "createPost", Method: "POST", Status: 500, Duration: 1500 * time.Millisecond, Err: errors.New("Request failed with status 500")},
		{Name: "slow", Method: "GET", Duration: 2 * time.Second, Err: errors.New("Request failed due to timeout (2000ms)")},
	}

	if err := WriteRunSummary(&buf, results, true); err != nil {
		t.Fatalf("WriteRunSummary() error = %v", err)
	}

	output := buf.String()
	assertContainsAll(t, output,
		"getUser", "12ms", "✓",
		"createPost", "500", "1.50s", "Request failed with status 500",
		"slow", "timeout",
		"1 passed, 2 failed",
	)
	if strings.Count(output, "✗") != 2 {
		t.Errorf("Expected two failure marks, got:\n%s", output)
	}
}

func TestWriteLatencyTable(t *testing.T) {
	recorder := stats.NewRecorder()
	for i := 1; i <= 10; i++ {
		recorder.Record("list users", time.Duration(i)*time.Millisecond, true)
	}
	recorder.Record("list users", 900*time.Microsecond, false)

	var buf bytes.Buffer
	rows := append(recorder.Stats(), recorder.Total())
	if err := WriteLatencyTable(&buf, rows); err != nil {
		t.Fatalf("WriteLatencyTable() error = %v", err)
	}

	assertContainsAll(t, buf.String(), "list users", "total", "11", "10ms", "900µs")
}

func TestFormatDurationShort(t *testing.T) {
	tests := []struct {
		input    time.Duration
		expected string
	}{
		{0, "0ms"},
		{500 * time.Microsecond, "500µs"},
		{42 * time.Millisecond, "42ms"},
		{2500 * time.Millisecond, "2.50s"},
		{90 * time.Second, "1.5m"},
	}

	for _, tt := range tests {
		if got := formatDurationShort(tt.input); got != tt.expected {
			t.Errorf("formatDurationShort(%v) = %s, want %s", tt.input, got, tt.expected)
		}
	}
}
