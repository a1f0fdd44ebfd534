package output

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/wesleyorama2/yea/internal/stats"
)

// RunResult is the outcome of one request executed by the run command.
type RunResult struct {
	Name     string
	Method   string
	URL      string
	Status   int
	Duration time.Duration
	Err      error
}

// Passed reports whether the request resolved.
func (r RunResult) Passed() bool {
	return r.Err == nil
}

// WriteRunSummary renders one row per executed request followed by a
// passed/failed count.
func WriteRunSummary(w io.Writer, results []RunResult, noColor bool) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"", "Request", "Method", "Status", "Time", "Error"})

	passed := 0
	for _, r := range results {
		mark := ErrorIcon(noColor)
		errText := ""
		if r.Passed() {
			mark = SuccessIcon(noColor)
			passed++
		} else {
			errText = r.Err.Error()
		}

		status := "-"
		if r.Status > 0 {
			status = strconv.Itoa(r.Status)
		}

		if err := table.Append([]string{
			mark,
			r.Name,
			r.Method,
			status,
			formatDurationShort(r.Duration),
			errText,
		}); err != nil {
			return err
		}
	}

	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%d passed, %d failed\n", passed, len(results)-passed)
	return err
}

// WriteLatencyTable renders latency percentiles, one row per series.
func WriteLatencyTable(w io.Writer, rows []stats.LatencyStats) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"Name", "Count", "OK", "Failed", "Min", "Mean", "P50", "P90", "P95", "P99", "Max"})

	for _, s := range rows {
		if err := table.Append([]string{
			s.Name,
			strconv.FormatInt(s.Count, 10),
			strconv.FormatInt(s.Success, 10),
			strconv.FormatInt(s.Failed, 10),
			formatDurationShort(s.Min),
			formatDurationShort(s.Mean),
			formatDurationShort(s.P50),
			formatDurationShort(s.P90),
			formatDurationShort(s.P95),
			formatDurationShort(s.P99),
			formatDurationShort(s.Max),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

// formatDurationShort formats a duration in a short format.
func formatDurationShort(d time.Duration) string {
	if d < time.Microsecond {
		return "0ms"
	}
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	return fmt.Sprintf("%.1fm", d.Minutes())
}
