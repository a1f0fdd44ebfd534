package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// Formatter is responsible for formatting requests and responses in text format
type Formatter struct {
	Verbose bool
	NoColor bool
	scheme  *ColorScheme
}

// NewFormatter creates a new formatter with the given options
func NewFormatter(verbose, noColor bool) *Formatter {
	scheme := DefaultColorScheme()
	if noColor {
		scheme = NoColorScheme()
	}
	return &Formatter{
		Verbose: verbose,
		NoColor: noColor,
		scheme:  scheme,
	}
}

// FormatRequest formats a request configuration for display
func (f *Formatter) FormatRequest(cfg yeahttp.RequestConfig) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("▶ REQUEST: %s %s\n",
		f.scheme.Method.Sprint(cfg.Method),
		f.scheme.URL.Sprint(cfg.ComposedURL())))

	if f.Verbose || len(cfg.Headers) > 0 {
		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, cfg.Headers)
	}

	if f.Verbose && cfg.Timeout > 0 {
		buf.WriteString(fmt.Sprintf("  Timeout: %s\n", cfg.Timeout))
	}

	if cfg.Body != "" {
		buf.WriteString("  Body: ")
		buf.WriteString(formatJSONString(cfg.Body))
		buf.WriteString("\n")
	}

	return buf.String()
}

// FormatResponse formats a response for display
func (f *Formatter) FormatResponse(resp *yeahttp.Response) string {
	var buf strings.Builder

	buf.WriteString(fmt.Sprintf("◀ RESPONSE: %s (%dms)\n",
		f.statusColor(resp).Sprint(resp.Status),
		resp.Timing.TotalTime.Milliseconds()))

	if f.Verbose {
		t := resp.Timing
		buf.WriteString("  Timing:\n")
		buf.WriteString(fmt.Sprintf("    DNS Lookup:      %dms\n", t.DNSLookupTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TCP Connection:  %dms\n", t.TCPConnectTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    TLS Handshake:   %dms\n", t.TLSHandshakeTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Time to First Byte: %dms\n", t.TimeToFirstByte.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Content Transfer:  %dms\n", t.ContentTransferTime.Milliseconds()))
		buf.WriteString(fmt.Sprintf("    Total:           %dms\n", t.TotalTime.Milliseconds()))

		buf.WriteString("  Headers:\n")
		f.writeHeaders(&buf, resp.Headers)
	}

	if resp.Body != "" {
		buf.WriteString("  Body:\n")
		buf.WriteString(formatJSONString(resp.Body))
		buf.WriteString("\n")
	}

	if len(resp.Fields) > 0 {
		buf.WriteString("  Fields:\n")
		for _, name := range sortedKeys(resp.Fields) {
			buf.WriteString(fmt.Sprintf("    %s: %s\n",
				f.scheme.Highlight.Sprint(name), compactValue(resp.Fields[name])))
		}
	}

	return buf.String()
}

// FormatError formats a rejected dispatch. Errors carrying a response are
// followed by that response.
func (f *Formatter) FormatError(err error) string {
	var buf strings.Builder
	buf.WriteString(fmt.Sprintf("%s %s\n", ErrorIcon(f.NoColor), f.scheme.Error.Sprint(err.Error())))

	var reqErr *yeahttp.RequestError
	if errors.As(err, &reqErr) && reqErr.Response != nil {
		buf.WriteString(f.FormatResponse(reqErr.Response))
	}
	return buf.String()
}

// FormatValue formats a value extracted from a response. Strings are
// printed as they are.
func (f *Formatter) FormatValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s + "\n"
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v\n", v)
	}
	return string(data) + "\n"
}

func (f *Formatter) statusColor(resp *yeahttp.Response) *color.Color {
	switch {
	case resp.IsSuccess():
		return f.scheme.StatusOK
	case resp.IsRedirect():
		return f.scheme.StatusWarn
	default:
		return f.scheme.StatusError
	}
}

func (f *Formatter) writeHeaders(buf *strings.Builder, headers map[string]string) {
	for _, key := range sortedKeys(headers) {
		buf.WriteString(fmt.Sprintf("    %s: %s\n",
			f.scheme.HeaderKey.Sprint(key),
			f.scheme.HeaderValue.Sprint(headers[key])))
	}
}

// formatJSONString attempts to pretty-print a JSON string
func formatJSONString(s string) string {
	var prettyJSON bytes.Buffer
	err := json.Indent(&prettyJSON, []byte(s), "  ", "  ")
	if err != nil {
		return s
	}
	return prettyJSON.String()
}

func compactValue(v interface{}) string {
	if s, ok := v.(string); ok {
		return s
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
