package output

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	yeahttp "github.com/wesleyorama2/yea/http"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable text format
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
)

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(name)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown output format: %s (expected text, json or yaml)", name)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	FormatRequest(cfg yeahttp.RequestConfig) string
	FormatResponse(resp *yeahttp.Response) string
	FormatError(err error) string
	FormatValue(v interface{}) string
}

// RequestData represents the structured data of a request
type RequestData struct {
	Method    string            `json:"method" yaml:"method"`
	URL       string            `json:"url" yaml:"url"`
	Headers   map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      interface{}       `json:"body,omitempty" yaml:"body,omitempty"`
	TimeoutMs int64             `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
	Timestamp string            `json:"timestamp" yaml:"timestamp"`
}

// TimingData represents detailed timing information for a request
type TimingData struct {
	DNSLookup       int64 `json:"dnsLookupMs,omitempty" yaml:"dnsLookupMs,omitempty"`
	TCPConnection   int64 `json:"tcpConnectionMs,omitempty" yaml:"tcpConnectionMs,omitempty"`
	TLSHandshake    int64 `json:"tlsHandshakeMs,omitempty" yaml:"tlsHandshakeMs,omitempty"`
	TimeToFirstByte int64 `json:"timeToFirstByteMs,omitempty" yaml:"timeToFirstByteMs,omitempty"`
	ContentTransfer int64 `json:"contentTransferMs,omitempty" yaml:"contentTransferMs,omitempty"`
	Total           int64 `json:"totalMs" yaml:"totalMs"`
}

// ResponseData represents the structured data of a response
type ResponseData struct {
	Status    int                    `json:"status" yaml:"status"`
	Headers   map[string]string      `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body      interface{}            `json:"body,omitempty" yaml:"body,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty" yaml:"fields,omitempty"`
	Timing    *TimingData            `json:"timing,omitempty" yaml:"timing,omitempty"`
	Timestamp string                 `json:"timestamp" yaml:"timestamp"`
}

// ErrorData represents a rejected dispatch
type ErrorData struct {
	Error    string        `json:"error" yaml:"error"`
	Kind     string        `json:"kind,omitempty" yaml:"kind,omitempty"`
	Status   int           `json:"status,omitempty" yaml:"status,omitempty"`
	Response *ResponseData `json:"response,omitempty" yaml:"response,omitempty"`
}

func requestData(cfg yeahttp.RequestConfig) RequestData {
	data := RequestData{
		Method:    cfg.Method,
		URL:       cfg.ComposedURL(),
		Headers:   cfg.Headers,
		TimeoutMs: cfg.Timeout.Milliseconds(),
		Timestamp: time.Now().Format(time.RFC3339),
	}
	if cfg.Body != "" {
		data.Body = parseBody(cfg.Body)
	}
	return data
}

func responseData(resp *yeahttp.Response, verbose bool) *ResponseData {
	data := &ResponseData{
		Status:    resp.Status,
		Headers:   resp.Headers,
		Fields:    resp.Fields,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	switch {
	case resp.Data != nil:
		data.Body = resp.Data
	case resp.Body != "":
		data.Body = parseBody(resp.Body)
	}
	if verbose {
		t := resp.Timing
		data.Timing = &TimingData{
			DNSLookup:       t.DNSLookupTime.Milliseconds(),
			TCPConnection:   t.TCPConnectTime.Milliseconds(),
			TLSHandshake:    t.TLSHandshakeTime.Milliseconds(),
			TimeToFirstByte: t.TimeToFirstByte.Milliseconds(),
			ContentTransfer: t.ContentTransferTime.Milliseconds(),
			Total:           t.TotalTime.Milliseconds(),
		}
	}
	return data
}

func errorData(err error, verbose bool) ErrorData {
	data := ErrorData{Error: err.Error()}
	var reqErr *yeahttp.RequestError
	if errors.As(err, &reqErr) {
		data.Kind = string(reqErr.Kind)
		data.Status = reqErr.Status
		if reqErr.Response != nil {
			data.Response = responseData(reqErr.Response, verbose)
		}
	}
	return data
}

// parseBody returns decoded JSON when s is JSON and s itself otherwise.
func parseBody(s string) interface{} {
	var body interface{}
	if err := json.Unmarshal([]byte(s), &body); err != nil {
		return s
	}
	return body
}

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Verbose bool
	Pretty  bool
}

func (f *JSONFormatter) marshal(v interface{}) string {
	var output []byte
	var err error
	if f.Pretty {
		output, err = json.MarshalIndent(v, "", "  ")
	} else {
		output, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Sprintf(`{"error":"Failed to marshal output: %s"}`, err) + "\n"
	}
	return string(output) + "\n"
}

// FormatRequest formats a request as JSON
func (f *JSONFormatter) FormatRequest(cfg yeahttp.RequestConfig) string {
	return f.marshal(requestData(cfg))
}

// FormatResponse formats a response as JSON
func (f *JSONFormatter) FormatResponse(resp *yeahttp.Response) string {
	return f.marshal(responseData(resp, f.Verbose))
}

// FormatError formats a rejected dispatch as JSON
func (f *JSONFormatter) FormatError(err error) string {
	return f.marshal(errorData(err, f.Verbose))
}

// FormatValue formats an extracted value as JSON
func (f *JSONFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// YAMLFormatter formats output as YAML documents
type YAMLFormatter struct {
	Verbose bool
}

func (f *YAMLFormatter) marshal(v interface{}) string {
	output, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: Failed to marshal output: %s\n", err)
	}
	return "---\n" + string(output)
}

// FormatRequest formats a request as YAML
func (f *YAMLFormatter) FormatRequest(cfg yeahttp.RequestConfig) string {
	return f.marshal(requestData(cfg))
}

// FormatResponse formats a response as YAML
func (f *YAMLFormatter) FormatResponse(resp *yeahttp.Response) string {
	return f.marshal(responseData(resp, f.Verbose))
}

// FormatError formats a rejected dispatch as YAML
func (f *YAMLFormatter) FormatError(err error) string {
	return f.marshal(errorData(err, f.Verbose))
}

// FormatValue formats an extracted value as YAML
func (f *YAMLFormatter) FormatValue(v interface{}) string {
	return f.marshal(v)
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, verbose bool, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Verbose: verbose, Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{Verbose: verbose}
	default:
		return NewFormatter(verbose, noColor)
	}
}
