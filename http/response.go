package http

import (
	"encoding/json"
	"strings"
	"time"
)

// TimingInfo stores detailed timing information for an HTTP exchange.
// All durations represent the time spent in each phase of the request.
type TimingInfo struct {
	// StartTime is when the request started
	StartTime time.Time

	// DNSLookupTime is the time spent looking up the DNS address
	DNSLookupTime time.Duration

	// TCPConnectTime is the time spent establishing a TCP connection
	TCPConnectTime time.Duration

	// TLSHandshakeTime is the time spent performing the TLS handshake (for HTTPS)
	TLSHandshakeTime time.Duration

	// TimeToFirstByte (TTFB) is the time from connection established to receiving the first byte
	TimeToFirstByte time.Duration

	// ContentTransferTime is the time spent reading the response body
	ContentTransferTime time.Duration

	// TotalTime is the total time from request start to completion
	TotalTime time.Duration
}

// Response is the value a dispatch resolves with. Status, Headers and Body
// are always present; transformers may fill Data and Fields.
type Response struct {
	// Status is the HTTP status code (e.g., 200, 404, 500)
	Status int

	// Headers maps lowercase header names to values
	Headers map[string]string

	// Body is the raw response text
	Body string

	// Data is the decoded body, set by JSONResponseTransformer
	Data interface{}

	// Fields holds additional values derived by transformers
	Fields map[string]interface{}

	// Timing contains detailed timing information when the transport provides it
	Timing TimingInfo
}

// Clone returns a copy whose maps are not shared with r. Data and field
// values are copied shallowly.
func (r *Response) Clone() *Response {
	out := *r
	out.Headers = copyStringMap(r.Headers)
	if r.Fields != nil {
		out.Fields = make(map[string]interface{}, len(r.Fields))
		for k, v := range r.Fields {
			out.Fields[k] = v
		}
	}
	return &out
}

// Header returns the value of the named header, case-insensitively.
func (r *Response) Header(name string) string {
	return r.Headers[strings.ToLower(name)]
}

// SetField returns a copy of r with Fields[name] set to value.
func (r *Response) SetField(name string, value interface{}) *Response {
	out := r.Clone()
	if out.Fields == nil {
		out.Fields = make(map[string]interface{})
	}
	out.Fields[name] = value
	return out
}

// DecodeJSON unmarshals the body into v.
//
// Example:
//
//	var users []User
//	if err := resp.DecodeJSON(&users); err != nil {
//	    log.Fatal(err)
//	}
func (r *Response) DecodeJSON(v interface{}) error {
	return json.Unmarshal([]byte(r.Body), v)
}

// IsSuccess returns true if the response status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status < 300
}

// IsRedirect returns true if the response status code is in the 3xx range.
func (r *Response) IsRedirect() bool {
	return r.Status >= 300 && r.Status < 400
}

// IsClientError returns true if the response status code is in the 4xx range.
func (r *Response) IsClientError() bool {
	return r.Status >= 400 && r.Status < 500
}

// IsServerError returns true if the response status code is in the 5xx range.
func (r *Response) IsServerError() bool {
	return r.Status >= 500 && r.Status < 600
}

// IsError returns true if the response status code indicates an error (4xx or 5xx).
func (r *Response) IsError() bool {
	return r.IsClientError() || r.IsServerError()
}

// view is the generic shape prop paths are resolved against.
func (r *Response) view() map[string]interface{} {
	v := make(map[string]interface{}, len(r.Fields)+4)
	for k, f := range r.Fields {
		v[k] = f
	}
	v["status"] = r.Status
	v["headers"] = r.Headers
	v["body"] = r.Body
	if r.Data != nil {
		v["data"] = r.Data
	}
	return v
}
