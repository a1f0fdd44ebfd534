package http

import (
	"time"
)

// RequestConfig describes a request to be made. A RequestConfig held by a
// Request is never modified; every builder method works on a copy.
type RequestConfig struct {
	// Method is the uppercase HTTP method.
	Method string

	// BaseURL is prepended to relative URLs.
	BaseURL string

	// URL is the request path or an absolute URL, without query.
	URL string

	// URLParams replaces ":name" placeholders in URL when the request is sent.
	URLParams map[string]string

	// Query is the encoded query string, without the leading '?'.
	Query string

	// Headers maps lowercase header names to values.
	Headers map[string]string

	// Body is the raw request body.
	Body string

	// Timeout aborts the exchange when it elapses. Zero means no timeout.
	Timeout time.Duration

	// AllowedStatusCode decides which statuses resolve the dispatch.
	AllowedStatusCode StatusPolicy

	// ResponseTransformers are applied in order to successful responses.
	ResponseTransformers []ResponseTransformer

	// Polyfills overrides the dependencies used during dispatch.
	Polyfills Polyfills
}

var supportedMethods = map[string]bool{
	"GET":     true,
	"POST":    true,
	"PUT":     true,
	"DELETE":  true,
	"PATCH":   true,
	"HEAD":    true,
	"OPTIONS": true,
}

// IsSupportedMethod reports whether method (uppercase) can be configured.
func IsSupportedMethod(method string) bool {
	return supportedMethods[method]
}

func defaultConfig() *RequestConfig {
	return &RequestConfig{
		Method:               "GET",
		URLParams:            map[string]string{},
		Headers:              map[string]string{},
		AllowedStatusCode:    DefaultStatusPolicy(),
		ResponseTransformers: []ResponseTransformer{JSONResponseTransformer},
	}
}

// clone returns a copy sharing no maps or slices with c.
func (c *RequestConfig) clone() *RequestConfig {
	out := *c
	out.URLParams = copyStringMap(c.URLParams)
	out.Headers = copyStringMap(c.Headers)
	out.ResponseTransformers = make([]ResponseTransformer, len(c.ResponseTransformers))
	copy(out.ResponseTransformers, c.ResponseTransformers)
	return &out
}

// ComposedURL is the URL the request is sent to.
func (c RequestConfig) ComposedURL() string {
	return ComposeURL(c.BaseURL, ExpandURLParams(c.URL, c.URLParams), c.Query)
}

func copyStringMap(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
