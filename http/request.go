package http

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Request is an immutable request builder. Every method returns a new
// Request wrapping a new RequestConfig; the receiver is never modified, so
// a Request can be shared freely and used as a template for many requests.
//
// The zero Request is equivalent to New().
type Request struct {
	cfg *RequestConfig
}

// New returns a GET request with default settings: no URL, no headers, any
// 2xx status allowed, JSON responses decoded into Response.Data.
//
// Example:
//
//	api := http.New().BaseURL("https://api.example.com").Header("Accept", "application/json")
//	resp, err := api.Get("/users").Do(ctx)
func New() Request {
	return Request{cfg: defaultConfig()}
}

// Must returns r, panicking if err is non-nil. It is meant for chaining
// fallible builder methods in initializers and examples.
func Must(r Request, err error) Request {
	if err != nil {
		panic(err)
	}
	return r
}

func (r Request) config() *RequestConfig {
	if r.cfg == nil {
		return defaultConfig()
	}
	return r.cfg
}

func (r Request) with(update func(c *RequestConfig)) Request {
	c := r.config().clone()
	update(c)
	return Request{cfg: c}
}

// Method sets the HTTP method. The name is case-insensitive.
func (r Request) Method(name string) (Request, error) {
	method := strings.ToUpper(name)
	if !IsSupportedMethod(method) {
		return r, invalidArgument("Invalid method: %s", method)
	}
	return r.with(func(c *RequestConfig) { c.Method = method }), nil
}

func (r Request) withMethod(method, url string) Request {
	return r.with(func(c *RequestConfig) { c.Method = method }).URL(url)
}

// Get initializes a GET request to url.
func (r Request) Get(url string) Request { return r.withMethod("GET", url) }

// Post initializes a POST request to url.
func (r Request) Post(url string) Request { return r.withMethod("POST", url) }

// Put initializes a PUT request to url.
func (r Request) Put(url string) Request { return r.withMethod("PUT", url) }

// Delete initializes a DELETE request to url.
func (r Request) Delete(url string) Request { return r.withMethod("DELETE", url) }

// Patch initializes a PATCH request to url.
func (r Request) Patch(url string) Request { return r.withMethod("PATCH", url) }

// URL sets the request URL. Anything after the first '?' becomes the query,
// replacing the previous one; a URL without '?' clears the query.
func (r Request) URL(fullURL string) Request {
	path, query, _ := strings.Cut(fullURL, "?")
	return r.with(func(c *RequestConfig) {
		c.URL = path
		c.Query = query
	})
}

// URLParams sets the values substituted for ":name" placeholders in the URL
// when the request is sent.
func (r Request) URLParams(params map[string]string) Request {
	return r.with(func(c *RequestConfig) { c.URLParams = copyStringMap(params) })
}

// BaseURL sets the prefix for relative URLs. An empty string clears it.
func (r Request) BaseURL(baseURL string) Request {
	return r.with(func(c *RequestConfig) { c.BaseURL = baseURL })
}

// Query replaces the query string. A string is stored verbatim. Maps are
// encoded with keys in sorted order, *Params in insertion order and structs
// through their `url` tags; slice values repeat the key once per element.
func (r Request) Query(q interface{}) (Request, error) {
	query, err := encodeValues(q, r.config().Polyfills.queryEncoder())
	if err != nil {
		return r, err
	}
	return r.with(func(c *RequestConfig) { c.Query = query }), nil
}

// Headers replaces all headers. Values must be strings or numbers; names
// are lowercased.
func (r Request) Headers(object map[string]interface{}) (Request, error) {
	headers, err := normalizeHeaders(object)
	if err != nil {
		return r, err
	}
	return r.with(func(c *RequestConfig) { c.Headers = headers }), nil
}

// AmendHeaders merges object into the existing headers, overwriting names
// present in object.
func (r Request) AmendHeaders(object map[string]interface{}) (Request, error) {
	headers, err := normalizeHeaders(object)
	if err != nil {
		return r, err
	}
	return r.with(func(c *RequestConfig) {
		for k, v := range headers {
			c.Headers[k] = v
		}
	}), nil
}

// Header sets a single header. The name is lowercased and the value stored
// as given; unlike Headers and AmendHeaders nothing is validated here, so an
// invalid name or value is rejected by the transport when the request is
// dispatched.
func (r Request) Header(name, value string) Request {
	return r.with(func(c *RequestConfig) { c.Headers[strings.ToLower(name)] = value })
}

// UnsetHeader removes a header if present.
func (r Request) UnsetHeader(name string) Request {
	return r.with(func(c *RequestConfig) { delete(c.Headers, strings.ToLower(name)) })
}

// Body sets the raw request body. Numbers are stringified.
func (r Request) Body(data interface{}) (Request, error) {
	body, ok := numberString(data)
	if !ok {
		return r, invalidArgument("Unexpected type for request body")
	}
	return r.with(func(c *RequestConfig) { c.Body = body }), nil
}

// URLEncoded sets an application/x-www-form-urlencoded body encoded with the
// same rules as Query.
func (r Request) URLEncoded(data interface{}) (Request, error) {
	body, err := encodeValues(data, r.config().Polyfills.queryEncoder())
	if err != nil {
		return r, err
	}
	return r.with(func(c *RequestConfig) {
		c.Headers["content-type"] = "application/x-www-form-urlencoded"
		c.Body = body
	}), nil
}

// JSON sets a JSON body and the application/json content-type.
func (r Request) JSON(data interface{}) (Request, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return r, &RequestError{
			Kind:    KindInvalidArgument,
			Message: "Unable to encode JSON body",
			Cause:   err,
		}
	}
	body := strings.TrimSuffix(buf.String(), "\n")
	return r.with(func(c *RequestConfig) {
		c.Headers["content-type"] = "application/json"
		c.Body = body
	}), nil
}

// Timeout sets the deadline after which the exchange is aborted and the
// dispatch rejected. Zero clears the timeout.
func (r Request) Timeout(d time.Duration) (Request, error) {
	if d < 0 {
		return r, invalidArgument("Expected a non-negative duration for timeout")
	}
	return r.with(func(c *RequestConfig) { c.Timeout = d }), nil
}

// UnsetTimeout clears the timeout.
func (r Request) UnsetTimeout() Request {
	return r.with(func(c *RequestConfig) { c.Timeout = 0 })
}

// SetResponseTransformers replaces the transformer chain. An empty slice
// disables all transformation, including JSON decoding.
func (r Request) SetResponseTransformers(transformers []ResponseTransformer) (Request, error) {
	for _, t := range transformers {
		if t == nil {
			return r, invalidArgument("One or more response transformer is not a function")
		}
	}
	return r.with(func(c *RequestConfig) {
		c.ResponseTransformers = make([]ResponseTransformer, len(transformers))
		copy(c.ResponseTransformers, transformers)
	}), nil
}

// AddResponseTransformer appends t to the transformer chain.
func (r Request) AddResponseTransformer(t ResponseTransformer) (Request, error) {
	ts := append(r.config().clone().ResponseTransformers, t)
	return r.SetResponseTransformers(ts)
}

// SetAllowedStatusCode sets the status policy. spec may be an int (exact
// match), a *regexp.Regexp or pattern string (matched against the decimal
// status), a func(int) bool, or a StatusPolicy.
func (r Request) SetAllowedStatusCode(spec interface{}) (Request, error) {
	policy, err := toStatusPolicy(spec)
	if err != nil {
		return r, err
	}
	return r.with(func(c *RequestConfig) { c.AllowedStatusCode = policy }), nil
}

// Polyfills replaces the dependency overrides. The zero Polyfills clears them.
func (r Request) Polyfills(p Polyfills) Request {
	return r.with(func(c *RequestConfig) { c.Polyfills = p })
}

// ToObject returns a copy of the configuration sharing no maps or slices
// with the request.
func (r Request) ToObject() RequestConfig {
	return *r.config().clone()
}

// Config is an alias of ToObject.
func (r Request) Config() RequestConfig {
	return r.ToObject()
}

// Debug is an alias of ToObject.
func (r Request) Debug() RequestConfig {
	return r.ToObject()
}
