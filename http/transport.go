package http

import (
	"context"
	"crypto/tls"
	"io"
	"mime"
	"net/http"
	"net/http/httptrace"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Transport opens exchanges. It is the seam through which a dispatch talks
// to the network; tests substitute their own through Polyfills.Transport.
type Transport interface {
	Open(method, url string) (Exchange, error)
}

// Exchange is a single in-flight request.
type Exchange interface {
	// SetHeader sets a request header before Send.
	SetHeader(name, value string)

	// Send starts the exchange. body is nil when no body is sent. done is
	// called exactly once unless Abort is called first, in which case it may
	// not be called at all.
	Send(body *string, done func(Completion))

	// Abort cancels the exchange. It is safe to call at any time.
	Abort()
}

// Completion is what an exchange delivers when it finishes. Err is set for
// network-level failures, in which case the other fields are meaningless.
type Completion struct {
	Status  int
	Headers []HeaderField
	Body    string
	Timing  TimingInfo
	Err     error
}

// HTTPTransport carries exchanges over a net/http client and records
// per-phase timing with httptrace.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport returns a Transport using client, or a default client
// when nil. The client's own Timeout, if any, still applies.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPTransport{client: client}
}

// Open implements Transport.
func (t *HTTPTransport) Open(method, url string) (Exchange, error) {
	ctx, cancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "creating %s request for %s", method, url)
	}
	return &httpExchange{client: t.client, req: req, cancel: cancel}, nil
}

type httpExchange struct {
	client *http.Client
	req    *http.Request
	cancel context.CancelFunc
	once   sync.Once
}

func (x *httpExchange) SetHeader(name, value string) {
	if strings.EqualFold(name, "host") {
		x.req.Host = value
		return
	}
	x.req.Header.Set(name, value)
}

func (x *httpExchange) Send(body *string, done func(Completion)) {
	if body != nil {
		payload := *body
		x.req.Body = io.NopCloser(strings.NewReader(payload))
		x.req.ContentLength = int64(len(payload))
		x.req.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(payload)), nil
		}
	}
	go func() {
		c := x.roundTrip()
		x.cancel()
		done(c)
	}()
}

func (x *httpExchange) Abort() {
	x.once.Do(x.cancel)
}

func (x *httpExchange) roundTrip() Completion {
	timing := TimingInfo{
		StartTime: time.Now(),
	}

	var dnsStart, connectStart, tlsHandshakeStart time.Time
	var dnsDone, connectDone bool
	// lastPhaseEnd tracks the end of the last completed phase for TTFB.
	lastPhaseEnd := timing.StartTime

	trace := &httptrace.ClientTrace{
		DNSStart: func(httptrace.DNSStartInfo) {
			dnsStart = time.Now()
		},
		DNSDone: func(httptrace.DNSDoneInfo) {
			end := time.Now()
			timing.DNSLookupTime = end.Sub(dnsStart)
			dnsDone = true
			lastPhaseEnd = end
		},
		ConnectStart: func(network, addr string) {
			if dnsDone || connectStart.IsZero() {
				connectStart = time.Now()
			}
		},
		ConnectDone: func(network, addr string, err error) {
			if err == nil {
				end := time.Now()
				timing.TCPConnectTime = end.Sub(connectStart)
				connectDone = true
				lastPhaseEnd = end
			}
		},
		TLSHandshakeStart: func() {
			if connectDone {
				tlsHandshakeStart = time.Now()
			}
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			if err == nil {
				end := time.Now()
				timing.TLSHandshakeTime = end.Sub(tlsHandshakeStart)
				lastPhaseEnd = end
			}
		},
		GotFirstResponseByte: func() {
			timing.TimeToFirstByte = time.Since(lastPhaseEnd)
		},
	}

	req := x.req.WithContext(httptrace.WithClientTrace(x.req.Context(), trace))
	resp, err := x.client.Do(req)
	if err != nil {
		return Completion{Err: err}
	}
	defer resp.Body.Close()

	transferStart := time.Now()
	body, err := io.ReadAll(decodeBody(resp.Body, resp.Header.Get("Content-Type")))
	if err != nil {
		return Completion{Err: errors.Wrap(err, "reading response body")}
	}
	timing.ContentTransferTime = time.Since(transferStart)
	timing.TotalTime = time.Since(timing.StartTime)

	return Completion{
		Status:  resp.StatusCode,
		Headers: headerFields(resp.Header),
		Body:    string(body),
		Timing:  timing,
	}
}

// decodeBody converts r to UTF-8 when the content-type declares another
// charset, or for HTML that may declare one in a meta tag.
func decodeBody(r io.Reader, contentType string) io.Reader {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return r
	}
	cs := strings.ToLower(params["charset"])
	if cs == "utf-8" || cs == "utf8" || (cs == "" && mediaType != "text/html") {
		return r
	}
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return r
	}
	return decoded
}

// headerFields flattens h into fields ordered by name.
func headerFields(h http.Header) []HeaderField {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	fields := make([]HeaderField, 0, len(names))
	for _, name := range names {
		for _, v := range h[name] {
			fields = append(fields, HeaderField{Name: name, Value: v})
		}
	}
	return fields
}
