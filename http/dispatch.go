package http

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Send dispatches the request and returns a promise of its response. If
// body is given it replaces the configured body for this dispatch only.
// GET and HEAD requests never carry a body.
//
// Send never blocks on the network. The promise resolves with the
// transformed response when the status is allowed, and rejects with a
// *RequestError otherwise.
//
// Example:
//
//	p := http.New().Post("https://api.example.com/items").Send(`{"name":"a"}`)
//	resp, err := p.Await(ctx)
func (r Request) Send(body ...string) Promise {
	cfg := r.config().clone()
	if len(body) > 0 {
		cfg.Body = body[0]
	}
	return dispatch(cfg)
}

// SendJSON sets a JSON body and sends the request.
func (r Request) SendJSON(data interface{}) Promise {
	next, err := r.JSON(data)
	if err != nil {
		return Rejected(r.config().Polyfills.Promise, err)
	}
	return next.Send()
}

// SendURLEncoded sets a form-encoded body and sends the request.
func (r Request) SendURLEncoded(data interface{}) Promise {
	next, err := r.URLEncoded(data)
	if err != nil {
		return Rejected(r.config().Polyfills.Promise, err)
	}
	return next.Send()
}

// Do sends the request and waits for the result. Cancelling ctx stops the
// wait; use Timeout to bound the exchange itself.
func (r Request) Do(ctx context.Context) (*Response, error) {
	return r.Send().Await(ctx)
}

// dispatch runs one exchange for cfg, which it owns.
func dispatch(cfg *RequestConfig) Promise {
	p := cfg.Polyfills
	return p.promise()(func(resolve func(*Response), reject func(error)) {
		d := &dispatcher{
			cfg:     cfg,
			resolve: resolve,
			reject:  reject,
			clock:   p.clock(),
			log:     p.logger(),
			obs:     p.Observer,
		}
		d.start()
	})
}

type dispatcher struct {
	cfg     *RequestConfig
	resolve func(*Response)
	reject  func(error)
	clock   clock.Clock
	log     logrus.FieldLogger
	obs     Observer
	url     string
	started time.Time
	settled int32
}

func (d *dispatcher) start() {
	cfg := d.cfg
	d.url = cfg.ComposedURL()
	d.started = d.clock.Now()

	d.log.WithFields(logrus.Fields{
		"method": cfg.Method,
		"url":    d.url,
	}).Debug("Dispatching request")

	exchange, err := cfg.Polyfills.transport().Open(cfg.Method, d.url)
	if err != nil {
		d.fail(0, OutcomeTransport, transportError(err))
		return
	}
	for name, value := range cfg.Headers {
		exchange.SetHeader(name, value)
	}

	var body *string
	if cfg.Method != "GET" && cfg.Method != "HEAD" {
		b := cfg.Body
		body = &b
	}

	var timer *clock.Timer
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		timer = d.clock.AfterFunc(timeout, func() {
			if !d.claim() {
				return
			}
			exchange.Abort()
			d.fail(0, OutcomeTimeout, requestTimeout(timeout))
		})
	}

	exchange.Send(body, func(c Completion) {
		if !d.claim() {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		d.complete(c)
	})
}

// claim reports whether the caller won the right to settle the dispatch.
func (d *dispatcher) claim() bool {
	return atomic.CompareAndSwapInt32(&d.settled, 0, 1)
}

func (d *dispatcher) complete(c Completion) {
	if c.Err != nil {
		d.fail(0, OutcomeTransport, transportError(c.Err))
		return
	}

	resp := &Response{
		Status:  c.Status,
		Headers: foldHeaders(c.Headers),
		Body:    c.Body,
		Timing:  c.Timing,
	}

	if !d.cfg.AllowedStatusCode.Allows(resp.Status) {
		d.fail(resp.Status, OutcomeFailed, requestFailed(resp))
		return
	}

	out, err := d.transform(resp)
	if err != nil {
		d.fail(resp.Status, OutcomeTransform, transformError(resp, err))
		return
	}

	d.finish(resp.Status, OutcomeResolved, nil)
	d.resolve(out)
}

// transform runs the transformer chain on a private copy of resp. Panics
// are reported as errors.
func (d *dispatcher) transform(resp *Response) (out *Response, err error) {
	defer func() {
		if p := recover(); p != nil {
			out, err = nil, errors.Errorf("response transformer panicked: %v", p)
		}
	}()
	return applyTransformers(resp.Clone(), d.cfg.ResponseTransformers)
}

func (d *dispatcher) fail(status int, outcome string, err error) {
	d.finish(status, outcome, err)
	d.reject(err)
}

func (d *dispatcher) finish(status int, outcome string, err error) {
	elapsed := d.clock.Now().Sub(d.started)
	entry := d.log.WithFields(logrus.Fields{
		"method":  d.cfg.Method,
		"url":     d.url,
		"status":  status,
		"outcome": outcome,
		"elapsed": elapsed,
	})
	if err != nil {
		entry.WithError(err).Debug("Request rejected")
	} else {
		entry.Debug("Request resolved")
	}
	if d.obs != nil {
		d.obs.ObserveExchange(d.cfg.Method, status, outcome, elapsed)
	}
}
