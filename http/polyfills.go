package http

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Observer is notified once per settled dispatch. Outcome is one of the
// Outcome constants.
type Observer interface {
	ObserveExchange(method string, status int, outcome string, elapsed time.Duration)
}

// Dispatch outcomes reported to an Observer.
const (
	OutcomeResolved  = "resolved"
	OutcomeFailed    = "failed"
	OutcomeTimeout   = "timeout"
	OutcomeTransform = "transform_error"
	OutcomeTransport = "transport_error"
)

// Polyfills overrides the dependencies a dispatch would otherwise take from
// package defaults. Nil fields fall back to the default; the zero value
// overrides nothing.
type Polyfills struct {
	// Promise constructs the value returned by Send. Default NewFuture.
	Promise PromiseFactory

	// QueryEncoder constructs encoders for map-valued Query and URLEncoded.
	// Default NewComponentEncoder.
	QueryEncoder func() QueryEncoder

	// Transport carries out exchanges. Default is a net/http transport.
	Transport Transport

	// Clock arms timeouts. Default is the wall clock.
	Clock clock.Clock

	// Logger receives debug records about dispatches. Default logrus.StandardLogger().
	Logger logrus.FieldLogger

	// Observer is told about every settled dispatch. Default none.
	Observer Observer
}

var (
	defaultTransport Transport = NewHTTPTransport(nil)
	defaultClock               = clock.New()
)

func (p Polyfills) promise() PromiseFactory {
	if p.Promise != nil {
		return p.Promise
	}
	return newFuturePromise
}

func (p Polyfills) queryEncoder() func() QueryEncoder {
	if p.QueryEncoder != nil {
		return p.QueryEncoder
	}
	return NewComponentEncoder
}

func (p Polyfills) transport() Transport {
	if p.Transport != nil {
		return p.Transport
	}
	return defaultTransport
}

func (p Polyfills) clock() clock.Clock {
	if p.Clock != nil {
		return p.Clock
	}
	return defaultClock
}

func (p Polyfills) logger() logrus.FieldLogger {
	if p.Logger != nil {
		return p.Logger
	}
	return logrus.StandardLogger()
}
