package http

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrorKind classifies a RequestError.
type ErrorKind string

const (
	// KindInvalidArgument is returned synchronously by builder methods given malformed input.
	KindInvalidArgument ErrorKind = "invalid_argument"

	// KindRequestFailed rejects a dispatch whose response status is not allowed.
	KindRequestFailed ErrorKind = "request_failed"

	// KindRequestTimeout rejects a dispatch whose deadline elapsed before completion.
	KindRequestTimeout ErrorKind = "request_timeout"

	// KindTransform rejects a dispatch whose response processing failed.
	KindTransform ErrorKind = "transform_error"

	// KindTransport rejects a dispatch the transport could not carry out.
	KindTransport ErrorKind = "transport_error"
)

// Sentinels for errors.Is. Matching is by kind only.
var (
	ErrInvalidArgument = &RequestError{Kind: KindInvalidArgument}
	ErrRequestFailed   = &RequestError{Kind: KindRequestFailed}
	ErrRequestTimeout  = &RequestError{Kind: KindRequestTimeout}
	ErrTransform       = &RequestError{Kind: KindTransform}
	ErrTransport       = &RequestError{Kind: KindTransport}
)

// RequestError is the error type produced by builder methods and by dispatch.
// Response is set when a response was received before the failure.
type RequestError struct {
	Kind     ErrorKind
	Message  string
	Status   int
	Response *Response
	Timeout  time.Duration
	Cause    error
}

// Error implements error interface.
func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *RequestError) Is(target error) bool {
	if e == nil {
		return false
	}
	if t, ok := target.(*RequestError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is a RequestError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.Kind == kind
	}
	return false
}

func invalidArgument(format string, args ...interface{}) *RequestError {
	return &RequestError{
		Kind:    KindInvalidArgument,
		Message: fmt.Sprintf(format, args...),
	}
}

func requestFailed(resp *Response) *RequestError {
	return &RequestError{
		Kind:     KindRequestFailed,
		Message:  fmt.Sprintf("Request failed with status %d", resp.Status),
		Status:   resp.Status,
		Response: resp,
	}
}

func requestTimeout(timeout time.Duration) *RequestError {
	return &RequestError{
		Kind:    KindRequestTimeout,
		Message: fmt.Sprintf("Request failed due to timeout (%dms)", timeout.Milliseconds()),
		Timeout: timeout,
	}
}

func transformError(resp *Response, cause error) *RequestError {
	e := &RequestError{
		Kind:     KindTransform,
		Message:  "Response processing failed",
		Response: resp,
		Cause:    cause,
	}
	if resp != nil {
		e.Status = resp.Status
	}
	return e
}

func transportError(cause error) *RequestError {
	return &RequestError{
		Kind:    KindTransport,
		Message: "Request could not be sent",
		Cause:   cause,
	}
}
