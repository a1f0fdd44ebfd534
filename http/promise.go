package http

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Executor starts asynchronous work and eventually calls resolve or reject.
type Executor func(resolve func(*Response), reject func(error))

// PromiseFactory constructs a Promise around an executor. The executor must
// be invoked before the factory returns.
type PromiseFactory func(exec Executor) Promise

// Promise is the eventual result of a dispatch. Implementations settle at
// most once; later resolve or reject calls are ignored.
type Promise interface {
	// Await blocks until the promise settles or ctx is done. A done ctx stops
	// the wait only; it does not cancel the exchange.
	Await(ctx context.Context) (*Response, error)

	// Done is closed once the promise has settled.
	Done() <-chan struct{}

	// Then registers callbacks invoked from a new goroutine after settlement.
	// Either callback may be nil.
	Then(onResolved func(*Response), onRejected func(error))
}

// Future is the default Promise implementation.
type Future struct {
	once sync.Once
	done chan struct{}
	resp *Response
	err  error
}

// NewFuture runs exec synchronously and returns the Future it settles.
// A panic inside exec rejects the Future.
func NewFuture(exec Executor) *Future {
	f := &Future{done: make(chan struct{})}
	func() {
		defer func() {
			if p := recover(); p != nil {
				f.settle(nil, errors.Errorf("executor panicked: %v", p))
			}
		}()
		exec(f.resolve, f.reject)
	}()
	return f
}

func newFuturePromise(exec Executor) Promise {
	return NewFuture(exec)
}

// Rejected returns a promise, built by factory, that is already rejected with err.
func Rejected(factory PromiseFactory, err error) Promise {
	if factory == nil {
		factory = newFuturePromise
	}
	return factory(func(_ func(*Response), reject func(error)) {
		reject(err)
	})
}

func (f *Future) resolve(resp *Response) {
	f.settle(resp, nil)
}

func (f *Future) reject(err error) {
	if err == nil {
		err = errors.New("promise rejected with nil error")
	}
	f.settle(nil, err)
}

func (f *Future) settle(resp *Response, err error) {
	f.once.Do(func() {
		f.resp, f.err = resp, err
		close(f.done)
	})
}

// Await implements Promise.
func (f *Future) Await(ctx context.Context) (*Response, error) {
	select {
	case <-f.done:
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Done implements Promise.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Then implements Promise.
func (f *Future) Then(onResolved func(*Response), onRejected func(error)) {
	go func() {
		<-f.done
		if f.err != nil {
			if onRejected != nil {
				onRejected(f.err)
			}
			return
		}
		if onResolved != nil {
			onResolved(f.resp)
		}
	}()
}

// Settled reports whether the future has settled, without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
