// Package flight collapses concurrent identical operations into one
// execution whose result is fanned out to every waiter.
//
// It exists for two call sites: the credential-refresh coordinator (a
// single-use refresh token must never be exchanged twice concurrently) and
// the favorites reconciliation pass (at most one pass per engine). Both
// share the same discipline, so both use the same cell.
package flight

import (
	"context"
	"sync"
)

type call[T any] struct {
	done chan struct{}
	val  T
}

// Cell holds at most one in-flight call. The zero value is ready to use.
type Cell[T any] struct {
	mu   sync.Mutex
	call *call[T]
}

// Do returns fn's result, sharing a single execution among all callers that
// arrive while it is in flight. joined reports whether this caller attached
// to an execution started by someone else.
//
// Ordering guarantee: the cell is cleared before the shared call settles, so
// a caller that arrives after the result is observable always starts a fresh
// execution — a failed attempt can never wedge the cell.
//
// fn runs on a context detached from the caller's: a waiter whose context is
// canceled abandons the wait (receiving the zero value) without aborting the
// shared attempt the other waiters depend on.
func (c *Cell[T]) Do(ctx context.Context, fn func(context.Context) T) (val T, joined bool) {
	c.mu.Lock()
	if cl := c.call; cl != nil {
		c.mu.Unlock()
		select {
		case <-cl.done:
			return cl.val, true
		case <-ctx.Done():
			var zero T
			return zero, true
		}
	}
	cl := &call[T]{done: make(chan struct{})}
	c.call = cl
	c.mu.Unlock()

	cl.val = fn(context.WithoutCancel(ctx))

	// Clear before settle: once done is closed no new waiter can attach to
	// this call, because the cell no longer points at it.
	c.mu.Lock()
	c.call = nil
	c.mu.Unlock()
	close(cl.done)

	return cl.val, false
}

// InFlight reports whether a call is currently running.
func (c *Cell[T]) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.call != nil
}
