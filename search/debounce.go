// Package search provides input-side flow control for interactive queries:
// a quiet-period debouncer that cancels superseded lookups and drops stale
// results so only the answer for the latest input is ever delivered.
//
// It is a client-side building block for callers driving the search API
// from a keystroke stream (a TUI, a CLI watch mode); server handlers answer
// every request they receive and do not use it.
package search

import (
	"context"
	"sync"
	"time"
)

// DefaultQuietPeriod is the pause after the last input before a lookup fires.
const DefaultQuietPeriod = 300 * time.Millisecond

// LookupFunc performs the actual query once the input settles. The context is
// cancelled when newer input supersedes the call.
type LookupFunc[T any] func(ctx context.Context, query string) (T, error)

// Outcome carries one delivered lookup result.
type Outcome[T any] struct {
	Query string
	Value T
	Err   error
}

// Debouncer coalesces a stream of input changes into at most one in-flight
// lookup. Each Submit resets the quiet-period timer; when it fires, any prior
// in-flight lookup is cancelled and a new one starts. Results from superseded
// lookups are discarded even if they land after cancellation.
type Debouncer[T any] struct {
	quiet  time.Duration
	lookup LookupFunc[T]
	out    chan Outcome[T]

	mu      sync.Mutex
	timer   *time.Timer
	cancel  context.CancelFunc
	gen     uint64
	stopped bool
}

// NewDebouncer creates a debouncer delivering outcomes on Results.
// quiet <= 0 selects DefaultQuietPeriod.
func NewDebouncer[T any](quiet time.Duration, lookup LookupFunc[T]) *Debouncer[T] {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Debouncer[T]{
		quiet:  quiet,
		lookup: lookup,
		out:    make(chan Outcome[T], 1),
	}
}

// Results delivers the outcome of each lookup that was still current when it
// finished.
func (d *Debouncer[T]) Results() <-chan Outcome[T] { return d.out }

// Submit registers new input, restarting the quiet-period countdown.
func (d *Debouncer[T]) Submit(query string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.gen++
	gen := d.gen

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, func() { d.fire(gen, query) })
}

// fire starts the lookup for query if no newer input arrived while waiting.
func (d *Debouncer[T]) fire(gen uint64, query string) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	if d.cancel != nil {
		d.cancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.mu.Unlock()

	go func() {
		value, err := d.lookup(ctx, query)

		d.mu.Lock()
		stale := d.stopped || gen != d.gen
		d.mu.Unlock()
		if stale || ctx.Err() != nil {
			return
		}

		// Keep only the freshest undelivered outcome.
		select {
		case d.out <- Outcome[T]{Query: query, Value: value, Err: err}:
		default:
			select {
			case <-d.out:
			default:
			}
			d.out <- Outcome[T]{Query: query, Value: value, Err: err}
		}
	}()
}

// Stop cancels any pending timer and in-flight lookup. The debouncer delivers
// nothing after Stop returns.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}
}
