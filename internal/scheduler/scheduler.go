package scheduler

import (
	"sync"
	"time"

	"github.com/cvrdincake/m0-alerts/internal/alert"
)

// DurationFunc resolves how long an alert stays current. The queue itself is
// duration-policy-agnostic.
type DurationFunc func(a alert.Alert) time.Duration

// Observer is notified whenever the current alert changes. A nil alert means
// the queue went idle. It is invoked synchronously with the queue's internal
// state held, so it must not call back into the Queue.
type Observer func(current *alert.Alert)

// Queue serializes a multi-producer alert stream into an exclusive,
// duration-bounded presentation timeline: at most one alert is ever current,
// alerts become current strictly in arrival order, and each stays current for
// its resolved duration.
type Queue struct {
	mu      sync.Mutex
	clock   Clock
	resolve DurationFunc
	observe Observer

	pending []alert.Alert
	current *alert.Alert
	timer   Timer

	// generation invalidates in-flight timer callbacks: Clear and Close bump
	// it, so an expiry racing a reset can never mutate the new state.
	generation uint64
}

// New creates a Queue on the wall clock. The resolver may be nil, in which
// case the per-category display duration is used.
func New(resolve DurationFunc, observe Observer) *Queue {
	return NewWithClock(WallClock(), resolve, observe)
}

// NewWithClock creates a Queue with an injected clock for deterministic tests.
func NewWithClock(clock Clock, resolve DurationFunc, observe Observer) *Queue {
	if resolve == nil {
		resolve = func(a alert.Alert) time.Duration { return alert.DisplayDuration(a.Type) }
	}
	if observe == nil {
		observe = func(*alert.Alert) {}
	}
	return &Queue{clock: clock, resolve: resolve, observe: observe}
}

// Enqueue appends the alert to the tail of the pending sequence. If the queue
// is idle the alert immediately becomes current and its display timer starts.
func (q *Queue) Enqueue(a alert.Alert) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current != nil {
		q.pending = append(q.pending, a)
		return
	}
	q.promote(a)
}

// Clear cancels any running timer, discards the pending sequence and the
// current alert, and returns the queue to idle. This is an explicit operator
// action, not an automatic transition.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.generation++
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.pending = nil
	if q.current != nil {
		q.current = nil
		q.observe(nil)
	}
}

// Close tears the queue down. No timer callback fires after Close returns.
func (q *Queue) Close() {
	q.Clear()
}

// Current returns a copy of the alert being displayed, or nil when idle.
func (q *Queue) Current() *alert.Alert {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.current == nil {
		return nil
	}
	c := *q.current
	return &c
}

// PendingCount returns the number of alerts waiting behind the current one.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// promote makes a the current alert and starts its display timer. The caller
// must hold q.mu and q.current must be nil.
func (q *Queue) promote(a alert.Alert) {
	q.current = &a
	q.generation++
	gen := q.generation

	d := q.resolve(a)
	q.timer = q.clock.AfterFunc(d, func() { q.expire(gen) })
	q.observe(q.current)
}

// expire retires the current alert when its display duration elapses. The
// generation guard makes the retire-and-promote transition atomic with
// respect to Clear: a stale callback is a no-op.
func (q *Queue) expire(generation uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if generation != q.generation || q.current == nil {
		return
	}

	q.current = nil
	q.timer = nil

	if len(q.pending) == 0 {
		q.observe(nil)
		return
	}

	next := q.pending[0]
	q.pending = q.pending[1:]
	q.promote(next)
}
