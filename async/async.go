// Package async provides a single-assignment value for results that arrive
// later, such as geocoding answers and background tiles.
//
// An [Async] is either pending or resolved. It is not safe for concurrent
// use: resolution and subscription happen on the map's frame loop. Work that
// completes on another goroutine hands its result over through a [Mailbox],
// which the frame loop drains once per frame.
package async

import "sync"

// Async is a value that may not be available yet.
type Async[T any] struct {
	resolved    bool
	value       T
	subscribers []func(T)
}

// New returns a pending Async.
func New[T any]() *Async[T] {
	return &Async[T]{}
}

// Constant returns an Async that is already resolved with v.
func Constant[T any](v T) *Async[T] {
	return &Async[T]{resolved: true, value: v}
}

// Resolve sets the final value and fires every pending subscriber once.
// Only the first call has an effect; it reports whether the value was taken.
func (a *Async[T]) Resolve(v T) bool {
	if a.resolved {
		return false
	}
	a.resolved = true
	a.value = v
	subs := a.subscribers
	a.subscribers = nil
	for _, fn := range subs {
		fn(v)
	}
	return true
}

// OnResult registers fn to receive the value. If a is already resolved, fn
// runs immediately. fn is called at most once.
func (a *Async[T]) OnResult(fn func(T)) {
	if a.resolved {
		fn(a.value)
		return
	}
	a.subscribers = append(a.subscribers, fn)
}

// IsResolved reports whether the value is available.
func (a *Async[T]) IsResolved() bool {
	return a.resolved
}

// Value returns the value and true once resolved.
func (a *Async[T]) Value() (T, bool) {
	return a.value, a.resolved
}

// Map returns an Async holding f(value). f runs exactly once, when a
// resolves.
func Map[T, R any](a *Async[T], f func(T) R) *Async[R] {
	out := New[R]()
	a.OnResult(func(v T) {
		out.Resolve(f(v))
	})
	return out
}

// Then chains an asynchronous step: the result resolves with the value of
// the Async returned by f.
func Then[T, R any](a *Async[T], f func(T) *Async[R]) *Async[R] {
	out := New[R]()
	a.OnResult(func(v T) {
		f(v).OnResult(func(r R) {
			out.Resolve(r)
		})
	})
	return out
}

// Mailbox queues closures posted from any goroutine until the frame loop
// drains them.
type Mailbox struct {
	mu      sync.Mutex
	pending []func()
}

// Post queues fn for the next Drain. Safe for concurrent use.
func (m *Mailbox) Post(fn func()) {
	m.mu.Lock()
	m.pending = append(m.pending, fn)
	m.mu.Unlock()
}

// Drain runs every queued closure in posting order and returns how many ran.
// Closures posted while draining run on the next Drain.
func (m *Mailbox) Drain() int {
	m.mu.Lock()
	batch := m.pending
	m.pending = nil
	m.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of queued closures.
func (m *Mailbox) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// ResolveLater posts the resolution of a with v to m.
func ResolveLater[T any](m *Mailbox, a *Async[T], v T) {
	m.Post(func() {
		a.Resolve(v)
	})
}
