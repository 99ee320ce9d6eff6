// Package ownership
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Exclusive and reference-counted handles with deterministic drop hooks.
//
// Go memory is reclaimed by the collector, so these handles do not free
// anything themselves. They model who is responsible for a resource and run
// a drop hook exactly once when that responsibility ends: when the Unique
// owner releases it, or when the last Shared reference goes away.
package ownership

import "sync/atomic"

// Unique is an exclusive owner. Ownership moves with Move; the source
// handle becomes empty.
type Unique[T any] struct {
	val  *T
	drop func(*T)
}

// NewUnique takes exclusive ownership of v. drop may be nil.
func NewUnique[T any](v *T, drop func(*T)) *Unique[T] {
	return &Unique[T]{val: v, drop: drop}
}

// Get returns the owned value, or nil once moved or released.
func (u *Unique[T]) Get() *T { return u.val }

// Valid reports whether the handle still owns a value.
func (u *Unique[T]) Valid() bool { return u.val != nil }

// Move transfers ownership to a new handle.
func (u *Unique[T]) Move() *Unique[T] {
	out := &Unique[T]{val: u.val, drop: u.drop}
	u.val, u.drop = nil, nil
	return out
}

// Release ends ownership and runs the drop hook. Releasing an empty handle
// is a no-op.
func (u *Unique[T]) Release() {
	v, drop := u.val, u.drop
	u.val, u.drop = nil, nil
	if v != nil && drop != nil {
		drop(v)
	}
}

// control block shared by every Shared and Weak handle of one value.
type block[T any] struct {
	val    *T
	drop   func(*T)
	strong atomic.Int64
	weak   atomic.Int64
}

// Shared is one strong reference to a reference-counted value.
type Shared[T any] struct {
	b        *block[T]
	released atomic.Bool
}

// NewShared creates the first strong reference to v. drop runs once when
// the strong count reaches zero.
func NewShared[T any](v *T, drop func(*T)) *Shared[T] {
	b := &block[T]{val: v, drop: drop}
	b.strong.Store(1)
	return &Shared[T]{b: b}
}

// Get returns the shared value, or nil if this handle was released.
func (s *Shared[T]) Get() *T {
	if s.released.Load() {
		return nil
	}
	return s.b.val
}

// Clone returns a new strong reference.
func (s *Shared[T]) Clone() *Shared[T] {
	if s.released.Load() {
		return nil
	}
	s.b.strong.Add(1)
	return &Shared[T]{b: s.b}
}

// UseCount returns the current number of strong references.
func (s *Shared[T]) UseCount() int64 {
	return s.b.strong.Load()
}

// Release drops this reference. Releasing the same handle twice is a no-op.
func (s *Shared[T]) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	if s.b.strong.Add(-1) == 0 {
		v := s.b.val
		s.b.val = nil
		if s.b.drop != nil {
			s.b.drop(v)
		}
	}
}

// Downgrade returns a non-owning observer of the value.
func (s *Shared[T]) Downgrade() *Weak[T] {
	s.b.weak.Add(1)
	return &Weak[T]{b: s.b}
}

// Weak observes a Shared value without keeping it alive.
type Weak[T any] struct {
	b *block[T]
}

// Upgrade returns a new strong reference while the value is alive.
func (w *Weak[T]) Upgrade() (*Shared[T], bool) {
	for {
		n := w.b.strong.Load()
		if n == 0 {
			return nil, false
		}
		if w.b.strong.CompareAndSwap(n, n+1) {
			return &Shared[T]{b: w.b}, true
		}
	}
}

// Expired reports whether every strong reference has been released.
func (w *Weak[T]) Expired() bool {
	return w.b.strong.Load() == 0
}

// WeakCount returns the number of weak observers created so far.
func (s *Shared[T]) WeakCount() int64 {
	return s.b.weak.Load()
}
