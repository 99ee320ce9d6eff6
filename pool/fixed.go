// File: pool/fixed.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed-capacity preallocated slot pool with circular reuse.
// This implementation is NOT thread-safe and avoids any locking in the hot path.

package pool

import (
	"fmt"

	"github.com/momentics/memlab/api"
)

// FixedPool owns one contiguous block of capacity elements allocated at
// construction. Acquire cycles through the block; once every slot has been
// handed out the oldest one is recycled.
//
// Pointers returned by Acquire alias pool storage and stay valid until the
// same slot is acquired again. The pool does not track outstanding pointers;
// use AcquireHandle/Resolve when staleness must be detectable.
type FixedPool[T any] struct {
	slots  []T
	gens   []uint32
	cursor int
	total  uint64
	closed bool
}

var _ api.SlotPool[struct{}] = (*FixedPool[struct{}])(nil)

// New allocates a pool of capacity slots, each a copy of initial.
func New[T any](capacity int, initial T) (*FixedPool[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	p := alloc[T](capacity)
	for i := range p.slots {
		p.slots[i] = initial
	}
	return p, nil
}

// NewFunc allocates a pool of capacity slots, slot i set to init(i).
// A nil init leaves every slot at its zero value.
func NewFunc[T any](capacity int, init func(i int) T) (*FixedPool[T], error) {
	if err := checkCapacity(capacity); err != nil {
		return nil, err
	}
	p := alloc[T](capacity)
	if init != nil {
		for i := range p.slots {
			p.slots[i] = init(i)
		}
	}
	return p, nil
}

func checkCapacity(capacity int) error {
	if capacity <= 0 {
		return api.NewError(api.ErrCodeInvalidConfiguration,
			fmt.Sprintf("pool capacity must be positive, got %d", capacity)).
			WithContext("capacity", capacity)
	}
	return nil
}

func alloc[T any](capacity int) *FixedPool[T] {
	return &FixedPool[T]{
		slots: make([]T, capacity),
		gens:  make([]uint32, capacity),
	}
}

// Acquire returns the slot under the cursor and advances the cursor.
// Fields are not reset; callers rewrite whatever state they need.
// Panics with api.ErrPoolClosed if the pool has been closed.
func (p *FixedPool[T]) Acquire() *T {
	return &p.slots[p.advance()]
}

// AcquireHandle is Acquire returning an index handle instead of a pointer.
func (p *FixedPool[T]) AcquireHandle() Handle {
	idx := p.advance()
	return Handle{index: idx, gen: p.gens[idx]}
}

// advance bumps the generation of the current slot and moves the cursor.
func (p *FixedPool[T]) advance() int {
	if p.closed {
		panic(api.ErrPoolClosed)
	}
	idx := p.cursor
	if p.gens[idx]++; p.gens[idx] == 0 {
		p.gens[idx] = 1
	}
	p.cursor++
	if p.cursor == len(p.slots) {
		p.cursor = 0
	}
	p.total++
	return idx
}

// Resolve maps a handle back to its slot. It fails with api.ErrStaleHandle
// once the slot has been acquired again after the handle was issued.
func (p *FixedPool[T]) Resolve(h Handle) (*T, error) {
	if p.closed {
		return nil, api.ErrPoolClosed
	}
	if h.gen == 0 || h.index < 0 || h.index >= len(p.slots) {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "handle does not belong to pool").
			WithContext("index", h.index)
	}
	if p.gens[h.index] != h.gen {
		return nil, api.NewError(api.ErrCodeStale, "slot reacquired since handle was issued").
			WithContext("index", h.index)
	}
	return &p.slots[h.index], nil
}

// At returns slot i directly without moving the cursor.
func (p *FixedPool[T]) At(i int) *T {
	return &p.slots[i]
}

// Slots exposes the contiguous backing storage for sequential scans.
func (p *FixedPool[T]) Slots() []T {
	return p.slots
}

// Cap returns the fixed slot count.
func (p *FixedPool[T]) Cap() int {
	return len(p.slots)
}

// Cursor returns the index the next Acquire will hand out.
func (p *FixedPool[T]) Cursor() int {
	return p.cursor
}

// Stats returns usage counters.
func (p *FixedPool[T]) Stats() api.PoolStats {
	st := api.PoolStats{
		Capacity:     len(p.slots),
		Cursor:       p.cursor,
		Acquisitions: p.total,
	}
	if st.Capacity > 0 {
		st.Cycles = p.total / uint64(st.Capacity)
	}
	return st
}

// Close releases the backing block. Slots and handles obtained earlier
// must not be used afterwards.
func (p *FixedPool[T]) Close() error {
	if p.closed {
		return api.ErrPoolClosed
	}
	p.closed = true
	p.slots = nil
	p.gens = nil
	p.cursor = 0
	return nil
}

// Closed reports whether Close has been called.
func (p *FixedPool[T]) Closed() bool {
	return p.closed
}
