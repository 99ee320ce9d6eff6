// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: preallocated slot pools and transient object reuse.

package api

// SlotPool hands out slots of a fixed, preallocated block in circular order.
type SlotPool[T any] interface {
	// Acquire returns the next slot. The pointer aliases pool storage.
	Acquire() *T

	// Cap returns the fixed number of slots.
	Cap() int

	// Stats returns usage counters.
	Stats() PoolStats
}

// ObjectPool provides generic pooling of Go objects allocated transiently
type ObjectPool[T any] interface {
	// Get returns an available instance from pool
	Get() T

	// Put returns an instance for reuse
	Put(obj T)
}

// PoolStats reports slot pool usage.
type PoolStats struct {
	Capacity     int
	Cursor       int
	Acquisitions uint64
	Cycles       uint64
}
