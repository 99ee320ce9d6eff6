// Package pool
// Author: momentics <momentics@gmail.com>
//
// Preallocated object pools for allocation-free hot paths.
//
// FixedPool allocates one contiguous block of elements at construction and
// hands slots out in circular order: no allocation after New, no free list,
// no occupancy tracking. The oldest slot is recycled once capacity is
// exhausted, so at most Cap() outstanding references can be trusted at once.
// FixedPool is not safe for concurrent use; callers serialize access.
//
// SyncPool is a typed wrapper over sync.Pool kept as the runtime-managed
// alternative. See fixed.go, handle.go, objpool.go for implementation details.
package pool
