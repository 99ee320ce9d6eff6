// Package scenario
// Author: momentics <momentics@gmail.com>
//
// Memory-management scenarios: each allocates data under one or more
// strategies, times the work and reports heap counters. Scenarios are
// independent of each other and run sequentially on the calling goroutine.
//
//   - pooling:       per-iteration heap allocation vs sync.Pool vs FixedPool
//   - ownership:     exclusive and reference-counted handles
//   - locality:      contiguous slice vs linked list vs ring queue traversal
//   - fragmentation: variable-size blocks with every third one freed
//   - leak:          blocks that are never released, on and off the Go heap
//   - stackheap:     stack array vs heap slice vs off-heap block
package scenario
