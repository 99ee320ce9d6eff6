// Package rawmem
// Author: momentics <momentics@gmail.com>
//
// Off-heap byte blocks obtained straight from the operating system.
// Memory handed out here is invisible to the garbage collector: a block that
// is never passed to Free stays mapped until the process exits. The
// package-level counters make such leaks observable.
//
// Platform split: rawmem_linux.go maps anonymous pages via x/sys/unix,
// rawmem_other.go falls back to the Go heap.
package rawmem

import (
	"sync/atomic"

	"github.com/momentics/memlab/api"
)

// Stats is a snapshot of global allocation counters.
type Stats struct {
	Allocs           uint64
	Frees            uint64
	Outstanding      int64
	OutstandingBytes int64
}

var (
	allocs    atomic.Uint64
	frees     atomic.Uint64
	liveBytes atomic.Int64
)

// Alloc returns a zeroed block of size bytes. Pass the exact slice back to
// Free; a resliced block cannot be released.
func Alloc(size int) ([]byte, error) {
	if size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalidArgument, "rawmem: size must be positive").
			WithContext("size", size)
	}
	b, err := osAlloc(size)
	if err != nil {
		return nil, err
	}
	allocs.Add(1)
	liveBytes.Add(int64(len(b)))
	return b, nil
}

// Free returns a block obtained from Alloc. Empty slices are ignored.
func Free(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	n := len(b)
	if err := osFree(b); err != nil {
		return err
	}
	frees.Add(1)
	liveBytes.Add(-int64(n))
	return nil
}

// ReadStats returns current counters.
func ReadStats() Stats {
	a, f := allocs.Load(), frees.Load()
	return Stats{
		Allocs:           a,
		Frees:            f,
		Outstanding:      int64(a) - int64(f),
		OutstandingBytes: liveBytes.Load(),
	}
}
