//go:build !linux
// +build !linux

// File: rawmem/rawmem_other.go
// Author: momentics <momentics@gmail.com>
//
// Fallback for platforms without the mmap path: blocks live on the Go heap.

package rawmem

// Offheap reports whether blocks bypass the Go heap on this platform.
const Offheap = false

func osAlloc(size int) ([]byte, error) {
	return make([]byte, size), nil
}

func osFree([]byte) error { return nil }
