//go:build linux
// +build linux

// File: rawmem/rawmem_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific allocator using anonymous private mappings.

package rawmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Offheap reports whether blocks bypass the Go heap on this platform.
const Offheap = true

func osAlloc(size int) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("rawmem: mmap %d bytes: %w", size, err)
	}
	return b, nil
}

func osFree(b []byte) error {
	if err := unix.Munmap(b); err != nil {
		return fmt.Errorf("rawmem: munmap: %w", err)
	}
	return nil
}
