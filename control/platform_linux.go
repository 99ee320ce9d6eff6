//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probe integrations.

package control

import (
	"runtime"

	"golang.org/x/sys/unix"

	"github.com/momentics/memlab/rawmem"
)

// RegisterPlatformProbes sets Linux-specific debug metrics.
func RegisterPlatformProbes(dp *DebugProbes) {
	registerRuntimeProbes(dp)
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.page_size", func() any {
		return unix.Getpagesize()
	})
	dp.RegisterProbe("platform.rusage_maxrss_kb", func() any {
		var ru unix.Rusage
		if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
			return err.Error()
		}
		return ru.Maxrss
	})
	dp.RegisterProbe("rawmem.stats", func() any {
		return rawmem.ReadStats()
	})
}
