//go:build !linux
// +build !linux

// control/platform_other.go
// Author: momentics <momentics@gmail.com>

package control

import (
	"os"
	"runtime"

	"github.com/momentics/memlab/rawmem"
)

// RegisterPlatformProbes sets portable debug metrics.
func RegisterPlatformProbes(dp *DebugProbes) {
	registerRuntimeProbes(dp)
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.page_size", func() any {
		return os.Getpagesize()
	})
	dp.RegisterProbe("rawmem.stats", func() any {
		return rawmem.ReadStats()
	})
}
