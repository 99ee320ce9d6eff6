package control

import "runtime"

// heapProbe is the subset of runtime.MemStats worth dumping.
type heapProbe struct {
	HeapAlloc    uint64
	HeapInuse    uint64
	HeapIdle     uint64
	HeapSys      uint64
	HeapReleased uint64
	HeapObjects  uint64
	Mallocs      uint64
	Frees        uint64
	NumGC        uint32
}

func registerRuntimeProbes(dp *DebugProbes) {
	dp.RegisterProbe("runtime.gomaxprocs", func() any {
		return runtime.GOMAXPROCS(0)
	})
	dp.RegisterProbe("runtime.goroutines", func() any {
		return runtime.NumGoroutine()
	})
	dp.RegisterProbe("runtime.heap", func() any {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)
		return heapProbe{
			HeapAlloc:    m.HeapAlloc,
			HeapInuse:    m.HeapInuse,
			HeapIdle:     m.HeapIdle,
			HeapSys:      m.HeapSys,
			HeapReleased: m.HeapReleased,
			HeapObjects:  m.HeapObjects,
			Mallocs:      m.Mallocs,
			Frees:        m.Frees,
			NumGC:        m.NumGC,
		}
	})
}
