package scenario

import (
	"context"
	"runtime"
	"runtime/debug"
	"time"
)

// MemSnapshot is the subset of runtime.MemStats the scenarios report.
type MemSnapshot struct {
	HeapAlloc   uint64
	HeapInuse   uint64
	HeapIdle    uint64
	HeapSys     uint64
	HeapObjects uint64
	TotalAlloc  uint64
	Mallocs     uint64
	Frees       uint64
	NumGC       uint32
}

// ReadMem reads current heap counters. It stops the world briefly.
func ReadMem() MemSnapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return MemSnapshot{
		HeapAlloc:   m.HeapAlloc,
		HeapInuse:   m.HeapInuse,
		HeapIdle:    m.HeapIdle,
		HeapSys:     m.HeapSys,
		HeapObjects: m.HeapObjects,
		TotalAlloc:  m.TotalAlloc,
		Mallocs:     m.Mallocs,
		Frees:       m.Frees,
		NumGC:       m.NumGC,
	}
}

// Fragmentation is the share of in-use span bytes not holding live objects.
func (s MemSnapshot) Fragmentation() float64 {
	if s.HeapInuse == 0 || s.HeapAlloc >= s.HeapInuse {
		return 0
	}
	return 1 - float64(s.HeapAlloc)/float64(s.HeapInuse)
}

// Values flattens the snapshot for a Measurement.
func (s MemSnapshot) Values() map[string]float64 {
	return map[string]float64{
		"heap_alloc":    float64(s.HeapAlloc),
		"heap_inuse":    float64(s.HeapInuse),
		"heap_idle":     float64(s.HeapIdle),
		"heap_sys":      float64(s.HeapSys),
		"heap_objects":  float64(s.HeapObjects),
		"fragmentation": s.Fragmentation(),
	}
}

// measure times fn and attributes the heap allocations it made.
func measure(ctx context.Context, label string, fn func(ctx context.Context) error) (Measurement, error) {
	if err := ctx.Err(); err != nil {
		return Measurement{}, err
	}
	before := ReadMem()
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	after := ReadMem()
	if err != nil {
		return Measurement{}, err
	}
	return Measurement{
		Label:     label,
		Elapsed:   elapsed,
		Mallocs:   after.Mallocs - before.Mallocs,
		HeapBytes: after.TotalAlloc - before.TotalAlloc,
		Values:    map[string]float64{},
	}, nil
}

// forceGC collects and returns freed pages to the OS so before/after
// snapshots are comparable.
func forceGC() {
	runtime.GC()
	debug.FreeOSMemory()
}
