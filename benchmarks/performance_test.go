// Package benchmarks
// Author: momentics <momentics@gmail.com>
//
// Performance benchmarks comparing allocation strategies.

package benchmarks

import (
	"testing"

	"github.com/momentics/memlab/ownership"
	"github.com/momentics/memlab/pool"
	"github.com/momentics/memlab/rawmem"
)

type particle struct {
	X, Y, VX, VY float32
	Active       bool
}

var sink *particle

// BenchmarkHeapPerIteration allocates a fresh particle every iteration.
func BenchmarkHeapPerIteration(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p := &particle{VX: 1, VY: 1, Active: true}
		p.X += p.VX
		sink = p
	}
}

// BenchmarkSyncPoolParallel reuses particles through sync.Pool from many goroutines.
func BenchmarkSyncPoolParallel(b *testing.B) {
	sp := pool.NewSyncPool(func() *particle { return new(particle) })
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			p := sp.Get()
			p.Active = true
			p.X += 1
			sp.Put(p)
		}
	})
}

// BenchmarkFixedPoolPerGoroutine gives every goroutine its own FixedPool,
// the supported way to use it concurrently.
func BenchmarkFixedPoolPerGoroutine(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		fp, err := pool.New(1024, particle{VX: 1, VY: 1})
		if err != nil {
			b.Error(err)
			return
		}
		for pb.Next() {
			p := fp.Acquire()
			p.Active = true
			p.X += p.VX
			p.Y += p.VY
		}
	})
}

// BenchmarkFixedPoolSequentialScan walks the contiguous slot block.
func BenchmarkFixedPoolSequentialScan(b *testing.B) {
	fp, err := pool.NewFunc(4096, func(i int) particle { return particle{X: float32(i)} })
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	var sum float32
	for i := 0; i < b.N; i++ {
		for _, p := range fp.Slots() {
			sum += p.X
		}
	}
	_ = sum
}

// BenchmarkSharedCloneRelease measures atomic reference counting.
func BenchmarkSharedCloneRelease(b *testing.B) {
	root := ownership.NewShared(&particle{}, nil)
	defer root.Release()
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			root.Clone().Release()
		}
	})
}

// BenchmarkRawmemAllocFree maps and unmaps one page per iteration.
func BenchmarkRawmemAllocFree(b *testing.B) {
	for i := 0; i < b.N; i++ {
		buf, err := rawmem.Alloc(4096)
		if err != nil {
			b.Fatal(err)
		}
		buf[0] = 1
		if err := rawmem.Free(buf); err != nil {
			b.Fatal(err)
		}
	}
}
