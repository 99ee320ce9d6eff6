package scenario

import (
	"context"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/rawmem"
)

// stackInts stays far below the goroutine stack limit.
const stackInts = 1000

var (
	intSink  int
	heapSink []int
)

// StackHeap fills a small array on the stack, a cfg.HeapN slice on the heap
// and a cfg.HeapN block off the heap, timing each including its allocation.
func StackHeap(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result

	m, err := measure(ctx, "stack", func(context.Context) error {
		var arr [stackInts]int
		for i := range arr {
			arr[i] = i
		}
		intSink = arr[stackInts-1]
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values["ints"] = stackInts
	m.Values["micros"] = float64(m.Elapsed.Microseconds())
	res.add(m)

	n := cfg.HeapN
	m, err = measure(ctx, "heap", func(ctx context.Context) error {
		arr := make([]int, n)
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				arr[i] = i
			}
		}
		heapSink = arr
		return nil
	})
	heapSink = nil
	if err != nil {
		return res, err
	}
	m.Values["ints"] = float64(n)
	m.Values["micros"] = float64(m.Elapsed.Microseconds())
	res.add(m)

	m, err = measure(ctx, "offheap", func(ctx context.Context) error {
		b, err := rawmem.Alloc(n * int(unsafe.Sizeof(int(0))))
		if err != nil {
			return errors.Wrap(err, "allocate off-heap block")
		}
		arr := unsafe.Slice((*int)(unsafe.Pointer(&b[0])), n)
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				rawmem.Free(b)
				return err
			}
			for i := lo; i < hi; i++ {
				arr[i] = i
			}
		}
		intSink = arr[n-1]
		return rawmem.Free(b)
	})
	if err != nil {
		return res, err
	}
	m.Values["ints"] = float64(n)
	m.Values["micros"] = float64(m.Elapsed.Microseconds())
	res.add(m)

	log.Debug().Bool("offheap", rawmem.Offheap).Msg("stack vs heap done")
	if !rawmem.Offheap {
		res.note("offheap strategy falls back to the Go heap on %s", runtime.GOOS)
	}
	res.note("stack frame reclaimed on return; heap slice left for the collector")
	return res, nil
}
