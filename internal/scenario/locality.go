package scenario

import (
	"container/list"
	"context"
	"unsafe"

	"github.com/eapache/queue"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sys/cpu"

	"github.com/momentics/memlab/control"
)

// CacheLineSize is the cache line size assumed for the build target.
const CacheLineSize = int(unsafe.Sizeof(cpu.CacheLinePad{}))

// Locality sums the same integers stored three ways: a contiguous slice,
// a doubly linked list with one heap node per element, and a ring-buffer
// queue of boxed values. Only the traversal is timed.
func Locality(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	n := cfg.LocalityN

	vec := make([]int, n)
	for i := range vec {
		vec[i] = i
	}
	var sumVec int64
	m, err := measure(ctx, "slice", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, v := range vec[lo:hi] {
				sumVec += int64(v)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values["sum"] = float64(sumVec)
	res.add(m)
	vec = nil

	log.Debug().Int("n", n).Msg("building linked list")
	lst := list.New()
	for lo, hi := range chunks(n) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for i := lo; i < hi; i++ {
			lst.PushBack(i)
		}
	}
	var sumList int64
	m, err = measure(ctx, "list", func(ctx context.Context) error {
		i := 0
		for e := lst.Front(); e != nil; e = e.Next() {
			if i++; i%chunkSize == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			sumList += int64(e.Value.(int))
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values["sum"] = float64(sumList)
	res.add(m)
	lst = nil

	log.Debug().Int("n", n).Msg("building ring queue")
	q := queue.New()
	for lo, hi := range chunks(n) {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		for i := lo; i < hi; i++ {
			q.Add(i)
		}
	}
	var sumQueue int64
	m, err = measure(ctx, "queue", func(ctx context.Context) error {
		for lo, hi := range chunks(q.Length()) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				sumQueue += int64(q.Get(i).(int))
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values["sum"] = float64(sumQueue)
	res.add(m)

	if sumVec != sumList || sumVec != sumQueue {
		return res, errors.Errorf("locality sums differ: slice=%d list=%d queue=%d", sumVec, sumList, sumQueue)
	}
	res.note("cache line: %d bytes, %d ints per line", CacheLineSize, CacheLineSize/int(unsafe.Sizeof(int(0))))
	res.note("sums equal: yes (%d)", sumVec)
	return res, nil
}
