package scenario

import (
	"context"
	"math/rand"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/momentics/memlab/control"
)

// Fragmentation allocates cfg.FragBlocks blocks of 1..1000 int32s, frees
// every third one and reports how much of the in-use heap is left as holes.
// Remaining blocks are freed at the end.
func Fragmentation(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	rng := rand.New(rand.NewSource(cfg.Seed))
	blocks := make([][]int32, cfg.FragBlocks)

	m, err := measure(ctx, "allocate", func(ctx context.Context) error {
		for lo, hi := range chunks(len(blocks)) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				blocks[i] = make([]int32, rng.Intn(1000)+1)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	snap := ReadMem()
	m.Values = snap.Values()
	res.add(m)
	log.Debug().Uint64("heap_inuse", snap.HeapInuse).Msg("blocks allocated")

	freed := 0
	m, err = measure(ctx, "free_every_third", func(ctx context.Context) error {
		for i := 0; i < len(blocks); i += 3 {
			blocks[i] = nil
			freed++
		}
		runtime.GC()
		return nil
	})
	if err != nil {
		return res, err
	}
	snap = ReadMem()
	m.Values = snap.Values()
	m.Values["freed_blocks"] = float64(freed)
	res.add(m)
	res.note("freed %d of %d blocks: %.1f%% of in-use heap spans are holes",
		freed, len(blocks), 100*snap.Fragmentation())
	runtime.KeepAlive(blocks)

	m, err = measure(ctx, "free_all", func(ctx context.Context) error {
		blocks = nil
		forceGC()
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values = ReadMem().Values()
	res.add(m)
	return res, nil
}
