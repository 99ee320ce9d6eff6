package scenario

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/rawmem"
)

// leakBlockInts matches a 4 KB block of 32-bit integers.
const leakBlockInts = 1000

// Leak allocates cfg.LeakRounds x cfg.LeakPerRound blocks of 4 KB and never
// releases them. In retained mode the blocks stay reachable from a slice, so
// the collector cannot reclaim them; in raw mode they are off-heap mappings
// the collector never sees. With cfg.LeakCleanup the blocks are released at
// the end so the growth can be compared against the recovered state.
func Leak(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	switch cfg.LeakMode {
	case control.LeakRaw:
		return leakRaw(ctx, cfg, log)
	default:
		return leakRetained(ctx, cfg, log)
	}
}

func leakRetained(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	var leaked [][]int32
	base := ReadMem()

	m, err := measure(ctx, "leak", func(ctx context.Context) error {
		for round := range cfg.LeakRounds {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := range cfg.LeakPerRound {
				data := make([]int32, leakBlockInts)
				data[0] = int32(j)
				leaked = append(leaked, data)
			}
			if round%cfg.LeakProgressEvery == 0 {
				log.Info().Int("round", round).Int("blocks", len(leaked)).Msg("leak progress")
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	grown := ReadMem()
	m.Values = grown.Values()
	m.Values["blocks"] = float64(len(leaked))
	m.Values["growth_bytes"] = float64(int64(grown.HeapAlloc) - int64(base.HeapAlloc))
	res.add(m)
	res.note("retained %d blocks (~%d KB) still reachable, the collector cannot free them",
		len(leaked), len(leaked)*leakBlockInts*4/1024)

	if cfg.LeakCleanup {
		m, err = measure(ctx, "cleanup", func(context.Context) error {
			leaked = nil
			return nil
		})
		if err != nil {
			return res, err
		}
		forceGC()
		m.Values = ReadMem().Values()
		res.add(m)
	}
	return res, nil
}

func leakRaw(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	var blocks [][]byte
	base := rawmem.ReadStats()

	m, err := measure(ctx, "leak", func(ctx context.Context) error {
		for round := range cfg.LeakRounds {
			if err := ctx.Err(); err != nil {
				return err
			}
			for j := range cfg.LeakPerRound {
				b, err := rawmem.Alloc(leakBlockInts * 4)
				if err != nil {
					return errors.Wrapf(err, "leak round %d", round)
				}
				b[0] = byte(j)
				if cfg.LeakCleanup {
					blocks = append(blocks, b)
				}
			}
			if round%cfg.LeakProgressEvery == 0 {
				st := rawmem.ReadStats()
				log.Info().Int("round", round).Int64("outstanding", st.Outstanding-base.Outstanding).Msg("leak progress")
			}
		}
		return nil
	})
	if err != nil {
		freeAll(blocks)
		return res, err
	}
	st := rawmem.ReadStats()
	m.Values["outstanding"] = float64(st.Outstanding - base.Outstanding)
	m.Values["outstanding_bytes"] = float64(st.OutstandingBytes - base.OutstandingBytes)
	res.add(m)
	res.note("%d off-heap blocks outstanding (%d bytes)",
		st.Outstanding-base.Outstanding, st.OutstandingBytes-base.OutstandingBytes)
	if !cfg.LeakCleanup {
		res.note("mappings were dropped without Free and stay resident until exit")
		return res, nil
	}

	var freeErr error
	m, err = measure(ctx, "cleanup", func(context.Context) error {
		freeErr = freeAll(blocks)
		blocks = nil
		return nil
	})
	if err != nil {
		return res, err
	}
	if freeErr != nil {
		return res, errors.Wrap(freeErr, "release leaked blocks")
	}
	st = rawmem.ReadStats()
	m.Values["outstanding"] = float64(st.Outstanding - base.Outstanding)
	m.Values["outstanding_bytes"] = float64(st.OutstandingBytes - base.OutstandingBytes)
	res.add(m)
	return res, nil
}

func freeAll(blocks [][]byte) error {
	var first error
	for _, b := range blocks {
		if err := rawmem.Free(b); err != nil && first == nil {
			first = err
		}
	}
	return first
}
