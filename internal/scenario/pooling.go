package scenario

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/pool"
)

// Bullet is a short-lived game object created and destroyed constantly.
type Bullet struct {
	X, Y   float32
	VX, VY float32
	Active bool
}

// Package-level so the per-iteration allocations really reach the heap.
var bulletSink *Bullet

// Pooling compares a fresh heap object per iteration, sync.Pool reuse and
// a preallocated FixedPool cycling through cfg.PoolSize slots.
func Pooling(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error) {
	var res Result
	n := cfg.Iterations

	log.Debug().Int("iterations", n).Msg("heap allocation per iteration")
	m, err := measure(ctx, "heap", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				b := &Bullet{VX: 1, VY: 1, Active: true}
				b.X += b.VX
				b.Y += b.VY
				bulletSink = b
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	bulletSink = nil
	res.add(m)

	log.Debug().Msg("sync.Pool reuse")
	sp := pool.NewSyncPool(func() *Bullet { return new(Bullet) })
	m, err = measure(ctx, "sync_pool", func(ctx context.Context) error {
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				b := sp.Get()
				*b = Bullet{VX: 1, VY: 1, Active: true}
				b.X += b.VX
				b.Y += b.VY
				sp.Put(b)
			}
		}
		return nil
	})
	if err != nil {
		return res, err
	}
	res.add(m)

	log.Debug().Int("pool_size", cfg.PoolSize).Msg("fixed pool preallocation")
	var stats struct{ cycles, acquisitions uint64 }
	var checksum float64
	m, err = measure(ctx, "fixed_pool", func(ctx context.Context) error {
		p, err := pool.New(cfg.PoolSize, Bullet{VX: 1, VY: 1})
		if err != nil {
			return errors.Wrap(err, "create bullet pool")
		}
		defer p.Close()
		for lo, hi := range chunks(n) {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				b := p.Acquire()
				b.Active = true
				b.X += b.VX
				b.Y += b.VY
			}
		}
		for _, b := range p.Slots() {
			checksum += float64(b.X)
		}
		st := p.Stats()
		stats.cycles, stats.acquisitions = st.Cycles, st.Acquisitions
		return nil
	})
	if err != nil {
		return res, err
	}
	m.Values["pool_size"] = float64(cfg.PoolSize)
	m.Values["cycles"] = float64(stats.cycles)
	m.Values["checksum"] = checksum
	res.add(m)

	res.note("fixed pool: %d acquisitions over %d slots, %d full cycles, no allocation after construction",
		stats.acquisitions, cfg.PoolSize, stats.cycles)
	return res, nil
}
