// control/config.go
// Author: momentics <momentics@gmail.com>
//
// Scenario configuration with defaults, validation and functional options.

package control

import (
	"fmt"

	"github.com/momentics/memlab/api"
)

// Leak modes.
const (
	LeakRetained = "retained" // Go heap blocks kept reachable forever
	LeakRaw      = "raw"      // off-heap blocks never unmapped
)

// Config drives every scenario. Zero values are not meaningful; start from
// DefaultConfig or New.
type Config struct {
	Iterations int   // timed loop length for pooling and ownership
	PoolSize   int   // FixedPool capacity in the pooling scenario
	Seed       int64 // PRNG seed for fragmentation block sizes

	LocalityN int // elements summed by the locality scenario
	HeapN     int // ints written by the stackheap scenario

	FragBlocks int // blocks allocated by the fragmentation scenario

	LeakMode          string
	LeakRounds        int
	LeakPerRound      int
	LeakProgressEvery int
	LeakCleanup       bool
}

// DefaultConfig returns settings sized for an interactive run.
func DefaultConfig() Config {
	return Config{
		Iterations:        3_000_000,
		PoolSize:          1000,
		Seed:              1,
		LocalityN:         2_000_000,
		HeapN:             10_000_000,
		FragBlocks:        100_000,
		LeakMode:          LeakRetained,
		LeakRounds:        500,
		LeakPerRound:      100,
		LeakProgressEvery: 100,
		LeakCleanup:       true,
	}
}

// Option customizes a Config.
type Option func(*Config)

// New applies opts on top of DefaultConfig and validates the result.
func New(opts ...Option) (Config, error) {
	cfg := DefaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return cfg, cfg.Validate()
}

// WithIterations sets the timed loop length.
func WithIterations(n int) Option {
	return func(c *Config) { c.Iterations = n }
}

// WithPoolSize sets the pool capacity used by the pooling scenario.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithSeed sets the PRNG seed.
func WithSeed(seed int64) Option {
	return func(c *Config) { c.Seed = seed }
}

// WithLocalityN sets the element count for the locality scenario.
func WithLocalityN(n int) Option {
	return func(c *Config) { c.LocalityN = n }
}

// WithHeapN sets the heap array length for the stackheap scenario.
func WithHeapN(n int) Option {
	return func(c *Config) { c.HeapN = n }
}

// WithFragBlocks sets the block count for the fragmentation scenario.
func WithFragBlocks(n int) Option {
	return func(c *Config) { c.FragBlocks = n }
}

// WithLeak configures the leak scenario.
func WithLeak(mode string, rounds, perRound int, cleanup bool) Option {
	return func(c *Config) {
		c.LeakMode = mode
		c.LeakRounds = rounds
		c.LeakPerRound = perRound
		c.LeakCleanup = cleanup
	}
}

// WithLeakProgress sets how often (in rounds) leak progress is logged.
func WithLeakProgress(every int) Option {
	return func(c *Config) { c.LeakProgressEvery = every }
}

// Validate rejects non-positive sizes and unknown leak modes.
func (c Config) Validate() error {
	positive := []struct {
		name string
		v    int
	}{
		{"iterations", c.Iterations},
		{"pool_size", c.PoolSize},
		{"locality_n", c.LocalityN},
		{"heap_n", c.HeapN},
		{"frag_blocks", c.FragBlocks},
		{"leak_rounds", c.LeakRounds},
		{"leak_per_round", c.LeakPerRound},
		{"leak_progress_every", c.LeakProgressEvery},
	}
	for _, p := range positive {
		if p.v <= 0 {
			return api.NewError(api.ErrCodeInvalidConfiguration,
				fmt.Sprintf("%s must be positive, got %d", p.name, p.v)).
				WithContext(p.name, p.v)
		}
	}
	if c.LeakMode != LeakRetained && c.LeakMode != LeakRaw {
		return api.NewError(api.ErrCodeInvalidConfiguration,
			fmt.Sprintf("unknown leak mode %q", c.LeakMode)).
			WithContext("leak_mode", c.LeakMode)
	}
	return nil
}
