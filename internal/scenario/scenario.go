package scenario

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/momentics/memlab/api"
	"github.com/momentics/memlab/control"
)

// Measurement is one timed strategy within a scenario.
type Measurement struct {
	Label     string
	Elapsed   time.Duration
	Mallocs   uint64
	HeapBytes uint64
	Values    map[string]float64
}

// Result is everything a scenario produced.
type Result struct {
	Scenario     string
	Measurements []Measurement
	Notes        []string
}

// Find returns the measurement with the given label.
func (r Result) Find(label string) (Measurement, bool) {
	for _, m := range r.Measurements {
		if m.Label == label {
			return m, true
		}
	}
	return Measurement{}, false
}

func (r *Result) add(m Measurement)           { r.Measurements = append(r.Measurements, m) }
func (r *Result) note(format string, a ...any) { r.Notes = append(r.Notes, fmt.Sprintf(format, a...)) }

// Func runs a scenario.
type Func func(ctx context.Context, cfg control.Config, log zerolog.Logger) (Result, error)

// Scenario is a named, registered Func.
type Scenario struct {
	Name    string
	Summary string
	Run     Func
}

var registry = []Scenario{
	{Name: "pooling", Summary: "heap allocation vs sync.Pool vs preallocated fixed pool", Run: Pooling},
	{Name: "ownership", Summary: "unique and shared ownership handles", Run: Ownership},
	{Name: "locality", Summary: "contiguous vs scattered traversal", Run: Locality},
	{Name: "fragmentation", Summary: "heap fragmentation from interleaved frees", Run: Fragmentation},
	{Name: "leak", Summary: "memory that is never released", Run: Leak},
	{Name: "stackheap", Summary: "stack vs heap vs off-heap allocation cost", Run: StackHeap},
}

// All returns every scenario in a stable order.
func All() []Scenario {
	return slices.Clone(registry)
}

// Names returns the registered scenario names.
func Names() []string {
	out := make([]string, len(registry))
	for i, s := range registry {
		out[i] = s.Name
	}
	return out
}

// Lookup finds a scenario by name.
func Lookup(name string) (Scenario, error) {
	for _, s := range registry {
		if s.Name == name {
			return s, nil
		}
	}
	return Scenario{}, api.NewError(api.ErrCodeNotFound, fmt.Sprintf("unknown scenario %q", name)).
		WithContext("known", Names())
}

// Execute validates cfg, runs s and records every measurement into metrics
// when metrics is non-nil.
func Execute(ctx context.Context, s Scenario, cfg control.Config, log zerolog.Logger, metrics *control.MetricsRegistry) (Result, error) {
	if err := cfg.Validate(); err != nil {
		return Result{}, err
	}
	log = log.With().Str("scenario", s.Name).Logger()
	log.Debug().Msg("scenario started")
	start := time.Now()
	res, err := s.Run(ctx, cfg, log)
	if err != nil {
		return res, errors.Wrapf(err, "scenario %s", s.Name)
	}
	res.Scenario = s.Name
	log.Debug().Dur("took", time.Since(start)).Int("measurements", len(res.Measurements)).Msg("scenario finished")
	if metrics != nil {
		for _, m := range res.Measurements {
			metrics.Observe(control.Sample{
				Scenario:  s.Name,
				Label:     m.Label,
				Elapsed:   m.Elapsed,
				Mallocs:   m.Mallocs,
				HeapBytes: m.HeapBytes,
			})
		}
	}
	return res, nil
}

const chunkSize = 1 << 16

// chunks splits [0, n) into bounded ranges so long loops can check for
// cancellation without paying for it on every iteration.
func chunks(n int) iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for lo := 0; lo < n; lo += chunkSize {
			if !yield(lo, min(lo+chunkSize, n)) {
				return
			}
		}
	}
}
