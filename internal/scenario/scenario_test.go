package scenario_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/momentics/memlab/api"
	"github.com/momentics/memlab/control"
	"github.com/momentics/memlab/internal/scenario"
	"github.com/momentics/memlab/rawmem"
)

func smallConfig(t *testing.T, opts ...control.Option) control.Config {
	t.Helper()
	base := []control.Option{
		control.WithIterations(20_000),
		control.WithPoolSize(64),
		control.WithLocalityN(10_000),
		control.WithHeapN(10_000),
		control.WithFragBlocks(3_000),
		control.WithLeak(control.LeakRetained, 20, 10, true),
		control.WithLeakProgress(5),
	}
	cfg, err := control.New(append(base, opts...)...)
	require.NoError(t, err)
	return cfg
}

func labels(res scenario.Result) []string {
	out := make([]string, len(res.Measurements))
	for i, m := range res.Measurements {
		out[i] = m.Label
	}
	return out
}

func TestLookup(t *testing.T) {
	for _, name := range scenario.Names() {
		s, err := scenario.Lookup(name)
		require.NoError(t, err)
		assert.Equal(t, name, s.Name)
		assert.NotNil(t, s.Run)
	}
	_, err := scenario.Lookup("nope")
	assert.True(t, errors.Is(err, api.ErrUnknownScenario))
	assert.Len(t, scenario.All(), 6)
}

func TestPooling(t *testing.T) {
	cfg := smallConfig(t)
	res, err := scenario.Pooling(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"heap", "sync_pool", "fixed_pool"}, labels(res))

	fixed, ok := res.Find("fixed_pool")
	require.True(t, ok)
	assert.EqualValues(t, 20_000/64, fixed.Values["cycles"])
	// Every acquisition integrates VX=1 into exactly one slot.
	assert.EqualValues(t, 20_000, fixed.Values["checksum"])
	// Construction allocates the pool, its slots and generation table only.
	assert.Less(t, fixed.Mallocs, uint64(64))

	heap, ok := res.Find("heap")
	require.True(t, ok)
	assert.GreaterOrEqual(t, heap.Mallocs, uint64(20_000))
}

func TestOwnership(t *testing.T) {
	res, err := scenario.Ownership(context.Background(), smallConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"raw", "unique", "shared"}, labels(res))

	notes := strings.Join(res.Notes, "\n")
	assert.Contains(t, notes, "unique: moved to new owner, source valid=false")
	assert.Contains(t, notes, "shared: use count 1")
	assert.Contains(t, notes, "shared: new assignment, use count 2")
	assert.Contains(t, notes, "shared: clone out of scope, use count 1")
	assert.Contains(t, notes, "shared: last owner released, use count 0")
	assert.Contains(t, notes, "weak: upgrade after drop failed, expired=true")
	assert.Equal(t, 2, strings.Count(notes, "destroyed enemy"))
}

func TestLocality(t *testing.T) {
	res, err := scenario.Locality(context.Background(), smallConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"slice", "list", "queue"}, labels(res))
	want := float64(10_000 * 9_999 / 2)
	for _, m := range res.Measurements {
		assert.Equal(t, want, m.Values["sum"], m.Label)
	}
	assert.Positive(t, scenario.CacheLineSize)
}

func TestFragmentation(t *testing.T) {
	res, err := scenario.Fragmentation(context.Background(), smallConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"allocate", "free_every_third", "free_all"}, labels(res))
	freed, _ := res.Find("free_every_third")
	assert.EqualValues(t, 1_000, freed.Values["freed_blocks"])
	for _, m := range res.Measurements {
		f := m.Values["fragmentation"]
		assert.True(t, f >= 0 && f < 1, "%s fragmentation %v", m.Label, f)
	}
}

func TestLeak_Retained(t *testing.T) {
	res, err := scenario.Leak(context.Background(), smallConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"leak", "cleanup"}, labels(res))
	leak, _ := res.Find("leak")
	assert.EqualValues(t, 200, leak.Values["blocks"])
	assert.GreaterOrEqual(t, leak.HeapBytes, uint64(200*4000))
}

func TestLeak_Raw(t *testing.T) {
	before := rawmem.ReadStats()
	cfg := smallConfig(t, control.WithLeak(control.LeakRaw, 10, 5, true))
	res, err := scenario.Leak(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)

	leak, _ := res.Find("leak")
	assert.EqualValues(t, 50, leak.Values["outstanding"])
	cleanup, ok := res.Find("cleanup")
	require.True(t, ok)
	assert.EqualValues(t, 0, cleanup.Values["outstanding"])
	assert.Equal(t, before.Outstanding, rawmem.ReadStats().Outstanding)
}

func TestStackHeap(t *testing.T) {
	res, err := scenario.StackHeap(context.Background(), smallConfig(t), zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, []string{"stack", "heap", "offheap"}, labels(res))
	stack, _ := res.Find("stack")
	assert.Less(t, stack.HeapBytes, uint64(1000*8), "stack array must not reach the heap")
	heap, _ := res.Find("heap")
	assert.GreaterOrEqual(t, heap.HeapBytes, uint64(10_000*8))
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, s := range scenario.All() {
		_, err := s.Run(ctx, smallConfig(t), zerolog.Nop())
		assert.ErrorIs(t, err, context.Canceled, s.Name)
	}
}

func TestExecute_RecordsMetrics(t *testing.T) {
	s, err := scenario.Lookup("stackheap")
	require.NoError(t, err)
	reg := control.NewMetricsRegistry()
	res, err := scenario.Execute(context.Background(), s, smallConfig(t), zerolog.Nop(), reg)
	require.NoError(t, err)
	assert.Equal(t, "stackheap", res.Scenario)
	assert.Len(t, reg.Samples(), 3)
	assert.Contains(t, reg.GetSnapshot(), "stackheap.heap.elapsed_seconds")
}

func TestExecute_InvalidConfig(t *testing.T) {
	s, err := scenario.Lookup("pooling")
	require.NoError(t, err)
	cfg := smallConfig(t)
	cfg.PoolSize = 0
	_, err = scenario.Execute(context.Background(), s, cfg, zerolog.Nop(), nil)
	assert.ErrorIs(t, err, api.ErrInvalidConfiguration)
}

func TestReporter(t *testing.T) {
	var buf bytes.Buffer
	err := scenario.NewReporter(&buf).Print(scenario.Result{
		Scenario: "pooling",
		Measurements: []scenario.Measurement{
			{Label: "heap", Elapsed: 1500 * time.Millisecond, Mallocs: 10, Values: map[string]float64{"b": 2, "a": 1}},
			{Label: "fixed_pool", Elapsed: time.Millisecond},
		},
		Notes: []string{"done"},
	})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "== pooling ==")
	assert.Contains(t, out, "1.500000")
	assert.Contains(t, out, "a=1 b=2")
	assert.Contains(t, out, "  done\n")
}
