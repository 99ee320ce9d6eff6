// control/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics collector for scenario measurements.
// Exposes values in a thread-safe map and renders them in the Prometheus
// text exposition format.

package control

import (
	"io"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Sample is one measured strategy of one scenario.
type Sample struct {
	Scenario  string
	Label     string
	Elapsed   time.Duration
	Mallocs   uint64
	HeapBytes uint64
}

// MetricsRegistry holds mutable and read-only metrics.
type MetricsRegistry struct {
	mu      sync.RWMutex
	metrics map[string]any
	samples []Sample
	updated time.Time
}

// NewMetricsRegistry creates an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{
		metrics: make(map[string]any),
	}
}

// Set sets or updates a metric key.
func (mr *MetricsRegistry) Set(key string, value any) {
	mr.mu.Lock()
	mr.metrics[key] = value
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// Observe records a sample and mirrors it into flat metric keys of the form
// "<scenario>.<label>.<field>".
func (mr *MetricsRegistry) Observe(s Sample) {
	prefix := s.Scenario + "." + s.Label + "."
	mr.mu.Lock()
	mr.samples = append(mr.samples, s)
	mr.metrics[prefix+"elapsed_seconds"] = s.Elapsed.Seconds()
	mr.metrics[prefix+"mallocs"] = s.Mallocs
	mr.metrics[prefix+"heap_bytes"] = s.HeapBytes
	mr.updated = time.Now()
	mr.mu.Unlock()
}

// GetSnapshot returns the latest metrics.
func (mr *MetricsRegistry) GetSnapshot() map[string]any {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	out := make(map[string]any, len(mr.metrics))
	for k, v := range mr.metrics {
		out[k] = v
	}
	return out
}

// Samples returns recorded samples in observation order.
func (mr *MetricsRegistry) Samples() []Sample {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return append([]Sample(nil), mr.samples...)
}

// Updated returns the time of the last write.
func (mr *MetricsRegistry) Updated() time.Time {
	mr.mu.RLock()
	defer mr.mu.RUnlock()
	return mr.updated
}

// WritePrometheus renders every sample as gauges labeled by scenario and
// label. Later samples with the same labels overwrite earlier ones.
func (mr *MetricsRegistry) WritePrometheus(w io.Writer) error {
	labels := []string{"scenario", "label"}
	elapsed := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memlab",
		Name:      "elapsed_seconds",
		Help:      "Wall-clock time of the measured loop.",
	}, labels)
	mallocs := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memlab",
		Name:      "mallocs",
		Help:      "Heap allocations performed during the measured loop.",
	}, labels)
	heap := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "memlab",
		Name:      "heap_bytes",
		Help:      "Heap bytes allocated during the measured loop.",
	}, labels)

	reg := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{elapsed, mallocs, heap} {
		if err := reg.Register(c); err != nil {
			return errors.Wrap(err, "register collector")
		}
	}
	for _, s := range mr.Samples() {
		elapsed.WithLabelValues(s.Scenario, s.Label).Set(s.Elapsed.Seconds())
		mallocs.WithLabelValues(s.Scenario, s.Label).Set(float64(s.Mallocs))
		heap.WithLabelValues(s.Scenario, s.Label).Set(float64(s.HeapBytes))
	}

	families, err := reg.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "encode %s", mf.GetName())
		}
	}
	return nil
}
