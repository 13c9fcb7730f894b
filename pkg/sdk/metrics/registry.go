// Package metrics is the SDK's local metric registry: counters, gauges,
// and histograms keyed by variadic label pairs. The registry only ever
// accumulates; the batch sender consumes its periodic Snapshot and the
// bridge turns that into wire events.
package metrics

import (
	"sort"
	"sync"
	"time"
)

type timeFunc func() time.Time

// Registry owns all metric instruments created by a client. Instruments
// are created on first use and live for the registry's lifetime.
type Registry struct {
	mu         sync.Mutex
	counters   map[string]*Counter
	gauges     map[string]*Gauge
	histograms map[string]*Histogram

	now     timeFunc
	created time.Time
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		counters:   make(map[string]*Counter),
		gauges:     make(map[string]*Gauge),
		histograms: make(map[string]*Histogram),
		now:        time.Now,
		created:    time.Now().UTC(),
	}
}

// Counter returns the counter with the given name, creating it on first
// use.
func (r *Registry) Counter(name string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.counters[name]; ok {
		return c
	}
	c := newCounter(name)
	r.counters[name] = c
	return c
}

// Gauge returns the gauge with the given name, creating it on first use.
func (r *Registry) Gauge(name string) *Gauge {
	r.mu.Lock()
	defer r.mu.Unlock()

	if g, ok := r.gauges[name]; ok {
		return g
	}
	g := newGauge(name)
	r.gauges[name] = g
	return g
}

// Histogram returns the histogram with the given name, creating it on
// first use. The unit annotates snapshots only; it does not affect
// observation math.
func (r *Registry) Histogram(name, unit string) *Histogram {
	r.mu.Lock()
	defer r.mu.Unlock()

	if h, ok := r.histograms[name]; ok {
		return h
	}
	h := newHistogram(name, unit)
	r.histograms[name] = h
	return h
}

// Snapshot returns the point-in-time state of every instrument that has
// recorded at least one sample, sorted by metric name so consumers see a
// stable order.
func (r *Registry) Snapshot() []SnapshotMetric {
	r.mu.Lock()
	counters := make([]*Counter, 0, len(r.counters))
	for _, c := range r.counters {
		counters = append(counters, c)
	}
	gauges := make([]*Gauge, 0, len(r.gauges))
	for _, g := range r.gauges {
		gauges = append(gauges, g)
	}
	histograms := make([]*Histogram, 0, len(r.histograms))
	for _, h := range r.histograms {
		histograms = append(histograms, h)
	}
	now := r.now
	created := r.created
	r.mu.Unlock()

	var snaps []SnapshotMetric
	for _, c := range counters {
		if s := c.snapshot(now); len(s.Values) > 0 {
			s.Start = created
			snaps = append(snaps, s)
		}
	}
	for _, g := range gauges {
		if s := g.snapshot(now); len(s.Values) > 0 {
			snaps = append(snaps, s)
		}
	}
	for _, h := range histograms {
		if s := h.snapshot(now); len(s.Values) > 0 {
			s.Start = created
			snaps = append(snaps, s)
		}
	}

	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Name < snaps[j].Name })
	return snaps
}
