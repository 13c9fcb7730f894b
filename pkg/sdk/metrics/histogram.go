package metrics

import "sync"

// aggregate tracks observations for one label combination.
type aggregate struct {
	sum   float64
	count uint64
	min   float64
	max   float64
}

func (a *aggregate) observe(value float64) {
	if a.count == 0 || value < a.min {
		a.min = value
	}
	if a.count == 0 || value > a.max {
		a.max = value
	}
	a.count++
	a.sum += value
}

// Histogram accumulates observed values as sum/count/min/max aggregates
// per label combination. Observations never leave the process
// individually; the registry snapshot carries the aggregates.
type Histogram struct {
	name string
	unit string
	mu   sync.Mutex
	aggs map[string]*aggregate
}

func newHistogram(name, unit string) *Histogram {
	return &Histogram{
		name: name,
		unit: unit,
		aggs: make(map[string]*aggregate),
	}
}

// Observe records a value in the histogram.
func (h *Histogram) Observe(value float64, labels ...string) {
	key := makeKey(labels...)

	h.mu.Lock()
	defer h.mu.Unlock()

	agg := h.aggs[key]
	if agg == nil {
		agg = &aggregate{}
		h.aggs[key] = agg
	}
	agg.observe(value)
}

func (h *Histogram) snapshot(now timeFunc) SnapshotMetric {
	h.mu.Lock()
	defer h.mu.Unlock()

	snap := SnapshotMetric{Name: h.name, Type: HistogramType, Unit: h.unit}
	for key, agg := range h.aggs {
		if agg.count == 0 {
			continue
		}
		snap.Values = append(snap.Values, SnapshotValue{
			Labels: keyToLabels(key),
			Aggregate: &AggregateValue{
				Sum:   agg.sum,
				Count: agg.count,
				Min:   agg.min,
				Max:   agg.max,
			},
			Timestamp: now(),
		})
	}
	return snap
}
