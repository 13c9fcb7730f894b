package metrics

import "sync"

// Gauge is a metric that can go up and down.
type Gauge struct {
	name   string
	mu     sync.Mutex
	values map[string]float64
}

func newGauge(name string) *Gauge {
	return &Gauge{
		name:   name,
		values: make(map[string]float64),
	}
}

// Set sets the gauge to the given value.
func (g *Gauge) Set(value float64, labels ...string) {
	key := makeKey(labels...)

	g.mu.Lock()
	g.values[key] = value
	g.mu.Unlock()
}

// Inc increments the gauge by 1.
func (g *Gauge) Inc(labels ...string) {
	g.Add(1, labels...)
}

// Dec decrements the gauge by 1.
func (g *Gauge) Dec(labels ...string) {
	g.Add(-1, labels...)
}

// Add adds the given value to the gauge.
func (g *Gauge) Add(value float64, labels ...string) {
	key := makeKey(labels...)

	g.mu.Lock()
	g.values[key] += value
	g.mu.Unlock()
}

// Sub subtracts the given value from the gauge.
func (g *Gauge) Sub(value float64, labels ...string) {
	g.Add(-value, labels...)
}

func (g *Gauge) snapshot(now timeFunc) SnapshotMetric {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := SnapshotMetric{Name: g.name, Type: GaugeType}
	for key, value := range g.values {
		snap.Values = append(snap.Values, SnapshotValue{
			Labels:    keyToLabels(key),
			Value:     value,
			Timestamp: now(),
		})
	}
	return snap
}
