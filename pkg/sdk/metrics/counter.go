package metrics

import "sync"

// Counter is a monotonically increasing metric. Observations accumulate
// in memory; nothing is sent until the registry is snapshotted during a
// flush cycle.
type Counter struct {
	name   string
	mu     sync.Mutex
	values map[string]float64
}

func newCounter(name string) *Counter {
	return &Counter{
		name:   name,
		values: make(map[string]float64),
	}
}

// Inc increments the counter by 1 for the given label pairs.
func (c *Counter) Inc(labels ...string) {
	c.Add(1, labels...)
}

// Add adds value to the counter. Negative values are ignored; counters
// only go up.
func (c *Counter) Add(value float64, labels ...string) {
	if value < 0 {
		return
	}

	key := makeKey(labels...)

	c.mu.Lock()
	c.values[key] += value
	c.mu.Unlock()
}

func (c *Counter) snapshot(now timeFunc) SnapshotMetric {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := SnapshotMetric{Name: c.name, Type: CounterType}
	for key, value := range c.values {
		snap.Values = append(snap.Values, SnapshotValue{
			Labels:    keyToLabels(key),
			Value:     value,
			Timestamp: now(),
		})
	}
	return snap
}
