package metrics

import "time"

// Type represents the type of metric
type Type string

const (
	CounterType   Type = "counter"
	GaugeType     Type = "gauge"
	HistogramType Type = "histogram"
)

// AggregateValue is the pre-aggregated form a histogram exposes in a
// snapshot: no buckets, just the running sum/count/min/max.
type AggregateValue struct {
	Sum   float64
	Count uint64
	Min   float64
	Max   float64
}

// SnapshotValue is one labeled sample inside a snapshot. Exactly one of
// Value or Aggregate is meaningful, keyed by the parent metric's Type.
type SnapshotValue struct {
	Labels    map[string]string
	Value     float64
	Aggregate *AggregateValue
	Timestamp time.Time
}

// SnapshotMetric is the point-in-time state of one named metric across
// all label combinations observed so far. Start marks the beginning of
// the accumulation window (the registry's creation) for cumulative
// instruments; it is zero for gauges, which are instantaneous.
type SnapshotMetric struct {
	Name   string
	Type   Type
	Unit   string
	Start  time.Time
	Values []SnapshotValue
}
