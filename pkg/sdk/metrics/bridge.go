package metrics

import (
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
)

// ToEvents converts a registry snapshot into wire metric events, one per
// labeled sample. Label sets are carried verbatim; collection times are
// converted to the wire's nanosecond convention. newBase supplies a
// fresh event base (id, timestamp, tenant fields) per event.
func ToEvents(snap []SnapshotMetric, newBase func() event.Base) []event.Event {
	var events []event.Event
	for _, m := range snap {
		for _, v := range m.Values {
			ev := &event.MetricEvent{
				Base:         newBase(),
				Name:         m.Name,
				Unit:         m.Unit,
				Labels:       v.Labels,
				TimeUnixNano: v.Timestamp.UnixNano(),
			}
			if !m.Start.IsZero() {
				ev.StartTimeUnixNano = m.Start.UnixNano()
			}
			if v.Aggregate != nil {
				ev.Aggregate = &event.Aggregate{
					Sum:   v.Aggregate.Sum,
					Count: v.Aggregate.Count,
					Min:   v.Aggregate.Min,
					Max:   v.Aggregate.Max,
				}
			} else {
				value := v.Value
				ev.Value = &value
			}
			events = append(events, ev)
		}
	}
	return events
}
