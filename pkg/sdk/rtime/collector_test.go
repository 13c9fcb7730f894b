package rtime

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/metrics"
)

func gaugeValue(t *testing.T, snap []metrics.SnapshotMetric, name string) float64 {
	t.Helper()
	for _, m := range snap {
		if m.Name == name {
			require.Len(t, m.Values, 1)
			return m.Values[0].Value
		}
	}
	t.Fatalf("gauge %q not in snapshot", name)
	return 0
}

func TestCollectPopulatesRuntimeGauges(t *testing.T) {
	r := metrics.NewRegistry()
	c := New(r, 0)

	c.collect()

	snap := r.Snapshot()
	assert.GreaterOrEqual(t, gaugeValue(t, snap, "go_goroutines"), 1.0)
	assert.GreaterOrEqual(t, gaugeValue(t, snap, "go_cpu_count"), 1.0)
	assert.Greater(t, gaugeValue(t, snap, "go_memory_heap_bytes"), 0.0)
	assert.Greater(t, gaugeValue(t, snap, "go_memory_sys_bytes"), 0.0)
}

func TestStartCollectsImmediatelyAndStops(t *testing.T) {
	r := metrics.NewRegistry()
	c := New(r, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Start(ctx)
		close(done)
	}()

	// The first sample happens before the first tick.
	deadline := time.Now().Add(2 * time.Second)
	for len(r.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	assert.NotEmpty(t, r.Snapshot())

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("collector did not stop on context cancel")
	}
}

func TestDefaultInterval(t *testing.T) {
	c := New(metrics.NewRegistry(), 0)
	assert.Equal(t, 15*time.Second, c.interval)
}
