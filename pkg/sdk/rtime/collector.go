// Package rtime feeds Go runtime health gauges into the SDK's metric
// registry so they ride along with each flush.
package rtime

import (
	"context"
	"runtime"
	"time"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/metrics"
)

// Collector periodically samples runtime stats into a registry.
type Collector struct {
	registry *metrics.Registry
	interval time.Duration
}

func New(registry *metrics.Registry, interval time.Duration) *Collector {
	if interval == 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		registry: registry,
		interval: interval,
	}
}

// Start collects until ctx is canceled. Blocking; run in a goroutine.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Collect immediately on start
	c.collect()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

func (c *Collector) collect() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	c.registry.Gauge("go_goroutines").Set(float64(runtime.NumGoroutine()))
	c.registry.Gauge("go_cpu_count").Set(float64(runtime.NumCPU()))
	c.registry.Gauge("go_memory_heap_bytes").Set(float64(m.HeapAlloc))
	c.registry.Gauge("go_memory_stack_bytes").Set(float64(m.StackInuse))
	c.registry.Gauge("go_memory_sys_bytes").Set(float64(m.Sys))
	c.registry.Gauge("go_gc_count").Set(float64(m.NumGC))

	if m.NumGC > 0 {
		c.registry.Gauge("go_gc_pause_seconds").Set(float64(m.PauseTotalNs) / 1e9)
	}
}
