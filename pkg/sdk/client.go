package sdk

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/batch"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/metrics"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/realtime"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/rtime"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/tracker"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/transport"
)

// Client is the telemetry pipeline facade. All entry points after a
// successful New are fail-silent and non-blocking: they enqueue and
// return. Only New can fail, and only on unusable configuration.
type Client struct {
	cfg  ClientConfig
	tags map[string]string
	log  *logrus.Logger

	tracker   *tracker.Tracker
	registry  *metrics.Registry
	sender    *batch.Sender
	transport transport.Transport
	realtime  *realtime.Channel
	runtime   *rtime.Collector

	requestCount    *metrics.Counter
	requestDuration *metrics.Histogram

	// lifecycleMu guards started/ctx/cancel against concurrent
	// Start/Shutdown, e.g. a signal-handler goroutine shutting down.
	lifecycleMu sync.Mutex
	started     bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// New validates cfg and assembles the pipeline. Missing credentials
// fail fast here; the host cannot safely run telemetry without them.
func New(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("rootsense: api key is required")
	}
	if cfg.Service == "" {
		return nil, errors.New("rootsense: service name is required")
	}
	cfg.applyDefaults()

	c := &Client{
		cfg:  cfg,
		tags: cfg.eventTags(),
		log:  internal.GetLogger(),
	}

	c.tracker = tracker.New(tracker.Config{
		Service:       cfg.Service,
		Environment:   cfg.Environment,
		ProjectID:     cfg.ProjectID,
		Tags:          c.tags,
		SanitizePII:   !cfg.DisablePIIScrubbing,
		BlockedFields: cfg.blockedFields(),
	})

	c.transport = transport.NewHTTP(transport.Config{
		APIBase:        cfg.APIBase,
		APIKey:         cfg.APIKey,
		ProjectID:      cfg.ProjectID,
		Environment:    cfg.Environment,
		RetryAttempts:  cfg.RetryAttempts,
		RetryBaseDelay: cfg.RetryBaseDelay,
		Timeout:        cfg.RequestTimeout,
	})

	var snapshot batch.SnapshotFunc
	if !cfg.DisableMetrics {
		c.registry = metrics.NewRegistry()
		c.requestCount = c.registry.Counter("http_requests_total")
		c.requestDuration = c.registry.Histogram("http_request_duration_seconds", "s")
		c.runtime = rtime.New(c.registry, 0)
		snapshot = c.metricsSnapshot
	}

	c.sender = batch.New(c.transport, batch.Config{
		BufferCap:     cfg.BufferCap,
		ChunkSize:     cfg.ChunkSize,
		FlushInterval: cfg.FlushInterval,
	}, snapshot)

	if cfg.EnableRealtime {
		c.realtime = realtime.New(realtime.Config{
			URL:    cfg.WSBase + "/stream",
			APIKey: cfg.APIKey,
		})
	}

	return c, nil
}

// Start arms the flush timer, the runtime collector, and the realtime
// connection. Idempotence is not required of callers; a second Start is
// rejected.
func (c *Client) Start(ctx context.Context) error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.started {
		return errors.New("rootsense: client already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true

	c.sender.Start(c.ctx)
	if c.runtime != nil {
		go c.runtime.Start(c.ctx)
	}
	if c.realtime != nil {
		c.realtime.Connect()
	}
	return nil
}

// CaptureError records err with optional request/response context and
// enqueues the resulting event for delivery. Returns the event for
// correlation, or nil when err is nil or error tracking is disabled.
// Never panics into the host.
func (c *Client) CaptureError(err error, cctx *tracker.Context) (ev *event.ErrorEvent) {
	defer func() {
		if r := recover(); r != nil {
			c.log.WithField("panic", r).Error("capture path failed internally, event dropped")
			ev = nil
		}
	}()

	if err == nil || c.cfg.DisableErrorTracking {
		return nil
	}

	ev = c.tracker.CaptureError(err, cctx)
	c.sender.Add(ev)
	if c.realtime != nil {
		c.realtime.SendError(ev)
	}
	return ev
}

// CaptureMessage records a free-form message event at the given level.
func (c *Client) CaptureMessage(message, level string) *event.MessageEvent {
	if message == "" {
		return nil
	}
	if level == "" {
		level = "info"
	}
	ev := &event.MessageEvent{
		Base:    c.newBase(event.TypeMessage),
		Message: message,
		Level:   level,
		Service: c.cfg.Service,
	}
	c.sender.Add(ev)
	return ev
}

// RecordRequest tracks one served HTTP request in the local registry.
// The aggregates ride along with the next flush.
func (c *Client) RecordRequest(method, route string, statusCode int, duration time.Duration) {
	if c.registry == nil {
		return
	}
	status := strconv.Itoa(statusCode)
	c.requestCount.Inc("method", method, "route", route, "status", status)
	c.requestDuration.Observe(duration.Seconds(), "method", method, "route", route, "status", status)
}

// AddBreadcrumb appends a trail entry to the rolling window attached to
// future error events.
func (c *Client) AddBreadcrumb(message, category, level string, data map[string]any) {
	if c.cfg.DisableErrorTracking {
		return
	}
	c.tracker.AddBreadcrumb(message, category, level, data)
}

// Breadcrumbs returns a copy of the current breadcrumb trail.
func (c *Client) Breadcrumbs() []event.Breadcrumb {
	return c.tracker.Breadcrumbs()
}

// SendSuccessSignal fires a best-effort hint that an operation tied to
// fingerprint succeeded, so a previously reported incident can
// auto-resolve. Fire-and-forget: failures are logged at debug only.
func (c *Client) SendSuccessSignal(fingerprint string, successCtx map[string]any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.RequestTimeout)
		defer cancel()
		if err := c.transport.SendSuccess(ctx, fingerprint, successCtx); err != nil {
			c.log.WithField("error", err).Debug("success signal not delivered")
		}
	}()
}

// Registry exposes the local metric registry for custom instruments.
// Nil when metrics are disabled.
func (c *Client) Registry() *metrics.Registry {
	return c.registry
}

// Flush forces one flush cycle. No-op if a flush is already running.
func (c *Client) Flush(ctx context.Context) error {
	return c.sender.Flush(ctx)
}

// Shutdown stops the periodic timer, closes the realtime channel, and
// drains the buffer once so nothing is silently discarded. ctx bounds
// the final drain, giving shutdown a hard process-exit deadline.
func (c *Client) Shutdown(ctx context.Context) error {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.started = false

	if c.realtime != nil {
		c.realtime.Close()
	}
	if c.cancel != nil {
		c.cancel()
	}
	c.lifecycleMu.Unlock()

	return c.sender.Stop(ctx)
}

// Recover is meant to be deferred at goroutine boundaries: it captures
// a panic as an error event and swallows it.
func (c *Client) Recover() {
	if r := recover(); r != nil {
		c.capturePanic(r)
	}
}

// RecoverRepanic captures a panic, flushes briefly so the event is not
// lost with the process, then re-panics to let normal crash handling
// continue.
func (c *Client) RecoverRepanic() {
	if r := recover(); r != nil {
		c.capturePanic(r)
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		c.Flush(ctx)
		cancel()
		panic(r)
	}
}

func (c *Client) capturePanic(r any) {
	err, ok := r.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", r)
	}
	c.CaptureError(err, &tracker.Context{
		Additional: map[string]any{"panic": true},
	})
}

func (c *Client) newBase(t event.Type) event.Base {
	return event.NewBase(t, c.cfg.Environment, c.cfg.ProjectID, c.tags)
}

// metricsSnapshot bridges the registry into wire events for a flush and
// duplicates them onto the realtime channel.
func (c *Client) metricsSnapshot() []event.Event {
	events := metrics.ToEvents(c.registry.Snapshot(), func() event.Base {
		return c.newBase(event.TypeMetric)
	})
	if c.realtime != nil {
		c.realtime.SendMetrics(events)
	}
	return events
}
