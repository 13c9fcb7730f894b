package sdk

import (
	"time"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/tracker"
)

// Span is a minimal unit-of-work helper. Finishing a span emits a span
// event; errors captured through ErrorContext carry the span's
// correlation ids.
type Span struct {
	c        *Client
	name     string
	traceID  string
	spanID   string
	parentID string
	start    time.Time
}

// StartSpan begins a new root span.
func (c *Client) StartSpan(name string) *Span {
	return &Span{
		c:       c,
		name:    name,
		traceID: event.NewTraceID(),
		spanID:  event.NewSpanID(),
		start:   time.Now(),
	}
}

// StartChild begins a child span sharing this span's trace.
func (s *Span) StartChild(name string) *Span {
	return &Span{
		c:        s.c,
		name:     name,
		traceID:  s.traceID,
		spanID:   event.NewSpanID(),
		parentID: s.spanID,
		start:    time.Now(),
	}
}

func (s *Span) TraceID() string { return s.traceID }
func (s *Span) SpanID() string  { return s.spanID }

// ErrorContext returns a capture context carrying this span's
// correlation ids, for use with CaptureError.
func (s *Span) ErrorContext() *tracker.Context {
	return &tracker.Context{TraceID: s.traceID, SpanID: s.spanID}
}

// Finish emits the span event. status is "ok" or "error"; empty means
// "ok".
func (s *Span) Finish(status string) {
	if status == "" {
		status = "ok"
	}
	ev := &event.SpanEvent{
		Base:       s.c.newBase(event.TypeSpan),
		Name:       s.name,
		Service:    s.c.cfg.Service,
		TraceID:    s.traceID,
		SpanID:     s.spanID,
		ParentID:   s.parentID,
		Status:     status,
		DurationMS: float64(time.Since(s.start).Microseconds()) / 1000.0,
	}
	s.c.sender.Add(ev)
}
