package event

import (
	"time"

	"github.com/google/uuid"
)

// Type discriminates the event union on the wire.
type Type string

const (
	TypeError   Type = "error"
	TypeMessage Type = "message"
	TypeMetric  Type = "metric"
	TypeSpan    Type = "span"
)

// Event is any record the batch sender can buffer and deliver. Every
// concrete event is self-contained: the collector can parse it without
// reference to any prior event.
type Event interface {
	Kind() Type
}

// Base carries the fields common to all event variants.
type Base struct {
	ID          string            `json:"id"`
	Type        Type              `json:"type"`
	Timestamp   time.Time         `json:"timestamp"`
	Environment string            `json:"environment,omitempty"`
	ProjectID   string            `json:"project_id,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

// Kind returns the discriminant, satisfying Event for every variant
// that embeds Base.
func (b Base) Kind() Type { return b.Type }

// NewBase stamps a fresh id and UTC timestamp for a new event.
func NewBase(t Type, environment, projectID string, tags map[string]string) Base {
	return Base{
		ID:          uuid.NewString(),
		Type:        t,
		Timestamp:   time.Now().UTC(),
		Environment: environment,
		ProjectID:   projectID,
		Tags:        tags,
	}
}

// Breadcrumb is a single trail entry attached by value to error events.
type Breadcrumb struct {
	Timestamp time.Time      `json:"timestamp"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	Level     string         `json:"level"`
	Data      map[string]any `json:"data,omitempty"`
}

// RequestInfo is a sanitized snapshot of the inbound HTTP request that
// was in flight when an error was captured.
type RequestInfo struct {
	Method    string            `json:"method,omitempty"`
	Path      string            `json:"path,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`
	Query     map[string]string `json:"query,omitempty"`
	Params    map[string]string `json:"params,omitempty"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"user_agent,omitempty"`
	Body      any               `json:"body,omitempty"`
}

// ResponseInfo is the matching snapshot of the outbound response.
type ResponseInfo struct {
	StatusCode int               `json:"status_code,omitempty"`
	Headers    map[string]string `json:"headers,omitempty"`
	DurationMS float64           `json:"duration_ms,omitempty"`
	Body       any               `json:"body,omitempty"`
}

// ErrorEvent reports a captured error. Immutable once constructed.
type ErrorEvent struct {
	Base
	ExceptionType string         `json:"exception_type"`
	Message       string         `json:"message"`
	Stack         string         `json:"stack,omitempty"`
	Fingerprint   string         `json:"fingerprint"`
	Service       string         `json:"service"`
	Endpoint      string         `json:"endpoint,omitempty"`
	Method        string         `json:"method,omitempty"`
	StatusCode    int            `json:"status_code,omitempty"`
	TraceID       string         `json:"trace_id,omitempty"`
	SpanID        string         `json:"span_id,omitempty"`
	Request       *RequestInfo   `json:"request,omitempty"`
	Response      *ResponseInfo  `json:"response,omitempty"`
	Additional    map[string]any `json:"additional,omitempty"`
	Breadcrumbs   []Breadcrumb   `json:"breadcrumbs,omitempty"`
}

// MessageEvent is a free-form log-style event.
type MessageEvent struct {
	Base
	Message string `json:"message"`
	Level   string `json:"level"`
	Service string `json:"service,omitempty"`
}

// Aggregate holds the pre-aggregated form of a metric sample.
type Aggregate struct {
	Sum   float64 `json:"sum"`
	Count uint64  `json:"count"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// MetricEvent carries one labeled metric sample: either a single scalar
// Value or an Aggregate, never both.
type MetricEvent struct {
	Base
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Unit              string            `json:"unit,omitempty"`
	Labels            map[string]string `json:"labels,omitempty"`
	Value             *float64          `json:"value,omitempty"`
	Aggregate         *Aggregate        `json:"aggregate,omitempty"`
	TimeUnixNano      int64             `json:"time_unix_nano,omitempty"`
	StartTimeUnixNano int64             `json:"start_time_unix_nano,omitempty"`
}

// SpanEvent reports a finished unit of work within a trace.
type SpanEvent struct {
	Base
	Name       string  `json:"name"`
	Service    string  `json:"service,omitempty"`
	TraceID    string  `json:"trace_id"`
	SpanID     string  `json:"span_id"`
	ParentID   string  `json:"parent_id,omitempty"`
	Status     string  `json:"status"`
	DurationMS float64 `json:"duration_ms"`
}
