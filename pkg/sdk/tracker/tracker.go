// Package tracker builds error events from raw errors plus optional
// request/response context, and owns the breadcrumb trail attached to
// them. It exists to observe errors, so nothing in here is allowed to
// raise a new one into the host.
package tracker

import (
	"reflect"
	"runtime/debug"
	"sync"
	"time"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/fingerprint"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/sanitize"
)

// MaxBreadcrumbs caps the rolling breadcrumb window. Oldest entries are
// evicted first.
const MaxBreadcrumbs = 100

// Config is read-only after construction.
type Config struct {
	Service       string
	Environment   string
	ProjectID     string
	Tags          map[string]string
	SanitizePII   bool
	BlockedFields []string
}

// Request describes the inbound HTTP request active at capture time.
type Request struct {
	Method    string
	Path      string
	Headers   map[string]string
	Query     map[string]string
	Params    map[string]string
	IP        string
	UserAgent string
	Body      any
}

// Response describes the outbound response, if one was produced.
type Response struct {
	StatusCode int
	Headers    map[string]string
	DurationMS float64
	Body       any
}

// Context is the optional capture-time context supplied by the caller
// or a framework adapter.
type Context struct {
	Request    *Request
	Response   *Response
	Additional map[string]any
	TraceID    string
	SpanID     string
}

// Tracker owns the breadcrumb ring and constructs error events.
type Tracker struct {
	cfg Config

	mu     sync.Mutex
	crumbs []event.Breadcrumb
}

func New(cfg Config) *Tracker {
	return &Tracker{cfg: cfg}
}

// CaptureError builds a fully-formed error event from err and ctx. It
// never fails: if sanitization or fingerprinting blows up internally, a
// best-effort event with the bare error message comes back instead.
func (t *Tracker) CaptureError(err error, ctx *Context) (ev *event.ErrorEvent) {
	defer func() {
		if r := recover(); r != nil {
			internal.GetLogger().WithField("panic", r).Warn("error capture degraded to minimal event")
			ev = t.minimalEvent(err)
		}
	}()

	endpoint := "unknown"
	if ctx != nil && ctx.Request != nil && ctx.Request.Path != "" {
		endpoint = ctx.Request.Path
	}

	excType := errType(err)
	ev = &event.ErrorEvent{
		Base:          event.NewBase(event.TypeError, t.cfg.Environment, t.cfg.ProjectID, t.cfg.Tags),
		ExceptionType: excType,
		Message:       errMessage(err),
		Stack:         string(debug.Stack()),
		Fingerprint:   fingerprint.Hash(excType, t.cfg.Service, endpoint),
		Service:       t.cfg.Service,
	}

	if ctx != nil {
		t.applyContext(ev, ctx)
	}

	if crumbs := t.Breadcrumbs(); len(crumbs) > 0 {
		ev.Breadcrumbs = crumbs
	}

	return ev
}

// AddBreadcrumb appends a trail entry, sanitizing its data when PII
// scrubbing is enabled and evicting the oldest entries beyond the cap.
func (t *Tracker) AddBreadcrumb(message, category, level string, data map[string]any) {
	if category == "" {
		category = "custom"
	}
	if level == "" {
		level = "info"
	}
	if data != nil && t.cfg.SanitizePII {
		if m, ok := sanitize.Value(data, t.cfg.BlockedFields).(map[string]any); ok {
			data = m
		}
	}

	crumb := event.Breadcrumb{
		Timestamp: time.Now().UTC(),
		Category:  category,
		Message:   message,
		Level:     level,
		Data:      data,
	}

	t.mu.Lock()
	t.crumbs = append(t.crumbs, crumb)
	if overflow := len(t.crumbs) - MaxBreadcrumbs; overflow > 0 {
		t.crumbs = t.crumbs[overflow:]
	}
	t.mu.Unlock()
}

// Breadcrumbs returns a copy of the current trail. Mutating the returned
// slice cannot affect tracker state.
func (t *Tracker) Breadcrumbs() []event.Breadcrumb {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.crumbs) == 0 {
		return nil
	}
	out := make([]event.Breadcrumb, len(t.crumbs))
	copy(out, t.crumbs)
	return out
}

func (t *Tracker) applyContext(ev *event.ErrorEvent, ctx *Context) {
	ev.TraceID = ctx.TraceID
	ev.SpanID = ctx.SpanID

	if req := ctx.Request; req != nil {
		ev.Method = req.Method
		ev.Endpoint = req.Path
		ev.Request = &event.RequestInfo{
			Method:    req.Method,
			Path:      req.Path,
			IP:        req.IP,
			UserAgent: req.UserAgent,
		}
		if t.cfg.SanitizePII {
			ev.Request.Headers = sanitize.Headers(req.Headers, t.cfg.BlockedFields)
			ev.Request.Query = asStringMap(sanitize.Value(req.Query, t.cfg.BlockedFields), req.Query)
			ev.Request.Params = asStringMap(sanitize.Value(req.Params, t.cfg.BlockedFields), req.Params)
			ev.Request.Body = sanitize.Value(req.Body, t.cfg.BlockedFields)
		} else {
			ev.Request.Headers = req.Headers
			ev.Request.Query = req.Query
			ev.Request.Params = req.Params
			ev.Request.Body = req.Body
		}
	}

	if resp := ctx.Response; resp != nil {
		ev.StatusCode = resp.StatusCode
		ev.Response = &event.ResponseInfo{
			StatusCode: resp.StatusCode,
			DurationMS: resp.DurationMS,
		}
		if t.cfg.SanitizePII {
			ev.Response.Headers = sanitize.Headers(resp.Headers, t.cfg.BlockedFields)
			ev.Response.Body = sanitize.Value(resp.Body, t.cfg.BlockedFields)
		} else {
			ev.Response.Headers = resp.Headers
			ev.Response.Body = resp.Body
		}
	}

	if ctx.Additional != nil {
		additional := ctx.Additional
		if t.cfg.SanitizePII {
			if m, ok := sanitize.Value(additional, t.cfg.BlockedFields).(map[string]any); ok {
				additional = m
			}
		}
		ev.Additional = additional
	}
}

func (t *Tracker) minimalEvent(err error) *event.ErrorEvent {
	return &event.ErrorEvent{
		Base:          event.NewBase(event.TypeError, t.cfg.Environment, t.cfg.ProjectID, t.cfg.Tags),
		ExceptionType: "error",
		Message:       errMessage(err),
		Fingerprint:   fingerprint.Hash("error", t.cfg.Service, "unknown"),
		Service:       t.cfg.Service,
	}
}

// errType reports the concrete Go type of err, pointer-stripped, as the
// wire's exception class name.
func errType(err error) string {
	if err == nil {
		return "error"
	}
	rt := reflect.TypeOf(err)
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.String() == "" {
		return "error"
	}
	return rt.String()
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func asStringMap(sanitized any, fallback map[string]string) map[string]string {
	if m, ok := sanitized.(map[string]string); ok {
		return m
	}
	return fallback
}
