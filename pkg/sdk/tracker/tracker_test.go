package tracker

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/sanitize"
)

func newTestTracker(sanitizePII bool) *Tracker {
	return New(Config{
		Service:       "checkout",
		Environment:   "test",
		ProjectID:     "proj-1",
		SanitizePII:   sanitizePII,
		BlockedFields: sanitize.DefaultBlockedFields,
	})
}

func TestCaptureErrorBasics(t *testing.T) {
	tr := newTestTracker(true)

	ev := tr.CaptureError(errors.New("boom"), nil)

	require.NotNil(t, ev)
	assert.Equal(t, event.TypeError, ev.Kind())
	assert.Equal(t, "boom", ev.Message)
	assert.Equal(t, "errors.errorString", ev.ExceptionType)
	assert.Equal(t, "checkout", ev.Service)
	assert.Len(t, ev.Fingerprint, 16)
	assert.NotEmpty(t, ev.Stack)
	assert.NotEmpty(t, ev.ID)
}

func TestCaptureErrorFingerprintStable(t *testing.T) {
	tr := newTestTracker(true)
	ctx := &Context{Request: &Request{Path: "/orders"}}

	a := tr.CaptureError(errors.New("first"), ctx)
	b := tr.CaptureError(errors.New("second, textually different"), ctx)

	// Same error type, service, and endpoint group under one incident.
	assert.Equal(t, a.Fingerprint, b.Fingerprint)
}

func TestCaptureErrorSanitizesContext(t *testing.T) {
	tr := newTestTracker(true)

	ev := tr.CaptureError(errors.New("boom"), &Context{
		Request: &Request{
			Method:  "POST",
			Path:    "/orders",
			Headers: map[string]string{"Authorization": "Bearer tok", "Accept": "*/*"},
			Query:   map[string]string{"user": "u1"},
			Body:    map[string]any{"password": "hunter2", "note": "a@b.io"},
		},
		Response: &Response{
			StatusCode: 500,
			DurationMS: 12.5,
		},
		Additional: map[string]any{"api_key": "k", "order": 7},
	})

	require.NotNil(t, ev.Request)
	assert.Equal(t, "POST", ev.Method)
	assert.Equal(t, "/orders", ev.Endpoint)
	assert.Equal(t, sanitize.Redacted, ev.Request.Headers["Authorization"])
	assert.Equal(t, "*/*", ev.Request.Headers["Accept"])

	body := ev.Request.Body.(map[string]any)
	assert.Equal(t, sanitize.Redacted, body["password"])
	assert.Equal(t, sanitize.RedactedEmail, body["note"])

	require.NotNil(t, ev.Response)
	assert.Equal(t, 500, ev.StatusCode)
	assert.Equal(t, 12.5, ev.Response.DurationMS)

	assert.Equal(t, sanitize.Redacted, ev.Additional["api_key"])
	assert.Equal(t, 7, ev.Additional["order"])
}

func TestCaptureErrorSanitizationDisabled(t *testing.T) {
	tr := newTestTracker(false)

	ev := tr.CaptureError(errors.New("boom"), &Context{
		Request: &Request{
			Path:    "/x",
			Headers: map[string]string{"Authorization": "Bearer tok"},
		},
	})

	assert.Equal(t, "Bearer tok", ev.Request.Headers["Authorization"])
}

func TestCaptureErrorCarriesCorrelationIDs(t *testing.T) {
	tr := newTestTracker(true)

	ev := tr.CaptureError(errors.New("boom"), &Context{TraceID: "t1", SpanID: "s1"})

	assert.Equal(t, "t1", ev.TraceID)
	assert.Equal(t, "s1", ev.SpanID)
}

func TestCaptureErrorNilError(t *testing.T) {
	tr := newTestTracker(true)

	ev := tr.CaptureError(nil, nil)

	require.NotNil(t, ev)
	assert.Equal(t, "unknown error", ev.Message)
}

func TestBreadcrumbCap(t *testing.T) {
	tr := newTestTracker(true)

	for i := 0; i < 150; i++ {
		tr.AddBreadcrumb(fmt.Sprintf("crumb %d", i), "", "", nil)
	}

	crumbs := tr.Breadcrumbs()
	require.Len(t, crumbs, MaxBreadcrumbs)
	// Oldest evicted first: 0..49 gone, 50 is now the head.
	assert.Equal(t, "crumb 50", crumbs[0].Message)
	assert.Equal(t, "crumb 149", crumbs[len(crumbs)-1].Message)
}

func TestBreadcrumbDefaults(t *testing.T) {
	tr := newTestTracker(true)

	tr.AddBreadcrumb("hello", "", "", nil)

	crumbs := tr.Breadcrumbs()
	require.Len(t, crumbs, 1)
	assert.Equal(t, "custom", crumbs[0].Category)
	assert.Equal(t, "info", crumbs[0].Level)
	assert.False(t, crumbs[0].Timestamp.IsZero())
}

func TestBreadcrumbDataSanitized(t *testing.T) {
	tr := newTestTracker(true)

	tr.AddBreadcrumb("login", "auth", "info", map[string]any{"password": "p", "user": "u"})

	crumbs := tr.Breadcrumbs()
	require.Len(t, crumbs, 1)
	assert.Equal(t, sanitize.Redacted, crumbs[0].Data["password"])
	assert.Equal(t, "u", crumbs[0].Data["user"])
}

func TestBreadcrumbsReturnsCopy(t *testing.T) {
	tr := newTestTracker(true)
	tr.AddBreadcrumb("one", "", "", nil)

	crumbs := tr.Breadcrumbs()
	crumbs[0].Message = "mutated"

	assert.Equal(t, "one", tr.Breadcrumbs()[0].Message)
}

func TestCapturedBreadcrumbsAreSnapshot(t *testing.T) {
	tr := newTestTracker(true)
	tr.AddBreadcrumb("before", "", "", nil)

	ev := tr.CaptureError(errors.New("boom"), nil)
	tr.AddBreadcrumb("after", "", "", nil)

	require.Len(t, ev.Breadcrumbs, 1)
	assert.Equal(t, "before", ev.Breadcrumbs[0].Message)
}
