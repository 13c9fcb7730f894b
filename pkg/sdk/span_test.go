package sdk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanLifecycle(t *testing.T) {
	c, fc := newTestClient(t, nil)

	root := c.StartSpan("checkout")
	assert.Len(t, root.TraceID(), 32)
	assert.Len(t, root.SpanID(), 16)

	child := root.StartChild("charge-card")
	assert.Equal(t, root.TraceID(), child.TraceID())
	assert.NotEqual(t, root.SpanID(), child.SpanID())

	time.Sleep(time.Millisecond)
	child.Finish("error")
	root.Finish("")

	require.NoError(t, c.Flush(context.Background()))

	events := fc.allEvents()
	require.Len(t, events, 2)

	childEv, rootEv := events[0], events[1]
	assert.Equal(t, "span", childEv["type"])
	assert.Equal(t, "charge-card", childEv["name"])
	assert.Equal(t, "error", childEv["status"])
	assert.Equal(t, root.SpanID(), childEv["parent_id"])
	assert.Greater(t, childEv["duration_ms"].(float64), 0.0)

	assert.Equal(t, "ok", rootEv["status"], "empty status defaults to ok")
	assert.Nil(t, rootEv["parent_id"])
	assert.Equal(t, root.TraceID(), rootEv["trace_id"])
}

func TestSpanErrorContextCorrelation(t *testing.T) {
	c, _ := newTestClient(t, nil)

	span := c.StartSpan("checkout")
	ev := c.CaptureError(errors.New("boom"), span.ErrorContext())

	require.NotNil(t, ev)
	assert.Equal(t, span.TraceID(), ev.TraceID)
	assert.Equal(t, span.SpanID(), ev.SpanID)
}
