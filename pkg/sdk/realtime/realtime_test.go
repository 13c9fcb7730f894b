package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
)

// streamServer accepts one websocket client at a time and collects
// every frame it receives.
type streamServer struct {
	mu      sync.Mutex
	frames  []Frame
	apiKeys []string

	srv      *httptest.Server
	upgrader websocket.Upgrader
}

func newStreamServer(t *testing.T) *streamServer {
	ss := &streamServer{}
	ss.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ss.mu.Lock()
		ss.apiKeys = append(ss.apiKeys, r.Header.Get("X-API-Key"))
		ss.mu.Unlock()

		conn, err := ss.upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for {
			var frame Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			ss.mu.Lock()
			ss.frames = append(ss.frames, frame)
			ss.mu.Unlock()
		}
	}))
	t.Cleanup(ss.srv.Close)
	return ss
}

func (ss *streamServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ss.srv.URL, "http")
}

func (ss *streamServer) frameCount() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.frames)
}

func (ss *streamServer) frame(i int) Frame {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return ss.frames[i]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func (c *Channel) connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateConnected
}

func errEvent(msg string) *event.ErrorEvent {
	return &event.ErrorEvent{
		Base:    event.NewBase(event.TypeError, "test", "proj", nil),
		Message: msg,
	}
}

func TestSendErrorWhileConnected(t *testing.T) {
	ss := newStreamServer(t)

	ch := New(Config{URL: ss.wsURL(), APIKey: "key-9"})
	defer ch.Close()
	ch.Connect()
	waitFor(t, ch.connected)

	ch.SendError(errEvent("boom"))
	waitFor(t, func() bool { return ss.frameCount() == 1 })

	frame := ss.frame(0)
	assert.Equal(t, "error", frame.Type)

	data, ok := frame.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "boom", data["message"])

	ss.mu.Lock()
	defer ss.mu.Unlock()
	require.Len(t, ss.apiKeys, 1)
	assert.Equal(t, "key-9", ss.apiKeys[0])
}

func TestSendMetricsFrameShape(t *testing.T) {
	ss := newStreamServer(t)

	ch := New(Config{URL: ss.wsURL()})
	defer ch.Close()
	ch.Connect()
	waitFor(t, ch.connected)

	v := 1.0
	ch.SendMetrics([]event.Event{&event.MetricEvent{
		Base:  event.NewBase(event.TypeMetric, "test", "proj", nil),
		Name:  "requests",
		Value: &v,
	}})
	waitFor(t, func() bool { return ss.frameCount() == 1 })

	assert.Equal(t, "metrics", ss.frame(0).Type)
}

func TestSendDroppedWhenDisconnected(t *testing.T) {
	ss := newStreamServer(t)

	ch := New(Config{URL: ss.wsURL()})
	defer ch.Close()

	// Never connected; sends must be silent no-ops.
	ch.SendError(errEvent("dropped"))
	ch.SendMetrics([]event.Event{errEvent("dropped too")})

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, ss.frameCount())
}

func TestSendMetricsEmptyNoop(t *testing.T) {
	ss := newStreamServer(t)

	ch := New(Config{URL: ss.wsURL()})
	defer ch.Close()
	ch.Connect()
	waitFor(t, ch.connected)

	ch.SendMetrics(nil)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 0, ss.frameCount())
}

func TestSendNeverBlocksCaller(t *testing.T) {
	// A peer that completes the handshake but never reads, so socket
	// writes stall until the write deadline.
	stall := make(chan struct{})
	t.Cleanup(func() { close(stall) })

	var upgrader websocket.Upgrader
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		<-stall
	}))
	t.Cleanup(srv.Close)

	ch := New(Config{
		URL:           "ws" + strings.TrimPrefix(srv.URL, "http"),
		WriteDeadline: 700 * time.Millisecond,
	})
	defer ch.Close()
	ch.Connect()
	waitFor(t, ch.connected)

	payload := strings.Repeat("x", 1<<20)
	start := time.Now()
	for i := 0; i < 32; i++ {
		ev := errEvent("big")
		ev.Stack = payload
		ch.SendError(ev)
	}
	elapsed := time.Since(start)

	// Callers only enqueue; even with every write stalling on the
	// deadline, the capture path must return immediately.
	assert.Less(t, elapsed, 100*time.Millisecond,
		"SendError blocked the caller for %v", elapsed)
}

func TestReconnectAfterPeerClose(t *testing.T) {
	ss := newStreamServer(t)

	ch := New(Config{URL: ss.wsURL(), BaseDelay: 10 * time.Millisecond})
	defer ch.Close()
	ch.Connect()
	waitFor(t, ch.connected)

	// Kill the live socket server-side; the channel should dial again.
	ch.mu.Lock()
	ch.conn.Close()
	ch.mu.Unlock()

	waitFor(t, func() bool {
		ss.mu.Lock()
		defer ss.mu.Unlock()
		return len(ss.apiKeys) >= 2
	})
	waitFor(t, ch.connected)
}

func TestGivesUpAfterMaxAttempts(t *testing.T) {
	// Point at a closed server so every dial fails.
	ss := newStreamServer(t)
	url := ss.wsURL()
	ss.srv.Close()

	ch := New(Config{URL: url, MaxAttempts: 2, BaseDelay: 5 * time.Millisecond})
	defer ch.Close()
	ch.Connect()

	waitFor(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return ch.attempts >= 2
	})
	// Let the final armed dial fail and hit the attempt budget.
	time.Sleep(100 * time.Millisecond)

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.Equal(t, stateDisconnected, ch.state)
	assert.Equal(t, 2, ch.attempts)
}

func TestCloseCancelsReconnect(t *testing.T) {
	ss := newStreamServer(t)
	url := ss.wsURL()
	ss.srv.Close()

	ch := New(Config{URL: url, BaseDelay: time.Hour})
	ch.Connect()

	// Wait for the first failed dial to arm the retry timer.
	waitFor(t, func() bool {
		ch.mu.Lock()
		defer ch.mu.Unlock()
		return ch.retry != nil
	})

	ch.Close()

	ch.mu.Lock()
	defer ch.mu.Unlock()
	assert.True(t, ch.closed)
	assert.Nil(t, ch.retry)
	assert.Nil(t, ch.conn)
}
