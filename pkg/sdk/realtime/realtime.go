// Package realtime is the optional low-latency side channel: a
// persistent websocket that duplicates error and metric events for live
// dashboards. It offers no delivery guarantee (sends while disconnected
// are dropped, never queued) and its reconnect loop is fully decoupled
// from the batch pipeline.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
)

type connState int

const (
	stateDisconnected connState = iota
	stateConnecting
	stateConnected
)

// sendQueueSize bounds the frames waiting on the writer goroutine.
// Overflow drops the frame, same policy as the collector hub's relay.
const sendQueueSize = 64

// Config holds channel settings. Zero values are filled by New.
type Config struct {
	URL    string // full stream URL, e.g. wss://stream.example.com/v1/stream
	APIKey string

	MaxAttempts   int           // reconnects before giving up for the process lifetime, default 10
	BaseDelay     time.Duration // reconnect backoff base, default 1s
	MaxDelay      time.Duration // reconnect backoff cap, default 30s
	WriteDeadline time.Duration // per-frame write deadline, default 10s
}

// Frame is the wire shape for one side-channel message.
type Frame struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Channel is a reconnecting websocket client. Callers only ever enqueue;
// a single writer goroutine owns the socket, so a stalled peer can never
// block the host's capture path.
type Channel struct {
	cfg Config
	log *logrus.Logger

	frames chan Frame
	done   chan struct{}
	writer sync.Once

	mu       sync.Mutex
	conn     *websocket.Conn
	state    connState
	attempts int
	retry    *time.Timer
	closed   bool
}

func New(cfg Config) *Channel {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 10
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = time.Second
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 30 * time.Second
	}
	if cfg.WriteDeadline <= 0 {
		cfg.WriteDeadline = 10 * time.Second
	}
	return &Channel{
		cfg:    cfg,
		log:    internal.GetLogger(),
		frames: make(chan Frame, sendQueueSize),
		done:   make(chan struct{}),
	}
}

// Connect opens the connection eagerly in the background and starts the
// writer goroutine.
func (c *Channel) Connect() {
	c.writer.Do(func() { go c.writeLoop() })
	go c.dial()
}

// SendError pushes one error event. Dropped silently unless connected.
func (c *Channel) SendError(ev *event.ErrorEvent) {
	c.send(Frame{Type: "error", Data: ev})
}

// SendMetrics pushes a set of metric events. Dropped silently unless
// connected.
func (c *Channel) SendMetrics(events []event.Event) {
	if len(events) == 0 {
		return
	}
	c.send(Frame{Type: "metrics", Data: events})
}

// Close cancels any pending reconnect, stops the writer, and tears down
// the socket. The channel cannot be reused afterwards.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	if c.retry != nil {
		c.retry.Stop()
		c.retry = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.state = stateDisconnected
}

func (c *Channel) dial() {
	c.mu.Lock()
	if c.closed || c.state != stateDisconnected {
		c.mu.Unlock()
		return
	}
	c.state = stateConnecting
	c.mu.Unlock()

	header := http.Header{}
	if c.cfg.APIKey != "" {
		header.Set("X-API-Key", c.cfg.APIKey)
	}
	conn, resp, err := websocket.DefaultDialer.Dial(c.cfg.URL, header)
	if resp != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		if conn != nil {
			conn.Close()
		}
		return
	}
	if err != nil {
		c.state = stateDisconnected
		c.log.WithFields(logrus.Fields{"url": c.cfg.URL, "error": err}).Debug("realtime connect failed")
		c.scheduleReconnectLocked()
		return
	}

	c.conn = conn
	c.state = stateConnected
	c.attempts = 0
	go c.readLoop(conn)
}

// readLoop exists to detect peer closes; inbound frames are discarded.
func (c *Channel) readLoop(conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			c.dropConn(conn)
			return
		}
	}
}

// send enqueues a frame for the writer goroutine. It never touches the
// socket and never blocks: disconnected or queue-full frames are dropped.
func (c *Channel) send(frame Frame) {
	c.mu.Lock()
	connected := c.state == stateConnected && c.conn != nil
	c.mu.Unlock()

	if !connected {
		return
	}
	select {
	case c.frames <- frame:
	default:
		c.log.Debug("realtime send queue full, dropping frame")
	}
}

// writeLoop is the only goroutine that writes to the socket.
func (c *Channel) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case frame := <-c.frames:
			c.writeFrame(frame)
		}
	}
}

func (c *Channel) writeFrame(frame Frame) {
	c.mu.Lock()
	conn := c.conn
	connected := c.state == stateConnected
	c.mu.Unlock()

	// The connection may have dropped between enqueue and write.
	if !connected || conn == nil {
		return
	}

	conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteDeadline))
	if err := conn.WriteJSON(frame); err != nil {
		c.log.WithField("error", err).Debug("realtime write failed")
		c.dropConn(conn)
	}
}

func (c *Channel) dropConn(conn *websocket.Conn) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}
	conn.Close()
	c.conn = nil
	c.state = stateDisconnected
	c.scheduleReconnectLocked()
}

// scheduleReconnectLocked arms the backoff timer. Gives up permanently
// once the attempt budget is spent. Caller holds c.mu.
func (c *Channel) scheduleReconnectLocked() {
	if c.closed {
		return
	}
	if c.attempts >= c.cfg.MaxAttempts {
		c.log.WithField("attempts", c.attempts).Warn("realtime channel giving up on reconnect")
		return
	}

	delay := c.cfg.BaseDelay * (1 << c.attempts)
	if delay > c.cfg.MaxDelay {
		delay = c.cfg.MaxDelay
	}
	c.attempts++
	c.retry = time.AfterFunc(delay, c.dial)
}
