// Package batch owns the pending-event buffer and the flush cycle: the
// system's delivery core. Events are accepted without ever blocking the
// caller, held in insertion order, and shipped in fixed-size chunks.
// Delivery failures are logged and dropped, never surfaced to the host.
package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/transport"
)

// Config holds configuration for the sender.
type Config struct {
	BufferCap     int           // capacity trigger for opportunistic flush, default 1000
	ChunkSize     int           // events per POST, default 100
	FlushInterval time.Duration // periodic flush timer, default 10s
}

// SnapshotFunc supplies extra events (the metrics bridge output) to
// append to a flush's private batch after the buffer swap.
type SnapshotFunc func() []event.Event

// Sender is the buffered batch sender.
type Sender struct {
	cfg       Config
	transport transport.Transport
	snapshot  SnapshotFunc
	log       *logrus.Logger

	mu     sync.Mutex
	events []event.Event

	// Single-flight guard: at most one flush owns the network at a time.
	flushing atomic.Bool

	// ctx only stops the flush loop. In-flight deliveries run under
	// their own context so stopping the timer cannot abandon a batch
	// that was already swapped out of the buffer.
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a sender. snapshot may be nil.
func New(t transport.Transport, cfg Config, snapshot SnapshotFunc) *Sender {
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = 1000
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}

	return &Sender{
		cfg:       cfg,
		transport: t,
		snapshot:  snapshot,
		log:       internal.GetLogger(),
		events:    make([]event.Event, 0, cfg.BufferCap),
		done:      make(chan struct{}),
	}
}

// Start arms the periodic flush timer.
func (s *Sender) Start(ctx context.Context) {
	s.ctx, s.cancel = context.WithCancel(ctx)
	go s.flushLoop()
}

// Add appends an event to the buffer in constant time. When the buffer
// reaches capacity an out-of-band flush is kicked off fire-and-forget;
// Add itself never waits on network I/O.
func (s *Sender) Add(ev event.Event) {
	if ev == nil {
		return
	}

	s.mu.Lock()
	s.events = append(s.events, ev)
	atCapacity := len(s.events) >= s.cfg.BufferCap
	s.mu.Unlock()

	if atCapacity && s.flushing.CompareAndSwap(false, true) {
		go func() {
			defer s.flushing.Store(false)
			// Deliver under a fresh context: the loop-stop context must
			// not be able to abandon a batch that was already swapped
			// out of the buffer.
			s.flush(context.Background())
		}()
	}
}

// Flush performs one synchronous flush cycle. It is a no-op when a
// flush is already in progress or the buffer is empty. Delivery
// failures are logged, not returned; the only error a caller can see is
// its own context expiring.
func (s *Sender) Flush(ctx context.Context) error {
	if !s.flushing.CompareAndSwap(false, true) {
		return nil
	}
	defer s.flushing.Store(false)
	return s.flush(ctx)
}

// Stop stops the periodic timer and performs one final drain so nothing
// buffered is silently discarded on graceful exit. This is the one
// place a flush is awaited by the caller.
func (s *Sender) Stop(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}

	// An in-flight capacity flush must not let the single-flight guard
	// skip the final drain; wait for the guard instead.
	for !s.flushing.CompareAndSwap(false, true) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	defer s.flushing.Store(false)
	return s.flush(ctx)
}

// Pending reports the current buffer length. Diagnostic only.
func (s *Sender) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func (s *Sender) flushLoop() {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			if s.flushing.CompareAndSwap(false, true) {
				s.flush(context.Background())
				s.flushing.Store(false)
			}
		}
	}
}

// flush swaps out the shared buffer up front so concurrent Add calls
// accumulate into a fresh buffer during the network round-trip, then
// sends the captured batch sequentially in insertion order. Callers
// must hold the flushing flag.
func (s *Sender) flush(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	pending := s.events
	s.events = make([]event.Event, 0, s.cfg.BufferCap)
	s.mu.Unlock()

	if s.snapshot != nil {
		pending = append(pending, s.snapshot()...)
	}
	if len(pending) == 0 {
		return nil
	}

	for start := 0; start < len(pending); start += s.cfg.ChunkSize {
		end := start + s.cfg.ChunkSize
		if end > len(pending) {
			end = len(pending)
		}
		chunk := pending[start:end]

		err := s.transport.SendChunk(ctx, chunk)
		if err == nil {
			continue
		}

		var perm *transport.PermanentError
		switch {
		case errors.As(err, &perm):
			s.log.WithFields(logrus.Fields{
				"status": perm.StatusCode,
				"events": len(chunk),
			}).Error("collector rejected chunk, dropping without retry")
		case ctx.Err() != nil:
			s.log.WithField("events", len(pending)-start).Warn("flush canceled, dropping remaining chunks")
			return ctx.Err()
		default:
			s.log.WithFields(logrus.Fields{
				"events": len(chunk),
				"error":  err,
			}).Error("chunk delivery failed after retries, dropping")
		}
	}
	return nil
}
