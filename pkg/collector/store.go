// Package collector is a small local collector for development and
// integration testing: it accepts the SDK's batch and success posts,
// persists events, and relays stream frames to connected dashboards.
package collector

import (
	"context"
	"encoding/json"
	"time"
)

// StoredEvent is one ingested event plus the envelope fields the store
// indexes on. Raw preserves the exact wire payload.
type StoredEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Fingerprint string          `json:"fingerprint,omitempty"`
	Service     string          `json:"service,omitempty"`
	Received    time.Time       `json:"received"`
	Raw         json.RawMessage `json:"raw"`
}

// Store persists ingested events.
type Store interface {
	// Append stores a batch in arrival order.
	Append(ctx context.Context, events []StoredEvent) error
	// Recent returns up to limit events, newest first.
	Recent(ctx context.Context, limit int) ([]StoredEvent, error)
	// MarkResolved records a success signal for a fingerprint.
	MarkResolved(ctx context.Context, fingerprint string) error
	// Resolved reports whether a fingerprint has a success signal.
	Resolved(ctx context.Context, fingerprint string) (bool, error)
	Close() error
}
