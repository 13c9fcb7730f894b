package sdk

import (
	"context"
	"sync"
)

// One telemetry pipeline per process. The guard is explicit rather than
// module-level mutable state so tests can reset it deterministically.
var (
	singletonMu sync.Mutex
	singleton   *Client
)

// Init creates, starts, and installs the process-wide client. Re-init
// is idempotent: subsequent calls return the existing instance and
// ignore the new config.
func Init(ctx context.Context, cfg ClientConfig) (*Client, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()

	if singleton != nil {
		return singleton, nil
	}

	c, err := New(cfg)
	if err != nil {
		return nil, err
	}
	if err := c.Start(ctx); err != nil {
		return nil, err
	}
	singleton = c
	return c, nil
}

// Get returns the process-wide client, or nil before Init.
func Get() *Client {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	return singleton
}

// ResetForTesting drops the process-wide handle so the next Init builds
// a fresh client. The caller is responsible for shutting down the old
// instance first.
func ResetForTesting() {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	singleton = nil
}
