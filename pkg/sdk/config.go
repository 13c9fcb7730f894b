package sdk

import (
	"time"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk/sanitize"
)

// ClientConfig configures the SDK. It is treated as immutable once
// passed to New; no component mutates shared config at runtime.
type ClientConfig struct {
	// APIKey authenticates every outbound request. Required.
	APIKey string
	// Service names the host application in every event. Required.
	Service string

	APIBase     string // collector REST base, default https://api.rootsense.io/v1
	WSBase      string // realtime stream base, default wss://stream.rootsense.io/v1
	Environment string // default "production"
	Release     string
	ProjectID   string
	Tags        map[string]string

	BufferCap      int           // pending-event cap triggering an early flush, default 1000
	FlushInterval  time.Duration // periodic flush timer, default 10s
	ChunkSize      int           // events per POST, default 100
	RetryAttempts  int           // delivery attempts per chunk, default 3
	RetryBaseDelay time.Duration // retry backoff base, default 1s
	RequestTimeout time.Duration // per-attempt HTTP timeout, default 10s

	DisableErrorTracking bool
	DisableMetrics       bool
	DisablePIIScrubbing  bool
	EnableRealtime       bool

	// BlockedFields extends the default PII field-name blocklist.
	BlockedFields []string
}

func (cfg *ClientConfig) applyDefaults() {
	if cfg.APIBase == "" {
		cfg.APIBase = "https://api.rootsense.io/v1"
	}
	if cfg.WSBase == "" {
		cfg.WSBase = "wss://stream.rootsense.io/v1"
	}
	if cfg.Environment == "" {
		cfg.Environment = "production"
	}
	if cfg.BufferCap <= 0 {
		cfg.BufferCap = 1000
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 10 * time.Second
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 100
	}
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
}

// blockedFields merges the custom list onto the defaults.
func (cfg *ClientConfig) blockedFields() []string {
	merged := make([]string, 0, len(sanitize.DefaultBlockedFields)+len(cfg.BlockedFields))
	merged = append(merged, sanitize.DefaultBlockedFields...)
	merged = append(merged, cfg.BlockedFields...)
	return merged
}

// eventTags builds the tag map stamped onto every event: caller tags
// plus the service/release identifiers.
func (cfg *ClientConfig) eventTags() map[string]string {
	tags := make(map[string]string, len(cfg.Tags)+2)
	for k, v := range cfg.Tags {
		tags[k] = v
	}
	tags["service"] = cfg.Service
	if cfg.Release != "" {
		tags["release"] = cfg.Release
	}
	return tags
}
