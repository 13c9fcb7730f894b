// Package transport delivers event chunks to the collector over HTTP.
// Retry policy: network errors and 5xx responses are retried with
// exponential backoff up to the configured attempt count; 4xx responses
// are permanent rejections and never retried.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/event"
)

// Transport is the abstract delivery surface the batch sender depends
// on.
type Transport interface {
	SendChunk(ctx context.Context, events []event.Event) error
	SendSuccess(ctx context.Context, fingerprint string, successCtx map[string]any) error
}

// Config holds delivery settings. Zero values are filled by NewHTTP.
type Config struct {
	APIBase     string
	APIKey      string
	ProjectID   string
	Environment string

	RetryAttempts  int           // total attempts per chunk, default 3
	RetryBaseDelay time.Duration // backoff base, default 1s
	Timeout        time.Duration // per-attempt timeout, default 10s
}

// PermanentError marks a 4xx collector response: the chunk is malformed
// or the credentials are bad, so retrying would only waste attempts.
type PermanentError struct {
	StatusCode int
}

func (e *PermanentError) Error() string {
	return fmt.Sprintf("collector rejected chunk with status %d", e.StatusCode)
}

// HTTP implements Transport against the collector's REST endpoints.
type HTTP struct {
	cfg   Config
	retry *retryablehttp.Client
	plain *http.Client
}

type batchPayload struct {
	Events []event.Event `json:"events"`
}

type successPayload struct {
	Fingerprint string         `json:"fingerprint"`
	Context     map[string]any `json:"context,omitempty"`
	ProjectID   string         `json:"project_id,omitempty"`
	Environment string         `json:"environment,omitempty"`
}

// NewHTTP creates a transport with the spec'd retry discipline.
func NewHTTP(cfg Config) *HTTP {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = cfg.RetryAttempts - 1
	retry.HTTPClient.Timeout = cfg.Timeout
	retry.Logger = internal.NewLeveledLogrus(internal.GetLogger())
	retry.CheckRetry = checkRetry
	retry.Backoff = func(_, _ time.Duration, attemptNum int, _ *http.Response) time.Duration {
		return cfg.RetryBaseDelay * (1 << attemptNum)
	}

	return &HTTP{
		cfg:   cfg,
		retry: retry,
		plain: &http.Client{Timeout: cfg.Timeout},
	}
}

// checkRetry retries on transport-level failure or 5xx; a 4xx response
// is returned to the caller untouched.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	return resp.StatusCode >= 500, nil
}

// SendChunk POSTs one chunk to the batch-ingest endpoint, retrying per
// policy. It returns nil on 2xx, *PermanentError on 4xx, and a wrapped
// error once retryable attempts are exhausted.
func (t *HTTP) SendChunk(ctx context.Context, events []event.Event) error {
	if len(events) == 0 {
		return nil
	}

	body, err := json.Marshal(batchPayload{Events: events})
	if err != nil {
		return fmt.Errorf("encode batch payload: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, t.cfg.APIBase+"/events/batch", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build batch request: %w", err)
	}
	t.setHeaders(req.Header)

	resp, err := t.retry.Do(req)
	if err != nil {
		return fmt.Errorf("deliver chunk: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return &PermanentError{StatusCode: resp.StatusCode}
	}
	return fmt.Errorf("deliver chunk: unexpected status %d", resp.StatusCode)
}

// SendSuccess fires a best-effort resolution hint at the success
// endpoint. No retries; the single attempt either lands or it doesn't.
func (t *HTTP) SendSuccess(ctx context.Context, fingerprint string, successCtx map[string]any) error {
	body, err := json.Marshal(successPayload{
		Fingerprint: fingerprint,
		Context:     successCtx,
		ProjectID:   t.cfg.ProjectID,
		Environment: t.cfg.Environment,
	})
	if err != nil {
		return fmt.Errorf("encode success payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.APIBase+"/events/success", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build success request: %w", err)
	}
	t.setHeaders(req.Header)

	resp, err := t.plain.Do(req)
	if err != nil {
		return fmt.Errorf("send success signal: %w", err)
	}
	defer drain(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("success signal rejected with status %d", resp.StatusCode)
	}
	return nil
}

func (t *HTTP) setHeaders(h http.Header) {
	h.Set("Content-Type", "application/json")
	if t.cfg.APIKey != "" {
		h.Set("X-API-Key", t.cfg.APIKey)
	}
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
