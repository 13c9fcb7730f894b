// Package sdk is the RootSense telemetry client: error tracking, HTTP
// request metrics, and span events captured in-process and shipped to a
// RootSense collector without degrading the host application.
//
// Design rules the whole package tree follows:
//
//   - Entry points never block on network I/O; they enqueue and return.
//   - Telemetry failures never propagate into the host. Only New/Init
//     can fail, and only on unusable configuration.
//   - Delivery is best-effort at-least-once: chunks that exhaust their
//     retry budget are dropped with a logged diagnostic.
//
// # Quick start
//
//	client, err := sdk.Init(ctx, sdk.ClientConfig{
//	    APIKey:  os.Getenv("ROOTSENSE_API_KEY"),
//	    Service: "checkout",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Shutdown(context.Background())
//
//	if err := chargeCard(order); err != nil {
//	    client.CaptureError(err, nil)
//	}
//
// # HTTP instrumentation
//
//	handler := httpx.Middleware(client)(mux)
//	http.ListenAndServe(":8080", handler)
//
// The middleware records a counter and latency histogram per normalized
// route and captures handler panics as error events.
//
// # Breadcrumbs
//
//	client.AddBreadcrumb("cache miss", "cache", "info", map[string]any{
//	    "key": cacheKey,
//	})
//
// The most recent 100 breadcrumbs are attached, by value, to each error
// event captured afterwards.
//
// # Delivery pipeline
//
// Events accumulate in an in-memory buffer owned by the batch sender.
// A periodic timer (or the buffer reaching capacity) triggers a flush:
// the buffer is swapped out atomically, a metrics snapshot is appended,
// and the batch is POSTed in fixed-size chunks, sequentially and in
// insertion order. Each chunk is attempted up to RetryAttempts times
// with exponential backoff; 4xx responses are dropped without retry.
// Shutdown stops the timer and drains the buffer once before returning.
//
// When EnableRealtime is set, error and metric events are additionally
// pushed over a persistent websocket for live dashboards. That channel
// is best-effort only: events sent while disconnected are dropped.
package sdk
