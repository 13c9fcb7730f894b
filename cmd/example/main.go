// Command example is a demo host application wired to a local
// devserver collector. Run the devserver first, then:
//
//	ROOTSENSE_API_KEY=dev go run ./cmd/example
//
// Then hit http://localhost:8000/ and http://localhost:8000/boom.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/FemiOfficial/rootsense-go/pkg/sdk"
	"github.com/FemiOfficial/rootsense-go/pkg/sdk/httpx"
)

func main() {
	ctx := context.Background()

	client, err := sdk.Init(ctx, sdk.ClientConfig{
		APIKey:         getEnv("ROOTSENSE_API_KEY", "dev"),
		Service:        "example-app",
		Environment:    "development",
		APIBase:        "http://localhost:8090/v1",
		WSBase:         "ws://localhost:8090/v1",
		EnableRealtime: true,
		FlushInterval:  5 * time.Second,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "sdk init:", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		client.AddBreadcrumb("serving index", "http", "info", nil)
		fmt.Fprintln(w, "hello from the example app")
	})
	mux.HandleFunc("/boom", func(w http.ResponseWriter, r *http.Request) {
		err := errors.New("simulated checkout failure")
		client.CaptureError(err, nil)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	})
	mux.HandleFunc("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("deliberate panic for the middleware to catch")
	})

	srv := &http.Server{
		Addr:    ":8000",
		Handler: httpx.Middleware(client)(mux),
	}

	go func() {
		fmt.Println("example app on :8000")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintln(os.Stderr, err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	client.Shutdown(shutdownCtx)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
