// Command devserver runs a local RootSense collector: an ingest target
// for SDK development and integration testing. Not a production
// collector.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/FemiOfficial/rootsense-go/internal"
	"github.com/FemiOfficial/rootsense-go/pkg/collector"
)

const (
	serverReadTimeout  = 10 * time.Second
	serverWriteTimeout = 10 * time.Second
	shutdownTimeout    = 30 * time.Second
)

func main() {
	// Optional .env for local development
	godotenv.Load()

	log := internal.GetLogger()
	internal.SetLogLevel(logrus.InfoLevel)

	port := getEnv("ROOTSENSE_PORT", "8090")
	apiKey := os.Getenv("ROOTSENSE_API_KEY")
	dataDir := getEnv("ROOTSENSE_DATA_DIR", "./data/rootsense")

	store, err := openStore(dataDir)
	if err != nil {
		log.WithField("error", err).Fatal("store init failed")
	}
	defer store.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := collector.NewHub()
	go hub.Run(ctx)

	handler := collector.NewHandler(store, hub)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      collector.NewRouter(handler, apiKey),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
	}

	go func() {
		log.WithField("port", port).Info("collector listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithField("error", err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithField("error", err).Warn("shutdown incomplete")
	}
}

// openStore picks the in-memory store when ROOTSENSE_IN_MEMORY is set,
// otherwise persists to badger under dataDir.
func openStore(dataDir string) (collector.Store, error) {
	if os.Getenv("ROOTSENSE_IN_MEMORY") != "" {
		return collector.NewMemoryStore(), nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	return collector.NewBadgerStore(collector.BadgerConfig{Path: dataDir})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
