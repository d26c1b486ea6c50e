// EarOut - brand mention monitor
//
// Architecture overview:
//   Connectors (internal/connector)    - fetch + classify mentions per source
//   Orchestrator (internal/orchestrator) - per-request fan-out and streaming
//   Poller (internal/poll)             - background live updates via watermarks
//   Web (internal/web)                 - SSE sessions and command endpoint
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

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/config"
	"github.com/abelbrown/earout/internal/connector"
	"github.com/abelbrown/earout/internal/logging"
	"github.com/abelbrown/earout/internal/orchestrator"
	"github.com/abelbrown/earout/internal/poll"
	"github.com/abelbrown/earout/internal/topics"
	"github.com/abelbrown/earout/internal/watch"
	"github.com/abelbrown/earout/internal/web"
)

func main() {
	// Initialize logging
	if err := logging.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Load and validate configuration. Missing mandatory credentials abort
	// startup before any request handling begins.
	cfg, err := config.Load()
	if err != nil {
		fatal("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		fatal("CRITICAL: %v", err)
	}

	logging.Info("EarOut starting", "listen", cfg.Listen, "rss_feeds", len(cfg.RSSFeeds))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Shared process-wide state: watched entities + watermarks, rolling
	// topic corpus, session hub.
	registry := watch.NewRegistry(time.Now().UTC())
	corpus := topics.NewCorpus(topics.DefaultCapacity)
	hub := web.NewHub()

	// Collaborators: sentiment classifier and the connector set.
	classifier := classify.NewHFClassifier(cfg.Classifier.APIKey, cfg.Classifier.Endpoint)
	connectors := connector.Defaults(cfg, connector.Deps{Classifier: classifier})
	logging.Info("connectors initialized", "count", len(connectors))

	orch := orchestrator.New(connectors, registry, corpus, hub)

	// Live-update poller runs for the life of the process.
	poller := poll.New(
		registry,
		connector.Incrementals(connectors),
		hub,
		time.Duration(cfg.Poll.IntervalSeconds)*time.Second,
		time.Duration(cfg.Poll.EntityDelaySeconds)*time.Second,
	)
	poller.Start(ctx)

	server := web.NewServer(ctx, cfg.Listen, hub, orch)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	logging.Info("HTTP server listening", "addr", cfg.Listen)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal("Server error: %v", err)
		}
	case <-ctx.Done():
		logging.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error("server shutdown error", "error", err)
	}

	poller.Wait()
	logging.Info("EarOut exiting normally")
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
