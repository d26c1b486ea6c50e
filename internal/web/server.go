// Package web exposes the client-facing surface: a Server-Sent Events stream
// per session and the search command endpoint.
package web

import (
	"context"
	"net/http"
	"time"
)

// NewServer creates the HTTP server for the client event stream and command
// endpoints. ctx is the process lifecycle context handed to detached search
// runs.
func NewServer(ctx context.Context, addr string, hub *Hub, runner SearchRunner) *http.Server {
	h := &Handlers{
		hub:    hub,
		runner: runner,
		ctx:    ctx,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /events", h.HandleEvents)
	mux.HandleFunc("POST /api/search", h.HandleSearch)

	return &http.Server{
		Addr:              addr,
		Handler:           securityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// securityHeaders adds security-related HTTP headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		next.ServeHTTP(w, r)
	})
}
