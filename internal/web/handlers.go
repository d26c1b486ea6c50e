package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/abelbrown/earout/internal/logging"
)

// heartbeatInterval keeps idle SSE connections alive through proxies.
const heartbeatInterval = 15 * time.Second

// SearchRunner dispatches one watch request as a detached background run.
type SearchRunner interface {
	Go(ctx context.Context, sessionID, brand string)
}

// Handlers carries the collaborators behind the HTTP surface.
type Handlers struct {
	hub    *Hub
	runner SearchRunner
	ctx    context.Context // process lifecycle, not request lifecycle
}

// HandleEvents serves one client session as a Server-Sent Events stream.
// The session ID is issued in the X-Session-ID response header and as the
// first comment frame; clients echo it on POST /api/search.
func (h *Handlers) HandleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	sess := h.hub.Register()
	defer h.hub.Unregister(sess.ID)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Session-ID", sess.ID)
	w.WriteHeader(http.StatusOK)

	fmt.Fprintf(w, ": session %s\n\n", sess.ID)
	flusher.Flush()

	logging.Info("client connected", "session", sess.ID)
	defer logging.Info("client disconnected", "session", sess.ID)

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case ev, ok := <-sess.Events():
			if !ok {
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent renders one SSE frame: the event name line and a JSON data line.
func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Payload)
	if err != nil {
		logging.Error("failed to encode event payload", "event", ev.Name, "error", err)
		return nil // skip the frame, keep the stream
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)
	return err
}

// searchRequest is the inbound start-search command.
type searchRequest struct {
	Brand     string `json:"brand"`
	SessionID string `json:"session_id"`
}

// HandleSearch dispatches a watch request. A missing or empty brand is
// ignored, mirroring the command contract. The run is detached: it always
// proceeds to completion regardless of what happens to this request or the
// requesting session.
func (h *Handlers) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Brand) == "" {
		logging.Debug("ignoring search request with empty brand")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	h.runner.Go(h.ctx, req.SessionID, req.Brand)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
