package web

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// recordingRunner captures dispatched searches.
type recordingRunner struct {
	mu   sync.Mutex
	runs []struct{ session, brand string }
}

func (r *recordingRunner) Go(ctx context.Context, sessionID, brand string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, struct{ session, brand string }{sessionID, brand})
}

func (r *recordingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.runs)
}

func newTestHandlers(runner SearchRunner) (*Handlers, *Hub) {
	hub := NewHub()
	return &Handlers{hub: hub, runner: runner, ctx: context.Background()}, hub
}

func TestHandleSearchDispatches(t *testing.T) {
	runner := &recordingRunner{}
	h, _ := newTestHandlers(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/search",
		strings.NewReader(`{"brand":"Acme","session_id":"sess-1"}`))
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("expected 202, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"accepted"`) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
	if runner.count() != 1 {
		t.Fatalf("expected 1 dispatched run, got %d", runner.count())
	}
	if run := runner.runs[0]; run.session != "sess-1" || run.brand != "Acme" {
		t.Errorf("unexpected run %+v", run)
	}
}

func TestHandleSearchIgnoresEmptyBrand(t *testing.T) {
	runner := &recordingRunner{}
	h, _ := newTestHandlers(runner)

	for _, body := range []string{`{"brand":""}`, `{"brand":"   "}`, `{}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(body))
		rec := httptest.NewRecorder()
		h.HandleSearch(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("body %s: expected 204, got %d", body, rec.Code)
		}
	}
	if runner.count() != 0 {
		t.Errorf("expected no dispatched runs, got %d", runner.count())
	}
}

func TestHandleSearchRejectsBadJSON(t *testing.T) {
	runner := &recordingRunner{}
	h, _ := newTestHandlers(runner)

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.HandleSearch(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestEventsStreamDeliversFrames(t *testing.T) {
	runner := &recordingRunner{}
	hub := NewHub()
	srv := httptest.NewServer(NewServer(context.Background(), "", hub, runner).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected SSE content type, got %q", ct)
	}
	sessionID := resp.Header.Get("X-Session-ID")
	if sessionID == "" {
		t.Fatal("missing X-Session-ID header")
	}

	reader := bufio.NewReader(resp.Body)

	// First frame is the session comment.
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !strings.HasPrefix(line, ": session "+sessionID) {
		t.Errorf("unexpected first frame %q", line)
	}

	// Wait for the session to land in the hub, then emit to it.
	deadline := time.Now().Add(time.Second)
	for hub.SessionCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	hub.Emit(sessionID, "status_update", map[string]string{"message": "Searching News..."})

	var frame []string
	for len(frame) < 2 {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line != "" {
			frame = append(frame, line)
		}
	}
	if frame[0] != "event: status_update" {
		t.Errorf("unexpected event line %q", frame[0])
	}
	if frame[1] != `data: {"message":"Searching News..."}` {
		t.Errorf("unexpected data line %q", frame[1])
	}
}

func TestEventsStreamUnregistersOnDisconnect(t *testing.T) {
	runner := &recordingRunner{}
	hub := NewHub()
	srv := httptest.NewServer(NewServer(context.Background(), "", hub, runner).Handler)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events")
	if err != nil {
		t.Fatalf("connect failed: %v", err)
	}
	resp.Body.Close()

	deadline := time.Now().Add(time.Second)
	for hub.SessionCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := hub.SessionCount(); got != 0 {
		t.Errorf("expected session cleanup after disconnect, got %d live", got)
	}
}

func TestSecurityHeaders(t *testing.T) {
	runner := &recordingRunner{}
	hub := NewHub()
	srv := httptest.NewServer(NewServer(context.Background(), "", hub, runner).Handler)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/search", "application/json", strings.NewReader(`{"brand":"acme"}`))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	if got := resp.Header.Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("expected nosniff, got %q", got)
	}
	if got := resp.Header.Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("expected DENY, got %q", got)
	}
}
