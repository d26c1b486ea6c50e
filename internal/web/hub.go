package web

import (
	"sync"

	"github.com/google/uuid"

	"github.com/abelbrown/earout/internal/logging"
)

// sessionBuffer is the per-session event channel depth. Sessions that fall
// further behind than this lose events rather than block emitters
// (at-least-once delivery is only promised to sessions that keep up).
const sessionBuffer = 64

// Event is one named event queued for delivery to a session.
type Event struct {
	Name    string
	Payload any
}

// Session is one connected client stream.
type Session struct {
	ID     string
	events chan Event
}

// Events exposes the session's delivery channel for the transport writer.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Hub routes events to connected sessions. It implements the emitter
// boundary used by the orchestrator and the live poller.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[string]*Session)}
}

// Register creates a session and returns it.
func (h *Hub) Register() *Session {
	s := &Session{
		ID:     uuid.NewString(),
		events: make(chan Event, sessionBuffer),
	}
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	return s
}

// Unregister removes a session and closes its channel.
func (h *Hub) Unregister(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[id]; ok {
		delete(h.sessions, id)
		close(s.events)
	}
}

// SessionCount returns the number of connected sessions.
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Emit queues an event for one session. Unknown sessions are dropped
// silently: a run always completes even after its requester disconnects.
func (h *Hub) Emit(sessionID, name string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	// The lock is held across the send so a concurrent Unregister cannot
	// close the channel mid-send.
	if s, ok := h.sessions[sessionID]; ok {
		h.send(s, Event{Name: name, Payload: payload})
	}
}

// Broadcast queues an event for every connected session.
func (h *Hub) Broadcast(name string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, s := range h.sessions {
		h.send(s, Event{Name: name, Payload: payload})
	}
}

// send is non-blocking: a full session loses the event.
func (h *Hub) send(s *Session, ev Event) {
	select {
	case s.events <- ev:
	default:
		logging.Debug("event dropped (session not keeping up)", "session", s.ID, "event", ev.Name)
	}
}
