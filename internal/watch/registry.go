// Package watch tracks which brands are being live-polled and how far each
// (source, brand) pair has been read.
package watch

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Key identifies one (source, entity) watermark.
type Key struct {
	Source string
	Entity string
}

// Registry is the process-wide set of watched entities plus per-(source,
// entity) watermarks. Entries persist for the process lifetime; there is no
// unwatch operation. Goroutine-safe: watch requests add entities while the
// poller reads and advances watermarks.
type Registry struct {
	mu         sync.RWMutex
	entities   map[string]struct{}
	watermarks map[Key]time.Time
	start      time.Time // default watermark for unseen (source, entity) pairs
}

// NewRegistry creates a registry. start becomes the default watermark, so
// the poller only ever reports items newer than its own start.
func NewRegistry(start time.Time) *Registry {
	return &Registry{
		entities:   make(map[string]struct{}),
		watermarks: make(map[Key]time.Time),
		start:      start.UTC(),
	}
}

// Normalize canonicalizes an entity name: lowercased and trimmed.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Add registers an entity for live polling and returns its normalized form.
func (r *Registry) Add(name string) string {
	entity := Normalize(name)
	r.mu.Lock()
	r.entities[entity] = struct{}{}
	r.mu.Unlock()
	return entity
}

// Entities returns a sorted snapshot of the watched entities. Entities added
// after the snapshot is taken are picked up on the next call.
func (r *Registry) Entities() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.entities))
	for e := range r.entities {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Watermark returns the instant after which items are new for the pair,
// defaulting to the registry start time.
func (r *Registry) Watermark(source, entity string) time.Time {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if wm, ok := r.watermarks[Key{Source: source, Entity: entity}]; ok {
		return wm
	}
	return r.start
}

// Advance moves the watermark for the pair forward to ts. Regressions are
// ignored so the watermark is monotonic regardless of result order.
func (r *Registry) Advance(source, entity string, ts time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Key{Source: source, Entity: entity}
	current, ok := r.watermarks[key]
	if !ok {
		current = r.start
	}
	if ts.After(current) {
		r.watermarks[key] = ts.UTC()
	}
}
