package watch

import (
	"reflect"
	"testing"
	"time"
)

func TestAddNormalizesAndDeduplicates(t *testing.T) {
	r := NewRegistry(time.Now())

	if got := r.Add("  Acme Corp "); got != "acme corp" {
		t.Errorf("expected normalized entity, got %q", got)
	}
	r.Add("ACME CORP")
	r.Add("acme corp")
	r.Add("zeta")
	r.Add("beta")

	want := []string{"acme corp", "beta", "zeta"}
	if got := r.Entities(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestWatermarkDefaultsToStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(start)

	if got := r.Watermark("Hacker News", "acme"); !got.Equal(start) {
		t.Errorf("expected start watermark %v, got %v", start, got)
	}
}

func TestAdvanceIsMonotonic(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(start)

	later := start.Add(time.Hour)
	r.Advance("Reddit", "acme", later)
	if got := r.Watermark("Reddit", "acme"); !got.Equal(later) {
		t.Errorf("expected %v after advance, got %v", later, got)
	}

	// Regressions are ignored.
	r.Advance("Reddit", "acme", start.Add(time.Minute))
	if got := r.Watermark("Reddit", "acme"); !got.Equal(later) {
		t.Errorf("watermark regressed to %v", got)
	}

	// Advancing below start on a fresh pair does nothing.
	r.Advance("Reddit", "other", start.Add(-time.Hour))
	if got := r.Watermark("Reddit", "other"); !got.Equal(start) {
		t.Errorf("expected start for fresh pair, got %v", got)
	}
}

func TestWatermarksAreIndependentPerPair(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	r := NewRegistry(start)

	r.Advance("Reddit", "acme", start.Add(time.Hour))

	if got := r.Watermark("Hacker News", "acme"); !got.Equal(start) {
		t.Errorf("other source moved: %v", got)
	}
	if got := r.Watermark("Reddit", "globex"); !got.Equal(start) {
		t.Errorf("other entity moved: %v", got)
	}
}
