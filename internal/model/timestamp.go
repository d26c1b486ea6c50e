package model

import (
	"fmt"
	"time"
)

// timestampLayouts are tried in order by ParseTimestamp. Layouts without a
// zone designator parse as UTC, which matches the naive-timestamps-are-UTC
// rule used throughout the pipeline.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTimestamp parses a mention timestamp into an absolute instant.
// Zone-less timestamps are interpreted as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
}

// FormatTimestamp renders an instant in the ISO-8601 form used on the wire.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
