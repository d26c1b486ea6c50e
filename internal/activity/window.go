// Package activity computes the trailing recent-activity view of a mention
// list.
package activity

import (
	"time"

	"github.com/abelbrown/earout/internal/logging"
	"github.com/abelbrown/earout/internal/model"
)

// Window is the trailing period a mention must fall into to count as recent.
const Window = 24 * time.Hour

// Timestamps returns the wire timestamps of mentions whose instant is
// strictly after now minus the window. Unparseable timestamps are logged and
// skipped, never fatal. Zone-less timestamps are treated as UTC by the
// parser.
func Timestamps(mentions []model.Mention, now time.Time) []string {
	cutoff := now.Add(-Window)

	out := make([]string, 0, len(mentions))
	for _, m := range mentions {
		ts, err := model.ParseTimestamp(m.Timestamp)
		if err != nil {
			logging.Warn("skipping invalid timestamp", "value", m.Timestamp)
			continue
		}
		if ts.After(cutoff) {
			out = append(out, m.Timestamp)
		}
	}
	return out
}
