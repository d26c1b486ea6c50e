// Package event defines the names and payload shapes of events pushed to
// client sessions. Names are part of the wire contract and must not change.
package event

// Event names.
const (
	StatusUpdate      = "status_update"
	MentionBatch      = "mention_batch"
	SummaryUpdate     = "summary_update"
	ActivityUpdate    = "activity_update"
	SearchComplete    = "search_complete"
	LiveMentionUpdate = "live_mention_update"
)

// Status is the payload of a status_update event.
type Status struct {
	Message string `json:"message"`
}

// Sentiment is the percentage breakdown carried by a summary_update event.
// Percentages sum to 100 for any non-empty mention list; NEUTRAL absorbs
// rounding as the remainder of the two classified labels.
type Sentiment struct {
	Positive int `json:"POSITIVE"`
	Negative int `json:"NEGATIVE"`
	Neutral  int `json:"NEUTRAL"`
}

// Summary is the payload of a summary_update event. Exactly one of the two
// fields is set per emission: sentiment after each mention batch, topics at
// finalization.
type Summary struct {
	Sentiment *Sentiment `json:"sentiment,omitempty"`
	Topics    []string   `json:"topics,omitempty"`
}
