// Package model defines the core data types shared across the EarOut
// pipeline: classified mentions and their sentiment labels.
package model

// Sentiment is a classification label attached to a mention.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// Platform tags identify the origin class of a mention.
const (
	PlatformNews       = "News"
	PlatformHackerNews = "Hacker News"
	PlatformReddit     = "Reddit"
	PlatformDevTo      = "Dev.to"
)

// Mention is one classified occurrence of a tracked brand at some source.
// The struct is the wire payload for mention_batch and live_mention_update
// events; field names are part of the client contract.
//
// Text is never empty: connectors drop items lacking usable text before
// emission. Timestamp is an ISO-8601 string; ParseTimestamp recovers the
// absolute instant (zone-less values are assumed UTC).
type Mention struct {
	Platform  string    `json:"platform"`
	Source    string    `json:"source"`
	Text      string    `json:"text"`
	Sentiment Sentiment `json:"sentiment"`
	URL       string    `json:"url"`
	Timestamp string    `json:"timestamp"`
}
