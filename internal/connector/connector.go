// Package connector fetches raw content from external sources and shapes it
// into classified mentions.
//
// Every connector queries its origin with a small fixed result cap, builds
// one classification input per item (title plus a truncated body), invokes
// the sentiment classifier in a single batched call per fetch cycle, and
// drops items without usable text before that batch is built so labels and
// items never misalign.
package connector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/model"
)

const (
	// maxContentLength caps the body portion of a classification input so
	// classifier latency stays bounded regardless of source payload size.
	maxContentLength = 512

	// requestTimeout bounds each origin request.
	requestTimeout = 10 * time.Second

	// userAgent identifies us to origins that require one.
	userAgent = "EarOut/1.0 (brand mention monitor)"
)

// nowFunc is the clock used for timestamp fallbacks. Tests swap it.
var nowFunc = time.Now

// Connector fetches mentions of a brand from one external source.
// Fetch is synchronous; the caller offloads it so it never blocks sibling
// sources. A failed fetch yields an error and no mentions; it must never
// panic.
type Connector interface {
	// Name returns the human-readable source name.
	Name() string

	// Platform returns the platform tag stamped on emitted mentions.
	Platform() string

	// Fetch retrieves and classifies current mentions of the brand.
	Fetch(ctx context.Context, brand string) ([]model.Mention, error)
}

// Incremental is implemented by connectors that can restrict a fetch to
// items strictly newer than a watermark. The live poller only drives these.
type Incremental interface {
	Connector

	// FetchNewSince returns only mentions published strictly after since.
	FetchNewSince(ctx context.Context, brand string, since time.Time) ([]model.Mention, error)
}

// classifyInto stamps sentiment labels onto mentions using one batched
// classifier call. len(texts) must equal len(mentions); the 1:1 pairing is
// positional. A classifier failure drops the whole batch for this cycle.
func classifyInto(ctx context.Context, cls classify.Classifier, mentions []model.Mention, texts []string) error {
	if len(mentions) != len(texts) {
		return fmt.Errorf("connector: %d mentions for %d texts", len(mentions), len(texts))
	}
	if len(mentions) == 0 {
		return nil
	}

	labels, err := cls.ClassifyBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(labels) != len(mentions) {
		return fmt.Errorf("connector: classifier returned %d labels for %d texts", len(labels), len(texts))
	}

	for i, lbl := range labels {
		mentions[i].Sentiment = toSentiment(lbl.Label)
	}
	return nil
}

// toSentiment maps a classifier label onto the mention sentiment enum.
func toSentiment(label string) model.Sentiment {
	switch strings.ToUpper(label) {
	case "POSITIVE":
		return model.SentimentPositive
	case "NEGATIVE":
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// classifyText assembles the classification input for one item: the
// title-like field plus the body truncated to maxContentLength.
func classifyText(title, body string) string {
	return title + ". " + truncate(body, maxContentLength)
}

// truncate shortens a string to maxLen runes. Rune-aware to avoid breaking
// UTF-8 characters.
func truncate(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}

// stripHTML reduces an HTML fragment to its text content. Falls back to the
// raw input if the fragment does not parse.
func stripHTML(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
