package connector

import (
	"context"
	"net/http"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/model"
)

// rssMaxEntries caps how many feed entries are considered per cycle.
const rssMaxEntries = 15

// RSS fetches mentions from a single RSS/Atom feed. Only entries whose
// title contains the brand (case-insensitive) become mentions.
type RSS struct {
	name   string
	url    string
	client *http.Client
	cls    classify.Classifier
	parser *gofeed.Parser
}

// NewRSS creates a connector for one configured feed.
func NewRSS(name, url string, deps Deps) *RSS {
	parser := gofeed.NewParser()
	parser.Client = deps.Client
	parser.UserAgent = userAgent
	return &RSS{
		name:   name,
		url:    url,
		client: deps.Client,
		cls:    deps.Classifier,
		parser: parser,
	}
}

func (r *RSS) Name() string     { return r.name }
func (r *RSS) Platform() string { return r.name }

func (r *RSS) Fetch(ctx context.Context, brand string) ([]model.Mention, error) {
	feed, err := r.parser.ParseURLWithContext(r.url, ctx)
	if err != nil {
		return nil, err
	}

	entries := feed.Items
	if len(entries) > rssMaxEntries {
		entries = entries[:rssMaxEntries]
	}

	var mentions []model.Mention
	var texts []string
	for _, entry := range entries {
		if entry.Title == "" {
			continue
		}
		if !strings.Contains(strings.ToLower(entry.Title), strings.ToLower(brand)) {
			continue
		}

		summary := stripHTML(entry.Description)

		ts := nowFunc()
		if entry.PublishedParsed != nil {
			ts = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			ts = *entry.UpdatedParsed
		}

		mentions = append(mentions, model.Mention{
			Platform:  r.name,
			Source:    r.name,
			Text:      entry.Title,
			URL:       entry.Link,
			Timestamp: model.FormatTimestamp(ts),
		})
		texts = append(texts, classifyText(entry.Title, summary))
	}

	if err := classifyInto(ctx, r.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}
