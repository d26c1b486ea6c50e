package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/model"
)

const (
	hnEndpoint       = "https://hn.algolia.com/api/v1/search"
	hnHitsPerPage    = 30
	hnCommentPreview = 100
)

// HackerNews fetches stories and comments mentioning the brand via the
// Algolia search API. Watermark-aware: incremental fetches push the
// watermark into the query itself (created_at_i numeric filter), so the
// origin never re-sends previously seen items.
type HackerNews struct {
	client   *http.Client
	cls      classify.Classifier
	limiter  *rate.Limiter
	endpoint string
}

// NewHackerNews creates the Hacker News connector.
func NewHackerNews(deps Deps) *HackerNews {
	return &HackerNews{
		client:   deps.Client,
		cls:      deps.Classifier,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 1),
		endpoint: hnEndpoint,
	}
}

func (h *HackerNews) Name() string     { return "Hacker News" }
func (h *HackerNews) Platform() string { return model.PlatformHackerNews }

// hnResponse is the Algolia search result shape.
type hnResponse struct {
	Hits []struct {
		Title       string `json:"title"`
		CommentText string `json:"comment_text"`
		StoryURL    string `json:"story_url"`
		ObjectID    string `json:"objectID"`
		CreatedAtI  int64  `json:"created_at_i"`
	} `json:"hits"`
}

func (h *HackerNews) Fetch(ctx context.Context, brand string) ([]model.Mention, error) {
	return h.fetch(ctx, brand, time.Time{})
}

// FetchNewSince returns only items created strictly after since.
func (h *HackerNews) FetchNewSince(ctx context.Context, brand string, since time.Time) ([]model.Mention, error) {
	return h.fetch(ctx, brand, since)
}

func (h *HackerNews) fetch(ctx context.Context, brand string, since time.Time) ([]model.Mention, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("query", brand)
	q.Set("tags", "(story,comment)")
	q.Set("hitsPerPage", fmt.Sprint(hnHitsPerPage))
	if !since.IsZero() {
		q.Set("numericFilters", fmt.Sprintf("created_at_i>%d", since.Unix()))
	}

	var resp hnResponse
	if err := getJSON(ctx, h.client, h.endpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var mentions []model.Mention
	var texts []string
	for _, hit := range resp.Hits {
		display := hit.Title
		if display == "" && hit.CommentText != "" {
			display = truncate(hit.CommentText, hnCommentPreview) + "..."
		}
		if display == "" {
			continue
		}

		link := hit.StoryURL
		if link == "" {
			link = "https://news.ycombinator.com/item?id=" + hit.ObjectID
		}

		ts := nowFunc()
		if hit.CreatedAtI > 0 {
			ts = time.Unix(hit.CreatedAtI, 0).UTC()
		}

		mentions = append(mentions, model.Mention{
			Platform:  model.PlatformHackerNews,
			Source:    "Hacker News",
			Text:      display,
			URL:       link,
			Timestamp: model.FormatTimestamp(ts),
		})
		texts = append(texts, classifyText(hit.Title, hit.CommentText))
	}

	if err := classifyInto(ctx, h.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}
