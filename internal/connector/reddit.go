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
	redditEndpoint = "https://www.reddit.com/search.json"
	redditLimit    = 25
)

// Reddit fetches posts mentioning the brand via the public search endpoint.
// Results are requested newest-first; incremental fetches filter on the
// watermark client-side since the API has no cursor on creation time.
type Reddit struct {
	client   *http.Client
	cls      classify.Classifier
	limiter  *rate.Limiter
	endpoint string
}

// NewReddit creates the Reddit connector.
func NewReddit(deps Deps) *Reddit {
	return &Reddit{
		client:   deps.Client,
		cls:      deps.Classifier,
		limiter:  rate.NewLimiter(rate.Every(2*time.Second), 1),
		endpoint: redditEndpoint,
	}
}

func (r *Reddit) Name() string     { return "Reddit" }
func (r *Reddit) Platform() string { return model.PlatformReddit }

// redditResponse is the search.json result shape.
type redditResponse struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Subreddit  string  `json:"subreddit"`
				Permalink  string  `json:"permalink"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (r *Reddit) Fetch(ctx context.Context, brand string) ([]model.Mention, error) {
	return r.fetch(ctx, brand, time.Time{})
}

// FetchNewSince returns only posts created strictly after since.
func (r *Reddit) FetchNewSince(ctx context.Context, brand string, since time.Time) ([]model.Mention, error) {
	return r.fetch(ctx, brand, since)
}

func (r *Reddit) fetch(ctx context.Context, brand string, since time.Time) ([]model.Mention, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", brand)
	q.Set("sort", "new")
	q.Set("limit", fmt.Sprint(redditLimit))

	var resp redditResponse
	if err := getJSON(ctx, r.client, r.endpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var mentions []model.Mention
	var texts []string
	for _, post := range resp.Data.Children {
		data := post.Data
		if data.Title == "" {
			continue
		}

		created := time.Unix(int64(data.CreatedUTC), 0).UTC()
		if !since.IsZero() && !created.After(since) {
			continue
		}

		subreddit := data.Subreddit
		if subreddit == "" {
			subreddit = "unknown"
		}

		mentions = append(mentions, model.Mention{
			Platform:  model.PlatformReddit,
			Source:    "r/" + subreddit,
			Text:      data.Title,
			URL:       "https://www.reddit.com" + data.Permalink,
			Timestamp: model.FormatTimestamp(created),
		})
		texts = append(texts, classifyText(data.Title, data.Selftext))
	}

	if err := classifyInto(ctx, r.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}
