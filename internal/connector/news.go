package connector

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/logging"
	"github.com/abelbrown/earout/internal/model"
)

const (
	newsAPIEndpoint  = "https://newsapi.org/v2/everything"
	gnewsEndpoint    = "https://gnews.io/api/v4/search"
	newsAPIPageSize  = 40
	gnewsMaxResults  = 20
	removedTitleMark = "[Removed]"
)

// News fetches brand mentions from NewsAPI, failing over to GNews when the
// primary yields nothing. GNews is skipped when no key is configured.
type News struct {
	apiKey   string
	gnewsKey string
	client   *http.Client
	cls      classify.Classifier

	// overridable in tests
	endpoint      string
	gnewsEndpoint string
}

// NewNews creates the news connector.
func NewNews(apiKey, gnewsKey string, deps Deps) *News {
	return &News{
		apiKey:        apiKey,
		gnewsKey:      gnewsKey,
		client:        deps.Client,
		cls:           deps.Classifier,
		endpoint:      newsAPIEndpoint,
		gnewsEndpoint: gnewsEndpoint,
	}
}

func (n *News) Name() string     { return "News" }
func (n *News) Platform() string { return model.PlatformNews }

// newsAPIResponse is the NewsAPI /v2/everything result shape.
type newsAPIResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Fetch queries the primary provider first; the failover only runs when the
// primary errors or returns zero usable articles.
func (n *News) Fetch(ctx context.Context, brand string) ([]model.Mention, error) {
	mentions, err := n.fetchPrimary(ctx, brand)
	if err == nil && len(mentions) > 0 {
		return mentions, nil
	}
	if err != nil {
		logging.Warn("NewsAPI request failed", "brand", brand, "error", err)
	}

	if n.gnewsKey == "" {
		return mentions, err
	}

	fallback, ferr := n.fetchGNews(ctx, brand)
	if ferr != nil {
		logging.Error("GNews failover also failed", "brand", brand, "error", ferr)
		return mentions, err
	}
	return append(mentions, fallback...), nil
}

func (n *News) fetchPrimary(ctx context.Context, brand string) ([]model.Mention, error) {
	q := url.Values{}
	q.Set("q", brand)
	q.Set("apiKey", n.apiKey)
	q.Set("pageSize", fmt.Sprint(newsAPIPageSize))
	q.Set("language", "en")

	var resp newsAPIResponse
	if err := getJSON(ctx, n.client, n.endpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var mentions []model.Mention
	var texts []string
	for _, a := range resp.Articles {
		if a.Title == "" || a.Title == removedTitleMark {
			continue
		}
		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "Unknown Source"
		}
		mentions = append(mentions, model.Mention{
			Platform:  model.PlatformNews,
			Source:    sourceName,
			Text:      a.Title,
			URL:       a.URL,
			Timestamp: normalizeTimestamp(a.PublishedAt),
		})
		texts = append(texts, classifyText(a.Title, a.Description))
	}

	if err := classifyInto(ctx, n.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}

// gnewsResponse is the GNews /v4/search result shape.
type gnewsResponse struct {
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

func (n *News) fetchGNews(ctx context.Context, brand string) ([]model.Mention, error) {
	q := url.Values{}
	q.Set("q", brand)
	q.Set("token", n.gnewsKey)
	q.Set("lang", "en")
	q.Set("max", fmt.Sprint(gnewsMaxResults))

	var resp gnewsResponse
	if err := getJSON(ctx, n.client, n.gnewsEndpoint+"?"+q.Encode(), &resp); err != nil {
		return nil, err
	}

	var mentions []model.Mention
	var texts []string
	for _, a := range resp.Articles {
		if a.Title == "" {
			continue
		}
		sourceName := a.Source.Name
		if sourceName == "" {
			sourceName = "GNews"
		}
		mentions = append(mentions, model.Mention{
			Platform:  model.PlatformNews,
			Source:    sourceName,
			Text:      a.Title,
			URL:       a.URL,
			Timestamp: normalizeTimestamp(a.PublishedAt),
		})
		texts = append(texts, classifyText(a.Title, a.Description))
	}

	if err := classifyInto(ctx, n.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}

// getJSON performs a GET request and decodes the JSON response body.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// normalizeTimestamp re-renders an origin timestamp in wire form, falling
// back to "now" when the origin omits or mangles it.
func normalizeTimestamp(raw string) string {
	if raw == "" {
		return model.FormatTimestamp(nowFunc())
	}
	t, err := model.ParseTimestamp(raw)
	if err != nil {
		logging.Warn("skipping unparseable origin timestamp", "value", raw)
		return model.FormatTimestamp(nowFunc())
	}
	return model.FormatTimestamp(t)
}
