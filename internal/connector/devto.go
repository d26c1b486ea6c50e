package connector

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/model"
)

const (
	devtoEndpoint = "https://dev.to/api/articles"
	devtoPerPage  = 30
)

// DevTo fetches articles mentioning the brand from the public dev.to API.
type DevTo struct {
	client   *http.Client
	cls      classify.Classifier
	endpoint string
}

// NewDevTo creates the Dev.to connector.
func NewDevTo(deps Deps) *DevTo {
	return &DevTo{
		client:   deps.Client,
		cls:      deps.Classifier,
		endpoint: devtoEndpoint,
	}
}

func (d *DevTo) Name() string     { return "Dev.to" }
func (d *DevTo) Platform() string { return model.PlatformDevTo }

// devtoArticle is one entry in the articles listing.
type devtoArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

func (d *DevTo) Fetch(ctx context.Context, brand string) ([]model.Mention, error) {
	q := url.Values{}
	q.Set("q", brand)
	q.Set("per_page", fmt.Sprint(devtoPerPage))

	var articles []devtoArticle
	if err := getJSON(ctx, d.client, d.endpoint+"?"+q.Encode(), &articles); err != nil {
		return nil, err
	}

	var mentions []model.Mention
	var texts []string
	for _, a := range articles {
		if a.Title == "" {
			continue
		}
		mentions = append(mentions, model.Mention{
			Platform:  model.PlatformDevTo,
			Source:    "Dev.to",
			Text:      a.Title,
			URL:       a.URL,
			Timestamp: normalizeTimestamp(a.PublishedAt),
		})
		texts = append(texts, classifyText(a.Title, a.Description))
	}

	if err := classifyInto(ctx, d.cls, mentions, texts); err != nil {
		return nil, err
	}
	return mentions, nil
}
