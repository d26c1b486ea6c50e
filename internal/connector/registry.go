package connector

import (
	"net/http"

	"github.com/abelbrown/earout/internal/classify"
	"github.com/abelbrown/earout/internal/config"
)

// Deps holds the shared collaborators injected into every connector.
type Deps struct {
	Classifier classify.Classifier
	Client     *http.Client
}

// fill backfills zero-value collaborators with defaults.
func (d *Deps) fill() {
	if d.Client == nil {
		d.Client = &http.Client{Timeout: requestTimeout}
	}
}

// Defaults builds the configured connector set: the news connector (with
// optional GNews failover), Hacker News, Reddit, Dev.to, and one RSS
// connector per configured feed.
func Defaults(cfg *config.Config, deps Deps) []Connector {
	deps.fill()

	connectors := []Connector{
		NewNews(cfg.NewsAPIKey, cfg.GNewsAPIKey, deps),
		NewHackerNews(deps),
		NewReddit(deps),
		NewDevTo(deps),
	}
	for _, feed := range cfg.RSSFeeds {
		connectors = append(connectors, NewRSS(feed.Name, feed.URL, deps))
	}
	return connectors
}

// Incrementals filters the watermark-aware connectors out of a set, in the
// same relative order.
func Incrementals(connectors []Connector) []Incremental {
	var out []Incremental
	for _, c := range connectors {
		if inc, ok := c.(Incremental); ok {
			out = append(out, inc)
		}
	}
	return out
}
