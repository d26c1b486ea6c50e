package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
)

// Config is the persistent application configuration
type Config struct {
	// Source API credentials
	NewsAPIKey  string `json:"news_api_key"`
	GNewsAPIKey string `json:"gnews_api_key,omitempty"` // optional failover provider

	// Sentiment classifier settings
	Classifier ClassifierConfig `json:"classifier"`

	// HTTP server bind address
	Listen string `json:"listen"`

	// Live poller settings
	Poll PollConfig `json:"poll"`

	// Extra RSS feeds to scan for brand mentions
	RSSFeeds []RSSFeedConfig `json:"rss_feeds,omitempty"`
}

// ClassifierConfig holds inference API settings for the sentiment model.
type ClassifierConfig struct {
	Endpoint string `json:"endpoint,omitempty"` // empty = default hosted model
	APIKey   string `json:"api_key,omitempty"`
}

// PollConfig holds live-update polling settings.
type PollConfig struct {
	IntervalSeconds    int `json:"interval_seconds"`
	EntityDelaySeconds int `json:"entity_delay_seconds"` // pause between entities within a cycle
}

// RSSFeedConfig is one configured RSS source.
type RSSFeedConfig struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Listen: ":8080",
		Poll: PollConfig{
			IntervalSeconds:    90,
			EntityDelaySeconds: 5,
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".earout", "config.json")
}

// Load reads config from disk, or returns defaults. Environment variables
// fill in any credentials the file leaves empty.
func Load() (*Config, error) {
	path := ConfigPath()

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.AutoPopulateFromEnv()
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes config to disk
func (c *Config) Save() error {
	path := ConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600) // Restrictive permissions for API keys
}

// AutoPopulateFromEnv fills in API keys from environment variables
func (c *Config) AutoPopulateFromEnv() {
	if key := os.Getenv("NEWS_API_KEY"); key != "" {
		c.NewsAPIKey = key
	}
	if key := os.Getenv("GNEWS_API_KEY"); key != "" {
		c.GNewsAPIKey = key
	}
	if key := os.Getenv("HF_API_TOKEN"); key != "" {
		c.Classifier.APIKey = key
	}
	if addr := os.Getenv("EAROUT_LISTEN"); addr != "" {
		c.Listen = addr
	}
}

// applyDefaults backfills zero values left by a sparse config file.
func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	if c.Poll.IntervalSeconds <= 0 {
		c.Poll.IntervalSeconds = 90
	}
	if c.Poll.EntityDelaySeconds <= 0 {
		c.Poll.EntityDelaySeconds = 5
	}
}

// ErrMissingNewsAPIKey aborts startup: the primary news provider is a
// mandatory collaborator and no request handling may begin without it.
var ErrMissingNewsAPIKey = errors.New("NEWS_API_KEY is not set")

// Validate checks that mandatory startup configuration is present.
func (c *Config) Validate() error {
	if c.NewsAPIKey == "" {
		return ErrMissingNewsAPIKey
	}
	return nil
}
