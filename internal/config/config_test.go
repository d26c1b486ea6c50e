package config

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Listen != ":8080" {
		t.Errorf("expected default listen :8080, got %q", cfg.Listen)
	}
	if cfg.Poll.IntervalSeconds != 90 || cfg.Poll.EntityDelaySeconds != 5 {
		t.Errorf("unexpected poll defaults %+v", cfg.Poll)
	}
}

func TestAutoPopulateFromEnv(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "news-key")
	t.Setenv("GNEWS_API_KEY", "gnews-key")
	t.Setenv("HF_API_TOKEN", "hf-token")
	t.Setenv("EAROUT_LISTEN", "127.0.0.1:9999")

	cfg := DefaultConfig()
	cfg.AutoPopulateFromEnv()

	if cfg.NewsAPIKey != "news-key" {
		t.Errorf("NewsAPIKey = %q", cfg.NewsAPIKey)
	}
	if cfg.GNewsAPIKey != "gnews-key" {
		t.Errorf("GNewsAPIKey = %q", cfg.GNewsAPIKey)
	}
	if cfg.Classifier.APIKey != "hf-token" {
		t.Errorf("Classifier.APIKey = %q", cfg.Classifier.APIKey)
	}
	if cfg.Listen != "127.0.0.1:9999" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
}

func TestEnvDoesNotClobberFileValues(t *testing.T) {
	t.Setenv("NEWS_API_KEY", "")

	cfg := &Config{NewsAPIKey: "from-file"}
	cfg.AutoPopulateFromEnv()
	if cfg.NewsAPIKey != "from-file" {
		t.Errorf("empty env var must not clear configured key, got %q", cfg.NewsAPIKey)
	}
}

func TestApplyDefaultsBackfillsSparseConfig(t *testing.T) {
	cfg := &Config{Poll: PollConfig{IntervalSeconds: -1}}
	cfg.applyDefaults()
	if cfg.Listen != ":8080" || cfg.Poll.IntervalSeconds != 90 || cfg.Poll.EntityDelaySeconds != 5 {
		t.Errorf("unexpected backfilled config %+v", cfg)
	}
}

func TestValidateRequiresNewsAPIKey(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrMissingNewsAPIKey) {
		t.Errorf("expected ErrMissingNewsAPIKey, got %v", err)
	}

	cfg.NewsAPIKey = "key"
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error %v", err)
	}
}
