package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// defaultEndpoint is the hosted two-class SST-2 sentiment model.
const defaultEndpoint = "https://api-inference.huggingface.co/models/distilbert-base-uncased-finetuned-sst-2-english"

// HFClassifier scores texts via the Hugging Face inference API.
type HFClassifier struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
}

// hfRequest represents the request body for the inference API.
type hfRequest struct {
	Inputs  []string  `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

// NewHFClassifier creates a classifier client. An empty endpoint selects the
// default hosted model.
func NewHFClassifier(apiKey, endpoint string) *HFClassifier {
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	return &HFClassifier{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(500*time.Millisecond), 1),
	}
}

// ClassifyBatch scores all texts, preserving input order and length.
// Inputs are sent in chunks to keep individual requests small; the chunking
// is invisible to callers.
func (c *HFClassifier) ClassifyBatch(ctx context.Context, texts []string) ([]Label, error) {
	if len(texts) == 0 {
		return []Label{}, nil
	}

	results := make([]Label, len(texts))

	const chunkSize = 32
	for chunkStart := 0; chunkStart < len(texts); chunkStart += chunkSize {
		chunkEnd := chunkStart + chunkSize
		if chunkEnd > len(texts) {
			chunkEnd = len(texts)
		}
		chunk := texts[chunkStart:chunkEnd]

		scored, err := c.classify(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("classify: batch chunk starting at %d failed: %w", chunkStart, err)
		}
		if len(scored) != len(chunk) {
			return nil, fmt.Errorf("classify: got %d results for %d inputs", len(scored), len(chunk))
		}
		copy(results[chunkStart:], scored)
	}

	return results, nil
}

// classify sends one chunk to the API. The response is positional: one list
// of candidate labels per input text, from which the top score is kept.
func (c *HFClassifier) classify(ctx context.Context, inputs []string) ([]Label, error) {
	reqBody, err := json.Marshal(hfRequest{
		Inputs:  inputs,
		Options: hfOptions{WaitForModel: true},
	})
	if err != nil {
		return nil, fmt.Errorf("classify: failed to marshal request: %w", err)
	}

	var candidates [][]Label
	if err := c.doWithRetry(ctx, reqBody, &candidates); err != nil {
		return nil, err
	}
	if len(candidates) != len(inputs) {
		return nil, fmt.Errorf("classify: got %d result rows for %d inputs", len(candidates), len(inputs))
	}

	labels := make([]Label, len(inputs))
	for i, row := range candidates {
		if len(row) == 0 {
			return nil, fmt.Errorf("classify: empty result row for input %d", i)
		}
		best := row[0]
		for _, cand := range row[1:] {
			if cand.Score > best.Score {
				best = cand
			}
		}
		best.Label = strings.ToUpper(best.Label)
		labels[i] = best
	}
	return labels, nil
}

// doWithRetry executes the API request with retry logic for transient errors.
// Retries up to 3 times on HTTP 429, 503 (model loading), or 5xx with
// backoff. On 429, honors the Retry-After header if present.
func (c *HFClassifier) doWithRetry(ctx context.Context, reqBody []byte, out any) error {
	maxRetries := 3
	backoffs := []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("classify: rate limiter wait failed: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
		if err != nil {
			return fmt.Errorf("classify: failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("classify: request cancelled: %w", ctx.Err())
			}
			return fmt.Errorf("classify: request failed: %w", err)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
		resp.Body.Close()
		if err != nil {
			return fmt.Errorf("classify: failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusOK {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("classify: failed to parse response: %w", err)
			}
			return nil
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable {
			return fmt.Errorf("classify: inference API returned status %d: %s", resp.StatusCode, string(body))
		}

		lastErr = fmt.Errorf("classify: inference API returned status %d: %s", resp.StatusCode, string(body))

		if attempt < maxRetries {
			delay := backoffs[attempt]
			if resp.StatusCode == http.StatusTooManyRequests {
				if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
					if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
						delay = time.Duration(seconds) * time.Second
						if delay > 30*time.Second {
							delay = 30 * time.Second
						}
					}
				}
			}

			select {
			case <-ctx.Done():
				return fmt.Errorf("classify: request cancelled during retry: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("classify: all retries exhausted: %w", lastErr)
}
