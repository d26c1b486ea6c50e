// Package classify provides the sentiment classifier boundary.
//
// The classifier is an external collaborator reached over HTTP. It is a
// two-class model (POSITIVE/NEGATIVE); NEUTRAL never appears in its output
// and is derived downstream as the remainder of the percentage summary.
package classify

import "context"

// Label is one classification result.
type Label struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier scores a batch of texts. Implementations must preserve input
// order and length exactly (1:1 correspondence) and must accept an empty
// batch, returning an empty result without error.
type Classifier interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]Label, error)
}
