package orchestrator

import (
	"math"

	"github.com/abelbrown/earout/internal/event"
	"github.com/abelbrown/earout/internal/model"
)

// Summarize computes the cumulative sentiment breakdown over all mentions
// classified so far in a request. It always recomputes from the full list.
//
// The classifier is two-class, so NEUTRAL is the remainder after rounding
// POSITIVE and NEGATIVE: the three values sum to exactly 100 for any
// non-empty list, with rounding error absorbed into NEUTRAL. An empty list
// yields all zeros.
func Summarize(mentions []model.Mention) event.Sentiment {
	if len(mentions) == 0 {
		return event.Sentiment{}
	}

	var positive, negative int
	for _, m := range mentions {
		switch m.Sentiment {
		case model.SentimentPositive:
			positive++
		case model.SentimentNegative:
			negative++
		}
	}

	total := float64(len(mentions))
	p := int(math.Round(float64(positive) / total * 100))
	n := int(math.Round(float64(negative) / total * 100))

	return event.Sentiment{
		Positive: p,
		Negative: n,
		Neutral:  100 - p - n,
	}
}
