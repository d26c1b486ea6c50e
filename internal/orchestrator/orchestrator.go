// Package orchestrator drives one watch request end to end: concurrent
// fan-out over all configured connectors, streaming of per-source batches in
// completion order, cumulative summarization, and finalization with activity
// and topic reports.
package orchestrator

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/earout/internal/activity"
	"github.com/abelbrown/earout/internal/connector"
	"github.com/abelbrown/earout/internal/event"
	"github.com/abelbrown/earout/internal/logging"
	"github.com/abelbrown/earout/internal/model"
	"github.com/abelbrown/earout/internal/topics"
	"github.com/abelbrown/earout/internal/watch"
)

// maxConcurrentFetches limits parallel fetches within one request.
const maxConcurrentFetches = 4

// maxInFlightRequests caps concurrent watch requests process-wide. Runs are
// never cancelled once dispatched, so this bound is what keeps an abandoned
// session from leaking unbounded work.
const maxInFlightRequests = 16

// Emitter pushes named events to a session or to all sessions.
type Emitter interface {
	Emit(sessionID, name string, payload any)
	Broadcast(name string, payload any)
}

// Orchestrator aggregates mentions for watch requests.
type Orchestrator struct {
	connectors []connector.Connector
	registry   *watch.Registry
	corpus     *topics.Corpus
	emitter    Emitter
	slots      chan struct{}

	// now is the clock used for the activity window. Tests swap it.
	now func() time.Time
}

// New creates an orchestrator over the given connector set.
func New(connectors []connector.Connector, registry *watch.Registry, corpus *topics.Corpus, emitter Emitter) *Orchestrator {
	return &Orchestrator{
		connectors: connectors,
		registry:   registry,
		corpus:     corpus,
		emitter:    emitter,
		slots:      make(chan struct{}, maxInFlightRequests),
		now:        time.Now,
	}
}

// Go dispatches a watch request as a detached background run. Panics inside
// the run are caught and logged; they never take the process down.
func (o *Orchestrator) Go(ctx context.Context, sessionID, brand string) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("search flow panicked", "brand", brand, "panic", r)
			}
		}()
		o.Run(ctx, sessionID, brand)
	}()
}

// fetchResult is one settled connector task.
type fetchResult struct {
	source   string
	mentions []model.Mention
}

// Run executes one watch request to completion. Batches are emitted in
// completion order of the underlying fetches, so whichever source answers
// first reaches the client first. Every dispatched task settles before
// finalization, and finalization runs exactly once even when all sources
// fail.
func (o *Orchestrator) Run(ctx context.Context, sessionID, brand string) {
	entity := o.registry.Add(brand)
	logging.Info("starting search", "brand", brand, "entity", entity)

	o.slots <- struct{}{}
	defer func() { <-o.slots }()

	results := make(chan fetchResult, len(o.connectors))

	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for _, c := range o.connectors {
		g.Go(func() error {
			o.emitter.Emit(sessionID, event.StatusUpdate, event.Status{
				Message: "Searching " + c.Name() + "...",
			})

			mentions, err := c.Fetch(ctx, brand)
			if err != nil {
				// Source failures are isolated: log, settle as zero-result.
				logging.Warn("source fetch failed", "source", c.Name(), "brand", brand, "error", err)
				mentions = nil
			}
			results <- fetchResult{source: c.Name(), mentions: mentions}
			return nil
		})
	}
	go func() {
		g.Wait()
		close(results)
	}()

	var running []model.Mention
	for res := range results {
		if len(res.mentions) == 0 {
			continue
		}

		o.emitter.Emit(sessionID, event.MentionBatch, res.mentions)
		running = append(running, res.mentions...)
		logging.Info("streamed mentions", "source", res.source, "brand", brand, "count", len(res.mentions))

		summary := Summarize(running)
		o.emitter.Emit(sessionID, event.SummaryUpdate, event.Summary{Sentiment: &summary})
	}

	o.finalize(sessionID, entity, brand, running)
}

// finalize emits the activity window, the topic ranking, and the completion
// marker. With zero mentions the activity list is empty and the topics
// reflect the global corpus as-is.
func (o *Orchestrator) finalize(sessionID, entity, brand string, running []model.Mention) {
	logging.Info("search finished, sending final data", "brand", brand, "mentions", len(running))

	stamps := activity.Timestamps(running, o.now().UTC())
	o.emitter.Emit(sessionID, event.ActivityUpdate, stamps)

	top := o.corpus.UpdateAndGet(running, entity)
	o.emitter.Emit(sessionID, event.SummaryUpdate, event.Summary{Topics: top})

	o.emitter.Emit(sessionID, event.SearchComplete, nil)
}
