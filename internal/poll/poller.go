// Package poll runs the live-update loop: for every watched entity, ask each
// watermark-aware connector for only-new items and broadcast them to all
// sessions.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/abelbrown/earout/internal/connector"
	"github.com/abelbrown/earout/internal/event"
	"github.com/abelbrown/earout/internal/logging"
	"github.com/abelbrown/earout/internal/model"
	"github.com/abelbrown/earout/internal/watch"
)

// Broadcaster fans an event out to all connected sessions.
type Broadcaster interface {
	Broadcast(name string, payload any)
}

// Poller is the background live-update loop. It never terminates on its own:
// per-entity failures are logged and the loop moves on.
type Poller struct {
	registry    *watch.Registry
	sources     []connector.Incremental
	emitter     Broadcaster
	interval    time.Duration
	entityDelay time.Duration
	wg          sync.WaitGroup
}

// New creates a poller over the watermark-aware connectors.
func New(registry *watch.Registry, sources []connector.Incremental, emitter Broadcaster, interval, entityDelay time.Duration) *Poller {
	return &Poller{
		registry:    registry,
		sources:     sources,
		emitter:     emitter,
		interval:    interval,
		entityDelay: entityDelay,
	}
}

// Start launches the background loop. Each cycle starts with the interval
// sleep, so an empty registry just keeps sleeping. Cancel the context to
// stop, then Wait.
func (p *Poller) Start(ctx context.Context) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		logging.Info("live poller started", "interval", p.interval, "sources", len(p.sources))
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				logging.Info("live poller stopped")
				return
			case <-ticker.C:
				p.cycle(ctx)
			}
		}
	}()
}

// Wait blocks until the background goroutine exits.
func (p *Poller) Wait() {
	p.wg.Wait()
}

// cycle polls every entity registered at cycle start. Entities added
// mid-cycle are picked up next cycle. A small fixed delay between entities
// bounds burst rate against the origins.
func (p *Poller) cycle(ctx context.Context) {
	entities := p.registry.Entities()
	if len(entities) == 0 {
		return
	}
	logging.Debug("live poll cycle", "entities", len(entities))

	for i, entity := range entities {
		if i > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(p.entityDelay):
			}
		}
		p.pollEntity(ctx, entity)
	}
}

// pollEntity asks each incremental source for items strictly newer than its
// watermark, advances the watermark to the newest delivered timestamp, and
// broadcasts the new mentions. Errors are isolated per source.
func (p *Poller) pollEntity(ctx context.Context, entity string) {
	for _, src := range p.sources {
		if ctx.Err() != nil {
			return
		}

		since := p.registry.Watermark(src.Name(), entity)
		mentions, err := src.FetchNewSince(ctx, entity, since)
		if err != nil {
			logging.Warn("live poll fetch failed", "source", src.Name(), "entity", entity, "error", err)
			continue
		}
		if len(mentions) == 0 {
			continue
		}

		// Result order is not guaranteed sorted: take the explicit maximum.
		if newest, ok := newestTimestamp(mentions); ok {
			p.registry.Advance(src.Name(), entity, newest)
		}

		logging.Info("live mentions", "source", src.Name(), "entity", entity, "count", len(mentions))
		p.emitter.Broadcast(event.LiveMentionUpdate, mentions)
	}
}

// newestTimestamp returns the maximum parseable timestamp in the batch.
func newestTimestamp(mentions []model.Mention) (time.Time, bool) {
	var newest time.Time
	found := false
	for _, m := range mentions {
		ts, err := model.ParseTimestamp(m.Timestamp)
		if err != nil {
			logging.Warn("skipping invalid timestamp", "value", m.Timestamp)
			continue
		}
		if !found || ts.After(newest) {
			newest = ts
			found = true
		}
	}
	return newest, found
}
