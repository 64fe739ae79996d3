// Package pipeline composes history loading, link harvesting and detail
// extraction into one incremental sync run.
package pipeline

import (
	"context"
	"time"

	"go-intern-harvester/internal/dedup"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/scraper"
)

// HistoryLoader yields the ids already persisted under a scope.
type HistoryLoader interface {
	Load(ctx context.Context, scope dedup.Scope) dedup.HistorySet
}

// Stats counts what happened to each harvested link.
type Stats struct {
	Harvested  int
	Pages      int
	Outcome    scraper.Outcome
	Known      int
	NoID       int
	Duplicates int
	Failed     int
	New        int
	Elapsed    time.Duration
}

// Result is the crawl result of one run: the new postings in harvest order.
type Result struct {
	Postings []scraper.Posting
	Stats    Stats
}

// Orchestrator runs one incremental sync. It owns neither the browser session
// nor the storage client; both come in through the collaborators.
type Orchestrator struct {
	scope     dedup.Scope
	history   HistoryLoader
	harvester scraper.Harvester
	extractor scraper.Extractor
	resolve   scraper.IDResolver
	pause     func(ctx context.Context) error
	log       logger.Logger
}

type Option func(*Orchestrator)

// WithPause runs pause between two detail extractions, e.g. a polite random delay.
func WithPause(pause func(ctx context.Context) error) Option {
	return func(o *Orchestrator) { o.pause = pause }
}

func New(
	scope dedup.Scope,
	history HistoryLoader,
	harvester scraper.Harvester,
	extractor scraper.Extractor,
	resolve scraper.IDResolver,
	log logger.Logger,
	opts ...Option,
) *Orchestrator {
	o := &Orchestrator{
		scope:     scope,
		history:   history,
		harvester: harvester,
		extractor: extractor,
		resolve:   resolve,
		log:       log,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run loads history, harvests links and extracts only unknown postings.
// The error is non-nil only when ctx is cancelled between links; the postings
// extracted up to that point are returned with it.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result

	known := o.history.Load(ctx, o.scope)

	harvest := o.harvester.Harvest(ctx)
	res.Stats.Harvested = len(harvest.Links)
	res.Stats.Pages = harvest.Pages
	res.Stats.Outcome = harvest.Outcome
	o.log.Info("Links harvested",
		logger.Int("links", len(harvest.Links)),
		logger.Int("known_ids", known.Len()),
		logger.String("outcome", string(harvest.Outcome)))

	seen := make(map[int64]struct{}, len(harvest.Links))
	extracted := 0
	for _, link := range harvest.Links {
		if err := ctx.Err(); err != nil {
			return o.finish(res, start), err
		}

		id, ok := o.resolve(link)
		if !ok {
			o.log.Debug("Link without id skipped", logger.String("link", link))
			res.Stats.NoID++
			continue
		}
		if known.Contains(id) {
			o.log.Debug("Posting already stored", logger.Int64("id", id))
			res.Stats.Known++
			continue
		}
		// Only successful extractions are marked, so a later copy of a failed link is retried.
		if _, dup := seen[id]; dup {
			res.Stats.Duplicates++
			continue
		}

		if extracted > 0 && o.pause != nil {
			if err := o.pause(ctx); err != nil {
				return o.finish(res, start), err
			}
		}
		extracted++

		posting, ok := o.extractor.Extract(ctx, link)
		if !ok {
			res.Stats.Failed++
			continue
		}
		seen[id] = struct{}{}
		res.Postings = append(res.Postings, *posting)
	}

	return o.finish(res, start), nil
}

func (o *Orchestrator) finish(res Result, start time.Time) Result {
	res.Stats.New = len(res.Postings)
	res.Stats.Elapsed = time.Since(start)
	o.log.Info("Sync finished",
		logger.Int("new", res.Stats.New),
		logger.Int("known", res.Stats.Known),
		logger.Int("failed", res.Stats.Failed),
		logger.Int("duplicates", res.Stats.Duplicates),
		logger.Int("no_id", res.Stats.NoID),
		logger.Duration("elapsed", res.Stats.Elapsed))
	return res
}
