// Package app wires the sync pipeline to a browser, object storage and the
// result sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-intern-harvester/internal/browser"
	"go-intern-harvester/internal/dedup"
	"go-intern-harvester/internal/logger"
	"go-intern-harvester/internal/pipeline"
	"go-intern-harvester/internal/scraper"
	"go-intern-harvester/internal/scraper/linkareer"
)

// ErrRunInProgress is returned when a run is requested while another one
// still owns the browser session.
var ErrRunInProgress = errors.New("a crawl run is already in progress")

// SessionOpener opens an exclusively owned browser session and its release func.
type SessionOpener func(ctx context.Context) (browser.Session, func() error, error)

// Sink receives the postings of a finished run.
type Sink interface {
	Name() string
	Publish(ctx context.Context, postings []scraper.Posting) error
}

// Deps is everything a Runner needs; New fills it from configuration.
type Deps struct {
	Scope       dedup.Scope
	Store       dedup.ObjectStore
	OpenSession SessionOpener
	Sinks       []Sink
	WaitTimeout time.Duration
	DelayMinMs  int
	DelayMaxMs  int
	Screenshots *browser.ScreenshotDebugger
	Log         logger.Logger
}

// Runner executes one sync at a time.
type Runner struct {
	deps Deps
	mu   sync.Mutex
}

func NewRunner(deps Deps) *Runner {
	return &Runner{deps: deps}
}

// RunOnce performs one incremental sync and hands the result to every sink.
// Sink failures are logged and do not fail the run.
func (r *Runner) RunOnce(ctx context.Context) (pipeline.Result, error) {
	if !r.mu.TryLock() {
		return pipeline.Result{}, ErrRunInProgress
	}
	defer r.mu.Unlock()

	log := r.deps.Log
	session, release, err := r.deps.OpenSession(ctx)
	if err != nil {
		return pipeline.Result{}, fmt.Errorf("open browser session: %w", err)
	}
	defer func() {
		if err := release(); err != nil {
			log.Warn("Closing browser session failed", logger.Error(err))
		}
	}()

	var opts []pipeline.Option
	if r.deps.DelayMaxMs > 0 {
		opts = append(opts, pipeline.WithPause(func(ctx context.Context) error {
			return browser.RandomDelay(ctx, r.deps.DelayMinMs, r.deps.DelayMaxMs)
		}))
	}

	orchestrator := pipeline.New(
		r.deps.Scope,
		dedup.NewLoader(r.deps.Store, log.With(logger.String("component", "history"))),
		linkareer.NewHarvester(session, log.With(logger.String("component", "harvester")),
			linkareer.WithHarvestTimeout(r.deps.WaitTimeout)),
		linkareer.NewDetailExtractor(session, log.With(logger.String("component", "detail")),
			linkareer.WithDetailTimeout(r.deps.WaitTimeout),
			linkareer.WithScreenshots(r.deps.Screenshots)),
		linkareer.ResolveID,
		log.With(logger.String("component", "pipeline")),
		opts...,
	)

	res, runErr := orchestrator.Run(ctx)
	r.publish(context.WithoutCancel(ctx), res.Postings)
	return res, runErr
}

func (r *Runner) publish(ctx context.Context, postings []scraper.Posting) {
	if len(postings) == 0 {
		return
	}
	for _, sink := range r.deps.Sinks {
		if err := sink.Publish(ctx, postings); err != nil {
			r.deps.Log.Error("Publishing crawl result failed",
				logger.String("sink", sink.Name()), logger.Int("postings", len(postings)), logger.Error(err))
			continue
		}
		r.deps.Log.Info("Crawl result published", logger.String("sink", sink.Name()), logger.Int("postings", len(postings)))
	}
}
