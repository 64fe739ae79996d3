// Package scheduler fires the sync run on a cron schedule.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"go-intern-harvester/internal/logger"
)

// RunFunc performs one run. ErrSkipped signals the run was not started.
type RunFunc func(ctx context.Context) error

// ErrSkipped can be returned by a RunFunc that declined to start, e.g. because
// a manual run holds the browser.
var ErrSkipped = errors.New("run skipped")

// Scheduler wraps robfig/cron and owns one periodic entry.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	run     RunFunc
	timeout time.Duration
	log     logger.Logger
}

// New creates a Scheduler for spec ("@every 24h", "0 9 * * *", ...). Each
// run gets at most timeout; zero means no limit.
func New(spec string, timeout time.Duration, run RunFunc, log logger.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:    spec,
		run:     run,
		timeout: timeout,
		log:     log,
	}
}

// Start registers the entry and starts the cron loop. The job context is
// derived from ctx, so cancelling ctx aborts an in-flight run.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.fire(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started", logger.String("spec", s.spec))
	return nil
}

// Stop stops the cron loop and waits for a running job to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("Scheduler stopped")
}

func (s *Scheduler) fire(ctx context.Context) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Scheduled run panicked", logger.Any("panic", r))
		}
	}()

	start := time.Now()
	err := s.run(ctx)
	switch {
	case errors.Is(err, ErrSkipped):
		s.log.Info("Scheduled run skipped", logger.Error(err))
	case err != nil:
		s.log.Error("Scheduled run failed", logger.Duration("elapsed", time.Since(start)), logger.Error(err))
	default:
		s.log.Info("Scheduled run finished", logger.Duration("elapsed", time.Since(start)))
	}
}
