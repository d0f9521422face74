// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// RunTimeout bounds a single scheduled run.
const RunTimeout = 30 * time.Minute

// Job is the work executed on every tick.
type Job func(ctx context.Context) error

// Scheduler runs one job on a cron schedule. A tick that fires while the
// previous run is still going is skipped.
type Scheduler struct {
	cron     *cron.Cron
	schedule string
	job      Job
	logger   *slog.Logger
}

// NewScheduler creates a new job scheduler. schedule uses the standard
// 5-field format or descriptors such as "@every 10m".
func NewScheduler(schedule string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cronLogger := cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{
		cron:     c,
		schedule: schedule,
		job:      job,
		logger:   logger,
	}
	if _, err := c.AddFunc(schedule, s.run); err != nil {
		return nil, fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Start begins scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cron scheduler started",
		slog.String("schedule", s.schedule),
		slog.Int("jobs", len(s.cron.Entries())),
	)
}

// Stop stops the scheduler. The returned context is done once a running
// job has finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("cron scheduler stopping")
	return s.cron.Stop()
}

// Next returns the next activation time, or the zero time before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// RunNow runs the job once in the calling goroutine.
func (s *Scheduler) RunNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), RunTimeout)
	defer cancel()
	return s.job(ctx)
}

func (s *Scheduler) run() {
	start := time.Now()
	s.logger.Info("starting scheduled run")

	if err := s.RunNow(); err != nil {
		s.logger.Error("scheduled run failed",
			slog.Any("error", err),
			slog.Duration("elapsed", time.Since(start)),
		)
		return
	}

	s.logger.Info("scheduled run completed",
		slog.Duration("elapsed", time.Since(start)),
	)
}
