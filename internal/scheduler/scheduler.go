package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/taskhive/taskhive/internal/config"
)

// Scheduler fires the deadline check once a day at a configured local
// wall-clock time. A failed or panicked run is logged and the next run is
// scheduled regardless.
type Scheduler struct {
	checker *DeadlineChecker
	logger  *slog.Logger

	hour     int
	minute   int
	location *time.Location

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup

	// timeFunc allows tests to control the clock. Defaults to time.Now.
	timeFunc func() time.Time
}

// New creates a Scheduler from the scheduler configuration. The timezone
// name must resolve against the host's zone database.
func New(cfg config.SchedulerConfig, checker *DeadlineChecker, logger *slog.Logger) (*Scheduler, error) {
	if checker == nil {
		return nil, fmt.Errorf("deadline checker is required")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for Scheduler")
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load scheduler timezone %q: %w", cfg.Timezone, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		checker:    checker,
		logger:     logger.With(slog.String("component", "scheduler")),
		hour:       cfg.Hour,
		minute:     cfg.Minute,
		location:   location,
		ctx:        ctx,
		cancelFunc: cancel,
		timeFunc:   time.Now,
	}, nil
}

// Start launches the scheduling loop in a background goroutine.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.run()
}

// Stop cancels the scheduling loop and waits for an in-flight check to
// finish.
func (s *Scheduler) Stop() {
	s.cancelFunc()
	s.wg.Wait()
}

func (s *Scheduler) run() {
	defer s.wg.Done()

	for {
		now := s.timeFunc()
		next := nextRun(now, s.hour, s.minute, s.location)
		s.logger.Info("next deadline check scheduled",
			slog.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-s.ctx.Done():
			timer.Stop()
			s.logger.Info("scheduler stopped")
			return
		case <-timer.C:
		}

		// RunOnce recovers its own panics; an error here must not kill
		// the loop, otherwise one bad day silences every later alert.
		if err := s.checker.RunOnce(s.ctx); err != nil {
			s.logger.Error("scheduled deadline check failed",
				slog.String("error", err.Error()))
		}
	}
}

// nextRun returns the first instant strictly after now that falls on the
// configured wall-clock time in the given location. time.Date normalizes
// the skipped and repeated hours around DST transitions.
func nextRun(now time.Time, hour, minute int, loc *time.Location) time.Time {
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
