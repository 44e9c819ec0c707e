// Package scheduler provides the recurring trigger: interval entries and
// one-off delayed runs. Runs are serialized so scheduled invocations
// never overlap; a tick that lands while a run is in flight is skipped.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/postforge/postforge/internal/domain"
)

// RunFunc executes one pipeline run for a content spec.
type RunFunc func(ctx context.Context, spec *domain.ContentSpec, visibility domain.Visibility) (*domain.PostResult, error)

// Entry is one recurring trigger.
type Entry struct {
	Topic  string
	Every  time.Duration
	Tone   domain.Tone
	Length domain.Length
}

// Scheduler drives recurring and one-off pipeline runs.
type Scheduler struct {
	entries []Entry
	run     RunFunc
	logger  *slog.Logger

	mu sync.Mutex // serializes runs
	wg sync.WaitGroup
}

// New creates a scheduler over the given entries.
func New(entries []Entry, run RunFunc, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{entries: entries, run: run, logger: logger}
}

// Start launches the interval tickers. It returns immediately; tickers
// stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	for _, e := range s.entries {
		if e.Every <= 0 || e.Topic == "" {
			s.logger.Warn("skipping invalid schedule entry", slog.String("topic", e.Topic))
			continue
		}
		s.wg.Add(1)
		go s.loop(ctx, e)
	}
}

// Wait blocks until all tickers have stopped.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, e Entry) {
	defer s.wg.Done()

	ticker := time.NewTicker(e.Every)
	defer ticker.Stop()

	s.logger.Info("schedule entry active",
		slog.String("topic", e.Topic),
		slog.Duration("every", e.Every),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.trigger(ctx, &domain.ContentSpec{
				Topic:  e.Topic,
				Tone:   e.Tone,
				Length: e.Length,
			})
		}
	}
}

// ScheduleOnce runs the spec after the delay, subject to the same
// serialization as interval runs. Cancelled by ctx.
func (s *Scheduler) ScheduleOnce(ctx context.Context, spec *domain.ContentSpec, delay time.Duration) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
		case <-timer.C:
			s.trigger(ctx, spec)
		}
	}()
}

func (s *Scheduler) trigger(ctx context.Context, spec *domain.ContentSpec) {
	if !s.mu.TryLock() {
		s.logger.Warn("run in flight, skipping trigger", slog.String("topic", spec.Topic))
		return
	}
	defer s.mu.Unlock()

	if _, err := s.run(ctx, spec, domain.VisibilityPublic); err != nil {
		s.logger.Error("scheduled run failed",
			slog.String("topic", spec.Topic),
			slog.String("error", err.Error()),
		)
	}
}
