// Package scheduler runs the periodic maintenance jobs that keep
// marketplace state moving without user action.
package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// jobTimeout caps one run of any job so a stuck job cannot wedge its loop
const jobTimeout = 5 * time.Minute

type job struct {
	name     string
	interval time.Duration
	run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on fixed intervals. Each job gets its
// own goroutine, a slow job never delays the others.
type Scheduler struct {
	logger    *zap.Logger
	jobs      []job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates an empty scheduler
func NewScheduler(logger *zap.Logger) *Scheduler {
	return &Scheduler{logger: logger}
}

// Register adds a job. Jobs with a zero or negative interval are
// skipped, which is how configuration disables individual jobs.
func (s *Scheduler) Register(name string, interval time.Duration, run func(ctx context.Context) error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if interval <= 0 {
		s.logger.Info("Maintenance job disabled", zap.String("job", name))
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Start launches one loop per registered job
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.isRunning = true

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.runLoop(ctx, j)
	}

	s.logger.Info("Maintenance scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels all job loops and waits for running jobs to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("Maintenance scheduler stopped")
}

func (s *Scheduler) runLoop(ctx context.Context, j job) {
	defer s.wg.Done()

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runJob(ctx, j)
		}
	}
}

func (s *Scheduler) runJob(ctx context.Context, j job) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("Maintenance job panicked",
				zap.String("job", j.name),
				zap.Any("panic", r))
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	start := time.Now()
	if err := j.run(jobCtx); err != nil {
		s.logger.Error("Maintenance job failed",
			zap.String("job", j.name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}

	s.logger.Debug("Maintenance job finished",
		zap.String("job", j.name),
		zap.Duration("took", time.Since(start)))
}
