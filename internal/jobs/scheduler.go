package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is a unit of recurring work.
type Job interface {
	Run(ctx context.Context) error
}

// JobFunc adapts a function to the Job interface.
type JobFunc func(ctx context.Context) error

// Run implements Job.
func (f JobFunc) Run(ctx context.Context) error { return f(ctx) }

// Scheduler runs jobs on cron schedules. A job that is still running when
// its next tick arrives is skipped for that tick, and a panicking job is
// recovered and logged.
type Scheduler struct {
	cron   *cron.Cron
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger
}

// NewScheduler creates a scheduler evaluating schedules in loc.
func NewScheduler(loc *time.Location, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	if loc == nil {
		loc = time.UTC
	}
	logger = logger.With("component", "scheduler")
	cronLogger := slogCronLogger{logger: logger}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
}

// Register schedules job under name using a standard five-field cron spec.
func (s *Scheduler) Register(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runJob(name, job)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %s: %w", spec, name, err)
	}
	s.logger.Info("job registered", "job", name, "schedule", spec)
	return nil
}

func (s *Scheduler) runJob(name string, job Job) {
	log := s.logger.With("job", name)
	start := time.Now()
	log.Debug("job started")

	if err := job.Run(s.ctx); err != nil {
		log.Error("job failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	log.Debug("job finished", "duration_ms", time.Since(start).Milliseconds())
}

// Len returns the number of registered jobs.
func (s *Scheduler) Len() int {
	return len(s.cron.Entries())
}

// Start begins running jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", s.Len())
}

// Stop prevents new runs and waits for running jobs to finish or for ctx
// to be done. Running jobs see their context cancelled only when ctx expires.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.cancel()
		s.logger.Info("scheduler stopped")
		return nil
	case <-ctx.Done():
		s.cancel()
		return fmt.Errorf("scheduler did not stop in time: %w", ctx.Err())
	}
}

// slogCronLogger adapts slog to cron.Logger.
type slogCronLogger struct {
	logger *slog.Logger
}

var _ cron.Logger = slogCronLogger{}

func (l slogCronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
