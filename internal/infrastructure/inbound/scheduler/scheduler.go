package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"tweetbot-service/internal/domain/ports/input/pipeline"
	ports "tweetbot-service/internal/domain/ports/output"
)

// Scheduler triggers a pipeline run every interval. A tick that fires while
// the previous run is still going is dropped.
type Scheduler struct {
	cron     *cron.Cron
	pipeline pipeline.Pipeline
	interval time.Duration
	log      ports.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewScheduler(p pipeline.Pipeline, interval time.Duration, log ports.Logger) *Scheduler {
	cl := cronLogger{log: log}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl))),
		pipeline: p,
		interval: interval,
		log:      log,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", s.interval)
	}
	if _, err := s.cron.AddFunc("@every "+s.interval.String(), s.tick); err != nil {
		return fmt.Errorf("schedule pipeline: %w", err)
	}
	s.cron.Start()
	s.log.Info("Scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop cancels the in-flight run, if any, and waits for it until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.log.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Scheduler) tick() {
	result, err := s.pipeline.Run(s.ctx)
	if err != nil {
		s.log.Error("Scheduled pipeline run failed", slog.String("error", err.Error()))
		return
	}
	s.log.Info("Scheduled pipeline run finished",
		slog.String("run_id", result.RunID),
		slog.String("outcome", string(result.Outcome)),
		slog.Duration("duration", result.Duration))
}

// cronLogger routes cron's own messages into the service logger.
type cronLogger struct {
	log ports.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.log.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.log.Error("cron: "+msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
