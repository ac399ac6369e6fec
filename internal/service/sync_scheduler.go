package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/peach-brawl/internal/models"
	"github.com/noah-isme/peach-brawl/pkg/jobs"
)

const syncCycleJob = "sync_cycle"

type cycleRunner interface {
	RunCycle(ctx context.Context, cycleID string) models.CycleResult
}

// SyncSchedulerConfig tunes the periodic trigger.
type SyncSchedulerConfig struct {
	Interval time.Duration
	Workers  int
	Logger   *zap.Logger
}

// SyncScheduler runs one cycle at start and then one per interval. Cycles are dispatched to a
// worker queue, so a slow cycle never holds back the next tick and overlapping cycles simply
// overwrite each other's output.
type SyncScheduler struct {
	queue    *jobs.Queue
	interval time.Duration
	logger   *zap.Logger

	newTicker func(time.Duration) (<-chan time.Time, func())

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncScheduler wires runner into a queue-backed scheduler.
func NewSyncScheduler(runner cycleRunner, cfg SyncSchedulerConfig) *SyncScheduler {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Minute
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	queue := jobs.NewQueue("sync", func(ctx context.Context, job jobs.Job) error {
		return runner.RunCycle(ctx, job.ID).Err
	}, jobs.QueueConfig{
		Workers: cfg.Workers,
		Logger:  cfg.Logger,
	})
	return &SyncScheduler{
		queue:    queue,
		interval: cfg.Interval,
		logger:   cfg.Logger,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start launches the queue, runs the first cycle immediately and begins ticking.
func (s *SyncScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.queue.Start(ctx)

	if _, err := s.Trigger("startup"); err != nil {
		s.logger.Error("initial sync not scheduled", zap.Error(err))
	}

	ticks, stop := s.newTicker(s.interval)
	go func() {
		defer close(s.done)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				if _, err := s.Trigger("tick"); err != nil {
					s.logger.Warn("sync tick dropped", zap.Error(err))
				}
			}
		}
	}()
	s.logger.Info("sync scheduler started", zap.Duration("interval", s.interval))
}

// Trigger enqueues one cycle and returns its id.
func (s *SyncScheduler) Trigger(reason string) (string, error) {
	job, err := s.queue.Enqueue(jobs.Job{Type: syncCycleJob, Payload: reason})
	if err != nil {
		return "", err
	}
	s.logger.Debug("sync cycle scheduled", zap.String("cycle_id", job.ID), zap.String("reason", reason))
	return job.ID, nil
}

// Pending returns the number of cycles waiting for a worker.
func (s *SyncScheduler) Pending() int {
	return s.queue.Pending()
}

// Stop halts ticking and waits for running cycles to observe cancellation.
func (s *SyncScheduler) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.queue.Stop()
}
