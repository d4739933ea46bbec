// Package worker schedules the periodic edition sweep.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/songcontest/songcontest-api/internal/config"
)

const sweepTimeout = 5 * time.Minute

type EditionSweeper interface {
	Sweep(ctx context.Context, concurrency int) error
}

// Sweeper runs EditionSweeper.Sweep on a cron schedule. Overlapping runs
// are skipped, and the sweep can be paused at runtime.
type Sweeper struct {
	svc         EditionSweeper
	logger      *zap.Logger
	cron        *cron.Cron
	concurrency int
	enabled     atomic.Bool
}

func NewSweeper(svc EditionSweeper, conf *config.SweepConfig, logger *zap.Logger) (*Sweeper, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))

	s := &Sweeper{
		svc:         svc,
		logger:      logger,
		concurrency: conf.Concurrency,
		cron: cron.New(
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
	}
	s.enabled.Store(conf.Enabled)

	if _, err := s.cron.AddFunc(conf.Schedule, s.tick); err != nil {
		return nil, fmt.Errorf("cron.AddFunc(%q) -> %w", conf.Schedule, err)
	}

	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("starting edition sweeper", zap.Bool("enabled", s.enabled.Load()))
	s.cron.Start()
}

// Stop halts scheduling and returns a context that is done once a running
// sweep has finished.
func (s *Sweeper) Stop() context.Context {
	return s.cron.Stop()
}

func (s *Sweeper) SetEnabled(enabled bool) {
	if s.enabled.Swap(enabled) != enabled {
		s.logger.Info("edition sweeper toggled", zap.Bool("enabled", enabled))
	}
}

func (s *Sweeper) Enabled() bool {
	return s.enabled.Load()
}

// RunOnce performs a single sweep and logs its outcome.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	start := time.Now()

	err := s.svc.Sweep(ctx, s.concurrency)
	if err != nil {
		s.logger.Error("edition sweep finished with failures", zap.Duration("took", time.Since(start)), zap.Error(err))
		return err
	}

	s.logger.Info("edition sweep finished", zap.Duration("took", time.Since(start)))
	return nil
}

func (s *Sweeper) tick() {
	if !s.enabled.Load() {
		s.logger.Debug("edition sweep skipped, sweeper disabled")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	_ = s.RunOnce(ctx)
}
