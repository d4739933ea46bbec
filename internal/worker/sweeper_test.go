package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/songcontest/songcontest-api/internal/config"
)

type countingSweeper struct {
	calls       atomic.Int32
	concurrency atomic.Int32
	err         error
}

func (c *countingSweeper) Sweep(_ context.Context, concurrency int) error {
	c.calls.Add(1)
	c.concurrency.Store(int32(concurrency))
	return c.err
}

func sweepConfig(enabled bool) *config.SweepConfig {
	return &config.SweepConfig{Enabled: enabled, Schedule: "@every 15m", Concurrency: 3}
}

func TestRunOnce(t *testing.T) {
	svc := &countingSweeper{}
	s, err := NewSweeper(svc, sweepConfig(true), zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, s.RunOnce(context.Background()))
	assert.EqualValues(t, 1, svc.calls.Load())
	assert.EqualValues(t, 3, svc.concurrency.Load())

	svc.err = errors.New("edition 4 failed")
	assert.ErrorContains(t, s.RunOnce(context.Background()), "edition 4 failed")
}

func TestTickHonorsToggle(t *testing.T) {
	svc := &countingSweeper{}
	s, err := NewSweeper(svc, sweepConfig(false), zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.False(t, s.Enabled())

	s.tick()
	assert.EqualValues(t, 0, svc.calls.Load())

	s.SetEnabled(true)
	s.tick()
	assert.EqualValues(t, 1, svc.calls.Load())
}

func TestNewSweeperRejectsBadSchedule(t *testing.T) {
	conf := sweepConfig(true)
	conf.Schedule = "every now and then"

	_, err := NewSweeper(&countingSweeper{}, conf, zaptest.NewLogger(t))
	assert.Error(t, err)
}

func TestStartStop(t *testing.T) {
	s, err := NewSweeper(&countingSweeper{}, sweepConfig(true), zaptest.NewLogger(t))
	require.NoError(t, err)

	s.Start()
	<-s.Stop().Done()
}
