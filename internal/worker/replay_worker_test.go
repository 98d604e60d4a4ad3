package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/testing/leaktest"
)

type countingRunner struct {
	rounds int32
	block  chan struct{}
}

func (r *countingRunner) RunRound(ctx context.Context) error {
	atomic.AddInt32(&r.rounds, 1)
	if r.block != nil {
		select {
		case <-r.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (r *countingRunner) count() int32 {
	return atomic.LoadInt32(&r.rounds)
}

func TestReplayWorker_RunsImmediatelyAndOnTick(t *testing.T) {
	runner := &countingRunner{}
	w := NewReplayWorker(runner, 20*time.Millisecond)
	w.Start()
	defer func() { _ = w.Shutdown(context.Background()) }()

	assert.Eventually(t, func() bool { return runner.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
}

func TestReplayWorker_TriggerNow(t *testing.T) {
	runner := &countingRunner{}
	w := NewReplayWorker(runner, time.Hour)
	w.Start()
	defer func() { _ = w.Shutdown(context.Background()) }()

	assert.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 5*time.Millisecond)

	w.TriggerNow()
	assert.Eventually(t, func() bool { return runner.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestReplayWorker_ShutdownCancelsRound(t *testing.T) {
	runner := &countingRunner{block: make(chan struct{})}
	w := NewReplayWorker(runner, time.Hour)
	w.Start()

	require.Eventually(t, func() bool { return runner.count() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, w.Shutdown(ctx))

	// No rounds after shutdown
	w.TriggerNow()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), runner.count())
}

func TestReplayWorker_DefaultInterval(t *testing.T) {
	w := NewReplayWorker(&countingRunner{}, 0)
	assert.Equal(t, DefaultReplayInterval, w.interval)
}

func TestReplayWorker_ShutdownLeavesNoGoroutines(t *testing.T) {
	checker := leaktest.NewGoroutineChecker(t)

	runner := &countingRunner{}
	w := NewReplayWorker(runner, 10*time.Millisecond)
	w.Start()
	require.Eventually(t, func() bool { return runner.count() >= 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, w.Shutdown(context.Background()))
	checker.Check(0)
}
