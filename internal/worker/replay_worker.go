package worker

import (
	"context"
	"time"

	"github.com/critiquest/critiquest/internal/logger"
)

// RoundRunner drains one round of queued offline updates
type RoundRunner interface {
	RunRound(ctx context.Context) error
}

// ReplayWorker periodically replays the offline queue.
// Rounds never overlap: a trigger during a round runs one more round afterwards.
type ReplayWorker struct {
	BaseWorker
	runner   RoundRunner
	interval time.Duration
	trigger  chan struct{}
}

// NewReplayWorker creates a worker that runs a round every interval
func NewReplayWorker(runner RoundRunner, interval time.Duration) *ReplayWorker {
	if interval <= 0 {
		interval = DefaultReplayInterval
	}
	w := &ReplayWorker{
		runner:   runner,
		interval: interval,
		trigger:  make(chan struct{}, 1),
	}
	w.init()
	return w
}

// Start launches the replay loop. The first round runs immediately.
func (w *ReplayWorker) Start() {
	logger.FromContext(context.Background()).Info(LogMsgReplayWorkerStarted, "interval", w.interval)

	w.wg.Add(1)
	go w.loop()
	w.TriggerNow()
}

func (w *ReplayWorker) loop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.shutdown:
			return
		case <-ticker.C:
			w.runRound()
		case <-w.trigger:
			w.runRound()
		}
	}
}

func (w *ReplayWorker) runRound() {
	if w.stopping() {
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Abort a long round when shutdown starts
	go func() {
		select {
		case <-w.shutdown:
			cancel()
		case <-ctx.Done():
		}
	}()

	log := logger.FromContext(ctx)
	log.Debug(LogMsgReplayRoundStarting)
	if err := w.runner.RunRound(ctx); err != nil {
		log.Error(LogMsgReplayRoundFailed, "error", err)
	}
}

// TriggerNow requests a round without waiting for the next tick
func (w *ReplayWorker) TriggerNow() {
	select {
	case w.trigger <- struct{}{}:
		logger.FromContext(context.Background()).Debug(LogMsgReplayManualTrigger)
	default:
		logger.FromContext(context.Background()).Debug(LogMsgReplayTriggerPending)
	}
}

// Shutdown stops the loop and waits for an in-flight round
func (w *ReplayWorker) Shutdown(ctx context.Context) error {
	return w.shutdownInternal(ctx, ReplayWorkerName)
}
