package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/critiquest/critiquest/internal/concurrency"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/metrics"
	"github.com/critiquest/critiquest/internal/progression"
	"github.com/critiquest/critiquest/internal/worker"
)

// Applier applies one update; progression.Service satisfies it
type Applier interface {
	ApplyUpdate(ctx context.Context, userID string, update domain.ProgressionUpdate, immediate bool) *domain.UpdateResult
}

// Report summarizes one replay
type Report struct {
	Applied      int                        `json:"applied"`
	DeadLettered int                        `json:"deadLettered"`
	Deferred     int                        `json:"deferred"`
	Rewards      []domain.ProgressionReward `json:"rewards,omitempty"`
}

func (r *Report) merge(other Report) {
	r.Applied += other.Applied
	r.DeadLettered += other.DeadLettered
	r.Deferred += other.Deferred
	r.Rewards = append(r.Rewards, other.Rewards...)
}

// Replayer feeds queued updates through the coordinator one at a time per user
type Replayer struct {
	queue     Queue
	applier   Applier
	publisher event.Publisher
	workers   int

	// userLocks keeps a user's replay single-flight across rounds and manual triggers
	userLocks *concurrency.LockManager
}

// ReplayerOption configures a Replayer
type ReplayerOption func(*Replayer)

// WithReplayPublisher publishes an offline_replayed event per processed entry
func WithReplayPublisher(p event.Publisher) ReplayerOption {
	return func(r *Replayer) {
		r.publisher = p
	}
}

// WithReplayWorkers sets how many users replay in parallel
func WithReplayWorkers(n int) ReplayerOption {
	return func(r *Replayer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// NewReplayer creates a replayer over queue
func NewReplayer(queue Queue, applier Applier, opts ...ReplayerOption) *Replayer {
	r := &Replayer{
		queue:     queue,
		applier:   applier,
		workers:   DefaultReplayWorkers,
		userLocks: concurrency.NewLockManager(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ReplayUser replays a user's entries in chronological order.
// A rejected entry is dead-lettered and replay continues; a store failure
// leaves the entry queued and stops this user's replay.
func (r *Replayer) ReplayUser(ctx context.Context, userID string) (Report, error) {
	unlock := r.userLocks.Lock(userID)
	defer unlock()

	log := logger.FromContext(ctx)
	var report Report

	entries, err := r.queue.Pending(ctx, userID)
	if err != nil {
		return report, err
	}

	replayCtx := progression.WithSource(ctx, progression.SourceOffline)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := r.applier.ApplyUpdate(replayCtx, userID, entry.Update, false)
		switch {
		case result.Success:
			if err := r.queue.Remove(ctx, entry.ID); err != nil {
				// Applied but still queued: the next round will apply it again
				return report, err
			}
			report.Applied++
			report.Rewards = append(report.Rewards, result.Rewards...)
			metrics.OfflineReplays.WithLabelValues(metrics.OutcomeApplied).Inc()
			log.Info(LogMsgReplayApplied, "user_id", userID, "entry_id", entry.ID, "rewards", len(result.Rewards))
			r.publish(ctx, userID, entry.ID, nil)

		case isPermanent(result.Error):
			if err := r.queue.DeadLetter(ctx, entry, result.Error.Error()); err != nil {
				return report, err
			}
			report.DeadLettered++
			metrics.OfflineReplays.WithLabelValues(metrics.OutcomeDeadLettered).Inc()
			log.Warn(LogMsgReplayDeadLetter, "user_id", userID, "entry_id", entry.ID, "error", result.Error)
			r.publish(ctx, userID, entry.ID, result.Error)

		default:
			if err := r.queue.RecordAttempt(ctx, entry.ID, result.Error); err != nil {
				log.Warn(ErrMsgRecordAttempt, "entry_id", entry.ID, "error", err)
			}
			report.Deferred++
			metrics.OfflineReplays.WithLabelValues(metrics.OutcomeDeferred).Inc()
			log.Warn(LogMsgReplayDeferred, "user_id", userID, "entry_id", entry.ID, "error", result.Error)
			return report, nil
		}
	}
	return report, nil
}

// isPermanent reports whether retrying the entry can never succeed
func isPermanent(err error) bool {
	return errors.Is(err, domain.ErrInvalidUpdate) || errors.Is(err, domain.ErrUserNotFound)
}

func (r *Replayer) publish(ctx context.Context, userID, entryID string, replayErr error) {
	if r.publisher == nil {
		return
	}
	r.publisher.PublishWithRetry(ctx, event.NewOfflineReplayedEvent(userID, entryID, replayErr))
}

// ReplayAll replays every queued user, fanning users out across a worker pool
func (r *Replayer) ReplayAll(ctx context.Context) (Report, error) {
	var total Report

	users, err := r.queue.Users(ctx)
	if err != nil {
		return total, err
	}
	if len(users) == 0 {
		r.recordQueueLength(ctx)
		return total, nil
	}

	var (
		mu   sync.Mutex
		errs []error
	)
	pool := worker.NewPool(r.workers, len(users))
	pool.Start(ctx)
	for _, userID := range users {
		pool.Enqueue(worker.JobFunc(func(ctx context.Context) error {
			report, err := r.ReplayUser(ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			total.merge(report)
			if err != nil {
				errs = append(errs, fmt.Errorf("user %s: %w", userID, err))
			}
			return err
		}))
	}
	pool.Stop()

	r.recordQueueLength(ctx)
	return total, errors.Join(errs...)
}

// RunRound replays the whole queue and logs the outcome
func (r *Replayer) RunRound(ctx context.Context) error {
	report, err := r.ReplayAll(ctx)
	if report.Applied+report.DeadLettered+report.Deferred > 0 {
		logger.FromContext(ctx).Info(LogMsgReplayRound,
			"applied", report.Applied,
			"dead_lettered", report.DeadLettered,
			"deferred", report.Deferred)
	}
	return err
}

func (r *Replayer) recordQueueLength(ctx context.Context) {
	if n, err := r.queue.Len(ctx); err == nil {
		metrics.OfflineQueueLength.Set(float64(n))
	}
}
