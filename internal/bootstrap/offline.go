package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/offline"
	"github.com/critiquest/critiquest/internal/worker"
)

// OfflineComponents are the pieces of the offline replay pipeline
type OfflineComponents struct {
	Queue    *offline.SQLiteQueue
	Replayer *offline.Replayer
	Worker   *worker.ReplayWorker
}

// InitializeOffline opens the durable queue and builds the replayer and its
// periodic worker. The worker is not started.
func InitializeOffline(ctx context.Context, cfg *config.Config, applier offline.Applier, publisher event.Publisher) (*OfflineComponents, error) {
	if cfg.OfflineQueuePath != offline.MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(cfg.OfflineQueuePath), DirPermission); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateQueueDB, err)
		}
	}

	queue, err := offline.OpenSQLiteQueue(ctx, cfg.OfflineQueuePath)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedOpenQueue, err)
	}

	replayer := offline.NewReplayer(queue, applier,
		offline.WithReplayPublisher(publisher),
		offline.WithReplayWorkers(cfg.ReplayWorkers),
	)

	pending, _ := queue.Len(ctx)
	slog.Info(LogMsgOfflineQueueOpened,
		"path", cfg.OfflineQueuePath,
		"pending", pending,
		"replay_interval", cfg.ReplayInterval,
		"replay_workers", cfg.ReplayWorkers)

	return &OfflineComponents{
		Queue:    queue,
		Replayer: replayer,
		Worker:   worker.NewReplayWorker(replayer, cfg.ReplayInterval),
	}, nil
}
