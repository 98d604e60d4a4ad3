package bootstrap

import (
	"context"
	"io"
	"log/slog"

	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/progression"
	"github.com/critiquest/critiquest/internal/server"
	"github.com/critiquest/critiquest/internal/worker"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server             *server.Server
	ProgressionService progression.Service
	ReplayWorker       *worker.ReplayWorker
	ResilientPublisher *event.ResilientPublisher
	Repositories       *Repositories

	// Closers run last, in order (offline queue, broker connection)
	Closers []io.Closer
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in this order:
// 1. HTTP server (stop accepting new requests)
// 2. Replay worker (finish or cancel the current round)
// 3. Progression service (wait for in-flight updates to commit)
// 4. Event publisher (flush pending events to the bus and the notifier)
// 5. Queue, broker and store connections
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if components.Server != nil {
		if err := components.Server.Stop(ctx); err != nil {
			slog.Error(LogMsgServerForcedShutdown, "error", err)
		}
	}

	if components.ReplayWorker != nil {
		if err := components.ReplayWorker.Shutdown(ctx); err != nil {
			slog.Error(LogMsgReplayWorkerFailed, "error", err)
		}
	}

	if components.ProgressionService != nil {
		shutdownService(ctx, ServiceNameProgression, components.ProgressionService)
	}

	// Shutdown resilient publisher after the service so its final events are flushed
	if components.ResilientPublisher != nil {
		slog.Info(LogMsgShuttingDownEventPublisher)
		if err := components.ResilientPublisher.Shutdown(ctx); err != nil {
			slog.Error(LogMsgResilientPublisherFailed, "error", err)
		}
	}

	for _, c := range components.Closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			slog.Error(LogMsgCloserFailed, "error", err)
		}
	}

	if components.Repositories != nil {
		components.Repositories.Close()
	}

	slog.Info(LogMsgServerStopped)
}

type shutdownableService interface {
	Shutdown(context.Context) error
}

// shutdownService shuts down a service and logs any errors
func shutdownService(ctx context.Context, name string, service shutdownableService) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}
