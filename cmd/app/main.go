package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/critiquest/critiquest/internal/bootstrap"
	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/handler"
	"github.com/critiquest/critiquest/internal/server"
)

// shutdownTimeout bounds the whole graceful shutdown sequence
const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env before validating so file-provided variables count
	_ = godotenv.Load()

	warnings, err := config.ValidateEnvWithWarnings()
	if err != nil {
		slog.Error("Environment validation failed", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logCloser, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		slog.Error("Failed to setup logger", "error", err)
		os.Exit(1)
	}
	defer logCloser.Close()

	for _, warning := range warnings {
		slog.Warn(warning)
	}

	if err := run(cfg); err != nil {
		slog.Error("CritiQuest exited with error", "error", err)
		logCloser.Close()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := bootstrap.LoadCatalog(cfg)
	if err != nil {
		return err
	}

	eventBus, publisher, err := bootstrap.InitializeEventSystem(cfg)
	if err != nil {
		return err
	}

	brokerCloser, err := bootstrap.RegisterEventHandlers(ctx, bootstrap.EventHandlerDependencies{
		EventBus: eventBus,
		Config:   cfg,
	})
	if err != nil {
		return err
	}

	repos, err := bootstrap.InitializeRepositories(ctx, cfg)
	if err != nil {
		_ = brokerCloser.Close()
		return err
	}

	svc, err := bootstrap.InitializeProgressionService(cfg, repos, c, publisher)
	if err != nil {
		_ = brokerCloser.Close()
		repos.Close()
		return err
	}

	off, err := bootstrap.InitializeOffline(ctx, cfg, svc, publisher)
	if err != nil {
		_ = brokerCloser.Close()
		repos.Close()
		return err
	}
	off.Worker.Start()

	deps := server.Dependencies{
		Progression:  svc,
		OfflineQueue: off.Queue,
		Replay:       off.Worker,
	}
	// Leave the interface nil rather than holding a nil pointer
	var cache handler.ProgressionCache
	if repos.Cache != nil {
		cache = repos.Cache
	}
	deps.Cache = cache

	srv := server.NewServer(server.Options{
		Port:           cfg.Port,
		APIKey:         cfg.APIKey,
		TrustedProxies: cfg.TrustedProxies,
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	}, deps)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutdown signal received")
	case err, ok := <-serverErr:
		if ok {
			runErr = err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:             srv,
		ProgressionService: svc,
		ReplayWorker:       off.Worker,
		ResilientPublisher: publisher,
		Repositories:       repos,
		Closers:            []io.Closer{off.Queue, brokerCloser},
	})

	return runErr
}
