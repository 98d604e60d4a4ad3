package bootstrap

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/offline"
	"github.com/critiquest/critiquest/internal/progression"
)

const testCatalog = `
version: "test"
levels:
  - threshold: 0
  - threshold: 100
milestones:
  - id: first-lesson
    name: First Lesson
    metric: lessonsCompleted
    requiredValue: 1
    reward:
      type: milestone
      rewards:
        gachaTickets: 1
`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()

	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalog), 0o600))

	return &config.Config{
		LogLevel:         "debug",
		LogFormat:        "json",
		LogDir:           filepath.Join(dir, "logs"),
		ServiceName:      "critiquest-test",
		Environment:      "test",
		StoreBackend:     config.StoreBackendMemory,
		AutoCreateUsers:  true,
		CatalogPath:      catalogPath,
		OfflineQueuePath: offline.MemoryDSN,
		ReplayInterval:   time.Hour,
		ReplayWorkers:    2,
		EventMaxRetries:  1,
		EventRetryDelay:  time.Millisecond,
		DeadLetterPath:   filepath.Join(dir, "events", "deadletter.jsonl"),
	}
}

func TestSetupLogger(t *testing.T) {
	cfg := testConfig(t)
	var console bytes.Buffer

	closer, err := setupLogger(cfg, &console)
	require.NoError(t, err)
	defer closer.Close()

	assert.Contains(t, console.String(), LogMsgLoggingInitialized)
	assert.Contains(t, console.String(), `"service":"critiquest-test"`)
	assert.FileExists(t, filepath.Join(cfg.LogDir, LogFileName))
}

func TestLoadCatalog(t *testing.T) {
	cfg := testConfig(t)

	c, err := LoadCatalog(cfg)
	require.NoError(t, err)
	assert.Equal(t, "test", c.Version())
	assert.Len(t, c.Milestones(), 1)

	cfg.CatalogPath = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadCatalog(cfg)
	assert.Error(t, err)
}

func TestInitializeRepositories(t *testing.T) {
	ctx := context.Background()

	t.Run("memory backend has no cache", func(t *testing.T) {
		repos, err := InitializeRepositories(ctx, testConfig(t))
		require.NoError(t, err)
		defer repos.Close()

		assert.IsType(t, &progression.MemoryRepository{}, repos.Progression)
		assert.Nil(t, repos.Cache)
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.StoreBackend = "mongo"
		_, err := InitializeRepositories(ctx, cfg)
		assert.ErrorContains(t, err, ErrMsgUnknownStoreBackend)
	})

	t.Run("unreachable postgres", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.StoreBackend = config.StoreBackendPostgres
		cfg.DBHost = "127.0.0.1"
		cfg.DBPort = "1"
		cfg.DBUser, cfg.DBPassword, cfg.DBName = "u", "p", "db"

		timeoutCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		_, err := InitializeRepositories(timeoutCtx, cfg)
		assert.ErrorContains(t, err, ErrMsgFailedConnectPostgres)
	})
}

func TestWiring_EndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)

	c, err := LoadCatalog(cfg)
	require.NoError(t, err)

	bus, publisher, err := InitializeEventSystem(cfg)
	require.NoError(t, err)

	closer, err := RegisterEventHandlers(ctx, EventHandlerDependencies{EventBus: bus, Config: cfg})
	require.NoError(t, err)

	repos, err := InitializeRepositories(ctx, cfg)
	require.NoError(t, err)

	svc, err := InitializeProgressionService(cfg, repos, c, publisher)
	require.NoError(t, err)

	off, err := InitializeOffline(ctx, cfg, svc, publisher)
	require.NoError(t, err)

	_, err = off.Queue.Enqueue(ctx, "u1", domain.ProgressionUpdate{LessonsCompleted: []string{"l1"}})
	require.NoError(t, err)

	report, err := off.Replayer.ReplayAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Applied)

	state, err := svc.GetProgression(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, state)
	assert.True(t, state.GrantedMilestoneIDs.Has("first-lesson"))

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	GracefulShutdown(shutdownCtx, ShutdownComponents{
		ProgressionService: svc,
		ReplayWorker:       off.Worker,
		ResilientPublisher: publisher,
		Repositories:       repos,
		Closers:            []io.Closer{off.Queue, closer},
	})

	_, err = off.Queue.Len(ctx)
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestInitializeProgressionService_StrictMode(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	cfg.AutoCreateUsers = false

	c, err := LoadCatalog(cfg)
	require.NoError(t, err)
	repos, err := InitializeRepositories(ctx, cfg)
	require.NoError(t, err)

	svc, err := InitializeProgressionService(cfg, repos, c, nil)
	require.NoError(t, err)

	result := svc.ApplyUpdate(ctx, "ghost", domain.ProgressionUpdate{Experience: 1}, false)
	assert.False(t, result.Success)
	assert.ErrorIs(t, result.Error, domain.ErrUserNotFound)
}
