package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/config"
	"github.com/critiquest/critiquest/internal/database"
	"github.com/critiquest/critiquest/internal/database/postgres"
	redisstore "github.com/critiquest/critiquest/internal/database/redis"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/progression"
	"github.com/critiquest/critiquest/internal/repository"
)

// Repositories holds the progression repository stack used by the application.
// Progression is the outermost layer and the one services should use.
type Repositories struct {
	Progression repository.Progression

	// Cache is nil when caching is disabled or the backend is in-memory
	Cache *progression.CachedStore

	closers []func()
}

// Close releases backend connections in reverse order of creation
func (r *Repositories) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// InitializeRepositories connects the configured backend and wraps it with
// the fortify resilience layer and the read-through cache.
func InitializeRepositories(ctx context.Context, cfg *config.Config) (*Repositories, error) {
	repos := &Repositories{}

	var backend repository.Progression
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		repos.Progression = progression.NewMemoryRepository()
		slog.Info(LogMsgStoreInitialized, "backend", cfg.StoreBackend)
		return repos, nil

	case config.StoreBackendPostgres:
		pool, err := database.NewPool(ctx, cfg.GetDBConnString(), database.PoolConfig{
			MaxConns:        cfg.DBMaxConns,
			MaxConnIdleTime: cfg.DBMaxConnIdleTime,
			MaxConnLifetime: cfg.DBMaxConnLifetime,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectPostgres, err)
		}
		repos.closers = append(repos.closers, pool.Close)

		if cfg.RunMigrations {
			if err := database.Migrate(ctx, pool); err != nil {
				repos.Close()
				return nil, fmt.Errorf("%s: %w", ErrMsgFailedMigrate, err)
			}
			slog.Info(LogMsgMigrationsApplied)
		}
		backend = postgres.NewProgressionRepository(pool)

	case config.StoreBackendRedis:
		redisCfg := redisstore.DefaultConfig()
		redisCfg.Addr = cfg.RedisAddr
		redisCfg.Password = cfg.RedisPassword
		redisCfg.DB = cfg.RedisDB

		client, err := redisstore.NewClient(ctx, redisCfg)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgFailedConnectRedis, err)
		}
		repos.closers = append(repos.closers, func() { _ = client.Close() })
		backend = redisstore.NewProgressionRepository(client)

	default:
		return nil, fmt.Errorf("%s: %q", ErrMsgUnknownStoreBackend, cfg.StoreBackend)
	}

	resilient := progression.NewResilientStore(backend, progression.ResilienceConfig{
		Timeout:          cfg.StoreTimeout,
		MaxAttempts:      cfg.StoreMaxAttempts,
		FailureThreshold: cfg.BreakerFailures,
		OpenTimeout:      cfg.BreakerOpenTimeout,
	})
	repos.Progression = resilient
	slog.Info(LogMsgStoreResilienceEnabled,
		"timeout", cfg.StoreTimeout,
		"max_attempts", cfg.StoreMaxAttempts,
		"breaker_failures", cfg.BreakerFailures)

	if cfg.CacheSize > 0 {
		repos.Cache = progression.NewCachedStore(resilient, cfg.CacheSize, cfg.CacheTTL)
		repos.Progression = repos.Cache
	} else {
		slog.Info(LogMsgStoreCacheDisabled)
	}

	slog.Info(LogMsgStoreInitialized, "backend", cfg.StoreBackend, "cache_size", cfg.CacheSize)
	return repos, nil
}

// InitializeProgressionService builds the coordinator on top of the repository stack
func InitializeProgressionService(cfg *config.Config, repos *Repositories, c *catalog.Catalog, publisher event.Publisher) (progression.Service, error) {
	var storeOpts []progression.StoreOption
	if !cfg.AutoCreateUsers {
		storeOpts = append(storeOpts, progression.WithoutAutoCreate())
	}

	svc, err := progression.NewService(
		progression.NewStore(repos.Progression, storeOpts...),
		c,
		progression.WithPublisher(publisher),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgFailedCreateService, err)
	}
	return svc, nil
}
