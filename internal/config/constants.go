package config

import "time"

const (
	// Configuration file paths
	ConfigPathCatalog = "configs/progression/catalog.yaml"
)

// Store backends
const (
	StoreBackendMemory   = "memory"
	StoreBackendPostgres = "postgres"
	StoreBackendRedis    = "redis"
)

// Defaults
const (
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultLogDir      = "logs"
	DefaultServiceName = "critiquest"
	DefaultVersion     = "dev"
	DefaultEnvironment = "dev"

	DefaultRateLimitRPS   = 20.0
	DefaultRateLimitBurst = 40
	DefaultMaxBodyBytes   = 1 << 20

	DefaultStoreTimeout       = 5 * time.Second
	DefaultStoreMaxAttempts   = 3
	DefaultBreakerFailures    = 5
	DefaultBreakerOpenTimeout = 30 * time.Second
	DefaultCacheSize          = 10000
	DefaultCacheTTL           = 5 * time.Minute

	DefaultDBMaxConns        = 20
	DefaultDBMaxConnIdleTime = 5 * time.Minute
	DefaultDBMaxConnLifetime = 30 * time.Minute

	DefaultRedisAddr    = "localhost:6379"
	DefaultAMQPExchange = "critiquest.notifications"

	DefaultOfflineQueuePath = "data/offline.db"
	DefaultReplayInterval   = 30 * time.Second
	DefaultReplayWorkers    = 4

	DefaultEventMaxRetries = 5
	DefaultEventRetryDelay = 2 * time.Second
	DefaultDeadLetterPath  = "logs/event_deadletter.jsonl"
)
