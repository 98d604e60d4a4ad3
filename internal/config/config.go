package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	Port        int
	LogLevel    string
	LogFormat   string
	LogDir      string
	ServiceName string
	Version     string
	Environment string
	APIKey      string // API key for authentication

	// HTTP protection
	TrustedProxies []string // Remote addrs allowed to set X-Forwarded-For
	RateLimitRPS   float64
	RateLimitBurst int
	MaxBodyBytes   int64

	// Progression store
	StoreBackend       string
	AutoCreateUsers    bool
	StoreTimeout       time.Duration
	StoreMaxAttempts   int
	BreakerFailures    int
	BreakerOpenTimeout time.Duration
	CacheSize          int
	CacheTTL           time.Duration

	// Postgres
	DBUser            string
	DBPassword        string
	DBHost            string
	DBPort            string
	DBName            string
	DBMaxConns        int
	DBMaxConnIdleTime time.Duration
	DBMaxConnLifetime time.Duration
	RunMigrations     bool

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Notifications; empty AMQPURL disables them
	AMQPURL      string
	AMQPExchange string

	// Catalog and offline queue
	CatalogPath      string
	OfflineQueuePath string
	ReplayInterval   time.Duration
	ReplayWorkers    int

	// Event publishing
	EventMaxRetries int
	EventRetryDelay time.Duration
	DeadLetterPath  string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	return load(true)
}

// LoadForTools loads the configuration for operator tools that never serve HTTP,
// so API_KEY is not required.
func LoadForTools() (*Config, error) {
	return load(false)
}

func load(requireAPIKey bool) (*Config, error) {
	// Load .env file if it exists, but don't fail if it doesn't (could be real env vars)
	_ = godotenv.Load()

	cfg := &Config{
		LogLevel:    strings.ToLower(getEnv("LOG_LEVEL", DefaultLogLevel)),
		LogFormat:   strings.ToLower(getEnv("LOG_FORMAT", DefaultLogFormat)),
		LogDir:      getEnv("LOG_DIR", DefaultLogDir),
		ServiceName: getEnv("SERVICE_NAME", DefaultServiceName),
		Version:     getEnv("VERSION", DefaultVersion),
		Environment: getEnv("ENVIRONMENT", DefaultEnvironment),
		APIKey:      getEnv("API_KEY", ""),

		TrustedProxies: getEnvAsSlice("TRUSTED_PROXIES"),
		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", DefaultRateLimitRPS),
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", DefaultRateLimitBurst),
		MaxBodyBytes:   int64(getEnvAsInt("MAX_BODY_BYTES", DefaultMaxBodyBytes)),

		StoreBackend:       strings.ToLower(getEnv("STORE_BACKEND", StoreBackendMemory)),
		AutoCreateUsers:    getEnvAsBool("AUTO_CREATE_USERS", true),
		StoreTimeout:       getEnvAsDuration("STORE_TIMEOUT", DefaultStoreTimeout),
		StoreMaxAttempts:   getEnvAsInt("STORE_MAX_ATTEMPTS", DefaultStoreMaxAttempts),
		BreakerFailures:    getEnvAsInt("STORE_BREAKER_FAILURES", DefaultBreakerFailures),
		BreakerOpenTimeout: getEnvAsDuration("STORE_BREAKER_OPEN_TIMEOUT", DefaultBreakerOpenTimeout),
		CacheSize:          getEnvAsInt("CACHE_SIZE", DefaultCacheSize),
		CacheTTL:           getEnvAsDuration("CACHE_TTL", DefaultCacheTTL),

		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBName:            getEnv("DB_NAME", "critiquest"),
		DBMaxConns:        getEnvAsInt("DB_MAX_CONNS", DefaultDBMaxConns),
		DBMaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", DefaultDBMaxConnIdleTime),
		DBMaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", DefaultDBMaxConnLifetime),
		RunMigrations:     getEnvAsBool("DB_RUN_MIGRATIONS", true),

		RedisAddr:     getEnv("REDIS_ADDR", DefaultRedisAddr),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", DefaultAMQPExchange),

		CatalogPath:      getEnv("CATALOG_PATH", ConfigPathCatalog),
		OfflineQueuePath: getEnv("OFFLINE_QUEUE_PATH", DefaultOfflineQueuePath),
		ReplayInterval:   getEnvAsDuration("REPLAY_INTERVAL", DefaultReplayInterval),
		ReplayWorkers:    getEnvAsInt("REPLAY_WORKERS", DefaultReplayWorkers),

		EventMaxRetries: getEnvAsInt("EVENT_MAX_RETRIES", DefaultEventMaxRetries),
		EventRetryDelay: getEnvAsDuration("EVENT_RETRY_DELAY", DefaultEventRetryDelay),
		DeadLetterPath:  getEnv("EVENT_DEADLETTER_PATH", DefaultDeadLetterPath),
	}

	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT value: %w", err)
	}
	cfg.Port = port

	// Validate API key is set
	if requireAPIKey && cfg.APIKey == "" {
		return nil, fmt.Errorf("API_KEY environment variable must be set for security")
	}

	switch cfg.StoreBackend {
	case StoreBackendMemory, StoreBackendPostgres, StoreBackendRedis:
	default:
		return nil, fmt.Errorf("invalid STORE_BACKEND %q: must be one of %s, %s, %s",
			cfg.StoreBackend, StoreBackendMemory, StoreBackendPostgres, StoreBackendRedis)
	}

	return cfg, nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt returns the default when the variable is unset or not an integer
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsSlice splits a comma-separated variable, dropping blanks
func getEnvAsSlice(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// getEnvAsDuration parses Go duration syntax ("30s", "5m")
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// GetDBConnString returns the PostgreSQL connection string
func (c *Config) GetDBConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBName,
	)
}
