package bootstrap

// =============================================================================
// File System Permissions
// =============================================================================

const (
	// DirPermission is the standard permission for creating directories
	DirPermission = 0755
)

// =============================================================================
// Logger Configuration
// =============================================================================

const (
	// LogFileName is the active log file inside the log directory; rotated copies sit next to it
	LogFileName = "critiquest.log"

	// LogFileMaxSizeMB is the size at which the active log is rotated
	LogFileMaxSizeMB = 100

	// LogFileMaxBackups is the number of rotated files to keep
	LogFileMaxBackups = 9

	// LogFileMaxAgeDays drops rotated files older than this
	LogFileMaxAgeDays = 30
)

// Log messages for logger initialization
const (
	LogMsgLoggingInitialized  = "Logging initialized"
	LogMsgStartingCritiQuest  = "Starting CritiQuest progression engine"
	LogMsgConfigurationLoaded = "Configuration loaded"
	LogMsgFailedCreateLogsDir = "failed to create logs directory"
)

// =============================================================================
// Catalog
// =============================================================================

const (
	LogMsgCatalogLoaded     = "Progression catalog loaded"
	ErrMsgFailedLoadCatalog = "failed to load progression catalog"
)

// =============================================================================
// Store Configuration
// =============================================================================

const (
	LogMsgStoreInitialized       = "Progression store initialized"
	LogMsgMigrationsApplied      = "Database migrations applied"
	ErrMsgFailedConnectPostgres  = "failed to connect to postgres"
	ErrMsgFailedMigrate          = "failed to run migrations"
	ErrMsgFailedConnectRedis     = "failed to connect to redis"
	ErrMsgUnknownStoreBackend    = "unknown store backend"
	ErrMsgFailedCreateService    = "failed to create progression service"
	LogMsgStoreCacheDisabled     = "Progression cache disabled"
	LogMsgStoreResilienceEnabled = "Store resilience enabled"
)

// =============================================================================
// Event System
// =============================================================================

// Log messages for event system initialization
const (
	LogMsgEventSystemInitialized         = "Event system initialized"
	LogMsgFailedCreateDeadLetterDir      = "failed to create dead-letter directory"
	LogMsgFailedCreateResilientPublisher = "failed to create resilient publisher"
)

// =============================================================================
// Event Handler Configuration
// =============================================================================

// Log messages for event handler registration
const (
	LogMsgMetricsCollectorRegistered = "Metrics collector registered"
	LogMsgNotifierRegistered         = "Reward notifier registered"
	LogMsgNotifierDisabled           = "Reward notifications disabled (AMQP_URL not set)"
	ErrMsgFailedRegisterMetrics      = "failed to register metrics collector"
	ErrMsgFailedConnectBroker        = "failed to connect to notification broker"
	ErrMsgFailedRegisterNotifier     = "failed to register reward notifier"
)

// =============================================================================
// Offline Queue
// =============================================================================

const (
	LogMsgOfflineQueueOpened  = "Offline queue opened"
	ErrMsgFailedOpenQueue     = "failed to open offline queue"
	ErrMsgFailedCreateQueueDB = "failed to create offline queue directory"
)

// =============================================================================
// Shutdown Messages
// =============================================================================

const (
	LogMsgShuttingDownServer         = "Shutting down server..."
	LogMsgShuttingDownEventPublisher = "Shutting down event publisher..."
	LogMsgServerStopped              = "Server stopped"
	LogMsgServerForcedShutdown       = "Server forced to shutdown"
	LogMsgResilientPublisherFailed   = "Resilient publisher shutdown failed"
	LogMsgReplayWorkerFailed         = "Replay worker shutdown failed"
	LogMsgCloserFailed               = "Resource close failed"

	// Service names for shutdown logging
	ServiceNameProgression = "progression"
)

// Shutdown log message format (service name will be prepended)
const (
	LogMsgServiceShutdownFailed = " service shutdown failed"
)
