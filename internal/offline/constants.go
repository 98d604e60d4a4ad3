package offline

// SQLite driver name registered by modernc.org/sqlite
const driverName = "sqlite"

// MemoryDSN opens a private in-memory queue
const MemoryDSN = ":memory:"

// DefaultReplayWorkers bounds how many users replay in parallel
const DefaultReplayWorkers = 4

// Error messages
const (
	ErrMsgOpenQueue      = "failed to open offline queue"
	ErrMsgMigrateQueue   = "failed to migrate offline queue"
	ErrMsgEnqueue        = "failed to enqueue offline update"
	ErrMsgReadQueue      = "failed to read offline queue"
	ErrMsgRemoveEntry    = "failed to remove offline entry"
	ErrMsgDeadLetter     = "failed to dead-letter offline entry"
	ErrMsgRecordAttempt  = "failed to record replay attempt"
	ErrMsgEmptyUserID    = "user id is required"
	ErrMsgEntryNotQueued = "offline entry not queued"
)

// Log messages
const (
	LogMsgEnqueued         = "offline update queued"
	LogMsgReplayApplied    = "offline update replayed"
	LogMsgReplayDeadLetter = "offline update dead-lettered"
	LogMsgReplayDeferred   = "offline replay deferred, store unavailable"
	LogMsgReplayRound      = "offline replay round complete"
	LogMsgPublishSkipped   = "offline replay event not published"
)
