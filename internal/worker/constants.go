package worker

import "time"

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "Worker job failed"

// ============================================================================
// Log Messages - Replay Worker
// ============================================================================

// Log messages for offline replay worker operations
const (
	LogMsgReplayWorkerStarted  = "Offline replay worker started"
	LogMsgReplayRoundStarting  = "Offline replay round starting"
	LogMsgReplayRoundFailed    = "Offline replay round failed"
	LogMsgReplayManualTrigger  = "Offline replay manually triggered"
	LogMsgReplayTriggerPending = "Offline replay already pending"
)

// ReplayWorkerName is used in shutdown log lines
const ReplayWorkerName = "offline replay worker"

// DefaultReplayInterval is used when the configured interval is not positive
const DefaultReplayInterval = 30 * time.Second

// ============================================================================
// Test Configuration
// ============================================================================

// Test pool configuration values used in pool_test.go
const (
	TestWorkerCount           = 2
	TestQueueSize             = 10
	TestExpectedJobCount      = 2
	TestWorkerProcessWaitTime = 100 // milliseconds
)
