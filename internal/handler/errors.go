package handler

// Generic HTTP error messages for client responses.
// These messages intentionally do not expose internal error details for security reasons.
// Both handlers and tests should reference these constants to maintain consistency.
const (
	// HTTP status messages
	ErrMsgMethodNotAllowed      = "Method not allowed"
	ErrMsgInvalidRequest        = "Invalid request body"
	ErrMsgInvalidRequestSummary = "Invalid request"
	ErrMsgRequestTooLarge       = "Request body too large"

	// Path parameter error messages
	ErrMsgInvalidUserID = "Invalid user id"

	// Progression error messages
	ErrMsgProgressionNotFound     = "Progression not found"
	ErrMsgGetProgressionFailed    = "Failed to retrieve progression"
	ErrMsgGetMilestonesFailed     = "Failed to retrieve milestones"
	ErrMsgGetLevelProgressFailed  = "Failed to retrieve level progress"
	ErrMsgOfflineQueueUnavailable = "Offline queue is not enabled"
	ErrMsgEnqueueFailed           = "Failed to queue offline update"
	ErrMsgGetOfflineStatusFailed  = "Failed to retrieve offline queue status"
	ErrMsgEmptyOfflineUpdate      = "Offline update carries no progress"
)

// Success messages for API responses
// These are user-facing success messages returned in JSON responses
const (
	MsgOfflineUpdateQueued = "Offline update queued"
	MsgReplayTriggered     = "Offline replay triggered"
)
