package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Event metric names
const (
	MetricNameEventsPublished    = "events_published_total"
	MetricNameEventHandlerErrors = "event_handler_errors_total"
)

// Progression metric names
const (
	MetricNameUpdatesApplied     = "progression_updates_applied_total"
	MetricNameUpdatesFailed      = "progression_updates_failed_total"
	MetricNameUpdateDuration     = "progression_update_duration_seconds"
	MetricNameRewardsGranted     = "progression_rewards_granted_total"
	MetricNameLevelUps           = "progression_level_ups_total"
	MetricNameOfflineReplays     = "progression_offline_replays_total"
	MetricNameOfflineQueueLength = "progression_offline_queue_length"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Event metric help text
const (
	HelpTextEventsPublished    = "Total number of events published"
	HelpTextEventHandlerErrors = "Total number of event handler errors"
)

// Progression metric help text
const (
	HelpTextUpdatesApplied     = "Total number of committed progression updates"
	HelpTextUpdatesFailed      = "Total number of failed progression updates by reason"
	HelpTextUpdateDuration     = "Progression update latency in seconds"
	HelpTextRewardsGranted     = "Total number of rewards granted by type"
	HelpTextLevelUps           = "Total number of levels gained"
	HelpTextOfflineReplays     = "Total number of offline queue entries replayed by outcome"
	HelpTextOfflineQueueLength = "Number of entries waiting in the offline queue"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod  = "method"
	LabelPath    = "path"
	LabelStatus  = "status"
	LabelType    = "type"
	LabelReason  = "reason"
	LabelSource  = "source"
	LabelOutcome = "outcome"
)

// Failure reasons for LabelReason
const (
	ReasonInvalidUpdate    = "invalid_update"
	ReasonStoreUnavailable = "store_unavailable"
	ReasonUserNotFound     = "user_not_found"
	ReasonOther            = "other"
)

// Replay outcomes for LabelOutcome
const (
	OutcomeApplied      = "applied"
	OutcomeDeadLettered = "dead_lettered"
	OutcomeDeferred     = "deferred"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds, from 1ms to 10s.
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// UpdateLatencyBuckets covers in-memory commits (sub-millisecond) up to store timeouts
var UpdateLatencyBuckets = []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1, 5}

// ============================================================================
// Log Messages
// ============================================================================

// Debug log messages
const (
	LogMsgUnexpectedPayload = "Event payload has unexpected shape"
	LogMsgMetricsRecorded   = "Metrics recorded for event"
)
