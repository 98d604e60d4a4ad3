package domain

// Event type constants used across the application for event bus subscriptions
// and metrics tracking.
//
// Event types follow the pattern: <entity>.<action> (e.g., "progression.level_up")
const (
	// EventTypeUpdateApplied is published after an update has been committed
	EventTypeUpdateApplied = "progression.update_applied"

	// EventTypeLevelUp is published once per committed update that raised the level
	EventTypeLevelUp = "progression.level_up"

	// EventTypeRewardGranted is published for every reward issued by a committed update
	EventTypeRewardGranted = "progression.reward_granted"

	// EventTypeOfflineReplayed is published when a queued offline update has been replayed
	EventTypeOfflineReplayed = "progression.offline_replayed"
)
