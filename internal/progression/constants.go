package progression

import "time"

// Update sources recorded on published events
const (
	SourceAPI     = "api"
	SourceOffline = "offline"
)

// Reward id formats. Ids are deterministic so a replayed update yields the same ids.
const (
	RewardIDFormatMilestone   = "milestone:%s"
	RewardIDFormatLevelUp     = "level_up:%d"
	RewardIDFormatDailyReward = "daily_reward:%d"
)

// Store defaults
const (
	DefaultStoreTimeout        = 5 * time.Second
	DefaultStoreMaxAttempts    = 3
	DefaultStoreRetryDelay     = 50 * time.Millisecond
	DefaultStoreMaxRetryDelay  = time.Second
	DefaultBreakerFailures     = 5
	DefaultBreakerOpenTimeout  = 30 * time.Second
	DefaultBreakerHalfOpenReqs = 1
	DefaultCacheSize           = 10000
	DefaultCacheTTL            = 5 * time.Minute
)

// Log messages
const (
	LogMsgUpdateApplied       = "progression update applied"
	LogMsgUpdateRejected      = "progression update rejected"
	LogMsgUpdateFailed        = "progression update failed"
	LogMsgLevelUp             = "user leveled up"
	LogMsgMilestoneGranted    = "milestone granted"
	LogMsgBreakerStateChange  = "progression store circuit breaker state change"
	LogMsgUnknownMilestoneRef = "granted milestone id not in catalog"
)
