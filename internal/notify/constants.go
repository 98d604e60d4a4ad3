package notify

// Exchange and routing
const (
	DefaultExchange    = "critiquest.notifications"
	ExchangeKind       = "topic"
	RoutingKeyReward   = "progression.reward"
	RoutingKeyLevelUp  = "progression.level_up"
	ContentTypeJSON    = "application/json"
	HeaderUserID       = "user_id"
	HeaderEventType    = "event_type"
	HeaderEventVersion = "event_version"
)

// Notification kinds
const (
	KindReward  = "reward"
	KindLevelUp = "level_up"
)

// Log messages
const (
	LogMsgConnected        = "connected to RabbitMQ"
	LogMsgNotificationSent = "progression notification published"
	LogMsgPublishFailed    = "failed to publish progression notification"
	LogMsgBadPayload       = "skipping notification with unexpected payload"
)
