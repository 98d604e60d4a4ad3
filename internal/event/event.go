package event

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/critiquest/critiquest/internal/domain"
)

// Type represents the type of an event
type Type string

// Metadata carries optional routing and tracing information
type Metadata map[string]interface{}

// Event represents a generic event in the system
type Event struct {
	Version  string      `json:"version"` // Event schema version (e.g., "1.0")
	Type     Type        `json:"type"`
	Payload  interface{} `json:"payload"`
	Metadata Metadata    `json:"metadata,omitempty"`
}

// GetMetadataValue extracts a value from the event metadata safely
func (e Event) GetMetadataValue(key string) interface{} {
	if e.Metadata == nil {
		return nil
	}
	return e.Metadata[key]
}

// Progression event types
const (
	UpdateApplied   Type = Type(domain.EventTypeUpdateApplied)
	LevelUp         Type = Type(domain.EventTypeLevelUp)
	RewardGranted   Type = Type(domain.EventTypeRewardGranted)
	OfflineReplayed Type = Type(domain.EventTypeOfflineReplayed)
)

// Metadata keys
const (
	MetadataKeyRequestID = "request_id"
	MetadataKeySource    = "source"
)

// Typed event payloads for type safety

// UpdateAppliedPayloadV1 is published once per committed update
type UpdateAppliedPayloadV1 struct {
	UserID       string `json:"user_id"`
	Level        int    `json:"level"`
	Experience   int64  `json:"experience"`
	RewardCount  int    `json:"reward_count"`
	ActivityType string `json:"activity_type,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// LevelUpPayloadV1 is the typed payload for level up events
type LevelUpPayloadV1 struct {
	UserID    string `json:"user_id"`
	OldLevel  int    `json:"old_level"`
	NewLevel  int    `json:"new_level"`
	Timestamp int64  `json:"timestamp"`
}

// RewardGrantedPayloadV1 is the typed payload for reward events
type RewardGrantedPayloadV1 struct {
	UserID    string                   `json:"user_id"`
	Reward    domain.ProgressionReward `json:"reward"`
	Timestamp int64                    `json:"timestamp"`
}

// OfflineReplayedPayloadV1 is the typed payload for offline replay events
type OfflineReplayedPayloadV1 struct {
	UserID  string `json:"user_id"`
	EntryID string `json:"entry_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Type-safe event constructors

// NewUpdateAppliedEvent creates an update applied event from a committed state
func NewUpdateAppliedEvent(state *domain.ProgressionState, rewardCount int, activityType, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    UpdateApplied,
		Payload: UpdateAppliedPayloadV1{
			UserID:       state.UserID,
			Level:        state.Level,
			Experience:   state.Experience,
			RewardCount:  rewardCount,
			ActivityType: activityType,
			Timestamp:    time.Now().Unix(),
		},
		Metadata: Metadata{MetadataKeySource: source},
	}
}

// NewLevelUpEvent creates a new level up event
func NewLevelUpEvent(userID string, oldLevel, newLevel int, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    LevelUp,
		Payload: LevelUpPayloadV1{
			UserID:    userID,
			OldLevel:  oldLevel,
			NewLevel:  newLevel,
			Timestamp: time.Now().Unix(),
		},
		Metadata: Metadata{MetadataKeySource: source},
	}
}

// NewRewardGrantedEvent creates a new reward granted event
func NewRewardGrantedEvent(userID string, reward domain.ProgressionReward, source string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    RewardGranted,
		Payload: RewardGrantedPayloadV1{
			UserID:    userID,
			Reward:    reward,
			Timestamp: time.Now().Unix(),
		},
		Metadata: Metadata{MetadataKeySource: source},
	}
}

// NewOfflineReplayedEvent creates a new offline replay event
func NewOfflineReplayedEvent(userID, entryID string, replayErr error) Event {
	payload := OfflineReplayedPayloadV1{
		UserID:  userID,
		EntryID: entryID,
		Success: replayErr == nil,
	}
	if replayErr != nil {
		payload.Error = replayErr.Error()
	}
	return Event{
		Version: EventSchemaVersion,
		Type:    OfflineReplayed,
		Payload: payload,
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// Publisher is the fire-and-forget side services publish through
type Publisher interface {
	PublishWithRetry(ctx context.Context, event Event)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers.
// Handlers run synchronously in subscription order.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type]...)
	b.mu.RUnlock()

	return deliver(ctx, event, handlers)
}

// HandlerError reports the handlers of one delivery that failed.
// Retrying Failed alone keeps handlers that already succeeded from seeing the event twice.
type HandlerError struct {
	EventType Type
	Failed    []Handler
	Errs      []error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf(LogMsgHandlerErrorFormat, len(e.Errs), e.EventType, e.Errs)
}

func (e *HandlerError) Unwrap() []error {
	return e.Errs
}

// deliver runs handlers in order and collects the ones that failed
func deliver(ctx context.Context, event Event, handlers []Handler) error {
	var herr *HandlerError
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			if herr == nil {
				herr = &HandlerError{EventType: event.Type}
			}
			herr.Failed = append(herr.Failed, handler)
			herr.Errs = append(herr.Errs, err)
		}
	}

	if herr != nil {
		return herr
	}
	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
