package metrics

import (
	"context"

	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/logger"
)

// EventMetricsCollector subscribes to events and records metrics
type EventMetricsCollector struct{}

// NewEventMetricsCollector creates a new event metrics collector
func NewEventMetricsCollector() *EventMetricsCollector {
	return &EventMetricsCollector{}
}

// Register subscribes to all progression events
func (e *EventMetricsCollector) Register(bus event.Bus) error {
	eventTypes := []event.Type{
		event.UpdateApplied,
		event.LevelUp,
		event.RewardGranted,
		event.OfflineReplayed,
	}

	for _, eventType := range eventTypes {
		bus.Subscribe(eventType, e.HandleEvent)
	}

	return nil
}

// HandleEvent processes events and updates metrics
func (e *EventMetricsCollector) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	EventsPublished.WithLabelValues(string(evt.Type)).Inc()

	switch evt.Type {
	case event.UpdateApplied:
		source, _ := evt.GetMetadataValue(event.MetadataKeySource).(string)
		UpdatesApplied.WithLabelValues(source).Inc()

	case event.LevelUp:
		payload, err := event.DecodePayload[event.LevelUpPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type, "error", err)
			return nil
		}
		if gained := payload.NewLevel - payload.OldLevel; gained > 0 {
			LevelUps.Add(float64(gained))
		}

	case event.RewardGranted:
		payload, err := event.DecodePayload[event.RewardGrantedPayloadV1](evt.Payload)
		if err != nil {
			log.Debug(LogMsgUnexpectedPayload, "type", evt.Type, "error", err)
			return nil
		}
		RewardsGranted.WithLabelValues(string(payload.Reward.Type)).Inc()
	}

	log.Debug(LogMsgMetricsRecorded, "type", evt.Type)
	return nil
}
