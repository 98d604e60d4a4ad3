// Package notify pushes reward and level-up notifications to RabbitMQ.
// It observes the event bus, so the progression engine never waits on it.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/event"
	"github.com/critiquest/critiquest/internal/logger"
	"github.com/critiquest/critiquest/internal/metrics"
)

// Notification is the message body consumers receive
type Notification struct {
	Kind      string                    `json:"kind"`
	UserID    string                    `json:"userId"`
	Message   string                    `json:"message"`
	Reward    *domain.ProgressionReward `json:"reward,omitempty"`
	OldLevel  int                       `json:"oldLevel,omitempty"`
	NewLevel  int                       `json:"newLevel,omitempty"`
	Source    string                    `json:"source,omitempty"`
	Timestamp int64                     `json:"timestamp"`
}

// AMQPNotifier turns progression events into AMQP messages
type AMQPNotifier struct {
	channel  Channel
	exchange string
}

// NewAMQPNotifier creates a notifier publishing to exchange
func NewAMQPNotifier(channel Channel, exchange string) *AMQPNotifier {
	if exchange == "" {
		exchange = DefaultExchange
	}
	return &AMQPNotifier{channel: channel, exchange: exchange}
}

// Register subscribes to reward and level-up events
func (n *AMQPNotifier) Register(bus event.Bus) error {
	bus.Subscribe(event.RewardGranted, n.HandleEvent)
	bus.Subscribe(event.LevelUp, n.HandleEvent)
	return nil
}

// HandleEvent publishes one notification. Publish errors are returned so the
// resilient publisher retries the event.
func (n *AMQPNotifier) HandleEvent(ctx context.Context, evt event.Event) error {
	log := logger.FromContext(ctx)

	notification, routingKey, ok := n.build(evt)
	if !ok {
		log.Debug(LogMsgBadPayload, "type", evt.Type)
		return nil
	}

	body, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	err = n.channel.PublishWithContext(ctx, n.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  ContentTypeJSON,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Unix(notification.Timestamp, 0).UTC(),
		Headers: amqp.Table{
			HeaderUserID:       notification.UserID,
			HeaderEventType:    string(evt.Type),
			HeaderEventVersion: evt.Version,
		},
		Body: body,
	})
	if err != nil {
		log.Warn(LogMsgPublishFailed, "type", evt.Type, "user_id", notification.UserID, "error", err)
		metrics.EventHandlerErrors.WithLabelValues(string(evt.Type)).Inc()
		return fmt.Errorf("%s: %w", LogMsgPublishFailed, err)
	}

	log.Debug(LogMsgNotificationSent, "type", evt.Type, "user_id", notification.UserID, "routing_key", routingKey)
	return nil
}

func (n *AMQPNotifier) build(evt event.Event) (Notification, string, bool) {
	source, _ := evt.GetMetadataValue(event.MetadataKeySource).(string)

	switch evt.Type {
	case event.RewardGranted:
		payload, err := event.DecodePayload[event.RewardGrantedPayloadV1](evt.Payload)
		if err != nil || payload.UserID == "" {
			return Notification{}, "", false
		}
		reward := payload.Reward
		return Notification{
			Kind:      KindReward,
			UserID:    payload.UserID,
			Message:   reward.Message,
			Reward:    &reward,
			Source:    source,
			Timestamp: payload.Timestamp,
		}, RoutingKeyReward, true

	case event.LevelUp:
		payload, err := event.DecodePayload[event.LevelUpPayloadV1](evt.Payload)
		if err != nil || payload.UserID == "" {
			return Notification{}, "", false
		}
		return Notification{
			Kind:      KindLevelUp,
			UserID:    payload.UserID,
			Message:   fmt.Sprintf(catalog.DefaultLevelUpMessage, payload.NewLevel),
			OldLevel:  payload.OldLevel,
			NewLevel:  payload.NewLevel,
			Source:    source,
			Timestamp: payload.Timestamp,
		}, RoutingKeyLevelUp, true
	}

	return Notification{}, "", false
}
