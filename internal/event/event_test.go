package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/domain"
)

func TestMemoryBus_PublishSubscribe(t *testing.T) {
	bus := NewMemoryBus()
	var got []Event

	bus.Subscribe(LevelUp, func(ctx context.Context, e Event) error {
		got = append(got, e)
		return nil
	})

	err := bus.Publish(context.Background(), NewLevelUpEvent("user-1", 1, 3, "test"))
	require.NoError(t, err)

	require.Len(t, got, 1)
	payload, ok := got[0].Payload.(LevelUpPayloadV1)
	require.True(t, ok)
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, 1, payload.OldLevel)
	assert.Equal(t, 3, payload.NewLevel)
	assert.Equal(t, "test", got[0].GetMetadataValue(MetadataKeySource))
}

func TestMemoryBus_OnlyMatchingTypeIsDelivered(t *testing.T) {
	bus := NewMemoryBus()
	count := 0
	bus.Subscribe(RewardGranted, func(ctx context.Context, e Event) error {
		count++
		return nil
	})

	require.NoError(t, bus.Publish(context.Background(), NewLevelUpEvent("u", 1, 2, "")))
	assert.Equal(t, 0, count)
}

func TestMemoryBus_PublishMultipleHandlers(t *testing.T) {
	bus := NewMemoryBus()
	count := 0
	handler := func(ctx context.Context, e Event) error {
		count++
		return nil
	}

	bus.Subscribe(UpdateApplied, handler)
	bus.Subscribe(UpdateApplied, handler)

	state := domain.NewProgressionState("u")
	require.NoError(t, bus.Publish(context.Background(), NewUpdateAppliedEvent(state, 0, "lesson", "api")))
	assert.Equal(t, 2, count)
}

func TestMemoryBus_PublishError(t *testing.T) {
	bus := NewMemoryBus()
	called := false

	bus.Subscribe(RewardGranted, func(ctx context.Context, e Event) error {
		return errors.New("handler error")
	})
	bus.Subscribe(RewardGranted, func(ctx context.Context, e Event) error {
		called = true
		return nil
	})

	err := bus.Publish(context.Background(), NewRewardGrantedEvent("u", domain.ProgressionReward{ID: "milestone:m1"}, ""))
	require.Error(t, err)
	assert.True(t, called, "later handlers still run after an earlier one fails")

	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, RewardGranted, herr.EventType)
	assert.Len(t, herr.Failed, 1)
	assert.Contains(t, err.Error(), "handler error")
}

func TestDecodePayload(t *testing.T) {
	reward := domain.ProgressionReward{ID: "level_up:2", Type: domain.RewardTypeLevelUp, Level: 2}
	e := NewRewardGrantedEvent("u", reward, "")

	direct, err := DecodePayload[RewardGrantedPayloadV1](e.Payload)
	require.NoError(t, err)
	assert.Equal(t, "level_up:2", direct.Reward.ID)

	// Simulate a payload that went through JSON (e.g. read from the dead-letter file)
	generic := map[string]interface{}{
		"user_id": "u",
		"reward":  map[string]interface{}{"id": "level_up:2", "type": "level_up", "level": 2},
	}
	decoded, err := DecodePayload[RewardGrantedPayloadV1](generic)
	require.NoError(t, err)
	assert.Equal(t, reward.ID, decoded.Reward.ID)
	assert.Equal(t, 2, decoded.Reward.Level)
}

func TestNewOfflineReplayedEvent(t *testing.T) {
	ok := NewOfflineReplayedEvent("u", "e1", nil)
	assert.True(t, ok.Payload.(OfflineReplayedPayloadV1).Success)

	failed := NewOfflineReplayedEvent("u", "e2", domain.ErrInvalidUpdate)
	p := failed.Payload.(OfflineReplayedPayloadV1)
	assert.False(t, p.Success)
	assert.Equal(t, domain.ErrMsgInvalidUpdate, p.Error)
}

func TestCalculateRetryDelay(t *testing.T) {
	assert.Equal(t, RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 1))
	assert.Equal(t, 4*RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 3))
	assert.Equal(t, RetryInitialDelay, CalculateRetryDelay(RetryInitialDelay, 0))
}
