package progression

import (
	"context"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/event"
)

// publishCommitted announces a committed update. It runs after the user's lock is
// released, so observers never delay the next update for that user.
func (s *service) publishCommitted(ctx context.Context, state *domain.ProgressionState, transition *domain.LevelTransition, rewards []domain.ProgressionReward, activityType string) {
	if s.publisher == nil {
		return
	}
	source := sourceFromContext(ctx)

	s.publisher.PublishWithRetry(ctx, event.NewUpdateAppliedEvent(state, len(rewards), activityType, source))

	if transition != nil {
		s.publisher.PublishWithRetry(ctx, event.NewLevelUpEvent(state.UserID, transition.From, transition.To, source))
	}

	for _, reward := range rewards {
		s.publisher.PublishWithRetry(ctx, event.NewRewardGrantedEvent(state.UserID, reward, source))
	}
}
