package progression

import (
	"fmt"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
)

// Resolution is what a resolver decided for one update
type Resolution struct {
	Rewards []domain.ProgressionReward

	// GrantedIDs are the milestone ids to add to the state on commit
	GrantedIDs []string

	// RewardedStreak is the streak value paid out by a daily reward, or 0
	RewardedStreak int
}

// Resolver turns qualified milestones and level transitions into rewards
type Resolver struct {
	catalog *catalog.Catalog
}

// NewResolver creates a resolver over a loaded catalog
func NewResolver(c *catalog.Catalog) *Resolver {
	return &Resolver{catalog: c}
}

// Resolve builds rewards in a fixed order: milestones in catalog order, then one
// level_up per level gained ascending, then the daily reward. It reads state but
// never mutates it; the caller records GrantedIDs and RewardedStreak.
func (r *Resolver) Resolve(state *domain.ProgressionState, qualified []domain.MilestoneDefinition, transition *domain.LevelTransition) Resolution {
	var res Resolution
	seen := make(map[string]struct{}, len(qualified))

	for _, m := range qualified {
		if state.GrantedMilestoneIDs.Has(m.ID) {
			continue
		}
		if _, dup := seen[m.ID]; dup {
			continue
		}
		seen[m.ID] = struct{}{}

		res.Rewards = append(res.Rewards, domain.ProgressionReward{
			ID:          fmt.Sprintf(RewardIDFormatMilestone, m.ID),
			Type:        domain.RewardTypeMilestone,
			Rewards:     m.Reward.Rewards.Clone(),
			Message:     m.Reward.Message,
			MilestoneID: m.ID,
		})
		res.GrantedIDs = append(res.GrantedIDs, m.ID)
	}

	if transition.Gained() > 0 {
		levels := r.catalog.Levels()
		for lvl := transition.From + 1; lvl <= transition.To; lvl++ {
			spec, ok := levels.Reward(lvl)
			if !ok {
				spec = domain.RewardSpec{
					Type:    domain.RewardTypeLevelUp,
					Message: fmt.Sprintf(catalog.DefaultLevelUpMessage, lvl),
				}
			}
			res.Rewards = append(res.Rewards, domain.ProgressionReward{
				ID:      fmt.Sprintf(RewardIDFormatLevelUp, lvl),
				Type:    domain.RewardTypeLevelUp,
				Rewards: spec.Rewards,
				Message: spec.Message,
				Level:   lvl,
			})
		}
	}

	if spec, ok := r.catalog.DailyReward(); ok && state.StreakDays > 0 && state.StreakDays > state.LastRewardedStreak {
		message := spec.Message
		if message == "" {
			message = fmt.Sprintf(catalog.DefaultDailyRewardMessage, state.StreakDays)
		}
		res.Rewards = append(res.Rewards, domain.ProgressionReward{
			ID:         fmt.Sprintf(RewardIDFormatDailyReward, state.StreakDays),
			Type:       domain.RewardTypeDailyReward,
			Rewards:    spec.Rewards,
			Message:    message,
			StreakDays: state.StreakDays,
		})
		res.RewardedStreak = state.StreakDays
	}

	return res
}
