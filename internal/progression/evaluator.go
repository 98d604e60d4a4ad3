package progression

import (
	"github.com/critiquest/critiquest/internal/domain"
)

// Evaluate returns every milestone the state satisfies that has not been granted yet,
// in catalog order. It does not modify state, so calling it twice gives the same answer.
func Evaluate(state *domain.ProgressionState, milestones []domain.MilestoneDefinition) []domain.MilestoneDefinition {
	var qualified []domain.MilestoneDefinition
	for _, m := range milestones {
		if state.GrantedMilestoneIDs.Has(m.ID) {
			continue
		}
		if state.MetricValue(m.Metric) >= m.RequiredValue {
			qualified = append(qualified, m)
		}
	}
	return qualified
}

// Annotate pairs each catalog milestone with the user's current value
func Annotate(state *domain.ProgressionState, milestones []domain.MilestoneDefinition) []domain.ProgressionMilestone {
	out := make([]domain.ProgressionMilestone, 0, len(milestones))
	for _, m := range milestones {
		current := state.MetricValue(m.Metric)
		granted := state.GrantedMilestoneIDs.Has(m.ID)
		out = append(out, domain.ProgressionMilestone{
			MilestoneDefinition: m,
			CurrentValue:        current,
			Completed:           granted || current >= m.RequiredValue,
			Granted:             granted,
		})
	}
	return out
}
