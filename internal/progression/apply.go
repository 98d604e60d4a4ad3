package progression

import (
	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
)

// applyDeltas folds an already-validated update into state. Counters only grow;
// a streak value below the current one is ignored.
func applyDeltas(state *domain.ProgressionState, update domain.ProgressionUpdate) {
	state.Experience = domain.SaturatingAdd(state.Experience, update.Experience)
	state.CompletedQuizzes = domain.SaturatingAdd(state.CompletedQuizzes, update.QuizzesCompleted)
	state.TotalTimeSpent = domain.SaturatingAdd(state.TotalTimeSpent, update.TimeSpent)

	state.CompletedLessons.Add(update.LessonsCompleted...)
	state.UnlockedPhilosophers.Add(update.PhilosophersUnlocked...)
	state.EarnedAchievements.Add(update.AchievementsEarned...)

	if update.StreakDays != nil && *update.StreakDays >= state.StreakDays {
		state.StreakDays = *update.StreakDays
	}
}

// advanceLevel moves state to the level its experience reaches.
// It returns nil when the level did not rise; levels never go down.
func advanceLevel(state *domain.ProgressionState, levels *catalog.LevelTable) *domain.LevelTransition {
	next := levels.LevelFor(state.Experience)
	if next <= state.Level {
		return nil
	}
	transition := &domain.LevelTransition{From: state.Level, To: next}
	state.Level = next
	return transition
}
