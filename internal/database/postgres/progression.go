package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/repository"
)

type progressionRepository struct {
	pool *pgxpool.Pool
}

// NewProgressionRepository creates a new Postgres-backed progression repository
func NewProgressionRepository(pool *pgxpool.Pool) repository.Progression {
	return &progressionRepository{pool: pool}
}

const selectProgression = `
SELECT user_id, level, experience, completed_lessons, completed_quizzes, streak_days,
       last_rewarded_streak, unlocked_philosophers, earned_achievements, granted_milestone_ids,
       total_time_spent, updated_at
FROM user_progression
WHERE user_id = $1`

// The whole row is replaced in one statement so a commit is all-or-nothing
const upsertProgression = `
INSERT INTO user_progression (
    user_id, level, experience, completed_lessons, completed_quizzes, streak_days,
    last_rewarded_streak, unlocked_philosophers, earned_achievements, granted_milestone_ids,
    total_time_spent, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (user_id) DO UPDATE SET
    level = EXCLUDED.level,
    experience = EXCLUDED.experience,
    completed_lessons = EXCLUDED.completed_lessons,
    completed_quizzes = EXCLUDED.completed_quizzes,
    streak_days = EXCLUDED.streak_days,
    last_rewarded_streak = EXCLUDED.last_rewarded_streak,
    unlocked_philosophers = EXCLUDED.unlocked_philosophers,
    earned_achievements = EXCLUDED.earned_achievements,
    granted_milestone_ids = EXCLUDED.granted_milestone_ids,
    total_time_spent = EXCLUDED.total_time_spent,
    updated_at = EXCLUDED.updated_at`

func (r *progressionRepository) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	var (
		state                                           domain.ProgressionState
		lessons, philosophers, achievements, milestones []string
		updatedAt                                       time.Time
	)

	err := r.pool.QueryRow(ctx, selectProgression, userID).Scan(
		&state.UserID,
		&state.Level,
		&state.Experience,
		&lessons,
		&state.CompletedQuizzes,
		&state.StreakDays,
		&state.LastRewardedStreak,
		&philosophers,
		&achievements,
		&milestones,
		&state.TotalTimeSpent,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", ErrMsgGetProgression, err)
	}

	state.CompletedLessons = domain.NewStringSet(lessons...)
	state.UnlockedPhilosophers = domain.NewStringSet(philosophers...)
	state.EarnedAchievements = domain.NewStringSet(achievements...)
	state.GrantedMilestoneIDs = domain.NewStringSet(milestones...)
	state.UpdatedAt = updatedAt.UTC()
	return &state, nil
}

func (r *progressionRepository) CommitProgression(ctx context.Context, state *domain.ProgressionState) error {
	updatedAt := state.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := r.pool.Exec(ctx, upsertProgression,
		state.UserID,
		state.Level,
		state.Experience,
		state.CompletedLessons.Sorted(),
		state.CompletedQuizzes,
		state.StreakDays,
		state.LastRewardedStreak,
		state.UnlockedPhilosophers.Sorted(),
		state.EarnedAchievements.Sorted(),
		state.GrantedMilestoneIDs.Sorted(),
		state.TotalTimeSpent,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("%s for user %s: %w", ErrMsgCommitProgression, state.UserID, err)
	}
	return nil
}

func (r *progressionRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
