package domain

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Metric names a tracked counter that milestones can be defined against
type Metric string

const (
	MetricExperience       Metric = "experience"
	MetricLessonsCompleted Metric = "lessonsCompleted"
	MetricQuizzesCompleted Metric = "quizzesCompleted"
	MetricStreakDays       Metric = "streakDays"
)

// Valid reports whether m is one of the supported metrics
func (m Metric) Valid() bool {
	switch m {
	case MetricExperience, MetricLessonsCompleted, MetricQuizzesCompleted, MetricStreakDays:
		return true
	}
	return false
}

// RewardType classifies a granted reward
type RewardType string

const (
	RewardTypeLevelUp     RewardType = "level_up"
	RewardTypeAchievement RewardType = "achievement"
	RewardTypeMilestone   RewardType = "milestone"
	RewardTypeDailyReward RewardType = "daily_reward"
)

// Valid reports whether t is one of the known reward types
func (t RewardType) Valid() bool {
	switch t {
	case RewardTypeLevelUp, RewardTypeAchievement, RewardTypeMilestone, RewardTypeDailyReward:
		return true
	}
	return false
}

// RewardPayload is the concrete bundle attached to a reward. Every field is optional.
type RewardPayload struct {
	GachaTickets  *int    `json:"gachaTickets,omitempty"`
	Experience    *int64  `json:"experience,omitempty"`
	PhilosopherID *string `json:"philosopherId,omitempty"`
	BadgeID       *string `json:"badgeId,omitempty"`
}

// IsEmpty reports whether no field is set
func (p RewardPayload) IsEmpty() bool {
	return p.GachaTickets == nil && p.Experience == nil && p.PhilosopherID == nil && p.BadgeID == nil
}

// Clone returns a deep copy so callers cannot alias catalog payloads
func (p RewardPayload) Clone() RewardPayload {
	var out RewardPayload
	if p.GachaTickets != nil {
		v := *p.GachaTickets
		out.GachaTickets = &v
	}
	if p.Experience != nil {
		v := *p.Experience
		out.Experience = &v
	}
	if p.PhilosopherID != nil {
		v := *p.PhilosopherID
		out.PhilosopherID = &v
	}
	if p.BadgeID != nil {
		v := *p.BadgeID
		out.BadgeID = &v
	}
	return out
}

// RewardSpec is the configured shape of a reward in the catalog
type RewardSpec struct {
	Type    RewardType    `json:"type"`
	Rewards RewardPayload `json:"rewards"`
	Message string        `json:"message"`
}

// ProgressionReward is a reward issued by the engine for one event
type ProgressionReward struct {
	ID          string        `json:"id"`
	Type        RewardType    `json:"type"`
	Rewards     RewardPayload `json:"rewards"`
	Message     string        `json:"message"`
	MilestoneID string        `json:"milestoneId,omitempty"`
	Level       int           `json:"level,omitempty"`
	StreakDays  int           `json:"streakDays,omitempty"`
}

// MilestoneDefinition is a static catalog entry
type MilestoneDefinition struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Description   string     `json:"description"`
	Metric        Metric     `json:"metric"`
	RequiredValue int64      `json:"requiredValue"`
	Reward        RewardSpec `json:"reward"`
}

// ProgressionMilestone is a catalog entry annotated against a user's live state
type ProgressionMilestone struct {
	MilestoneDefinition
	CurrentValue int64 `json:"currentValue"`
	Completed    bool  `json:"completed"`
	Granted      bool  `json:"granted"`
}

// ProgressionState is the durable per-user progression record
type ProgressionState struct {
	UserID               string    `json:"userId"`
	Level                int       `json:"level"`
	Experience           int64     `json:"experience"`
	CompletedLessons     StringSet `json:"completedLessons"`
	CompletedQuizzes     int64     `json:"completedQuizzes"`
	StreakDays           int       `json:"streakDays"`
	LastRewardedStreak   int       `json:"lastRewardedStreak"`
	UnlockedPhilosophers StringSet `json:"unlockedPhilosophers"`
	EarnedAchievements   StringSet `json:"earnedAchievements"`
	GrantedMilestoneIDs  StringSet `json:"grantedMilestoneIds"`
	TotalTimeSpent       int64     `json:"totalTimeSpent"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// NewProgressionState returns the zero-valued default state for a user
func NewProgressionState(userID string) *ProgressionState {
	return &ProgressionState{
		UserID:               userID,
		Level:                1,
		CompletedLessons:     NewStringSet(),
		UnlockedPhilosophers: NewStringSet(),
		EarnedAchievements:   NewStringSet(),
		GrantedMilestoneIDs:  NewStringSet(),
	}
}

// Clone returns a deep copy of the state
func (s *ProgressionState) Clone() *ProgressionState {
	if s == nil {
		return nil
	}
	out := *s
	out.CompletedLessons = s.CompletedLessons.Clone()
	out.UnlockedPhilosophers = s.UnlockedPhilosophers.Clone()
	out.EarnedAchievements = s.EarnedAchievements.Clone()
	out.GrantedMilestoneIDs = s.GrantedMilestoneIDs.Clone()
	return &out
}

// Normalize fills nil sets and floors the level so decoded states are safe to mutate
func (s *ProgressionState) Normalize() {
	if s.CompletedLessons == nil {
		s.CompletedLessons = NewStringSet()
	}
	if s.UnlockedPhilosophers == nil {
		s.UnlockedPhilosophers = NewStringSet()
	}
	if s.EarnedAchievements == nil {
		s.EarnedAchievements = NewStringSet()
	}
	if s.GrantedMilestoneIDs == nil {
		s.GrantedMilestoneIDs = NewStringSet()
	}
	if s.Level < 1 {
		s.Level = 1
	}
}

// MetricValue returns the current value of a tracked metric
func (s *ProgressionState) MetricValue(m Metric) int64 {
	switch m {
	case MetricExperience:
		return s.Experience
	case MetricLessonsCompleted:
		return int64(s.CompletedLessons.Len())
	case MetricQuizzesCompleted:
		return s.CompletedQuizzes
	case MetricStreakDays:
		return int64(s.StreakDays)
	}
	return 0
}

// ProgressionUpdate carries the optional deltas of one activity report
type ProgressionUpdate struct {
	Experience           int64     `json:"experience,omitempty" validate:"gte=0"`
	LessonsCompleted     []string  `json:"lessonsCompleted,omitempty" validate:"max=500,dive,required,max=128"`
	QuizzesCompleted     int64     `json:"quizzesCompleted,omitempty" validate:"gte=0"`
	TimeSpent            int64     `json:"timeSpent,omitempty" validate:"gte=0"`
	StreakDays           *int      `json:"streakDays,omitempty" validate:"omitempty,gte=0"`
	PhilosophersUnlocked []string  `json:"philosophersUnlocked,omitempty" validate:"max=500,dive,required,max=128"`
	AchievementsEarned   []string  `json:"achievementsEarned,omitempty" validate:"max=500,dive,required,max=128"`
	ActivityType         string    `json:"activityType,omitempty" validate:"max=64"`
	OccurredAt           time.Time `json:"occurredAt,omitempty"`
}

var updateValidator = validator.New()

// Validate rejects negative or malformed deltas. Errors wrap ErrInvalidUpdate.
func (u ProgressionUpdate) Validate() error {
	if err := updateValidator.Struct(u); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidUpdate, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidUpdate, err)
	}
	return nil
}

// IsEmpty reports whether the update carries no deltas at all
func (u ProgressionUpdate) IsEmpty() bool {
	return u.Experience == 0 && len(u.LessonsCompleted) == 0 && u.QuizzesCompleted == 0 &&
		u.TimeSpent == 0 && u.StreakDays == nil && len(u.PhilosophersUnlocked) == 0 &&
		len(u.AchievementsEarned) == 0
}

// SaturatingAdd adds two non-negative counters without wrapping past MaxInt64
func SaturatingAdd(a, b int64) int64 {
	if b > 0 && a > math.MaxInt64-b {
		return math.MaxInt64
	}
	sum := a + b
	if sum < 0 {
		return 0
	}
	return sum
}

// LevelTransition records a level change inside one update
type LevelTransition struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Gained returns the number of levels crossed
func (t *LevelTransition) Gained() int {
	if t == nil || t.To <= t.From {
		return 0
	}
	return t.To - t.From
}

// LevelProgress summarizes where a user sits inside the level table
type LevelProgress struct {
	UserID           string `json:"userId"`
	Level            int    `json:"level"`
	Experience       int64  `json:"experience"`
	LevelThreshold   int64  `json:"levelThreshold"`
	NextThreshold    *int64 `json:"nextThreshold,omitempty"`
	ExperienceToNext int64  `json:"experienceToNext"`
	MaxLevel         bool   `json:"maxLevel"`
}

// UpdatePhase names the step a coordinator call reached
type UpdatePhase string

const (
	PhaseIdle       UpdatePhase = "idle"
	PhaseApplying   UpdatePhase = "applying"
	PhaseEvaluating UpdatePhase = "evaluating"
	PhaseResolving  UpdatePhase = "resolving"
	PhaseCommitted  UpdatePhase = "committed"
	PhaseFailed     UpdatePhase = "failed"
)

// UpdateResult is returned by every ApplyUpdate call; failures are values, never panics
type UpdateResult struct {
	Success       bool                `json:"success"`
	Rewards       []ProgressionReward `json:"rewards,omitempty"`
	NewLevel      int                 `json:"newLevel,omitempty"`
	State         *ProgressionState   `json:"state,omitempty"`
	Phase         UpdatePhase         `json:"phase"`
	FailedAt      UpdatePhase         `json:"failedAt,omitempty"`
	ActivityTitle string              `json:"activityTitle,omitempty"`
	Error         error               `json:"-"`
	ErrorMessage  string              `json:"error,omitempty"`
}
