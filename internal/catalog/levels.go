package catalog

import (
	"fmt"
	"sort"

	"github.com/critiquest/critiquest/internal/domain"
)

// Level is one row of the level table
type Level struct {
	Number    int               `json:"level"`
	Threshold int64             `json:"threshold"`
	Reward    domain.RewardSpec `json:"reward"`
}

// LevelTable maps accumulated experience to levels. Thresholds are strictly
// increasing and the first one is always 0, so every user is at least level 1.
type LevelTable struct {
	levels []Level
}

// NewLevelTable builds a table from thresholds with default level-up messages
func NewLevelTable(thresholds ...int64) (*LevelTable, error) {
	levels := make([]Level, len(thresholds))
	for i, th := range thresholds {
		levels[i] = Level{Number: i + 1, Threshold: th}
	}
	return newLevelTable(levels)
}

func newLevelTable(levels []Level) (*LevelTable, error) {
	if len(levels) == 0 {
		return nil, fmt.Errorf("%w: level table is empty", domain.ErrInvalidCatalog)
	}
	if levels[0].Threshold != 0 {
		return nil, fmt.Errorf("%w: level 1 threshold must be 0, got %d", domain.ErrInvalidCatalog, levels[0].Threshold)
	}

	out := make([]Level, len(levels))
	for i, lvl := range levels {
		if i > 0 && lvl.Threshold <= levels[i-1].Threshold {
			return nil, fmt.Errorf("%w: level %d threshold %d is not above level %d threshold %d",
				domain.ErrInvalidCatalog, i+1, lvl.Threshold, i, levels[i-1].Threshold)
		}

		lvl.Number = i + 1
		if lvl.Reward.Type == "" {
			lvl.Reward.Type = domain.RewardTypeLevelUp
		}
		if lvl.Reward.Type != domain.RewardTypeLevelUp {
			return nil, fmt.Errorf("%w: level %d reward must be %s, got %s",
				domain.ErrInvalidCatalog, lvl.Number, domain.RewardTypeLevelUp, lvl.Reward.Type)
		}
		if err := validatePayload(lvl.Reward); err != nil {
			return nil, fmt.Errorf("level %d: %w", lvl.Number, err)
		}
		if lvl.Reward.Message == "" {
			lvl.Reward.Message = fmt.Sprintf(DefaultLevelUpMessage, lvl.Number)
		}
		out[i] = lvl
	}

	return &LevelTable{levels: out}, nil
}

// LevelFor returns the largest level whose threshold is at or below experience
func (t *LevelTable) LevelFor(experience int64) int {
	idx := sort.Search(len(t.levels), func(i int) bool {
		return t.levels[i].Threshold > experience
	})
	if idx == 0 {
		return 1
	}
	return idx
}

// Threshold returns the experience needed to reach level
func (t *LevelTable) Threshold(level int) (int64, bool) {
	if level < 1 || level > len(t.levels) {
		return 0, false
	}
	return t.levels[level-1].Threshold, true
}

// Reward returns the level-up reward configured for reaching level
func (t *LevelTable) Reward(level int) (domain.RewardSpec, bool) {
	if level < 1 || level > len(t.levels) {
		return domain.RewardSpec{}, false
	}
	spec := t.levels[level-1].Reward
	spec.Rewards = spec.Rewards.Clone()
	return spec, true
}

// MaxLevel returns the highest defined level
func (t *LevelTable) MaxLevel() int {
	return len(t.levels)
}

// Levels returns a copy of the table rows
func (t *LevelTable) Levels() []Level {
	out := make([]Level, len(t.levels))
	for i, lvl := range t.levels {
		lvl.Reward.Rewards = lvl.Reward.Rewards.Clone()
		out[i] = lvl
	}
	return out
}
