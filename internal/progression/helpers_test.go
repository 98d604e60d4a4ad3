package progression

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/catalog"
	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/event"
)

var fixedNow = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

// testCatalog has levels at 0/100/250 and milestones on every metric
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.Parse([]byte(`{
		"version": "test",
		"levels": [
			{"threshold": 0},
			{"threshold": 100, "reward": {"rewards": {"gachaTickets": 1}}},
			{"threshold": 250, "reward": {"rewards": {"gachaTickets": 2, "philosopherId": "socrates"}}}
		],
		"milestones": [
			{"id": "m1", "name": "Quiz Novice", "metric": "quizzesCompleted", "requiredValue": 5,
			 "reward": {"rewards": {"gachaTickets": 3}}},
			{"id": "first-lesson", "name": "First Steps", "metric": "lessonsCompleted", "requiredValue": 1,
			 "reward": {"rewards": {"badgeId": "first-steps"}}},
			{"id": "xp-200", "name": "Two Hundred", "metric": "experience", "requiredValue": 200},
			{"id": "streak-3", "name": "Three Days", "metric": "streakDays", "requiredValue": 3}
		],
		"dailyReward": {"message": "Streak bonus", "rewards": {"gachaTickets": 1}}
	}`))
	require.NoError(t, err)
	return c
}

// plainCatalog has only the level table [0,100,250] and no milestones or daily reward
func plainCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	levels, err := catalog.NewLevelTable(0, 100, 250)
	require.NoError(t, err)
	c, err := catalog.New(levels, nil, nil)
	require.NoError(t, err)
	return c
}

func newTestService(t *testing.T, c *catalog.Catalog, repo *MemoryRepository, opts ...Option) Service {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	svc, err := NewService(NewStore(repo), c, opts...)
	require.NoError(t, err)
	return svc
}

func seed(t *testing.T, repo *MemoryRepository, state *domain.ProgressionState) {
	t.Helper()
	require.NoError(t, repo.CommitProgression(context.Background(), state))
}

func rewardsOfType(rewards []domain.ProgressionReward, typ domain.RewardType) []domain.ProgressionReward {
	var out []domain.ProgressionReward
	for _, r := range rewards {
		if r.Type == typ {
			out = append(out, r)
		}
	}
	return out
}

// recordingPublisher captures published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []event.Event
}

func (p *recordingPublisher) PublishWithRetry(ctx context.Context, e event.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) ofType(typ event.Type) []event.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []event.Event
	for _, e := range p.events {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}
