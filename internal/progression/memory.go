package progression

import (
	"context"
	"sync"

	"github.com/critiquest/critiquest/internal/domain"
)

// MemoryRepository keeps progression state in process memory
type MemoryRepository struct {
	mu     sync.RWMutex
	states map[string]*domain.ProgressionState
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		states: make(map[string]*domain.ProgressionState),
	}
}

func (r *MemoryRepository) GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.states[userID]
	if !ok {
		return nil, nil
	}
	return state.Clone(), nil
}

func (r *MemoryRepository) CommitProgression(ctx context.Context, state *domain.ProgressionState) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[state.UserID] = state.Clone()
	return nil
}

func (r *MemoryRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored users
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.states)
}
