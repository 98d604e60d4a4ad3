package progression

import (
	"context"
	"errors"
	"fmt"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/repository"
)

// Store is the coordinator's view of persistence. Reads hand out private copies
// so in-flight mutation is never visible to other callers before Commit.
type Store struct {
	repo       repository.Progression
	autoCreate bool
}

// StoreOption configures a Store
type StoreOption func(*Store)

// WithoutAutoCreate makes Get fail with ErrUserNotFound for users with no stored state
func WithoutAutoCreate() StoreOption {
	return func(s *Store) {
		s.autoCreate = false
	}
}

// NewStore wraps a repository
func NewStore(repo repository.Progression, opts ...StoreOption) *Store {
	s := &Store{repo: repo, autoCreate: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads the user's state, creating the default state in memory on first access.
// A created state is only persisted by a later Commit.
func (s *Store) Get(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	state, err := s.Peek(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		return state, nil
	}
	if !s.autoCreate {
		return nil, fmt.Errorf("%w: %s", domain.ErrUserNotFound, userID)
	}
	return domain.NewProgressionState(userID), nil
}

// Peek loads the user's state without creating it; it returns nil for unknown users
func (s *Store) Peek(ctx context.Context, userID string) (*domain.ProgressionState, error) {
	state, err := s.repo.GetProgression(ctx, userID)
	if err != nil {
		return nil, unavailable("read", err)
	}
	if state == nil {
		return nil, nil
	}
	state = state.Clone()
	state.Normalize()
	return state, nil
}

// Commit atomically replaces the stored state
func (s *Store) Commit(ctx context.Context, state *domain.ProgressionState) error {
	if err := s.repo.CommitProgression(ctx, state.Clone()); err != nil {
		return unavailable("commit", err)
	}
	return nil
}

// Ping checks the backing repository
func (s *Store) Ping(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

// unavailable folds any persistence failure into ErrStoreUnavailable
func unavailable(op string, err error) error {
	if errors.Is(err, domain.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
}
