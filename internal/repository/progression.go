package repository

import (
	"context"

	"github.com/critiquest/critiquest/internal/domain"
)

// Progression defines persistence operations for per-user progression state.
// Implementations must give read-your-writes per user.
type Progression interface {
	// GetProgression returns nil, nil when the user has no stored state
	GetProgression(ctx context.Context, userID string) (*domain.ProgressionState, error)

	// CommitProgression atomically replaces the stored state for state.UserID
	CommitProgression(ctx context.Context, state *domain.ProgressionState) error

	// Ping reports whether the backing store is reachable
	Ping(ctx context.Context) error
}
