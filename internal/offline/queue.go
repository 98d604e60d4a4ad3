// Package offline queues progression updates reported while a client was
// disconnected and replays them through the coordinator in the order they
// happened.
package offline

import (
	"context"
	"time"

	"github.com/critiquest/critiquest/internal/domain"
)

// Entry is one queued update
type Entry struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"userId"`
	Update     domain.ProgressionUpdate `json:"update"`
	OccurredAt time.Time                `json:"occurredAt"`
	EnqueuedAt time.Time                `json:"enqueuedAt"`
	Attempts   int                      `json:"attempts"`
	LastError  string                   `json:"lastError,omitempty"`
}

// DeadLetter is an entry the coordinator rejected permanently
type DeadLetter struct {
	Entry
	FailedAt time.Time `json:"failedAt"`
	Reason   string    `json:"reason"`
}

// Queue persists offline updates until they are replayed
type Queue interface {
	// Enqueue stores an update. A zero OccurredAt is stamped with the enqueue time.
	Enqueue(ctx context.Context, userID string, update domain.ProgressionUpdate) (*Entry, error)

	// Pending returns a user's entries oldest first
	Pending(ctx context.Context, userID string) ([]Entry, error)

	// Users lists users with at least one pending entry
	Users(ctx context.Context) ([]string, error)

	// Remove deletes a replayed entry
	Remove(ctx context.Context, id string) error

	// RecordAttempt notes a deferred replay so operators can see stuck entries
	RecordAttempt(ctx context.Context, id string, cause error) error

	// DeadLetter moves an entry out of the queue
	DeadLetter(ctx context.Context, entry Entry, reason string) error

	DeadLetters(ctx context.Context, userID string) ([]DeadLetter, error)
	Len(ctx context.Context) (int, error)
	Close() error
}
