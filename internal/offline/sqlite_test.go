package offline

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/critiquest/critiquest/internal/domain"
)

var baseTime = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func newTestQueue(t *testing.T) *SQLiteQueue {
	t.Helper()
	q, err := OpenSQLiteQueue(context.Background(), MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = q.Close() })
	return q
}

func at(minutes int) time.Time {
	return baseTime.Add(time.Duration(minutes) * time.Minute)
}

func TestSQLiteQueue_PendingIsChronological(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	// Enqueued out of order
	_, err := q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 30, OccurredAt: at(3)})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 10, OccurredAt: at(1)})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 20, OccurredAt: at(2)})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "u2", domain.ProgressionUpdate{Experience: 99, OccurredAt: at(0)})
	require.NoError(t, err)

	pending, err := q.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	assert.Equal(t, int64(10), pending[0].Update.Experience)
	assert.Equal(t, int64(20), pending[1].Update.Experience)
	assert.Equal(t, int64(30), pending[2].Update.Experience)
	assert.True(t, pending[0].OccurredAt.Equal(at(1)))
}

func TestSQLiteQueue_SameTimestampKeepsEnqueueOrder(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	for _, xp := range []int64{1, 2, 3} {
		_, err := q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: xp, OccurredAt: at(5)})
		require.NoError(t, err)
	}

	pending, err := q.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 3)
	for i, e := range pending {
		assert.Equal(t, int64(i+1), e.Update.Experience)
	}
}

func TestSQLiteQueue_EnqueueStampsMissingTime(t *testing.T) {
	q := newTestQueue(t)
	q.now = func() time.Time { return baseTime }

	entry, err := q.Enqueue(context.Background(), "u1", domain.ProgressionUpdate{Experience: 5})
	require.NoError(t, err)
	assert.True(t, entry.OccurredAt.Equal(baseTime))
	assert.True(t, entry.Update.OccurredAt.Equal(baseTime))
	assert.NotEmpty(t, entry.ID)
}

func TestSQLiteQueue_EnqueueRequiresUser(t *testing.T) {
	q := newTestQueue(t)
	_, err := q.Enqueue(context.Background(), "", domain.ProgressionUpdate{})
	assert.ErrorIs(t, err, domain.ErrInvalidUpdate)
}

func TestSQLiteQueue_UsersRemoveAndLen(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	e1, err := q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 1})
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "u2", domain.ProgressionUpdate{Experience: 1})
	require.NoError(t, err)

	users, err := q.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2"}, users)

	n, err := q.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, q.Remove(ctx, e1.ID))
	require.NoError(t, q.Remove(ctx, e1.ID))

	users, err = q.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, users)
}

func TestSQLiteQueue_RecordAttempt(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 1})
	require.NoError(t, err)
	require.NoError(t, q.RecordAttempt(ctx, e.ID, errors.New("store down")))
	require.NoError(t, q.RecordAttempt(ctx, e.ID, errors.New("store still down")))

	pending, err := q.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].Attempts)
	assert.Equal(t, "store still down", pending[0].LastError)
}

func TestSQLiteQueue_DeadLetter(t *testing.T) {
	q := newTestQueue(t)
	ctx := context.Background()

	e, err := q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 7, LessonsCompleted: []string{"l1"}})
	require.NoError(t, err)

	require.NoError(t, q.DeadLetter(ctx, *e, "invalid progression update"))

	pending, err := q.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, pending)

	dead, err := q.DeadLetters(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Equal(t, e.ID, dead[0].ID)
	assert.Equal(t, "invalid progression update", dead[0].Reason)
	assert.Equal(t, []string{"l1"}, dead[0].Update.LessonsCompleted)

	all, err := q.DeadLetters(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	other, err := q.DeadLetters(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, other)

	// Already moved
	assert.Error(t, q.DeadLetter(ctx, *e, "again"))
}

func TestSQLiteQueue_Closed(t *testing.T) {
	q, err := OpenSQLiteQueue(context.Background(), MemoryDSN)
	require.NoError(t, err)
	require.NoError(t, q.Close())
	require.NoError(t, q.Close())

	_, err = q.Enqueue(context.Background(), "u1", domain.ProgressionUpdate{})
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
	_, err = q.Len(context.Background())
	assert.ErrorIs(t, err, domain.ErrQueueClosed)
}

func TestSQLiteQueue_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offline.db")
	ctx := context.Background()

	q, err := OpenSQLiteQueue(ctx, path)
	require.NoError(t, err)
	_, err = q.Enqueue(ctx, "u1", domain.ProgressionUpdate{Experience: 42, OccurredAt: at(1)})
	require.NoError(t, err)
	require.NoError(t, q.Close())

	q, err = OpenSQLiteQueue(ctx, path)
	require.NoError(t, err)
	defer q.Close()

	pending, err := q.Pending(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(42), pending[0].Update.Experience)
}
