package offline

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"

	"github.com/critiquest/critiquest/internal/domain"
	"github.com/critiquest/critiquest/internal/logger"

	// Pure Go SQLite driver (no CGO).
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteQueue is a durable Queue backed by a local SQLite file
type SQLiteQueue struct {
	db     *sql.DB
	now    func() time.Time
	mu     sync.RWMutex
	closed bool
}

// OpenSQLiteQueue opens (creating if needed) the queue database at dsn.
// Use MemoryDSN for a throwaway queue.
func OpenSQLiteQueue(ctx context.Context, dsn string) (*SQLiteQueue, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgOpenQueue, err)
	}
	// One connection serializes writers and keeps :memory: databases alive
	db.SetMaxOpenConns(1)

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgOpenQueue, err)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: %w", ErrMsgMigrateQueue, err)
	}

	return &SQLiteQueue{db: db, now: time.Now}, nil
}

func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	migrations, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	provider, err := goose.NewProvider(goose.DialectSQLite3, db, migrations)
	if err != nil {
		return err
	}
	_, err = provider.Up(ctx)
	return err
}

func (q *SQLiteQueue) conn() (*sql.DB, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return nil, domain.ErrQueueClosed
	}
	return q.db, nil
}

// Enqueue stores an update for later replay
func (q *SQLiteQueue) Enqueue(ctx context.Context, userID string, update domain.ProgressionUpdate) (*Entry, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidUpdate, ErrMsgEmptyUserID)
	}
	db, err := q.conn()
	if err != nil {
		return nil, err
	}

	now := q.now().UTC()
	if update.OccurredAt.IsZero() {
		update.OccurredAt = now
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEnqueue, err)
	}

	entry := &Entry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Update:     update,
		OccurredAt: update.OccurredAt.UTC(),
		EnqueuedAt: now,
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO offline_updates (id, user_id, payload, occurred_at, enqueued_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(payload), entry.OccurredAt.UnixNano(), entry.EnqueuedAt.UnixNano())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgEnqueue, err)
	}

	logger.FromContext(ctx).Debug(LogMsgEnqueued, "user_id", userID, "entry_id", entry.ID, "occurred_at", entry.OccurredAt)
	return entry, nil
}

// Pending returns a user's entries by occurrence time, then enqueue order
func (q *SQLiteQueue) Pending(ctx context.Context, userID string) ([]Entry, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, payload, occurred_at, enqueued_at, attempts, COALESCE(last_error, '')
		 FROM offline_updates WHERE user_id = ? ORDER BY occurred_at, seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e                    Entry
			payload              string
			occurredAt, enqueued int64
		)
		if err := rows.Scan(&e.ID, &e.UserID, &payload, &occurredAt, &enqueued, &e.Attempts, &e.LastError); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
		}
		if err := json.Unmarshal([]byte(payload), &e.Update); err != nil {
			return nil, fmt.Errorf("%s: entry %s: %w", ErrMsgReadQueue, e.ID, err)
		}
		e.OccurredAt = time.Unix(0, occurredAt).UTC()
		e.EnqueuedAt = time.Unix(0, enqueued).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
	}
	return entries, nil
}

// Users lists users with pending entries, ordered by their oldest entry
func (q *SQLiteQueue) Users(ctx context.Context) ([]string, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT user_id FROM offline_updates GROUP BY user_id ORDER BY MIN(seq)`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
	}
	defer rows.Close()

	var users []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
		}
		users = append(users, id)
	}
	return users, rows.Err()
}

// Remove deletes an entry. Removing an unknown id is not an error.
func (q *SQLiteQueue) Remove(ctx context.Context, id string) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM offline_updates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRemoveEntry, err)
	}
	return nil
}

// RecordAttempt increments the attempt counter and stores the cause
func (q *SQLiteQueue) RecordAttempt(ctx context.Context, id string, cause error) error {
	db, err := q.conn()
	if err != nil {
		return err
	}
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	if _, err := db.ExecContext(ctx,
		`UPDATE offline_updates SET attempts = attempts + 1, last_error = ? WHERE id = ?`, msg, id); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRecordAttempt, err)
	}
	return nil
}

// DeadLetter moves an entry to the dead-letter table in one transaction
func (q *SQLiteQueue) DeadLetter(ctx context.Context, entry Entry, reason string) error {
	db, err := q.conn()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(entry.Update)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeadLetter, err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeadLetter, err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `DELETE FROM offline_updates WHERE id = ?`, entry.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeadLetter, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %s", ErrMsgDeadLetter, ErrMsgEntryNotQueued)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO offline_dead_letters (id, user_id, payload, occurred_at, enqueued_at, failed_at, reason)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, string(payload), entry.OccurredAt.UnixNano(), entry.EnqueuedAt.UnixNano(),
		q.now().UTC().UnixNano(), reason)
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeadLetter, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgDeadLetter, err)
	}
	return nil
}

// DeadLetters returns a user's rejected entries, oldest failure first.
// An empty userID lists every user's entries.
func (q *SQLiteQueue) DeadLetters(ctx context.Context, userID string) ([]DeadLetter, error) {
	db, err := q.conn()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, user_id, payload, occurred_at, enqueued_at, failed_at, reason
		 FROM offline_dead_letters WHERE ? = '' OR user_id = ? ORDER BY failed_at, occurred_at`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
	}
	defer rows.Close()

	var out []DeadLetter
	for rows.Next() {
		var (
			d                              DeadLetter
			payload                        string
			occurredAt, enqueued, failedAt int64
		)
		if err := rows.Scan(&d.ID, &d.UserID, &payload, &occurredAt, &enqueued, &failedAt, &d.Reason); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
		}
		if err := json.Unmarshal([]byte(payload), &d.Update); err != nil {
			return nil, fmt.Errorf("%s: entry %s: %w", ErrMsgReadQueue, d.ID, err)
		}
		d.OccurredAt = time.Unix(0, occurredAt).UTC()
		d.EnqueuedAt = time.Unix(0, enqueued).UTC()
		d.FailedAt = time.Unix(0, failedAt).UTC()
		out = append(out, d)
	}
	return out, rows.Err()
}

// Len returns the number of pending entries
func (q *SQLiteQueue) Len(ctx context.Context) (int, error) {
	db, err := q.conn()
	if err != nil {
		return 0, err
	}
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM offline_updates`).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("%s: %w", ErrMsgReadQueue, err)
	}
	return n, nil
}

// Close closes the database. Later calls fail with ErrQueueClosed.
func (q *SQLiteQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return nil
	}
	q.closed = true
	return q.db.Close()
}
