package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"todust/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const (
	columnID         = "id"
	columnUUID       = "uuid"
	columnProject    = "project"
	columnStarted    = "started"
	columnFinished   = "finished"
	columnLastChange = "last_change"
	columnDue        = "due"
	columnText       = "text"
)

// Timestamps are persisted as fixed-width UTC ISO-8601 text so that
// lexicographic ordering in SQL equals chronological ordering. Parsing
// accepts any RFC3339 variant for legacy rows.
const (
	timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"
	dueLayout       = "2006-01-02"
)

func encodeTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

func encodeNullableTimestamp(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := encodeTimestamp(*t)
	return &s
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func encodeDue(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dueLayout)
	return &s
}

func parseDue(s string) (time.Time, error) {
	return time.Parse(dueLayout, s)
}

// Insert appends a new entry row and returns the assigned surrogate id.
// The UUID must already be set by the caller; the store enforces its
// uniqueness but never generates it.
func (db *DB) Insert(ctx context.Context, entry *models.Entry) (int64, error) {
	query := fmt.Sprintf(`
		INSERT INTO entries (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s
	`, columnUUID, columnProject, columnStarted, columnFinished, columnLastChange, columnDue, columnText,
		columnID)

	var id int64
	err := db.Pool.QueryRow(ctx, query,
		entry.UUID,
		entry.Project,
		encodeTimestamp(entry.Started),
		encodeNullableTimestamp(entry.Finished),
		encodeTimestamp(entry.LastChange),
		encodeDue(entry.Due),
		entry.Text,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert entry: %w", classifyError(err))
	}

	return id, nil
}

// Get returns the entry with the given UUID or models.ErrNotFound.
func (db *DB) Get(ctx context.Context, id uuid.UUID) (*models.Entry, error) {
	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM entries
		WHERE %s = $1
	`, columnID, columnUUID, columnProject, columnStarted, columnFinished, columnLastChange, columnDue, columnText,
		columnUUID)

	entry, err := scanEntry(db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to get entry: %w", classifyError(err))
	}

	return entry, nil
}

// Query returns entries whose project matches the LIKE-style pattern,
// optionally restricted to active ones. Results are ordered by started
// ascending with the surrogate id breaking ties, which makes the order
// total and deterministic.
func (db *DB) Query(ctx context.Context, projectPattern string, activeOnly bool) ([]models.Entry, error) {
	start := time.Now()
	defer func() {
		log.Printf("Query: duration=%v pattern=%q active_only=%v", time.Since(start), projectPattern, activeOnly)
	}()

	activeClause := ""
	if activeOnly {
		activeClause = fmt.Sprintf("AND %s IS NULL", columnFinished)
	}

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM entries
		WHERE %s LIKE $1 %s
		ORDER BY %s ASC, %s ASC
	`, columnID, columnUUID, columnProject, columnStarted, columnFinished, columnLastChange, columnDue, columnText,
		columnProject, activeClause, columnStarted, columnID)

	rows, err := db.Pool.Query(ctx, query, projectPattern)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", classifyError(err))
	}
	defer rows.Close()

	return scanEntries(rows)
}

// Update applies mutate to the entry inside a single transaction. The row
// is locked for the duration, so concurrent updates to the same UUID are
// applied one fully before the other and readers never observe a
// half-applied mutation. An error from mutate aborts the transaction and
// passes through unchanged.
func (db *DB) Update(ctx context.Context, id uuid.UUID, mutate func(*models.Entry) error) (*models.Entry, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", classifyError(err))
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	query := fmt.Sprintf(`
		SELECT %s, %s, %s, %s, %s, %s, %s, %s
		FROM entries
		WHERE %s = $1
		FOR UPDATE
	`, columnID, columnUUID, columnProject, columnStarted, columnFinished, columnLastChange, columnDue, columnText,
		columnUUID)

	entry, err := scanEntry(tx.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to lock entry: %w", classifyError(err))
	}

	if err := mutate(entry); err != nil {
		return nil, err
	}

	update := fmt.Sprintf(`
		UPDATE entries
		SET %s = $1, %s = $2, %s = $3, %s = $4, %s = $5
		WHERE %s = $6
	`, columnProject, columnFinished, columnLastChange, columnDue, columnText,
		columnUUID)

	_, err = tx.Exec(ctx, update,
		entry.Project,
		encodeNullableTimestamp(entry.Finished),
		encodeTimestamp(entry.LastChange),
		encodeDue(entry.Due),
		entry.Text,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update entry: %w", classifyError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit entry update: %w", classifyError(err))
	}

	return entry, nil
}

// ProjectCounts aggregates entries per project. Projects exist only as
// groupings of entries, so a project without rows never shows up.
func (db *DB) ProjectCounts(ctx context.Context) ([]models.ProjectCount, error) {
	start := time.Now()
	defer func() {
		log.Printf("ProjectCounts: duration=%v", time.Since(start))
	}()

	query := fmt.Sprintf(`
		SELECT %s,
			COUNT(*) FILTER (WHERE %s IS NULL) AS active_count,
			COUNT(*) FILTER (WHERE %s IS NOT NULL) AS done_count,
			COUNT(*) AS total_count
		FROM entries
		GROUP BY %s
		ORDER BY %s ASC
	`, columnProject, columnFinished, columnFinished, columnProject, columnProject)

	rows, err := db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count projects: %w", classifyError(err))
	}
	defer rows.Close()

	counts := []models.ProjectCount{}
	for rows.Next() {
		var count models.ProjectCount
		if err := rows.Scan(&count.Project, &count.ActiveCount, &count.DoneCount, &count.TotalCount); err != nil {
			return nil, fmt.Errorf("failed to scan project count: %w", classifyError(err))
		}
		counts = append(counts, count)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project counts: %w", classifyError(err))
	}

	return counts, nil
}

// Helper functions

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type rowsScanner interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		entry      models.Entry
		started    string
		finished   *string
		lastChange string
		due        *string
		text       *string
	)

	err := row.Scan(
		&entry.ID,
		&entry.UUID,
		&entry.Project,
		&started,
		&finished,
		&lastChange,
		&due,
		&text,
	)
	if err != nil {
		return nil, err
	}

	if entry.Started, err = parseTimestamp(started); err != nil {
		return nil, fmt.Errorf("invalid started timestamp %q: %w", started, err)
	}
	if entry.LastChange, err = parseTimestamp(lastChange); err != nil {
		return nil, fmt.Errorf("invalid last_change timestamp %q: %w", lastChange, err)
	}
	if finished != nil {
		t, err := parseTimestamp(*finished)
		if err != nil {
			return nil, fmt.Errorf("invalid finished timestamp %q: %w", *finished, err)
		}
		entry.Finished = &t
	}
	if due != nil {
		t, err := parseDue(*due)
		if err != nil {
			return nil, fmt.Errorf("invalid due date %q: %w", *due, err)
		}
		entry.Due = &t
	}
	if text != nil {
		entry.Text = *text
	}

	return &entry, nil
}

func scanEntries(rows rowsScanner) ([]models.Entry, error) {
	entries := []models.Entry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entries: %w", err)
	}

	return entries, nil
}
