package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/conorfennell/repeat/internal/scheduler"
)

// Row is the persisted form of a card's memory state, keyed by identity.
type Row struct {
	CardHash string
	AddedAt  time.Time
	State    scheduler.MemoryState
}

// DueCard names an identity in the due set together with how many times it
// has been reviewed. ReviewCount 0 marks a new card.
type DueCard struct {
	CardHash    string
	ReviewCount int
}

// Ensure registers a card identity, inserting a never-reviewed row if none
// exists. It is idempotent: re-ensuring an identity leaves the existing row
// and its added_at untouched.
func (db *DB) Ensure(ctx context.Context, cardHash string) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT OR IGNORE INTO cards (card_hash, added_at, review_count)
		VALUES (?, ?, 0)
	`, cardHash, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to ensure card %s: %w", cardHash, err)
	}
	return nil
}

// EnsureBatch registers many identities in one transaction. Either every
// missing row is created or, on failure, none are.
func (db *DB) EnsureBatch(ctx context.Context, cardHashes []string) error {
	if len(cardHashes) == 0 {
		return nil
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin batch registration: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO cards (card_hash, added_at, review_count)
		VALUES (?, ?, 0)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch registration: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, hash := range cardHashes {
		if _, err := stmt.ExecContext(ctx, hash, now); err != nil {
			return fmt.Errorf("failed to register card %s: %w", hash, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch registration: %w", err)
	}
	return nil
}

// Get returns the memory state for a card identity, or ErrNotFound if the
// identity has never been ensured.
func (db *DB) Get(ctx context.Context, cardHash string) (scheduler.MemoryState, error) {
	row := db.conn.QueryRowContext(ctx, `
		SELECT last_reviewed_at, stability, difficulty, interval_raw, interval_days, due_date, review_count
		FROM cards WHERE card_hash = ?
	`, cardHash)

	state, err := scanState(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, cardHash)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card %s: %w", cardHash, err)
	}
	return state, nil
}

// ApplyUpdate persists a post-review state. It reports whether a row was
// matched; false means the identity was never registered, which is a logic
// error in the caller since Get must have succeeded on it first.
func (db *DB) ApplyUpdate(ctx context.Context, cardHash string, state scheduler.Reviewed) (bool, error) {
	res, err := db.conn.ExecContext(ctx, `
		UPDATE cards
		SET last_reviewed_at = ?, stability = ?, difficulty = ?,
		    interval_raw = ?, interval_days = ?, due_date = ?, review_count = ?
		WHERE card_hash = ?
	`,
		state.LastReviewedAt.UTC(),
		state.Stability,
		state.Difficulty,
		state.IntervalRaw,
		state.IntervalDays,
		state.DueDate.UTC(),
		state.ReviewCount,
		cardHash,
	)
	if err != nil {
		return false, fmt.Errorf("failed to update card %s: %w", cardHash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to update card %s: %w", cardHash, err)
	}
	return n > 0, nil
}

// ScanDue returns every identity that is due at asOf: a due date at or
// before asOf, or no due date at all (never reviewed). Rows come back
// ordered by due date ascending with never-reviewed rows first, so a
// truncated session drains the most overdue cards before the rest.
func (db *DB) ScanDue(ctx context.Context, asOf time.Time) ([]DueCard, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_hash, review_count
		FROM cards
		WHERE due_date IS NULL OR due_date <= ?
		ORDER BY due_date ASC, card_hash ASC
	`, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to scan due cards: %w", err)
	}
	defer rows.Close()

	var due []DueCard
	for rows.Next() {
		var d DueCard
		if err := rows.Scan(&d.CardHash, &d.ReviewCount); err != nil {
			return nil, fmt.Errorf("failed to scan due row: %w", err)
		}
		due = append(due, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan due cards: %w", err)
	}
	return due, nil
}

// ScanAll returns every stored row, used to build collection statistics.
func (db *DB) ScanAll(ctx context.Context) ([]Row, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT card_hash, added_at, last_reviewed_at, stability, difficulty,
		       interval_raw, interval_days, due_date, review_count
		FROM cards
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to scan cards: %w", err)
	}
	defer rows.Close()

	var all []Row
	for rows.Next() {
		var r Row
		state, err := scanState(func(dest ...any) error {
			return rows.Scan(append([]any{&r.CardHash, &r.AddedAt}, dest...)...)
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row: %w", err)
		}
		r.State = state
		all = append(all, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan cards: %w", err)
	}
	return all, nil
}

// scanState reads the nullable reviewed columns plus review_count and maps
// them onto the MemoryState sum: review_count 0 means New, anything else
// requires every reviewed column to be present.
func scanState(scan func(dest ...any) error) (scheduler.MemoryState, error) {
	var (
		lastReviewedAt sql.NullTime
		stability      sql.NullFloat64
		difficulty     sql.NullFloat64
		intervalRaw    sql.NullFloat64
		intervalDays   int
		dueDate        sql.NullTime
		reviewCount    int
	)
	if err := scan(&lastReviewedAt, &stability, &difficulty, &intervalRaw, &intervalDays, &dueDate, &reviewCount); err != nil {
		return nil, err
	}

	if reviewCount == 0 {
		return scheduler.New{}, nil
	}
	if !lastReviewedAt.Valid || !stability.Valid || !difficulty.Valid || !intervalRaw.Valid || !dueDate.Valid {
		return nil, fmt.Errorf("reviewed card is missing state columns (review_count=%d)", reviewCount)
	}
	return scheduler.Reviewed{
		Stability:      stability.Float64,
		Difficulty:     difficulty.Float64,
		IntervalRaw:    intervalRaw.Float64,
		IntervalDays:   intervalDays,
		DueDate:        dueDate.Time,
		ReviewCount:    reviewCount,
		LastReviewedAt: lastReviewedAt.Time,
	}, nil
}
