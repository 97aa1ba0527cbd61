package storage

import (
	"context"
	"fmt"

	"github.com/conorfennell/repeat/internal/domain"
)

// AppendReviewLog records a graded review. Entries are append-only.
func (db *DB) AppendReviewLog(ctx context.Context, entry domain.ReviewLog) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO review_log (id, card_hash, reviewed_at, grade)
		VALUES (?, ?, ?, ?)
	`,
		entry.ID.String(),
		entry.CardHash,
		entry.ReviewedAt.UTC(),
		int(entry.Grade),
	)
	if err != nil {
		return fmt.Errorf("failed to append review log for %s: %w", entry.CardHash, err)
	}
	return nil
}

// ReviewLogForCard returns the review history of one card, oldest first.
func (db *DB) ReviewLogForCard(ctx context.Context, cardHash string) ([]domain.ReviewLog, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, card_hash, reviewed_at, grade
		FROM review_log
		WHERE card_hash = ?
		ORDER BY reviewed_at ASC
	`, cardHash)
	if err != nil {
		return nil, fmt.Errorf("failed to get review log for %s: %w", cardHash, err)
	}
	defer rows.Close()

	var entries []domain.ReviewLog
	for rows.Next() {
		var entry domain.ReviewLog
		var id string
		var grade int
		if err := rows.Scan(&id, &entry.CardHash, &entry.ReviewedAt, &grade); err != nil {
			return nil, fmt.Errorf("failed to scan review log row: %w", err)
		}
		if err := entry.ID.UnmarshalText([]byte(id)); err != nil {
			return nil, fmt.Errorf("failed to parse review log id %q: %w", id, err)
		}
		entry.Grade = domain.Grade(grade)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get review log for %s: %w", cardHash, err)
	}
	return entries, nil
}
