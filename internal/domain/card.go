package domain

import (
	"time"

	"github.com/google/uuid"
)

// Card represents a single question-answer-context entry parsed from a
// markdown source file. Hash is the content-derived identity used as the
// primary key everywhere; Origin is the file the card was parsed from.
type Card struct {
	Question string
	Answer   string
	Context  string
	Hash     string
	Origin   string
}

// KnownCards maps card hashes to the cards currently present in source
// files. Store rows outside this set are stale and are skipped by drill
// sessions and statistics.
type KnownCards map[string]Card

// ReviewLog records a single review event for a card.
type ReviewLog struct {
	ID         uuid.UUID
	CardHash   string
	ReviewedAt time.Time
	Grade      Grade
}

// NewReviewLog creates a log entry for a graded review.
func NewReviewLog(cardHash string, grade Grade, reviewedAt time.Time) ReviewLog {
	return ReviewLog{
		ID:         uuid.New(),
		CardHash:   cardHash,
		ReviewedAt: reviewedAt,
		Grade:      grade,
	}
}
