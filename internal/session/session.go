// Package session turns the store's due set and the known-card set into a
// bounded study session.
package session

import (
	"context"
	"time"

	"github.com/conorfennell/repeat/internal/domain"
	"github.com/conorfennell/repeat/internal/storage"
)

// Limits bounds a session. Cards caps the total number of cards selected
// and NewCards caps how many of them may be never-reviewed. A nil limit
// means unbounded for that dimension; a zero limit is a real limit and
// selects nothing for it.
type Limits struct {
	Cards    *int
	NewCards *int
}

// Unbounded selects every due card.
var Unbounded = Limits{}

// Limit turns a count into a session limit.
func Limit(n int) *int { return &n }

// Select walks the due set in order and collects the matching known cards.
// Hashes absent from known are stale rows and are skipped. Collection
// stops as soon as either limit is reached, whichever trips first.
func Select(due []storage.DueCard, known domain.KnownCards, limits Limits) []domain.Card {
	var cards []domain.Card
	newCount := 0

	for _, d := range due {
		if limits.Cards != nil && len(cards) >= *limits.Cards {
			break
		}
		if limits.NewCards != nil && newCount >= *limits.NewCards {
			break
		}

		c, ok := known[d.CardHash]
		if !ok {
			continue
		}

		cards = append(cards, c)
		if d.ReviewCount == 0 {
			newCount++
		}
	}
	return cards
}

// SelectDue scans the store's due set as of asOf and builds a session from
// it.
func SelectDue(ctx context.Context, db *storage.DB, known domain.KnownCards, limits Limits, asOf time.Time) ([]domain.Card, error) {
	due, err := db.ScanDue(ctx, asOf)
	if err != nil {
		return nil, err
	}
	return Select(due, known, limits), nil
}
