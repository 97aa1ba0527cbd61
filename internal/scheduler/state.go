package scheduler

import "time"

// MemoryState is the learning state of a card: either New (never reviewed,
// no numeric parameters) or Reviewed. It is a closed sum; the two variants
// are the only implementations.
type MemoryState interface {
	memoryState()
}

// New is the state of a card that has never been reviewed.
type New struct{}

func (New) memoryState() {}

// Reviewed is the memory state of a card after at least one review.
type Reviewed struct {
	Stability      float64   // modeled memory half-life in days, > 0
	Difficulty     float64   // intrinsic hardness, in [1, 10]
	IntervalRaw    float64   // unrounded target interval in days
	IntervalDays   int       // rounded interval, >= 1
	DueDate        time.Time // LastReviewedAt + IntervalDays
	ReviewCount    int       // >= 1
	LastReviewedAt time.Time
}

func (Reviewed) memoryState() {}
