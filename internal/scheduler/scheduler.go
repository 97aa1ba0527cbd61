// Package scheduler implements the spaced-repetition memory model: the
// forgetting curve, the per-review state transition, and the derivation of
// the next due date. Everything here is pure; the caller supplies the clock.
package scheduler

import (
	"fmt"
	"math"
	"time"

	"github.com/conorfennell/repeat/internal/domain"
)

const minStability = 0.001

const day = 24 * time.Hour

// Recall computes the probability of successful recall elapsedDays after
// the last review of a card with the given stability:
//
//	R(t, S) = (1 + Factor * t / S) ^ Decay
//
// The result is clamped to [0, 1] to absorb floating-point overshoot.
// Stability must be positive; elapsedDays must be non-negative.
func (p *Params) Recall(elapsedDays, stability float64) float64 {
	r := math.Pow(1+p.Factor*elapsedDays/stability, p.Decay)
	if r > 1 {
		return 1
	}
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return r
}

// Update applies a graded review at time now and returns the card's next
// memory state. It is total over its documented domain: a valid grade and
// either New or a Reviewed state with positive finite stability and finite
// difficulty. Anything else is a caller bug and is rejected loudly.
func (p *Params) Update(state MemoryState, grade domain.Grade, now time.Time) (Reviewed, error) {
	if !grade.IsValid() {
		return Reviewed{}, fmt.Errorf("%w: %d", domain.ErrInvalidGrade, int(grade))
	}

	switch s := state.(type) {
	case New:
		return p.initialState(grade, now), nil
	case Reviewed:
		return p.nextState(s, grade, now)
	default:
		return Reviewed{}, fmt.Errorf("%w: unknown variant %T", ErrInvalidState, state)
	}
}

// initialState seeds stability and difficulty from the per-grade tables.
func (p *Params) initialState(grade domain.Grade, now time.Time) Reviewed {
	stability := math.Max(minStability, p.InitialStability.For(grade))
	difficulty := clampDifficulty(p.InitialDifficulty.For(grade))
	return p.schedule(stability, difficulty, 1, now)
}

func (p *Params) nextState(s Reviewed, grade domain.Grade, now time.Time) (Reviewed, error) {
	if err := checkReviewed(s); err != nil {
		return Reviewed{}, err
	}

	elapsed := now.Sub(s.LastReviewedAt).Hours() / 24
	if elapsed < 0 {
		elapsed = 0
	}
	r := p.Recall(elapsed, s.Stability)

	difficulty := p.nextDifficulty(s.Difficulty, grade)

	var stability float64
	if grade == domain.Again {
		stability = p.stabilityAfterLapse(s.Stability, difficulty, r)
	} else {
		stability = p.stabilityAfterSuccess(s.Stability, difficulty, r, grade)
	}

	return p.schedule(stability, difficulty, s.ReviewCount+1, now), nil
}

// schedule derives the interval and due date for the given post-review
// stability and difficulty.
func (p *Params) schedule(stability, difficulty float64, reviewCount int, now time.Time) Reviewed {
	raw := p.intervalRaw(stability)
	days := int(math.Round(raw))
	if days < 1 {
		days = 1
	}
	if days > p.MaxIntervalDays {
		days = p.MaxIntervalDays
	}
	return Reviewed{
		Stability:      stability,
		Difficulty:     difficulty,
		IntervalRaw:    raw,
		IntervalDays:   days,
		DueDate:        now.Add(time.Duration(days) * day),
		ReviewCount:    reviewCount,
		LastReviewedAt: now,
	}
}

// intervalRaw inverts the forgetting curve: the elapsed time at which
// Recall(t, stability) equals the desired retention.
func (p *Params) intervalRaw(stability float64) float64 {
	return stability / p.Factor * (math.Pow(p.DesiredRetention, 1.0/p.Decay) - 1)
}

// nextDifficulty shifts difficulty by the grade (up for Again/Hard, down
// for Easy), damps the shift near the top of the scale, and mean-reverts
// toward the baseline before clamping to [1, 10].
func (p *Params) nextDifficulty(difficulty float64, grade domain.Grade) float64 {
	delta := p.DifficultyDelta * float64(domain.Good-grade)
	shifted := difficulty + (10-difficulty)*delta/9
	reverted := p.DifficultyMeanReversion*p.DifficultyBaseline + (1-p.DifficultyMeanReversion)*shifted
	return clampDifficulty(reverted)
}

// stabilityAfterSuccess grows stability after a recalled review. Growth
// saturates as stability itself grows, is larger for easier cards and for
// lower pre-review retrievability, and carries a grade multiplier
// (Hard < Good < Easy).
func (p *Params) stabilityAfterSuccess(stability, difficulty, r float64, grade domain.Grade) float64 {
	multiplier := 1.0
	switch grade {
	case domain.Hard:
		multiplier = p.HardPenalty
	case domain.Easy:
		multiplier = p.EasyBonus
	}
	growth := p.StabilityGrowth *
		(11 - difficulty) *
		math.Pow(stability, -p.StabilitySaturation) *
		(math.Exp(p.RetrievabilityBoost*(1-r)) - 1) *
		multiplier
	return math.Max(minStability, stability*(1+growth))
}

// stabilityAfterLapse shrinks stability after a failed review. The shrink
// is harsher when retrievability was high (an unexpected lapse) and when
// the card is difficult. The result never exceeds the prior stability.
func (p *Params) stabilityAfterLapse(stability, difficulty, r float64) float64 {
	next := p.LapseScale *
		math.Pow(difficulty, -p.LapseDifficultyDecay) *
		(math.Pow(stability+1, p.LapseStabilityGrowth) - 1) *
		math.Exp(p.LapseRetrievabilityBoost*(1-r))
	return math.Max(minStability, math.Min(next, stability))
}

func checkReviewed(s Reviewed) error {
	switch {
	case math.IsNaN(s.Stability) || math.IsInf(s.Stability, 0) || s.Stability <= 0:
		return fmt.Errorf("%w: stability %v", ErrInvalidState, s.Stability)
	case math.IsNaN(s.Difficulty) || math.IsInf(s.Difficulty, 0):
		return fmt.Errorf("%w: difficulty %v", ErrInvalidState, s.Difficulty)
	case s.ReviewCount < 1:
		return fmt.Errorf("%w: review count %d", ErrInvalidState, s.ReviewCount)
	}
	return nil
}

func clampDifficulty(d float64) float64 {
	return math.Min(math.Max(d, 1), 10)
}
