// Package stats aggregates the card store and the known-card set into
// lifecycle counts, due forecasts, and distribution histograms. It only
// computes; formatting belongs to the caller.
package stats

import (
	"sort"
	"time"

	"github.com/conorfennell/repeat/internal/domain"
	"github.com/conorfennell/repeat/internal/scheduler"
	"github.com/conorfennell/repeat/internal/storage"
)

// Lifecycle classifies a known card by how far along it is.
type Lifecycle string

const (
	LifecycleNew    Lifecycle = "new"    // never reviewed
	LifecycleYoung  Lifecycle = "young"  // reviewed, interval at or below the mature threshold
	LifecycleMature Lifecycle = "mature" // interval above the mature threshold
)

const difficultyScale = 10.0

// Options control aggregation.
type Options struct {
	// MatureThresholdDays is the unrounded interval above which a card
	// counts as mature.
	MatureThresholdDays float64
	// HistogramBuckets is the bucket count of both histograms.
	HistogramBuckets int
}

// DefaultOptions matches the conventional 21-day mature threshold and
// five-bucket histograms.
func DefaultOptions() Options {
	return Options{MatureThresholdDays: 21, HistogramBuckets: 5}
}

// Stats is the aggregate over one pass of the store.
type Stats struct {
	// TotalRows counts every row in the store, stale ones included.
	TotalRows int
	// KnownCards counts rows whose identity is in the known set; only
	// those contribute to everything below.
	KnownCards int

	Lifecycles map[Lifecycle]int

	// DueNow counts cards due at the aggregation instant, never-reviewed
	// ones included. Overdue counts reviewed cards strictly past due.
	DueNow  int
	Overdue int

	// UpcomingWeek buckets reviews falling in the next 7 days by the local
	// calendar day they land on. UpcomingMonth counts reviews in the next
	// 30 days; the windows overlap and are reported independently.
	UpcomingWeek  map[string]int
	UpcomingMonth int

	// Origins counts known cards per source file.
	Origins map[string]int

	Difficulty     *Histogram
	Retrievability *Histogram
}

// UpcomingDays returns the UpcomingWeek keys in ascending date order.
func (s *Stats) UpcomingDays() []string {
	days := make([]string, 0, len(s.UpcomingWeek))
	for day := range s.UpcomingWeek {
		days = append(days, day)
	}
	sort.Strings(days)
	return days
}

// Aggregate classifies every stored row against the known set as of asOf.
// Recall probabilities are computed with the scheduler's forgetting curve.
func Aggregate(known domain.KnownCards, rows []storage.Row, asOf time.Time, params *scheduler.Params, opts Options) *Stats {
	s := &Stats{
		Lifecycles:     make(map[Lifecycle]int),
		UpcomingWeek:   make(map[string]int),
		Origins:        make(map[string]int),
		Difficulty:     NewHistogram(opts.HistogramBuckets),
		Retrievability: NewHistogram(opts.HistogramBuckets),
	}

	weekHorizon := asOf.Add(7 * 24 * time.Hour)
	monthHorizon := asOf.Add(30 * 24 * time.Hour)

	for _, row := range rows {
		s.TotalRows++

		c, ok := known[row.CardHash]
		if !ok {
			continue // stale row, counted in TotalRows only
		}
		s.KnownCards++
		s.Origins[c.Origin]++

		reviewed, isReviewed := row.State.(scheduler.Reviewed)

		switch {
		case !isReviewed:
			s.Lifecycles[LifecycleNew]++
		case reviewed.IntervalRaw > opts.MatureThresholdDays:
			s.Lifecycles[LifecycleMature]++
		default:
			s.Lifecycles[LifecycleYoung]++
		}

		if !isReviewed {
			s.DueNow++
			s.Difficulty.Update(0)
			continue
		}

		due := reviewed.DueDate
		switch {
		case !due.After(asOf):
			s.DueNow++
			if due.Before(asOf) {
				s.Overdue++
			}
		default:
			if !due.After(weekHorizon) {
				day := due.Local().Format("2006-01-02")
				s.UpcomingWeek[day]++
			}
			if !due.After(monthHorizon) {
				s.UpcomingMonth++
			}
		}

		s.Difficulty.Update(reviewed.Difficulty / difficultyScale)

		elapsed := asOf.Sub(reviewed.LastReviewedAt).Hours() / 24
		if elapsed < 0 {
			elapsed = 0
		}
		s.Retrievability.Update(params.Recall(elapsed, reviewed.Stability))
	}

	return s
}
