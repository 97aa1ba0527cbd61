package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/repeat/internal/domain"
)

var grades = []domain.Grade{domain.Again, domain.Hard, domain.Good, domain.Easy}

func TestRecall(t *testing.T) {
	p := DefaultParams()

	t.Run("is 1 at zero elapsed time", func(t *testing.T) {
		for _, s := range []float64{0.01, 1, 10, 1000} {
			assert.InDelta(t, 1.0, p.Recall(0, s), 1e-12, "stability %v", s)
		}
	})

	t.Run("stays in [0,1]", func(t *testing.T) {
		for _, elapsed := range []float64{0, 0.5, 1, 30, 365, 1e6} {
			for _, s := range []float64{0.001, 0.5, 10, 1e4} {
				r := p.Recall(elapsed, s)
				assert.GreaterOrEqual(t, r, 0.0)
				assert.LessOrEqual(t, r, 1.0)
			}
		}
	})

	t.Run("non-increasing in elapsed time", func(t *testing.T) {
		prev := 1.0
		for elapsed := 0.0; elapsed <= 100; elapsed += 0.5 {
			r := p.Recall(elapsed, 5)
			assert.LessOrEqual(t, r, prev, "elapsed %v", elapsed)
			prev = r
		}
	})

	t.Run("non-decreasing in stability", func(t *testing.T) {
		prev := 0.0
		for s := 0.1; s <= 100; s += 0.1 {
			r := p.Recall(10, s)
			assert.GreaterOrEqual(t, r, prev, "stability %v", s)
			prev = r
		}
	})

	t.Run("equals desired retention at the computed interval", func(t *testing.T) {
		for _, s := range []float64{0.5, 2, 21, 300} {
			assert.InDelta(t, p.DesiredRetention, p.Recall(p.intervalRaw(s), s), 1e-9)
		}
	})
}

func TestFactorIsConfigurable(t *testing.T) {
	p := DefaultParams()

	t.Run("default pins recall at the stability mark to 0.9", func(t *testing.T) {
		for _, s := range []float64{0.5, 5, 100} {
			assert.InDelta(t, 0.9, p.Recall(s, s), 1e-9, "stability %v", s)
		}
	})

	t.Run("overriding it rescales the curve", func(t *testing.T) {
		steep := DefaultParams()
		steep.Factor = p.Factor * 4
		assert.Less(t, steep.Recall(5, 5), p.Recall(5, 5))

		// The interval inversion tracks the override, so the retention
		// target keeps holding at the computed interval.
		assert.Less(t, steep.intervalRaw(5), p.intervalRaw(5))
		assert.InDelta(t, steep.DesiredRetention, steep.Recall(steep.intervalRaw(5), 5), 1e-9)
	})
}

func TestUpdateFromNew(t *testing.T) {
	p := DefaultParams()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	for _, g := range grades {
		t.Run(g.String(), func(t *testing.T) {
			next, err := p.Update(New{}, g, now)
			require.NoError(t, err)

			assert.Equal(t, 1, next.ReviewCount)
			assert.Equal(t, now, next.LastReviewedAt)
			assert.GreaterOrEqual(t, next.IntervalDays, 1)
			assert.Equal(t, now.Add(time.Duration(next.IntervalDays)*24*time.Hour), next.DueDate)
			assert.Greater(t, next.Stability, 0.0)
			assert.GreaterOrEqual(t, next.Difficulty, 1.0)
			assert.LessOrEqual(t, next.Difficulty, 10.0)
		})
	}

	t.Run("higher grades seed higher stability and lower difficulty", func(t *testing.T) {
		var prev Reviewed
		for i, g := range grades {
			next, err := p.Update(New{}, g, now)
			require.NoError(t, err)
			if i > 0 {
				assert.Greater(t, next.Stability, prev.Stability, "grade %s", g)
				assert.Less(t, next.Difficulty, prev.Difficulty, "grade %s", g)
			}
			prev = next
		}
	})
}

func TestUpdateFromReviewed(t *testing.T) {
	p := DefaultParams()
	lastReview := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	now := lastReview.Add(5 * 24 * time.Hour)

	base := Reviewed{
		Stability:      5,
		Difficulty:     5,
		IntervalRaw:    5,
		IntervalDays:   5,
		DueDate:        lastReview.Add(5 * 24 * time.Hour),
		ReviewCount:    3,
		LastReviewedAt: lastReview,
	}

	t.Run("increments review count and stamps the review time", func(t *testing.T) {
		for _, g := range grades {
			next, err := p.Update(base, g, now)
			require.NoError(t, err)
			assert.Equal(t, base.ReviewCount+1, next.ReviewCount, "grade %s", g)
			assert.Equal(t, now, next.LastReviewedAt, "grade %s", g)
			assert.Equal(t, now.Add(time.Duration(next.IntervalDays)*24*time.Hour), next.DueDate)
			assert.GreaterOrEqual(t, next.IntervalDays, 1)
		}
	})

	t.Run("stability is monotone in grade", func(t *testing.T) {
		var prev float64
		for i, g := range grades {
			next, err := p.Update(base, g, now)
			require.NoError(t, err)
			if i > 0 {
				assert.GreaterOrEqual(t, next.Stability, prev, "grade %s", g)
			}
			prev = next.Stability
		}
	})

	t.Run("lapse shrinks stability, success grows it", func(t *testing.T) {
		lapse, err := p.Update(base, domain.Again, now)
		require.NoError(t, err)
		assert.Less(t, lapse.Stability, base.Stability)

		good, err := p.Update(base, domain.Good, now)
		require.NoError(t, err)
		assert.Greater(t, good.Stability, base.Stability)
	})

	t.Run("unexpected lapses are punished harder", func(t *testing.T) {
		// Same state, reviewed right away (high retrievability) vs. long
		// overdue (low retrievability): the early lapse should end lower.
		early, err := p.Update(base, domain.Again, lastReview.Add(time.Hour))
		require.NoError(t, err)
		late, err := p.Update(base, domain.Again, lastReview.Add(60*24*time.Hour))
		require.NoError(t, err)
		assert.Less(t, early.Stability, late.Stability)
	})

	t.Run("difficulty moves with the grade and stays bounded", func(t *testing.T) {
		again, err := p.Update(base, domain.Again, now)
		require.NoError(t, err)
		assert.Greater(t, again.Difficulty, base.Difficulty)

		easy, err := p.Update(base, domain.Easy, now)
		require.NoError(t, err)
		assert.Less(t, easy.Difficulty, base.Difficulty)

		state := base
		for i := 0; i < 50; i++ {
			next, err := p.Update(state, domain.Again, now.Add(time.Duration(i)*24*time.Hour))
			require.NoError(t, err)
			assert.LessOrEqual(t, next.Difficulty, 10.0)
			assert.GreaterOrEqual(t, next.Difficulty, 1.0)
			state = next
		}
	})

	t.Run("difficulty mean reversion prevents pinning at the bound", func(t *testing.T) {
		// After many Again reviews difficulty saturates; one Good review
		// must pull it back off the ceiling rather than leave it stuck.
		state := base
		for i := 0; i < 30; i++ {
			next, err := p.Update(state, domain.Again, state.DueDate)
			require.NoError(t, err)
			state = next
		}
		recovered, err := p.Update(state, domain.Good, state.DueDate)
		require.NoError(t, err)
		assert.Less(t, recovered.Difficulty, state.Difficulty)
	})

	t.Run("elapsed time before the last review counts as zero", func(t *testing.T) {
		next, err := p.Update(base, domain.Good, lastReview.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, base.ReviewCount+1, next.ReviewCount)
	})
}

func TestUpdateRejectsBadInput(t *testing.T) {
	p := DefaultParams()
	now := time.Now()

	t.Run("invalid grade", func(t *testing.T) {
		_, err := p.Update(New{}, domain.Grade(0), now)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
		_, err = p.Update(New{}, domain.Grade(5), now)
		assert.ErrorIs(t, err, domain.ErrInvalidGrade)
	})

	t.Run("out-of-domain numeric state", func(t *testing.T) {
		cases := map[string]Reviewed{
			"zero stability":     {Stability: 0, Difficulty: 5, ReviewCount: 1, LastReviewedAt: now},
			"negative stability": {Stability: -1, Difficulty: 5, ReviewCount: 1, LastReviewedAt: now},
			"NaN stability":      {Stability: math.NaN(), Difficulty: 5, ReviewCount: 1, LastReviewedAt: now},
			"Inf difficulty":     {Stability: 2, Difficulty: math.Inf(1), ReviewCount: 1, LastReviewedAt: now},
			"zero review count":  {Stability: 2, Difficulty: 5, ReviewCount: 0, LastReviewedAt: now},
		}
		for name, state := range cases {
			_, err := p.Update(state, domain.Good, now)
			assert.ErrorIs(t, err, ErrInvalidState, name)
		}
	})
}

func TestIntervalRespectsCap(t *testing.T) {
	p := DefaultParams()
	p.MaxIntervalDays = 10

	next, err := p.Update(Reviewed{
		Stability:      5000,
		Difficulty:     2,
		ReviewCount:    1,
		LastReviewedAt: time.Now().Add(-240 * time.Hour),
	}, domain.Easy, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 10, next.IntervalDays)
}
