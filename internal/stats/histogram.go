package stats

import "math"

// Histogram counts values over [0, 1] in equal-width buckets and tracks a
// running mean. Values outside the range are clamped in, so a boundary
// value of exactly 1.0 lands in the last bucket.
type Histogram struct {
	bins  []int
	count int
	sum   float64
}

// NewHistogram creates a histogram with n buckets. n must be at least 1.
func NewHistogram(n int) *Histogram {
	if n < 1 {
		n = 1
	}
	return &Histogram{bins: make([]int, n)}
}

// Update clamps v to [0, 1] and counts it.
func (h *Histogram) Update(v float64) {
	clamped := math.Min(math.Max(v, 0), 1)
	idx := int(clamped * float64(len(h.bins)))
	if idx > len(h.bins)-1 {
		idx = len(h.bins) - 1
	}
	h.bins[idx]++
	h.count++
	h.sum += v
}

// Bins returns a copy of the bucket counts.
func (h *Histogram) Bins() []int {
	out := make([]int, len(h.bins))
	copy(out, h.bins)
	return out
}

// Count returns the number of recorded values.
func (h *Histogram) Count() int {
	return h.count
}

// Mean returns the mean of the recorded values, or 0 if none were
// recorded; check Count before relying on it.
func (h *Histogram) Mean() float64 {
	if h.count == 0 {
		return 0
	}
	return h.sum / float64(h.count)
}
