// Package scoring computes the popularity score of a repository.
package scoring

import "time"

const (
	starsWeight   = 4
	forksWeight   = 4
	recencyWeight = 2

	// maxTotal is the weighted sum when every bucket scores its maximum.
	maxTotal = 4*starsWeight + 4*forksWeight + 2*recencyWeight
)

// Scorer maps star count, fork count and last activity to a score in [0,100].
type Scorer struct {
	now func() time.Time
}

// NewScorer returns a Scorer that reads the wall clock on every call.
func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerWithClock returns a Scorer using the given clock.
func NewScorerWithClock(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score weights the stars, forks and recency buckets and normalizes the sum to 100.
func (s *Scorer) Score(stargazersCount, forksCount int64, lastActivity time.Time) float64 {
	total := starsWeight*starsPoints(stargazersCount) +
		forksWeight*forksPoints(forksCount) +
		recencyWeight*recencyPoints(daysSince(lastActivity, s.now()))
	return float64(total) / maxTotal * 100
}

func starsPoints(n int64) int {
	switch {
	case n >= 100000:
		return 4
	case n >= 1000:
		return 3
	case n >= 100:
		return 2
	case n > 0:
		return 1
	default:
		return 0
	}
}

func forksPoints(n int64) int {
	switch {
	case n >= 1000:
		return 4
	case n >= 500:
		return 3
	case n >= 100:
		return 2
	case n > 0:
		return 1
	default:
		return 0
	}
}

func recencyPoints(days int64) int {
	switch {
	case days <= 28:
		return 2
	case days <= 56:
		return 1
	default:
		return 0
	}
}

// daysSince counts whole days elapsed; activity in the future counts as zero.
func daysSince(t, now time.Time) int64 {
	d := now.Sub(t)
	if d < 0 {
		return 0
	}
	return int64(d / (24 * time.Hour))
}
