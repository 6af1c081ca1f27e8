// Package pool mines seed ranges: it fans analyzer runs out over a worker
// pool, merges rows with prior runs, partitions solved seeds into empirical
// difficulty tertiles and persists the pool artifacts with atomic
// checkpoints.
package pool

import (
	"math"
	"sort"

	"github.com/vanderheijden86/spiderlab/internal/datasource"
)

// Quantile returns the q-quantile of sorted values using linear
// interpolation at position (n-1)·q. Persisted pools were bucketed with
// exactly this formula, so it stays hand-rolled instead of delegating to a
// statistics library with different interpolation rules.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	alpha := pos - float64(lo)
	return sorted[lo]*(1.0-alpha) + sorted[hi]*alpha
}

// Buckets partitions solved rows by score tertile.
type Buckets struct {
	Easy   []datasource.SeedRow
	Medium []datasource.SeedRow
	Hard   []datasource.SeedRow
}

// BucketSolvedRows computes q33/q66 over the solved rows' scores and
// assigns each solved row to Easy (score ≤ q33), Medium (≤ q66) or Hard.
// Rows are assigned in ascending (score, seed) order; maxPerBucket > 0
// truncates each bucket from the dense end.
func BucketSolvedRows(rows []datasource.SeedRow, maxPerBucket int) (Buckets, datasource.Quantiles) {
	solved := make([]datasource.SeedRow, 0, len(rows))
	for _, row := range rows {
		if row.Status == "solved" && row.Score != nil {
			solved = append(solved, row)
		}
	}
	if len(solved) == 0 {
		return Buckets{}, datasource.Quantiles{}
	}

	scores := make([]float64, len(solved))
	for i, row := range solved {
		scores[i] = *row.Score
	}
	sort.Float64s(scores)
	q33 := Quantile(scores, 1.0/3.0)
	q66 := Quantile(scores, 2.0/3.0)

	sort.Slice(solved, func(i, j int) bool {
		if *solved[i].Score != *solved[j].Score {
			return *solved[i].Score < *solved[j].Score
		}
		return solved[i].Seed < solved[j].Seed
	})

	var out Buckets
	for _, row := range solved {
		var bucket *[]datasource.SeedRow
		switch {
		case *row.Score <= q33:
			bucket = &out.Easy
		case *row.Score <= q66:
			bucket = &out.Medium
		default:
			bucket = &out.Hard
		}
		if maxPerBucket > 0 && len(*bucket) >= maxPerBucket {
			continue
		}
		*bucket = append(*bucket, row)
	}

	return out, datasource.Quantiles{Q33: round6(q33), Q66: round6(q66)}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func seeds(rows []datasource.SeedRow) []int64 {
	out := make([]int64, len(rows))
	for i, row := range rows {
		out[i] = row.Seed
	}
	return out
}
