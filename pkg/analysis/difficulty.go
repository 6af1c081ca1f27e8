// Package analysis converts solver telemetry into difficulty estimates.
//
// A solved search is scored with a fixed weighted sum of search effort,
// plan shape and choice-pressure statistics. The weights are empirical
// constants; changing them shifts every persisted bucket boundary, so
// existing pools would need a full rebuild.
package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/vanderheijden86/spiderlab/pkg/solver"
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// Difficulty score weights. Do not adjust: bucket boundaries of persisted
// seed pools depend on exact score magnitudes.
const (
	weightExpandedNodes = 1.0
	weightSolutionLen   = 420.0
	weightDealCount     = 9_000.0
	weightBranching     = 1_600.0
	weightForcedPct     = 2_600.0
	weightDeadPct       = 1_800.0
	weightPressurePct   = 1_200.0
	weightSuitFactor    = 15_000.0
)

// Band cut points over raw scores.
const (
	bandEasyBelow   = 80_000.0
	bandMediumBelow = 220_000.0
)

// Difficulty bands reported for analyzed seeds.
const (
	BandEasy       = "Easy"
	BandMedium     = "Medium"
	BandHard       = "Hard"
	BandUnsolvable = "Unsolvable"
)

// DifficultyBand maps a raw score to its band.
func DifficultyBand(score float64) string {
	if score < bandEasyBelow {
		return BandEasy
	}
	if score < bandMediumBelow {
		return BandMedium
	}
	return BandHard
}

// DifficultyComponents records each weighted input of a score so pools can
// be audited after the fact.
type DifficultyComponents struct {
	ExpandedNodes float64 `json:"expanded_nodes"`
	SolutionLen   float64 `json:"solution_len"`
	DealCount     float64 `json:"deal_count"`
	AvgBranching  float64 `json:"avg_branching"`
	ForcedPct     float64 `json:"forced_pct"`
	DeadPct       float64 `json:"dead_pct"`
	PressurePct   float64 `json:"pressure_pct"`
	SuitFactor    float64 `json:"suit_factor"`
}

// pathStats summarizes legal-action counts along a solution path,
// excluding the goal state.
type pathStats struct {
	avgLegal    float64
	forcedRatio float64
}

func solutionPathStats(states []*spider.State) pathStats {
	if len(states) <= 1 {
		return pathStats{avgLegal: 0, forcedRatio: 1.0}
	}
	counts := make([]float64, 0, len(states)-1)
	forced := 0
	for _, st := range states[:len(states)-1] {
		n := solver.CountLegalActions(st)
		counts = append(counts, float64(n))
		if n == 1 {
			forced++
		}
	}
	return pathStats{
		avgLegal:    stat.Mean(counts, nil),
		forcedRatio: float64(forced) / float64(len(counts)),
	}
}

// score computes the raw difficulty score and its components for a solved
// result given its solution-path statistics.
func score(res *solver.Result, suits int, ps pathStats) (float64, DifficultyComponents) {
	deadRatio := float64(res.DeadEndNodes) / math.Max(1, float64(res.ExpandedNodes))
	choicePressure := 1.0 / math.Max(1.0, ps.avgLegal)
	suitFactor := float64(max(1, suits) - 1)

	c := DifficultyComponents{
		ExpandedNodes: float64(res.ExpandedNodes),
		SolutionLen:   float64(len(res.Solution)),
		DealCount:     float64(res.SolutionDeals),
		AvgBranching:  res.AvgBranching,
		ForcedPct:     ps.forcedRatio * 100.0,
		DeadPct:       deadRatio * 100.0,
		PressurePct:   choicePressure * 100.0,
		SuitFactor:    suitFactor,
	}

	s := weightExpandedNodes*c.ExpandedNodes +
		weightSolutionLen*c.SolutionLen +
		weightDealCount*c.DealCount +
		weightBranching*c.AvgBranching +
		weightForcedPct*c.ForcedPct +
		weightDeadPct*c.DeadPct +
		weightPressurePct*c.PressurePct +
		weightSuitFactor*c.SuitFactor

	return math.Max(0, s), c
}

// effortScore normalizes how much of the budget an inconclusive run burned,
// in [0, 100]. It is reported instead of a difficulty score when the search
// gave up on limits.
func effortScore(res *solver.Result, limits solver.Limits) float64 {
	nodePart := math.Min(1.0, math.Log1p(float64(res.ExpandedNodes))/math.Log1p(math.Max(2_000, float64(limits.MaxNodes))))
	timePart := math.Min(1.0, res.ElapsedMS/math.Max(1.0, limits.MaxSeconds*1000.0))
	return math.Min(100.0, 100.0*(0.70*nodePart+0.30*timePart))
}
