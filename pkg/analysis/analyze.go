package analysis

import (
	"math"

	"github.com/vanderheijden86/spiderlab/pkg/metrics"
	"github.com/vanderheijden86/spiderlab/pkg/solver"
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// Metrics is the telemetry dictionary attached to every analyzer result.
// The solution-path fields are only populated for solved runs.
type Metrics struct {
	ExpandedNodes          int                  `json:"expanded_nodes"`
	GeneratedNodes         int                  `json:"generated_nodes"`
	UniqueStates           int                  `json:"unique_states"`
	DuplicateStatesSkipped int                  `json:"duplicate_states_skipped"`
	MaxFrontier            int                  `json:"max_frontier"`
	DeadEndNodes           int                  `json:"dead_end_nodes"`
	AvgBranching           float64              `json:"avg_branching"`
	ElapsedMS              float64              `json:"elapsed_ms"`
	MaxDepth               int                  `json:"max_depth"`
	FinalStage             string               `json:"final_stage"`
	Stages                 []solver.StageDetail `json:"stages"`

	Reason string `json:"reason,omitempty"`

	SolutionLen      int     `json:"solution_len,omitempty"`
	SolutionRevealed int     `json:"solution_revealed,omitempty"`
	SolutionFreed    int     `json:"solution_freed,omitempty"`
	SolutionDeals    int     `json:"solution_deals,omitempty"`
	AvgLegalOnPath   float64 `json:"avg_legal_on_path,omitempty"`
	ForcedRatio      float64 `json:"forced_ratio,omitempty"`
	DeadEndRatio     float64 `json:"dead_end_ratio,omitempty"`

	DifficultyComponents *DifficultyComponents `json:"difficulty_components,omitempty"`
	EffortScore          *float64              `json:"effort_score,omitempty"`
}

// Result classifies one analyzed deal.
type Result struct {
	Seed            *int64   `json:"seed"`
	Suits           int      `json:"suits"`
	Status          string   `json:"status"`
	Solvable        *bool    `json:"solvable"`
	Proven          bool     `json:"proven"`
	DifficultyScore *float64 `json:"difficulty_score"`
	DifficultyBand  *string  `json:"difficulty_band"`
	Metrics         Metrics  `json:"metrics"`
	Solution        []string `json:"solution"`
}

// Options configure an analysis run.
type Options struct {
	Suits  int
	Seed   *int64
	Limits solver.Limits
	// Staged selects the widening plan; when false a single search runs
	// under Policy.
	Staged bool
	Policy solver.Policy
}

// DefaultOptions returns a staged run under the strict policy and default
// limits.
func DefaultOptions(suits int) Options {
	return Options{
		Suits:  suits,
		Limits: solver.DefaultLimits(),
		Staged: true,
		Policy: solver.DefaultPolicy(),
	}
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

// AnalyzeState runs the solver on an explicit state and estimates its
// difficulty from the search telemetry.
func AnalyzeState(initial *spider.State, opts Options) *Result {
	defer metrics.Timer(metrics.Analyze)()

	var solved *solver.Result
	var stages []solver.StageDetail
	var finalStage string
	if opts.Staged {
		solved, stages, finalStage = solver.SolveStaged(initial, opts.Limits, opts.Suits)
	} else {
		solved = solver.Solve(initial, opts.Limits, opts.Policy)
		finalStage = "single"
		stages = []solver.StageDetail{{
			Name:           finalStage,
			Status:         solved.Status,
			Reason:         string(solved.StopReason),
			ElapsedMS:      solved.ElapsedMS,
			ExpandedNodes:  solved.ExpandedNodes,
			GeneratedNodes: solved.GeneratedNodes,
			UniqueStates:   solved.UniqueStates,
			Duplicates:     solved.DuplicateStatesSkipped,
			MaxFrontier:    solved.MaxFrontier,
		}}
	}

	m := Metrics{
		ExpandedNodes:          solved.ExpandedNodes,
		GeneratedNodes:         solved.GeneratedNodes,
		UniqueStates:           solved.UniqueStates,
		DuplicateStatesSkipped: solved.DuplicateStatesSkipped,
		MaxFrontier:            solved.MaxFrontier,
		DeadEndNodes:           solved.DeadEndNodes,
		AvgBranching:           round(solved.AvgBranching, 4),
		ElapsedMS:              round(solved.ElapsedMS, 3),
		MaxDepth:               solved.MaxDepth,
		FinalStage:             finalStage,
		Stages:                 stages,
	}

	res := &Result{
		Seed:     opts.Seed,
		Suits:    opts.Suits,
		Status:   string(solved.Status),
		Metrics:  m,
		Solution: []string{},
	}

	switch solved.Status {
	case solver.StatusSolved:
		ps := solutionPathStats(solved.SolutionStates)
		rawScore, components := score(solved, opts.Suits, ps)
		deadRatio := components.DeadPct / 100.0

		res.Metrics.SolutionLen = len(solved.Solution)
		res.Metrics.SolutionRevealed = solved.SolutionRevealed
		res.Metrics.SolutionFreed = solved.SolutionFreed
		res.Metrics.SolutionDeals = solved.SolutionDeals
		res.Metrics.AvgLegalOnPath = round(ps.avgLegal, 4)
		res.Metrics.ForcedRatio = round(ps.forcedRatio, 4)
		res.Metrics.DeadEndRatio = round(deadRatio, 4)
		res.Metrics.DifficultyComponents = &DifficultyComponents{
			ExpandedNodes: round(components.ExpandedNodes, 3),
			SolutionLen:   round(components.SolutionLen, 3),
			DealCount:     round(components.DealCount, 3),
			AvgBranching:  round(components.AvgBranching, 4),
			ForcedPct:     round(components.ForcedPct, 4),
			DeadPct:       round(components.DeadPct, 4),
			PressurePct:   round(components.PressurePct, 4),
			SuitFactor:    round(components.SuitFactor, 4),
		}

		solvable := true
		scoreRounded := round(rawScore, 3)
		band := DifficultyBand(rawScore)
		res.Solvable = &solvable
		res.DifficultyScore = &scoreRounded
		res.DifficultyBand = &band
		res.Solution = make([]string, len(solved.Solution))
		for i, a := range solved.Solution {
			res.Solution[i] = a.Notation()
		}

	case solver.StatusProvenUnsolvable:
		res.Metrics.Reason = string(solved.StopReason)
		solvable := false
		unsolvableScore := 100.0
		band := BandUnsolvable
		res.Solvable = &solvable
		res.Proven = true
		res.DifficultyScore = &unsolvableScore
		res.DifficultyBand = &band

	default:
		res.Metrics.Reason = string(solved.StopReason)
		effort := round(effortScore(solved, opts.Limits), 3)
		res.Metrics.EffortScore = &effort
	}

	return res
}

// AnalyzeSeed deals the seed deterministically and analyzes it. A definite
// seed is required so results stay reproducible.
func AnalyzeSeed(seed int64, suits int, limits solver.Limits, staged bool) (*Result, error) {
	state, err := spider.NewInitialState(spider.SeededConfig(suits, seed))
	if err != nil {
		return nil, err
	}
	opts := DefaultOptions(suits)
	opts.Seed = &seed
	opts.Limits = limits
	opts.Staged = staged
	return AnalyzeState(state, opts), nil
}
