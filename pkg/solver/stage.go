package solver

import (
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// Stage is one step of the widening plan: a named policy with its share of
// the overall budget.
type Stage struct {
	Name          string
	Policy        Policy
	TimeShare     float64
	NodeShare     float64
	FrontierShare float64
}

// StageDetail is the per-stage telemetry recorded by a staged run.
type StageDetail struct {
	Name           string  `json:"name"`
	Status         Status  `json:"status"`
	Reason         string  `json:"reason"`
	ElapsedMS      float64 `json:"elapsed_ms"`
	ExpandedNodes  int     `json:"expanded_nodes"`
	GeneratedNodes int     `json:"generated_nodes"`
	UniqueStates   int     `json:"unique_states"`
	Duplicates     int     `json:"duplicates"`
	MaxFrontier    int     `json:"max_frontier"`
}

// BalancedPolicy is strict without run locking and with shorter macros.
func BalancedPolicy() Policy {
	p := DefaultPolicy()
	p.LockSameSuitRuns = false
	p.MacroMaxSteps = 3
	return p
}

// WidePolicy disables every heuristic prune, macro chaining and the tabu.
// It is the only complete policy in the plan.
func WidePolicy() Policy {
	p := DefaultPolicy()
	p.LockSameSuitRuns = false
	p.RequireSameSuitDest = false
	p.AvoidEmptyForShortMoves = false
	p.DeferDealUntilNoMoves = false
	p.MacroChainEnabled = false
	p.TabooImmediateReverse = false
	return p
}

// StagePlan returns the widening sequence for a suit count. One-suit deals
// rarely need the wide stage; harder deals shift budget toward it.
func StagePlan(suits int) []Stage {
	strict := DefaultPolicy()
	balanced := BalancedPolicy()
	wide := WidePolicy()

	switch suits {
	case 1:
		return []Stage{
			{Name: "strict", Policy: strict, TimeShare: 0.55, NodeShare: 0.50, FrontierShare: 1.0},
			{Name: "balanced", Policy: balanced, TimeShare: 0.45, NodeShare: 0.50, FrontierShare: 1.0},
		}
	case 2:
		return []Stage{
			{Name: "strict", Policy: strict, TimeShare: 0.40, NodeShare: 0.35, FrontierShare: 1.0},
			{Name: "balanced", Policy: balanced, TimeShare: 0.35, NodeShare: 0.35, FrontierShare: 1.0},
			{Name: "wide", Policy: wide, TimeShare: 0.25, NodeShare: 0.30, FrontierShare: 1.0},
		}
	default:
		return []Stage{
			{Name: "strict", Policy: strict, TimeShare: 0.30, NodeShare: 0.25, FrontierShare: 1.0},
			{Name: "balanced", Policy: balanced, TimeShare: 0.35, NodeShare: 0.35, FrontierShare: 1.0},
			{Name: "wide", Policy: wide, TimeShare: 0.35, NodeShare: 0.40, FrontierShare: 1.0},
		}
	}
}

// stageLimits allocates a stage's budget with floors so a tiny overall
// budget still gives every stage a workable slice.
func stageLimits(base Limits, st Stage) Limits {
	return Limits{
		MaxNodes:    max(2_000, int(float64(base.MaxNodes)*st.NodeShare)),
		MaxSeconds:  max(0.05, base.MaxSeconds*st.TimeShare),
		MaxFrontier: max(10_000, int(float64(base.MaxFrontier)*st.FrontierShare)),
	}
}

// SolveStaged runs the widening plan sequentially, stopping at the first
// stage that solves or proves unsolvability. The merged result carries the
// final stage's classification and solution with counters summed, extrema
// maxed and branching weighted by expanded nodes. The returned string is
// the name of the final stage run.
func SolveStaged(initial *spider.State, limits Limits, suits int) (*Result, []StageDetail, string) {
	stages := StagePlan(suits)
	details := make([]StageDetail, 0, len(stages))

	var final *Result
	finalStage := stages[len(stages)-1].Name

	totalExpanded := 0
	totalGenerated := 0
	totalUnique := 0
	totalDeadEnds := 0
	totalDuplicates := 0
	totalElapsed := 0.0
	maxFrontier := 0
	maxDepth := 0
	weightedBranchingNum := 0.0
	weightedBranchingDen := 0

	for _, stage := range stages {
		result := Solve(initial, stageLimits(limits, stage), stage.Policy)
		details = append(details, StageDetail{
			Name:           stage.Name,
			Status:         result.Status,
			Reason:         string(result.StopReason),
			ElapsedMS:      result.ElapsedMS,
			ExpandedNodes:  result.ExpandedNodes,
			GeneratedNodes: result.GeneratedNodes,
			UniqueStates:   result.UniqueStates,
			Duplicates:     result.DuplicateStatesSkipped,
			MaxFrontier:    result.MaxFrontier,
		})

		totalExpanded += result.ExpandedNodes
		totalGenerated += result.GeneratedNodes
		totalUnique += result.UniqueStates
		totalDeadEnds += result.DeadEndNodes
		totalDuplicates += result.DuplicateStatesSkipped
		totalElapsed += result.ElapsedMS
		maxFrontier = max(maxFrontier, result.MaxFrontier)
		maxDepth = max(maxDepth, result.MaxDepth)
		weightedBranchingNum += result.AvgBranching * float64(max(1, result.ExpandedNodes))
		weightedBranchingDen += max(1, result.ExpandedNodes)

		final = result
		finalStage = stage.Name
		if result.Status == StatusSolved || result.Status == StatusProvenUnsolvable {
			break
		}
	}

	merged := &Result{
		Status:                 final.Status,
		StopReason:             final.StopReason,
		Solution:               final.Solution,
		SolutionStates:         final.SolutionStates,
		ExpandedNodes:          totalExpanded,
		GeneratedNodes:         totalGenerated,
		UniqueStates:           totalUnique,
		MaxFrontier:            maxFrontier,
		DeadEndNodes:           totalDeadEnds,
		DuplicateStatesSkipped: totalDuplicates,
		AvgBranching:           weightedBranchingNum / float64(max(1, weightedBranchingDen)),
		ElapsedMS:              totalElapsed,
		MaxDepth:               maxDepth,
		SolutionRevealed:       final.SolutionRevealed,
		SolutionFreed:          final.SolutionFreed,
		SolutionDeals:          final.SolutionDeals,
	}
	return merged, details, finalStage
}
