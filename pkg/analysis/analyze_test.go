package analysis

import (
	"testing"

	"github.com/vanderheijden86/spiderlab/pkg/solver"
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// oneMoveWin is a single-move winnable position.
func oneMoveWin() *spider.State {
	stacks := make([]spider.Stack, 10)
	for r := 12; r >= 1; r-- {
		stacks[0] = append(stacks[0], spider.CardOf(0, r))
	}
	stacks[1] = spider.Stack{spider.CardOf(0, 0)}
	return spider.NewState(nil, stacks, 0)
}

func TestAnalyzeSolvedState(t *testing.T) {
	seed := int64(123)
	opts := DefaultOptions(1)
	opts.Seed = &seed
	opts.Limits = solver.Limits{MaxNodes: 5_000, MaxSeconds: 1.0, MaxFrontier: 20_000}

	res := AnalyzeState(oneMoveWin(), opts)

	if res.Status != "solved" {
		t.Fatalf("expected solved, got %s", res.Status)
	}
	if res.Solvable == nil || !*res.Solvable {
		t.Error("expected solvable true")
	}
	if res.Proven {
		t.Error("expected proven false for a heuristic solve")
	}
	if res.DifficultyScore == nil || *res.DifficultyScore < 0 {
		t.Error("expected a non-negative difficulty score")
	}
	if res.DifficultyBand == nil {
		t.Fatal("expected a difficulty band")
	}
	if res.Metrics.SolutionLen != 1 {
		t.Errorf("expected solution_len 1, got %d", res.Metrics.SolutionLen)
	}
	if res.Metrics.DifficultyComponents == nil {
		t.Fatal("expected difficulty components")
	}
	if res.Metrics.DifficultyComponents.SuitFactor != 0 {
		t.Errorf("expected suit factor 0 for one suit, got %g", res.Metrics.DifficultyComponents.SuitFactor)
	}
	if len(res.Solution) != 1 || res.Solution[0] != "MOVE(S1:0->S0,len=1)" {
		t.Errorf("unexpected solution %v", res.Solution)
	}
	if res.Seed == nil || *res.Seed != seed {
		t.Error("expected the seed to be echoed")
	}
}

func TestAnalyzeUnknownReportsEffort(t *testing.T) {
	st, err := spider.NewInitialState(spider.SeededConfig(4, 555))
	if err != nil {
		t.Fatal(err)
	}
	opts := DefaultOptions(4)
	opts.Staged = false
	opts.Policy = solver.DefaultPolicy()
	opts.Limits = solver.Limits{MaxNodes: 20, MaxSeconds: 30, MaxFrontier: 100_000}

	res := AnalyzeState(st, opts)

	if res.Status != "unknown" {
		t.Fatalf("expected unknown, got %s", res.Status)
	}
	if res.Solvable != nil {
		t.Error("expected solvable to be undetermined")
	}
	if res.DifficultyScore != nil || res.DifficultyBand != nil {
		t.Error("expected no difficulty score or band for unknown")
	}
	if res.Metrics.EffortScore == nil {
		t.Fatal("expected an effort score")
	}
	if *res.Metrics.EffortScore < 0 || *res.Metrics.EffortScore > 100 {
		t.Errorf("effort score out of range: %g", *res.Metrics.EffortScore)
	}
	if res.Metrics.Reason == "" {
		t.Error("expected a stop reason in metrics")
	}
}

func TestAnalyzeProvenUnsolvable(t *testing.T) {
	st := spider.NewState(nil, []spider.Stack{
		{spider.CardOf(0, 12)},
		{spider.CardOf(1, 12)},
		{},
	}, 0)
	opts := DefaultOptions(4)
	opts.Staged = false
	opts.Policy = solver.WidePolicy()

	res := AnalyzeState(st, opts)

	if res.Status != "proven_unsolvable" {
		t.Fatalf("expected proven_unsolvable, got %s", res.Status)
	}
	if !res.Proven {
		t.Error("expected proven true")
	}
	if res.Solvable == nil || *res.Solvable {
		t.Error("expected solvable false")
	}
	if res.DifficultyBand == nil || *res.DifficultyBand != BandUnsolvable {
		t.Error("expected the Unsolvable band")
	}
}

func TestAnalyzeSeedStagedBreakdown(t *testing.T) {
	limits := solver.Limits{MaxNodes: 3_000, MaxSeconds: 0.5, MaxFrontier: 20_000}
	res, err := AnalyzeSeed(20260210, 1, limits, true)
	if err != nil {
		t.Fatal(err)
	}

	switch res.Status {
	case "solved", "unknown", "proven_unsolvable":
	default:
		t.Fatalf("unexpected status %s", res.Status)
	}
	if len(res.Metrics.Stages) == 0 {
		t.Fatal("expected per-stage telemetry")
	}
	if res.Metrics.FinalStage == "" {
		t.Error("expected a final stage name")
	}
	if res.Metrics.ElapsedMS < 0 {
		t.Error("expected non-negative elapsed time")
	}
}

func TestAnalyzeSeedRejectsBadSuits(t *testing.T) {
	if _, err := AnalyzeSeed(1, 7, solver.DefaultLimits(), true); err == nil {
		t.Error("expected invalid suit count to be rejected")
	}
}

func TestDifficultyBandCuts(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, BandEasy},
		{79_999.9, BandEasy},
		{80_000, BandMedium},
		{219_999.9, BandMedium},
		{220_000, BandHard},
		{1e9, BandHard},
	}
	for _, tt := range tests {
		if got := DifficultyBand(tt.score); got != tt.want {
			t.Errorf("score %g: expected %s, got %s", tt.score, tt.want, got)
		}
	}
}
