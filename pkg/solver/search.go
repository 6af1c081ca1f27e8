package solver

import (
	"container/heap"
	"time"

	"github.com/vanderheijden86/spiderlab/pkg/metrics"
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// Status classifies a search outcome.
type Status string

// StopReason explains why the search loop ended.
type StopReason string

const (
	StatusSolved           Status = "solved"
	StatusProvenUnsolvable Status = "proven_unsolvable"
	StatusUnknown          Status = "unknown"
)

const (
	StopGoalReached          StopReason = "goal_reached"
	StopLimitsReached        StopReason = "limits_reached"
	StopSearchSpaceExhausted StopReason = "search_space_exhausted"
	StopPolicySpaceExhausted StopReason = "policy_space_exhausted"
)

// Limits bound a single search run. A search never errors on a limit; it
// reports status unknown with stop reason limits_reached.
type Limits struct {
	MaxNodes    int
	MaxSeconds  float64
	MaxFrontier int
}

// DefaultLimits returns the per-search defaults used by the analyzer CLI.
func DefaultLimits() Limits {
	return Limits{MaxNodes: 200_000, MaxSeconds: 2.0, MaxFrontier: 500_000}
}

// Result is the full outcome of one search run: classification, the
// solution path when solved, and aggregate telemetry.
type Result struct {
	Status     Status
	StopReason StopReason

	Solution       []Action
	SolutionStates []*spider.State

	ExpandedNodes          int
	GeneratedNodes         int
	UniqueStates           int
	MaxFrontier            int
	DeadEndNodes           int
	DuplicateStatesSkipped int
	AvgBranching           float64
	ElapsedMS              float64
	MaxDepth               int

	SolutionRevealed int
	SolutionFreed    int
	SolutionDeals    int
}

// potential estimates how close a state is to won, used inside the
// best-first ordering. Higher is better.
func potential(st *spider.State) int {
	emptyCols := 0
	sameSuitLinks := 0
	anySuitLinks := 0
	breakpoints := 0

	for _, stack := range st.Stacks {
		if len(stack) == 0 {
			emptyCols++
			continue
		}
		ss, aa := 0, 0
		for i := 1; i < len(stack); i++ {
			if spider.DescendingStep(stack[i-1], stack[i]) {
				aa++
				if stack[i-1].Suit() == stack[i].Suit() {
					ss++
				}
			}
		}
		sameSuitLinks += ss
		anySuitLinks += aa
		if bp := len(stack) - 1 - aa; bp > 0 {
			breakpoints += bp
		}
	}

	return st.Finished*400 -
		len(st.Base)*5 +
		emptyCols*12 +
		sameSuitLinks*5 +
		anySuitLinks*2 -
		breakpoints
}

// frontierItem orders the heap by f, with an insertion counter breaking
// ties FIFO so results are stable across runs.
type frontierItem struct {
	f       int
	counter int
	depth   int
	state   *spider.State
}

type frontierHeap []frontierItem

func (h frontierHeap) Len() int { return len(h) }

func (h frontierHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].counter < h[j].counter
}

func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *frontierHeap) Push(x any) { *h = append(*h, x.(frontierItem)) }

func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// keySet is the closed set: canonical hashes with exact-encoding collision
// checks.
type keySet struct {
	m    map[uint64][]string
	size int
}

func newKeySet() *keySet {
	return &keySet{m: make(map[uint64][]string)}
}

// Add inserts the key and reports whether it was new.
func (ks *keySet) Add(k spider.Key) bool {
	slot := ks.m[k.Hash]
	for _, enc := range slot {
		if enc == k.Enc {
			return false
		}
	}
	ks.m[k.Hash] = append(slot, k.Enc)
	ks.size++
	return true
}

func (ks *keySet) Len() int { return ks.size }

type parentEdge struct {
	prev *spider.State
	tr   *Transition
}

// reconstruct walks parent pointers from the goal back to the root.
func reconstruct(goal *spider.State, parent map[*spider.State]parentEdge) (actions []Action, states []*spider.State, revealed, freed, deals int) {
	states = append(states, goal)
	cur := goal
	for {
		edge := parent[cur]
		if edge.tr == nil {
			break
		}
		actions = append(actions, edge.tr.Action)
		states = append(states, edge.prev)
		revealed += edge.tr.Revealed
		freed += edge.tr.Freed
		if edge.tr.Action.Kind == ActionDeal {
			deals++
		}
		cur = edge.prev
	}
	for i, j := 0, len(actions)-1; i < j; i, j = i+1, j-1 {
		actions[i], actions[j] = actions[j], actions[i]
	}
	for i, j := 0, len(states)-1; i < j; i, j = i+1, j-1 {
		states[i], states[j] = states[j], states[i]
	}
	return actions, states, revealed, freed, deals
}

// Solve runs the best-first search from initial under the policy and
// limits. The search owns all graph memory; nothing is shared or retained
// after return. It is strictly single-threaded.
func Solve(initial *spider.State, limits Limits, pol Policy) *Result {
	defer metrics.Timer(metrics.Search)()
	start := time.Now()

	if initial.IsGoal() {
		return &Result{
			Status:         StatusSolved,
			StopReason:     StopGoalReached,
			SolutionStates: []*spider.State{initial},
			GeneratedNodes: 1,
			UniqueStates:   1,
			MaxFrontier:    1,
		}
	}

	counter := 0
	parent := map[*spider.State]parentEdge{initial: {}}
	seen := newKeySet()
	seen.Add(initial.Key())

	frontier := frontierHeap{{f: -potential(initial), counter: counter, depth: 0, state: initial}}
	heap.Init(&frontier)

	expanded := 0
	generated := 1
	maxFrontier := 1
	deadEnds := 0
	duplicates := 0
	maxDepth := 0
	totalBranching := 0
	hitLimits := false

	for frontier.Len() > 0 {
		if expanded >= limits.MaxNodes {
			hitLimits = true
			break
		}
		if time.Since(start).Seconds() >= limits.MaxSeconds {
			hitLimits = true
			break
		}
		if frontier.Len() > limits.MaxFrontier {
			hitLimits = true
			break
		}

		item := heap.Pop(&frontier).(frontierItem)
		st := item.state

		if st.IsGoal() {
			actions, states, revealed, freed, deals := reconstruct(st, parent)
			return &Result{
				Status:                 StatusSolved,
				StopReason:             StopGoalReached,
				Solution:               actions,
				SolutionStates:         states,
				ExpandedNodes:          expanded,
				GeneratedNodes:         generated,
				UniqueStates:           seen.Len(),
				MaxFrontier:            maxFrontier,
				DeadEndNodes:           deadEnds,
				DuplicateStatesSkipped: duplicates,
				AvgBranching:           branching(totalBranching, expanded),
				ElapsedMS:              float64(time.Since(start).Microseconds()) / 1000.0,
				MaxDepth:               maxDepth,
				SolutionRevealed:       revealed,
				SolutionFreed:          freed,
				SolutionDeals:          deals,
			}
		}

		var incoming *Action
		if edge := parent[st]; edge.tr != nil {
			incoming = &edge.tr.Action
		}
		transitions := Transitions(st, pol, incoming)
		expanded++
		totalBranching += len(transitions)

		if len(transitions) == 0 {
			deadEnds++
			continue
		}

		for _, tr := range transitions {
			if !seen.Add(tr.Key) {
				duplicates++
				continue
			}
			parent[tr.State] = parentEdge{prev: st, tr: tr}
			nextDepth := item.depth + 1
			if nextDepth > maxDepth {
				maxDepth = nextDepth
			}

			counter++
			f := nextDepth*4 - potential(tr.State) - tr.Priority
			heap.Push(&frontier, frontierItem{f: f, counter: counter, depth: nextDepth, state: tr.State})
			generated++
		}

		if frontier.Len() > maxFrontier {
			maxFrontier = frontier.Len()
		}
	}

	status := StatusUnknown
	stopReason := StopLimitsReached
	if !hitLimits {
		if pol.Complete() {
			status = StatusProvenUnsolvable
			stopReason = StopSearchSpaceExhausted
		} else {
			stopReason = StopPolicySpaceExhausted
		}
	}

	return &Result{
		Status:                 status,
		StopReason:             stopReason,
		ExpandedNodes:          expanded,
		GeneratedNodes:         generated,
		UniqueStates:           seen.Len(),
		MaxFrontier:            maxFrontier,
		DeadEndNodes:           deadEnds,
		DuplicateStatesSkipped: duplicates,
		AvgBranching:           branching(totalBranching, expanded),
		ElapsedMS:              float64(time.Since(start).Microseconds()) / 1000.0,
		MaxDepth:               maxDepth,
	}
}

func branching(total, expanded int) float64 {
	if expanded == 0 {
		return 0
	}
	return float64(total) / float64(expanded)
}
