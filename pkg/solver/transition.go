package solver

import (
	"sort"

	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// Transition is one search edge: the action, the resulting state after any
// macro follow-ups, its side-effect counts, the exploration priority and the
// canonical key of the resulting state.
type Transition struct {
	Action     Action
	State      *spider.State
	Revealed   int
	Freed      int
	Priority   int
	MacroSteps int
	Key        spider.Key
}

// movePriority scores a move for exploration ordering; higher explores
// first. The constants are tuned against mined seed pools and shape the
// search order, and through it the node counts the difficulty scorer
// weighs, so they are not adjusted casually.
func movePriority(st *spider.State, src, idx, dest, movedLen, freed int) int {
	srcStack := st.Stacks[src]
	destStack := st.Stacks[dest]
	srcCard := srcStack[idx]

	score := 40 + movedLen*3 + freed*150

	if len(destStack) == 0 {
		score -= 18
		if movedLen <= 2 {
			score -= 10
		}
	} else if destStack.Top().Suit() == srcCard.Suit() {
		score += 14
	}

	if idx > 0 {
		below := srcStack[idx-1]
		if spider.SameSuitStep(below, srcCard) {
			score -= 12
		}
	}

	if movedLen >= 6 {
		score += 10
	}
	if idx == 0 {
		score += 6
	}
	return score
}

func dealPriority(freed int) int { return -15 + freed*140 }

// applyMove wraps the state transform into a Transition with priority and
// action metadata.
func applyMove(st *spider.State, src, idx, dest int) *Transition {
	movedLen := len(st.Stacks[src]) - idx
	eff := st.ApplyMove(src, idx, dest)
	return &Transition{
		Action: Action{
			Kind:      ActionMove,
			SrcStack:  src,
			SrcIdx:    idx,
			DestStack: dest,
			MovedLen:  movedLen,
		},
		State:    eff.State,
		Revealed: eff.Revealed,
		Freed:    eff.Freed,
		Priority: movePriority(st, src, idx, dest, movedLen, eff.Freed),
	}
}

// applyDeal wraps the deal transform, or returns nil when the base is empty.
func applyDeal(st *spider.State) *Transition {
	eff, ok := st.ApplyDeal()
	if !ok {
		return nil
	}
	return &Transition{
		Action:   Action{Kind: ActionDeal, DrawCount: eff.DrawCount},
		State:    eff.State,
		Revealed: eff.Revealed,
		Freed:    eff.Freed,
		Priority: dealPriority(eff.Freed),
	}
}

// splitsSameSuitRun reports whether starting a move at idx would break a
// face-up same-suit link below it.
func splitsSameSuitRun(stack spider.Stack, hiddenPrefix, idx int) bool {
	if idx <= 0 {
		return false
	}
	if idx-1 < hiddenPrefix {
		return false
	}
	return spider.SameSuitStep(stack[idx-1], stack[idx])
}

// legalDestinations lists every column the run at (src, idx) may land on.
func legalDestinations(st *spider.State, src, idx int) []int {
	srcRank := st.Stacks[src][idx].Rank()
	dests := make([]int, 0, len(st.Stacks))
	for d := range st.Stacks {
		if d == src {
			continue
		}
		destStack := st.Stacks[d]
		if len(destStack) == 0 || destStack.Top().Rank() == srcRank+1 {
			dests = append(dests, d)
		}
	}
	return dests
}

// filterDestinations applies the same-suit-preference and empty-avoidance
// prunes to a destination list.
func filterDestinations(st *spider.State, src, idx int, dests []int, movedLen int, pol Policy) []int {
	if len(dests) == 0 {
		return dests
	}
	srcCard := st.Stacks[src][idx]
	filtered := dests

	if pol.RequireSameSuitDest {
		sameSuit := filtered[:0:0]
		for _, d := range filtered {
			destStack := st.Stacks[d]
			if len(destStack) == 0 {
				continue
			}
			if destStack.Top().Suit() == srcCard.Suit() {
				sameSuit = append(sameSuit, d)
			}
		}
		if len(sameSuit) > 0 {
			filtered = sameSuit
		}
	}

	if pol.AvoidEmptyForShortMoves && movedLen < pol.MinLenForEmptyMove {
		nonEmpty := filtered[:0:0]
		for _, d := range filtered {
			if len(st.Stacks[d]) > 0 {
				nonEmpty = append(nonEmpty, d)
			}
		}
		if len(nonEmpty) > 0 {
			filtered = nonEmpty
		}
	}

	return filtered
}

// isImmediateReverse reports whether the candidate move exactly undoes
// last: mirrored src/dest, equal length, and a source index that matches
// what the reverse would produce.
func isImmediateReverse(st *spider.State, last *Action, src, idx, dest, movedLen int) bool {
	if last == nil || last.Kind != ActionMove {
		return false
	}
	if src != last.DestStack || dest != last.SrcStack {
		return false
	}
	if movedLen != last.MovedLen {
		return false
	}
	return idx == len(st.Stacks[src])-movedLen
}

// Transitions enumerates the candidate edges out of st under pol. Within
// the expansion, transitions are deduplicated by the canonical key of their
// resulting state (highest priority wins) and returned in descending
// priority order. last is the action that produced st, used by the tabu
// prune; nil for the root.
func Transitions(st *spider.State, pol Policy, last *Action) []*Transition {
	// Insertion order is kept so that equal-priority transitions sort the
	// same way on every run.
	var order []*Transition
	index := make(map[uint64][]int)
	generatedMoves := 0

	record := func(tr *Transition) {
		tr.Key = tr.State.Key()
		for _, i := range index[tr.Key.Hash] {
			if order[i].Key.Enc == tr.Key.Enc {
				if tr.Priority > order[i].Priority {
					order[i] = tr
				}
				return
			}
		}
		index[tr.Key.Hash] = append(index[tr.Key.Hash], len(order))
		order = append(order, tr)
	}

	for src, stack := range st.Stacks {
		for _, idx := range spider.ValidMoveStarts(stack, st.Hidden[src]) {
			if pol.LockSameSuitRuns && splitsSameSuitRun(stack, st.Hidden[src], idx) {
				continue
			}

			movedLen := len(stack) - idx
			dests := legalDestinations(st, src, idx)
			dests = filterDestinations(st, src, idx, dests, movedLen, pol)

			usedEmptyDest := false
			for _, dest := range dests {
				if pol.TabooImmediateReverse && isImmediateReverse(st, last, src, idx, dest, movedLen) {
					continue
				}
				if pol.LimitEmptyDestinations && len(st.Stacks[dest]) == 0 {
					if usedEmptyDest {
						continue
					}
					usedEmptyDest = true
				}
				tr := applyMove(st, src, idx, dest)
				chainMacro(tr, pol)
				record(tr)
				generatedMoves++
			}
		}
	}

	allowDeal := true
	if pol.DeferDealUntilNoMoves && generatedMoves > 0 {
		allowDeal = false
	}
	if allowDeal {
		if tr := applyDeal(st); tr != nil {
			chainMacro(tr, pol)
			record(tr)
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return order[i].Priority > order[j].Priority
	})
	return order
}

// CountLegalActions counts every legal move plus the deal, ignoring policy.
// The difficulty scorer uses it to measure choice pressure along a solution
// path.
func CountLegalActions(st *spider.State) int {
	total := 0
	for src, stack := range st.Stacks {
		for _, idx := range spider.ValidMoveStarts(stack, st.Hidden[src]) {
			srcRank := stack[idx].Rank()
			for d, destStack := range st.Stacks {
				if d == src {
					continue
				}
				if len(destStack) == 0 || destStack.Top().Rank() == srcRank+1 {
					total++
				}
			}
		}
	}
	if len(st.Base) > 0 {
		total++
	}
	return total
}
