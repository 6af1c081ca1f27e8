package solver

import (
	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// pickMacroFollowUp selects the single best follow-up move for a macro
// chain. Tier 1: a move onto a non-empty same-suit top that is not an
// immediate reverse. Tier 2, only when empty-restore is allowed: a run of at
// least MacroEmptyRestoreMinLen parked on an empty column.
func pickMacroFollowUp(st *spider.State, pol Policy, last *Action) *Transition {
	var best *Transition

	for src, stack := range st.Stacks {
		for _, idx := range spider.ValidMoveStarts(stack, st.Hidden[src]) {
			if pol.LockSameSuitRuns && splitsSameSuitRun(stack, st.Hidden[src], idx) {
				continue
			}
			movedLen := len(stack) - idx
			srcCard := stack[idx]
			for _, dest := range legalDestinations(st, src, idx) {
				destStack := st.Stacks[dest]
				if len(destStack) == 0 {
					continue
				}
				if destStack.Top().Suit() != srcCard.Suit() {
					continue
				}
				if pol.TabooImmediateReverse && isImmediateReverse(st, last, src, idx, dest, movedLen) {
					continue
				}
				tr := applyMove(st, src, idx, dest)
				tr.Priority += 20
				if best == nil || tr.Priority > best.Priority {
					best = tr
				}
			}
		}
	}

	if best != nil {
		return best
	}
	if !pol.MacroEmptyRestoreEnabled {
		return nil
	}

	for src, stack := range st.Stacks {
		for _, idx := range spider.ValidMoveStarts(stack, st.Hidden[src]) {
			movedLen := len(stack) - idx
			if movedLen < pol.MacroEmptyRestoreMinLen {
				continue
			}
			for _, dest := range legalDestinations(st, src, idx) {
				if len(st.Stacks[dest]) > 0 {
					continue
				}
				if pol.TabooImmediateReverse && isImmediateReverse(st, last, src, idx, dest, movedLen) {
					continue
				}
				tr := applyMove(st, src, idx, dest)
				tr.Priority -= 10
				if best == nil || tr.Priority > best.Priority {
					best = tr
				}
			}
		}
	}
	return best
}

// chainMacro greedily applies follow-up moves after the transition's base
// action, composing them into the single edge. A local seen-set breaks
// cycles within the chain. The transition's state, freed count, priority
// and macro step count are updated in place.
func chainMacro(tr *Transition, pol Policy) {
	if !pol.MacroChainEnabled || pol.MacroMaxSteps <= 0 {
		return
	}

	cur := tr.State
	last := tr.Action
	freedTotal := 0
	steps := 0
	localSeen := map[string]struct{}{cur.Key().Enc: {}}

	for steps < pol.MacroMaxSteps {
		follow := pickMacroFollowUp(cur, pol, &last)
		if follow == nil {
			break
		}
		enc := follow.State.Key().Enc
		if _, ok := localSeen[enc]; ok {
			break
		}
		localSeen[enc] = struct{}{}
		cur = follow.State
		freedTotal += follow.Freed
		steps++
		last = follow.Action
	}

	if steps == 0 {
		return
	}
	tr.State = cur
	tr.Freed += freedTotal
	tr.Priority += steps*18 + freedTotal*80
	tr.MacroSteps = steps
}
