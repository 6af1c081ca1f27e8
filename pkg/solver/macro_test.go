package solver

import (
	"testing"

	"github.com/vanderheijden86/spiderlab/pkg/spider"
)

// chainable sets up a position where the base move ♠4→♠5 exposes a
// same-suit follow-up ♠5♠4→♠6.
func chainable() *spider.State {
	return &spider.State{
		Stacks: []spider.Stack{
			{card(1, 9), card(0, 3)},
			{card(0, 4)},
			{card(0, 5)},
		},
		Hidden: []int{0, 0, 0},
	}
}

func TestMacroChainsFollowUps(t *testing.T) {
	trs := Transitions(chainable(), DefaultPolicy(), nil)

	var chained *Transition
	for _, tr := range trs {
		if tr.MacroSteps > 0 {
			chained = tr
			break
		}
	}
	if chained == nil {
		t.Fatal("expected at least one transition with macro follow-ups")
	}
	// The chain should have consolidated the ♠6..♠4 run on one column.
	found := false
	for _, stack := range chained.State.Stacks {
		if len(stack) >= 3 {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a consolidated run, got %v", chained.State.Stacks)
	}
}

func TestMacroDisabled(t *testing.T) {
	pol := DefaultPolicy()
	pol.MacroChainEnabled = false
	for _, tr := range Transitions(chainable(), pol, nil) {
		if tr.MacroSteps != 0 {
			t.Fatalf("expected no macro steps with chaining disabled, got %d", tr.MacroSteps)
		}
	}
}

func TestMacroBoostsPriority(t *testing.T) {
	st := chainable()
	base := DefaultPolicy()
	base.MacroChainEnabled = false
	plain := Transitions(st, base, nil)
	chained := Transitions(st, DefaultPolicy(), nil)

	maxPlain := 0
	for _, tr := range plain {
		if tr.Priority > maxPlain {
			maxPlain = tr.Priority
		}
	}
	maxChained := 0
	for _, tr := range chained {
		if tr.Priority > maxChained {
			maxChained = tr.Priority
		}
	}
	if maxChained <= maxPlain {
		t.Errorf("expected macro boost to raise the best priority: %d vs %d", maxChained, maxPlain)
	}
}

func TestMacroStopsAtStepBudget(t *testing.T) {
	pol := DefaultPolicy()
	pol.MacroMaxSteps = 1
	for _, tr := range Transitions(chainable(), pol, nil) {
		if tr.MacroSteps > 1 {
			t.Fatalf("expected at most one macro step, got %d", tr.MacroSteps)
		}
	}
}
