package spider

import (
	"math/rand"
	"testing"

	"pgregory.net/rapid"
)

func TestIsGoal(t *testing.T) {
	empty := NewState(nil, []Stack{{}, {}}, 8)
	if !empty.IsGoal() {
		t.Error("expected empty state to be the goal")
	}

	withBase := NewState([]Card{CardOf(0, 0)}, []Stack{{}, {}}, 7)
	if withBase.IsGoal() {
		t.Error("expected state with base cards not to be the goal")
	}

	withStack := NewState(nil, []Stack{{CardOf(0, 0)}, {}}, 7)
	if withStack.IsGoal() {
		t.Error("expected state with tableau cards not to be the goal")
	}
}

func TestKeyIgnoresColumnOrder(t *testing.T) {
	a := &State{
		Base:     []Card{CardOf(0, 4), CardOf(1, 4)},
		Stacks:   []Stack{{CardOf(0, 0), CardOf(0, 1)}, {CardOf(2, 7)}, {}},
		Hidden:   []int{1, 0, 0},
		Finished: 2,
	}
	b := &State{
		Base:     []Card{CardOf(0, 4), CardOf(1, 4)},
		Stacks:   []Stack{{CardOf(2, 7)}, {}, {CardOf(0, 0), CardOf(0, 1)}},
		Hidden:   []int{0, 0, 1},
		Finished: 2,
	}
	if a.Key() != b.Key() {
		t.Error("expected permuted columns to share a canonical key")
	}
}

func TestKeySensitiveToHiddenPrefix(t *testing.T) {
	a := &State{
		Base:   nil,
		Stacks: []Stack{{CardOf(0, 3), CardOf(0, 2)}},
		Hidden: []int{0},
	}
	b := &State{
		Base:   nil,
		Stacks: []Stack{{CardOf(0, 3), CardOf(0, 2)}},
		Hidden: []int{1},
	}
	if a.Key() == b.Key() {
		t.Error("expected hidden-prefix change to change the key")
	}
}

func TestKeySensitiveToBaseOrder(t *testing.T) {
	a := &State{
		Base:   []Card{CardOf(0, 0), CardOf(0, 1)},
		Stacks: []Stack{{}},
		Hidden: []int{0},
	}
	b := &State{
		Base:   []Card{CardOf(0, 1), CardOf(0, 0)},
		Stacks: []Stack{{}},
		Hidden: []int{0},
	}
	if a.Key() == b.Key() {
		t.Error("expected base order to be part of the key")
	}
}

// drawState generates a small arbitrary state for property tests.
func drawState(t *rapid.T) *State {
	stackCount := rapid.IntRange(1, 10).Draw(t, "stackCount")
	stacks := make([]Stack, stackCount)
	hidden := make([]int, stackCount)
	for i := range stacks {
		n := rapid.IntRange(0, 6).Draw(t, "stackLen")
		for j := 0; j < n; j++ {
			stacks[i] = append(stacks[i], Card(rapid.IntRange(0, 51).Draw(t, "card")))
		}
		if n > 0 {
			hidden[i] = rapid.IntRange(0, n-1).Draw(t, "hidden")
		}
	}
	baseLen := rapid.IntRange(0, 8).Draw(t, "baseLen")
	base := make([]Card, baseLen)
	for i := range base {
		base[i] = Card(rapid.IntRange(0, 51).Draw(t, "baseCard"))
	}
	return &State{
		Base:     base,
		Stacks:   stacks,
		Hidden:   hidden,
		Finished: rapid.IntRange(0, 8).Draw(t, "finished"),
	}
}

func TestKeyPermutationInvariance(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		st := drawState(t)
		key := st.Key()

		rng := rand.New(rand.NewSource(rapid.Int64().Draw(t, "permSeed")))
		perm := rng.Perm(len(st.Stacks))
		stacks := make([]Stack, len(st.Stacks))
		hidden := make([]int, len(st.Hidden))
		for i, p := range perm {
			stacks[i] = st.Stacks[p]
			hidden[i] = st.Hidden[p]
		}
		permuted := &State{Base: st.Base, Stacks: stacks, Hidden: hidden, Finished: st.Finished}

		if permuted.Key() != key {
			t.Fatalf("permuting columns changed the canonical key")
		}
	})
}
