package spider

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Stack is one tableau column, ordered bottom-first.
type Stack []Card

// Top returns the topmost card. It panics on an empty stack; callers check
// length first.
func (s Stack) Top() Card { return s[len(s)-1] }

// State is a full-information game state. States are immutable: every
// transformation returns a fresh State and the slices of an existing State
// must never be modified. Slices may be shared between states.
type State struct {
	// Base is the undealt deal pile. Deals draw from the end.
	Base []Card
	// Stacks are the tableau columns.
	Stacks []Stack
	// Hidden holds the face-down prefix length of each column.
	Hidden []int
	// Finished counts completed A..K runs removed from play.
	Finished int
}

// NewState builds a state from explicit columns with every card face-up.
// Intended for tests and contrived positions.
func NewState(base []Card, stacks []Stack, finished int) *State {
	hidden := make([]int, len(stacks))
	return &State{Base: base, Stacks: stacks, Hidden: hidden, Finished: finished}
}

// IsGoal reports whether the state is won: no base cards and every column
// empty.
func (s *State) IsGoal() bool {
	if len(s.Base) > 0 {
		return false
	}
	for _, stack := range s.Stacks {
		if len(stack) > 0 {
			return false
		}
	}
	return true
}

// CardCount returns the number of cards still in play (base plus columns).
func (s *State) CardCount() int {
	n := len(s.Base)
	for _, stack := range s.Stacks {
		n += len(stack)
	}
	return n
}

// String renders the state for debug logs: the base count and each column
// with hidden cards masked.
func (s *State) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "base:%d finished:%d", len(s.Base), s.Finished)
	for i, stack := range s.Stacks {
		fmt.Fprintf(&b, "\nS%d:", i)
		for j, c := range stack {
			b.WriteString(" ")
			if j < s.Hidden[i] {
				b.WriteString("--")
			} else {
				b.WriteString(c.String())
			}
		}
	}
	return b.String()
}

// Key is a canonical state identity: a 64-bit hash for fast lookup plus the
// exact canonical encoding for collision checks. Two states are identical
// for deduplication iff their encodings match.
type Key struct {
	Hash uint64
	Enc  string
}

// Encoding separators. Card identifiers stay below 52 and hidden prefixes
// below 64, so the markers can never collide with payload bytes.
const (
	encStackMark  = 0xfd
	encHiddenMark = 0xfe
	encBaseMark   = 0xff
)

// Key computes the canonical key: base order is preserved (deal outcome
// depends on it) while columns are sorted to collapse permutation symmetry.
func (s *State) Key() Key {
	encoded := make([]string, len(s.Stacks))
	for i, stack := range s.Stacks {
		var sb strings.Builder
		sb.Grow(len(stack) + 2)
		for _, c := range stack {
			sb.WriteByte(byte(c))
		}
		sb.WriteByte(encHiddenMark)
		sb.WriteByte(byte(s.Hidden[i]))
		encoded[i] = sb.String()
	}
	sort.Strings(encoded)

	var sb strings.Builder
	sb.Grow(len(s.Base) + s.CardCount() + 3*len(encoded) + 2)
	for _, c := range s.Base {
		sb.WriteByte(byte(c))
	}
	sb.WriteByte(encBaseMark)
	for _, enc := range encoded {
		sb.WriteString(enc)
		sb.WriteByte(encStackMark)
	}
	sb.WriteByte(byte(s.Finished))

	enc := sb.String()
	return Key{Hash: xxhash.Sum64String(enc), Enc: enc}
}
