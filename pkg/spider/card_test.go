package spider

import (
	"reflect"
	"testing"
)

func TestCardDecoding(t *testing.T) {
	tests := []struct {
		card Card
		suit int
		rank int
	}{
		{0, 0, 0},   // ♠A
		{12, 0, 12}, // ♠K
		{13, 1, 0},  // ♥A
		{25, 1, 12}, // ♥K
		{51, 3, 12}, // ♦K
	}
	for _, tt := range tests {
		if got := tt.card.Suit(); got != tt.suit {
			t.Errorf("card %d: expected suit %d, got %d", tt.card, tt.suit, got)
		}
		if got := tt.card.Rank(); got != tt.rank {
			t.Errorf("card %d: expected rank %d, got %d", tt.card, tt.rank, got)
		}
	}
}

func TestSuitColorParity(t *testing.T) {
	if CardOf(0, 5).Red() {
		t.Error("expected spades to be black")
	}
	if !CardOf(1, 5).Red() {
		t.Error("expected hearts to be red")
	}
}

func TestSequenceSteps(t *testing.T) {
	two := CardOf(0, 1)
	aceSpades := CardOf(0, 0)
	aceHearts := CardOf(1, 0)

	if !DescendingStep(two, aceSpades) {
		t.Error("expected ♠2/♠A to be a descending step")
	}
	if !DescendingStep(two, aceHearts) {
		t.Error("expected ♠2/♥A to be a descending step")
	}
	if !SameSuitStep(two, aceSpades) {
		t.Error("expected ♠2/♠A to be a same-suit step")
	}
	if SameSuitStep(two, aceHearts) {
		t.Error("expected ♠2/♥A not to be a same-suit step")
	}
	if DescendingStep(aceSpades, two) {
		t.Error("expected ♠A/♠2 not to be a descending step")
	}
}

func TestValidMoveStarts(t *testing.T) {
	tests := []struct {
		name   string
		stack  Stack
		hidden int
		want   []int
	}{
		{
			name:  "empty stack",
			stack: Stack{},
			want:  nil,
		},
		{
			name:  "single card",
			stack: Stack{CardOf(0, 5)},
			want:  []int{0},
		},
		{
			name:  "full same-suit run",
			stack: Stack{CardOf(0, 3), CardOf(0, 2), CardOf(0, 1)},
			want:  []int{0, 1, 2},
		},
		{
			name:  "run broken by suit",
			stack: Stack{CardOf(1, 3), CardOf(0, 2), CardOf(0, 1)},
			want:  []int{1, 2},
		},
		{
			name:  "run broken by rank",
			stack: Stack{CardOf(0, 7), CardOf(0, 2), CardOf(0, 1)},
			want:  []int{1, 2},
		},
		{
			name:   "hidden prefix cuts the run",
			stack:  Stack{CardOf(0, 3), CardOf(0, 2), CardOf(0, 1)},
			hidden: 2,
			want:   []int{2},
		},
		{
			name:   "all hidden",
			stack:  Stack{CardOf(0, 3)},
			hidden: 1,
			want:   nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidMoveStarts(tt.stack, tt.hidden)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}
