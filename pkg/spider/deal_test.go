package spider

import (
	"testing"
)

func TestNewInitialStateShape(t *testing.T) {
	st, err := NewInitialState(SeededConfig(4, 42))
	if err != nil {
		t.Fatal(err)
	}

	if got := st.CardCount(); got != TotalCards {
		t.Fatalf("expected %d cards in play, got %d", TotalCards, got)
	}
	if got := len(st.Base); got != TotalCards-DefaultInitialDealt {
		t.Errorf("expected %d base cards, got %d", TotalCards-DefaultInitialDealt, got)
	}
	if got := len(st.Stacks); got != DefaultStackCount {
		t.Fatalf("expected %d stacks, got %d", DefaultStackCount, got)
	}

	// 54 cards over 10 columns: four columns of 6, six of 5.
	for i, stack := range st.Stacks {
		want := 5
		if i < 4 {
			want = 6
		}
		if len(stack) != want {
			t.Errorf("column %d: expected %d cards, got %d", i, want, len(stack))
		}
		if st.Hidden[i] != len(stack)-1 {
			t.Errorf("column %d: expected hidden prefix %d, got %d", i, len(stack)-1, st.Hidden[i])
		}
	}
	if st.Finished != 0 {
		t.Errorf("expected finished count 0, got %d", st.Finished)
	}
}

func TestNewInitialStateDeterministic(t *testing.T) {
	a, err := NewInitialState(SeededConfig(2, 12345))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewInitialState(SeededConfig(2, 12345))
	if err != nil {
		t.Fatal(err)
	}
	if a.Key() != b.Key() {
		t.Error("expected identical deals for identical seeds")
	}

	c, err := NewInitialState(SeededConfig(2, 12346))
	if err != nil {
		t.Fatal(err)
	}
	if a.Key() == c.Key() {
		t.Error("expected different deals for different seeds")
	}
}

func TestInitCardsSuitDistribution(t *testing.T) {
	tests := []struct {
		suits  int
		counts map[int]int // suit -> piles of 13
	}{
		{1, map[int]int{0: 8}},
		{2, map[int]int{0: 4, 1: 4}},
		{3, map[int]int{0: 3, 1: 3, 2: 2}},
		{4, map[int]int{0: 2, 1: 2, 2: 2, 3: 2}},
	}
	for _, tt := range tests {
		cards := initCards(tt.suits, DefaultPiles)
		if len(cards) != TotalCards {
			t.Fatalf("suits=%d: expected %d cards, got %d", tt.suits, TotalCards, len(cards))
		}
		perSuit := map[int]int{}
		for _, c := range cards {
			perSuit[c.Suit()]++
		}
		for suit, piles := range tt.counts {
			if got := perSuit[suit]; got != piles*RanksPerSuit {
				t.Errorf("suits=%d suit=%d: expected %d cards, got %d", tt.suits, suit, piles*RanksPerSuit, got)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected default config to validate, got %v", err)
	}

	cfg.Suits = 5
	if err := cfg.Validate(); err == nil {
		t.Error("expected 5 suits to be rejected")
	}
	cfg.Suits = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected 0 suits to be rejected")
	}
}
