package spider

// Effect is the outcome of applying an action to a state: the successor
// state plus the reveal and free side effects that occurred, including the
// auto-free cascade.
type Effect struct {
	State     *State
	Revealed  int
	Freed     int
	DrawCount int
}

// IsValidRun reports whether stack[idx:] is a movable same-suit descending
// run starting at or above the hidden prefix.
func IsValidRun(stack Stack, hiddenPrefix, idx int) bool {
	if idx < 0 || idx >= len(stack) {
		return false
	}
	if idx < hiddenPrefix {
		return false
	}
	for i := idx + 1; i < len(stack); i++ {
		if !SameSuitStep(stack[i-1], stack[i]) {
			return false
		}
	}
	return true
}

// CanMove reports whether the run at (src, idx) may legally land on dest:
// the run is movable and dest is empty or its top is the descending
// successor of the run's bottom card.
func (s *State) CanMove(src, idx, dest int) bool {
	if src < 0 || src >= len(s.Stacks) || dest < 0 || dest >= len(s.Stacks) || src == dest {
		return false
	}
	if !IsValidRun(s.Stacks[src], s.Hidden[src], idx) {
		return false
	}
	destStack := s.Stacks[dest]
	if len(destStack) == 0 {
		return true
	}
	return destStack.Top().Rank() == s.Stacks[src][idx].Rank()+1
}

// freeOnce removes one completed A..K run from the top of the stack if the
// whole run is face-up (the card left underneath, if any, may be face-down; it
// is then revealed). Returns the new stack, the re-clamped hidden prefix,
// whether a free happened, and how many cards it revealed.
func freeOnce(stack Stack, hiddenPrefix int) (Stack, int, bool, int) {
	if len(stack) < RanksPerSuit {
		return stack, hiddenPrefix, false, 0
	}
	if len(stack)-RanksPerSuit < hiddenPrefix {
		return stack, hiddenPrefix, false, 0
	}

	suit := stack.Top().Suit()
	for i := 0; i < RanksPerSuit; i++ {
		c := stack[len(stack)-i-1]
		if c.Suit() != suit || c.Rank() != i {
			return stack, hiddenPrefix, false, 0
		}
	}

	newStack := stack[:len(stack)-RanksPerSuit]
	newHidden := min(hiddenPrefix, len(newStack))
	revealed := 0
	if len(newStack) > 0 && newHidden >= len(newStack) {
		newHidden = len(newStack) - 1
		revealed = 1
	}
	return newStack, newHidden, true, revealed
}

// autoFree applies freeOnce across every column until no column changes.
// Each pass strictly shrinks the card count, so the loop terminates.
func autoFree(stacks []Stack, hidden []int, finished int) ([]Stack, []int, int, int, int) {
	freedTotal := 0
	revealedTotal := 0
	changed := true
	for changed {
		changed = false
		for i := range stacks {
			newStack, newHidden, didFree, revealed := freeOnce(stacks[i], hidden[i])
			if !didFree {
				continue
			}
			changed = true
			freedTotal++
			finished++
			stacks[i] = newStack
			hidden[i] = newHidden
			revealedTotal += revealed
		}
	}
	return stacks, hidden, finished, freedTotal, revealedTotal
}

// ApplyMove moves the run at (src, idx) onto dest and runs the auto-free
// cascade. The receiver is never mutated; unchanged columns are shared with
// the successor state. The move must already be legal.
func (s *State) ApplyMove(src, idx, dest int) Effect {
	stacks := make([]Stack, len(s.Stacks))
	copy(stacks, s.Stacks)
	hidden := make([]int, len(s.Hidden))
	copy(hidden, s.Hidden)

	moving := stacks[src][idx:]
	newSrc := stacks[src][:idx:idx]
	hidden[src] = min(hidden[src], len(newSrc))
	revealed := 0
	if len(newSrc) > 0 && hidden[src] >= len(newSrc) {
		hidden[src] = len(newSrc) - 1
		revealed = 1
	}

	newDest := make(Stack, 0, len(stacks[dest])+len(moving))
	newDest = append(newDest, stacks[dest]...)
	newDest = append(newDest, moving...)
	hidden[dest] = min(hidden[dest], len(newDest))

	stacks[src] = newSrc
	stacks[dest] = newDest

	stacks, hidden, finished, freed, freeRevealed := autoFree(stacks, hidden, s.Finished)
	revealed += freeRevealed

	return Effect{
		State: &State{
			Base:     s.Base,
			Stacks:   stacks,
			Hidden:   hidden,
			Finished: finished,
		},
		Revealed: revealed,
		Freed:    freed,
	}
}

// ApplyDeal draws min(stackCount, len(base)) cards round-robin starting at
// column 0 and runs the auto-free cascade. Returns false when the base is
// empty.
func (s *State) ApplyDeal() (Effect, bool) {
	drawCount := min(len(s.Stacks), len(s.Base))
	if drawCount <= 0 {
		return Effect{}, false
	}

	base := s.Base[:len(s.Base)-drawCount]
	stacks := make([]Stack, len(s.Stacks))
	hidden := make([]int, len(s.Hidden))
	copy(hidden, s.Hidden)
	for i := range s.Stacks {
		if i < drawCount {
			grown := make(Stack, 0, len(s.Stacks[i])+1)
			grown = append(grown, s.Stacks[i]...)
			stacks[i] = grown
		} else {
			stacks[i] = s.Stacks[i]
		}
	}

	dest := 0
	for i := 0; i < drawCount; i++ {
		card := s.Base[len(s.Base)-1-i]
		stacks[dest] = append(stacks[dest], card)
		hidden[dest] = min(hidden[dest], len(stacks[dest])-1)
		dest++
		if dest >= len(stacks) {
			dest = 0
		}
	}

	stacks, hidden, finished, freed, revealed := autoFree(stacks, hidden, s.Finished)

	return Effect{
		State: &State{
			Base:     base,
			Stacks:   stacks,
			Hidden:   hidden,
			Finished: finished,
		},
		Revealed:  revealed,
		Freed:     freed,
		DrawCount: drawCount,
	}, true
}
