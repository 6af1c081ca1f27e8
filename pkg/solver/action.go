package solver

import (
	"fmt"
)

// ActionKind discriminates the two player actions.
type ActionKind uint8

const (
	// ActionMove relocates a same-suit run between columns.
	ActionMove ActionKind = iota
	// ActionDeal draws one card per column from the base.
	ActionDeal
)

// Action is a single player action in solver notation.
type Action struct {
	Kind      ActionKind
	SrcStack  int
	SrcIdx    int
	DestStack int
	MovedLen  int
	DrawCount int
}

// Notation renders the action: DEAL(k) or MOVE(S{src}:{idx}->S{dest},len={n}).
func (a Action) Notation() string {
	if a.Kind == ActionDeal {
		return fmt.Sprintf("DEAL(%d)", a.DrawCount)
	}
	return fmt.Sprintf("MOVE(S%d:%d->S%d,len=%d)", a.SrcStack, a.SrcIdx, a.DestStack, a.MovedLen)
}

// ParseAction parses solver notation back into an Action. Emitting the
// parsed action reproduces the input exactly.
func ParseAction(s string) (Action, error) {
	var a Action
	if n, err := fmt.Sscanf(s, "DEAL(%d)", &a.DrawCount); err == nil && n == 1 {
		a.Kind = ActionDeal
		if a.Notation() != s {
			return Action{}, fmt.Errorf("malformed deal notation %q", s)
		}
		return a, nil
	}
	n, err := fmt.Sscanf(s, "MOVE(S%d:%d->S%d,len=%d)", &a.SrcStack, &a.SrcIdx, &a.DestStack, &a.MovedLen)
	if err != nil || n != 4 {
		return Action{}, fmt.Errorf("unrecognized action notation %q", s)
	}
	a.Kind = ActionMove
	if a.Notation() != s {
		return Action{}, fmt.Errorf("malformed move notation %q", s)
	}
	return a, nil
}
