// Package solver implements the Spider search engine: legal-transition
// generation with human-plausibility pruning, greedy macro composition,
// best-first search with strict canonical deduplication, and the staged
// strict→balanced→wide planner.
package solver

// Policy is the set of pruning switches and thresholds a search runs under.
// The zero value disables everything; use DefaultPolicy for the strict
// human-like profile.
type Policy struct {
	// LockSameSuitRuns rejects moves whose start index splits an existing
	// same-suit run below.
	LockSameSuitRuns bool
	// RequireSameSuitDest drops non-same-suit destinations whenever at least
	// one legal destination has a same-suit top.
	RequireSameSuitDest bool
	// AvoidEmptyForShortMoves drops empty destinations for runs shorter than
	// MinLenForEmptyMove while a non-empty destination exists.
	AvoidEmptyForShortMoves bool
	MinLenForEmptyMove      int
	// DeferDealUntilNoMoves drops the deal transition while any move passes
	// the filter.
	DeferDealUntilNoMoves bool
	// LimitEmptyDestinations keeps at most one empty destination per
	// (source, length); empty columns are symmetric.
	LimitEmptyDestinations bool
	// MacroChainEnabled turns on greedy follow-up chaining.
	MacroChainEnabled bool
	MacroMaxSteps     int
	// MacroEmptyRestoreEnabled lets a macro end by parking a long run onto
	// an empty column.
	MacroEmptyRestoreEnabled bool
	MacroEmptyRestoreMinLen  int
	// TabooImmediateReverse rejects the move that exactly undoes the action
	// that produced the current state.
	TabooImmediateReverse bool
}

// DefaultPolicy is the strict profile: every human-plausibility prune on.
func DefaultPolicy() Policy {
	return Policy{
		LockSameSuitRuns:         true,
		RequireSameSuitDest:      true,
		AvoidEmptyForShortMoves:  true,
		MinLenForEmptyMove:       3,
		DeferDealUntilNoMoves:    true,
		LimitEmptyDestinations:   true,
		MacroChainEnabled:        true,
		MacroMaxSteps:            4,
		MacroEmptyRestoreEnabled: true,
		MacroEmptyRestoreMinLen:  5,
		TabooImmediateReverse:    true,
	}
}

// Complete reports whether the policy prunes only by symmetry and tabu.
// Only a complete policy may conclude proven_unsolvable from an exhausted
// frontier.
func (p Policy) Complete() bool {
	return !(p.LockSameSuitRuns ||
		p.RequireSameSuitDest ||
		p.AvoidEmptyForShortMoves ||
		p.DeferDealUntilNoMoves)
}
