// Package states implements stacking status effects with override
// precedence.
//
// Every battler owns an Engine. A state is either absent (0 stacks) or
// present with 1..MaxStacks stacks. A present state whose rule overrides
// another blocks that state from being added, and adding it purges every
// stack of the states it overrides.
package states

import "slices"

// MaxStacksLimit caps any rule's MaxStacks.
const MaxStacksLimit = 99

// Timing is when a state's remaining turns tick down.
type Timing int

const (
	TimingNone Timing = iota
	TimingActionEnd
	TimingTurnEnd
)

// Rule describes how a state stacks, overrides and expires.
type Rule struct {
	ID        int
	Name      string
	MaxStacks int
	Overrides []int
	// ExpireAll drops every stack when the turn counter runs out;
	// otherwise one stack is dropped and the counter restarts.
	ExpireAll         bool
	Timing            Timing
	MinTurns          int
	MaxTurns          int
	RemoveAtBattleEnd bool
}

// Normalize clamps MaxStacks into [1,99], orders the turn range, and
// sorts and dedupes Overrides, dropping the rule's own id.
func (r *Rule) Normalize() {
	r.MaxStacks = min(max(r.MaxStacks, 1), MaxStacksLimit)
	r.MinTurns = max(r.MinTurns, 0)
	r.MaxTurns = max(r.MaxTurns, 0)
	if r.MinTurns > r.MaxTurns {
		r.MinTurns, r.MaxTurns = r.MaxTurns, r.MinTurns
	}

	ov := r.Overrides[:0]
	for _, id := range r.Overrides {
		if id > 0 && id != r.ID {
			ov = append(ov, id)
		}
	}
	slices.Sort(ov)
	r.Overrides = slices.Compact(ov)
}

// OverridesState reports whether r suppresses stateID. Overrides must be
// sorted (see Normalize).
func (r *Rule) OverridesState(stateID int) bool {
	_, ok := slices.BinarySearch(r.Overrides, stateID)
	return ok
}
