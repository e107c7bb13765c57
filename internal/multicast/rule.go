// Package multicast runs the turn-scoped session in which a battler picks
// several skills to cast as extra actions in one turn.
//
//	Idle --Activate--> Selecting --Confirm--> Selecting ... --> Committing
//	                   Selecting --Cancel--> Idle (resources rolled back)
//	                   Selecting --FinishEarly--> Committing (FreeSelect only)
//
// Resources are paid on every Confirm. The session snapshots HP/MP/TP and
// (with item costs on) the party containers at activation, and Cancel
// restores that snapshot wholesale.
package multicast

import (
	"math"
	"slices"
)

// Type is the selection policy of a multicast rule.
type Type int

const (
	// FreeSelect picks any eligible skill each time, paying each pick.
	FreeSelect Type = iota
	// RepeatWithTargeting picks one skill once and chooses a target for
	// every repeat.
	RepeatWithTargeting
	// RepeatFixedTarget picks one skill and target; every repeat reuses
	// them.
	RepeatFixedTarget
)

func (t Type) String() string {
	switch t {
	case FreeSelect:
		return "free"
	case RepeatWithTargeting:
		return "repeat"
	case RepeatFixedTarget:
		return "repeat fixed"
	default:
		return "unknown"
	}
}

// Repeats reports whether t is one of the repeat types.
func (t Type) Repeats() bool { return t == RepeatWithTargeting || t == RepeatFixedTarget }

// Rule is a parsed multicast grant.
type Rule struct {
	SelectCount int
	// Eligible lists the skill ids that may be picked; empty means any.
	Eligible []int
	Type     Type
	// CostMultiplier scales every charged cost. Zero means unset.
	CostMultiplier float64
}

// Normalize clamps SelectCount to >= 1 and sorts Eligible. A zero,
// negative or non-finite multiplier becomes 1.
func (r *Rule) Normalize() {
	r.SelectCount = max(r.SelectCount, 1)
	if r.CostMultiplier <= 0 || math.IsNaN(r.CostMultiplier) || math.IsInf(r.CostMultiplier, 0) {
		r.CostMultiplier = 1
	}
	slices.Sort(r.Eligible)
	r.Eligible = slices.Compact(r.Eligible)
}

// Allows reports whether skillID may be picked under r.
func (r *Rule) Allows(skillID int) bool {
	if len(r.Eligible) == 0 {
		return skillID > 0
	}
	_, ok := slices.BinarySearch(r.Eligible, skillID)
	return ok
}
