package states

import (
	"log/slog"
	"slices"

	"github.com/udisondev/gamerules/internal/dice"
)

// Outcome is the result of Add.
type Outcome int

const (
	// OutcomeInvalid: unknown state id, nothing happened.
	OutcomeInvalid Outcome = iota
	// OutcomeOverridden: a present state overrides this one.
	OutcomeOverridden
	// OutcomeResisted: the host refused the state.
	OutcomeResisted
	// OutcomeAdded: a new stack was applied.
	OutcomeAdded
	// OutcomeRefreshed: already at max stacks, turns were reset.
	OutcomeRefreshed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOverridden:
		return "overridden"
	case OutcomeResisted:
		return "resisted"
	case OutcomeAdded:
		return "added"
	case OutcomeRefreshed:
		return "refreshed"
	default:
		return "invalid"
	}
}

// Applied reports whether the state is on the battler after Add.
func (o Outcome) Applied() bool { return o == OutcomeAdded || o == OutcomeRefreshed }

// Catalog looks up state rules.
type Catalog interface {
	StateRule(id int) (*Rule, bool)
}

// Host is the battler side of the engine: native eligibility and the
// side effects of applying and removing states.
type Host interface {
	// CanAdd is the host's own check (resistances, immunities).
	CanAdd(stateID int) bool
	// OnApplied runs for every new stack; stacks is the new count.
	OnApplied(stateID, stacks int)
	// OnRefreshed runs when an add hits the stack cap.
	OnRefreshed(stateID int)
	// OnRemoved runs when the last stack is gone.
	OnRemoved(stateID int)
}

// Stack is one present state in a snapshot.
type Stack struct {
	StateID int
	Stacks  int
	Turns   int
}

// Engine tracks one battler's stacks. It is owned by that battler and is
// not safe for concurrent use; Host callbacks may call back into it.
type Engine struct {
	catalog Catalog
	host    Host
	src     dice.Source

	stacks map[int]int
	turns  map[int]int
}

// NewEngine creates an engine. src rolls state durations; when nil the
// maximum duration is used.
func NewEngine(catalog Catalog, host Host, src dice.Source) *Engine {
	return &Engine{
		catalog: catalog,
		host:    host,
		src:     src,
		stacks:  make(map[int]int),
		turns:   make(map[int]int),
	}
}

// Add applies one stack of stateID.
//
// Order matters: override blocking is checked before the host, and the
// override cascade runs before stacking.
func (e *Engine) Add(stateID int) Outcome {
	rule, ok := e.catalog.StateRule(stateID)
	if !ok {
		return OutcomeInvalid
	}

	if e.IsOverridden(stateID) {
		slog.Debug("state blocked by override", "state", stateID)
		return OutcomeOverridden
	}
	if e.host != nil && !e.host.CanAdd(stateID) {
		return OutcomeResisted
	}

	for _, victim := range rule.Overrides {
		if e.stacks[victim] > 0 {
			e.RemoveAll(victim)
		}
	}

	count := e.stacks[stateID]
	e.resetTurns(rule)
	if count >= rule.MaxStacks {
		if count > rule.MaxStacks {
			e.stacks[stateID] = rule.MaxStacks
		}
		if e.host != nil {
			e.host.OnRefreshed(stateID)
		}
		return OutcomeRefreshed
	}

	e.stacks[stateID] = count + 1
	if e.host != nil {
		e.host.OnApplied(stateID, count+1)
	}
	return OutcomeAdded
}

// Remove drops one stack. The host's removal runs when the count hits 0.
func (e *Engine) Remove(stateID int) {
	count := e.stacks[stateID]
	if count <= 0 {
		return
	}
	if count > 1 {
		e.stacks[stateID] = count - 1
		return
	}
	delete(e.stacks, stateID)
	delete(e.turns, stateID)
	if e.host != nil {
		e.host.OnRemoved(stateID)
	}
}

// RemoveAll drops every stack of stateID.
func (e *Engine) RemoveAll(stateID int) {
	for e.stacks[stateID] > 0 {
		e.Remove(stateID)
	}
}

// Count returns the current stack count (0 when absent).
func (e *Engine) Count(stateID int) int { return e.stacks[stateID] }

// Has reports whether stateID is present.
func (e *Engine) Has(stateID int) bool { return e.stacks[stateID] > 0 }

// Turns returns the remaining turns of stateID.
func (e *Engine) Turns(stateID int) int { return e.turns[stateID] }

// IsOverridden reports whether some other present state overrides
// stateID.
func (e *Engine) IsOverridden(stateID int) bool {
	for id := range e.stacks {
		if id == stateID {
			continue
		}
		if r, ok := e.catalog.StateRule(id); ok && r.OverridesState(stateID) {
			return true
		}
	}
	return false
}

// States returns present state ids in ascending order.
func (e *Engine) States() []int {
	ids := make([]int, 0, len(e.stacks))
	for id := range e.stacks {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Tick counts down every present state with the given timing and
// expires those that run out. Returns the ids that lost stacks.
func (e *Engine) Tick(timing Timing) []int {
	var expired []int
	for _, id := range e.States() {
		rule, ok := e.catalog.StateRule(id)
		if !ok || rule.Timing != timing || timing == TimingNone {
			continue
		}
		e.turns[id]--
		if e.turns[id] > 0 {
			continue
		}
		expired = append(expired, id)
		if rule.ExpireAll {
			e.RemoveAll(id)
			continue
		}
		e.Remove(id)
		if e.Has(id) {
			e.resetTurns(rule)
		}
	}
	return expired
}

// EndBattle removes every state flagged for removal at battle end.
func (e *Engine) EndBattle() {
	for _, id := range e.States() {
		if rule, ok := e.catalog.StateRule(id); ok && rule.RemoveAtBattleEnd {
			e.RemoveAll(id)
		}
	}
}

// Clear removes every state.
func (e *Engine) Clear() {
	for _, id := range e.States() {
		e.RemoveAll(id)
	}
}

// Snapshot returns the present states for save data, ordered by id.
func (e *Engine) Snapshot() []Stack {
	ids := e.States()
	out := make([]Stack, 0, len(ids))
	for _, id := range ids {
		out = append(out, Stack{StateID: id, Stacks: e.stacks[id], Turns: e.turns[id]})
	}
	return out
}

// Restore replaces the engine's states with saved stacks without running
// host side effects. Unknown ids are dropped, counts are clamped to the
// rule's cap, and overridden states are purged.
func (e *Engine) Restore(saved []Stack) {
	e.stacks = make(map[int]int, len(saved))
	e.turns = make(map[int]int, len(saved))
	for _, s := range saved {
		rule, ok := e.catalog.StateRule(s.StateID)
		if !ok || s.Stacks <= 0 {
			continue
		}
		e.stacks[s.StateID] = min(s.Stacks, rule.MaxStacks)
		if s.Turns > 0 {
			e.turns[s.StateID] = s.Turns
		}
	}
	for _, id := range e.States() {
		if e.IsOverridden(id) {
			delete(e.stacks, id)
			delete(e.turns, id)
		}
	}
}

func (e *Engine) resetTurns(rule *Rule) {
	if rule.Timing == TimingNone {
		delete(e.turns, rule.ID)
		return
	}
	turns := rule.MaxTurns
	if e.src != nil {
		turns = dice.Between(e.src, rule.MinTurns, rule.MaxTurns)
	}
	e.turns[rule.ID] = max(turns, 1)
}
