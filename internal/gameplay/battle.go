package gameplay

import (
	"github.com/udisondev/gamerules/internal/model"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/states"
)

// ApplyState adds one stack of stateID to b.
func (r *Runtime) ApplyState(b *model.Battler, stateID int) states.Outcome {
	return b.StateEngine().Add(stateID)
}

// RemoveState removes one stack of stateID from b.
func (r *Runtime) RemoveState(b *model.Battler, stateID int) {
	b.StateEngine().Remove(stateID)
}

// CleanseState removes every stack of stateID from b.
func (r *Runtime) CleanseState(b *model.Battler, stateID int) {
	b.StateEngine().RemoveAll(stateID)
}

// StartInput runs when b is about to choose actions. A present state
// granting multicast opens a passive session unless one is already
// active this turn.
func (r *Runtime) StartInput(b *model.Battler) (multicast.Session, bool, error) {
	if err := r.member(b); err != nil {
		return multicast.Session{}, false, err
	}
	s, ok := r.multicast.ActivatePassive(b)
	return s, ok, nil
}

// ConfirmSkill feeds a chosen skill to the multicast machine. While a
// session is selecting, the pick goes to it. Otherwise a skill granting
// multicast opens a session; any other skill is a plain action and is
// reported as not handled.
func (r *Runtime) ConfirmSkill(b *model.Battler, skillID, target int) (multicast.Session, bool, error) {
	if err := r.member(b); err != nil {
		return multicast.Session{}, false, err
	}
	if r.multicast.Selecting(b.ID()) {
		s, err := r.multicast.Confirm(b, skillID, target)
		return s, true, err
	}
	return r.multicast.ActivateSkill(b, skillID)
}

// CancelSkill abandons b's multicast selection and rolls back its cost.
func (r *Runtime) CancelSkill(b *model.Battler) error {
	if err := r.member(b); err != nil {
		return err
	}
	return r.multicast.Cancel(b)
}

// FinishMulticast commits a FreeSelect session early.
func (r *Runtime) FinishMulticast(b *model.Battler) (multicast.Session, error) {
	if err := r.member(b); err != nil {
		return multicast.Session{}, err
	}
	return r.multicast.FinishEarly(b)
}

// Multicast returns b's session this turn.
func (r *Runtime) Multicast(b *model.Battler) (multicast.Session, bool) {
	return r.multicast.Session(b.ID())
}

// EndAction ticks action-end states of b.
func (r *Runtime) EndAction(b *model.Battler) []int {
	return b.StateEngine().Tick(states.TimingActionEnd)
}

// EndTurn discards every multicast session, resets action queues and
// ticks turn-end states of the party.
func (r *Runtime) EndTurn() {
	r.multicast.EndTurn()
	for _, m := range r.party.Members() {
		m.ResetActions()
		m.StateEngine().Tick(states.TimingTurnEnd)
	}
}

// EndBattle discards multicast sessions and removes battle-only states.
func (r *Runtime) EndBattle() {
	r.multicast.EndTurn()
	for _, m := range r.party.Members() {
		m.ResetActions()
		m.StateEngine().EndBattle()
	}
}

// SaveStacks returns the stack counters of every member keyed by battler
// id. Multicast sessions are not included.
func (r *Runtime) SaveStacks() map[int64][]states.Stack {
	out := make(map[int64][]states.Stack)
	for _, m := range r.party.Members() {
		out[int64(m.ID())] = m.StateEngine().Snapshot()
	}
	return out
}

// LoadStacks restores saved stack counters onto party members. Ids of
// battlers outside the party are ignored.
func (r *Runtime) LoadStacks(saved map[int64][]states.Stack) {
	for id, stacks := range saved {
		if m := r.party.Member(int(id)); m != nil {
			m.StateEngine().Restore(stacks)
		}
	}
}
