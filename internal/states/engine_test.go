package states

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamerules/internal/testutil"
)

const (
	stateA = 1 // overrides B
	stateB = 2
	stateC = 3
	stateD = 4 // max 3 stacks
	stateT = 5 // 2 turns, expires one stack at a time
)

type testCatalog map[int]*Rule

func (c testCatalog) StateRule(id int) (*Rule, bool) { r, ok := c[id]; return r, ok }

func newTestCatalog() testCatalog {
	rules := []*Rule{
		{ID: stateA, MaxStacks: 1, Overrides: []int{stateB}},
		{ID: stateB, MaxStacks: 5},
		{ID: stateC, MaxStacks: 1, RemoveAtBattleEnd: true},
		{ID: stateD, MaxStacks: 3, Timing: TimingTurnEnd, MinTurns: 3, MaxTurns: 3, ExpireAll: true},
		{ID: stateT, MaxStacks: 3, Timing: TimingActionEnd, MinTurns: 2, MaxTurns: 2},
	}
	c := testCatalog{}
	for _, r := range rules {
		r.Normalize()
		c[r.ID] = r
	}
	return c
}

type recordingHost struct {
	resist    map[int]bool
	applied   []int
	refreshed []int
	removed   []int
}

func (h *recordingHost) CanAdd(id int) bool        { return !h.resist[id] }
func (h *recordingHost) OnApplied(id, _ int)       { h.applied = append(h.applied, id) }
func (h *recordingHost) OnRefreshed(id int)        { h.refreshed = append(h.refreshed, id) }
func (h *recordingHost) OnRemoved(id int)          { h.removed = append(h.removed, id) }

func newTestEngine() (*Engine, *recordingHost) {
	h := &recordingHost{resist: map[int]bool{}}
	return NewEngine(newTestCatalog(), h, nil), h
}

func TestAdd_OverrideCascade(t *testing.T) {
	e, h := newTestEngine()
	for range 3 {
		require.Equal(t, OutcomeAdded, e.Add(stateB))
	}
	require.Equal(t, OutcomeAdded, e.Add(stateC))

	assert.Equal(t, OutcomeAdded, e.Add(stateA))

	assert.Zero(t, e.Count(stateB), "all stacks of B purged")
	assert.Equal(t, 1, e.Count(stateC), "C untouched")
	assert.Equal(t, 1, e.Count(stateA))
	assert.Equal(t, []int{stateB}, h.removed, "one full removal for B")

	// B is now blocked while A is present
	h.applied = nil
	assert.Equal(t, OutcomeOverridden, e.Add(stateB))
	assert.Zero(t, e.Count(stateB))
	assert.Empty(t, h.applied)
	assert.True(t, e.IsOverridden(stateB))
	assert.False(t, e.IsOverridden(stateC))
}

func TestAdd_OverrideCheckedBeforeHost(t *testing.T) {
	e, h := newTestEngine()
	require.Equal(t, OutcomeAdded, e.Add(stateA))
	h.resist[stateB] = true

	assert.Equal(t, OutcomeOverridden, e.Add(stateB))
}

func TestAdd_HostResists(t *testing.T) {
	e, h := newTestEngine()
	require.Equal(t, OutcomeAdded, e.Add(stateB))
	h.resist[stateA] = true

	assert.Equal(t, OutcomeResisted, e.Add(stateA))
	assert.Equal(t, 1, e.Count(stateB), "no cascade when the host refuses")
}

func TestAdd_StackClamp(t *testing.T) {
	e, h := newTestEngine()

	outcomes := make([]Outcome, 0, 5)
	for range 5 {
		outcomes = append(outcomes, e.Add(stateD))
	}

	assert.Equal(t, []Outcome{OutcomeAdded, OutcomeAdded, OutcomeAdded, OutcomeRefreshed, OutcomeRefreshed}, outcomes)
	assert.Equal(t, 3, e.Count(stateD))
	assert.Len(t, h.applied, 3, "no applied side effect past the cap")
	assert.Len(t, h.refreshed, 2)
}

func TestAdd_RefreshResetsTurns(t *testing.T) {
	e, _ := newTestEngine()
	for range 3 {
		e.Add(stateD)
	}
	e.Tick(TimingTurnEnd)
	require.Equal(t, 2, e.Turns(stateD))

	require.Equal(t, OutcomeRefreshed, e.Add(stateD))
	assert.Equal(t, 3, e.Turns(stateD))
}

func TestAdd_InvalidID(t *testing.T) {
	e, h := newTestEngine()
	assert.Equal(t, OutcomeInvalid, e.Add(999))
	e.Remove(999)
	e.RemoveAll(999)
	assert.Zero(t, e.Count(999))
	assert.Empty(t, h.applied)
	assert.Empty(t, h.removed)
}

func TestRemove_DecrementsThenRemoves(t *testing.T) {
	e, h := newTestEngine()
	e.Add(stateB)
	e.Add(stateB)

	e.Remove(stateB)
	assert.Equal(t, 1, e.Count(stateB))
	assert.Empty(t, h.removed)

	e.Remove(stateB)
	assert.Zero(t, e.Count(stateB))
	assert.Equal(t, []int{stateB}, h.removed)

	e.Remove(stateB)
	assert.Len(t, h.removed, 1, "remove on absent state is a no-op")
}

func TestTick_ExpireAll(t *testing.T) {
	e, h := newTestEngine()
	e.Add(stateD)
	e.Add(stateD)

	assert.Empty(t, e.Tick(TimingTurnEnd))
	assert.Empty(t, e.Tick(TimingTurnEnd))
	assert.Empty(t, e.Tick(TimingActionEnd), "other timing does not tick")
	assert.Equal(t, []int{stateD}, e.Tick(TimingTurnEnd))

	assert.Zero(t, e.Count(stateD))
	assert.Equal(t, []int{stateD}, h.removed)
}

func TestTick_ExpireOneStack(t *testing.T) {
	e, _ := newTestEngine()
	e.Add(stateT)
	e.Add(stateT)

	e.Tick(TimingActionEnd)
	assert.Equal(t, []int{stateT}, e.Tick(TimingActionEnd))
	assert.Equal(t, 1, e.Count(stateT))
	assert.Equal(t, 2, e.Turns(stateT), "counter restarts for the remaining stack")

	e.Tick(TimingActionEnd)
	e.Tick(TimingActionEnd)
	assert.Zero(t, e.Count(stateT))
}

func TestEngine_RollsDuration(t *testing.T) {
	cat := newTestCatalog()
	cat[stateD].MinTurns = 2
	cat[stateD].MaxTurns = 5
	e := NewEngine(cat, &recordingHost{}, testutil.NewRolls().WithInts(1))

	e.Add(stateD)
	assert.Equal(t, 3, e.Turns(stateD))
}

func TestEndBattle(t *testing.T) {
	e, _ := newTestEngine()
	e.Add(stateB)
	e.Add(stateC)

	e.EndBattle()
	assert.True(t, e.Has(stateB))
	assert.False(t, e.Has(stateC))

	e.Clear()
	assert.Empty(t, e.States())
}

func TestSnapshotRestore(t *testing.T) {
	e, h := newTestEngine()
	e.Add(stateB)
	e.Add(stateB)
	e.Add(stateD)

	saved := e.Snapshot()
	assert.Equal(t, []Stack{
		{StateID: stateB, Stacks: 2},
		{StateID: stateD, Stacks: 1, Turns: 3},
	}, saved)

	restored, _ := newTestEngine()
	restored.Restore(saved)
	assert.Equal(t, saved, restored.Snapshot())
	assert.Len(t, h.applied, 3)
}

func TestRestore_Sanitizes(t *testing.T) {
	e, h := newTestEngine()
	e.Restore([]Stack{
		{StateID: stateA, Stacks: 1},
		{StateID: stateB, Stacks: 4},  // overridden by A
		{StateID: stateD, Stacks: 50}, // above cap
		{StateID: 999, Stacks: 1},     // unknown
	})

	assert.Equal(t, []int{stateA, stateD}, e.States())
	assert.Equal(t, 3, e.Count(stateD))
	assert.Empty(t, h.removed, "restore runs no side effects")
}

func TestRule_Normalize(t *testing.T) {
	r := Rule{ID: 7, MaxStacks: 500, Overrides: []int{9, 7, 3, 9, 0}, MinTurns: 5, MaxTurns: 2}
	r.Normalize()

	assert.Equal(t, MaxStacksLimit, r.MaxStacks)
	assert.Equal(t, []int{3, 9}, r.Overrides)
	assert.Equal(t, 2, r.MinTurns)
	assert.Equal(t, 5, r.MaxTurns)
	assert.True(t, r.OverridesState(9))
	assert.False(t, r.OverridesState(7))

	zero := Rule{ID: 1}
	zero.Normalize()
	assert.Equal(t, 1, zero.MaxStacks)
}
