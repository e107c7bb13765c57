package multicast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamerules/internal/inventory"
	"github.com/udisondev/gamerules/internal/loot"
)

type fakeCatalog struct {
	skills     map[int]Skill
	skillRules map[int]*Rule
	stateRules map[int]*Rule
}

func (c *fakeCatalog) SkillCost(id int) (Skill, bool) {
	s, ok := c.skills[id]
	return s, ok
}

func (c *fakeCatalog) SkillMulticast(id int) (*Rule, bool) {
	r, ok := c.skillRules[id]
	return r, ok
}

func (c *fakeCatalog) StateMulticast(id int) (*Rule, bool) {
	r, ok := c.stateRules[id]
	return r, ok
}

type fakeActor struct {
	id      int
	res     Resources
	states  []int
	actions []Action
	natural int
}

func newActor(res Resources) *fakeActor {
	a := &fakeActor{id: 1, res: res, natural: 1}
	a.ResetActions()
	return a
}

func (a *fakeActor) ID() int                  { return a.id }
func (a *fakeActor) Resources() Resources     { return a.res }
func (a *fakeActor) SetResources(r Resources) { a.res = r }
func (a *fakeActor) States() []int            { return a.states }
func (a *fakeActor) SetActions(q []Action)    { a.actions = q }
func (a *fakeActor) ResetActions()            { a.actions = make([]Action, a.natural) }

var potion = loot.ItemDrop{Kind: loot.KindItem, DataID: 1}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		skills: map[int]Skill{
			10: {ID: 10, MPCost: 10},
			11: {ID: 11, MPCost: 7},
			12: {ID: 12, HPCost: 10},
			13: {ID: 13, MPCost: 1, Items: []ItemCost{{Drop: potion, Count: 1}}},
		},
		skillRules: map[int]*Rule{},
		stateRules: map[int]*Rule{},
	}
}

func TestCancelRestoresResources(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	s, err := c.Activate(actor, Rule{SelectCount: 3, Type: FreeSelect})
	require.NoError(t, err)
	assert.Equal(t, PhaseSelecting, s.Phase)
	assert.Equal(t, 2, s.Remaining)
	assert.NotEmpty(t, s.ID)

	s, err = c.Confirm(actor, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 40, actor.res.MP)
	assert.Equal(t, 1, s.Remaining)
	assert.Len(t, actor.actions, 2, "confirmed action plus a fresh slot")

	require.NoError(t, c.Cancel(actor))
	assert.Equal(t, 50, actor.res.MP)
	assert.Len(t, actor.actions, 1)
	_, ok := c.Session(actor.ID())
	assert.False(t, ok)

	// Отмена без сессии
	assert.ErrorIs(t, c.Cancel(actor), ErrNoSession)
}

func TestFreeSelectCommitsAfterAllPicks(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 3})
	require.NoError(t, err)

	for i, skill := range []int{10, 11, 10} {
		s, err := c.Confirm(actor, skill, i+1)
		require.NoError(t, err)
		if i < 2 {
			assert.Equal(t, PhaseSelecting, s.Phase)
		} else {
			assert.Equal(t, PhaseCommitting, s.Phase)
		}
	}

	assert.Equal(t, 50-27, actor.res.MP)
	require.Len(t, actor.actions, 3)
	assert.Equal(t, Action{SkillID: 11, Target: 2, Prepaid: true}, actor.actions[1])

	_, err = c.Confirm(actor, 10, 1)
	assert.ErrorIs(t, err, ErrNotSelecting)
	assert.ErrorIs(t, c.Cancel(actor), ErrNotSelecting)
}

func TestRepeatFixedTargetChargesEveryRepeat(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 3, Type: RepeatFixedTarget})
	require.NoError(t, err)

	s, err := c.Confirm(actor, 10, 4)
	require.NoError(t, err)
	assert.Equal(t, 20, actor.res.MP)
	assert.Equal(t, PhaseCommitting, s.Phase)
	require.Len(t, actor.actions, 3)
	for _, a := range actor.actions {
		assert.Equal(t, Action{SkillID: 10, Target: 4, Prepaid: true}, a)
	}
}

func TestRepeatFixedTargetInsufficientBudget(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 25})

	_, err := c.Activate(actor, Rule{SelectCount: 3, Type: RepeatFixedTarget})
	require.NoError(t, err)

	_, err = c.Confirm(actor, 10, 4)
	assert.ErrorIs(t, err, ErrInsufficientBudget)
	assert.Equal(t, 25, actor.res.MP)
	assert.True(t, c.Selecting(actor.ID()))
}

func TestRepeatWithTargeting(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 3, Type: RepeatWithTargeting})
	require.NoError(t, err)

	_, err = c.Confirm(actor, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, 20, actor.res.MP)

	_, err = c.Confirm(actor, 11, 2)
	assert.ErrorIs(t, err, ErrNotEligible, "repeats must reuse the first skill")

	_, err = c.Confirm(actor, 0, 2)
	require.NoError(t, err)
	s, err := c.Confirm(actor, 10, 3)
	require.NoError(t, err)

	assert.Equal(t, PhaseCommitting, s.Phase)
	assert.Equal(t, 20, actor.res.MP, "repeats are prepaid")
	require.Len(t, actor.actions, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{actor.actions[0].Target, actor.actions[1].Target, actor.actions[2].Target})
}

func TestCostMultiplier(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 2, Type: RepeatFixedTarget, CostMultiplier: 1.5})
	require.NoError(t, err)
	_, err = c.Confirm(actor, 11, 1)
	require.NoError(t, err)

	// floor(7*1.5)=10, два каста
	assert.Equal(t, 30, actor.res.MP)
}

func TestHPCostCannotKill(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 10, MP: 0})

	_, err := c.Activate(actor, Rule{SelectCount: 2})
	require.NoError(t, err)
	_, err = c.Confirm(actor, 12, 1)
	assert.ErrorIs(t, err, ErrInsufficientBudget)
	assert.Equal(t, 10, actor.res.HP)
}

func TestEligibility(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 2, Eligible: []int{11, 10}})
	require.NoError(t, err)

	_, err = c.Confirm(actor, 12, 1)
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = c.Confirm(actor, 99, 1)
	assert.ErrorIs(t, err, ErrNotEligible)
	_, err = c.Confirm(actor, 11, 1)
	require.NoError(t, err)
}

func TestUnknownSkill(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 2})
	require.NoError(t, err)
	_, err = c.Confirm(actor, 99, 1)
	assert.ErrorIs(t, err, ErrUnknownSkill)
}

func TestFinishEarly(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 3})
	require.NoError(t, err)

	_, err = c.FinishEarly(actor)
	assert.ErrorIs(t, err, ErrCannotFinishEarly, "nothing picked yet")

	_, err = c.Confirm(actor, 10, 1)
	require.NoError(t, err)
	s, err := c.FinishEarly(actor)
	require.NoError(t, err)
	assert.Equal(t, PhaseCommitting, s.Phase)
	assert.Len(t, actor.actions, 1)
}

func TestFinishEarlyRepeatRejected(t *testing.T) {
	c := NewController(testCatalog(), nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	_, err := c.Activate(actor, Rule{SelectCount: 3, Type: RepeatWithTargeting})
	require.NoError(t, err)
	_, err = c.Confirm(actor, 10, 1)
	require.NoError(t, err)

	_, err = c.FinishEarly(actor)
	assert.ErrorIs(t, err, ErrCannotFinishEarly)
}

func TestOneSessionPerTurn(t *testing.T) {
	cat := testCatalog()
	cat.skillRules[20] = &Rule{SelectCount: 2}
	cat.stateRules[3] = &Rule{SelectCount: 4}
	cat.stateRules[7] = &Rule{SelectCount: 2}
	c := NewController(cat, nil, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})
	actor.states = []int{7, 3}

	s, ok := c.ActivatePassive(actor)
	require.True(t, ok)
	assert.True(t, s.Passive)
	assert.Equal(t, 4, s.Rule.SelectCount, "lowest state id wins")

	_, ok = c.ActivatePassive(actor)
	assert.False(t, ok)

	_, ok, err := c.ActivateSkill(actor, 20)
	assert.ErrorIs(t, err, ErrSessionActive)
	assert.False(t, ok)

	c.EndTurn()
	_, ok, err = c.ActivateSkill(actor, 20)
	require.NoError(t, err)
	assert.True(t, ok)

	_, ok, err = c.ActivateSkill(newActor(Resources{}), 10)
	require.NoError(t, err)
	assert.False(t, ok, "skill 10 grants no multicast")
}

func TestItemCostsRestoredOnCancel(t *testing.T) {
	inv := inventory.New()
	inv.Give(potion, 2)
	c := NewController(testCatalog(), inv, Options{ItemCosts: true})
	actor := newActor(Resources{HP: 100, MP: 50})

	s, err := c.Activate(actor, Rule{SelectCount: 3})
	require.NoError(t, err)
	require.NotNil(t, s.Budget().Items)

	_, err = c.Confirm(actor, 13, 1)
	require.NoError(t, err)
	_, err = c.Confirm(actor, 13, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Count(potion))

	_, err = c.Confirm(actor, 13, 1)
	assert.ErrorIs(t, err, ErrInsufficientBudget)

	require.NoError(t, c.Cancel(actor))
	assert.Equal(t, 2, inv.Count(potion))
	assert.Equal(t, 50, actor.res.MP)
}

func TestItemCostsIgnoredWhenDisabled(t *testing.T) {
	inv := inventory.New()
	c := NewController(testCatalog(), inv, Options{})
	actor := newActor(Resources{HP: 100, MP: 50})

	s, err := c.Activate(actor, Rule{SelectCount: 2})
	require.NoError(t, err)
	assert.Nil(t, s.Budget().Items)

	_, err = c.Confirm(actor, 13, 1)
	require.NoError(t, err)
}

func TestRuleNormalize(t *testing.T) {
	r := Rule{SelectCount: 0, Eligible: []int{5, 3, 5}, CostMultiplier: -1}
	r.Normalize()
	assert.Equal(t, 1, r.SelectCount)
	assert.Equal(t, []int{3, 5}, r.Eligible)
	assert.Equal(t, 1.0, r.CostMultiplier)
	assert.True(t, r.Allows(3))
	assert.False(t, r.Allows(4))

	open := Rule{}
	assert.True(t, open.Allows(1))
	assert.False(t, open.Allows(0))
}
