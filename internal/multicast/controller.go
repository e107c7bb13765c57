package multicast

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/udisondev/gamerules/internal/inventory"
	"github.com/udisondev/gamerules/internal/loot"
)

var (
	// ErrSessionActive is returned when the actor already has a session
	// this turn.
	ErrSessionActive = errors.New("multicast session already active")
	// ErrNoSession is returned when the actor has no session.
	ErrNoSession = errors.New("no multicast session")
	// ErrNotSelecting is returned when the session is past selection.
	ErrNotSelecting = errors.New("multicast session is not selecting")
	// ErrNotEligible is returned for skills the rule does not allow.
	ErrNotEligible = errors.New("skill not eligible for multicast")
	// ErrInsufficientBudget is returned when the cost cannot be paid.
	ErrInsufficientBudget = errors.New("insufficient resources for multicast")
	// ErrCannotFinishEarly is returned by FinishEarly for repeat rules or
	// before the first pick.
	ErrCannotFinishEarly = errors.New("multicast session cannot finish early")
	// ErrUnknownSkill is returned when the catalog has no such skill.
	ErrUnknownSkill = errors.New("unknown skill")
)

// Phase is where a session is in its lifecycle.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSelecting
	PhaseCommitting
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseSelecting:
		return "selecting"
	case PhaseCommitting:
		return "committing"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "idle"
	}
}

// Action is one queued cast. Prepaid actions were paid during selection
// and must not be charged again when they execute.
type Action struct {
	SkillID int
	Target  int
	Prepaid bool
}

// Catalog looks up skills and multicast grants.
type Catalog interface {
	SkillCost(skillID int) (Skill, bool)
	SkillMulticast(skillID int) (*Rule, bool)
	StateMulticast(stateID int) (*Rule, bool)
}

// Actor is the battler choosing actions.
type Actor interface {
	ID() int
	Resources() Resources
	SetResources(Resources)
	// States lists the actor's present state ids.
	States() []int
	// SetActions replaces the action queue.
	SetActions([]Action)
	// ResetActions restores the default queue: one empty slot per
	// natural action.
	ResetActions()
}

// Party is the containers item costs are paid from.
type Party interface {
	Count(d loot.ItemDrop) int
	Take(d loot.ItemDrop, n int) bool
	Snapshot() inventory.Snapshot
	Restore(inventory.Snapshot)
}

// Budget is the rollback snapshot taken at activation.
type Budget struct {
	Resources Resources
	// Items is nil when item costs are disabled.
	Items *inventory.Snapshot
}

// Session is one actor's multicast selection for the current turn.
type Session struct {
	ID        string
	ActorID   int
	Rule      Rule
	Phase     Phase
	Remaining int
	Selected  int
	Actions   []Action
	// Passive is set when a state granted the session.
	Passive bool

	repeatSkill int
	budget      Budget
}

// Budget returns the rollback snapshot.
func (s *Session) Budget() Budget { return s.budget }

func (s *Session) clone() Session {
	c := *s
	c.Actions = slices.Clone(s.Actions)
	return c
}

// Options configure a Controller.
type Options struct {
	// ItemCosts makes skill item costs payable and snapshots the party
	// containers.
	ItemCosts bool
}

// Controller owns every multicast session of a battle. At most one
// session exists per actor per turn; EndTurn discards them all.
type Controller struct {
	mu       sync.Mutex
	catalog  Catalog
	party    Party
	opts     Options
	sessions map[int]*Session
}

// NewController creates a controller.
func NewController(catalog Catalog, party Party, opts Options) *Controller {
	return &Controller{
		catalog:  catalog,
		party:    party,
		opts:     opts,
		sessions: make(map[int]*Session),
	}
}

// Activate opens a session for actor under rule.
func (c *Controller) Activate(actor Actor, rule Rule) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activate(actor, rule, false)
}

// ActivateSkill opens a session from a multicast-enabled skill. It
// returns false when the skill grants no multicast.
func (c *Controller) ActivateSkill(actor Actor, skillID int) (Session, bool, error) {
	rule, ok := c.catalog.SkillMulticast(skillID)
	if !ok {
		return Session{}, false, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	s, err := c.activate(actor, *rule, false)
	return s, err == nil, err
}

// ActivatePassive opens a session from the first (lowest id) present
// state that grants multicast. It is a no-op when the actor already has
// a session this turn.
func (c *Controller) ActivatePassive(actor Actor) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, busy := c.sessions[actor.ID()]; busy {
		return Session{}, false
	}

	states := slices.Clone(actor.States())
	slices.Sort(states)
	for _, id := range states {
		rule, ok := c.catalog.StateMulticast(id)
		if !ok {
			continue
		}
		s, err := c.activate(actor, *rule, true)
		return s, err == nil
	}
	return Session{}, false
}

func (c *Controller) activate(actor Actor, rule Rule, passive bool) (Session, error) {
	if _, busy := c.sessions[actor.ID()]; busy {
		return Session{}, ErrSessionActive
	}
	rule.Normalize()

	budget := Budget{Resources: actor.Resources()}
	if c.opts.ItemCosts && c.party != nil {
		snap := c.party.Snapshot()
		budget.Items = &snap
	}

	s := &Session{
		ID:        uuid.NewString(),
		ActorID:   actor.ID(),
		Rule:      rule,
		Phase:     PhaseSelecting,
		Remaining: rule.SelectCount - 1,
		Passive:   passive,
		budget:    budget,
	}
	c.sessions[actor.ID()] = s

	slog.Debug("multicast session started",
		"session", s.ID,
		"actor", actor.ID(),
		"type", rule.Type,
		"count", rule.SelectCount,
		"passive", passive)
	return s.clone(), nil
}

// Confirm picks skillID with target.
//
// FreeSelect charges each pick its own cost. Repeat types charge the
// first pick for every repeat at once; later picks of a
// RepeatWithTargeting session only choose a target (skillID 0 or the
// same skill) and cost nothing.
func (c *Controller) Confirm(actor Actor, skillID, target int) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[actor.ID()]
	if !ok {
		return Session{}, ErrNoSession
	}
	if s.Phase != PhaseSelecting {
		return s.clone(), ErrNotSelecting
	}

	if s.repeatSkill != 0 {
		if skillID != 0 && skillID != s.repeatSkill {
			return s.clone(), fmt.Errorf("confirming skill %d: %w", skillID, ErrNotEligible)
		}
		s.Actions = append(s.Actions, Action{SkillID: s.repeatSkill, Target: target, Prepaid: true})
		s.Selected++
		c.advance(actor, s)
		return s.clone(), nil
	}

	if !s.Rule.Allows(skillID) {
		return s.clone(), fmt.Errorf("confirming skill %d: %w", skillID, ErrNotEligible)
	}
	skill, ok := c.catalog.SkillCost(skillID)
	if !ok {
		return s.clone(), fmt.Errorf("confirming skill %d: %w", skillID, ErrUnknownSkill)
	}

	casts := 1
	if s.Rule.Type.Repeats() {
		casts = s.Remaining + 1
	}
	if err := c.pay(actor, skill, s.Rule.CostMultiplier, casts); err != nil {
		return s.clone(), fmt.Errorf("confirming skill %d: %w", skillID, err)
	}

	switch s.Rule.Type {
	case RepeatFixedTarget:
		for range casts {
			s.Actions = append(s.Actions, Action{SkillID: skillID, Target: target, Prepaid: true})
		}
		s.Selected += casts
		s.Remaining = 0
		c.commit(actor, s)
		return s.clone(), nil
	case RepeatWithTargeting:
		s.repeatSkill = skillID
	}

	s.Actions = append(s.Actions, Action{SkillID: skillID, Target: target, Prepaid: true})
	s.Selected++
	c.advance(actor, s)
	return s.clone(), nil
}

// advance loops back to selection with a fresh slot or commits.
func (c *Controller) advance(actor Actor, s *Session) {
	if s.Remaining > 0 {
		s.Remaining--
		actor.SetActions(append(slices.Clone(s.Actions), Action{}))
		return
	}
	c.commit(actor, s)
}

func (c *Controller) commit(actor Actor, s *Session) {
	s.Phase = PhaseCommitting
	actor.SetActions(slices.Clone(s.Actions))
	slog.Debug("multicast session committed", "session", s.ID, "actor", s.ActorID, "actions", len(s.Actions))
}

// pay charges casts casts of skill, or nothing when any part is
// unaffordable.
func (c *Controller) pay(actor Actor, skill Skill, mul float64, casts int) error {
	cost := castCost(skill, mul, casts)
	cur := actor.Resources()
	if !cur.Covers(cost) {
		return ErrInsufficientBudget
	}

	if c.opts.ItemCosts && c.party != nil && len(skill.Items) > 0 {
		need := make(map[loot.ItemDrop]int, len(skill.Items))
		for _, ic := range skill.Items {
			need[ic.Drop] += ic.Count * casts
		}
		for d, n := range need {
			if c.party.Count(d) < n {
				return ErrInsufficientBudget
			}
		}
		for d, n := range need {
			c.party.Take(d, n)
		}
	}

	actor.SetResources(cur.Sub(cost))
	return nil
}

// Cancel abandons the actor's selection: resources and containers are
// restored from the activation snapshot and the action queue is reset.
func (c *Controller) Cancel(actor Actor) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[actor.ID()]
	if !ok {
		return ErrNoSession
	}
	if s.Phase != PhaseSelecting {
		return ErrNotSelecting
	}

	actor.SetResources(s.budget.Resources)
	if s.budget.Items != nil && c.party != nil {
		c.party.Restore(*s.budget.Items)
	}
	actor.ResetActions()

	s.Phase = PhaseCancelled
	delete(c.sessions, actor.ID())

	slog.Debug("multicast session cancelled", "session", s.ID, "actor", s.ActorID, "selected", s.Selected)
	return nil
}

// FinishEarly commits a FreeSelect session after at least one pick,
// dropping the unused slots.
func (c *Controller) FinishEarly(actor Actor) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[actor.ID()]
	if !ok {
		return Session{}, ErrNoSession
	}
	if s.Phase != PhaseSelecting {
		return s.clone(), ErrNotSelecting
	}
	if s.Rule.Type != FreeSelect || s.Selected == 0 {
		return s.clone(), ErrCannotFinishEarly
	}

	s.Remaining = 0
	c.commit(actor, s)
	return s.clone(), nil
}

// Session returns a copy of the actor's session.
func (c *Controller) Session(actorID int) (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[actorID]
	if !ok {
		return Session{}, false
	}
	return s.clone(), true
}

// Selecting reports whether the actor is mid-selection.
func (c *Controller) Selecting(actorID int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[actorID]
	return ok && s.Phase == PhaseSelecting
}

// EndTurn discards every session. Sessions never outlive a turn and are
// not part of save data.
func (c *Controller) EndTurn() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.sessions)
}
