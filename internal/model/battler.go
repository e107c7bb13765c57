// Package model is an in-memory reference host for the rule engines: a
// party of battlers with resources, equipment, states and an action
// queue, and a shared inventory.
package model

import (
	"log/slog"
	"slices"

	"github.com/udisondev/gamerules/internal/dice"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/states"
)

// BattlerSpec describes a battler to create.
type BattlerSpec struct {
	ID      int
	Name    string
	ActorID int
	ClassID int
	Level   int
	HP      int
	MP      int
	TP      int
	// Actions is the natural number of actions per turn, at least 1.
	Actions int
	Weapons []int
	Armors  []int
	// Resists lists state ids the battler can never receive.
	Resists []int
}

// Battler is one party member or enemy. Not safe for concurrent use; a
// battler is driven by the single battle loop that owns it.
type Battler struct {
	id      int
	name    string
	actorID int
	classID int
	level   int

	res     multicast.Resources
	natural int
	actions []multicast.Action

	weapons []int
	armors  []int
	resists map[int]bool

	states *states.Engine
}

var (
	_ states.Host     = (*Battler)(nil)
	_ multicast.Actor = (*Battler)(nil)
)

// NewBattler creates a battler whose states follow catalog. src rolls
// state durations.
func NewBattler(spec BattlerSpec, catalog states.Catalog, src dice.Source) *Battler {
	b := &Battler{
		id:      spec.ID,
		name:    spec.Name,
		actorID: spec.ActorID,
		classID: spec.ClassID,
		level:   max(spec.Level, 1),
		res:     multicast.Resources{HP: spec.HP, MP: spec.MP, TP: spec.TP},
		natural: max(spec.Actions, 1),
		weapons: slices.Clone(spec.Weapons),
		armors:  slices.Clone(spec.Armors),
		resists: make(map[int]bool, len(spec.Resists)),
	}
	for _, id := range spec.Resists {
		b.resists[id] = true
	}
	b.states = states.NewEngine(catalog, b, src)
	b.ResetActions()
	return b
}

func (b *Battler) ID() int      { return b.id }
func (b *Battler) Name() string { return b.name }
func (b *Battler) ActorID() int { return b.actorID }
func (b *Battler) ClassID() int { return b.classID }
func (b *Battler) Level() int   { return b.level }

// Alive reports whether HP is above zero.
func (b *Battler) Alive() bool { return b.res.HP > 0 }

// Weapons returns the equipped weapon ids.
func (b *Battler) Weapons() []int { return slices.Clone(b.weapons) }

// Armors returns the equipped armor ids.
func (b *Battler) Armors() []int { return slices.Clone(b.armors) }

// StateEngine returns the battler's stacking engine.
func (b *Battler) StateEngine() *states.Engine { return b.states }

// States returns the present state ids in ascending order.
func (b *Battler) States() []int { return b.states.States() }

func (b *Battler) Resources() multicast.Resources { return b.res }

func (b *Battler) SetResources(r multicast.Resources) { b.res = r }

// Actions returns a copy of the action queue.
func (b *Battler) Actions() []multicast.Action { return slices.Clone(b.actions) }

func (b *Battler) SetActions(q []multicast.Action) { b.actions = slices.Clone(q) }

// ResetActions restores one empty action per natural action.
func (b *Battler) ResetActions() { b.actions = make([]multicast.Action, b.natural) }

// CanAdd rejects resisted states and states on a dead battler.
func (b *Battler) CanAdd(stateID int) bool {
	return b.Alive() && !b.resists[stateID]
}

func (b *Battler) OnApplied(stateID, stacks int) {
	slog.Debug("state applied", "battler", b.id, "state", stateID, "stacks", stacks)
}

func (b *Battler) OnRefreshed(stateID int) {
	slog.Debug("state refreshed", "battler", b.id, "state", stateID)
}

func (b *Battler) OnRemoved(stateID int) {
	slog.Debug("state removed", "battler", b.id, "state", stateID)
}
