// Package rules builds the read-only rule repository from a loaded
// dataset and the loot registry config. Every engine reads its rules
// through the narrow catalog interface it declares; Repository satisfies
// all of them.
package rules

import (
	"log/slog"

	"github.com/udisondev/gamerules/internal/config"
	"github.com/udisondev/gamerules/internal/cooking"
	"github.com/udisondev/gamerules/internal/data"
	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/notetag"
	"github.com/udisondev/gamerules/internal/states"
)

// SourceKind is the kind of record a weight adjustment is attached to.
type SourceKind int

const (
	SourceActor SourceKind = iota
	SourceClass
	SourceState
	SourceWeapon
	SourceArmor
)

// Source identifies one record that can carry <Loot Weight> tags.
type Source struct {
	Kind SourceKind
	ID   int
}

// Repository is the parsed rule set of one dataset. It is never mutated
// after Build; reloading the dataset means building a new one.
type Repository struct {
	ds *data.Dataset

	pools     map[ident.Key]*loot.NamedPool
	tables    map[ident.Key]*loot.DropTable
	itemNames map[ident.Key]loot.ItemDrop

	enemyTables map[int][]*loot.DropTable
	enemyLevels map[int]int
	weights     map[Source][]loot.WeightAdjustment

	ingredients map[int]cooking.Ingredient
	recipes     []cooking.Recipe

	stateRules map[int]*states.Rule

	skillCosts     map[int]multicast.Skill
	skillMulticast map[int]*multicast.Rule
	stateMulticast map[int]*multicast.Rule
}

var (
	_ loot.Catalog      = (*Repository)(nil)
	_ cooking.Catalog   = (*Repository)(nil)
	_ states.Catalog    = (*Repository)(nil)
	_ multicast.Catalog = (*Repository)(nil)
)

// Build parses every note in ds and the registry in reg.
func Build(ds *data.Dataset, reg config.Loot) *Repository {
	r := &Repository{
		ds:             ds,
		pools:          make(map[ident.Key]*loot.NamedPool),
		tables:         make(map[ident.Key]*loot.DropTable),
		itemNames:      make(map[ident.Key]loot.ItemDrop),
		enemyTables:    make(map[int][]*loot.DropTable),
		enemyLevels:    make(map[int]int),
		weights:        make(map[Source][]loot.WeightAdjustment),
		ingredients:    make(map[int]cooking.Ingredient),
		stateRules:     make(map[int]*states.Rule),
		skillCosts:     make(map[int]multicast.Skill),
		skillMulticast: make(map[int]*multicast.Rule),
		stateMulticast: make(map[int]*multicast.Rule),
	}

	r.buildItemNames()
	r.buildRegistry(reg)
	r.buildEnemies()
	r.buildWeights()
	r.buildCooking()
	r.buildStates()
	r.buildSkills()

	slog.Info("rule repository built",
		"pools", len(r.pools),
		"tables", len(r.tables),
		"enemies_with_loot", len(r.enemyTables),
		"ingredients", len(r.ingredients),
		"recipes", len(r.recipes),
		"states", len(r.stateRules),
		"multicast_skills", len(r.skillMulticast),
		"multicast_states", len(r.stateMulticast))
	return r
}

// Dataset returns the dataset the repository was built from.
func (r *Repository) Dataset() *data.Dataset { return r.ds }

// buildItemNames indexes record names. Items shadow weapons, weapons
// shadow armors, and the first record of a name wins.
func (r *Repository) buildItemNames() {
	add := func(name string, d loot.ItemDrop) {
		k := ident.Normalize(name)
		if k.IsZero() {
			return
		}
		if _, dup := r.itemNames[k]; !dup {
			r.itemNames[k] = d
		}
	}
	for _, it := range r.ds.Items {
		add(it.Name, loot.ItemDrop{Kind: loot.KindItem, DataID: it.ID})
	}
	for _, w := range r.ds.Weapons {
		add(w.Name, loot.ItemDrop{Kind: loot.KindWeapon, DataID: w.ID})
	}
	for _, a := range r.ds.Armors {
		add(a.Name, loot.ItemDrop{Kind: loot.KindArmor, DataID: a.ID})
	}
}

func (r *Repository) buildRegistry(reg config.Loot) {
	for _, p := range reg.Pools {
		np := loot.NewNamedPool(p.Name, parseEntries(p.Name, p.Entries)...)
		if np.Key.IsZero() {
			continue
		}
		if _, dup := r.pools[np.Key]; dup {
			slog.Warn("duplicate loot pool ignored", "pool", p.Name)
			continue
		}
		r.pools[np.Key] = np
	}

	for _, t := range reg.Tables {
		tbl := loot.NewDropTable(t.Name, t.FireRate(), t.MinLevel, t.MaxLevel, parseEntries(t.Name, t.Entries)...)
		if tbl.Key.IsZero() {
			continue
		}
		if _, dup := r.tables[tbl.Key]; dup {
			slog.Warn("duplicate loot table ignored", "table", t.Name)
			continue
		}
		r.tables[tbl.Key] = tbl
	}
}

func parseEntries(owner string, lines []string) []loot.DropPool {
	out := make([]loot.DropPool, 0, len(lines))
	for _, l := range lines {
		p, ok := notetag.ParseEntry(l)
		if !ok {
			slog.Warn("malformed loot entry skipped", "owner", owner, "entry", l)
			continue
		}
		out = append(out, p)
	}
	return out
}

func (r *Repository) buildEnemies() {
	for _, e := range r.ds.Enemies {
		if lvl := notetag.ParseLevel(e.Note); lvl > 0 {
			r.enemyLevels[e.ID] = lvl
		}

		el := notetag.ParseEnemyLoot(e.Note)
		var tables []*loot.DropTable
		for _, ref := range el.Refs {
			t, ok := r.tables[ref]
			if !ok {
				slog.Warn("enemy references unknown loot table", "enemy", e.ID, "table", ref)
				continue
			}
			tables = append(tables, t)
		}
		tables = append(tables, el.Inline...)
		if len(tables) > 0 {
			r.enemyTables[e.ID] = tables
		}
	}
}

func (r *Repository) buildWeights() {
	add := func(src Source, note string) {
		if adj := notetag.ParseWeightAdjustments(note); len(adj) > 0 {
			r.weights[src] = adj
		}
	}
	for _, a := range r.ds.Actors {
		add(Source{SourceActor, a.ID}, a.Note)
	}
	for _, c := range r.ds.Classes {
		add(Source{SourceClass, c.ID}, c.Note)
	}
	for _, s := range r.ds.States {
		add(Source{SourceState, s.ID}, s.Note)
	}
	for _, w := range r.ds.Weapons {
		add(Source{SourceWeapon, w.ID}, w.Note)
	}
	for _, a := range r.ds.Armors {
		add(Source{SourceArmor, a.ID}, a.Note)
	}
}

// buildCooking collects ingredients from consumable items and recipes
// from items, weapons and armors, in that order. Recipe order is the
// tie-break order.
func (r *Repository) buildCooking() {
	for _, it := range r.ds.Items {
		if in, ok := notetag.ParseIngredient(it.ID, it.Note); ok {
			if !it.Consumable {
				slog.Warn("ingredient tags on a non-consumable item ignored", "item", it.ID, "name", it.Name)
				continue
			}
			r.ingredients[it.ID] = in
		}
		r.addRecipe(it.Name, loot.ItemDrop{Kind: loot.KindItem, DataID: it.ID}, it.Note)
	}
	for _, w := range r.ds.Weapons {
		r.addRecipe(w.Name, loot.ItemDrop{Kind: loot.KindWeapon, DataID: w.ID}, w.Note)
	}
	for _, a := range r.ds.Armors {
		r.addRecipe(a.Name, loot.ItemDrop{Kind: loot.KindArmor, DataID: a.ID}, a.Note)
	}
}

func (r *Repository) addRecipe(name string, result loot.ItemDrop, note string) {
	if rec, ok := notetag.ParseRecipe(name, result, note); ok {
		r.recipes = append(r.recipes, rec)
	}
}

func (r *Repository) buildStates() {
	for _, s := range r.ds.States {
		rule := &states.Rule{
			ID:                s.ID,
			Name:              s.Name,
			MaxStacks:         1,
			Timing:            stateTiming(s.AutoRemoval),
			MinTurns:          s.MinTurns,
			MaxTurns:          s.MaxTurns,
			RemoveAtBattleEnd: s.RemoveAtBattleEnd,
		}
		notetag.ParseStackTags(s.Note).Apply(rule)
		rule.Normalize()
		r.stateRules[s.ID] = rule

		if mc, ok := notetag.ParseMulticast(s.Note); ok {
			r.stateMulticast[s.ID] = &mc
		}
	}
}

func stateTiming(t data.Timing) states.Timing {
	switch t {
	case data.TimingActionEnd:
		return states.TimingActionEnd
	case data.TimingTurnEnd:
		return states.TimingTurnEnd
	default:
		return states.TimingNone
	}
}

func (r *Repository) buildSkills() {
	for _, s := range r.ds.Skills {
		cost := multicast.Skill{ID: s.ID, HPCost: s.HPCost, MPCost: s.MPCost, TPCost: s.TPCost}
		for _, ref := range notetag.ParseItemCosts(s.Note) {
			d, ok := r.ResolveItem(ref.Name)
			if !ok {
				slog.Warn("skill item cost names unknown item", "skill", s.ID, "item", ref.Name)
				continue
			}
			cost.Items = append(cost.Items, multicast.ItemCost{Drop: d, Count: ref.Count})
		}
		r.skillCosts[s.ID] = cost

		if mc, ok := notetag.ParseMulticast(s.Note); ok {
			r.skillMulticast[s.ID] = &mc
		}
	}
}
