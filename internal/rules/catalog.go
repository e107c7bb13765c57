package rules

import (
	"maps"
	"slices"

	"github.com/udisondev/gamerules/internal/cooking"
	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/states"
)

// Every accessor below returns a copy; the repository itself never
// changes after Build.

// Pool returns a registry pool.
func (r *Repository) Pool(key ident.Key) (*loot.NamedPool, bool) {
	p, ok := r.pools[key]
	if !ok {
		return nil, false
	}
	c := *p
	c.Entries = slices.Clone(p.Entries)
	return &c, true
}

// Table returns a registry table.
func (r *Repository) Table(key ident.Key) (*loot.DropTable, bool) {
	t, ok := r.tables[key]
	if !ok {
		return nil, false
	}
	return cloneTable(t), true
}

func cloneTable(t *loot.DropTable) *loot.DropTable {
	c := *t
	c.Pools = slices.Clone(t.Pools)
	return &c
}

// ItemByName resolves a record name.
func (r *Repository) ItemByName(key ident.Key) (loot.ItemDrop, bool) {
	d, ok := r.itemNames[key]
	return d, ok
}

// ResolveItem resolves a literal reference ("weapon 3") or a record name.
func (r *Repository) ResolveItem(name string) (loot.ItemDrop, bool) {
	if d, ok := loot.ParseLiteral(name); ok {
		return d, true
	}
	return r.ItemByName(ident.Normalize(name))
}

// EnemyTables returns the tables an enemy drops from: named references
// first, then inline tables, each in note order.
func (r *Repository) EnemyTables(enemyID int) []*loot.DropTable {
	src := r.enemyTables[enemyID]
	if len(src) == 0 {
		return nil
	}
	out := make([]*loot.DropTable, len(src))
	for i, t := range src {
		out[i] = cloneTable(t)
	}
	return out
}

// EnemyLevel returns the <Level> of an enemy, 0 when unset.
func (r *Repository) EnemyLevel(enemyID int) int {
	return r.enemyLevels[enemyID]
}

// WeightAdjustments returns the <Loot Weight> tags of one record.
func (r *Repository) WeightAdjustments(src Source) []loot.WeightAdjustment {
	return slices.Clone(r.weights[src])
}

func (r *Repository) Ingredient(itemID int) (cooking.Ingredient, bool) {
	in, ok := r.ingredients[itemID]
	in.Values = maps.Clone(in.Values)
	return in, ok
}

func (r *Repository) Recipes() []cooking.Recipe {
	out := make([]cooking.Recipe, len(r.recipes))
	for i, rc := range r.recipes {
		rc.Required = maps.Clone(rc.Required)
		rc.Optional = maps.Clone(rc.Optional)
		out[i] = rc
	}
	return out
}

func (r *Repository) StateRule(id int) (*states.Rule, bool) {
	rule, ok := r.stateRules[id]
	if !ok {
		return nil, false
	}
	c := *rule
	c.Overrides = slices.Clone(rule.Overrides)
	return &c, true
}

func (r *Repository) SkillCost(id int) (multicast.Skill, bool) {
	s, ok := r.skillCosts[id]
	s.Items = slices.Clone(s.Items)
	return s, ok
}

func (r *Repository) SkillMulticast(id int) (*multicast.Rule, bool) {
	return cloneMulticast(r.skillMulticast[id])
}

func (r *Repository) StateMulticast(id int) (*multicast.Rule, bool) {
	return cloneMulticast(r.stateMulticast[id])
}

func cloneMulticast(rule *multicast.Rule) (*multicast.Rule, bool) {
	if rule == nil {
		return nil, false
	}
	c := *rule
	c.Eligible = slices.Clone(rule.Eligible)
	return &c, true
}
