package gameplay

import (
	"fmt"
	"log/slog"

	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/rules"
)

// Adjustments composes the <Loot Weight> tags of every party member:
// actor, class, present states and equipment.
func (r *Runtime) Adjustments() loot.Adjustments {
	var sources [][]loot.WeightAdjustment
	add := func(kind rules.SourceKind, id int) {
		if adj := r.repo.WeightAdjustments(rules.Source{Kind: kind, ID: id}); len(adj) > 0 {
			sources = append(sources, adj)
		}
	}
	for _, m := range r.party.Members() {
		add(rules.SourceActor, m.ActorID())
		add(rules.SourceClass, m.ClassID())
		for _, id := range m.States() {
			add(rules.SourceState, id)
		}
		for _, id := range m.Weapons() {
			add(rules.SourceWeapon, id)
		}
		for _, id := range m.Armors() {
			add(rules.SourceArmor, id)
		}
	}
	return loot.Compose(sources...)
}

func (r *Runtime) roll(level int) loot.Roll {
	return loot.Roll{
		Level:     level,
		PartySize: r.party.MemberCount(),
		Adjust:    r.Adjustments(),
	}
}

// OnEnemyDefeated rolls every drop table of the enemy and grants the
// result. The enemy's <Level> drives equipment leveling; enemies without
// one use the party's highest level.
func (r *Runtime) OnEnemyDefeated(enemyID int) []loot.ResolvedItem {
	tables := r.repo.EnemyTables(enemyID)
	if len(tables) == 0 {
		return nil
	}

	level := r.repo.EnemyLevel(enemyID)
	if level == 0 {
		level = r.party.HighestLevel()
	}

	items := r.resolver.EvaluateEnemyDrops(tables, r.opts.DropRate, r.roll(level))
	r.grant(items)

	slog.Debug("enemy drops resolved", "enemy", enemyID, "tables", len(tables), "items", len(items))
	return items
}

// GiveDropPool resolves name once and grants the result. name may be a
// registry pool, an item name or a literal reference. A positive amount
// range multiplies the result. A zero bound takes the other bound; both
// zero mean one.
func (r *Runtime) GiveDropPool(name string, minAmount, maxAmount int) ([]loot.ResolvedItem, error) {
	key := ident.Normalize(name)
	if _, ok := r.repo.Pool(key); !ok {
		if _, ok := r.repo.ResolveItem(name); !ok {
			return nil, fmt.Errorf("giving drop pool %q: %w", name, ErrUnknownPool)
		}
	}

	switch {
	case minAmount <= 0 && maxAmount <= 0:
		minAmount, maxAmount = 1, 1
	case maxAmount <= 0:
		maxAmount = minAmount
	case minAmount <= 0:
		minAmount = maxAmount
	}
	pool := loot.NewDropPool(name, 1, minAmount, maxAmount)

	items := r.resolver.RollPool(pool, 0, r.roll(r.party.HighestLevel()))
	r.grant(items)
	return items, nil
}

// GiveDropTable resolves a registry table and grants the result. The
// table always fires; its rate only applies to enemy drops.
func (r *Runtime) GiveDropTable(name string) ([]loot.ResolvedItem, error) {
	t, ok := r.repo.Table(ident.Normalize(name))
	if !ok {
		return nil, fmt.Errorf("giving drop table %q: %w", name, ErrUnknownTable)
	}

	items := r.resolver.RollTable(t, r.roll(r.party.HighestLevel()))
	r.grant(items)
	return items, nil
}

// grant hands items to the sink grouped by identical drops, keeping
// first-seen order.
func (r *Runtime) grant(items []loot.ResolvedItem) {
	var order []loot.ResolvedItem
	counts := make(map[loot.ResolvedItem]int)
	for _, it := range items {
		if counts[it] == 0 {
			order = append(order, it)
		}
		counts[it]++
	}

	for _, it := range order {
		n := counts[it]
		r.sink.Grant(it, n)
		if it.Level > 0 {
			r.notify("Obtained %s (Lv %d) x%d", r.ItemName(it.Drop), it.Level, n)
		} else {
			r.notify("Obtained %s x%d", r.ItemName(it.Drop), n)
		}
	}
}
