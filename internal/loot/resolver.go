package loot

import (
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/udisondev/gamerules/internal/dice"
	"github.com/udisondev/gamerules/internal/formula"
	"github.com/udisondev/gamerules/internal/ident"
)

// maxPoolDepth bounds named pools that reference other named pools.
const maxPoolDepth = 8

var literalRef = regexp.MustCompile(`(?i)^\s*(item|weapon|armor|i|w|a)\s*(\d+)\s*$`)

// Catalog is the part of the rule repository the resolver reads.
type Catalog interface {
	Pool(key ident.Key) (*NamedPool, bool)
	Table(key ident.Key) (*DropTable, bool)
	ItemByName(key ident.Key) (ItemDrop, bool)
}

// Roll carries the per-event inputs of a resolution.
type Roll struct {
	// Level is the enemy level (or party level for commands).
	Level     int
	PartySize int
	Adjust    Adjustments
}

// Options configure a Resolver.
type Options struct {
	// EquipLeveling propagates levels onto dropped weapons and armors.
	EquipLeveling bool
}

// Resolver turns tables and pools into ResolvedItems.
type Resolver struct {
	catalog Catalog
	src     dice.Source
	opts    Options
}

// NewResolver creates a resolver over catalog drawing from src.
func NewResolver(catalog Catalog, src dice.Source, opts Options) *Resolver {
	return &Resolver{catalog: catalog, src: src, opts: opts}
}

// EvaluateEnemyDrops rolls every table independently and unions the
// results. Each table fires with probability rate*dropRateModifier.
func (r *Resolver) EvaluateEnemyDrops(tables []*DropTable, dropRateModifier float64, roll Roll) []ResolvedItem {
	var out []ResolvedItem
	for _, t := range tables {
		if t == nil {
			continue
		}
		if !dice.Chance(r.src, t.Rate*dropRateModifier) {
			slog.Debug("drop table did not fire", "table", t.Name, "rate", t.Rate)
			continue
		}
		out = append(out, r.RollTable(t, roll)...)
	}
	return out
}

// RollTable resolves one pool of t without the rate roll.
func (r *Resolver) RollTable(t *DropTable, roll Roll) []ResolvedItem {
	pool, ok := SelectWeighted(r.src, r.effective(t.Pools, roll), roll.Adjust)
	if !ok {
		slog.Debug("drop table has no weight", "table", t.Name)
		return nil
	}
	return r.materialize(pool, ResolveAmount(r.src, pool), t, roll)
}

// RollPool resolves a single pool outside any table. amount overrides
// the pool's own range when positive.
func (r *Resolver) RollPool(pool DropPool, amount int, roll Roll) []ResolvedItem {
	if amount <= 0 {
		amount = ResolveAmount(r.src, pool)
	}
	return r.materialize(pool, amount, nil, roll)
}

func (r *Resolver) materialize(pool DropPool, amount int, t *DropTable, roll Roll) []ResolvedItem {
	drop, mult, entry, ok := r.resolveName(pool, roll, 0)
	if !ok {
		return nil
	}
	count := amount * mult
	if count <= 0 {
		return nil
	}

	item := ResolvedItem{Drop: drop, Pool: pool.Name}
	if r.opts.EquipLeveling && drop.Equipment() {
		item.Level = r.level(pool, entry, t, roll)
		item.Tier = entry.Tier
		if item.Tier == 0 {
			item.Tier = pool.Tier
		}
	}

	out := make([]ResolvedItem, count)
	for i := range out {
		out[i] = item
	}
	return out
}

func (r *Resolver) level(pool, entry DropPool, t *DropTable, roll Roll) int {
	switch {
	case entry.Level > 0:
		return entry.Level
	case pool.Level > 0:
		return pool.Level
	case t != nil:
		return t.ClampLevel(roll.Level)
	default:
		return max(roll.Level, 0)
	}
}

// resolveName maps a pool to an item. It also returns the amount
// multiplier and the innermost entry chosen from named pools.
func (r *Resolver) resolveName(p DropPool, roll Roll, depth int) (ItemDrop, int, DropPool, bool) {
	if d, ok := ParseLiteral(p.Name); ok {
		return d, 1, p, true
	}

	if np, ok := r.catalog.Pool(p.Key); ok {
		if depth >= maxPoolDepth {
			slog.Warn("named pool nesting too deep", "pool", p.Name)
			return ItemDrop{}, 0, p, false
		}
		entry, ok := SelectWeighted(r.src, r.effective(np.Entries, roll), roll.Adjust)
		if !ok {
			return ItemDrop{}, 0, p, false
		}
		d, mult, inner, ok := r.resolveName(entry, roll, depth+1)
		if !ok {
			return ItemDrop{}, 0, p, false
		}
		return d, mult * max(ResolveAmount(r.src, entry), 1), inner, true
	}

	if d, ok := r.catalog.ItemByName(p.Key); ok {
		return d, 1, p, true
	}

	slog.Warn("unknown loot pool or item name", "name", p.Name)
	return ItemDrop{}, 0, p, false
}

// effective evaluates weight formulas, returning pools unchanged when
// none carries one.
func (r *Resolver) effective(pools []DropPool, roll Roll) []DropPool {
	hasFormula := false
	for _, p := range pools {
		if p.WeightFormula != "" {
			hasFormula = true
			break
		}
	}
	if !hasFormula {
		return pools
	}

	out := make([]DropPool, len(pools))
	copy(out, pools)
	for i := range out {
		if out[i].WeightFormula == "" {
			continue
		}
		vars := formula.Vars{
			"base":       out[i].Weight(),
			"level":      float64(roll.Level),
			"party_size": float64(roll.PartySize),
		}
		out[i].SetWeight(formula.EvalOr(out[i].WeightFormula, vars, out[i].Weight()))
	}
	return out
}

// ParseLiteral recognizes direct database references such as "item 7",
// "Weapon 3" or "a12".
func ParseLiteral(name string) (ItemDrop, bool) {
	m := literalRef.FindStringSubmatch(name)
	if m == nil {
		return ItemDrop{}, false
	}
	id, err := strconv.Atoi(m[2])
	if err != nil || id <= 0 {
		return ItemDrop{}, false
	}
	switch strings.ToLower(m[1]) {
	case "item", "i":
		return ItemDrop{Kind: KindItem, DataID: id}, true
	case "weapon", "w":
		return ItemDrop{Kind: KindWeapon, DataID: id}, true
	default:
		return ItemDrop{Kind: KindArmor, DataID: id}, true
	}
}
