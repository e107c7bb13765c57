// Package loot resolves weighted drop pools and drop tables into concrete
// item drops.
//
// A DropTable fires with its rate, picks exactly one DropPool by weight,
// rolls an amount, and resolves the pool's name to an item: either a
// literal database reference ("weapon 3"), a named pool (drawn again by
// weight), or an item name.
package loot

import (
	"fmt"
	"math"

	"github.com/udisondev/gamerules/internal/ident"
)

// Kind is the database table an ItemDrop refers to.
type Kind int

const (
	KindNone   Kind = 0
	KindItem   Kind = 1
	KindWeapon Kind = 2
	KindArmor  Kind = 3
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindWeapon:
		return "weapon"
	case KindArmor:
		return "armor"
	default:
		return "none"
	}
}

// ItemDrop references a record in the host item database.
type ItemDrop struct {
	Kind   Kind
	DataID int
}

// IsZero reports whether d references nothing.
func (d ItemDrop) IsZero() bool { return d.Kind == KindNone || d.DataID <= 0 }

// Equipment reports whether d is a weapon or armor.
func (d ItemDrop) Equipment() bool { return d.Kind == KindWeapon || d.Kind == KindArmor }

func (d ItemDrop) String() string { return fmt.Sprintf("%s %d", d.Kind, d.DataID) }

// DropPool is one weighted candidate of a table or named pool.
type DropPool struct {
	Name          string
	Key           ident.Key
	MinAmount     int
	MaxAmount     int
	Level         int
	Tier          int
	WeightFormula string

	weight float64
}

// NewDropPool builds a pool with a normalized key, clamped weight and
// ordered amount range. Amounts below zero become zero.
func NewDropPool(name string, weight float64, minAmount, maxAmount int) DropPool {
	p := DropPool{
		Name: name,
		Key:  ident.Normalize(name),
	}
	p.SetWeight(weight)
	p.SetAmount(minAmount, maxAmount)
	return p
}

// Weight returns the base weight (always >= 0).
func (p DropPool) Weight() float64 { return p.weight }

// SetWeight sets the base weight; negative, NaN and infinite values
// become 0.
func (p *DropPool) SetWeight(w float64) {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		w = 0
	}
	p.weight = w
}

// SetAmount sets the amount range, swapping inverted bounds.
func (p *DropPool) SetAmount(minAmount, maxAmount int) {
	minAmount = max(minAmount, 0)
	maxAmount = max(maxAmount, 0)
	if minAmount > maxAmount {
		minAmount, maxAmount = maxAmount, minAmount
	}
	p.MinAmount = minAmount
	p.MaxAmount = maxAmount
}

// DropTable is an ordered list of pools with a fire rate and level band.
// Anonymous tables have an empty Name.
type DropTable struct {
	Name     string
	Key      ident.Key
	Pools    []DropPool
	MinLevel int
	MaxLevel int
	Rate     float64
}

// NewDropTable builds a table with a clamped rate and ordered level band.
// A zero MaxLevel means the band has no upper bound.
func NewDropTable(name string, rate float64, minLevel, maxLevel int, pools ...DropPool) *DropTable {
	if math.IsNaN(rate) || rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	minLevel = max(minLevel, 0)
	maxLevel = max(maxLevel, 0)
	if maxLevel > 0 && minLevel > maxLevel {
		minLevel, maxLevel = maxLevel, minLevel
	}
	return &DropTable{
		Name:     name,
		Key:      ident.Normalize(name),
		Pools:    pools,
		MinLevel: minLevel,
		MaxLevel: maxLevel,
		Rate:     rate,
	}
}

// ClampLevel fits level into the table's band.
func (t *DropTable) ClampLevel(level int) int {
	if level < t.MinLevel {
		level = t.MinLevel
	}
	if t.MaxLevel > 0 && level > t.MaxLevel {
		level = t.MaxLevel
	}
	return level
}

// NamedPool is a registry pool: a table entry naming it is resolved by a
// second weighted draw over Entries.
type NamedPool struct {
	Name    string
	Key     ident.Key
	Entries []DropPool
}

// NewNamedPool builds a named pool with a normalized key.
func NewNamedPool(name string, entries ...DropPool) *NamedPool {
	return &NamedPool{Name: name, Key: ident.Normalize(name), Entries: entries}
}

// ResolvedItem is one unit of loot ready to be granted.
type ResolvedItem struct {
	Drop  ItemDrop
	Level int
	Tier  int
	// Pool is the name of the table entry that produced the item.
	Pool string
}
