// Package inventory holds the party's item, weapon and armor containers.
//
// Plain units are counted per database record. Leveled equipment (weapons
// and armors dropped with a level or tier) is kept as separate instances.
// Snapshot/Restore give the all-or-nothing rollback multicast needs.
package inventory

import (
	"maps"
	"slices"
	"sync"

	"github.com/udisondev/gamerules/internal/loot"
)

// Instance is one leveled piece of equipment.
type Instance struct {
	Drop  loot.ItemDrop
	Level int
	Tier  int
}

// Inventory is a party's containers. Safe for concurrent use.
type Inventory struct {
	mu        sync.RWMutex
	counts    map[loot.ItemDrop]int
	instances []Instance
}

// New creates an empty inventory.
func New() *Inventory {
	return &Inventory{counts: make(map[loot.ItemDrop]int)}
}

// Count returns how many plain units of d the party holds.
func (inv *Inventory) Count(d loot.ItemDrop) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.counts[d]
}

// Give adds n plain units of d. Non-positive n and zero drops are ignored.
func (inv *Inventory) Give(d loot.ItemDrop, n int) {
	if n <= 0 || d.IsZero() {
		return
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.counts[d] += n
}

// Take removes n plain units of d. It removes nothing and returns false
// when fewer than n are held.
func (inv *Inventory) Take(d loot.ItemDrop, n int) bool {
	if n <= 0 {
		return true
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()

	have := inv.counts[d]
	if have < n {
		return false
	}
	if have == n {
		delete(inv.counts, d)
	} else {
		inv.counts[d] = have - n
	}
	return true
}

// Grant adds one resolved drop. Leveled or tiered equipment becomes an
// instance; everything else is a plain unit.
func (inv *Inventory) Grant(it loot.ResolvedItem) {
	if it.Drop.IsZero() {
		return
	}
	if it.Drop.Equipment() && (it.Level > 0 || it.Tier > 0) {
		inv.mu.Lock()
		inv.instances = append(inv.instances, Instance{Drop: it.Drop, Level: it.Level, Tier: it.Tier})
		inv.mu.Unlock()
		return
	}
	inv.Give(it.Drop, 1)
}

// Instances returns a copy of the leveled equipment.
func (inv *Inventory) Instances() []Instance {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return slices.Clone(inv.instances)
}

// Snapshot is an immutable copy of an inventory.
type Snapshot struct {
	counts    map[loot.ItemDrop]int
	instances []Instance
}

// Count returns the snapshot's plain count of d.
func (s Snapshot) Count(d loot.ItemDrop) int { return s.counts[d] }

// Snapshot copies the current containers.
func (inv *Inventory) Snapshot() Snapshot {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return Snapshot{
		counts:    maps.Clone(inv.counts),
		instances: slices.Clone(inv.instances),
	}
}

// Restore replaces the containers with a copy of s.
func (inv *Inventory) Restore(s Snapshot) {
	counts := maps.Clone(s.counts)
	if counts == nil {
		counts = make(map[loot.ItemDrop]int)
	}
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.counts = counts
	inv.instances = slices.Clone(s.instances)
}
