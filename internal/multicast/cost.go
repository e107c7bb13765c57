package multicast

import (
	"math"

	"github.com/udisondev/gamerules/internal/loot"
)

// ItemCost is an item consumed per cast.
type ItemCost struct {
	Drop  loot.ItemDrop
	Count int
}

// Skill is the cost view of a skill.
type Skill struct {
	ID     int
	HPCost int
	MPCost int
	TPCost int
	Items  []ItemCost
}

// Resources is an actor's spendable pool.
type Resources struct {
	HP int
	MP int
	TP int
}

// Covers reports whether r can pay cost. HP costs may never bring HP
// to 0.
func (r Resources) Covers(cost Resources) bool {
	if cost.HP > 0 && r.HP <= cost.HP {
		return false
	}
	return r.MP >= cost.MP && r.TP >= cost.TP
}

// Sub returns r minus cost.
func (r Resources) Sub(cost Resources) Resources {
	return Resources{HP: r.HP - cost.HP, MP: r.MP - cost.MP, TP: r.TP - cost.TP}
}

// castCost is the resource price of casts casts of s with multiplier mul.
// The per-cast price is floored before scaling by the cast count.
func castCost(s Skill, mul float64, casts int) Resources {
	scale := func(v int) int {
		if v <= 0 {
			return 0
		}
		return int(math.Floor(float64(v)*mul)) * casts
	}
	return Resources{HP: scale(s.HPCost), MP: scale(s.MPCost), TP: scale(s.TPCost)}
}
