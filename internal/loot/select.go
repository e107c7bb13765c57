package loot

import "github.com/udisondev/gamerules/internal/dice"

// SelectWeighted draws one pool by effective weight.
//
// Effective weight is the pool's base weight with adj applied. Pools are
// walked in order; the first whose cumulative weight exceeds the draw
// wins. Returns false when the total effective weight is not positive.
func SelectWeighted(src dice.Source, pools []DropPool, adj Adjustments) (DropPool, bool) {
	if len(pools) == 0 {
		return DropPool{}, false
	}

	weights := make([]float64, len(pools))
	total := 0.0
	for i, p := range pools {
		weights[i] = adj.Apply(p.Key, p.Weight())
		total += weights[i]
	}
	if total <= 0 {
		return DropPool{}, false
	}

	r := src.Float64() * total
	acc := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		acc += w
		if acc > r {
			return pools[i], true
		}
	}
	// r landed on the total through float rounding
	return pools[last], true
}

// ResolveAmount returns a uniform amount in [MinAmount, MaxAmount].
func ResolveAmount(src dice.Source, p DropPool) int {
	return dice.Between(src, p.MinAmount, p.MaxAmount)
}
