package loot

import "github.com/udisondev/gamerules/internal/ident"

// Op is a weight adjustment operation.
type Op int

const (
	OpAdd Op = iota
	OpSubtract
	OpMultiply
)

// WeightAdjustment modifies the weight of the pool entries named Pool.
// Adjustments come from actors, classes, states and equipment.
type WeightAdjustment struct {
	Pool ident.Key
	Op   Op
	Rate float64
}

type modifier struct {
	add float64
	mul float64
}

// Adjustments is the composed, read-only view of every weight adjustment
// active for one resolution. The zero value adjusts nothing.
type Adjustments struct {
	byPool map[ident.Key]modifier
}

// Compose folds adjustments from any number of sources: adds and
// subtracts are summed, multiplies are multiplied together.
func Compose(sources ...[]WeightAdjustment) Adjustments {
	a := Adjustments{byPool: make(map[ident.Key]modifier)}
	for _, src := range sources {
		for _, adj := range src {
			if adj.Pool.IsZero() {
				continue
			}
			m, ok := a.byPool[adj.Pool]
			if !ok {
				m.mul = 1
			}
			switch adj.Op {
			case OpAdd:
				m.add += adj.Rate
			case OpSubtract:
				m.add -= adj.Rate
			case OpMultiply:
				m.mul *= adj.Rate
			}
			a.byPool[adj.Pool] = m
		}
	}
	return a
}

// Apply returns weight*mul + add for pool, never below 0.
func (a Adjustments) Apply(pool ident.Key, weight float64) float64 {
	m, ok := a.byPool[pool]
	if !ok {
		return weight
	}
	w := weight*m.mul + m.add
	if w < 0 {
		return 0
	}
	return w
}

// Len returns the number of pools with an adjustment.
func (a Adjustments) Len() int { return len(a.byPool) }
