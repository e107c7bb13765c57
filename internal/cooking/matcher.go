// Package cooking resolves a pot of ingredients into the best matching
// recipe and runs the player's cooking session (pick ingredients, cook or
// cancel).
package cooking

import (
	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
)

// Ingredient is what one unit of an item contributes to the pot.
type Ingredient struct {
	ItemID int
	Values map[ident.Key]float64
}

// Value returns the ingredient's total contribution.
func (in Ingredient) Value() float64 {
	total := 0.0
	for _, v := range in.Values {
		total += v
	}
	return total
}

// Recipe is a cookable result and its requirements.
type Recipe struct {
	Name          string
	Result        loot.ItemDrop
	Required      map[ident.Key]int
	Optional      ident.Set
	ValueRequired float64
}

// Pot is the accumulated state of a set of ingredients.
type Pot struct {
	Total  float64
	Counts map[ident.Key]int
}

// Fill accumulates ingredients: every category an ingredient contributes
// to counts once for that ingredient.
func Fill(ingredients []Ingredient) Pot {
	p := Pot{Counts: make(map[ident.Key]int)}
	for _, in := range ingredients {
		for cat, v := range in.Values {
			p.Total += v
			p.Counts[cat]++
		}
	}
	return p
}

// Matches reports whether the pot satisfies r.
//
// A required category below its count is a hard failure. Every category
// in the pot must be accounted for by the recipe, either as required or
// as optional; optional categories never rescue a failed requirement.
func (r *Recipe) Matches(p Pot) bool {
	if len(p.Counts) == 0 || p.Total < r.ValueRequired {
		return false
	}
	for cat, need := range r.Required {
		if p.Counts[cat] < need {
			return false
		}
	}
	for cat := range p.Counts {
		if _, req := r.Required[cat]; req {
			continue
		}
		if !r.Optional.Has(cat) {
			return false
		}
	}
	return true
}

// Matcher picks recipes from a fixed, ordered table.
type Matcher struct {
	recipes []Recipe
}

// NewMatcher creates a matcher over recipes in table order.
func NewMatcher(recipes []Recipe) *Matcher {
	return &Matcher{recipes: recipes}
}

// Resolve returns the matching recipe with the highest ValueRequired;
// ties go to the earliest recipe in the table. It does not consume the
// ingredients.
func (m *Matcher) Resolve(ingredients []Ingredient) (Recipe, bool) {
	pot := Fill(ingredients)
	best := -1
	for i := range m.recipes {
		if !m.recipes[i].Matches(pot) {
			continue
		}
		if best < 0 || m.recipes[i].ValueRequired > m.recipes[best].ValueRequired {
			best = i
		}
	}
	if best < 0 {
		return Recipe{}, false
	}
	return m.recipes[best], true
}
