package gameplay

import "github.com/udisondev/gamerules/internal/cooking"

// StartCooking opens the party's cooking session.
func (r *Runtime) StartCooking() error { return r.kitchen.Start() }

// AddIngredient moves one unit of an item from the inventory into the
// pot.
func (r *Runtime) AddIngredient(itemID int) error { return r.kitchen.Add(itemID) }

// RemoveIngredient returns the pot ingredient at index to the inventory.
func (r *Runtime) RemoveIngredient(index int) error { return r.kitchen.Remove(index) }

// PendingIngredients lists the pot.
func (r *Runtime) PendingIngredients() []cooking.Ingredient { return r.kitchen.Pending() }

// GiveCooking cooks the pot and grants the dish or the failsafe.
func (r *Runtime) GiveCooking() cooking.Result {
	res := r.kitchen.Cook()
	switch {
	case res.Success() && res.Discovered:
		r.notify("Discovered %s!", r.ItemName(res.Item))
	case res.Success():
		r.notify("Cooked %s", r.ItemName(res.Item))
	case !res.Item.IsZero():
		r.notify("The dish failed: %s", r.ItemName(res.Item))
	default:
		r.notify("The dish failed")
	}
	return res
}

// CancelCooking returns every pending ingredient.
func (r *Runtime) CancelCooking() { r.kitchen.Cancel() }

// RecipeKnown reports whether a recipe's result was cooked before.
func (r *Runtime) RecipeKnown(recipe cooking.Recipe) bool { return r.kitchen.Known(recipe.Result) }
