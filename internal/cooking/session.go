package cooking

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/udisondev/gamerules/internal/loot"
)

var (
	// ErrCookingActive is returned by Start while a session is open.
	ErrCookingActive = errors.New("cooking session already active")
	// ErrNoSession is returned when adding or removing with no session.
	ErrNoSession = errors.New("no cooking session")
	// ErrNotIngredient is returned for items without ingredient data.
	ErrNotIngredient = errors.New("item is not an ingredient")
	// ErrNotInInventory is returned when the item cannot be taken.
	ErrNotInInventory = errors.New("item not in inventory")
)

// Catalog provides ingredient data and the recipe table.
type Catalog interface {
	Ingredient(itemID int) (Ingredient, bool)
	Recipes() []Recipe
}

// Inventory is the party container ingredients come from and results
// go to.
type Inventory interface {
	Take(d loot.ItemDrop, n int) bool
	Give(d loot.ItemDrop, n int)
}

// Result is the outcome of Cook.
type Result struct {
	// Item is the granted item; zero when nothing was granted.
	Item loot.ItemDrop
	// Recipe is set when a recipe matched.
	Recipe     *Recipe
	Discovered bool
}

// Success reports whether a recipe matched.
func (r Result) Success() bool { return r.Recipe != nil }

// Kitchen runs cooking sessions for one party.
//
// Ingredients leave the inventory when picked and sit in the pending
// list; Cook turns them into a result, Cancel puts them back.
type Kitchen struct {
	mu       sync.Mutex
	catalog  Catalog
	inv      Inventory
	matcher  *Matcher
	failsafe loot.ItemDrop

	active  bool
	pending []Ingredient
	known   map[loot.ItemDrop]struct{}
}

// NewKitchen creates a kitchen. failsafe is granted when no recipe
// matches; a zero ItemDrop grants nothing.
func NewKitchen(catalog Catalog, inv Inventory, failsafe loot.ItemDrop) *Kitchen {
	return &Kitchen{
		catalog:  catalog,
		inv:      inv,
		matcher:  NewMatcher(catalog.Recipes()),
		failsafe: failsafe,
		known:    make(map[loot.ItemDrop]struct{}),
	}
}

// Start opens a session.
func (k *Kitchen) Start() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.active {
		return ErrCookingActive
	}
	k.active = true
	k.pending = k.pending[:0]
	return nil
}

// Active reports whether a session is open.
func (k *Kitchen) Active() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.active
}

// Add takes one unit of itemID from the inventory into the pot.
func (k *Kitchen) Add(itemID int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.active {
		return ErrNoSession
	}
	in, ok := k.catalog.Ingredient(itemID)
	if !ok {
		return fmt.Errorf("adding item %d: %w", itemID, ErrNotIngredient)
	}
	if !k.inv.Take(loot.ItemDrop{Kind: loot.KindItem, DataID: itemID}, 1) {
		return fmt.Errorf("adding item %d: %w", itemID, ErrNotInInventory)
	}
	k.pending = append(k.pending, in)
	return nil
}

// Remove puts the pending ingredient at index back into the inventory.
func (k *Kitchen) Remove(index int) error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.active {
		return ErrNoSession
	}
	if index < 0 || index >= len(k.pending) {
		return fmt.Errorf("removing ingredient %d: index out of range [0,%d)", index, len(k.pending))
	}
	in := k.pending[index]
	k.pending = append(k.pending[:index], k.pending[index+1:]...)
	k.inv.Give(loot.ItemDrop{Kind: loot.KindItem, DataID: in.ItemID}, 1)
	return nil
}

// Pending returns a copy of the ingredients in the pot.
func (k *Kitchen) Pending() []Ingredient {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]Ingredient, len(k.pending))
	copy(out, k.pending)
	return out
}

// Cook resolves the pot, grants the result (or the failsafe item) and
// closes the session. The pot is cleared either way, so cooking again
// without new ingredients yields the failsafe.
func (k *Kitchen) Cook() Result {
	k.mu.Lock()
	defer k.mu.Unlock()

	recipe, ok := k.matcher.Resolve(k.pending)
	k.pending = k.pending[:0]
	k.active = false

	if !ok {
		if !k.failsafe.IsZero() {
			k.inv.Give(k.failsafe, 1)
		}
		slog.Debug("cooking failed", "failsafe", k.failsafe)
		return Result{Item: k.failsafe}
	}

	k.inv.Give(recipe.Result, 1)
	_, seen := k.known[recipe.Result]
	k.known[recipe.Result] = struct{}{}

	slog.Debug("cooking succeeded", "recipe", recipe.Name, "result", recipe.Result, "discovered", !seen)
	return Result{Item: recipe.Result, Recipe: &recipe, Discovered: !seen}
}

// Cancel returns every pending ingredient and closes the session.
func (k *Kitchen) Cancel() {
	k.mu.Lock()
	defer k.mu.Unlock()

	for _, in := range k.pending {
		k.inv.Give(loot.ItemDrop{Kind: loot.KindItem, DataID: in.ItemID}, 1)
	}
	k.pending = k.pending[:0]
	k.active = false
}

// Known reports whether the recipe producing d has been cooked before.
func (k *Kitchen) Known(d loot.ItemDrop) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	_, ok := k.known[d]
	return ok
}
