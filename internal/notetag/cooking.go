package notetag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/udisondev/gamerules/internal/cooking"
	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
)

const (
	ingredientBlock = "Ingredient"
	recipeBlock     = "Cooking Recipe"
)

var (
	tagIngredient  = newTag("Ingredient")
	ingredientPair = regexp.MustCompile(`^(.+?)\s*[:\s]\s*\+?(-?\d+(?:\.\d+)?)$`)
)

// ParseIngredient reads <Ingredient: category +value> tags and
// <Ingredient> blocks of "category: value" lines. Values for a repeated
// category add up. It reports false when the item is not an ingredient.
func ParseIngredient(itemID int, note string) (cooking.Ingredient, bool) {
	values := make(map[ident.Key]float64)
	add := func(s string) {
		m := ingredientPair.FindStringSubmatch(strings.TrimSpace(s))
		if m == nil {
			return
		}
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return
		}
		if k := ident.Normalize(m[1]); !k.IsZero() {
			values[k] += v
		}
	}

	for _, v := range tagValues(note, tagIngredient) {
		add(v)
	}
	for _, b := range Blocks(note, ingredientBlock) {
		for _, l := range b.Lines {
			add(l)
		}
	}
	if len(values) == 0 {
		return cooking.Ingredient{}, false
	}
	return cooking.Ingredient{ItemID: itemID, Values: values}, true
}

// ParseRecipe reads a <Cooking Recipe> block whose result is the noted
// item:
//
//	<Cooking Recipe>
//	Fruit: 2
//	Optional: Sugar, Spice
//	Value: 10
//	</Cooking Recipe>
//
// Only the first block counts.
func ParseRecipe(name string, result loot.ItemDrop, note string) (cooking.Recipe, bool) {
	blocks := Blocks(note, recipeBlock)
	if len(blocks) == 0 {
		return cooking.Recipe{}, false
	}

	r := cooking.Recipe{
		Name:     name,
		Result:   result,
		Required: make(map[ident.Key]int),
		Optional: ident.NewSet(),
	}
	for _, l := range blocks[0].Lines {
		k, v, ok := keyValue(l)
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "value":
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				r.ValueRequired = max(f, 0)
			}
		case "optional":
			for _, c := range strings.Split(v, ",") {
				if key := ident.Normalize(c); !key.IsZero() {
					r.Optional[key] = struct{}{}
				}
			}
		default:
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				continue
			}
			if key := ident.Normalize(k); !key.IsZero() {
				r.Required[key] = n
			}
		}
	}
	return r, true
}
