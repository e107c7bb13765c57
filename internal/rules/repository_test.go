package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamerules/internal/config"
	"github.com/udisondev/gamerules/internal/data"
	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
	"github.com/udisondev/gamerules/internal/multicast"
	"github.com/udisondev/gamerules/internal/states"
)

func testDataset() *data.Dataset {
	ds := &data.Dataset{
		Items: []*data.Item{
			{ID: 1, Name: "Potion"},
			{ID: 2, Name: "Apple", Note: "<Ingredient: Fruit +5>", Consumable: true},
			{ID: 3, Name: "Fruit Dish", Note: "<Cooking Recipe>\nFruit: 1\nValue: 5\n</Cooking Recipe>"},
			{ID: 4, Name: "Potion"},
			{ID: 5, Name: "Fire Gem"},
			{ID: 6, Name: "Iron Pot", Note: "<Ingredient: Metal +1>"},
		},
		Weapons: []*data.Weapon{
			{ID: 1, Name: "Potion"},
			{ID: 2, Name: "Sword", Note: "<Loot Weight: Rare x2>"},
		},
		Armors: []*data.Armor{
			{ID: 1, Name: "Shield", Note: "<Cooking Recipe>\nMetal: 2\n</Cooking Recipe>"},
		},
		Skills: []*data.Skill{
			{ID: 10, Name: "Fire", MPCost: 10, Note: "<Multicast: 3>\n<Multicast Type: Repeat Fixed>\n<Item Cost: Fire Gem x2>\n<Item Cost: Nothing>"},
			{ID: 11, Name: "Ice", MPCost: 5},
		},
		States: []*data.State{
			{ID: 4, Name: "Poison", AutoRemoval: data.TimingTurnEnd, MinTurns: 4, MaxTurns: 2, Note: "<Max Stacks: 3>\n<Override States: 5, 4>"},
			{ID: 5, Name: "Regen"},
			{ID: 6, Name: "Haste", Note: "<Multicast: 2>\n<Loot Weight: Common -1>"},
		},
		Enemies: []*data.Enemy{
			{ID: 1, Name: "Slime", Note: "<Level: 5>\n<Loot Table: slime drops>\n<Loot Table: Missing>\n<Loot Table>\nRate: 50%\nPotion: 1\n</Loot Table>"},
			{ID: 2, Name: "Bat"},
		},
		Actors:  []*data.Actor{{ID: 1, Name: "Harold", ClassID: 1, Note: "<Loot Weight: Rare +1>"}},
		Classes: []*data.Class{{ID: 1, Name: "Hero"}},
	}
	ds.Index()
	return ds
}

func testRegistry() config.Loot {
	half := 0.5
	return config.Loot{
		Pools: []config.NamedPool{
			{Name: "Common", Entries: []string{"Potion: 5 x1-2", "garbage"}},
			{Name: "common"},
		},
		Tables: []config.NamedTable{
			{Name: "Slime Drops", Rate: &half, MinLevel: 1, MaxLevel: 10, Entries: []string{"Common: 3", "Rare: 1"}},
		},
	}
}

func TestBuild_LootRegistry(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	p, ok := r.Pool("common")
	require.True(t, ok)
	require.Len(t, p.Entries, 1, "malformed entry skipped")
	assert.Equal(t, 2, p.Entries[0].MaxAmount)

	tbl, ok := r.Table(ident.Normalize("SLIME DROPS"))
	require.True(t, ok)
	assert.Equal(t, 0.5, tbl.Rate)
	assert.Len(t, tbl.Pools, 2)
}

func TestBuild_EnemyTables(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	tables := r.EnemyTables(1)
	require.Len(t, tables, 2, "unknown reference dropped")
	assert.Equal(t, "Slime Drops", tables[0].Name)
	assert.Equal(t, 0.5, tables[1].Rate)
	assert.Equal(t, "", tables[1].Name)

	assert.Equal(t, 5, r.EnemyLevel(1))
	assert.Empty(t, r.EnemyTables(2))
	assert.Equal(t, 0, r.EnemyLevel(2))
}

func TestBuild_ItemNames(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	d, ok := r.ItemByName("potion")
	require.True(t, ok)
	assert.Equal(t, loot.ItemDrop{Kind: loot.KindItem, DataID: 1}, d, "first item wins over later items and weapons")

	d, ok = r.ResolveItem("  sword ")
	require.True(t, ok)
	assert.Equal(t, loot.ItemDrop{Kind: loot.KindWeapon, DataID: 2}, d)

	d, ok = r.ResolveItem("a7")
	require.True(t, ok)
	assert.Equal(t, loot.ItemDrop{Kind: loot.KindArmor, DataID: 7}, d)

	_, ok = r.ResolveItem("Excalibur")
	assert.False(t, ok)
}

func TestBuild_WeightAdjustments(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	assert.Equal(t, []loot.WeightAdjustment{{Pool: "rare", Op: loot.OpAdd, Rate: 1}},
		r.WeightAdjustments(Source{Kind: SourceActor, ID: 1}))
	assert.Equal(t, []loot.WeightAdjustment{{Pool: "rare", Op: loot.OpMultiply, Rate: 2}},
		r.WeightAdjustments(Source{Kind: SourceWeapon, ID: 2}))
	assert.Equal(t, []loot.WeightAdjustment{{Pool: "common", Op: loot.OpSubtract, Rate: 1}},
		r.WeightAdjustments(Source{Kind: SourceState, ID: 6}))
	assert.Nil(t, r.WeightAdjustments(Source{Kind: SourceClass, ID: 1}))
}

func TestBuild_Cooking(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	in, ok := r.Ingredient(2)
	require.True(t, ok)
	assert.Equal(t, 5.0, in.Value())
	_, ok = r.Ingredient(1)
	assert.False(t, ok)
	_, ok = r.Ingredient(6)
	assert.False(t, ok, "only consumable items are ingredients")

	recipes := r.Recipes()
	require.Len(t, recipes, 2)
	assert.Equal(t, "Fruit Dish", recipes[0].Name)
	assert.Equal(t, loot.ItemDrop{Kind: loot.KindArmor, DataID: 1}, recipes[1].Result)
}

func TestBuild_States(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	rule, ok := r.StateRule(4)
	require.True(t, ok)
	assert.Equal(t, 3, rule.MaxStacks)
	assert.Equal(t, []int{5}, rule.Overrides, "self override dropped")
	assert.Equal(t, states.TimingTurnEnd, rule.Timing)
	assert.Equal(t, 2, rule.MinTurns)
	assert.Equal(t, 4, rule.MaxTurns)

	rule, ok = r.StateRule(5)
	require.True(t, ok)
	assert.Equal(t, 1, rule.MaxStacks)

	_, ok = r.StateRule(99)
	assert.False(t, ok)

	mc, ok := r.StateMulticast(6)
	require.True(t, ok)
	assert.Equal(t, 2, mc.SelectCount)
	_, ok = r.StateMulticast(4)
	assert.False(t, ok)
}

func TestBuild_Skills(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	cost, ok := r.SkillCost(10)
	require.True(t, ok)
	assert.Equal(t, 10, cost.MPCost)
	assert.Equal(t, []multicast.ItemCost{{Drop: loot.ItemDrop{Kind: loot.KindItem, DataID: 5}, Count: 2}}, cost.Items)

	mc, ok := r.SkillMulticast(10)
	require.True(t, ok)
	assert.Equal(t, multicast.RepeatFixedTarget, mc.Type)
	assert.Equal(t, 3, mc.SelectCount)

	_, ok = r.SkillMulticast(11)
	assert.False(t, ok)
}

func TestRepository_AccessorsReturnCopies(t *testing.T) {
	r := Build(testDataset(), testRegistry())

	rule, ok := r.StateRule(4)
	require.True(t, ok)
	rule.MaxStacks = 99
	rule.Overrides[0] = 42

	tbl, ok := r.Table(ident.Normalize("Slime Drops"))
	require.True(t, ok)
	tbl.Rate = 1
	tbl.Pools[0].Name = "Changed"

	p, ok := r.Pool("common")
	require.True(t, ok)
	p.Entries[0].MaxAmount = 50

	r.EnemyTables(1)[0].Rate = 1

	recipes := r.Recipes()
	for k := range recipes[0].Required {
		recipes[0].Required[k] = 100
	}

	mc, ok := r.SkillMulticast(10)
	require.True(t, ok)
	mc.SelectCount = 9

	// Повторное чтение видит исходные правила
	rule, _ = r.StateRule(4)
	assert.Equal(t, 3, rule.MaxStacks)
	assert.Equal(t, []int{5}, rule.Overrides)

	tbl, _ = r.Table(ident.Normalize("Slime Drops"))
	assert.Equal(t, 0.5, tbl.Rate)
	assert.NotEqual(t, "Changed", tbl.Pools[0].Name)

	p, _ = r.Pool("common")
	assert.Equal(t, 2, p.Entries[0].MaxAmount)

	assert.Equal(t, 0.5, r.EnemyTables(1)[0].Rate)

	for _, n := range r.Recipes()[0].Required {
		assert.NotEqual(t, 100, n)
	}

	mc, _ = r.SkillMulticast(10)
	assert.Equal(t, 3, mc.SelectCount)
}
