package notetag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/udisondev/gamerules/internal/ident"
	"github.com/udisondev/gamerules/internal/loot"
)

const lootTableBlock = "Loot Table"

var (
	tagLootTable  = newTag("Loot Table")
	tagLootWeight = newTag("Loot Weight")
	tagLevel      = newTag("Level")

	// Potion: 5 [level / 10] x2-3 Level 4 Tier 1
	entryLine = regexp.MustCompile(`(?i)^(.+?)\s*:\s*(\d+(?:\.\d+)?)\s*(?:\[([^\]]*)\])?\s*(?:x\s*(\d+)(?:\s*-\s*(\d+))?)?\s*(?:level\s+(\d+))?\s*(?:tier\s+(\d+))?$`)
	levelBand = regexp.MustCompile(`^(\d+)(?:\s*-\s*(\d+))?$`)
	weightAdj = regexp.MustCompile(`^(.+?)\s+([-+x*])\s*(\d+(?:\.\d+)?)$`)
)

// EnemyLoot is what an enemy note declares about drops.
type EnemyLoot struct {
	// Refs name registry tables, in note order.
	Refs []ident.Key
	// Inline are the anonymous tables built from <Loot Table> blocks.
	Inline []*loot.DropTable
}

// ParseEnemyLoot reads <Loot Table: name> references and inline
// <Loot Table> blocks.
func ParseEnemyLoot(note string) EnemyLoot {
	var el EnemyLoot
	for _, v := range tagValues(note, tagLootTable) {
		if k := ident.Normalize(v); !k.IsZero() {
			el.Refs = append(el.Refs, k)
		}
	}
	for _, b := range Blocks(note, lootTableBlock) {
		if t := ParseTable("", b.Lines); len(t.Pools) > 0 {
			el.Inline = append(el.Inline, t)
		}
	}
	return el
}

// ParseTable builds a table from block lines. "Rate:" and "Level:" lines
// set the fire rate and level band; every other line is an entry.
// Rate defaults to 100%.
func ParseTable(name string, body []string) *loot.DropTable {
	var (
		rate     = 1.0
		minLevel int
		maxLevel int
		pools    []loot.DropPool
	)
	for _, l := range body {
		k, v, ok := keyValue(l)
		if !ok {
			continue
		}
		switch strings.ToLower(k) {
		case "rate", "chance":
			if r, ok := parseRate(v); ok {
				rate = r
			}
			continue
		case "level":
			if m := levelBand.FindStringSubmatch(v); m != nil {
				minLevel, _ = strconv.Atoi(m[1])
				maxLevel = minLevel
				if m[2] != "" {
					maxLevel, _ = strconv.Atoi(m[2])
				}
			}
			continue
		}
		if p, ok := ParseEntry(l); ok {
			pools = append(pools, p)
		}
	}
	return loot.NewDropTable(name, rate, minLevel, maxLevel, pools...)
}

// ParseEntry reads one weighted entry line:
//
//	Name: weight [formula] [xN | xN-M] [Level L] [Tier T]
//
// The amount defaults to one.
func ParseEntry(l string) (loot.DropPool, bool) {
	m := entryLine.FindStringSubmatch(strings.TrimSpace(l))
	if m == nil {
		return loot.DropPool{}, false
	}
	weight, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return loot.DropPool{}, false
	}

	lo, hi := 1, 1
	if m[4] != "" {
		lo, _ = strconv.Atoi(m[4])
		hi = lo
		if m[5] != "" {
			hi, _ = strconv.Atoi(m[5])
		}
	}

	p := loot.NewDropPool(m[1], weight, lo, hi)
	p.WeightFormula = strings.TrimSpace(m[3])
	if m[6] != "" {
		p.Level, _ = strconv.Atoi(m[6])
	}
	if m[7] != "" {
		p.Tier, _ = strconv.Atoi(m[7])
	}
	return p, true
}

// ParseWeightAdjustments reads <Loot Weight: pool +n> tags. The operator
// is one of + - x *.
func ParseWeightAdjustments(note string) []loot.WeightAdjustment {
	var out []loot.WeightAdjustment
	for _, v := range tagValues(note, tagLootWeight) {
		m := weightAdj.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		rate, err := strconv.ParseFloat(m[3], 64)
		if err != nil {
			continue
		}
		adj := loot.WeightAdjustment{Pool: ident.Normalize(m[1]), Rate: rate}
		switch strings.ToLower(m[2]) {
		case "+":
			adj.Op = loot.OpAdd
		case "-":
			adj.Op = loot.OpSubtract
		default:
			adj.Op = loot.OpMultiply
		}
		out = append(out, adj)
	}
	return out
}

// ParseLevel reads <Level: n>. Missing or negative levels are 0.
func ParseLevel(note string) int {
	n, ok := tagInt(note, tagLevel)
	if !ok {
		return 0
	}
	return max(n, 0)
}
