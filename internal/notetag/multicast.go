package notetag

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/udisondev/gamerules/internal/multicast"
)

var (
	tagMulticast       = newTag("Multicast")
	tagMulticastType   = newTag("Multicast Type")
	tagMulticastSkills = newTag("Multicast Skills")
	tagMulticastCost   = newTag("Multicast Cost")
	tagItemCost        = newTag("Item Cost")

	itemCost = regexp.MustCompile(`(?i)^(.+?)(?:\s+x\s*(\d+))?$`)
)

// ParseMulticast reads a multicast grant from a skill or state note.
// <Multicast: n> is required; type, eligible skills and cost multiplier
// are optional and default to FreeSelect, any skill and 1.
func ParseMulticast(note string) (multicast.Rule, bool) {
	n, ok := tagInt(note, tagMulticast)
	if !ok {
		return multicast.Rule{}, false
	}

	r := multicast.Rule{SelectCount: n, CostMultiplier: 1}
	if v, ok := tagValue(note, tagMulticastType); ok {
		r.Type = parseMulticastType(v)
	}
	for _, v := range tagValues(note, tagMulticastSkills) {
		r.Eligible = append(r.Eligible, parseIntList(v)...)
	}
	if v, ok := tagValue(note, tagMulticastCost); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			r.CostMultiplier = f
		}
	}
	r.Normalize()
	return r, true
}

func parseMulticastType(s string) multicast.Type {
	switch strings.Join(strings.Fields(strings.ToLower(s)), " ") {
	case "repeat", "repeat targeting", "repeat with targeting":
		return multicast.RepeatWithTargeting
	case "repeat fixed", "repeat fixed target", "fixed":
		return multicast.RepeatFixedTarget
	default:
		return multicast.FreeSelect
	}
}

// ItemCostRef is an unresolved <Item Cost: name xN> tag. Name is either a
// literal reference ("item 3") or an item name.
type ItemCostRef struct {
	Name  string
	Count int
}

// ParseItemCosts reads every <Item Cost> tag. The count defaults to one.
func ParseItemCosts(note string) []ItemCostRef {
	var out []ItemCostRef
	for _, v := range tagValues(note, tagItemCost) {
		m := itemCost.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		n := 1
		if m[2] != "" {
			n, _ = strconv.Atoi(m[2])
		}
		if n <= 0 {
			continue
		}
		out = append(out, ItemCostRef{Name: strings.TrimSpace(m[1]), Count: n})
	}
	return out
}
