package notetag

import (
	"strings"

	"github.com/udisondev/gamerules/internal/states"
)

var (
	tagMaxStacks      = newTag("Max Stacks")
	tagOverrideStates = newTag("Override States")
	tagStackExpire    = newTag("Stack Expire")
)

// StackTags are the stacking tags of a state note.
type StackTags struct {
	// MaxStacks is 0 when the note sets none.
	MaxStacks int
	Overrides []int
	ExpireAll bool
}

// ParseStackTags reads <Max Stacks: n>, <Override States: ids> (tags
// accumulate) and <Stack Expire: One|All>.
func ParseStackTags(note string) StackTags {
	var st StackTags
	if n, ok := tagInt(note, tagMaxStacks); ok {
		st.MaxStacks = min(max(n, 1), states.MaxStacksLimit)
	}
	for _, v := range tagValues(note, tagOverrideStates) {
		st.Overrides = append(st.Overrides, parseIntList(v)...)
	}
	if v, ok := tagValue(note, tagStackExpire); ok {
		st.ExpireAll = strings.EqualFold(v, "all")
	}
	return st
}

// Apply copies the tags onto r. Call r.Normalize afterwards.
func (st StackTags) Apply(r *states.Rule) {
	if st.MaxStacks > 0 {
		r.MaxStacks = st.MaxStacks
	}
	r.Overrides = append(r.Overrides, st.Overrides...)
	r.ExpireAll = st.ExpireAll
}
