// Package notetag scans the free-text note field of dataset records for
// bracketed rule tags such as <Max Stacks: 3> or a <Loot Table> block.
//
// Parsing is lenient: unrecognised text is ignored and malformed values
// fall back to defaults. Nothing here returns an error.
package notetag

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	blockOpen  = regexp.MustCompile(`^<\s*([^:/>]+?)\s*>$`)
	blockClose = regexp.MustCompile(`^<\s*/\s*([^>]+?)\s*>$`)
	intList    = regexp.MustCompile(`^(\d+)(?:\s*(?:-|to)\s*(\d+))?$`)
)

// Block is the body of a <Name> ... </Name> section.
type Block struct {
	Name  string
	Lines []string
}

// lines splits a note into trimmed, non-empty lines.
func lines(note string) []string {
	raw := strings.Split(strings.ReplaceAll(note, "\r\n", "\n"), "\n")
	out := raw[:0]
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Blocks returns every block named name (case-insensitive) in note.
// An unterminated block runs to the end of the note.
func Blocks(note, name string) []Block {
	var (
		out  []Block
		cur  *Block
		want = strings.ToLower(name)
	)
	for _, l := range lines(note) {
		if cur != nil {
			if m := blockClose.FindStringSubmatch(l); m != nil && strings.EqualFold(m[1], want) {
				out = append(out, *cur)
				cur = nil
				continue
			}
			cur.Lines = append(cur.Lines, l)
			continue
		}
		if m := blockOpen.FindStringSubmatch(l); m != nil && strings.EqualFold(m[1], want) {
			cur = &Block{Name: m[1]}
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

func newTag(name string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<\s*` + regexp.QuoteMeta(name) + `\s*:\s*([^>]*?)\s*>`)
}

// tagValues returns the value of every single-line <name: value> tag.
func tagValues(note string, tag *regexp.Regexp) []string {
	var out []string
	for _, m := range tag.FindAllStringSubmatch(note, -1) {
		out = append(out, m[1])
	}
	return out
}

// tagValue returns the last matching tag; later tags win.
func tagValue(note string, tag *regexp.Regexp) (string, bool) {
	vs := tagValues(note, tag)
	if len(vs) == 0 {
		return "", false
	}
	return vs[len(vs)-1], true
}

func tagInt(note string, tag *regexp.Regexp) (int, bool) {
	v, ok := tagValue(note, tag)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseIntList reads "3, 4, 10-12" into its ids. Ranges are inclusive
// and may be written "10 to 12"; bad items are skipped.
func parseIntList(s string) []int {
	var out []int
	for _, part := range strings.Split(s, ",") {
		m := intList.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			continue
		}
		lo, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		hi := lo
		if m[2] != "" {
			if hi, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		for id := lo; id <= hi; id++ {
			out = append(out, id)
		}
	}
	return out
}

// parseRate reads "75%" as 0.75 and "0.75" as 0.75.
func parseRate(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return 0, false
	}
	if pct {
		f /= 100
	}
	return f, true
}

// keyValue splits "key: value".
func keyValue(l string) (string, string, bool) {
	k, v, ok := strings.Cut(l, ":")
	if !ok {
		return "", "", false
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), true
}
