// Package ident provides the canonical identifier used for every
// free-text name in the rule data: pool names, table names and
// ingredient categories.
package ident

import (
	"strings"

	"golang.org/x/text/cases"
)

// Key is a normalized, case-folded name. Two names that differ only in
// case or surrounding/inner whitespace produce the same Key.
type Key string

// Normalize trims s, collapses runs of whitespace to a single space and
// case-folds the result.
func Normalize(s string) Key {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	// cases.Caser is stateful, one per call
	return Key(cases.Fold().String(strings.Join(fields, " ")))
}

// String returns the key text.
func (k Key) String() string { return string(k) }

// IsZero reports whether k is empty.
func (k Key) IsZero() bool { return k == "" }

// Set is an unordered set of keys.
type Set map[Key]struct{}

// NewSet normalizes names into a set, dropping empty names.
func NewSet(names ...string) Set {
	s := make(Set, len(names))
	for _, n := range names {
		if k := Normalize(n); !k.IsZero() {
			s[k] = struct{}{}
		}
	}
	return s
}

// Has reports whether k is in the set.
func (s Set) Has(k Key) bool {
	_, ok := s[k]
	return ok
}
