// Package languages holds the set of languages documents and vocabulary
// entries may be tagged with. A Set is built once at startup and never
// changes afterwards.
package languages

import (
	"sort"
	"strings"
)

// Defaults is the built-in list used when no override is configured.
var Defaults = []string{
	"Dutch", "English", "German", "Icelandic", "Norwegian", "Old English", "Swedish",
	"French", "Italian", "Latin", "Portuguese", "Romanian", "Spanish",
	"Breton", "Irish", "Welsh",
	"Polish", "Serbian", "Slovenian",
	"Bengali", "Hindi", "Urdu",
	"Modern Standard Arabic", "Turkish",
	"Mandarin", "Japanese", "Korean",
	"Hausa", "Swahili", "Xhosa", "Naija", "Nigerian",
	"Indonesian", "Armenian", "Guarani",
}

// Set is an immutable collection of allowed language names.
type Set struct {
	names  map[string]struct{}
	sorted []string
}

// NewSet builds a set from names. Blank and duplicate names are dropped;
// an input with no usable name falls back to Defaults.
func NewSet(names []string) *Set {
	s := &Set{names: make(map[string]struct{})}
	s.add(names)
	if len(s.sorted) == 0 {
		s.add(Defaults)
	}
	sort.Strings(s.sorted)
	return s
}

func (s *Set) add(names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := s.names[name]; ok {
			continue
		}
		s.names[name] = struct{}{}
		s.sorted = append(s.sorted, name)
	}
}

// Default returns the built-in set.
func Default() *Set {
	return NewSet(Defaults)
}

// Contains reports whether name is allowed. Matching is exact.
func (s *Set) Contains(name string) bool {
	_, ok := s.names[name]
	return ok
}

// List returns the allowed names in alphabetical order. The caller owns the slice.
func (s *Set) List() []string {
	out := make([]string, len(s.sorted))
	copy(out, s.sorted)
	return out
}

// Len returns the number of allowed languages.
func (s *Set) Len() int {
	return len(s.sorted)
}
