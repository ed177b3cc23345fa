// Package normalization maps loosely typed configuration strings onto typed enums.
package normalization

import (
	"fmt"
	"slices"
	"strings"
)

// Aliases resolves case-insensitive spellings of an enum to its canonical value.
type Aliases[T ~string] struct {
	lookup   map[string]T
	fallback T
}

// New builds a table from canonical values and their extra spellings. Each canonical
// value also matches itself.
func New[T ~string](fallback T, spellings map[T][]string) *Aliases[T] {
	a := &Aliases[T]{lookup: make(map[string]T), fallback: fallback}
	for v, names := range spellings {
		a.lookup[fold(string(v))] = v
		for _, n := range names {
			a.lookup[fold(n)] = v
		}
	}
	return a
}

// Or returns the value for raw, or the fallback when raw is unknown.
func (a *Aliases[T]) Or(raw string) T {
	if v, ok := a.lookup[fold(raw)]; ok {
		return v
	}
	return a.fallback
}

// Parse returns the value for raw. Blank input yields the fallback; unknown input is an
// error naming the accepted spellings.
func (a *Aliases[T]) Parse(raw string) (T, error) {
	key := fold(raw)
	if key == "" {
		return a.fallback, nil
	}
	if v, ok := a.lookup[key]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown value %q (accepted: %s)", raw, strings.Join(a.Spellings(), ", "))
}

// Spellings lists every accepted input, sorted.
func (a *Aliases[T]) Spellings() []string {
	out := make([]string, 0, len(a.lookup))
	for k := range a.lookup {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

func fold(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
