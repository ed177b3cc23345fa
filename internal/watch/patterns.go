package watch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// pattern is a glob split into the directory to watch and the remainder matched
// against paths below it.
type pattern struct {
	raw  string
	base string // absolute
	rest string // slash separated, relative to base
}

func compilePattern(raw string) (pattern, error) {
	slashed := filepath.ToSlash(raw)
	if !doublestar.ValidatePattern(slashed) {
		return pattern{}, fmt.Errorf("invalid pattern %q", raw)
	}
	base, rest := doublestar.SplitPattern(slashed)
	abs, err := filepath.Abs(filepath.FromSlash(base))
	if err != nil {
		return pattern{}, fmt.Errorf("resolve %q: %w", base, err)
	}
	return pattern{raw: raw, base: abs, rest: rest}, nil
}

// relTo returns path relative to the pattern base in slash form, or false when path is
// outside of it.
func (p pattern) relTo(path string) (string, bool) {
	rel, err := filepath.Rel(p.base, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (p pattern) match(path string) bool {
	rel, ok := p.relTo(path)
	if !ok {
		return false
	}
	if rel == "." {
		return p.rest == "" || p.rest == "."
	}
	matched, err := doublestar.Match(p.rest, rel)
	return err == nil && matched
}

// Matcher decides which paths are relevant for a set of watch globs.
type Matcher struct {
	patterns []pattern
	ignore   []string
}

// NewMatcher compiles include globs and ignore globs. Ignore globs are matched against the
// path relative to the include base and against the file name.
func NewMatcher(paths, ignore []string) (*Matcher, error) {
	m := &Matcher{}
	for _, raw := range paths {
		p, err := compilePattern(raw)
		if err != nil {
			return nil, err
		}
		m.patterns = append(m.patterns, p)
	}
	for _, raw := range ignore {
		slashed := filepath.ToSlash(raw)
		if !doublestar.ValidatePattern(slashed) {
			return nil, fmt.Errorf("invalid ignore pattern %q", raw)
		}
		m.ignore = append(m.ignore, slashed)
	}
	return m, nil
}

// Match reports whether an absolute path is selected by any glob and not ignored.
func (m *Matcher) Match(path string) bool {
	if shouldIgnoreEvent(path) {
		return false
	}
	for _, p := range m.patterns {
		if !p.match(path) {
			continue
		}
		rel, _ := p.relTo(path)
		if m.ignored(rel, filepath.Base(path)) {
			return false
		}
		return true
	}
	return false
}

func (m *Matcher) ignored(rel, base string) bool {
	for _, ig := range m.ignore {
		if ok, _ := doublestar.Match(ig, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(ig, base); ok {
			return true
		}
	}
	return false
}

// Roots returns the directories that must be observed, deduplicated, in pattern order.
// A missing base falls back to its nearest existing ancestor so that creating it later
// is noticed.
func (m *Matcher) Roots() []string {
	seen := make(map[string]struct{})
	var roots []string
	for _, p := range m.patterns {
		root := nearestExisting(p.base)
		if _, ok := seen[root]; ok {
			continue
		}
		seen[root] = struct{}{}
		roots = append(roots, root)
	}
	return roots
}

func nearestExisting(dir string) string {
	for {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
