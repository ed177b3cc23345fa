package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcher(t *testing.T) {
	root := t.TempDir()
	spec := filepath.Join(root, "spec")
	glob := filepath.ToSlash(spec) + "/**/*"

	m, err := NewMatcher([]string{glob}, []string{"*.bak", "drafts/**"})
	require.NoError(t, err)

	cases := map[string]bool{
		filepath.Join(spec, "index.html"):               true,
		filepath.Join(spec, "sections", "intro.html"):   true,
		filepath.Join(spec, "img", "a.svg"):             true,
		filepath.Join(spec, "index.html.bak"):           false,
		filepath.Join(spec, "drafts", "wip.html"):       false,
		filepath.Join(spec, ".index.html.swp"):          false,
		filepath.Join(spec, "index.html~"):              false,
		filepath.Join(spec, "#index.html#"):             false,
		filepath.Join(root, "docs", "index.html"):       false,
		filepath.Join(root, "spec-other", "index.html"): false,
	}
	for path, want := range cases {
		assert.Equal(t, want, m.Match(path), path)
	}
}

func TestMatcherExtensionGlob(t *testing.T) {
	root := t.TempDir()
	m, err := NewMatcher([]string{filepath.ToSlash(root) + "/**/*.html"}, nil)
	require.NoError(t, err)

	assert.True(t, m.Match(filepath.Join(root, "a", "b.html")))
	assert.False(t, m.Match(filepath.Join(root, "a", "b.css")))
}

func TestMatcherRejectsInvalidPatterns(t *testing.T) {
	_, err := NewMatcher([]string{"spec/["}, nil)
	require.Error(t, err)
	_, err = NewMatcher([]string{"spec/**/*"}, []string{"{a"})
	require.Error(t, err)
}

func TestMatcherRoots(t *testing.T) {
	root := t.TempDir()
	spec := filepath.Join(root, "spec")
	require.NoError(t, os.MkdirAll(spec, 0o750))
	missing := filepath.Join(root, "later", "deeper")

	m, err := NewMatcher([]string{
		filepath.ToSlash(spec) + "/**/*",
		filepath.ToSlash(spec) + "/*.html",
		filepath.ToSlash(missing) + "/*",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{spec, root}, m.Roots())
}

func TestRelativePatternsResolveAgainstWorkingDirectory(t *testing.T) {
	root := t.TempDir()
	t.Chdir(root)
	m, err := NewMatcher([]string{"spec/**/*"}, nil)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.True(t, m.Match(filepath.Join(wd, "spec", "index.html")))
}

func TestShouldIgnoreEvent(t *testing.T) {
	ignored := []string{".DS_Store", ".#index.html", "index.html.swp", "index.html.swx", "index.html~", "#index.html#", "Thumbs.db", ".git", "index.html.tmp"}
	for _, name := range ignored {
		assert.True(t, shouldIgnoreEvent(filepath.Join("spec", name)), name)
	}
	for _, name := range []string{"index.html", "biblio.json", "img.png"} {
		assert.False(t, shouldIgnoreEvent(filepath.Join("spec", name)), name)
	}
}
