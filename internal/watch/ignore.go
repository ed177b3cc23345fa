package watch

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// scratchNames are base-name globs for files editors, VCS and file managers create next
// to the source. Changes to them never trigger a rebuild, whatever the user globs say.
var scratchNames = []string{
	".*",        // dotfiles, .git, emacs .#lock files
	"*~",        // backup copies
	"*.sw[px]",  // vim swap
	"#*#",       // emacs autosave
	"*.tmp",     // atomic-save temporaries
	"Thumbs.db", // windows explorer
}

// shouldIgnoreEvent reports whether path is editor or OS scratch.
func shouldIgnoreEvent(path string) bool {
	base := filepath.Base(path)
	for _, p := range scratchNames {
		if ok, _ := doublestar.Match(p, base); ok {
			return true
		}
	}
	return false
}
