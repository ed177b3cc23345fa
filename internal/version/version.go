// Package version reports the specbuilder release. Release builds set the variables
// with -ldflags "-X git.home.luguber.info/inful/specbuilder/internal/version.Version=v0.1.0";
// otherwise the values come from the Go build info when available.
package version

import (
	"runtime/debug"
	"sync"
)

const unknown = "unknown"

var (
	Version   = unknown
	GitCommit = unknown
	BuildTime = unknown
)

var resolveOnce sync.Once

// resolve fills unset variables from the module and VCS build info.
func resolve() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	fromBuildInfo(info)
}

func fromBuildInfo(info *debug.BuildInfo) {
	if Version == unknown && info.Main.Version != "" && info.Main.Version != "(devel)" {
		Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && GitCommit == unknown:
			GitCommit = s.Value
			if len(GitCommit) > 12 {
				GitCommit = GitCommit[:12]
			}
		case s.Key == "vcs.time" && BuildTime == unknown:
			BuildTime = s.Value
		}
	}
}

// Get returns the release version.
func Get() string {
	resolveOnce.Do(resolve)
	return Version
}

// String renders the line printed by --version.
func String() string {
	resolveOnce.Do(resolve)
	return "specbuilder " + Version + " (commit " + GitCommit + ", built " + BuildTime + ")"
}
