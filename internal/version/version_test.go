package version

import (
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
)

func reset(t *testing.T) {
	t.Helper()
	v, c, b := Version, GitCommit, BuildTime
	Version, GitCommit, BuildTime = unknown, unknown, unknown
	t.Cleanup(func() { Version, GitCommit, BuildTime = v, c, b })
}

func TestFromBuildInfo(t *testing.T) {
	reset(t)
	fromBuildInfo(&debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
		},
	})
	assert.Equal(t, "v1.2.3", Version)
	assert.Equal(t, "0123456789ab", GitCommit)
	assert.Equal(t, "2026-01-02T03:04:05Z", BuildTime)
}

func TestFromBuildInfoKeepsLinkerValues(t *testing.T) {
	reset(t)
	Version = "v0.9.0"
	fromBuildInfo(&debug.BuildInfo{Main: debug.Module{Version: "(devel)"}})
	assert.Equal(t, "v0.9.0", Version)
	assert.Equal(t, unknown, GitCommit)
}

func TestString(t *testing.T) {
	assert.Contains(t, String(), "specbuilder ")
	assert.NotEmpty(t, Get())
}
