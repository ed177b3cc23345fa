package config

import "git.home.luguber.info/inful/specbuilder/internal/foundation/normalization"

// RendererName selects the renderer used by the build task.
type RendererName string

const (
	RendererEcmarkup RendererName = "ecmarkup" // external ecmarkup binary
	RendererCommand  RendererName = "command"  // any external command
	RendererMarkdown RendererName = "markdown" // in-process goldmark
	RendererCopy     RendererName = "copy"     // passthrough
)

var rendererNames = normalization.New(RendererEcmarkup, map[RendererName][]string{
	RendererEcmarkup: {"emu"},
	RendererCommand:  {"exec"},
	RendererMarkdown: {"md"},
	RendererCopy:     nil,
})

// NormalizeRendererName canonicalizes user input, returning an error listing valid names.
func NormalizeRendererName(raw string) (RendererName, error) {
	return rendererNames.Parse(raw)
}
