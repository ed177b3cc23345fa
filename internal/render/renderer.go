package render

import (
	"context"

	"git.home.luguber.info/inful/specbuilder/internal/config"
	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

// Input is one render request.
type Input struct {
	// SourcePath is the document entry point as configured.
	SourcePath string
	// Source holds the document bytes already read by the caller.
	Source []byte
	// OutputPath is where the artifact will finally be published. Renderers must not write it.
	OutputPath string
}

// Renderer converts a source document into the bytes of the published artifact.
type Renderer interface {
	Name() string
	Render(ctx context.Context, in Input) ([]byte, error)
}

// New resolves the renderer configured in cfg.
func New(cfg config.RendererConfig) (Renderer, error) {
	switch cfg.Name {
	case config.RendererEcmarkup, config.RendererCommand:
		return NewCommandRenderer(string(cfg.Name), cfg.Command, cfg.Args, cfg.TimeoutDuration(), cfg.Env), nil
	case config.RendererMarkdown:
		return NewMarkdownRenderer(), nil
	case config.RendererCopy:
		return PassthroughRenderer{}, nil
	default:
		return nil, ferrors.ConfigError("unknown renderer").WithContext("renderer", string(cfg.Name)).Build()
	}
}
