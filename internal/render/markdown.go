package render

import (
	"bytes"
	"context"
	"html/template"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	ferrors "git.home.luguber.info/inful/specbuilder/internal/foundation/errors"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// MarkdownRenderer renders GitHub flavoured markdown in-process and wraps it in a
// standalone HTML page titled after the first heading.
type MarkdownRenderer struct {
	md goldmark.Markdown
}

// NewMarkdownRenderer creates a renderer with GFM extensions and auto heading IDs.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithUnsafe()),
		),
	}
}

func (m *MarkdownRenderer) Name() string { return "markdown" }

func (m *MarkdownRenderer) Render(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	root := m.md.Parser().Parse(text.NewReader(in.Source))

	var body bytes.Buffer
	if err := m.md.Renderer().Render(&body, in.Source, root); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "markdown rendering failed").
			WithContext("source", in.SourcePath).Build()
	}

	title := firstHeading(root, in.Source)
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(in.SourcePath), filepath.Ext(in.SourcePath))
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		// #nosec G203 -- goldmark output of the operator's own document
		Body: template.HTML(body.String()),
	})
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryRender, "markdown page template failed").Build()
	}
	return page.Bytes(), nil
}

func firstHeading(root gmast.Node, source []byte) string {
	var title string
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		h, ok := n.(*gmast.Heading)
		if !ok {
			return gmast.WalkContinue, nil
		}
		title = strings.TrimSpace(string(nodeText(h, source)))
		return gmast.WalkStop, nil
	})
	return title
}

func nodeText(n gmast.Node, source []byte) []byte {
	var buf bytes.Buffer
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		if t, ok := c.(*gmast.Text); ok {
			buf.Write(t.Segment.Value(source))
			continue
		}
		buf.Write(nodeText(c, source))
	}
	return buf.Bytes()
}
