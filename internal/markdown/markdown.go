// Package markdown converts manual documents to HTML fragments.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Renderer converts a markdown body (frontmatter already removed) to an HTML
// fragment. Output must be deterministic and every heading must carry an id.
type Renderer interface {
	Render(body []byte) ([]byte, error)
}

// GoldmarkRenderer renders GitHub Flavored Markdown with generated heading ids.
type GoldmarkRenderer struct {
	md goldmark.Markdown
}

// NewRenderer returns the default goldmark-backed renderer. Raw HTML in the
// source is passed through.
func NewRenderer() *GoldmarkRenderer {
	return &GoldmarkRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
	}
}

// Render implements Renderer.
func (r *GoldmarkRenderer) Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert(body, &buf); err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "convert markdown").Build()
	}
	return buf.Bytes(), nil
}
