package manual

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/inful/mdfp"
	"golang.org/x/net/html"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/frontmatter"
	"git.home.luguber.info/inful/docmanual/internal/htmltree"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
	"git.home.luguber.info/inful/docmanual/internal/markdown"
)

// Document is a rendered manual source.
type Document struct {
	Item        Item
	HTML        []byte // rendered markdown, title not yet deduplicated
	Fingerprint string // mdfp fingerprint of frontmatter and body
}

// LoadDocument reads and renders the source of item. Frontmatter is
// excluded from the rendered HTML but included in the fingerprint.
func LoadDocument(item Item, renderer markdown.Renderer) (*Document, error) {
	content, err := os.ReadFile(item.SourcePath)
	if err != nil {
		b := derrors.WrapError(err, derrors.CategoryFileSystem, "read manual source").
			Fatal().
			WithContext("path", item.SourcePath).
			WithContext("label", string(item.Label))
		if errors.Is(err, fs.ErrNotExist) {
			// editors that save by rename leave a short gap
			b = b.WithRetry(derrors.RetryBackoff)
		}
		return nil, b.Build()
	}

	fm, body, _, err := frontmatter.Split(content)
	if errors.Is(err, frontmatter.ErrMissingClosingDelimiter) {
		slog.Warn("Unterminated frontmatter, rendering whole document",
			logfields.Source(item.SourcePath))
		fm, body = nil, content
	} else if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "split frontmatter").
			WithContext("path", item.SourcePath).
			Build()
	}

	out, err := renderer.Render(body)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "render manual source").
			WithContext("path", item.SourcePath).
			Build()
	}

	return &Document{
		Item:        item,
		HTML:        out,
		Fingerprint: mdfp.CalculateFingerprintFromParts(string(fm), string(body)),
	}, nil
}

// Fragment parses an independent copy of the document and removes its
// duplicate title. Every call returns a fresh tree.
func (d *Document) Fragment() (*html.Node, error) {
	root, err := htmltree.ParseFragment(d.HTML)
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "parse rendered manual source").
			WithContext("path", d.Item.SourcePath).
			Build()
	}
	if _, err := StripDuplicateTitle(root, d.Item.Label); err != nil {
		return nil, err
	}
	return root, nil
}
