package render

import (
	"embed"
	"errors"
	"io/fs"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Built-in template names.
const (
	LayoutTemplate = "layout.html"
	NavTemplate    = "manualNav.html"
	IndexTemplate  = "manualIndex.html"
	ManualTemplate = "manual.html"
)

//go:embed templates/*.html
var builtin embed.FS

// Engine loads templates by name. Lookups try each configured source in order
// and fall back to the built-in set, so an override directory only needs the
// files it changes.
type Engine struct {
	sources []fs.FS
}

// NewEngine returns an Engine that consults overrides (in order) before the
// built-in templates.
func NewEngine(overrides ...fs.FS) *Engine {
	sub, err := fs.Sub(builtin, "templates")
	if err != nil {
		panic(err) // embedded path is fixed at compile time
	}
	sources := make([]fs.FS, 0, len(overrides)+1)
	for _, o := range overrides {
		if o != nil {
			sources = append(sources, o)
		}
	}
	return &Engine{sources: append(sources, sub)}
}

// Template loads and parses a fresh copy of the named template.
func (e *Engine) Template(name string) (*Template, error) {
	for _, src := range e.sources {
		data, err := fs.ReadFile(src, name)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, derrors.WrapError(err, derrors.CategoryFileSystem, "read template").
				WithContext("template", name).
				Build()
		}
		return Parse(data)
	}
	return nil, derrors.BuildError("template not found").
		WithContext("template", name).
		Build()
}
