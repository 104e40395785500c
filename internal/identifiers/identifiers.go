// Package identifiers reads the identifier index produced by the API
// reference generator. The manual builder only needs to know which
// categories are populated, but the index keeps each identifier's name so the
// same file can be shared with other tooling.
package identifiers

import (
	"os"

	"gopkg.in/yaml.v3"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
)

// Kind is an identifier category.
type Kind string

const (
	KindClass     Kind = "class"
	KindInterface Kind = "interface"
	KindFunction  Kind = "function"
	KindVariable  Kind = "variable"
	KindTypedef   Kind = "typedef"
	KindExternal  Kind = "external"
)

// Kinds lists every category in reference page order.
var Kinds = []Kind{KindClass, KindInterface, KindFunction, KindVariable, KindTypedef, KindExternal}

var kindTitles = map[Kind]string{
	KindClass:     "Class",
	KindInterface: "Interface",
	KindFunction:  "Function",
	KindVariable:  "Variable",
	KindTypedef:   "Typedef",
	KindExternal:  "External",
}

// Title is the display label of the category.
func (k Kind) Title() string { return kindTitles[k] }

// Identifier describes one documented symbol.
type Identifier struct {
	Name     string `yaml:"name"`
	LongName string `yaml:"longname,omitempty"`
}

// UnmarshalYAML accepts either a mapping or a bare name.
func (i *Identifier) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		i.Name = node.Value
		return nil
	}
	type plain Identifier
	return node.Decode((*plain)(i))
}

// Grouping holds identifiers per category.
type Grouping struct {
	Class     []Identifier `yaml:"class"`
	Interface []Identifier `yaml:"interface"`
	Function  []Identifier `yaml:"function"`
	Variable  []Identifier `yaml:"variable"`
	Typedef   []Identifier `yaml:"typedef"`
	External  []Identifier `yaml:"external"`
}

// Of returns the identifiers of one category.
func (g Grouping) Of(kind Kind) []Identifier {
	switch kind {
	case KindClass:
		return g.Class
	case KindInterface:
		return g.Interface
	case KindFunction:
		return g.Function
	case KindVariable:
		return g.Variable
	case KindTypedef:
		return g.Typedef
	case KindExternal:
		return g.External
	default:
		return nil
	}
}

// Populated returns the non-empty categories in reference page order.
func (g Grouping) Populated() []Kind {
	var out []Kind
	for _, k := range Kinds {
		if len(g.Of(k)) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Load reads a YAML (or JSON) identifier index. An empty path yields an
// empty grouping.
func Load(path string) (Grouping, error) {
	var g Grouping
	if path == "" {
		return g, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return g, derrors.WrapError(err, derrors.CategoryFileSystem, "read identifier index").
			Fatal().
			WithContext("path", path).
			Build()
	}
	if err := yaml.Unmarshal(data, &g); err != nil {
		return Grouping{}, derrors.WrapError(err, derrors.CategoryConfig, "parse identifier index").
			Fatal().
			WithContext("path", path).
			Build()
	}
	return g, nil
}
