package manual

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"git.home.luguber.info/inful/docmanual/internal/htmltree"
)

// Heading is one h1–h5 element of a rendered document. Level is the
// semantic indent level, not necessarily the markup level.
type Heading struct {
	Text     string
	AnchorID string
	Level    int
}

var headingLevels = map[atom.Atom]int{
	atom.H1: 1,
	atom.H2: 2,
	atom.H3: 3,
	atom.H4: 4,
	atom.H5: 5,
}

// ExtractHeadings returns every h1–h5 element under root in document order.
//
// A document with no h1 anywhere is assumed to leave its title to the page,
// so its headings are promoted one level (h2 becomes level 1). A single h1
// anywhere, even after other headings, disables promotion for the whole
// document.
func ExtractHeadings(root *html.Node) []Heading {
	nodes := htmltree.Elements(root, atom.H1, atom.H2, atom.H3, atom.H4, atom.H5)

	raised := true
	for _, n := range nodes {
		if n.DataAtom == atom.H1 {
			raised = false
			break
		}
	}

	out := make([]Heading, 0, len(nodes))
	for _, n := range nodes {
		level := headingLevels[n.DataAtom]
		if raised {
			level--
		}
		out = append(out, Heading{
			Text:     htmltree.Text(n),
			AnchorID: htmltree.Attr(n, "id"),
			Level:    level,
		})
	}
	return out
}
