// Package render is the slot-based template layer used to lay out manual pages.
//
// Templates are plain HTML. Any element carrying a data-slot attribute is an
// injection point; callers fill slots with text, attributes, HTML fragments,
// sub-templates, or repeat them once per item. The package performs no other
// logic: every value it writes has been computed by the caller.
package render

import (
	"bytes"

	"golang.org/x/net/html"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/htmltree"
)

// SlotAttr marks an element as an injection point.
const SlotAttr = "data-slot"

// Template is a mutable HTML tree with named slots.
type Template struct {
	root *html.Node
}

// Parse builds a Template from HTML. Sources starting with a doctype or an
// <html> element are parsed as complete documents, anything else as a body
// fragment.
func Parse(src []byte) (*Template, error) {
	var (
		root *html.Node
		err  error
	)
	if isDocument(src) {
		root, err = htmltree.ParseDocument(src)
	} else {
		root, err = htmltree.ParseFragment(src)
	}
	if err != nil {
		return nil, derrors.WrapError(err, derrors.CategoryBuild, "parse template").Build()
	}
	return &Template{root: root}, nil
}

func isDocument(src []byte) bool {
	head := bytes.ToLower(bytes.TrimSpace(src))
	return bytes.HasPrefix(head, []byte("<!doctype")) || bytes.HasPrefix(head, []byte("<html"))
}

func (t *Template) slots(name string) []*html.Node {
	return htmltree.Find(t.root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && htmltree.Attr(n, SlotAttr) == name
	})
}

// Text replaces the content of every slot named slot with value.
func (t *Template) Text(slot, value string) {
	for _, n := range t.slots(slot) {
		htmltree.SetText(n, value)
	}
}

// Attr sets attribute key to value on every slot named slot.
func (t *Template) Attr(slot, key, value string) {
	for _, n := range t.slots(slot) {
		htmltree.SetAttr(n, key, value)
	}
}

// LoadHTML replaces the content of every slot named slot with the parsed
// fragment.
func (t *Template) LoadHTML(slot, fragment string) error {
	for _, n := range t.slots(slot) {
		parsed, err := htmltree.ParseFragment([]byte(fragment))
		if err != nil {
			return derrors.WrapError(err, derrors.CategoryBuild, "load html into slot").
				WithContext("slot", slot).
				Build()
		}
		htmltree.ReplaceChildren(n, htmltree.Detach(parsed)...)
	}
	return nil
}

// Load replaces the content of every slot named slot with a copy of sub.
func (t *Template) Load(slot string, sub *Template) {
	for _, n := range t.slots(slot) {
		htmltree.ReplaceChildren(n, htmltree.Detach(htmltree.Clone(sub.root))...)
	}
}

// Loop repeats every slot named slot n times. fill receives each copy as its
// own Template, rooted at the repeated element, so slots set inside fill only
// affect that copy. With n == 0 the slot is removed.
func (t *Template) Loop(slot string, n int, fill func(i int, item *Template)) {
	for _, proto := range t.slots(slot) {
		parent := proto.Parent
		if parent == nil {
			continue
		}
		for i := range n {
			item := htmltree.Clone(proto)
			parent.InsertBefore(item, proto)
			fill(i, &Template{root: item})
		}
		parent.RemoveChild(proto)
	}
}

// HTML serialises the template.
func (t *Template) HTML() (string, error) {
	out, err := htmltree.Render(t.root)
	if err != nil {
		return "", derrors.WrapError(err, derrors.CategoryBuild, "render template").Build()
	}
	return out, nil
}
