package manual

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/htmltree"
)

// titleSynonyms lists, per content label, the lower-cased heading texts that
// restate the label. The Reference label has no entry: it never has a
// source document.
var titleSynonyms = map[Label][]string{
	LabelOverview:     {"overview"},
	LabelInstallation: {"installation", "install"},
	LabelUsage:        {"usage"},
	LabelExample:      {"example", "examples"},
	LabelFAQ:          {"faq"},
	LabelChangelog:    {"changelog", "change log"},
}

// Synonyms returns the heading texts treated as duplicates of label.
// Asking for a label outside the table is an internal error.
func Synonyms(label Label) ([]string, error) {
	s, ok := titleSynonyms[label]
	if !ok {
		return nil, derrors.InternalError("no title synonyms for manual label").
			WithContext("label", string(label)).
			Build()
	}
	return slices.Clone(s), nil
}

// StripDuplicateTitle removes the document's h1 when it is the only h1 and
// its text restates label. With zero or several h1 elements nothing is
// removed. It reports whether a heading was removed.
func StripDuplicateTitle(root *html.Node, label Label) (bool, error) {
	synonyms, err := Synonyms(label)
	if err != nil {
		return false, err
	}

	h1 := htmltree.Elements(root, atom.H1)
	if len(h1) != 1 {
		return false, nil
	}
	text := fold(strings.TrimSpace(htmltree.Text(h1[0])))
	if !slices.Contains(synonyms, text) {
		return false, nil
	}
	htmltree.Remove(h1[0])
	return true, nil
}
