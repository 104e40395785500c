package manual

import (
	"strconv"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docmanual/internal/identifiers"
)

// TocEntry is one line of a page's table of contents.
type TocEntry struct {
	Label       string
	Link        string
	IndentClass string
}

// ReferenceTOC lists the populated identifier categories, all at the top
// indent level, linking into the reference page.
func ReferenceTOC(ids identifiers.Grouping) []TocEntry {
	kinds := ids.Populated()
	out := make([]TocEntry, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, TocEntry{
			Label:       k.Title(),
			Link:        ReferenceFileName + "#" + string(k),
			IndentClass: "indent-h1",
		})
	}
	return out
}

// ContentTOC lists the headings of a rendered document (duplicate title
// already removed), linking into the item's output page.
func ContentTOC(item Item, root *html.Node) []TocEntry {
	headings := ExtractHeadings(root)
	page := FileName(item)
	out := make([]TocEntry, 0, len(headings))
	for _, h := range headings {
		out = append(out, TocEntry{
			Label:       h.Text,
			Link:        page + "#" + h.AnchorID,
			IndentClass: "indent-h" + strconv.Itoa(h.Level),
		})
	}
	return out
}

// BuildTOC returns the table of contents of item. root is the item's
// rendered document and is ignored for the reference item.
func BuildTOC(item Item, root *html.Node, ids identifiers.Grouping) []TocEntry {
	if item.IsReference {
		return ReferenceTOC(ids)
	}
	if root == nil {
		return nil
	}
	return ContentTOC(item, root)
}
