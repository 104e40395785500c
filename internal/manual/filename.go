package manual

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FileName returns the output path of item: the explicit override when set,
// otherwise manual/<lower-cased label>.html. Labels are unique by
// construction of Resolve, so derived names never collide.
func FileName(item Item) string {
	if item.OutputFileName != "" {
		return item.OutputFileName
	}
	return "manual/" + fold(string(item.Label)) + ".html"
}

// BaseURL returns the relative prefix from an output path back to the site
// root: "../" per directory level, "./" at the root.
func BaseURL(path string) string {
	depth := strings.Count(path, "/")
	if depth == 0 {
		return "./"
	}
	return strings.Repeat("../", depth)
}

// fold lower-cases s. A Caser is stateful, so one is made per call.
func fold(s string) string {
	return cases.Lower(language.Und).String(s)
}
