package manual

import (
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docmanual/internal/config"
)

func labels(items []Item) []Label {
	out := make([]Label, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}

func TestResolveEmptyConfigYieldsReferenceOnly(t *testing.T) {
	items := Resolve(config.ManualConfig{})
	require.Len(t, items, 1)
	require.Equal(t, LabelReference, items[0].Label)
	require.True(t, items[0].IsReference)
	require.Empty(t, items[0].SourcePath)
	require.Equal(t, "identifiers.html", FileName(items[0]))
}

func TestResolveAllSectionsInPriorityOrder(t *testing.T) {
	items := Resolve(config.ManualConfig{
		Changelog:    "CHANGELOG.md",
		FAQ:          "faq.md",
		Example:      "example.md",
		Usage:        "usage.md",
		Installation: "install.md",
		Overview:     "README.md",
	})
	require.Equal(t, []Label{
		LabelOverview, LabelInstallation, LabelUsage, LabelExample,
		LabelReference, LabelFAQ, LabelChangelog,
	}, labels(items))
	require.Equal(t, "README.md", items[0].SourcePath)
	require.Equal(t, "CHANGELOG.md", items[6].SourcePath)
}

func TestResolveSkipsEmptyPaths(t *testing.T) {
	items := Resolve(config.ManualConfig{Usage: "usage.md", Changelog: "CHANGELOG.md"})
	require.Equal(t, []Label{LabelUsage, LabelReference, LabelChangelog}, labels(items))
}

func TestFileName(t *testing.T) {
	tests := []struct {
		item Item
		want string
	}{
		{Item{Label: LabelOverview}, "manual/overview.html"},
		{Item{Label: LabelFAQ}, "manual/faq.html"},
		{Item{Label: LabelReference, OutputFileName: ReferenceFileName, IsReference: true}, "identifiers.html"},
	}
	for _, tt := range tests {
		t.Run(string(tt.item.Label), func(t *testing.T) {
			require.Equal(t, tt.want, FileName(tt.item))
			require.Equal(t, FileName(tt.item), FileName(tt.item))
		})
	}
}

func TestFileNamesAreUnique(t *testing.T) {
	items := Resolve(config.ManualConfig{
		Overview: "a", Installation: "b", Usage: "c", Example: "d", FAQ: "e", Changelog: "f",
	})
	seen := map[string]bool{}
	for _, it := range items {
		name := FileName(it)
		require.False(t, seen[name], name)
		seen[name] = true
	}
}

func TestBaseURL(t *testing.T) {
	require.Equal(t, "../", BaseURL("manual/index.html"))
	require.Equal(t, "./", BaseURL("identifiers.html"))
	require.Equal(t, "../../", BaseURL("a/b/c.html"))
}
