// Package manual assembles the manual section of a documentation site: it
// resolves the configured documents into an ordered item list, derives a
// table of contents for every page from its headings, builds the shared
// navigation and lays each page out through the render templates.
package manual

import (
	"git.home.luguber.info/inful/docmanual/internal/config"
)

// Label names a manual section. The set is closed.
type Label string

const (
	LabelOverview     Label = "Overview"
	LabelInstallation Label = "Installation"
	LabelUsage        Label = "Usage"
	LabelExample      Label = "Example"
	LabelReference    Label = "Reference"
	LabelFAQ          Label = "FAQ"
	LabelChangelog    Label = "Changelog"
)

// Fixed output locations.
const (
	ReferenceFileName = "identifiers.html"
	IndexFileName     = "manual/index.html"
	IndexTitle        = "Manual"
)

// Item is one logical page of the manual.
type Item struct {
	Label          Label
	SourcePath     string // markdown document; empty for the reference item
	OutputFileName string // explicit output path overriding the derived one
	IsReference    bool
}

// section is one row of the resolution priority table. A nil source marks
// the synthetic reference item.
type section struct {
	label  Label
	source func(config.ManualConfig) string
}

var sections = []section{
	{LabelOverview, func(m config.ManualConfig) string { return m.Overview }},
	{LabelInstallation, func(m config.ManualConfig) string { return m.Installation }},
	{LabelUsage, func(m config.ManualConfig) string { return m.Usage }},
	{LabelExample, func(m config.ManualConfig) string { return m.Example }},
	{LabelReference, nil},
	{LabelFAQ, func(m config.ManualConfig) string { return m.FAQ }},
	{LabelChangelog, func(m config.ManualConfig) string { return m.Changelog }},
}

// Resolve turns the manual configuration into the ordered item list.
// Sections without a path are omitted; the Reference item is always present,
// between Example and FAQ.
func Resolve(m config.ManualConfig) []Item {
	items := make([]Item, 0, len(sections))
	for _, s := range sections {
		if s.source == nil {
			items = append(items, Item{
				Label:          s.label,
				OutputFileName: ReferenceFileName,
				IsReference:    true,
			})
			continue
		}
		if path := s.source(m); path != "" {
			items = append(items, Item{Label: s.label, SourcePath: path})
		}
	}
	return items
}
