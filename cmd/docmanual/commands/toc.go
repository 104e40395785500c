package commands

import (
	"fmt"
	"strings"

	"git.home.luguber.info/inful/docmanual/internal/config"
	derrors "git.home.luguber.info/inful/docmanual/internal/foundation/errors"
	"git.home.luguber.info/inful/docmanual/internal/identifiers"
	"git.home.luguber.info/inful/docmanual/internal/manual"
	"git.home.luguber.info/inful/docmanual/internal/markdown"
)

// TocCmd implements the 'toc' command.
type TocCmd struct {
	Section string `arg:"" help:"Section label (overview, installation, usage, example, reference, faq, changelog)"`
}

func (c *TocCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.loadConfig(g)
	if err != nil {
		return err
	}
	return RunToc(g, cfg, c.Section)
}

// RunToc prints the table of contents of one section, indented by level.
func RunToc(g *Global, cfg *config.Config, section string) error {
	var item *manual.Item
	for _, it := range manual.Resolve(cfg.Manual) {
		if strings.EqualFold(string(it.Label), section) {
			item = &it
			break
		}
	}
	if item == nil {
		return derrors.NotFoundError("manual section not configured").
			WithContext("section", section).
			Build()
	}

	ids, err := identifiers.Load(cfg.Identifiers)
	if err != nil {
		return err
	}

	var toc []manual.TocEntry
	if item.IsReference {
		toc = manual.BuildTOC(*item, nil, ids)
	} else {
		doc, err := manual.LoadDocument(*item, markdown.NewRenderer())
		if err != nil {
			return err
		}
		frag, err := doc.Fragment()
		if err != nil {
			return err
		}
		toc = manual.BuildTOC(*item, frag, ids)
	}

	out := g.stdout()
	_, _ = fmt.Fprintf(out, "%s (%s)\n", item.Label, manual.FileName(*item))
	for _, e := range toc {
		depth := 1
		_, _ = fmt.Sscanf(e.IndentClass, "indent-h%d", &depth)
		_, _ = fmt.Fprintf(out, "%s- %s -> %s\n", strings.Repeat("  ", max(depth, 1)), e.Label, e.Link)
	}
	return nil
}
