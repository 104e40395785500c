package manual

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/docmanual/internal/htmltree"
	"git.home.luguber.info/inful/docmanual/internal/identifiers"
	"git.home.luguber.info/inful/docmanual/internal/logfields"
	"git.home.luguber.info/inful/docmanual/internal/markdown"
	"git.home.luguber.info/inful/docmanual/internal/metrics"
	"git.home.luguber.info/inful/docmanual/internal/output"
	"git.home.luguber.info/inful/docmanual/internal/render"
)

// IndexSection is one card of the manual index: an item and its TOC.
type IndexSection struct {
	Label string
	Link  string
	TOC   []TocEntry
}

// Page is a fully laid out manual page.
type Page struct {
	Path    string
	Title   string
	BaseURL string
	Label   Label // empty for the index page

	Body     string // page content before layout
	TOC      []TocEntry
	Nav      []NavEntry
	Sections []IndexSection // index page only

	HTML []byte

	Source            string // markdown source; empty for the index page
	SourceFingerprint string
}

// Assembler lays out the manual pages for a resolved item list.
type Assembler struct {
	items    []Item
	ids      identifiers.Grouping
	renderer markdown.Renderer
	engine   *render.Engine
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewAssembler returns an Assembler with a no-op recorder and the default
// logger.
func NewAssembler(items []Item, ids identifiers.Grouping, renderer markdown.Renderer, engine *render.Engine) *Assembler {
	return &Assembler{
		items:    items,
		ids:      ids,
		renderer: renderer,
		engine:   engine,
		recorder: metrics.NoopRecorder{},
		logger:   slog.Default(),
	}
}

// WithRecorder injects a metrics recorder (nil resets to noop).
func (a *Assembler) WithRecorder(r metrics.Recorder) *Assembler {
	if r == nil {
		r = metrics.NoopRecorder{}
	}
	a.recorder = r
	return a
}

// WithLogger injects a logger.
func (a *Assembler) WithLogger(l *slog.Logger) *Assembler {
	if l != nil {
		a.logger = l
	}
	return a
}

// entry is the per-item state shared by the index and content pages.
type entry struct {
	item     Item
	doc      *Document
	fragment *html.Node
	toc      []TocEntry
}

// Build renders every page in memory: the index first, then one page per
// item with a source document. Any source failure aborts the whole build.
func (a *Assembler) Build(ctx context.Context) ([]Page, error) {
	entries := make([]entry, 0, len(a.items))
	for _, item := range a.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e := entry{item: item}
		if item.SourcePath != "" {
			start := time.Now()
			doc, err := LoadDocument(item, a.renderer)
			if err != nil {
				return nil, err
			}
			frag, err := doc.Fragment()
			if err != nil {
				return nil, err
			}
			e.doc, e.fragment = doc, frag
			a.logger.DebugContext(ctx, "Loaded manual source",
				logfields.Label(string(item.Label)),
				logfields.Source(item.SourcePath),
				logfields.Since(start))
		}
		e.toc = BuildTOC(item, e.fragment, a.ids)
		a.recorder.ObserveTOCEntries(string(item.Label), len(e.toc))
		entries = append(entries, e)
	}

	nav := BuildNav(a.items)
	navTpl, err := a.navTemplate(nav)
	if err != nil {
		return nil, err
	}

	pages := make([]Page, 0, len(entries)+1)
	index, err := a.indexPage(entries, nav, navTpl)
	if err != nil {
		return nil, err
	}
	pages = append(pages, index)

	for _, e := range entries {
		if e.doc == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page, err := a.contentPage(e, nav, navTpl)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// Emit builds every page and writes them to sink in order. Nothing is
// written when the build fails.
func (a *Assembler) Emit(ctx context.Context, sink output.Sink) ([]Page, error) {
	pages, err := a.Build(ctx)
	if err != nil {
		return nil, err
	}
	if err := a.WritePages(ctx, sink, pages); err != nil {
		return nil, err
	}
	return pages, nil
}

// WritePages writes already built pages to sink in order.
func (a *Assembler) WritePages(ctx context.Context, sink output.Sink, pages []Page) error {
	for _, p := range pages {
		if err := sink.Write(ctx, p.Path, p.HTML); err != nil {
			return err
		}
		a.recorder.IncPageEmitted()
		a.logger.DebugContext(ctx, "Emitted manual page", logfields.Page(p.Path))
	}
	return nil
}

func (a *Assembler) navTemplate(nav []NavEntry) (*render.Template, error) {
	tpl, err := a.engine.Template(render.NavTemplate)
	if err != nil {
		return nil, err
	}
	tpl.Loop("navItem", len(nav), func(i int, item *render.Template) {
		item.Text("link", nav[i].Label)
		item.Attr("link", "href", nav[i].Link)
	})
	return tpl, nil
}

func (a *Assembler) indexPage(entries []entry, nav []NavEntry, navTpl *render.Template) (Page, error) {
	sections := make([]IndexSection, len(entries))
	for i, e := range entries {
		sections[i] = IndexSection{Label: string(e.item.Label), Link: FileName(e.item), TOC: e.toc}
	}

	tpl, err := a.engine.Template(render.IndexTemplate)
	if err != nil {
		return Page{}, err
	}
	tpl.Loop("manual", len(sections), func(i int, card *render.Template) {
		s := sections[i]
		card.Text("title", s.Label)
		card.Attr("title", "href", s.Link)
		fillTOC(card, "manualNav", "link", s.TOC)
	})
	body, err := tpl.HTML()
	if err != nil {
		return Page{}, err
	}

	page := Page{
		Path:     IndexFileName,
		Title:    IndexTitle,
		BaseURL:  BaseURL(IndexFileName),
		Body:     body,
		Nav:      nav,
		Sections: sections,
	}
	return a.layout(page, navTpl)
}

func (a *Assembler) contentPage(e entry, nav []NavEntry, navTpl *render.Template) (Page, error) {
	tpl, err := a.engine.Template(render.ManualTemplate)
	if err != nil {
		return Page{}, err
	}
	label := string(e.item.Label)
	tpl.Text("title", label)
	tpl.Attr("title", "id", fold(label))
	fillTOC(tpl, "tocItem", "tocLink", e.toc)

	content, err := htmltree.Render(e.fragment)
	if err != nil {
		return Page{}, err
	}
	if err := tpl.LoadHTML("content", content); err != nil {
		return Page{}, err
	}
	body, err := tpl.HTML()
	if err != nil {
		return Page{}, err
	}

	path := FileName(e.item)
	page := Page{
		Path:              path,
		Title:             label,
		BaseURL:           BaseURL(path),
		Label:             e.item.Label,
		Body:              body,
		TOC:               e.toc,
		Nav:               nav,
		Source:            e.item.SourcePath,
		SourceFingerprint: e.doc.Fingerprint,
	}
	return a.layout(page, navTpl)
}

func (a *Assembler) layout(page Page, navTpl *render.Template) (Page, error) {
	tpl, err := a.engine.Template(render.LayoutTemplate)
	if err != nil {
		return Page{}, err
	}
	// Loaded content carries its own slots, so scalar slots are filled first.
	tpl.Text("title", page.Title)
	tpl.Attr("baseUrl", "href", page.BaseURL)
	tpl.Load("nav", navTpl)
	if err := tpl.LoadHTML("content", page.Body); err != nil {
		return Page{}, err
	}

	out, err := tpl.HTML()
	if err != nil {
		return Page{}, err
	}
	page.HTML = []byte(out)
	return page, nil
}

// fillTOC repeats the item slot once per entry, setting the indent class on
// the repeated element and the label and href on its link slot.
func fillTOC(tpl *render.Template, itemSlot, linkSlot string, toc []TocEntry) {
	tpl.Loop(itemSlot, len(toc), func(i int, item *render.Template) {
		item.Attr(itemSlot, "class", toc[i].IndentClass)
		item.Text(linkSlot, toc[i].Label)
		item.Attr(linkSlot, "href", toc[i].Link)
	})
}
