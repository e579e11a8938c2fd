package pbir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/jlrickert/cli-toolkit/mylog"
)

// pagesFilename is the metadata file listing page order and the active page.
const pagesFilename = "pages.json"

// pagesDirname holds the page folders, one per page, beside pages.json.
const pagesDirname = "pages"

// PagesData is the exact pages.json document shape. The schema marker
// comes last in this file.
type PagesData struct {
	PageOrder      []string `json:"pageOrder"`
	ActivePageName string   `json:"activePageName"`
	Schema         string   `json:"$schema"`
}

// Pages is the page collection of a report: the pages.json metadata plus
// one Page per folder under pages/. Order metadata is deliberately
// forgiving: names without a page folder stay in the order, unlisted
// pages are appended, and the active page name is kept even when no
// such page exists.
type Pages struct {
	path  string // .../definition/pages/pages.json
	data  PagesData
	pages map[string]*Page
}

// LoadPages reads pages.json and loads every page folder under the pages/
// directory beside it. A missing pages.json is a NotFoundError. Page
// folders without a page.json are skipped silently; undecodable pages
// are skipped with a warning. Loaded pages missing from the page order
// are appended to it sorted; names without a folder stay in the order
// untouched. Nothing is written back until the next mutation.
func LoadPages(ctx context.Context, path string) (*Pages, error) {
	lg := mylog.LoggerFromContext(ctx)
	var data PagesData
	if err := readJSONFile(path, &data); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("pages metadata", "", path)
		}
		return nil, err
	}
	if data.Schema == "" {
		data.Schema = pagesSchemaURL
	}
	p := &Pages{path: path, data: data, pages: map[string]*Page{}}

	dir := filepath.Join(p.dir(), pagesDirname)
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to scan pages under %s: %w", dir, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		ppath := filepath.Join(dir, entry.Name(), pageFilename)
		pg, err := LoadPage(ctx, ppath)
		if err != nil {
			if IsNotExist(err) {
				continue
			}
			lg.Warn("skipping unreadable page", "path", ppath, "err", err)
			continue
		}
		p.pages[pg.Name()] = pg
	}

	seen := map[string]bool{}
	for _, name := range p.data.PageOrder {
		seen[name] = true
	}
	extra := make([]string, 0)
	for name := range p.pages {
		if !seen[name] {
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	p.data.PageOrder = append(p.data.PageOrder, extra...)
	return p, nil
}

// Path returns the absolute path of the backing pages.json.
func (p *Pages) Path() string { return p.path }

// dir is the folder containing pages.json and the pages/ directory.
func (p *Pages) dir() string { return filepath.Dir(p.path) }

// Page looks up a page by name.
func (p *Pages) Page(name string) (*Page, bool) {
	pg, ok := p.pages[name]
	return pg, ok
}

// Pages returns the page entities keyed by name. The map is a copy; the
// entities are shared.
func (p *Pages) Pages() map[string]*Page {
	out := make(map[string]*Page, len(p.pages))
	for name, pg := range p.pages {
		out[name] = pg
	}
	return out
}

// PageNames returns the page names in display order.
func (p *Pages) PageNames() []string {
	out := make([]string, len(p.data.PageOrder))
	copy(out, p.data.PageOrder)
	return out
}

// ActivePageName returns the page shown when the report opens. The name
// is not guaranteed to match an existing page.
func (p *Pages) ActivePageName() string { return p.data.ActivePageName }

// AddPage creates a page folder with a fresh page.json, appends the name
// to the page order and persists the metadata. A blank display name
// falls back to the page name and zero dimensions to the 1280x720
// default. Duplicate names are an ExistsError.
func (p *Pages) AddPage(ctx context.Context, name, displayName string, width, height float64) (*Page, error) {
	if name == "" {
		return nil, fmt.Errorf("page name is empty: %w", ErrInvalid)
	}
	if _, ok := p.pages[name]; ok {
		return nil, NewExists("page", name)
	}
	if displayName == "" {
		displayName = name
	}
	pg, err := NewPage(ctx, filepath.Join(p.dir(), pagesDirname, name), PageData{
		Name:        name,
		DisplayName: displayName,
		Width:       width,
		Height:      height,
	})
	if err != nil {
		return nil, err
	}
	p.pages[name] = pg
	p.data.PageOrder = append(p.data.PageOrder, name)
	if err := p.writeBack(); err != nil {
		return nil, err
	}
	return pg, nil
}

// RemovePage deletes a page folder with all its visuals, removes every
// occurrence of the name from the page order and persists the metadata.
// It reports whether a page was removed; removing an absent page is not
// an error. A stale active page name is left in place.
func (p *Pages) RemovePage(ctx context.Context, name string) (bool, error) {
	pg, ok := p.pages[name]
	if !ok {
		return false, nil
	}
	if err := pg.Remove(ctx); err != nil {
		return false, err
	}
	delete(p.pages, name)
	p.data.PageOrder = without(p.data.PageOrder, name)
	if err := p.writeBack(); err != nil {
		return true, err
	}
	return true, nil
}

// BringPageToFront moves the named page to the first position in the
// page order. Duplicate occurrences of the name collapse into one.
func (p *Pages) BringPageToFront(ctx context.Context, name string) error {
	if _, ok := p.pages[name]; !ok {
		return NewNotFound("page", name, p.dir())
	}
	p.data.PageOrder = append([]string{name}, without(p.data.PageOrder, name)...)
	return p.writeBack()
}

// SendPageToBack moves the named page to the last position in the page
// order. Duplicate occurrences of the name collapse into one.
func (p *Pages) SendPageToBack(ctx context.Context, name string) error {
	if _, ok := p.pages[name]; !ok {
		return NewNotFound("page", name, p.dir())
	}
	p.data.PageOrder = append(without(p.data.PageOrder, name), name)
	return p.writeBack()
}

// OrderPages rewrites the page order. The given names are taken as-is,
// without checking them against existing pages; any existing page
// missing from names is appended after them in its previous relative
// order, so an incomplete list never drops a page.
func (p *Pages) OrderPages(ctx context.Context, names []string) error {
	next := make([]string, 0, len(names)+len(p.pages))
	next = append(next, names...)
	given := map[string]bool{}
	for _, name := range names {
		given[name] = true
	}
	for _, name := range p.data.PageOrder {
		if _, ok := p.pages[name]; ok && !given[name] {
			next = append(next, name)
			given[name] = true
		}
	}
	p.data.PageOrder = next
	return p.writeBack()
}

// SetActivePage persists name as the page shown when the report opens.
// The name is taken as given; it does not have to match an existing
// page.
func (p *Pages) SetActivePage(ctx context.Context, name string) error {
	p.data.ActivePageName = name
	return p.writeBack()
}

func (p *Pages) writeBack() error {
	if p.data.PageOrder == nil {
		p.data.PageOrder = []string{}
	}
	return writeJSONFile(p.path, p.data)
}

// without returns order with every occurrence of name removed.
func without(order []string, name string) []string {
	out := make([]string, 0, len(order))
	for _, n := range order {
		if n != name {
			out = append(out, n)
		}
	}
	return out
}
