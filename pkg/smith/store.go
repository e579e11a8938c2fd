package smith

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/jlrickert/cli-toolkit/clock"
	"github.com/jlrickert/cli-toolkit/mylog"
	"github.com/reportsmith/reportsmith/pkg/pbir"
)

// Store is the in-memory registry of the reports under one root
// directory. The MCP server and the filesystem watcher share a Store;
// the mutex serializes their registry access. The report entities
// themselves follow the single-owner model and carry no locking of
// their own.
type Store struct {
	root     string
	baseline string

	mu      sync.Mutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	report   *pbir.Report
	loadedAt time.Time
}

// ReportInfo is one row of Store.List.
type ReportInfo struct {
	Name      string    `json:"name"`
	PageCount int       `json:"page_count"`
	Path      string    `json:"path"`
	LoadedAt  time.Time `json:"-"`
}

// NewStore returns an empty registry for reports under root. Reports
// created through the store bootstrap from the baseline template.
func NewStore(root, baseline string) *Store {
	return &Store{root: root, baseline: baseline, entries: map[string]*storeEntry{}}
}

// Root returns the directory the store scans and creates reports in.
func (s *Store) Root() string { return s.root }

// Load replaces the registry with the reports found under the store
// root. Folders that fail to load are logged and skipped; a missing
// root yields an empty registry.
func (s *Store) Load(ctx context.Context) error {
	lg := mylog.LoggerFromContext(ctx)
	clk := clock.ClockFromContext(ctx)

	dirents, err := os.ReadDir(s.root)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to scan reports under %s: %w", s.root, err)
	}
	next := map[string]*storeEntry{}
	for _, dirent := range dirents {
		if !dirent.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, dirent.Name())
		r, err := pbir.LoadReport(ctx, dir)
		if err != nil {
			lg.Warn("skipping unloadable report", "path", dir, "err", err)
			continue
		}
		next[r.Name()] = &storeEntry{report: r, loadedAt: clk.Now()}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = next
	lg.Debug("report registry loaded", "root", s.root, "count", len(next))
	return nil
}

// List reports the registry contents sorted by name.
func (s *Store) List() []ReportInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReportInfo, 0, len(s.entries))
	for name, e := range s.entries {
		out = append(out, ReportInfo{
			Name:      name,
			PageCount: pageCount(e.report),
			Path:      e.report.Path(),
			LoadedAt:  e.loadedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Names returns the registered report names sorted.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.names()
}

// Get returns the registered report by name. The error for a missing
// name lists the registered alternatives.
func (s *Store) Get(name string) (*pbir.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return nil, &UnknownReportError{Name: name, Available: s.names()}
	}
	return e.report, nil
}

// Create bootstraps a new report from the baseline template under the
// store root and registers it. A registered name is an ExistsError.
func (s *Store) Create(ctx context.Context, name string) (*pbir.Report, error) {
	lg := mylog.LoggerFromContext(ctx)
	clk := clock.ClockFromContext(ctx)
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) {
		return nil, fmt.Errorf("report name %q must be a plain folder name: %w", name, pbir.ErrInvalid)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; ok {
		return nil, pbir.NewExists("report", name)
	}
	r, err := pbir.LoadReport(ctx, filepath.Join(s.root, name), pbir.WithBaseline(s.baseline))
	if err != nil {
		return nil, err
	}
	s.entries[name] = &storeEntry{report: r, loadedAt: clk.Now()}
	lg.Info("report registered", "name", name, "path", r.Path())
	return r, nil
}

// Delete removes a report from the registry. Its files stay on disk.
func (s *Store) Delete(ctx context.Context, name string) error {
	lg := mylog.LoggerFromContext(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[name]; !ok {
		return &UnknownReportError{Name: name, Available: s.names()}
	}
	delete(s.entries, name)
	lg.Info("report unregistered", "name", name)
	return nil
}

// Refresh reloads one report from disk, registering it when new and
// dropping it when its folder is gone. The watcher calls this after a
// settled change burst.
func (s *Store) Refresh(ctx context.Context, name string) error {
	lg := mylog.LoggerFromContext(ctx)
	clk := clock.ClockFromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := pbir.LoadReport(ctx, filepath.Join(s.root, name))
	if err != nil {
		if pbir.IsNotExist(err) {
			if _, ok := s.entries[name]; ok {
				delete(s.entries, name)
				lg.Info("report dropped after external removal", "name", name)
			}
			return nil
		}
		return err
	}
	s.entries[name] = &storeEntry{report: r, loadedAt: clk.Now()}
	lg.Debug("report refreshed", "name", name)
	return nil
}

// FindVisual locates a visual by id across every page of the named
// report, returning the owning page alongside it.
func (s *Store) FindVisual(reportName, visualID string) (*pbir.Page, *pbir.Visual, error) {
	r, err := s.Get(reportName)
	if err != nil {
		return nil, nil, err
	}
	pages := r.Pages()
	if pages == nil {
		return nil, nil, errNoPages
	}
	for _, pageName := range indexedPageNames(pages) {
		pg, ok := pages.Page(pageName)
		if !ok {
			continue
		}
		if v, ok := pg.Visual(visualID); ok {
			return pg, v, nil
		}
	}
	return nil, nil, &UnknownVisualError{Report: reportName, Name: visualID}
}

// names returns registered names sorted. The caller holds mu.
func (s *Store) names() []string {
	out := make([]string, 0, len(s.entries))
	for name := range s.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func pageCount(r *pbir.Report) int {
	if r.Pages() == nil {
		return 0
	}
	return len(r.Pages().Pages())
}

// indexedPageNames returns the names of the pages that actually exist,
// sorted. PageNames can carry order entries without a backing page;
// lookup errors list only real pages.
func indexedPageNames(p *pbir.Pages) []string {
	names := make([]string, 0)
	for name := range p.Pages() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
