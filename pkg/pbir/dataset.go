package pbir

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jlrickert/cli-toolkit/mylog"

	"github.com/reportsmith/reportsmith/pkg/tmdl"
)

const (
	definitionDirname     = "definition"
	tablesDirname         = "tables"
	relationshipsFilename = "relationships.tmdl"
)

// Dataset is the read-only model side of a report: the visible tables
// declared under definition/tables/ plus the relationships between them.
// Hidden tables are parsed and then left out. Unlike the report side,
// nothing here writes back; the model definition belongs to other
// tooling.
type Dataset struct {
	path          string // <name>.Dataset folder
	order         []string
	tables        map[string]*tmdl.Table
	relationships []tmdl.Relationship
}

// LoadDataset scans dir (a <name>.Dataset folder) for table definitions
// and relationships. A missing folder is a NotFoundError. Table files
// that cannot be read or parsed are skipped with a warning; a missing
// tables directory or relationships.tmdl just yields an empty result.
// Tables keep the order their files were first seen in; a duplicate
// table name replaces the earlier definition without moving it.
func LoadDataset(ctx context.Context, dir string) (*Dataset, error) {
	lg := mylog.LoggerFromContext(ctx)
	if _, err := os.Stat(dir); err != nil {
		if os.IsNotExist(err) {
			return nil, NewNotFound("dataset", "", dir)
		}
		return nil, fmt.Errorf("failed to stat dataset %s: %w", dir, err)
	}
	d := &Dataset{path: dir, tables: map[string]*tmdl.Table{}}

	tablesDir := filepath.Join(dir, definitionDirname, tablesDirname)
	entries, err := os.ReadDir(tablesDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to scan tables under %s: %w", tablesDir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".tmdl" {
			continue
		}
		tpath := filepath.Join(tablesDir, entry.Name())
		b, err := os.ReadFile(tpath)
		if err != nil {
			lg.Warn("skipping unreadable table file", "path", tpath, "err", err)
			continue
		}
		table, err := tmdl.ParseTable(string(b))
		if err != nil {
			lg.Warn("skipping table file that does not parse", "path", tpath, "err", err)
			continue
		}
		if table.IsHidden {
			continue
		}
		if _, ok := d.tables[table.Name]; !ok {
			d.order = append(d.order, table.Name)
		}
		d.tables[table.Name] = table
	}

	rpath := filepath.Join(dir, definitionDirname, relationshipsFilename)
	b, err := os.ReadFile(rpath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read relationships %s: %w", rpath, err)
		}
	} else {
		d.relationships = tmdl.ParseRelationships(string(b))
	}
	return d, nil
}

// Path returns the dataset folder.
func (d *Dataset) Path() string { return d.path }

// Table looks up a visible table by name.
func (d *Dataset) Table(name string) (*tmdl.Table, bool) {
	t, ok := d.tables[name]
	return t, ok
}

// TableNames returns the visible table names in file order.
func (d *Dataset) TableNames() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Tables returns the visible tables in file order. The slice is a copy;
// the tables are shared.
func (d *Dataset) Tables() []*tmdl.Table {
	out := make([]*tmdl.Table, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.tables[name])
	}
	return out
}

// Relationships returns the complete relationships parsed from
// relationships.tmdl, in file order.
func (d *Dataset) Relationships() []tmdl.Relationship {
	out := make([]tmdl.Relationship, len(d.relationships))
	copy(out, d.relationships)
	return out
}
