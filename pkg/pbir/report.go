package pbir

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/jlrickert/cli-toolkit/mylog"
)

const (
	reportDirSuffix  = ".Report"
	datasetDirSuffix = ".Dataset"
	pbipSuffix       = ".pbip"
	pbirFilename     = "definition.pbir"
)

// Report is one report project on disk: the <name> folder holding
// <name>.pbip, the <name>.Report definition tree and the optional
// <name>.Dataset model. The report name always equals the folder name.
type Report struct {
	name    string
	path    string
	pages   *Pages
	dataset *Dataset
}

// reportOptions collects LoadReport options.
type reportOptions struct {
	baseline string
}

// ReportOption configures LoadReport.
type ReportOption func(*reportOptions)

// WithBaseline makes LoadReport build the report folder from the given
// baseline template when it does not exist yet. The template's
// placeholder artifacts are renamed after the report and its pbip and
// definition.pbir references are rewritten to match.
func WithBaseline(dir string) ReportOption {
	return func(o *reportOptions) { o.baseline = dir }
}

// LoadReport loads the report project at dir. The folder's base name
// becomes the report name. A missing folder is a NotFoundError unless
// WithBaseline is given, in which case the project is created from the
// template first.
func LoadReport(ctx context.Context, dir string, opts ...ReportOption) (*Report, error) {
	var o reportOptions
	for _, opt := range opts {
		opt(&o)
	}
	name := filepath.Base(dir)
	if name == "." || name == string(filepath.Separator) || name == "" {
		return nil, fmt.Errorf("report path %q has no name component: %w", dir, ErrInvalid)
	}
	if _, err := os.Stat(dir); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat report %s: %w", dir, err)
		}
		if o.baseline == "" {
			return nil, NewNotFound("report", name, dir)
		}
		if err := createFromBaseline(ctx, o.baseline, dir, name); err != nil {
			return nil, err
		}
	}
	r := &Report{name: name, path: dir}
	if err := r.loadStructure(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Report) loadStructure(ctx context.Context) error {
	reportDir := r.ReportFolder()
	if _, err := os.Stat(reportDir); err != nil {
		if os.IsNotExist(err) {
			return NewNotFound("report", r.name, reportDir)
		}
		return fmt.Errorf("failed to stat %s: %w", reportDir, err)
	}
	pagesPath := filepath.Join(reportDir, definitionDirname, pagesDirname, pagesFilename)
	if _, err := os.Stat(pagesPath); err == nil {
		pages, err := LoadPages(ctx, pagesPath)
		if err != nil {
			return err
		}
		r.pages = pages
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", pagesPath, err)
	}
	datasetDir := filepath.Join(r.path, r.name+datasetDirSuffix)
	if _, err := os.Stat(datasetDir); err == nil {
		dataset, err := LoadDataset(ctx, datasetDir)
		if err != nil {
			return err
		}
		r.dataset = dataset
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", datasetDir, err)
	}
	return nil
}

// Name returns the report name (equals the folder name).
func (r *Report) Name() string { return r.name }

// Path returns the report project folder.
func (r *Report) Path() string { return r.path }

// ReportFolder returns the <name>.Report definition folder.
func (r *Report) ReportFolder() string {
	return filepath.Join(r.path, r.name+reportDirSuffix)
}

// Pages returns the page collection, or nil when the definition carries
// no pages metadata.
func (r *Report) Pages() *Pages { return r.pages }

// Dataset returns the model side, or nil when the project has no
// <name>.Dataset folder.
func (r *Report) Dataset() *Dataset { return r.dataset }

// createFromBaseline copies the baseline template to dir and rebrands it
// as name. A partial result is removed again on failure.
func createFromBaseline(ctx context.Context, baseline, dir, name string) error {
	lg := mylog.LoggerFromContext(ctx)
	if _, err := os.Stat(baseline); err != nil {
		if os.IsNotExist(err) {
			return NewNotFound("baseline", "", baseline)
		}
		return fmt.Errorf("failed to stat baseline %s: %w", baseline, err)
	}
	placeholder, err := baselineName(baseline)
	if err != nil {
		return err
	}
	if err := buildFromBaseline(baseline, dir, placeholder, name); err != nil {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			lg.Warn("failed to clean up partial report", "path", dir, "err", rmErr)
		}
		return err
	}
	lg.Info("report created from baseline", "name", name, "baseline", baseline)
	return nil
}

// baselineName derives the template's placeholder name from its .pbip
// artifact.
func baselineName(baseline string) (string, error) {
	entries, err := os.ReadDir(baseline)
	if err != nil {
		return "", fmt.Errorf("failed to scan baseline %s: %w", baseline, err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), pbipSuffix) {
			return strings.TrimSuffix(entry.Name(), pbipSuffix), nil
		}
	}
	return "", NewFormatError(baseline, fmt.Errorf("no %s artifact", pbipSuffix))
}

func buildFromBaseline(baseline, dir, placeholder, name string) error {
	if err := copyTree(baseline, dir); err != nil {
		return err
	}
	if placeholder != name {
		renames := [][2]string{
			{placeholder + reportDirSuffix, name + reportDirSuffix},
			{placeholder + datasetDirSuffix, name + datasetDirSuffix},
			{placeholder + pbipSuffix, name + pbipSuffix},
		}
		for _, rn := range renames {
			from := filepath.Join(dir, rn[0])
			to := filepath.Join(dir, rn[1])
			if _, err := os.Stat(from); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				return fmt.Errorf("failed to stat %s: %w", from, err)
			}
			if err := os.Rename(from, to); err != nil {
				return NewWriteError("rename", from, err)
			}
		}
	}
	if err := rewritePbip(filepath.Join(dir, name+pbipSuffix), name+reportDirSuffix); err != nil {
		return err
	}
	return rewritePbir(filepath.Join(dir, name+reportDirSuffix, pbirFilename), "../"+name+datasetDirSuffix)
}

// copyTree copies the file tree at src below dst, creating dst itself.
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return NewWriteError("copy", target, err)
			}
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, b, info.Mode().Perm()); err != nil {
			return NewWriteError("copy", target, err)
		}
		return nil
	})
}

// rewritePbip points the pbip's first report artifact at reportDirName.
// The document is treated as opaque JSON beyond that one field.
func rewritePbip(path, reportDirName string) error {
	var doc map[string]any
	if err := readJSONFile(path, &doc); err != nil {
		return err
	}
	artifacts, ok := doc["artifacts"].([]any)
	if !ok || len(artifacts) == 0 {
		return NewFormatError(path, fmt.Errorf("missing artifacts"))
	}
	first, ok := artifacts[0].(map[string]any)
	if !ok {
		return NewFormatError(path, fmt.Errorf("malformed artifact"))
	}
	report, ok := first["report"].(map[string]any)
	if !ok {
		return NewFormatError(path, fmt.Errorf("artifact missing report"))
	}
	report["path"] = reportDirName
	return writeJSONFile(path, doc)
}

// rewritePbir points definition.pbir's dataset reference at
// datasetRelPath (a forward-slash path relative to the .Report folder).
func rewritePbir(path, datasetRelPath string) error {
	var doc map[string]any
	if err := readJSONFile(path, &doc); err != nil {
		return err
	}
	ref, ok := doc["datasetReference"].(map[string]any)
	if !ok {
		return NewFormatError(path, fmt.Errorf("missing datasetReference"))
	}
	byPath, ok := ref["byPath"].(map[string]any)
	if !ok {
		return NewFormatError(path, fmt.Errorf("datasetReference missing byPath"))
	}
	byPath["path"] = datasetRelPath
	return writeJSONFile(path, doc)
}
