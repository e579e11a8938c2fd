package smith

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/reportsmith/reportsmith/pkg/pbir"
	"github.com/stretchr/testify/require"
)

const (
	testPagesSchema = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/pagesMetadata/1.0.0/schema.json"
	testPageSchema  = "https://developer.microsoft.com/json-schemas/fabric/item/report/definition/page/2.0.0/schema.json"
)

// writeTestFile writes content, creating parent directories first.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeTestJSON marshals v the way the report files are written.
func writeTestJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	writeTestFile(t, path, string(b))
}

// buildBaseline lays out a report template under dir with the
// placeholder name "report_sample": pbip manifest, definition tree with
// one page, and a dataset with one table and one relationship.
func buildBaseline(t *testing.T, dir string) {
	t.Helper()
	writeTestJSON(t, filepath.Join(dir, "report_sample.pbip"), map[string]any{
		"version": "1.0",
		"artifacts": []any{
			map[string]any{"report": map[string]any{"path": "report_sample.Report"}},
		},
	})
	writeTestJSON(t, filepath.Join(dir, "report_sample.Report", "definition.pbir"), map[string]any{
		"version": "4.0",
		"datasetReference": map[string]any{
			"byPath": map[string]any{"path": "../report_sample.Dataset"},
		},
	})
	writeTestJSON(t, filepath.Join(dir, "report_sample.Report", "definition", "pages", "pages.json"), pbir.PagesData{
		PageOrder:      []string{"page1"},
		ActivePageName: "page1",
		Schema:         testPagesSchema,
	})
	writeTestJSON(t, filepath.Join(dir, "report_sample.Report", "definition", "pages", "pages", "page1", "page.json"), pbir.PageData{
		Schema:        testPageSchema,
		Name:          "page1",
		DisplayName:   "Page 1",
		DisplayOption: pbir.FitToPage,
		Height:        720,
		Width:         1280,
	})
	writeTestFile(t, filepath.Join(dir, "report_sample.Dataset", "definition", "tables", "Sales.tmdl"),
		"table Sales\n\tcolumn Amount\n\t\tdataType: decimal\n\t\tsummarizeBy: sum\n")
	writeTestFile(t, filepath.Join(dir, "report_sample.Dataset", "definition", "relationships.tmdl"),
		"relationship rel1\n\tfromColumn: Sales.Amount\n\ttoColumn: 'Date'.Id\n")
}

// newTestStore returns an empty store over a fresh reports root with a
// baseline template beside it.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmp := t.TempDir()
	baseline := filepath.Join(tmp, "baseline")
	buildBaseline(t, baseline)
	return NewStore(filepath.Join(tmp, "reports"), baseline)
}

// removeTestPagesFile deletes the pages metadata tree so a reload sees
// a report without a page collection.
func removeTestPagesFile(t *testing.T, r *pbir.Report) {
	t.Helper()
	require.NoError(t, os.RemoveAll(filepath.Join(r.ReportFolder(), "definition", "pages")))
}
