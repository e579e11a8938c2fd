package pbir

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeTestFile writes content, creating parent directories first.
func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// writeTestJSON marshals v the same way the package writes its files.
func writeTestJSON(t *testing.T, path string, v any) {
	t.Helper()
	b, err := json.MarshalIndent(v, "", "  ")
	require.NoError(t, err)
	writeTestFile(t, path, string(b))
}

// readTestJSON decodes path into a generic map for content assertions.
func readTestJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

// buildBaseline lays out a report template under dir with the
// placeholder name "report_sample": pbip manifest, definition tree with
// one page, and a dataset with one table and one relationship. This is
// the minimal shape a desktop client export has.
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
	writeTestJSON(t, filepath.Join(dir, "report_sample.Report", "definition", "pages", "pages.json"), PagesData{
		PageOrder:      []string{"page1"},
		ActivePageName: "page1",
		Schema:         pagesSchemaURL,
	})
	writeTestJSON(t, filepath.Join(dir, "report_sample.Report", "definition", "pages", "pages", "page1", "page.json"), PageData{
		Schema:        pageSchemaURL,
		Name:          "page1",
		DisplayName:   "Page 1",
		DisplayOption: FitToPage,
		Height:        720,
		Width:         1280,
	})
	writeTestFile(t, filepath.Join(dir, "report_sample.Dataset", "definition", "tables", "Sales.tmdl"),
		"table Sales\n\tcolumn Amount\n\t\tdataType: decimal\n\t\tsummarizeBy: sum\n")
	writeTestFile(t, filepath.Join(dir, "report_sample.Dataset", "definition", "relationships.tmdl"),
		"relationship rel1\n\tfromColumn: Sales.Amount\n\ttoColumn: 'Date'.Id\n")
}

// newTestPage creates a fresh page in its own temp folder.
func newTestPage(t *testing.T, data PageData) *Page {
	t.Helper()
	if data.Name == "" {
		data.Name = "page1"
	}
	p, err := NewPage(t.Context(), filepath.Join(t.TempDir(), data.Name), data)
	require.NoError(t, err)
	return p
}
