package pbir

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDataset(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "sample.Dataset")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "Customers.tmdl"),
		"table Customers\n"+
			"\tcolumn Id\n"+
			"\t\tdataType: int64\n"+
			"\tcolumn Name\n"+
			"\t\tdataType: string\n")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "Hidden.tmdl"),
		"table Hidden\n"+
			"\tisHidden\n"+
			"\tcolumn Secret\n")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "Sales.tmdl"),
		"table Sales\n"+
			"\tcolumn Amount\n"+
			"\t\tdataType: decimal\n"+
			"\t\tsummarizeBy: sum\n")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "broken.tmdl"),
		"not a table header\n") // does not parse - skipped
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "notes.txt"),
		"irrelevant\n") // wrong extension - ignored
	writeTestFile(t, filepath.Join(dir, "definition", "relationships.tmdl"),
		"relationship one\n"+
			"\tfromColumn: Sales.CustomerId\n"+
			"\ttoColumn: Customers.Id\n"+
			"\n"+
			"relationship incomplete\n"+
			"\tfromColumn: Sales.X\n") // no toColumn - dropped

	d, err := LoadDataset(t.Context(), dir)
	require.NoError(t, err)

	require.Equal(t, []string{"Customers", "Sales"}, d.TableNames(),
		"file order, hidden and broken tables excluded")
	sales, ok := d.Table("Sales")
	require.True(t, ok)
	require.Len(t, sales.Columns, 1)
	require.Equal(t, "Amount", sales.Columns[0].Name)
	require.Equal(t, "decimal", sales.Columns[0].DataType)
	require.Equal(t, "sum", sales.Columns[0].SummarizeBy)

	_, ok = d.Table("Hidden")
	require.False(t, ok, "hidden tables stay out of the model")

	rels := d.Relationships()
	require.Len(t, rels, 1)
	require.Equal(t, "one", rels[0].ID)
	require.Equal(t, "Sales.CustomerId", rels[0].FromColumn)
	require.Equal(t, "Customers.Id", rels[0].ToColumn)
}

func TestLoadDatasetMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadDataset(t.Context(), filepath.Join(t.TempDir(), "nope.Dataset"))
	require.True(t, IsNotExist(err), "want missing-entity error, got %v", err)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Equal(t, "dataset", nf.Kind)
}

func TestLoadDatasetEmpty(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "empty.Dataset")
	writeTestFile(t, filepath.Join(dir, "definition", "placeholder"), "")

	d, err := LoadDataset(t.Context(), dir)
	require.NoError(t, err)
	require.Empty(t, d.TableNames(), "no tables directory means no tables")
	require.Empty(t, d.Relationships())
}

func TestLoadDatasetDuplicateTableName(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "dup.Dataset")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "a.tmdl"),
		"table Dup\n\tcolumn First\n")
	writeTestFile(t, filepath.Join(dir, "definition", "tables", "b.tmdl"),
		"table Dup\n\tcolumn Second\n")

	d, err := LoadDataset(t.Context(), dir)
	require.NoError(t, err)
	require.Equal(t, []string{"Dup"}, d.TableNames(), "one entry per table name")

	dup, ok := d.Table("Dup")
	require.True(t, ok)
	require.Len(t, dup.Columns, 1)
	require.Equal(t, "Second", dup.Columns[0].Name, "the later file wins")
}
