package smith

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/reportsmith/reportsmith/pkg/pbir"
	"github.com/yuin/goldmark"
)

// DescribeMarkdown renders a human-readable summary of a report:
// pages in canvas order with their visuals, then the dataset tables
// and relationships. The output is deterministic for a given report.
func DescribeMarkdown(r *pbir.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", r.Name())

	pages := r.Pages()
	if pages == nil {
		b.WriteString("\nNo pages.\n")
	} else {
		b.WriteString("\n## Pages\n")
		if active := pages.ActivePageName(); active != "" {
			fmt.Fprintf(&b, "\nActive page: %s.\n", active)
		}
		for _, name := range pages.PageNames() {
			pg, ok := pages.Page(name)
			if !ok {
				continue
			}
			describePage(&b, pg)
		}
	}

	if ds := r.Dataset(); ds != nil {
		describeDataset(&b, ds)
	}
	return b.String()
}

// DescribeHTML renders the markdown summary as an HTML fragment.
func DescribeHTML(r *pbir.Report) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New().Convert([]byte(DescribeMarkdown(r)), &buf); err != nil {
		return "", fmt.Errorf("failed to render report summary: %w", err)
	}
	return buf.String(), nil
}

func describePage(b *strings.Builder, pg *pbir.Page) {
	if display := pg.DisplayName(); display != "" && display != pg.Name() {
		fmt.Fprintf(b, "\n### %s (%s)\n\n", display, pg.Name())
	} else {
		fmt.Fprintf(b, "\n### %s\n\n", pg.Name())
	}
	fmt.Fprintf(b, "- Size: %sx%s (%s)\n", num(pg.Width()), num(pg.Height()), pg.DisplayOption())

	names := pg.VisualNames()
	if len(names) == 0 {
		b.WriteString("- Visuals: none\n")
		return
	}
	b.WriteString("- Visuals:\n")
	for _, name := range names {
		v, ok := pg.Visual(name)
		if !ok {
			continue
		}
		fmt.Fprintf(b, "  - %s: %s at (%s, %s), %sx%s, z %s\n",
			name, v.VisualType(),
			num(v.X()), num(v.Y()),
			num(v.Width()), num(v.Height()),
			num(v.Z()))
	}
}

func describeDataset(b *strings.Builder, ds *pbir.Dataset) {
	b.WriteString("\n## Tables\n")
	tables := ds.Tables()
	if len(tables) == 0 {
		b.WriteString("\nNo tables.\n")
	}
	for _, t := range tables {
		fmt.Fprintf(b, "\n### %s\n\n", t.Name)
		for _, col := range t.Columns {
			fmt.Fprintf(b, "- %s: %s (%s)\n", col.Name, col.DataType, col.SummarizeBy)
		}
	}

	b.WriteString("\n## Relationships\n\n")
	rels := ds.Relationships()
	if len(rels) == 0 {
		b.WriteString("No relationships.\n")
		return
	}
	for _, rel := range rels {
		fmt.Fprintf(b, "- %s: %s -> %s\n", rel.ID, rel.FromColumn, rel.ToColumn)
	}
}

// num prints canvas coordinates without a float suffix, so whole
// numbers read as "1280" rather than "1280.000000".
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
