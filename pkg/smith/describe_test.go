package smith

import (
	"fmt"
	"strings"
	"testing"

	"github.com/reportsmith/reportsmith/pkg/pbir"
	"github.com/stretchr/testify/require"
)

func TestDescribeMarkdown(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	r, err := s.Create(t.Context(), "sales")
	require.NoError(t, err)
	pg, ok := r.Pages().Page("page1")
	require.True(t, ok)
	v, err := pg.AddVisual(t.Context(), pbir.VisualTypeLineChart, 40, 40, 640, 360, 0)
	require.NoError(t, err)
	_, err = r.Pages().AddPage(t.Context(), "details", "Details", 0, 0)
	require.NoError(t, err)

	md := DescribeMarkdown(r)
	require.True(t, strings.HasPrefix(md, "# sales\n"), "got:\n%s", md)
	require.Contains(t, md, "Active page: page1.")
	require.Contains(t, md, "### Page 1 (page1)")
	require.Contains(t, md, "- Size: 1280x720 (FitToPage)")
	require.Contains(t, md, fmt.Sprintf("  - %s: lineChart at (40, 40), 640x360, z 0", v.Name()))
	require.Contains(t, md, "### Details (details)")
	require.Contains(t, md, "- Visuals: none")

	require.Less(t, strings.Index(md, "### Page 1 (page1)"), strings.Index(md, "### Details (details)"),
		"pages must appear in canvas order")

	require.Contains(t, md, "## Tables")
	require.Contains(t, md, "### Sales")
	require.Contains(t, md, "- Amount: decimal (sum)")
	require.Contains(t, md, "## Relationships")
	require.Contains(t, md, "- rel1: Sales.Amount -> 'Date'.Id")
}

func TestDescribeMarkdownFollowsPageOrder(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	r, err := s.Create(t.Context(), "sales")
	require.NoError(t, err)
	_, err = r.Pages().AddPage(t.Context(), "details", "", 0, 0)
	require.NoError(t, err)
	require.NoError(t, r.Pages().BringPageToFront(t.Context(), "details"))

	md := DescribeMarkdown(r)
	require.Less(t, strings.Index(md, "### details"), strings.Index(md, "### Page 1 (page1)"))
}

func TestDescribeMarkdownWithoutPages(t *testing.T) {
	t.Parallel()

	// A report folder with no pages metadata still describes cleanly.
	s := newTestStore(t)
	r, err := s.Create(t.Context(), "bare")
	require.NoError(t, err)
	removeTestPagesFile(t, r)

	fresh, err := pbir.LoadReport(t.Context(), r.Path())
	require.NoError(t, err)
	require.Nil(t, fresh.Pages())

	md := DescribeMarkdown(fresh)
	require.Contains(t, md, "No pages.")
	require.Contains(t, md, "## Tables", "the dataset still renders")
}

func TestDescribeHTML(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	r, err := s.Create(t.Context(), "sales")
	require.NoError(t, err)

	html, err := DescribeHTML(r)
	require.NoError(t, err)
	require.Contains(t, html, "<h1>sales</h1>")
	require.Contains(t, html, "<h3>Page 1 (page1)</h3>")
	require.Contains(t, html, "<li>")
}
