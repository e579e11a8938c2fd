package smith

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/reportsmith/reportsmith/pkg/pbir"
)

// NewMCPServer builds an MCP server exposing the report operations as
// tools. Serve it over stdio with server.Run(ctx, &mcp.StdioTransport{})
// or connect it to any other transport.
func NewMCPServer(store *Store, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "reportsmith", Version: version}, nil)
	registerTools(server, &tools{store: store})
	return server
}

func registerTools(server *mcp.Server, t *tools) {
	mcp.AddTool(server, &mcp.Tool{Name: "list_reports", Description: "List all active reports"}, t.listReports)
	mcp.AddTool(server, &mcp.Tool{Name: "make_new_report", Description: "Create a new Power BI report"}, t.makeNewReport)
	mcp.AddTool(server, &mcp.Tool{Name: "delete_report", Description: "Delete a report from active memory (doesn't delete files)"}, t.deleteReport)

	mcp.AddTool(server, &mcp.Tool{Name: "get_all_pages", Description: "Get all pages in a report"}, t.getAllPages)
	mcp.AddTool(server, &mcp.Tool{Name: "get_page_details", Description: "Get details of a specific page"}, t.getPageDetails)
	mcp.AddTool(server, &mcp.Tool{Name: "add_page", Description: "Add a page to a report"}, t.addPage)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_page", Description: "Remove a page and its visuals from a report"}, t.removePage)
	mcp.AddTool(server, &mcp.Tool{Name: "resize_page", Description: "Resize a page in a report"}, t.resizePage)
	mcp.AddTool(server, &mcp.Tool{Name: "set_active_page", Description: "Set the page a report opens on"}, t.setActivePage)
	mcp.AddTool(server, &mcp.Tool{Name: "order_pages", Description: "Reorder the pages of a report"}, t.orderPages)
	mcp.AddTool(server, &mcp.Tool{Name: "move_page", Description: "Move a page to the front or back of the page order"}, t.movePage)

	mcp.AddTool(server, &mcp.Tool{Name: "add_visual", Description: "Add a chart to a page in a report"}, t.addVisual)
	mcp.AddTool(server, &mcp.Tool{Name: "remove_visual", Description: "Remove a visual from a page in a report"}, t.removeVisual)
	mcp.AddTool(server, &mcp.Tool{Name: "change_chart_size", Description: "Change the size of a chart on a page"}, t.changeChartSize)
	mcp.AddTool(server, &mcp.Tool{Name: "move_visual", Description: "Move a chart to a new position on a page"}, t.moveVisual)
	mcp.AddTool(server, &mcp.Tool{Name: "bring_visual_to_front", Description: "Bring a chart in front of the other visuals on its page"}, t.bringVisualToFront)
	mcp.AddTool(server, &mcp.Tool{Name: "send_visual_to_back", Description: "Send a chart behind the other visuals on its page"}, t.sendVisualToBack)
	mcp.AddTool(server, &mcp.Tool{Name: "set_visual_percentage", Description: "Size a chart as a fraction of its page dimensions"}, t.setVisualPercentage)
	mcp.AddTool(server, &mcp.Tool{Name: "check_visual_overlaps", Description: "List the visuals overlapping a chart"}, t.checkVisualOverlaps)

	mcp.AddTool(server, &mcp.Tool{Name: "get_tables", Description: "List all non-hidden tables in the report's dataset"}, t.getTables)
	mcp.AddTool(server, &mcp.Tool{Name: "get_table_columns", Description: "Get columns for a specific table with dataType and summarizeBy"}, t.getTableColumns)
	mcp.AddTool(server, &mcp.Tool{Name: "get_relationships", Description: "Get relationships from the dataset"}, t.getRelationships)
}

// tools adapts the store to the MCP tool handlers. Handlers resolve
// names before mutating so misses report the available alternatives.
type tools struct {
	store *Store
}

func (t *tools) reportPages(name string) (*pbir.Report, *pbir.Pages, error) {
	r, err := t.store.Get(name)
	if err != nil {
		return nil, nil, err
	}
	pages := r.Pages()
	if pages == nil {
		return r, nil, errNoPages
	}
	return r, pages, nil
}

func (t *tools) page(reportName, pageName string) (*pbir.Page, error) {
	_, pages, err := t.reportPages(reportName)
	if err != nil {
		return nil, err
	}
	pg, ok := pages.Page(pageName)
	if !ok {
		return nil, &UnknownPageError{Report: reportName, Name: pageName, Available: indexedPageNames(pages)}
	}
	return pg, nil
}

func (t *tools) chart(reportName, pageName, chartID string) (*pbir.Page, *pbir.Visual, error) {
	pg, err := t.page(reportName, pageName)
	if err != nil {
		return nil, nil, err
	}
	v, ok := pg.Visual(chartID)
	if !ok {
		return nil, nil, &UnknownChartError{Page: pageName, Name: chartID, Available: pg.VisualNames()}
	}
	return pg, v, nil
}

func textResult(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{Content: []mcp.Content{&mcp.TextContent{Text: msg}}}
}

type sizeOut struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type pointOut struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Report tools.

type listReportsIn struct{}

type listReportsOut struct {
	Reports      []ReportInfo `json:"reports"`
	TotalReports int          `json:"total_reports"`
}

func (t *tools) listReports(ctx context.Context, req *mcp.CallToolRequest, in listReportsIn) (*mcp.CallToolResult, listReportsOut, error) {
	infos := t.store.List()
	msg := fmt.Sprintf("Found %d active reports", len(infos))
	return textResult(msg), listReportsOut{Reports: infos, TotalReports: len(infos)}, nil
}

type makeNewReportIn struct {
	Name string `json:"name" jsonschema:"Name of the report to create"`
}

type makeNewReportOut struct {
	ReportName string `json:"report_name"`
}

func (t *tools) makeNewReport(ctx context.Context, req *mcp.CallToolRequest, in makeNewReportIn) (*mcp.CallToolResult, makeNewReportOut, error) {
	r, err := t.store.Create(ctx, in.Name)
	if err != nil {
		if pbir.IsExist(err) {
			return nil, makeNewReportOut{}, fmt.Errorf("Report '%s' already exists", in.Name)
		}
		return nil, makeNewReportOut{}, err
	}
	msg := fmt.Sprintf("Report '%s' created successfully", r.Name())
	return textResult(msg), makeNewReportOut{ReportName: r.Name()}, nil
}

type deleteReportIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report to delete"`
}

type deleteReportOut struct {
	DeletedReport string `json:"deleted_report"`
}

func (t *tools) deleteReport(ctx context.Context, req *mcp.CallToolRequest, in deleteReportIn) (*mcp.CallToolResult, deleteReportOut, error) {
	if err := t.store.Delete(ctx, in.ReportName); err != nil {
		return nil, deleteReportOut{}, err
	}
	msg := fmt.Sprintf("Report '%s' removed from active memory", in.ReportName)
	return textResult(msg), deleteReportOut{DeletedReport: in.ReportName}, nil
}

// Page tools.

type reportIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
}

type allPagesOut struct {
	Pages     []string `json:"pages"`
	PageIDs   []string `json:"page_ids"`
	PageNames []string `json:"page_names"`
}

func (t *tools) getAllPages(ctx context.Context, req *mcp.CallToolRequest, in reportIn) (*mcp.CallToolResult, allPagesOut, error) {
	r, err := t.store.Get(in.ReportName)
	if err != nil {
		return nil, allPagesOut{}, err
	}
	pages := r.Pages()
	if pages == nil {
		out := allPagesOut{Pages: []string{}, PageIDs: []string{}, PageNames: []string{}}
		return textResult("No pages found in report"), out, nil
	}
	ids := indexedPageNames(pages)
	displayNames := make([]string, 0, len(ids))
	for _, id := range ids {
		pg, _ := pages.Page(id)
		displayNames = append(displayNames, pg.DisplayName())
	}
	msg := fmt.Sprintf("Found %d pages in report '%s'", len(pages.PageNames()), in.ReportName)
	return textResult(msg), allPagesOut{Pages: ids, PageIDs: ids, PageNames: displayNames}, nil
}

type pageIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
	PageName   string `json:"page_name" jsonschema:"Name of the page"`
}

type visualDetailOut struct {
	ID     string          `json:"id"`
	Type   pbir.VisualType `json:"type"`
	X      float64         `json:"x"`
	Y      float64         `json:"y"`
	Width  float64         `json:"width"`
	Height float64         `json:"height"`
}

type pageDetailsOut struct {
	Name          string            `json:"name"`
	DisplayName   string            `json:"display_name"`
	Width         float64           `json:"width"`
	Height        float64           `json:"height"`
	DisplayOption string            `json:"display_option"`
	VisualCount   int               `json:"visual_count"`
	Visuals       []visualDetailOut `json:"visuals"`
}

func (t *tools) getPageDetails(ctx context.Context, req *mcp.CallToolRequest, in pageIn) (*mcp.CallToolResult, pageDetailsOut, error) {
	pg, err := t.page(in.ReportName, in.PageName)
	if err != nil {
		return nil, pageDetailsOut{}, err
	}
	names := pg.VisualNames()
	visuals := make([]visualDetailOut, 0, len(names))
	for _, name := range names {
		v, ok := pg.Visual(name)
		if !ok {
			continue
		}
		visuals = append(visuals, visualDetailOut{
			ID:     name,
			Type:   v.VisualType(),
			X:      v.X(),
			Y:      v.Y(),
			Width:  v.Width(),
			Height: v.Height(),
		})
	}
	out := pageDetailsOut{
		Name:          pg.Name(),
		DisplayName:   pg.DisplayName(),
		Width:         pg.Width(),
		Height:        pg.Height(),
		DisplayOption: string(pg.DisplayOption()),
		VisualCount:   len(visuals),
		Visuals:       visuals,
	}
	msg := fmt.Sprintf("Page details retrieved for '%s'", in.PageName)
	return textResult(msg), out, nil
}

type addPageIn struct {
	ReportName  string  `json:"report_name" jsonschema:"Name of the report"`
	PageName    string  `json:"page_name" jsonschema:"Name of the page to add"`
	DisplayName string  `json:"display_name,omitempty" jsonschema:"Display name shown in the page tabs (defaults to the page name)"`
	Width       float64 `json:"width,omitempty" jsonschema:"Width of the page canvas (defaults to 1280)"`
	Height      float64 `json:"height,omitempty" jsonschema:"Height of the page canvas (defaults to 720)"`
}

type addPageOut struct {
	PageName    string  `json:"page_name"`
	DisplayName string  `json:"display_name"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ReportName  string  `json:"report_name"`
}

func (t *tools) addPage(ctx context.Context, req *mcp.CallToolRequest, in addPageIn) (*mcp.CallToolResult, addPageOut, error) {
	_, pages, err := t.reportPages(in.ReportName)
	if err != nil {
		return nil, addPageOut{}, err
	}
	pg, err := pages.AddPage(ctx, in.PageName, in.DisplayName, in.Width, in.Height)
	if err != nil {
		if pbir.IsExist(err) {
			return nil, addPageOut{}, fmt.Errorf("Page '%s' already exists in report '%s'", in.PageName, in.ReportName)
		}
		return nil, addPageOut{}, err
	}
	out := addPageOut{
		PageName:    pg.Name(),
		DisplayName: pg.DisplayName(),
		Width:       pg.Width(),
		Height:      pg.Height(),
		ReportName:  in.ReportName,
	}
	msg := fmt.Sprintf("Page '%s' added to report '%s'", in.PageName, in.ReportName)
	return textResult(msg), out, nil
}

type removePageOut struct {
	RemovedPage string `json:"removed_page"`
	ReportName  string `json:"report_name"`
}

func (t *tools) removePage(ctx context.Context, req *mcp.CallToolRequest, in pageIn) (*mcp.CallToolResult, removePageOut, error) {
	_, pages, err := t.reportPages(in.ReportName)
	if err != nil {
		return nil, removePageOut{}, err
	}
	if _, ok := pages.Page(in.PageName); !ok {
		return nil, removePageOut{}, &UnknownPageError{Report: in.ReportName, Name: in.PageName, Available: indexedPageNames(pages)}
	}
	if _, err := pages.RemovePage(ctx, in.PageName); err != nil {
		return nil, removePageOut{}, err
	}
	msg := fmt.Sprintf("Page '%s' removed from report '%s'", in.PageName, in.ReportName)
	return textResult(msg), removePageOut{RemovedPage: in.PageName, ReportName: in.ReportName}, nil
}

type resizePageIn struct {
	ReportName string  `json:"report_name" jsonschema:"Name of the report"`
	PageName   string  `json:"page_name" jsonschema:"Name of the page to resize"`
	Width      float64 `json:"width" jsonschema:"New width of the page"`
	Height     float64 `json:"height" jsonschema:"New height of the page"`
}

type resizePageOut struct {
	PageName   string  `json:"page_name"`
	ReportName string  `json:"report_name"`
	NewSize    sizeOut `json:"new_size"`
}

func (t *tools) resizePage(ctx context.Context, req *mcp.CallToolRequest, in resizePageIn) (*mcp.CallToolResult, resizePageOut, error) {
	pg, err := t.page(in.ReportName, in.PageName)
	if err != nil {
		return nil, resizePageOut{}, err
	}
	if err := pg.Resize(ctx, in.Width, in.Height); err != nil {
		return nil, resizePageOut{}, err
	}
	out := resizePageOut{
		PageName:   in.PageName,
		ReportName: in.ReportName,
		NewSize:    sizeOut{Width: in.Width, Height: in.Height},
	}
	msg := fmt.Sprintf("Page '%s' resized to %vx%v", in.PageName, in.Width, in.Height)
	return textResult(msg), out, nil
}

type setActivePageOut struct {
	ActivePage string `json:"active_page"`
	ReportName string `json:"report_name"`
}

func (t *tools) setActivePage(ctx context.Context, req *mcp.CallToolRequest, in pageIn) (*mcp.CallToolResult, setActivePageOut, error) {
	_, pages, err := t.reportPages(in.ReportName)
	if err != nil {
		return nil, setActivePageOut{}, err
	}
	if err := pages.SetActivePage(ctx, in.PageName); err != nil {
		return nil, setActivePageOut{}, err
	}
	msg := fmt.Sprintf("Active page set to '%s' in report '%s'", in.PageName, in.ReportName)
	return textResult(msg), setActivePageOut{ActivePage: in.PageName, ReportName: in.ReportName}, nil
}

type orderPagesIn struct {
	ReportName string   `json:"report_name" jsonschema:"Name of the report"`
	PageNames  []string `json:"page_names" jsonschema:"Page names in the desired order"`
}

type orderPagesOut struct {
	PageOrder  []string `json:"page_order"`
	ReportName string   `json:"report_name"`
}

func (t *tools) orderPages(ctx context.Context, req *mcp.CallToolRequest, in orderPagesIn) (*mcp.CallToolResult, orderPagesOut, error) {
	_, pages, err := t.reportPages(in.ReportName)
	if err != nil {
		return nil, orderPagesOut{}, err
	}
	if err := pages.OrderPages(ctx, in.PageNames); err != nil {
		return nil, orderPagesOut{}, err
	}
	msg := fmt.Sprintf("Pages reordered in report '%s'", in.ReportName)
	return textResult(msg), orderPagesOut{PageOrder: pages.PageNames(), ReportName: in.ReportName}, nil
}

type movePageIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
	PageName   string `json:"page_name" jsonschema:"Name of the page to move"`
	Position   string `json:"position" jsonschema:"Where to move the page (front or back)"`
}

type movePageOut struct {
	PageName   string   `json:"page_name"`
	Position   string   `json:"position"`
	PageOrder  []string `json:"page_order"`
	ReportName string   `json:"report_name"`
}

func (t *tools) movePage(ctx context.Context, req *mcp.CallToolRequest, in movePageIn) (*mcp.CallToolResult, movePageOut, error) {
	_, pages, err := t.reportPages(in.ReportName)
	if err != nil {
		return nil, movePageOut{}, err
	}
	if _, ok := pages.Page(in.PageName); !ok {
		return nil, movePageOut{}, &UnknownPageError{Report: in.ReportName, Name: in.PageName, Available: indexedPageNames(pages)}
	}
	switch in.Position {
	case "front":
		err = pages.BringPageToFront(ctx, in.PageName)
	case "back":
		err = pages.SendPageToBack(ctx, in.PageName)
	default:
		return nil, movePageOut{}, fmt.Errorf("Invalid position '%s'. Supported positions: front, back", in.Position)
	}
	if err != nil {
		return nil, movePageOut{}, err
	}
	out := movePageOut{
		PageName:   in.PageName,
		Position:   in.Position,
		PageOrder:  pages.PageNames(),
		ReportName: in.ReportName,
	}
	msg := fmt.Sprintf("Page '%s' moved to %s in report '%s'", in.PageName, in.Position, in.ReportName)
	return textResult(msg), out, nil
}

// Visual tools.

type addVisualIn struct {
	ReportName string  `json:"report_name" jsonschema:"Name of the report"`
	PageName   string  `json:"page_name" jsonschema:"Name of the page to add the chart to"`
	ChartType  string  `json:"chart_type" jsonschema:"Type of chart (lineChart or barChart)"`
	X          float64 `json:"x,omitempty" jsonschema:"X coordinate for the chart"`
	Y          float64 `json:"y,omitempty" jsonschema:"Y coordinate for the chart"`
	Width      float64 `json:"width,omitempty" jsonschema:"Width of the chart (defaults to 400)"`
	Height     float64 `json:"height,omitempty" jsonschema:"Height of the chart (defaults to 300)"`
}

type addVisualOut struct {
	ChartID    string      `json:"chart_id"`
	ChartType  string      `json:"chart_type"`
	Position   positionOut `json:"position"`
	PageName   string      `json:"page_name"`
	ReportName string      `json:"report_name"`
}

type positionOut struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (t *tools) addVisual(ctx context.Context, req *mcp.CallToolRequest, in addVisualIn) (*mcp.CallToolResult, addVisualOut, error) {
	pg, err := t.page(in.ReportName, in.PageName)
	if err != nil {
		return nil, addVisualOut{}, err
	}
	if in.ChartType != string(pbir.VisualTypeLineChart) && in.ChartType != string(pbir.VisualTypeBarChart) {
		return nil, addVisualOut{}, fmt.Errorf("Invalid chart type '%s'. Supported types: lineChart, barChart", in.ChartType)
	}
	visualType, err := pbir.ParseVisualType(in.ChartType)
	if err != nil {
		return nil, addVisualOut{}, err
	}
	width, height := in.Width, in.Height
	if width == 0 {
		width = 400
	}
	if height == 0 {
		height = 300
	}
	v, err := pg.AddVisual(ctx, visualType, in.X, in.Y, width, height, 0)
	if err != nil {
		return nil, addVisualOut{}, err
	}
	out := addVisualOut{
		ChartID:    v.Name(),
		ChartType:  in.ChartType,
		Position:   positionOut{X: in.X, Y: in.Y, Width: width, Height: height},
		PageName:   in.PageName,
		ReportName: in.ReportName,
	}
	msg := fmt.Sprintf("Chart '%s' added to page '%s' in report '%s'", in.ChartType, in.PageName, in.ReportName)
	return textResult(msg), out, nil
}

type removeVisualIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
	VisualID   string `json:"visual_id" jsonschema:"ID of the visual to remove"`
}

type removeVisualOut struct {
	VisualID string `json:"visual_id"`
	PageName string `json:"page_name"`
}

func (t *tools) removeVisual(ctx context.Context, req *mcp.CallToolRequest, in removeVisualIn) (*mcp.CallToolResult, removeVisualOut, error) {
	pg, _, err := t.store.FindVisual(in.ReportName, in.VisualID)
	if err != nil {
		return nil, removeVisualOut{}, err
	}
	if err := pg.RemoveVisual(ctx, in.VisualID); err != nil {
		return nil, removeVisualOut{}, err
	}
	msg := fmt.Sprintf("Visual '%s' removed from report '%s'", in.VisualID, in.ReportName)
	return textResult(msg), removeVisualOut{VisualID: in.VisualID, PageName: pg.Name()}, nil
}

type chartSizeIn struct {
	ReportName string  `json:"report_name" jsonschema:"Name of the report"`
	PageName   string  `json:"page_name" jsonschema:"Name of the page containing the chart"`
	ChartID    string  `json:"chart_id" jsonschema:"ID of the chart to resize"`
	Width      float64 `json:"width" jsonschema:"New width of the chart"`
	Height     float64 `json:"height" jsonschema:"New height of the chart"`
}

type chartSizeOut struct {
	ChartID    string  `json:"chart_id"`
	NewSize    sizeOut `json:"new_size"`
	PageName   string  `json:"page_name"`
	ReportName string  `json:"report_name"`
}

func (t *tools) changeChartSize(ctx context.Context, req *mcp.CallToolRequest, in chartSizeIn) (*mcp.CallToolResult, chartSizeOut, error) {
	_, v, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, chartSizeOut{}, err
	}
	if err := v.SetSize(ctx, in.Width, in.Height); err != nil {
		return nil, chartSizeOut{}, err
	}
	out := chartSizeOut{
		ChartID:    in.ChartID,
		NewSize:    sizeOut{Width: in.Width, Height: in.Height},
		PageName:   in.PageName,
		ReportName: in.ReportName,
	}
	msg := fmt.Sprintf("Chart '%s' size updated to %vx%v", in.ChartID, in.Width, in.Height)
	return textResult(msg), out, nil
}

type moveVisualIn struct {
	ReportName string  `json:"report_name" jsonschema:"Name of the report"`
	PageName   string  `json:"page_name" jsonschema:"Name of the page containing the chart"`
	ChartID    string  `json:"chart_id" jsonschema:"ID of the chart to move"`
	X          float64 `json:"x" jsonschema:"New x coordinate for the chart"`
	Y          float64 `json:"y" jsonschema:"New y coordinate for the chart"`
}

type moveVisualOut struct {
	ChartID     string   `json:"chart_id"`
	NewPosition pointOut `json:"new_position"`
	PageName    string   `json:"page_name"`
	ReportName  string   `json:"report_name"`
}

func (t *tools) moveVisual(ctx context.Context, req *mcp.CallToolRequest, in moveVisualIn) (*mcp.CallToolResult, moveVisualOut, error) {
	pg, _, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, moveVisualOut{}, err
	}
	if err := pg.MoveVisualToPosition(ctx, in.ChartID, in.X, in.Y); err != nil {
		return nil, moveVisualOut{}, err
	}
	out := moveVisualOut{
		ChartID:     in.ChartID,
		NewPosition: pointOut{X: in.X, Y: in.Y},
		PageName:    in.PageName,
		ReportName:  in.ReportName,
	}
	msg := fmt.Sprintf("Chart '%s' moved to (%v, %v) on page '%s'", in.ChartID, in.X, in.Y, in.PageName)
	return textResult(msg), out, nil
}

type chartIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
	PageName   string `json:"page_name" jsonschema:"Name of the page containing the chart"`
	ChartID    string `json:"chart_id" jsonschema:"ID of the chart"`
}

type zOrderOut struct {
	ChartID    string  `json:"chart_id"`
	Z          float64 `json:"z"`
	PageName   string  `json:"page_name"`
	ReportName string  `json:"report_name"`
}

func (t *tools) bringVisualToFront(ctx context.Context, req *mcp.CallToolRequest, in chartIn) (*mcp.CallToolResult, zOrderOut, error) {
	pg, v, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, zOrderOut{}, err
	}
	if err := pg.BringVisualToFront(ctx, in.ChartID); err != nil {
		return nil, zOrderOut{}, err
	}
	out := zOrderOut{ChartID: in.ChartID, Z: v.Z(), PageName: in.PageName, ReportName: in.ReportName}
	msg := fmt.Sprintf("Chart '%s' brought to front on page '%s'", in.ChartID, in.PageName)
	return textResult(msg), out, nil
}

func (t *tools) sendVisualToBack(ctx context.Context, req *mcp.CallToolRequest, in chartIn) (*mcp.CallToolResult, zOrderOut, error) {
	pg, v, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, zOrderOut{}, err
	}
	if err := pg.SendVisualToBack(ctx, in.ChartID); err != nil {
		return nil, zOrderOut{}, err
	}
	out := zOrderOut{ChartID: in.ChartID, Z: v.Z(), PageName: in.PageName, ReportName: in.ReportName}
	msg := fmt.Sprintf("Chart '%s' sent to back on page '%s'", in.ChartID, in.PageName)
	return textResult(msg), out, nil
}

type visualPercentageIn struct {
	ReportName string  `json:"report_name" jsonschema:"Name of the report"`
	PageName   string  `json:"page_name" jsonschema:"Name of the page containing the chart"`
	ChartID    string  `json:"chart_id" jsonschema:"ID of the chart to resize"`
	Dimension  string  `json:"dimension" jsonschema:"Which dimension to size (width, height, or both)"`
	Fraction   float64 `json:"fraction" jsonschema:"Fraction of the page dimension, e.g. 0.5 for half"`
}

func (t *tools) setVisualPercentage(ctx context.Context, req *mcp.CallToolRequest, in visualPercentageIn) (*mcp.CallToolResult, chartSizeOut, error) {
	pg, v, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, chartSizeOut{}, err
	}
	switch in.Dimension {
	case "width":
		err = pg.SetVisualToPercentagePageWidth(ctx, in.ChartID, in.Fraction)
	case "height":
		err = pg.SetVisualToPercentagePageHeight(ctx, in.ChartID, in.Fraction)
	case "both":
		err = pg.SetVisualToPercentagePageSize(ctx, in.ChartID, in.Fraction, in.Fraction)
	default:
		return nil, chartSizeOut{}, fmt.Errorf("Invalid dimension '%s'. Supported dimensions: width, height, both", in.Dimension)
	}
	if err != nil {
		return nil, chartSizeOut{}, err
	}
	out := chartSizeOut{
		ChartID:    in.ChartID,
		NewSize:    sizeOut{Width: v.Width(), Height: v.Height()},
		PageName:   in.PageName,
		ReportName: in.ReportName,
	}
	msg := fmt.Sprintf("Chart '%s' size updated to %vx%v", in.ChartID, v.Width(), v.Height())
	return textResult(msg), out, nil
}

type overlapsOut struct {
	ChartID      string                   `json:"chart_id"`
	PageName     string                   `json:"page_name"`
	OverlapCount int                      `json:"overlap_count"`
	Overlaps     map[string]pbir.Position `json:"overlaps"`
}

func (t *tools) checkVisualOverlaps(ctx context.Context, req *mcp.CallToolRequest, in chartIn) (*mcp.CallToolResult, overlapsOut, error) {
	pg, _, err := t.chart(in.ReportName, in.PageName, in.ChartID)
	if err != nil {
		return nil, overlapsOut{}, err
	}
	overlaps, err := pg.CheckVisualOverlaps(in.ChartID)
	if err != nil {
		return nil, overlapsOut{}, err
	}
	if overlaps == nil {
		overlaps = map[string]pbir.Position{}
	}
	out := overlapsOut{
		ChartID:      in.ChartID,
		PageName:     in.PageName,
		OverlapCount: len(overlaps),
		Overlaps:     overlaps,
	}
	var msg string
	switch len(overlaps) {
	case 0:
		msg = fmt.Sprintf("Chart '%s' has no overlapping visuals", in.ChartID)
	case 1:
		msg = fmt.Sprintf("Chart '%s' overlaps 1 visual", in.ChartID)
	default:
		msg = fmt.Sprintf("Chart '%s' overlaps %d visuals", in.ChartID, len(overlaps))
	}
	return textResult(msg), out, nil
}

// Table tools.

type tablesOut struct {
	Tables []string `json:"tables"`
}

func (t *tools) getTables(ctx context.Context, req *mcp.CallToolRequest, in reportIn) (*mcp.CallToolResult, tablesOut, error) {
	r, err := t.store.Get(in.ReportName)
	if err != nil {
		return nil, tablesOut{}, err
	}
	ds := r.Dataset()
	if ds == nil {
		return textResult("No tables found"), tablesOut{Tables: []string{}}, nil
	}
	names := ds.TableNames()
	msg := fmt.Sprintf("Found %d tables", len(names))
	return textResult(msg), tablesOut{Tables: names}, nil
}

type tableColumnsIn struct {
	ReportName string `json:"report_name" jsonschema:"Name of the report"`
	TableName  string `json:"table_name" jsonschema:"Name of the table"`
}

type columnOut struct {
	Name         string `json:"name"`
	DataType     string `json:"dataType"`
	SummarizeBy  string `json:"summarizeBy"`
	FormatString string `json:"formatString"`
	SourceColumn string `json:"sourceColumn"`
}

type tableColumnsOut struct {
	Columns []columnOut `json:"columns"`
}

func (t *tools) getTableColumns(ctx context.Context, req *mcp.CallToolRequest, in tableColumnsIn) (*mcp.CallToolResult, tableColumnsOut, error) {
	r, err := t.store.Get(in.ReportName)
	if err != nil {
		return nil, tableColumnsOut{}, err
	}
	ds := r.Dataset()
	if ds == nil {
		return nil, tableColumnsOut{}, errNoTables
	}
	table, ok := ds.Table(in.TableName)
	if !ok {
		return nil, tableColumnsOut{}, &UnknownTableError{Name: in.TableName, Available: ds.TableNames()}
	}
	cols := make([]columnOut, 0, len(table.Columns))
	for _, c := range table.Columns {
		cols = append(cols, columnOut{
			Name:         c.Name,
			DataType:     c.DataType,
			SummarizeBy:  c.SummarizeBy,
			FormatString: c.FormatString,
			SourceColumn: c.SourceColumn,
		})
	}
	msg := fmt.Sprintf("Found %d columns", len(cols))
	return textResult(msg), tableColumnsOut{Columns: cols}, nil
}

type relationshipOut struct {
	ID         string `json:"id"`
	FromColumn string `json:"fromColumn"`
	ToColumn   string `json:"toColumn"`
}

type relationshipsOut struct {
	Relationships []relationshipOut `json:"relationships"`
}

func (t *tools) getRelationships(ctx context.Context, req *mcp.CallToolRequest, in reportIn) (*mcp.CallToolResult, relationshipsOut, error) {
	r, err := t.store.Get(in.ReportName)
	if err != nil {
		return nil, relationshipsOut{}, err
	}
	ds := r.Dataset()
	if ds == nil {
		return textResult("No relationships found"), relationshipsOut{Relationships: []relationshipOut{}}, nil
	}
	rels := ds.Relationships()
	out := make([]relationshipOut, 0, len(rels))
	for _, rel := range rels {
		out = append(out, relationshipOut{ID: rel.ID, FromColumn: rel.FromColumn, ToColumn: rel.ToColumn})
	}
	msg := fmt.Sprintf("Found %d relationships", len(rels))
	return textResult(msg), relationshipsOut{Relationships: out}, nil
}
