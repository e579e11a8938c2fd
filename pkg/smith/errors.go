package smith

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reportsmith/reportsmith/pkg/pbir"
)

// errNoPages is returned by operations that need a page collection from
// a report that has none. The text is part of the tool surface.
var errNoPages = errors.New("No pages found in report")

// errNoTables is the same for reports without a dataset.
var errNoTables = errors.New("No tables found in report")

// UnknownReportError is a registry miss carrying the names that would
// have worked, so interactive clients see their alternatives. It
// unwraps to pbir.ErrNotExist.
type UnknownReportError struct {
	Name      string
	Available []string
}

func (e *UnknownReportError) Error() string {
	return fmt.Sprintf("Report '%s' not found. Available reports: %s", e.Name, joinNames(e.Available))
}

func (e *UnknownReportError) Unwrap() error { return pbir.ErrNotExist }

// UnknownPageError reports a page lookup miss within a report.
type UnknownPageError struct {
	Report    string
	Name      string
	Available []string
}

func (e *UnknownPageError) Error() string {
	return fmt.Sprintf("Page '%s' not found in report '%s'. Available pages: %s",
		e.Name, e.Report, joinNames(e.Available))
}

func (e *UnknownPageError) Unwrap() error { return pbir.ErrNotExist }

// UnknownChartError reports a visual lookup miss on a page.
type UnknownChartError struct {
	Page      string
	Name      string
	Available []string
}

func (e *UnknownChartError) Error() string {
	return fmt.Sprintf("Chart '%s' not found on page '%s'. Available charts: %s",
		e.Name, e.Page, joinNames(e.Available))
}

func (e *UnknownChartError) Unwrap() error { return pbir.ErrNotExist }

// UnknownTableError reports a table lookup miss in a report's dataset.
type UnknownTableError struct {
	Name      string
	Available []string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("Table '%s' not found. Available: %s", e.Name, joinNames(e.Available))
}

func (e *UnknownTableError) Unwrap() error { return pbir.ErrNotExist }

// UnknownVisualError reports a report-wide visual search that found
// nothing on any page.
type UnknownVisualError struct {
	Report string
	Name   string
}

func (e *UnknownVisualError) Error() string {
	return fmt.Sprintf("Visual '%s' not found in report '%s'", e.Name, e.Report)
}

func (e *UnknownVisualError) Unwrap() error { return pbir.ErrNotExist }

func joinNames(names []string) string {
	if len(names) == 0 {
		return "(none)"
	}
	return strings.Join(names, ", ")
}
