// Package tmdl extracts structured records from the line-oriented,
// keyword-prefixed text format used by dataset definitions (tables,
// columns, relationships). The format has no formal grammar; parsing is
// line-by-line with block heuristics and never looks ahead beyond the
// current line.
package tmdl

import (
	"errors"
	"fmt"
	"strings"
)

// ErrParse is the sentinel for any document that cannot be parsed into the
// expected record shape. Typed errors in this package unwrap to it so
// callers can detect parse failures with errors.Is.
var ErrParse = errors.New("unable to parse")

// Column is one column block of a table definition. Property fields are
// empty strings when the block did not declare them.
type Column struct {
	Name         string
	DataType     string
	SummarizeBy  string
	FormatString string
	SourceColumn string
}

// Table is the result of parsing one table document.
type Table struct {
	Name     string
	IsHidden bool
	Columns  []Column
}

// Relationship links two columns, each expressed as a "Table.Column" string.
type Relationship struct {
	ID         string
	FromColumn string
	ToColumn   string
}

// HeaderError reports a document whose first line is not a valid table
// header. It unwraps to ErrParse.
type HeaderError struct {
	Line string
}

func (e *HeaderError) Error() string {
	if e.Line == "" {
		return "empty document: expected table header"
	}
	return fmt.Sprintf("invalid table header: %q", e.Line)
}

func (e *HeaderError) Is(target error) bool { return target == ErrParse }

func (e *HeaderError) Unwrap() error { return ErrParse }

// ParseTable parses one table document. The first line must start with the
// keyword "table" (case-insensitive) followed by a quoted-or-bare
// identifier; anything else, including an empty document, is a HeaderError.
//
// After the header the scan recognizes:
//   - a bare "isHidden" token before the first column/partition/hierarchy
//     line, marking the table hidden
//   - "column <name>" lines opening a column block (finalizing any open one)
//   - "key: value" lines inside a column block setting the known properties
//     dataType, summarizeBy, formatString and sourceColumn; unknown keys are
//     ignored
//   - "variation " lines, which are skipped entirely
//   - colonless "partition "/"table " lines, which close an open column
//     block so later property lines are not absorbed into it
//
// A table with zero columns is valid. Identifiers are case-sensitive; only
// the leading header keyword matches case-insensitively. Blank lines and
// trailing whitespace never change the result.
func ParseTable(text string) (*Table, error) {
	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, &HeaderError{}
	}

	first := strings.TrimSpace(lines[0])
	if len(first) < len("table ") || !strings.EqualFold(first[:len("table ")], "table ") {
		return nil, &HeaderError{Line: first}
	}
	name := unquote(first[len("table "):])
	if name == "" {
		return nil, &HeaderError{Line: first}
	}

	t := &Table{Name: name}

	// Hidden flag only counts while still above the first block keyword.
	for _, ln := range lines[1:] {
		s := strings.TrimSpace(ln)
		if hasAnyPrefix(s, "column ", "partition ", "hierarchy ") {
			break
		}
		if s == "isHidden" {
			t.IsHidden = true
			break
		}
	}

	var cur *Column
	inBlock := false
	finalize := func() {
		if cur != nil {
			t.Columns = append(t.Columns, *cur)
		}
		cur = nil
		inBlock = false
	}

	for _, raw := range lines[1:] {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}

		if rest, ok := strings.CutPrefix(s, "column "); ok {
			finalize()
			cur = &Column{Name: unquote(rest)}
			inBlock = true
			continue
		}

		// Variation blocks nest under columns but carry nothing we extract.
		if strings.HasPrefix(s, "variation ") {
			continue
		}

		if inBlock && strings.Contains(s, ":") {
			key, val, _ := strings.Cut(s, ":")
			key = strings.TrimSpace(key)
			val = strings.TrimSpace(val)
			switch key {
			case "dataType":
				cur.DataType = val
			case "summarizeBy":
				cur.SummarizeBy = val
			case "formatString":
				cur.FormatString = val
			case "sourceColumn":
				cur.SourceColumn = val
			}
			continue
		}

		if inBlock && hasAnyPrefix(s, "partition ", "table ") {
			finalize()
		}
	}
	finalize()

	return t, nil
}

// ParseRelationships extracts every complete relationship record from a
// document. A "relationship <id>" line opens a record; "fromColumn:" and
// "toColumn:" lines populate it. Opening a new record finalizes the previous
// one, and a record missing either endpoint is dropped rather than
// reported. The function never fails: a document with no recognizable
// records yields an empty slice.
func ParseRelationships(text string) []Relationship {
	var (
		rels     []Relationship
		id       string
		from, to string
		open     bool
	)
	finalize := func() {
		if id != "" && from != "" && to != "" {
			rels = append(rels, Relationship{ID: id, FromColumn: from, ToColumn: to})
		}
		id, from, to = "", "", ""
		open = false
	}

	for _, raw := range splitLines(text) {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if rest, ok := strings.CutPrefix(s, "relationship "); ok {
			if open {
				finalize()
			}
			id = strings.TrimSpace(rest)
			open = true
			continue
		}
		if rest, ok := strings.CutPrefix(s, "fromColumn:"); ok {
			from = strings.TrimSpace(rest)
			continue
		}
		if rest, ok := strings.CutPrefix(s, "toColumn:"); ok {
			to = strings.TrimSpace(rest)
			continue
		}
	}
	if open {
		finalize()
	}
	return rels
}

// splitLines splits on newlines with trailing whitespace (including any
// carriage return) removed from each line. An empty document yields nil.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " \t\r")
	}
	return lines
}

// unquote trims surrounding whitespace and any leading/trailing single
// quotes from an identifier ("'My Table'" becomes "My Table").
func unquote(s string) string {
	return strings.Trim(strings.TrimSpace(s), "'")
}

func hasAnyPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
