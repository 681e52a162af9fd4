// Package document holds the in-memory form of a loaded report: ordered
// paragraphs and tables of trimmed cell strings with merged cells repeated.
package document

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
)

// Table is a grid of trimmed cell strings.
type Table struct {
	Rows [][]string `json:"rows"`
}

// NewTable copies rows into a table.
func NewTable(rows [][]string) Table {
	out := make([][]string, len(rows))
	for i, r := range rows {
		out[i] = append([]string(nil), r...)
	}
	return Table{Rows: out}
}

func (t Table) NumRows() int { return len(t.Rows) }

// NumCols returns the width of the widest row.
func (t Table) NumCols() int {
	n := 0
	for _, r := range t.Rows {
		if len(r) > n {
			n = len(r)
		}
	}
	return n
}

// Row returns row r or nil when out of range.
func (t Table) Row(r int) []string {
	if r < 0 || r >= len(t.Rows) {
		return nil
	}
	return t.Rows[r]
}

// Cell returns the text at (r, c) and whether the cell exists.
func (t Table) Cell(r, c int) (string, bool) {
	row := t.Row(r)
	if c < 0 || c >= len(row) {
		return "", false
	}
	return row[c], true
}

// Text returns the cell text or "" when out of range.
func (t Table) Text(r, c int) string {
	s, _ := t.Cell(r, c)
	return s
}

// Document is one loaded report.
type Document struct {
	Path       string   `json:"path"`
	Paragraphs []string `json:"paragraphs"`
	Text       string   `json:"text,omitempty"`
	Tables     []Table  `json:"tables"`
}

// Name returns the base file name.
func (d *Document) Name() string {
	return filepath.Base(d.Path)
}

// FullText returns the concatenated plain text used by the free-text patterns.
// A loader-supplied Text wins; otherwise paragraphs are joined by newlines.
func (d *Document) FullText() string {
	if d.Text != "" {
		return d.Text
	}
	return strings.Join(d.Paragraphs, "\n")
}

// Table returns table i and whether it exists.
func (d *Document) Table(i int) (Table, bool) {
	if i < 0 || i >= len(d.Tables) {
		return Table{}, false
	}
	return d.Tables[i], true
}

// Loader turns a file into a Document.
type Loader interface {
	Load(ctx context.Context, path string) (*Document, error)
}

// Open picks a loader by file extension.
func Open(ctx context.Context, path string) (*Document, error) {
	switch constants.NormalizeExt(filepath.Ext(path)) {
	case "json":
		return JSONLoader{}.Load(ctx, path)
	case "xlsx":
		return XLSXLoader{}.Load(ctx, path)
	default:
		return nil, fmt.Errorf("open %s: unsupported document format, want one of %s", path, strings.Join(constants.DocumentFormats, ", "))
	}
}
