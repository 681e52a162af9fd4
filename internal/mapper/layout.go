package mapper

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// Layout describes how one table role is laid out: which rows are headers,
// which leading cells form the row label, where the subject and case columns
// are, and which label rules route rows to fields.
type Layout struct {
	HeaderRows int `yaml:"header_rows"`
	LabelCells int `yaml:"label_cells"`
	// SubjectCol is the subject's value column, -1 when the table has none.
	SubjectCol int `yaml:"subject_col"`
	// CaseCol is the first of the consecutive case columns, -1 when none.
	CaseCol  int       `yaml:"case_col"`
	MinCells int       `yaml:"min_cells"`
	Rules    []RowRule `yaml:"rules"`

	// Header-oriented tables locate a header row by keywords and map columns.
	HeaderKeys    []string  `yaml:"header_keys"`
	MinHeaderHits int       `yaml:"min_header_hits"`
	Columns       []ColRule `yaml:"columns"`
	MinFilled     int       `yaml:"min_filled"`
}

// Match is one row routed to a field.
type Match struct {
	Row   int
	Field string
	Label string
}

// Rule returns the first rule matching label.
func (l Layout) Rule(label string) (RowRule, bool) {
	for _, r := range l.Rules {
		if r.Matches(label) {
			return r, true
		}
	}
	return RowRule{}, false
}

// Map routes every data row to the first matching rule. Unmatched and short
// rows are skipped.
func (l Layout) Map(t document.Table) []Match {
	var out []Match
	for r := l.HeaderRows; r < t.NumRows(); r++ {
		row := t.Rows[r]
		if len(row) < l.MinCells {
			continue
		}
		label := Label(row, l.LabelCells)
		if rule, ok := l.Rule(label); ok {
			out = append(out, Match{Row: r, Field: rule.Field, Label: label})
		}
	}
	return out
}

// KVMatch is a label cell with its value cell to the right.
type KVMatch struct {
	Field string
	Row   int
	Col   int
}

// KV scans for "label | value" pairs. For each rule the first matching cell
// wins; the value is the next non-empty cell to its right whose text differs
// from the label, which skips repeated merged label cells.
func (l Layout) KV(t document.Table) []KVMatch {
	var out []KVMatch
	for _, rule := range l.Rules {
		if m, ok := findKV(t, rule); ok {
			out = append(out, m)
		}
	}
	return out
}

func findKV(t document.Table, rule RowRule) (KVMatch, bool) {
	for r, row := range t.Rows {
		for c, cell := range row {
			label := normalize.Compact(cell)
			if !rule.Matches(label) {
				continue
			}
			for v := c + 1; v < len(row); v++ {
				text := normalize.Compact(row[v])
				if text == "" || text == label {
					continue
				}
				return KVMatch{Field: rule.Field, Row: r, Col: v}, true
			}
		}
	}
	return KVMatch{}, false
}

// ColumnMatch is a located header row with its column map.
type ColumnMatch struct {
	HeaderRow int
	Cols      map[string]int
}

// Header locates the header row by HeaderKeys and maps its columns.
func (l Layout) Header(t document.Table) (ColumnMatch, bool) {
	minHits := l.MinHeaderHits
	if minHits <= 0 {
		minHits = 1
	}
	h := FindHeaderRow(t, l.HeaderKeys, 0, t.NumRows(), minHits)
	if h < 0 {
		return ColumnMatch{HeaderRow: -1}, false
	}
	cols := BuildColumnMap(t.Row(h), l.Columns)
	if len(cols) == 0 {
		return ColumnMatch{HeaderRow: -1}, false
	}
	return ColumnMatch{HeaderRow: h, Cols: cols}, true
}

// DataRow returns the first data row after the header.
func (l Layout) DataRow(t document.Table, header int) int {
	filled := l.MinFilled
	if filled <= 0 {
		filled = 2
	}
	return FindDataRow(t, header, filled, 8)
}

// FindHeaderRow returns the row in [start, end) with the most keyword hits,
// or -1 when no row reaches minHits. Ties keep the first.
func FindHeaderRow(t document.Table, keys []string, start, end, minHits int) int {
	if end > t.NumRows() {
		end = t.NumRows()
	}
	ck := normalize.CompactAll(keys)
	best, bestIdx := -1, -1
	for r := start; r < end; r++ {
		text := ""
		for _, c := range t.Rows[r] {
			text += normalize.Compact(c)
		}
		if n := normalize.CountHits(text, ck); n > best {
			best, bestIdx = n, r
		}
	}
	if best < minHits {
		return -1
	}
	return bestIdx
}

// FindDataRow returns the first row after header with at least minFilled
// non-empty cells, scanning at most maxScan rows.
func FindDataRow(t document.Table, header, minFilled, maxScan int) int {
	start := header + 1
	end := start + maxScan
	if end > t.NumRows() {
		end = t.NumRows()
	}
	for r := start; r < end; r++ {
		filled := 0
		for _, c := range t.Rows[r] {
			if normalize.Compact(c) != "" {
				filled++
			}
		}
		if filled >= minFilled {
			return r
		}
	}
	return -1
}

// FindRowByLabel returns the first row whose label matches keys.
func FindRowByLabel(t document.Table, keys []string, labelCells int, all bool) int {
	ck := normalize.CompactAll(keys)
	for r, row := range t.Rows {
		label := Label(row, labelCells)
		if all && normalize.ContainsAll(label, ck) {
			return r
		}
		if !all && normalize.ContainsAny(label, ck) {
			return r
		}
	}
	return -1
}
