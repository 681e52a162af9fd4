package export

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/serialize"
)

// Service renders extraction results as XLSX workbooks, one row per field
// with its raw text and source cell.
type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// Sheet names.
const (
	SheetOverview    = "Overview"
	SheetCases       = "Cases"
	SheetSubjects    = "Subjects"
	SheetCaseGroups  = "CaseGroups"
	SheetFloorTable  = "FloorTable"
	SheetDiagnostics = "Diagnostics"
)

var fieldHeaders = []string{"Field", "Value", "Raw Text", "Table", "Row", "Col"}

// ResultXLSX returns the workbook (as bytes) for one report.
func (s *Service) ResultXLSX(rep entity.Report) ([]byte, error) {
	start := time.Now()
	dict := serialize.Report(rep)
	if dict == nil {
		return nil, fmt.Errorf("export: unsupported report %T", rep)
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", SheetOverview); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	rows := 0
	overview := &sheet{f: f, name: SheetOverview, row: 1}
	overview.write("source_file", dict["source_file"])
	overview.write("type", dict["type"])
	overview.write("price_unit", dict["price_unit"])
	overview.row++

	switch rep.(type) {
	case *entity.ExtractionResult:
		overview.header(fieldHeaders...)
		for _, key := range []string{"final_unit_price", "final_total_price", "floor_factor"} {
			overview.field(key, dict[key])
		}
		rows += overview.fields("subject", dict["subject"])

		cases, err := newSheet(f, SheetCases)
		if err != nil {
			return nil, err
		}
		cases.header(append([]string{"Case"}, fieldHeaders...)...)
		for _, c := range asList(dict["cases"]) {
			m, _ := c.(map[string]any)
			rows += cases.caseFields(fmt.Sprint(m["case_id"]), m)
		}
		_ = f.SetColWidth(SheetCases, "B", "B", 36)
		_ = f.SetColWidth(SheetCases, "C", "D", 28)

	case *entity.BatchResult:
		for _, key := range []string{"total_count", "total_area", "total_value"} {
			overview.write(key, dict[key])
		}

		subjects, err := newSheet(f, SheetSubjects)
		if err != nil {
			return nil, err
		}
		subjects.header("Seq", "Address", "Building Area", "Total Price", "Unit Price", "Floor Factor", "District", "Street")
		for _, v := range asList(dict["subjects"]) {
			m, _ := v.(map[string]any)
			subjects.write(
				value(m["seq"]), value(m["address"]), value(m["building_area"]), value(m["total_price"]),
				value(m["unit_price"]), m["floor_factor"], value(m["district"]), value(m["street"]),
			)
			rows++
		}
		_ = f.SetColWidth(SheetSubjects, "B", "B", 48)

		groups, err := newSheet(f, SheetCaseGroups)
		if err != nil {
			return nil, err
		}
		groups.header(append([]string{"Group", "Case"}, fieldHeaders...)...)
		for gi, g := range asList(dict["case_groups"]) {
			for _, c := range asList(g) {
				m, _ := c.(map[string]any)
				rows += groups.groupFields(gi+1, fmt.Sprint(m["case_id"]), m)
			}
		}

		floors, err := newSheet(f, SheetFloorTable)
		if err != nil {
			return nil, err
		}
		floors.header("Address", "Base Price", "Factor", "Matched Subject")
		for _, v := range asList(dict["floor_table"]) {
			m, _ := v.(map[string]any)
			floors.write(value(m["address"]), value(m["base_price"]), value(m["factor"]), m["matched"])
		}
	}
	_ = f.SetColWidth(SheetOverview, "A", "A", 36)
	_ = f.SetColWidth(SheetOverview, "B", "C", 28)

	diags, err := newSheet(f, SheetDiagnostics)
	if err != nil {
		return nil, err
	}
	diags.header("Table", "Row", "Col", "Field", "Raw Text", "Reason")
	for _, d := range rep.DiagnosticList() {
		diags.write(d.Table, d.Row, d.Col, d.Field, d.Raw, d.Reason)
	}

	idx, _ := f.GetSheetIndex(SheetOverview)
	f.SetActiveSheet(idx)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"file", rep.SourceName(),
		"report_type", string(rep.ReportFamily()),
		"rows", rows,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func newSheet(f *excelize.File, name string) (*sheet, error) {
	if index, _ := f.GetSheetIndex(name); index == -1 {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("xlsx sheet %s: %w", name, err)
		}
	}
	return &sheet{f: f, name: name, row: 1}, nil
}

func (s *sheet) write(values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, s.row)
		_ = s.f.SetCellValue(s.name, cell, cellValue(v))
	}
	s.row++
}

func (s *sheet) header(names ...string) {
	vals := make([]any, len(names))
	for i, n := range names {
		vals[i] = n
	}
	s.write(vals...)
}

// field writes one "Field | Value | Raw | Table | Row | Col" row.
func (s *sheet) field(name string, v any, lead ...any) {
	s.write(append(lead, fieldRow(name, v)...)...)
}

// fields flattens a dictionary node under prefix and writes one row per leaf.
func (s *sheet) fields(prefix string, node any, lead ...any) int {
	n := 0
	flatten(prefix, node, func(name string, v any) {
		s.field(name, v, lead...)
		n++
	})
	return n
}

func (s *sheet) caseFields(id string, m map[string]any) int {
	return s.fields("", withoutKey(m, "case_id"), id)
}

func (s *sheet) groupFields(group int, id string, m map[string]any) int {
	return s.fields("", withoutKey(m, "case_id"), group, id)
}

func withoutKey(m map[string]any, key string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// isLocated reports whether m is a {value, position, raw_text} node or a
// P-coefficient {raw, value, display, position}.
func isLocated(m map[string]any) bool {
	_, pos := m["position"]
	_, raw := m["raw_text"]
	_, display := m["display"]
	return pos && (raw || display)
}

func flatten(prefix string, node any, emit func(string, any)) {
	m, ok := node.(map[string]any)
	if !ok || isLocated(m) {
		emit(prefix, node)
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		flatten(name, m[k], emit)
	}
}

func fieldRow(name string, v any) []any {
	m, ok := v.(map[string]any)
	if !ok {
		return []any{name, v}
	}
	pos, _ := m["position"].(map[string]any)
	raw := m["raw_text"]
	val := m["value"]
	if d, ok := m["display"]; ok {
		raw, val = m["raw"], d
	}
	row := []any{name, val, raw}
	if t, ok := pos["table_index"].(int); ok && t >= 0 {
		row = append(row, pos["table_index"], pos["row_index"], pos["col_index"])
	}
	return row
}

func value(v any) any {
	if m, ok := v.(map[string]any); ok {
		return m["value"]
	}
	return v
}

func asList(v any) []any {
	l, _ := v.([]any)
	return l
}

func cellValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case string, bool, int, int64, float64:
		return x
	case entity.FloorInfo:
		return x.Raw
	}
	return fmt.Sprint(v)
}
