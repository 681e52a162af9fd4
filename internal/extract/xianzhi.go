package extract

import (
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/mapper"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// Extra signature names of the batch family.
const (
	sigCaseGroup  = "case_group"
	sigFloorTable = "floor_table"
)

// batchColumns are the column keys of the batch summary and floor tables.
var batchColumns = map[string]Kind{
	"seq":           KindInt,
	"address":       KindText,
	"building_area": KindNumber,
	"total_price":   KindNumber,
	"base_price":    KindNumber,
	"factor":        KindRatio,
}

// xianzhi extracts batch reports: many subjects in one summary table,
// any number of comparable-case groups, and a floor correction table.
type xianzhi struct{ base }

func (b xianzhi) Extract(doc *document.Document, roles classify.RoleIndexMap) entity.Report {
	x := newRun(doc, b.fam, roles, b.logger)
	res := &entity.BatchResult{
		SourceFile: doc.Name(),
		Family:     b.fam.Family,
		PriceUnit:  b.fam.PriceUnit,
		Roles:      roles.Entries(),
	}

	x.batchSummary(res)
	if l, ok := x.layout(sigCaseGroup); ok {
		for _, m := range b.cls.MatchAll(doc.Tables, sigCaseGroup) {
			cases := newCases(b.fam.CaseCount)
			x.mapRows(m.Index, doc.Tables[m.Index], l, nil, caseTargets(cases))
			for i := range cases {
				splitAddress(&cases[i].Unit)
			}
			res.CaseGroups = append(res.CaseGroups, cases)
			res.Roles = append(res.Roles, entity.RoleAssignment{
				Role: sigCaseGroup, TableIndex: m.Index, Source: entity.RoleDetected, Score: m.Score,
			})
		}
	}
	if m, ok := b.cls.Best(doc.Tables, sigFloorTable); ok {
		x.floorTable(res, m.Index)
		res.Roles = append(res.Roles, entity.RoleAssignment{
			Role: sigFloorTable, TableIndex: m.Index, Source: entity.RoleDetected, Score: m.Score,
		})
	}

	res.TotalCount = len(res.Subjects)
	for _, s := range res.Subjects {
		res.TotalArea += s.BuildingArea.Or(0)
		res.TotalValue += s.TotalPrice.Or(0)
	}
	res.Diagnostics = x.diags
	b.logger.Debug("extract.done",
		"file", res.SourceFile,
		"subjects", res.TotalCount,
		"case_groups", len(res.CaseGroups),
		"diagnostics", len(res.Diagnostics))
	return res
}

// batchCell parses one batch column cell, noting failures.
func (x *run) batchCell(key string, ti int, t document.Table, row int, cols map[string]int) (string, entity.Position, bool) {
	col, ok := cols[key]
	if !ok {
		return "", entity.NoPosition, false
	}
	raw, ok := x.cell(ti, t, row, col, key)
	if !ok || normalize.Compact(raw) == "" {
		return "", entity.NoPosition, false
	}
	return raw, entity.At(ti, row, col), true
}

func (x *run) batchFloat(key string, ti int, t document.Table, row int, cols map[string]int) entity.LocatedFloat {
	raw, pos, ok := x.batchCell(key, ti, t, row, cols)
	if !ok {
		return entity.LocatedFloat{}
	}
	v, ok, reason := parseFloat(batchColumns[key], raw)
	if !ok {
		x.note(pos, key, raw, reason)
		return entity.LocatedFloat{}
	}
	return entity.Located(v, raw, pos)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// batchSummary reads every numbered row of the summary table. Rows whose
// sequence cell is not a number (totals, notes) are not subjects.
func (x *run) batchSummary(res *entity.BatchResult) {
	l, ok := x.layout("batch_summary")
	if !ok {
		return
	}
	ti, t, ok := x.roleTable(classify.ResultSummary)
	if !ok {
		return
	}
	h, ok := l.Header(t)
	if !ok {
		return
	}
	for r := h.HeaderRow + 1; r < t.NumRows(); r++ {
		raw, pos, ok := x.batchCell("seq", ti, t, r, h.Cols)
		if !ok {
			continue
		}
		seq := normalize.Compact(raw)
		if !isDigits(seq) {
			continue
		}
		n, _ := normalize.ParseInt(seq)
		s := entity.BatchSubject{Seq: entity.Located(n, raw, pos)}
		if raw, pos, ok := x.batchCell("address", ti, t, r, h.Cols); ok {
			s.Address = entity.Located(normalize.Normalize(raw), raw, pos)
		}
		s.BuildingArea = x.batchFloat("building_area", ti, t, r, h.Cols)
		s.TotalPrice = x.batchFloat("total_price", ti, t, r, h.Cols)
		area, total := s.BuildingArea.Or(0), s.TotalPrice.Or(0)
		if area > 0 && total > 0 {
			s.UnitPrice = entity.Computed(total * 10000 / area)
		}
		if addr, ok := s.Address.Get(); ok {
			district, street := normalize.SplitAddress(addr)
			if district != "" {
				s.District = entity.Derived(district, s.Address)
			}
			if street != "" {
				s.Street = entity.Derived(street, s.Address)
			}
		}
		res.Subjects = append(res.Subjects, s)
	}
}

// floorFactorScanCols are scanned when the factor column is absent or unreadable.
var floorFactorScanCols = []int{3, 4, 5}

// floorTable reads the floor correction rows and attaches each factor to
// the batch subject whose address contains, or is contained in, the row's.
func (x *run) floorTable(res *entity.BatchResult, ti int) {
	l, ok := x.layout(sigFloorTable)
	if !ok {
		return
	}
	t, ok := x.table(ti, sigFloorTable)
	if !ok {
		return
	}
	h, ok := l.Header(t)
	if !ok {
		return
	}
	for r := h.HeaderRow + 1; r < t.NumRows(); r++ {
		raw, pos, ok := x.batchCell("address", ti, t, r, h.Cols)
		if !ok {
			continue
		}
		fc := entity.FloorCorrection{
			Address:   entity.Located(normalize.Normalize(raw), raw, pos),
			BasePrice: x.batchFloat("base_price", ti, t, r, h.Cols),
			Matched:   -1,
		}
		fc.Factor = x.floorFactor(ti, t, r, h)
		if f, ok := fc.Factor.Get(); ok {
			if i := matchSubject(res.Subjects, normalize.Compact(raw)); i >= 0 {
				fc.Matched = i
				setOnce(&res.Subjects[i].FloorFactor, entity.Located(f, fc.Factor.RawText, fc.Factor.Position()))
			}
		}
		res.FloorTable = append(res.FloorTable, fc)
	}
}

func (x *run) floorFactor(ti int, t document.Table, r int, h mapper.ColumnMatch) entity.LocatedFloat {
	if col, ok := h.Cols["factor"]; ok {
		if raw, ok := t.Cell(r, col); ok {
			if v, ok := normalize.ParseRatio(raw); ok {
				return entity.Located(v, raw, entity.At(ti, r, col))
			}
		}
	}
	for _, col := range floorFactorScanCols {
		raw, ok := t.Cell(r, col)
		if !ok {
			continue
		}
		s := normalize.Compact(raw)
		if !strings.Contains(s, "%") {
			if !isDigits(strings.ReplaceAll(s, ".", "")) {
				continue
			}
			if v, ok := normalize.ParseNumber(s); !ok || v >= 2 {
				continue
			}
		}
		if v, ok := normalize.ParseRatio(s); ok {
			return entity.Located(v, raw, entity.At(ti, r, col))
		}
	}
	return entity.LocatedFloat{}
}

func matchSubject(subjects []entity.BatchSubject, addr string) int {
	if addr == "" {
		return -1
	}
	for i, s := range subjects {
		sa := normalize.Compact(s.Address.Or(""))
		if sa == "" {
			continue
		}
		if strings.Contains(sa, addr) || strings.Contains(addr, sa) {
			return i
		}
	}
	return -1
}
