package extract

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// reader reads cells of one document and collects the diagnostics of
// everything it had to skip.
type reader struct {
	doc   *document.Document
	diags []entity.Diagnostic
}

func (r *reader) note(pos entity.Position, field, raw, reason string) {
	r.diags = append(r.diags, entity.Diagnostic{
		Table:  pos.TableIndex,
		Row:    pos.RowIndex,
		Col:    pos.ColIndex,
		Field:  field,
		Raw:    raw,
		Reason: reason,
	})
}

// table returns the table at idx, noting a diagnostic when the document is
// shorter than the resolved index.
func (r *reader) table(idx int, role string) (document.Table, bool) {
	t, ok := r.doc.Table(idx)
	if !ok {
		r.note(entity.At(idx, -1, -1), role, "", entity.ReasonTableMissing)
	}
	return t, ok
}

// cell returns the trimmed text at (row, col) of table ti.
func (r *reader) cell(ti int, t document.Table, row, col int, field string) (string, bool) {
	s, ok := t.Cell(row, col)
	if !ok {
		r.note(entity.At(ti, row, col), field, "", entity.ReasonCellMissing)
	}
	return s, ok
}

// setOnce writes v when dst is still unset. Earlier, higher-priority
// sources therefore win.
func setOnce[T any](dst *entity.LocatedValue[T], v entity.LocatedValue[T]) bool {
	if dst == nil || dst.IsSet() {
		return false
	}
	*dst = v
	return true
}

// apply parses the cell at (row, col) for field and writes it into tgt.
// Empty cells are skipped silently; unparseable ones produce a diagnostic.
func (r *reader) apply(tgt *target, field string, ti int, t document.Table, row, col int) {
	spec, ok := fields[field]
	if !ok || tgt == nil {
		return
	}
	raw, ok := r.cell(ti, t, row, col, field)
	if !ok {
		return
	}
	r.write(tgt, spec, field, raw, entity.At(ti, row, col))
}

// write parses raw according to spec and stores it at pos.
func (r *reader) write(tgt *target, spec fieldSpec, field, raw string, pos entity.Position) {
	if normalize.Compact(raw) == "" {
		return
	}
	fail := func(reason string) { r.note(pos, field, raw, reason) }
	switch spec.kind {
	case KindText:
		if spec.text != nil {
			setOnce(spec.text(tgt), entity.Located(normalize.Normalize(raw), raw, pos))
		}
	case KindRatioText:
		if spec.text != nil {
			setOnce(spec.text(tgt), entity.Located(normalize.Compact(raw), raw, pos))
		}
	case KindDate:
		v, ok := normalize.ParseDate(raw)
		if !ok {
			fail(entity.ReasonParseDate)
			return
		}
		if spec.text != nil {
			setOnce(spec.text(tgt), entity.Located(v, raw, pos))
		}
	case KindNumber, KindAmount, KindSum, KindRatio:
		v, ok, reason := parseFloat(spec.kind, raw)
		if !ok {
			fail(reason)
			return
		}
		if spec.num != nil {
			setOnce(spec.num(tgt), entity.Located(v, raw, pos))
		}
	case KindYear:
		v, ok := normalize.ParseYear(raw)
		if !ok {
			fail(entity.ReasonParseYear)
			return
		}
		if spec.whole != nil {
			setOnce(spec.whole(tgt), entity.Located(v, raw, pos))
		}
	case KindInt:
		v, ok := normalize.ParseInt(raw)
		if !ok {
			fail(entity.ReasonParseNumber)
			return
		}
		if spec.whole != nil {
			setOnce(spec.whole(tgt), entity.Located(v, raw, pos))
		}
	case KindFloor:
		if spec.floor != nil {
			setOnce(spec.floor(tgt), entity.Located(normalize.ParseFloor(raw), raw, pos))
		}
	}
}

func parseFloat(kind Kind, raw string) (float64, bool, string) {
	var (
		v  float64
		ok bool
	)
	switch kind {
	case KindAmount:
		v, ok = normalize.FirstNumber(raw)
	case KindSum:
		v, ok = normalize.SumNumbers(raw)
	case KindRatio:
		v, ok = normalize.ParseRatio(raw)
		return v, ok, entity.ReasonParseRatio
	default:
		v, ok = normalize.ParseNumber(raw)
	}
	return v, ok, entity.ReasonParseNumber
}
