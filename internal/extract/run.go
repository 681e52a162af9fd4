package extract

import (
	"log/slog"
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/mapper"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

// run is the state of one extraction. It is never shared between documents.
type run struct {
	reader
	fam    *rules.Family
	roles  classify.RoleIndexMap
	logger *slog.Logger
}

func newRun(doc *document.Document, fam *rules.Family, roles classify.RoleIndexMap, logger *slog.Logger) *run {
	return &run{reader: reader{doc: doc}, fam: fam, roles: roles, logger: logger}
}

// roleTable returns the table resolved for role. Unresolved roles and
// indices past the end of the document are noted and yield ok=false.
func (x *run) roleTable(role classify.Role) (int, document.Table, bool) {
	idx, ok := x.roles.Index(role)
	if !ok {
		x.note(entity.NoPosition, string(role), "", entity.ReasonRoleUnmatched)
		return -1, document.Table{}, false
	}
	t, ok := x.table(idx, string(role))
	return idx, t, ok
}

func (x *run) layout(name string) (mapper.Layout, bool) {
	return x.fam.Layout(name)
}

func newCases(n int) []entity.Case {
	ids := constants.CaseIDs(n)
	out := make([]entity.Case, len(ids))
	for i, id := range ids {
		out[i].CaseID = id
	}
	return out
}

func caseTargets(cases []entity.Case) []*target {
	out := make([]*target, len(cases))
	for i := range cases {
		out[i] = caseTarget(&cases[i])
	}
	return out
}

// mapRows routes the rows of a label-oriented table through layout l and
// writes the subject column and the consecutive case columns.
func (x *run) mapRows(ti int, t document.Table, l mapper.Layout, subject *target, cases []*target) {
	for _, m := range l.Map(t) {
		if subject != nil && l.SubjectCol >= 0 {
			x.apply(subject, m.Field, ti, t, m.Row, l.SubjectCol)
		}
		if l.CaseCol < 0 {
			continue
		}
		for i, c := range cases {
			x.apply(c, m.Field, ti, t, m.Row, l.CaseCol+i)
		}
	}
}

// mapColumns locates the header of a column-oriented table and writes the
// first data row into tgt. It reports whether a header was found.
func (x *run) mapColumns(ti int, t document.Table, l mapper.Layout, tgt *target) bool {
	h, ok := l.Header(t)
	if !ok {
		return false
	}
	row := l.DataRow(t, h.HeaderRow)
	if row < 0 {
		return false
	}
	for _, c := range l.Columns {
		col, ok := h.Cols[c.Key]
		if !ok {
			continue
		}
		x.apply(tgt, c.Key, ti, t, row, col)
	}
	return true
}

// mapKV writes "label | value" pairs found anywhere in the table.
func (x *run) mapKV(ti int, t document.Table, l mapper.Layout, tgt *target) {
	for _, m := range l.KV(t) {
		x.apply(tgt, m.Field, ti, t, m.Row, m.Col)
	}
}

type factorAspect int

const (
	aspectDescription factorAspect = iota
	aspectLevel
	aspectIndex
	aspectRatio
)

// syncedFactors copies a factor description onto the matching unit field.
var syncedFactors = map[string]func(u *entity.Unit) *entity.LocatedString{
	"orientation": func(u *entity.Unit) *entity.LocatedString { return &u.Orientation },
	"decoration":  func(u *entity.Unit) *entity.LocatedString { return &u.Decoration },
	"structure":   func(u *entity.Unit) *entity.LocatedString { return &u.Structure },
}

// mapFactors reads one aspect of the factor table of role into the subject
// and the cases.
func (x *run) mapFactors(role classify.Role, aspect factorAspect, subject *entity.Unit, cases []entity.Case) {
	ti, t, ok := x.roleTable(role)
	if !ok {
		return
	}
	fl := x.fam.FactorLayout
	for _, fr := range fl.Factors(t, &x.fam.Factors) {
		if subject != nil && fl.SubjectCol >= 0 {
			x.factorCell(subject, fr, aspect, ti, t, fl.SubjectCol)
		}
		for i := range cases {
			x.factorCell(&cases[i].Unit, fr, aspect, ti, t, fl.CaseCol+i)
		}
	}
}

func (x *run) factorCell(u *entity.Unit, fr mapper.FactorRow, aspect factorAspect, ti int, t document.Table, col int) {
	raw, ok := x.cell(ti, t, fr.Row, col, fr.Name)
	if !ok || normalize.Compact(raw) == "" {
		return
	}
	pos := entity.At(ti, fr.Row, col)
	f := u.Factors.Lookup(fr.Category, fr.Name, fr.Label)
	switch aspect {
	case aspectDescription:
		v := entity.Located(normalize.Normalize(raw), raw, pos)
		setOnce(&f.Description, v)
		if get, ok := syncedFactors[fr.Name]; ok {
			setOnce(get(u), v)
		}
	case aspectLevel:
		setOnce(&f.Level, entity.Located(normalize.Normalize(raw), raw, pos))
	case aspectIndex:
		v, ok := normalize.ParseIndex(raw)
		if !ok {
			x.note(pos, fr.Name, raw, entity.ReasonParseNumber)
			return
		}
		setOnce(&f.Index, entity.Located(v, raw, pos))
	case aspectRatio:
		v, ok := normalize.ParseRatio(raw)
		if !ok {
			x.note(pos, fr.Name, raw, entity.ReasonParseRatio)
			return
		}
		setOnce(&f.Ratio, entity.Located(v, raw, pos))
	}
}

// splitAddress derives district and street from the unit address.
func splitAddress(u *entity.Unit) {
	addr, ok := u.Address.Get()
	if !ok {
		return
	}
	district, street := normalize.SplitAddress(addr)
	if district != "" {
		setOnce(&u.District, entity.Derived(district, u.Address))
	}
	if street != "" {
		setOnce(&u.Street, entity.Derived(street, u.Address))
	}
}

// freeText applies the running-text patterns to the subject and result.
func (x *run) freeText(res *entity.ExtractionResult) {
	text := x.doc.FullText()
	if strings.TrimSpace(text) == "" {
		return
	}
	s := &res.Subject
	if v, ok := normalize.FloorMultiplier(text); ok {
		setOnce(&res.FloorFactor, entity.Computed(v))
	}
	if v, ok := normalize.BuildYear(text); ok {
		setOnce(&s.BuildYear, entity.Computed(v))
	}
	if v, ok := normalize.ValueDate(text); ok {
		setOnce(&s.ValueDate, entity.Computed(v))
	}
	if v, ok := normalize.AppraisalPurpose(text); ok {
		setOnce(&s.AppraisalPurpose, entity.Computed(v))
	}
}

// finish derives address parts and copies the collected diagnostics.
func (x *run) finish(res *entity.ExtractionResult) {
	splitAddress(&res.Subject.Unit)
	for i := range res.Cases {
		splitAddress(&res.Cases[i].Unit)
	}
	res.Diagnostics = x.diags
	x.logger.Debug("extract.done",
		"file", res.SourceFile,
		"cases", len(res.Cases),
		"diagnostics", len(res.Diagnostics))
}
