// Package serialize renders extraction results in their dictionary form:
// every located value as {value, position, raw_text}, factors with their
// normalized index, and P-coefficients with a display string.
package serialize

import (
	"encoding/json"
	"fmt"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

// Position renders a cell position; unlocated values carry -1 everywhere.
func Position(p entity.Position) map[string]any {
	return map[string]any{
		"table_index": p.TableIndex,
		"row_index":   p.RowIndex,
		"col_index":   p.ColIndex,
	}
}

// Located renders a located value. Unset values keep the shape with a nil value.
func Located[T any](lv entity.LocatedValue[T]) map[string]any {
	var v any
	if x, ok := lv.Get(); ok {
		v = x
	}
	return map[string]any{
		"value":    v,
		"position": Position(lv.Position()),
		"raw_text": lv.RawText,
	}
}

// PValue renders a P-coefficient kept as raw text, e.g. "108/103".
func PValue(lv entity.LocatedString) map[string]any {
	raw := lv.Or("")
	out := map[string]any{
		"raw":      raw,
		"value":    nil,
		"display":  raw,
		"position": Position(lv.Position()),
	}
	if raw == "" {
		return out
	}
	if v, ok := normalize.ParseRatio(raw); ok {
		out["value"] = v
	}
	out["display"] = normalize.FormatRatio(raw)
	return out
}

// Factor renders one factor. Ratio is present only when the ratio table had it.
func Factor(f *entity.Factor) map[string]any {
	out := map[string]any{
		"name":             f.Name,
		"label":            f.Label,
		"description":      f.Description.Or(""),
		"level":            f.Level.Or(""),
		"index":            f.IndexValue(),
		"index_normalized": f.IndexNormalized(),
	}
	if r, ok := f.Ratio.Get(); ok {
		out["ratio"] = r
	}
	return out
}

func factorGroup(g map[string]*entity.Factor) map[string]any {
	out := make(map[string]any, len(g))
	for k, f := range g {
		out[k] = Factor(f)
	}
	return out
}

func unit(u *entity.Unit) map[string]any {
	out := map[string]any{
		"address":       Located(u.Address),
		"location":      Located(u.Location),
		"data_source":   Located(u.DataSource),
		"usage":         Located(u.Usage),
		"building_area": Located(u.BuildingArea),
		"price":         Located(u.Price),
		"trade_date":    Located(u.TradeDate),
		"build_year":    Located(u.BuildYear),
		"floor":         Located(u.Floor),
		"orientation":   Located(u.Orientation),
		"decoration":    Located(u.Decoration),
		"structure":     Located(u.Structure),
		"district":      Located(u.District),
		"street":        Located(u.Street),

		"transaction_price":      Located(u.Corrections.TransactionPrice),
		"transaction_correction": Located(u.Corrections.Transaction),
		"market_correction":      Located(u.Corrections.Market),
		"location_correction":    Located(u.Corrections.Location),
		"physical_correction":    Located(u.Corrections.Physical),
		"rights_correction":      Located(u.Corrections.Rights),
		"adjusted_price":         Located(u.Corrections.AdjustedPrice),

		"location_factors": factorGroup(u.Factors.Location),
		"physical_factors": factorGroup(u.Factors.Physical),
		"rights_factors":   factorGroup(u.Factors.Rights),
	}
	if r := u.Rental; r != nil {
		out["rental"] = map[string]any{
			"property_scope": Located(r.PropertyScope),
			"payment_method": Located(r.PaymentMethod),
			"financing":      Located(r.Financing),
			"tax_burden":     Located(r.TaxBurden),
			"price_unit":     Located(r.PriceUnit),
			"price_type":     Located(r.PriceType),
		}
	}
	if s := u.Standard; s != nil {
		out["standard"] = map[string]any{
			"cert_type":        Located(s.CertType),
			"cert_code":        Located(s.CertCode),
			"east_west":        Located(s.EastWest),
			"appendages":       Located(s.Appendages),
			"location_code":    Located(s.LocationCode),
			"listing_price":    Located(s.ListingPrice),
			"structure_coef":   Located(s.StructureCoef),
			"floor_coef":       Located(s.FloorCoef),
			"orientation_coef": Located(s.OrientationCoef),
			"age_coef":         Located(s.AgeCoef),
			"east_west_coef":   Located(s.EastWestCoef),
			"physical_coef":    Located(s.PhysicalCoef),
			"p1":               PValue(s.P1),
			"p2":               PValue(s.P2),
			"p3":               PValue(s.P3),
			"p4":               PValue(s.P4),
			"composite":        Located(s.Composite),
			"vs_result":        Located(s.VsResult),
			"decoration_price": Located(s.DecorationPrice),
			"attachment_price": Located(s.AttachmentPrice),
			"final_price":      Located(s.FinalPrice),
		}
	}
	return out
}

func subject(s *entity.Subject) map[string]any {
	out := unit(&s.Unit)
	out["cert_no"] = Located(s.CertNo)
	out["owner"] = Located(s.Owner)
	out["co_ownership"] = Located(s.CoOwnership)
	out["plan_usage"] = Located(s.PlanUsage)
	out["land"] = map[string]any{
		"number":   Located(s.Land.Number),
		"owner":    Located(s.Land.Owner),
		"address":  Located(s.Land.Address),
		"use_type": Located(s.Land.UseType),
		"type":     Located(s.Land.Type),
		"area":     Located(s.Land.Area),
		"end_date": Located(s.Land.EndDate),
	}
	out["unit_price"] = Located(s.UnitPrice)
	out["total_price"] = Located(s.TotalPrice)
	out["value_date"] = Located(s.ValueDate)
	out["appraisal_purpose"] = Located(s.AppraisalPurpose)
	return out
}

func cases(cs []entity.Case) []any {
	out := make([]any, 0, len(cs))
	for i := range cs {
		m := unit(&cs[i].Unit)
		m["case_id"] = cs[i].CaseID
		out = append(out, m)
	}
	return out
}

func roles(rs []entity.RoleAssignment) []any {
	out := make([]any, 0, len(rs))
	for _, r := range rs {
		out = append(out, map[string]any{
			"role":        r.Role,
			"table_index": r.TableIndex,
			"source":      string(r.Source),
			"score":       r.Score,
		})
	}
	return out
}

func diagnostics(ds []entity.Diagnostic) []any {
	out := make([]any, 0, len(ds))
	for _, d := range ds {
		out = append(out, map[string]any{
			"table_index": d.Table,
			"row_index":   d.Row,
			"col_index":   d.Col,
			"field":       d.Field,
			"raw_text":    d.Raw,
			"reason":      d.Reason,
		})
	}
	return out
}

// Result renders a single-subject result.
func Result(r *entity.ExtractionResult) map[string]any {
	return map[string]any{
		"source_file":       r.SourceFile,
		"type":              string(r.Family),
		"report_type":       string(r.Family),
		"price_unit":        r.PriceUnit,
		"subject":           subject(&r.Subject),
		"cases":             cases(r.Cases),
		"final_unit_price":  Located(r.FinalUnitPrice),
		"final_total_price": Located(r.FinalTotalPrice),
		"floor_factor":      r.FloorFactorValue(),
		"roles":             roles(r.Roles),
		"diagnostics":       diagnostics(r.Diagnostics),
	}
}

// Batch renders a batch result.
func Batch(r *entity.BatchResult) map[string]any {
	subjects := make([]any, 0, len(r.Subjects))
	for i := range r.Subjects {
		s := &r.Subjects[i]
		subjects = append(subjects, map[string]any{
			"seq":           Located(s.Seq),
			"address":       Located(s.Address),
			"building_area": Located(s.BuildingArea),
			"total_price":   Located(s.TotalPrice),
			"unit_price":    Located(s.UnitPrice),
			"floor_factor":  s.FloorFactorValue(),
			"district":      Located(s.District),
			"street":        Located(s.Street),
		})
	}
	groups := make([]any, 0, len(r.CaseGroups))
	for _, g := range r.CaseGroups {
		groups = append(groups, cases(g))
	}
	floors := make([]any, 0, len(r.FloorTable))
	for _, fc := range r.FloorTable {
		floors = append(floors, map[string]any{
			"address":    Located(fc.Address),
			"base_price": Located(fc.BasePrice),
			"factor":     Located(fc.Factor),
			"matched":    fc.Matched,
		})
	}
	return map[string]any{
		"source_file": r.SourceFile,
		"type":        string(r.Family),
		"report_type": string(r.Family),
		"price_unit":  r.PriceUnit,
		"subjects":    subjects,
		"case_groups": groups,
		"floor_table": floors,
		"total_count": r.TotalCount,
		"total_area":  r.TotalArea,
		"total_value": r.TotalValue,
		"roles":       roles(r.Roles),
		"diagnostics": diagnostics(r.Diagnostics),
	}
}

// Report renders any report variant.
func Report(r entity.Report) map[string]any {
	switch v := r.(type) {
	case *entity.ExtractionResult:
		return Result(v)
	case *entity.BatchResult:
		return Batch(v)
	}
	return nil
}

// JSON encodes the dictionary form. Map keys are sorted by encoding/json, so
// the same report always yields the same bytes.
func JSON(r entity.Report) ([]byte, error) {
	m := Report(r)
	if m == nil {
		return nil, fmt.Errorf("serialize: unsupported report %T", r)
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}
	return b, nil
}
