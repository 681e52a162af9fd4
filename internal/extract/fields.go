// Package extract turns a classified document into typed report entities.
// Every cell read is fault-contained: a cell that does not parse leaves its
// field unset and adds a diagnostic, and extraction moves on.
package extract

import "github.com/GaoLiyu/kb-system-back-sub000/internal/entity"

// Kind selects the parser applied to a cell.
type Kind string

const (
	KindText      Kind = "text"       // whitespace-normalized string
	KindNumber    Kind = "number"     // every non-digit stripped
	KindAmount    Kind = "amount"     // first decimal in the text, e.g. "205.85万元"
	KindSum       Kind = "sum"        // all decimals added, for split areas
	KindRatio     Kind = "ratio"      // 1.0-basis coefficient
	KindRatioText Kind = "ratio_text" // P-coefficients: raw text kept, parsed on output
	KindYear      Kind = "year"
	KindDate      Kind = "date"
	KindFloor     Kind = "floor"
	KindInt       Kind = "int"
)

// target is the entity a mapped cell is written into. Subject-only fields
// are skipped when subject is nil.
type target struct {
	unit    *entity.Unit
	subject *entity.Subject
}

func subjectTarget(s *entity.Subject) *target { return &target{unit: &s.Unit, subject: s} }
func caseTarget(c *entity.Case) *target       { return &target{unit: &c.Unit} }

type fieldSpec struct {
	kind  Kind
	text  func(*target) *entity.LocatedString
	num   func(*target) *entity.LocatedFloat
	whole func(*target) *entity.LocatedInt
	floor func(*target) *entity.LocatedValue[entity.FloorInfo]
}

func unitText(kind Kind, get func(*entity.Unit) *entity.LocatedString) fieldSpec {
	return fieldSpec{kind: kind, text: func(t *target) *entity.LocatedString { return get(t.unit) }}
}

func unitNum(kind Kind, get func(*entity.Unit) *entity.LocatedFloat) fieldSpec {
	return fieldSpec{kind: kind, num: func(t *target) *entity.LocatedFloat { return get(t.unit) }}
}

func subjectText(kind Kind, get func(*entity.Subject) *entity.LocatedString) fieldSpec {
	return fieldSpec{kind: kind, text: func(t *target) *entity.LocatedString {
		if t.subject == nil {
			return nil
		}
		return get(t.subject)
	}}
}

func subjectNum(kind Kind, get func(*entity.Subject) *entity.LocatedFloat) fieldSpec {
	return fieldSpec{kind: kind, num: func(t *target) *entity.LocatedFloat {
		if t.subject == nil {
			return nil
		}
		return get(t.subject)
	}}
}

func rentalText(get func(*entity.RentalTerms) *entity.LocatedString) fieldSpec {
	return unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return get(u.RentalBlock()) })
}

func standardText(kind Kind, get func(*entity.StandardTerms) *entity.LocatedString) fieldSpec {
	return unitText(kind, func(u *entity.Unit) *entity.LocatedString { return get(u.StandardBlock()) })
}

func standardNum(kind Kind, get func(*entity.StandardTerms) *entity.LocatedFloat) fieldSpec {
	return unitNum(kind, func(u *entity.Unit) *entity.LocatedFloat { return get(u.StandardBlock()) })
}

// fields is the registry of every field name a layout may route to.
var fields = map[string]fieldSpec{
	"address":     unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Address }),
	"location":    unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Location }),
	"data_source": unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.DataSource }),
	"usage":       unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Usage }),
	"orientation": unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Orientation }),
	"decoration":  unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Decoration }),
	"structure":   unitText(KindText, func(u *entity.Unit) *entity.LocatedString { return &u.Structure }),
	"trade_date":  unitText(KindDate, func(u *entity.Unit) *entity.LocatedString { return &u.TradeDate }),

	"building_area":     unitNum(KindNumber, func(u *entity.Unit) *entity.LocatedFloat { return &u.BuildingArea }),
	"building_area_sum": unitNum(KindSum, func(u *entity.Unit) *entity.LocatedFloat { return &u.BuildingArea }),
	"price":             unitNum(KindNumber, func(u *entity.Unit) *entity.LocatedFloat { return &u.Price }),

	"build_year": {kind: KindYear, whole: func(t *target) *entity.LocatedInt { return &t.unit.BuildYear }},

	"floor": {kind: KindFloor, floor: func(t *target) *entity.LocatedValue[entity.FloorInfo] {
		return &t.unit.Floor
	}},

	"corr_price":       unitNum(KindNumber, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.TransactionPrice }),
	"corr_transaction": unitNum(KindRatio, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.Transaction }),
	"corr_market":      unitNum(KindRatio, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.Market }),
	"corr_location":    unitNum(KindRatio, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.Location }),
	"corr_physical":    unitNum(KindRatio, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.Physical }),
	"corr_rights":      unitNum(KindRatio, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.Rights }),
	"adjusted_price":   unitNum(KindNumber, func(u *entity.Unit) *entity.LocatedFloat { return &u.Corrections.AdjustedPrice }),

	"property_scope": rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.PropertyScope }),
	"payment_method": rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.PaymentMethod }),
	"financing":      rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.Financing }),
	"tax_burden":     rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.TaxBurden }),
	"rental_unit":    rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.PriceUnit }),
	"price_type":     rentalText(func(r *entity.RentalTerms) *entity.LocatedString { return &r.PriceType }),

	"cert_type":     standardText(KindText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.CertType }),
	"cert_code":     standardText(KindText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.CertCode }),
	"east_west":     standardText(KindText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.EastWest }),
	"appendages":    standardText(KindText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.Appendages }),
	"location_code": standardText(KindText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.LocationCode }),
	"listing_price": standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.ListingPrice }),

	"structure_coef":   standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.StructureCoef }),
	"floor_coef":       standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.FloorCoef }),
	"orientation_coef": standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.OrientationCoef }),
	"age_coef":         standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.AgeCoef }),
	"east_west_coef":   standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.EastWestCoef }),
	"physical_coef":    standardNum(KindRatio, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.PhysicalCoef }),

	"p1": standardText(KindRatioText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.P1 }),
	"p2": standardText(KindRatioText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.P2 }),
	"p3": standardText(KindRatioText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.P3 }),
	"p4": standardText(KindRatioText, func(s *entity.StandardTerms) *entity.LocatedString { return &s.P4 }),

	"composite":        standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.Composite }),
	"vs_result":        standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.VsResult }),
	"decoration_price": standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.DecorationPrice }),
	"attachment_price": standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.AttachmentPrice }),
	"final_price":      standardNum(KindNumber, func(s *entity.StandardTerms) *entity.LocatedFloat { return &s.FinalPrice }),

	"cert_no":       subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.CertNo }),
	"owner":         subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Owner }),
	"co_ownership":  subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.CoOwnership }),
	"plan_usage":    subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.PlanUsage }),
	"value_date":    subjectText(KindDate, func(s *entity.Subject) *entity.LocatedString { return &s.ValueDate }),
	"land_no":       subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Land.Number }),
	"land_owner":    subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Land.Owner }),
	"land_address":  subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Land.Address }),
	"land_use_type": subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Land.UseType }),
	"land_type":     subjectText(KindText, func(s *entity.Subject) *entity.LocatedString { return &s.Land.Type }),
	"land_end_date": subjectText(KindDate, func(s *entity.Subject) *entity.LocatedString { return &s.Land.EndDate }),
	"land_area":     subjectNum(KindNumber, func(s *entity.Subject) *entity.LocatedFloat { return &s.Land.Area }),
	"unit_price":    subjectNum(KindNumber, func(s *entity.Subject) *entity.LocatedFloat { return &s.UnitPrice }),
	"total_price":   subjectNum(KindAmount, func(s *entity.Subject) *entity.LocatedFloat { return &s.TotalPrice }),
}

// KnownField reports whether name is a registered field.
func KnownField(name string) bool {
	_, ok := fields[name]
	return ok
}

// FieldKind returns the parser kind of a registered field.
func FieldKind(name string) (Kind, bool) {
	f, ok := fields[name]
	return f.kind, ok
}
