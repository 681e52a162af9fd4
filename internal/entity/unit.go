package entity

// FloorInfo is the structured form of a floor designator such as "5/18" or "1-2/2".
type FloorInfo struct {
	Raw         string `json:"raw"`
	Current     string `json:"current"`
	Total       *int   `json:"total"`
	IsDuplex    bool   `json:"is_duplex"`
	IsBasement  bool   `json:"is_basement"`
	DuplexStart *int   `json:"duplex_start,omitempty"`
	DuplexEnd   *int   `json:"duplex_end,omitempty"`
}

// Corrections are the 1.0-basis adjustment coefficients of a comparable case.
type Corrections struct {
	TransactionPrice LocatedFloat
	Transaction      LocatedFloat
	Market           LocatedFloat
	Location         LocatedFloat
	Physical         LocatedFloat
	Rights           LocatedFloat
	AdjustedPrice    LocatedFloat
}

// RentalTerms are the price-connotation rows of rental reports.
type RentalTerms struct {
	PropertyScope LocatedString
	PaymentMethod LocatedString
	Financing     LocatedString
	TaxBurden     LocatedString
	PriceUnit     LocatedString
	PriceType     LocatedString
}

// StandardTerms carries the standard-house fields: registration codes,
// detail coefficients and the P-coefficient correction chain.
type StandardTerms struct {
	CertType     LocatedString
	CertCode     LocatedString
	EastWest     LocatedString
	Appendages   LocatedString
	LocationCode LocatedString
	ListingPrice LocatedFloat

	StructureCoef   LocatedFloat
	FloorCoef       LocatedFloat
	OrientationCoef LocatedFloat
	AgeCoef         LocatedFloat
	EastWestCoef    LocatedFloat
	PhysicalCoef    LocatedFloat

	P1 LocatedString
	P2 LocatedString
	P3 LocatedString
	P4 LocatedString

	Composite       LocatedFloat
	VsResult        LocatedFloat
	DecorationPrice LocatedFloat
	AttachmentPrice LocatedFloat
	FinalPrice      LocatedFloat
}

// Unit is the shape shared by the subject and every comparable case.
type Unit struct {
	Address      LocatedString
	Location     LocatedString
	DataSource   LocatedString
	Usage        LocatedString
	BuildingArea LocatedFloat
	Price        LocatedFloat
	TradeDate    LocatedString
	BuildYear    LocatedInt
	Floor        LocatedValue[FloorInfo]
	Orientation  LocatedString
	Decoration   LocatedString
	Structure    LocatedString
	District     LocatedString
	Street       LocatedString

	Corrections Corrections
	Factors     FactorSet

	Rental   *RentalTerms
	Standard *StandardTerms
}

// RentalBlock returns the rental block, creating it on first use.
func (u *Unit) RentalBlock() *RentalTerms {
	if u.Rental == nil {
		u.Rental = &RentalTerms{}
	}
	return u.Rental
}

// StandardBlock returns the standard-house block, creating it on first use.
func (u *Unit) StandardBlock() *StandardTerms {
	if u.Standard == nil {
		u.Standard = &StandardTerms{}
	}
	return u.Standard
}

// Case is one comparable instance, labelled A..D.
type Case struct {
	CaseID string
	Unit
}

// LandInfo is the land-use block of a registration table.
type LandInfo struct {
	Number  LocatedString
	Owner   LocatedString
	Address LocatedString
	UseType LocatedString
	Type    LocatedString
	Area    LocatedFloat
	EndDate LocatedString
}

// Subject is the appraised property.
type Subject struct {
	Unit

	CertNo      LocatedString
	Owner       LocatedString
	CoOwnership LocatedString
	PlanUsage   LocatedString
	Land        LandInfo

	UnitPrice        LocatedFloat
	TotalPrice       LocatedFloat
	ValueDate        LocatedString
	AppraisalPurpose LocatedString
}

// BatchSubject is one row of a batch summary table.
type BatchSubject struct {
	Seq          LocatedInt
	Address      LocatedString
	BuildingArea LocatedFloat
	TotalPrice   LocatedFloat
	UnitPrice    LocatedFloat
	FloorFactor  LocatedFloat
	District     LocatedString
	Street       LocatedString
}

// FloorFactorValue returns the floor factor, defaulting to 1.0.
func (b *BatchSubject) FloorFactorValue() float64 {
	return b.FloorFactor.Or(1.0)
}

// FloorCorrection is one data row of a batch floor-correction table.
type FloorCorrection struct {
	Address   LocatedString
	BasePrice LocatedFloat
	Factor    LocatedFloat
	Matched   int
}
