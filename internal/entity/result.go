package entity

import "github.com/GaoLiyu/kb-system-back-sub000/constants"

// Diagnostic records a cell or table the extractor skipped.
type Diagnostic struct {
	Table  int    `json:"table_index"`
	Row    int    `json:"row_index"`
	Col    int    `json:"col_index"`
	Field  string `json:"field"`
	Raw    string `json:"raw_text"`
	Reason string `json:"reason"`
}

// Diagnostic reasons.
const (
	ReasonParseNumber   = "parse_number"
	ReasonParseRatio    = "parse_ratio"
	ReasonParseYear     = "parse_year"
	ReasonParseDate     = "parse_date"
	ReasonTableMissing  = "table_out_of_range"
	ReasonCellMissing   = "cell_out_of_range"
	ReasonRoleUnmatched = "role_unresolved"
)

// RoleSource says how a role index was decided.
type RoleSource string

const (
	RoleDetected RoleSource = "detected"
	RoleFallback RoleSource = "fallback"
	RoleDefault  RoleSource = "default"
)

// RoleAssignment is one resolved role of a document.
type RoleAssignment struct {
	Role       string     `json:"role"`
	TableIndex int        `json:"table_index"`
	Source     RoleSource `json:"source"`
	Score      int        `json:"score"`
}

// Report is the closed set of extraction outputs.
type Report interface {
	ReportFamily() constants.ReportFamily
	SourceName() string
	DiagnosticList() []Diagnostic
	RoleList() []RoleAssignment
	isReport()
}

// ExtractionResult is the output for single-subject families.
type ExtractionResult struct {
	SourceFile      string
	Family          constants.ReportFamily
	Subject         Subject
	Cases           []Case
	FinalUnitPrice  LocatedFloat
	FinalTotalPrice LocatedFloat
	FloorFactor     LocatedFloat
	PriceUnit       string
	Roles           []RoleAssignment
	Diagnostics     []Diagnostic
}

// FloorFactorValue returns the floor multiplier, defaulting to 1.0.
func (r *ExtractionResult) FloorFactorValue() float64 {
	return r.FloorFactor.Or(1.0)
}

func (r *ExtractionResult) ReportFamily() constants.ReportFamily { return r.Family }
func (r *ExtractionResult) SourceName() string                   { return r.SourceFile }
func (r *ExtractionResult) DiagnosticList() []Diagnostic         { return r.Diagnostics }
func (r *ExtractionResult) RoleList() []RoleAssignment           { return r.Roles }
func (r *ExtractionResult) isReport()                            {}

// BatchResult is the output for multi-subject batch reports.
type BatchResult struct {
	SourceFile  string
	Family      constants.ReportFamily
	Subjects    []BatchSubject
	CaseGroups  [][]Case
	FloorTable  []FloorCorrection
	TotalCount  int
	TotalArea   float64
	TotalValue  float64
	PriceUnit   string
	Roles       []RoleAssignment
	Diagnostics []Diagnostic
}

func (r *BatchResult) ReportFamily() constants.ReportFamily { return r.Family }
func (r *BatchResult) SourceName() string                   { return r.SourceFile }
func (r *BatchResult) DiagnosticList() []Diagnostic         { return r.Diagnostics }
func (r *BatchResult) RoleList() []RoleAssignment           { return r.Roles }
func (r *BatchResult) isReport()                            {}
