package extract

import (
	"log/slog"
	"time"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

// Dispatcher selects the strategy for a report family. Compiled classifiers
// are shared; each Extract call gets its own run state, so one Dispatcher
// may serve concurrent documents.
type Dispatcher struct {
	reg         *rules.Registry
	classifiers map[constants.ReportFamily]*classify.Classifier
	logger      *slog.Logger
}

// NewDispatcher compiles the classifiers of every family in reg.
func NewDispatcher(reg *rules.Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		reg:         reg,
		classifiers: map[constants.ReportFamily]*classify.Classifier{},
		logger:      logger,
	}
	for _, f := range constants.Families() {
		if fam, ok := reg.Get(f); ok {
			d.classifiers[f] = classify.New(fam.Classifier)
		}
	}
	return d
}

// Strategy returns a fresh strategy for family. An unregistered family is
// the only error the engine surfaces.
func (d *Dispatcher) Strategy(family constants.ReportFamily) (Strategy, error) {
	fam, ok := d.reg.Get(family)
	if !ok {
		return nil, common.UnsupportedReportError(string(family))
	}
	s, ok := newStrategy(fam, d.classifiers[family], d.logger)
	if !ok {
		return nil, common.UnsupportedReportError(string(family))
	}
	return s, nil
}

// Extract classifies the tables of doc and extracts it as family.
func (d *Dispatcher) Extract(doc *document.Document, family constants.ReportFamily) (entity.Report, error) {
	if doc == nil {
		return nil, common.NewAppError("INVALID_DOCUMENT", "document is nil", common.ErrInvalidInput)
	}
	s, err := d.Strategy(family)
	if err != nil {
		d.logger.Warn("extract.unsupported", "family", string(family), "file", doc.Name())
		return nil, err
	}
	start := time.Now()
	roles := s.Classify(doc.Tables)
	for _, a := range roles.Entries() {
		d.logger.Debug("extract.role",
			"family", string(family),
			"role", a.Role,
			"table_index", a.TableIndex,
			"source", string(a.Source),
			"score", a.Score)
	}
	rep := s.Extract(doc, roles)
	d.logger.Info("extract.ok",
		"family", string(family),
		"file", doc.Name(),
		"tables", len(doc.Tables),
		"diagnostics", len(rep.DiagnosticList()),
		"elapsed_ms", time.Since(start).Milliseconds())
	return rep, nil
}

// ExtractAuto detects the family from the document file name.
func (d *Dispatcher) ExtractAuto(doc *document.Document) (entity.Report, error) {
	if doc == nil {
		return nil, common.NewAppError("INVALID_DOCUMENT", "document is nil", common.ErrInvalidInput)
	}
	family, ok := constants.DetectFamily(doc.Name())
	if !ok {
		return nil, common.NewAppError("UNSUPPORTED_REPORT", "cannot detect report type from "+doc.Name(), common.ErrUnsupportedReport)
	}
	return d.Extract(doc, family)
}

// Versions returns the rule version each family was extracted with.
func (d *Dispatcher) Versions() map[constants.ReportFamily]string {
	return d.reg.Versions()
}
