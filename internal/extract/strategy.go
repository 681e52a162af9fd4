package extract

import (
	"log/slog"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/rules"
)

// Strategy extracts one report family.
type Strategy interface {
	Family() constants.ReportFamily
	Classify(tables []document.Table) classify.RoleIndexMap
	Extract(doc *document.Document, roles classify.RoleIndexMap) entity.Report
}

type base struct {
	fam    *rules.Family
	cls    *classify.Classifier
	logger *slog.Logger
}

func (b base) Family() constants.ReportFamily { return b.fam.Family }

func (b base) Classify(tables []document.Table) classify.RoleIndexMap {
	return b.cls.Classify(tables)
}

func (b base) newResult(doc *document.Document, roles classify.RoleIndexMap) *entity.ExtractionResult {
	return &entity.ExtractionResult{
		SourceFile: doc.Name(),
		Family:     b.fam.Family,
		Cases:      newCases(b.fam.CaseCount),
		PriceUnit:  b.fam.PriceUnit,
		Roles:      roles.Entries(),
	}
}

func newStrategy(fam *rules.Family, cls *classify.Classifier, logger *slog.Logger) (Strategy, bool) {
	b := base{fam: fam, cls: cls, logger: logger.With("family", string(fam.Family))}
	switch fam.Family {
	case constants.Shezhi:
		return shezhi{b}, true
	case constants.Zujin:
		return zujin{b}, true
	case constants.Biaozhunfang:
		return biaozhunfang{b}, true
	case constants.Xianzhi:
		return xianzhi{b}, true
	}
	return nil, false
}
