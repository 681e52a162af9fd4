package extract

import (
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// zujin extracts rental reports. The layout matches shezhi except that there
// is no ratio table and the basic table carries the rental price terms.
type zujin struct{ base }

func (z zujin) Extract(doc *document.Document, roles classify.RoleIndexMap) entity.Report {
	x := newRun(doc, z.fam, roles, z.logger)
	res := z.newResult(doc, roles)

	x.summary(res)
	x.rights(res)
	x.basic(res)
	x.factors(res, false)
	x.corrections(res)
	x.freeText(res)

	if rt := res.Subject.Rental; rt == nil || !rt.PriceUnit.IsSet() {
		res.Subject.RentalBlock().PriceUnit = entity.Computed(res.PriceUnit)
	}
	x.finish(res)
	return res
}
