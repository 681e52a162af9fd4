// Package classify decides which table of a document plays which semantic
// role, scoring table content against keyword signatures.
package classify

import (
	"sort"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// Role is a semantic table function, independent of the table's position.
type Role string

const (
	ResultSummary     Role = "result_summary"
	PropertyRights    Role = "property_rights"
	BasicInfo         Role = "basic_info"
	FactorDescription Role = "factor_description"
	FactorLevel       Role = "factor_level"
	FactorIndex       Role = "factor_index"
	FactorRatio       Role = "factor_ratio"
	CorrectionTable   Role = "correction_table"
)

// AllRoles lists the canonical roles in document order.
var AllRoles = []Role{
	ResultSummary,
	PropertyRights,
	BasicInfo,
	FactorDescription,
	FactorLevel,
	FactorIndex,
	FactorRatio,
	CorrectionTable,
}

// Known reports whether r is a canonical role.
func Known(r Role) bool {
	for _, k := range AllRoles {
		if k == r {
			return true
		}
	}
	return false
}

func roleRank(r Role) int {
	for i, k := range AllRoles {
		if k == r {
			return i
		}
	}
	return len(AllRoles)
}

// RoleIndexMap is the immutable outcome of classification.
type RoleIndexMap struct {
	entries []entity.RoleAssignment
}

// NewRoleIndexMap builds a map from assignments. A later assignment for the
// same role replaces an earlier one.
func NewRoleIndexMap(assignments ...entity.RoleAssignment) RoleIndexMap {
	byRole := make(map[string]entity.RoleAssignment, len(assignments))
	for _, a := range assignments {
		byRole[a.Role] = a
	}
	entries := make([]entity.RoleAssignment, 0, len(byRole))
	for _, a := range byRole {
		entries = append(entries, a)
	}
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := roleRank(Role(entries[i].Role)), roleRank(Role(entries[j].Role))
		if ri != rj {
			return ri < rj
		}
		return entries[i].Role < entries[j].Role
	})
	return RoleIndexMap{entries: entries}
}

func (m RoleIndexMap) lookup(r Role) (entity.RoleAssignment, bool) {
	for _, e := range m.entries {
		if e.Role == string(r) {
			return e, true
		}
	}
	return entity.RoleAssignment{}, false
}

// Index returns the table index of a role.
func (m RoleIndexMap) Index(r Role) (int, bool) {
	e, ok := m.lookup(r)
	return e.TableIndex, ok
}

// Source says whether the role was detected, fell back to an offset, or kept its default.
func (m RoleIndexMap) Source(r Role) entity.RoleSource {
	e, _ := m.lookup(r)
	return e.Source
}

// Entries returns a copy of the assignments in role order.
func (m RoleIndexMap) Entries() []entity.RoleAssignment {
	out := make([]entity.RoleAssignment, len(m.entries))
	copy(out, m.entries)
	return out
}

func (m RoleIndexMap) Len() int { return len(m.entries) }
