package normalize

import "github.com/GaoLiyu/kb-system-back-sub000/internal/entity"

// FactorDictionary maps the factor labels of one report family to canonical keys
// and categories.
type FactorDictionary struct {
	// Keys maps a compacted label to its canonical key.
	Keys map[string]string `yaml:"keys"`
	// Categories maps a category header such as 区位状况 to a category.
	Categories map[string]entity.FactorCategory `yaml:"categories"`
	// Aliases rewrites category headers used by some templates (实物因素 -> 实物状况).
	Aliases map[string]string `yaml:"aliases"`
	// Members lists the labels that belong to each category when no header is present.
	Members map[entity.FactorCategory][]string `yaml:"members"`
	// Skip lists row labels that are not factors.
	Skip []string `yaml:"skip"`
}

// Canonical returns the canonical key for label; unknown labels pass through compacted.
func (d *FactorDictionary) Canonical(label string) string {
	l := Compact(label)
	if d == nil {
		return l
	}
	if k, ok := d.Keys[l]; ok {
		return k
	}
	return l
}

// CategoryHeader resolves a category header cell, following aliases.
func (d *FactorDictionary) CategoryHeader(label string) (entity.FactorCategory, bool) {
	if d == nil {
		return "", false
	}
	l := Compact(label)
	if a, ok := d.Aliases[l]; ok {
		l = a
	}
	c, ok := d.Categories[l]
	return c, ok
}

// MemberOf returns the category a bare factor label belongs to.
func (d *FactorDictionary) MemberOf(label string) (entity.FactorCategory, bool) {
	if d == nil {
		return "", false
	}
	l := Compact(label)
	for _, c := range entity.FactorCategories {
		for _, m := range d.Members[c] {
			if m == l {
				return c, true
			}
		}
	}
	return "", false
}

// Skipped reports whether label is a non-factor row.
func (d *FactorDictionary) Skipped(label string) bool {
	if d == nil {
		return false
	}
	l := Compact(label)
	for _, s := range d.Skip {
		if s == l {
			return true
		}
	}
	return false
}
