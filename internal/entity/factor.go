package entity

// FactorCategory groups comparison factors the way the factor tables do.
type FactorCategory string

const (
	FactorLocation FactorCategory = "location"
	FactorPhysical FactorCategory = "physical"
	FactorRights   FactorCategory = "rights"
)

// FactorCategories lists the categories in table order.
var FactorCategories = []FactorCategory{FactorLocation, FactorPhysical, FactorRights}

// DefaultFactorIndex is the neutral 100-basis index.
const DefaultFactorIndex = 100.0

// Factor is one comparison attribute of a subject or case.
type Factor struct {
	Name        string
	Label       string
	Category    FactorCategory
	Description LocatedString
	Level       LocatedString
	Index       LocatedFloat
	Ratio       LocatedFloat
}

// IndexValue returns the 100-basis index, defaulting to neutral.
func (f *Factor) IndexValue() float64 {
	return f.Index.Or(DefaultFactorIndex)
}

// IndexNormalized returns the index on a 1.0 basis.
func (f *Factor) IndexNormalized() float64 {
	return f.IndexValue() / 100
}

// FactorSet holds the factors of one unit, keyed by canonical name per category.
type FactorSet struct {
	Location map[string]*Factor
	Physical map[string]*Factor
	Rights   map[string]*Factor
}

// Group returns the map for a category, creating it on first use.
func (s *FactorSet) Group(c FactorCategory) map[string]*Factor {
	switch c {
	case FactorLocation:
		if s.Location == nil {
			s.Location = map[string]*Factor{}
		}
		return s.Location
	case FactorPhysical:
		if s.Physical == nil {
			s.Physical = map[string]*Factor{}
		}
		return s.Physical
	case FactorRights:
		if s.Rights == nil {
			s.Rights = map[string]*Factor{}
		}
		return s.Rights
	}
	return nil
}

// Lookup returns the factor for a category/name pair, creating it when missing.
func (s *FactorSet) Lookup(c FactorCategory, name, label string) *Factor {
	g := s.Group(c)
	if g == nil {
		return nil
	}
	f, ok := g[name]
	if !ok {
		f = &Factor{Name: name, Label: label, Category: c}
		g[name] = f
	}
	return f
}

// Find returns an existing factor by name in any category.
func (s *FactorSet) Find(name string) (*Factor, bool) {
	for _, g := range []map[string]*Factor{s.Location, s.Physical, s.Rights} {
		if f, ok := g[name]; ok {
			return f, true
		}
	}
	return nil, false
}

// Len counts the factors across categories.
func (s *FactorSet) Len() int {
	return len(s.Location) + len(s.Physical) + len(s.Rights)
}
