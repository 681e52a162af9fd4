package classify

import (
	"strings"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

const (
	defaultStrongWeight = 10
	defaultWeakWeight   = 1
	defaultBlockRows    = 10
	defaultBlockCols    = 12
)

// Signature scores how much a table looks like one role.
type Signature struct {
	// Strong groups add StrongWeight when every keyword of the group is present.
	Strong       [][]string `yaml:"strong"`
	StrongWeight int        `yaml:"strong_weight"`
	// Weak keywords add WeakWeight each.
	Weak       []string `yaml:"weak"`
	WeakWeight int      `yaml:"weak_weight"`
	Shape      *Shape   `yaml:"shape"`
	// Penalties subtract when a sibling role's keywords occur too often.
	Penalties []Penalty `yaml:"penalties"`
	Threshold int       `yaml:"threshold"`
	// Rows limits the text block for this signature; 1 scores the header row only.
	Rows int `yaml:"rows"`
}

// Shape adds Bonus when the table dimensions fit.
type Shape struct {
	MinRows int `yaml:"min_rows"`
	MaxRows int `yaml:"max_rows"`
	MinCols int `yaml:"min_cols"`
	Bonus   int `yaml:"bonus"`
}

// Penalty subtracts Weight when the keywords occur at least MinCount times in total.
type Penalty struct {
	Keywords []string `yaml:"keywords"`
	MinCount int      `yaml:"min_count"`
	Weight   int      `yaml:"weight"`
}

func (s Signature) compiled() Signature {
	out := s
	if out.StrongWeight == 0 {
		out.StrongWeight = defaultStrongWeight
	}
	if out.WeakWeight == 0 {
		out.WeakWeight = defaultWeakWeight
	}
	out.Strong = make([][]string, 0, len(s.Strong))
	for _, g := range s.Strong {
		out.Strong = append(out.Strong, normalize.CompactAll(g))
	}
	out.Weak = normalize.CompactAll(s.Weak)
	out.Penalties = make([]Penalty, 0, len(s.Penalties))
	for _, p := range s.Penalties {
		cp := p
		cp.Keywords = normalize.CompactAll(p.Keywords)
		if cp.MinCount <= 0 {
			cp.MinCount = 1
		}
		out.Penalties = append(out.Penalties, cp)
	}
	return out
}

// score evaluates a compiled signature against a text block.
func (s Signature) score(block string, rows, cols int) int {
	total := 0
	for _, g := range s.Strong {
		if normalize.ContainsAll(block, g) {
			total += s.StrongWeight
		}
	}
	total += s.WeakWeight * normalize.CountHits(block, s.Weak)
	if s.Shape != nil && s.Shape.fits(rows, cols) {
		total += s.Shape.Bonus
	}
	for _, p := range s.Penalties {
		n := 0
		for _, k := range p.Keywords {
			n += strings.Count(block, k)
		}
		if n >= p.MinCount {
			total -= p.Weight
		}
	}
	return total
}

func (sh *Shape) fits(rows, cols int) bool {
	if sh.MinRows > 0 && rows < sh.MinRows {
		return false
	}
	if sh.MaxRows > 0 && rows > sh.MaxRows {
		return false
	}
	if sh.MinCols > 0 && cols < sh.MinCols {
		return false
	}
	return true
}

// Block concatenates the compacted text of the first maxRows rows and maxCols columns.
func Block(t document.Table, maxRows, maxCols int) string {
	var b strings.Builder
	for r := 0; r < len(t.Rows) && r < maxRows; r++ {
		row := t.Rows[r]
		for c := 0; c < len(row) && c < maxCols; c++ {
			b.WriteString(normalize.Compact(row[c]))
		}
	}
	return b.String()
}
