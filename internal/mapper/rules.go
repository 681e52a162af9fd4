// Package mapper maps table rows and columns onto field names using
// keyword rules kept as data.
package mapper

import "github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"

// RowRule routes a row to Field when its label matches. Any needs one
// keyword, All needs every keyword, None rejects the row.
type RowRule struct {
	Field string   `yaml:"field"`
	Any   []string `yaml:"any"`
	All   []string `yaml:"all"`
	None  []string `yaml:"none"`
}

// Matches reports whether a compacted label satisfies the rule.
func (r RowRule) Matches(label string) bool {
	if label == "" || (len(r.Any) == 0 && len(r.All) == 0) {
		return false
	}
	if normalize.ContainsAny(label, normalize.CompactAll(r.None)) {
		return false
	}
	if len(r.All) > 0 && !normalize.ContainsAll(label, normalize.CompactAll(r.All)) {
		return false
	}
	if len(r.Any) > 0 && !normalize.ContainsAny(label, normalize.CompactAll(r.Any)) {
		return false
	}
	return true
}

// ColRule assigns a header cell to Key. Mode "all" requires every Include
// keyword; any other value requires one.
type ColRule struct {
	Key     string   `yaml:"key"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
	Mode    string   `yaml:"mode"`
}

func (c ColRule) matches(header string) bool {
	if header == "" {
		return false
	}
	if normalize.ContainsAny(header, normalize.CompactAll(c.Exclude)) {
		return false
	}
	inc := normalize.CompactAll(c.Include)
	if c.Mode == "all" {
		return normalize.ContainsAll(header, inc)
	}
	return normalize.ContainsAny(header, inc)
}

// BuildColumnMap maps keys to the first header column matching their rule.
// A column is claimed by at most one key, in rule order.
func BuildColumnMap(header []string, rules []ColRule) map[string]int {
	out := map[string]int{}
	claimed := map[int]bool{}
	for _, rule := range rules {
		for ci, h := range header {
			if claimed[ci] {
				continue
			}
			if rule.matches(normalize.Compact(h)) {
				out[rule.Key] = ci
				claimed[ci] = true
				break
			}
		}
	}
	return out
}

// Label joins the first n cells of a row, compacted. Repeated texts from
// merged cells are kept once.
func Label(row []string, n int) string {
	if n <= 0 {
		n = 1
	}
	label := ""
	prev := ""
	for i := 0; i < n && i < len(row); i++ {
		c := normalize.Compact(row[i])
		if c == prev {
			continue
		}
		label += c
		prev = c
	}
	return label
}
