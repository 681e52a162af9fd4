// Package rules loads the versioned per-family extraction data: role
// signatures, fallback offsets, row and column layouts, and factor
// dictionaries. The data is embedded and decoded once.
package rules

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/GaoLiyu/kb-system-back-sub000/constants"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/classify"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/common"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/mapper"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/normalize"
)

//go:embed families/*.yaml
var embedded embed.FS

// Family is the complete rule set of one report family.
type Family struct {
	Version      string                     `yaml:"version"`
	Family       constants.ReportFamily     `yaml:"family"`
	CaseCount    int                        `yaml:"case_count"`
	PriceUnit    string                     `yaml:"price_unit"`
	Classifier   classify.Config            `yaml:"classifier"`
	Layouts      map[string]mapper.Layout   `yaml:"layouts"`
	FactorLayout mapper.FactorLayout        `yaml:"factor_layout"`
	Factors      normalize.FactorDictionary `yaml:"factors"`
}

// Layout returns a named layout.
func (f *Family) Layout(name string) (mapper.Layout, bool) {
	l, ok := f.Layouts[name]
	return l, ok
}

// LayoutNames lists the layouts in name order.
func (f *Family) LayoutNames() []string {
	names := make([]string, 0, len(f.Layouts))
	for n := range f.Layouts {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Registry holds the loaded families. It is read-only after Load.
type Registry struct {
	families map[constants.ReportFamily]*Family
}

// Get returns the rules of a family.
func (r *Registry) Get(f constants.ReportFamily) (*Family, bool) {
	fam, ok := r.families[f]
	return fam, ok
}

// Versions returns family -> rule version.
func (r *Registry) Versions() map[constants.ReportFamily]string {
	out := make(map[constants.ReportFamily]string, len(r.families))
	for k, v := range r.families {
		out[k] = v.Version
	}
	return out
}

// Load decodes every *.yaml file at the root of fsys.
func Load(fsys fs.FS) (*Registry, error) {
	files, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob rules: %w", err)
	}
	if len(files) == 0 {
		return nil, common.NewAppError("RULES_ERROR", "no rule files found", common.ErrInvalidInput)
	}
	reg := &Registry{families: map[constants.ReportFamily]*Family{}}
	for _, name := range files {
		b, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		fam, err := Parse(b)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		if want := strings.TrimSuffix(path.Base(name), ".yaml"); string(fam.Family) != want {
			return nil, common.NewAppError("RULES_ERROR",
				fmt.Sprintf("%s declares family %q", name, fam.Family), common.ErrInvalidInput)
		}
		if _, dup := reg.families[fam.Family]; dup {
			return nil, common.NewAppError("RULES_ERROR", "duplicate family "+string(fam.Family), common.ErrInvalidInput)
		}
		reg.families[fam.Family] = fam
	}
	return reg, nil
}

// LoadDir loads rule files from a directory on disk.
func LoadDir(dir string) (*Registry, error) {
	return Load(os.DirFS(dir))
}

// Parse decodes and validates one family document.
func Parse(b []byte) (*Family, error) {
	var fam Family
	if err := yaml.Unmarshal(b, &fam); err != nil {
		return nil, err
	}
	if err := fam.Validate(); err != nil {
		return nil, err
	}
	return &fam, nil
}

// Validate checks the invariants the extractor relies on.
func (f *Family) Validate() error {
	invalid := func(msg string) error {
		return common.NewAppError("RULES_ERROR", fmt.Sprintf("%s: %s", f.Family, msg), common.ErrInvalidInput)
	}
	if f.Version == "" {
		return invalid("version is required")
	}
	if _, ok := constants.ParseFamily(string(f.Family)); !ok {
		return invalid("unknown family")
	}
	if f.CaseCount < 1 || f.CaseCount > len(constants.CaseIDs(4)) {
		return invalid(fmt.Sprintf("case_count %d out of range", f.CaseCount))
	}
	for r, s := range f.Classifier.Signatures {
		if !classify.Known(r) {
			return invalid("unknown role " + string(r))
		}
		if s.Threshold <= 0 {
			return invalid("threshold must be positive for " + string(r))
		}
	}
	for n, s := range f.Classifier.Extra {
		if s.Threshold <= 0 {
			return invalid("threshold must be positive for " + n)
		}
	}
	for r := range f.Classifier.Defaults {
		if !classify.Known(r) {
			return invalid("unknown default role " + string(r))
		}
	}
	for r := range f.Classifier.Offsets {
		if !classify.Known(r) {
			return invalid("unknown offset role " + string(r))
		}
	}
	for name, l := range f.Layouts {
		for _, rule := range l.Rules {
			if rule.Field == "" {
				return invalid("layout " + name + " has a rule without field")
			}
		}
		for _, c := range l.Columns {
			if c.Key == "" {
				return invalid("layout " + name + " has a column without key")
			}
		}
	}
	return nil
}

var (
	defaultOnce sync.Once
	defaultReg  *Registry
	defaultErr  error
)

// Default returns the embedded rules, decoded on first use.
func Default() (*Registry, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "families")
		if err != nil {
			defaultErr = err
			return
		}
		defaultReg, defaultErr = Load(sub)
	})
	return defaultReg, defaultErr
}

// MustDefault is Default for process start-up; it panics on broken embedded data.
func MustDefault() *Registry {
	reg, err := Default()
	if err != nil {
		panic(err)
	}
	return reg
}
