package classify

import (
	"sort"

	"github.com/GaoLiyu/kb-system-back-sub000/internal/document"
	"github.com/GaoLiyu/kb-system-back-sub000/internal/entity"
)

// Config is the per-family classification data.
type Config struct {
	BlockRows int `yaml:"block_rows"`
	BlockCols int `yaml:"block_cols"`
	// Anchor is the role whose detected index drives the offset fallback.
	Anchor     Role                 `yaml:"anchor"`
	Defaults   map[Role]int         `yaml:"defaults"`
	Offsets    map[Role]int         `yaml:"offsets"`
	Signatures map[Role]Signature   `yaml:"signatures"`
	Extra      map[string]Signature `yaml:"extra"`
}

// Classifier resolves roles for one family. It holds only read-only data and
// is safe for concurrent use.
type Classifier struct {
	cfg   Config
	sigs  map[Role]Signature
	extra map[string]Signature
}

// New compiles the signatures of cfg.
func New(cfg Config) *Classifier {
	if cfg.BlockRows <= 0 {
		cfg.BlockRows = defaultBlockRows
	}
	if cfg.BlockCols <= 0 {
		cfg.BlockCols = defaultBlockCols
	}
	if cfg.Anchor == "" {
		cfg.Anchor = BasicInfo
	}
	c := &Classifier{
		cfg:   cfg,
		sigs:  make(map[Role]Signature, len(cfg.Signatures)),
		extra: make(map[string]Signature, len(cfg.Extra)),
	}
	for r, s := range cfg.Signatures {
		c.sigs[r] = s.compiled()
	}
	for n, s := range cfg.Extra {
		c.extra[n] = s.compiled()
	}
	return c
}

// Match is one scored table.
type Match struct {
	Index int
	Score int
}

type blockCache struct {
	tables []document.Table
	cols   int
	byRows map[int][]string
}

func (b *blockCache) get(i, rows int) string {
	blocks, ok := b.byRows[rows]
	if !ok {
		blocks = make([]string, len(b.tables))
		for j, t := range b.tables {
			blocks[j] = Block(t, rows, b.cols)
		}
		b.byRows[rows] = blocks
	}
	return blocks[i]
}

func (c *Classifier) newCache(tables []document.Table) *blockCache {
	return &blockCache{tables: tables, cols: c.cfg.BlockCols, byRows: map[int][]string{}}
}

func (c *Classifier) scoreWith(cache *blockCache, i int, s Signature) int {
	rows := s.Rows
	if rows <= 0 {
		rows = c.cfg.BlockRows
	}
	t := cache.tables[i]
	return s.score(cache.get(i, rows), t.NumRows(), t.NumCols())
}

// best returns the highest-scoring table; ties keep the first.
func (c *Classifier) best(cache *blockCache, s Signature) (Match, bool) {
	m := Match{Index: -1}
	for i := range cache.tables {
		sc := c.scoreWith(cache, i, s)
		if m.Index < 0 || sc > m.Score {
			m = Match{Index: i, Score: sc}
		}
	}
	if m.Index < 0 || m.Score < s.Threshold || m.Score <= 0 {
		return m, false
	}
	return m, true
}

// Classify resolves every configured role. It never fails: roles below
// threshold fall back to anchor offsets when the anchor was detected, and
// to the family defaults otherwise.
func (c *Classifier) Classify(tables []document.Table) RoleIndexMap {
	cache := c.newCache(tables)
	detected := make(map[Role]Match, len(c.sigs))
	for _, r := range c.roles() {
		s, ok := c.sigs[r]
		if !ok {
			continue
		}
		if m, ok := c.best(cache, s); ok {
			detected[r] = m
		}
	}

	anchor, anchorOK := detected[c.cfg.Anchor]
	last := len(tables) - 1
	var out []entity.RoleAssignment
	for _, r := range c.roles() {
		if m, ok := detected[r]; ok {
			out = append(out, entity.RoleAssignment{Role: string(r), TableIndex: m.Index, Source: entity.RoleDetected, Score: m.Score})
			continue
		}
		if off, ok := c.cfg.Offsets[r]; ok && anchorOK && last >= 0 {
			idx := anchor.Index + off
			if idx > last {
				idx = last
			}
			out = append(out, entity.RoleAssignment{Role: string(r), TableIndex: idx, Source: entity.RoleFallback})
			continue
		}
		if d, ok := c.cfg.Defaults[r]; ok {
			out = append(out, entity.RoleAssignment{Role: string(r), TableIndex: d, Source: entity.RoleDefault})
		}
	}
	return NewRoleIndexMap(out...)
}

// roles lists every role this config mentions, canonical roles first.
func (c *Classifier) roles() []Role {
	seen := map[Role]bool{}
	var out []Role
	add := func(r Role) {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	for _, r := range AllRoles {
		_, s := c.cfg.Signatures[r]
		_, d := c.cfg.Defaults[r]
		_, o := c.cfg.Offsets[r]
		if s || d || o {
			add(r)
		}
	}
	var rest []Role
	for r := range c.cfg.Signatures {
		if !Known(r) {
			rest = append(rest, r)
		}
	}
	for r := range c.cfg.Defaults {
		if !Known(r) {
			rest = append(rest, r)
		}
	}
	sort.Slice(rest, func(i, j int) bool { return rest[i] < rest[j] })
	for _, r := range rest {
		add(r)
	}
	return out
}

// Best finds the single best table for a named extra signature.
func (c *Classifier) Best(tables []document.Table, name string) (Match, bool) {
	s, ok := c.extra[name]
	if !ok {
		return Match{Index: -1}, false
	}
	return c.best(c.newCache(tables), s)
}

// MatchAll returns every table meeting the threshold of a named extra
// signature, in document order.
func (c *Classifier) MatchAll(tables []document.Table, name string) []Match {
	s, ok := c.extra[name]
	if !ok {
		return nil
	}
	cache := c.newCache(tables)
	var out []Match
	for i := range tables {
		sc := c.scoreWith(cache, i, s)
		if sc > 0 && sc >= s.Threshold {
			out = append(out, Match{Index: i, Score: sc})
		}
	}
	return out
}
