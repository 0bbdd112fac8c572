package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/hashicorp/go-set/v3"
)

// Equal reports whether a and b are structurally equal: same kind, name and
// size, same kind-specific attributes, and pairwise equal referenced types in
// order. a and b may belong to different repositories.
//
// Every pair visited during one call is assumed equal from then on, so
// comparison terminates on cyclic graphs and visits each pair at most once.
// A mismatch anywhere aborts the whole call, so a false result always comes
// from a concrete mismatch.
func Equal(a, b Type) bool {
	c := newComparison(nil, false)
	return c.equal(a, b)
}

// Diff compares a and b like Equal and describes the first concrete mismatch.
// It returns nil when the types are equal.
func Diff(a, b Type) *Mismatch {
	c := newComparison(nil, true)
	c.root = a.Name()
	if c.equal(a, b) {
		return nil
	}
	return c.mismatch
}

// Mismatch locates a structural difference between two types.
type Mismatch struct {
	// Left and Right are the types at Path that differ.
	Left, Right Type
	// Path starts with the left root's name, followed by the field names
	// (or "<pointee>") leading to Left and Right.
	Path   []string
	Detail string
}

func (m *Mismatch) String() string {
	if len(m.Path) == 0 {
		return m.Detail
	}
	return strings.Join(m.Path, ".") + ": " + m.Detail
}

type typePair struct {
	a, b Type
}

type comparison struct {
	memo     *Comparer
	assumed  *set.Set[typePair]
	mismatch *Mismatch
	root     string
	path     []string
	depth    int
	record   bool
}

func newComparison(memo *Comparer, record bool) *comparison {
	return &comparison{
		memo:    memo,
		assumed: set.New[typePair](8),
		record:  record,
	}
}

func (c *comparison) equal(a, b Type) bool {
	if a == b {
		return true
	}
	if !a.IsValid() || !b.IsValid() {
		return c.fail(a, b, "invalid type reference")
	}

	p := typePair{a, b}
	if c.assumed.Contains(p) {
		return true
	}
	if c.memo != nil {
		if eq, ok := c.memo.lookup(p); ok {
			if !eq {
				return c.fail(a, b, "differs (cached)")
			}
			return true
		}
	}

	c.assumed.Insert(p)
	c.depth++
	eq := c.compare(a, b)
	c.depth--

	if c.memo != nil {
		// A positive result below the root may rest on an assumption that
		// is refuted later; only the root's is final.
		if !eq || c.depth == 0 {
			c.memo.store(p, eq)
		}
	}
	return eq
}

func (c *comparison) compare(a, b Type) bool {
	na, nb := a.node(), b.node()

	if na.kind != nb.kind {
		return c.fail(a, b, fmt.Sprintf("kind %s != %s", na.kind, nb.kind))
	}
	if na.name != nb.name {
		return c.fail(a, b, fmt.Sprintf("name %q != %q", na.name, nb.name))
	}
	if na.size != nb.size {
		return c.fail(a, b, fmt.Sprintf("size %d != %d", na.size, nb.size))
	}

	switch na.kind {
	case KindBitfield:
		if na.bitLength != nb.bitLength {
			return c.fail(a, b, fmt.Sprintf("bit length %d != %d", na.bitLength, nb.bitLength))
		}
		if na.bitOffset != nb.bitOffset {
			return c.fail(a, b, fmt.Sprintf("bit offset %d != %d", na.bitOffset, nb.bitOffset))
		}

	case KindPointer:
		if na.flags != nb.flags {
			return c.fail(a, b, fmt.Sprintf("pointer flags %s != %s", na.flags, nb.flags))
		}
		c.push("<pointee>")
		eq := c.equal(Type{a.repo, na.pointee}, Type{b.repo, nb.pointee})
		c.pop()
		if !eq {
			return false
		}

	case KindUserDefined:
		if len(na.fields) != len(nb.fields) {
			return c.fail(a, b, fmt.Sprintf("field count %d != %d", len(na.fields), len(nb.fields)))
		}
		for i := range na.fields {
			fa, fb := na.fields[i], nb.fields[i]
			if fa.name != fb.name {
				return c.fail(a, b, fmt.Sprintf("field %d name %q != %q", i, fa.name, fb.name))
			}
			c.push(fa.name)
			if fa.offset != fb.offset {
				c.fail(a, b, fmt.Sprintf("offset %d != %d", fa.offset, fb.offset))
				c.pop()
				return false
			}
			if fa.flags != fb.flags {
				c.fail(a, b, fmt.Sprintf("flags %s != %s", fa.flags, fb.flags))
				c.pop()
				return false
			}
			eq := c.equal(Type{a.repo, fa.typ}, Type{b.repo, fb.typ})
			c.pop()
			if !eq {
				return false
			}
		}
	}
	return true
}

func (c *comparison) push(segment string) {
	if c.record {
		c.path = append(c.path, segment)
	}
}

func (c *comparison) pop() {
	if c.record {
		c.path = c.path[:len(c.path)-1]
	}
}

// fail records the first mismatch and returns false.
func (c *comparison) fail(a, b Type, detail string) bool {
	if c.record && c.mismatch == nil {
		path := make([]string, 0, len(c.path)+1)
		path = append(path, c.root)
		path = append(path, c.path...)
		c.mismatch = &Mismatch{
			Left:   a,
			Right:  b,
			Path:   path,
			Detail: detail,
		}
	}
	return false
}

// Comparer memoizes Equal results across calls. Results are only cached when
// both repositories are frozen. Safe for concurrent use.
type Comparer struct {
	results map[typePair]bool
	mu      sync.RWMutex
}

// NewComparer creates an empty memoizing comparer.
func NewComparer() *Comparer {
	return &Comparer{results: make(map[typePair]bool)}
}

// Equal returns Equal(a, b), reusing results of earlier comparisons.
func (cm *Comparer) Equal(a, b Type) bool {
	c := newComparison(cm, false)
	return c.equal(a, b)
}

// Len returns the number of cached results.
func (cm *Comparer) Len() int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.results)
}

func (cm *Comparer) lookup(p typePair) (eq, ok bool) {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	eq, ok = cm.results[p]
	return eq, ok
}

func (cm *Comparer) store(p typePair, eq bool) {
	if !p.a.repo.Frozen() || !p.b.repo.Frozen() {
		return
	}
	cm.mu.Lock()
	cm.results[p] = eq
	cm.results[typePair{p.b, p.a}] = eq
	cm.mu.Unlock()
}
