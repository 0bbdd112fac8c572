package dedup

import (
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/typegraph/types"
)

// Options configures an Index.
type Options struct {
	// Logger receives a debug entry for every merged duplicate. nil means
	// no logging.
	Logger *zap.Logger
	// Memoize caches hashes and comparison results for frozen repositories.
	Memoize bool
}

// DefaultOptions returns the default index configuration.
func DefaultOptions() Options {
	return Options{
		Memoize: true,
	}
}

// Group is one structural equivalence class.
type Group struct {
	// Canonical is the first inserted member.
	Canonical types.Type
	// Members lists every inserted type of the class in insertion order,
	// Canonical first.
	Members []types.Type
	Hash    uint64
}

type class struct {
	members []types.Type
	hash    uint64
}

func (c *class) canonical() types.Type {
	return c.members[0]
}

// Index collapses structurally equal types, possibly from different
// repositories, onto one canonical representative. Buckets are keyed by
// structural hash and resolved with structural equality. Thread-safe.
type Index struct {
	buckets  map[uint64][]*class
	members  map[types.Type]*class
	classes  []*class
	hasher   *types.Hasher
	comparer *types.Comparer
	logger   *zap.Logger
	mu       sync.RWMutex
}

// New creates an empty index.
func New(opts Options) *Index {
	idx := &Index{
		buckets: make(map[uint64][]*class),
		members: make(map[types.Type]*class),
		logger:  opts.Logger,
	}
	if idx.logger == nil {
		idx.logger = zap.NewNop()
	}
	if opts.Memoize {
		idx.hasher = types.NewHasher()
		idx.comparer = types.NewComparer()
	}
	return idx
}

// NewWithDefaults creates an empty index with default options.
func NewWithDefaults() *Index {
	return New(DefaultOptions())
}

// Insert adds t and returns the canonical representative of its class.
// inserted is true when t started a new class. Inserting the same handle
// twice is a no-op. The zero Type is ignored.
func (x *Index) Insert(t types.Type) (canonical types.Type, inserted bool) {
	if !t.IsValid() {
		return types.Type{}, false
	}

	h := x.hash(t)

	x.mu.Lock()
	defer x.mu.Unlock()

	if c, ok := x.members[t]; ok {
		return c.canonical(), false
	}
	if c := x.find(h, t); c != nil {
		c.members = append(c.members, t)
		x.members[t] = c
		x.logger.Debug("merged duplicate type",
			zap.Stringer("type", t),
			zap.Stringer("canonical", c.canonical()),
			zap.Uint64("hash", h))
		return c.canonical(), false
	}

	c := &class{members: []types.Type{t}, hash: h}
	x.buckets[h] = append(x.buckets[h], c)
	x.members[t] = c
	x.classes = append(x.classes, c)
	return t, true
}

// Lookup returns the canonical representative of t's class without
// inserting t.
func (x *Index) Lookup(t types.Type) (types.Type, bool) {
	if !t.IsValid() {
		return types.Type{}, false
	}

	x.mu.RLock()
	c, ok := x.members[t]
	x.mu.RUnlock()
	if ok {
		return c.canonical(), true
	}

	h := x.hash(t)

	x.mu.RLock()
	defer x.mu.RUnlock()
	if c := x.find(h, t); c != nil {
		return c.canonical(), true
	}
	return types.Type{}, false
}

// Contains reports whether a type structurally equal to t was inserted.
func (x *Index) Contains(t types.Type) bool {
	_, ok := x.Lookup(t)
	return ok
}

// Len returns the number of distinct classes.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.classes)
}

// Groups returns the classes with more than one member, ordered by the
// insertion of their canonical type.
func (x *Index) Groups() []Group {
	x.mu.RLock()
	defer x.mu.RUnlock()

	var out []Group
	for _, c := range x.classes {
		if len(c.members) < 2 {
			continue
		}
		out = append(out, Group{
			Canonical: c.canonical(),
			Members:   append([]types.Type(nil), c.members...),
			Hash:      c.hash,
		})
	}
	return out
}

// find scans the bucket for h. Callers hold x.mu.
func (x *Index) find(h uint64, t types.Type) *class {
	for _, c := range x.buckets[h] {
		if x.equal(c.canonical(), t) {
			return c
		}
	}
	return nil
}

func (x *Index) hash(t types.Type) uint64 {
	if x.hasher != nil {
		return x.hasher.Hash(t)
	}
	return types.Hash(t)
}

func (x *Index) equal(a, b types.Type) bool {
	if x.comparer != nil {
		return x.comparer.Equal(a, b)
	}
	return types.Equal(a, b)
}
