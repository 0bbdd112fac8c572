package types

import (
	"encoding/binary"
	"sync"

	"github.com/cespare/xxhash/v2"
)

const (
	tagNode    byte = 0x01
	tagReentry byte = 0x02
	tagField   byte = 0x03
)

// Hash returns the structural hash of t. Types for which Equal reports true
// always have the same hash. The result depends only on declared structure
// and is stable across processes. The zero Type hashes to 0.
//
// Each structural class is expanded once per call. Reaching a class again
// contributes its first-visit index and its kind, name and size, so shared
// and cyclic substructure costs time proportional to the graph size.
func Hash(t Type) uint64 {
	if !t.IsValid() {
		return 0
	}
	h := hashWalker{
		g:       newSubgraph(t),
		digest:  xxhash.New(),
		visited: make(map[int]uint64),
	}
	h.walk(0)
	return h.digest.Sum64()
}

// hashWalker walks equivalence classes rather than nodes so that graphs which
// only differ in how far a cycle is unrolled, or in how often a subtype is
// instantiated, produce the same digest. Visit indices follow field order, so
// they are the same for any two equal roots.
type hashWalker struct {
	g       *subgraph
	digest  *xxhash.Digest
	visited map[int]uint64 // class -> first-visit index
	scratch []byte
}

// walk hashes the class of the node at local index i.
func (h *hashWalker) walk(i int) {
	c := h.g.class[i]
	rep := h.g.rep[c]
	n := h.g.node(rep)

	if index, ok := h.visited[c]; ok {
		h.writeByte(tagReentry)
		h.writeUint(index)
		h.writeShallow(n)
		return
	}
	h.visited[c] = uint64(len(h.visited))

	h.writeByte(tagNode)
	h.writeShallow(n)

	switch n.kind {
	case KindBitfield:
		h.writeUint(uint64(n.bitLength))
		h.writeUint(uint64(n.bitOffset))
	case KindPointer:
		h.writeByte(byte(n.flags))
		h.walk(h.g.succ[rep][0])
	case KindUserDefined:
		h.writeUint(uint64(len(n.fields)))
		for k, f := range n.fields {
			h.writeByte(tagField)
			h.writeString(f.name)
			h.writeUint(f.offset)
			h.writeByte(byte(f.flags))
			h.walk(h.g.succ[rep][k])
		}
	}
}

func (h *hashWalker) writeShallow(n *node) {
	h.writeByte(byte(n.kind))
	h.writeString(n.name)
	h.writeUint(n.size)
}

func (h *hashWalker) writeByte(b byte) {
	h.scratch = append(h.scratch[:0], b)
	_, _ = h.digest.Write(h.scratch)
}

func (h *hashWalker) writeUint(v uint64) {
	h.scratch = binary.LittleEndian.AppendUint64(h.scratch[:0], v)
	_, _ = h.digest.Write(h.scratch)
}

func (h *hashWalker) writeString(s string) {
	h.writeUint(uint64(len(s)))
	_, _ = h.digest.WriteString(s)
}

// Hasher memoizes Hash results. Results are only cached for types whose
// repository is frozen. Safe for concurrent use.
type Hasher struct {
	cache map[Type]uint64
	mu    sync.RWMutex
}

// NewHasher creates an empty memoizing hasher.
func NewHasher() *Hasher {
	return &Hasher{cache: make(map[Type]uint64)}
}

// Hash returns Hash(t), consulting the cache first.
func (h *Hasher) Hash(t Type) uint64 {
	if !t.IsValid() || !t.repo.Frozen() {
		return Hash(t)
	}

	h.mu.RLock()
	v, ok := h.cache[t]
	h.mu.RUnlock()
	if ok {
		return v
	}

	v = Hash(t)
	h.mu.Lock()
	h.cache[t] = v
	h.mu.Unlock()
	return v
}

// Len returns the number of cached hashes.
func (h *Hasher) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.cache)
}
