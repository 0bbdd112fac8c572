package types

import (
	"encoding/binary"

	"github.com/hashicorp/go-set/v3"
)

// subgraph is the part of a repository reachable from one root, with every
// node assigned to a structural equivalence class. Two nodes share a class
// iff Equal would report them equal.
type subgraph struct {
	repo    *Repository
	ids     []TypeID // local index -> node
	succ    [][]int  // local index -> referenced local indices, in field order
	class   []int    // local index -> class
	rep     []int    // class -> representative local index
	classes int
}

func newSubgraph(root Type) *subgraph {
	g := &subgraph{repo: root.repo}
	g.collect(root.id)
	g.refine()
	return g
}

// collect walks the references reachable from root breadth-first.
func (g *subgraph) collect(root TypeID) {
	index := make(map[TypeID]int)
	seen := set.New[TypeID](16)

	visit := func(id TypeID) int {
		if seen.Insert(id) {
			index[id] = len(g.ids)
			g.ids = append(g.ids, id)
			g.succ = append(g.succ, nil)
		}
		return index[id]
	}

	visit(root)
	for i := 0; i < len(g.ids); i++ {
		n := g.node(i)
		switch n.kind {
		case KindPointer:
			j := visit(n.pointee)
			g.succ[i] = append(g.succ[i], j)
		case KindUserDefined:
			for _, f := range n.fields {
				j := visit(f.typ)
				g.succ[i] = append(g.succ[i], j)
			}
		}
	}
}

func (g *subgraph) node(i int) *node {
	return &g.repo.nodes[g.ids[i]-1]
}

// refine computes the coarsest partition where members of a class have the
// same local signature and, position by position, successors in the same
// classes. Each round splits classes by (class, successor classes) until the
// class count stops growing.
func (g *subgraph) refine() {
	keys := make([][]byte, len(g.ids))
	for i := range g.ids {
		keys[i] = appendSignature(nil, g.node(i))
	}
	g.assign(keys)

	for {
		before := g.classes
		for i := range g.ids {
			key := binary.AppendUvarint(keys[i][:0], uint64(g.class[i]))
			for _, j := range g.succ[i] {
				key = binary.AppendUvarint(key, uint64(g.class[j]))
			}
			keys[i] = key
		}
		g.assign(keys)
		if g.classes == before {
			return
		}
	}
}

func (g *subgraph) assign(keys [][]byte) {
	byKey := make(map[string]int, len(keys))
	g.class = make([]int, len(keys))
	g.rep = g.rep[:0]
	for i, k := range keys {
		c, ok := byKey[string(k)]
		if !ok {
			c = len(g.rep)
			byKey[string(k)] = c
			g.rep = append(g.rep, i)
		}
		g.class[i] = c
	}
	g.classes = len(g.rep)
}

// appendSignature encodes everything about n except the identity of the
// types it references.
func appendSignature(buf []byte, n *node) []byte {
	buf = append(buf, byte(n.kind), byte(n.flags))
	buf = appendString(buf, n.name)
	buf = binary.AppendUvarint(buf, n.size)
	buf = binary.AppendUvarint(buf, uint64(n.bitLength))
	buf = binary.AppendUvarint(buf, uint64(n.bitOffset))
	buf = binary.AppendUvarint(buf, uint64(len(n.fields)))
	for _, f := range n.fields {
		buf = appendString(buf, f.name)
		buf = binary.AppendUvarint(buf, f.offset)
		buf = append(buf, byte(f.flags))
	}
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
