package types

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kindSet creates one node of every kind in a fresh repository.
func kindSet(t *testing.T) []Type {
	t.Helper()
	var out []Type
	build(t, func(b *builder) Type {
		basic := b.basic("basic", 4)
		out = []Type{
			basic,
			b.bitfield("bitfield", 4, 1, 3),
			b.udt("udt", 8, Field{Name: "one", Type: basic}),
			b.pointer("pointer", 4, FlagNone, basic),
		}
		return basic
	})
	return out
}

func TestEqual_KindMatrix(t *testing.T) {
	left := kindSet(t)
	right := kindSet(t)

	for i, a := range left {
		for j := range left {
			assert.Equal(t, i == j, Equal(a, left[j]), "same repo %s vs %s", a, left[j])
			assert.Equal(t, i == j, Equal(a, right[j]), "cross repo %s vs %s", a, right[j])
			assert.Equal(t, Equal(a, right[j]), Equal(right[j], a), "symmetry")
		}
	}
}

func TestEqual_Attributes(t *testing.T) {
	tests := []struct {
		name string
		make func(b *builder) Type
	}{
		{"basic name", func(b *builder) Type { return b.basic("other", 4) }},
		{"basic size", func(b *builder) Type { return b.basic("basic", 8) }},
		{"bitfield length", func(b *builder) Type { return b.bitfield("basic", 4, 2, 0) }},
		{"pointer flags", func(b *builder) Type {
			return b.pointer("ptr", 4, FlagConst, b.basic("basic", 4))
		}},
		{"pointer size", func(b *builder) Type {
			return b.pointer("ptr", 8, FlagNone, b.basic("basic", 4))
		}},
		{"pointee", func(b *builder) Type {
			return b.pointer("ptr", 4, FlagNone, b.basic("other", 4))
		}},
		{"field offset", func(b *builder) Type {
			return b.udt("s", 8, Field{Name: "x", Offset: 4, Type: b.basic("basic", 4)})
		}},
		{"field flags", func(b *builder) Type {
			return b.udt("s", 8, Field{Name: "x", Flags: FlagVolatile, Type: b.basic("basic", 4)})
		}},
		{"field type", func(b *builder) Type {
			return b.udt("s", 8, Field{Name: "x", Type: b.basic("other", 4)})
		}},
	}

	refs := map[string]func(b *builder) Type{
		"basic":    func(b *builder) Type { return b.basic("basic", 4) },
		"bitfield": func(b *builder) Type { return b.bitfield("basic", 4, 1, 0) },
		"pointer": func(b *builder) Type {
			return b.pointer("ptr", 4, FlagNone, b.basic("basic", 4))
		},
		"udt": func(b *builder) Type {
			return b.udt("s", 8, Field{Name: "x", Type: b.basic("basic", 4)})
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			changed := build(t, tt.make)
			ref := build(t, refs[changed.Kind().String()])
			assert.True(t, Equal(ref, build(t, refs[changed.Kind().String()])))
			assert.False(t, Equal(ref, changed))
			assert.False(t, Equal(changed, ref))
		})
	}
}

func TestEqual_FieldOrderMatters(t *testing.T) {
	xy := build(t, func(b *builder) Type {
		return b.udt("s", 8,
			Field{Name: "x", Offset: 0, Type: b.basic("int", 4)},
			Field{Name: "y", Offset: 4, Type: b.basic("int", 4)})
	})
	yx := build(t, func(b *builder) Type {
		return b.udt("s", 8,
			Field{Name: "y", Offset: 4, Type: b.basic("int", 4)},
			Field{Name: "x", Offset: 0, Type: b.basic("int", 4)})
	})
	assert.False(t, Equal(xy, yx))
}

func TestEqual_InvalidHandle(t *testing.T) {
	repo := NewRepository()
	int4, _ := repo.AddBasic("int", 4)

	assert.False(t, Equal(int4, Type{}))
	assert.False(t, Equal(Type{}, int4))
	assert.True(t, Equal(int4, int4))
}

// mutual builds "A { b *B }" and "B { a *A; v leaf }" and returns A.
func mutual(t *testing.T, leaf string) Type {
	t.Helper()
	repo := NewRepository()
	a, err := repo.DeclareUserDefined("A", 4)
	require.NoError(t, err)
	b, err := repo.DeclareUserDefined("B", 8)
	require.NoError(t, err)
	pa, _ := repo.AddPointer("A*", 4, FlagNone, a)
	pb, _ := repo.AddPointer("B*", 4, FlagNone, b)
	v, _ := repo.AddBasic(leaf, 4)

	require.NoError(t, repo.CompleteUserDefined(a, []Field{{Name: "b", Type: pb}}))
	require.NoError(t, repo.CompleteUserDefined(b, []Field{
		{Name: "a", Type: pa},
		{Name: "v", Offset: 4, Type: v},
	}))
	require.NoError(t, repo.Freeze())
	return a
}

func TestEqual_Cycles(t *testing.T) {
	assert.True(t, Equal(selfList(t, "Node"), selfList(t, "Node")))
	assert.False(t, Equal(selfList(t, "Node"), selfList(t, "Node2")))

	assert.True(t, Equal(mutual(t, "int"), mutual(t, "int")))
	assert.False(t, Equal(mutual(t, "int"), mutual(t, "uint")))

	left, right := mutual(t, "int"), mutual(t, "int")
	assert.Equal(t, Hash(left), Hash(right))
}

func TestDiff_FieldOffset(t *testing.T) {
	foo := func(second uint64) Type {
		return build(t, func(b *builder) Type {
			i := b.basic("int", 4)
			return b.udt("foo", 12,
				Field{Name: "one", Offset: 0, Type: i},
				Field{Name: "two", Offset: second, Type: i})
		})
	}

	a, b := foo(4), foo(8)
	m := Diff(a, b)
	require.NotNil(t, m)
	assert.Equal(t, []string{"foo", "two"}, m.Path)
	assert.Equal(t, "offset 4 != 8", m.Detail)
	assert.Equal(t, a, m.Left)
	assert.Equal(t, b, m.Right)
	assert.Equal(t, "foo.two: offset 4 != 8", m.String())

	assert.Nil(t, Diff(a, foo(4)))
}

func TestDiff_Pointee(t *testing.T) {
	ptr := func(pointee string) Type {
		return build(t, func(b *builder) Type {
			return b.pointer("void*", 4, FlagNone, b.basic(pointee, 0))
		})
	}

	m := Diff(ptr("void"), ptr("void2"))
	require.NotNil(t, m)
	assert.Equal(t, []string{"void*", "<pointee>"}, m.Path)
	assert.Equal(t, `name "void" != "void2"`, m.Detail)
	assert.Equal(t, "void", m.Left.Name())
	assert.Equal(t, "void2", m.Right.Name())
}

func TestDiff_Nested(t *testing.T) {
	m := Diff(mutual(t, "int"), mutual(t, "uint"))
	require.NotNil(t, m)
	assert.Equal(t, []string{"A", "b", "<pointee>", "v"}, m.Path)
	assert.Equal(t, `name "int" != "uint"`, m.Detail)
}

func TestEqual_SharedSubtypes(t *testing.T) {
	a, b := ladder(t, 64, "int"), ladder(t, 64, "int")
	changed := ladder(t, 64, "uint")

	within(t, 5*time.Second, func() {
		assert.True(t, Equal(a, b))
		assert.False(t, Equal(a, changed))
		assert.True(t, NewComparer().Equal(a, b))

		m := Diff(a, changed)
		if assert.NotNil(t, m) {
			assert.Len(t, m.Path, 65)
			assert.Equal(t, `name "int" != "uint"`, m.Detail)
		}
	})
}

func TestComparer(t *testing.T) {
	cm := NewComparer()
	a, b := selfList(t, "Node"), selfList(t, "Node")

	assert.True(t, cm.Equal(a, b))
	// Only the root pair is final, stored in both orders.
	assert.Equal(t, 2, cm.Len())
	assert.True(t, cm.Equal(b, a))
	assert.Equal(t, 2, cm.Len())

	assert.False(t, cm.Equal(a, selfList(t, "Other")))
	assert.Equal(t, 4, cm.Len())

	open := NewRepository()
	int4, _ := open.AddBasic("int", 4)
	int4b, _ := open.AddBasic("int", 4)
	assert.True(t, cm.Equal(int4, int4b))
	assert.Equal(t, 4, cm.Len(), "unfrozen results are not cached")
}

func TestComparer_ConsistentWithEqual(t *testing.T) {
	left := append(kindSet(t), mutual(t, "int"), selfList(t, "Node"))
	right := append(kindSet(t), mutual(t, "int"), selfList(t, "Node"))
	require.NoError(t, left[0].Repository().Freeze())
	require.NoError(t, right[0].Repository().Freeze())

	cm := NewComparer()
	for range 2 {
		for _, a := range left {
			for _, b := range right {
				assert.Equal(t, Equal(a, b), cm.Equal(a, b), "%s vs %s", a, b)
			}
		}
	}
}

func TestEqual_ConcurrentReaders(t *testing.T) {
	a, b := mutual(t, "int"), mutual(t, "int")
	cm := NewComparer()

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for i := range 64 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var eq bool
			if i%2 == 0 {
				eq = Equal(a, b)
			} else {
				eq = cm.Equal(a, b)
			}
			if !eq {
				errs <- "structurally equal types compared unequal"
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
}
