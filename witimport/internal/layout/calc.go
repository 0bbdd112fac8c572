package layout

import (
	"go.bytecodealliance.org/wit"
)

// Info is the Canonical ABI memory layout of a WIT type.
type Info struct {
	// Offsets holds record field or tuple element offsets in declaration
	// order. nil for other kinds.
	Offsets []uint32
	Size    uint32
	Align   uint32
	// Payload is the offset of the case payload in variants, options and
	// results. 0 for other kinds.
	Payload uint32
}

// Calculator computes layouts, caching per type definition. Not safe for
// concurrent use.
type Calculator struct {
	cache   map[*wit.TypeDef]Info
	ptrSize uint32
}

// NewCalculator creates a calculator for a linear memory with the given
// pointer size in bytes. 0 means 4 (wasm32).
func NewCalculator(ptrSize uint32) *Calculator {
	if ptrSize == 0 {
		ptrSize = 4
	}
	return &Calculator{
		cache:   make(map[*wit.TypeDef]Info),
		ptrSize: ptrSize,
	}
}

// PointerSize returns the configured pointer size.
func (c *Calculator) PointerSize() uint32 {
	return c.ptrSize
}

func (c *Calculator) Calculate(t wit.Type) Info {
	switch typ := t.(type) {
	case wit.U8, wit.S8, wit.Bool:
		return Info{Size: 1, Align: 1}
	case wit.U16, wit.S16:
		return Info{Size: 2, Align: 2}
	case wit.U32, wit.S32, wit.F32, wit.Char:
		return Info{Size: 4, Align: 4}
	case wit.U64, wit.S64, wit.F64:
		return Info{Size: 8, Align: 8}
	case wit.String:
		return c.slice()
	case *wit.TypeDef:
		return c.calculateTypeDef(typ)
	default:
		return Info{Size: 0, Align: 1}
	}
}

// slice is the (ptr, len) pair used by strings and lists.
func (c *Calculator) slice() Info {
	return Info{
		Size:    AlignTo(c.ptrSize+4, c.ptrSize),
		Align:   c.ptrSize,
		Offsets: []uint32{0, c.ptrSize},
	}
}

func (c *Calculator) calculateTypeDef(t *wit.TypeDef) Info {
	if cached, ok := c.cache[t]; ok {
		return cached
	}

	var info Info

	switch kind := t.Kind.(type) {
	case *wit.Record:
		types := make([]wit.Type, len(kind.Fields))
		for i, f := range kind.Fields {
			types[i] = f.Type
		}
		info = c.sequence(types)
	case *wit.Tuple:
		info = c.sequence(kind.Types)
	case *wit.Variant:
		payloads := make([]wit.Type, len(kind.Cases))
		for i, cs := range kind.Cases {
			payloads[i] = cs.Type
		}
		info = c.union(len(kind.Cases), payloads)
	case *wit.Option:
		info = c.union(2, []wit.Type{nil, kind.Type})
	case *wit.Result:
		info = c.union(2, []wit.Type{kind.OK, kind.Err})
	case *wit.Enum:
		size := DiscriminantSize(len(kind.Cases))
		info = Info{Size: size, Align: size}
	case *wit.Flags:
		info = c.calculateFlags(kind)
	case *wit.List:
		info = c.slice()
	case *wit.Own, *wit.Borrow:
		info = Info{Size: 4, Align: 4}
	case wit.Type:
		info = c.Calculate(kind)
	default:
		info = Info{Size: 0, Align: 1}
	}

	c.cache[t] = info
	return info
}

// sequence lays out record fields and tuple elements one after another.
func (c *Calculator) sequence(elems []wit.Type) Info {
	if len(elems) == 0 {
		return Info{Size: 0, Align: 1}
	}

	offsets := make([]uint32, len(elems))
	maxAlign := uint32(1)
	offset := uint32(0)

	for i, typ := range elems {
		elem := c.Calculate(typ)
		offset = AlignTo(offset, elem.Align)
		offsets[i] = offset

		if elem.Align > maxAlign {
			maxAlign = elem.Align
		}
		offset += elem.Size
	}

	return Info{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}

// union lays out a discriminant followed by the largest payload. nil
// payloads carry no data.
func (c *Calculator) union(numCases int, payloads []wit.Type) Info {
	if numCases == 0 {
		return Info{Size: 0, Align: 1}
	}

	discSize := DiscriminantSize(numCases)
	maxAlign := discSize
	maxSize := uint32(0)

	for _, p := range payloads {
		if p == nil {
			continue
		}
		payload := c.Calculate(p)
		if payload.Align > maxAlign {
			maxAlign = payload.Align
		}
		if payload.Size > maxSize {
			maxSize = payload.Size
		}
	}

	payloadOffset := AlignTo(discSize, maxAlign)
	return Info{
		Size:    AlignTo(payloadOffset+maxSize, maxAlign),
		Align:   maxAlign,
		Payload: payloadOffset,
	}
}

func (c *Calculator) calculateFlags(f *wit.Flags) Info {
	numFlags := len(f.Flags)

	switch {
	case numFlags == 0:
		return Info{Size: 0, Align: 1}
	case numFlags <= 8:
		return Info{Size: 1, Align: 1}
	case numFlags <= 16:
		return Info{Size: 2, Align: 2}
	case numFlags <= 32:
		return Info{Size: 4, Align: 4}
	case numFlags <= 64:
		return Info{Size: 8, Align: 8}
	}

	// past 64 flags the storage is a run of u32 words
	return Info{Size: uint32((numFlags+31)/32) * 4, Align: 4}
}

// FlagUnit returns the size in bytes of the storage unit that holds a
// flag set of the given size.
func FlagUnit(numFlags int) uint32 {
	switch {
	case numFlags <= 8:
		return 1
	case numFlags <= 16:
		return 2
	case numFlags <= 32:
		return 4
	case numFlags <= 64:
		return 8
	}
	return 4
}

// AlignTo rounds offset up to a multiple of align, which must be a power of
// two. align 0 leaves offset unchanged.
func AlignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// DiscriminantSize returns the byte width of a variant or enum tag.
func DiscriminantSize(numCases int) uint32 {
	if numCases <= 256 {
		return 1
	} else if numCases <= 65536 {
		return 2
	}
	return 4
}
