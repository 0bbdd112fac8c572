package types

import "fmt"

// TypeID identifies a node within its Repository. IDs are assigned in
// insertion order starting at 1; 0 is never a valid ID.
type TypeID uint32

// Type is a non-owning handle to a node in a Repository.
// Handles are comparable and can be used as map keys; two handles are == only
// when they denote the same node. Use Equal for structural comparison.
// The zero Type is invalid.
type Type struct {
	repo *Repository
	id   TypeID
}

// node is the tagged union stored in the arena. Which fields are meaningful
// depends on kind.
type node struct {
	name      string
	fields    []fieldData
	size      uint64
	pointee   TypeID
	bitLength uint32
	bitOffset uint32
	kind      Kind
	flags     Flags
	complete  bool
}

// fieldData is the arena form of a Field: the referenced type is stored by ID.
type fieldData struct {
	name   string
	offset uint64
	typ    TypeID
	flags  Flags
}

// IsValid reports whether t refers to a node.
func (t Type) IsValid() bool {
	return t.repo != nil && t.id != 0 && int(t.id) <= len(t.repo.nodes)
}

// ID returns the node's identity within its repository.
func (t Type) ID() TypeID {
	return t.id
}

// Repository returns the arena owning the node.
func (t Type) Repository() *Repository {
	return t.repo
}

func (t Type) node() *node {
	return &t.repo.nodes[t.id-1]
}

// Kind returns the node's discriminant, or KindInvalid for an invalid handle.
func (t Type) Kind() Kind {
	if !t.IsValid() {
		return KindInvalid
	}
	return t.node().kind
}

// Name returns the display name.
func (t Type) Name() string {
	if !t.IsValid() {
		return ""
	}
	return t.node().name
}

// Size returns the size in storage units.
func (t Type) Size() uint64 {
	if !t.IsValid() {
		return 0
	}
	return t.node().size
}

// String returns a short description, e.g. "udt foo (10)".
func (t Type) String() string {
	if !t.IsValid() {
		return "<invalid>"
	}
	n := t.node()
	return fmt.Sprintf("%s %s (%d)", n.kind, n.name, n.size)
}

// Field is one member of a user-defined type.
// Offsets are byte offsets and may overlap (unions) or be out of order.
type Field struct {
	Type   Type
	Name   string
	Offset uint64
	Flags  Flags
}

// IsConst reports whether the field is const-qualified.
func (f Field) IsConst() bool {
	return f.Flags.IsConst()
}

// IsVolatile reports whether the field is volatile-qualified.
func (f Field) IsVolatile() bool {
	return f.Flags.IsVolatile()
}

// Basic is the accessor for a leaf type.
type Basic struct {
	Type
}

// Bitfield is the accessor for a bitfield type.
type Bitfield struct {
	Type
}

// BitLength returns the number of bits occupied.
func (b Bitfield) BitLength() uint32 {
	return b.node().bitLength
}

// BitOffset returns the position of the first bit within the storage unit.
func (b Bitfield) BitOffset() uint32 {
	return b.node().bitOffset
}

// UserDefined is the accessor for an aggregate type with ordered fields.
type UserDefined struct {
	Type
}

// IsComplete reports whether the field list has been set. Types created with
// AddUserDefined are always complete.
func (u UserDefined) IsComplete() bool {
	return u.node().complete
}

// NumFields returns the number of fields.
func (u UserDefined) NumFields() int {
	return len(u.node().fields)
}

// Field returns the field at index i.
func (u UserDefined) Field(i int) Field {
	fd := u.node().fields[i]
	return Field{
		Name:   fd.name,
		Offset: fd.offset,
		Flags:  fd.flags,
		Type:   Type{repo: u.repo, id: fd.typ},
	}
}

// Fields returns a copy of the field list in declaration order.
func (u UserDefined) Fields() []Field {
	n := u.node()
	fields := make([]Field, len(n.fields))
	for i := range n.fields {
		fields[i] = u.Field(i)
	}
	return fields
}

// Pointer is the accessor for a pointer type.
type Pointer struct {
	Type
}

// Flags returns the qualifiers of the pointer itself.
func (p Pointer) Flags() Flags {
	return p.node().flags
}

// IsConst reports whether the pointer is const-qualified.
func (p Pointer) IsConst() bool {
	return p.Flags().IsConst()
}

// IsVolatile reports whether the pointer is volatile-qualified.
func (p Pointer) IsVolatile() bool {
	return p.Flags().IsVolatile()
}

// Pointee returns the type pointed to.
func (p Pointer) Pointee() Type {
	return Type{repo: p.repo, id: p.node().pointee}
}
