package types

// Variant is the closed set of kind-specific accessors.
type Variant interface {
	Basic | Bitfield | UserDefined | Pointer
}

// CastTo narrows t to the accessor V. It returns the zero V and false when t
// is invalid or of another kind.
//
//	if ptr, ok := types.CastTo[types.Pointer](t); ok {
//		_ = ptr.Pointee()
//	}
func CastTo[V Variant](t Type) (V, bool) {
	var v V
	var ok bool
	switch p := any(&v).(type) {
	case *Basic:
		*p, ok = t.AsBasic()
	case *Bitfield:
		*p, ok = t.AsBitfield()
	case *UserDefined:
		*p, ok = t.AsUserDefined()
	case *Pointer:
		*p, ok = t.AsPointer()
	}
	return v, ok
}

// AsBasic returns the Basic accessor if t is a basic type.
func (t Type) AsBasic() (Basic, bool) {
	if t.Kind() != KindBasic {
		return Basic{}, false
	}
	return Basic{t}, true
}

// AsBitfield returns the Bitfield accessor if t is a bitfield type.
func (t Type) AsBitfield() (Bitfield, bool) {
	if t.Kind() != KindBitfield {
		return Bitfield{}, false
	}
	return Bitfield{t}, true
}

// AsUserDefined returns the UserDefined accessor if t is a user-defined type.
func (t Type) AsUserDefined() (UserDefined, bool) {
	if t.Kind() != KindUserDefined {
		return UserDefined{}, false
	}
	return UserDefined{t}, true
}

// AsPointer returns the Pointer accessor if t is a pointer type.
func (t Type) AsPointer() (Pointer, bool) {
	if t.Kind() != KindPointer {
		return Pointer{}, false
	}
	return Pointer{t}, true
}
