package types

import "strings"

// Kind is the discriminant of a type node. It is fixed at construction.
type Kind uint8

const (
	// KindInvalid is only reported by the zero Type handle; no node has it.
	KindInvalid Kind = iota
	KindBasic
	KindBitfield
	KindUserDefined
	KindPointer
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindBitfield:
		return "bitfield"
	case KindUserDefined:
		return "udt"
	case KindPointer:
		return "pointer"
	default:
		return "invalid"
	}
}

// Flags are the cv-qualifiers of a pointer or a user-defined type's field.
type Flags uint8

const (
	FlagConst Flags = 1 << iota
	FlagVolatile

	FlagNone Flags = 0
	flagMask       = FlagConst | FlagVolatile
)

// IsConst reports whether the const qualifier is set.
func (f Flags) IsConst() bool {
	return f&FlagConst != 0
}

// IsVolatile reports whether the volatile qualifier is set.
func (f Flags) IsVolatile() bool {
	return f&FlagVolatile != 0
}

func (f Flags) String() string {
	if f == FlagNone {
		return "none"
	}
	var parts []string
	if f.IsConst() {
		parts = append(parts, "const")
	}
	if f.IsVolatile() {
		parts = append(parts, "volatile")
	}
	if f&^flagMask != 0 {
		parts = append(parts, "unknown")
	}
	return strings.Join(parts, " ")
}
