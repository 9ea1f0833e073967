package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindBool
	KindInt
	KindUint
	KindFloat
	KindString
	KindRef
	KindRawPtr
	KindArray
	KindSlice
	KindStruct
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindRef:
		return "ref"
	case KindRawPtr:
		return "rawptr"
	case KindArray:
		return "array"
	case KindSlice:
		return "slice"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // for fixed-size arrays
	Mutable bool   // for references
	Payload uint32 // side-table slot for structs/enums
}

// Descriptor helpers ---------------------------------------------------------

// MakeRef describes &T or &mut T depending on the mutable flag.
func MakeRef(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable}
}

// MakeRawPtr describes a raw pointer to T.
func MakeRawPtr(elem TypeID) Type {
	return Type{Kind: KindRawPtr, Elem: elem}
}

// MakeArray describes a fixed-size array of element type.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeSlice describes a dynamically-sized slice of element type.
func MakeSlice(elem TypeID) Type {
	return Type{Kind: KindSlice, Elem: elem}
}
