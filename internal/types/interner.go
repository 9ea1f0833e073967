package types

import (
	"fmt"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid TypeID
	Unit    TypeID
	Bool    TypeID
	Int     TypeID
	Uint    TypeID
	Float   TypeID
	String  TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
type Interner struct {
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	structs  []StructInfo
	enums    []EnumInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 32),
	}
	in.structs = append(in.structs, StructInfo{}) // reserve 0 as invalid sentinel
	in.enums = append(in.enums, EnumInfo{})
	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Int = in.Intern(Type{Kind: KindInt})
	in.builtins.Uint = in.Intern(Type{Kind: KindUint})
	in.builtins.Float = in.Intern(Type{Kind: KindFloat})
	in.builtins.String = in.Intern(Type{Kind: KindString})
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// String renders a TypeID for dumps and error messages.
func (in *Interner) String(id TypeID) string {
	tt, ok := in.Lookup(id)
	if !ok {
		return "<invalid>"
	}
	switch tt.Kind {
	case KindUnit, KindBool, KindInt, KindUint, KindFloat, KindString:
		return tt.Kind.String()
	case KindRef:
		if tt.Mutable {
			return "&mut " + in.String(tt.Elem)
		}
		return "&" + in.String(tt.Elem)
	case KindRawPtr:
		return "*" + in.String(tt.Elem)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", in.String(tt.Elem), tt.Count)
	case KindSlice:
		return "[" + in.String(tt.Elem) + "]"
	case KindStruct:
		if info := in.structInfo(id); info != nil && info.Name != "" {
			return info.Name
		}
		return "struct"
	case KindEnum:
		if info := in.enumInfo(id); info != nil && info.Name != "" {
			return info.Name
		}
		return "enum"
	default:
		return tt.Kind.String()
	}
}

type typeKey struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32
	Mutable bool
	Payload uint32
}
