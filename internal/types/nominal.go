package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StructField describes a single field inside a nominal struct type.
type StructField struct {
	Name string
	Type TypeID
}

// StructInfo stores metadata for a struct type.
type StructInfo struct {
	Name   string
	Fields []StructField
}

// EnumVariantInfo stores metadata for a single enum variant.
type EnumVariantInfo struct {
	Name   string
	Fields []TypeID
}

// EnumInfo stores metadata for an enum type.
type EnumInfo struct {
	Name     string
	Variants []EnumVariantInfo

	// NontrivialRepr marks enums whose payload layout prevents tracking
	// variant fields as independent memory locations.
	NontrivialRepr bool
}

// RegisterStruct allocates a nominal struct type slot and returns its TypeID.
func (in *Interner) RegisterStruct(name string) TypeID {
	slot := in.appendStructInfo(StructInfo{Name: name})
	return in.internRaw(Type{Kind: KindStruct, Payload: slot})
}

// SetStructFields stores the resolved field descriptors for the struct type.
func (in *Interner) SetStructFields(typeID TypeID, fields []StructField) {
	info := in.structInfo(typeID)
	if info == nil {
		return
	}
	info.Fields = slices.Clone(fields)
}

// StructInfo returns metadata for the provided struct TypeID.
func (in *Interner) StructInfo(typeID TypeID) (*StructInfo, bool) {
	info := in.structInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// StructFields returns a copy of struct fields for the TypeID.
func (in *Interner) StructFields(typeID TypeID) []StructField {
	info := in.structInfo(typeID)
	if info == nil || len(info.Fields) == 0 {
		return nil
	}
	return slices.Clone(info.Fields)
}

// FieldType returns the type of the idx-th field of a struct type.
func (in *Interner) FieldType(typeID TypeID, idx int) (TypeID, bool) {
	info := in.structInfo(typeID)
	if info == nil || idx < 0 || idx >= len(info.Fields) {
		return NoTypeID, false
	}
	return info.Fields[idx].Type, true
}

// RegisterEnum allocates a nominal enum type slot and returns its TypeID.
func (in *Interner) RegisterEnum(name string) TypeID {
	slot := in.appendEnumInfo(EnumInfo{Name: name})
	return in.internRaw(Type{Kind: KindEnum, Payload: slot})
}

// SetEnumVariants stores the resolved variants for the enum type.
func (in *Interner) SetEnumVariants(typeID TypeID, variants []EnumVariantInfo) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.Variants = slices.Clone(variants)
}

// SetEnumNontrivialRepr marks the enum as having a nontrivial representation.
func (in *Interner) SetEnumNontrivialRepr(typeID TypeID, nontrivial bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return
	}
	info.NontrivialRepr = nontrivial
}

// EnumInfo returns metadata for the provided enum TypeID.
func (in *Interner) EnumInfo(typeID TypeID) (*EnumInfo, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return nil, false
	}
	return info, true
}

// VariantFieldType returns the type of the idx-th field of the named variant.
func (in *Interner) VariantFieldType(typeID TypeID, variant string, idx int) (TypeID, bool) {
	info := in.enumInfo(typeID)
	if info == nil {
		return NoTypeID, false
	}
	for i := range info.Variants {
		v := &info.Variants[i]
		if v.Name != variant {
			continue
		}
		if idx < 0 || idx >= len(v.Fields) {
			return NoTypeID, false
		}
		return v.Fields[idx], true
	}
	return NoTypeID, false
}

func (in *Interner) structInfo(typeID TypeID) *StructInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindStruct {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.structs) {
		return nil
	}
	return &in.structs[tt.Payload]
}

func (in *Interner) enumInfo(typeID TypeID) *EnumInfo {
	if typeID == NoTypeID {
		return nil
	}
	tt, ok := in.Lookup(typeID)
	if !ok || tt.Kind != KindEnum {
		return nil
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.enums) {
		return nil
	}
	return &in.enums[tt.Payload]
}

func (in *Interner) appendStructInfo(info StructInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.structs))
	if err != nil {
		panic(fmt.Errorf("len(structs) overflow: %w", err))
	}
	in.structs = append(in.structs, info)
	return slot
}

func (in *Interner) appendEnumInfo(info EnumInfo) uint32 {
	slot, err := safecast.Conv[uint32](len(in.enums))
	if err != nil {
		panic(fmt.Errorf("len(enums) overflow: %w", err))
	}
	in.enums = append(in.enums, info)
	return slot
}
