package mir

import (
	"fmt"
	"slices"
	"strings"

	"moveck/internal/types"
)

// PlaceFor returns the projection-free place for a local.
func PlaceFor(local LocalID) Place {
	return Place{Local: local}
}

// Project returns a new place extending p by one projection element.
// The receiver's projection slice is never aliased.
func (p Place) Project(elem PlaceProj) Place {
	proj := make([]PlaceProj, 0, len(p.Proj)+1)
	proj = append(proj, p.Proj...)
	proj = append(proj, elem)
	return Place{Local: p.Local, Proj: proj}
}

// PopProjection splits p into its prefix place and final projection element.
// Reports false for a projection-free place.
func (p Place) PopProjection() (Place, PlaceProj, bool) {
	if len(p.Proj) == 0 {
		return p, PlaceProj{}, false
	}
	last := len(p.Proj) - 1
	return Place{Local: p.Local, Proj: p.Proj[:last]}, p.Proj[last], true
}

// Equal reports whether two places denote the same memory location.
func (p Place) Equal(o Place) bool {
	return p.Local == o.Local && slices.Equal(p.Proj, o.Proj)
}

func (p Place) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "_%d", p.Local)
	for _, elem := range p.Proj {
		switch elem.Kind {
		case PlaceProjField:
			fmt.Fprintf(&sb, ".%d", elem.FieldIdx)
		case PlaceProjDeref:
			out := sb.String()
			sb.Reset()
			sb.WriteString("(*" + out + ")")
		case PlaceProjIndex:
			fmt.Fprintf(&sb, "[_%d]", elem.IndexLocal)
		case PlaceProjDowncast:
			fmt.Fprintf(&sb, "@%s", elem.Variant)
		}
	}
	return sb.String()
}

// TyIn resolves the type of the place under the given body and interner,
// applying each projection in order. Field projections after a downcast
// resolve inside the downcast variant. Reports false when any step does not
// type-check.
func (p Place) TyIn(in *types.Interner, body *Body) (types.TypeID, bool) {
	if in == nil || body == nil || int(p.Local) < 0 || int(p.Local) >= len(body.Locals) {
		return types.NoTypeID, false
	}
	ty := body.Locals[p.Local].Type
	variant := ""
	for _, elem := range p.Proj {
		tt, ok := in.Lookup(ty)
		if !ok {
			return types.NoTypeID, false
		}
		switch elem.Kind {
		case PlaceProjField:
			if variant != "" {
				ty, ok = in.VariantFieldType(ty, variant, elem.FieldIdx)
			} else {
				ty, ok = in.FieldType(ty, elem.FieldIdx)
			}
			if !ok {
				return types.NoTypeID, false
			}
			variant = ""
		case PlaceProjDeref:
			if tt.Kind != types.KindRef && tt.Kind != types.KindRawPtr {
				return types.NoTypeID, false
			}
			ty = tt.Elem
			variant = ""
		case PlaceProjIndex:
			if tt.Kind != types.KindArray && tt.Kind != types.KindSlice {
				return types.NoTypeID, false
			}
			ty = tt.Elem
			variant = ""
		case PlaceProjDowncast:
			if tt.Kind != types.KindEnum {
				return types.NoTypeID, false
			}
			variant = elem.Variant
		}
	}
	return ty, true
}
