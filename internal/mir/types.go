package mir

import "moveck/internal/types"

type BlockID int32
type LocalID int32

const (
	NoBlockID BlockID = -1
	NoLocalID LocalID = -1
)

type Local struct {
	Name  string
	Type  types.TypeID
	IsArg bool
}

type PlaceProjKind uint8

const (
	PlaceProjField PlaceProjKind = iota
	PlaceProjDeref
	PlaceProjIndex
	PlaceProjDowncast
)

// PlaceProj is a single projection element. It is a comparable value so that
// (path, element) pairs can key memoization maps directly.
type PlaceProj struct {
	Kind PlaceProjKind

	FieldIdx   int     // for PlaceProjField
	IndexLocal LocalID // for PlaceProjIndex
	Variant    string  // for PlaceProjDowncast
}

// Place is a base local plus an ordered projection chain. Two places denote
// the same memory location iff base and full chain match.
type Place struct {
	Local LocalID
	Proj  []PlaceProj
}

func (p Place) IsValid() bool {
	return p.Local != NoLocalID
}
