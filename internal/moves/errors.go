package moves

import (
	"fmt"

	"moveck/internal/mir"
)

// ErrorKind is the closed taxonomy of canonicalization failures. These mark
// place shapes the tree cannot yet represent; they must surface instead of
// silently degrading to a plain field step.
type ErrorKind uint8

const (
	// ErrBorrowedContent: dereference of a reference or raw pointer.
	ErrBorrowedContent ErrorKind = iota
	// ErrNontrivialADT: downcast into an enum with nontrivial representation.
	ErrNontrivialADT
	// ErrSliceElem: index into a slice.
	ErrSliceElem
	// ErrArrayElem: index into a fixed-size array.
	ErrArrayElem
	// ErrIllegalProjection: the projection does not type-check against the
	// prefix place at all.
	ErrIllegalProjection
	// ErrCallTerminator: call argument/destination gathering is not
	// implemented yet.
	ErrCallTerminator
)

func (k ErrorKind) String() string {
	switch k {
	case ErrBorrowedContent:
		return "cannot move out of borrowed content"
	case ErrNontrivialADT:
		return "cannot move out of an enum with nontrivial representation"
	case ErrSliceElem:
		return "cannot move out of a slice element"
	case ErrArrayElem:
		return "cannot move out of an array element"
	case ErrIllegalProjection:
		return "projection does not type-check"
	case ErrCallTerminator:
		return "call terminators are not supported yet"
	default:
		return fmt.Sprintf("ErrorKind(%d)", k)
	}
}

// MoveError is a canonicalization failure during the gather pass. It is not
// a user-facing diagnostic; a later formatting stage turns it into one.
type MoveError struct {
	Kind  ErrorKind
	Place mir.Place
	Loc   mir.Location
}

func (e *MoveError) Error() string {
	if e.Kind == ErrCallTerminator {
		return fmt.Sprintf("%s: %s", e.Loc, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.Loc, e.Place, e.Kind)
}
