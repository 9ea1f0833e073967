package moves

import (
	"moveck/internal/mir"
	"moveck/internal/types"
)

// Gather runs the single-pass walk over a body and returns its finalized
// MoveData. Blocks are visited in body order, statements in order, then the
// terminator, so the event order at any location is deterministic for a
// fixed body. The first canonicalization failure aborts the pass; the
// returned error is always a *MoveError.
//
// typesIn may be nil; deref and index projections are still refused by their
// shape alone, but field and downcast legality is not checked.
func Gather(body *mir.Body, typesIn *types.Interner) (*MoveData, error) {
	g := &gatherer{
		body:  body,
		types: typesIn,
		data:  newMoveData(body),
	}
	for i := range body.Blocks {
		bb := &body.Blocks[i]
		for j := range bb.Stmts {
			g.loc = mir.Location{Block: bb.ID, Stmt: j}
			if err := g.gatherStatement(&bb.Stmts[j]); err != nil {
				return nil, err
			}
		}
		g.loc = mir.Location{Block: bb.ID, Stmt: len(bb.Stmts)}
		if err := g.gatherTerminator(&bb.Term); err != nil {
			return nil, err
		}
	}
	return g.data, nil
}

type gatherer struct {
	body  *mir.Body
	types *types.Interner
	data  *MoveData
	loc   mir.Location
}

func (g *gatherer) gatherStatement(stmt *mir.Statement) error {
	switch stmt.Kind {
	case mir.StatementAssign:
		// The assignment target must be represented even if it is never
		// read or moved anywhere else.
		path, merr := g.movePathFor(stmt.Assign.Place)
		if merr != nil {
			return merr
		}
		g.data.recordInit(path, InitDeep, g.loc)
		return g.gatherRValue(&stmt.Assign.Value)
	case mir.StatementFakeRead:
		_, merr := g.movePathFor(stmt.FakeRead.Place)
		if merr != nil {
			return merr
		}
		return nil
	case mir.StatementStorageLive:
		// Entering a storage region neither moves nor initializes.
		return nil
	case mir.StatementStorageDead:
		// Leaving the storage region deinitializes the local
		// unconditionally, whatever its prior move state.
		g.data.recordMove(g.data.rev.locals[stmt.StorageDead.Local], g.loc)
		return nil
	case mir.StatementNop:
		return nil
	default:
		return nil
	}
}

func (g *gatherer) gatherTerminator(term *mir.Terminator) error {
	switch term.Kind {
	case mir.TermSwitchInt:
		return g.gatherOperand(&term.SwitchInt.Discr)
	case mir.TermAssert:
		return g.gatherOperand(&term.Assert.Cond)
	case mir.TermCall:
		// Argument and destination handling is an unresolved extension
		// point; refuse instead of mis-tracking.
		return &MoveError{Kind: ErrCallTerminator, Loc: g.loc}
	case mir.TermNone, mir.TermGoto, mir.TermReturn, mir.TermResume,
		mir.TermUnreachable, mir.TermFalseUnwind:
		return nil
	default:
		return nil
	}
}

// gatherRValue recurses into sub-operands in a fixed left-to-right order.
func (g *gatherer) gatherRValue(rv *mir.RValue) error {
	switch rv.Kind {
	case mir.RValueUse:
		return g.gatherOperand(&rv.Use)
	case mir.RValueRepeat:
		return g.gatherOperand(&rv.Repeat.Elem)
	case mir.RValueAggregate:
		for i := range rv.Aggregate.Elems {
			if err := g.gatherOperand(&rv.Aggregate.Elems[i]); err != nil {
				return err
			}
		}
		return nil
	case mir.RValueBinaryOp, mir.RValueCheckedBinaryOp:
		if err := g.gatherOperand(&rv.Binary.Left); err != nil {
			return err
		}
		return g.gatherOperand(&rv.Binary.Right)
	case mir.RValueUnaryOp:
		return g.gatherOperand(&rv.Unary.Operand)
	case mir.RValueRef:
		// Borrowing reads the place without deinitializing it.
		return nil
	default:
		return nil
	}
}

// gatherOperand records a move-out for by-move operands; copies and
// constants contribute nothing.
func (g *gatherer) gatherOperand(op *mir.Operand) error {
	switch op.Kind {
	case mir.OperandMove:
		path, merr := g.movePathFor(op.Place)
		if merr != nil {
			return merr
		}
		g.data.recordMove(path, g.loc)
		return nil
	case mir.OperandCopy, mir.OperandConst:
		return nil
	default:
		return nil
	}
}

// movePathFor canonicalizes a place into its move path, creating nodes for
// any untracked prefixes. Unsupported projection shapes produce an explicit
// *MoveError instead of a node.
func (g *gatherer) movePathFor(place mir.Place) (MovePathID, *MoveError) {
	path := g.data.rev.locals[place.Local]
	prefix := mir.PlaceFor(place.Local)
	for _, elem := range place.Proj {
		if merr := g.checkProjection(prefix, elem, place); merr != nil {
			return NoMovePathID, merr
		}
		prefix = prefix.Project(elem)
		path = g.data.ensureChild(path, elem, prefix)
	}
	return path, nil
}

// checkProjection refuses the projection shapes the tree cannot represent:
// dereferences of references/pointers, indexes into slices/arrays and
// downcasts into nontrivially-represented enums.
func (g *gatherer) checkProjection(prefix mir.Place, elem mir.PlaceProj, full mir.Place) *MoveError {
	fail := func(kind ErrorKind) *MoveError {
		return &MoveError{Kind: kind, Place: full, Loc: g.loc}
	}
	// Deref and index are unsupported whatever the types: a deref only
	// type-checks through a reference or raw pointer and an index only
	// through a slice or array. Without an interner the slice/array
	// distinction is unavailable and the slice kind is reported.
	if g.types == nil {
		switch elem.Kind {
		case mir.PlaceProjDeref:
			return fail(ErrBorrowedContent)
		case mir.PlaceProjIndex:
			return fail(ErrSliceElem)
		default:
			return nil
		}
	}
	prefixTy, ok := prefix.TyIn(g.types, g.body)
	if !ok {
		return fail(ErrIllegalProjection)
	}
	tt, ok := g.types.Lookup(prefixTy)
	if !ok {
		return fail(ErrIllegalProjection)
	}
	switch elem.Kind {
	case mir.PlaceProjDeref:
		if tt.Kind == types.KindRef || tt.Kind == types.KindRawPtr {
			return fail(ErrBorrowedContent)
		}
		return fail(ErrIllegalProjection)
	case mir.PlaceProjIndex:
		switch tt.Kind {
		case types.KindSlice:
			return fail(ErrSliceElem)
		case types.KindArray:
			return fail(ErrArrayElem)
		default:
			return fail(ErrIllegalProjection)
		}
	case mir.PlaceProjDowncast:
		if tt.Kind != types.KindEnum {
			return fail(ErrIllegalProjection)
		}
		if info, ok := g.types.EnumInfo(prefixTy); ok && info.NontrivialRepr {
			return fail(ErrNontrivialADT)
		}
		return nil
	case mir.PlaceProjField:
		if _, ok := prefix.Project(elem).TyIn(g.types, g.body); !ok {
			return fail(ErrIllegalProjection)
		}
		return nil
	default:
		return fail(ErrIllegalProjection)
	}
}
