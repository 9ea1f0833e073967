package mir

import (
	"errors"
	"fmt"

	"moveck/internal/types"
)

// Validate checks structural body invariants.
// Returns an error if any invariant is violated.
func Validate(b *Body, typesIn *types.Interner) error {
	if b == nil {
		return nil
	}

	var errs []error

	if err := validateBlocksTerminated(b); err != nil {
		errs = append(errs, err)
	}
	if err := validateBlockTargets(b); err != nil {
		errs = append(errs, err)
	}
	if err := validateLocalIDs(b); err != nil {
		errs = append(errs, err)
	}
	if typesIn != nil {
		if err := validateLocalTypes(b, typesIn); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// validateBlocksTerminated checks that every block ends with a terminator
// and carries the ID matching its position; locations key off Block.ID.
func validateBlocksTerminated(b *Body) error {
	var errs []error
	for i := range b.Blocks {
		if b.Blocks[i].Term.Kind == TermNone {
			errs = append(errs, fmt.Errorf("bb%d: unterminated block", i))
		}
		if int(b.Blocks[i].ID) != i {
			errs = append(errs, fmt.Errorf("bb%d: block ID %d does not match position", i, b.Blocks[i].ID))
		}
	}
	return errors.Join(errs...)
}

// validateBlockTargets checks that every branch target names an existing block.
func validateBlockTargets(b *Body) error {
	var errs []error
	check := func(bb int, target BlockID, what string) {
		if target == NoBlockID {
			return
		}
		if int(target) < 0 || int(target) >= len(b.Blocks) {
			errs = append(errs, fmt.Errorf("bb%d: %s target bb%d out of range", bb, what, target))
		}
	}
	for i := range b.Blocks {
		term := &b.Blocks[i].Term
		switch term.Kind {
		case TermGoto:
			check(i, term.Goto.Target, "goto")
		case TermSwitchInt:
			if len(term.SwitchInt.Values) != len(term.SwitchInt.Targets) {
				errs = append(errs, fmt.Errorf("bb%d: switch_int values/targets length mismatch", i))
			}
			for _, t := range term.SwitchInt.Targets {
				check(i, t, "switch_int")
			}
			check(i, term.SwitchInt.Otherwise, "switch_int otherwise")
		case TermAssert:
			check(i, term.Assert.Target, "assert")
			check(i, term.Assert.Unwind, "assert unwind")
		case TermFalseUnwind:
			check(i, term.FalseUnwind.Real, "false_unwind")
		case TermCall:
			check(i, term.Call.Target, "call")
			check(i, term.Call.Unwind, "call unwind")
		case TermNone, TermReturn, TermResume, TermUnreachable:
		}
	}
	return errors.Join(errs...)
}

// validateLocalIDs checks that every referenced local is declared.
func validateLocalIDs(b *Body) error {
	var errs []error

	checkLocal := func(bb int, id LocalID, what string) {
		if id == NoLocalID {
			errs = append(errs, fmt.Errorf("bb%d: %s references no local", bb, what))
			return
		}
		if int(id) < 0 || int(id) >= len(b.Locals) {
			errs = append(errs, fmt.Errorf("bb%d: %s references undeclared local _%d", bb, what, id))
		}
	}
	checkPlace := func(bb int, p Place, what string) {
		checkLocal(bb, p.Local, what)
		for _, elem := range p.Proj {
			if elem.Kind == PlaceProjIndex {
				checkLocal(bb, elem.IndexLocal, what+" index")
			}
		}
	}
	checkOperand := func(bb int, op Operand, what string) {
		switch op.Kind {
		case OperandCopy, OperandMove:
			checkPlace(bb, op.Place, what)
		case OperandConst:
		}
	}
	checkRValue := func(bb int, rv *RValue) {
		switch rv.Kind {
		case RValueUse:
			checkOperand(bb, rv.Use, "use")
		case RValueRepeat:
			checkOperand(bb, rv.Repeat.Elem, "repeat")
		case RValueAggregate:
			for _, el := range rv.Aggregate.Elems {
				checkOperand(bb, el, "aggregate")
			}
		case RValueBinaryOp, RValueCheckedBinaryOp:
			checkOperand(bb, rv.Binary.Left, "binop lhs")
			checkOperand(bb, rv.Binary.Right, "binop rhs")
		case RValueUnaryOp:
			checkOperand(bb, rv.Unary.Operand, "unop")
		case RValueRef:
			checkPlace(bb, rv.Ref.Place, "ref")
		}
	}

	for i := range b.Blocks {
		block := &b.Blocks[i]
		for j := range block.Stmts {
			stmt := &block.Stmts[j]
			switch stmt.Kind {
			case StatementAssign:
				checkPlace(i, stmt.Assign.Place, "assign dst")
				checkRValue(i, &stmt.Assign.Value)
			case StatementFakeRead:
				checkPlace(i, stmt.FakeRead.Place, "fake_read")
			case StatementStorageLive:
				checkLocal(i, stmt.StorageLive.Local, "storage_live")
			case StatementStorageDead:
				checkLocal(i, stmt.StorageDead.Local, "storage_dead")
			case StatementNop:
			}
		}
		switch block.Term.Kind {
		case TermSwitchInt:
			checkOperand(i, block.Term.SwitchInt.Discr, "switch_int discr")
		case TermAssert:
			checkOperand(i, block.Term.Assert.Cond, "assert cond")
		case TermCall:
			checkOperand(i, block.Term.Call.Func, "call func")
			for _, arg := range block.Term.Call.Args {
				checkOperand(i, arg, "call arg")
			}
			if block.Term.Call.Dest.IsValid() {
				checkPlace(i, block.Term.Call.Dest, "call dest")
			}
		case TermNone, TermGoto, TermReturn, TermResume, TermUnreachable, TermFalseUnwind:
		}
	}
	return errors.Join(errs...)
}

// validateLocalTypes checks that every declared local carries a known type.
func validateLocalTypes(b *Body, typesIn *types.Interner) error {
	var errs []error
	for i := range b.Locals {
		if _, ok := typesIn.Lookup(b.Locals[i].Type); !ok {
			errs = append(errs, fmt.Errorf("local _%d (%s): unknown type", i, b.Locals[i].Name))
		}
	}
	return errors.Join(errs...)
}
