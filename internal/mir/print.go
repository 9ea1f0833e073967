package mir

import (
	"fmt"
	"io"
	"strings"

	"moveck/internal/types"
)

// DumpBody writes a human-readable representation of a body.
func DumpBody(w io.Writer, b *Body, typesIn *types.Interner) error {
	if w == nil || b == nil {
		return nil
	}

	name := b.Name
	if name == "" {
		name = "_"
	}
	if _, err := fmt.Fprintf(w, "fn %s:\n", name); err != nil {
		return err
	}

	fmt.Fprintf(w, "  locals:\n")
	for i := range b.Locals {
		l := b.Locals[i]
		lname := l.Name
		if lname == "" {
			lname = "_"
		}
		arg := ""
		if l.IsArg {
			arg = " arg"
		}
		fmt.Fprintf(w, "    _%d: %s%s name=%s\n", i, typeStr(typesIn, l.Type), arg, lname)
	}

	for i := range b.Blocks {
		bb := &b.Blocks[i]
		fmt.Fprintf(w, "  bb%d:\n", bb.ID)
		for j := range bb.Stmts {
			fmt.Fprintf(w, "    %s\n", formatStatement(&bb.Stmts[j]))
		}
		fmt.Fprintf(w, "    %s\n", formatTerm(&bb.Term))
	}

	return nil
}

func typeStr(typesIn *types.Interner, id types.TypeID) string {
	if typesIn == nil {
		return fmt.Sprintf("ty%d", id)
	}
	return typesIn.String(id)
}

func formatStatement(s *Statement) string {
	if s == nil {
		return "<stmt?>"
	}
	switch s.Kind {
	case StatementAssign:
		return fmt.Sprintf("%s = %s", s.Assign.Place, formatRValue(&s.Assign.Value))
	case StatementFakeRead:
		return fmt.Sprintf("fake_read %s", s.FakeRead.Place)
	case StatementStorageLive:
		return fmt.Sprintf("storage_live _%d", s.StorageLive.Local)
	case StatementStorageDead:
		return fmt.Sprintf("storage_dead _%d", s.StorageDead.Local)
	case StatementNop:
		return "nop"
	default:
		return fmt.Sprintf("<stmt kind=%d>", s.Kind)
	}
}

func formatTerm(t *Terminator) string {
	if t == nil {
		return "<term?>"
	}
	switch t.Kind {
	case TermNone:
		return "<unterminated>"
	case TermGoto:
		return fmt.Sprintf("goto bb%d", t.Goto.Target)
	case TermSwitchInt:
		arms := make([]string, 0, len(t.SwitchInt.Values)+1)
		for i, v := range t.SwitchInt.Values {
			target := NoBlockID
			if i < len(t.SwitchInt.Targets) {
				target = t.SwitchInt.Targets[i]
			}
			arms = append(arms, fmt.Sprintf("%d: bb%d", v, target))
		}
		arms = append(arms, fmt.Sprintf("otherwise: bb%d", t.SwitchInt.Otherwise))
		return fmt.Sprintf("switch_int %s [%s]", formatOperand(&t.SwitchInt.Discr), strings.Join(arms, ", "))
	case TermAssert:
		return fmt.Sprintf("assert %s == %v -> bb%d", formatOperand(&t.Assert.Cond), t.Assert.Expected, t.Assert.Target)
	case TermReturn:
		return "return"
	case TermResume:
		return "resume"
	case TermUnreachable:
		return "unreachable"
	case TermFalseUnwind:
		return fmt.Sprintf("false_unwind -> bb%d", t.FalseUnwind.Real)
	case TermCall:
		args := make([]string, 0, len(t.Call.Args))
		for i := range t.Call.Args {
			args = append(args, formatOperand(&t.Call.Args[i]))
		}
		dst := ""
		if t.Call.Dest.IsValid() {
			dst = t.Call.Dest.String() + " = "
		}
		return fmt.Sprintf("%scall %s(%s) -> bb%d", dst, formatOperand(&t.Call.Func), strings.Join(args, ", "), t.Call.Target)
	default:
		return fmt.Sprintf("<term kind=%d>", t.Kind)
	}
}

func formatRValue(rv *RValue) string {
	if rv == nil {
		return "<rvalue?>"
	}
	switch rv.Kind {
	case RValueUse:
		return formatOperand(&rv.Use)
	case RValueRepeat:
		return fmt.Sprintf("[%s; %d]", formatOperand(&rv.Repeat.Elem), rv.Repeat.Count)
	case RValueAggregate:
		elems := make([]string, 0, len(rv.Aggregate.Elems))
		for i := range rv.Aggregate.Elems {
			elems = append(elems, formatOperand(&rv.Aggregate.Elems[i]))
		}
		return fmt.Sprintf("aggregate(%s)", strings.Join(elems, ", "))
	case RValueBinaryOp:
		return fmt.Sprintf("binop#%d(%s, %s)", rv.Binary.Op, formatOperand(&rv.Binary.Left), formatOperand(&rv.Binary.Right))
	case RValueCheckedBinaryOp:
		return fmt.Sprintf("checked_binop#%d(%s, %s)", rv.Binary.Op, formatOperand(&rv.Binary.Left), formatOperand(&rv.Binary.Right))
	case RValueUnaryOp:
		return fmt.Sprintf("unop#%d(%s)", rv.Unary.Op, formatOperand(&rv.Unary.Operand))
	case RValueRef:
		if rv.Ref.Mutable {
			return fmt.Sprintf("&mut %s", rv.Ref.Place)
		}
		return fmt.Sprintf("&%s", rv.Ref.Place)
	default:
		return fmt.Sprintf("<rvalue kind=%d>", rv.Kind)
	}
}

func formatOperand(op *Operand) string {
	if op == nil {
		return "<operand?>"
	}
	switch op.Kind {
	case OperandConst:
		return formatConst(&op.Const)
	case OperandCopy:
		return fmt.Sprintf("copy %s", op.Place)
	case OperandMove:
		return fmt.Sprintf("move %s", op.Place)
	default:
		return fmt.Sprintf("<operand kind=%d>", op.Kind)
	}
}

func formatConst(c *Const) string {
	if c == nil {
		return "<const?>"
	}
	switch c.Kind {
	case ConstUnit:
		return "()"
	case ConstInt:
		return fmt.Sprintf("const %d", c.IntValue)
	case ConstUint:
		return fmt.Sprintf("const %du", c.UintValue)
	case ConstFloat:
		return fmt.Sprintf("const %g", c.FloatValue)
	case ConstBool:
		return fmt.Sprintf("const %v", c.BoolValue)
	case ConstString:
		return fmt.Sprintf("const %q", c.StringValue)
	default:
		return fmt.Sprintf("<const kind=%d>", c.Kind)
	}
}
