package fixture

import (
	"fmt"
	"strconv"
	"strings"

	"moveck/internal/mir"
	"moveck/internal/types"
)

// parseType resolves a type expression: a builtin name, a registered nominal
// name, "&T", "&mut T", "*T", "[T]" or "[T; N]".
func parseType(expr string, in *types.Interner, named map[string]types.TypeID) (types.TypeID, error) {
	s := strings.TrimSpace(expr)
	if s == "" {
		return types.NoTypeID, fmt.Errorf("empty type expression")
	}
	switch {
	case strings.HasPrefix(s, "&mut "):
		elem, err := parseType(s[len("&mut "):], in, named)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Intern(types.MakeRef(elem, true)), nil
	case strings.HasPrefix(s, "&"):
		elem, err := parseType(s[1:], in, named)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Intern(types.MakeRef(elem, false)), nil
	case strings.HasPrefix(s, "*"):
		elem, err := parseType(s[1:], in, named)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Intern(types.MakeRawPtr(elem)), nil
	case strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]"):
		inner := s[1 : len(s)-1]
		if elemExpr, countExpr, found := strings.Cut(inner, ";"); found {
			elem, err := parseType(elemExpr, in, named)
			if err != nil {
				return types.NoTypeID, err
			}
			count, err := strconv.ParseUint(strings.TrimSpace(countExpr), 10, 32)
			if err != nil {
				return types.NoTypeID, fmt.Errorf("bad array length in %q: %w", s, err)
			}
			return in.Intern(types.MakeArray(elem, uint32(count))), nil
		}
		elem, err := parseType(inner, in, named)
		if err != nil {
			return types.NoTypeID, err
		}
		return in.Intern(types.MakeSlice(elem)), nil
	}

	b := in.Builtins()
	switch s {
	case "unit":
		return b.Unit, nil
	case "bool":
		return b.Bool, nil
	case "int":
		return b.Int, nil
	case "uint":
		return b.Uint, nil
	case "float":
		return b.Float, nil
	case "string":
		return b.String, nil
	}
	if id, ok := named[s]; ok {
		return id, nil
	}
	return types.NoTypeID, fmt.Errorf("unknown type %q", s)
}

// reader scans one statement or terminator string.
type reader struct {
	s      string
	i      int
	locals map[string]mir.LocalID
}

func (r *reader) skipSpace() {
	for r.i < len(r.s) && (r.s[r.i] == ' ' || r.s[r.i] == '\t') {
		r.i++
	}
}

func (r *reader) eof() bool {
	r.skipSpace()
	return r.i >= len(r.s)
}

func (r *reader) peek() byte {
	r.skipSpace()
	if r.i >= len(r.s) {
		return 0
	}
	return r.s[r.i]
}

func (r *reader) accept(ch byte) bool {
	if r.peek() == ch {
		r.i++
		return true
	}
	return false
}

func (r *reader) expect(ch byte) error {
	if !r.accept(ch) {
		return fmt.Errorf("expected %q at offset %d in %q", string(ch), r.i, r.s)
	}
	return nil
}

func isWordByte(ch byte) bool {
	return ch == '_' || ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9'
}

func (r *reader) word() string {
	r.skipSpace()
	start := r.i
	for r.i < len(r.s) && isWordByte(r.s[r.i]) {
		r.i++
	}
	return r.s[start:r.i]
}

// acceptWord consumes the given word only if it appears as a whole token.
func (r *reader) acceptWord(w string) bool {
	r.skipSpace()
	if !strings.HasPrefix(r.s[r.i:], w) {
		return false
	}
	end := r.i + len(w)
	if end < len(r.s) && isWordByte(r.s[end]) {
		return false
	}
	r.i = end
	return true
}

func (r *reader) number() (uint64, error) {
	w := r.word()
	if w == "" {
		return 0, fmt.Errorf("expected number at offset %d in %q", r.i, r.s)
	}
	n, err := strconv.ParseUint(w, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q in %q: %w", w, r.s, err)
	}
	return n, nil
}

func (r *reader) localRef() (mir.LocalID, error) {
	w := r.word()
	if w == "" {
		return mir.NoLocalID, fmt.Errorf("expected local name at offset %d in %q", r.i, r.s)
	}
	id, ok := r.locals[w]
	if !ok {
		return mir.NoLocalID, fmt.Errorf("unknown local %q in %q", w, r.s)
	}
	return id, nil
}

// place := '*' place | postfix. A leading '*' appends a deref after the
// projections of the operand, matching the (*x.f).g reading of *x.f.
func (r *reader) place() (mir.Place, error) {
	if r.accept('*') {
		p, err := r.place()
		if err != nil {
			return mir.Place{}, err
		}
		return p.Project(mir.PlaceProj{Kind: mir.PlaceProjDeref}), nil
	}
	return r.postfixPlace()
}

func (r *reader) postfixPlace() (mir.Place, error) {
	var p mir.Place
	if r.accept('(') {
		inner, err := r.place()
		if err != nil {
			return mir.Place{}, err
		}
		if err := r.expect(')'); err != nil {
			return mir.Place{}, err
		}
		p = inner
	} else {
		local, err := r.localRef()
		if err != nil {
			return mir.Place{}, err
		}
		p = mir.PlaceFor(local)
	}
	for {
		if r.accept('.') {
			n, err := r.number()
			if err != nil {
				return mir.Place{}, err
			}
			p = p.Project(mir.PlaceProj{Kind: mir.PlaceProjField, FieldIdx: int(n)})
			continue
		}
		if r.accept('@') {
			variant := r.word()
			if variant == "" {
				return mir.Place{}, fmt.Errorf("expected variant name in %q", r.s)
			}
			p = p.Project(mir.PlaceProj{Kind: mir.PlaceProjDowncast, Variant: variant})
			continue
		}
		// '[' is only an index projection when a known local and ']'
		// follow; otherwise it belongs to the surrounding construct
		// (switch_int arms).
		if r.peek() == '[' {
			save := r.i
			r.i++
			if idx, err := r.localRef(); err == nil && r.accept(']') {
				p = p.Project(mir.PlaceProj{Kind: mir.PlaceProjIndex, IndexLocal: idx})
				continue
			}
			r.i = save
		}
		return p, nil
	}
}

// operand := 'const' literal | 'copy' place | 'move' place.
func (r *reader) operand() (mir.Operand, error) {
	switch {
	case r.acceptWord("const"):
		c, err := r.constant()
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.ConstOperand(c), nil
	case r.acceptWord("copy"):
		p, err := r.place()
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.CopyOperand(p), nil
	case r.acceptWord("move"):
		p, err := r.place()
		if err != nil {
			return mir.Operand{}, err
		}
		return mir.MoveOperand(p), nil
	default:
		return mir.Operand{}, fmt.Errorf("expected operand at offset %d in %q", r.i, r.s)
	}
}

func (r *reader) constant() (mir.Const, error) {
	switch {
	case r.acceptWord("true"):
		return mir.Const{Kind: mir.ConstBool, BoolValue: true}, nil
	case r.acceptWord("false"):
		return mir.Const{Kind: mir.ConstBool, BoolValue: false}, nil
	case r.accept('('):
		if err := r.expect(')'); err != nil {
			return mir.Const{}, err
		}
		return mir.Const{Kind: mir.ConstUnit}, nil
	case r.peek() == '"':
		r.i++
		start := r.i
		for r.i < len(r.s) && r.s[r.i] != '"' {
			r.i++
		}
		if r.i >= len(r.s) {
			return mir.Const{}, fmt.Errorf("unterminated string in %q", r.s)
		}
		v := r.s[start:r.i]
		r.i++
		return mir.Const{Kind: mir.ConstString, StringValue: v}, nil
	default:
		neg := r.accept('-')
		n, err := r.number()
		if err != nil {
			return mir.Const{}, err
		}
		v := int64(n) //nolint:gosec // fixture literals stay small
		if neg {
			v = -v
		}
		return mir.Const{Kind: mir.ConstInt, IntValue: v}, nil
	}
}

var binOps = map[string]mir.BinOp{
	"add": mir.BinAdd, "sub": mir.BinSub, "mul": mir.BinMul,
	"div": mir.BinDiv, "rem": mir.BinRem,
	"eq": mir.BinEq, "ne": mir.BinNe,
	"lt": mir.BinLt, "le": mir.BinLe, "gt": mir.BinGt, "ge": mir.BinGe,
	"bitand": mir.BinBitAnd, "bitor": mir.BinBitOr, "bitxor": mir.BinBitXor,
	"shl": mir.BinShl, "shr": mir.BinShr,
}

// rvalue := operand | '[' operand ';' N ']' | 'aggregate(...)' | '&' place |
// '&mut' place | 'neg(op)' | 'not(op)' | binop '(' lhs ',' rhs ')' with an
// optional 'checked_' prefix.
func (r *reader) rvalue() (mir.RValue, error) {
	switch {
	case r.accept('&'):
		mutable := r.acceptWord("mut")
		p, err := r.place()
		if err != nil {
			return mir.RValue{}, err
		}
		return mir.RValue{Kind: mir.RValueRef, Ref: mir.RefRValue{Place: p, Mutable: mutable}}, nil
	case r.accept('['):
		elem, err := r.operand()
		if err != nil {
			return mir.RValue{}, err
		}
		if err := r.expect(';'); err != nil {
			return mir.RValue{}, err
		}
		count, err := r.number()
		if err != nil {
			return mir.RValue{}, err
		}
		if err := r.expect(']'); err != nil {
			return mir.RValue{}, err
		}
		return mir.RValue{Kind: mir.RValueRepeat, Repeat: mir.RepeatRValue{Elem: elem, Count: count}}, nil
	}

	save := r.i
	w := r.word()
	switch w {
	case "const", "copy", "move":
		r.i = save
		op, err := r.operand()
		if err != nil {
			return mir.RValue{}, err
		}
		return mir.UseRValue(op), nil
	case "aggregate":
		if err := r.expect('('); err != nil {
			return mir.RValue{}, err
		}
		var elems []mir.Operand
		if !r.accept(')') {
			for {
				op, err := r.operand()
				if err != nil {
					return mir.RValue{}, err
				}
				elems = append(elems, op)
				if r.accept(')') {
					break
				}
				if err := r.expect(','); err != nil {
					return mir.RValue{}, err
				}
			}
		}
		return mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateRValue{Elems: elems}}, nil
	case "neg", "not":
		if err := r.expect('('); err != nil {
			return mir.RValue{}, err
		}
		op, err := r.operand()
		if err != nil {
			return mir.RValue{}, err
		}
		if err := r.expect(')'); err != nil {
			return mir.RValue{}, err
		}
		unop := mir.UnNeg
		if w == "not" {
			unop = mir.UnNot
		}
		return mir.RValue{Kind: mir.RValueUnaryOp, Unary: mir.UnaryOpRValue{Op: unop, Operand: op}}, nil
	}

	kind := mir.RValueBinaryOp
	name := w
	if rest, found := strings.CutPrefix(w, "checked_"); found {
		kind = mir.RValueCheckedBinaryOp
		name = rest
	}
	op, ok := binOps[name]
	if !ok {
		return mir.RValue{}, fmt.Errorf("unknown rvalue %q in %q", w, r.s)
	}
	if err := r.expect('('); err != nil {
		return mir.RValue{}, err
	}
	left, err := r.operand()
	if err != nil {
		return mir.RValue{}, err
	}
	if err := r.expect(','); err != nil {
		return mir.RValue{}, err
	}
	right, err := r.operand()
	if err != nil {
		return mir.RValue{}, err
	}
	if err := r.expect(')'); err != nil {
		return mir.RValue{}, err
	}
	return mir.RValue{Kind: kind, Binary: mir.BinaryOpRValue{Op: op, Left: left, Right: right}}, nil
}

// parseStatement reads one statement:
// place '=' rvalue | 'fake_read' place | 'storage_live' local |
// 'storage_dead' local | 'nop'.
func parseStatement(src string, locals map[string]mir.LocalID) (mir.Statement, error) {
	r := &reader{s: src, locals: locals}
	var stmt mir.Statement
	switch {
	case r.acceptWord("fake_read"):
		p, err := r.place()
		if err != nil {
			return stmt, err
		}
		stmt = mir.Statement{Kind: mir.StatementFakeRead, FakeRead: mir.FakeReadStatement{Place: p}}
	case r.acceptWord("storage_live"):
		id, err := r.localRef()
		if err != nil {
			return stmt, err
		}
		stmt = mir.Statement{Kind: mir.StatementStorageLive, StorageLive: mir.StorageStatement{Local: id}}
	case r.acceptWord("storage_dead"):
		id, err := r.localRef()
		if err != nil {
			return stmt, err
		}
		stmt = mir.Statement{Kind: mir.StatementStorageDead, StorageDead: mir.StorageStatement{Local: id}}
	case r.acceptWord("nop"):
		stmt = mir.Statement{Kind: mir.StatementNop}
	default:
		p, err := r.place()
		if err != nil {
			return stmt, err
		}
		if err := r.expect('='); err != nil {
			return stmt, err
		}
		rv, err := r.rvalue()
		if err != nil {
			return stmt, err
		}
		stmt = mir.Statement{Kind: mir.StatementAssign, Assign: mir.AssignStatement{Place: p, Value: rv}}
	}
	if !r.eof() {
		return stmt, fmt.Errorf("trailing input at offset %d in %q", r.i, src)
	}
	return stmt, nil
}

// parseTerminator reads one terminator:
// 'return' | 'resume' | 'unreachable' | 'goto' N | 'false_unwind' N |
// 'assert' operand '->' N | 'switch_int' operand '[' v ':' N, ...,
// 'otherwise' ':' N ']' | 'call' '->' N.
func parseTerminator(src string, locals map[string]mir.LocalID) (mir.Terminator, error) {
	r := &reader{s: src, locals: locals}
	var term mir.Terminator
	switch {
	case r.acceptWord("return"):
		term = mir.Terminator{Kind: mir.TermReturn}
	case r.acceptWord("resume"):
		term = mir.Terminator{Kind: mir.TermResume}
	case r.acceptWord("unreachable"):
		term = mir.Terminator{Kind: mir.TermUnreachable}
	case r.acceptWord("goto"):
		n, err := r.number()
		if err != nil {
			return term, err
		}
		term = mir.Terminator{Kind: mir.TermGoto, Goto: mir.GotoTerm{Target: mir.BlockID(int32(n))}} //nolint:gosec // bounded by fixture size
	case r.acceptWord("false_unwind"):
		n, err := r.number()
		if err != nil {
			return term, err
		}
		term = mir.Terminator{Kind: mir.TermFalseUnwind, FalseUnwind: mir.FalseUnwindTerm{Real: mir.BlockID(int32(n))}} //nolint:gosec // bounded by fixture size
	case r.acceptWord("assert"):
		cond, err := r.operand()
		if err != nil {
			return term, err
		}
		if err := r.expect('-'); err != nil {
			return term, err
		}
		if err := r.expect('>'); err != nil {
			return term, err
		}
		n, err := r.number()
		if err != nil {
			return term, err
		}
		term = mir.Terminator{Kind: mir.TermAssert, Assert: mir.AssertTerm{
			Cond:     cond,
			Expected: true,
			Target:   mir.BlockID(int32(n)), //nolint:gosec // bounded by fixture size
			Unwind:   mir.NoBlockID,
		}}
	case r.acceptWord("switch_int"):
		discr, err := r.operand()
		if err != nil {
			return term, err
		}
		sw := mir.SwitchIntTerm{Discr: discr, Otherwise: mir.NoBlockID}
		if err := r.expect('['); err != nil {
			return term, err
		}
		for {
			if r.acceptWord("otherwise") {
				if err := r.expect(':'); err != nil {
					return term, err
				}
				n, err := r.number()
				if err != nil {
					return term, err
				}
				sw.Otherwise = mir.BlockID(int32(n)) //nolint:gosec // bounded by fixture size
			} else {
				v, err := r.number()
				if err != nil {
					return term, err
				}
				if err := r.expect(':'); err != nil {
					return term, err
				}
				n, err := r.number()
				if err != nil {
					return term, err
				}
				sw.Values = append(sw.Values, v)
				sw.Targets = append(sw.Targets, mir.BlockID(int32(n))) //nolint:gosec // bounded by fixture size
			}
			if r.accept(']') {
				break
			}
			if err := r.expect(','); err != nil {
				return term, err
			}
		}
		term = mir.Terminator{Kind: mir.TermSwitchInt, SwitchInt: sw}
	case r.acceptWord("call"):
		if err := r.expect('-'); err != nil {
			return term, err
		}
		if err := r.expect('>'); err != nil {
			return term, err
		}
		n, err := r.number()
		if err != nil {
			return term, err
		}
		term = mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
			Target: mir.BlockID(int32(n)), //nolint:gosec // bounded by fixture size
			Unwind: mir.NoBlockID,
			Dest:   mir.Place{Local: mir.NoLocalID},
		}}
	default:
		return term, fmt.Errorf("unknown terminator %q", src)
	}
	if !r.eof() {
		return term, fmt.Errorf("trailing input at offset %d in %q", r.i, src)
	}
	return term, nil
}
