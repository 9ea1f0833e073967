package moves_test

import (
	"bytes"
	"errors"
	"testing"

	"moveck/internal/mir"
	"moveck/internal/moves"
	"moveck/internal/types"
)

func field(idx int) mir.PlaceProj {
	return mir.PlaceProj{Kind: mir.PlaceProjField, FieldIdx: idx}
}

func assign(p mir.Place, rv mir.RValue) mir.Statement {
	return mir.Statement{Kind: mir.StatementAssign, Assign: mir.AssignStatement{Place: p, Value: rv}}
}

func constInt(v int64) mir.RValue {
	return mir.UseRValue(mir.ConstOperand(mir.Const{Kind: mir.ConstInt, IntValue: v}))
}

func storageLive(l mir.LocalID) mir.Statement {
	return mir.Statement{Kind: mir.StatementStorageLive, StorageLive: mir.StorageStatement{Local: l}}
}

func storageDead(l mir.LocalID) mir.Statement {
	return mir.Statement{Kind: mir.StatementStorageDead, StorageDead: mir.StorageStatement{Local: l}}
}

func returnTerm() mir.Terminator {
	return mir.Terminator{Kind: mir.TermReturn}
}

// scenarioABody declares x: Pair{int, int} and y: int, and runs
//
//	bb0[0]: storage_live x
//	bb0[1]: x.0 = const 1
//	bb0[2]: x.1 = const 2
//	bb0[3]: y = move x.0
//	return
func scenarioABody(t *testing.T) (*mir.Body, *types.Interner) {
	t.Helper()
	in := types.NewInterner()
	pair := in.RegisterStruct("Pair")
	in.SetStructFields(pair, []types.StructField{
		{Name: "f0", Type: in.Builtins().Int},
		{Name: "f1", Type: in.Builtins().Int},
	})

	x := mir.PlaceFor(0)
	body := &mir.Body{
		Name: "scenario_a",
		Locals: []mir.Local{
			{Name: "x", Type: pair},
			{Name: "y", Type: in.Builtins().Int},
		},
		Blocks: []mir.Block{
			{
				ID: 0,
				Stmts: []mir.Statement{
					storageLive(0),
					assign(x.Project(field(0)), constInt(1)),
					assign(x.Project(field(1)), constInt(2)),
					assign(mir.PlaceFor(1), mir.UseRValue(mir.MoveOperand(x.Project(field(0))))),
				},
				Term: returnTerm(),
			},
		},
	}
	return body, in
}

func TestGatherScenarioA(t *testing.T) {
	body, in := scenarioABody(t)
	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	// Two roots plus x.0 and x.1.
	if data.NumPaths() != 4 {
		t.Fatalf("NumPaths = %d, want 4", data.NumPaths())
	}

	x := mir.PlaceFor(0)
	xRoot := data.Rev().LocalRoot(0)
	if xRoot == moves.NoMovePathID {
		t.Fatal("no root path for x")
	}
	fieldA := data.Rev().Find(x.Project(field(0)))
	fieldB := data.Rev().Find(x.Project(field(1)))
	if fieldA.Kind != moves.LookupExact || fieldB.Kind != moves.LookupExact {
		t.Fatalf("expected exact paths for x.0 and x.1, got %v and %v", fieldA, fieldB)
	}

	// x.0 and x.1 are siblings under x, newest created first.
	var children []moves.MovePathID
	for child := range data.Children(xRoot) {
		children = append(children, child)
	}
	if len(children) != 2 || children[0] != fieldB.Path || children[1] != fieldA.Path {
		t.Fatalf("children of x = %v, want [%d %d]", children, fieldB.Path, fieldA.Path)
	}

	// Deep inits at the two assign locations.
	for _, tc := range []struct {
		loc  mir.Location
		path moves.MovePathID
	}{
		{mir.Location{Block: 0, Stmt: 1}, fieldA.Path},
		{mir.Location{Block: 0, Stmt: 2}, fieldB.Path},
	} {
		ids := data.InitsAt(tc.loc)
		if len(ids) != 1 {
			t.Fatalf("inits at %s = %d, want 1", tc.loc, len(ids))
		}
		init := data.Init(ids[0])
		if init.Path != tc.path || init.Kind != moves.InitDeep || init.IsArg {
			t.Fatalf("init at %s = %+v, want deep statement-bound init of mp%d", tc.loc, init, tc.path)
		}
	}

	// One move-out for x.0 at the moving statement.
	moveLoc := mir.Location{Block: 0, Stmt: 3}
	mids := data.MovesAt(moveLoc)
	if len(mids) != 1 {
		t.Fatalf("moves at %s = %d, want 1", moveLoc, len(mids))
	}
	if mo := data.Move(mids[0]); mo.Path != fieldA.Path {
		t.Fatalf("move at %s targets mp%d, want mp%d", moveLoc, mo.Path, fieldA.Path)
	}
	if got := data.MovesOf(fieldA.Path); len(got) != 1 || got[0] != mids[0] {
		t.Fatalf("MovesOf(x.0) = %v, want [%v]", got, mids[0])
	}

	if base := data.BaseLocal(fieldA.Path); base != 0 {
		t.Fatalf("BaseLocal(x.0) = _%d, want _0", base)
	}
}

func TestGatherScenarioB(t *testing.T) {
	body, in := scenarioABody(t)
	body.Blocks[0].Stmts = append(body.Blocks[0].Stmts, storageDead(0))

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	// storage_dead deinitializes the root regardless of field move state.
	deadLoc := mir.Location{Block: 0, Stmt: 4}
	ids := data.MovesAt(deadLoc)
	if len(ids) != 1 {
		t.Fatalf("moves at %s = %d, want 1", deadLoc, len(ids))
	}
	xRoot := data.Rev().LocalRoot(0)
	if mo := data.Move(ids[0]); mo.Path != xRoot {
		t.Fatalf("storage_dead moved out mp%d, want root mp%d", mo.Path, xRoot)
	}
}

func TestGatherIdempotentCanonicalization(t *testing.T) {
	body, in := scenarioABody(t)
	// Assign x.0 twice more; no new paths may appear.
	x := mir.PlaceFor(0)
	body.Blocks[0].Stmts = append(body.Blocks[0].Stmts,
		assign(x.Project(field(0)), constInt(3)),
		assign(x.Project(field(0)), constInt(4)),
	)

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if data.NumPaths() != 4 {
		t.Fatalf("NumPaths = %d, want 4 after repeated touches", data.NumPaths())
	}
	res := data.Rev().Find(x.Project(field(0)))
	if res.Kind != moves.LookupExact {
		t.Fatalf("lookup(x.0) = %+v, want exact", res)
	}
	if got := data.InitsOf(res.Path); len(got) != 3 {
		t.Fatalf("InitsOf(x.0) = %d entries, want 3", len(got))
	}
}

func TestGatherDeterministicOrder(t *testing.T) {
	body, in := scenarioABody(t)
	// An aggregate moving both fields: sub-operands left to right.
	x := mir.PlaceFor(0)
	body.Blocks[0].Stmts = append(body.Blocks[0].Stmts,
		assign(mir.PlaceFor(1), mir.RValue{Kind: mir.RValueAggregate, Aggregate: mir.AggregateRValue{
			Elems: []mir.Operand{
				mir.MoveOperand(x.Project(field(0))),
				mir.MoveOperand(x.Project(field(1))),
			},
		}}),
	)

	first, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	loc := mir.Location{Block: 0, Stmt: 4}
	ids := first.MovesAt(loc)
	if len(ids) != 2 {
		t.Fatalf("moves at %s = %d, want 2", loc, len(ids))
	}
	a := first.Rev().Find(x.Project(field(0)))
	b := first.Rev().Find(x.Project(field(1)))
	if first.Move(ids[0]).Path != a.Path || first.Move(ids[1]).Path != b.Path {
		t.Fatalf("aggregate operands gathered out of order: %v", ids)
	}

	// The whole result is reproducible.
	second, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("second Gather failed: %v", err)
	}
	var d1, d2 bytes.Buffer
	if err := moves.DumpMoveData(&d1, first); err != nil {
		t.Fatal(err)
	}
	if err := moves.DumpMoveData(&d2, second); err != nil {
		t.Fatal(err)
	}
	if d1.String() != d2.String() {
		t.Fatalf("gather is not deterministic:\n--- first\n%s--- second\n%s", d1.String(), d2.String())
	}
}

func TestGatherTerminatorOperands(t *testing.T) {
	in := types.NewInterner()
	body := &mir.Body{
		Locals: []mir.Local{{Name: "c", Type: in.Builtins().Int}},
		Blocks: []mir.Block{
			{
				ID: 0,
				Term: mir.Terminator{Kind: mir.TermSwitchInt, SwitchInt: mir.SwitchIntTerm{
					Discr:     mir.MoveOperand(mir.PlaceFor(0)),
					Values:    []uint64{0},
					Targets:   []mir.BlockID{1},
					Otherwise: 1,
				}},
			},
			{ID: 1, Term: returnTerm()},
		},
	}

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	termLoc := body.TerminatorLoc(0)
	ids := data.MovesAt(termLoc)
	if len(ids) != 1 {
		t.Fatalf("moves at %s = %d, want 1", termLoc, len(ids))
	}
	if mo := data.Move(ids[0]); mo.Path != data.Rev().LocalRoot(0) {
		t.Fatalf("switch_int discriminant moved out mp%d, want root of _0", mo.Path)
	}
}

func TestGatherCopyAndRefContributeNothing(t *testing.T) {
	in := types.NewInterner()
	body := &mir.Body{
		Locals: []mir.Local{
			{Name: "a", Type: in.Builtins().Int},
			{Name: "b", Type: in.Builtins().Int},
		},
		Blocks: []mir.Block{
			{
				ID: 0,
				Stmts: []mir.Statement{
					assign(mir.PlaceFor(1), mir.UseRValue(mir.CopyOperand(mir.PlaceFor(0)))),
					assign(mir.PlaceFor(1), mir.RValue{Kind: mir.RValueRef, Ref: mir.RefRValue{Place: mir.PlaceFor(0)}}),
				},
				Term: returnTerm(),
			},
		},
	}

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if data.NumMoves() != 0 {
		t.Fatalf("NumMoves = %d, want 0 for copy/borrow-only body", data.NumMoves())
	}
}

func TestGatherErrors(t *testing.T) {
	mkInterner := func() *types.Interner {
		return types.NewInterner()
	}

	tests := []struct {
		name string
		body func() (*mir.Body, *types.Interner)
		want moves.ErrorKind
	}{
		{
			name: "move_through_deref",
			body: func() (*mir.Body, *types.Interner) {
				in := mkInterner()
				ref := in.Intern(types.MakeRef(in.Builtins().Int, false))
				deref := mir.PlaceFor(0).Project(mir.PlaceProj{Kind: mir.PlaceProjDeref})
				return &mir.Body{
					Locals: []mir.Local{
						{Name: "r", Type: ref},
						{Name: "y", Type: in.Builtins().Int},
					},
					Blocks: []mir.Block{{
						ID:    0,
						Stmts: []mir.Statement{assign(mir.PlaceFor(1), mir.UseRValue(mir.MoveOperand(deref)))},
						Term:  returnTerm(),
					}},
				}, in
			},
			want: moves.ErrBorrowedContent,
		},
		{
			name: "move_out_of_slice",
			body: func() (*mir.Body, *types.Interner) {
				in := mkInterner()
				slice := in.Intern(types.MakeSlice(in.Builtins().Int))
				elem := mir.PlaceFor(0).Project(mir.PlaceProj{Kind: mir.PlaceProjIndex, IndexLocal: 1})
				return &mir.Body{
					Locals: []mir.Local{
						{Name: "s", Type: slice},
						{Name: "i", Type: in.Builtins().Uint},
						{Name: "y", Type: in.Builtins().Int},
					},
					Blocks: []mir.Block{{
						ID:    0,
						Stmts: []mir.Statement{assign(mir.PlaceFor(2), mir.UseRValue(mir.MoveOperand(elem)))},
						Term:  returnTerm(),
					}},
				}, in
			},
			want: moves.ErrSliceElem,
		},
		{
			name: "move_out_of_array",
			body: func() (*mir.Body, *types.Interner) {
				in := mkInterner()
				arr := in.Intern(types.MakeArray(in.Builtins().Int, 4))
				elem := mir.PlaceFor(0).Project(mir.PlaceProj{Kind: mir.PlaceProjIndex, IndexLocal: 1})
				return &mir.Body{
					Locals: []mir.Local{
						{Name: "a", Type: arr},
						{Name: "i", Type: in.Builtins().Uint},
						{Name: "y", Type: in.Builtins().Int},
					},
					Blocks: []mir.Block{{
						ID:    0,
						Stmts: []mir.Statement{assign(mir.PlaceFor(2), mir.UseRValue(mir.MoveOperand(elem)))},
						Term:  returnTerm(),
					}},
				}, in
			},
			want: moves.ErrArrayElem,
		},
		{
			name: "downcast_nontrivial_enum",
			body: func() (*mir.Body, *types.Interner) {
				in := mkInterner()
				opt := in.RegisterEnum("Option")
				in.SetEnumVariants(opt, []types.EnumVariantInfo{
					{Name: "None"},
					{Name: "Some", Fields: []types.TypeID{in.Builtins().Int}},
				})
				in.SetEnumNontrivialRepr(opt, true)
				payload := mir.PlaceFor(0).
					Project(mir.PlaceProj{Kind: mir.PlaceProjDowncast, Variant: "Some"}).
					Project(field(0))
				return &mir.Body{
					Locals: []mir.Local{
						{Name: "o", Type: opt},
						{Name: "y", Type: in.Builtins().Int},
					},
					Blocks: []mir.Block{{
						ID:    0,
						Stmts: []mir.Statement{assign(mir.PlaceFor(1), mir.UseRValue(mir.MoveOperand(payload)))},
						Term:  returnTerm(),
					}},
				}, in
			},
			want: moves.ErrNontrivialADT,
		},
		{
			name: "call_terminator",
			body: func() (*mir.Body, *types.Interner) {
				in := mkInterner()
				return &mir.Body{
					Locals: []mir.Local{{Name: "f", Type: in.Builtins().Int}},
					Blocks: []mir.Block{
						{
							ID: 0,
							Term: mir.Terminator{Kind: mir.TermCall, Call: mir.CallTerm{
								Func:   mir.CopyOperand(mir.PlaceFor(0)),
								Dest:   mir.Place{Local: mir.NoLocalID},
								Target: 1,
								Unwind: mir.NoBlockID,
							}},
						},
						{ID: 1, Term: returnTerm()},
					},
				}, in
			},
			want: moves.ErrCallTerminator,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, in := tt.body()
			_, err := moves.Gather(body, in)
			if err == nil {
				t.Fatal("expected a canonicalization error")
			}
			var merr *moves.MoveError
			if !errors.As(err, &merr) {
				t.Fatalf("error is %T, want *moves.MoveError", err)
			}
			if merr.Kind != tt.want {
				t.Fatalf("error kind = %v, want %v", merr.Kind, tt.want)
			}
		})
	}
}

func TestGatherWithoutInterner(t *testing.T) {
	mkBody := func(src mir.Place) *mir.Body {
		return &mir.Body{
			Locals: []mir.Local{{Name: "s"}, {Name: "i"}, {Name: "y"}},
			Blocks: []mir.Block{{
				ID:    0,
				Stmts: []mir.Statement{assign(mir.PlaceFor(2), mir.UseRValue(mir.MoveOperand(src)))},
				Term:  returnTerm(),
			}},
		}
	}

	// Deref and index are identifiable from the projection alone and stay
	// refused when no interner is supplied.
	tests := []struct {
		name  string
		place mir.Place
		want  moves.ErrorKind
	}{
		{
			name:  "deref",
			place: mir.PlaceFor(0).Project(mir.PlaceProj{Kind: mir.PlaceProjDeref}),
			want:  moves.ErrBorrowedContent,
		},
		{
			name:  "index",
			place: mir.PlaceFor(0).Project(mir.PlaceProj{Kind: mir.PlaceProjIndex, IndexLocal: 1}),
			want:  moves.ErrSliceElem,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := moves.Gather(mkBody(tt.place), nil)
			var merr *moves.MoveError
			if !errors.As(err, &merr) {
				t.Fatalf("Gather without interner = %v, want *moves.MoveError", err)
			}
			if merr.Kind != tt.want {
				t.Fatalf("error kind = %v, want %v", merr.Kind, tt.want)
			}
			if data != nil {
				t.Fatal("refused gather must not return data")
			}
		})
	}

	// Field projections still canonicalize without type checks.
	fieldPlace := mir.PlaceFor(0).Project(field(0))
	data, err := moves.Gather(mkBody(fieldPlace), nil)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if res := data.Rev().Find(fieldPlace); res.Kind != moves.LookupExact {
		t.Fatalf("lookup(s.0) = %+v, want exact", res)
	}
}

func TestGatherArgInits(t *testing.T) {
	in := types.NewInterner()
	body := &mir.Body{
		Locals: []mir.Local{
			{Name: "a", Type: in.Builtins().Int, IsArg: true},
			{Name: "b", Type: in.Builtins().Int},
		},
		Blocks: []mir.Block{{ID: 0, Term: returnTerm()}},
	}

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if data.NumInits() != 1 {
		t.Fatalf("NumInits = %d, want 1 (only the argument local)", data.NumInits())
	}

	aRoot := data.Rev().LocalRoot(0)
	ids := data.InitsOf(aRoot)
	if len(ids) != 1 {
		t.Fatalf("InitsOf(a) = %d entries, want 1", len(ids))
	}
	init := data.Init(ids[0])
	if !init.IsArg || init.Kind != moves.InitDeep || init.Path != aRoot {
		t.Fatalf("arg init = %+v, want deep argument-bound init of mp%d", init, aRoot)
	}

	// Argument-bound inits carry no program point.
	if got := data.InitsAt(mir.Location{Block: 0, Stmt: 0}); len(got) != 0 {
		t.Fatalf("InitsAt(bb0[0]) = %v, want none", got)
	}
	if got := data.InitsOf(data.Rev().LocalRoot(1)); len(got) != 0 {
		t.Fatalf("non-argument local b has inits %v, want none", got)
	}
}

func TestGatherTrivialEnumDowncast(t *testing.T) {
	in := types.NewInterner()
	opt := in.RegisterEnum("Simple")
	in.SetEnumVariants(opt, []types.EnumVariantInfo{
		{Name: "A", Fields: []types.TypeID{in.Builtins().Int}},
		{Name: "B"},
	})

	payload := mir.PlaceFor(0).
		Project(mir.PlaceProj{Kind: mir.PlaceProjDowncast, Variant: "A"}).
		Project(field(0))
	body := &mir.Body{
		Locals: []mir.Local{
			{Name: "e", Type: opt},
			{Name: "y", Type: in.Builtins().Int},
		},
		Blocks: []mir.Block{{
			ID:    0,
			Stmts: []mir.Statement{assign(mir.PlaceFor(1), mir.UseRValue(mir.MoveOperand(payload)))},
			Term:  returnTerm(),
		}},
	}

	data, err := moves.Gather(body, in)
	if err != nil {
		t.Fatalf("Gather failed for trivially-represented enum: %v", err)
	}
	res := data.Rev().Find(payload)
	if res.Kind != moves.LookupExact {
		t.Fatalf("lookup(e@A.0) = %+v, want exact", res)
	}
}
