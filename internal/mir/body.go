package mir

import "fmt"

type Block struct {
	ID    BlockID
	Stmts []Statement
	Term  Terminator
}

func (b *Block) Terminated() bool {
	if b == nil {
		return true
	}
	return b.Term.Kind != TermNone
}

// Body is one function body: declared locals plus basic blocks. Block order
// is the traversal order of every pass over the body.
type Body struct {
	Name   string
	Locals []Local
	Blocks []Block
}

// LocalDecl returns the declaration of a local, or nil when out of range.
func (b *Body) LocalDecl(id LocalID) *Local {
	if b == nil || int(id) < 0 || int(id) >= len(b.Locals) {
		return nil
	}
	return &b.Locals[id]
}

// Location is a program point: a statement offset inside a block, or the
// block's terminator when Stmt == len(Stmts).
type Location struct {
	Block BlockID
	Stmt  int
}

// TerminatorLoc returns the location of a block's terminator.
func (b *Body) TerminatorLoc(bb BlockID) Location {
	if b == nil || int(bb) < 0 || int(bb) >= len(b.Blocks) {
		return Location{Block: bb, Stmt: 0}
	}
	return Location{Block: bb, Stmt: len(b.Blocks[bb].Stmts)}
}

// IsTerminator reports whether the location points at the block's terminator.
func (l Location) IsTerminator(b *Body) bool {
	if b == nil || int(l.Block) < 0 || int(l.Block) >= len(b.Blocks) {
		return false
	}
	return l.Stmt == len(b.Blocks[l.Block].Stmts)
}

func (l Location) String() string {
	return fmt.Sprintf("bb%d[%d]", l.Block, l.Stmt)
}
