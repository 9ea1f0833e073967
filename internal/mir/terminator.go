package mir

// TermKind enumerates terminator kinds.
type TermKind uint8

const (
	TermNone TermKind = iota
	TermGoto
	TermSwitchInt
	TermAssert
	TermReturn
	TermResume
	TermUnreachable
	TermFalseUnwind
	TermCall
)

type Terminator struct {
	Kind TermKind

	Goto        GotoTerm
	SwitchInt   SwitchIntTerm
	Assert      AssertTerm
	FalseUnwind FalseUnwindTerm
	Call        CallTerm
}

type GotoTerm struct {
	Target BlockID
}

// SwitchIntTerm branches on an integer discriminant. Values and Targets are
// parallel; Otherwise takes any unmatched value.
type SwitchIntTerm struct {
	Discr     Operand
	Values    []uint64
	Targets   []BlockID
	Otherwise BlockID
}

// AssertTerm panics unless the condition evaluates to Expected.
type AssertTerm struct {
	Cond     Operand
	Expected bool
	Target   BlockID
	Unwind   BlockID
}

// FalseUnwindTerm is a Goto that pretends it might unwind.
type FalseUnwindTerm struct {
	Real BlockID
}

type CallTerm struct {
	Func   Operand
	Args   []Operand
	Dest   Place
	Target BlockID
	Unwind BlockID
}
