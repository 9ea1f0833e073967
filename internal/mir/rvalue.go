package mir

// OperandKind distinguishes operand types.
type OperandKind uint8

const (
	// OperandConst represents a constant operand.
	OperandConst OperandKind = iota
	// OperandCopy reads a place without consuming it.
	OperandCopy
	// OperandMove reads a place and deinitializes it.
	OperandMove
)

// Operand represents an argument to a right-hand value or terminator.
type Operand struct {
	Kind OperandKind

	Const Const
	Place Place
}

// ConstOperand wraps a constant as an operand.
func ConstOperand(c Const) Operand {
	return Operand{Kind: OperandConst, Const: c}
}

// CopyOperand reads the place without consuming it.
func CopyOperand(p Place) Operand {
	return Operand{Kind: OperandCopy, Place: p}
}

// MoveOperand consumes the place.
func MoveOperand(p Place) Operand {
	return Operand{Kind: OperandMove, Place: p}
}

// ConstKind distinguishes constant kinds.
type ConstKind uint8

const (
	ConstUnit ConstKind = iota
	ConstInt
	ConstUint
	ConstFloat
	ConstBool
	ConstString
)

type Const struct {
	Kind ConstKind

	IntValue    int64
	UintValue   uint64
	FloatValue  float64
	BoolValue   bool
	StringValue string
}

// BinOp enumerates binary operators.
type BinOp uint8

const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinRem
	BinEq
	BinNe
	BinLt
	BinLe
	BinGt
	BinGe
	BinBitAnd
	BinBitOr
	BinBitXor
	BinShl
	BinShr
)

// UnOp enumerates unary operators.
type UnOp uint8

const (
	UnNeg UnOp = iota
	UnNot
)

// RValueKind distinguishes right-hand value kinds.
type RValueKind uint8

const (
	// RValueUse forwards a single operand.
	RValueUse RValueKind = iota
	// RValueRepeat builds an array from one operand repeated Count times.
	RValueRepeat
	// RValueAggregate builds a composite value from element operands.
	RValueAggregate
	// RValueBinaryOp applies a binary operator.
	RValueBinaryOp
	// RValueCheckedBinaryOp applies a binary operator with an overflow flag.
	RValueCheckedBinaryOp
	// RValueUnaryOp applies a unary operator.
	RValueUnaryOp
	// RValueRef borrows a place.
	RValueRef
)

// RValue represents a right-hand value of an assignment.
// Binary carries the payload for both RValueBinaryOp and RValueCheckedBinaryOp.
type RValue struct {
	Kind RValueKind

	Use       Operand
	Repeat    RepeatRValue
	Aggregate AggregateRValue
	Binary    BinaryOpRValue
	Unary     UnaryOpRValue
	Ref       RefRValue
}

type RepeatRValue struct {
	Elem  Operand
	Count uint64
}

type AggregateRValue struct {
	Elems []Operand
}

type BinaryOpRValue struct {
	Op    BinOp
	Left  Operand
	Right Operand
}

type UnaryOpRValue struct {
	Op      UnOp
	Operand Operand
}

type RefRValue struct {
	Place   Place
	Mutable bool
}

// UseRValue wraps an operand as an RValue.
func UseRValue(op Operand) RValue {
	return RValue{Kind: RValueUse, Use: op}
}
