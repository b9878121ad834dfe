package ir

import "github.com/gogpu/dxir/sig"

// Instruction represents one instruction in a function body.
// Instructions are referenced by identity: a *Instruction is stable across
// insertions and removals in the owning function.
type Instruction struct {
	// Name optionally labels the instruction's result for diagnostics
	Name string

	// Kind holds the instruction variant
	Kind InstKind
}

// InstKind represents the different kinds of instructions.
type InstKind interface {
	instKind()
}

// InstAlloca allocates function-local scratch storage.
// Count is the number of elements; a count of 1 is a scalar slot addressed
// directly, larger counts form a contiguous row-major slot addressed through
// InstElemPtr. Storage is zero-initialized.
type InstAlloca struct {
	Elem  sig.ComponentType
	Count uint32
}

func (InstAlloca) instKind() {}

// InstElemPtr computes the address of one element of an allocated slot.
// Base must be the result of an InstAlloca; Index is an integer value.
type InstElemPtr struct {
	Base  Value
	Index Value
}

func (InstElemPtr) instKind() {}

// InstLoad loads the value at an address.
type InstLoad struct {
	Addr Value
}

func (InstLoad) instKind() {}

// InstStore stores a value at an address.
type InstStore struct {
	Addr Value
	Val  Value
}

func (InstStore) instKind() {}

// BinaryOp represents integer arithmetic used for address computation.
type BinaryOp uint8

const (
	BinMul BinaryOp = iota
	BinAdd
)

// String returns the mnemonic of the operation.
func (op BinaryOp) String() string {
	if op == BinAdd {
		return "add"
	}
	return "mul"
}

// InstBinary computes a binary arithmetic operation.
type InstBinary struct {
	Op  BinaryOp
	LHS Value
	RHS Value
}

func (InstBinary) instKind() {}

// InstTrunc truncates an integer value to a narrower width (in bits).
type InstTrunc struct {
	Val   Value
	Width uint8
}

func (InstTrunc) instKind() {}

// InstZExt zero-extends an integer value to a wider width (in bits).
type InstZExt struct {
	Val   Value
	Width uint8
}

func (InstZExt) instKind() {}

// InstCall calls a pipeline primitive.
// Op selects the primitive, Overload its component-type instantiation.
// Whether the call produces a result depends on the opcode.
type InstCall struct {
	Op       Opcode
	Overload sig.ComponentType
	Args     []Value
}

func (InstCall) instKind() {}

// InstRet unconditionally ends execution of the function.
type InstRet struct{}

func (InstRet) instKind() {}

// InstLabel marks a branch target. It has no runtime effect.
type InstLabel struct{}

func (InstLabel) instKind() {}

// InstBr branches unconditionally to a label in the same function.
type InstBr struct {
	Target *Instruction // must be an InstLabel
}

func (InstBr) instKind() {}

// InstCondBr branches to Then if Cond is non-zero, otherwise to Else.
type InstCondBr struct {
	Cond Value
	Then *Instruction // must be an InstLabel
	Else *Instruction // must be an InstLabel
}

func (InstCondBr) instKind() {}
