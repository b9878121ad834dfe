package ir

import "github.com/gogpu/dxir/sig"

// Builder constructs instructions at a chosen insertion point.
// Newly created instructions are inserted immediately before the insertion
// point, or appended when no point is set. Successive creations preserve
// their creation order.
type Builder struct {
	fn  *Function
	pos *Instruction // insert before this instruction; nil appends
}

// NewBuilder returns a builder appending to the end of fn.
func NewBuilder(fn *Function) *Builder {
	return &Builder{fn: fn}
}

// SetInsertPoint places subsequent instructions immediately before inst.
func (b *Builder) SetInsertPoint(inst *Instruction) {
	b.pos = inst
}

// SetInsertPointAtEntry places subsequent instructions before any existing
// instruction of the function.
func (b *Builder) SetInsertPointAtEntry() {
	if len(b.fn.Body) > 0 {
		b.pos = b.fn.Body[0]
	} else {
		b.pos = nil
	}
}

// Function returns the function the builder inserts into.
func (b *Builder) Function() *Function {
	return b.fn
}

func (b *Builder) insert(name string, kind InstKind) *Instruction {
	inst := &Instruction{Name: name, Kind: kind}
	if b.pos == nil {
		b.fn.Append(inst)
	} else {
		b.fn.InsertBefore(b.pos, inst)
	}
	return inst
}

// CreateAlloca allocates a zero-initialized scratch slot of count elements.
func (b *Builder) CreateAlloca(elem sig.ComponentType, count uint32, name string) Value {
	return Ref{Inst: b.insert(name, InstAlloca{Elem: elem, Count: count})}
}

// CreateElemPtr computes the address of one element of an allocated slot.
func (b *Builder) CreateElemPtr(base, index Value) Value {
	return Ref{Inst: b.insert("", InstElemPtr{Base: base, Index: index})}
}

// CreateLoad loads the value at an address.
func (b *Builder) CreateLoad(addr Value) Value {
	return Ref{Inst: b.insert("", InstLoad{Addr: addr})}
}

// CreateStore stores a value at an address.
func (b *Builder) CreateStore(addr, val Value) *Instruction {
	return b.insert("", InstStore{Addr: addr, Val: val})
}

// CreateMul multiplies two integer values.
func (b *Builder) CreateMul(lhs, rhs Value) Value {
	return Ref{Inst: b.insert("", InstBinary{Op: BinMul, LHS: lhs, RHS: rhs})}
}

// CreateAdd adds two integer values.
func (b *Builder) CreateAdd(lhs, rhs Value) Value {
	return Ref{Inst: b.insert("", InstBinary{Op: BinAdd, LHS: lhs, RHS: rhs})}
}

// CreateTrunc truncates an integer value to width bits.
func (b *Builder) CreateTrunc(val Value, width uint8) Value {
	return Ref{Inst: b.insert("", InstTrunc{Val: val, Width: width})}
}

// CreateZExt zero-extends an integer value to width bits.
func (b *Builder) CreateZExt(val Value, width uint8) Value {
	return Ref{Inst: b.insert("", InstZExt{Val: val, Width: width})}
}

// CreateCall calls a pipeline primitive.
func (b *Builder) CreateCall(op Opcode, overload sig.ComponentType, args []Value) Value {
	return Ref{Inst: b.insert("", InstCall{Op: op, Overload: overload, Args: args})}
}

// CreateRet ends execution of the function.
func (b *Builder) CreateRet() *Instruction {
	return b.insert("", InstRet{})
}

// CreateLabel marks a branch target.
func (b *Builder) CreateLabel(name string) *Instruction {
	return b.insert(name, InstLabel{})
}

// CreateBr branches unconditionally to a label.
func (b *Builder) CreateBr(target *Instruction) *Instruction {
	return b.insert("", InstBr{Target: target})
}

// CreateCondBr branches to then when cond is non-zero, otherwise to els.
func (b *Builder) CreateCondBr(cond Value, then, els *Instruction) *Instruction {
	return b.insert("", InstCondBr{Cond: cond, Then: then, Else: els})
}
