package ir

import "github.com/gogpu/dxir/sig"

// Value represents an instruction operand.
type Value interface {
	value()
}

// ConstInt represents an integer constant of a given width (in bits).
// Constants carrying coordinates are always non-negative.
type ConstInt struct {
	Value uint64
	Width uint8
}

func (ConstInt) value() {}

// ConstFloat represents a floating-point constant of a given width (in bits).
type ConstFloat struct {
	Value float64
	Width uint8
}

func (ConstFloat) value() {}

// Ref represents the result of a previously executed instruction.
type Ref struct {
	Inst *Instruction
}

func (Ref) value() {}

// Undef represents an undefined value.
type Undef struct{}

func (Undef) value() {}

// Width reports the integer width of a value in bits, or 0 when the value
// has no integer width (addresses, floats, undef).
func Width(v Value) uint8 {
	switch val := v.(type) {
	case ConstInt:
		return val.Width
	case Ref:
		return resultWidth(val.Inst)
	default:
		return 0
	}
}

func resultWidth(inst *Instruction) uint8 {
	switch k := inst.Kind.(type) {
	case InstTrunc:
		return k.Width
	case InstZExt:
		return k.Width
	case InstBinary:
		return Width(k.LHS)
	case InstLoad:
		if t, ok := AddrElemType(k.Addr); ok && !t.IsFloat() {
			return t.Bits()
		}
		return 0
	case InstCall:
		if !k.Overload.IsFloat() {
			return k.Overload.Bits()
		}
		return 0
	default:
		return 0
	}
}

// AddrElemType resolves the element type behind an address value by
// following element-pointer chains back to the defining alloca.
func AddrElemType(addr Value) (sig.ComponentType, bool) {
	ref, isRef := addr.(Ref)
	if !isRef {
		return sig.Unknown, false
	}
	switch k := ref.Inst.Kind.(type) {
	case InstAlloca:
		return k.Elem, true
	case InstElemPtr:
		return AddrElemType(k.Base)
	default:
		return sig.Unknown, false
	}
}

// HasResult reports whether an instruction kind produces a value.
// Calls are treated as value-producing here; whether a particular opcode
// actually returns a value is opcode semantics owned by the dxop package.
func HasResult(k InstKind) bool {
	switch k.(type) {
	case InstAlloca, InstElemPtr, InstLoad, InstBinary, InstTrunc, InstZExt, InstCall:
		return true
	default:
		return false
	}
}
