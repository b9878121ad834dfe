// Package dxop defines the pipeline primitives callable from the IR.
//
// Primitives are identified by DXIL opcode numbers and instantiated per
// component type through the call's overload. The package provides the
// opcode table, classification of output-store calls, and resolution of
// the store primitive matching an output category.
package dxop

import (
	"fmt"

	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

// Opcode numbers follow the DXIL operation table.
const (
	OpLoadInput          ir.Opcode = 4
	OpStoreOutput        ir.Opcode = 5
	OpLoadPatchConstant  ir.Opcode = 104
	OpStorePatchConstant ir.Opcode = 106
)

// opInfo describes the fixed call signature of a primitive.
type opInfo struct {
	name      string
	arity     int
	hasResult bool
}

var ops = map[ir.Opcode]opInfo{
	OpLoadInput:          {name: "loadInput", arity: 3, hasResult: true},
	OpStoreOutput:        {name: "storeOutput", arity: 4, hasResult: false},
	OpLoadPatchConstant:  {name: "loadPatchConstant", arity: 3, hasResult: true},
	OpStorePatchConstant: {name: "storePatchConstant", arity: 4, hasResult: false},
}

// Name returns the primitive's name, or a numeric placeholder for
// unknown opcodes.
func Name(op ir.Opcode) string {
	if info, ok := ops[op]; ok {
		return info.name
	}
	return fmt.Sprintf("op%d", uint32(op))
}

// FromName resolves a primitive name back to its opcode.
func FromName(name string) (ir.Opcode, bool) {
	for op, info := range ops {
		if info.name == name {
			return op, true
		}
	}
	return 0, false
}

// HasResult reports whether calls to the opcode produce a value.
func HasResult(op ir.Opcode) bool {
	return ops[op].hasResult
}

// StoreOpcode resolves the store primitive for an output category.
func StoreOpcode(kind sig.Kind) ir.Opcode {
	if kind == sig.PatchConstant {
		return OpStorePatchConstant
	}
	return OpStoreOutput
}

// LoadOpcode resolves the load primitive for an output category.
func LoadOpcode(kind sig.Kind) ir.Opcode {
	if kind == sig.PatchConstant {
		return OpLoadPatchConstant
	}
	return OpLoadInput
}

// storeKind maps a store opcode back to its output category.
func storeKind(op ir.Opcode) (sig.Kind, bool) {
	switch op {
	case OpStoreOutput:
		return sig.Output, true
	case OpStorePatchConstant:
		return sig.PatchConstant, true
	default:
		return sig.Output, false
	}
}

// Store call operand layout.
const (
	storeArgSignatureID = 0
	storeArgRow         = 1
	storeArgCol         = 2
	storeArgValue       = 3
	storeArity          = 4
)

// OutputStore is a classified store-to-output call.
type OutputStore struct {
	// Call is the classified instruction
	Call *ir.Instruction

	// Kind is the output category implied by the opcode
	Kind sig.Kind

	// SignatureID identifies the target signature element
	SignatureID uint32

	// Row and Col are the written coordinate (integer-valued)
	Row ir.Value
	Col ir.Value

	// Value is the stored value
	Value ir.Value

	// Overload is the component-type instantiation of the call
	Overload sig.ComponentType
}

// AsOutputStore classifies an instruction as a store to a regular or
// patch-constant output and extracts its operands. The signature
// identifier operand must be an integer constant.
func AsOutputStore(inst *ir.Instruction) (OutputStore, bool) {
	call, ok := inst.Kind.(ir.InstCall)
	if !ok {
		return OutputStore{}, false
	}
	kind, ok := storeKind(call.Op)
	if !ok {
		return OutputStore{}, false
	}
	if len(call.Args) != storeArity {
		return OutputStore{}, false
	}
	id, ok := call.Args[storeArgSignatureID].(ir.ConstInt)
	if !ok {
		return OutputStore{}, false
	}
	return OutputStore{
		Call:        inst,
		Kind:        kind,
		SignatureID: uint32(id.Value),
		Row:         call.Args[storeArgRow],
		Col:         call.Args[storeArgCol],
		Value:       call.Args[storeArgValue],
		Overload:    call.Overload,
	}, true
}

// Check verifies opcode-level call semantics across a module: known
// opcodes, correct arity, constant signature identifiers on stores, and
// no value references to void calls.
func Check(m *ir.Module) []error {
	var errs []error
	for _, fn := range m.Functions {
		for i, inst := range fn.Body {
			call, ok := inst.Kind.(ir.InstCall)
			if !ok {
				continue
			}
			info, known := ops[call.Op]
			if !known {
				errs = append(errs, fmt.Errorf("dxop: function %s, instruction %d: unknown opcode %d", fn.Name, i, uint32(call.Op)))
				continue
			}
			if len(call.Args) != info.arity {
				errs = append(errs, fmt.Errorf("dxop: function %s, instruction %d: %s expects %d arguments, got %d",
					fn.Name, i, info.name, info.arity, len(call.Args)))
			}
			if _, isStore := storeKind(call.Op); isStore && len(call.Args) == storeArity {
				if _, ok := call.Args[storeArgSignatureID].(ir.ConstInt); !ok {
					errs = append(errs, fmt.Errorf("dxop: function %s, instruction %d: %s signature id must be an integer constant",
						fn.Name, i, info.name))
				}
			}
		}
		errs = append(errs, checkVoidRefs(fn)...)
	}
	return errs
}

// checkVoidRefs rejects operand references to calls that produce no value.
func checkVoidRefs(fn *ir.Function) []error {
	var errs []error
	check := func(i int, v ir.Value) {
		ref, ok := v.(ir.Ref)
		if !ok || ref.Inst == nil {
			return
		}
		call, ok := ref.Inst.Kind.(ir.InstCall)
		if ok && !HasResult(call.Op) {
			errs = append(errs, fmt.Errorf("dxop: function %s, instruction %d: operand references a void %s call",
				fn.Name, i, Name(call.Op)))
		}
	}
	for i, inst := range fn.Body {
		switch k := inst.Kind.(type) {
		case ir.InstElemPtr:
			check(i, k.Base)
			check(i, k.Index)
		case ir.InstLoad:
			check(i, k.Addr)
		case ir.InstStore:
			check(i, k.Addr)
			check(i, k.Val)
		case ir.InstBinary:
			check(i, k.LHS)
			check(i, k.RHS)
		case ir.InstTrunc:
			check(i, k.Val)
		case ir.InstZExt:
			check(i, k.Val)
		case ir.InstCall:
			for _, arg := range k.Args {
				check(i, arg)
			}
		case ir.InstCondBr:
			check(i, k.Cond)
		}
	}
	return errs
}
