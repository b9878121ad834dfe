// Package interp is a reference evaluator for the linear IR.
//
// It executes one function at a time, following branches, maintaining
// zero-initialized scratch storage for allocas, and recording every
// executed output-store call. It exists to check transformed functions
// against their originals: along any concrete path, the recorded final
// stores must carry the values the source program last wrote.
package interp

import (
	"fmt"
	"math"

	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

// maxSteps bounds execution so malformed loops terminate with an error.
const maxSteps = 1 << 20

// Scalar is a runtime scalar value.
// Integer types use U, floating-point types use F.
type Scalar struct {
	Type sig.ComponentType
	U    uint64
	F    float64
}

// Int returns an integer scalar.
func Int(t sig.ComponentType, v uint64) Scalar {
	return Scalar{Type: t, U: v}
}

// Float returns a floating-point scalar.
func Float(t sig.ComponentType, v float64) Scalar {
	return Scalar{Type: t, F: v}
}

// StoreEvent records one executed output-store call.
type StoreEvent struct {
	Kind  sig.Kind
	ID    uint32
	Row   uint32
	Col   uint32
	Value Scalar
}

// Options configures execution.
type Options struct {
	// Input supplies values for load primitives (loadInput,
	// loadPatchConstant). When nil, loads produce zero.
	Input func(op ir.Opcode, overload sig.ComponentType, id, row, col uint32) (Scalar, error)
}

// Trace is the observable result of executing a function.
type Trace struct {
	// Stores holds every executed output store, in execution order.
	Stores []StoreEvent
}

// address points into an alloca's storage.
type address struct {
	slot  *ir.Instruction
	index uint64
}

// result is a runtime operand value: a scalar or an address.
type result struct {
	scalar Scalar
	addr   *address
}

type machine struct {
	fn      *ir.Function
	opts    Options
	index   map[*ir.Instruction]int
	results map[*ir.Instruction]result
	slots   map[*ir.Instruction][]Scalar
	trace   *Trace
}

// Run executes fn from its first instruction to the first return reached.
func Run(fn *ir.Function, opts Options) (*Trace, error) {
	m := &machine{
		fn:      fn,
		opts:    opts,
		index:   make(map[*ir.Instruction]int, len(fn.Body)),
		results: make(map[*ir.Instruction]result),
		slots:   make(map[*ir.Instruction][]Scalar),
		trace:   &Trace{},
	}
	for i, inst := range fn.Body {
		m.index[inst] = i
	}

	pc := 0
	for steps := 0; ; steps++ {
		if steps >= maxSteps {
			return nil, fmt.Errorf("interp: function %s exceeded %d steps", fn.Name, maxSteps)
		}
		if pc < 0 || pc >= len(fn.Body) {
			return nil, fmt.Errorf("interp: function %s ran past the end of its body", fn.Name)
		}
		next, done, err := m.step(fn.Body[pc], pc)
		if err != nil {
			return nil, err
		}
		if done {
			return m.trace, nil
		}
		pc = next
	}
}

//nolint:gocognit // One case per instruction variant
func (m *machine) step(inst *ir.Instruction, pc int) (next int, done bool, err error) {
	switch k := inst.Kind.(type) {
	case ir.InstAlloca:
		storage := make([]Scalar, k.Count)
		for i := range storage {
			storage[i] = Scalar{Type: k.Elem}
		}
		m.slots[inst] = storage
		m.results[inst] = result{addr: &address{slot: inst}}

	case ir.InstElemPtr:
		base, err := m.addrOperand(k.Base)
		if err != nil {
			return 0, false, err
		}
		idx, err := m.scalarOperand(k.Index)
		if err != nil {
			return 0, false, err
		}
		m.results[inst] = result{addr: &address{slot: base.slot, index: base.index + idx.U}}

	case ir.InstLoad:
		addr, err := m.addrOperand(k.Addr)
		if err != nil {
			return 0, false, err
		}
		v, err := m.deref(addr)
		if err != nil {
			return 0, false, err
		}
		m.results[inst] = result{scalar: v}

	case ir.InstStore:
		addr, err := m.addrOperand(k.Addr)
		if err != nil {
			return 0, false, err
		}
		v, err := m.scalarOperand(k.Val)
		if err != nil {
			return 0, false, err
		}
		storage := m.slots[addr.slot]
		if addr.index >= uint64(len(storage)) {
			return 0, false, fmt.Errorf("interp: store index %d out of bounds (slot has %d elements)", addr.index, len(storage))
		}
		storage[addr.index] = v

	case ir.InstBinary:
		lhs, err := m.scalarOperand(k.LHS)
		if err != nil {
			return 0, false, err
		}
		rhs, err := m.scalarOperand(k.RHS)
		if err != nil {
			return 0, false, err
		}
		m.results[inst] = result{scalar: binary(k.Op, lhs, rhs)}

	case ir.InstTrunc:
		v, err := m.scalarOperand(k.Val)
		if err != nil {
			return 0, false, err
		}
		v.U &= widthMask(k.Width)
		m.results[inst] = result{scalar: v}

	case ir.InstZExt:
		v, err := m.scalarOperand(k.Val)
		if err != nil {
			return 0, false, err
		}
		m.results[inst] = result{scalar: v}

	case ir.InstCall:
		if err := m.call(inst, k); err != nil {
			return 0, false, err
		}

	case ir.InstRet:
		return 0, true, nil

	case ir.InstLabel:
		// No effect.

	case ir.InstBr:
		return m.jump(k.Target)

	case ir.InstCondBr:
		cond, err := m.scalarOperand(k.Cond)
		if err != nil {
			return 0, false, err
		}
		if cond.U != 0 {
			return m.jump(k.Then)
		}
		return m.jump(k.Else)

	default:
		return 0, false, fmt.Errorf("interp: unsupported instruction kind %T", inst.Kind)
	}
	return pc + 1, false, nil
}

func (m *machine) jump(target *ir.Instruction) (int, bool, error) {
	i, ok := m.index[target]
	if !ok {
		return 0, false, fmt.Errorf("interp: branch target is not in the function body")
	}
	return i, false, nil
}

func (m *machine) call(inst *ir.Instruction, k ir.InstCall) error {
	switch k.Op {
	case dxop.OpStoreOutput, dxop.OpStorePatchConstant:
		if w, ok := dxop.AsOutputStore(inst); ok {
			return m.storeOutput(w)
		}
		return fmt.Errorf("interp: malformed %s call", dxop.Name(k.Op))

	case dxop.OpLoadInput, dxop.OpLoadPatchConstant:
		if len(k.Args) != 3 {
			return fmt.Errorf("interp: %s expects 3 arguments, got %d", dxop.Name(k.Op), len(k.Args))
		}
		id, err := m.scalarOperand(k.Args[0])
		if err != nil {
			return err
		}
		row, err := m.scalarOperand(k.Args[1])
		if err != nil {
			return err
		}
		col, err := m.scalarOperand(k.Args[2])
		if err != nil {
			return err
		}
		v := Scalar{Type: k.Overload}
		if m.opts.Input != nil {
			v, err = m.opts.Input(k.Op, k.Overload, uint32(id.U), uint32(row.U), uint32(col.U))
			if err != nil {
				return err
			}
		}
		m.results[inst] = result{scalar: v}
		return nil

	default:
		return fmt.Errorf("interp: unsupported opcode %s", dxop.Name(k.Op))
	}
}

func (m *machine) storeOutput(w dxop.OutputStore) error {
	row, err := m.scalarOperand(w.Row)
	if err != nil {
		return err
	}
	col, err := m.scalarOperand(w.Col)
	if err != nil {
		return err
	}
	value, err := m.scalarOperand(w.Value)
	if err != nil {
		return err
	}
	m.trace.Stores = append(m.trace.Stores, StoreEvent{
		Kind:  w.Kind,
		ID:    w.SignatureID,
		Row:   uint32(row.U),
		Col:   uint32(col.U),
		Value: value,
	})
	return nil
}

func (m *machine) deref(addr *address) (Scalar, error) {
	storage, ok := m.slots[addr.slot]
	if !ok {
		return Scalar{}, fmt.Errorf("interp: load from an address with no storage")
	}
	if addr.index >= uint64(len(storage)) {
		return Scalar{}, fmt.Errorf("interp: load index %d out of bounds (slot has %d elements)", addr.index, len(storage))
	}
	return storage[addr.index], nil
}

func (m *machine) operand(v ir.Value) (result, error) {
	switch val := v.(type) {
	case ir.ConstInt:
		t := sig.U32
		if val.Width == 64 {
			t = sig.U64
		}
		return result{scalar: Int(t, val.Value)}, nil
	case ir.ConstFloat:
		t := sig.F32
		if val.Width == 64 {
			t = sig.F64
		}
		return result{scalar: Float(t, val.Value)}, nil
	case ir.Ref:
		r, ok := m.results[val.Inst]
		if !ok {
			return result{}, fmt.Errorf("interp: operand references an instruction that has not executed")
		}
		return r, nil
	case ir.Undef:
		return result{scalar: Scalar{}}, nil
	default:
		return result{}, fmt.Errorf("interp: unsupported value %T", v)
	}
}

func (m *machine) scalarOperand(v ir.Value) (Scalar, error) {
	r, err := m.operand(v)
	if err != nil {
		return Scalar{}, err
	}
	if r.addr != nil {
		return Scalar{}, fmt.Errorf("interp: expected a scalar operand, got an address")
	}
	return r.scalar, nil
}

func (m *machine) addrOperand(v ir.Value) (*address, error) {
	r, err := m.operand(v)
	if err != nil {
		return nil, err
	}
	if r.addr == nil {
		return nil, fmt.Errorf("interp: expected an address operand, got a scalar")
	}
	return r.addr, nil
}

func binary(op ir.BinaryOp, lhs, rhs Scalar) Scalar {
	if lhs.Type.IsFloat() || rhs.Type.IsFloat() {
		out := Scalar{Type: lhs.Type}
		if op == ir.BinAdd {
			out.F = lhs.F + rhs.F
		} else {
			out.F = lhs.F * rhs.F
		}
		return out
	}
	out := Scalar{Type: lhs.Type}
	if op == ir.BinAdd {
		out.U = lhs.U + rhs.U
	} else {
		out.U = lhs.U * rhs.U
	}
	return out
}

func widthMask(width uint8) uint64 {
	if width >= 64 {
		return math.MaxUint64
	}
	return 1<<width - 1
}
