package transform

import (
	"fmt"

	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

// indexWidth is the native width of scratch-slot indices, in bits.
const indexWidth = 32

// PreserveOutputs guarantees that every output element written anywhere in
// a function is stored completely, one call per coordinate, on every exit
// path. Original output stores are redirected into per-element scratch
// slots at their original program points; the buffered values are then
// emitted immediately before each return, and the original stores erased.
//
// Output elements with no writes in the function are left untouched.
// Because the materialized stores use the same call form as the originals,
// the pass must run at most once per function (see the package notes).
type PreserveOutputs struct{}

// Name returns the pass name.
func (PreserveOutputs) Name() string {
	return "preserve-all-outputs"
}

// Run rewrites one function. It reports true when the function contained
// at least one output store and was rewritten, and fails only when a store
// targets a signature element that does not exist, which indicates
// malformed upstream IR.
func (PreserveOutputs) Run(m *ir.Module, fn *ir.Function) (bool, error) {
	writes := collectOutputStores(fn)
	if len(writes) == 0 {
		return false, nil
	}

	outputs, err := buildOutputMap(m, fn, writes)
	if err != nil {
		return false, err
	}

	b := ir.NewBuilder(fn)
	createScratchSlots(b, outputs)
	redirectStores(b, outputs, writes)
	materializeExits(b, fn, outputs)
	eraseOriginalStores(fn, writes)

	return true, nil
}

// collectOutputStores scans the body in program order and extracts every
// store to a regular or patch-constant output.
func collectOutputStores(fn *ir.Function) []dxop.OutputStore {
	var writes []dxop.OutputStore
	for _, inst := range fn.Body {
		if w, ok := dxop.AsOutputStore(inst); ok {
			writes = append(writes, w)
		}
	}
	return writes
}

// outputKey identifies one registered output. Regular and patch-constant
// tables number their elements independently, so the category is part of
// the key.
type outputKey struct {
	kind sig.Kind
	id   uint32
}

// outputMap registers one scratch element per distinct written output,
// in first-seen order.
type outputMap struct {
	byKey map[outputKey]*outputElement
	order []*outputElement
}

// buildOutputMap resolves each written identifier against the matching
// signature table, first write wins. An unresolvable identifier aborts
// the transformation.
func buildOutputMap(m *ir.Module, fn *ir.Function, writes []dxop.OutputStore) (*outputMap, error) {
	om := &outputMap{byKey: make(map[outputKey]*outputElement)}
	for _, w := range writes {
		key := outputKey{kind: w.Kind, id: w.SignatureID}
		if _, seen := om.byKey[key]; seen {
			continue
		}
		elem, err := m.Signature(w.Kind).Element(w.SignatureID)
		if err != nil {
			return nil, fmt.Errorf("function %s stores to an undeclared %s element: %w", fn.Name, w.Kind, err)
		}
		out := newOutputElement(elem)
		om.byKey[key] = out
		om.order = append(om.order, out)
	}
	return om, nil
}

// createScratchSlots allocates one slot per registered output at function
// entry, before any existing instruction executes.
func createScratchSlots(b *ir.Builder, outputs *outputMap) {
	b.SetInsertPointAtEntry()
	for _, out := range outputs.order {
		out.createSlot(b)
	}
}

// redirectStores replaces the effect of each original store, at its exact
// program point, with a store into the owning scratch slot.
func redirectStores(b *ir.Builder, outputs *outputMap, writes []dxop.OutputStore) {
	for _, w := range writes {
		out := outputs.byKey[outputKey{kind: w.Kind, id: w.SignatureID}]
		b.SetInsertPoint(w.Call)
		out.storeScratch(b, w.Row, w.Col, w.Value)
	}
}

// materializeExits emits, before every return, one real output store per
// coordinate of every registered output, sourced from its scratch slot.
func materializeExits(b *ir.Builder, fn *ir.Function, outputs *outputMap) {
	for _, ret := range fn.Returns() {
		b.SetInsertPoint(ret)
		for _, out := range outputs.order {
			out.materialize(b)
		}
	}
}

// eraseOriginalStores deletes the collected store instructions. The
// redirected scratch stores and the materialized exits have already taken
// over their effect.
func eraseOriginalStores(fn *ir.Function, writes []dxop.OutputStore) {
	for _, w := range writes {
		fn.Remove(w.Call)
	}
}

// outputElement is the scratch registration of one written output.
type outputElement struct {
	elem *sig.Element
	rows uint32
	cols uint32
	slot ir.Value
}

func newOutputElement(elem *sig.Element) *outputElement {
	return &outputElement{
		elem: elem,
		rows: elem.Rows,
		cols: elem.Cols,
	}
}

func (e *outputElement) numElements() uint32 {
	return e.rows * e.cols
}

func (e *outputElement) singleElement() bool {
	return e.rows == 1 && e.cols == 1
}

func (e *outputElement) createSlot(b *ir.Builder) {
	e.slot = b.CreateAlloca(e.elem.Type, e.numElements(), e.elem.Name)
}

// storeScratch buffers one written value at its coordinate.
func (e *outputElement) storeScratch(b *ir.Builder, row, col, value ir.Value) {
	b.CreateStore(e.scratchAddr(b, row, col), value)
}

// materialize emits the final stores for every coordinate of the element,
// row-major, at the builder's current insertion point.
func (e *outputElement) materialize(b *ir.Builder) {
	for row := uint32(0); row < e.rows; row++ {
		for col := uint32(0); col < e.cols; col++ {
			e.materializeCoord(b, row, col)
		}
	}
}

func (e *outputElement) materializeCoord(b *ir.Builder, row, col uint32) {
	rowV := ir.ConstInt{Value: uint64(row), Width: indexWidth}
	colV := ir.ConstInt{Value: uint64(col), Width: 8}
	value := b.CreateLoad(e.scratchAddr(b, rowV, colV))
	args := []ir.Value{
		ir.ConstInt{Value: uint64(e.elem.ID), Width: indexWidth},
		rowV,
		colV,
		value,
	}
	b.CreateCall(dxop.StoreOpcode(e.elem.Kind), e.elem.Type, args)
}

// scratchAddr computes the slot address for a coordinate. Scalar slots are
// addressed directly; aggregate slots use row-major index arithmetic.
func (e *outputElement) scratchAddr(b *ir.Builder, row, col ir.Value) ir.Value {
	if e.singleElement() {
		return e.slot
	}
	rowIdx := asIndex(b, row)
	colIdx := asIndex(b, col)
	if r, ok := rowIdx.(ir.ConstInt); ok {
		if c, ok := colIdx.(ir.ConstInt); ok {
			// Fold constant coordinates into a direct index.
			idx := ir.ConstInt{Value: r.Value*uint64(e.cols) + c.Value, Width: indexWidth}
			return b.CreateElemPtr(e.slot, idx)
		}
	}
	stride := ir.ConstInt{Value: uint64(e.cols), Width: indexWidth}
	rowOffset := b.CreateMul(rowIdx, stride)
	idx := b.CreateAdd(rowOffset, colIdx)
	return b.CreateElemPtr(e.slot, idx)
}

// asIndex normalizes an integer coordinate to the native index width:
// truncation when wider, zero-extension when narrower. Coordinates are
// non-negative, so sign-extension is never correct here.
func asIndex(b *ir.Builder, v ir.Value) ir.Value {
	if c, ok := v.(ir.ConstInt); ok {
		if c.Width == indexWidth {
			return v
		}
		return ir.ConstInt{Value: c.Value & (1<<indexWidth - 1), Width: indexWidth}
	}
	switch w := ir.Width(v); {
	case w == 0 || w == indexWidth:
		return v
	case w > indexWidth:
		return b.CreateTrunc(v, indexWidth)
	default:
		return b.CreateZExt(v, indexWidth)
	}
}
