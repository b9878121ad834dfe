package ir

import (
	"testing"

	"github.com/gogpu/dxir/sig"
)

func TestFunction_InsertBefore(t *testing.T) {
	fn := &Function{Name: "f"}
	a := fn.Append(&Instruction{Name: "a", Kind: InstLabel{}})
	c := fn.Append(&Instruction{Name: "c", Kind: InstRet{}})

	b := &Instruction{Name: "b", Kind: InstLabel{}}
	fn.InsertBefore(c, b)

	want := []*Instruction{a, b, c}
	if len(fn.Body) != len(want) {
		t.Fatalf("Expected %d instructions, got %d", len(want), len(fn.Body))
	}
	for i := range want {
		if fn.Body[i] != want[i] {
			t.Errorf("Position %d: expected %q, got %q", i, want[i].Name, fn.Body[i].Name)
		}
	}
}

func TestFunction_Remove(t *testing.T) {
	fn := &Function{Name: "f"}
	a := fn.Append(&Instruction{Name: "a", Kind: InstLabel{}})
	b := fn.Append(&Instruction{Name: "b", Kind: InstLabel{}})
	c := fn.Append(&Instruction{Name: "c", Kind: InstRet{}})

	fn.Remove(b)

	if len(fn.Body) != 2 || fn.Body[0] != a || fn.Body[1] != c {
		t.Errorf("Remove left an unexpected body")
	}
}

func TestFunction_Returns(t *testing.T) {
	fn := &Function{Name: "f"}
	fn.Append(&Instruction{Kind: InstLabel{}})
	r1 := fn.Append(&Instruction{Kind: InstRet{}})
	fn.Append(&Instruction{Kind: InstLabel{}})
	r2 := fn.Append(&Instruction{Kind: InstRet{}})

	rets := fn.Returns()
	if len(rets) != 2 || rets[0] != r1 || rets[1] != r2 {
		t.Errorf("Expected both returns in program order")
	}
}

func TestBuilder_EntryInsertionKeepsCreationOrder(t *testing.T) {
	fn := &Function{Name: "f"}
	b := NewBuilder(fn)
	first := b.CreateRet()

	b.SetInsertPointAtEntry()
	s1 := b.CreateAlloca(sig.F32, 1, "s1")
	s2 := b.CreateAlloca(sig.F32, 4, "s2")

	if len(fn.Body) != 3 {
		t.Fatalf("Expected 3 instructions, got %d", len(fn.Body))
	}
	if fn.Body[0] != s1.(Ref).Inst || fn.Body[1] != s2.(Ref).Inst || fn.Body[2] != first {
		t.Errorf("Entry insertions did not keep creation order before the body")
	}
}

func TestBuilder_InsertBeforeInstruction(t *testing.T) {
	fn := &Function{Name: "f"}
	b := NewBuilder(fn)
	slot := b.CreateAlloca(sig.F32, 1, "slot")
	ret := b.CreateRet()

	b.SetInsertPoint(ret)
	load := b.CreateLoad(slot)

	if fn.Body[1] != load.(Ref).Inst || fn.Body[2] != ret {
		t.Errorf("Expected the load between alloca and ret")
	}
}

func TestWidth(t *testing.T) {
	fn := &Function{Name: "f"}
	b := NewBuilder(fn)
	slot32 := b.CreateAlloca(sig.U32, 4, "")
	addr := b.CreateElemPtr(slot32, ConstInt{Value: 1, Width: 32})
	load := b.CreateLoad(addr)
	wide := b.CreateZExt(load, 64)
	narrow := b.CreateTrunc(wide, 16)
	sum := b.CreateAdd(load, ConstInt{Value: 1, Width: 32})

	cases := []struct {
		name string
		v    Value
		want uint8
	}{
		{"const", ConstInt{Value: 3, Width: 8}, 8},
		{"load", load, 32},
		{"zext", wide, 64},
		{"trunc", narrow, 16},
		{"binary", sum, 32},
		{"address", addr, 0},
		{"float", ConstFloat{Value: 1, Width: 32}, 0},
		{"undef", Undef{}, 0},
	}
	for _, c := range cases {
		if got := Width(c.v); got != c.want {
			t.Errorf("%s: expected width %d, got %d", c.name, c.want, got)
		}
	}
}

func TestAddrElemType(t *testing.T) {
	fn := &Function{Name: "f"}
	b := NewBuilder(fn)
	slot := b.CreateAlloca(sig.F32, 8, "")
	addr := b.CreateElemPtr(slot, ConstInt{Value: 6, Width: 32})

	if typ, ok := AddrElemType(addr); !ok || typ != sig.F32 {
		t.Errorf("Expected f32 element type, got %v (ok=%v)", typ, ok)
	}
	if _, ok := AddrElemType(ConstInt{Value: 1, Width: 32}); ok {
		t.Errorf("A constant is not an address")
	}
}

func TestModule_SignatureSelectsTable(t *testing.T) {
	m := &Module{}
	if err := m.Outputs.Add(sig.Element{ID: 0, Name: "A", Rows: 1, Cols: 1, Type: sig.F32, Kind: sig.Output}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.PatchConstants.Add(sig.Element{ID: 0, Name: "B", Rows: 1, Cols: 1, Type: sig.F32, Kind: sig.PatchConstant}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	e, err := m.Signature(sig.Output).Element(0)
	if err != nil || e.Name != "A" {
		t.Errorf("Expected output table to resolve A, got %v, %v", e, err)
	}
	e, err = m.Signature(sig.PatchConstant).Element(0)
	if err != nil || e.Name != "B" {
		t.Errorf("Expected patch-constant table to resolve B, got %v, %v", e, err)
	}
}

func TestStage_RoundTrip(t *testing.T) {
	stages := []ShaderStage{StageVertex, StagePixel, StageHull, StageDomain, StageGeometry, StageCompute}
	for _, st := range stages {
		got, ok := StageFromString(st.String())
		if !ok || got != st {
			t.Errorf("%v did not round-trip through %q", st, st.String())
		}
	}
	if _, ok := StageFromString("raygen"); ok {
		t.Errorf("Expected failure for an unknown stage")
	}
}
