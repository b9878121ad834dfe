package binfile

import (
	"bytes"
	"strings"
	"testing"

	"github.com/gogpu/dxir/disasm"
	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

// fullModule exercises every instruction and value kind.
func fullModule(t *testing.T) *ir.Module {
	t.Helper()
	m := &ir.Module{Name: "roundtrip", Stage: ir.StageHull}
	if err := m.Outputs.Add(sig.Element{ID: 0, Name: "POS", Rows: 1, Cols: 4, Type: sig.F32, Kind: sig.Output}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := m.PatchConstants.Add(sig.Element{ID: 0, Name: "TESS", Rows: 1, Cols: 1, Type: sig.F32, Kind: sig.PatchConstant}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	fn := &ir.Function{Name: "main"}
	m.Functions = append(m.Functions, fn)
	b := ir.NewBuilder(fn)

	slot := b.CreateAlloca(sig.F32, 4, "scratch")
	wide := b.CreateCall(dxop.OpLoadInput, sig.U64, []ir.Value{
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 0, Width: 8},
	})
	narrow := b.CreateTrunc(wide, 32)
	extended := b.CreateZExt(narrow, 64)
	idx := b.CreateAdd(b.CreateMul(narrow, ir.ConstInt{Value: 4, Width: 32}), ir.ConstInt{Value: 1, Width: 32})
	addr := b.CreateElemPtr(slot, idx)
	b.CreateStore(addr, ir.ConstFloat{Value: 1.5, Width: 32})
	loaded := b.CreateLoad(addr)

	then := &ir.Instruction{Kind: ir.InstLabel{}}
	els := &ir.Instruction{Kind: ir.InstLabel{}}
	out := &ir.Instruction{Kind: ir.InstLabel{}}
	b.CreateCondBr(extended, then, els)
	fn.Append(then)
	b.CreateCall(dxop.OpStoreOutput, sig.F32, []ir.Value{
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 1, Width: 8},
		loaded,
	})
	b.CreateBr(out)
	fn.Append(els)
	b.CreateCall(dxop.OpStorePatchConstant, sig.F32, []ir.Value{
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 0, Width: 32},
		ir.ConstInt{Value: 0, Width: 8},
		ir.Undef{},
	})
	b.CreateBr(out)
	fn.Append(out)
	b.CreateRet()
	return m
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	m := fullModule(t)

	var buf bytes.Buffer
	if err := Encode(&buf, m); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	decoded, err := Decode(&buf)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	// The disassembly is a faithful, deterministic rendering; equal text
	// means equal structure.
	if got, want := disasm.Print(decoded), disasm.Print(m); got != want {
		t.Errorf("Round trip changed the module.\nwant:\n%s\ngot:\n%s", want, got)
	}

	// A second encode must be byte-identical.
	var buf2 bytes.Buffer
	if err := Encode(&buf2, decoded); err != nil {
		t.Fatalf("Encode(decoded): %v", err)
	}
	var buf3 bytes.Buffer
	if err := Encode(&buf3, m); err != nil {
		t.Fatalf("Encode(original): %v", err)
	}
	if !bytes.Equal(buf2.Bytes(), buf3.Bytes()) {
		t.Errorf("Re-encoding the decoded module produced different bytes")
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		fragment string
	}{
		{"bad json", `{`, "binfile"},
		{"unknown stage", `{"name":"m","stage":"raygen","functions":[]}`, "unknown shader stage"},
		{
			"unknown instruction",
			`{"name":"m","stage":"vertex","functions":[{"name":"f","body":[{"op":"phi"}]}]}`,
			"unknown instruction",
		},
		{
			"unknown primitive",
			`{"name":"m","stage":"vertex","functions":[{"name":"f","body":[{"op":"call","opcode":"rayQuery","type":"f32"}]}]}`,
			"unknown primitive",
		},
		{
			"ref out of range",
			`{"name":"m","stage":"vertex","functions":[{"name":"f","body":[{"op":"load","args":[{"kind":"ref","ref":9}]}]}]}`,
			"out of range",
		},
		{
			"missing branch target",
			`{"name":"m","stage":"vertex","functions":[{"name":"f","body":[{"op":"br"}]}]}`,
			"missing branch reference",
		},
		{
			"bad element type",
			`{"name":"m","stage":"vertex","outputs":[{"id":0,"name":"A","rows":1,"cols":1,"type":"vec4"}],"functions":[]}`,
			"unknown component type",
		},
		{
			"duplicate element",
			`{"name":"m","stage":"vertex","outputs":[{"id":0,"name":"A","rows":1,"cols":1,"type":"f32"},{"id":0,"name":"B","rows":1,"cols":1,"type":"f32"}],"functions":[]}`,
			"duplicate",
		},
	}
	for _, c := range cases {
		_, err := Decode(strings.NewReader(c.input))
		if err == nil {
			t.Errorf("%s: expected an error", c.name)
			continue
		}
		if !strings.Contains(err.Error(), c.fragment) {
			t.Errorf("%s: expected error containing %q, got: %v", c.name, c.fragment, err)
		}
	}
}
