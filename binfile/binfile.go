// Package binfile reads and writes IR modules as JSON.
//
// This is the interchange format of the dxirc tool: a transformed module is
// saved back in the same format it was loaded from. Instruction operands
// reference instructions by their body index, so a decoded module carries
// the same identities a freshly built one would.
package binfile

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

type jsonModule struct {
	Name           string         `json:"name"`
	Stage          string         `json:"stage"`
	Outputs        []jsonElement  `json:"outputs,omitempty"`
	PatchConstants []jsonElement  `json:"patch_constants,omitempty"`
	Functions      []jsonFunction `json:"functions"`
}

type jsonElement struct {
	ID   uint32 `json:"id"`
	Name string `json:"name"`
	Rows uint32 `json:"rows"`
	Cols uint32 `json:"cols"`
	Type string `json:"type"`
}

type jsonFunction struct {
	Name string            `json:"name"`
	Body []jsonInstruction `json:"body"`
}

type jsonInstruction struct {
	Op     string      `json:"op"`
	Name   string      `json:"name,omitempty"`
	Type   string      `json:"type,omitempty"`
	Count  uint32      `json:"count,omitempty"`
	Width  uint8       `json:"width,omitempty"`
	Opcode string      `json:"opcode,omitempty"`
	Args   []jsonValue `json:"args,omitempty"`
	Target *int        `json:"target,omitempty"`
	Then   *int        `json:"then,omitempty"`
	Else   *int        `json:"else,omitempty"`
}

type jsonValue struct {
	Kind  string  `json:"kind"`
	Int   uint64  `json:"int,omitempty"`
	Float float64 `json:"float,omitempty"`
	Width uint8   `json:"width,omitempty"`
	Ref   *int    `json:"ref,omitempty"`
}

// Encode writes a module as indented JSON.
func Encode(w io.Writer, m *ir.Module) error {
	jm := jsonModule{
		Name:           m.Name,
		Stage:          m.Stage.String(),
		Outputs:        encodeSignature(&m.Outputs),
		PatchConstants: encodeSignature(&m.PatchConstants),
	}
	for _, fn := range m.Functions {
		jf, err := encodeFunction(fn)
		if err != nil {
			return err
		}
		jm.Functions = append(jm.Functions, jf)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jm)
}

func encodeSignature(s *sig.Signature) []jsonElement {
	var out []jsonElement
	for _, e := range s.Elements() {
		out = append(out, jsonElement{
			ID:   e.ID,
			Name: e.Name,
			Rows: e.Rows,
			Cols: e.Cols,
			Type: e.Type.String(),
		})
	}
	return out
}

//nolint:gocognit // One case per instruction variant
func encodeFunction(fn *ir.Function) (jsonFunction, error) {
	index := make(map[*ir.Instruction]int, len(fn.Body))
	for i, inst := range fn.Body {
		index[inst] = i
	}
	refOf := func(inst *ir.Instruction) (*int, error) {
		i, ok := index[inst]
		if !ok {
			return nil, fmt.Errorf("binfile: function %s references an instruction outside its body", fn.Name)
		}
		return &i, nil
	}
	valueOf := func(v ir.Value) (jsonValue, error) {
		switch val := v.(type) {
		case ir.ConstInt:
			return jsonValue{Kind: "int", Int: val.Value, Width: val.Width}, nil
		case ir.ConstFloat:
			return jsonValue{Kind: "float", Float: val.Value, Width: val.Width}, nil
		case ir.Ref:
			ref, err := refOf(val.Inst)
			if err != nil {
				return jsonValue{}, err
			}
			return jsonValue{Kind: "ref", Ref: ref}, nil
		case ir.Undef:
			return jsonValue{Kind: "undef"}, nil
		default:
			return jsonValue{}, fmt.Errorf("binfile: function %s has an unsupported value %T", fn.Name, v)
		}
	}
	valuesOf := func(vs ...ir.Value) ([]jsonValue, error) {
		out := make([]jsonValue, len(vs))
		for i, v := range vs {
			jv, err := valueOf(v)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	}

	jf := jsonFunction{Name: fn.Name}
	for _, inst := range fn.Body {
		ji := jsonInstruction{Name: inst.Name}
		var err error
		switch k := inst.Kind.(type) {
		case ir.InstAlloca:
			ji.Op = "alloca"
			ji.Type = k.Elem.String()
			ji.Count = k.Count
		case ir.InstElemPtr:
			ji.Op = "elemptr"
			ji.Args, err = valuesOf(k.Base, k.Index)
		case ir.InstLoad:
			ji.Op = "load"
			ji.Args, err = valuesOf(k.Addr)
		case ir.InstStore:
			ji.Op = "store"
			ji.Args, err = valuesOf(k.Addr, k.Val)
		case ir.InstBinary:
			ji.Op = k.Op.String()
			ji.Args, err = valuesOf(k.LHS, k.RHS)
		case ir.InstTrunc:
			ji.Op = "trunc"
			ji.Width = k.Width
			ji.Args, err = valuesOf(k.Val)
		case ir.InstZExt:
			ji.Op = "zext"
			ji.Width = k.Width
			ji.Args, err = valuesOf(k.Val)
		case ir.InstCall:
			ji.Op = "call"
			ji.Opcode = dxop.Name(k.Op)
			ji.Type = k.Overload.String()
			ji.Args, err = valuesOf(k.Args...)
		case ir.InstRet:
			ji.Op = "ret"
		case ir.InstLabel:
			ji.Op = "label"
		case ir.InstBr:
			ji.Op = "br"
			ji.Target, err = refOf(k.Target)
		case ir.InstCondBr:
			ji.Op = "condbr"
			ji.Args, err = valuesOf(k.Cond)
			if err == nil {
				ji.Then, err = refOf(k.Then)
			}
			if err == nil {
				ji.Else, err = refOf(k.Else)
			}
		default:
			err = fmt.Errorf("binfile: function %s has an unsupported instruction %T", fn.Name, inst.Kind)
		}
		if err != nil {
			return jsonFunction{}, err
		}
		jf.Body = append(jf.Body, ji)
	}
	return jf, nil
}

// Decode reads a module from JSON.
func Decode(r io.Reader) (*ir.Module, error) {
	var jm jsonModule
	dec := json.NewDecoder(r)
	if err := dec.Decode(&jm); err != nil {
		return nil, fmt.Errorf("binfile: %w", err)
	}

	stage, ok := ir.StageFromString(jm.Stage)
	if !ok {
		return nil, fmt.Errorf("binfile: unknown shader stage %q", jm.Stage)
	}
	m := &ir.Module{Name: jm.Name, Stage: stage}

	if err := decodeSignature(&m.Outputs, jm.Outputs, sig.Output); err != nil {
		return nil, err
	}
	if err := decodeSignature(&m.PatchConstants, jm.PatchConstants, sig.PatchConstant); err != nil {
		return nil, err
	}

	for _, jf := range jm.Functions {
		fn, err := decodeFunction(jf)
		if err != nil {
			return nil, err
		}
		m.Functions = append(m.Functions, fn)
	}
	return m, nil
}

func decodeSignature(s *sig.Signature, elements []jsonElement, kind sig.Kind) error {
	for _, je := range elements {
		t, ok := sig.ComponentTypeFromString(je.Type)
		if !ok {
			return fmt.Errorf("binfile: element %d (%s) has unknown component type %q", je.ID, je.Name, je.Type)
		}
		err := s.Add(sig.Element{
			ID:   je.ID,
			Name: je.Name,
			Rows: je.Rows,
			Cols: je.Cols,
			Type: t,
			Kind: kind,
		})
		if err != nil {
			return fmt.Errorf("binfile: %w", err)
		}
	}
	return nil
}

//nolint:gocognit // One case per instruction variant
func decodeFunction(jf jsonFunction) (*ir.Function, error) {
	fn := &ir.Function{Name: jf.Name}

	// Operand and branch references are body indices, and branches may
	// point forward, so instruction shells are created before any kind
	// is filled in.
	for _, ji := range jf.Body {
		fn.Append(&ir.Instruction{Name: ji.Name})
	}

	instAt := func(ref *int, what string) (*ir.Instruction, error) {
		if ref == nil {
			return nil, fmt.Errorf("binfile: function %s: missing %s reference", jf.Name, what)
		}
		if *ref < 0 || *ref >= len(fn.Body) {
			return nil, fmt.Errorf("binfile: function %s: %s reference %d out of range", jf.Name, what, *ref)
		}
		return fn.Body[*ref], nil
	}
	valueAt := func(jv jsonValue) (ir.Value, error) {
		switch jv.Kind {
		case "int":
			return ir.ConstInt{Value: jv.Int, Width: jv.Width}, nil
		case "float":
			return ir.ConstFloat{Value: jv.Float, Width: jv.Width}, nil
		case "ref":
			inst, err := instAt(jv.Ref, "value")
			if err != nil {
				return nil, err
			}
			return ir.Ref{Inst: inst}, nil
		case "undef":
			return ir.Undef{}, nil
		default:
			return nil, fmt.Errorf("binfile: function %s: unknown value kind %q", jf.Name, jv.Kind)
		}
	}
	argsAt := func(ji jsonInstruction, arity int) ([]ir.Value, error) {
		if len(ji.Args) != arity {
			return nil, fmt.Errorf("binfile: function %s: %s expects %d operands, got %d", jf.Name, ji.Op, arity, len(ji.Args))
		}
		out := make([]ir.Value, arity)
		for i, jv := range ji.Args {
			v, err := valueAt(jv)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	}

	for i, ji := range jf.Body {
		inst := fn.Body[i]
		switch ji.Op {
		case "alloca":
			t, ok := sig.ComponentTypeFromString(ji.Type)
			if !ok {
				return nil, fmt.Errorf("binfile: function %s: alloca has unknown component type %q", jf.Name, ji.Type)
			}
			inst.Kind = ir.InstAlloca{Elem: t, Count: ji.Count}
		case "elemptr":
			args, err := argsAt(ji, 2)
			if err != nil {
				return nil, err
			}
			inst.Kind = ir.InstElemPtr{Base: args[0], Index: args[1]}
		case "load":
			args, err := argsAt(ji, 1)
			if err != nil {
				return nil, err
			}
			inst.Kind = ir.InstLoad{Addr: args[0]}
		case "store":
			args, err := argsAt(ji, 2)
			if err != nil {
				return nil, err
			}
			inst.Kind = ir.InstStore{Addr: args[0], Val: args[1]}
		case "mul", "add":
			args, err := argsAt(ji, 2)
			if err != nil {
				return nil, err
			}
			op := ir.BinMul
			if ji.Op == "add" {
				op = ir.BinAdd
			}
			inst.Kind = ir.InstBinary{Op: op, LHS: args[0], RHS: args[1]}
		case "trunc", "zext":
			args, err := argsAt(ji, 1)
			if err != nil {
				return nil, err
			}
			if ji.Op == "trunc" {
				inst.Kind = ir.InstTrunc{Val: args[0], Width: ji.Width}
			} else {
				inst.Kind = ir.InstZExt{Val: args[0], Width: ji.Width}
			}
		case "call":
			op, ok := dxop.FromName(ji.Opcode)
			if !ok {
				return nil, fmt.Errorf("binfile: function %s: unknown primitive %q", jf.Name, ji.Opcode)
			}
			t, ok := sig.ComponentTypeFromString(ji.Type)
			if !ok {
				return nil, fmt.Errorf("binfile: function %s: call has unknown overload %q", jf.Name, ji.Type)
			}
			args := make([]ir.Value, len(ji.Args))
			for a, jv := range ji.Args {
				v, err := valueAt(jv)
				if err != nil {
					return nil, err
				}
				args[a] = v
			}
			inst.Kind = ir.InstCall{Op: op, Overload: t, Args: args}
		case "ret":
			inst.Kind = ir.InstRet{}
		case "label":
			inst.Kind = ir.InstLabel{}
		case "br":
			target, err := instAt(ji.Target, "branch")
			if err != nil {
				return nil, err
			}
			inst.Kind = ir.InstBr{Target: target}
		case "condbr":
			args, err := argsAt(ji, 1)
			if err != nil {
				return nil, err
			}
			then, err := instAt(ji.Then, "then")
			if err != nil {
				return nil, err
			}
			els, err := instAt(ji.Else, "else")
			if err != nil {
				return nil, err
			}
			inst.Kind = ir.InstCondBr{Cond: args[0], Then: then, Else: els}
		default:
			return nil, fmt.Errorf("binfile: function %s: unknown instruction %q", jf.Name, ji.Op)
		}
	}
	return fn, nil
}
