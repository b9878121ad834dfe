package ir

import (
	"github.com/gogpu/dxir/sig"
)

// Module represents a shader module in IR form.
type Module struct {
	// Name identifies the module in diagnostics
	Name string

	// Stage is the shader stage this module targets
	Stage ShaderStage

	// Outputs holds the regular output signature
	Outputs sig.Signature

	// PatchConstants holds the patch-constant output signature
	PatchConstants sig.Signature

	// Functions holds all function definitions
	Functions []*Function
}

// Signature returns the signature table for an output category.
func (m *Module) Signature(kind sig.Kind) *sig.Signature {
	if kind == sig.PatchConstant {
		return &m.PatchConstants
	}
	return &m.Outputs
}

// ShaderStage represents a shader stage.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StagePixel
	StageHull
	StageDomain
	StageGeometry
	StageCompute
)

// String returns the lower-case stage name.
func (s ShaderStage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StagePixel:
		return "pixel"
	case StageHull:
		return "hull"
	case StageDomain:
		return "domain"
	case StageGeometry:
		return "geometry"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// StageFromString parses the spelling produced by String.
func StageFromString(s string) (ShaderStage, bool) {
	for _, st := range []ShaderStage{StageVertex, StagePixel, StageHull, StageDomain, StageGeometry, StageCompute} {
		if st.String() == s {
			return st, true
		}
	}
	return StageVertex, false
}

// Opcode identifies a pipeline primitive called through InstCall.
// The IR treats opcodes as opaque; the dxop package defines the
// numbering and semantics.
type Opcode uint32

// Function represents a function definition.
// The body is an ordered instruction sequence; program order is slice order.
type Function struct {
	Name string
	Body []*Instruction
}

// Append adds an instruction at the end of the body.
func (f *Function) Append(inst *Instruction) *Instruction {
	f.Body = append(f.Body, inst)
	return inst
}

// InsertBefore inserts inst immediately before pos in the body.
// pos must be in the function; anything else is a programming error.
func (f *Function) InsertBefore(pos, inst *Instruction) {
	i := f.index(pos)
	if i < 0 {
		panic("ir: insertion point is not in the function body")
	}
	f.Body = append(f.Body, nil)
	copy(f.Body[i+1:], f.Body[i:])
	f.Body[i] = inst
}

// Remove deletes an instruction from the body.
// inst must be in the function; anything else is a programming error.
func (f *Function) Remove(inst *Instruction) {
	i := f.index(inst)
	if i < 0 {
		panic("ir: removed instruction is not in the function body")
	}
	f.Body = append(f.Body[:i], f.Body[i+1:]...)
}

func (f *Function) index(inst *Instruction) int {
	for i, in := range f.Body {
		if in == inst {
			return i
		}
	}
	return -1
}

// Returns collects every exit point of the function in program order.
func (f *Function) Returns() []*Instruction {
	var rets []*Instruction
	for _, inst := range f.Body {
		if _, ok := inst.Kind.(InstRet); ok {
			rets = append(rets, inst)
		}
	}
	return rets
}
