// Package disasm renders IR modules as deterministic text.
//
// The output is for humans and golden tests; there is no parser for it.
// Result-producing instructions are numbered %0, %1, ... in program order
// and labels are named L0, L1, ... per function.
package disasm

import (
	"fmt"
	"strings"

	"github.com/gogpu/dxir/dxop"
	"github.com/gogpu/dxir/ir"
	"github.com/gogpu/dxir/sig"
)

// Print renders a module.
func Print(m *ir.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s (%s)\n", m.Name, m.Stage)
	writeSignature(&sb, &m.Outputs)
	writeSignature(&sb, &m.PatchConstants)
	for _, fn := range m.Functions {
		sb.WriteString("\n")
		PrintFunction(&sb, fn)
	}
	return sb.String()
}

// PrintFunction renders one function definition.
func PrintFunction(sb *strings.Builder, fn *ir.Function) {
	w := &writer{
		names:  make(map[*ir.Instruction]string, len(fn.Body)),
		labels: make(map[*ir.Instruction]string),
	}
	for _, inst := range fn.Body {
		switch inst.Kind.(type) {
		case ir.InstLabel:
			w.labels[inst] = fmt.Sprintf("L%d", len(w.labels))
		default:
			if producesValue(inst) {
				w.names[inst] = fmt.Sprintf("%%%d", len(w.names))
			}
		}
	}

	fmt.Fprintf(sb, "define @%s {\n", fn.Name)
	for _, inst := range fn.Body {
		w.writeInstruction(sb, inst)
	}
	sb.WriteString("}\n")
}

func writeSignature(sb *strings.Builder, s *sig.Signature) {
	for _, e := range s.Elements() {
		fmt.Fprintf(sb, "; %s %d: %s %s %dx%d\n", e.Kind, e.ID, e.Name, e.Type, e.Rows, e.Cols)
	}
}

// producesValue mirrors ir.HasResult but excludes void primitive calls.
func producesValue(inst *ir.Instruction) bool {
	if call, ok := inst.Kind.(ir.InstCall); ok {
		return dxop.HasResult(call.Op)
	}
	return ir.HasResult(inst.Kind)
}

type writer struct {
	names  map[*ir.Instruction]string
	labels map[*ir.Instruction]string
}

//nolint:gocognit // One case per instruction variant
func (w *writer) writeInstruction(sb *strings.Builder, inst *ir.Instruction) {
	if name, ok := w.labels[inst]; ok {
		fmt.Fprintf(sb, "%s:\n", name)
		return
	}

	sb.WriteString("  ")
	if name, ok := w.names[inst]; ok {
		fmt.Fprintf(sb, "%s = ", name)
	}

	switch k := inst.Kind.(type) {
	case ir.InstAlloca:
		fmt.Fprintf(sb, "alloca %s x %d", k.Elem, k.Count)
		if inst.Name != "" {
			fmt.Fprintf(sb, " ; %q", inst.Name)
		}
	case ir.InstElemPtr:
		fmt.Fprintf(sb, "elemptr %s, %s", w.value(k.Base), w.value(k.Index))
	case ir.InstLoad:
		fmt.Fprintf(sb, "load %s", w.value(k.Addr))
	case ir.InstStore:
		fmt.Fprintf(sb, "store %s, %s", w.value(k.Addr), w.value(k.Val))
	case ir.InstBinary:
		fmt.Fprintf(sb, "%s %s, %s", k.Op, w.value(k.LHS), w.value(k.RHS))
	case ir.InstTrunc:
		fmt.Fprintf(sb, "trunc %s to i%d", w.value(k.Val), k.Width)
	case ir.InstZExt:
		fmt.Fprintf(sb, "zext %s to i%d", w.value(k.Val), k.Width)
	case ir.InstCall:
		args := make([]string, len(k.Args))
		for i, arg := range k.Args {
			args[i] = w.value(arg)
		}
		fmt.Fprintf(sb, "call @%s.%s(%s)", dxop.Name(k.Op), k.Overload, strings.Join(args, ", "))
	case ir.InstRet:
		sb.WriteString("ret")
	case ir.InstBr:
		fmt.Fprintf(sb, "br %s", w.label(k.Target))
	case ir.InstCondBr:
		fmt.Fprintf(sb, "condbr %s, %s, %s", w.value(k.Cond), w.label(k.Then), w.label(k.Else))
	default:
		fmt.Fprintf(sb, "<invalid %T>", inst.Kind)
	}
	sb.WriteString("\n")
}

func (w *writer) value(v ir.Value) string {
	switch val := v.(type) {
	case ir.ConstInt:
		return fmt.Sprintf("i%d %d", val.Width, val.Value)
	case ir.ConstFloat:
		return fmt.Sprintf("f%d %g", val.Width, val.Value)
	case ir.Ref:
		if name, ok := w.names[val.Inst]; ok {
			return name
		}
		return "%?"
	case ir.Undef:
		return "undef"
	case nil:
		return "<nil>"
	default:
		return fmt.Sprintf("<invalid %T>", v)
	}
}

func (w *writer) label(target *ir.Instruction) string {
	if name, ok := w.labels[target]; ok {
		return name
	}
	return "L?"
}
