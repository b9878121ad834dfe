package ir

import (
	"fmt"
)

// ValidationError represents a validation error.
type ValidationError struct {
	Message string
	// Optional context
	Function    string
	Instruction int
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Function != "" {
		if e.Instruction >= 0 {
			return fmt.Sprintf("in function %s, instruction %d: %s", e.Function, e.Instruction, e.Message)
		}
		return fmt.Sprintf("in function %s: %s", e.Function, e.Message)
	}
	return e.Message
}

// Validator validates IR modules.
type Validator struct {
	module *Module
	errors []ValidationError
}

// Validate checks the IR module for structural correctness.
// Returns validation errors if any, or nil if the module is valid.
// Opcode-level call semantics are checked separately by the dxop package.
func Validate(module *Module) ([]ValidationError, error) {
	if module == nil {
		return nil, fmt.Errorf("module is nil")
	}

	v := &Validator{
		module: module,
		errors: make([]ValidationError, 0),
	}

	v.validateSignatures()
	v.validateFunctions()

	if len(v.errors) > 0 {
		return v.errors, nil
	}
	return nil, nil
}

func (v *Validator) validateSignatures() {
	for _, e := range v.module.Outputs.Elements() {
		if e.Rows < 1 || e.Cols < 1 {
			v.addError("", -1, fmt.Sprintf("output element %d has degenerate shape %dx%d", e.ID, e.Rows, e.Cols))
		}
	}
	for _, e := range v.module.PatchConstants.Elements() {
		if e.Rows < 1 || e.Cols < 1 {
			v.addError("", -1, fmt.Sprintf("patch-constant element %d has degenerate shape %dx%d", e.ID, e.Rows, e.Cols))
		}
	}
}

func (v *Validator) validateFunctions() {
	for _, fn := range v.module.Functions {
		v.validateFunction(fn)
	}
}

func (v *Validator) validateFunction(fn *Function) {
	if len(fn.Body) == 0 {
		v.addError(fn.Name, -1, "function has an empty body")
		return
	}

	// Instructions may only be referenced after they appear.
	seen := make(map[*Instruction]int, len(fn.Body))
	labels := make(map[*Instruction]bool)
	for _, inst := range fn.Body {
		if _, ok := inst.Kind.(InstLabel); ok {
			labels[inst] = true
		}
	}

	hasRet := false
	for i, inst := range fn.Body {
		if inst.Kind == nil {
			v.addError(fn.Name, i, "instruction has nil kind")
			continue
		}
		v.validateInstruction(fn, i, inst, seen, labels)
		if _, ok := inst.Kind.(InstRet); ok {
			hasRet = true
		}
		seen[inst] = i
	}

	if !hasRet {
		v.addError(fn.Name, -1, "function has no return")
	}

	switch fn.Body[len(fn.Body)-1].Kind.(type) {
	case InstRet, InstBr, InstCondBr:
	default:
		v.addError(fn.Name, len(fn.Body)-1, "function body does not end with a terminator")
	}
}

//nolint:gocognit // Instruction validation requires checking many variants
func (v *Validator) validateInstruction(fn *Function, i int, inst *Instruction, seen map[*Instruction]int, labels map[*Instruction]bool) {
	checkOperand := func(what string, val Value) {
		if val == nil {
			v.addError(fn.Name, i, fmt.Sprintf("%s operand is nil", what))
			return
		}
		ref, ok := val.(Ref)
		if !ok {
			return
		}
		if ref.Inst == nil {
			v.addError(fn.Name, i, fmt.Sprintf("%s operand references a nil instruction", what))
			return
		}
		if _, defined := seen[ref.Inst]; !defined {
			v.addError(fn.Name, i, fmt.Sprintf("%s operand references an instruction that does not precede the use", what))
			return
		}
		if !HasResult(ref.Inst.Kind) {
			v.addError(fn.Name, i, fmt.Sprintf("%s operand references an instruction that produces no value", what))
		}
	}
	checkAddr := func(what string, val Value) {
		checkOperand(what, val)
		if _, ok := AddrElemType(val); !ok {
			v.addError(fn.Name, i, fmt.Sprintf("%s operand is not an address", what))
		}
	}
	checkTarget := func(what string, target *Instruction) {
		if target == nil {
			v.addError(fn.Name, i, fmt.Sprintf("%s target is nil", what))
			return
		}
		if !labels[target] {
			v.addError(fn.Name, i, fmt.Sprintf("%s target is not a label in the function", what))
		}
	}

	switch k := inst.Kind.(type) {
	case InstAlloca:
		if k.Count < 1 {
			v.addError(fn.Name, i, "alloca has zero element count")
		}
	case InstElemPtr:
		checkAddr("elemptr base", k.Base)
		checkOperand("elemptr index", k.Index)
	case InstLoad:
		checkAddr("load address", k.Addr)
	case InstStore:
		checkAddr("store address", k.Addr)
		checkOperand("store value", k.Val)
	case InstBinary:
		checkOperand("binary lhs", k.LHS)
		checkOperand("binary rhs", k.RHS)
	case InstTrunc:
		checkOperand("trunc", k.Val)
		v.checkWidth(fn, i, k.Width)
	case InstZExt:
		checkOperand("zext", k.Val)
		v.checkWidth(fn, i, k.Width)
	case InstCall:
		for a, arg := range k.Args {
			checkOperand(fmt.Sprintf("call argument %d", a), arg)
		}
	case InstBr:
		checkTarget("br", k.Target)
	case InstCondBr:
		checkOperand("condbr condition", k.Cond)
		checkTarget("condbr then", k.Then)
		checkTarget("condbr else", k.Else)
	case InstRet, InstLabel:
		// No operands.
	}
}

func (v *Validator) checkWidth(fn *Function, i int, width uint8) {
	if width != 8 && width != 16 && width != 32 && width != 64 {
		v.addError(fn.Name, i, fmt.Sprintf("cast width must be 8, 16, 32, or 64 bits, got %d", width))
	}
}

func (v *Validator) addError(function string, instruction int, message string) {
	v.errors = append(v.errors, ValidationError{
		Message:     message,
		Function:    function,
		Instruction: instruction,
	})
}
