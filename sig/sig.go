// Package sig models shader output signatures.
//
// A signature is the declared interface between a shader stage and the
// fixed-function pipeline: an ordered table of elements, each with a fixed
// shape (rows x columns) and component type. A shader module carries one
// table per output category (regular outputs and patch-constant outputs);
// transforms read the tables but never modify them.
package sig

import "fmt"

// ComponentType identifies the scalar type of a signature element component.
type ComponentType uint8

const (
	Unknown ComponentType = iota
	F16
	F32
	F64
	I16
	I32
	I64
	U16
	U32
	U64
	Bool
)

// Bits returns the component width in bits.
func (t ComponentType) Bits() uint8 {
	switch t {
	case F16, I16, U16:
		return 16
	case F32, I32, U32:
		return 32
	case F64, I64, U64:
		return 64
	case Bool:
		return 1
	default:
		return 0
	}
}

// IsFloat reports whether the component type is a floating-point type.
func (t ComponentType) IsFloat() bool {
	return t == F16 || t == F32 || t == F64
}

// String returns the HLSL-style spelling of the component type.
func (t ComponentType) String() string {
	switch t {
	case F16:
		return "f16"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case Bool:
		return "i1"
	default:
		return "unknown"
	}
}

// ComponentTypeFromString parses the spelling produced by String.
func ComponentTypeFromString(s string) (ComponentType, bool) {
	for _, t := range []ComponentType{F16, F32, F64, I16, I32, I64, U16, U32, U64, Bool} {
		if t.String() == s {
			return t, true
		}
	}
	return Unknown, false
}

// Kind identifies the output category an element belongs to.
// Regular outputs feed the next pipeline stage per vertex or primitive;
// patch-constant outputs carry per-patch data in tessellation stages.
type Kind uint8

const (
	Output Kind = iota
	PatchConstant
)

// String returns a lower-case name for the category.
func (k Kind) String() string {
	if k == PatchConstant {
		return "patchconstant"
	}
	return "output"
}

// Element describes one declared output of a shader.
// Elements are immutable once added to a Signature.
type Element struct {
	ID   uint32
	Name string
	Rows uint32
	Cols uint32
	Type ComponentType
	Kind Kind
}

// NumComponents returns the total coordinate count of the element.
func (e *Element) NumComponents() uint32 {
	return e.Rows * e.Cols
}

// Signature is an ordered table of declared output elements.
// The zero value is an empty, usable table.
type Signature struct {
	elements []Element
	byID     map[uint32]int
}

// Add appends an element to the table.
// It rejects degenerate shapes and duplicate identifiers.
func (s *Signature) Add(e Element) error {
	if e.Rows < 1 || e.Cols < 1 {
		return fmt.Errorf("sig: element %d (%s) has degenerate shape %dx%d", e.ID, e.Name, e.Rows, e.Cols)
	}
	if e.Type == Unknown {
		return fmt.Errorf("sig: element %d (%s) has unknown component type", e.ID, e.Name)
	}
	if s.byID == nil {
		s.byID = make(map[uint32]int)
	}
	if _, dup := s.byID[e.ID]; dup {
		return fmt.Errorf("sig: duplicate element id %d (%s)", e.ID, e.Name)
	}
	s.byID[e.ID] = len(s.elements)
	s.elements = append(s.elements, e)
	return nil
}

// Element resolves an identifier to its descriptor.
// An unknown identifier is an upstream invariant violation, reported as an error.
func (s *Signature) Element(id uint32) (*Element, error) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("sig: no element with id %d", id)
	}
	return &s.elements[idx], nil
}

// Elements returns the table in declaration order.
// The returned slice must not be modified.
func (s *Signature) Elements() []Element {
	return s.elements
}

// Len returns the number of declared elements.
func (s *Signature) Len() int {
	return len(s.elements)
}
