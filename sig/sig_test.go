package sig

import (
	"testing"
)

func TestSignature_AddAndLookup(t *testing.T) {
	var s Signature
	err := s.Add(Element{ID: 0, Name: "POS", Rows: 1, Cols: 4, Type: F32, Kind: Output})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	err = s.Add(Element{ID: 3, Name: "MAT", Rows: 2, Cols: 4, Type: F32, Kind: Output})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	e, err := s.Element(3)
	if err != nil {
		t.Fatalf("Element: %v", err)
	}
	if e.Name != "MAT" || e.Rows != 2 || e.Cols != 4 {
		t.Errorf("Expected MAT 2x4, got %s %dx%d", e.Name, e.Rows, e.Cols)
	}
	if e.NumComponents() != 8 {
		t.Errorf("Expected 8 components, got %d", e.NumComponents())
	}
	if s.Len() != 2 {
		t.Errorf("Expected 2 elements, got %d", s.Len())
	}
}

func TestSignature_UnknownID(t *testing.T) {
	var s Signature
	if _, err := s.Element(7); err == nil {
		t.Errorf("Expected an error for an unknown id")
	}
}

func TestSignature_RejectsDuplicateID(t *testing.T) {
	var s Signature
	if err := s.Add(Element{ID: 1, Name: "A", Rows: 1, Cols: 1, Type: F32}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := s.Add(Element{ID: 1, Name: "B", Rows: 1, Cols: 1, Type: F32}); err == nil {
		t.Errorf("Expected an error for a duplicate id")
	}
}

func TestSignature_RejectsDegenerateShape(t *testing.T) {
	var s Signature
	if err := s.Add(Element{ID: 0, Name: "A", Rows: 0, Cols: 1, Type: F32}); err == nil {
		t.Errorf("Expected an error for zero rows")
	}
	if err := s.Add(Element{ID: 1, Name: "B", Rows: 1, Cols: 0, Type: F32}); err == nil {
		t.Errorf("Expected an error for zero columns")
	}
	if err := s.Add(Element{ID: 2, Name: "C", Rows: 1, Cols: 1}); err == nil {
		t.Errorf("Expected an error for an unknown component type")
	}
}

func TestComponentType_RoundTrip(t *testing.T) {
	types := []ComponentType{F16, F32, F64, I16, I32, I64, U16, U32, U64, Bool}
	for _, typ := range types {
		got, ok := ComponentTypeFromString(typ.String())
		if !ok || got != typ {
			t.Errorf("%v did not round-trip through %q", typ, typ.String())
		}
	}
	if _, ok := ComponentTypeFromString("vec4"); ok {
		t.Errorf("Expected failure for an unknown spelling")
	}
}

func TestComponentType_Bits(t *testing.T) {
	cases := []struct {
		typ  ComponentType
		bits uint8
	}{
		{F16, 16}, {F32, 32}, {F64, 64},
		{I32, 32}, {U64, 64}, {Bool, 1},
	}
	for _, c := range cases {
		if got := c.typ.Bits(); got != c.bits {
			t.Errorf("%v: expected %d bits, got %d", c.typ, c.bits, got)
		}
	}
}

func TestKind_String(t *testing.T) {
	if Output.String() != "output" {
		t.Errorf("Expected \"output\", got %q", Output.String())
	}
	if PatchConstant.String() != "patchconstant" {
		t.Errorf("Expected \"patchconstant\", got %q", PatchConstant.String())
	}
}
