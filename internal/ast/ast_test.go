package ast

import "testing"

func TestComposeNamesTopLevel(t *testing.T) {
	s := &Symbol{Name: "main"}
	s.ComposeNames("", "")
	if s.DisplayName != "main" || s.OutName != "main" {
		t.Fatalf("got display=%q out=%q", s.DisplayName, s.OutName)
	}
}

func TestComposeNamesNested(t *testing.T) {
	s := &Symbol{Name: "bar"}
	s.ComposeNames("foo", "foo")
	if s.DisplayName != "foo::bar" {
		t.Fatalf("got display=%q", s.DisplayName)
	}
	if s.OutName != "foo_bar" {
		t.Fatalf("got out=%q", s.OutName)
	}
}

func TestComposeNamesExternPinsOutName(t *testing.T) {
	s := &Symbol{Name: "printf", IsExtern: true, ExternName: "printf"}
	s.ComposeNames("std::io", "std_io")
	if s.OutName != "printf" {
		t.Fatalf("extern symbol out-name should be pinned verbatim, got %q", s.OutName)
	}
	if s.DisplayName != "std::io::printf" {
		t.Fatalf("extern symbol should still get a display name, got %q", s.DisplayName)
	}
}

func TestComposeNamesExternDefaultsToName(t *testing.T) {
	s := &Symbol{Name: "read", IsExtern: true}
	s.ComposeNames("", "")
	if s.OutName != "read" {
		t.Fatalf("got %q", s.OutName)
	}
}

// A scope never silently rebinds a name already declared in the same
// scope, though shadowing an outer scope's name is fine.
func TestScopeDeclareRejectsDuplicate(t *testing.T) {
	s := NewScope(InvalidID)
	if !s.Declare("x", SymbolID(1)) {
		t.Fatalf("first declare of x should succeed")
	}
	if s.Declare("x", SymbolID(2)) {
		t.Fatalf("second declare of x in the same scope should fail")
	}
}

func TestScopeLookupLocalDoesNotWalkParent(t *testing.T) {
	outer := NewScope(InvalidID)
	outer.Declare("x", SymbolID(1))
	inner := NewScope(ScopeID(1))
	if _, ok := inner.LookupLocal("x"); ok {
		t.Fatalf("LookupLocal should not see parent scope bindings")
	}
}

func TestIDZeroValueIsInvalid(t *testing.T) {
	var id SymbolID
	if id.IsValid() {
		t.Fatalf("zero-valued SymbolID should be invalid")
	}
	if !SymbolID(1).IsValid() {
		t.Fatalf("non-zero SymbolID should be valid")
	}
}

func TestTypeKindClassification(t *testing.T) {
	if !TypeI32.IsScalar() || !TypeI32.IsInteger() {
		t.Fatalf("I32 should be scalar and integer")
	}
	if TypeI32.IsFloat() {
		t.Fatalf("I32 should not be float")
	}
	if !TypeF64.IsFloat() || !TypeF64.IsScalar() {
		t.Fatalf("F64 should be scalar and float")
	}
	if TypePointer.IsScalar() {
		t.Fatalf("Pointer should not be scalar")
	}
}

func TestTypeMethodTable(t *testing.T) {
	ty := NewScalar(TypeI32)
	if _, ok := ty.MethodNamed("dbg"); ok {
		t.Fatalf("fresh scalar type should have no methods")
	}
	ty.AddMethod("dbg", FuncID(7))
	fn, ok := ty.MethodNamed("dbg")
	if !ok || fn != FuncID(7) {
		t.Fatalf("expected dbg method to resolve to FuncID(7), got %v %v", fn, ok)
	}
}
