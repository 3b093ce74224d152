package program

import (
	"testing"

	"github.com/ocen-lang/ocenc/internal/ast"
)

func TestNewProgramHasGlobalNamespace(t *testing.T) {
	p := New()
	if p.Global == nil {
		t.Fatalf("expected a global namespace")
	}
	if p.Global.Parent.IsValid() {
		t.Fatalf("global namespace should have no parent")
	}
	if !p.Global.Scope.IsValid() {
		t.Fatalf("global namespace should have a scope")
	}
}

func TestTypeArenaRoundTrips(t *testing.T) {
	p := New()
	id := p.NewType(ast.NewScalar(ast.TypeI32))
	if p.Type(id).Kind != ast.TypeI32 {
		t.Fatalf("expected I32 back out of the arena")
	}
}

// P6: eq is reflexive and symmetric.
func TestEqReflexiveAndSymmetric(t *testing.T) {
	p := New()
	i32 := p.NewType(ast.NewScalar(ast.TypeI32))
	u8 := p.NewType(ast.NewScalar(ast.TypeU8))

	if !p.Eq(i32, i32) {
		t.Fatalf("eq(T, T) should hold")
	}
	if p.Eq(i32, u8) != p.Eq(u8, i32) {
		t.Fatalf("eq should be symmetric")
	}
}

// P7: eq(alias(A), T) == eq(A, T).
func TestEqAliasTransparency(t *testing.T) {
	p := New()
	i32 := p.NewType(ast.NewScalar(ast.TypeI32))
	aliasID := p.NewType(ast.NewAlias("MyInt", i32, ast.InvalidID))

	if !p.Eq(aliasID, i32) {
		t.Fatalf("an alias should be eq to its target")
	}

	other := p.NewType(ast.NewScalar(ast.TypeI64))
	if p.Eq(aliasID, other) != p.Eq(i32, other) {
		t.Fatalf("eq(alias(A), T) should equal eq(A, T)")
	}
}

func TestUnaliasedTerminatesOnChain(t *testing.T) {
	p := New()
	i32 := p.NewType(ast.NewScalar(ast.TypeI32))
	inner := p.NewType(ast.NewAlias("Inner", i32, ast.InvalidID))
	outer := p.NewType(ast.NewAlias("Outer", inner, ast.InvalidID))

	if got := p.Unaliased(outer); got != i32 {
		t.Fatalf("expected Unaliased to bottom out at i32, got type kind %v", p.Type(got).Kind)
	}
}

func TestPointerAndArrayEqRecurse(t *testing.T) {
	p := New()
	i32 := p.NewType(ast.NewScalar(ast.TypeI32))
	i64 := p.NewType(ast.NewScalar(ast.TypeI64))

	ptrA := p.NewType(ast.NewPointer(i32))
	ptrB := p.NewType(ast.NewPointer(i32))
	ptrC := p.NewType(ast.NewPointer(i64))

	if !p.Eq(ptrA, ptrB) {
		t.Fatalf("pointers to the same element type should be eq")
	}
	if p.Eq(ptrA, ptrC) {
		t.Fatalf("pointers to different element types should not be eq")
	}
}
