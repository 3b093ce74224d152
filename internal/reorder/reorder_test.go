package reorder

import (
	"testing"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/program"
)

func newStruct(prog *program.Program, fields ...ast.Variable) ast.StructID {
	id := prog.NewStruct(&ast.Structure{Fields: fields})
	ty := prog.NewType(ast.NewStructureType(id))
	prog.Struct(id).Type = ty
	return id
}

func field(ty ast.TypeID) ast.Variable { return ast.Variable{Type: ty} }

func indexOf(order []ast.StructID, id ast.StructID) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

// TestEmbeddedStructIsOrderedBeforeItsOwner covers P9: a field holding
// another struct by value must be declared, in C, before the struct that
// embeds it.
func TestEmbeddedStructIsOrderedBeforeItsOwner(t *testing.T) {
	prog := program.New()

	inner := newStruct(prog)
	innerTy := prog.Struct(inner).Type
	outer := newStruct(prog, field(innerTy))

	ReorderStructs(prog)

	innerPos := indexOf(prog.OrderedStructs, inner)
	outerPos := indexOf(prog.OrderedStructs, outer)
	if innerPos < 0 || outerPos < 0 {
		t.Fatalf("expected both structs in the order, got %v", prog.OrderedStructs)
	}
	if innerPos >= outerPos {
		t.Fatalf("expected inner (%d) before outer (%d)", innerPos, outerPos)
	}
}

// TestArrayOfStructDependsOnElementType mirrors the embedded-struct case
// but through a fixed-size-array field, since C also requires an array
// member's element type to be complete.
func TestArrayOfStructDependsOnElementType(t *testing.T) {
	prog := program.New()

	inner := newStruct(prog)
	innerTy := prog.Struct(inner).Type
	arrTy := prog.NewType(ast.NewArray(innerTy, ast.InvalidID))
	outer := newStruct(prog, field(arrTy))

	ReorderStructs(prog)

	innerPos := indexOf(prog.OrderedStructs, inner)
	outerPos := indexOf(prog.OrderedStructs, outer)
	if innerPos < 0 || outerPos < 0 || innerPos >= outerPos {
		t.Fatalf("expected inner array-element struct before its owner, got %v", prog.OrderedStructs)
	}
}

// TestPointerFieldIsNotADependencyEdge: a pointer to a struct never needs
// the pointee to be already complete in C, so it must not force ordering.
func TestPointerFieldIsNotADependencyEdge(t *testing.T) {
	prog := program.New()

	a := newStruct(prog)
	aTy := prog.Struct(a).Type
	ptrTy := prog.NewType(ast.NewPointer(aTy))
	b := newStruct(prog, field(ptrTy))
	// Give "a" a pointer field back to "b" too, the classic mutually
	// recursive linked-structure shape only pointers can express in C.
	bTy := prog.Struct(b).Type
	prog.Struct(a).Fields = append(prog.Struct(a).Fields, field(prog.NewType(ast.NewPointer(bTy))))

	ReorderStructs(prog)

	if len(prog.OrderedStructs) != 2 {
		t.Fatalf("expected both structs present exactly once, got %v", prog.OrderedStructs)
	}
}

// TestTemplatedStructItselfIsExcluded: only concrete instances are
// real C structs (spec.md §3); the template declaration must never appear
// in the emitted order.
func TestTemplatedStructItselfIsExcluded(t *testing.T) {
	prog := program.New()
	tmpl := prog.NewStruct(&ast.Structure{IsTemplated: true})

	ReorderStructs(prog)

	if indexOf(prog.OrderedStructs, tmpl) >= 0 {
		t.Fatalf("templated struct must not appear in ordered output")
	}
}
