// Package reorder implements the ReorderStructs pass (spec.md §4.5): it
// walks every concrete structure the checked Program has allocated and
// produces a C-legal declaration order, where a struct embedding another
// by value is ordered after whatever it embeds.
//
// Grounded on the visited-set DFS idiom used throughout the teacher's
// linker (internal/linker/linker.go) for file-import graph traversal,
// applied here to a field-dependency graph instead.
package reorder

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/program"
)

type state int

const (
	unvisited state = iota
	visiting
	done
)

// ReorderStructs populates prog.OrderedStructs with a valid forward
// declaration order (P9): every struct that appears as a concrete (not
// pointer, not array-pointer-decayed) field type of another struct is
// emitted before it. A templated structure itself is never included --
// only its Instances are real C structs (spec.md §3's invariant) -- and a
// union is ordered by the exact same rule as a struct, since C requires a
// union's member types to be complete too.
func ReorderStructs(prog *program.Program) {
	r := &reorderer{prog: prog, state: make(map[ast.StructID]state)}
	for _, id := range prog.AllStructIDs() {
		st := prog.Struct(id)
		if st == nil || st.IsTemplated {
			continue
		}
		r.visit(id)
	}
	prog.OrderedStructs = r.order
}

type reorderer struct {
	prog  *program.Program
	state map[ast.StructID]state
	order []ast.StructID
}

func (r *reorderer) visit(id ast.StructID) {
	switch r.state[id] {
	case done:
		return
	case visiting:
		// A struct cannot legally embed itself by value (the parser/checker
		// never produces one without going through a pointer indirection
		// first), so a cycle here means a field's type resolved to Error
		// during checking; stop instead of looping forever.
		return
	}
	r.state[id] = visiting

	st := r.prog.Struct(id)
	for _, f := range st.Fields {
		if dep, ok := r.concreteStructDependency(f.Type); ok {
			r.visit(dep)
		}
	}

	r.state[id] = done
	r.order = append(r.order, id)
}

// concreteStructDependency reports the StructID a field type requires to
// be already-complete at this struct's point of definition: a direct
// Structure field, or a fixed-size array of one (C requires an array
// member's element type to be complete). A pointer-to-struct field never
// requires completeness in C, so it is not a dependency edge here.
func (r *reorderer) concreteStructDependency(tyID ast.TypeID) (ast.StructID, bool) {
	ty := r.prog.Type(r.prog.Unaliased(tyID))
	if ty == nil {
		return 0, false
	}
	switch ty.Kind {
	case ast.TypeStructure:
		return ty.Struct, true
	case ast.TypeArray:
		return r.concreteStructDependency(ty.Elem)
	default:
		return 0, false
	}
}
