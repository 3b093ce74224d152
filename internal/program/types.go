package program

import "github.com/ocen-lang/ocenc/internal/ast"

// Unaliased walks through Alias types to the first non-alias target,
// terminating even in the presence of a pathological alias chain: a
// checked program never contains an alias cycle (spec.md §3's invariant),
// but Unaliased still bounds its own walk defensively against one, the
// same "walk with a visited set" discipline the teacher's linker.go DFS
// uses to avoid infinite recursion on a malformed import graph.
func (p *Program) Unaliased(id ast.TypeID) ast.TypeID {
	seen := make(map[ast.TypeID]bool)
	for {
		t := p.Type(id)
		if t == nil || t.Kind != ast.TypeAlias {
			return id
		}
		if seen[id] {
			return id
		}
		seen[id] = true
		id = t.AliasTarget
	}
}

// Eq implements P6 (reflexivity/symmetry) and P7 (alias transparency):
// eq(alias(A), T) == eq(A, T) for every A and T, and eq is symmetric.
func (p *Program) Eq(a, b ast.TypeID) bool {
	a = p.Unaliased(a)
	b = p.Unaliased(b)
	if a == b {
		return true
	}

	ta, tb := p.Type(a), p.Type(b)
	if ta == nil || tb == nil || ta.Kind != tb.Kind {
		return false
	}

	switch ta.Kind {
	case ast.TypePointer:
		return p.Eq(ta.Elem, tb.Elem)
	case ast.TypeArray:
		return p.Eq(ta.Elem, tb.Elem)
	case ast.TypeFunction:
		if !p.Eq(ta.Return, tb.Return) || len(ta.Params) != len(tb.Params) {
			return false
		}
		for i := range ta.Params {
			pa, pb := p.Symbol(ta.Params[i]), p.Symbol(tb.Params[i])
			if pa == nil || pb == nil || !p.Eq(pa.Type, pb.Type) {
				return false
			}
		}
		return true
	case ast.TypeStructure:
		return ta.Struct == tb.Struct
	case ast.TypeEnum:
		return ta.EnumRef == tb.EnumRef
	default:
		return false
	}
}

// SpecializationKey builds the memoization key a templated Structure uses
// for its Instances map: the sequence of resolved argument types'
// structural identity, joined by their display names (spec.md §4.4's
// "Key = the sequence of resolved argument types (structurally equal)").
func (p *Program) SpecializationKey(args []ast.TypeID) string {
	key := ""
	for i, id := range args {
		if i > 0 {
			key += ","
		}
		key += p.displayNameOf(id)
	}
	return key
}

func (p *Program) displayNameOf(id ast.TypeID) string {
	t := p.Type(id)
	if t == nil {
		return "<invalid>"
	}
	switch t.Kind {
	case ast.TypePointer:
		return "*" + p.displayNameOf(t.Elem)
	case ast.TypeArray:
		return "[" + p.displayNameOf(t.Elem) + "]"
	case ast.TypeStructure:
		if s := p.Struct(t.Struct); s != nil {
			if sym := p.Symbol(s.Symbol); sym != nil {
				return sym.DisplayName
			}
		}
	case ast.TypeEnum:
		if e := p.Enum(t.EnumRef); e != nil {
			if sym := p.Symbol(e.Symbol); sym != nil {
				return sym.DisplayName
			}
		}
	case ast.TypeAlias:
		return p.displayNameOf(t.AliasTarget)
	}
	if t.Symbol.IsValid() {
		if sym := p.Symbol(t.Symbol); sym != nil {
			return sym.DisplayName
		}
	}
	return scalarName(t.Kind)
}

func scalarName(k ast.TypeKind) string {
	switch k {
	case ast.TypeChar:
		return "char"
	case ast.TypeBool:
		return "bool"
	case ast.TypeVoid:
		return "void"
	case ast.TypeI8:
		return "i8"
	case ast.TypeI16:
		return "i16"
	case ast.TypeI32:
		return "i32"
	case ast.TypeI64:
		return "i64"
	case ast.TypeU8:
		return "u8"
	case ast.TypeU16:
		return "u16"
	case ast.TypeU32:
		return "u32"
	case ast.TypeU64:
		return "u64"
	case ast.TypeF32:
		return "f32"
	case ast.TypeF64:
		return "f64"
	default:
		return "<error>"
	}
}
