package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/program"
)

// resolveType dereferences a possibly-Unresolved type to its concrete
// Type, recursing into Pointer/Array/Function element types (spec.md
// §4.4's "Type resolution"). Already-resolved scalar/pointer/etc. types
// are returned unchanged (parseTypeExpr only ever produces Unresolved for
// named types, but this is also called on field/param types that were
// already built directly, e.g. pointer-to-resolved during instantiation).
func (c *checker) resolveType(id ast.TypeID) ast.TypeID {
	ty := c.prog.Type(id)
	if ty == nil {
		return c.prog.ErrorTypeID
	}
	switch ty.Kind {
	case ast.TypeUnresolved:
		return c.resolveTypeIdent(ty.UnresolvedIdent)
	case ast.TypePointer:
		ty.Elem = c.resolveType(ty.Elem)
		return id
	case ast.TypeArray:
		ty.Elem = c.resolveType(ty.Elem)
		if ty.SizeExpr.IsValid() {
			c.checkExpr(ty.SizeExpr, c.prog.WellKnown["u32"])
		}
		return id
	case ast.TypeFunction:
		for _, pid := range ty.Params {
			psym := c.prog.Symbol(pid)
			psym.Type = c.resolveType(psym.Type)
		}
		ty.Return = c.resolveType(ty.Return)
		return id
	default:
		return id
	}
}

// resolveTypeIdent resolves the identifier/namespace-lookup/specialization
// AST behind an Unresolved type to a concrete TypeID, per spec.md §4.4.
// Resolving a bare identifier that names a templated structure is only
// legal while c.inIncompleteContext (declaring a method directly on the
// template); anywhere else it is an error, since a templated structure is
// never itself a usable type (spec.md §3's invariant).
func (c *checker) resolveTypeIdent(node ast.NodeID) ast.TypeID {
	n := c.prog.Node(node)
	if n == nil {
		return c.prog.ErrorTypeID
	}
	switch n.Kind {
	case ast.NIdentifier:
		symID, ok := c.prog.Lookup(c.curScope(), n.Name)
		if !ok {
			c.errorf(n.Span, "unknown type %q", n.Name)
			return c.prog.ErrorTypeID
		}
		return c.typeFromSymbol(n.Span, symID)
	case ast.NNamespaceLookup:
		symID, ok := c.resolveNamespacedSymbol(n)
		if !ok {
			return c.prog.ErrorTypeID
		}
		return c.typeFromSymbol(n.Span, symID)
	case ast.NSpecialization:
		return c.resolveSpecializationType(n)
	default:
		c.errorf(n.Span, "invalid type expression")
		return c.prog.ErrorTypeID
	}
}

func (c *checker) typeFromSymbol(span diag.Span, symID ast.SymbolID) ast.TypeID {
	sym := c.prog.Symbol(symID)
	switch sym.Kind {
	case ast.SymTypeDef:
		return sym.Type
	case ast.SymStructure:
		st := c.prog.Struct(sym.Struct)
		if st.IsTemplated && !c.inIncompleteContext {
			c.errorf(span, "%q is a templated structure; give template arguments with <...>", sym.DisplayName)
			return c.prog.ErrorTypeID
		}
		return st.Type
	case ast.SymEnum:
		return c.prog.Enum(sym.Enum).Type
	default:
		c.errorf(span, "%q is not a type", sym.DisplayName)
		return c.prog.ErrorTypeID
	}
}

// resolveSpecializationType resolves "Base<T, ...>": Base must name a
// templated structure, each argument is itself resolved, and the
// (cached) instantiation's Type is returned (spec.md §4.4's
// "resolve_scoped_identifier" rule for Base<T, ...>, and "Template
// instantiation").
func (c *checker) resolveSpecializationType(n *ast.Node) ast.TypeID {
	baseNode := c.prog.Node(n.Base)
	var baseSymID ast.SymbolID
	var ok bool
	switch baseNode.Kind {
	case ast.NIdentifier:
		baseSymID, ok = c.prog.Lookup(c.curScope(), baseNode.Name)
	case ast.NNamespaceLookup:
		baseSymID, ok = c.resolveNamespacedSymbol(baseNode)
	}
	if !ok {
		c.errorf(n.Span, "unknown template %q", baseNode.Name)
		return c.prog.ErrorTypeID
	}
	sym := c.prog.Symbol(baseSymID)
	if sym.Kind != ast.SymStructure {
		c.errorf(n.Span, "%q is not a templated structure", sym.DisplayName)
		return c.prog.ErrorTypeID
	}
	st := c.prog.Struct(sym.Struct)
	if !st.IsTemplated {
		c.errorf(n.Span, "%q is not templated", sym.DisplayName)
		return c.prog.ErrorTypeID
	}

	args := make([]ast.TypeID, len(n.SpecializationArgs))
	for i, a := range n.SpecializationArgs {
		args[i] = c.resolveType(a)
	}
	instID := c.instantiateStruct(baseSymID, st, args, n.Span)
	if inst := c.prog.Struct(instID); inst != nil {
		return inst.Type
	}
	return c.prog.ErrorTypeID
}

// resolveNamespacedSymbol resolves "A::B" (n.Kind == NNamespaceLookup):
// resolve n.Base, then look up n.Name inside it, per spec.md §4.4's
// "resolve_scoped_identifier" dispatch on the base's kind.
func (c *checker) resolveNamespacedSymbol(n *ast.Node) (ast.SymbolID, bool) {
	baseNode := c.prog.Node(n.Base)
	var baseSymID ast.SymbolID
	var ok bool
	switch baseNode.Kind {
	case ast.NIdentifier:
		baseSymID, ok = c.prog.Lookup(c.curScope(), baseNode.Name)
	case ast.NNamespaceLookup:
		baseSymID, ok = c.resolveNamespacedSymbol(baseNode)
	case ast.NSpecialization:
		ty := c.resolveSpecializationType(baseNode)
		return c.lookupInType(n.Span, ty, n.Name)
	default:
		c.errorf(n.Span, "invalid scoped identifier")
		return ast.InvalidID, false
	}
	if !ok {
		c.errorf(baseNode.Span, "unknown identifier %q", baseNode.Name)
		return ast.InvalidID, false
	}
	return c.lookupInsideSymbol(n.Span, baseSymID, n.Name)
}

// lookupInsideSymbol implements the "A::B" dispatch table from spec.md
// §4.4: inside a namespace, find an importable member; inside a struct or
// typedef, the method map; inside an enum, variant then method; all other
// kinds are an error.
func (c *checker) lookupInsideSymbol(span diag.Span, baseSymID ast.SymbolID, name string) (ast.SymbolID, bool) {
	sym := c.prog.Symbol(baseSymID)
	switch sym.Kind {
	case ast.SymNamespace:
		ns := c.prog.Namespace(sym.Namespace)
		if ns == nil {
			return ast.InvalidID, false
		}
		if scope := c.prog.Scope(ns.Scope); scope != nil {
			if id, ok := scope.LookupLocal(name); ok {
				return id, true
			}
		}
		c.errorf(span, "namespace %q has no member %q", sym.DisplayName, name)
		return ast.InvalidID, false
	case ast.SymStructure:
		st := c.prog.Struct(sym.Struct)
		if st.IsTemplated {
			for _, fid := range st.TemplateMethods {
				fn := c.prog.Func(fid)
				if c.prog.Symbol(fn.Symbol).Name == name {
					return fn.Symbol, true
				}
			}
			c.errorf(span, "%q has no method %q", sym.DisplayName, name)
			return ast.InvalidID, false
		}
		ty := c.prog.Type(st.Type)
		if mid, ok := ty.MethodNamed(name); ok {
			return c.prog.Func(mid).Symbol, true
		}
		c.errorf(span, "%q has no method %q", sym.DisplayName, name)
		return ast.InvalidID, false
	case ast.SymTypeDef:
		ty := c.prog.Type(sym.Type)
		if ty != nil {
			if mid, ok := ty.MethodNamed(name); ok {
				return c.prog.Func(mid).Symbol, true
			}
		}
		c.errorf(span, "%q has no method %q", sym.DisplayName, name)
		return ast.InvalidID, false
	case ast.SymEnum:
		en := c.prog.Enum(sym.Enum)
		for _, f := range en.Fields {
			if c.prog.Symbol(f.Symbol).Name == name {
				return f.Symbol, true
			}
		}
		ty := c.prog.Type(en.Type)
		if mid, ok := ty.MethodNamed(name); ok {
			return c.prog.Func(mid).Symbol, true
		}
		c.errorf(span, "enum %q has no variant or method %q", sym.DisplayName, name)
		return ast.InvalidID, false
	default:
		c.errorf(span, "%q cannot be scoped into with '::'", sym.DisplayName)
		return ast.InvalidID, false
	}
}

func (c *checker) lookupInType(span diag.Span, tyID ast.TypeID, name string) (ast.SymbolID, bool) {
	ty := c.prog.Type(tyID)
	if ty == nil {
		return ast.InvalidID, false
	}
	switch ty.Kind {
	case ast.TypeStructure:
		st := c.prog.Struct(ty.Struct)
		if sym := c.prog.Symbol(st.Symbol); sym != nil {
			return c.lookupInsideSymbol(span, st.Symbol, name)
		}
	case ast.TypeEnum:
		en := c.prog.Enum(ty.EnumRef)
		return c.lookupInsideSymbol(span, en.Symbol, name)
	}
	if mid, ok := ty.MethodNamed(name); ok {
		return c.prog.Func(mid).Symbol, true
	}
	c.errorf(span, "no member %q", name)
	return ast.InvalidID, false
}

// resolveIdentifier implements spec.md §4.4's "Identifier resolution" for
// a bare name: first try enum-variant shorthand when hint is an enum
// type, then fall back to scope-stack lookup.
func (c *checker) resolveIdentifier(span diag.Span, name string, hint ast.TypeID) (ast.SymbolID, bool) {
	if hint.IsValid() {
		if ty := c.prog.Type(c.prog.Unaliased(hint)); ty != nil && ty.Kind == ast.TypeEnum {
			en := c.prog.Enum(ty.EnumRef)
			for _, f := range en.Fields {
				if c.prog.Symbol(f.Symbol).Name == name {
					return f.Symbol, true
				}
			}
		}
	}
	return c.prog.Lookup(c.curScope(), name)
}

// findImportableNamespace walks parent == program.Namespace by relative
// path, used by the import handler (spec.md §4.2/§6's filesystem rules
// live in the compiler package; this only walks the in-memory tree once a
// namespace for a path segment already exists, e.g. `@` / `.` / `..`
// relative resolution against namespaces already loaded).
func findImportableNamespace(prog *program.Program, from *program.Namespace, path []string) (*program.Namespace, bool) {
	cur := from
	for _, seg := range path {
		childID, ok := cur.Child(seg)
		if !ok {
			return nil, false
		}
		cur = prog.Namespace(childID)
		if cur == nil {
			return nil, false
		}
	}
	return cur, true
}
