package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
)

// checkCall implements spec.md §4.4's call-resolution rules: print/println
// special-casing, a Structure-valued callee becomes a constructor call
// (positional or labeled field initializers, defaults filled in, missing
// required fields diagnosed), a Member-valued callee with a resolved
// method symbol gets its receiver spliced in as an implicit first
// argument, and everything else is a plain function call checked against
// its Function(...) type.
func (c *checker) checkCall(n *ast.Node, id ast.NodeID, hint ast.TypeID) ast.TypeID {
	base := c.prog.Node(n.Base)

	if base.Kind == ast.NIdentifier && (base.Name == "print" || base.Name == "println") {
		return c.checkPrintCall(n)
	}

	// A bare identifier/namespace-lookup callee naming a structure is a
	// constructor call; resolve it first so we know which shape to check.
	if base.Kind == ast.NIdentifier || base.Kind == ast.NNamespaceLookup || base.Kind == ast.NSpecialization {
		if symID, structTy, ok := c.resolveConstructorTarget(base); ok {
			n.Kind = ast.NConstructorCall
			base.Etype = structTy
			base.ResolvedSymbol = symID
			return c.checkConstructorArgs(n, structTy)
		}
	}

	calleeTy := c.checkExpr(n.Base, ast.InvalidID)

	// Method call: base is a Member node whose ResolvedSymbol names a
	// Function. Splice the receiver in as the implicit first argument,
	// auto-taking its address when the method's own `this` parameter is a
	// pointer (spec.md §4.4's "method call resolution" - a value receiver
	// is passed as &value so `this` is always a pointer in codegen).
	if base.Kind == ast.NMember && base.ResolvedSymbol.IsValid() {
		if sym := c.prog.Symbol(base.ResolvedSymbol); sym != nil && sym.Kind == ast.SymFunction {
			fn := c.prog.Func(sym.Func)
			if fn.IsMethod && !fn.IsStatic {
				n.Args = append([]ast.NodeID{c.receiverArg(base.Base)}, n.Args...)
			}
			return c.checkArgsAgainstFunction(n, fn.Type, fn)
		}
	}

	ty := c.prog.Type(c.prog.Unaliased(calleeTy))
	if ty == nil || ty.Kind != ast.TypeFunction {
		c.errorf(n.Span, "cannot call a non-function value")
		for _, a := range n.Args {
			c.checkExpr(a, ast.InvalidID)
		}
		return c.prog.ErrorTypeID
	}
	return c.checkArgsAgainstFunction(n, calleeTy, nil)
}

// receiverArg wraps expr in "&expr" when it isn't already a pointer,
// since every method's synthesized `this` argument must be a pointer.
func (c *checker) receiverArg(expr ast.NodeID) ast.NodeID {
	ty := c.checkExpr(expr, ast.InvalidID)
	if _, ok := c.isPointer(ty); ok {
		return expr
	}
	span := c.prog.Node(expr).Span
	addr := ast.NewNode(ast.NUnaryPrefix, span)
	addr.UnaryOp = ast.OpAddrOf
	addr.Rhs = expr
	addr.Etype = c.prog.NewType(ast.NewPointer(ty))
	return c.prog.NewNode(addr)
}

// checkPrintCall type-checks print/println's argument list: each argument
// must be printable (str included, via the TypeChar/pointer check an
// already-decayed string falls under), with an enum-typed argument
// auto-wrapped in ".dbg()" exactly as a format-string embed is.
func (c *checker) checkPrintCall(n *ast.Node) ast.TypeID {
	for i, a := range n.Args {
		ty := c.checkExpr(a, ast.InvalidID)
		rt := c.prog.Type(c.prog.Unaliased(ty))
		if rt != nil && rt.Kind == ast.TypeEnum {
			n.Args[i] = c.wrapDbgCall(a, ty)
			continue
		}
		if !c.isPrintable(ty) {
			c.errorf(c.prog.Node(a).Span, "value is not printable")
		}
	}
	return c.prog.WellKnown["void"]
}

// resolveConstructorTarget recognizes a callee that names a (possibly
// specialized) Structure symbol; instantiation of a specialized template
// happens here via resolveSpecializationType/resolveType exactly as it
// would in type position.
func (c *checker) resolveConstructorTarget(base *ast.Node) (ast.SymbolID, ast.TypeID, bool) {
	var symID ast.SymbolID
	var ok bool
	switch base.Kind {
	case ast.NIdentifier:
		symID, ok = c.prog.Lookup(c.curScope(), base.Name)
	case ast.NNamespaceLookup:
		symID, ok = c.resolveNamespacedSymbol(base)
	case ast.NSpecialization:
		ty := c.resolveSpecializationType(base)
		st := c.prog.Type(ty)
		if st == nil || st.Kind != ast.TypeStructure {
			return ast.InvalidID, ast.InvalidID, false
		}
		return c.prog.Struct(st.Struct).Symbol, ty, true
	}
	if !ok {
		return ast.InvalidID, ast.InvalidID, false
	}
	sym := c.prog.Symbol(symID)
	if sym.Kind != ast.SymStructure {
		return ast.InvalidID, ast.InvalidID, false
	}
	st := c.prog.Struct(sym.Struct)
	if st.IsTemplated {
		// A bare "Pair(...)" naming a template with no <...> is an error
		// the caller (constructor-args checking) will surface once it
		// tries to match against an empty field list; resolveType's own
		// carve-out only applies inside template-method declarations.
		return ast.InvalidID, ast.InvalidID, false
	}
	return symID, st.Type, true
}

// checkConstructorArgs implements field-initializer matching for
// "Struct(a, b)" / "Struct(field: value, ...)" forms, per spec.md §4.4:
// positional args fill fields in declaration order, labeled args fill by
// name (and may follow positional ones for the remaining fields), a field
// with a Default is optional, and any field left unfilled with no default
// is a missing-argument error.
func (c *checker) checkConstructorArgs(n *ast.Node, structTy ast.TypeID) ast.TypeID {
	ty := c.prog.Type(structTy)
	st := c.prog.Struct(ty.Struct)
	filled := make([]bool, len(st.Fields))

	positionalCount := 0
	for _, a := range n.Args {
		an := c.prog.Node(a)
		if an.Kind == ast.NAssign && an.Name != "" {
			continue
		}
		positionalCount++
	}
	for i := 0; i < positionalCount && i < len(st.Fields); i++ {
		c.checkExpr(n.Args[i], st.Fields[i].Type)
		filled[i] = true
	}
	if positionalCount > len(st.Fields) {
		c.errorf(n.Span, "too many arguments for %q", c.prog.Symbol(st.Symbol).DisplayName)
	}

	for _, a := range n.Args {
		an := c.prog.Node(a)
		if an.Kind != ast.NAssign || an.Name == "" {
			continue
		}
		idx := -1
		for i, f := range st.Fields {
			if c.prog.Symbol(f.Symbol).Name == an.Name {
				idx = i
				break
			}
		}
		if idx == -1 {
			c.errorf(an.Span, "%q has no field %q", c.prog.Symbol(st.Symbol).DisplayName, an.Name)
			c.checkExpr(an.Rhs, ast.InvalidID)
			continue
		}
		c.checkExpr(an.Rhs, st.Fields[idx].Type)
		an.Etype = st.Fields[idx].Type
		filled[idx] = true
	}

	for i, f := range st.Fields {
		if filled[i] || f.Default.IsValid() {
			continue
		}
		c.errorf(n.Span, "missing required field %q for %q", c.prog.Symbol(f.Symbol).Name, c.prog.Symbol(st.Symbol).DisplayName)
	}

	return structTy
}

// checkArgsAgainstFunction checks each positional argument against the
// callee's declared parameter type. fn (when non-nil) supplies Defaults
// for omitted trailing parameters; a plain function-typed value (fn ==
// nil, e.g. called through a variable) requires every argument present.
func (c *checker) checkArgsAgainstFunction(n *ast.Node, fnTypeID ast.TypeID, fn *ast.Function) ast.TypeID {
	ty := c.prog.Type(fnTypeID)
	if ty == nil {
		return c.prog.ErrorTypeID
	}
	for i, a := range n.Args {
		var hint ast.TypeID
		if i < len(ty.Params) {
			hint = c.prog.Symbol(ty.Params[i]).Type
		}
		c.checkExpr(a, hint)
	}
	if len(n.Args) > len(ty.Params) {
		c.errorf(n.Span, "too many arguments")
	} else if len(n.Args) < len(ty.Params) {
		missingOptional := fn != nil
		if missingOptional {
			for i := len(n.Args); i < len(fn.Params); i++ {
				if !fn.Params[i].Default.IsValid() {
					missingOptional = false
					break
				}
			}
		}
		if !missingOptional {
			c.errorf(n.Span, "too few arguments")
		}
	}
	return ty.Return
}
