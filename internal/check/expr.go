package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
)

// checkExpr type-checks the expression rooted at id, using hint as the
// expected type where the grammar allows context to drive inference
// (numeric literal defaulting, enum-variant shorthand). It always sets
// n.Etype (to the error type on failure) and returns that type, per
// spec.md §3's invariant "every etype on a checked expression is
// non-null".
func (c *checker) checkExpr(id ast.NodeID, hint ast.TypeID) ast.TypeID {
	n := c.prog.Node(id)
	if n == nil {
		return c.prog.ErrorTypeID
	}
	ty := c.checkExprKind(n, id, hint)
	ty = c.decay(ty)
	n.Etype = ty
	return ty
}

// decay implements "arrays decay to pointers ([N]T -> *T) at the
// expression boundary" (spec.md §4.4).
func (c *checker) decay(id ast.TypeID) ast.TypeID {
	ty := c.prog.Type(id)
	if ty == nil || ty.Kind != ast.TypeArray {
		return id
	}
	return c.prog.NewType(ast.NewPointer(ty.Elem))
}

func (c *checker) checkExprKind(n *ast.Node, id ast.NodeID, hint ast.TypeID) ast.TypeID {
	switch n.Kind {
	case ast.NIntLiteral:
		return c.checkIntLiteral(n, hint)
	case ast.NFloatLiteral:
		return c.checkFloatLiteral(n, hint)
	case ast.NStringLiteral:
		return c.prog.WellKnown["str"]
	case ast.NCharLiteral:
		return c.prog.WellKnown["char"]
	case ast.NBoolLiteral:
		return c.prog.WellKnown["bool"]
	case ast.NNullLiteral:
		return c.prog.WellKnown["untyped_ptr"]
	case ast.NArrayLiteral:
		return c.checkArrayLiteral(n, hint)
	case ast.NFormatStringLiteral:
		return c.checkFormatString(n)
	case ast.NIdentifier:
		return c.checkIdentifierExpr(n, id, hint)
	case ast.NNamespaceLookup:
		return c.checkNamespaceLookupExpr(n, id)
	case ast.NSpecialization:
		ty := c.resolveSpecializationType(n)
		n.ResolvedSymbol = ast.InvalidID
		return ty
	case ast.NMember:
		return c.checkMember(n, id)
	case ast.NIndex:
		return c.checkIndex(n)
	case ast.NUnaryPrefix:
		return c.checkUnaryPrefix(n, hint)
	case ast.NUnaryPostfix:
		return c.checkUnaryPostfix(n)
	case ast.NBinary:
		return c.checkBinary(n, hint)
	case ast.NAssign:
		return c.checkAssign(n)
	case ast.NOpAssign:
		return c.checkOpAssign(n)
	case ast.NCast:
		return c.checkCast(n)
	case ast.NSizeof:
		c.resolveType(n.CastType)
		return c.prog.WellKnown["u32"]
	case ast.NCall, ast.NConstructorCall:
		return c.checkCall(n, id, hint)
	case ast.NBlock:
		return c.checkBlockExpr(id, hint)
	case ast.NIf:
		return c.checkIfExpr(n, id, hint)
	case ast.NMatch:
		return c.checkMatchExpr(n, id, hint)
	case ast.NInvalid:
		return c.prog.ErrorTypeID
	default:
		c.errorf(n.Span, "unchecked expression kind")
		return c.prog.ErrorTypeID
	}
}

// checkIntLiteral: suffix wins, else a numeric hint, else u32 (spec.md
// §4.4's "IntLiteral/FloatLiteral" rule; §9's open question pins the
// expression-context default at u32, distinct from const-expr checking's
// i32, a known, deliberate inconsistency inherited from the source).
func (c *checker) checkIntLiteral(n *ast.Node, hint ast.TypeID) ast.TypeID {
	if n.Suffix != "" {
		if t, ok := c.prog.WellKnown[n.Suffix]; ok {
			return t
		}
	}
	if hint.IsValid() {
		if ty := c.prog.Type(c.prog.Unaliased(hint)); ty != nil && (ty.Kind.IsInteger() || ty.Kind.IsFloat()) {
			return hint
		}
	}
	return c.prog.WellKnown["u32"]
}

func (c *checker) checkFloatLiteral(n *ast.Node, hint ast.TypeID) ast.TypeID {
	if n.Suffix != "" {
		if t, ok := c.prog.WellKnown[n.Suffix]; ok {
			return t
		}
	}
	if hint.IsValid() {
		if ty := c.prog.Type(c.prog.Unaliased(hint)); ty != nil && ty.Kind.IsFloat() {
			return hint
		}
	}
	return c.prog.WellKnown["f32"]
}

func (c *checker) checkArrayLiteral(n *ast.Node, hint ast.TypeID) ast.TypeID {
	var elemHint ast.TypeID
	if hint.IsValid() {
		if ty := c.prog.Type(c.prog.Unaliased(hint)); ty != nil && (ty.Kind == ast.TypeArray || ty.Kind == ast.TypePointer) {
			elemHint = ty.Elem
		}
	}
	var elemType ast.TypeID
	for i, e := range n.ArrayElems {
		t := c.checkExpr(e, elemHint)
		if i == 0 {
			elemType = t
		}
	}
	if !elemType.IsValid() {
		elemType = c.prog.WellKnown["void"]
	}
	return c.prog.NewType(ast.NewArray(elemType, ast.InvalidID))
}

// checkIdentifierExpr resolves a bare name per spec.md §4.4's "Bare
// identifier" rule and records the resolved symbol. A Variable/Constant
// resolves to its declared type; a Function resolves to its Function(...)
// type (used when a function value is referenced without being called,
// e.g. passed by name); a Structure/Enum resolved bare is an error here
// (those only make sense as a type or call-target, handled in call.go).
func (c *checker) checkIdentifierExpr(n *ast.Node, id ast.NodeID, hint ast.TypeID) ast.TypeID {
	symID, ok := c.resolveIdentifier(n.Span, n.Name, hint)
	if !ok {
		c.errorf(n.Span, "undefined identifier %q", n.Name)
		return c.prog.ErrorTypeID
	}
	n.ResolvedSymbol = symID
	sym := c.prog.Symbol(symID)
	switch sym.Kind {
	case ast.SymVariable, ast.SymConstant:
		return sym.Type
	case ast.SymFunction:
		fn := c.prog.Func(sym.Func)
		return fn.Type
	default:
		c.errorf(n.Span, "%q cannot be used as a value", sym.DisplayName)
		return c.prog.ErrorTypeID
	}
}

func (c *checker) checkNamespaceLookupExpr(n *ast.Node, id ast.NodeID) ast.TypeID {
	symID, ok := c.resolveNamespacedSymbol(n)
	if !ok {
		return c.prog.ErrorTypeID
	}
	n.ResolvedSymbol = symID
	sym := c.prog.Symbol(symID)
	switch sym.Kind {
	case ast.SymVariable, ast.SymConstant:
		return sym.Type
	case ast.SymFunction:
		return c.prog.Func(sym.Func).Type
	default:
		c.errorf(n.Span, "%q cannot be used as a value", sym.DisplayName)
		return c.prog.ErrorTypeID
	}
}

// checkMember checks "base.name". Method references are left for call.go
// to turn into a bound call (spec.md §4.4.1's "method call insertion");
// here a bare member access resolves to a field, an enum variant/method,
// or (for a pointer base) auto-derefs one level, matching the source's
// "method call resolution" companion rule that a receiver may be a value
// or a pointer to one.
func (c *checker) checkMember(n *ast.Node, id ast.NodeID) ast.TypeID {
	baseTy := c.checkExpr(n.Base, ast.InvalidID)
	underlying := baseTy
	if ty := c.prog.Type(c.prog.Unaliased(underlying)); ty != nil && ty.Kind == ast.TypePointer {
		underlying = ty.Elem
	}
	resolved := c.prog.Unaliased(underlying)
	ty := c.prog.Type(resolved)
	if ty == nil {
		return c.prog.ErrorTypeID
	}
	switch ty.Kind {
	case ast.TypeStructure:
		st := c.prog.Struct(ty.Struct)
		for _, f := range st.Fields {
			if c.prog.Symbol(f.Symbol).Name == n.Name {
				n.ResolvedSymbol = f.Symbol
				return f.Type
			}
		}
		if mid, ok := ty.MethodNamed(n.Name); ok {
			n.ResolvedSymbol = c.prog.Func(mid).Symbol
			return c.prog.Func(mid).Type
		}
	case ast.TypeEnum:
		en := c.prog.Enum(ty.EnumRef)
		for _, f := range en.Fields {
			if c.prog.Symbol(f.Symbol).Name == n.Name {
				n.ResolvedSymbol = f.Symbol
				return resolved
			}
		}
		if mid, ok := ty.MethodNamed(n.Name); ok {
			n.ResolvedSymbol = c.prog.Func(mid).Symbol
			return c.prog.Func(mid).Type
		}
	default:
		if mid, ok := ty.MethodNamed(n.Name); ok {
			n.ResolvedSymbol = c.prog.Func(mid).Symbol
			return c.prog.Func(mid).Type
		}
	}
	c.errorf(n.Span, "no field or method %q", n.Name)
	return c.prog.ErrorTypeID
}

func (c *checker) checkIndex(n *ast.Node) ast.TypeID {
	baseTy := c.checkExpr(n.Base, ast.InvalidID)
	c.checkExpr(n.Rhs, c.prog.WellKnown["u32"])
	idxTy := c.prog.Type(c.prog.Unaliased(c.effectiveType(n.Rhs)))
	if idxTy != nil && !idxTy.Kind.IsInteger() {
		c.errorf(c.prog.Node(n.Rhs).Span, "array index must be an integer")
	}
	base := c.prog.Type(c.prog.Unaliased(baseTy))
	if base == nil || (base.Kind != ast.TypeArray && base.Kind != ast.TypePointer) {
		c.errorf(n.Span, "cannot index into this type")
		return c.prog.ErrorTypeID
	}
	return base.Elem
}

// effectiveType is a tiny convenience for re-reading a just-checked
// node's Etype without threading it back through every caller.
func (c *checker) effectiveType(id ast.NodeID) ast.TypeID {
	if n := c.prog.Node(id); n != nil {
		return n.Etype
	}
	return ast.InvalidID
}

func (c *checker) checkUnaryPrefix(n *ast.Node, hint ast.TypeID) ast.TypeID {
	switch n.UnaryOp {
	case ast.OpAddrOf:
		var innerHint ast.TypeID
		if hint.IsValid() {
			if ht := c.prog.Type(c.prog.Unaliased(hint)); ht != nil && ht.Kind == ast.TypePointer {
				innerHint = ht.Elem
			}
		}
		operandTy := c.checkExpr(n.Rhs, innerHint)
		ut := c.prog.Type(c.prog.Unaliased(operandTy))
		if ut != nil && ut.Kind == ast.TypeChar {
			return c.prog.WellKnown["str"]
		}
		if ut != nil && ut.Kind == ast.TypeVoid {
			return c.prog.WellKnown["untyped_ptr"]
		}
		return c.prog.NewType(ast.NewPointer(operandTy))
	case ast.OpDeref:
		operandTy := c.checkExpr(n.Rhs, ast.InvalidID)
		ut := c.prog.Type(c.prog.Unaliased(operandTy))
		if ut == nil || ut.Kind != ast.TypePointer {
			c.errorf(n.Span, "cannot dereference a non-pointer type")
			return c.prog.ErrorTypeID
		}
		return ut.Elem
	case ast.OpNot:
		c.checkExpr(n.Rhs, c.prog.WellKnown["bool"])
		c.requireBool(n.Rhs, "'!'/'not' operand")
		return c.prog.WellKnown["bool"]
	case ast.OpBitNot:
		ty := c.checkExpr(n.Rhs, hint)
		c.requireInteger(n.Rhs, ty, "'~' operand")
		return ty
	case ast.OpNeg:
		ty := c.checkExpr(n.Rhs, hint)
		c.requireNumeric(n.Rhs, ty, "unary '-' operand")
		return ty
	default:
		return c.prog.ErrorTypeID
	}
}

// checkUnaryPostfix handles the "x?" pointer-non-null-test (spec.md
// §4.4's "x?: require pointer -> bool").
func (c *checker) checkUnaryPostfix(n *ast.Node) ast.TypeID {
	ty := c.checkExpr(n.Rhs, ast.InvalidID)
	ut := c.prog.Type(c.prog.Unaliased(ty))
	if ut == nil || ut.Kind != ast.TypePointer {
		c.errorf(n.Span, "'?' requires a pointer operand")
	}
	return c.prog.WellKnown["bool"]
}

func (c *checker) requireBool(id ast.NodeID, what string) {
	ty := c.prog.Type(c.prog.Unaliased(c.effectiveType(id)))
	if ty == nil || ty.Kind != ast.TypeBool {
		c.errorf(c.prog.Node(id).Span, "%s must be bool", what)
	}
}

func (c *checker) requireInteger(id ast.NodeID, ty ast.TypeID, what string) {
	rt := c.prog.Type(c.prog.Unaliased(ty))
	if rt == nil || !rt.Kind.IsInteger() {
		c.errorf(c.prog.Node(id).Span, "%s must be an integer type", what)
	}
}

func (c *checker) requireNumeric(id ast.NodeID, ty ast.TypeID, what string) {
	rt := c.prog.Type(c.prog.Unaliased(ty))
	if rt == nil || !(rt.Kind.IsInteger() || rt.Kind.IsFloat()) {
		c.errorf(c.prog.Node(id).Span, "%s must be numeric", what)
	}
}

func (c *checker) isPointer(ty ast.TypeID) (ast.TypeID, bool) {
	rt := c.prog.Type(c.prog.Unaliased(ty))
	if rt != nil && rt.Kind == ast.TypePointer {
		return rt.Elem, true
	}
	return ast.InvalidID, false
}

// checkBinary implements spec.md §4.4's binary-operator rules: pointer
// arithmetic (ptr+-int, ptr-ptr -> i64), numeric arithmetic on equal
// types, comparisons -> bool, equality forbidding struct operands,
// logical ops on bool, bitwise/shift on equal integer types.
func (c *checker) checkBinary(n *ast.Node, hint ast.TypeID) ast.TypeID {
	switch n.BinaryOp {
	case ast.OpLogicalAnd, ast.OpLogicalOr:
		c.checkExpr(n.Lhs, c.prog.WellKnown["bool"])
		c.checkExpr(n.Rhs, c.prog.WellKnown["bool"])
		c.requireBool(n.Lhs, "left operand of logical operator")
		c.requireBool(n.Rhs, "right operand of logical operator")
		return c.prog.WellKnown["bool"]
	}

	lt := c.checkExpr(n.Lhs, hint)
	rt := c.checkExpr(n.Rhs, lt)

	switch n.BinaryOp {
	case ast.OpAdd, ast.OpSub:
		if elem, ok := c.isPointer(lt); ok {
			if _, rok := c.isPointer(rt); rok && n.BinaryOp == ast.OpSub {
				return c.prog.WellKnown["i64"]
			}
			rtT := c.prog.Type(c.prog.Unaliased(rt))
			if rtT != nil && rtT.Kind.IsInteger() {
				return lt
			}
			c.errorf(n.Span, "invalid operand for pointer arithmetic")
			_ = elem
			return c.prog.ErrorTypeID
		}
		if !c.prog.Eq(lt, rt) {
			c.errorf(n.Span, "operands of binary operator must have the same type")
			return c.prog.ErrorTypeID
		}
		c.requireNumeric(n.Lhs, lt, "operand of arithmetic operator")
		return lt
	case ast.OpMul, ast.OpDiv, ast.OpMod:
		if !c.prog.Eq(lt, rt) {
			c.errorf(n.Span, "operands of binary operator must have the same type")
			return c.prog.ErrorTypeID
		}
		c.requireNumeric(n.Lhs, lt, "operand of arithmetic operator")
		return lt
	case ast.OpEq, ast.OpNotEq:
		if c.prog.Type(c.prog.Unaliased(lt)) != nil && c.prog.Type(c.prog.Unaliased(lt)).Kind == ast.TypeStructure {
			c.errorf(n.Span, "cannot compare struct values with '=='/'!='")
			return c.prog.ErrorTypeID
		}
		if !c.prog.Eq(lt, rt) {
			c.errorf(n.Span, "operands of comparison must have the same type")
		}
		return c.prog.WellKnown["bool"]
	case ast.OpLess, ast.OpLessEq, ast.OpGreater, ast.OpGreaterEq:
		if !c.prog.Eq(lt, rt) {
			c.errorf(n.Span, "operands of comparison must have the same type")
		}
		return c.prog.WellKnown["bool"]
	case ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr:
		c.requireInteger(n.Lhs, lt, "operand of bitwise/shift operator")
		if !c.prog.Eq(lt, rt) {
			c.errorf(n.Span, "operands of bitwise/shift operator must be the same integer type")
		}
		return lt
	default:
		return c.prog.ErrorTypeID
	}
}

// isLvalue implements spec.md §4.4's assignment-compound lvalue rule: an
// identifier that is not a function, member access, dereference, or
// index expression are all valid lvalues (member/deref/index ARE valid
// assignment targets; what's excluded is a bare function-valued
// identifier and any non-identifier/member/deref/index expression kind).
func (c *checker) isLvalue(id ast.NodeID) bool {
	n := c.prog.Node(id)
	switch n.Kind {
	case ast.NIdentifier, ast.NNamespaceLookup:
		if n.ResolvedSymbol.IsValid() && c.prog.Symbol(n.ResolvedSymbol).Kind == ast.SymFunction {
			return false
		}
		return true
	case ast.NMember, ast.NIndex:
		return true
	case ast.NUnaryPrefix:
		return n.UnaryOp == ast.OpDeref
	default:
		return false
	}
}

func (c *checker) checkAssign(n *ast.Node) ast.TypeID {
	if n.Name != "" {
		// A labeled constructor argument parses through this path too
		// (parser/expr.go's parseCallSuffix); call.go handles it directly
		// by inspecting n.Name, so a bare top-level "name: expr" node is
		// only ever checked here if it leaked outside a call, which is a
		// parse-level mistake we still surface instead of crashing.
		return c.checkExpr(n.Rhs, ast.InvalidID)
	}
	lt := c.checkExpr(n.Lhs, ast.InvalidID)
	c.checkExpr(n.Rhs, lt)
	if !c.isLvalue(n.Lhs) {
		c.errorf(n.Span, "left-hand side of assignment is not assignable")
	}
	return lt
}

func (c *checker) checkOpAssign(n *ast.Node) ast.TypeID {
	lt := c.checkExpr(n.Lhs, ast.InvalidID)
	rt := c.checkExpr(n.Rhs, lt)
	if !c.isLvalue(n.Lhs) {
		c.errorf(n.Span, "left-hand side of assignment is not assignable")
	}
	c.requireNumeric(n.Lhs, lt, "left-hand side of compound assignment")
	if !c.prog.Eq(lt, rt) {
		c.errorf(n.Span, "operands of compound assignment must have the same type")
	}
	return lt
}

// checkCast allows any expression to be cast to any resolved type; the
// checker does no narrowing analysis, per spec.md §4.4's "semantic
// narrowing is the user's responsibility".
func (c *checker) checkCast(n *ast.Node) ast.TypeID {
	c.checkExpr(n.Lhs, ast.InvalidID)
	return c.resolveType(n.CastType)
}

// isPrintable implements spec.md §4.4.1's format-string embed rule:
// numeric, bool, char, or pointer.
func (c *checker) isPrintable(ty ast.TypeID) bool {
	rt := c.prog.Type(c.prog.Unaliased(ty))
	if rt == nil {
		return false
	}
	return rt.Kind.IsInteger() || rt.Kind.IsFloat() || rt.Kind == ast.TypeBool || rt.Kind == ast.TypeChar || rt.Kind == ast.TypePointer
}

// checkFormatString checks every embedded expression, auto-wrapping an
// enum-typed embed with ".dbg()" per spec.md §4.4's format-string rule
// (the same rewrite print/println apply to enum arguments, §4.4.1).
func (c *checker) checkFormatString(n *ast.Node) ast.TypeID {
	for i, e := range n.FormatExprs {
		ty := c.checkExpr(e, ast.InvalidID)
		rt := c.prog.Type(c.prog.Unaliased(ty))
		if rt != nil && rt.Kind == ast.TypeEnum {
			n.FormatExprs[i] = c.wrapDbgCall(e, ty)
			continue
		}
		if !c.isPrintable(ty) {
			c.errorf(c.prog.Node(e).Span, "value is not printable in a format string")
		}
	}
	return c.prog.WellKnown["str"]
}

// wrapDbgCall rewrites an enum-typed embed expr into "expr.dbg()", as
// spec.md §4.4 requires for both format strings and print/println.
func (c *checker) wrapDbgCall(expr ast.NodeID, ty ast.TypeID) ast.NodeID {
	exprSpan := c.prog.Node(expr).Span
	member := ast.NewNode(ast.NMember, exprSpan)
	member.Base = expr
	member.Name = "dbg"
	memberID := c.prog.NewNode(member)

	rt := c.prog.Type(c.prog.Unaliased(ty))
	if mid, ok := rt.MethodNamed("dbg"); ok {
		member.ResolvedSymbol = c.prog.Func(mid).Symbol
		member.Etype = c.prog.Func(mid).Type
	}

	call := ast.NewNode(ast.NCall, exprSpan)
	call.Base = memberID
	call.Etype = c.prog.WellKnown["str"]
	callID := c.prog.NewNode(call)
	if mid, ok := rt.MethodNamed("dbg"); ok {
		call.ResolvedSymbol = c.prog.Func(mid).Symbol
	}
	return callID
}

func (c *checker) checkBlockExpr(id ast.NodeID, hint ast.TypeID) ast.TypeID {
	n := c.prog.Node(id)
	c.pushScope(c.enterBlockScope())
	yt, returns := c.checkStmtList(n.Stmts, hint)
	c.popScope()
	n.Returns = returns
	if !yt.IsValid() {
		return c.prog.WellKnown["void"]
	}
	return yt
}

// checkIfExpr checks an if used in expression position: both branches are
// required and must yield the same type (spec.md §4.4's "if/match/block
// as expressions must yield a value").
func (c *checker) checkIfExpr(n *ast.Node, id ast.NodeID, hint ast.TypeID) ast.TypeID {
	c.checkExpr(n.Cond, c.prog.WellKnown["bool"])
	c.requireBool(n.Cond, "if-condition")
	if !n.Else.IsValid() {
		c.errorf(n.Span, "if-expression requires an else branch")
	}
	thenTy := c.checkYieldingBranch(n.Then, hint)
	var elseTy ast.TypeID
	if n.Else.IsValid() {
		elseTy = c.checkYieldingBranch(n.Else, hint)
		if thenTy.IsValid() && elseTy.IsValid() && !c.prog.Eq(thenTy, elseTy) {
			c.errorf(n.Span, "if-expression branches must yield the same type")
		}
	}
	n.Returns = c.prog.Node(n.Then).Returns && n.Else.IsValid() && c.prog.Node(n.Else).Returns
	return thenTy
}

// checkYieldingBranch checks a block used as an if/match branch, marking
// its scope CanYield so "yield x" inside it is legal (spec.md §4.4.3).
func (c *checker) checkYieldingBranch(blockID ast.NodeID, hint ast.TypeID) ast.TypeID {
	n := c.prog.Node(blockID)
	scopeID := c.enterBlockScope()
	c.prog.Scope(scopeID).CanYield = true
	c.pushScope(scopeID)
	yt, returns := c.checkStmtList(n.Stmts, hint)
	c.popScope()
	n.Returns = returns
	if !yt.IsValid() {
		yt = c.prog.WellKnown["void"]
	}
	n.Etype = yt
	return yt
}

// enterBlockScope allocates a fresh scope nested under the current one,
// the same discipline parser.parseBlock uses, since the checker walks a
// separately-pushed logical scope for each nested block it re-enters
// (checker phases re-enter function bodies that already have scopes from
// parse time, but if/match branch blocks need one of their own here
// because the parser didn't know yet whether this block was an
// expression branch needing CanYield).
func (c *checker) enterBlockScope() ast.ScopeID {
	return c.prog.NewScope(c.curScope())
}
