package check

import (
	"fmt"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
)

// checkFunctionBody implements spec.md §4.4 phase 5 for a single function:
// resolves the Function.Type if it hasn't been already (template-cloned
// methods arrive here with their types already built), checks its body
// block against the declared return type, and verifies return-completeness
// (P12) unless the function is `main`, whose implicit return type defaults
// to i32 on a fallthrough per spec.md §4.4.
func (c *checker) checkFunctionBody(id ast.FuncID) {
	fn := c.prog.Func(id)
	if fn == nil || fn.Checked {
		return
	}
	fn.Checked = true
	if !fn.Body.IsValid() {
		return // extern declaration
	}

	sym := c.prog.Symbol(fn.Symbol)
	bodyScope := fn.CapturedScope
	if !bodyScope.IsValid() {
		bodyScope = c.prog.NewScope(c.curScope())
	}
	c.prog.Scope(bodyScope).CurrentFunction = id
	c.pushScope(bodyScope)
	c.checkFuncDecl(id)

	body := c.prog.Node(fn.Body)
	_, returns := c.checkStmtList(body.Stmts, ast.InvalidID)
	body.Returns = returns

	isMain := sym.Name == "main" && sym.Namespace == c.prog.Global.ID
	if !returns && !fn.Exits {
		retTy := c.prog.Type(c.prog.Unaliased(fn.Return))
		isVoid := retTy != nil && retTy.Kind == ast.TypeVoid
		if isMain {
			if !fn.Return.IsValid() || isVoid {
				fn.Return = c.prog.WellKnown["i32"]
			}
		} else if !isVoid {
			c.errorf(fn.DefSpan, "function %q does not return a value on all paths", sym.DisplayName)
		}
	}

	c.popScope()
}

// checkStmtList checks stmts in sequence, threading the expression hint
// through only to the last statement (so a trailing expression-statement
// in an if/match/block branch yields against the caller's expected type,
// per spec.md §4.4.3), and returns that last statement's "is definitely
// terminal" flag as the block's own Returns/CanYield.
func (c *checker) checkStmtList(stmts []ast.NodeID, yieldHint ast.TypeID) (ast.TypeID, bool) {
	var yieldType ast.TypeID
	returns := false
	for i, s := range stmts {
		var hint ast.TypeID
		if i == len(stmts)-1 {
			hint = yieldHint
		}
		t, r := c.checkStatement(s, hint)
		if i == len(stmts)-1 {
			yieldType = t
		}
		returns = r
		if r && i != len(stmts)-1 {
			c.errorf(c.prog.Node(stmts[i+1]).Span, "unreachable statement")
		}
	}
	return yieldType, returns
}

// checkStatement checks one statement/expression-in-statement-position
// node and reports whether it unconditionally diverts control flow
// (return, a `exits`-marked call, or an if/match whose every arm does),
// the property that drives P12 (return-completeness) and unreachable-code
// detection.
func (c *checker) checkStatement(id ast.NodeID, yieldHint ast.TypeID) (ast.TypeID, bool) {
	n := c.prog.Node(id)
	switch n.Kind {
	case ast.NVarDecl:
		return c.checkVarDecl(n), false
	case ast.NExprStatement:
		return c.checkStatement(n.Rhs, yieldHint)
	case ast.NReturn:
		return c.checkReturn(n), true
	case ast.NYield:
		return c.checkYield(n, yieldHint), false
	case ast.NBreak:
		c.checkLoopControl(n, "break")
		return ast.InvalidID, true
	case ast.NContinue:
		c.checkLoopControl(n, "continue")
		return ast.InvalidID, true
	case ast.NDefer:
		c.checkDefer(n)
		return ast.InvalidID, false
	case ast.NAssert:
		c.checkAssertStmt(n)
		return ast.InvalidID, false
	case ast.NWhile:
		c.checkWhile(n)
		return ast.InvalidID, false
	case ast.NFor:
		c.checkFor(n)
		return ast.InvalidID, false
	case ast.NMatch:
		return c.checkMatchStmt(n, id, yieldHint)
	case ast.NIf:
		if !n.Else.IsValid() {
			c.checkExpr(n.Cond, c.prog.WellKnown["bool"])
			c.requireBool(n.Cond, "if-condition")
			c.checkYieldingBranch(n.Then, ast.InvalidID)
			return ast.InvalidID, false
		}
		ty := c.checkIfExpr(n, id, yieldHint)
		return ty, n.Returns
	case ast.NBlock:
		ty := c.checkBlockExpr(id, yieldHint)
		return ty, n.Returns
	default:
		ty := c.checkExpr(id, yieldHint)
		calls := n.Kind == ast.NCall || n.Kind == ast.NConstructorCall
		exits := calls && n.ResolvedSymbol.IsValid() && c.isExitingFunc(n.ResolvedSymbol)
		return ty, exits
	}
}

func (c *checker) isExitingFunc(symID ast.SymbolID) bool {
	sym := c.prog.Symbol(symID)
	if sym == nil || sym.Kind != ast.SymFunction {
		return false
	}
	fn := c.prog.Func(sym.Func)
	return fn != nil && fn.Exits
}

// checkVarDecl resolves a local let/const's declared type (if any) and
// checks its initializer against it, defaulting the declared type to the
// initializer's own inferred type when none was written (spec.md §4.4's
// "Local declarations" rule). The symbol is declared in the checker's
// current scope here, since the block scopes the parser opened are not the
// ones the checker pushes while walking the body.
func (c *checker) checkVarDecl(n *ast.Node) ast.TypeID {
	sym := c.prog.Symbol(n.DeclSymbol)
	c.prog.Declare(c.curScope(), sym.Name, n.DeclSymbol)
	if n.DeclType.IsValid() {
		n.DeclType = c.resolveType(n.DeclType)
		sym.Type = n.DeclType
	}
	if n.DeclDefault.IsValid() {
		initTy := c.checkExpr(n.DeclDefault, n.DeclType)
		if !n.DeclType.IsValid() {
			n.DeclType = initTy
			sym.Type = initTy
		} else if !c.prog.Eq(n.DeclType, initTy) {
			c.errorf(n.Span, "cannot initialize %q: type mismatch", sym.Name)
		}
	} else if !n.DeclType.IsValid() {
		c.errorf(n.Span, "cannot infer type for %q without an initializer", sym.Name)
		n.DeclType = c.prog.ErrorTypeID
		sym.Type = c.prog.ErrorTypeID
	}
	return ast.InvalidID
}

// checkReturn checks "return expr" (or bare "return") against the
// enclosing function's declared return type, found by walking the scope
// stack for the nearest CurrentFunction (spec.md §4.4's "return checking").
func (c *checker) checkReturn(n *ast.Node) ast.TypeID {
	fnID := c.enclosingFunction()
	var want ast.TypeID
	if fnID.IsValid() {
		want = c.prog.Func(fnID).Return
	}
	if n.Rhs.IsValid() {
		got := c.checkExpr(n.Rhs, want)
		if want.IsValid() && !c.prog.Eq(want, got) {
			c.errorf(n.Span, "return type does not match function's declared return type")
		}
	} else if want.IsValid() {
		if rt := c.prog.Type(c.prog.Unaliased(want)); rt != nil && rt.Kind != ast.TypeVoid {
			c.errorf(n.Span, "missing return value")
		}
	}
	return ast.InvalidID
}

// checkYield checks "yield expr" against the nearest CanYield scope
// (spec.md §4.4.3); a yield reachable from no such scope is a plain
// misuse error, since only if/match/block expression branches accept one.
func (c *checker) checkYield(n *ast.Node, hint ast.TypeID) ast.TypeID {
	if !c.nearestScopeCanYield() {
		c.errorf(n.Span, "'yield' is only valid inside an if/match/block used as an expression")
	}
	return c.checkExpr(n.Rhs, hint)
}

func (c *checker) nearestScopeCanYield() bool {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.prog.Scope(c.scopes[i])
		if s.CurrentFunction.IsValid() {
			return false
		}
		if s.CanYield {
			return true
		}
	}
	return false
}

func (c *checker) enclosingFunction() ast.FuncID {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if fn := c.prog.Scope(c.scopes[i]).CurrentFunction; fn.IsValid() {
			return fn
		}
	}
	return ast.InvalidID
}

// checkLoopControl verifies break/continue appear inside a loop, via the
// LoopDepth carried on the nearest enclosing scope (spec.md §4.4's
// "loop-depth" check).
func (c *checker) checkLoopControl(n *ast.Node, what string) {
	for i := len(c.scopes) - 1; i >= 0; i-- {
		s := c.prog.Scope(c.scopes[i])
		if s.LoopDepth > 0 {
			return
		}
		if s.CurrentFunction.IsValid() {
			break
		}
	}
	c.errorf(n.Span, "%q used outside of a loop", what)
}

// checkDefer records the deferred statement in the enclosing scope's
// DeferStack, in the order the defers appear, and type-checks the
// statement itself normally.
func (c *checker) checkDefer(n *ast.Node) {
	c.checkStatement(n.Rhs, ast.InvalidID)
	scope := c.prog.Scope(c.curScope())
	scope.DeferStack = append(scope.DeferStack, n.Rhs)
}

func (c *checker) checkAssertStmt(n *ast.Node) {
	c.checkExpr(n.Cond, c.prog.WellKnown["bool"])
	c.requireBool(n.Cond, "assert condition")
	if n.Rhs.IsValid() {
		c.checkExpr(n.Rhs, c.prog.WellKnown["str"])
	}
}

func (c *checker) checkWhile(n *ast.Node) {
	c.checkExpr(n.Cond, c.prog.WellKnown["bool"])
	c.requireBool(n.Cond, "while-condition")
	c.checkLoopBody(n.Body)
}

// checkFor checks a C-style "for (init; cond; step) body", each clause
// optional, per spec.md §4.2's for-statement grammar.
func (c *checker) checkFor(n *ast.Node) {
	loopScope := c.prog.NewScope(c.curScope())
	c.pushScope(loopScope)
	if n.ForInit.IsValid() {
		c.checkStatement(n.ForInit, ast.InvalidID)
	}
	if n.ForCond.IsValid() {
		c.checkExpr(n.ForCond, c.prog.WellKnown["bool"])
		c.requireBool(n.ForCond, "for-condition")
	}
	c.prog.Scope(loopScope).LoopDepth++
	bodyScope := c.prog.NewScope(loopScope)
	c.pushScope(bodyScope)
	body := c.prog.Node(n.Body)
	c.checkStmtList(body.Stmts, ast.InvalidID)
	c.popScope()
	if n.ForStep.IsValid() {
		c.checkExpr(n.ForStep, ast.InvalidID)
	}
	c.popScope()
}

func (c *checker) checkLoopBody(bodyID ast.NodeID) {
	loopScope := c.prog.NewScope(c.curScope())
	c.prog.Scope(loopScope).LoopDepth++
	c.pushScope(loopScope)
	body := c.prog.Node(bodyID)
	c.checkStmtList(body.Stmts, ast.InvalidID)
	c.popScope()
}

// checkMatchStmt checks match used in statement position: patterns are
// checked like checkMatchExpr, but no branch is required to yield a
// value, and Returns is true only when every case (plus an else, if one
// of the scrutinee's kinds requires it for exhaustiveness) terminates.
func (c *checker) checkMatchStmt(n *ast.Node, id ast.NodeID, hint ast.TypeID) (ast.TypeID, bool) {
	ty := c.checkMatchExpr(n, id, ast.InvalidID)
	return ty, n.Returns
}

// checkMatchExpr implements spec.md §4.4.2's match-expression rules:
// the subject is checked first (its type drives pattern resolution -
// an enum subject's patterns are bare or Enum::-qualified variant names, anything else's
// patterns are ordinary expressions compared with ==); P10 exhaustiveness
// requires an `else` arm unless the subject is an enum and every variant
// is covered by some case's pattern list.
func (c *checker) checkMatchExpr(n *ast.Node, id ast.NodeID, hint ast.TypeID) ast.TypeID {
	subjTy := c.checkExpr(n.Subject, ast.InvalidID)
	subjResolved := c.prog.Type(c.prog.Unaliased(subjTy))
	isEnum := subjResolved != nil && subjResolved.Kind == ast.TypeEnum

	var resultTy ast.TypeID
	allReturn := true
	covered := map[string]bool{}
	coveredAt := map[string]diag.Span{}

	for _, caseID := range n.Cases {
		cn := c.prog.Node(caseID)
		for _, pat := range cn.CasePatterns {
			if isEnum {
				pn := c.prog.Node(pat)
				if pn.Kind == ast.NIdentifier || (pn.Kind == ast.NNamespaceLookup && c.prog.Eq(c.checkExpr(pat, subjTy), subjTy)) {
					if symID, ok := c.resolveIdentifier(pn.Span, pn.Name, subjTy); ok {
						pn.ResolvedSymbol = symID
						pn.Etype = subjTy
						if covered[pn.Name] {
							c.errorHint(pn.Span, fmt.Sprintf("duplicate match case for variant %q", pn.Name),
								coveredAt[pn.Name], "previous case is here")
						} else {
							covered[pn.Name] = true
							coveredAt[pn.Name] = pn.Span
						}
						continue
					}
					c.errorf(pn.Span, "%q is not a variant of this enum", pn.Name)
					continue
				}
				c.checkExpr(pat, subjTy)
			} else {
				c.checkExpr(pat, subjTy)
			}
		}
		bodyN := c.prog.Node(cn.CaseBody)
		var t ast.TypeID
		var returns bool
		if bodyN.Kind == ast.NBlock {
			t = c.checkYieldingBranch(cn.CaseBody, hint)
			returns = bodyN.Returns
		} else {
			t = c.checkExpr(cn.CaseBody, hint)
		}
		if !resultTy.IsValid() {
			resultTy = t
		}
		allReturn = allReturn && returns
	}

	hasElse := n.DefaultCase.IsValid()
	if hasElse {
		bodyN := c.prog.Node(n.DefaultCase)
		var t ast.TypeID
		var returns bool
		if bodyN.Kind == ast.NBlock {
			t = c.checkYieldingBranch(n.DefaultCase, hint)
			returns = bodyN.Returns
		} else {
			t = c.checkExpr(n.DefaultCase, hint)
		}
		if !resultTy.IsValid() {
			resultTy = t
		}
		allReturn = allReturn && returns
	}

	if isEnum && !hasElse {
		en := c.prog.Enum(subjResolved.EnumRef)
		for _, f := range en.Fields {
			if !covered[c.prog.Symbol(f.Symbol).Name] {
				c.errorf(n.Span, "match is not exhaustive: missing variant %q", c.prog.Symbol(f.Symbol).Name)
			}
		}
	} else if !isEnum && !hasElse {
		c.errorf(n.Span, "match over a non-enum type requires an 'else' arm")
	}

	n.Returns = allReturn && len(n.Cases) > 0
	if !resultTy.IsValid() {
		resultTy = c.prog.WellKnown["void"]
	}
	return resultTy
}
