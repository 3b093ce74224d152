package check

import (
	"fmt"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/program"
)

// checker is the pass context shared by every TypeChecker phase
// (spec.md §4.4). It owns the scope stack and namespace stack the source
// description calls out explicitly, plus the template-instantiation work
// list, which keeps growing while it drains (spec.md §5).
type checker struct {
	prog *program.Program

	scopes     []ast.ScopeID
	namespaces []*program.Namespace

	workList []ast.FuncID

	// inIncompleteContext is true while resolving a type that is allowed
	// to name a templated struct directly (declaring a method on the
	// template itself); spec.md §4.4's resolve_type carve-out.
	inIncompleteContext bool
}

// Check runs the full TypeChecker pass (spec.md §4.4) over prog, which
// must already have passed through RegisterTypes. It first copies the
// symbols of every AlwaysAddToScope child namespace into the global scope,
// then performs, in order: constant pre-check, namespace pre-check
// (field types, function/method installation), import binding,
// function-declaration checking, and the body/template fixed-point loop.
func Check(prog *program.Program) {
	c := &checker{prog: prog}
	c.pushScope(prog.Global.Scope)
	c.pushNamespace(prog.Global)

	for _, childID := range prog.Global.ChildrenInOrder() {
		if child := prog.Namespace(childID); child != nil && child.AlwaysAddToScope {
			for name, symID := range prog.Scope(child.Scope).AllLocals() {
				prog.Declare(prog.Global.Scope, name, symID)
			}
		}
	}

	c.preCheckConstants(prog.Global)
	c.preCheckNamespaces(prog.Global)
	c.handleImports(prog.Global)
	c.checkFunctionDecls(prog.Global)
	c.drainWorkList()
	c.checkGlobalVarInits(prog.Global)
}

func (c *checker) pushScope(id ast.ScopeID) { c.scopes = append(c.scopes, id) }
func (c *checker) popScope()                { c.scopes = c.scopes[:len(c.scopes)-1] }
func (c *checker) curScope() ast.ScopeID    { return c.scopes[len(c.scopes)-1] }

func (c *checker) pushNamespace(ns *program.Namespace) { c.namespaces = append(c.namespaces, ns) }
func (c *checker) popNamespace()                       { c.namespaces = c.namespaces[:len(c.namespaces)-1] }
func (c *checker) curNamespace() *program.Namespace    { return c.namespaces[len(c.namespaces)-1] }

func (c *checker) errorf(span diag.Span, format string, args ...interface{}) {
	c.prog.AddError(diag.NewError(span, fmt.Sprintf(format, args...)))
}

func (c *checker) errorHint(span diag.Span, text string, hintSpan diag.Span, hintText string) {
	c.prog.AddError(diag.NewErrorWithHint(span, text, hintSpan, hintText))
}

// drainWorkList checks every enqueued function body, re-checking the list
// length each iteration since checking one function's body may instantiate
// a template whose methods get appended mid-loop (spec.md §5's
// "suspension-like" work list note).
func (c *checker) drainWorkList() {
	for i := 0; i < len(c.workList); i++ {
		c.checkFunctionBody(c.workList[i])
	}
	c.workList = nil
}

func (c *checker) enqueue(id ast.FuncID) {
	fn := c.prog.Func(id)
	if fn == nil || fn.Checked {
		return
	}
	c.workList = append(c.workList, id)
}

// preCheckConstants resolves the declared type of every const/let in ns
// and its descendants; nothing new is inserted into scope since the
// parser already declared these symbols (spec.md §4.4 phase 1).
func (c *checker) preCheckConstants(ns *program.Namespace) {
	for _, symID := range ns.Constants {
		sym := c.prog.Symbol(symID)
		if sym.Type.IsValid() {
			sym.Type = c.resolveType(sym.Type)
		}
	}
	for _, symID := range ns.Variables {
		sym := c.prog.Symbol(symID)
		if sym.Type.IsValid() {
			sym.Type = c.resolveType(sym.Type)
		}
	}
	for _, childID := range ns.ChildrenInOrder() {
		if child := c.prog.Namespace(childID); child != nil {
			c.preCheckConstants(child)
		}
	}
}

// checkGlobalVarInits type-checks every namespace-level let/const
// initializer, using the symbol's resolved type (if any) as a hint
// (spec.md §4.4 phase 5).
func (c *checker) checkGlobalVarInits(ns *program.Namespace) {
	c.pushNamespace(ns)
	c.pushScope(ns.Scope)
	all := append(append([]ast.SymbolID{}, ns.Constants...), ns.Variables...)
	for _, symID := range all {
		init, ok := ns.VarInits[symID]
		if !ok {
			continue
		}
		sym := c.prog.Symbol(symID)
		ty := c.checkExpr(init, sym.Type)
		if !sym.Type.IsValid() {
			sym.Type = ty
		}
	}
	c.popScope()
	c.popNamespace()
	for _, childID := range ns.ChildrenInOrder() {
		if child := c.prog.Namespace(childID); child != nil {
			c.checkGlobalVarInits(child)
		}
	}
}

// preCheckNamespaces resolves the field types of every non-templated
// struct and installs every function symbol: free functions get
// their parameter/return types resolved, and pending methods (parsed with
// an unresolved parent identifier) are re-parented onto their owning
// Structure/Enum type, checked for collisions against fields, variants,
// and previously-installed methods (spec.md §4.4 phase 2).
func (c *checker) preCheckNamespaces(ns *program.Namespace) {
	c.pushNamespace(ns)
	c.pushScope(ns.Scope)

	for _, structID := range ns.Structs {
		if st := c.prog.Struct(structID); st != nil && !st.IsTemplated {
			for i := range st.Fields {
				st.Fields[i].Type = c.resolveType(st.Fields[i].Type)
				c.prog.Symbol(st.Fields[i].Symbol).Type = st.Fields[i].Type
			}
		}
	}
	for _, fnID := range ns.Functions {
		c.checkFuncDecl(fnID)
	}
	for _, pm := range ns.PendingMethods {
		c.installMethod(ns, pm)
	}

	c.popScope()
	c.popNamespace()
	for _, childID := range ns.ChildrenInOrder() {
		if child := c.prog.Namespace(childID); child != nil {
			c.preCheckNamespaces(child)
		}
	}
}

// checkFunctionDecls enqueues every non-template-method function for body
// checking (spec.md §4.4 phase 4); methods on templated structs are
// skipped here and instead checked per-instantiation (spec.md §4.4.4).
func (c *checker) checkFunctionDecls(ns *program.Namespace) {
	c.pushNamespace(ns)
	c.pushScope(ns.Scope)
	for _, fnID := range ns.Functions {
		fn := c.prog.Func(fnID)
		if st := c.structOwning(fn.ParentType); st != nil && st.IsTemplated {
			continue
		}
		c.enqueue(fnID)
	}
	c.popScope()
	c.popNamespace()
	for _, childID := range ns.ChildrenInOrder() {
		if child := c.prog.Namespace(childID); child != nil {
			c.checkFunctionDecls(child)
		}
	}
}

func (c *checker) structOwning(parentType ast.TypeID) *ast.Structure {
	if !parentType.IsValid() {
		return nil
	}
	ty := c.prog.Type(parentType)
	if ty == nil || ty.Kind != ast.TypeStructure {
		return nil
	}
	return c.prog.Struct(ty.Struct)
}

// checkFuncDecl resolves a function's parameter and return types and
// builds its Function(...) type (spec.md §3's invariant, §4.4 phase 4). A
// parameter or return with no written type gets void; a written type that
// fails to resolve becomes the error type, so the rest of the pipeline
// still has something to work with (spec.md §7's "never throws, returns
// Error/null and continues").
func (c *checker) checkFuncDecl(id ast.FuncID) {
	fn := c.prog.Func(id)
	if fn.Type.IsValid() {
		return
	}

	var paramIDs []ast.SymbolID
	for i := range fn.Params {
		p := &fn.Params[i]
		if p.Type.IsValid() {
			p.Type = c.resolveType(p.Type)
		} else {
			p.Type = c.prog.WellKnown["void"]
		}
		c.prog.Symbol(p.Symbol).Type = p.Type
		paramIDs = append(paramIDs, p.Symbol)
	}

	if fn.Return.IsValid() {
		fn.Return = c.resolveType(fn.Return)
	} else {
		fn.Return = c.prog.WellKnown["void"]
	}

	fn.Type = c.prog.NewType(ast.NewFunctionType(paramIDs, fn.Return))
}

// installMethod re-parents a "def Parent::name" declaration onto the
// struct/enum named ParentName, visible in ns's scope, checking for a
// collision against the parent's fields, enum variants, and previously
// installed methods (spec.md §4.2, §4.4 phase 2).
func (c *checker) installMethod(ns *program.Namespace, pm program.PendingMethod) {
	fn := c.prog.Func(pm.Func)
	fnName := c.prog.Symbol(fn.Symbol).Name

	scope := c.prog.Scope(ns.Scope)
	symID, ok := scope.LookupLocal(pm.ParentName)
	if !ok {
		symID, ok = c.prog.Lookup(ns.Scope, pm.ParentName)
	}
	if !ok {
		c.errorf(fn.DefSpan, "cannot find type %q to attach method %q to", pm.ParentName, fnName)
		return
	}
	sym := c.prog.Symbol(symID)

	switch sym.Kind {
	case ast.SymStructure:
		st := c.prog.Struct(sym.Struct)
		if st.IsTemplated {
			// Methods on a template are replayed onto every instantiation
			// at instantiation time (spec.md §4.4's "Template
			// instantiation": the struct itself is never a usable type,
			// so its methods cannot be attached to a Type here).
			if _, exists := c.methodNameCollidesTemplate(st, fnName); exists {
				c.errorf(fn.DefSpan, "method %q collides with an existing member of %q", fnName, sym.DisplayName)
				return
			}
			st.TemplateMethods = append(st.TemplateMethods, pm.Func)
			fn.TemplateStructOwner = sym.Struct
			fn.IsMethod = true
			if len(fn.Params) == 0 || c.prog.Symbol(fn.Params[0].Symbol).Name != "this" {
				fn.IsStatic = true
			}
			return
		}
		if c.fieldNamed(st, fnName) {
			c.errorf(fn.DefSpan, "method %q collides with a field of %q", fnName, sym.DisplayName)
			return
		}
		c.attachMethod(ns, st.Type, sym, fn, pm.Func, fnName)
	case ast.SymEnum:
		en := c.prog.Enum(sym.Enum)
		for _, f := range en.Fields {
			if c.prog.Symbol(f.Symbol).Name == fnName {
				c.errorf(fn.DefSpan, "method %q collides with variant %q of %q", fnName, fnName, sym.DisplayName)
				return
			}
		}
		c.attachMethod(ns, en.Type, sym, fn, pm.Func, fnName)
	case ast.SymTypeDef:
		c.attachMethod(ns, sym.Type, sym, fn, pm.Func, fnName)
	default:
		c.errorf(fn.DefSpan, "%q is not a type that can have methods attached", pm.ParentName)
	}
}

func (c *checker) attachMethod(ns *program.Namespace, holder ast.TypeID, ownerSym *ast.Symbol, fn *ast.Function, fnID ast.FuncID, fnName string) {
	ty := c.prog.Type(holder)
	if ty == nil {
		return
	}
	if _, exists := ty.MethodNamed(fnName); exists {
		c.errorf(fn.DefSpan, "method %q already defined on %q", fnName, ownerSym.DisplayName)
		return
	}
	fn.IsMethod = true
	fn.ParentType = holder
	if len(fn.Params) == 0 || c.prog.Symbol(fn.Params[0].Symbol).Name != "this" {
		fn.IsStatic = true
	} else if !fn.Params[0].Type.IsValid() {
		fn.Params[0].Type = c.prog.NewType(ast.NewPointer(holder))
	}
	ty.AddMethod(fnName, fnID)
	ns.AddFunction(fnID)
}

func (c *checker) fieldNamed(st *ast.Structure, name string) bool {
	for _, f := range st.Fields {
		if c.prog.Symbol(f.Symbol).Name == name {
			return true
		}
	}
	return false
}

func (c *checker) methodNameCollidesTemplate(st *ast.Structure, name string) (ast.FuncID, bool) {
	if c.fieldNamed(st, name) {
		return ast.InvalidID, true
	}
	for _, fid := range st.TemplateMethods {
		fn := c.prog.Func(fid)
		if c.prog.Symbol(fn.Symbol).Name == name {
			return fid, true
		}
	}
	return ast.InvalidID, false
}
