package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/program"
)

// instantiateStruct implements spec.md §4.4's "Template instantiation":
// the key is the sequence of resolved argument types' structural
// identity; a cache hit returns the existing instance's symbol, otherwise
// a fresh Structure/Type/Symbol triple is built, its fields are
// re-resolved in a scope where the template parameters are shadowed by
// TypeDef symbols bound to args, and its methods (including the
// template's own pending ones) are deep-copied and enqueued.
//
// The source description re-lexes/re-parses each declaration's original
// span to get an independent copy; this implementation instead clones the
// already-parsed Node subtree directly (cloneNode, below). Both give the
// same observable result -- an independent AST whose `etype` fields don't
// collide across instantiations -- and cloning an arena-indexed tree we
// already hold in memory avoids re-deriving it from source text a second
// time (spec.md §9's note that arenas replace raw pointers is exactly the
// representation that makes in-memory cloning the natural choice here).
func (c *checker) instantiateStruct(symID ast.SymbolID, tmpl *ast.Structure, args []ast.TypeID, span diag.Span) ast.StructID {
	key := c.prog.SpecializationKey(args)
	if id, ok := tmpl.Instances[key]; ok {
		return id
	}

	ownerSym := c.prog.Symbol(symID)
	ns := c.prog.Namespace(ownerSym.Namespace)

	// Build a fresh scope, child of the template's own declaration scope,
	// shadowing each template parameter with a TypeDef bound to its
	// concrete argument.
	instScope := c.prog.NewScope(tmpl.Scope)
	scope := c.prog.Scope(instScope)
	for i, tp := range tmpl.TemplateParams {
		if i >= len(args) {
			break
		}
		tpSym := c.prog.Symbol(tp)
		boundSym := &ast.Symbol{Kind: ast.SymTypeDef, Name: tpSym.Name, Namespace: ownerSym.Namespace, Type: args[i]}
		boundSym.ComposeNames("", "")
		boundID := c.prog.NewSymbol(boundSym)
		scope.Declare(tpSym.Name, boundID)
	}

	suffix := len(tmpl.Instances) + 2
	instName := ownerSym.Name
	instSym := &ast.Symbol{
		Kind:      ast.SymStructure,
		Name:      instName,
		DefSpan:   tmpl.DefSpan,
		Namespace: ownerSym.Namespace,
	}
	instSym.ComposeNames(ownerSym.DisplayName+"<"+key+">", ownerSym.OutName+"_"+itoa(suffix))
	instSymID := c.prog.NewSymbol(instSym)

	inst := &ast.Structure{
		Symbol:  instSymID,
		IsUnion: tmpl.IsUnion,
		DefSpan: tmpl.DefSpan,
		Scope:   instScope,
	}
	instID := c.prog.NewStruct(inst)
	instSym.Struct = instID
	tmpl.Instances[key] = instID

	tyID := c.prog.NewType(ast.NewStructureType(instID))
	inst.Type = tyID
	instSym.Type = tyID

	c.pushScope(instScope)
	for _, f := range tmpl.Fields {
		fieldSym := c.prog.Symbol(f.Symbol)
		clonedTypeID := c.cloneTypeForInstantiation(f.Type)
		resolvedType := c.resolveType(clonedTypeID)
		newFieldSym := &ast.Symbol{Kind: ast.SymVariable, Name: fieldSym.Name, DefSpan: fieldSym.DefSpan, Type: resolvedType}
		newFieldSym.ComposeNames(instSym.DisplayName, instSym.OutName)
		newFieldID := c.prog.NewSymbol(newFieldSym)
		var def ast.NodeID
		if f.Default.IsValid() {
			def = c.cloneNode(f.Default)
		}
		inst.Fields = append(inst.Fields, ast.Variable{Symbol: newFieldID, Type: resolvedType, Default: def})
	}
	c.popScope()

	for _, tmID := range tmpl.TemplateMethods {
		c.instantiateMethod(ns, tmID, instScope, instSymID, tyID)
	}

	return instID
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// cloneTypeForInstantiation deep-copies a field's declared Type so that
// Unresolved identifier references are re-resolved fresh against the
// instantiation scope rather than mutating (and thus corrupting) the
// template's own, still-shared, field Type.
func (c *checker) cloneTypeForInstantiation(id ast.TypeID) ast.TypeID {
	ty := c.prog.Type(id)
	if ty == nil {
		return id
	}
	switch ty.Kind {
	case ast.TypeUnresolved:
		return c.prog.NewType(ast.NewUnresolved(c.cloneNode(ty.UnresolvedIdent)))
	case ast.TypePointer:
		return c.prog.NewType(ast.NewPointer(c.cloneTypeForInstantiation(ty.Elem)))
	case ast.TypeArray:
		var sz ast.NodeID
		if ty.SizeExpr.IsValid() {
			sz = c.cloneNode(ty.SizeExpr)
		}
		return c.prog.NewType(ast.NewArray(c.cloneTypeForInstantiation(ty.Elem), sz))
	default:
		return id
	}
}

// instantiateMethod clones a template method's Function (and its body
// AST) into a fresh Function owned by the instantiated struct's Type,
// then enqueues it for body checking (spec.md §4.4's "enqueue new methods
// onto the work list").
func (c *checker) instantiateMethod(ns *program.Namespace, tmID ast.FuncID, instScope ast.ScopeID, instSymID ast.SymbolID, instTyID ast.TypeID) {
	tm := c.prog.Func(tmID)
	instSym := c.prog.Symbol(instSymID)
	tmSym := c.prog.Symbol(tm.Symbol)

	fnScope := c.prog.NewScope(instScope)
	newSym := &ast.Symbol{Kind: ast.SymFunction, Name: tmSym.Name, DefSpan: tm.DefSpan, Namespace: ns.ID}
	newSym.ComposeNames(instSym.DisplayName, instSym.OutName)
	newSymID := c.prog.NewSymbol(newSym)

	var params []ast.Variable
	var paramIDs []ast.SymbolID
	fnScopeObj := c.prog.Scope(fnScope)
	for _, p := range tm.Params {
		psym := c.prog.Symbol(p.Symbol)
		var ptype ast.TypeID
		if psym.Name == "this" {
			ptype = instTyID
		} else if p.Type.IsValid() {
			ptype = c.cloneTypeForInstantiation(p.Type)
		}
		newParamSym := &ast.Symbol{Kind: ast.SymVariable, Name: psym.Name, DefSpan: psym.DefSpan, Type: ptype}
		newParamSym.ComposeNames(newSym.DisplayName, newSym.OutName)
		newParamID := c.prog.NewSymbol(newParamSym)
		fnScopeObj.Declare(psym.Name, newParamID)
		paramIDs = append(paramIDs, newParamID)
		var def ast.NodeID
		if p.Default.IsValid() {
			def = c.cloneNode(p.Default)
		}
		params = append(params, ast.Variable{Symbol: newParamID, Type: ptype, Default: def})
	}

	var ret ast.TypeID
	if tm.Return.IsValid() {
		ret = c.cloneTypeForInstantiation(tm.Return)
	}

	var body ast.NodeID
	if tm.Body.IsValid() {
		body = c.cloneNode(tm.Body)
	}

	newFn := &ast.Function{
		Symbol:           newSymID,
		Params:           params,
		Return:           ret,
		Body:             body,
		Exits:            tm.Exits,
		IsMethod:         true,
		IsStatic:         tm.IsStatic,
		ParentType:       instTyID,
		CapturedScope:    fnScope,
		DefSpan:          tm.DefSpan,
		InstantiatedFrom: tmID,
	}
	newFnID := c.prog.NewFunc(newFn)
	newSym.Func = newFnID

	instTy := c.prog.Type(instTyID)
	instTy.AddMethod(tmSym.Name, newFnID)
	ns.AddFunction(newFnID)

	c.pushScope(fnScope)
	if newFn.Return.IsValid() {
		newFn.Return = c.resolveType(newFn.Return)
	} else {
		newFn.Return = c.prog.WellKnown["void"]
	}
	for i := range newFn.Params {
		newFn.Params[i].Type = c.resolveType(newFn.Params[i].Type)
		c.prog.Symbol(newFn.Params[i].Symbol).Type = newFn.Params[i].Type
	}
	c.popScope()
	newFn.Type = c.prog.NewType(ast.NewFunctionType(paramIDs, newFn.Return))

	c.enqueue(newFnID)
}

// cloneNode deep-copies the Node subtree rooted at id into fresh arena
// slots, remapping every NodeID-valued field so the clone shares no
// mutable state (etype, resolved-symbol) with the original -- required so
// that two instantiations of the same template method don't stomp on each
// other's checked types (spec.md §4.4's instantiation note).
func (c *checker) cloneNode(id ast.NodeID) ast.NodeID {
	if !id.IsValid() {
		return id
	}
	orig := c.prog.Node(id)
	clone := *orig
	clone.Etype = ast.InvalidID
	clone.ResolvedSymbol = ast.InvalidID
	clone.Returns = false

	clone.Lhs = c.cloneNode(orig.Lhs)
	clone.Rhs = c.cloneNode(orig.Rhs)
	clone.Base = c.cloneNode(orig.Base)
	clone.Cond = c.cloneNode(orig.Cond)
	clone.Then = c.cloneNode(orig.Then)
	clone.Else = c.cloneNode(orig.Else)
	clone.Subject = c.cloneNode(orig.Subject)
	clone.DefaultCase = c.cloneNode(orig.DefaultCase)
	clone.CaseBody = c.cloneNode(orig.CaseBody)
	clone.ForInit = c.cloneNode(orig.ForInit)
	clone.ForCond = c.cloneNode(orig.ForCond)
	clone.ForStep = c.cloneNode(orig.ForStep)
	clone.Body = c.cloneNode(orig.Body)
	clone.DeclDefault = c.cloneNode(orig.DeclDefault)

	clone.ArrayElems = cloneNodeSlice(c, orig.ArrayElems)
	clone.FormatExprs = cloneNodeSlice(c, orig.FormatExprs)
	clone.Args = cloneNodeSlice(c, orig.Args)
	clone.Stmts = cloneNodeSlice(c, orig.Stmts)
	clone.Cases = cloneNodeSlice(c, orig.Cases)
	clone.CasePatterns = cloneNodeSlice(c, orig.CasePatterns)

	// NCast/NSizeof's CastType and NSpecialization's SpecializationArgs are
	// TypeIDs that, left shared between two clones, would let one
	// instantiation's in-place pointer/array element resolution (see
	// resolveType) leak into the other's -- clone them the same way a
	// field or parameter Type is cloned above.
	if orig.CastType.IsValid() {
		clone.CastType = c.cloneTypeForInstantiation(orig.CastType)
	}
	if orig.SpecializationArgs != nil {
		args := make([]ast.TypeID, len(orig.SpecializationArgs))
		for i, a := range orig.SpecializationArgs {
			args[i] = c.cloneTypeForInstantiation(a)
		}
		clone.SpecializationArgs = args
	}

	if orig.Kind == ast.NVarDecl {
		// A cloned local var-decl needs its own Symbol too, so repeated
		// instantiations don't share a single scope binding.
		origSym := c.prog.Symbol(orig.DeclSymbol)
		newSym := &ast.Symbol{Kind: origSym.Kind, Name: origSym.Name, DefSpan: origSym.DefSpan, Type: c.cloneTypeForInstantiation(origSym.Type)}
		newSym.ComposeNames("", "")
		clone.DeclSymbol = c.prog.NewSymbol(newSym)
		clone.DeclType = newSym.Type
	}

	return c.prog.NewNode(&clone)
}

func cloneNodeSlice(c *checker, ids []ast.NodeID) []ast.NodeID {
	if ids == nil {
		return nil
	}
	out := make([]ast.NodeID, len(ids))
	for i, id := range ids {
		out[i] = c.cloneNode(id)
	}
	return out
}
