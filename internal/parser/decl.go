package parser

import (
	"fmt"
	"strings"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/program"
	"github.com/ocen-lang/ocenc/internal/token"
)

// parseTopLevel repeatedly parses one top-level item into ns until EOF.
func (p *parser) parseTopLevel(ns *program.Namespace) {
	for !p.at(token.EOF) {
		p.parseTopLevelItem(ns)
	}
}

func (p *parser) parseTopLevelItem(ns *program.Namespace) {
	switch p.cur().Kind {
	case token.At:
		p.parseDirective()
	case token.KwNamespace:
		p.parseNamespaceDecl(ns)
	case token.KwImport:
		p.parseImportDecl(ns)
	case token.KwDef:
		p.parseFuncDecl(ns, false)
	case token.KwStruct, token.KwUnion:
		p.parseStructDecl(ns)
	case token.KwEnum:
		p.parseEnumDecl(ns)
	case token.KwLet, token.KwConst:
		p.parseGlobalVarDecl(ns)
	case token.KwExtern:
		p.advance()
		if p.at(token.KwDef) {
			p.parseFuncDecl(ns, true)
		} else {
			p.parseTopLevelItem(ns) // extern applies to the following decl
		}
	default:
		p.errorf(p.cur().Span, "unexpected token %s at top level", p.cur())
		p.advance()
	}
}

// parentNames returns the (display, out-name) pair a symbol declared
// directly inside ns should compose against, per spec.md §3's
// display/out-name formulas.
func parentNames(prog *program.Program, ns *program.Namespace) (string, string) {
	if !ns.Symbol.IsValid() {
		return "", ""
	}
	sym := prog.Symbol(ns.Symbol)
	return sym.DisplayName, sym.OutName
}

func (p *parser) newSymbol(display, outName string, ns *program.Namespace, kind ast.SymbolKind, name string, span diag.Span, isExtern bool, externName string) ast.SymbolID {
	sym := &ast.Symbol{
		Kind:       kind,
		Name:       name,
		DefSpan:    span,
		Namespace:  ns.ID,
		IsExtern:   isExtern,
		ExternName: externName,
	}
	sym.ComposeNames(display, outName)
	return p.prog.NewSymbol(sym)
}

// declareSymbol creates a symbol belonging directly to ns (a function,
// struct, enum, nested namespace, or namespace-level let/const) and binds
// it in ns's own scope, so it is reachable both by bare-name lookup inside
// ns and by "ns::name" from outside (spec.md §3, §4.3). A name already
// bound in this scope produces a hinted diagnostic pointing at the earlier
// definition rather than a bare "redeclared" message.
func (p *parser) declareSymbol(ns *program.Namespace, kind ast.SymbolKind, name string, span diag.Span, isExtern bool, externName string) ast.SymbolID {
	display, outName := parentNames(p.prog, ns)
	id := p.newSymbol(display, outName, ns, kind, name, span, isExtern, externName)

	if scope := p.prog.Scope(ns.Scope); scope != nil {
		if prev, exists := scope.LookupLocal(name); exists {
			p.errorfHint(span, p.prog.Symbol(prev).DefSpan,
				fmt.Sprintf("redeclaration of %q in this namespace", name),
				"previous definition is here")
		} else {
			scope.Declare(name, id)
		}
	}
	return id
}

// declareMember creates a symbol owned by another declaration (a struct
// field, an enum variant, or a function parameter) rather than by a
// namespace. Its display/out-name compose against the OWNER symbol, not
// the enclosing namespace, so two unrelated structs or functions may freely
// reuse a member name without colliding (Program.NewSymbol's out-name
// interning still catches any accidental collision). Member symbols are
// never added to any scope chain: a struct field or enum variant is only
// ever reached through member access or "Enum::Variant", never as a bare
// identifier (spec.md §3's "Bare identifier" resolution order never
// mentions struct fields or enum variants).
func (p *parser) declareMember(owner ast.SymbolID, ns *program.Namespace, kind ast.SymbolKind, name string, span diag.Span, isExtern bool, externName string) ast.SymbolID {
	ownerSym := p.prog.Symbol(owner)
	return p.newSymbol(ownerSym.DisplayName, ownerSym.OutName, ns, kind, name, span, isExtern, externName)
}

// declareParam creates a function parameter symbol, scoping it to the
// function's own local scope rather than the enclosing namespace (two
// functions in the same namespace must be free to both have a parameter
// named e.g. "n"). Composes its names against the function's own symbol,
// matching declareMember's convention.
func (p *parser) declareParam(fnSym ast.SymbolID, fnScope ast.ScopeID, ns *program.Namespace, name string, span diag.Span) ast.SymbolID {
	id := p.declareMember(fnSym, ns, ast.SymVariable, name, span, false, "")
	if scope := p.prog.Scope(fnScope); scope != nil {
		if prev, exists := scope.LookupLocal(name); exists {
			p.errorfHint(span, p.prog.Symbol(prev).DefSpan,
				fmt.Sprintf("redeclaration of parameter %q", name),
				"previous definition is here")
		} else {
			scope.Declare(name, id)
		}
	}
	return id
}

// parseDirective handles "@compiler c_include \"path\"" and
// "@compiler c_flag \"flag\"" (spec.md §4.2, §6).
func (p *parser) parseDirective() {
	p.expect(token.At)
	name := p.expect(token.Identifier).Lexeme
	if name != "compiler" {
		p.errorf(p.cur().Span, "unknown top-level directive %q", name)
	}
	kind := p.expect(token.Identifier).Lexeme
	value := p.expect(token.StringLiteral)
	text := unquote(value.Lexeme)
	switch kind {
	case "c_include":
		p.prog.CIncludes = append(p.prog.CIncludes, text)
	case "c_flag":
		p.prog.CFlags = append(p.prog.CFlags, text)
	default:
		p.errorf(value.Span, "unknown @compiler directive %q", kind)
	}
	p.endsStatement()
}

func unquote(lexeme string) string {
	if len(lexeme) >= 2 {
		return lexeme[1 : len(lexeme)-1]
	}
	return lexeme
}

// parseNamespaceDecl parses "namespace name { ... }", nesting a child
// namespace that is always visible without an explicit import.
func (p *parser) parseNamespaceDecl(parent *program.Namespace) {
	start := p.expect(token.KwNamespace).Span
	name := p.expect(token.Identifier).Lexeme

	childID, exists := parent.Child(name)
	var child *program.Namespace
	if exists {
		child = p.prog.Namespace(childID)
	} else {
		child = p.prog.NewNamespace(parent.ID, parent.Path+"::"+name, false, false)
		child.AlwaysAddToScope = true
		sym := p.declareSymbol(parent, ast.SymNamespace, name, start, false, "")
		p.prog.Symbol(sym).Namespace = child.ID
		child.Symbol = sym
		parent.AddChild(name, child.ID)
	}

	p.expect(token.OpenBrace)
	savedScope := p.scope
	p.scope = child.Scope
	for !p.at(token.CloseBrace) && !p.at(token.EOF) {
		p.parseTopLevelItem(child)
	}
	p.expect(token.CloseBrace)
	p.scope = savedScope
}

// parseImportDecl parses "import [.|..|@|std] path::part::part [as alias]"
// per spec.md §4.2/§6. Actual filesystem resolution happens in the
// compiler package's loader.resolveImport (internal/compiler/load.go),
// once the directory root is known; here we just record the import path
// shape.
func (p *parser) parseImportDecl(ns *program.Namespace) {
	start := p.expect(token.KwImport).Span
	spec := p.parseImportSpec()
	p.RecordImport(ns, spec, start)
	p.endsStatement()
}

// ImportSpec is the parsed shape of one import statement, resolved against
// the filesystem by the compiler package's loader.
type ImportSpec struct {
	LeadingDots int // number of leading '.' segments; 0 if none
	ForceRoot   bool
	Path        []string
	Wildcard    bool
	Alias       string
	Items       []ImportItem // non-empty for brace-list imports
}

type ImportItem struct {
	Path  []string
	Alias string
}

func (p *parser) parseImportSpec() ImportSpec {
	var spec ImportSpec

	if p.at(token.At) {
		p.advance()
		spec.ForceRoot = true
	} else {
		for p.at(token.Dot) || p.at(token.DotDot) {
			if p.advance().Kind == token.DotDot {
				spec.LeadingDots += 2
			} else {
				spec.LeadingDots++
			}
		}
	}

	for {
		var name string
		if len(spec.Path) == 0 && p.accept(token.KwStd) {
			name = "std"
		} else {
			name = p.expect(token.Identifier).Lexeme
		}
		spec.Path = append(spec.Path, name)
		if name == "std" && len(spec.Path) == 1 {
			spec.ForceRoot = true
		}
		if !p.accept(token.ColonColon) {
			break
		}
		if p.at(token.Star) {
			p.advance()
			spec.Wildcard = true
			return spec
		}
		if p.at(token.OpenBrace) {
			p.advance()
			for !p.at(token.CloseBrace) {
				item := p.parseImportItemPath()
				spec.Items = append(spec.Items, item)
				if !p.accept(token.Comma) {
					break
				}
			}
			p.expect(token.CloseBrace)
			return spec
		}
	}

	if p.accept(token.KwAs) {
		spec.Alias = p.expect(token.Identifier).Lexeme
	}
	return spec
}

func (p *parser) parseImportItemPath() ImportItem {
	var item ImportItem
	for {
		item.Path = append(item.Path, p.expect(token.Identifier).Lexeme)
		if !p.accept(token.ColonColon) {
			break
		}
	}
	if p.accept(token.KwAs) {
		item.Alias = p.expect(token.Identifier).Lexeme
	}
	return item
}

// RecordImport stashes a not-yet-resolved import spec on the namespace;
// the compiler package's loader walks these after ParseFile returns,
// resolving each against the filesystem and possibly loading new files
// (which may themselves contain imports, hence the two-step design).
func (p *parser) RecordImport(ns *program.Namespace, spec ImportSpec, span diag.Span) {
	items := make([]program.PendingImportItem, len(spec.Items))
	for i, it := range spec.Items {
		items[i] = program.PendingImportItem{Path: it.Path, Alias: it.Alias}
	}
	ns.PendingImports = append(ns.PendingImports, program.PendingImport{
		LeadingDots: spec.LeadingDots,
		ForceRoot:   spec.ForceRoot,
		Path:        spec.Path,
		Wildcard:    spec.Wildcard,
		Alias:       spec.Alias,
		Items:       items,
		Span:        span,
	})
}

// parseFuncDecl parses "def name[::Parent](params): ret { body }" or the
// "=> expr" single-expression sugar, plus the "&this" pointer-receiver and
// trailing "exits" no-return marker (spec.md §4.2).
func (p *parser) parseFuncDecl(ns *program.Namespace, isExtern bool) {
	start := p.expect(token.KwDef).Span
	name := p.expect(token.Identifier).Lexeme

	parentName := ""
	if p.accept(token.ColonColon) {
		parentName = name
		name = p.expect(token.Identifier).Lexeme
	}

	sym := p.declareSymbol(ns, ast.SymFunction, name, start, isExtern, "")

	fnScope := p.pushScope()
	savedInMethod := p.insideMethod

	p.expect(token.OpenParen)
	var params []ast.Variable
	isMethod := false
	for !p.at(token.CloseParen) {
		ptrReceiver := p.accept(token.Ampersand)
		var pname string
		if p.accept(token.KwThis) {
			pname = "this"
		} else {
			pname = p.expect(token.Identifier).Lexeme
		}
		if pname == "this" {
			isMethod = true
			p.insideMethod = true
			_ = ptrReceiver
		}
		var ptype ast.TypeID
		if p.accept(token.Colon) {
			ptype = p.parseTypeExpr()
		}
		var def ast.NodeID
		if p.accept(token.Equals) {
			def = p.parseExpr(LAssign)
		}
		pspan := p.cur().Span
		psym := p.declareParam(sym, fnScope, ns, pname, pspan)
		p.prog.Symbol(psym).Type = ptype
		params = append(params, ast.Variable{Symbol: psym, Type: ptype, Default: def})
		if !p.accept(token.Comma) {
			break
		}
	}
	p.expect(token.CloseParen)

	var ret ast.TypeID
	if p.accept(token.Colon) {
		ret = p.parseTypeExpr()
	}

	exits := false
	if p.accept(token.KwExits) {
		exits = true
	}

	var body ast.NodeID
	if p.accept(token.Arrow) { // "=> expr" single-return sugar
		e := p.parseExpr(LAssign)
		ret := ast.NewNode(ast.NReturn, p.prog.Node(e).Span)
		ret.Rhs = e
		retID := p.prog.NewNode(ret)
		block := ast.NewNode(ast.NBlock, ret.Span)
		block.Stmts = []ast.NodeID{retID}
		body = p.prog.NewNode(block)
	} else if p.at(token.OpenBrace) {
		body = p.parseBlock()
	}

	fn := &ast.Function{
		Symbol:     sym,
		Params:     params,
		Return:     ret,
		Body:       body,
		Exits:      exits,
		IsMethod:   isMethod,
		CapturedScope: fnScope,
		DefSpan:    start,
	}
	fnID := p.prog.NewFunc(fn)
	p.prog.Symbol(sym).Func = fnID

	if parentName != "" {
		// The parent identifier is stored unresolved; the checker
		// re-parents this function onto its owning type (spec.md §4.2).
		ns.PendingMethods = append(ns.PendingMethods, program.PendingMethod{
			ParentName: parentName,
			Func:       fnID,
		})
	} else {
		ns.AddFunction(fnID)
	}

	p.insideMethod = savedInMethod
	p.popScope(p.prog.Scope(fnScope).Parent)
}

// parseStructDecl parses "struct/union name[<T,...>] [extern[(C)]] { fields }".
func (p *parser) parseStructDecl(ns *program.Namespace) {
	isUnion := p.at(token.KwUnion)
	start := p.advance().Span // consumes struct|union
	name := p.expect(token.Identifier).Lexeme

	// Template parameters live in a scope of their own (a child of ns's
	// scope, never ns's scope directly): they are compile-time-only
	// placeholders substituted away during instantiation, so their
	// display/out-names (composed against ns like any other namespace
	// member) are never emitted and only their local visibility as bare
	// identifiers in the field/method list matters.
	structScope := p.pushScope()
	var templateParams []ast.SymbolID
	if p.accept(token.Less) {
		display, outName := parentNames(p.prog, ns)
		for {
			tpName := p.expect(token.Identifier).Lexeme
			tpSym := p.newSymbol(display, outName, ns, ast.SymTypeDef, tpName, p.cur().Span, false, "")
			if ls := p.prog.Scope(structScope); ls != nil {
				ls.Declare(tpName, tpSym)
			}
			templateParams = append(templateParams, tpSym)
			if !p.accept(token.Comma) {
				break
			}
		}
		p.expectCloseAngle()
	}

	isExtern := false
	externName := ""
	if p.accept(token.KwExtern) {
		isExtern = true
		if p.accept(token.OpenParen) {
			externName = p.expect(token.Identifier).Lexeme
			p.expect(token.CloseParen)
		}
	}

	sym := p.declareSymbol(ns, ast.SymStructure, name, start, isExtern, externName)

	st := &ast.Structure{
		Symbol:         sym,
		IsUnion:        isUnion,
		IsTemplated:    len(templateParams) > 0,
		TemplateParams: templateParams,
		Instances:      make(map[string]ast.StructID),
		DefSpan:        start,
		Scope:          structScope,
	}

	p.expect(token.OpenBrace)
	for !p.at(token.CloseBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Identifier).Lexeme
		p.expect(token.Colon)
		ftype := p.parseTypeExpr()
		var def ast.NodeID
		if p.accept(token.Equals) {
			def = p.parseExpr(LAssign)
		}
		fsym := p.declareMember(sym, ns, ast.SymVariable, fname, p.cur().Span, false, "")
		p.prog.Symbol(fsym).Type = ftype
		st.Fields = append(st.Fields, ast.Variable{Symbol: fsym, Type: ftype, Default: def})
		p.endsStatement()
	}
	p.expect(token.CloseBrace)
	p.popScope(p.prog.Scope(structScope).Parent)

	structID := p.prog.NewStruct(st)
	p.prog.Symbol(sym).Struct = structID
	if !st.IsTemplated {
		tyID := p.prog.NewType(ast.NewStructureType(structID))
		st.Type = tyID
		p.prog.Symbol(sym).Type = tyID
	}
	ns.AddStruct(structID)
}

// parseEnumDecl parses "enum name { A, B = extern(\"C_B\"), ... }"; variants
// are separated by commas or newlines.
func (p *parser) parseEnumDecl(ns *program.Namespace) {
	start := p.expect(token.KwEnum).Span
	name := p.expect(token.Identifier).Lexeme
	sym := p.declareSymbol(ns, ast.SymEnum, name, start, false, "")

	en := &ast.Enum{Symbol: sym}

	p.expect(token.OpenBrace)
	next := int64(0)
	for !p.at(token.CloseBrace) && !p.at(token.EOF) {
		fname := p.expect(token.Identifier).Lexeme
		externName := ""
		isExtern := false
		value := next
		if p.accept(token.Equals) {
			if p.accept(token.KwExtern) {
				p.expect(token.OpenParen)
				externName = unquote(p.expect(token.StringLiteral).Lexeme)
				isExtern = true
				p.expect(token.CloseParen)
			} else {
				value = p.parseIntLiteralValue()
			}
		}
		fsym := p.declareMember(sym, ns, ast.SymConstant, fname, p.cur().Span, isExtern, externName)
		en.Fields = append(en.Fields, ast.EnumField{Symbol: fsym, Value: value})
		next = value + 1
		if !p.accept(token.Comma) && !p.cur().SeenNewlineBefore {
			break
		}
	}
	p.expect(token.CloseBrace)

	enumID := p.prog.NewEnum(en)
	p.prog.Symbol(sym).Enum = enumID
	tyID := p.prog.NewType(ast.NewEnumType(enumID))
	en.Type = tyID
	p.prog.Symbol(sym).Type = tyID
	for _, f := range en.Fields {
		p.prog.Symbol(f.Symbol).Type = tyID
	}
	ns.AddEnum(enumID)
}

func (p *parser) parseIntLiteralValue() int64 {
	tok := p.expect(token.IntLiteral)
	n := parseIntLexeme(tok.Lexeme)
	return n
}

func parseIntLexeme(lexeme string) int64 {
	clean := strings.ReplaceAll(lexeme, "_", "")
	var n int64
	var base int64 = 10
	if strings.HasPrefix(clean, "0x") || strings.HasPrefix(clean, "0X") {
		base = 16
		clean = clean[2:]
	} else if strings.HasPrefix(clean, "0b") || strings.HasPrefix(clean, "0B") {
		base = 2
		clean = clean[2:]
	}
	for _, c := range clean {
		var d int64
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		default:
			continue
		}
		n = n*base + d
	}
	return n
}

// parseGlobalVarDecl parses a top-level "let"/"const" declaration.
func (p *parser) parseGlobalVarDecl(ns *program.Namespace) {
	isConst := p.at(token.KwConst)
	start := p.advance().Span // let|const
	name := p.expect(token.Identifier).Lexeme

	var declType ast.TypeID
	if p.accept(token.Colon) {
		declType = p.parseTypeExpr()
	}

	isExtern := false
	var def ast.NodeID
	if p.accept(token.Equals) {
		if p.at(token.KwExtern) {
			p.advance()
			isExtern = true
		} else {
			def = p.parseExpr(LAssign)
		}
	}

	kind := ast.SymVariable
	if isConst {
		kind = ast.SymConstant
	}
	sym := p.declareSymbol(ns, kind, name, start, isExtern, "")
	p.prog.Symbol(sym).Type = declType

	if isConst {
		ns.AddConstant(sym)
	} else {
		ns.AddVariable(sym)
	}
	ns.SetVarInit(sym, def)
	p.endsStatement()
}

// expectCloseAngle consumes a '>' that closes a template-parameter list,
// accepting a lexed '<' that the checker will later have fused from two
// consecutive shift-like tokens isn't relevant here: the lexer already
// emits single '<'/'>' tokens (see internal/lexer), so this is a plain
// expect.
func (p *parser) expectCloseAngle() {
	p.expect(token.Greater)
}
