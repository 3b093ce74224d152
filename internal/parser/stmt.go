package parser

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/lexer"
	"github.com/ocen-lang/ocenc/internal/token"
)

// parseBlock parses a "{ ... }" statement sequence into an NBlock node,
// pushing and popping a scope around it (spec.md §3's "Scope" entry).
// Blocks double as expressions (via yield); the checker, not the parser,
// decides whether a given block is used that way.
func (p *parser) parseBlock() ast.NodeID {
	start := p.expect(token.OpenBrace).Span
	blockScope := p.pushScope()
	var stmts []ast.NodeID
	for !p.at(token.CloseBrace) && !p.at(token.EOF) {
		stmts = append(stmts, p.parseStatement())
	}
	end := p.expect(token.CloseBrace).Span
	p.popScope(p.prog.Scope(blockScope).Parent)

	n := ast.NewNode(ast.NBlock, diag.Join(start, end))
	n.Stmts = stmts
	return p.prog.NewNode(n)
}

func (p *parser) parseBlockExpr() ast.NodeID { return p.parseBlock() }

func (p *parser) parseStatement() ast.NodeID {
	switch p.cur().Kind {
	case token.OpenBrace:
		return p.parseBlock()
	case token.KwLet, token.KwConst:
		return p.parseLocalVarDecl()
	case token.KwReturn:
		return p.parseReturn()
	case token.KwYield:
		return p.parseYield()
	case token.KwBreak:
		return p.parseBreakContinue(ast.NBreak)
	case token.KwContinue:
		return p.parseBreakContinue(ast.NContinue)
	case token.KwDefer:
		return p.parseDefer()
	case token.KwAssert:
		return p.parseAssert()
	case token.KwIf:
		return p.parseIfExprOrStmt(false)
	case token.KwWhile:
		return p.parseWhile()
	case token.KwFor:
		return p.parseFor()
	case token.KwMatch:
		return p.parseMatchExprOrStmt(false)
	default:
		e := p.parseExpr(LAssign)
		p.endsStatement()
		n := ast.NewNode(ast.NExprStatement, p.prog.Node(e).Span)
		n.Rhs = e
		return p.prog.NewNode(n)
	}
}

func (p *parser) parseLocalVarDecl() ast.NodeID {
	isConst := p.at(token.KwConst)
	start := p.advance().Span // let|const
	name := p.expect(token.Identifier).Lexeme

	var declType ast.TypeID
	if p.accept(token.Colon) {
		declType = p.parseTypeExpr()
	}
	var def ast.NodeID
	if p.accept(token.Equals) {
		def = p.parseExpr(LAssign)
	}
	p.endsStatement()

	kind := ast.SymVariable
	if isConst {
		kind = ast.SymConstant
	}
	sym := &ast.Symbol{Kind: kind, Name: name, DefSpan: start}
	sym.ComposeNames("", "")
	symID := p.prog.NewSymbol(sym)
	symID2 := symID
	p.prog.Symbol(symID2).Type = declType
	if ls := p.prog.Scope(p.scope); ls != nil {
		if !ls.Declare(name, symID2) {
			p.errorf(start, "redeclaration of %q in this scope", name)
		}
	}

	n := ast.NewNode(ast.NVarDecl, start)
	n.Name = name
	n.DeclType = declType
	n.DeclDefault = def
	n.DeclSymbol = symID2
	n.IsConst = isConst
	return p.prog.NewNode(n)
}

func (p *parser) parseReturn() ast.NodeID {
	start := p.expect(token.KwReturn).Span
	n := ast.NewNode(ast.NReturn, start)
	if !p.at(token.Semicolon) && !p.at(token.CloseBrace) && !p.at(token.EOF) && !p.cur().SeenNewlineBefore {
		n.Rhs = p.parseExpr(LAssign)
	}
	p.endsStatement()
	return p.prog.NewNode(n)
}

func (p *parser) parseYield() ast.NodeID {
	start := p.expect(token.KwYield).Span
	n := ast.NewNode(ast.NYield, start)
	n.Rhs = p.parseExpr(LAssign)
	p.endsStatement()
	return p.prog.NewNode(n)
}

func (p *parser) parseBreakContinue(kind ast.NodeKind) ast.NodeID {
	start := p.advance().Span
	p.endsStatement()
	return p.prog.NewNode(ast.NewNode(kind, start))
}

func (p *parser) parseDefer() ast.NodeID {
	start := p.expect(token.KwDefer).Span
	stmt := p.parseStatement()
	n := ast.NewNode(ast.NDefer, diag.Join(start, p.prog.Node(stmt).Span))
	n.Rhs = stmt
	if s := p.prog.Scope(p.scope); s != nil {
		id := p.prog.NewNode(n)
		s.DeferStack = append(s.DeferStack, id)
		return id
	}
	return p.prog.NewNode(n)
}

func (p *parser) parseAssert() ast.NodeID {
	start := p.expect(token.KwAssert).Span
	p.expect(token.OpenParen)
	cond := p.parseExpr(LAssign)
	n := ast.NewNode(ast.NAssert, start)
	n.Cond = cond
	if p.accept(token.Comma) {
		n.Rhs = p.parseExpr(LAssign)
	}
	p.expect(token.CloseParen)
	p.endsStatement()
	return p.prog.NewNode(n)
}

// parseIfExprOrStmt parses "if cond { ... } [else ...]". The grammar is
// identical whether used as a statement or an expression; the checker
// requires an else-branch and matching yield types only in the latter
// case (spec.md §4.4).
func (p *parser) parseIfExprOrStmt(_ bool) ast.NodeID {
	start := p.expect(token.KwIf).Span
	cond := p.parseExpr(LAssign)
	then := p.parseBlock()
	n := ast.NewNode(ast.NIf, start)
	n.Cond, n.Then = cond, then
	if p.accept(token.KwElse) {
		if p.at(token.KwIf) {
			n.Else = p.parseIfExprOrStmt(false)
		} else {
			n.Else = p.parseBlock()
		}
	}
	n.Span = diag.Join(start, p.prog.Node(then).Span)
	return p.prog.NewNode(n)
}

func (p *parser) parseWhile() ast.NodeID {
	start := p.expect(token.KwWhile).Span
	cond := p.parseExpr(LAssign)
	body := p.parseBlock()
	n := ast.NewNode(ast.NWhile, diag.Join(start, p.prog.Node(body).Span))
	n.Cond, n.Body = cond, body
	return p.prog.NewNode(n)
}

func (p *parser) parseFor() ast.NodeID {
	start := p.expect(token.KwFor).Span
	var init, cond, step ast.NodeID
	if !p.at(token.Semicolon) {
		if p.at(token.KwLet) || p.at(token.KwConst) {
			init = p.parseLocalVarDecl()
		} else {
			e := p.parseExpr(LAssign)
			p.expect(token.Semicolon)
			n := ast.NewNode(ast.NExprStatement, p.prog.Node(e).Span)
			n.Rhs = e
			init = p.prog.NewNode(n)
		}
	} else {
		p.expect(token.Semicolon)
	}
	if !p.at(token.Semicolon) {
		cond = p.parseExpr(LAssign)
	}
	p.expect(token.Semicolon)
	if !p.at(token.OpenBrace) {
		step = p.parseExpr(LAssign)
	}
	body := p.parseBlock()

	n := ast.NewNode(ast.NFor, diag.Join(start, p.prog.Node(body).Span))
	n.ForInit, n.ForCond, n.ForStep, n.Body = init, cond, step, body
	return p.prog.NewNode(n)
}

// parseMatchExprOrStmt parses "match subject { pattern[| pattern...] =>
// stmt, ..., else => stmt }" (spec.md §4.2's "Match cases").
func (p *parser) parseMatchExprOrStmt(_ bool) ast.NodeID {
	start := p.expect(token.KwMatch).Span
	subject := p.parseExpr(LAssign)
	p.expect(token.OpenBrace)

	n := ast.NewNode(ast.NMatch, start)
	n.Subject = subject

	for !p.at(token.CloseBrace) && !p.at(token.EOF) {
		if p.at(token.KwElse) {
			p.advance()
			p.expect(token.Arrow)
			n.DefaultCase = p.parseStatement()
			p.accept(token.Comma)
			continue
		}

		caseStart := p.cur().Span
		var patterns []ast.NodeID
		// Patterns parse below bitwise-or (exclusive) so a bare "|" is left
		// for case alternation rather than being swallowed as bitwise-or;
		// spec.md §4.4.2 restricts patterns to literals/enum variants
		// anyway, so nothing above additive precedence is ever needed here.
		patterns = append(patterns, p.parseAdditive())
		for p.at(token.Pipe) {
			p.advance()
			patterns = append(patterns, p.parseAdditive())
		}
		p.expect(token.Arrow)
		body := p.parseStatement()

		c := ast.NewNode(ast.NMatchCase, diag.Join(caseStart, p.prog.Node(body).Span))
		c.CasePatterns = patterns
		c.CaseBody = body
		n.Cases = append(n.Cases, p.prog.NewNode(c))
		p.accept(token.Comma)
	}
	end := p.expect(token.CloseBrace).Span
	n.Span = diag.Join(start, end)
	return p.prog.NewNode(n)
}

// parseFormatString splits a format-string token's content into literal
// parts interleaved with embedded sub-expressions, each sub-parsed from
// its own offset so error spans point back into the original file
// (spec.md §4.2's "Format strings" rule).
func (p *parser) parseFormatString(tok token.Token) ast.NodeID {
	raw := tok.Lexeme
	prefixLen := 0
	if len(raw) > 0 && raw[0] == 'f' {
		prefixLen = 1
	}
	if len(raw) < prefixLen+2 {
		return p.prog.NewNode(ast.NewNode(ast.NFormatStringLiteral, tok.Span))
	}
	content := raw[prefixLen+1 : len(raw)-1]
	contentStart := tok.Span.Start.Index + int32(prefixLen) + 1

	n := ast.NewNode(ast.NFormatStringLiteral, tok.Span)

	literalStart := 0
	i := 0
	for i < len(content) {
		if content[i] != '{' {
			i++
			continue
		}
		n.FormatParts = append(n.FormatParts, unescapeString(content[literalStart:i]))
		i++ // consume '{'
		exprStart := i
		depth := 1
		specStart := -1
		for i < len(content) && depth > 0 {
			c := content[i]
			switch {
			case c == '{':
				depth++
			case c == '}':
				depth--
				if depth == 0 {
					goto doneHole
				}
			case c == ':' && depth == 1 && specStart == -1:
				prevColon := i > 0 && content[i-1] == ':'
				nextColon := i+1 < len(content) && content[i+1] == ':'
				if !prevColon && !nextColon {
					specStart = i
				}
			}
			i++
		}
	doneHole:
		exprEnd := i
		spec := ""
		if specStart >= 0 {
			exprEnd = specStart
			spec = content[specStart+1 : i]
		}
		exprText := content[exprStart:exprEnd]
		sub := p.parseSubExpr(exprText, contentStart+int32(exprStart))
		n.FormatExprs = append(n.FormatExprs, sub)
		n.FormatSpecs = append(n.FormatSpecs, spec)
		if i < len(content) {
			i++ // consume '}'
		}
		literalStart = i
	}
	n.FormatParts = append(n.FormatParts, unescapeString(content[literalStart:]))

	return p.prog.NewNode(n)
}

// parseSubExpr re-lexes text as a standalone expression and parses it with
// a fresh parser whose token spans are remapped to their true absolute
// position in the original file (via source.PositionFor), so diagnostics
// inside an interpolation hole point at real source coordinates instead of
// offset-zero coordinates within the extracted substring.
func (p *parser) parseSubExpr(text string, absOffset int32) ast.NodeID {
	scratch := diag.NewSource(p.source.Name, text)
	toks, errs := lexer.Lex(scratch)
	for _, e := range errs {
		p.prog.AddError(remapError(e, absOffset, p.source))
	}
	remapped := make([]token.Token, len(toks))
	for i, t := range toks {
		remapped[i] = t
		remapped[i].Span = remapSpan(t.Span, absOffset, p.source)
	}

	sub := &parser{prog: p.prog, source: p.source, toks: remapped, scope: p.scope, insideMethod: p.insideMethod}
	return sub.parseExpr(LAssign)
}

func remapSpan(span diag.Span, absOffset int32, source *diag.Source) diag.Span {
	return diag.Span{
		Start: source.PositionFor(absOffset + span.Start.Index),
		End:   source.PositionFor(absOffset + span.End.Index),
	}
}

func remapError(e diag.Error, absOffset int32, source *diag.Source) diag.Error {
	e.Primary.Span = remapSpan(e.Primary.Span, absOffset, source)
	if e.Hint != nil {
		h := *e.Hint
		h.Span = remapSpan(h.Span, absOffset, source)
		e.Hint = &h
	}
	return e
}
