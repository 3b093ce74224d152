package parser

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/token"
)

// parseTypeExpr parses a type expression: "&T" (pointer), "[N]T" (array),
// "(p1, p2): R" (function type), or a scoped identifier optionally
// followed by "<T, ...>" template arguments. Every shape except the
// already-resolved scalar fast path produces an Unresolved(ident-AST) type
// that resolve_type (internal/check) resolves later (spec.md §3, §4.4).
func (p *parser) parseTypeExpr() ast.TypeID {
	switch p.cur().Kind {
	case token.Ampersand:
		start := p.advance().Span
		elem := p.parseTypeExpr()
		if p.prog.Type(elem) != nil && p.prog.Type(elem).Kind == ast.TypeChar {
			// "&char" is spelled out explicitly by some declarations, but
			// the `str` alias is preferred; still a legal pointer type.
			_ = start
		}
		return p.prog.NewType(ast.NewPointer(elem))
	case token.OpenBracket:
		p.advance()
		var sizeExpr ast.NodeID
		if !p.at(token.CloseBracket) {
			sizeExpr = p.parseExpr(LAssign)
		}
		p.expect(token.CloseBracket)
		elem := p.parseTypeExpr()
		return p.prog.NewType(ast.NewArray(elem, sizeExpr))
	case token.OpenParen:
		p.advance()
		var params []ast.SymbolID
		for !p.at(token.CloseParen) {
			pt := p.parseTypeExpr()
			psym := p.prog.NewSymbol(&ast.Symbol{Kind: ast.SymVariable, Type: pt})
			params = append(params, psym)
			if !p.accept(token.Comma) {
				break
			}
		}
		p.expect(token.CloseParen)
		var ret ast.TypeID
		if p.accept(token.Colon) {
			ret = p.parseTypeExpr()
		} else {
			ret = p.voidType()
		}
		return p.prog.NewType(ast.NewFunctionType(params, ret))
	case token.Star:
		// Some declarations spell pointer types "*T" in casts; accept it as
		// a synonym for "&T" so "expr as *T" round-trips through the same
		// type grammar as declarations.
		p.advance()
		elem := p.parseTypeExpr()
		return p.prog.NewType(ast.NewPointer(elem))
	}

	if p.at(token.Identifier) || p.at(token.KwStd) {
		ident := p.parseScopedIdentNode()
		if p.specializationFollows() {
			ident = p.parseSpecialization(ident)
		}
		return p.prog.NewType(ast.NewUnresolved(ident))
	}

	p.errorf(p.cur().Span, "expected a type, got %s", p.cur())
	return p.errorType()
}

func (p *parser) voidType() ast.TypeID {
	return p.prog.NewType(ast.NewScalar(ast.TypeVoid))
}

func (p *parser) errorType() ast.TypeID {
	return p.prog.NewType(ast.ErrorType)
}
