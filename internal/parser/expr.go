package parser

import (
	"strings"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/token"
)

// Level names the ascending-precedence ladder from spec.md §4.2. parseExpr
// takes the minimum level its caller is willing to accept; each cascading
// parseXxx method only descends to the next tighter level when it doesn't
// recognize an operator at its own level, the usual recursive-descent
// precedence-climbing shape (grounded on js_parser.go's Level enum and
// parsePrefix/parseSuffix pair, adapted to Ocen's own operator table).
type Level int

const (
	LLowest Level = iota
	LAssign
	LLogicalOr
	LLogicalAnd
	LComparison
	LBitOr
	LBitXor
	LBitAnd
	LShift
	LAdditive
	LMultiplicative
	LCast
	LPrefix
	LPostfix
)

// parseExpr is the single entry point every caller outside this file uses.
// The minLevel argument exists so a caller that must not swallow an
// assignment (none currently need that) can ask for a tighter level; in
// practice every external call site passes LAssign, i.e. "parse one full
// expression".
func (p *parser) parseExpr(minLevel Level) ast.NodeID {
	if minLevel <= LAssign {
		return p.parseAssignment()
	}
	return p.parseLogicalOr()
}

var opAssignKinds = map[token.Kind]ast.BinaryOp{
	token.PlusEquals:     ast.OpAdd,
	token.MinusEquals:    ast.OpSub,
	token.StarEquals:     ast.OpMul,
	token.SlashEquals:    ast.OpDiv,
	token.PercentEquals:  ast.OpMod,
	token.AmpersandEquals: ast.OpBitAnd,
	token.PipeEquals:     ast.OpBitOr,
	token.CaretEquals:    ast.OpBitXor,
}

// parseAssignment handles "=" and the compound "+=" family, right-
// associatively: "a = b = c" parses as "a = (b = c)". The shift compound
// forms ("<<=", ">>=") are fused here from three adjacent single-char
// tokens, mirroring the way parseShift fuses "<<"/">>" from two.
func (p *parser) parseAssignment() ast.NodeID {
	left := p.parseLogicalOr()

	if p.at(token.Equals) {
		p.advance()
		right := p.parseAssignment()
		n := ast.NewNode(ast.NAssign, diag.Join(p.prog.Node(left).Span, p.prog.Node(right).Span))
		n.Lhs, n.Rhs = left, right
		return p.prog.NewNode(n)
	}

	if op, ok := opAssignKinds[p.cur().Kind]; ok {
		p.advance()
		right := p.parseAssignment()
		n := ast.NewNode(ast.NOpAssign, diag.Join(p.prog.Node(left).Span, p.prog.Node(right).Span))
		n.Lhs, n.Rhs, n.BinaryOp = left, right, op
		return p.prog.NewNode(n)
	}

	if shiftOp, ok := p.peekShiftAssign(); ok {
		p.consumeShiftAssign()
		right := p.parseAssignment()
		n := ast.NewNode(ast.NOpAssign, diag.Join(p.prog.Node(left).Span, p.prog.Node(right).Span))
		n.Lhs, n.Rhs, n.BinaryOp = left, right, shiftOp
		return p.prog.NewNode(n)
	}

	return left
}

// peekShiftAssign detects "<<=" / ">>=" as three adjacent, space-free
// tokens ('<','<','=' or '>','>','='), since the lexer never fuses shifts
// itself (spec.md §9).
func (p *parser) peekShiftAssign() (ast.BinaryOp, bool) {
	var base token.Kind
	var op ast.BinaryOp
	switch p.cur().Kind {
	case token.Less:
		base, op = token.Less, ast.OpShl
	case token.Greater:
		base, op = token.Greater, ast.OpShr
	default:
		return 0, false
	}
	t0, t1, t2 := p.cur(), p.peekAt(1), p.peekAt(2)
	if t1.Kind == base && t2.Kind == token.Equals &&
		diag.Adjacent(t0.Span, t1.Span) && diag.Adjacent(t1.Span, t2.Span) {
		return op, true
	}
	return 0, false
}

func (p *parser) consumeShiftAssign() {
	p.advance()
	p.advance()
	p.advance()
}

func (p *parser) parseLogicalOr() ast.NodeID {
	left := p.parseLogicalAnd()
	for p.at(token.PipePipe) || p.atKeyword("or") {
		p.advance()
		right := p.parseLogicalAnd()
		left = p.makeBinary(ast.OpLogicalOr, left, right)
	}
	return left
}

func (p *parser) parseLogicalAnd() ast.NodeID {
	left := p.parseComparison()
	for p.at(token.AmpersandAmpersand) || p.atKeyword("and") {
		p.advance()
		right := p.parseComparison()
		left = p.makeBinary(ast.OpLogicalAnd, left, right)
	}
	return left
}

// atKeyword reports whether the current token is the "and"/"or"/"not"
// word-keyword spelled out as an identifier-like keyword token.
func (p *parser) atKeyword(word string) bool {
	switch word {
	case "and":
		return p.at(token.KwAnd)
	case "or":
		return p.at(token.KwOr)
	case "not":
		return p.at(token.KwNot)
	}
	return false
}

var comparisonOps = map[token.Kind]ast.BinaryOp{
	token.EqualsEquals: ast.OpEq, token.BangEquals: ast.OpNotEq,
	token.LessEquals: ast.OpLessEq, token.GreaterEquals: ast.OpGreaterEq,
}

// parseComparison implements non-associative, implicit-AND chaining: "a <
// b < c" parses as "(a < b) && (b < c)" rather than nesting further
// comparisons (spec.md §4.2). "<" and ">" are read directly as comparison
// ops here; parseShift (one level down) has already claimed them when two
// are adjacent with no space between.
func (p *parser) parseComparison() ast.NodeID {
	left := p.parseBitOr()

	op, ok, isPlain := p.peekComparisonOp()
	if !ok {
		return left
	}

	var result ast.NodeID
	prev := left
	for {
		op, ok, isPlain = p.peekComparisonOp()
		if !ok {
			break
		}
		if isPlain {
			p.advance()
		} else {
			p.advance() // consumes the lone '<' or '>'
		}
		right := p.parseBitOr()
		cmp := p.makeBinary(op, prev, right)
		if !result.IsValid() {
			result = cmp
		} else {
			result = p.makeBinary(ast.OpLogicalAnd, result, cmp)
		}
		prev = right
	}
	return result
}

// peekComparisonOp reports the comparison operator starting at the cursor,
// if any. A lone "<"/">" is a comparison only when it is NOT the first half
// of an adjacent shift pair (that case is claimed by parseShift already,
// so by the time control reaches here it is safe to treat a solitary
// "<"/">" as Less/Greater).
func (p *parser) peekComparisonOp() (ast.BinaryOp, bool, bool) {
	if op, ok := comparisonOps[p.cur().Kind]; ok {
		return op, true, true
	}
	switch p.cur().Kind {
	case token.Less:
		return ast.OpLess, true, false
	case token.Greater:
		return ast.OpGreater, true, false
	}
	return 0, false, false
}

func (p *parser) parseBitOr() ast.NodeID {
	left := p.parseBitXor()
	for p.at(token.Pipe) {
		p.advance()
		right := p.parseBitXor()
		left = p.makeBinary(ast.OpBitOr, left, right)
	}
	return left
}

func (p *parser) parseBitXor() ast.NodeID {
	left := p.parseBitAnd()
	for p.at(token.Caret) {
		p.advance()
		right := p.parseBitAnd()
		left = p.makeBinary(ast.OpBitXor, left, right)
	}
	return left
}

func (p *parser) parseBitAnd() ast.NodeID {
	left := p.parseShift()
	for p.at(token.Ampersand) {
		p.advance()
		right := p.parseShift()
		left = p.makeBinary(ast.OpBitAnd, left, right)
	}
	return left
}

// parseShift fuses "<<"/">>" from two adjacent, space-free tokens of the
// same kind, per spec.md §9's note that whitespace between them is
// significant (so "Foo<Bar>" specialization still tokenizes as two lone
// "<"/">"s elsewhere in the grammar).
func (p *parser) parseShift() ast.NodeID {
	left := p.parseAdditive()
	for {
		op, ok := p.peekShiftOp()
		if !ok {
			break
		}
		p.advance()
		p.advance()
		right := p.parseAdditive()
		left = p.makeBinary(op, left, right)
	}
	return left
}

func (p *parser) peekShiftOp() (ast.BinaryOp, bool) {
	cur, next := p.cur(), p.peekAt(1)
	if cur.Kind == token.Less && next.Kind == token.Less && diag.Adjacent(cur.Span, next.Span) {
		return ast.OpShl, true
	}
	if cur.Kind == token.Greater && next.Kind == token.Greater && diag.Adjacent(cur.Span, next.Span) {
		return ast.OpShr, true
	}
	return 0, false
}

func (p *parser) parseAdditive() ast.NodeID {
	left := p.parseMultiplicative()
	for p.at(token.Plus) || p.at(token.Minus) {
		op := ast.OpAdd
		if p.cur().Kind == token.Minus {
			op = ast.OpSub
		}
		p.advance()
		right := p.parseMultiplicative()
		left = p.makeBinary(op, left, right)
	}
	return left
}

func (p *parser) parseMultiplicative() ast.NodeID {
	left := p.parseCast()
	for p.at(token.Star) || p.at(token.Slash) || p.at(token.Percent) {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case token.Star:
			op = ast.OpMul
		case token.Slash:
			op = ast.OpDiv
		case token.Percent:
			op = ast.OpMod
		}
		p.advance()
		right := p.parseCast()
		left = p.makeBinary(op, left, right)
	}
	return left
}

// parseCast handles the postfix-positioned "expr as Type" form, which
// binds tighter than the arithmetic operators but looser than prefix
// unary, per spec.md §4.2's precedence table.
func (p *parser) parseCast() ast.NodeID {
	left := p.parsePrefix()
	for p.at(token.KwAs) {
		start := p.advance().Span
		_ = start
		ty := p.parseTypeExpr()
		n := ast.NewNode(ast.NCast, p.prog.Node(left).Span)
		n.Lhs = left
		n.CastType = ty
		left = p.prog.NewNode(n)
	}
	return left
}

// parsePrefix handles "&", "*", "-", "!"/"not", "~", and "sizeof(T)".
func (p *parser) parsePrefix() ast.NodeID {
	span := p.cur().Span
	switch p.cur().Kind {
	case token.Ampersand:
		p.advance()
		operand := p.parsePrefix()
		n := ast.NewNode(ast.NUnaryPrefix, diag.Join(span, p.prog.Node(operand).Span))
		n.UnaryOp, n.Rhs = ast.OpAddrOf, operand
		return p.prog.NewNode(n)
	case token.Star:
		p.advance()
		operand := p.parsePrefix()
		n := ast.NewNode(ast.NUnaryPrefix, diag.Join(span, p.prog.Node(operand).Span))
		n.UnaryOp, n.Rhs = ast.OpDeref, operand
		return p.prog.NewNode(n)
	case token.Minus:
		p.advance()
		operand := p.parsePrefix()
		n := ast.NewNode(ast.NUnaryPrefix, diag.Join(span, p.prog.Node(operand).Span))
		n.UnaryOp, n.Rhs = ast.OpNeg, operand
		return p.prog.NewNode(n)
	case token.Bang, token.KwNot:
		p.advance()
		operand := p.parsePrefix()
		n := ast.NewNode(ast.NUnaryPrefix, diag.Join(span, p.prog.Node(operand).Span))
		n.UnaryOp, n.Rhs = ast.OpNot, operand
		return p.prog.NewNode(n)
	case token.Tilde:
		p.advance()
		operand := p.parsePrefix()
		n := ast.NewNode(ast.NUnaryPrefix, diag.Join(span, p.prog.Node(operand).Span))
		n.UnaryOp, n.Rhs = ast.OpBitNot, operand
		return p.prog.NewNode(n)
	case token.KwSizeof:
		p.advance()
		p.expect(token.OpenParen)
		ty := p.parseTypeExpr()
		end := p.expect(token.CloseParen).Span
		n := ast.NewNode(ast.NSizeof, diag.Join(span, end))
		n.CastType = ty
		return p.prog.NewNode(n)
	}
	return p.parsePostfix()
}

// parsePostfix handles call, ".member", "?" (postfix try), and "[index]",
// left-associatively chained onto a primary expression.
func (p *parser) parsePostfix() ast.NodeID {
	left := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case token.OpenParen:
			left = p.parseCallSuffix(left)
		case token.Dot:
			p.advance()
			name := p.expect(token.Identifier).Lexeme
			n := ast.NewNode(ast.NMember, diag.Join(p.prog.Node(left).Span, p.toks[p.pos-1].Span))
			n.Base, n.Name = left, name
			left = p.prog.NewNode(n)
		case token.Question:
			end := p.advance().Span
			n := ast.NewNode(ast.NUnaryPostfix, diag.Join(p.prog.Node(left).Span, end))
			n.UnaryOp, n.Rhs = ast.OpTry, left
			left = p.prog.NewNode(n)
		case token.OpenBracket:
			p.advance()
			idx := p.parseExpr(LAssign)
			end := p.expect(token.CloseBracket).Span
			n := ast.NewNode(ast.NIndex, diag.Join(p.prog.Node(left).Span, end))
			n.Base, n.Rhs = left, idx
			left = p.prog.NewNode(n)
		default:
			return left
		}
	}
}

func (p *parser) parseCallSuffix(callee ast.NodeID) ast.NodeID {
	p.expect(token.OpenParen)
	var args []ast.NodeID
	for !p.at(token.CloseParen) {
		// Labeled argument: "name: expr". Lookahead two tokens to avoid
		// misreading a plain expression that happens to start with an
		// identifier followed by something else.
		if p.at(token.Identifier) && p.peekAt(1).Kind == token.Colon {
			nameTok := p.advance()
			p.advance() // ':'
			val := p.parseExpr(LAssign)
			labeled := ast.NewNode(ast.NAssign, diag.Join(nameTok.Span, p.prog.Node(val).Span))
			labeled.Name = nameTok.Lexeme
			labeled.Rhs = val
			args = append(args, p.prog.NewNode(labeled))
		} else {
			args = append(args, p.parseExpr(LAssign))
		}
		if !p.accept(token.Comma) {
			break
		}
	}
	end := p.expect(token.CloseParen).Span
	n := ast.NewNode(ast.NCall, diag.Join(p.prog.Node(callee).Span, end))
	n.Base, n.Args = callee, args
	return p.prog.NewNode(n)
}

func (p *parser) makeBinary(op ast.BinaryOp, left, right ast.NodeID) ast.NodeID {
	n := ast.NewNode(ast.NBinary, diag.Join(p.prog.Node(left).Span, p.prog.Node(right).Span))
	n.BinaryOp, n.Lhs, n.Rhs = op, left, right
	return p.prog.NewNode(n)
}

// parsePrimary handles literals, identifiers/scoped identifiers (with
// optional template specialization), dot-shorthand, parenthesized
// expressions, array literals, format strings, and the expression forms of
// if/match/block (all of which defer to stmt.go for their shared body
// grammar).
func (p *parser) parsePrimary() ast.NodeID {
	tok := p.cur()
	switch tok.Kind {
	case token.IntLiteral:
		p.advance()
		n := ast.NewNode(ast.NIntLiteral, tok.Span)
		n.IntValue = uint64(parseIntLexeme(tok.Lexeme))
		if tok.Suffix != nil {
			n.Suffix = tok.Suffix.Lexeme
		}
		return p.prog.NewNode(n)
	case token.FloatLiteral:
		p.advance()
		n := ast.NewNode(ast.NFloatLiteral, tok.Span)
		n.FloatValue = parseFloatLexeme(tok.Lexeme)
		if tok.Suffix != nil {
			n.Suffix = tok.Suffix.Lexeme
		}
		return p.prog.NewNode(n)
	case token.CharLiteral:
		p.advance()
		n := ast.NewNode(ast.NCharLiteral, tok.Span)
		n.CharValue = parseCharLexeme(tok.Lexeme)
		return p.prog.NewNode(n)
	case token.StringLiteral:
		p.advance()
		n := ast.NewNode(ast.NStringLiteral, tok.Span)
		n.StringValue = unescapeString(unquote(tok.Lexeme))
		return p.prog.NewNode(n)
	case token.FormatStringLiteral:
		p.advance()
		return p.parseFormatString(tok)
	case token.KwTrue, token.KwFalse:
		p.advance()
		n := ast.NewNode(ast.NBoolLiteral, tok.Span)
		n.BoolValue = tok.Kind == token.KwTrue
		return p.prog.NewNode(n)
	case token.KwNull:
		p.advance()
		return p.prog.NewNode(ast.NewNode(ast.NNullLiteral, tok.Span))
	case token.Dot:
		return p.parseDotShorthand()
	case token.KwThis:
		p.advance()
		n := ast.NewNode(ast.NIdentifier, tok.Span)
		n.Name = "this"
		return p.prog.NewNode(n)
	case token.OpenParen:
		p.advance()
		e := p.parseExpr(LAssign)
		p.expect(token.CloseParen)
		return e
	case token.OpenBracket:
		return p.parseArrayLiteral()
	case token.KwIf:
		return p.parseIfExprOrStmt(true)
	case token.KwMatch:
		return p.parseMatchExprOrStmt(true)
	case token.OpenBrace:
		return p.parseBlockExpr()
	case token.Identifier, token.KwStd:
		ident := p.parseScopedIdentNode()
		if p.specializationFollows() {
			return p.parseSpecialization(ident)
		}
		return ident
	}

	p.errorf(tok.Span, "unexpected token %s in expression", tok)
	p.advance()
	return p.prog.NewNode(ast.NewNode(ast.NInvalid, tok.Span))
}

// parseDotShorthand expands a leading ".name" into "this.name" inside an
// instance method body; outside one it is a hard parse-time error
// (spec.md §4.2's "Dot shorthand" rule).
func (p *parser) parseDotShorthand() ast.NodeID {
	start := p.expect(token.Dot).Span
	name := p.expect(token.Identifier).Lexeme
	if !p.insideMethod {
		p.errorf(start, "'.%s' shorthand is only valid inside an instance method", name)
	}
	this := ast.NewNode(ast.NIdentifier, start)
	this.Name = "this"
	thisID := p.prog.NewNode(this)
	n := ast.NewNode(ast.NMember, diag.Join(start, p.toks[p.pos-1].Span))
	n.Base, n.Name = thisID, name
	return p.prog.NewNode(n)
}

func (p *parser) parseArrayLiteral() ast.NodeID {
	start := p.expect(token.OpenBracket).Span
	var elems []ast.NodeID
	for !p.at(token.CloseBracket) {
		elems = append(elems, p.parseExpr(LAssign))
		if !p.accept(token.Comma) {
			break
		}
	}
	end := p.expect(token.CloseBracket).Span
	n := ast.NewNode(ast.NArrayLiteral, diag.Join(start, end))
	n.ArrayElems = elems
	return p.prog.NewNode(n)
}

// parseScopedIdentNode parses "A::B::C" into a left-associated chain of
// NNamespaceLookup nodes over a leading NIdentifier (spec.md §4.2). A bare
// name with no "::" is just the NIdentifier.
func (p *parser) parseScopedIdentNode() ast.NodeID {
	tok := p.expect(token.Identifier)
	if tok.Lexeme == "" {
		tok = p.toks[p.pos-1]
	}
	n := ast.NewNode(ast.NIdentifier, tok.Span)
	n.Name = tok.Lexeme
	left := p.prog.NewNode(n)

	for p.at(token.ColonColon) {
		p.advance()
		part := p.expect(token.Identifier)
		nn := ast.NewNode(ast.NNamespaceLookup, diag.Join(p.prog.Node(left).Span, part.Span))
		nn.Base, nn.Name = left, part.Lexeme
		left = p.prog.NewNode(nn)
	}
	return left
}

// specializationFollows reports whether the upcoming "<...>" is a template
// specialization rather than a less-than comparison: the "<" must begin
// exactly where the previous token ended (no whitespace), and the token
// after the matching ">" must not be ".".
func (p *parser) specializationFollows() bool {
	if !p.at(token.Less) {
		return false
	}
	prevEnd := p.toks[p.pos-1].Span
	if !diag.Adjacent(prevEnd, p.cur().Span) {
		return false
	}
	// Scan ahead for the matching '>' at depth 0, tracking nested '<'/'>'
	// pairs so "Pair<Map<K,V>, T>" is handled; bail out (not a
	// specialization) if we hit something that could never be a type list.
	depth := 0
	for i := p.pos; i < len(p.toks); i++ {
		switch p.toks[i].Kind {
		case token.Less:
			depth++
		case token.Greater:
			depth--
			if depth == 0 {
				if i+1 < len(p.toks) && p.toks[i+1].Kind == token.Dot {
					return false
				}
				return true
			}
		case token.Semicolon, token.OpenBrace, token.EOF:
			return false
		}
	}
	return false
}

// parseSpecialization parses "<T, T, ...>" following ident and wraps it in
// an NSpecialization node.
func (p *parser) parseSpecialization(ident ast.NodeID) ast.NodeID {
	p.expect(token.Less)
	var args []ast.TypeID
	for !p.at(token.Greater) {
		args = append(args, p.parseTypeExpr())
		if !p.accept(token.Comma) {
			break
		}
	}
	end := p.expect(token.Greater).Span
	n := ast.NewNode(ast.NSpecialization, diag.Join(p.prog.Node(ident).Span, end))
	n.Base, n.SpecializationArgs = ident, args
	return p.prog.NewNode(n)
}

func parseFloatLexeme(lexeme string) float64 {
	clean := strings.ReplaceAll(lexeme, "_", "")
	var whole, frac string
	if i := strings.IndexByte(clean, '.'); i >= 0 {
		whole, frac = clean[:i], clean[i+1:]
	} else {
		whole = clean
	}
	var n float64
	for _, c := range whole {
		if c >= '0' && c <= '9' {
			n = n*10 + float64(c-'0')
		}
	}
	scale := 1.0
	for _, c := range frac {
		if c >= '0' && c <= '9' {
			scale /= 10
			n += float64(c-'0') * scale
		}
	}
	return n
}

func parseCharLexeme(lexeme string) byte {
	inner := lexeme
	if len(inner) >= 2 {
		inner = inner[1 : len(inner)-1]
	}
	if len(inner) == 0 {
		return 0
	}
	if inner[0] == '\\' && len(inner) > 1 {
		return unescapeByte(inner[1])
	}
	return inner[0]
}

func unescapeByte(c byte) byte {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	case '\\':
		return '\\'
	case '\'':
		return '\''
	case '"':
		return '"'
	default:
		return c
	}
}

func unescapeString(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			b.WriteByte(unescapeByte(s[i+1]))
			i++
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
