// Package lexer converts a loaded source file into a token stream. Unlike
// a context-sensitive lexer that a parser drives token-by-token, this
// lexer runs to completion in one pass: Ocen has no tokens (like JSX or
// regex literals) whose shape depends on parser state, so there is no
// need to re-enter the lexer mid-parse.
package lexer

import (
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/token"
)

type lexer struct {
	source *diag.Source
	errors []diag.Error

	// i is the byte offset of the next unread byte. start marks the
	// beginning of the token currently being scanned.
	i     int
	start int

	seenNewline bool
}

// Lex tokenizes source in full, returning an EOF-terminated token slice and
// any lexical errors accumulated along the way. It never throws: an
// unrecognized character or an unterminated literal is recorded as an
// error and scanning continues (P1: lex is a pure function of the bytes).
func Lex(source *diag.Source) ([]token.Token, []diag.Error) {
	l := &lexer{source: source}

	var tokens []token.Token
	for {
		t := l.next()
		tokens = append(tokens, t)
		if t.Kind == token.EOF {
			break
		}
	}
	return tokens, l.errors
}

// cur returns the byte at the cursor, or 0 past the end of the file.
func (l *lexer) cur() byte {
	if l.i >= len(l.source.Content) {
		return 0
	}
	return l.source.Content[l.i]
}

func (l *lexer) peekAt(offset int) byte {
	j := l.i + offset
	if j >= len(l.source.Content) {
		return 0
	}
	return l.source.Content[j]
}

func (l *lexer) advance() {
	if l.i < len(l.source.Content) {
		l.i++
	}
}

func (l *lexer) pos(index int) diag.Pos {
	return l.source.PositionFor(int32(index))
}

func (l *lexer) span(start, end int) diag.Span {
	return diag.Span{Start: l.pos(start), End: l.pos(end)}
}

func (l *lexer) addError(start, end int, text string) {
	l.errors = append(l.errors, diag.NewError(l.span(start, end), text))
}

func isDigit(b byte) bool       { return b >= '0' && b <= '9' }
func isHexDigit(b byte) bool    { return isDigit(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F') }
func isBinaryDigit(b byte) bool { return b == '0' || b == '1' }
func isIdentStart(b byte) bool  { return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
func isIdentCont(b byte) bool   { return isIdentStart(b) || isDigit(b) }

// next scans and returns the next token, skipping whitespace and comments
// first and recording whether a newline preceded it.
func (l *lexer) next() token.Token {
	sawNewline := l.seenNewline
	l.seenNewline = false

	for {
		switch l.cur() {
		case ' ', '\t', '\r':
			l.advance()
			continue
		case '\n':
			sawNewline = true
			l.advance()
			continue
		case '/':
			if l.peekAt(1) == '/' {
				for l.cur() != '\n' && l.cur() != 0 {
					l.advance()
				}
				continue
			}
		}
		break
	}

	l.start = l.i
	if l.cur() == 0 {
		return l.make(token.EOF, sawNewline)
	}

	switch {
	case l.cur() == 'f' && (l.peekAt(1) == '"' || l.peekAt(1) == '`'):
		l.advance() // consume the 'f' prefix
		return l.scanString(sawNewline, l.cur(), true)
	case isIdentStart(l.cur()):
		return l.scanIdentifier(sawNewline)
	case isDigit(l.cur()):
		return l.scanNumber(sawNewline)
	case l.cur() == '"' || l.cur() == '`':
		return l.scanString(sawNewline, l.cur(), false)
	case l.cur() == '\'':
		return l.scanChar(sawNewline)
	}

	return l.scanOperator(sawNewline)
}

func (l *lexer) lexeme() string {
	return l.source.Content[l.start:l.i]
}

func (l *lexer) make(kind token.Kind, sawNewline bool) token.Token {
	return token.Token{
		Kind:              kind,
		Span:              l.span(l.start, l.i),
		Lexeme:            l.lexeme(),
		SeenNewlineBefore: sawNewline,
	}
}

func (l *lexer) scanIdentifier(sawNewline bool) token.Token {
	for isIdentCont(l.cur()) {
		l.advance()
	}
	lexeme := l.lexeme()
	return token.Token{
		Kind:              token.Lookup(lexeme),
		Span:              l.span(l.start, l.i),
		Lexeme:            lexeme,
		SeenNewlineBefore: sawNewline,
	}
}

// scanSuffix consumes a trailing identifier-like numeric suffix such as
// "u32", "i8", or "f" immediately after a numeric literal, per spec.md
// §4.1. It only triggers if the next byte is 'u', 'i', or 'f'.
func (l *lexer) scanSuffix() *token.Suffix {
	if l.cur() != 'u' && l.cur() != 'i' && l.cur() != 'f' {
		return nil
	}
	start := l.i
	for isIdentCont(l.cur()) {
		l.advance()
	}
	return &token.Suffix{
		Span:   l.span(start, l.i),
		Lexeme: l.source.Content[start:l.i],
	}
}

func (l *lexer) scanNumber(sawNewline bool) token.Token {
	kind := token.IntLiteral

	if l.cur() == '0' && (l.peekAt(1) == 'x' || l.peekAt(1) == 'X') {
		l.advance()
		l.advance()
		for isHexDigit(l.cur()) || l.cur() == '_' {
			l.advance()
		}
	} else if l.cur() == '0' && (l.peekAt(1) == 'b' || l.peekAt(1) == 'B') {
		l.advance()
		l.advance()
		for isBinaryDigit(l.cur()) || l.cur() == '_' {
			l.advance()
		}
	} else {
		for isDigit(l.cur()) || l.cur() == '_' {
			l.advance()
		}
		if l.cur() == '.' && isDigit(l.peekAt(1)) {
			kind = token.FloatLiteral
			l.advance()
			for isDigit(l.cur()) || l.cur() == '_' {
				l.advance()
			}
		}
	}

	lexeme := l.lexeme()
	suffix := l.scanSuffix()
	return token.Token{
		Kind:              kind,
		Span:              l.span(l.start, l.i),
		Lexeme:            lexeme,
		Suffix:            suffix,
		SeenNewlineBefore: sawNewline,
	}
}

func (l *lexer) scanChar(sawNewline bool) token.Token {
	l.advance() // consume opening '
	if l.cur() == '\\' {
		l.advance()
		if l.cur() != 0 {
			l.advance()
		}
	} else if l.cur() != 0 && l.cur() != '\'' {
		l.advance()
	}
	if l.cur() != '\'' {
		l.addError(l.start, l.i, "unterminated char literal")
		return l.make(token.CharLiteral, sawNewline)
	}
	l.advance() // consume closing '
	return l.make(token.CharLiteral, sawNewline)
}

func (l *lexer) scanString(sawNewline bool, quote byte, isFormat bool) token.Token {
	l.advance() // consume opening quote
	for l.cur() != quote && l.cur() != 0 {
		if l.cur() == '\\' {
			l.advance()
			if l.cur() != 0 {
				l.advance()
			}
			continue
		}
		l.advance()
	}
	if l.cur() != quote {
		l.addError(l.start, l.i, "unterminated string literal")
		return l.make(token.StringLiteral, sawNewline)
	}
	l.advance() // consume closing quote

	kind := token.StringLiteral
	if isFormat || quote == '`' {
		kind = token.FormatStringLiteral
	}
	return l.make(kind, sawNewline)
}

func (l *lexer) scanOperator(sawNewline bool) token.Token {
	switch l.cur() {
	case '+':
		return l.twoWithEquals(sawNewline, token.Plus, token.PlusEquals)
	case '-':
		l.advance()
		if l.cur() == '>' {
			l.advance()
			return l.make(token.FatArrow, sawNewline)
		}
		if l.cur() == '=' {
			l.advance()
			return l.make(token.MinusEquals, sawNewline)
		}
		return l.make(token.Minus, sawNewline)
	case '*':
		return l.twoWithEquals(sawNewline, token.Star, token.StarEquals)
	case '/':
		return l.twoWithEquals(sawNewline, token.Slash, token.SlashEquals)
	case '%':
		return l.twoWithEquals(sawNewline, token.Percent, token.PercentEquals)
	case '^':
		return l.twoWithEquals(sawNewline, token.Caret, token.CaretEquals)
	case '~':
		l.advance()
		return l.make(token.Tilde, sawNewline)
	case '&':
		l.advance()
		if l.cur() == '&' {
			l.advance()
			return l.make(token.AmpersandAmpersand, sawNewline)
		}
		if l.cur() == '=' {
			l.advance()
			return l.make(token.AmpersandEquals, sawNewline)
		}
		return l.make(token.Ampersand, sawNewline)
	case '|':
		l.advance()
		if l.cur() == '|' {
			l.advance()
			return l.make(token.PipePipe, sawNewline)
		}
		if l.cur() == '=' {
			l.advance()
			return l.make(token.PipeEquals, sawNewline)
		}
		return l.make(token.Pipe, sawNewline)
	case '!':
		return l.twoWithEquals(sawNewline, token.Bang, token.BangEquals)
	case '=':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return l.make(token.EqualsEquals, sawNewline)
		}
		if l.cur() == '>' {
			l.advance()
			return l.make(token.Arrow, sawNewline)
		}
		return l.make(token.Equals, sawNewline)
	case '<':
		// Bitshift detection requires two adjacent '<' tokens with no
		// intervening space; we emit single "<" tokens here and let the
		// parser fuse "<" "<" into a shift when it sees fit (spec.md §9).
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return l.make(token.LessEquals, sawNewline)
		}
		return l.make(token.Less, sawNewline)
	case '>':
		l.advance()
		if l.cur() == '=' {
			l.advance()
			return l.make(token.GreaterEquals, sawNewline)
		}
		return l.make(token.Greater, sawNewline)
	case '(':
		l.advance()
		return l.make(token.OpenParen, sawNewline)
	case ')':
		l.advance()
		return l.make(token.CloseParen, sawNewline)
	case '{':
		l.advance()
		return l.make(token.OpenBrace, sawNewline)
	case '}':
		l.advance()
		return l.make(token.CloseBrace, sawNewline)
	case '[':
		l.advance()
		return l.make(token.OpenBracket, sawNewline)
	case ']':
		l.advance()
		return l.make(token.CloseBracket, sawNewline)
	case ',':
		l.advance()
		return l.make(token.Comma, sawNewline)
	case '.':
		l.advance()
		if l.cur() == '.' {
			l.advance()
			return l.make(token.DotDot, sawNewline)
		}
		return l.make(token.Dot, sawNewline)
	case ':':
		l.advance()
		if l.cur() == ':' {
			l.advance()
			return l.make(token.ColonColon, sawNewline)
		}
		return l.make(token.Colon, sawNewline)
	case ';':
		l.advance()
		return l.make(token.Semicolon, sawNewline)
	case '?':
		l.advance()
		return l.make(token.Question, sawNewline)
	case '@':
		l.advance()
		return l.make(token.At, sawNewline)
	}

	bad := l.cur()
	l.advance()
	l.addError(l.start, l.i, "unrecognized character '"+string(rune(bad))+"'")
	return l.make(token.Invalid, sawNewline)
}

func (l *lexer) twoWithEquals(sawNewline bool, plain, withEquals token.Kind) token.Token {
	l.advance()
	if l.cur() == '=' {
		l.advance()
		return l.make(withEquals, sawNewline)
	}
	return l.make(plain, sawNewline)
}
