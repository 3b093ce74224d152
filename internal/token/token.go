// Package token defines the lexical token kinds produced by the lexer and
// consumed by the parser.
package token

import "github.com/ocen-lang/ocenc/internal/diag"

type Kind uint16

// If you add a new kind, remember to add it to kindToString too.
const (
	EOF Kind = iota
	Invalid

	// Literals
	IntLiteral
	FloatLiteral
	CharLiteral
	StringLiteral
	FormatStringLiteral

	Identifier

	// Punctuation
	Plus
	Minus
	Star
	Slash
	Percent
	Ampersand
	AmpersandAmpersand
	Pipe
	PipePipe
	Caret
	Tilde
	Bang
	Equals
	EqualsEquals
	BangEquals
	Less
	LessEquals
	Greater
	GreaterEquals
	LessLess
	GreaterGreater
	PlusEquals
	MinusEquals
	StarEquals
	SlashEquals
	PercentEquals
	AmpersandEquals
	PipeEquals
	CaretEquals
	LessLessEquals
	GreaterGreaterEquals
	OpenParen
	CloseParen
	OpenBrace
	CloseBrace
	OpenBracket
	CloseBracket
	Comma
	Dot
	DotDot
	Colon
	ColonColon
	Semicolon
	Arrow      // =>
	FatArrow   // ->  (return type annotation)
	Question
	At
	Line // "|" used between match patterns

	// Keywords
	KwNamespace
	KwImport
	KwDef
	KwStruct
	KwUnion
	KwEnum
	KwExtern
	KwLet
	KwConst
	KwIf
	KwElse
	KwWhile
	KwFor
	KwMatch
	KwReturn
	KwYield
	KwBreak
	KwContinue
	KwDefer
	KwAssert
	KwAs
	KwSizeof
	KwTrue
	KwFalse
	KwNull
	KwNot
	KwAnd
	KwOr
	KwExits
	KwThis
	KwStd
)

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"import":    KwImport,
	"def":       KwDef,
	"struct":    KwStruct,
	"union":     KwUnion,
	"enum":      KwEnum,
	"extern":    KwExtern,
	"let":       KwLet,
	"const":     KwConst,
	"if":        KwIf,
	"else":      KwElse,
	"while":     KwWhile,
	"for":       KwFor,
	"match":     KwMatch,
	"return":    KwReturn,
	"yield":     KwYield,
	"break":     KwBreak,
	"continue":  KwContinue,
	"defer":     KwDefer,
	"assert":    KwAssert,
	"as":        KwAs,
	"sizeof":    KwSizeof,
	"true":      KwTrue,
	"false":     KwFalse,
	"null":      KwNull,
	"not":       KwNot,
	"and":       KwAnd,
	"or":        KwOr,
	"exits":     KwExits,
	"this":      KwThis,
	"std":       KwStd,
}

// Lookup implements P3: a lexeme that matches a keyword is tokenized as
// that keyword; otherwise it is Identifier.
func Lookup(lexeme string) Kind {
	if kind, ok := keywords[lexeme]; ok {
		return kind
	}
	return Identifier
}

// Suffix is the sub-token attached to a numeric literal's type suffix,
// e.g. the "u32" in "12u32" or the "f" in "1.5f".
type Suffix struct {
	Span   diag.Span
	Lexeme string
}

// Token is one lexical unit. Kind EOF is always the last token in a
// stream. SeenNewlineBefore is recorded on the token that *follows* the
// newline, per spec.md §4.1.
type Token struct {
	Kind              Kind
	Span              diag.Span
	Lexeme            string
	Suffix            *Suffix
	SeenNewlineBefore bool
}

func (t Token) String() string {
	return kindToString[t.Kind]
}

var kindToString = map[Kind]string{
	EOF: "end of file", Invalid: "invalid token",
	IntLiteral: "integer literal", FloatLiteral: "float literal",
	CharLiteral: "char literal", StringLiteral: "string literal",
	FormatStringLiteral: "format string literal", Identifier: "identifier",
	Plus: "+", Minus: "-", Star: "*", Slash: "/", Percent: "%",
	Ampersand: "&", AmpersandAmpersand: "&&", Pipe: "|", PipePipe: "||",
	Caret: "^", Tilde: "~", Bang: "!", Equals: "=", EqualsEquals: "==",
	BangEquals: "!=", Less: "<", LessEquals: "<=", Greater: ">",
	GreaterEquals: ">=", LessLess: "<<", GreaterGreater: ">>",
	PlusEquals: "+=", MinusEquals: "-=", StarEquals: "*=", SlashEquals: "/=",
	PercentEquals: "%=", AmpersandEquals: "&=", PipeEquals: "|=",
	CaretEquals: "^=", LessLessEquals: "<<=", GreaterGreaterEquals: ">>=",
	OpenParen: "(", CloseParen: ")", OpenBrace: "{", CloseBrace: "}",
	OpenBracket: "[", CloseBracket: "]", Comma: ",", Dot: ".", DotDot: "..",
	Colon: ":", ColonColon: "::", Semicolon: ";", Arrow: "=>", FatArrow: "->",
	Question: "?", At: "@", Line: "|",
	KwNamespace: "namespace", KwImport: "import", KwDef: "def",
	KwStruct: "struct", KwUnion: "union", KwEnum: "enum", KwExtern: "extern",
	KwLet: "let", KwConst: "const", KwIf: "if", KwElse: "else",
	KwWhile: "while", KwFor: "for", KwMatch: "match", KwReturn: "return",
	KwYield: "yield", KwBreak: "break", KwContinue: "continue",
	KwDefer: "defer", KwAssert: "assert", KwAs: "as", KwSizeof: "sizeof",
	KwTrue: "true", KwFalse: "false", KwNull: "null", KwNot: "not",
	KwAnd: "and", KwOr: "or", KwExits: "exits", KwThis: "this", KwStd: "std",
}
