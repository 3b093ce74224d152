package ast

import "github.com/ocen-lang/ocenc/internal/diag"

// NodeKind discriminates the AST node tagged variant: literals,
// binary/unary operators (including assignment compounds), call, member
// access, namespace lookup, specialization, identifier, block, if, match,
// loops, declarations, and control-flow statements. ~55 kinds total,
// mirroring the size of js_ast's E*/S* family but collapsed into one
// variant instead of split expression/statement interfaces, since Ocen's
// grammar (spec.md §4.2) does not need the JS distinction between
// expression-statements and declarations at the AST level.
type NodeKind uint8

const (
	NInvalid NodeKind = iota

	// Literals
	NIntLiteral
	NFloatLiteral
	NCharLiteral
	NBoolLiteral
	NNullLiteral
	NStringLiteral
	NFormatStringLiteral
	NArrayLiteral

	// Names and access
	NIdentifier
	NMember
	NNamespaceLookup
	NSpecialization // Foo<Bar, Baz>
	NIndex

	// Operators
	NBinary
	NUnaryPrefix
	NUnaryPostfix
	NAssign   // plain "="
	NOpAssign // "+=", "-=", ...
	NCast     // "expr as Type"
	NSizeof   // "sizeof(T)"
	NCall
	NConstructorCall

	// Compound / control-flow expressions
	NBlock
	NIf
	NMatch
	NMatchCase
	NWhile
	NFor

	// Statements / declarations
	NVarDecl
	NReturn
	NYield
	NBreak
	NContinue
	NDefer
	NAssert
	NImportPath
	NExprStatement
)

// BinaryOp enumerates the binary operators distinguished at the AST level;
// precedence climbing in the parser is grounded on this set, per spec.md
// §4.2's ascending-precedence table.
type BinaryOp uint8

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpBitAnd
	OpBitOr
	OpBitXor
	OpShl
	OpShr
	OpLogicalAnd
	OpLogicalOr
	OpEq
	OpNotEq
	OpLess
	OpLessEq
	OpGreater
	OpGreaterEq
)

type UnaryOp uint8

const (
	OpNeg UnaryOp = iota
	OpNot
	OpBitNot
	OpAddrOf
	OpDeref
	OpTry // postfix "?"
)

// Node is the tagged-variant AST payload. Every node carries Span, a
// nullable Etype (filled in by the TypeChecker pass), a nullable
// ResolvedSymbol, and a Returns flag set by control-flow analysis
// (spec.md §3's "AST node" entry); the variant-specific payload fields
// below are populated according to Kind.
type Node struct {
	Kind NodeKind
	Span diag.Span

	Etype          TypeID
	ResolvedSymbol SymbolID
	Returns        bool

	// Literals
	IntValue    uint64
	FloatValue  float64
	CharValue   byte
	BoolValue   bool
	StringValue string
	Suffix      string

	// Format strings: the parsed literal text segments interleave with
	// FormatExprs, one sub-expression per "{...}" interpolation hole.
	// FormatSpecs holds the optional printf-style ":spec" peeled off each
	// hole (empty string when absent), one entry per FormatExprs element.
	FormatParts []string
	FormatExprs []NodeID
	FormatSpecs []string

	ArrayElems []NodeID

	Name string // Identifier / Member / NamespaceLookup / VarDecl

	Lhs  NodeID
	Rhs  NodeID
	Base NodeID

	BinaryOp BinaryOp
	UnaryOp  UnaryOp

	CastType TypeID

	SpecializationArgs []TypeID

	Args []NodeID

	Stmts []NodeID // Block

	Cond NodeID
	Then NodeID
	Else NodeID

	// Match
	Subject      NodeID
	Cases        []NodeID
	DefaultCase  NodeID
	CasePatterns []NodeID
	CaseBody     NodeID

	// For
	ForInit NodeID
	ForCond NodeID
	ForStep NodeID
	Body    NodeID

	// VarDecl
	DeclType    TypeID
	DeclDefault NodeID
	DeclSymbol  SymbolID
	IsConst     bool
}

// NewNode constructs a Node of the given kind with its span set; all
// variant-specific fields are left zero for the caller to fill in.
func NewNode(kind NodeKind, span diag.Span) *Node {
	return &Node{Kind: kind, Span: span}
}
