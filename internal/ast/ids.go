// Package ast defines the tagged-variant AST, Type, Variable, Symbol,
// Scope, and Namespace model shared by the parser and the checker passes.
//
// Cyclic relationships (type <-> symbol <-> declaration, function <->
// namespace, scope <-> parent) are expressed as small integer indices into
// arenas owned by the top-level Program rather than as raw pointers. This
// mirrors the teacher's Index32/Ref scheme (internal/ast/ast.go), which
// solves exactly the same problem for cross-file symbol references: a
// compact, copyable handle is cheaper than a pointer and never dangles
// when the backing slice is reallocated.
package ast

// SymbolID, TypeID, FuncID, StructID, EnumID, NamespaceID, and ScopeID are
// 1-based indices into their respective Program arenas. The zero value is
// InvalidID for every one of them, so a zero-valued struct containing IDs
// never accidentally looks like a valid reference.
type (
	SymbolID    int32
	TypeID      int32
	FuncID      int32
	StructID    int32
	EnumID      int32
	NamespaceID int32
	ScopeID     int32
)

const InvalidID = 0

func (id SymbolID) IsValid() bool    { return id != InvalidID }
func (id TypeID) IsValid() bool      { return id != InvalidID }
func (id FuncID) IsValid() bool      { return id != InvalidID }
func (id StructID) IsValid() bool    { return id != InvalidID }
func (id EnumID) IsValid() bool      { return id != InvalidID }
func (id NamespaceID) IsValid() bool { return id != InvalidID }
func (id ScopeID) IsValid() bool     { return id != InvalidID }

// NodeID indexes into Program's AST node arena. Every expression and
// statement in a checked program is reachable by one of these, which is
// what lets the checker attach etype/resolved-symbol/returns metadata
// out-of-line instead of growing the Node struct itself with pass-specific
// fields, the same separation of concerns the teacher gets from storing
// Ref-addressed Symbols outside of the js_ast.Expr tree.
type NodeID int32

func (id NodeID) IsValid() bool { return id != InvalidID }
