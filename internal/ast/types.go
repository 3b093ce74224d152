package ast

// TypeKind discriminates the Type tagged variant. A Type is immutable once
// constructed; template instantiation builds new Structure/Function types
// rather than mutating existing ones, which is what keeps Index-addressed
// Type references stable across the checker's passes.
type TypeKind uint8

const (
	TypeInvalid TypeKind = iota

	// Scalar bases.
	TypeChar
	TypeBool
	TypeVoid
	TypeI8
	TypeI16
	TypeI32
	TypeI64
	TypeU8
	TypeU16
	TypeU32
	TypeU64
	TypeF32
	TypeF64

	TypePointer
	TypeArray
	TypeFunction
	TypeStructure
	TypeEnum
	TypeAlias
	TypeUnresolved
	TypeError
)

func (k TypeKind) IsScalar() bool {
	return k >= TypeChar && k <= TypeF64
}

func (k TypeKind) IsInteger() bool {
	return k >= TypeI8 && k <= TypeU64
}

func (k TypeKind) IsFloat() bool {
	return k == TypeF32 || k == TypeF64
}

// Type is a tagged variant over Ocen's type system. Only the fields that
// apply to Kind are populated; the rest are left zero, the same
// one-struct-many-kinds shape the teacher uses for js_ast.E (see
// js_ast.go's Expr/E* family) rather than a Go interface, since a flat
// struct is cheaper to copy and easier to switch over exhaustively.
type Type struct {
	Kind TypeKind

	// Pointer, Array
	Elem TypeID

	// Array
	SizeExpr NodeID

	// Function
	Params []SymbolID
	Return TypeID

	// Structure
	Struct StructID

	// Enum
	EnumRef EnumID

	// Alias
	AliasName   string
	AliasTarget TypeID
	AliasSymbol SymbolID

	// Unresolved
	UnresolvedIdent NodeID

	// Every type carries a method table (selector name -> function) and an
	// optional owning symbol, regardless of kind: Pointer(Foo) inherits
	// Foo's methods for auto-deref call resolution, per spec.md §4.4.
	Methods map[string]FuncID
	Symbol  SymbolID
}

func NewScalar(kind TypeKind) *Type {
	return &Type{Kind: kind}
}

func NewPointer(elem TypeID) *Type {
	return &Type{Kind: TypePointer, Elem: elem}
}

func NewArray(elem TypeID, sizeExpr NodeID) *Type {
	return &Type{Kind: TypeArray, Elem: elem, SizeExpr: sizeExpr}
}

func NewFunctionType(params []SymbolID, ret TypeID) *Type {
	return &Type{Kind: TypeFunction, Params: params, Return: ret}
}

func NewStructureType(ref StructID) *Type {
	return &Type{Kind: TypeStructure, Struct: ref}
}

func NewEnumType(ref EnumID) *Type {
	return &Type{Kind: TypeEnum, EnumRef: ref}
}

func NewAlias(name string, target TypeID, symbol SymbolID) *Type {
	return &Type{Kind: TypeAlias, AliasName: name, AliasTarget: target, AliasSymbol: symbol}
}

func NewUnresolved(ident NodeID) *Type {
	return &Type{Kind: TypeUnresolved, UnresolvedIdent: ident}
}

var ErrorType = &Type{Kind: TypeError}

func (t *Type) MethodNamed(name string) (FuncID, bool) {
	f, ok := t.Methods[name]
	return f, ok
}

func (t *Type) AddMethod(name string, fn FuncID) {
	if t.Methods == nil {
		t.Methods = make(map[string]FuncID)
	}
	t.Methods[name] = fn
}
