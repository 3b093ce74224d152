package ast

import "github.com/ocen-lang/ocenc/internal/diag"

// Variable backs struct fields, function parameters, enum members, and
// let/const declarations alike (spec.md §3's "Variable" entry): one shape
// for every named, typed slot in the program instead of four near-duplicate
// structs, the way js_ast.Arg and js_ast.SDeclare diverge in the teacher
// only because JS parameters and declarations have different defaulting
// rules; Ocen's do not.
type Variable struct {
	Symbol  SymbolID
	Type    TypeID
	Default NodeID // InvalidID when absent
}

// Structure models both "struct" and "union" declarations (IsUnion
// distinguishes layout semantics downstream in ReorderStructs/CodeGen).
// A templated structure is never itself a usable type; only the Structures
// recorded in Instances are (spec.md §3's invariant on Structure).
type Structure struct {
	Symbol SymbolID
	Fields []Variable
	Type   TypeID

	IsUnion     bool
	IsTemplated bool

	// TemplateParams holds the TypeDef symbols standing in for the
	// template's type parameters when IsTemplated; empty otherwise.
	TemplateParams []SymbolID

	// Instances maps a specialization key (the joined display names of
	// the concrete type arguments) to the StructID of its monomorphic
	// instantiation, so repeated specialization with the same arguments
	// is memoized (P8) instead of re-instantiated.
	Instances map[string]StructID

	// TemplateMethods holds "def Template::method(...)" declarations
	// re-parented onto this (still-templated) Structure rather than onto
	// a Type, since a templated structure never has a usable Type of its
	// own (spec.md §3's invariant). Replayed onto each instantiation's
	// Type when it is created.
	TemplateMethods []FuncID

	// DefSpan records the declaration's source span; instantiations copy
	// it. Template instantiation clones the already-parsed field types and
	// method bodies rather than re-parsing this span.
	DefSpan diag.Span

	// Scope holds TemplateParams bound as local TypeDef symbols, a child of
	// the enclosing namespace's scope; the checker re-enters it (with the
	// params' Type field pointed at concrete arguments) for each
	// instantiation instead of re-declaring them from scratch.
	Scope ScopeID
}

// EnumField is one member of an Enum; its Symbol carries the member's
// out-name, and its Value is the explicit or auto-incremented discriminant.
type EnumField struct {
	Symbol SymbolID
	Value  int64
}

// Enum models an "enum" declaration. Each enum synthesizes a
// "dbg(this)" method returning a string literal of the active member's
// name, recorded in Type.Methods by the RegisterTypes pass (spec.md §3).
type Enum struct {
	Symbol SymbolID
	Fields []EnumField
	Type   TypeID
}

// Function models both free functions and methods (IsMethod, IsStatic,
// ParentType distinguish the latter). CapturedScope is the scope active at
// the function's declaration point, used when re-entering to check nested
// closures or re-instantiate template methods.
type Function struct {
	Symbol SymbolID
	Params []Variable
	Return TypeID
	Body   NodeID // NBlock, or InvalidID for an extern declaration

	// Type is the resolved Function(params, return) type, built once
	// parameter/return types are resolved (spec.md §3's invariant "every
	// Function.type is a resolved Function(...) type after declaration
	// check").
	Type TypeID

	Exits   bool // marked `exits`: control never returns to the caller
	Checked bool

	IsMethod   bool
	IsStatic   bool
	ParentType TypeID // InvalidID unless IsMethod

	CapturedScope ScopeID

	DefSpan diag.Span

	// TemplateStructOwner is set instead of ParentType when this function
	// is a method declared directly on a templated Structure: it has no
	// single Type to attach to until instantiation time (spec.md §4.4.4
	// "Methods on templated structs are skipped during checking").
	TemplateStructOwner StructID

	// InstantiatedFrom records the template method this Function was
	// cloned from, for diagnostics; InvalidID for a non-generated method.
	InstantiatedFrom FuncID
}
