// Package check implements the two semantic passes that sit between
// parsing and struct reordering: RegisterTypes (this file) and the
// TypeChecker (checker.go), per spec.md §4.3/§4.4.
package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/program"
)

// scalarBuiltins lists the base types RegisterTypes seeds the global scope
// with, in declaration order (spec.md §4.3).
var scalarBuiltins = []struct {
	name string
	kind ast.TypeKind
}{
	{"void", ast.TypeVoid}, {"bool", ast.TypeBool}, {"char", ast.TypeChar},
	{"i8", ast.TypeI8}, {"i16", ast.TypeI16}, {"i32", ast.TypeI32}, {"i64", ast.TypeI64},
	{"u8", ast.TypeU8}, {"u16", ast.TypeU16}, {"u32", ast.TypeU32}, {"u64", ast.TypeU64},
	{"f32", ast.TypeF32}, {"f64", ast.TypeF64},
}

// RegisterTypes runs once the parser has fully populated prog's namespace
// tree. It seeds the global scope with the built-in base types and the
// str/untyped_ptr aliases, allocates the process-wide error sentinel, then
// walks every namespace in definition order, back-linking each struct's
// and enum's already-parsed Type to its Symbol and synthesizing every
// enum's dbg(this): str method (spec.md §4.3).
//
// Struct/enum symbols themselves, and the duplicate-declaration diagnostic
// with a previous-definition hint, are installed earlier, directly by the
// parser (internal/parser/decl.go's declareSymbol) rather than here: the
// parser already needs a SymbolID the moment it builds the owning AST
// node, so folding that half of this pass into parse time avoids building
// the namespace tree twice. What remains genuinely namespace-tree-order
// dependent — builtin/alias registration, the error sentinel, and dbg
// synthesis — is what this pass actually does.
func RegisterTypes(prog *program.Program) {
	registerBuiltins(prog)
	registerNamespace(prog, prog.Global)
}

func registerBuiltins(prog *program.Program) {
	prog.WellKnown = make(map[string]ast.TypeID)

	for _, b := range scalarBuiltins {
		tyID := prog.NewType(ast.NewScalar(b.kind))
		registerBuiltinName(prog, b.name, tyID)
	}

	voidID := prog.WellKnown["void"]
	charID := prog.WellKnown["char"]

	ptrVoidID := prog.NewType(ast.NewPointer(voidID))
	registerBuiltinAlias(prog, "untyped_ptr", ptrVoidID)

	ptrCharID := prog.NewType(ast.NewPointer(charID))
	registerBuiltinAlias(prog, "str", ptrCharID)

	prog.ErrorTypeID = prog.NewType(ast.ErrorType)
}

// registerBuiltinName installs a scalar base type's name as a SymTypeDef in
// the global scope. A source program that (unusually) declares its own
// top-level symbol with the same name keeps that declaration: WellKnown
// still records the canonical scalar type for the checker's internal use
// (default numeric-literal types, etc.), but user code wins the identifier.
func registerBuiltinName(prog *program.Program, name string, tyID ast.TypeID) {
	sym := &ast.Symbol{Kind: ast.SymTypeDef, Name: name, Namespace: prog.Global.ID, Type: tyID}
	sym.ComposeNames("", "")
	id := prog.NewSymbol(sym)
	if ty := prog.Type(tyID); ty != nil {
		ty.Symbol = id
	}
	prog.WellKnown[name] = tyID
	declareBuiltin(prog, name, id)
}

func registerBuiltinAlias(prog *program.Program, name string, target ast.TypeID) {
	sym := &ast.Symbol{Kind: ast.SymTypeDef, Name: name, Namespace: prog.Global.ID}
	sym.ComposeNames("", "")
	id := prog.NewSymbol(sym)
	aliasID := prog.NewType(ast.NewAlias(name, target, id))
	prog.Symbol(id).Type = aliasID
	prog.WellKnown[name] = aliasID
	declareBuiltin(prog, name, id)
}

func declareBuiltin(prog *program.Program, name string, id ast.SymbolID) {
	scope := prog.Scope(prog.Global.Scope)
	if scope == nil {
		return
	}
	if _, exists := scope.LookupLocal(name); exists {
		return
	}
	scope.Declare(name, id)
}

// registerNamespace back-links every struct/enum Type already constructed
// by the parser to its owning Symbol, synthesizes each enum's dbg method,
// and recurses into child namespaces in definition order.
func registerNamespace(prog *program.Program, ns *program.Namespace) {
	for _, structID := range ns.Structs {
		backlinkStruct(prog, structID)
	}
	for _, enumID := range ns.Enums {
		backlinkEnum(prog, enumID)
		synthesizeDbg(prog, ns, enumID)
	}
	for _, childID := range ns.ChildrenInOrder() {
		if child := prog.Namespace(childID); child != nil {
			registerNamespace(prog, child)
		}
	}
}

func backlinkStruct(prog *program.Program, structID ast.StructID) {
	st := prog.Struct(structID)
	if st == nil || st.IsTemplated {
		return // templated structs get their Type (and back-link) per instantiation
	}
	if ty := prog.Type(st.Type); ty != nil {
		ty.Symbol = st.Symbol
	}
}

func backlinkEnum(prog *program.Program, enumID ast.EnumID) {
	en := prog.Enum(enumID)
	if en == nil {
		return
	}
	if ty := prog.Type(en.Type); ty != nil {
		ty.Symbol = en.Symbol
	}
}

// synthesizeDbg installs the dbg(this): str method every enum gets for
// free (spec.md §3, §4.3). Its body is intentionally left empty (Checked
// is set true so the TypeChecker's work list never picks it up): CodeGen
// is expected to special-case a method-less dbg entry and emit a switch
// over the enum's members directly from ast.Enum.Fields, the same way it
// synthesizes enum typedefs (spec.md §6.7) rather than from checked AST.
func synthesizeDbg(prog *program.Program, ns *program.Namespace, enumID ast.EnumID) {
	en := prog.Enum(enumID)
	if en == nil {
		return
	}
	ty := prog.Type(en.Type)
	if ty == nil {
		return
	}
	if _, exists := ty.MethodNamed("dbg"); exists {
		return
	}

	enumSym := prog.Symbol(en.Symbol)
	strType := prog.WellKnown["str"]

	thisSym := &ast.Symbol{Kind: ast.SymVariable, Name: "this", Namespace: ns.ID, Type: en.Type}
	thisSym.ComposeNames(enumSym.DisplayName, enumSym.OutName)
	thisID := prog.NewSymbol(thisSym)

	fnSym := &ast.Symbol{Kind: ast.SymFunction, Name: "dbg", Namespace: ns.ID}
	fnSym.ComposeNames(enumSym.DisplayName, enumSym.OutName)
	fnSymID := prog.NewSymbol(fnSym)

	fnTypeID := prog.NewType(ast.NewFunctionType([]ast.SymbolID{thisID}, strType))

	fn := &ast.Function{
		Symbol:     fnSymID,
		Params:     []ast.Variable{{Symbol: thisID, Type: en.Type}},
		Return:     strType,
		Type:       fnTypeID,
		IsMethod:   true,
		ParentType: en.Type,
		Checked:    true,
	}
	fnID := prog.NewFunc(fn)
	prog.Symbol(fnSymID).Func = fnID
	ty.AddMethod("dbg", fnID)
}
