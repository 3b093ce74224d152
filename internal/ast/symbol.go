package ast

import "github.com/ocen-lang/ocenc/internal/diag"

// SymbolKind discriminates what a Symbol names. Grounded on js_ast's
// ast.SymbolKind (function/class/hoisted-var/...), but collapsed to the
// set Ocen's own declarations need.
type SymbolKind uint8

const (
	SymFunction SymbolKind = iota
	SymStructure
	SymEnum
	SymTypeDef
	SymNamespace
	SymVariable
	SymConstant
)

// Symbol is the owning identity behind every named declaration: functions,
// structs, enums, type aliases, namespaces, variables, and constants all
// get one. DisplayName and OutName are computed once, at declaration time,
// by composing the owning namespace's own names (spec.md §3):
//
//	display = parent.display + "::" + name
//	out-name = parent.out-name + "_" + name   (unless IsExtern)
//
// IsExtern pins OutName to ExternName verbatim, bypassing namespace
// composition entirely, so C interop symbols never get a prefix.
type Symbol struct {
	Kind        SymbolKind
	Name        string
	DisplayName string
	OutName     string

	DefSpan   diag.Span
	Namespace NamespaceID

	// Variant payload: exactly one of these is valid, selected by Kind.
	Func   FuncID
	Struct StructID
	Enum   EnumID
	Type   TypeID // SymTypeDef, or the type of a SymVariable/SymConstant

	IsExtern   bool
	ExternName string
}

// ComposeNames fills DisplayName and OutName from the parent's own names,
// per spec.md §3. Passing empty parent names composes the root/global names.
func (s *Symbol) ComposeNames(parentDisplay, parentOutName string) {
	if s.IsExtern {
		if s.ExternName != "" {
			s.OutName = s.ExternName
		} else {
			s.OutName = s.Name
		}
	} else if parentOutName == "" {
		s.OutName = s.Name
	} else {
		s.OutName = parentOutName + "_" + s.Name
	}

	if parentDisplay == "" {
		s.DisplayName = s.Name
	} else {
		s.DisplayName = parentDisplay + "::" + s.Name
	}
}
