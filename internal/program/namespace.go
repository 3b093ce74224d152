package program

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
)

// PendingImport is an import spec recorded at parse time, before the
// loader has resolved it against the filesystem (spec.md §4.2/§6). The
// loader drains these after ParseFile returns, since resolving one import
// may itself load a new file whose own imports must then be drained too.
type PendingImport struct {
	LeadingDots int
	ForceRoot   bool
	Path        []string
	Wildcard    bool
	Alias       string
	Items       []PendingImportItem
	Span        diag.Span
}

type PendingImportItem struct {
	Path  []string
	Alias string
}

// PendingMethod records a "def Parent::name(...)" declaration whose parent
// identifier the parser left unresolved; the checker's pre-check-namespaces
// phase re-parents it onto the owning type (spec.md §4.2, §4.4 phase 2).
type PendingMethod struct {
	ParentName string
	Func       ast.FuncID
}

// Namespace is a named container of declarations and nested namespaces
// (spec.md §3's "Namespace" entry). The global namespace (Program.Global)
// is the root and has Parent == ast.InvalidID. A namespace backed by a
// single source file (IsFile) stops import traversal at that level,
// mirroring how a directory walk in most module systems treats a file as
// a leaf.
type Namespace struct {
	ID     ast.NamespaceID
	Parent ast.NamespaceID

	Functions []ast.FuncID
	Structs   []ast.StructID
	Enums     []ast.EnumID
	Constants []ast.SymbolID
	Variables []ast.SymbolID
	Imports   []ast.NamespaceID

	// VarInits holds the parsed initializer expression for a top-level
	// let/const declared directly in this namespace, keyed by its symbol.
	// A symbol absent from this map was declared with no initializer (or
	// as extern).
	VarInits map[ast.SymbolID]ast.NodeID

	Children   map[string]ast.NamespaceID
	ChildOrder []string // definition order, since map iteration order is not stable

	Scope  ast.ScopeID
	Symbol ast.SymbolID // defining symbol; InvalidID for the global namespace

	Path string

	IsFile bool

	// PendingImports/PendingMethods hold parse-time-recorded, not-yet-bound
	// declarations the checker resolves in its import/method pre-pass.
	PendingImports []PendingImport
	PendingMethods []PendingMethod

	// AlwaysAddToScope marks namespaces (the prelude, std) whose top-level
	// symbols are visible without an explicit `import`, per spec.md §6.
	AlwaysAddToScope bool

	IsTopLevel bool
}

func (ns *Namespace) AddFunction(id ast.FuncID) { ns.Functions = append(ns.Functions, id) }
func (ns *Namespace) AddStruct(id ast.StructID) { ns.Structs = append(ns.Structs, id) }
func (ns *Namespace) AddEnum(id ast.EnumID)     { ns.Enums = append(ns.Enums, id) }
func (ns *Namespace) AddConstant(id ast.SymbolID) {
	ns.Constants = append(ns.Constants, id)
}
func (ns *Namespace) AddVariable(id ast.SymbolID) {
	ns.Variables = append(ns.Variables, id)
}

// SetVarInit records the initializer expression for a namespace-level
// let/const symbol (spec.md §4.4 phase 1/5).
func (ns *Namespace) SetVarInit(sym ast.SymbolID, init ast.NodeID) {
	if !init.IsValid() {
		return
	}
	if ns.VarInits == nil {
		ns.VarInits = make(map[ast.SymbolID]ast.NodeID)
	}
	ns.VarInits[sym] = init
}
func (ns *Namespace) AddImport(id ast.NamespaceID) {
	ns.Imports = append(ns.Imports, id)
}

func (ns *Namespace) Child(name string) (ast.NamespaceID, bool) {
	id, ok := ns.Children[name]
	return id, ok
}

func (ns *Namespace) AddChild(name string, id ast.NamespaceID) {
	if _, exists := ns.Children[name]; !exists {
		ns.ChildOrder = append(ns.ChildOrder, name)
	}
	ns.Children[name] = id
}

// ChildrenInOrder returns this namespace's children in definition order.
func (ns *Namespace) ChildrenInOrder() []ast.NamespaceID {
	ids := make([]ast.NamespaceID, len(ns.ChildOrder))
	for i, name := range ns.ChildOrder {
		ids[i] = ns.Children[name]
	}
	return ids
}
