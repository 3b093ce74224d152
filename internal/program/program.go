// Package program implements the Program/Namespace container that owns
// every arena in the compiler: types, symbols, functions, structures,
// enums, scopes, namespaces, and AST nodes are all allocated here and
// referenced elsewhere only by their ast.*ID handles (spec.md §3's
// "Lifecycles" paragraph). This single-owner design is what lets passes
// hand IDs around instead of pointers, the same division of
// responsibility the teacher gives its per-file ast.Index32 arenas in
// internal/js_parser, just promoted to span the whole compiled program
// instead of one file.
package program

import (
	"fmt"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
)

// Program is the top-level container threaded through every pass. It is
// never copied; every pass takes a *Program.
type Program struct {
	Global *Namespace

	types      []*ast.Type
	symbols    []*ast.Symbol
	funcs      []*ast.Function
	structs    []*ast.Structure
	enums      []*ast.Enum
	scopes     []*ast.Scope
	namespaces []*Namespace
	nodes      []*ast.Node

	// OrderedStructs is populated by the ReorderStructs pass: a valid C
	// declaration order where every concrete-struct-typed field appears
	// after the struct it depends on (P9).
	OrderedStructs []ast.StructID

	Errors []diag.Error

	// Sources holds every loaded file's content keyed by filename, kept for
	// the whole run. Template instantiation does not read it; it clones
	// already-parsed nodes.
	Sources map[string]*diag.Source

	CIncludes []string
	CFlags    []string

	DebugInfo bool

	// ErrorDetail is the "-e0/1/2" diagnostic detail level.
	ErrorDetail int

	outNames map[string]bool

	// WellKnown maps the built-in base type names and the "str"/"untyped_ptr"
	// aliases to their allocated Type, populated once by RegisterTypes
	// (spec.md §4.3) and consulted by every later pass instead of
	// re-resolving these names through the namespace tree each time.
	WellKnown map[string]ast.TypeID

	// ErrorType is the process-wide error sentinel type (spec.md §4.3,
	// §4.4's "error recovery" note): produced whenever resolution fails, so
	// a single bad type never cascades into an unbounded diagnostic storm.
	ErrorTypeID ast.TypeID
}

// New creates an empty Program with its global namespace (and its root
// scope) allocated.
func New() *Program {
	p := &Program{Sources: make(map[string]*diag.Source), ErrorDetail: 1}
	p.Global = p.NewNamespace(ast.InvalidID, "", true, true)
	return p
}

func (p *Program) AddError(e diag.Error) { p.Errors = append(p.Errors, e) }
func (p *Program) HasErrors() bool       { return len(p.Errors) > 0 }

// --- Type arena ---

func (p *Program) NewType(t *ast.Type) ast.TypeID {
	p.types = append(p.types, t)
	return ast.TypeID(len(p.types))
}

func (p *Program) Type(id ast.TypeID) *ast.Type {
	if !id.IsValid() {
		return nil
	}
	return p.types[id-1]
}

// --- Symbol arena ---

func (p *Program) NewSymbol(s *ast.Symbol) ast.SymbolID {
	s.OutName = p.internOutName(s.OutName, s.IsExtern)
	p.symbols = append(p.symbols, s)
	return ast.SymbolID(len(p.symbols))
}

// internOutName enforces P5 (no two non-extern symbols reachable from the
// global namespace share an out-name) for every symbol the arena ever
// allocates, regardless of which pass or parent composed the name.
// Extern names are recorded but never renamed, since they pin a verbatim C
// identifier the program does not control.
func (p *Program) internOutName(name string, isExtern bool) string {
	if p.outNames == nil {
		p.outNames = make(map[string]bool)
	}
	if isExtern {
		p.outNames[name] = true
		return name
	}
	if !p.outNames[name] {
		p.outNames[name] = true
		return name
	}
	for i := 2; ; i++ {
		cand := fmt.Sprintf("%s_%d", name, i)
		if !p.outNames[cand] {
			p.outNames[cand] = true
			return cand
		}
	}
}

func (p *Program) Symbol(id ast.SymbolID) *ast.Symbol {
	if !id.IsValid() {
		return nil
	}
	return p.symbols[id-1]
}

func (p *Program) AllSymbols() []*ast.Symbol { return p.symbols }

// AllStructIDs returns every StructID the arena has ever allocated, in
// allocation order; ReorderStructs uses this as its DFS root set instead
// of re-walking the namespace tree, since a templated struct's
// instantiations are allocated into this same arena but never recorded in
// any Namespace.Structs list (spec.md §4.5).
func (p *Program) AllStructIDs() []ast.StructID {
	ids := make([]ast.StructID, len(p.structs))
	for i := range p.structs {
		ids[i] = ast.StructID(i + 1)
	}
	return ids
}

// --- Function arena ---

func (p *Program) NewFunc(f *ast.Function) ast.FuncID {
	p.funcs = append(p.funcs, f)
	return ast.FuncID(len(p.funcs))
}

func (p *Program) Func(id ast.FuncID) *ast.Function {
	if !id.IsValid() {
		return nil
	}
	return p.funcs[id-1]
}

// --- Structure arena ---

func (p *Program) NewStruct(s *ast.Structure) ast.StructID {
	p.structs = append(p.structs, s)
	return ast.StructID(len(p.structs))
}

func (p *Program) Struct(id ast.StructID) *ast.Structure {
	if !id.IsValid() {
		return nil
	}
	return p.structs[id-1]
}

// --- Enum arena ---

func (p *Program) NewEnum(e *ast.Enum) ast.EnumID {
	p.enums = append(p.enums, e)
	return ast.EnumID(len(p.enums))
}

func (p *Program) Enum(id ast.EnumID) *ast.Enum {
	if !id.IsValid() {
		return nil
	}
	return p.enums[id-1]
}

// --- Scope arena ---

func (p *Program) NewScope(parent ast.ScopeID) ast.ScopeID {
	p.scopes = append(p.scopes, ast.NewScope(parent))
	return ast.ScopeID(len(p.scopes))
}

func (p *Program) Scope(id ast.ScopeID) *ast.Scope {
	if !id.IsValid() {
		return nil
	}
	return p.scopes[id-1]
}

// --- Node arena ---

func (p *Program) NewNode(n *ast.Node) ast.NodeID {
	p.nodes = append(p.nodes, n)
	return ast.NodeID(len(p.nodes))
}

func (p *Program) Node(id ast.NodeID) *ast.Node {
	if !id.IsValid() {
		return nil
	}
	return p.nodes[id-1]
}

// --- Namespace arena ---

func (p *Program) NewNamespace(parent ast.NamespaceID, path string, isFile, isTopLevel bool) *Namespace {
	var parentScope ast.ScopeID
	if parentNS := p.Namespace(parent); parentNS != nil {
		parentScope = parentNS.Scope
	}
	ns := &Namespace{
		Parent:     parent,
		Path:       path,
		IsFile:     isFile,
		IsTopLevel: isTopLevel,
		Children:   make(map[string]ast.NamespaceID),
		Scope:      p.NewScope(parentScope),
	}
	p.namespaces = append(p.namespaces, ns)
	ns.ID = ast.NamespaceID(len(p.namespaces))
	return ns
}

func (p *Program) Namespace(id ast.NamespaceID) *Namespace {
	if !id.IsValid() {
		return nil
	}
	return p.namespaces[id-1]
}
