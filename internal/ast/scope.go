package ast

// Scope is a lexical block's symbol table. Lookup is local-then-parent,
// walking Parent until it hits InvalidID, the same recursive-chain
// discipline as js_parser's scope stack (see js_parser.go's pushScope /
// findSymbol), generalized from JS's hoisting-aware scope kinds to a
// single flat kind since Ocen has no var-hoisting to model.
type Scope struct {
	Parent ScopeID

	locals map[string]SymbolID

	// DeferStack holds the NodeIDs of the statements deferred in this
	// scope, in declaration order. The checker appends to it; no pass
	// reads it back.
	DeferStack []NodeID

	LoopDepth int
	CanYield  bool

	// CurrentFunction is the innermost enclosing function, used to
	// resolve `return`/`yield` against its declared return type.
	CurrentFunction FuncID
}

func NewScope(parent ScopeID) *Scope {
	return &Scope{Parent: parent, locals: make(map[string]SymbolID)}
}

// Declare binds name to sym in this scope only. It returns false if name
// is already bound here (P4: a scope never rebinds a name silently); the
// caller is expected to turn that into a diagnostic.
func (s *Scope) Declare(name string, sym SymbolID) bool {
	if _, exists := s.locals[name]; exists {
		return false
	}
	s.locals[name] = sym
	return true
}

// LookupLocal returns the symbol bound to name in this scope only, without
// walking to Parent.
func (s *Scope) LookupLocal(name string) (SymbolID, bool) {
	sym, ok := s.locals[name]
	return sym, ok
}

// AllLocals returns every name bound directly in this scope, for a
// wildcard import to copy wholesale into an importing scope.
func (s *Scope) AllLocals() map[string]SymbolID {
	return s.locals
}
