package program

import "github.com/ocen-lang/ocenc/internal/ast"

// Lookup resolves name starting at scope id, walking the parent chain
// until it finds a binding or runs out of scopes (spec.md §3's "Lookup is
// local then parent-chain recursive"). Local-only lookups stay on
// ast.Scope.LookupLocal, which never touches the arena (P4).
func (p *Program) Lookup(id ast.ScopeID, name string) (ast.SymbolID, bool) {
	for id.IsValid() {
		s := p.Scope(id)
		if s == nil {
			return ast.InvalidID, false
		}
		if sym, ok := s.LookupLocal(name); ok {
			return sym, true
		}
		id = s.Parent
	}
	return ast.InvalidID, false
}

// Declare declares name in scope id, returning false if already bound
// locally (matches ast.Scope.Declare's contract, exposed at the Program
// level so passes never need to reach past the arena boundary).
func (p *Program) Declare(id ast.ScopeID, name string, sym ast.SymbolID) bool {
	s := p.Scope(id)
	if s == nil {
		return false
	}
	return s.Declare(name, sym)
}
