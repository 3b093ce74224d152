package check

import (
	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/program"
)

// handleImports resolves every PendingImport recorded against ns at parse
// time and binds the result into ns.Scope, then recurses into children
// (spec.md §4.4 phase 3). Resolving the filesystem side of an import path
// into a loaded Namespace is the compiler package's job (spec.md §6); by
// the time Check runs, every file an import can reach is assumed already
// parsed into the Program's namespace tree, so this only has to walk that
// tree and wire names into scope.
func (c *checker) handleImports(ns *program.Namespace) {
	for _, imp := range ns.PendingImports {
		c.resolveImport(ns, imp)
	}
	for _, childID := range ns.ChildrenInOrder() {
		if child := c.prog.Namespace(childID); child != nil {
			c.handleImports(child)
		}
	}
}

func (c *checker) resolveImport(ns *program.Namespace, imp program.PendingImport) {
	base := c.importBase(ns, imp)
	if base == nil {
		c.errorf(imp.Span, "cannot resolve import path")
		return
	}
	target, ok := findImportableNamespace(c.prog, base, imp.Path)
	if !ok {
		c.errorf(imp.Span, "unknown module %q", joinPath(imp.Path))
		return
	}
	ns.AddImport(target.ID)

	scope := c.prog.Scope(ns.Scope)
	targetScope := c.prog.Scope(target.Scope)

	switch {
	case imp.Wildcard:
		for name, symID := range targetScope.AllLocals() {
			scope.Declare(name, symID)
		}
	case len(imp.Items) > 0:
		for _, item := range imp.Items {
			symID, ok := c.lookupImportItem(target, item.Path)
			if !ok {
				c.errorf(imp.Span, "module %q has no member %q", joinPath(imp.Path), joinPath(item.Path))
				continue
			}
			name := item.Alias
			if name == "" {
				name = item.Path[len(item.Path)-1]
			}
			scope.Declare(name, symID)
		}
	default:
		name := imp.Alias
		if name == "" {
			name = imp.Path[len(imp.Path)-1]
		}
		if sym := target.Symbol; sym.IsValid() {
			scope.Declare(name, sym)
		} else {
			// A plain namespace import with no binding symbol (a directory
			// module) is reached only through "::"; nothing to declare here.
		}
	}
}

func (c *checker) lookupImportItem(ns *program.Namespace, path []string) (ast.SymbolID, bool) {
	cur := ns
	for i, seg := range path {
		if i == len(path)-1 {
			scope := c.prog.Scope(cur.Scope)
			return scope.LookupLocal(seg)
		}
		childID, ok := cur.Child(seg)
		if !ok {
			return ast.InvalidID, false
		}
		cur = c.prog.Namespace(childID)
		if cur == nil {
			return ast.InvalidID, false
		}
	}
	return ast.InvalidID, false
}

// importBase implements spec.md §6's relative-import rule: no leading
// dots (and not ForceRoot) starts from the importing namespace itself;
// each leading dot climbs one parent; ForceRoot (the `std`
// prefix) always starts at the Program's global/root namespace regardless
// of dots. Per spec.md §4.2, the dot count is taken minus one when the
// importing namespace is top-level (a file namespace already accounts
// for one level of nesting relative to its own directory).
func (c *checker) importBase(ns *program.Namespace, imp program.PendingImport) *program.Namespace {
	if imp.ForceRoot {
		return c.prog.Global
	}
	dots := imp.LeadingDots
	if ns.IsTopLevel && dots > 0 {
		dots--
	}
	cur := ns
	for i := 0; i < dots; i++ {
		if !cur.Parent.IsValid() {
			return nil
		}
		cur = c.prog.Namespace(cur.Parent)
	}
	return cur
}

func joinPath(path []string) string {
	out := ""
	for i, s := range path {
		if i > 0 {
			out += "::"
		}
		out += s
	}
	return out
}
