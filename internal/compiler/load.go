package compiler

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ocen-lang/ocenc/internal/ast"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/parser"
	"github.com/ocen-lang/ocenc/internal/program"
)

// preludeRelPath is always loaded into the global namespace before the
// entry file, per spec.md §6: every program gets the prelude's
// declarations without writing an explicit import for them.
const preludeRelPath = "std/prelude.oc"

// loader walks the filesystem import graph described by each Namespace's
// PendingImports, resolving "directory vs .oc file" the way a module
// system's directory walk treats a file as a leaf (spec.md §6): a path
// segment that names a subdirectory becomes a nested Namespace with more
// of the same path still to resolve inside it; a path segment that names
// "<segment>.oc" loads and parses that file as a leaf Namespace.
type loader struct {
	prog *program.Program
	log  *diag.Log
	opts Options

	// dirOf records, for every Namespace this loader created, the
	// filesystem directory a relative import from inside it should resolve
	// against.
	dirOf map[ast.NamespaceID]string

	// loadedFiles dedupes by absolute path so two different import paths
	// that land on the same file share one Namespace instead of parsing it
	// twice.
	loadedFiles map[string]*program.Namespace
}

func newLoader(prog *program.Program, log *diag.Log, opts Options) *loader {
	return &loader{
		prog:        prog,
		log:         log,
		opts:        opts,
		dirOf:       make(map[ast.NamespaceID]string),
		loadedFiles: make(map[string]*program.Namespace),
	}
}

// loadEntry loads the prelude (when a LibraryRoot is configured) and then
// the entry file itself, draining every transitively discovered import
// before returning.
func (l *loader) loadEntry() error {
	if l.opts.LibraryRoot != "" {
		preludePath := filepath.Join(l.opts.LibraryRoot, preludeRelPath)
		if _, err := os.Stat(preludePath); err == nil {
			ns, err := l.loadFile(preludePath, l.prog.Global)
			if err != nil {
				return err
			}
			ns.AlwaysAddToScope = true
			l.prog.Global.AddChild(baseNameNoExt(preludePath), ns.ID)
		}
	}

	entryDir := filepath.Dir(l.opts.EntryFile)
	entryNS := l.prog.NewNamespace(l.prog.Global.ID, "", true, true)
	entryNS.AlwaysAddToScope = true
	l.prog.Global.AddChild(baseNameNoExt(l.opts.EntryFile), entryNS.ID)
	l.dirOf[entryNS.ID] = entryDir
	if err := l.parseInto(entryNS, l.opts.EntryFile); err != nil {
		return err
	}
	l.loadedFiles[absPath(l.opts.EntryFile)] = entryNS

	return l.drainImports()
}

// drainImports keeps resolving PendingImports across every namespace the
// Program currently knows about until a full pass adds no new namespace,
// since resolving one import may itself load a file whose own imports
// need the same treatment (spec.md §4.2's two-step load/resolve design).
func (l *loader) drainImports() error {
	for {
		before := len(l.loadedFiles)
		if err := l.resolveNamespace(l.prog.Global); err != nil {
			return err
		}
		if len(l.loadedFiles) == before {
			return nil
		}
	}
}

func (l *loader) resolveNamespace(ns *program.Namespace) error {
	for _, imp := range ns.PendingImports {
		if err := l.resolveImport(ns, imp); err != nil {
			return err
		}
	}
	for _, childID := range ns.ChildrenInOrder() {
		if child := l.prog.Namespace(childID); child != nil {
			if err := l.resolveNamespace(child); err != nil {
				return err
			}
		}
	}
	return nil
}

// resolveImport mirrors check.importBase's dot-walking rule (spec.md
// §4.2): the leading-dot count is taken minus one when ns is a top-level
// (file) namespace, since the file itself already accounts for one level
// of nesting below its own directory.
func (l *loader) resolveImport(ns *program.Namespace, imp program.PendingImport) error {
	dots := imp.LeadingDots
	if ns.IsTopLevel && dots > 0 {
		dots--
	}

	baseDir, ok := l.dirOf[ns.ID]
	if !ok {
		baseDir = filepath.Dir(l.opts.EntryFile)
	}
	if imp.ForceRoot {
		baseDir = l.opts.LibraryRoot
	} else {
		for i := 0; i < dots; i++ {
			baseDir = filepath.Dir(baseDir)
		}
	}

	baseNS := ns
	for i := 0; i < dots; i++ {
		if baseNS.Parent.IsValid() {
			baseNS = l.prog.Namespace(baseNS.Parent)
		}
	}
	if imp.ForceRoot {
		baseNS = l.prog.Global
	}

	_, err := l.resolvePath(baseNS, baseDir, imp.Path)
	return err
}

// resolvePath walks path one segment at a time under dir/ns, creating a
// nested Namespace (and recursively loading a ".oc" leaf file) for any
// segment not already present, and returns the Namespace the full path
// lands on.
func (l *loader) resolvePath(ns *program.Namespace, dir string, path []string) (*program.Namespace, error) {
	cur, curDir := ns, dir
	for _, seg := range path {
		if childID, ok := cur.Child(seg); ok {
			cur = l.prog.Namespace(childID)
			curDir = l.dirOf[cur.ID]
			continue
		}

		filePath := filepath.Join(curDir, seg+".oc")
		dirPath := filepath.Join(curDir, seg)
		if info, err := os.Stat(dirPath); err == nil && info.IsDir() {
			child := l.prog.NewNamespace(cur.ID, childPath(cur.Path, seg), false, false)
			cur.AddChild(seg, child.ID)
			l.dirOf[child.ID] = dirPath
			cur, curDir = child, dirPath
			continue
		}
		if _, err := os.Stat(filePath); err == nil {
			if existing, ok := l.loadedFiles[absPath(filePath)]; ok {
				cur.AddChild(seg, existing.ID)
				cur, curDir = existing, l.dirOf[existing.ID]
				continue
			}
			child, err := l.loadFile(filePath, cur)
			if err != nil {
				return nil, err
			}
			cur.AddChild(seg, child.ID)
			cur, curDir = child, l.dirOf[child.ID]
			continue
		}
		return nil, fmt.Errorf("cannot resolve import segment %q under %s", seg, curDir)
	}
	return cur, nil
}

func childPath(parent, seg string) string {
	if parent == "" {
		return seg
	}
	return parent + "::" + seg
}

// loadFile reads, lexes, and parses one ".oc" file into a fresh Namespace
// parented at parent.
func (l *loader) loadFile(path string, parent *program.Namespace) (*program.Namespace, error) {
	ns := l.prog.NewNamespace(parent.ID, childPath(parent.Path, baseNameNoExt(path)), true, false)
	l.dirOf[ns.ID] = filepath.Dir(path)
	l.loadedFiles[absPath(path)] = ns
	if err := l.parseInto(ns, path); err != nil {
		return nil, err
	}
	return ns, nil
}

func (l *loader) parseInto(ns *program.Namespace, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	source := diag.NewSource(path, string(content))
	l.prog.Sources[path] = source
	l.log.AddSource(source)

	if recovered := parser.ParseFile(l.prog, ns, source); recovered {
		Fatal(l.prog, l.log, l.opts)
	}
	return nil
}

func absPath(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}

func baseNameNoExt(p string) string {
	base := filepath.Base(p)
	ext := filepath.Ext(base)
	return base[:len(base)-len(ext)]
}
