// Package compiler orchestrates the full pipeline -- lex, parse (with
// filesystem import resolution), RegisterTypes, TypeChecker,
// ReorderStructs, CodeGen -- and is the thin, intentionally small
// collaborator spec.md §1 carves out of the specified core: CLI argument
// parsing, file I/O, and the final shell-out to a C compiler live here,
// grounded on the teacher's pkg/api orchestration and cmd/esbuild/main.go
// flag handling, only so the rest of the repository has a runnable caller.
package compiler

// Options mirrors the CLI surface described in spec.md §6.
type Options struct {
	// EntryFile is the ".oc" source file compilation starts from.
	EntryFile string

	// OutputExecutable is the path for the final native binary ("-o");
	// empty skips linking.
	OutputExecutable string

	// OutputC is the path the generated C translation unit is written to
	// ("-c"); empty uses OutputExecutable + ".c", or the entry file's path
	// with its extension replaced by ".c" when OutputExecutable is empty.
	OutputC string

	// ErrorDetail is the "-e0/-e1/-e2" diagnostic detail level (spec.md §7).
	ErrorDetail int

	// Silent suppresses the non-error progress output ("-s").
	Silent bool

	// NoInvokeCC skips shelling out to a C compiler even when
	// OutputExecutable is set ("-n"), leaving only the generated C file.
	NoInvokeCC bool

	// DebugLineDirectives makes the generated C start with a single
	// `#line 1 "generated"` directive ("-d"); no directives mapping C lines
	// back to Ocen source lines are emitted.
	DebugLineDirectives bool

	// LibraryRoot is the directory containing std/, searched for any
	// import path whose root segment is "std" or that begins with "@"
	// ("-l").
	LibraryRoot string

	// CC is the C compiler invoked when NoInvokeCC is false; defaults to
	// "cc" when empty.
	CC string
}
