package check

import (
	"testing"

	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/parser"
	"github.com/ocen-lang/ocenc/internal/program"
)

// compileSnippet lexes, parses, and runs both checker passes over a single
// in-memory file, returning the resulting Program and the diagnostics it
// accumulated. Every check_test.go in this package drives its assertions
// off of this helper instead of hand-building a Program, matching the way
// internal/lexer's tests drive everything off of a single lexAll helper.
func compileSnippet(t *testing.T, src string) (*program.Program, []diag.Error) {
	t.Helper()
	prog := program.New()
	ns := prog.NewNamespace(prog.Global.ID, "", true, true)
	ns.AlwaysAddToScope = true
	prog.Global.AddChild("test", ns.ID)

	source := diag.NewSource("<test>", src)
	prog.Sources["<test>"] = source

	if recovered := parser.ParseFile(prog, ns, source); recovered {
		t.Fatalf("parser panicked on:\n%s", src)
	}
	if len(prog.Errors) != 0 {
		return prog, prog.Errors
	}

	RegisterTypes(prog)
	if len(prog.Errors) != 0 {
		return prog, prog.Errors
	}

	Check(prog)
	return prog, prog.Errors
}

func requireNoErrors(t *testing.T, src string) *program.Program {
	t.Helper()
	prog, errs := compileSnippet(t, src)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors for:\n%s\ngot: %v", src, errs)
	}
	return prog
}

func requireErrorContaining(t *testing.T, src, substr string) {
	t.Helper()
	_, errs := compileSnippet(t, src)
	for _, e := range errs {
		if containsString(e.Primary.Text, substr) {
			return
		}
	}
	t.Fatalf("expected an error containing %q for:\n%s\ngot: %v", substr, src, errs)
}

func containsString(haystack, needle string) bool {
	return len(needle) == 0 || (len(haystack) >= len(needle) && indexOf(haystack, needle) >= 0)
}

func indexOf(haystack, needle string) int {
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			return i
		}
	}
	return -1
}
