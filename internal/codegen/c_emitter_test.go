package codegen_test

import (
	"strings"
	"testing"

	"github.com/ocen-lang/ocenc/internal/check"
	"github.com/ocen-lang/ocenc/internal/codegen"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/parser"
	"github.com/ocen-lang/ocenc/internal/program"
	"github.com/ocen-lang/ocenc/internal/reorder"
)

// buildProgram runs the full front-end+middle-end pipeline (short of
// codegen) over one in-memory file, matching internal/check's own
// compileSnippet helper but exported at this package's level since
// codegen needs a fully reordered Program, not merely a checked one.
func buildProgram(t *testing.T, src string) *program.Program {
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
		t.Fatalf("unexpected parse errors: %v", prog.Errors)
	}

	check.RegisterTypes(prog)
	if len(prog.Errors) != 0 {
		t.Fatalf("unexpected RegisterTypes errors: %v", prog.Errors)
	}
	check.Check(prog)
	if len(prog.Errors) != 0 {
		t.Fatalf("unexpected check errors: %v", prog.Errors)
	}
	reorder.ReorderStructs(prog)
	return prog
}

func TestEmitProducesAMainFunction(t *testing.T) {
	prog := buildProgram(t, `
def main(): i32 {
	return 0
}
`)
	out, err := codegen.NewCEmitter().Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "main(") {
		t.Fatalf("expected a main function in output:\n%s", out)
	}
	if !strings.Contains(out, "#include") {
		t.Fatalf("expected base C includes in output:\n%s", out)
	}
}

func TestEmitOrdersEmbeddedStructBeforeOwner(t *testing.T) {
	prog := buildProgram(t, `
struct Inner {
	x: i32
}

struct Outer {
	inner: Inner
}

def main(): i32 {
	return 0
}
`)
	out, err := codegen.NewCEmitter().Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	innerPos := strings.Index(out, "struct Inner {")
	outerPos := strings.Index(out, "struct Outer {")
	if innerPos < 0 || outerPos < 0 {
		t.Fatalf("expected both struct bodies in output:\n%s", out)
	}
	if innerPos >= outerPos {
		t.Fatalf("expected Inner's body before Outer's, got inner=%d outer=%d", innerPos, outerPos)
	}
}

func TestEmitSynthesizesEnumDbgFunction(t *testing.T) {
	prog := buildProgram(t, `
enum Color {
	Red
	Green
	Blue
}

def main(): i32 {
	return 0
}
`)
	out, err := codegen.NewCEmitter().Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "dbg") {
		t.Fatalf("expected a synthesized dbg function for the enum:\n%s", out)
	}
	if !strings.Contains(out, "typedef enum") {
		t.Fatalf("expected an enum typedef:\n%s", out)
	}
}

func TestEmitMarksExitsFunctionNoreturn(t *testing.T) {
	prog := buildProgram(t, `
def die(): i32 exits {
	while true {}
}

def main(): i32 {
	return 0
}
`)
	out, err := codegen.NewCEmitter().Emit(prog)
	if err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if !strings.Contains(out, "noreturn") {
		t.Fatalf("expected a noreturn attribute on the exits-marked function:\n%s", out)
	}
}
