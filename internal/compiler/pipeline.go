package compiler

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ocen-lang/ocenc/internal/check"
	"github.com/ocen-lang/ocenc/internal/codegen"
	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/program"
	"github.com/ocen-lang/ocenc/internal/reorder"
)

// Result summarizes one Compile invocation's output paths, for the CLI to
// report.
type Result struct {
	CPath   string
	ExePath string
}

// Compile runs the full pipeline described in spec.md §1/§6 in order:
// load (lex+parse+resolve imports), RegisterTypes, TypeChecker,
// ReorderStructs, CodeGen, and -- unless NoInvokeCC -- a shell-out to a C
// compiler. Each phase's diagnostics are checked before moving to the
// next, per spec.md §7: the pipeline halts and dumps every accumulated
// diagnostic as soon as any phase has produced one.
func Compile(opts Options) (*Result, error) {
	prog := program.New()
	log := diag.NewLog()

	l := newLoader(prog, log, opts)
	if err := l.loadEntry(); err != nil {
		return nil, err
	}
	if haltIfErrors(prog, log, opts) {
		Fatal(prog, log, opts)
	}

	check.RegisterTypes(prog)
	if haltIfErrors(prog, log, opts) {
		Fatal(prog, log, opts)
	}

	check.Check(prog)
	if haltIfErrors(prog, log, opts) {
		Fatal(prog, log, opts)
	}

	reorder.ReorderStructs(prog)

	prog.DebugInfo = opts.DebugLineDirectives
	prog.ErrorDetail = opts.ErrorDetail

	emitter := codegen.NewCEmitter()
	source, err := emitter.Emit(prog)
	if err != nil {
		return nil, fmt.Errorf("codegen: %w", err)
	}

	cPath := opts.OutputC
	if cPath == "" {
		if opts.OutputExecutable != "" {
			cPath = opts.OutputExecutable + ".c"
		} else {
			cPath = strings.TrimSuffix(opts.EntryFile, filepath.Ext(opts.EntryFile)) + ".c"
		}
	}
	if err := os.WriteFile(cPath, []byte(source), 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", cPath, err)
	}

	result := &Result{CPath: cPath}
	if opts.OutputExecutable != "" && !opts.NoInvokeCC {
		if err := invokeCC(opts, cPath, prog.CFlags); err != nil {
			return result, err
		}
		result.ExePath = opts.OutputExecutable
	}
	return result, nil
}

func haltIfErrors(prog *program.Program, log *diag.Log, opts Options) bool {
	for _, e := range prog.Errors {
		log.Add(e)
	}
	prog.Errors = nil
	return log.HasErrors()
}

// Fatal dumps every diagnostic collected so far and terminates the
// process, per spec.md §7's fatal-exit path.
func Fatal(prog *program.Program, log *diag.Log, opts Options) {
	for _, e := range prog.Errors {
		log.Add(e)
	}
	diag.Fatal(log, opts.ErrorDetail)
}

// invokeCC shells out to a C compiler to link the generated translation
// unit into a native executable, the one piece of this pipeline that
// leaves the Go process, grounded on the teacher's child-process
// invocation in pkg/cli/cli_impl.go for its build-and-run mode.
func invokeCC(opts Options, cPath string, cFlags []string) error {
	cc := opts.CC
	if cc == "" {
		cc = "cc"
	}
	args := []string{cPath, "-o", opts.OutputExecutable, "-std=c11", "-w"}
	args = append(args, cFlags...)
	cmd := exec.Command(cc, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
