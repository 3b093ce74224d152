// Command ocenc is the CLI entry point for the Ocen bootstrap compiler's
// core pipeline. It is intentionally thin (spec.md §1): argument parsing
// here is a flat loop over os.Args in the teacher's pkg/cli/cli_impl.go
// style, just enough to drive internal/compiler.Compile end to end.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ocen-lang/ocenc/internal/compiler"
)

const helpText = `Usage:
  ocenc [options] <file.oc>

Options:
  -o <path>   Output executable path (triggers linking via cc)
  -c <path>   Output C file path (defaults to <exe>.c or <entry>.c)
  -e0/-e1/-e2 Diagnostic detail level (0 = message only, 2 = full)
  -s          Silent: suppress progress output
  -n          Do not invoke a C compiler, even if -o is given
  -d          Emit #line directives for debugging generated C
  -l <path>   Library root directory containing std/
  -h          Show this help text
`

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if opts == nil {
		fmt.Print(helpText)
		return
	}

	result, err := compiler.Compile(*opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if !opts.Silent {
		fmt.Printf("wrote %s\n", result.CPath)
		if result.ExePath != "" {
			fmt.Printf("wrote %s\n", result.ExePath)
		}
	}
}

// parseArgs walks os.Args once, matching the teacher's flat switch-on-flag
// loop instead of the standard library's flag package, since Ocen's flag
// set mixes single-letter switches with a bundled detail-level digit
// ("-e0".."-e2") that flag.FlagSet cannot express directly. A nil, nil
// return means "-h" was given.
func parseArgs(args []string) (*compiler.Options, error) {
	opts := &compiler.Options{ErrorDetail: 1}
	var entry string

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			return nil, nil
		case arg == "-s":
			opts.Silent = true
		case arg == "-n":
			opts.NoInvokeCC = true
		case arg == "-d":
			opts.DebugLineDirectives = true
		case arg == "-o":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-o requires a path")
			}
			opts.OutputExecutable = args[i]
		case arg == "-c":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-c requires a path")
			}
			opts.OutputC = args[i]
		case arg == "-l":
			i++
			if i >= len(args) {
				return nil, fmt.Errorf("-l requires a path")
			}
			opts.LibraryRoot = args[i]
		case strings.HasPrefix(arg, "-e") && len(arg) == 3:
			switch arg[2] {
			case '0':
				opts.ErrorDetail = 0
			case '1':
				opts.ErrorDetail = 1
			case '2':
				opts.ErrorDetail = 2
			default:
				return nil, fmt.Errorf("unknown flag %q", arg)
			}
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("unknown flag %q", arg)
		default:
			entry = arg
		}
	}

	if entry == "" {
		return nil, fmt.Errorf("no entry file given")
	}
	opts.EntryFile = entry
	return opts, nil
}
