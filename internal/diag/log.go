package diag

import (
	"fmt"
	"io"
	"os"
	"strconv"
)

// NumErrorsEnv mirrors the teacher's convention of an environment variable
// that tunes how much diagnostic output is shown without needing a CLI
// flag threaded through every call site.
const NumErrorsEnv = "OCEN_NUM_ERRORS"

const defaultNumErrors = 10

// Log accumulates diagnostics across lexing, parsing, and checking. No
// pass ever panics into this type; they call Add and keep going.
type Log struct {
	errors   []Error
	numShown int
	sources  map[string]*Source
}

func NewLog() *Log {
	numShown := defaultNumErrors
	if v := os.Getenv(NumErrorsEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			numShown = n
		}
	}
	return &Log{numShown: numShown, sources: make(map[string]*Source)}
}

func (l *Log) Add(e Error) {
	l.errors = append(l.errors, e)
}

func (l *Log) AddSource(s *Source) {
	l.sources[s.Name] = s
}

func (l *Log) Source(name string) *Source {
	return l.sources[name]
}

func (l *Log) HasErrors() bool {
	return len(l.errors) > 0
}

func (l *Log) Errors() []Error {
	return l.errors
}

// Dump writes the accumulated diagnostics to w, most recent last, capped
// at the configured display count. detail selects how much context each
// diagnostic includes: 0 is message-only, 1 adds the source line, 2 adds
// the full hint/note chain.
func (l *Log) Dump(w io.Writer, detail int) {
	shown := l.errors
	if len(shown) > l.numShown {
		shown = shown[len(shown)-l.numShown:]
	}
	for _, e := range shown {
		l.writeOne(w, e, detail)
	}
	if len(l.errors) > len(shown) {
		fmt.Fprintf(w, "... and %d more error(s)\n", len(l.errors)-len(shown))
	}
}

func (l *Log) writeOne(w io.Writer, e Error, detail int) {
	fmt.Fprintf(w, "%s: error: %s\n", e.Primary.Span, e.Primary.Text)
	if detail >= 1 {
		if src := l.sources[e.Primary.Span.Start.File]; src != nil {
			fmt.Fprintf(w, "    %s\n", src.LineText(e.Primary.Span.Start))
		}
	}
	if detail >= 2 {
		switch e.Kind {
		case WithNote:
			fmt.Fprintf(w, "note: %s\n", e.Note)
		case WithHint:
			fmt.Fprintf(w, "%s: note: %s\n", e.Hint.Span, e.Hint.Text)
		}
	}
}

// Fatal prints every accumulated diagnostic and terminates the process.
// The compiler package's Fatal calls this after a phase reports errors,
// including when ParseFile reports an irrecoverable syntax error such as a
// missing expected token, per spec.md §7.
func Fatal(log *Log, detail int) {
	log.Dump(os.Stderr, detail)
	os.Exit(1)
}
