package lexer

import (
	"testing"

	"github.com/ocen-lang/ocenc/internal/diag"
	"github.com/ocen-lang/ocenc/internal/token"
)

func lexAll(t *testing.T, contents string) []token.Token {
	t.Helper()
	toks, errs := Lex(diag.NewSource("<test>", contents))
	if len(errs) != 0 {
		t.Fatalf("unexpected lex errors for %q: %v", contents, errs)
	}
	return toks
}

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, tok := range toks {
		out[i] = tok.Kind
	}
	return out
}

func assertKinds(t *testing.T, contents string, want ...token.Kind) {
	t.Helper()
	want = append(want, token.EOF)
	got := kinds(lexAll(t, contents))
	if len(got) != len(want) {
		t.Fatalf("%q: got %v, want %v", contents, got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("%q: token %d: got %v, want %v", contents, i, got[i], want[i])
		}
	}
}

func TestKeywordsVersusIdentifiers(t *testing.T) {
	assertKinds(t, "def", token.KwDef)
	assertKinds(t, "definitely", token.Identifier)
	assertKinds(t, "structural", token.Identifier)
	assertKinds(t, "struct", token.KwStruct)
}

func TestIntegerSuffixes(t *testing.T) {
	toks := lexAll(t, "12u32 7i8 1.5f")
	if toks[0].Suffix == nil || toks[0].Suffix.Lexeme != "u32" {
		t.Fatalf("expected u32 suffix, got %+v", toks[0].Suffix)
	}
	if toks[1].Suffix == nil || toks[1].Suffix.Lexeme != "i8" {
		t.Fatalf("expected i8 suffix, got %+v", toks[1].Suffix)
	}
	if toks[2].Kind != token.FloatLiteral || toks[2].Suffix == nil || toks[2].Suffix.Lexeme != "f" {
		t.Fatalf("expected float with f suffix, got %+v", toks[2])
	}
}

func TestHexAndBinaryLiterals(t *testing.T) {
	toks := lexAll(t, "0xFF 0b1010")
	if toks[0].Kind != token.IntLiteral || toks[0].Lexeme != "0xFF" {
		t.Fatalf("got %+v", toks[0])
	}
	if toks[1].Kind != token.IntLiteral || toks[1].Lexeme != "0b1010" {
		t.Fatalf("got %+v", toks[1])
	}
}

func TestFormatStringLiteral(t *testing.T) {
	assertKinds(t, `f"x={1+2}"`, token.FormatStringLiteral)
	assertKinds(t, "`raw`", token.FormatStringLiteral)
	assertKinds(t, `"plain"`, token.StringLiteral)
}

func TestNewlineBeforeFlag(t *testing.T) {
	toks := lexAll(t, "a\nb")
	if toks[0].SeenNewlineBefore {
		t.Fatalf("first token should not have newline before it")
	}
	if !toks[1].SeenNewlineBefore {
		t.Fatalf("second token should have newline before it")
	}
}

func TestUnterminatedStringIsRecoverable(t *testing.T) {
	_, errs := Lex(diag.NewSource("<test>", `"never closed`))
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d: %v", len(errs), errs)
	}
}

func TestMaximalMunchOperators(t *testing.T) {
	assertKinds(t, ">=", token.GreaterEquals)
	assertKinds(t, "::", token.ColonColon)
	assertKinds(t, "=>", token.Arrow)
	assertKinds(t, "+=", token.PlusEquals)
	assertKinds(t, "&&", token.AmpersandAmpersand)
}

// P2: spans never overlap and never run backwards across tokens.
func TestSpanMonotonicity(t *testing.T) {
	toks := lexAll(t, "let x: i32 = 1 + 2 * foo(bar)")
	for i := 0; i < len(toks); i++ {
		if toks[i].Span.Start.Index > toks[i].Span.End.Index {
			t.Fatalf("token %d has a backwards span: %+v", i, toks[i])
		}
		if i+1 < len(toks) && toks[i].Span.End.Index > toks[i+1].Span.Start.Index {
			t.Fatalf("token %d overruns token %d", i, i+1)
		}
	}
}

// P1: lexing the same bytes twice yields the same token kinds and lexemes.
func TestLexerDeterminism(t *testing.T) {
	contents := "def main(): i32 { return 1 + 2 }"
	a := lexAll(t, contents)
	b := lexAll(t, contents)
	if len(a) != len(b) {
		t.Fatalf("nondeterministic token count")
	}
	for i := range a {
		if a[i].Kind != b[i].Kind || a[i].Lexeme != b[i].Lexeme {
			t.Fatalf("nondeterministic token %d", i)
		}
	}
}
