package check

import (
	"testing"

	"github.com/ocen-lang/ocenc/internal/ast"
)

func TestArithmeticOnMismatchedNumericTypesIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	let b: i64 = 2
	let c = a + b
}
`, "same type")
}

func TestIntLiteralDefaultsToU32(t *testing.T) {
	prog := requireNoErrors(t, `
def main() {
	let a = 1
}
`)
	if prog == nil {
		t.Fatalf("expected a program")
	}
	for _, sym := range prog.AllSymbols() {
		if sym != nil && sym.Kind == ast.SymVariable && sym.Name == "a" {
			if prog.Unaliased(sym.Type) != prog.WellKnown["u32"] {
				t.Fatalf("expected 'a' to default to u32")
			}
			return
		}
	}
	t.Fatalf("no variable named 'a' found")
}

func TestAddressOfCharYieldsStr(t *testing.T) {
	requireNoErrors(t, `
def takes(s: str) {}

def main() {
	let c: char = 'x'
	takes(&c)
}
`)
}

func TestDereferenceNonPointerIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	let b = *a
}
`, "pointer")
}

func TestIfExpressionRequiresElseBranch(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a = if true { yield 1 }
}
`, "else branch")
}

func TestIfExpressionBranchesMustAgree(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a = if true {
		yield 1
	} else {
		yield true
	}
}
`, "same type")
}

func TestStructEqualityIsRejected(t *testing.T) {
	requireErrorContaining(t, `
struct Point {
	x: i32
	y: i32
}

def main() {
	let a: Point
	let b: Point
	let c = a == b
}
`, "struct")
}

func TestFormatStringWrapsEnumEmbedInDbgCall(t *testing.T) {
	requireNoErrors(t, `
enum Color {
	Red
	Green
	Blue
}

def main() {
	let c = Color::Red
	println(f"color: {c}")
}
`)
}
