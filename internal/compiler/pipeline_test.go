package compiler

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestCompileWritesGeneratedC(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.oc")
	writeFile(t, entry, `
def main(): i32 {
	return 0
}
`)
	cPath := filepath.Join(dir, "main.c")

	result, err := Compile(Options{
		EntryFile:   entry,
		OutputC:     cPath,
		NoInvokeCC:  true,
		Silent:      true,
		ErrorDetail: 1,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if result.ExePath != "" {
		t.Fatalf("expected no executable without -o, got %q", result.ExePath)
	}
	content, err := os.ReadFile(result.CPath)
	if err != nil {
		t.Fatalf("reading generated C: %v", err)
	}
	if !strings.Contains(string(content), "main(") {
		t.Fatalf("expected a main function in generated C:\n%s", content)
	}
}

func TestCompileResolvesRelativeImports(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mathutils.oc"), `
def square(x: i32): i32 => x * x
`)
	entry := filepath.Join(dir, "main.oc")
	writeFile(t, entry, `
import mathutils::{square}

def main(): i32 {
	let a = square(3)
	return 0
}
`)
	cPath := filepath.Join(dir, "main.c")

	result, err := Compile(Options{
		EntryFile:  entry,
		OutputC:    cPath,
		NoInvokeCC: true,
		Silent:     true,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	content, err := os.ReadFile(result.CPath)
	if err != nil {
		t.Fatalf("reading generated C: %v", err)
	}
	if !strings.Contains(string(content), "square") {
		t.Fatalf("expected the imported function in generated C:\n%s", content)
	}
}

// TestCompileLoadsPreludeWhenLibraryRootGiven exercises the repository's
// own testdata/std/prelude.oc fixture (spec.md §9), which declares
// "panic", so a program using it unqualified proves the prelude was
// loaded and put AlwaysAddToScope before the entry file.
func TestCompileLoadsPreludeWhenLibraryRootGiven(t *testing.T) {
	libRoot, err := filepath.Abs("../../testdata")
	if err != nil {
		t.Fatalf("filepath.Abs: %v", err)
	}
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.oc")
	writeFile(t, entry, `
def main(): i32 {
	if false {
		panic("unreachable")
	}
	return 0
}
`)
	cPath := filepath.Join(dir, "main.c")

	_, err = Compile(Options{
		EntryFile:   entry,
		OutputC:     cPath,
		LibraryRoot: libRoot,
		NoInvokeCC:  true,
		Silent:      true,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
}

// TestCompileTemplateSizeofKeepsEachInstantiationsElementType guards
// against a specific template-instantiation regression: a "sizeof(&T)"
// (or "x as &T") inside a templated method shares its CastType between
// every instantiation unless the checker clones it, so resolving the
// first instantiation's pointer-to-parameter type in place would leak
// into the second instantiation's type instead of re-resolving against
// its own argument (spec.md §4.4's instantiation note).
func TestCompileTemplateSizeofKeepsEachInstantiationsElementType(t *testing.T) {
	dir := t.TempDir()
	entry := filepath.Join(dir, "main.oc")
	writeFile(t, entry, `
struct Box<T> {
	x: T
}

def Box::elemPtrSize(&this): u32 => sizeof(&T)

def main(): i32 {
	let a: Box<i32>
	let b: Box<f32>
	a.elemPtrSize()
	b.elemPtrSize()
	return 0
}
`)
	cPath := filepath.Join(dir, "main.c")

	_, err := Compile(Options{
		EntryFile:  entry,
		OutputC:    cPath,
		NoInvokeCC: true,
		Silent:     true,
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	content, err := os.ReadFile(cPath)
	if err != nil {
		t.Fatalf("reading generated C: %v", err)
	}
	src := string(content)
	if !strings.Contains(src, "sizeof(int32_t *)") {
		t.Fatalf("expected the i32 instantiation's sizeof to target int32_t *, got:\n%s", src)
	}
	if !strings.Contains(src, "sizeof(float *)") {
		t.Fatalf("expected the f32 instantiation's sizeof to target float *, got:\n%s", src)
	}
}
