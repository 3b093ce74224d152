package check

import "testing"

func TestImportOfSingleItemBindsItIntoScope(t *testing.T) {
	requireNoErrors(t, `
namespace mathutils {
	def square(x: i32): i32 => x * x
}

import mathutils::{square}

def main() {
	let a = square(3)
}
`)
}

func TestWildcardImportBindsEveryTopLevelName(t *testing.T) {
	requireNoErrors(t, `
namespace mathutils {
	def square(x: i32): i32 => x * x
	def cube(x: i32): i32 => x * x * x
}

import mathutils::*

def main() {
	let a = square(3)
	let b = cube(2)
}
`)
}

func TestImportOfUnknownMemberIsRejected(t *testing.T) {
	requireErrorContaining(t, `
namespace mathutils {
	def square(x: i32): i32 => x * x
}

import mathutils::{missing}

def main() {
}
`, "has no member")
}
