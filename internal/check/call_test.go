package check

import "testing"

func TestConstructorCallFillsDefaultsAndChecksPositionalFields(t *testing.T) {
	requireNoErrors(t, `
struct Point {
	x: i32
	y: i32 = 0
}

def main() {
	let p = Point(1)
}
`)
}

func TestConstructorCallMissingRequiredFieldIsRejected(t *testing.T) {
	requireErrorContaining(t, `
struct Point {
	x: i32
	y: i32
}

def main() {
	let p = Point(1)
}
`, "missing required field")
}

func TestConstructorCallWithUnknownLabelIsRejected(t *testing.T) {
	requireErrorContaining(t, `
struct Point {
	x: i32
	y: i32
}

def main() {
	let p = Point(x: 1, z: 2)
}
`, "has no field")
}

func TestMethodCallSplicesReceiverAsFirstArgument(t *testing.T) {
	requireNoErrors(t, `
struct Counter {
	value: i32
}

def Counter::increment(&this) {
	this.value = this.value + 1
}

def main() {
	let c: Counter
	c.increment()
}
`)
}

func TestCallingNonFunctionValueIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	a()
}
`, "non-function")
}

func TestTooManyArgumentsIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def f(a: i32) {}

def main() {
	f(1, 2)
}
`, "too many arguments")
}

func TestTooFewArgumentsIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def f(a: i32, b: i32) {}

def main() {
	f(1)
}
`, "too few arguments")
}

func TestPrintRejectsUnprintableArgument(t *testing.T) {
	requireErrorContaining(t, `
struct Point {
	x: i32
	y: i32
}

def main() {
	let p: Point
	println(p)
}
`, "not printable")
}
