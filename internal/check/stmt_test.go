package check

import "testing"

func TestNonVoidFunctionMustReturnOnAllPaths(t *testing.T) {
	requireErrorContaining(t, `
def f(): i32 {
	let a = 1
}
`, "return")
}

func TestMainDefaultsToI32WithoutExplicitReturn(t *testing.T) {
	requireNoErrors(t, `
def main() {
	let a = 1
}
`)
}

func TestExitsFunctionNeedNotReturn(t *testing.T) {
	requireNoErrors(t, `
def die(): i32 exits {
	while true {}
}
`)
}

func TestBreakOutsideLoopIsRejected(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	break
}
`, "outside of a loop")
}

func TestDeferIsRecordedAndAllowedAnywhereInABlock(t *testing.T) {
	requireNoErrors(t, `
def cleanup() {}

def main() {
	defer cleanup()
	let a = 1
}
`)
}

func TestAssertRequiresBoolCondition(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	assert(a)
}
`, "bool")
}

func TestWhileRequiresBoolCondition(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	while a {}
}
`, "bool")
}

func TestEnumMatchMustBeExhaustiveOrHaveElse(t *testing.T) {
	requireErrorContaining(t, `
enum Light {
	Red
	Yellow
	Green
}

def main() {
	let l = Light::Red
	match l {
		Light::Red => {}
		Light::Yellow => {}
	}
}
`, "missing variant")
}

func TestEnumMatchExhaustiveWithoutElseIsAccepted(t *testing.T) {
	requireNoErrors(t, `
enum Light {
	Red
	Yellow
	Green
}

def main() {
	let l = Light::Red
	match l {
		Light::Red => {}
		Light::Yellow => {}
		Light::Green => {}
	}
}
`)
}

func TestEnumMatchDuplicateVariantIsRejected(t *testing.T) {
	requireErrorContaining(t, `
enum Light {
	Red
	Yellow
	Green
}

def main() {
	let l = Light::Red
	match l {
		Light::Red => {}
		Light::Red => {}
		Light::Yellow => {}
		Light::Green => {}
	}
}
`, "duplicate match case")
}

func TestNonEnumMatchRequiresElse(t *testing.T) {
	requireErrorContaining(t, `
def main() {
	let a: i32 = 1
	match a {
		1 => {}
	}
}
`, "else")
}
