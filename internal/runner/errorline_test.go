package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromLogLine_CanonicalizesAcquiresMessages(t *testing.T) {
	assert.Equal(t, ErrorLine("...cannot acquire..."), fromLogLine("error: cannot extract resource 'Box' from local `x`"))
	assert.Equal(t, ErrorLine("...cannot acquire..."), fromLogLine("error: function acquires global but callee does not"))
}

func TestFromLogLine_CanonicalizesInferenceMessages(t *testing.T) {
	assert.Equal(t, ErrorLine("...cannot infer type..."), fromLogLine("error: cannot infer type of variable"))
	assert.Equal(t, ErrorLine("...cannot infer type..."), fromLogLine("error: unable to infer instantiation of type parameter T"))
}

func TestFromLogLine_StripsLocalTypeModuleAndSomeNames(t *testing.T) {
	got := fromLogLine("error: local `x` has type `u64`, expected module 'M::Foo', got Some(42)")
	assert.Equal(t, ErrorLine("error: variable has type, expected module, got Some(value)"), got)
}

func TestFromLogLine_DifferentGeneratedNamesCanonicalizeEqual(t *testing.T) {
	a := fromLogLine("error: local `tmp0` has type `u8` mismatch")
	b := fromLogLine("error: local `tmp17` has type `u256` mismatch")
	assert.Equal(t, a, b)
}

func TestIsErrorLine(t *testing.T) {
	assert.True(t, isErrorLine("error: something broke"))
	assert.True(t, isErrorLine("panic: runtime error"))
	assert.False(t, isErrorLine("Error: compilation errors:"))
	assert.False(t, isErrorLine("error with experiment: foo"))
	assert.False(t, isErrorLine("no problems here"))
}

func TestIsHashLineAndFromHashLine(t *testing.T) {
	line := "state acc: deadbeef1234"
	assert.True(t, isHashLine(line))
	assert.Equal(t, ErrorLine("deadbeef1234"), fromHashLine(line))
	assert.False(t, isHashLine("no hash marker here"))
}
