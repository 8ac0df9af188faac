package runner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorPool_ShouldSkipResult_PassingResultIsSkipped(t *testing.T) {
	p := NewErrorPool(nil)
	assert.True(t, p.ShouldSkipResult(Result{}))
}

func TestErrorPool_ShouldSkipError_KnownErrorIsSkipped(t *testing.T) {
	p := NewErrorPool(nil)
	known := ClassifiedError{V1Errors: []ErrorLine{"boom"}}
	p.AddKnownError(known)

	assert.True(t, p.ShouldSkipError(ClassifiedError{V1Errors: []ErrorLine{"boom"}}))
	assert.False(t, p.ShouldSkipError(ClassifiedError{V1Errors: []ErrorLine{"different"}}))
}

func TestErrorPool_ShouldSkipError_IgnoreStringMatchesFullLog(t *testing.T) {
	p := NewErrorPool([]string{"known flaky failure"})
	err := ClassifiedError{FullLog: "...known flaky failure...", V1Errors: []ErrorLine{"x"}}
	assert.True(t, p.ShouldSkipError(err))
}

func TestErrorPool_ShouldSkipError_HashDiffNeverIgnoredBySubstring(t *testing.T) {
	p := NewErrorPool([]string{"x"})
	err := ClassifiedError{FullLog: "x", HashDiff: []ErrorLine{"a", "a"}, V1Errors: []ErrorLine{"x"}}
	assert.False(t, p.ShouldSkipError(err), "a hash-diff convergence signal must always be reported, never ignore-string-suppressed")
}

func TestErrorPool_SaveAndLoadKnownErrors_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "known_errors.toml")

	p := NewErrorPool(nil)
	p.AddKnownError(ClassifiedError{V1Errors: []ErrorLine{"boom"}, V2Errors: []ErrorLine{"bang"}})
	require.NoError(t, p.SaveKnownErrors(path))

	reloaded := NewErrorPool(nil)
	require.NoError(t, reloaded.LoadKnownErrors(path))

	assert.True(t, reloaded.ShouldSkipError(ClassifiedError{V1Errors: []ErrorLine{"boom"}, V2Errors: []ErrorLine{"bang"}}))
}
