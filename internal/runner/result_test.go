package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyRun_NilErrorPasses(t *testing.T) {
	r := ClassifyRun("file.move", time.Second, nil)
	assert.True(t, r.Passed())
	assert.Equal(t, "No diff found", r.Log())
}

func TestClassifyRun_SameResultsMarkerPasses(t *testing.T) {
	err := assertionError("Compiler v2 delivered same results as v1")
	r := ClassifyRun("file.move", time.Second, err)
	assert.True(t, r.Passed())
}

func TestClassifyRun_SplitsV1AndV2SectionsAndClassifies(t *testing.T) {
	log := "error: cannot infer type of x\n" +
		"V2 Result:\n" +
		"error: cannot infer type of y\n"
	err := assertionError(log)

	r := ClassifyRun("file.move", time.Second, err)

	require.False(t, r.Passed())
	require.NotNil(t, r.Err)
	assert.Equal(t, []ErrorLine{"...cannot infer type..."}, r.Err.V1Errors)
	assert.Equal(t, []ErrorLine{"...cannot infer type..."}, r.Err.V2Errors)
}

func TestClassifyRun_NoErrorLinesFallsBackToNoDiffLog(t *testing.T) {
	err := assertionError("totally unrelated output with no diagnostic markers")
	r := ClassifyRun("file.move", time.Second, err)
	assert.True(t, r.Passed())
	assert.Contains(t, r.Log(), "unrelated")
}

func TestClassifyLog_MatchingHashLinesFoldIntoHashDiff(t *testing.T) {
	v1 := []string{"acc: deadbeef"}
	v2 := []string{"acc: deadbeef"}

	classified := classifyLog("full log", v1, v2)

	require.NotNil(t, classified)
	assert.Len(t, classified.HashDiff, 2)
	assert.Contains(t, classified.V1Errors, ErrorLine("deadbeef"))
	assert.Contains(t, classified.V2Errors, ErrorLine("deadbeef"))
}

func TestClassifyLog_MismatchedHashesProduceNoHashDiff(t *testing.T) {
	classified := classifyLog("full log", []string{"acc: aaa"}, []string{"acc: bbb"})
	assert.Nil(t, classified)
}

func TestClassifiedError_EqualIgnoresFullLogText(t *testing.T) {
	a := ClassifiedError{FullLog: "run one", V1Errors: []ErrorLine{"x", "y"}}
	b := ClassifiedError{FullLog: "run two", V1Errors: []ErrorLine{"y", "x"}}
	assert.True(t, a.Equal(b), "order and full log text must not affect equality")
}

// assertionError is a minimal error value for building harness failures
// in tests, since the real runner.Harness error text comes from an
// external compiler process this package never invokes directly.
type assertionError string

func (e assertionError) Error() string { return string(e) }
