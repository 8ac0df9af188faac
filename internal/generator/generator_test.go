package generator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/types"
)

// tinyConfig is a minimal, terminating configuration: every budget but
// the three ranged draws below (NumInlineFuncs, ExprDepth, TypeDepth)
// is pinned to a fixed small value so a short byte stream is enough
// to drive a full Generate() call without exhausting it mid-module.
func tinyConfig() Config {
	one := selection.NewRandomNumber(1, 1, 1)
	zero := selection.NewRandomNumber(0, 0, 0)
	return Config{
		NumModules:                    one,
		NumFunctionsInModule:          one,
		NumStructsInModule:            zero,
		NumFieldsInStruct:             zero,
		NumFieldsOfStructType:         zero,
		NumStmtsInFunc:                zero,
		NumAdditionalOperationsInFunc: zero,
		NumParamsInFunc:               zero,
		NumStmtsInBlock:               zero,
		NumRunsPerFunc:                zero,
		// NumInlineFuncs is the first budget Generate draws from the
		// source: deliberately non-fixed (Min != Max) so an empty byte
		// stream fails on this very first draw rather than sailing
		// through every zero-width budget untouched.
		NumInlineFuncs:                selection.NewRandomNumber(0, 1, 2),
		NumTypeParamsInFunc:           zero,
		NumTypeParamsInStruct:         zero,
		ExprDepth:                     selection.NewRandomNumber(1, 1, 2),
		TypeDepth:                     selection.NewRandomNumber(1, 1, 2),
		HexByteStrSize:                zero,
		GenerationTimeoutSec:          30,
		AllowRecursiveCalls:           false,
		ReturnAbortPossibility:        0,
	}
}

// S1: an empty byte stream can't supply any of the budget draws
// Generate makes up front, so it must fail with NotEnoughData rather
// than panic or silently emit a truncated program.
func TestGenerate_EmptyInput_ReturnsNotEnoughData(t *testing.T) {
	_, err := Generate(tinyConfig(), []byte{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, selection.ErrNotEnoughData))
}

// S3: determinism — the same configuration and input bytes must
// produce byte-identical output on every run, since the whole point of
// a byte-driven generator is that the fuzzer's corpus is replayable.
func TestGenerate_DeterministicReplay(t *testing.T) {
	cfg := tinyConfig()
	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i * 7 % 251)
	}

	out1, err1 := Generate(cfg, data)
	out2, err2 := Generate(cfg, data)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, out1, out2)
	assert.NotEmpty(t, out1)
}

// P9: byte monotonicity — once a byte stream is enough to generate
// successfully, appending more bytes after it must never turn that
// same generation back into a failure, since the oracle only ever
// consumes a prefix.
func TestGenerate_AppendingBytesNeverBreaksASuccessfulInput(t *testing.T) {
	cfg := tinyConfig()
	data := make([]byte, 2048)
	for i := range data {
		data[i] = byte(i*31 + 5)
	}
	_, err := Generate(cfg, data)
	require.NoError(t, err)

	extended := append(append([]byte(nil), data...), make([]byte, 2048)...)
	for i := 2048; i < len(extended); i++ {
		extended[i] = byte(i * 13 % 197)
	}
	_, err = Generate(cfg, extended)
	assert.NoError(t, err, "growing a previously-successful input must not introduce a failure")
}

// S4: a struct type parameter never mentioned in any field's type must
// be inferred phantom.
func TestInferPhantomTypeParameters(t *testing.T) {
	used := types.TypeParameter("T", types.RefAbilities(), false)
	unused := types.TypeParameter("U", types.RefAbilities(), false)

	sd := &ast.StructDefinition{
		Name:           "Box",
		TypeParameters: []types.Type{used, unused},
		Fields: []ast.Field{
			{Name: "value", Type: types.TypeParameter("T", types.RefAbilities(), false)},
		},
	}
	mod := &ast.Module{Name: "m", Structs: []*ast.StructDefinition{sd}}
	ms := &MoveSmith{unit: &ast.CompileUnit{Modules: []*ast.Module{mod}}}

	ms.inferPhantomTypeParameters()

	assert.False(t, sd.TypeParameters[0].IsPhantom, "T is used in a field, must not be phantom")
	assert.True(t, sd.TypeParameters[1].IsPhantom, "U never occurs in a field, must be phantom")
}

// S5: acquires propagates transitively across the call graph: f calls
// g, g calls h, h does move_from<S> directly — so all three must end
// up with S in their acquires list, not just h.
func TestComputeAcquires_PropagatesAcrossCallChain(t *testing.T) {
	resOp := ast.ResourceOperation{Kind: ast.ResMoveFrom, StructType: types.StructRef("S", nil)}

	h := &ast.Function{Signature: ast.FunctionSignature{Name: "h"}, Body: &ast.Block{Tail: resOp}}
	g := &ast.Function{Signature: ast.FunctionSignature{Name: "g"}, Body: callBlock("h")}
	f := &ast.Function{Signature: ast.FunctionSignature{Name: "f"}, Body: callBlock("g")}

	mod := &ast.Module{Name: "m", Functions: []*ast.Function{f, g, h}}
	ms := &MoveSmith{unit: &ast.CompileUnit{Modules: []*ast.Module{mod}}}

	ms.computeAcquires()

	assert.Equal(t, []string{"S"}, h.Signature.Acquires)
	assert.Equal(t, []string{"S"}, g.Signature.Acquires, "g must inherit h's acquires")
	assert.Equal(t, []string{"S"}, f.Signature.Acquires, "f must inherit transitively through g")
}

// disableSelfRecursiveInline must turn off Inline on a function that
// calls itself, since Move rejects recursive inline functions outright.
func TestDisableSelfRecursiveInline(t *testing.T) {
	fn := &ast.Function{
		Signature: ast.FunctionSignature{Name: "loop", Inline: true},
		Body:      callBlock("loop"),
	}
	mod := &ast.Module{Name: "m", Functions: []*ast.Function{fn}}
	ms := &MoveSmith{unit: &ast.CompileUnit{Modules: []*ast.Module{mod}}}

	ms.disableSelfRecursiveInline()

	assert.False(t, fn.Signature.Inline)
}

// S6: acyclicity — a struct whose field type is itself must be
// rejected as a nesting candidate; checkStructReachable is the
// primitive the fill phase consults to enforce that.
func TestCheckStructReachable(t *testing.T) {
	a := &ast.StructDefinition{Name: "A", Fields: []ast.Field{{Name: "b", Type: types.StructRef("B", nil)}}}
	b := &ast.StructDefinition{Name: "B", Fields: []ast.Field{{Name: "a", Type: types.StructRef("A", nil)}}}
	c := &ast.StructDefinition{Name: "C"}

	ms := &MoveSmith{structDefs: map[string]*ast.StructDefinition{"A": a, "B": b, "C": c}}

	assert.True(t, ms.checkStructReachable("A", "A", map[string]bool{}), "a struct always reaches itself (the base case self-reference check)")
	assert.True(t, ms.checkStructReachable("A", "B", map[string]bool{}), "A nests B directly")
	assert.True(t, ms.checkStructReachable("B", "A", map[string]bool{}), "B nests A directly, completing the cycle")
	assert.False(t, ms.checkStructReachable("A", "C", map[string]bool{}), "C is unrelated to A's field graph")
}

// callBlock builds a single-statement block whose tail is a call to
// the given function name — the minimal shape computeAcquires and
// disableSelfRecursiveInline need to see a call edge.
func callBlock(name string) *ast.Block {
	return &ast.Block{Tail: ast.FunctionCall{Name: name}}
}
