package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/types"
)

func TestEmit_WrapsPrologueAndEpilogue(t *testing.T) {
	unit := &ast.CompileUnit{}
	out := Emit(unit)

	assert.True(t, strings.HasPrefix(out, "//# init --addresses 0xCAFE=0xCAFE 0xBEEF=0xBEEF"))
	assert.True(t, strings.HasSuffix(out, "// end of generated program\n"))
}

func TestEmit_PublishesEachModuleAndRunTarget(t *testing.T) {
	mod := &ast.Module{
		Name: "m0",
		Structs: []*ast.StructDefinition{
			{Name: "S", Abilities: types.NewAbilitySet(types.AbilityCopy, types.AbilityDrop)},
		},
		Functions: []*ast.Function{
			{
				Visibility: ast.VisibilityPublic,
				Signature:  ast.FunctionSignature{Name: "run0"},
				Body:       &ast.Block{},
				IsRunner:   true,
			},
		},
	}
	unit := &ast.CompileUnit{
		Modules:    []*ast.Module{mod},
		RunTargets: []string{"0xCAFE::m0::run0"},
	}

	out := Emit(unit)

	assert.Contains(t, out, "//# publish")
	assert.Contains(t, out, "module 0xCAFE::m0 {")
	assert.Contains(t, out, "struct S")
	assert.Contains(t, out, "public fun run0")
	assert.Contains(t, out, "//# run 0xCAFE::m0::run0 --signers 0xBEEF --gas-budget 100000")
}
