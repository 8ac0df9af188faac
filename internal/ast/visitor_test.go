package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/movesmith/internal/types"
)

func TestWalk_VisitsNestedCallArguments(t *testing.T) {
	inner := FunctionCall{Name: "g", Type: types.U8()}
	outer := FunctionCall{Name: "f", Args: []Expression{inner}, Type: types.U8()}

	fn := &Function{
		Body: &Block{Tail: outer},
	}

	var names []string
	Walk(fn, nil, func(e Expression) {
		if c, ok := e.(FunctionCall); ok {
			names = append(names, c.Name)
		}
	})

	assert.ElementsMatch(t, []string{"f", "g"}, names)
}

func TestWalk_VisitsResourceOperationsInsideIf(t *testing.T) {
	resOp := ResourceOperation{Kind: ResMoveFrom, StructType: types.StructRef("S", nil)}
	fn := &Function{
		Body: &Block{
			Statements: []Statement{
				ExprStatement{Value: IfExpr{
					Condition: BoolLiteral{Value: true},
					Then:      &Block{Tail: resOp},
					Else:      &Block{},
				}},
			},
		},
	}

	found := false
	Walk(fn, nil, func(e Expression) {
		if _, ok := e.(ResourceOperation); ok {
			found = true
		}
	})
	assert.True(t, found)
}

func TestAllExprs_EmptyBodyIsEmpty(t *testing.T) {
	fn := &Function{}
	assert.Empty(t, AllExprs(fn, nil))
}
