package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/types"
)

// maxLiteralVectorElems bounds inline vector literals so expression
// size stays proportional to the expression-depth budget rather than
// ballooning independently of it.
const maxLiteralVectorElems = 3

// generateVectorValue builds a vector[...] literal of t's element
// type: the straightforward way to produce a value of vector type
// (as opposed to generateVectorOperation, which mutates an existing
// one for effect).
func (ms *MoveSmith) generateVectorValue(t types.Type, scope scopeCtx) (ast.Expression, error) {
	elem := *t.Inner
	n, err := ms.src.BoundedInt(0, maxLiteralVectorElems)
	if err != nil {
		return nil, err
	}
	lit := ast.VectorLiteral{ElemType: elem}
	switch n {
	case 0:
		lit.Kind = ast.VectorEmpty
	case 1:
		lit.Kind = ast.VectorSingleton
	default:
		lit.Kind = ast.VectorList
	}
	for i := 0; i < n; i++ {
		e, err := ms.generateExpressionOfType(elem, scope)
		if err != nil {
			return nil, err
		}
		lit.Elements = append(lit.Elements, e)
	}
	return lit, nil
}

// vectorOpShape says how many extra (non-receiver) arguments each
// operation's generated index/element arguments need, and whether the
// operation wants an element value vs. an index.
type vectorOpShape struct {
	kind      ast.VectorOperationKind
	numIdx    int
	wantsElem bool // one extra argument of the element type
}

var vectorOpShapes = []vectorOpShape{
	{ast.VecPushBack, 0, true},
	{ast.VecPopBack, 0, false},
	{ast.VecLength, 0, false},
	{ast.VecIsEmpty, 0, false},
	{ast.VecBorrow, 1, false},
	{ast.VecBorrowMut, 1, false},
	{ast.VecSwap, 2, false},
	{ast.VecReverse, 0, false},
	{ast.VecContains, 0, true},
	{ast.VecIndexOf, 0, true},
	{ast.VecRemove, 1, false},
	{ast.VecSwapRemove, 1, false},
	{ast.VecFirst, 0, false},
	{ast.VecLast, 0, false},
}

// generateVectorOperation emits a call on an existing (or freshly
// declared) vector receiver, used as a dispersed statement-level
// operation: its result is discarded for effect, so any of the 14
// kinds in vectorOpShapes is a valid draw regardless of the surrounding
// expected type.
//
// Every one of these operations borrows its receiver (vector::length
// and friends all take &vector<T>/&mut vector<T>), and Move rejects
// borrowing a bare literal — so when no live vector variable exists,
// one is declared on the spot and the caller is handed the
// declaration statement to prepend alongside the operation itself.
func (ms *MoveSmith) generateVectorOperation(vecType types.Type, scope scopeCtx) ([]ast.Statement, ast.Expression, error) {
	elem := *vecType.Inner

	var stmts []ast.Statement
	var receiver ast.Expression
	if name, ok := ms.findLiveVariable(vecType, scope); ok {
		receiver = ast.VariableAccess{Name: name, Type: vecType}
	} else {
		lit, err := ms.generateVectorValue(vecType, scope)
		if err != nil {
			return nil, nil, err
		}
		id, _ := ms.env.Idents.Allocate(ident.KindVariable, scope.scope, false, false, "")
		ms.tp.InsertMapping(id, vecType)
		ms.env.Live.MarkAlive(scope.scope, id)
		stmts = append(stmts, ast.Declaration{Name: id.Name, Type: vecType, Value: lit, ShowTypeAnno: true})
		receiver = ast.VariableAccess{Name: id.Name, Type: vecType}
	}

	idx, err := ms.src.BoundedInt(0, len(vectorOpShapes)-1)
	if err != nil {
		return nil, nil, err
	}
	shape := vectorOpShapes[idx]

	op := ast.VectorOperation{Kind: shape.kind, Receiver: receiver, ElemType: elem, Type: vectorOpResultType(shape.kind, elem)}
	for i := 0; i < shape.numIdx; i++ {
		v, err := ms.src.BoundedInt(0, 255)
		if err != nil {
			return nil, nil, err
		}
		op.Args = append(op.Args, ast.NumberLiteral{Value: fmt.Sprintf("%du64", v), Type: types.U64()})
	}
	if shape.wantsElem {
		v, err := ms.generateExpressionOfType(elem, scope)
		if err != nil {
			return nil, nil, err
		}
		op.Args = append(op.Args, v)
	}
	return stmts, op, nil
}

func vectorOpResultType(kind ast.VectorOperationKind, elem types.Type) types.Type {
	switch kind {
	case ast.VecLength:
		return types.U64()
	case ast.VecIsEmpty, ast.VecContains:
		return types.Bool()
	case ast.VecIndexOf:
		return types.Tuple(types.Bool(), types.U64())
	case ast.VecBorrow, ast.VecFirst, ast.VecLast:
		return types.Ref(elem)
	case ast.VecBorrowMut:
		return types.MutRef(elem)
	case ast.VecPopBack, ast.VecRemove, ast.VecSwapRemove:
		return elem
	default:
		return types.Tuple()
	}
}
