package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/types"
)

// numericBinOpCandidates are every arithmetic/bitwise operator; the
// shift/div/mod operators get a narrowed right-hand domain below so
// generated programs abort from them only occasionally rather than
// almost always.
var numericBinOpCandidates = []ast.NumericalBinaryOperator{
	ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpMod, ast.OpDiv,
	ast.OpBitAnd, ast.OpBitOr, ast.OpBitXor, ast.OpShl, ast.OpShr,
}

// generateNumericBinOp produces a lhs op rhs of result type t. Add/Sub
// draw both operands from a small bounded domain and Mul from a
// u8-ranged one, so repeated application doesn't overflow t's range
// almost immediately; Div/Mod/Shl/Shr narrow only the right-hand side,
// since the left-hand operand doesn't determine whether they abort.
func (ms *MoveSmith) generateNumericBinOp(t types.Type, scope scopeCtx) (ast.Expression, error) {
	idx, err := ms.src.BoundedInt(0, len(numericBinOpCandidates)-1)
	if err != nil {
		return nil, err
	}
	op := numericBinOpCandidates[idx]

	var lhs, rhs ast.Expression
	switch op {
	case ast.OpAdd:
		lhs, err = ms.narrowSmallLiteral(t)
		if err == nil {
			rhs, err = ms.narrowSmallLiteral(t)
		}
	case ast.OpSub:
		// rhs is drawn no larger than lhs, so the subtraction never
		// underflows.
		var a, b int
		a, err = ms.src.BoundedInt(0, 20)
		if err == nil {
			b, err = ms.src.BoundedInt(0, a)
		}
		if err == nil {
			lhs = ast.NumberLiteral{Value: fmt.Sprintf("%d%s", a, t.GetName()), Type: t}
			rhs = ast.NumberLiteral{Value: fmt.Sprintf("%d%s", b, t.GetName()), Type: t}
		}
	case ast.OpMul:
		lhs, err = ms.narrowU8RangedLiteral(t)
		if err == nil {
			rhs, err = ms.narrowU8RangedLiteral(t)
		}
	case ast.OpDiv, ast.OpMod:
		lhs, err = ms.generateExpressionOfType(t, scope)
		if err == nil {
			rhs, err = ms.narrowNonzeroLiteral(t)
		}
	case ast.OpShl, ast.OpShr:
		lhs, err = ms.generateExpressionOfType(t, scope)
		if err == nil {
			rhs, err = ms.narrowShiftLiteral()
		}
	default:
		lhs, err = ms.generateExpressionOfType(t, scope)
		if err == nil {
			rhs, err = ms.generateExpressionOfType(t, scope)
		}
	}
	if err != nil {
		return nil, err
	}

	return ast.BinaryOperation{Kind: ast.BinaryNumerical, Numerical: op, Lhs: lhs, Rhs: rhs, ResultType: t}, nil
}

func (ms *MoveSmith) narrowNonzeroLiteral(t types.Type) (ast.Expression, error) {
	v, err := ms.src.BoundedInt(1, 255)
	if err != nil {
		return nil, err
	}
	return ast.NumberLiteral{Value: fmt.Sprintf("%d%s", v, t.GetName()), Type: t}, nil
}

func (ms *MoveSmith) narrowShiftLiteral() (ast.Expression, error) {
	v, err := ms.src.BoundedInt(0, 7)
	if err != nil {
		return nil, err
	}
	return ast.NumberLiteral{Value: fmt.Sprintf("%du8", v), Type: types.U8()}, nil
}

// narrowSmallLiteral draws from a small domain shared by every integer
// width, so the sum of two draws (at most 40) stays clear of overflow on
// the narrowest type (u8) regardless of which numeric type t is.
func (ms *MoveSmith) narrowSmallLiteral(t types.Type) (ast.Expression, error) {
	v, err := ms.src.BoundedInt(0, 20)
	if err != nil {
		return nil, err
	}
	return ast.NumberLiteral{Value: fmt.Sprintf("%d%s", v, t.GetName()), Type: t}, nil
}

// narrowU8RangedLiteral draws from u8's full range: Mul overflows even
// a u64 quickly once chained, so both operands get pinned to the
// smallest width's domain rather than just the right-hand one.
func (ms *MoveSmith) narrowU8RangedLiteral(t types.Type) (ast.Expression, error) {
	v, err := ms.src.BoundedInt(0, 255)
	if err != nil {
		return nil, err
	}
	return ast.NumberLiteral{Value: fmt.Sprintf("%d%s", v, t.GetName()), Type: t}, nil
}

// generateNumericExpression picks among a literal/variable leaf, an
// if-else, a call to a function returning t, a binary operation, and a
// dereference of an in-scope reference to t — the generic
// recursive-candidate table applied to a numeric target.
func (ms *MoveSmith) generateNumericExpression(t types.Type, scope scopeCtx) (ast.Expression, error) {
	weights := []int{4, 2, 2, 3, 2}
	idx, err := selection.ChooseIdxWeighted(ms.src, weights)
	if err != nil {
		return nil, err
	}
	switch idx {
	case candIfElse:
		return ms.generateIfElse(t, scope)
	case candCall:
		if e, ok, err := ms.tryGenerateFunctionCall(t, scope); err != nil {
			return nil, err
		} else if ok {
			return e, nil
		}
		return ms.generateLeaf(t, scope)
	case candBinOp:
		return ms.generateNumericBinOp(t, scope)
	case candDeref:
		if e, ok, err := ms.tryGenerateDereference(t, scope); err != nil {
			return nil, err
		} else if ok {
			return e, nil
		}
		return ms.generateLeaf(t, scope)
	default:
		return ms.generateLeaf(t, scope)
	}
}
