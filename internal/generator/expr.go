package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/types"
)

// The cand* indices mirror the generic recursive-candidate table (their
// weights live in generateNumericExpression): a leaf (literal or
// variable), an if-else, a function call, a binary operation, or a
// dereference, each a live option only when the current type and
// remaining depth budget allow it.
const (
	candLeaf = iota
	candIfElse
	candCall
	candBinOp
	candDeref
)

// defaultAbortCode is the fixed code every generated `abort` uses,
// matching the original generator's literal default.
const defaultAbortCode = "112233"

// ratioFromProbability turns a [0,1] probability into the (n, d) pair
// selection.Source.Ratio expects, at a fixed 1/10000 resolution.
func ratioFromProbability(p float64) (uint64, uint64) {
	const denom = 10000
	if p <= 0 {
		return 0, denom
	}
	if p >= 1 {
		return denom, denom
	}
	return uint64(p * denom), denom
}

// tryGenerateReturnOrAbort is the return_abort_possibility-gated escape
// hatch from §4.10's step 5: with that probability, short-circuits the
// current expression with a `return <value>` (typed to the enclosing
// function's own return type) or a fixed `abort 112233` — Move's
// bottom type unifies with whatever T the caller actually wanted.
// Unavailable outside of a function body, and inside inline functions
// (Move rejects an early return from one).
func (ms *MoveSmith) tryGenerateReturnOrAbort(scope scopeCtx) (ast.Expression, bool, error) {
	if scope.fnName == "" || scope.fnInline || ms.cfg.ReturnAbortPossibility <= 0 {
		return nil, false, nil
	}
	n, d := ratioFromProbability(ms.cfg.ReturnAbortPossibility)
	hit, err := ms.src.Ratio(n, d)
	if err != nil || !hit {
		return nil, false, err
	}

	wantReturn, err := ms.src.Bool()
	if err != nil {
		return nil, false, err
	}
	if !wantReturn {
		return ast.Abort{Code: defaultAbortCode}, true, nil
	}
	if scope.fnReturnType.Kind == types.KTuple && len(scope.fnReturnType.Tuple) == 0 {
		return ast.Return{}, true, nil
	}
	value, err := ms.generateExpressionOfType(scope.fnReturnType, scope)
	if err != nil {
		return nil, false, err
	}
	return ast.Return{Value: value}, true, nil
}

// tryGenerateDereference produces *expr for a live &T/&mut T variable
// in scope, per §4.10 step 6 ("when T is not a reference and a &T is
// obtainable"). It never conjures a fresh one-off reference just to
// immediately deref it — that would be indistinguishable from using
// the inner value directly, so this only fires against a real place.
func (ms *MoveSmith) tryGenerateDereference(t types.Type, scope scopeCtx) (ast.Expression, bool, error) {
	if t.Kind == types.KRef || t.Kind == types.KMutRef {
		return nil, false, nil
	}
	if name, ok := ms.findLiveVariable(types.Ref(t), scope); ok {
		return ast.Dereference{Value: ast.VariableAccess{Name: name, Type: types.Ref(t)}, Type: t}, true, nil
	}
	if name, ok := ms.findLiveVariable(types.MutRef(t), scope); ok {
		return ast.Dereference{Value: ast.VariableAccess{Name: name, Type: types.MutRef(t)}, Type: t}, true, nil
	}
	return nil, false, nil
}

// generateExpressionOfType is the core polymorphic expression builder:
// depth-bounded, producing a value of exactly t.
func (ms *MoveSmith) generateExpressionOfType(t types.Type, scope scopeCtx) (ast.Expression, error) {
	if err := ms.env.CheckTimeout(); err != nil {
		return nil, err
	}

	if ref := signerRefLeaf(t); ref != nil {
		return *ref, nil
	}

	if t.Kind == types.KTypeParameter {
		if concrete, ok := ms.tp.GetConcreteType(t.Name); ok {
			return ms.generateExpressionOfType(concrete, scope)
		}
		candidates := ms.getTypesWithAbilities(t.Abilities)
		if len(candidates) == 0 {
			return ms.generateLeaf(t, scope)
		}
		idx, err := ms.src.BoundedInt(0, len(candidates)-1)
		if err != nil {
			return nil, err
		}
		return ms.generateExpressionOfType(candidates[idx], scope)
	}

	if t.Kind == types.KStruct && len(t.TypeParamNames) > 0 {
		if concrete, ok := ms.concretizeStructType(t, scope); ok {
			t = concrete
		}
	}

	if name, ok := ms.findLiveVariable(t, scope); ok {
		if useVar, err := ms.src.Ratio(40, 100); err != nil {
			return nil, err
		} else if useVar {
			return ast.VariableAccess{Name: name, Type: t}, nil
		}
	}

	if ms.env.ExprDepth.ReachedLimit() {
		return ms.generateLeaf(t, scope)
	}

	if e, ok, err := ms.tryGenerateReturnOrAbort(scope); err != nil {
		return nil, err
	} else if ok {
		return e, nil
	}

	ms.env.ExprDepth.Descend()
	defer ms.env.ExprDepth.Ascend()

	switch t.Kind {
	case types.KVector:
		return ms.generateVectorValue(t, scope)
	case types.KStruct, types.KStructConcrete:
		return ms.generateStructValue(t, scope)
	case types.KRef, types.KMutRef:
		return ms.generateReferenceValue(t, scope)
	case types.KBool:
		return ms.generateBoolExpression(scope)
	case types.KAddress:
		return ms.generateLeaf(t, scope)
	default:
		if t.IsNumeric() {
			return ms.generateNumericExpression(t, scope)
		}
		return ms.generateLeaf(t, scope)
	}
}

// signerRefLeaf special-cases &signer, the only way a signer value can
// legally be produced: the harness-provided parameter reference.
func signerRefLeaf(t types.Type) *ast.Expression {
	if t.Kind == types.KRef && t.Inner != nil && t.Inner.Kind == types.KSigner {
		var e ast.Expression = ast.VariableAccess{Name: types.SignerVarName, Type: t}
		return &e
	}
	return nil
}

// generateLeaf produces a literal value with no further recursion:
// the base case once depth is exhausted or no richer candidate fits.
// It first tries `abort 112233` or a `return` (§4.10 step 3), gated by
// the same return_abort_possibility knob as the step-5 escape hatch.
func (ms *MoveSmith) generateLeaf(t types.Type, scope scopeCtx) (ast.Expression, error) {
	if e, ok, err := ms.tryGenerateReturnOrAbort(scope); err != nil {
		return nil, err
	} else if ok {
		return e, nil
	}

	switch t.Kind {
	case types.KBool:
		v, err := ms.src.Bool()
		if err != nil {
			return nil, err
		}
		return ast.BoolLiteral{Value: v}, nil
	case types.KAddress:
		return ast.VariableAccess{Name: types.AddressVarName, Type: types.Address()}, nil
	case types.KVector:
		return ast.VectorLiteral{Kind: ast.VectorEmpty, ElemType: *t.Inner}, nil
	case types.KStruct, types.KStructConcrete:
		return ms.generateStructValue(t, scope)
	case types.KRef, types.KMutRef:
		if name, ok := ms.findLiveVariable(*t.Inner, scope); ok {
			if t.Kind == types.KMutRef {
				return ast.MutReference{Value: ast.VariableAccess{Name: name, Type: *t.Inner}, Type: t}, nil
			}
			return ast.Reference{Value: ast.VariableAccess{Name: name, Type: *t.Inner}, Type: t}, nil
		}
		inner, err := ms.generateLeaf(*t.Inner, scope)
		if err != nil {
			return nil, err
		}
		if t.Kind == types.KMutRef {
			return ast.MutReference{Value: inner, Type: t}, nil
		}
		return ast.Reference{Value: inner, Type: t}, nil
	default:
		if t.IsNumeric() {
			v, err := ms.src.BoundedInt(0, 255)
			if err != nil {
				return nil, err
			}
			return ast.NumberLiteral{Value: fmt.Sprintf("%d%s", v, t.GetName()), Type: t}, nil
		}
		return ast.BoolLiteral{Value: false}, nil
	}
}

// findLiveVariable searches every variable identifier ever allocated
// for one of type t, visible from scope, and still live there.
func (ms *MoveSmith) findLiveVariable(t types.Type, scope scopeCtx) (string, bool) {
	vars := ms.env.Idents.EnumerateByKind(ident.KindVariable)
	names := make([]string, len(vars))
	for i, v := range vars {
		names[i] = v.Name
	}
	candidates := ms.tp.FilterIdentifierWithType(t, names, func(n string) bool {
		id := ident.Identifier{Name: n, Kind: ident.KindVariable}
		return ms.env.Idents.IsIDInScope(id, scope.scope) && ms.env.Live.IsLive(scope.scope, scope.ancestors, id)
	})
	if len(candidates) == 0 {
		return "", false
	}
	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return "", false
	}
	return candidates[idx], true
}

// generateReferenceValue produces &expr / &mut expr: preferring a live
// variable of the referent type (a syntactically valid "place"), then
// a resource borrow when the referent is a key-ability struct, falling
// back to referencing a freshly generated value.
func (ms *MoveSmith) generateReferenceValue(t types.Type, scope scopeCtx) (ast.Expression, error) {
	inner := *t.Inner
	if name, ok := ms.findLiveVariable(inner, scope); ok {
		if t.Kind == types.KMutRef {
			return ast.MutReference{Value: ast.VariableAccess{Name: name, Type: inner}, Type: t}, nil
		}
		return ast.Reference{Value: ast.VariableAccess{Name: name, Type: inner}, Type: t}, nil
	}

	if structNameOf(inner) != "" {
		if op, ok, err := ms.tryBorrowGlobal(t); err != nil {
			return nil, err
		} else if ok {
			return op, nil
		}
	}

	value, err := ms.generateExpressionOfType(inner, scope)
	if err != nil {
		return nil, err
	}
	if t.Kind == types.KMutRef {
		return ast.MutReference{Value: value, Type: t}, nil
	}
	return ast.Reference{Value: value, Type: t}, nil
}

// generateBoolExpression chooses among a comparison over a fresh
// numeric pair, a boolean connective over two nested bool expressions,
// an equality/inequality over a fresh pair of some other drawn type, a
// negation of a nested bool expression, and a plain literal.
func (ms *MoveSmith) generateBoolExpression(scope scopeCtx) (ast.Expression, error) {
	kind, err := ms.src.BoundedInt(0, 4)
	if err != nil {
		return nil, err
	}
	switch kind {
	case 0:
		lhs, err := ms.generateExpressionOfType(types.U64(), scope)
		if err != nil {
			return nil, err
		}
		rhs, err := ms.generateExpressionOfType(types.U64(), scope)
		if err != nil {
			return nil, err
		}
		op := ast.OpLt
		if v, err := ms.src.BoundedInt(0, 3); err == nil {
			op = []ast.NumericalBinaryOperator{ast.OpLt, ast.OpGt, ast.OpLe, ast.OpGe}[v]
		}
		return ast.BinaryOperation{Kind: ast.BinaryNumerical, Numerical: op, Lhs: lhs, Rhs: rhs, ResultType: types.Bool()}, nil
	case 1:
		lhs, err := ms.generateExpressionOfType(types.Bool(), scope)
		if err != nil {
			return nil, err
		}
		rhs, err := ms.generateExpressionOfType(types.Bool(), scope)
		if err != nil {
			return nil, err
		}
		op := ast.OpAnd
		if v, err := ms.src.Bool(); err == nil && v {
			op = ast.OpOr
		}
		return ast.BinaryOperation{Kind: ast.BinaryBoolean, Boolean: op, Lhs: lhs, Rhs: rhs, ResultType: types.Bool()}, nil
	case 2:
		// equality is unconstrained by domain per §4.10, so the operand
		// type is drawn fresh rather than pinned to a numeric type.
		t, err := ms.getRandomType(scope, typeDrawOptions{allowBool: true}, nil)
		if err != nil {
			return nil, err
		}
		lhs, err := ms.generateExpressionOfType(t, scope)
		if err != nil {
			return nil, err
		}
		rhs, err := ms.generateExpressionOfType(t, scope)
		if err != nil {
			return nil, err
		}
		op := ast.OpEq
		if v, err := ms.src.Bool(); err == nil && v {
			op = ast.OpNeq
		}
		return ast.BinaryOperation{Kind: ast.BinaryEquality, Equality: op, Lhs: lhs, Rhs: rhs, ResultType: types.Bool()}, nil
	case 3:
		inner, err := ms.generateExpressionOfType(types.Bool(), scope)
		if err != nil {
			return nil, err
		}
		return ast.UnaryOperation{Op: ast.UnaryNot, Value: inner}, nil
	default:
		return ms.generateLeaf(types.Bool(), scope)
	}
}

// generateIfElse produces an if/else where both branches are blocks
// typed to want.
func (ms *MoveSmith) generateIfElse(want types.Type, scope scopeCtx) (ast.Expression, error) {
	cond, err := ms.generateExpressionOfType(types.Bool(), scope)
	if err != nil {
		return nil, err
	}
	thenBlk, err := ms.generateBlock(scope, want)
	if err != nil {
		return nil, err
	}
	elseBlk, err := ms.generateBlock(scope, want)
	if err != nil {
		return nil, err
	}
	return ast.IfExpr{Condition: cond, Then: thenBlk, Else: elseBlk, Type: want}, nil
}
