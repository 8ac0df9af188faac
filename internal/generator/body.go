package generator

import (
	"fmt"

	"github.com/oxhq/movesmith/internal/ast"
	"github.com/oxhq/movesmith/internal/ident"
	"github.com/oxhq/movesmith/internal/selection"
	"github.com/oxhq/movesmith/internal/types"
)

// fillFunction generates the function's body as a block typed to its
// declared return type (unit if none), in the scope the signature
// already opened.
func (ms *MoveSmith) fillFunction(mod *ast.Module, fn *ast.Function) error {
	retType := types.Type{Kind: types.KTuple}
	if fn.Signature.ReturnType != nil {
		retType = *fn.Signature.ReturnType
	}
	bodyScope := ms.fnBodyScope(mod, fn, retType)

	block, err := ms.generateBlock(bodyScope, retType)
	if err != nil {
		return err
	}
	fn.Body = block
	return nil
}

// fnBodyScope recovers the hidden scope a function's signature
// allocation opened and marks every parameter alive there, so body
// generation can immediately reference them. retType is recorded on
// the scope so a nested return expression anywhere in the body knows
// what type its value must be.
func (ms *MoveSmith) fnBodyScope(mod *ast.Module, fn *ast.Function, retType types.Type) scopeCtx {
	fnID := ident.Identifier{Name: fn.Signature.Name, Kind: ident.KindFunction}
	childScope := ms.env.Idents.ChildScope(fnID)
	scope := scopeCtx{
		scope:        childScope,
		ancestors:    []string{ident.Root, mod.Name},
		fnName:       fn.Signature.Name,
		fnInline:     fn.Signature.Inline,
		fnReturnType: retType,
	}

	for _, p := range fn.Signature.Params {
		pid := ident.Identifier{Name: p.Name, Kind: ident.KindVariable}
		ms.env.Live.MarkAlive(childScope, pid)
	}
	return scope
}

// statement weights: declaration dominates, bare expressions are the
// minority — per the design notes' {declaration:6, expression:4} split
// applied over the ordinary (non-dispersed) statement slots.
var stmtKindWeights = []int{6, 4}

// generateBlock opens a fresh hidden scope, emits num_stmts_in_block
// ordinary statements plus num_additional_operations_in_func dispersed
// vector/resource operations, and closes with a tail expression typed
// to want.
func (ms *MoveSmith) generateBlock(scope scopeCtx, want types.Type) (*ast.Block, error) {
	if err := ms.env.CheckTimeout(); err != nil {
		return nil, err
	}

	blockID, blockScope := ms.env.Idents.Allocate(ident.KindBlock, scope.scope, true, true, "")
	inner := scope.child(blockScope)
	_ = blockID

	block := &ast.Block{Name: blockScope}

	numStmts, err := ms.cfg.NumStmtsInBlock.Select(ms.src)
	if err != nil {
		return nil, err
	}
	for i := 0; i < numStmts; i++ {
		stmt, err := ms.generateStatement(inner)
		if err != nil {
			return nil, fmt.Errorf("stmt %d: %w", i, err)
		}
		block.Statements = append(block.Statements, stmt)
	}

	numExtra, err := ms.cfg.NumAdditionalOperationsInFunc.SelectOnce(ms.src)
	if err != nil {
		return nil, err
	}
	for i := 0; i < numExtra; i++ {
		stmts, err := ms.generateDispersedOperation(inner)
		if err != nil {
			return nil, fmt.Errorf("dispersed op %d: %w", i, err)
		}
		block.Statements = append(block.Statements, stmts...)
	}

	if want.Kind == types.KTuple && len(want.Tuple) == 0 {
		return block, nil
	}

	tail, err := ms.generateExpressionOfType(want, inner)
	if err != nil {
		return nil, fmt.Errorf("block tail: %w", err)
	}
	block.Tail = tail
	return block, nil
}

// generateStatement chooses between a let-declaration and a bare
// expression statement.
func (ms *MoveSmith) generateStatement(scope scopeCtx) (ast.Statement, error) {
	kind, err := selection.ChooseIdxWeighted(ms.src, stmtKindWeights)
	if err != nil {
		return nil, err
	}
	if kind == 0 {
		return ms.generateDeclaration(scope)
	}
	return ms.generateExprStatement(scope)
}

// generateDeclaration draws a type, generates a value expression of
// that type, allocates a fresh variable bound to it, and marks it
// alive in scope.
func (ms *MoveSmith) generateDeclaration(scope scopeCtx) (ast.Statement, error) {
	t, err := ms.getRandomType(scope, typeDrawOptions{allowBool: true, allowStruct: true, onlyInstantiatable: true}, nil)
	if err != nil {
		return nil, err
	}
	value, err := ms.generateExpressionOfType(t, scope)
	if err != nil {
		return nil, err
	}
	id, _ := ms.env.Idents.Allocate(ident.KindVariable, scope.scope, false, false, "")
	ms.tp.InsertMapping(id, t)
	ms.env.Live.MarkAlive(scope.scope, id)

	showAnno, err := ms.src.Ratio(75, 100)
	if err != nil {
		return nil, err
	}
	return ast.Declaration{Name: id.Name, Type: t, Value: value, ShowTypeAnno: showAnno}, nil
}

// generateExprStatement picks among the generate_expression candidate
// set that only makes sense as a statement (its value discarded): an
// assignment to an already-live variable, a nested block run purely
// for effect, or the ordinary typed-expression draw used everywhere
// else.
func (ms *MoveSmith) generateExprStatement(scope scopeCtx) (ast.Statement, error) {
	if name, t, ok := ms.findAssignableVariable(scope); ok {
		if hit, err := ms.src.Ratio(1, 4); err != nil {
			return nil, err
		} else if hit {
			value, err := ms.generateExpressionOfType(t, scope)
			if err != nil {
				return nil, err
			}
			return ast.ExprStatement{Value: ast.Assignment{Name: name, Value: value}}, nil
		}
	}

	if hit, err := ms.src.Ratio(1, 5); err != nil {
		return nil, err
	} else if hit {
		blk, err := ms.generateBlock(scope, types.Tuple())
		if err != nil {
			return nil, err
		}
		return ast.ExprStatement{Value: ast.BlockExpr{Value: blk}}, nil
	}

	t, err := ms.getRandomType(scope, typeDrawOptions{allowBool: true}, nil)
	if err != nil {
		return nil, err
	}
	value, err := ms.generateExpressionOfType(t, scope)
	if err != nil {
		return nil, err
	}
	return ast.ExprStatement{Value: value}, nil
}

// findAssignableVariable returns a live, in-scope variable together
// with its declared type: the precondition generate_expression places
// on offering assignment as a candidate at all.
func (ms *MoveSmith) findAssignableVariable(scope scopeCtx) (string, types.Type, bool) {
	var candidates []ident.Identifier
	for _, v := range ms.env.Idents.EnumerateByKind(ident.KindVariable) {
		if ms.env.Idents.IsIDInScope(v, scope.scope) && ms.env.Live.IsLive(scope.scope, scope.ancestors, v) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return "", types.Type{}, false
	}
	idx, err := ms.src.BoundedInt(0, len(candidates)-1)
	if err != nil {
		return "", types.Type{}, false
	}
	chosen := candidates[idx]
	t, ok := ms.tp.GetType(chosen)
	if !ok {
		return "", types.Type{}, false
	}
	return chosen.Name, t, true
}

// generateDispersedOperation emits one of the vector/resource
// operations the design notes describe as "dispersed among ordinary
// statements" rather than reserved a slot of their own. A vector
// operation over a freshly conjured receiver needs its own
// declaration prepended (generateVectorOperation returns it); a
// resource operation whose result isn't move_to's unit is captured in
// a fresh variable instead of dropped, so later statements can still
// reach it.
func (ms *MoveSmith) generateDispersedOperation(scope scopeCtx) ([]ast.Statement, error) {
	wantVector, err := ms.src.Bool()
	if err != nil {
		return nil, err
	}
	if wantVector {
		elem, err := ms.getRandomType(scope, typeDrawOptions{allowBool: true}, nil)
		if err != nil {
			return nil, err
		}
		stmts, op, err := ms.generateVectorOperation(types.Vector(elem), scope)
		if err != nil {
			return nil, err
		}
		return append(stmts, ast.ExprStatement{Value: op}), nil
	}

	op, ok, err := ms.tryGenerateResourceOperation(scope)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	resOp := op.(ast.ResourceOperation)
	if resOp.Kind == ast.ResMoveTo {
		return []ast.Statement{ast.ExprStatement{Value: op}}, nil
	}

	id, _ := ms.env.Idents.Allocate(ident.KindVariable, scope.scope, false, false, "")
	ms.tp.InsertMapping(id, resOp.ResultType)
	ms.env.Live.MarkAlive(scope.scope, id)
	return []ast.Statement{ast.Declaration{Name: id.Name, Type: resOp.ResultType, Value: op, ShowTypeAnno: true}}, nil
}
